/*
 * interfaces.go, part of gotps.
 *
 *
 * Copyright 2025 Raul Mera <rauldotmeraatusachdotcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package tps

//Stepper is the boundary to the underlying dynamics engine. Advance takes a
//snapshot and returns the snapshot one integration step later. It must not
//modify its argument. A failed integration (non-finite coordinates, SCF
//blow-up, whatever the engine considers fatal for this trajectory) is
//reported as an error satisfying EngineFailure; the caller then discards the
//whole trial instead of tearing down the simulation.
type Stepper interface {
	Advance(s *Snapshot) (*Snapshot, error)
}

//PlatformSelector is implemented by steppers that can run on more than one
//platform (CPU, CUDA, OpenCL...). SelectPlatform returns an error satisfying
//UnsupportedPlatform if the engine was not built with the requested one.
type PlatformSelector interface {
	SelectPlatform(name string) error
}

//ForkableStepper is implemented by steppers that can produce an independent
//copy of themselves, sharing no mutable state with the original. Movers that
//generate two trajectory segments concurrently require this.
type ForkableStepper interface {
	Stepper
	Fork() Stepper
}

//Ensemble is a stateless predicate over trajectories, defining which paths
//belong to a sampling slot. All methods must be pure: two calls with the
//same trajectory return the same answer, and concurrent evaluation on
//different trajectories is safe.
//
//CanAppend must be monotone-safe: once it returns false for a prefix, the
//generation engine stops asking about longer prefixes of the same branch.
//The Strict variants exclude the validity contribution of the frame at the
//growing end, which shooting movers use to make sure the stopping frame
//itself terminates the path.
type Ensemble interface {
	//IsValid tells whether t is a complete, valid member of the ensemble.
	IsValid(t *Trajectory) bool
	//CanAppend tells whether t, a prefix growing at its end, may still be
	//extended into a valid member.
	CanAppend(t *Trajectory) bool
	//StrictCanAppend is CanAppend ignoring the last frame's own validity.
	StrictCanAppend(t *Trajectory) bool
	//CanPrepend is the backward-generation analog of CanAppend: t grows at
	//its beginning.
	CanPrepend(t *Trajectory) bool
	//StrictCanPrepend is CanPrepend ignoring the first frame's own validity.
	StrictCanPrepend(t *Trajectory) bool
}

//Store is the boundary to the object store: append-only, index-addressed
//persistence for the entities of a simulation. Save returns the index under
//which the object was stored for its kind; indexes are sequential from 0, so
//Count(kind) is also the next index to be assigned. Tag keeps a small
//out-of-band named reference (e.g. "template" for the template snapshot, or
//"last" for the newest committed step).
type Store interface {
	Save(kind string, obj interface{}) (int, error)
	Load(kind string, index int, into interface{}) error
	Count(kind string) (int, error)
	Tag(name, kind string, index int) error
	Tagged(name string) (kind string, index int, err error)
	Close() error
}

//Kinds under which the entities of a simulation are stored.
const (
	KindSnapshot   = "snapshot"
	KindTrajectory = "trajectory"
	KindSampleSet  = "sampleset"
	KindStep       = "step"
)

//Error is the error interface of goChem, which gotps shares: Decorate allows
//callers to push information into the error as it goes up the stack, without
//wrapping it into a different type.
type Error interface {
	error
	Decorate(string) []string
}

//EngineFailure marks errors from a numerical failure of the dynamics engine.
//A mover receiving one rejects the trial; the sampler keeps cycling.
type EngineFailure interface {
	Error
	EngineFailure()
}

//UnsupportedPlatform marks errors from requesting a platform the engine
//cannot provide.
type UnsupportedPlatform interface {
	Error
	UnsupportedPlatform()
}

//ConfigurationError marks fatal misconfiguration of ensembles, networks or
//move schemes. It is only produced at construction time.
type ConfigurationError interface {
	Error
	ConfigurationError()
}

//StorageError marks failures of the object store. Pending steps are kept in
//memory and the write retried; the error only surfaces if retrying fails.
type StorageError interface {
	Error
	StorageError()
}

//SanityCheckError marks a violated sample-set invariant found on load or
//after a commit. It is fatal: the sampler refuses to (keep) running on a
//corrupt sample set.
type SanityCheckError interface {
	Error
	SanityCheckError()
}
