/*
 * doc.go, part of gotps.
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

//Package tps implements the core types for transition path sampling:
//snapshots, trajectories, collective variables, volumes and path ensembles,
//plus the sample/sample-set bookkeeping used by the Monte Carlo machinery in
//the subpackages. gotps is a companion library to goChem
//(github.com/rmera/gochem), from which it takes the coordinate matrices (the
//v3 subpackage) and the topology interfaces. The physics is kept behind the
//Stepper interface, so any engine that can advance a snapshot by one
//integration step can drive the sampling.
//
//The layout follows goChem: the domain core lives in this root package, and
//the machinery is in subpackages: engine (trajectory generation with dynamic
//stopping conditions), move (shooting, reversal and replica-exchange
//proposals), scheme (weighted move selection), network (TIS network
//configuration), sampler (the Monte Carlo cycle driver), store (index
//addressed object stores) and analysis.
package tps
