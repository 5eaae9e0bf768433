/*
 * errors.go, part of gotps.
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

import "fmt"

//sanityError reports a violated sample-set invariant. It fulfills
//SanityCheckError.
type sanityError struct {
	message string
	deco    []string
}

func (err sanityError) Error() string {
	return fmt.Sprintf("gotps sanity check: %s", err.message)
}

//Decorate adds new information to the error. As in goChem, the receiver is
//not a pointer but deco, being a slice, is shared anyway.
func (err sanityError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func (err sanityError) SanityCheckError() {}

//NewSanityError returns an error satisfying SanityCheckError. It is exported
//so the subpackages (and outside samplers) can report invariant violations
//in the same type the root package uses.
func NewSanityError(format string, args ...interface{}) Error {
	return sanityError{message: fmt.Sprintf(format, args...), deco: []string{}}
}

//configError reports a misconfigured ensemble, volume or network. It
//fulfills ConfigurationError.
type configError struct {
	message string
	deco    []string
}

func (err configError) Error() string {
	return fmt.Sprintf("gotps configuration: %s", err.message)
}

//Decorate adds new information to the error.
func (err configError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func (err configError) ConfigurationError() {}

//NewConfigError returns an error satisfying ConfigurationError.
func NewConfigError(format string, args ...interface{}) Error {
	return configError{message: fmt.Sprintf(format, args...), deco: []string{}}
}

//IsEngineFailure tells whether err marks a recoverable numerical failure of
//the dynamics engine.
func IsEngineFailure(err error) bool {
	_, ok := err.(EngineFailure)
	return ok
}

//IsStorageError tells whether err comes from the object store.
func IsStorageError(err error) bool {
	_, ok := err.(StorageError)
	return ok
}
