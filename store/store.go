/*
 * store.go, part of gotps.
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

//Package store provides persistence backends for the sampling objects:
//an in-memory store for tests and short runs, an append-only compressed
//file store, and a Badger-backed store for long production runs. All of
//them keep per-kind zero-based dense indexes, so the step at store index
//i is the step of cycle i.
package store

import (
	"encoding/json"
	"fmt"
)

//Error is the store implementation of the package-wide error interface.
//It additionally implements the StorageError marker, so callers can tell
//persistence trouble apart from sampling trouble.
type Error struct {
	message string
	deco    []string
}

func newError(format string, args ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, args...)}
}

func (err *Error) Error() string {
	return err.message
}

//Decorate adds info to the error and returns the accumulated decorations.
func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//StorageError marks the error as coming from a persistence backend.
func (err *Error) StorageError() {}

//encode and decode are the common record codec. Everything a store holds
//goes through JSON; the file and Badger backends compress on top of it.
func encode(obj interface{}) ([]byte, error) {
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, newError("cannot encode object: %v", err)
	}
	return b, nil
}

func decode(b []byte, into interface{}) error {
	if err := json.Unmarshal(b, into); err != nil {
		return newError("cannot decode stored object: %v", err)
	}
	return nil
}
