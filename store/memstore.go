/*
 * memstore.go, part of gotps.
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

package store

import (
	"sync"
)

type memTag struct {
	kind  string
	index int
}

//MemStore keeps everything in memory. Objects are still serialized on
//Save, so a MemStore round-trip exercises the same codec as the durable
//backends.
type MemStore struct {
	mu      sync.RWMutex
	objects map[string][][]byte
	tags    map[string]memTag
	closed  bool
}

//NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		objects: make(map[string][][]byte),
		tags:    make(map[string]memTag),
	}
}

//Save appends obj under kind and returns its zero-based index.
func (M *MemStore) Save(kind string, obj interface{}) (int, error) {
	M.mu.Lock()
	defer M.mu.Unlock()
	if M.closed {
		return 0, newError("store is closed")
	}
	b, err := encode(obj)
	if err != nil {
		return 0, err
	}
	M.objects[kind] = append(M.objects[kind], b)
	return len(M.objects[kind]) - 1, nil
}

//Load decodes the object at (kind, index) into into.
func (M *MemStore) Load(kind string, index int, into interface{}) error {
	M.mu.RLock()
	defer M.mu.RUnlock()
	if M.closed {
		return newError("store is closed")
	}
	objs := M.objects[kind]
	if index < 0 || index >= len(objs) {
		return newError("no %s at index %d (have %d)", kind, index, len(objs))
	}
	return decode(objs[index], into)
}

//Count returns how many objects of kind are stored.
func (M *MemStore) Count(kind string) (int, error) {
	M.mu.RLock()
	defer M.mu.RUnlock()
	if M.closed {
		return 0, newError("store is closed")
	}
	return len(M.objects[kind]), nil
}

//Tag points name at (kind, index), overwriting any previous target.
func (M *MemStore) Tag(name, kind string, index int) error {
	M.mu.Lock()
	defer M.mu.Unlock()
	if M.closed {
		return newError("store is closed")
	}
	if index < 0 || index >= len(M.objects[kind]) {
		return newError("cannot tag %s: no %s at index %d", name, kind, index)
	}
	M.tags[name] = memTag{kind: kind, index: index}
	return nil
}

//Tagged resolves a tag to its (kind, index) target.
func (M *MemStore) Tagged(name string) (string, int, error) {
	M.mu.RLock()
	defer M.mu.RUnlock()
	if M.closed {
		return "", 0, newError("store is closed")
	}
	t, ok := M.tags[name]
	if !ok {
		return "", 0, newError("no tag %q", name)
	}
	return t.kind, t.index, nil
}

//Close marks the store closed. Further calls fail.
func (M *MemStore) Close() error {
	M.mu.Lock()
	defer M.mu.Unlock()
	M.closed = true
	return nil
}
