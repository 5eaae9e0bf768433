/*
 * cache.go, part of gotps.
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
	lru "github.com/hashicorp/golang-lru/v2"

	tps "github.com/rmera/gotps"
)

//CachedStore wraps a Store with an LRU cache over loaded snapshots, the
//hottest object kind during analysis. Other kinds pass through untouched.
//Snapshots are immutable once stored, so serving the same pointer to
//several readers is safe.
type CachedStore struct {
	tps.Store
	snaps *lru.Cache[int, *tps.Snapshot]
}

//NewCachedStore wraps inner with a snapshot cache of the given capacity.
func NewCachedStore(inner tps.Store, capacity int) (*CachedStore, error) {
	c, err := lru.New[int, *tps.Snapshot](capacity)
	if err != nil {
		return nil, newError("cannot build snapshot cache: %v", err)
	}
	return &CachedStore{Store: inner, snaps: c}, nil
}

//Load serves snapshots from the cache when possible. into must be a
//**tps.Snapshot for snapshot loads to hit the cache; other shapes fall
//through to the inner store.
func (C *CachedStore) Load(kind string, index int, into interface{}) error {
	ptr, ok := into.(**tps.Snapshot)
	if kind != tps.KindSnapshot || !ok {
		return C.Store.Load(kind, index, into)
	}
	if s, hit := C.snaps.Get(index); hit {
		*ptr = s
		return nil
	}
	if err := C.Store.Load(kind, index, into); err != nil {
		return err
	}
	C.snaps.Add(index, *ptr)
	return nil
}

//Save passes through. Indexes are append-only so nothing cached can go
//stale.
func (C *CachedStore) Save(kind string, obj interface{}) (int, error) {
	return C.Store.Save(kind, obj)
}
