/*
 * badgerstore.go, part of gotps.
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
	"encoding/binary"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

//BadgerStore keeps the sampling objects in a Badger key-value database.
//It is the backend for long production runs: writes are transactional, so
//a killed process never leaves a half-written record, and the per-kind
//counter is updated in the same transaction as the object itself.
type BadgerStore struct {
	db *badger.DB
}

//OpenBadgerStore opens (creating if needed) a Badger store at dir.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, newError("cannot open badger store at %s: %v", dir, err)
	}
	return &BadgerStore{db: db}, nil
}

func objKey(kind string, index int) []byte {
	key := make([]byte, 0, len(kind)+11)
	key = append(key, 'o', '/')
	key = append(key, kind...)
	key = append(key, '/')
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], uint64(index))
	return append(key, idx[:]...)
}

func countKey(kind string) []byte {
	return []byte("c/" + kind)
}

func tagKey(name string) []byte {
	return []byte("t/" + name)
}

func getCount(txn *badger.Txn, kind string) (int, error) {
	item, err := txn.Get(countKey(kind))
	if err == badger.ErrKeyNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var n int
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("corrupt counter for kind %s", kind)
		}
		n = int(binary.BigEndian.Uint64(val))
		return nil
	})
	return n, err
}

//Save appends obj under kind and returns its zero-based index.
func (B *BadgerStore) Save(kind string, obj interface{}) (int, error) {
	b, err := encode(obj)
	if err != nil {
		return 0, err
	}
	var index int
	err = B.db.Update(func(txn *badger.Txn) error {
		n, err := getCount(txn, kind)
		if err != nil {
			return err
		}
		index = n
		if err := txn.Set(objKey(kind, index), b); err != nil {
			return err
		}
		var cnt [8]byte
		binary.BigEndian.PutUint64(cnt[:], uint64(n+1))
		return txn.Set(countKey(kind), cnt[:])
	})
	if err != nil {
		return 0, newError("cannot save %s: %v", kind, err)
	}
	return index, nil
}

//Load decodes the object at (kind, index) into into.
func (B *BadgerStore) Load(kind string, index int, into interface{}) error {
	var b []byte
	err := B.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(objKey(kind, index))
		if err != nil {
			return err
		}
		b, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return newError("no %s at index %d", kind, index)
	}
	if err != nil {
		return newError("cannot load %s at index %d: %v", kind, index, err)
	}
	return decode(b, into)
}

//Count returns how many objects of kind are stored.
func (B *BadgerStore) Count(kind string) (int, error) {
	var n int
	err := B.db.View(func(txn *badger.Txn) error {
		var err error
		n, err = getCount(txn, kind)
		return err
	})
	if err != nil {
		return 0, newError("cannot count %s: %v", kind, err)
	}
	return n, nil
}

//Tag points name at (kind, index).
func (B *BadgerStore) Tag(name, kind string, index int) error {
	err := B.db.Update(func(txn *badger.Txn) error {
		n, err := getCount(txn, kind)
		if err != nil {
			return err
		}
		if index < 0 || index >= n {
			return fmt.Errorf("no %s at index %d", kind, index)
		}
		val := make([]byte, 8+len(kind))
		binary.BigEndian.PutUint64(val[:8], uint64(index))
		copy(val[8:], kind)
		return txn.Set(tagKey(name), val)
	})
	if err != nil {
		return newError("cannot tag %s: %v", name, err)
	}
	return nil
}

//Tagged resolves a tag to its (kind, index) target.
func (B *BadgerStore) Tagged(name string) (string, int, error) {
	var kind string
	var index int
	err := B.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tagKey(name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) < 8 {
				return fmt.Errorf("corrupt tag %q", name)
			}
			index = int(binary.BigEndian.Uint64(val[:8]))
			kind = string(val[8:])
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return "", 0, newError("no tag %q", name)
	}
	if err != nil {
		return "", 0, newError("cannot resolve tag %q: %v", name, err)
	}
	return kind, index, nil
}

//Close closes the underlying database.
func (B *BadgerStore) Close() error {
	if err := B.db.Close(); err != nil {
		return newError("cannot close badger store: %v", err)
	}
	return nil
}
