/*
 * filestore.go, part of gotps.
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
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

//FileStore is an append-only store over one file per kind, plus a small
//JSON tag file. Each record is an 8-byte big-endian length followed by a
//zstd frame holding the JSON encoding of the object. On open, the per-kind
//record offsets are rebuilt by a single scan, and a trailing partial
//record (from a crash mid-write) is truncated away.
type FileStore struct {
	mu      sync.Mutex
	dir     string
	files   map[string]*os.File
	offsets map[string][]int64
	tags    map[string]memTag
	enc     *zstd.Encoder
	dec     *zstd.Decoder
	closed  bool
}

//OpenFileStore opens (creating if needed) a file store rooted at dir.
func OpenFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, newError("cannot create store directory %s: %v", dir, err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, newError("cannot set up compressor: %v", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, newError("cannot set up decompressor: %v", err)
	}
	F := &FileStore{
		dir:     dir,
		files:   make(map[string]*os.File),
		offsets: make(map[string][]int64),
		tags:    make(map[string]memTag),
		enc:     enc,
		dec:     dec,
	}
	if err := F.loadTags(); err != nil {
		return nil, err
	}
	return F, nil
}

func (F *FileStore) loadTags() error {
	b, err := os.ReadFile(filepath.Join(F.dir, "tags.json"))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return newError("cannot read tag file: %v", err)
	}
	raw := make(map[string]struct {
		Kind  string `json:"kind"`
		Index int    `json:"index"`
	})
	if err := json.Unmarshal(b, &raw); err != nil {
		return newError("corrupt tag file: %v", err)
	}
	for name, t := range raw {
		F.tags[name] = memTag{kind: t.Kind, index: t.Index}
	}
	return nil
}

func (F *FileStore) saveTags() error {
	raw := make(map[string]struct {
		Kind  string `json:"kind"`
		Index int    `json:"index"`
	})
	for name, t := range F.tags {
		raw[name] = struct {
			Kind  string `json:"kind"`
			Index int    `json:"index"`
		}{Kind: t.kind, Index: t.index}
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return newError("cannot encode tags: %v", err)
	}
	tmp := filepath.Join(F.dir, "tags.json.tmp")
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		return newError("cannot write tag file: %v", err)
	}
	if err := os.Rename(tmp, filepath.Join(F.dir, "tags.json")); err != nil {
		return newError("cannot replace tag file: %v", err)
	}
	return nil
}

//file returns the open file for kind, scanning it for record offsets the
//first time. Callers hold the lock.
func (F *FileStore) file(kind string) (*os.File, error) {
	if f, ok := F.files[kind]; ok {
		return f, nil
	}
	path := filepath.Join(F.dir, kind+".zst")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, newError("cannot open %s: %v", path, err)
	}
	offsets, end, err := scanRecords(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	//a partial trailing record from a crashed writer is dropped
	if err := f.Truncate(end); err != nil {
		f.Close()
		return nil, newError("cannot truncate %s: %v", path, err)
	}
	F.files[kind] = f
	F.offsets[kind] = offsets
	return f, nil
}

func scanRecords(f *os.File) (offsets []int64, end int64, err error) {
	info, err := f.Stat()
	if err != nil {
		return nil, 0, newError("cannot stat store file: %v", err)
	}
	size := info.Size()
	var head [8]byte
	var pos int64
	for pos < size {
		if pos+8 > size {
			break
		}
		if _, err := f.ReadAt(head[:], pos); err != nil {
			return nil, 0, newError("cannot scan store file: %v", err)
		}
		n := int64(binary.BigEndian.Uint64(head[:]))
		if pos+8+n > size {
			break
		}
		offsets = append(offsets, pos)
		pos += 8 + n
	}
	return offsets, pos, nil
}

//Save appends obj under kind and returns its zero-based index.
func (F *FileStore) Save(kind string, obj interface{}) (int, error) {
	F.mu.Lock()
	defer F.mu.Unlock()
	if F.closed {
		return 0, newError("store is closed")
	}
	f, err := F.file(kind)
	if err != nil {
		return 0, err
	}
	b, err := encode(obj)
	if err != nil {
		return 0, err
	}
	compressed := F.enc.EncodeAll(b, nil)
	var head [8]byte
	binary.BigEndian.PutUint64(head[:], uint64(len(compressed)))
	pos, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, newError("cannot seek in %s store: %v", kind, err)
	}
	if _, err := f.Write(head[:]); err != nil {
		return 0, newError("cannot write to %s store: %v", kind, err)
	}
	if _, err := f.Write(compressed); err != nil {
		return 0, newError("cannot write to %s store: %v", kind, err)
	}
	F.offsets[kind] = append(F.offsets[kind], pos)
	return len(F.offsets[kind]) - 1, nil
}

//Load decodes the object at (kind, index) into into.
func (F *FileStore) Load(kind string, index int, into interface{}) error {
	F.mu.Lock()
	defer F.mu.Unlock()
	if F.closed {
		return newError("store is closed")
	}
	f, err := F.file(kind)
	if err != nil {
		return err
	}
	offsets := F.offsets[kind]
	if index < 0 || index >= len(offsets) {
		return newError("no %s at index %d (have %d)", kind, index, len(offsets))
	}
	var head [8]byte
	if _, err := f.ReadAt(head[:], offsets[index]); err != nil {
		return newError("cannot read %s store: %v", kind, err)
	}
	n := binary.BigEndian.Uint64(head[:])
	compressed := make([]byte, n)
	if _, err := f.ReadAt(compressed, offsets[index]+8); err != nil {
		return newError("cannot read %s store: %v", kind, err)
	}
	b, err := F.dec.DecodeAll(compressed, nil)
	if err != nil {
		return newError("corrupt record in %s store at index %d: %v", kind, index, err)
	}
	return decode(b, into)
}

//Count returns how many objects of kind are stored.
func (F *FileStore) Count(kind string) (int, error) {
	F.mu.Lock()
	defer F.mu.Unlock()
	if F.closed {
		return 0, newError("store is closed")
	}
	if _, err := F.file(kind); err != nil {
		return 0, err
	}
	return len(F.offsets[kind]), nil
}

//Tag points name at (kind, index), durably.
func (F *FileStore) Tag(name, kind string, index int) error {
	F.mu.Lock()
	defer F.mu.Unlock()
	if F.closed {
		return newError("store is closed")
	}
	if _, err := F.file(kind); err != nil {
		return err
	}
	if index < 0 || index >= len(F.offsets[kind]) {
		return newError("cannot tag %s: no %s at index %d", name, kind, index)
	}
	F.tags[name] = memTag{kind: kind, index: index}
	return F.saveTags()
}

//Tagged resolves a tag to its (kind, index) target.
func (F *FileStore) Tagged(name string) (string, int, error) {
	F.mu.Lock()
	defer F.mu.Unlock()
	if F.closed {
		return "", 0, newError("store is closed")
	}
	t, ok := F.tags[name]
	if !ok {
		return "", 0, newError("no tag %q", name)
	}
	return t.kind, t.index, nil
}

//Close syncs and closes all open files. The store is unusable afterwards.
func (F *FileStore) Close() error {
	F.mu.Lock()
	defer F.mu.Unlock()
	if F.closed {
		return nil
	}
	F.closed = true
	var first error
	for kind, f := range F.files {
		if err := f.Sync(); err != nil && first == nil {
			first = newError("cannot sync %s store: %v", kind, err)
		}
		if err := f.Close(); err != nil && first == nil {
			first = newError("cannot close %s store: %v", kind, err)
		}
	}
	F.enc.Close()
	F.dec.Close()
	return first
}
