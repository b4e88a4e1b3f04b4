// Copyright 2016 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package yarix

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// shardStore reads prefix files out of one on-disk index shard. Two
// implementations exist (directory-backed, tar-backed); callers select
// one at construction time and never branch on the kind afterward.
type shardStore interface {
	// readPrefix returns the full contents of the prefix file for the
	// 3-byte n-gram prefix (a, b, c), or (nil, nil) if no such file
	// exists in this shard.
	readPrefix(a, b, c byte) ([]byte, error)
	Close() error
}

// PrefixPathFunc names the path segments for a 3-byte n-gram prefix.
// The default, decimalPrefixPath, matches the reader convention used
// by the original index format; hexPrefixPath matches the (different)
// convention its builder/merger tool writes. See DESIGN.md's open
// question entry: this mismatch is preserved deliberately.
type PrefixPathFunc func(a, b, c byte) []string

func decimalPrefixPath(a, b, c byte) []string {
	return []string{fmt.Sprint(a), fmt.Sprint(b), fmt.Sprint(c)}
}

func hexPrefixPath(a, b, c byte) []string {
	return []string{fmt.Sprintf("%02x", a), fmt.Sprintf("%02x", b), fmt.Sprintf("%02x", c)}
}

// dirStore reads prefix files directly from a directory tree.
type dirStore struct {
	root     string
	pathFunc PrefixPathFunc

	mu      sync.Mutex
	missing map[string]bool
}

func newDirStore(root string, pathFunc PrefixPathFunc) *dirStore {
	if pathFunc == nil {
		pathFunc = decimalPrefixPath
	}
	return &dirStore{root: root, pathFunc: pathFunc, missing: map[string]bool{}}
}

func (s *dirStore) readPrefix(a, b, c byte) ([]byte, error) {
	segs := s.pathFunc(a, b, c)
	p := filepath.Join(append([]string{s.root}, segs...)...)

	s.mu.Lock()
	wasMissing := s.missing[p]
	s.mu.Unlock()
	if wasMissing {
		return nil, nil
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			s.mu.Lock()
			s.missing[p] = true
			s.mu.Unlock()
			return nil, nil
		}
		return nil, &IOError{Path: p, Err: err}
	}
	return data, nil
}

func (s *dirStore) Close() error { return nil }

// tarStore reads prefix files out of a single tar archive, with member
// names using the same path segments a dirStore would use on disk.
// The archive is read fully into an in-memory index on open since tar
// offers no random access.
type tarStore struct {
	entries  map[string][]byte
	pathFunc PrefixPathFunc
}

func newTarStore(r io.Reader, pathFunc PrefixPathFunc) (*tarStore, error) {
	if pathFunc == nil {
		pathFunc = decimalPrefixPath
	}
	tr := tar.NewReader(r)
	s := &tarStore{entries: map[string][]byte{}, pathFunc: pathFunc}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &IOError{Path: "<tar>", Err: err}
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		buf := make([]byte, hdr.Size)
		if _, err := io.ReadFull(tr, buf); err != nil {
			return nil, &IOError{Path: hdr.Name, Err: err}
		}
		s.entries[filepath.Clean(hdr.Name)] = buf
	}
	return s, nil
}

func (s *tarStore) readPrefix(a, b, c byte) ([]byte, error) {
	segs := s.pathFunc(a, b, c)
	data, ok := s.entries[filepath.Join(segs...)]
	if !ok {
		return nil, nil
	}
	return data, nil
}

func (s *tarStore) Close() error {
	s.entries = nil
	return nil
}
