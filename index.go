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
	"bufio"
	"os"
	"sync"
)

// Index is a read-only handle on one n-gram index shard plus the
// path-list file that maps a fid to a file path. It is safe for
// concurrent use by multiple goroutines evaluating different rules.
type Index struct {
	store shardStore
	width int

	pathOnce sync.Once
	paths    []string
	pathErr  error
	pathFile string
}

// OpenDirIndex opens a directory-backed index shard rooted at
// indexDir, with fids resolved against pathListFile (one path per
// line, fid = line index).
func OpenDirIndex(indexDir, pathListFile string, width int) *Index {
	return &Index{
		store:    newDirStore(indexDir, decimalPrefixPath),
		width:    width,
		pathFile: pathListFile,
	}
}

// OpenTarIndex opens a tar-backed index shard read from r.
func OpenTarIndex(r *os.File, pathListFile string, width int) (*Index, error) {
	s, err := newTarStore(r, decimalPrefixPath)
	if err != nil {
		return nil, err
	}
	return &Index{store: s, width: width, pathFile: pathListFile}, nil
}

func (idx *Index) Close() error { return idx.store.Close() }

// numSamples returns the total number of fids in this shard (the
// length of its path list), lazily loading the path list on first use.
// groupIntersect uses this to bound how far it expands a surviving
// group id into the shard's real fid range.
func (idx *Index) numSamples() (uint32, error) {
	idx.pathOnce.Do(idx.loadPaths)
	if idx.pathErr != nil {
		return 0, idx.pathErr
	}
	return uint32(len(idx.paths)), nil
}

// Fid2Path resolves a fid to its file path, lazily loading and caching
// the path-list file on first use.
func (idx *Index) Fid2Path(fid uint32) (string, error) {
	idx.pathOnce.Do(idx.loadPaths)
	if idx.pathErr != nil {
		return "", idx.pathErr
	}
	if int(fid) >= len(idx.paths) {
		return "", &CorruptIndexError{Path: idx.pathFile, Err: errFidOutOfRange}
	}
	return idx.paths[fid], nil
}

func (idx *Index) loadPaths() {
	f, err := os.Open(idx.pathFile)
	if err != nil {
		idx.pathErr = &IOError{Path: idx.pathFile, Err: err}
		return
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		idx.paths = append(idx.paths, sc.Text())
	}
	if err := sc.Err(); err != nil {
		idx.pathErr = &IOError{Path: idx.pathFile, Err: err}
	}
}

var errFidOutOfRange = shortPostingListErr("fid out of range of path list")
