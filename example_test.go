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

package yarix_test

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sabresec/yarix"
	"github.com/sabresec/yarix/rule"
)

// These test-only Node implementations stand in for an external rule
// parser's output, the same way this package's own internal tests do.

type exStringRef struct{ id string }

func (n *exStringRef) Kind() rule.Kind { return rule.KindStringRef }
func (n *exStringRef) Text() string    { return "$" + n.id }
func (n *exStringRef) ID() string      { return n.id }

// Example mirrors the original example.py worked walkthrough: open an
// index, evaluate a rule against it, and hand the candidate set to a
// verifier.
func Example() {
	dir := mustBuildIndex()
	defer os.RemoveAll(dir)

	idx := yarix.OpenDirIndex(filepath.Join(dir, "index"), filepath.Join(dir, "paths.txt"), 4)
	defer idx.Close()

	r := &rule.Rule{
		Strings: []rule.String{
			{ID: "a", Text: "malw"},
		},
		Condition: &exStringRef{id: "a"},
	}

	ev := yarix.NewEvaluator(idx, yarix.Options{})
	fids, ok, err := ev.Evaluate(context.Background(), r)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if !ok {
		fmt.Println("unfilterable: scan everything")
		return
	}

	sort.Slice(fids, func(i, j int) bool { return fids[i] < fids[j] })
	for _, fid := range fids {
		path, err := idx.Fid2Path(fid)
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Println(path)
	}
	// Output:
	// sample1.bin
	// sample2.bin
}

func mustBuildIndex() string {
	dir, err := os.MkdirTemp("", "yarix-example")
	if err != nil {
		panic(err)
	}

	gram := []byte("malw")
	segs := []string{fmt.Sprint(gram[0]), fmt.Sprint(gram[1]), fmt.Sprint(gram[2])}
	prefixDir := filepath.Join(append([]string{dir, "index"}, segs...)...)
	if err := os.MkdirAll(filepath.Dir(prefixDir), 0o755); err != nil {
		panic(err)
	}

	header := make([]byte, 256*8)
	for i := range header {
		header[i] = 0xFF
	}
	slot := int(gram[3])
	off := 0 // relative to the payload region, which starts at byte 2048
	binary.LittleEndian.PutUint64(header[slot*8:], uint64(off))

	var payload []byte
	fids := []uint32{0, 1}
	enc := toDeltasForExample(fids)
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(enc)))
	payload = append(payload, lenBuf[:]...)
	payload = append(payload, enc...)

	data := make([]byte, 2048)
	copy(data, header)
	data = append(data, payload...)

	if err := os.WriteFile(prefixDir, data, 0o644); err != nil {
		panic(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "paths.txt"), []byte("sample1.bin\nsample2.bin\n"), 0o644); err != nil {
		panic(err)
	}
	return dir
}

// toDeltasForExample is a minimal, local re-implementation of the
// unexported encoding section.go's toDeltas uses, kept in this
// external test package so the worked example does not need to reach
// into yarix's internals.
func toDeltasForExample(fids []uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, fids[0])
	prev := fids[0]
	var v [10]byte
	for _, f := range fids[1:] {
		n := binary.PutUvarint(v[:], uint64(f-prev))
		buf = append(buf, v[:n]...)
		prev = f
	}
	return buf
}
