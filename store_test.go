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

import "encoding/binary"

// fakeStore is an in-memory shardStore keyed by the 3-byte prefix,
// used by tests that need a store without touching disk.
type fakeStore struct {
	files map[[3]byte][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: map[[3]byte][]byte{}}
}

func (s *fakeStore) readPrefix(a, b, c byte) ([]byte, error) {
	return s.files[[3]byte{a, b, c}], nil
}

func (s *fakeStore) Close() error { return nil }

// put installs a prefix file whose only populated header slot is
// slot, with the given (already sorted, deduplicated) fid posting
// list.
func (s *fakeStore) put(a, b, c byte, slot int, fids []uint32) {
	s.files[[3]byte{a, b, c}] = buildPrefixFile(map[int][]uint32{slot: fids})
}

func buildPrefixFile(postings map[int][]uint32) []byte {
	header := make([]byte, headerSize)
	for i := 0; i < headerEntries; i++ {
		binary.LittleEndian.PutUint64(header[i*headerEntrySz:], emptyOffset)
	}

	payload := make([]byte, 0, 256)
	for slot := 0; slot < headerEntries; slot++ {
		fids, ok := postings[slot]
		if !ok {
			continue
		}
		enc := toDeltas(fids)
		off := len(payload)
		binary.LittleEndian.PutUint64(header[slot*headerEntrySz:], uint64(off))

		var lenBuf [8]byte
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(enc)))
		payload = append(payload, lenBuf[:]...)
		payload = append(payload, enc...)
	}

	out := make([]byte, payloadStart)
	copy(out, header)
	out = append(out, payload...)
	return out
}
