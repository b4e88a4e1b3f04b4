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

// readPostingList returns the sorted fid list for the 4-byte n-gram ng
// out of store: the on-disk prefix-file format (section.go) always
// keys its 256 header slots by a full n-gram's fourth byte, so ng must
// be a 4-byte n-gram here; a 3-byte string that needs filtering goes
// through threeGramFallback instead, never through this function
// directly. A missing prefix file, or a header slot pointing at
// emptyOffset, both mean "no postings" and return (nil, nil) rather
// than an error.
func readPostingList(store shardStore, ng ngram) ([]uint32, error) {
	b := ngramToBytes(ng, 4)
	prefix := b[:3]

	data, err := store.readPrefix(prefix[0], prefix[1], prefix[2])
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	if len(data) < headerSize {
		return nil, &CorruptIndexError{Err: errShortHeader}
	}

	slot := int(b[3])
	off := binary.LittleEndian.Uint64(data[slot*headerEntrySz : (slot+1)*headerEntrySz])
	if off == emptyOffset {
		return nil, nil
	}
	if off >= uint64(len(data)-payloadStart) {
		return nil, &CorruptIndexError{Err: errBadOffset}
	}

	rest := data[payloadStart+off:]
	if len(rest) < 8 {
		return nil, &CorruptIndexError{Err: errShortPostingList}
	}
	length := binary.LittleEndian.Uint64(rest[:8])
	rest = rest[8:]
	if uint64(len(rest)) < length {
		return nil, &CorruptIndexError{Err: errShortPostingList}
	}
	return fromDeltas(rest[:length])
}

var errShortHeader = shortPostingListErr("prefix file shorter than header")
var errBadOffset = shortPostingListErr("posting list offset out of range")
