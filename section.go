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

// On-disk layout of a single prefix file (indexdir/<a>/<b>/<c>):
//
//	[0, headerSize)  256 * 8-byte little-endian offsets into the payload
//	                 region (relative to payloadStart), one per trailing
//	                 byte of the n-gram; the
//	                 sentinel value emptyOffset means "no postings".
//	[payloadStart, EOF)  one posting list per non-empty n-gram:
//	    8 bytes  length of the encoded list in bytes (little-endian)
//	    4 bytes  absolute first fid (little-endian)
//	    N bytes  varint-encoded deltas between consecutive fids
const (
	headerEntries = 256
	headerEntrySz = 8
	headerSize    = headerEntries * headerEntrySz
	payloadStart  = 2048

	emptyOffset = ^uint64(0)
)

// toDeltas encodes a strictly ascending list of fids as a 4-byte
// absolute first fid followed by varint deltas between consecutive
// entries.
func toDeltas(fids []uint32) []byte {
	if len(fids) == 0 {
		return nil
	}
	buf := make([]byte, 4, 4+len(fids)*2)
	binary.LittleEndian.PutUint32(buf, fids[0])
	var v [binary.MaxVarintLen64]byte
	prev := fids[0]
	for _, f := range fids[1:] {
		n := binary.PutUvarint(v[:], uint64(f-prev))
		buf = append(buf, v[:n]...)
		prev = f
	}
	return buf
}

// fromDeltas decodes the format toDeltas produces.
func fromDeltas(data []byte) ([]uint32, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) < 4 {
		return nil, &CorruptIndexError{Err: errShortPostingList}
	}
	first := binary.LittleEndian.Uint32(data)
	out := []uint32{first}
	rest := data[4:]
	prev := first
	for len(rest) > 0 {
		delta, n := binary.Uvarint(rest)
		if n <= 0 {
			return nil, &CorruptIndexError{Err: errShortPostingList}
		}
		prev += uint32(delta)
		out = append(out, prev)
		rest = rest[n:]
	}
	return out, nil
}

var errShortPostingList = shortPostingListErr("truncated posting list")

type shortPostingListErr string

func (e shortPostingListErr) Error() string { return string(e) }
