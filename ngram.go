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

// ngram packs up to 4 bytes into a uint32, most significant byte
// first. Width (3 or 4) is tracked by the caller; this type only
// carries the packed value.
type ngram uint32

func bytesToNGram(b []byte) ngram {
	var n ngram
	for _, c := range b {
		n = n<<8 | ngram(c)
	}
	return n
}

func ngramToBytes(n ngram, width int) []byte {
	b := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		b[i] = byte(n)
		n >>= 8
	}
	return b
}

// ngramsOf returns every width-byte n-gram occurring in data, in order,
// including overlapping occurrences.
func ngramsOf(data []byte, width int) []ngram {
	if len(data) < width {
		return nil
	}
	out := make([]ngram, 0, len(data)-width+1)
	for i := 0; i+width <= len(data); i++ {
		out = append(out, bytesToNGram(data[i:i+width]))
	}
	return out
}

func toLower(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			c = c + 'a' - 'A'
		}
		out[i] = c
	}
	return out
}

// caseVariants enumerates every case-bit-pattern of b's alphabetic
// bytes, matching evaluate_rule's per-alternative n-gram expansion:
// for each of the 2^k variants (k = count of alphabetic bytes), flip
// the case of the bytes whose bit is set.
func caseVariants(b []byte) [][]byte {
	var alphaIdx []int
	for i, c := range b {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			alphaIdx = append(alphaIdx, i)
		}
	}
	n := len(alphaIdx)
	if n > 20 {
		// Cap combinatorial blowup; caller should have sliced to
		// n-gram width before calling this, so this should not trigger
		// in practice.
		n = 20
		alphaIdx = alphaIdx[:n]
	}
	variants := make([][]byte, 0, 1<<uint(n))
	base := toLower(b)
	for mask := 0; mask < (1 << uint(n)); mask++ {
		v := make([]byte, len(base))
		copy(v, base)
		for bit, idx := range alphaIdx {
			if mask&(1<<uint(bit)) != 0 && v[idx] != 0 {
				v[idx] -= 0x20
			}
		}
		variants = append(variants, v)
	}
	return variants
}
