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
	"bytes"
	"fmt"
)

// hexToStreaks turns a YARA hex pattern body (without the surrounding
// { }) into the maximal runs of fully-determined bytes it requires,
// tracking paren/bracket depth so that jump/alternation/wildcard
// constructs correctly terminate a streak instead of corrupting it.
// Whitespace between byte pairs is skipped; any other character
// outside a streak that is neither a hex digit nor one of the
// structural characters below is an error.
func hexToStreaks(pattern string) ([][]byte, error) {
	var streaks [][]byte
	var cur []byte
	parenDepth := 0
	bracketDepth := 0

	flush := func() {
		if len(cur) > 0 {
			streaks = append(streaks, cur)
			cur = nil
		}
	}

	i := 0
	for i < len(pattern) {
		c := pattern[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			parenDepth++
			flush()
			i++
		case c == ')':
			if parenDepth == 0 {
				return nil, fmt.Errorf("hex pattern: unmatched ')'")
			}
			parenDepth--
			flush()
			i++
		case c == '[':
			bracketDepth++
			flush()
			i++
		case c == ']':
			if bracketDepth == 0 {
				return nil, fmt.Errorf("hex pattern: unmatched ']'")
			}
			bracketDepth--
			flush()
			i++
		case c == '?':
			flush()
			i++
			// ?? or a single-nibble wildcard both terminate the streak;
			// skip the paired nibble if present.
			if i < len(pattern) && (pattern[i] == '?' || isHexDigit(pattern[i])) {
				i++
			}
		case c == '-' || c == '|':
			flush()
			i++
		case parenDepth > 0 || bracketDepth > 0:
			// Inside a jump/alternation, digits are range bounds or
			// alternatives, not literal content.
			i++
		case isHexDigit(c):
			if i+1 < len(pattern) && pattern[i+1] == '?' {
				// A high-nibble-only byte such as 4? is a wildcard too.
				flush()
				i += 2
				continue
			}
			if i+1 >= len(pattern) || !isHexDigit(pattern[i+1]) {
				return nil, fmt.Errorf("hex pattern: odd number of hex digits at offset %d", i)
			}
			b := hexVal(c)<<4 | hexVal(pattern[i+1])
			cur = append(cur, b)
			i += 2
		default:
			return nil, fmt.Errorf("hex pattern: unexpected character %q at offset %d", c, i)
		}
	}
	if parenDepth != 0 || bracketDepth != 0 {
		return nil, fmt.Errorf("hex pattern: unbalanced depth markers")
	}
	flush()
	return dedupStreaks(streaks), nil
}

// dedupStreaks returns streaks with duplicate byte runs collapsed,
// keeping the first occurrence's position so output stays deterministic.
func dedupStreaks(streaks [][]byte) [][]byte {
	out := make([][]byte, 0, len(streaks))
	for _, s := range streaks {
		dup := false
		for _, o := range out {
			if bytes.Equal(s, o) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, s)
		}
	}
	return out
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// mkwide interleaves a trailing 0x00 after every byte of b, producing
// the UTF-16LE encoding of an ASCII-range literal.
func mkwide(b []byte) []byte {
	out := make([]byte, 0, len(b)*2)
	for _, c := range b {
		out = append(out, c, 0)
	}
	return out
}

// widthVariants returns the literal byte strings a declared string
// produces once its wide/ascii flags are applied: ascii-only, wide-only,
// or both, per spec.md's width-adaptation rule.
func widthVariants(data []byte, wide, ascii bool) [][]byte {
	if !wide && !ascii {
		ascii = true
	}
	var out [][]byte
	if ascii {
		out = append(out, data)
	}
	if wide {
		out = append(out, mkwide(data))
	}
	return out
}
