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
	"regexp/syntax"
	"sort"
	"strconv"
	"strings"

	"github.com/coregx/coregex/nfa"
)

// extractFixedStrings finds the byte strings a match of re is
// guaranteed to contain: compile to a Thompson NFA, determinize it
// into a single-start/single-accept byte DFA, and walk forward from
// each immediate dominator of the accept state while it has exactly
// one outgoing edge. A regex with no required bytes (e.g. ".*")
// returns no strings (a nil slice): the caller falls back to an
// unfilterable result for that symbol.
func extractFixedStrings(re *syntax.Regexp) ([][]byte, error) {
	compiler := nfa.NewDefaultCompiler()
	n, err := compiler.CompileRegexp(re)
	if err != nil {
		return nil, err
	}

	d, accepts := determinize(n)
	if len(accepts) == 0 {
		return nil, nil
	}
	mergeAccept(d, accepts)

	idom := immediateDominators(d)
	return fixedStringsFromDominators(d, idom), nil
}

// epsilonClosure follows Split/Epsilon/Capture transitions (all
// zero-width, so none of them constrain required byte content) and
// returns every state reachable, including the byte-consuming and
// match states at the closure's boundary.
func epsilonClosure(n *nfa.NFA, ids []nfa.StateID) map[nfa.StateID]bool {
	closure := make(map[nfa.StateID]bool)
	stack := append([]nfa.StateID(nil), ids...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if closure[id] {
			continue
		}
		closure[id] = true
		st := n.State(id)
		switch st.Kind() {
		case nfa.StateEpsilon:
			stack = append(stack, st.Epsilon())
		case nfa.StateSplit:
			l, r := st.Split()
			stack = append(stack, l, r)
		case nfa.StateCapture:
			_, _, next := st.Capture()
			stack = append(stack, next)
		}
	}
	return closure
}

func containsMatch(n *nfa.NFA, closure map[nfa.StateID]bool) bool {
	for id := range closure {
		if n.State(id).IsMatch() {
			return true
		}
	}
	return false
}

func byteNexts(n *nfa.NFA, closure map[nfa.StateID]bool, b byte) []nfa.StateID {
	var nexts []nfa.StateID
	for id := range closure {
		st := n.State(id)
		switch st.Kind() {
		case nfa.StateByteRange:
			lo, hi, next := st.ByteRange()
			if b >= lo && b <= hi {
				nexts = append(nexts, next)
			}
		case nfa.StateSparse:
			for _, t := range st.Transitions() {
				if b >= t.Lo && b <= t.Hi {
					nexts = append(nexts, t.Next)
				}
			}
		}
	}
	return nexts
}

func closureKey(closure map[nfa.StateID]bool) string {
	ids := make([]int, 0, len(closure))
	for id := range closure {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	var b strings.Builder
	for _, id := range ids {
		b.WriteString(strconv.Itoa(id))
		b.WriteByte(',')
	}
	return b.String()
}

// determinize runs subset construction over the raw byte alphabet
// (0-255, not byte-class-compressed, for simplicity over small YARA
// regexes), returning the resulting DFA plus the set of its states
// that correspond to one or more NFA match states.
func determinize(n *nfa.NFA) (*byteDFA, map[int]bool) {
	start := epsilonClosure(n, []nfa.StateID{n.Start()})

	d := &byteDFA{start: 0}
	d.trans = append(d.trans, map[byte]int{})
	order := []map[nfa.StateID]bool{start}
	index := map[string]int{closureKey(start): 0}
	accepts := map[int]bool{}
	if containsMatch(n, start) {
		accepts[0] = true
	}

	for i := 0; i < len(order); i++ {
		cur := order[i]
		for b := 0; b < 256; b++ {
			nexts := byteNexts(n, cur, byte(b))
			if len(nexts) == 0 {
				continue
			}
			closure := epsilonClosure(n, nexts)
			key := closureKey(closure)
			idx, ok := index[key]
			if !ok {
				idx = len(order)
				index[key] = idx
				order = append(order, closure)
				d.trans = append(d.trans, map[byte]int{})
				if containsMatch(n, closure) {
					accepts[idx] = true
				}
			}
			d.trans[i][byte(b)] = idx
		}
	}
	return d, accepts
}

// mergeAccept collapses every accepting state into one synthetic
// accept by rerouting any edge that targets an accepting state onto
// it instead, then truncates the accept's (and any now-orphaned
// former accept's) outgoing edges: matching further past an accept
// contributes nothing to a required-substring walk.
func mergeAccept(d *byteDFA, accepts map[int]bool) {
	var accept int
	if len(accepts) == 1 {
		for s := range accepts {
			accept = s
		}
	} else {
		accept = len(d.trans)
		d.trans = append(d.trans, map[byte]int{})
		for s := range d.trans {
			for b, to := range d.trans[s] {
				if accepts[to] {
					d.trans[s][b] = accept
				}
			}
		}
	}
	d.trans[accept] = map[byte]int{}
	for s := range accepts {
		if s != accept {
			d.trans[s] = map[byte]int{}
		}
	}
	d.accept = accept
}

// fixedStringsFromDominators walks forward from every immediate
// dominator of the accept state (in start-to-accept order) while the
// current state has exactly one outgoing edge, collecting the bytes
// traversed into a candidate fixed string. Empty strings are dropped
// and duplicates deduped.
func fixedStringsFromDominators(d *byteDFA, idom map[int]int) [][]byte {
	var chain []int
	for s := d.accept; ; {
		chain = append(chain, s)
		if s == d.start {
			break
		}
		next, ok := idom[s]
		if !ok || next == s {
			break
		}
		s = next
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	seen := map[string]bool{}
	var out [][]byte
	for _, s := range chain {
		var buf []byte
		cur := s
		for len(d.trans[cur]) == 1 {
			var b byte
			var next int
			for bb, nn := range d.trans[cur] {
				b, next = bb, nn
			}
			buf = append(buf, b)
			cur = next
			if cur == d.accept {
				break
			}
		}
		if len(buf) == 0 {
			continue
		}
		key := string(buf)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, buf)
	}
	return out
}
