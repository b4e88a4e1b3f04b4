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

import "sort"

// byteDFA is a deterministic, byte-labeled automaton with a single
// start state (0) and a single accept state (set at construction).
// States past the accept state are not reachable; regexextract.go
// builds one of these from an NFA via subset construction, merging
// every NFA-match-containing subset into one synthetic accept id.
type byteDFA struct {
	start, accept int
	trans         []map[byte]int // trans[state][b] = next state
}

// immediateDominators computes, for every state reachable from start,
// the immediate dominator of that state (the unique closest ancestor
// through which every path from start must pass). Computed with the
// standard iterative dataflow formulation (Cooper, Harvey, Kennedy):
// no dominator-tree library exists anywhere in the retrieved corpus,
// so this is hand-rolled directly against byteDFA's adjacency.
//
// idom[start] == start by convention; states unreachable from start
// are absent from the result.
func immediateDominators(d *byteDFA) map[int]int {
	order, rpoIndex := reversePostorder(d)
	if len(order) == 0 {
		return nil
	}

	preds := predecessors(d, order)

	idom := make(map[int]int, len(order))
	idom[d.start] = d.start

	changed := true
	for changed {
		changed = false
		for _, n := range order[1:] { // skip start
			var newIdom int
			haveIdom := false
			for _, p := range preds[n] {
				if _, ok := idom[p]; !ok {
					continue
				}
				if !haveIdom {
					newIdom = p
					haveIdom = true
					continue
				}
				newIdom = intersect(idom, rpoIndex, newIdom, p)
			}
			if !haveIdom {
				continue
			}
			if cur, ok := idom[n]; !ok || cur != newIdom {
				idom[n] = newIdom
				changed = true
			}
		}
	}
	return idom
}

func intersect(idom map[int]int, rpoIndex map[int]int, a, b int) int {
	for a != b {
		for rpoIndex[a] > rpoIndex[b] {
			a = idom[a]
		}
		for rpoIndex[b] > rpoIndex[a] {
			b = idom[b]
		}
	}
	return a
}

// reversePostorder returns the states reachable from d.start in
// reverse-postorder (the order the dominator dataflow needs to
// converge in one or two passes), plus each state's index in that
// order.
func reversePostorder(d *byteDFA) ([]int, map[int]int) {
	visited := make(map[int]bool)
	var post []int

	var visit func(n int)
	visit = func(n int) {
		if visited[n] {
			return
		}
		visited[n] = true
		nexts := make([]int, 0, len(d.trans[n]))
		for _, to := range d.trans[n] {
			nexts = append(nexts, to)
		}
		sort.Ints(nexts)
		for _, to := range nexts {
			visit(to)
		}
		post = append(post, n)
	}
	visit(d.start)

	order := make([]int, len(post))
	for i, n := range post {
		order[len(post)-1-i] = n
	}
	idx := make(map[int]int, len(order))
	for i, n := range order {
		idx[n] = i
	}
	return order, idx
}

func predecessors(d *byteDFA, order []int) map[int][]int {
	preds := make(map[int][]int)
	inOrder := make(map[int]bool, len(order))
	for _, n := range order {
		inOrder[n] = true
	}
	for _, n := range order {
		for _, to := range d.trans[n] {
			if inOrder[to] {
				preds[to] = append(preds[to], n)
			}
		}
	}
	return preds
}
