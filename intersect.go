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

// exactIntersect reads one posting list per n-gram in grams (skipping
// duplicates) and returns, in ascending order, every fid that appears
// in at least minMatches of them. Every list is read before any fid is
// counted; there is no early exit when the candidate set runs empty.
// More than 65536 distinct n-grams is ErrTooManyNGrams.
func exactIntersect(store shardStore, grams []ngram, minMatches int) ([]uint32, error) {
	uniq := dedupNGrams(grams)
	if len(uniq) > 65536 {
		return nil, ErrTooManyNGrams
	}

	lists := make([][]uint32, 0, len(uniq))
	for _, g := range uniq {
		l, err := readPostingList(store, g)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	sort.Slice(lists, func(i, j int) bool { return len(lists[i]) < len(lists[j]) })

	counts := make(map[uint32]int)
	for _, l := range lists {
		for _, fid := range l {
			counts[fid]++
		}
	}

	if minMatches < 1 {
		minMatches = 1
	}
	var out []uint32
	for fid, c := range counts {
		if c >= minMatches {
			out = append(out, fid)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// threeGramFallback unions the posting lists of every 4-gram extension
// of a 3-gram g (256 of them, one per possible fourth byte), producing
// a superset suitable for callers that only have a 3-byte index
// available for a required string shorter than 4 bytes.
func threeGramFallback(store shardStore, g ngram) ([]uint32, error) {
	union := make(map[uint32]struct{})
	base := ngramToBytes(g, 3)
	for b := 0; b < 256; b++ {
		ext := append(append([]byte{}, base...), byte(b))
		l, err := readPostingList(store, bytesToNGram(ext))
		if err != nil {
			return nil, err
		}
		for _, fid := range l {
			union[fid] = struct{}{}
		}
	}
	out := make([]uint32, 0, len(union))
	for fid := range union {
		out = append(out, fid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// groupIntersect runs the modular-group compressed-posting-list
// variant. For each n-gram, its exact posting list is read; if the
// list is no larger than tau (or tau is zero, which groups every
// list), it is replaced by the set of residues
// ("group ids") its fids leave modulo a width-specific prime (see
// primes.go) keyed by the n-gram's last byte, trading the exact fid
// for a cheaper-to-store approximation. An n-gram whose list exceeds
// tau is instead ANDed in directly, unmodified, as an exact prefilter
// (grouping a list that large would cost more than it saves). The
// n-gram with the smallest group is used as the enumeration seed: each
// of its residues is checked against every other n-gram's group (a
// candidate's residue mod that n-gram's prime must also appear there)
// and, if present, against the exact prefilter, then expanded across
// the whole shard by repeatedly adding the seed's prime up to
// numSamples. The result is a genuine fid superset, never a list of
// bare residues.
func groupIntersect(store shardStore, grams []ngram, groupWidth int, tau int, numSamples uint32) ([]uint32, error) {
	uniq := dedupNGrams(grams)
	if len(uniq) > 65536 {
		return nil, ErrTooManyNGrams
	}
	primes := primesForWidth(groupWidth)

	type group struct {
		prime uint64
		ids   map[uint32]struct{}
	}
	groups := make(map[ngram]group)

	var prefilter map[uint32]bool
	havePrefilter := false

	for _, g := range uniq {
		pl, err := readPostingList(store, g)
		if err != nil {
			return nil, err
		}
		if tau > 0 && len(pl) > tau {
			set := sliceToFidSet(pl)
			if !havePrefilter {
				prefilter, havePrefilter = set, true
			} else {
				prefilter = intersectFidSets(prefilter, set)
			}
			continue
		}
		p := primes[byte(g)]
		ids := make(map[uint32]struct{}, len(pl))
		for _, fid := range pl {
			ids[uint32(uint64(fid)%p)] = struct{}{}
		}
		groups[g] = group{prime: p, ids: ids}
	}

	if len(groups) == 0 {
		if !havePrefilter {
			return nil, nil
		}
		return fidSetToSlice(prefilter), nil
	}

	var minGram ngram
	var minGroup group
	first := true
	for g, grp := range groups {
		if first || len(grp.ids) < len(minGroup.ids) {
			minGram, minGroup = g, grp
			first = false
		}
	}

	seen := make(map[uint32]struct{})
	queue := make([]uint32, 0, len(minGroup.ids))
	for gid := range minGroup.ids {
		queue = append(queue, gid)
	}

	var out []uint32
	for len(queue) > 0 {
		gid := queue[0]
		queue = queue[1:]
		if _, dup := seen[gid]; dup {
			continue
		}
		seen[gid] = struct{}{}

		if !havePrefilter || prefilter[gid] {
			agree := true
			for g, grp := range groups {
				if g == minGram {
					continue
				}
				if _, in := grp.ids[uint32(uint64(gid)%grp.prime)]; !in {
					agree = false
					break
				}
			}
			if agree {
				out = append(out, gid)
			}
		}

		next := gid + uint32(minGroup.prime)
		if numSamples == 0 || next < numSamples {
			queue = append(queue, next)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func dedupNGrams(grams []ngram) []ngram {
	seen := make(map[ngram]struct{}, len(grams))
	out := make([]ngram, 0, len(grams))
	for _, g := range grams {
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}
