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
	"context"
	"errors"
	"regexp/syntax"

	"github.com/sabresec/yarix/rule"
)

// Evaluator filters one rule against one index shard, returning a
// superset of the fids that could match. It holds only its index and
// options and keeps no group-result cache: a group that appears under
// several symbols is looked up again each time it is evaluated.
type Evaluator struct {
	idx  *Index
	opts Options
}

// NewEvaluator builds an Evaluator for idx; opts.SetDefaults is called
// automatically for zero-valued fields.
func NewEvaluator(idx *Index, opts Options) *Evaluator {
	opts.SetDefaults()
	return &Evaluator{idx: idx, opts: opts}
}

// Evaluate filters r against the evaluator's index. A false second
// return value means the candidate set is not a genuine filter and
// every file in the shard must be scanned; it is not an error.
func (e *Evaluator) Evaluate(ctx context.Context, r *rule.Rule) ([]uint32, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	strTab, err := buildStringTable(r.Strings)
	if err != nil {
		metricRuleEvalTotal.WithLabelValues(outcomeError).Inc()
		return nil, false, err
	}

	f := buildFormula(r.Condition)
	symbols := make([]simplifiedSymbol, len(f.Symbols))
	for i, sn := range f.Symbols {
		symbols[i] = simplify(sn, strTab, e.opts.LowerBound)
	}

	cnf := toCNF(f)
	dnf := toDNF(f)

	var (
		fids []uint32
		ok   bool
	)
	if clauseLiteralCount(dnf) <= clauseLiteralCount(cnf) {
		fids, ok, err = e.combineDNF(ctx, dnf, symbols)
	} else {
		fids, ok, err = e.combineCNF(ctx, cnf, symbols)
	}

	switch {
	case err != nil:
		var to *TimeoutError
		if errors.As(err, &to) {
			metricRuleEvalTotal.WithLabelValues(outcomeTimeout).Inc()
		} else {
			metricRuleEvalTotal.WithLabelValues(outcomeError).Inc()
		}
		return nil, false, err
	case ok:
		metricRuleEvalTotal.WithLabelValues(outcomeFiltered).Inc()
	default:
		metricRuleEvalTotal.WithLabelValues(outcomeUnfiltered).Inc()
	}
	return fids, ok, nil
}

// combineDNF implements the union-of-intersections combination: any
// clause containing a negated or unfilterable literal makes the whole
// rule unfilterable, since negation never contributes a tightenable
// filter and DNF has no way to drop just that clause without
// potentially excluding a real match.
func (e *Evaluator) combineDNF(ctx context.Context, clauses []Clause, symbols []simplifiedSymbol) ([]uint32, bool, error) {
	union := map[uint32]bool{}
	for _, clause := range clauses {
		if err := ctx.Err(); err != nil {
			return nil, false, &TimeoutError{Elapsed: e.opts.Timeout.String()}
		}
		var sets []map[uint32]bool
		unfilterable := false
		for _, lit := range clause {
			if lit.Negated {
				unfilterable = true
				break
			}
			set, ok, err := e.evalSymbol(ctx, symbols[lit.Symbol])
			if err != nil {
				return nil, false, err
			}
			if !ok {
				unfilterable = true
				break
			}
			sets = append(sets, set)
		}
		if unfilterable {
			return nil, false, nil
		}
		clauseSet := intersectAll(sets)
		for fid := range clauseSet {
			union[fid] = true
		}
	}
	return fidSetToSlice(union), true, nil
}

// combineCNF implements the intersection-of-unions combination: a
// clause containing a negated or unfilterable literal is skipped
// (treated as the universe, contributing no constraint), rather than
// invalidating the whole rule, since AND-ing in "everything" leaves
// the remaining clauses' intersection untouched.
func (e *Evaluator) combineCNF(ctx context.Context, clauses []Clause, symbols []simplifiedSymbol) ([]uint32, bool, error) {
	var result map[uint32]bool
	have := false
	for _, clause := range clauses {
		if err := ctx.Err(); err != nil {
			return nil, false, &TimeoutError{Elapsed: e.opts.Timeout.String()}
		}
		var sets []map[uint32]bool
		skip := false
		for _, lit := range clause {
			if lit.Negated {
				skip = true
				break
			}
			set, ok, err := e.evalSymbol(ctx, symbols[lit.Symbol])
			if err != nil {
				return nil, false, err
			}
			if !ok {
				skip = true
				break
			}
			sets = append(sets, set)
		}
		if skip {
			continue
		}
		clauseSet := unionAll(sets)
		if !have {
			result = clauseSet
			have = true
			continue
		}
		result = intersectFidSets(result, clauseSet)
	}
	if !have {
		return nil, false, nil
	}
	return fidSetToSlice(result), true, nil
}

// evalSymbol computes the fid set satisfying at least sym.n of its
// alternative groups. A group this evaluator cannot decide on (a
// string too short to index) is treated as satisfied everywhere,
// since that is the only way to keep the result a safe superset.
func (e *Evaluator) evalSymbol(ctx context.Context, sym simplifiedSymbol) (map[uint32]bool, bool, error) {
	if sym.n == 0 {
		return nil, false, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, false, &TimeoutError{Elapsed: e.opts.Timeout.String()}
	}

	var groupSets []map[uint32]bool
	freeSatisfied := 0
	for _, group := range sym.alternatives {
		metricGroupsEvaluatedTotal.Inc()
		set, ok, err := e.evalGroup(ctx, group)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			freeSatisfied++
			continue
		}
		groupSets = append(groupSets, set)
	}

	needed := sym.n - freeSatisfied
	if needed <= 0 {
		return nil, false, nil
	}
	if needed > len(groupSets) {
		return nil, false, nil
	}

	counts := map[uint32]int{}
	for _, set := range groupSets {
		for fid := range set {
			counts[fid]++
		}
	}
	out := map[uint32]bool{}
	for fid, c := range counts {
		if c >= needed {
			out[fid] = true
		}
	}
	return out, true, nil
}

func (e *Evaluator) evalGroup(ctx context.Context, group []YaraString) (map[uint32]bool, bool, error) {
	var sets []map[uint32]bool
	for _, s := range group {
		set, ok, err := e.evalString(ctx, s)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		sets = append(sets, set)
	}
	if len(sets) == 0 {
		return nil, false, nil
	}
	return intersectAll(sets), true, nil
}

func (e *Evaluator) evalString(ctx context.Context, s YaraString) (map[uint32]bool, bool, error) {
	width := e.opts.LowerBound
	if len(s.Data) < width {
		return nil, false, nil
	}

	var grams []ngram
	if s.NoCase {
		for i := 0; i+width <= len(s.Data); i++ {
			for _, v := range caseVariants(s.Data[i : i+width]) {
				grams = append(grams, bytesToNGram(v))
			}
		}
	} else {
		grams = ngramsOf(s.Data, width)
	}
	uniq := dedupNGrams(grams)
	if len(uniq) == 0 {
		return nil, false, nil
	}

	var (
		fids []uint32
		err  error
	)
	switch {
	case width == 3:
		// The on-disk prefix-file format always keys its 256 header
		// slots by a 4-byte n-gram's last byte (section.go); a 3-byte
		// n-gram has no native posting list and is instead expanded
		// across all 256 fourth-byte extensions before grouping could
		// even apply.
		var perGram []map[uint32]bool
		for _, g := range uniq {
			l, ferr := threeGramFallback(e.idx.store, g)
			if ferr != nil {
				return nil, false, ferr
			}
			perGram = append(perGram, sliceToFidSet(l))
		}
		if s.NoCase {
			return unionAll(perGram), true, nil
		}
		return intersectAll(perGram), true, nil
	case s.NoCase:
		// A case-insensitive string can match through any one of its
		// case variants, so the variants' posting lists are unioned.
		fids, err = exactIntersect(e.idx.store, uniq, 1)
	case e.opts.GroupWidth > 0:
		n, nerr := e.idx.numSamples()
		if nerr != nil {
			return nil, false, nerr
		}
		fids, err = groupIntersect(e.idx.store, uniq, e.opts.GroupWidth, e.opts.Tau, n)
	default:
		fids, err = exactIntersect(e.idx.store, uniq, len(uniq))
	}
	if err != nil {
		return nil, false, err
	}
	metricPostingBytesReadTotal.Add(float64(len(fids) * 4))
	return sliceToFidSet(fids), true, nil
}

func buildStringTable(decls []rule.String) (stringTable, error) {
	tab := make(stringTable, len(decls))
	for _, d := range decls {
		var groups [][]YaraString
		switch {
		case d.IsHex:
			streaks, err := hexToStreaks(d.Text)
			if err != nil {
				return nil, err
			}
			groups = widthGroupsFromSet(streaks, d.Wide, d.Ascii, d.NoCase)
		case d.IsRegex:
			re, err := syntax.Parse(d.Text, syntax.Perl)
			if err != nil {
				return nil, err
			}
			strs, err := extractFixedStrings(re)
			if err != nil {
				return nil, err
			}
			groups = widthGroupsFromSet(strs, d.Wide, d.Ascii, d.NoCase)
		default:
			for _, v := range widthVariants([]byte(d.Text), d.Wide, d.Ascii) {
				groups = append(groups, []YaraString{{Data: v, NoCase: d.NoCase}})
			}
		}
		tab[d.ID] = groups
	}
	return tab, nil
}

// widthGroupsFromSet turns the fixed strings or hex streaks extracted
// from one regex/hex declaration into one AND-group per requested
// width variant (ascii, wide): a file must contain every member of a
// group together to satisfy that variant, matching the "AND" join the
// original's evaluate_rule performs over a single string's extracted
// pieces; ascii and wide remain separate, OR'd alternatives.
func widthGroupsFromSet(set [][]byte, wide, ascii, noCase bool) [][]YaraString {
	if !wide && !ascii {
		ascii = true
	}
	var groups [][]YaraString
	if ascii {
		var g []YaraString
		for _, s := range set {
			g = append(g, YaraString{Data: s, NoCase: noCase})
		}
		if len(g) > 0 {
			groups = append(groups, g)
		}
	}
	if wide {
		var g []YaraString
		for _, s := range set {
			g = append(g, YaraString{Data: mkwide(s), NoCase: noCase})
		}
		if len(g) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

func sliceToFidSet(fids []uint32) map[uint32]bool {
	out := make(map[uint32]bool, len(fids))
	for _, f := range fids {
		out[f] = true
	}
	return out
}

func fidSetToSlice(set map[uint32]bool) []uint32 {
	out := make([]uint32, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	return out
}

func intersectFidSets(a, b map[uint32]bool) map[uint32]bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	out := make(map[uint32]bool)
	for f := range a {
		if b[f] {
			out[f] = true
		}
	}
	return out
}

func intersectAll(sets []map[uint32]bool) map[uint32]bool {
	if len(sets) == 0 {
		return map[uint32]bool{}
	}
	out := sets[0]
	for _, s := range sets[1:] {
		out = intersectFidSets(out, s)
	}
	return out
}

func unionAll(sets []map[uint32]bool) map[uint32]bool {
	out := map[uint32]bool{}
	for _, s := range sets {
		for f := range s {
			out[f] = true
		}
	}
	return out
}
