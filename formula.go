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

import "github.com/sabresec/yarix/rule"

type fkind int

const (
	fSymbol fkind = iota
	fNot
	fAnd
	fOr
	fConst
)

// fnode is a node of a rule condition's boolean expression tree, built
// directly from the rule AST rather than assembled as text and
// evaluated later. Every atomic (byte-dependent) sub-expression is
// assigned a fresh symbol id the first time it is seen; the logical
// connectives (and/or/not/group) become fAnd/fOr/fNot nodes around it.
type fnode struct {
	kind  fkind
	sym   int  // valid when kind == fSymbol
	value bool // constant when kind == fConst; negation flag of an fSymbol after nnf
	sub   []*fnode
}

// Formula is a translated rule condition: its expression tree plus the
// rule-AST node each symbol stands for.
type Formula struct {
	Root    *fnode
	Symbols []rule.Node
}

// buildFormula translates a rule condition into a Formula. Every
// shape of spec.md's condition grammar that carries byte-dependent
// content (string refs, of/for quantifiers, field equality, recognized
// function calls) becomes a fresh symbol; and/or/not/group become the
// matching tree connective.
func buildFormula(cond rule.Node) *Formula {
	b := &formulaBuilder{symbolIndex: map[rule.Node]int{}}
	root := b.walk(cond)
	return &Formula{Root: root, Symbols: b.symbols}
}

type formulaBuilder struct {
	symbols     []rule.Node
	symbolIndex map[rule.Node]int
}

func (b *formulaBuilder) symbolFor(n rule.Node) *fnode {
	if id, ok := b.symbolIndex[n]; ok {
		return &fnode{kind: fSymbol, sym: id}
	}
	id := len(b.symbols)
	b.symbols = append(b.symbols, n)
	b.symbolIndex[n] = id
	return &fnode{kind: fSymbol, sym: id}
}

func (b *formulaBuilder) walk(n rule.Node) *fnode {
	switch n.Kind() {
	case rule.KindAnd:
		bn := n.(rule.BinaryNode)
		return &fnode{kind: fAnd, sub: []*fnode{b.walk(bn.LeftOperand()), b.walk(bn.RightOperand())}}
	case rule.KindOr:
		bn := n.(rule.BinaryNode)
		return &fnode{kind: fOr, sub: []*fnode{b.walk(bn.LeftOperand()), b.walk(bn.RightOperand())}}
	case rule.KindNot:
		un := n.(rule.UnaryNode)
		return &fnode{kind: fNot, sub: []*fnode{b.walk(un.Operand())}}
	case rule.KindGroup:
		un := n.(rule.UnaryNode)
		return b.walk(un.EnclosedExpr())
	case rule.KindBoolConst:
		return &fnode{kind: fConst, value: n.Text() == "true"}
	case rule.KindForInt:
		// Pure logical structure: the loop variable ranges over
		// integers, never bytes, so only the body contributes symbols;
		// the same body formula applies to every iteration.
		fn := n.(rule.ForNode)
		return b.walk(fn.Body())
	default:
		// StringRef, Of, ForString, FieldEq, FuncCall, Set: all
		// byte-dependent leaves, simplified separately by simplify.go.
		return b.symbolFor(n)
	}
}

// Literal is one (possibly negated) symbol reference in a clause.
type Literal struct {
	Symbol  int
	Negated bool
}

// Clause is an AND-of-literals (for DNF) or OR-of-literals (for CNF).
type Clause []Literal

// nnf pushes negation down to symbols and constants (De Morgan),
// producing a tree with no fNot nodes: a negated symbol is an fSymbol
// whose value field is true.
func nnf(n *fnode, negate bool) *fnode {
	switch n.kind {
	case fSymbol:
		return &fnode{kind: fSymbol, sym: n.sym, value: negate}
	case fConst:
		v := n.value
		if negate {
			v = !v
		}
		return &fnode{kind: fConst, value: v}
	case fNot:
		return nnf(n.sub[0], !negate)
	case fAnd:
		k := fAnd
		if negate {
			k = fOr
		}
		return &fnode{kind: k, sub: []*fnode{nnf(n.sub[0], negate), nnf(n.sub[1], negate)}}
	case fOr:
		k := fOr
		if negate {
			k = fAnd
		}
		return &fnode{kind: k, sub: []*fnode{nnf(n.sub[0], negate), nnf(n.sub[1], negate)}}
	}
	return n
}

// toDNF returns the formula as a list of AND-clauses, any one of which
// satisfies the whole formula (an OR of ANDs). No algebraic
// simplification is applied beyond dropping a literal repeated within
// one clause: clauses may repeat, and a clause may hold a symbol both
// plain and negated, preserving the one-to-one symbol mapping the
// evaluator relies on.
func toDNF(f *Formula) []Clause {
	n := nnf(f.Root, false)
	return dedupLiterals(dnfOf(n))
}

func dnfOf(n *fnode) []Clause {
	switch n.kind {
	case fSymbol:
		return []Clause{{{Symbol: n.sym, Negated: n.value}}}
	case fConst:
		if n.value {
			return []Clause{{}}
		}
		return nil
	case fOr:
		var out []Clause
		for _, s := range n.sub {
			out = append(out, dnfOf(s)...)
		}
		return out
	case fAnd:
		left := dnfOf(n.sub[0])
		right := dnfOf(n.sub[1])
		var out []Clause
		for _, l := range left {
			for _, r := range right {
				c := make(Clause, 0, len(l)+len(r))
				c = append(c, l...)
				c = append(c, r...)
				out = append(out, c)
			}
		}
		return out
	}
	return nil
}

// toCNF returns the formula as a list of OR-clauses, all of which must
// hold (an AND of ORs). Same no-simplification policy as toDNF.
func toCNF(f *Formula) []Clause {
	n := nnf(f.Root, false)
	return dedupLiterals(cnfOf(n))
}

// dedupLiterals drops repeated literals within each clause, keeping
// the first occurrence's position.
func dedupLiterals(cs []Clause) []Clause {
	for i, c := range cs {
		seen := make(map[Literal]bool, len(c))
		out := make(Clause, 0, len(c))
		for _, l := range c {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
		cs[i] = out
	}
	return cs
}

func cnfOf(n *fnode) []Clause {
	switch n.kind {
	case fSymbol:
		return []Clause{{{Symbol: n.sym, Negated: n.value}}}
	case fConst:
		if n.value {
			return nil
		}
		return []Clause{{}}
	case fAnd:
		var out []Clause
		for _, s := range n.sub {
			out = append(out, cnfOf(s)...)
		}
		return out
	case fOr:
		left := cnfOf(n.sub[0])
		right := cnfOf(n.sub[1])
		var out []Clause
		for _, l := range left {
			for _, r := range right {
				c := make(Clause, 0, len(l)+len(r))
				c = append(c, l...)
				c = append(c, r...)
				out = append(out, c)
			}
		}
		return out
	}
	return nil
}

// clauseLiteralCount totals the literals across every clause, the cost
// metric the evaluator uses to pick between CNF and DNF.
func clauseLiteralCount(cs []Clause) int {
	n := 0
	for _, c := range cs {
		n += len(c)
	}
	return n
}
