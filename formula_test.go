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
	"testing"

	"github.com/sabresec/yarix/rule"
)

type stringRefNode struct{ id string }

func (n *stringRefNode) Kind() rule.Kind { return rule.KindStringRef }
func (n *stringRefNode) Text() string    { return "$" + n.id }
func (n *stringRefNode) ID() string      { return n.id }

type binNode struct {
	kind rule.Kind
	l, r rule.Node
}

func (n *binNode) Kind() rule.Kind         { return n.kind }
func (n *binNode) Text() string            { return "" }
func (n *binNode) LeftOperand() rule.Node  { return n.l }
func (n *binNode) RightOperand() rule.Node { return n.r }

type notNode struct{ operand rule.Node }

func (n *notNode) Kind() rule.Kind         { return rule.KindNot }
func (n *notNode) Text() string            { return "" }
func (n *notNode) Operand() rule.Node      { return n.operand }
func (n *notNode) EnclosedExpr() rule.Node { return nil }

type forIntNode struct{ body rule.Node }

func (n *forIntNode) Kind() rule.Kind          { return rule.KindForInt }
func (n *forIntNode) Text() string             { return "" }
func (n *forIntNode) Variable() string         { return "i" }
func (n *forIntNode) IteratedSet() []rule.Node { return nil }
func (n *forIntNode) Body() rule.Node          { return n.body }

func and(l, r rule.Node) rule.Node { return &binNode{kind: rule.KindAnd, l: l, r: r} }
func or(l, r rule.Node) rule.Node  { return &binNode{kind: rule.KindOr, l: l, r: r} }
func not(n rule.Node) rule.Node    { return &notNode{operand: n} }

func literalsOf(c Clause) map[int]bool {
	m := map[int]bool{}
	for _, l := range c {
		key := l.Symbol
		if l.Negated {
			key = -key - 1000
		}
		m[key] = true
	}
	return m
}

func TestFormulaAndProducesSingleDNFClause(t *testing.T) {
	a, b := &stringRefNode{id: "a"}, &stringRefNode{id: "b"}
	f := buildFormula(and(a, b))
	dnf := toDNF(f)
	if len(dnf) != 1 || len(dnf[0]) != 2 {
		t.Fatalf("got %v", dnf)
	}
	cnf := toCNF(f)
	if len(cnf) != 2 {
		t.Fatalf("got %v, want 2 unit clauses", cnf)
	}
}

func TestFormulaOrProducesSingleCNFClause(t *testing.T) {
	a, b := &stringRefNode{id: "a"}, &stringRefNode{id: "b"}
	f := buildFormula(or(a, b))
	cnf := toCNF(f)
	if len(cnf) != 1 || len(cnf[0]) != 2 {
		t.Fatalf("got %v", cnf)
	}
	dnf := toDNF(f)
	if len(dnf) != 2 {
		t.Fatalf("got %v, want 2 unit clauses", dnf)
	}
}

func TestFormulaNotDeMorgan(t *testing.T) {
	a, b := &stringRefNode{id: "a"}, &stringRefNode{id: "b"}
	f := buildFormula(not(and(a, b)))
	dnf := toDNF(f)
	if len(dnf) != 2 {
		t.Fatalf("got %v, want 2 clauses (De Morgan: OR of negations)", dnf)
	}
	seen := map[int]bool{}
	for _, c := range dnf {
		if len(c) != 1 || !c[0].Negated {
			t.Errorf("clause %v: want single negated literal", c)
			continue
		}
		for key := range literalsOf(c) {
			seen[key] = true
		}
	}
	if len(seen) != 2 {
		t.Errorf("want the two clauses to negate distinct symbols, got %v", seen)
	}
}

func TestFormulaForIntRecursesIntoBody(t *testing.T) {
	a, b := &stringRefNode{id: "a"}, &stringRefNode{id: "b"}
	fi := &forIntNode{body: and(a, b)}
	f := buildFormula(fi)
	if len(f.Symbols) != 2 {
		t.Fatalf("got %d symbols, want 2 (for_int contributes no symbol of its own)", len(f.Symbols))
	}
	dnf := toDNF(f)
	if len(dnf) != 1 || len(dnf[0]) != 2 {
		t.Fatalf("got %v, want the body's own single AND clause", dnf)
	}
}

func TestFormulaSameNodeSharesSymbol(t *testing.T) {
	a := &stringRefNode{id: "a"}
	f := buildFormula(and(a, a))
	if len(f.Symbols) != 1 {
		t.Fatalf("got %d symbols, want 1 (same node reused)", len(f.Symbols))
	}
}
