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

// Package rule defines the shape of a parsed pattern-matching rule, as
// handed to this module by an external parser. Nothing here parses
// rule text; it only fixes the contract the rest of the module reads.
package rule

// Kind tags the concrete type behind a Node, so callers can dispatch
// with a type switch rather than a method-per-shape visitor.
type Kind int

const (
	KindAnd Kind = iota
	KindOr
	KindNot
	KindGroup      // a parenthesized sub-expression
	KindStringRef  // $a, reference to one declared String
	KindOf         // N of (...), all of them, any of them
	KindForString  // for <var> in <string set> : ( <body> )
	KindForInt     // for <var> in <int range/set> : ( <body> )
	KindSet        // (<el>, <el>, ...)
	KindFieldEq    // struct.field == value
	KindFuncCall   // pe.exports("name")
	KindBoolConst  // true / false literal
)

// Node is one node of a rule's condition AST.
type Node interface {
	Kind() Kind
	Text() string
}

// BinaryNode covers And/Or: LeftOperand and RightOperand are the two
// sub-expressions being combined.
type BinaryNode interface {
	Node
	LeftOperand() Node
	RightOperand() Node
}

// UnaryNode covers Not/Group: Operand (Not) or EnclosedExpr (Group) is
// the single sub-expression.
type UnaryNode interface {
	Node
	Operand() Node
	EnclosedExpr() Node
}

// OfNode covers "N of (...)"/"all of them"/"any of them".
type OfNode interface {
	Node
	Quantifier() string // a literal count, "all", or "any"
	Elements() []Node
}

// ForNode covers "for <var> in <set> : ( <body> )". Its Kind
// distinguishes the two shapes: KindForString iterates a set of
// declared strings and is byte-dependent (a quantifier over string
// matches, simplified the same way OfNode is); KindForInt iterates an
// integer range or set and is pure logical structure around Body() —
// the loop variable never changes which bytes Body() depends on, so
// IteratedSet() contributes nothing to the condition's formula.
type ForNode interface {
	Node
	Variable() string
	IteratedSet() []Node
	Body() Node
}

// FuncCallNode covers recognized function calls such as pe.exports(...).
type FuncCallNode interface {
	Node
	FunctionText() string
	Arguments() []Node
}

// FieldEqNode covers struct-field equality such as pe.machine == 0x14c.
type FieldEqNode interface {
	Node
	FieldName() string
	Value() []byte
}

// StringRefNode covers a reference to one declared string ($a, $a*).
type StringRefNode interface {
	Node
	ID() string
}

// String is one declared string in a rule's strings section.
type String struct {
	ID       string
	Text     string // for plain/regex/hex text, exactly as declared
	IsHex    bool
	IsRegex  bool
	NoCase   bool
	Wide     bool
	Ascii    bool
	Fullword bool
}

// Rule is a full parsed rule: its declared strings plus its condition
// AST.
type Rule struct {
	Name      string
	Strings   []String
	Condition Node
}
