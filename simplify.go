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
	"strconv"
	"strings"

	"github.com/sabresec/yarix/rule"
)

// YaraString is one concrete byte pattern a symbol can be satisfied by,
// after hex-streak and regex fixed-string extraction and wide/ascii
// width adaptation.
type YaraString struct {
	Data   []byte
	NoCase bool
}

// simplifiedSymbol is the per-symbol result of simplification: n of
// the alternative groups must each be fully satisfied (every string in
// a satisfied group must be present) for the symbol to hold. An
// undecidable shape simplifies to n == 0, the same "can't filter on
// this" signal as a negated symbol.
type simplifiedSymbol struct {
	n            int
	alternatives [][]YaraString
}

// stringTable resolves a declared string's id to its extracted literal
// groups: one group per width variant (ascii, wide) the declaration
// produces. A plain string's group is always a single literal; a hex
// or regex declaration's group holds every fixed string/streak
// extracted from that one pattern, since a file must contain all of
// them together to satisfy that width variant.
type stringTable map[string][][]YaraString

// simplify translates one atomic rule-AST node (a symbol's source
// node) into a simplifiedSymbol, given the rule's declared strings and
// a lowerBound (3 or 4) below which a literal is too short to be
// indexed and is treated as undecidable.
func simplify(n rule.Node, strings_ stringTable, lowerBound int) simplifiedSymbol {
	switch n.Kind() {
	case rule.KindStringRef:
		ref := n.(rule.StringRefNode)
		return simplifyStringRef(ref.ID(), strings_, lowerBound)

	case rule.KindOf:
		of := n.(rule.OfNode)
		return simplifyOf(of, strings_, lowerBound)

	case rule.KindForString:
		fn := n.(rule.ForNode)
		return simplifyFor(fn, strings_, lowerBound)

	case rule.KindFieldEq:
		fe := n.(rule.FieldEqNode)
		return simplifyFieldEq(fe)

	case rule.KindFuncCall:
		fc := n.(rule.FuncCallNode)
		return simplifyFuncCall(fc)

	default:
		return simplifiedSymbol{n: 0}
	}
}

func simplifyStringRef(id string, strings_ stringTable, lowerBound int) simplifiedSymbol {
	var groups [][]YaraString
	for _, g := range strings_[id] {
		filtered := filterShort(g, lowerBound)
		if len(filtered) == 0 {
			continue
		}
		groups = append(groups, filtered)
	}
	if len(groups) == 0 {
		return simplifiedSymbol{n: 0}
	}
	// A single string reference is satisfied by any one of its width
	// variants (ascii, wide): one OR'd alternative group per variant,
	// each an AND of every literal that variant requires together.
	return simplifiedSymbol{n: 1, alternatives: groups}
}

func simplifyOf(of rule.OfNode, strings_ stringTable, lowerBound int) simplifiedSymbol {
	elems := of.Elements()
	var groups [][]YaraString
	for _, el := range elems {
		sub := simplify(el, strings_, lowerBound)
		if sub.n == 0 {
			continue
		}
		groups = append(groups, flattenRequired(sub)...)
	}
	if len(groups) == 0 {
		return simplifiedSymbol{n: 0}
	}

	q := of.Quantifier()
	switch q {
	case "all":
		return simplifiedSymbol{n: len(groups), alternatives: groups}
	case "any":
		return simplifiedSymbol{n: 1, alternatives: groups}
	default:
		k, err := strconv.Atoi(q)
		if err != nil || k < 1 {
			return simplifiedSymbol{n: 0}
		}
		if k > len(groups) {
			k = len(groups)
		}
		return simplifiedSymbol{n: k, alternatives: groups}
	}
}

// flattenRequired turns a sub-symbol's own (n, alternatives) into a
// flat list of "groups", one per alternative that sub-symbol's n
// requires be satisfiable; used to build up an "of" quantifier's
// element list without nesting n levels.
func flattenRequired(s simplifiedSymbol) [][]YaraString {
	if s.n <= 1 {
		return s.alternatives
	}
	// s itself requires s.n of its own alternatives; represent that as
	// one synthetic group that is the union (AND) of its first n
	// alternatives, since "of" elements are evaluated as all-or-nothing
	// members.
	var merged []YaraString
	for i := 0; i < s.n && i < len(s.alternatives); i++ {
		merged = append(merged, s.alternatives[i]...)
	}
	return [][]YaraString{merged}
}

func simplifyFor(fn rule.ForNode, strings_ stringTable, lowerBound int) simplifiedSymbol {
	set := fn.IteratedSet()
	var groups [][]YaraString
	for _, el := range set {
		sub := simplify(el, strings_, lowerBound)
		if sub.n == 0 {
			continue
		}
		groups = append(groups, flattenRequired(sub)...)
	}
	if len(groups) == 0 {
		return simplifiedSymbol{n: 0}
	}
	// The body's own quantification isn't recoverable from an AST
	// contract that only hands us the iterated set and body as opaque
	// nodes; conservatively require any one iteration's strings be
	// present, matching the "any of them" shape.
	return simplifiedSymbol{n: 1, alternatives: groups}
}

// fieldByteWidths is the known struct-field table carried over from
// the original: equality on these fields compiles to a fixed-width
// little-endian constant comparison.
var fieldByteWidths = map[string]int{
	"pe.machine":            2,
	"pe.number_of_sections": 2,
}

func simplifyFieldEq(fe rule.FieldEqNode) simplifiedSymbol {
	width, ok := fieldByteWidths[fe.FieldName()]
	if !ok {
		return simplifiedSymbol{n: 0}
	}
	v := fe.Value()
	if len(v) != width {
		return simplifiedSymbol{n: 0}
	}
	return simplifiedSymbol{n: 1, alternatives: [][]YaraString{{{Data: v}}}}
}

func simplifyFuncCall(fc rule.FuncCallNode) simplifiedSymbol {
	if !strings.HasPrefix(fc.FunctionText(), "pe.exports") {
		return simplifiedSymbol{n: 0}
	}
	args := fc.Arguments()
	if len(args) != 1 || args[0].Kind() != rule.KindStringRef {
		// pe.exports("name") is parsed with its literal argument
		// surfaced the same way a string reference's text would be;
		// callers that hand us a plain text constant can satisfy this
		// via Text().
		return simplifiedSymbol{n: 0}
	}
	name := args[0].Text()
	if len(name) == 0 {
		return simplifiedSymbol{n: 0}
	}
	return simplifiedSymbol{n: 1, alternatives: [][]YaraString{{{Data: []byte(name)}}}}
}

func filterShort(alts []YaraString, lowerBound int) []YaraString {
	var out []YaraString
	for _, a := range alts {
		if len(a.Data) >= lowerBound {
			out = append(out, a)
		}
	}
	return out
}
