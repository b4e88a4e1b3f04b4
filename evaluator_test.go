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
	"sort"
	"testing"

	"github.com/sabresec/yarix/rule"
)

func putString(store *fakeStore, s string, fids []uint32) {
	b := []byte(s)
	store.put(b[0], b[1], b[2], int(b[3]), fids)
}

func TestEvaluatorAndRequiresBothStrings(t *testing.T) {
	store := newFakeStore()
	putString(store, "abcd", []uint32{1, 2, 3})
	putString(store, "wxyz", []uint32{2, 3, 4})

	idx := &Index{store: store, width: 4}
	ev := NewEvaluator(idx, Options{})

	r := &rule.Rule{
		Strings: []rule.String{
			{ID: "a", Text: "abcd"},
			{ID: "b", Text: "wxyz"},
		},
		Condition: and(&stringRefNode{id: "a"}, &stringRefNode{id: "b"}),
	}

	fids, ok, err := ev.Evaluate(context.Background(), r)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a genuine filter")
	}
	sort.Slice(fids, func(i, j int) bool { return fids[i] < fids[j] })
	want := []uint32{2, 3}
	if len(fids) != len(want) || fids[0] != want[0] || fids[1] != want[1] {
		t.Errorf("got %v, want %v", fids, want)
	}
}

func TestEvaluatorNegationIsUnfilterable(t *testing.T) {
	store := newFakeStore()
	putString(store, "abcd", []uint32{1, 2, 3})
	putString(store, "wxyz", []uint32{2, 3, 4})

	idx := &Index{store: store, width: 4}
	ev := NewEvaluator(idx, Options{})

	r := &rule.Rule{
		Strings: []rule.String{
			{ID: "a", Text: "abcd"},
			{ID: "b", Text: "wxyz"},
		},
		Condition: and(not(&stringRefNode{id: "a"}), &stringRefNode{id: "b"}),
	}

	_, ok, err := ev.Evaluate(context.Background(), r)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("a negated symbol must never tighten the candidate set")
	}
}

func TestEvaluatorOrUnionsBothStrings(t *testing.T) {
	store := newFakeStore()
	putString(store, "abcd", []uint32{1, 2})
	putString(store, "wxyz", []uint32{3, 4})

	idx := &Index{store: store, width: 4}
	ev := NewEvaluator(idx, Options{})

	r := &rule.Rule{
		Strings: []rule.String{
			{ID: "a", Text: "abcd"},
			{ID: "b", Text: "wxyz"},
		},
		Condition: or(&stringRefNode{id: "a"}, &stringRefNode{id: "b"}),
	}

	fids, ok, err := ev.Evaluate(context.Background(), r)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a genuine filter")
	}
	sort.Slice(fids, func(i, j int) bool { return fids[i] < fids[j] })
	want := []uint32{1, 2, 3, 4}
	if len(fids) != len(want) {
		t.Fatalf("got %v, want %v", fids, want)
	}
	for i := range want {
		if fids[i] != want[i] {
			t.Errorf("got %v, want %v", fids, want)
		}
	}
}
