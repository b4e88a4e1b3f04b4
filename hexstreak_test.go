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
	"reflect"
	"testing"
)

func TestHexToStreaksPlain(t *testing.T) {
	got, err := hexToStreaks("4D 5A 90 00")
	if err != nil {
		t.Fatal(err)
	}
	want := [][]byte{{0x4D, 0x5A, 0x90, 0x00}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestHexToStreaksWildcardSplits(t *testing.T) {
	got, err := hexToStreaks("4D 5A ?? 00")
	if err != nil {
		t.Fatal(err)
	}
	want := [][]byte{{0x4D, 0x5A}, {0x00}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestHexToStreaksJumpSplits(t *testing.T) {
	got, err := hexToStreaks("4D 5A [4-6] 90 00")
	if err != nil {
		t.Fatal(err)
	}
	want := [][]byte{{0x4D, 0x5A}, {0x90, 0x00}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestHexToStreaksAlternationSplits(t *testing.T) {
	got, err := hexToStreaks("4D ( 5A | 90 ) 00")
	if err != nil {
		t.Fatal(err)
	}
	want := [][]byte{{0x4D}, {0x00}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestHexToStreaksOddDigitsIsError(t *testing.T) {
	if _, err := hexToStreaks("4D5"); err == nil {
		t.Fatal("expected error on odd hex digit count")
	}
}

func TestHexToStreaksDedupesRepeatedStreaks(t *testing.T) {
	got, err := hexToStreaks("4D 5A ( 90 00 | 90 00 )")
	if err != nil {
		t.Fatal(err)
	}
	want := [][]byte{{0x4D, 0x5A}, {0x90, 0x00}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v (duplicate alternation branch collapsed)", got, want)
	}
}

func TestMkwide(t *testing.T) {
	got := mkwide([]byte("AB"))
	want := []byte{'A', 0, 'B', 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWidthVariantsDefaultsToAscii(t *testing.T) {
	got := widthVariants([]byte("x"), false, false)
	if len(got) != 1 || string(got[0]) != "x" {
		t.Errorf("got %v", got)
	}
}

func TestWidthVariantsBoth(t *testing.T) {
	got := widthVariants([]byte("x"), true, true)
	if len(got) != 2 {
		t.Fatalf("got %d variants, want 2", len(got))
	}
}
