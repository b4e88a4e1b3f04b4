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
	"testing"
)

func mustParse(t *testing.T, pattern string) *syntax.Regexp {
	t.Helper()
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		t.Fatalf("parse %q: %v", pattern, err)
	}
	return re
}

func containsString(strs [][]byte, want string) bool {
	for _, s := range strs {
		if string(s) == want {
			return true
		}
	}
	return false
}

func TestExtractFixedStringsLiteral(t *testing.T) {
	strs, err := extractFixedStrings(mustParse(t, "abc"))
	if err != nil {
		t.Fatal(err)
	}
	if !containsString(strs, "abc") {
		t.Errorf("got %v, want to contain %q", strsAsStrings(strs), "abc")
	}
}

func TestExtractFixedStringsAlternationCommonPrefix(t *testing.T) {
	strs, err := extractFixedStrings(mustParse(t, "ab|ac"))
	if err != nil {
		t.Fatal(err)
	}
	if !containsString(strs, "a") {
		t.Errorf("got %v, want to contain common required prefix %q", strsAsStrings(strs), "a")
	}
	if containsString(strs, "ab") || containsString(strs, "ac") {
		t.Errorf("got %v, must not claim a branch-specific string is required", strsAsStrings(strs))
	}
}

func TestExtractFixedStringsWildcardHasNoRequiredBytes(t *testing.T) {
	strs, err := extractFixedStrings(mustParse(t, ".*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(strs) != 0 {
		t.Errorf("got %v, want no required substrings", strsAsStrings(strs))
	}
}

func strsAsStrings(strs [][]byte) []string {
	out := make([]string, len(strs))
	for i, s := range strs {
		out[i] = string(s)
	}
	return out
}
