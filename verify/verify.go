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

// Package verify names the contract between this module's candidate
// set and a downstream exact-match scanner. No scanner is implemented
// here; exact matching is out of scope.
package verify

// Scanner checks whether a candidate file genuinely matches a rule.
// Implementations wrap a real pattern-matching engine.
type Scanner interface {
	Scan(fid uint32, path string) (bool, error)
}
