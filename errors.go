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

import "fmt"

// CorruptIndexError reports a structurally invalid index shard: a bad
// header, an offset pointing outside the file, a truncated posting list.
type CorruptIndexError struct {
	Path string
	Err  error
}

func (e *CorruptIndexError) Error() string {
	return fmt.Sprintf("corrupt index %s: %v", e.Path, e.Err)
}

func (e *CorruptIndexError) Unwrap() error { return e.Err }

// IOError wraps an I/O failure (other than a missing prefix file, which
// is recovered locally as an empty posting list) while reading a shard.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error reading %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// UnsupportedConditionError reports a rule condition shape the
// evaluator has no translation for. Evaluate does not return it: a
// condition node of a kind with no translation becomes a symbol that
// simplifies to n == 0 and contributes no filter.
type UnsupportedConditionError struct {
	Text string
}

func (e *UnsupportedConditionError) Error() string {
	return fmt.Sprintf("unsupported condition: %s", e.Text)
}

// TimeoutError reports that evaluation exceeded its wall-clock budget.
type TimeoutError struct {
	Elapsed string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("rule evaluation timed out after %s", e.Elapsed)
}

// ErrTooManyNGrams is returned by the intersector (exactIntersect,
// groupIntersect) when a string set has more than 65536 distinct
// n-grams.
var ErrTooManyNGrams = fmt.Errorf("too many distinct n-grams in set")
