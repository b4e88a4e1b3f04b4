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
	"runtime"
	"time"
)

// Options controls how a rule is filtered against an index. The zero
// value is not ready to use; call SetDefaults first.
type Options struct {
	// GroupWidth selects the modular-group posting-list compression
	// scheme (11-22 bits wide). Zero disables it in favor of exact
	// posting lists.
	GroupWidth int

	// Tau gates, per n-gram, whether its exact posting list is small
	// enough to compress into a modular group (len(list) <= Tau) or
	// whether it is instead ANDed in directly as an exact prefilter.
	// Zero disables the gate: every list is grouped. Ignored when
	// GroupWidth is zero.
	Tau int

	// LowerBound is the n-gram width threads through simplification
	// and evaluation: 3 or 4. Strings shorter than LowerBound cannot
	// be filtered on and fall back to an unfilterable result for that
	// symbol.
	LowerBound int

	// Timeout bounds a single rule evaluation (spec default 240s).
	Timeout time.Duration

	// Shards is a default concurrency width for fanning a query out
	// across shards. MergedIndex.Search takes its width as an argument
	// and does not read Options.
	Shards int
}

// SetDefaults fills zero-valued fields with their defaults.
func (o *Options) SetDefaults() {
	if o.LowerBound == 0 {
		o.LowerBound = 4
	}
	if o.Timeout == 0 {
		o.Timeout = 240 * time.Second
	}
	if o.Shards == 0 {
		o.Shards = runtime.GOMAXPROCS(0)
	}
}
