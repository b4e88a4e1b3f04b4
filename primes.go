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

import "sync"

const (
	minGroupWidth = 11
	maxGroupWidth = 22
)

var (
	primeTables     [maxGroupWidth + 1][256]uint64
	primeTablesOnce sync.Once
)

// primesForWidth returns the 256 largest primes strictly below
// 2^width-1, sorted ascending, indexed by an n-gram's last byte. Built
// once for every supported width at first use.
func primesForWidth(width int) [256]uint64 {
	primeTablesOnce.Do(buildPrimeTables)
	return primeTables[width]
}

func buildPrimeTables() {
	for w := minGroupWidth; w <= maxGroupWidth; w++ {
		ceil := uint64(1)<<uint(w) - 1
		var found []uint64
		for c := ceil - 1; c > 1 && len(found) < 256; c-- {
			if isPrime(c) {
				found = append(found, c)
			}
		}
		// found is in descending order; reverse to ascending.
		for i, j := 0, len(found)-1; i < j; i, j = i+1, j-1 {
			found[i], found[j] = found[j], found[i]
		}
		copy(primeTables[w][:], found)
	}
}

func isPrime(n uint64) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for d := uint64(3); d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}
