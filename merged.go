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

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// shardRef pairs one shard with the fid offset its own fids must be
// rebased by to land in the merged fid space.
type shardRef struct {
	offset uint32
	index  *Index
}

// MergedIndex fans a rule evaluation out across many shards with
// bounded concurrency and unions the rebased results. A failure in any
// one shard cancels the rest and is fatal for the whole query; there
// is no partial-result mode, matching the original's
// ThreadPoolExecutor-based fan-out.
type MergedIndex struct {
	shards []shardRef
}

// NewMergedIndex builds a merged view over shards, in the order given;
// each shard's fids are rebased by the cumulative file count of the
// shards before it.
func NewMergedIndex(shards []*Index, fileCounts []uint32) *MergedIndex {
	m := &MergedIndex{shards: make([]shardRef, len(shards))}
	var off uint32
	for i, s := range shards {
		m.shards[i] = shardRef{offset: off, index: s}
		off += fileCounts[i]
	}
	return m
}

// evalFunc evaluates one rule against a single shard, returning its
// (unrebased) candidate fids and whether the result is a genuine
// filter (false meaning "scan everything in this shard").
type evalFunc func(ctx context.Context, idx *Index) ([]uint32, bool, error)

// Search fans eval out across every shard, bounded to concurrency
// workers at a time, rebases each shard's fids, and unions the
// results. If any shard's filter comes back unfiltered, the merged
// result is unfiltered too (spec's never-tighten-a-superset rule
// applies across shards exactly as it does across symbols).
func (m *MergedIndex) Search(ctx context.Context, concurrency int, eval evalFunc) ([]uint32, bool, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	sem := semaphore.NewWeighted(int64(concurrency))
	g, gctx := errgroup.WithContext(ctx)

	results := make([][]uint32, len(m.shards))
	filtered := make([]bool, len(m.shards))

	for i, sh := range m.shards {
		i, sh := i, sh
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			fids, ok, err := eval(gctx, sh.index)
			if err != nil {
				return err
			}
			rebased := make([]uint32, len(fids))
			for j, f := range fids {
				rebased[j] = f + sh.offset
			}
			results[i] = rebased
			filtered[i] = ok
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	allFiltered := true
	union := make(map[uint32]struct{})
	for i := range m.shards {
		if !filtered[i] {
			allFiltered = false
			continue
		}
		for _, f := range results[i] {
			union[f] = struct{}{}
		}
	}
	if !allFiltered {
		return nil, false, nil
	}

	out := make([]uint32, 0, len(union))
	for f := range union {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, true, nil
}
