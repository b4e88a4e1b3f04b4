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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricPostingBytesReadTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yarix_posting_bytes_read_total",
		Help: "Estimated posting-list bytes read while evaluating rules: four per fid returned by each 4-gram string lookup (3-gram fallback lookups are not counted).",
	})

	metricGroupsEvaluatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yarix_groups_evaluated_total",
		Help: "Total alternative groups evaluated across all symbols.",
	})

	metricRuleEvalTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yarix_rule_evaluations_total",
		Help: "Rule evaluations by outcome.",
	}, []string{"outcome"})
)

const (
	outcomeFiltered    = "filtered"
	outcomeUnfiltered  = "unfiltered"
	outcomeError       = "error"
	outcomeTimeout     = "timeout"
)
