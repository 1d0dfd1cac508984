/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const Namespace = "forgeflow"

// Registry collects all forgeflow-core metrics. The embedding service mounts
// it on its own /metrics handler.
var Registry = prometheus.NewRegistry()

var (
	OperationsScheduledCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "scheduler",
			Name:      "operations_scheduled",
			Help:      "Number of operations placed into schedule slots, labeled by dispatch rule.",
		},
		[]string{
			"rule",
		},
	)
	OperationsFailedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "scheduler",
			Name:      "operations_failed",
			Help:      "Number of operations the scheduler could not place, labeled by dispatch rule.",
		},
		[]string{
			"rule",
		},
	)
	ConflictsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "scheduler",
			Name:      "conflicts",
			Help:      "Number of scheduling conflicts emitted, labeled by conflict type and severity.",
		},
		[]string{
			"type",
			"severity",
		},
	)
	SchedulingDurationHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "scheduler",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of scheduler runs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		},
	)
	AnalyticsDurationHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "analytics",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of analytics computations.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		},
	)
)

func init() {
	Registry.MustRegister(
		OperationsScheduledCounter,
		OperationsFailedCounter,
		ConflictsCounter,
		SchedulingDurationHistogram,
		AnalyticsDurationHistogram,
	)
}
