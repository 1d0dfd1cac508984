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

package scheduling

import (
	"math"
	"sort"
	"time"

	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
)

// scoreFunc computes a dispatch priority for an operation; lower scores are
// scheduled earlier.
type scoreFunc func(op *v1alpha1.Operation, workOrder *v1alpha1.WorkOrder, reference time.Time) float64

// dispatchTable is the closed set of dispatching rules. Adding a rule is a
// local change here plus the enum constant.
var dispatchTable = map[v1alpha1.SchedulingRule]scoreFunc{
	v1alpha1.RuleEDD:      earliestDueDate,
	v1alpha1.RuleSPT:      shortestProcessingTime,
	v1alpha1.RuleCR:       criticalRatio,
	v1alpha1.RuleFIFO:     firstInFirstOut,
	v1alpha1.RulePriority: workOrderPriority,
}

// PriorityScore computes the dispatch score for the (operation, work order)
// pair under the given rule. Unknown rules fall back to FIFO; the scheduler
// validates the rule before running, so that path only guards against
// future enum drift.
func PriorityScore(rule v1alpha1.SchedulingRule, op *v1alpha1.Operation, workOrder *v1alpha1.WorkOrder, reference time.Time) float64 {
	score, ok := dispatchTable[rule]
	if !ok {
		score = firstInFirstOut
	}
	return score(op, workOrder, reference)
}

// SortByPriority orders a dependency batch by score ascending, breaking ties
// by operation ID so a given input always schedules identically.
func SortByPriority(ops []*v1alpha1.Operation, scores map[string]float64) {
	sort.SliceStable(ops, func(a, b int) bool {
		if scores[ops[a].ID] != scores[ops[b].ID] {
			return scores[ops[a].ID] < scores[ops[b].ID]
		}
		return ops[a].ID < ops[b].ID
	})
}

func earliestDueDate(_ *v1alpha1.Operation, workOrder *v1alpha1.WorkOrder, reference time.Time) float64 {
	if workOrder == nil || workOrder.PlannedEndDate == nil {
		return math.Inf(1)
	}
	return float64(workOrder.PlannedEndDate.Sub(reference) / time.Millisecond)
}

func shortestProcessingTime(op *v1alpha1.Operation, workOrder *v1alpha1.WorkOrder, _ time.Time) float64 {
	quantity := 1
	if workOrder != nil {
		quantity = workOrder.Quantity
	}
	return float64(op.SetupTimeMinutes) + op.RunTimePerUnit*float64(quantity)
}

func criticalRatio(op *v1alpha1.Operation, workOrder *v1alpha1.WorkOrder, reference time.Time) float64 {
	if workOrder == nil || workOrder.PlannedEndDate == nil {
		return math.Inf(1)
	}
	processing := op.RunTimePerUnit * float64(workOrder.Quantity) * float64(time.Minute/time.Millisecond)
	if processing <= 0 {
		return math.Inf(1)
	}
	return float64(workOrder.PlannedEndDate.Sub(reference)/time.Millisecond) / processing
}

func firstInFirstOut(_ *v1alpha1.Operation, workOrder *v1alpha1.WorkOrder, _ time.Time) float64 {
	if workOrder == nil {
		return math.Inf(1)
	}
	return float64(workOrder.CreatedAt.UnixMilli())
}

func workOrderPriority(_ *v1alpha1.Operation, workOrder *v1alpha1.WorkOrder, _ time.Time) float64 {
	if workOrder == nil {
		return v1alpha1.WorkOrderPriority("").Weight()
	}
	return workOrder.Priority.Weight()
}
