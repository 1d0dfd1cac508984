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

package analytics

import (
	"sort"
	"time"
)

// onTimeTolerance is how far an actual start may drift from plan and still
// count as on time.
const onTimeTolerance = 30 * time.Minute

// WorkOrderAdherence scores one work order's start against its plan.
type WorkOrderAdherence struct {
	WorkOrderID    string  `json:"workOrderId"`
	OrderNumber    string  `json:"orderNumber"`
	DelayMinutes   int     `json:"delayMinutes"`
	OnTime         bool    `json:"onTime"`
	AdherenceScore float64 `json:"adherenceScore"`
}

// AdherenceReport aggregates per-order adherence over the period.
type AdherenceReport struct {
	Orders       []WorkOrderAdherence `json:"orders"`
	OnTimeRate   float64              `json:"onTimeRate"`
	AverageScore float64              `json:"averageScore"`
}

// Adherence compares actual against planned starts for every work order
// that has both timestamps and whose actual start falls inside the period.
func (e *Engine) Adherence(input Input) AdherenceReport {
	var report AdherenceReport
	for _, workOrder := range input.WorkOrders {
		if workOrder.PlannedStartDate == nil || workOrder.ActualStartDate == nil {
			continue
		}
		if !input.Period.Contains(*workOrder.ActualStartDate) {
			continue
		}
		drift := workOrder.ActualStartDate.Sub(*workOrder.PlannedStartDate)
		delay := drift
		if delay < 0 {
			delay = 0
		}
		score := 100 - delay.Hours()*10
		if score < 0 {
			score = 0
		}
		report.Orders = append(report.Orders, WorkOrderAdherence{
			WorkOrderID:    workOrder.ID,
			OrderNumber:    workOrder.OrderNumber,
			DelayMinutes:   int(delay / time.Minute),
			OnTime:         drift >= -onTimeTolerance && drift <= onTimeTolerance,
			AdherenceScore: round2(score),
		})
	}
	sort.Slice(report.Orders, func(a, b int) bool { return report.Orders[a].WorkOrderID < report.Orders[b].WorkOrderID })

	var onTime int
	var scoreSum float64
	for _, order := range report.Orders {
		if order.OnTime {
			onTime++
		}
		scoreSum += order.AdherenceScore
	}
	report.OnTimeRate = round2(safeDiv(float64(onTime), float64(len(report.Orders)), 0) * 100)
	report.AverageScore = round2(safeDiv(scoreSum, float64(len(report.Orders)), 0))
	return report
}
