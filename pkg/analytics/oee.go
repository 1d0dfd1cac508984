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

	"github.com/samber/lo"

	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
)

// plannedDowntimeReasons are excluded from the availability loss figure.
var plannedDowntimeReasons = map[string]struct{}{
	"setup":       {},
	"maintenance": {},
}

// MachineOEE is the Overall Equipment Effectiveness breakdown for one
// machine over the reporting period. Factors are fractions in [0, 1],
// rounded to two decimals.
type MachineOEE struct {
	MachineID              string  `json:"machineId"`
	Availability           float64 `json:"availability"`
	Performance            float64 `json:"performance"`
	Quality                float64 `json:"quality"`
	OEE                    float64 `json:"oee"`
	PlannedRuntimeMinutes  int     `json:"plannedRuntimeMinutes"`
	UnplannedDowntimeMins  int     `json:"unplannedDowntimeMinutes"`
	TotalParts             int     `json:"totalParts"`
	GoodParts              int     `json:"goodParts"`
	IdealCycleTimeMinutes  float64 `json:"idealCycleTimeMinutes"`
	ActualCycleTimeMinutes float64 `json:"actualCycleTimeMinutes"`
}

// OEE computes availability · performance · quality per machine. A machine
// with no parts produced in the period reports zero performance and zero OEE
// rather than NaN; its availability and quality are still computed from its
// slots, downtime, and inspections.
func (e *Engine) OEE(input Input) []MachineOEE {
	results := lo.Map(input.Machines, func(machine *v1alpha1.Machine, _ int) MachineOEE {
		return e.machineOEE(input, machine.ID)
	})
	sort.Slice(results, func(a, b int) bool { return results[a].MachineID < results[b].MachineID })
	return results
}

func (e *Engine) machineOEE(input Input, machineID string) MachineOEE {
	result := MachineOEE{MachineID: machineID}

	// availability: planned runtime is the machine's scheduled slot time in
	// the period; losses are the unplanned downtime events.
	for _, slot := range input.ScheduleSlots {
		if slot.MachineID == machineID && slot.Active() && input.Period.Contains(slot.StartTime) {
			result.PlannedRuntimeMinutes += slot.DurationMinutes()
		}
	}
	for _, event := range input.DowntimeEvents {
		if event.MachineID != machineID || !input.Period.Contains(event.StartTime) {
			continue
		}
		if _, planned := plannedDowntimeReasons[event.Reason]; !planned {
			result.UnplannedDowntimeMins += event.DurationMinutes
		}
	}
	result.Availability = round2(safeDiv(float64(result.PlannedRuntimeMinutes-result.UnplannedDowntimeMins), float64(result.PlannedRuntimeMinutes), 0))
	if result.Availability < 0 {
		result.Availability = 0
	}

	// performance: ideal cycle time against the observed average. The ideal
	// is the declared standard when one exists; otherwise 90% of the
	// observed average stands in for it.
	var cycleSum float64
	var cycleCount int
	for _, log := range input.ProductionLogs {
		if log.MachineID != machineID || !input.Period.Contains(log.Timestamp) {
			continue
		}
		result.TotalParts += log.QuantityProduced
		if log.CycleTimeMinutes > 0 {
			cycleSum += log.CycleTimeMinutes
			cycleCount++
		}
	}
	result.ActualCycleTimeMinutes = round2(safeDiv(cycleSum, float64(cycleCount), 0))
	if standard, ok := input.StandardCycleTimes[machineID]; ok && standard > 0 {
		result.IdealCycleTimeMinutes = round2(standard)
	} else {
		result.IdealCycleTimeMinutes = round2(result.ActualCycleTimeMinutes * e.idealCycleFactor)
	}
	if result.TotalParts > 0 {
		result.Performance = round2(safeDiv(result.IdealCycleTimeMinutes*float64(result.TotalParts), result.ActualCycleTimeMinutes*float64(result.TotalParts), 0))
	}

	// quality: good parts over inspected parts.
	var inspected int
	for _, record := range input.QualityRecords {
		if record.MachineID != machineID || !input.Period.Contains(record.InspectionDate) {
			continue
		}
		inspected++
		if record.Result == v1alpha1.InspectionPass {
			result.GoodParts++
		}
	}
	result.Quality = round2(safeDiv(float64(result.GoodParts), float64(inspected), 0))

	if result.TotalParts == 0 {
		result.OEE = 0
		return result
	}
	result.OEE = round2(result.Availability * result.Performance * result.Quality)
	return result
}
