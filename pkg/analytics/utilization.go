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

	"github.com/samber/lo"

	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
)

// MachineUtilization splits a machine's period into productive, setup,
// downtime, and idle time, with the reliability figures derived from the
// unplanned stoppages.
type MachineUtilization struct {
	MachineID          string  `json:"machineId"`
	ProductiveMinutes  int     `json:"productiveMinutes"`
	SetupMinutes       int     `json:"setupMinutes"`
	DowntimeMinutes    int     `json:"downtimeMinutes"`
	IdleMinutes        int     `json:"idleMinutes"`
	UtilizationPercent float64 `json:"utilizationPercent"`
	MTBFHours          float64 `json:"mtbfHours"`
	MTTRMinutes        float64 `json:"mttrMinutes"`
	FailureCount       int     `json:"failureCount"`
}

// Utilization computes the time split per machine. Operator sessions supply
// the productive and setup figures; downtime events supply stoppages; the
// remainder of the period is idle.
func (e *Engine) Utilization(input Input) []MachineUtilization {
	periodMinutes := int(input.Period.To.Sub(input.Period.From) / time.Minute)
	results := lo.Map(input.Machines, func(machine *v1alpha1.Machine, _ int) MachineUtilization {
		result := MachineUtilization{MachineID: machine.ID}
		for _, session := range input.OperatorSessions {
			if session.MachineID != machine.ID || !input.Period.Contains(session.SessionStart) {
				continue
			}
			result.ProductiveMinutes += session.RunTimeMinutes
			result.SetupMinutes += session.SetupTimeMinutes
		}
		var failureMinutes int
		for _, event := range input.DowntimeEvents {
			if event.MachineID != machine.ID || !input.Period.Contains(event.StartTime) {
				continue
			}
			result.DowntimeMinutes += event.DurationMinutes
			if _, planned := plannedDowntimeReasons[event.Reason]; !planned {
				result.FailureCount++
				failureMinutes += event.DurationMinutes
			}
		}
		result.IdleMinutes = periodMinutes - result.ProductiveMinutes - result.SetupMinutes - result.DowntimeMinutes
		if result.IdleMinutes < 0 {
			result.IdleMinutes = 0
		}
		result.UtilizationPercent = round2(safeDiv(float64(result.ProductiveMinutes), float64(periodMinutes), 0) * 100)
		result.MTBFHours = round2(safeDiv(float64(result.ProductiveMinutes)/60, float64(result.FailureCount), 0))
		result.MTTRMinutes = round2(safeDiv(float64(failureMinutes), float64(result.FailureCount), 0))
		return result
	})
	sort.Slice(results, func(a, b int) bool { return results[a].MachineID < results[b].MachineID })
	return results
}
