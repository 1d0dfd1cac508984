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

package v1alpha1

// CapacityBucket aggregates one machine's planned load against its calendar
// availability for a single UTC date ("2006-01-02"). Utilization and the
// overload fields are derived from the minute figures at construction.
type CapacityBucket struct {
	MachineID          string  `json:"machineId"`
	Date               string  `json:"date"`
	AvailableMinutes   int     `json:"availableMinutes"`
	PlannedMinutes     int     `json:"plannedMinutes"`
	ActualMinutes      int     `json:"actualMinutes"`
	Utilization        float64 `json:"utilization"`
	IsOverloaded       bool    `json:"isOverloaded"`
	OverloadPercentage float64 `json:"overloadPercentage"`
}

// NewCapacityBucket computes the derived utilization fields from the raw
// minute figures. A day with zero availability reports zero utilization.
func NewCapacityBucket(machineID, date string, availableMinutes, plannedMinutes, actualMinutes int) CapacityBucket {
	if availableMinutes < 0 {
		availableMinutes = 0
	}
	b := CapacityBucket{
		MachineID:        machineID,
		Date:             date,
		AvailableMinutes: availableMinutes,
		PlannedMinutes:   plannedMinutes,
		ActualMinutes:    actualMinutes,
	}
	if availableMinutes > 0 {
		b.Utilization = float64(plannedMinutes) / float64(availableMinutes)
	}
	if b.Utilization > 1 {
		b.IsOverloaded = true
		b.OverloadPercentage = (b.Utilization - 1) * 100
	}
	return b
}
