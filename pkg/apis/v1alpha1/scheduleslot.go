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

import (
	"time"
)

type SlotStatus string

const (
	SlotScheduled  SlotStatus = "scheduled"
	SlotInProgress SlotStatus = "in_progress"
	SlotCompleted  SlotStatus = "completed"
	SlotCancelled  SlotStatus = "cancelled"
)

// ScheduleSlot is one placed operation: a machine and a half-open time
// window [StartTime, EndTime). EndTime − StartTime always equals
// SetupMinutes + RunMinutes. Locked slots survive replanning untouched.
type ScheduleSlot struct {
	ID             string     `json:"id"`
	PlanID         string     `json:"planId"`
	WorkOrderID    string     `json:"workOrderId"`
	OperationID    string     `json:"operationId"`
	MachineID      string     `json:"machineId"`
	StartTime      time.Time  `json:"startTime"`
	EndTime        time.Time  `json:"endTime"`
	SetupMinutes   int        `json:"setupMinutes"`
	RunMinutes     int        `json:"runMinutes"`
	Quantity       int        `json:"quantity"`
	PriorityScore  float64    `json:"priorityScore"`
	SchedulingRule string     `json:"schedulingRule"`
	Status         SlotStatus `json:"status"`
	ConflictFlags  []string   `json:"conflictFlags,omitempty"`
	Locked         bool       `json:"locked"`
}

// DurationMinutes is the slot's total occupancy in whole minutes.
func (s *ScheduleSlot) DurationMinutes() int {
	return int(s.EndTime.Sub(s.StartTime) / time.Minute)
}

// Active reports whether the slot occupies machine time for scheduling
// purposes. Cancelled slots do not.
func (s *ScheduleSlot) Active() bool {
	return s.Status != SlotCancelled
}

// Overlaps reports whether two half-open windows intersect.
func (s *ScheduleSlot) Overlaps(other *ScheduleSlot) bool {
	return s.StartTime.Before(other.EndTime) && other.StartTime.Before(s.EndTime)
}
