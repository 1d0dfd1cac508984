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

// ProductionLog is an append-only record of parts produced on a machine.
type ProductionLog struct {
	ID               string    `json:"id"`
	MachineID        string    `json:"machineId"`
	WorkOrderID      string    `json:"workOrderId"`
	Timestamp        time.Time `json:"timestamp"`
	QuantityProduced int       `json:"quantityProduced"`
	CycleTimeMinutes float64   `json:"cycleTimeMinutes"`
}

// DowntimeEvent records a stoppage window on a machine with its reason code.
type DowntimeEvent struct {
	ID              string    `json:"id"`
	MachineID       string    `json:"machineId"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Reason          string    `json:"reason"`
}

type InspectionResult string

const (
	InspectionPass   InspectionResult = "pass"
	InspectionFail   InspectionResult = "fail"
	InspectionRework InspectionResult = "rework"
)

// QualityRecord is one inspection outcome for a produced part.
type QualityRecord struct {
	ID             string           `json:"id"`
	WorkOrderID    string           `json:"workOrderId"`
	MachineID      string           `json:"machineId"`
	PartNumber     string           `json:"partNumber"`
	InspectionDate time.Time        `json:"inspectionDate"`
	Result         InspectionResult `json:"result"`
	DefectType     string           `json:"defectType,omitempty"`
}

// OperatorSession records an operator's time on a machine split between
// setup and run work.
type OperatorSession struct {
	ID               string     `json:"id"`
	OperatorID       string     `json:"operatorId"`
	MachineID        string     `json:"machineId"`
	SessionStart     time.Time  `json:"sessionStart"`
	SessionEnd       *time.Time `json:"sessionEnd,omitempty"`
	SetupTimeMinutes int        `json:"setupTimeMinutes"`
	RunTimeMinutes   int        `json:"runTimeMinutes"`
}
