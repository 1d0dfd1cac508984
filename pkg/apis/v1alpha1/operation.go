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
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"
)

// Operation is an atomic processing step within a WorkOrder. Predecessor and
// successor sets must be mutually consistent and acyclic; the scheduler
// merges edges declared on either side and reports cycles as conflicts.
type Operation struct {
	ID                string     `json:"id"`
	WorkOrderID       string     `json:"workOrderId"`
	OperationNumber   int        `json:"operationNumber"`
	OperationFamily   string     `json:"operationFamily,omitempty"`
	MachineTypes      []string   `json:"machineTypes"`
	RequiredSkills    []string   `json:"requiredSkills,omitempty"`
	SetupTimeMinutes  int        `json:"setupTimeMinutes"`
	RunTimePerUnit    float64    `json:"runTimePerUnitMinutes"`
	BatchSize         int        `json:"batchSize"`
	Predecessors      []string   `json:"predecessors,omitempty"`
	Successors        []string   `json:"successors,omitempty"`
	AssignedMachineID string     `json:"assignedMachineId,omitempty"`
	DueDate           *time.Time `json:"dueDate,omitempty"`
}

func (o *Operation) Validate() error {
	if o.WorkOrderID == "" {
		return fmt.Errorf("operation %q has no work order", o.ID)
	}
	if o.SetupTimeMinutes < 0 {
		return fmt.Errorf("operation %q has negative setup time", o.ID)
	}
	if o.RunTimePerUnit <= 0 {
		return fmt.Errorf("operation %q has non-positive run time per unit", o.ID)
	}
	return nil
}

// RunMinutes is the nominal run duration for the given quantity, before any
// machine efficiency adjustment.
func (o *Operation) RunMinutes(quantity int) int {
	return int(math.Ceil(o.RunTimePerUnit * float64(quantity)))
}

// AcceptsMachineType reports whether the operation can run on the given type.
func (o *Operation) AcceptsMachineType(machineType string) bool {
	return lo.Contains(o.MachineTypes, machineType)
}
