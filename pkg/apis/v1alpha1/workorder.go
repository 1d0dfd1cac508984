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
	"time"
)

// WorkOrderPriority orders work orders for dispatching. Lower weight is more urgent.
type WorkOrderPriority string

const (
	PriorityUrgent WorkOrderPriority = "urgent"
	PriorityHigh   WorkOrderPriority = "high"
	PriorityNormal WorkOrderPriority = "normal"
	PriorityLow    WorkOrderPriority = "low"
)

// Weight maps a priority to its dispatch weight. Unknown priorities sort after low.
func (p WorkOrderPriority) Weight() float64 {
	switch p {
	case PriorityUrgent:
		return 1
	case PriorityHigh:
		return 2
	case PriorityNormal:
		return 3
	case PriorityLow:
		return 4
	}
	return 5
}

type WorkOrderStatus string

const (
	WorkOrderPending    WorkOrderStatus = "pending"
	WorkOrderSetup      WorkOrderStatus = "setup"
	WorkOrderInProgress WorkOrderStatus = "in_progress"
	WorkOrderOnHold     WorkOrderStatus = "on_hold"
	WorkOrderCompleted  WorkOrderStatus = "completed"
	WorkOrderCancelled  WorkOrderStatus = "cancelled"
)

// WorkOrder is a production request for a quantity of a part, decomposed into Operations.
type WorkOrder struct {
	ID                string            `json:"id"`
	OrderNumber       string            `json:"orderNumber"`
	PartNumber        string            `json:"partNumber"`
	PartName          string            `json:"partName,omitempty"`
	Quantity          int               `json:"quantity"`
	CompletedQuantity int               `json:"completedQuantity"`
	Priority          WorkOrderPriority `json:"priority"`
	Status            WorkOrderStatus   `json:"status"`
	PlannedStartDate  *time.Time        `json:"plannedStartDate,omitempty"`
	PlannedEndDate    *time.Time        `json:"plannedEndDate,omitempty"`
	ActualStartDate   *time.Time        `json:"actualStartDate,omitempty"`
	ActualEndDate     *time.Time        `json:"actualEndDate,omitempty"`
	AssignedMachineID string            `json:"assignedMachineId,omitempty"`
	EstimatedHours    float64           `json:"estimatedHours,omitempty"`
	ActualHours       float64           `json:"actualHours,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
}

func (w *WorkOrder) Validate() error {
	if w.Quantity <= 0 {
		return fmt.Errorf("work order %q has non-positive quantity %d", w.ID, w.Quantity)
	}
	if w.CompletedQuantity < 0 || w.CompletedQuantity > w.Quantity {
		return fmt.Errorf("work order %q completed quantity %d outside [0, %d]", w.ID, w.CompletedQuantity, w.Quantity)
	}
	if w.PlannedStartDate != nil && w.PlannedEndDate != nil && w.PlannedEndDate.Before(*w.PlannedStartDate) {
		return fmt.Errorf("work order %q planned end precedes planned start", w.ID)
	}
	return nil
}
