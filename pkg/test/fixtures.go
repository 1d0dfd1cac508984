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

package test

import (
	"fmt"
	"strings"
	"time"

	"github.com/Pallinder/go-randomdata"
	"github.com/google/uuid"
	"github.com/imdario/mergo"
	"github.com/samber/lo"

	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
)

// RandomName produces a lowercase human-readable identifier for fixtures.
func RandomName() string {
	return strings.ToLower(fmt.Sprintf("%s-%s-%s", randomdata.SillyName(), randomdata.Adjective(), randomdata.Noun()))
}

func mustMerge[T any](dst *T, overrides ...T) {
	for _, override := range overrides {
		if err := mergo.Merge(dst, override, mergo.WithOverride); err != nil {
			panic(fmt.Sprintf("merging fixture overrides, %s", err))
		}
	}
}

// WorkOrder builds a schedulable work order, merging any overrides over
// randomized defaults.
func WorkOrder(overrides ...v1alpha1.WorkOrder) *v1alpha1.WorkOrder {
	workOrder := v1alpha1.WorkOrder{}
	mustMerge(&workOrder, overrides...)
	if workOrder.ID == "" {
		workOrder.ID = uuid.NewString()
	}
	if workOrder.OrderNumber == "" {
		workOrder.OrderNumber = fmt.Sprintf("WO-%d", randomdata.Number(10000, 99999))
	}
	if workOrder.PartNumber == "" {
		workOrder.PartNumber = fmt.Sprintf("P-%d", randomdata.Number(1000, 9999))
	}
	if workOrder.Quantity == 0 {
		workOrder.Quantity = 1
	}
	if workOrder.Priority == "" {
		workOrder.Priority = v1alpha1.PriorityNormal
	}
	if workOrder.Status == "" {
		workOrder.Status = v1alpha1.WorkOrderPending
	}
	if workOrder.CreatedAt.IsZero() {
		workOrder.CreatedAt = time.Now().UTC()
	}
	return &workOrder
}

// Operation builds an operation, merging any overrides (including the owning
// WorkOrderID) over defaults.
func Operation(overrides ...v1alpha1.Operation) *v1alpha1.Operation {
	op := v1alpha1.Operation{}
	mustMerge(&op, overrides...)
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	if op.OperationNumber == 0 {
		op.OperationNumber = 10
	}
	if len(op.MachineTypes) == 0 {
		op.MachineTypes = []string{"CNC_TURNING"}
	}
	if op.RunTimePerUnit == 0 {
		op.RunTimePerUnit = 60
	}
	if op.BatchSize == 0 {
		op.BatchSize = 1
	}
	return &op
}

// Machine builds a machine with nominal efficiency.
func Machine(overrides ...v1alpha1.Machine) *v1alpha1.Machine {
	machine := v1alpha1.Machine{}
	mustMerge(&machine, overrides...)
	if machine.ID == "" {
		machine.ID = uuid.NewString()
	}
	if machine.Name == "" {
		machine.Name = RandomName()
	}
	if machine.Type == "" {
		machine.Type = "CNC_TURNING"
	}
	if machine.Status == "" {
		machine.Status = v1alpha1.MachineIdle
	}
	if machine.Efficiency == 0 {
		machine.Efficiency = 1.0
	}
	return &machine
}

// Capability binds a machine to its own type unless overridden.
func Capability(machine *v1alpha1.Machine, overrides ...v1alpha1.MachineCapability) v1alpha1.MachineCapability {
	capability := v1alpha1.MachineCapability{}
	mustMerge(&capability, overrides...)
	if capability.ID == "" {
		capability.ID = uuid.NewString()
	}
	if capability.MachineID == "" {
		capability.MachineID = machine.ID
	}
	if len(capability.MachineTypes) == 0 {
		capability.MachineTypes = []string{machine.Type}
	}
	if capability.EfficiencyFactor == 0 {
		capability.EfficiencyFactor = 1.0
	}
	return capability
}

// Calendar defaults to a Monday–Friday day shift with no breaks.
func Calendar(overrides ...v1alpha1.Calendar) v1alpha1.Calendar {
	cal := v1alpha1.Calendar{}
	mustMerge(&cal, overrides...)
	if len(cal.Shifts) == 0 {
		cal.Shifts = []v1alpha1.Shift{{Name: "day", Start: "08:00", End: "16:00"}}
	}
	if len(cal.WorkingDays) == 0 {
		cal.WorkingDays = []int{1, 2, 3, 4, 5}
	}
	return cal
}

// Slot builds a schedule slot whose window agrees with its setup and run
// minutes.
func Slot(overrides ...v1alpha1.ScheduleSlot) *v1alpha1.ScheduleSlot {
	slot := v1alpha1.ScheduleSlot{}
	mustMerge(&slot, overrides...)
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.Status == "" {
		slot.Status = v1alpha1.SlotScheduled
	}
	if slot.Quantity == 0 {
		slot.Quantity = 1
	}
	if slot.EndTime.IsZero() && !slot.StartTime.IsZero() {
		slot.EndTime = slot.StartTime.Add(time.Duration(slot.SetupMinutes+slot.RunMinutes) * time.Minute)
	}
	return &slot
}

// Chain links the operations into a linear predecessor chain in order.
func Chain(ops ...*v1alpha1.Operation) []*v1alpha1.Operation {
	for i := 1; i < len(ops); i++ {
		ops[i].Predecessors = append(ops[i].Predecessors, ops[i-1].ID)
		ops[i-1].Successors = append(ops[i-1].Successors, ops[i].ID)
	}
	return ops
}

// MustMonday returns the next Monday 08:00 UTC at or after the reference,
// a convenient aligned plan start for calendar-sensitive specs.
func MustMonday(reference time.Time) time.Time {
	day := time.Date(reference.Year(), reference.Month(), reference.Day(), 8, 0, 0, 0, time.UTC)
	for day.Weekday() != time.Monday || day.Before(reference) {
		day = day.AddDate(0, 0, 1)
	}
	return day
}

// Machines is a helper for building a fleet in one call.
func Machines(count int, overrides ...v1alpha1.Machine) []*v1alpha1.Machine {
	return lo.Times(count, func(_ int) *v1alpha1.Machine { return Machine(overrides...) })
}
