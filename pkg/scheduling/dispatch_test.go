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

package scheduling_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
	"github.com/forgeflow/forgeflow-core/pkg/scheduling"
	"github.com/forgeflow/forgeflow-core/pkg/test"
)

var _ = Describe("Dispatch", func() {
	var reference time.Time

	BeforeEach(func() {
		reference = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	})

	It("should score EDD by time to the planned end date", func() {
		due := reference.Add(4 * time.Hour)
		workOrder := test.WorkOrder(v1alpha1.WorkOrder{PlannedEndDate: &due})
		op := test.Operation(v1alpha1.Operation{WorkOrderID: workOrder.ID})
		Expect(scheduling.PriorityScore(v1alpha1.RuleEDD, op, workOrder, reference)).To(Equal(float64(4 * 60 * 60 * 1000)))
	})
	It("should push missing due dates to the back under EDD and CR", func() {
		workOrder := test.WorkOrder()
		op := test.Operation(v1alpha1.Operation{WorkOrderID: workOrder.ID})
		Expect(math.IsInf(scheduling.PriorityScore(v1alpha1.RuleEDD, op, workOrder, reference), 1)).To(BeTrue())
		Expect(math.IsInf(scheduling.PriorityScore(v1alpha1.RuleCR, op, workOrder, reference), 1)).To(BeTrue())
	})
	It("should score SPT by total processing minutes", func() {
		workOrder := test.WorkOrder(v1alpha1.WorkOrder{Quantity: 3})
		op := test.Operation(v1alpha1.Operation{WorkOrderID: workOrder.ID, SetupTimeMinutes: 30, RunTimePerUnit: 20})
		Expect(scheduling.PriorityScore(v1alpha1.RuleSPT, op, workOrder, reference)).To(Equal(90.0))
	})
	It("should score PRIORITY by the work order's weight", func() {
		urgent := test.WorkOrder(v1alpha1.WorkOrder{Priority: v1alpha1.PriorityUrgent})
		low := test.WorkOrder(v1alpha1.WorkOrder{Priority: v1alpha1.PriorityLow})
		op := test.Operation()
		Expect(scheduling.PriorityScore(v1alpha1.RulePriority, op, urgent, reference)).
			To(BeNumerically("<", scheduling.PriorityScore(v1alpha1.RulePriority, op, low, reference)))
	})
	It("should score FIFO by creation time", func() {
		older := test.WorkOrder(v1alpha1.WorkOrder{CreatedAt: reference.Add(-2 * time.Hour)})
		newer := test.WorkOrder(v1alpha1.WorkOrder{CreatedAt: reference.Add(-time.Hour)})
		op := test.Operation()
		Expect(scheduling.PriorityScore(v1alpha1.RuleFIFO, op, older, reference)).
			To(BeNumerically("<", scheduling.PriorityScore(v1alpha1.RuleFIFO, op, newer, reference)))
	})
	It("should break score ties by operation ID", func() {
		ops := []*v1alpha1.Operation{
			test.Operation(v1alpha1.Operation{ID: "op-b"}),
			test.Operation(v1alpha1.Operation{ID: "op-a"}),
		}
		scheduling.SortByPriority(ops, map[string]float64{"op-a": 1, "op-b": 1})
		Expect(ops[0].ID).To(Equal("op-a"))
	})
})

var _ = Describe("SetupMatrix", func() {
	It("should use the exact matrix entry for a family transition", func() {
		matrix := scheduling.NewSetupMatrix(v1alpha1.SetupMatrixEntry{
			FromFamily: "F1", ToFamily: "F2", MachineType: "CNC_TURNING", ChangeoverMinutes: 45,
		})
		prev := test.Operation(v1alpha1.Operation{OperationFamily: "F1"})
		next := test.Operation(v1alpha1.Operation{OperationFamily: "F2", SetupTimeMinutes: 15})
		Expect(matrix.ChangeoverMinutes(prev, next, "CNC_TURNING")).To(Equal(45))
	})
	It("should fall back to the declared setup time without a previous operation", func() {
		matrix := scheduling.NewSetupMatrix()
		next := test.Operation(v1alpha1.Operation{OperationFamily: "F2", SetupTimeMinutes: 15})
		Expect(matrix.ChangeoverMinutes(nil, next, "CNC_TURNING")).To(Equal(15))
	})
	It("should fall back to the declared setup time for an absent entry", func() {
		matrix := scheduling.NewSetupMatrix(v1alpha1.SetupMatrixEntry{
			FromFamily: "F1", ToFamily: "F2", MachineType: "CNC_MILLING", ChangeoverMinutes: 45,
		})
		prev := test.Operation(v1alpha1.Operation{OperationFamily: "F1"})
		next := test.Operation(v1alpha1.Operation{OperationFamily: "F2", SetupTimeMinutes: 15})
		Expect(matrix.ChangeoverMinutes(prev, next, "CNC_TURNING")).To(Equal(15))
	})
	It("should clamp negative changeover minutes to zero", func() {
		matrix := scheduling.NewSetupMatrix(v1alpha1.SetupMatrixEntry{
			FromFamily: "F1", ToFamily: "F2", MachineType: "CNC_TURNING", ChangeoverMinutes: -5,
		})
		prev := test.Operation(v1alpha1.Operation{OperationFamily: "F1"})
		next := test.Operation(v1alpha1.Operation{OperationFamily: "F2", SetupTimeMinutes: 15})
		Expect(matrix.ChangeoverMinutes(prev, next, "CNC_TURNING")).To(Equal(0))
	})
})

var _ = Describe("Capabilities", func() {
	It("should match an operation to machines through the capability set", func() {
		turning := test.Machine(v1alpha1.Machine{ID: "m-1", Type: "CNC_TURNING"})
		milling := test.Machine(v1alpha1.Machine{ID: "m-2", Type: "CNC_MILLING"})
		capabilities := scheduling.NewCapabilities(test.Capability(turning), test.Capability(milling))
		op := test.Operation(v1alpha1.Operation{MachineTypes: []string{"CNC_MILLING"}})

		feasible := capabilities.FeasibleMachines(op, []*v1alpha1.Machine{turning, milling})
		Expect(feasible).To(HaveLen(1))
		Expect(feasible[0].ID).To(Equal("m-2"))
	})
	It("should report no feasible machines when nothing intersects", func() {
		turning := test.Machine(v1alpha1.Machine{Type: "CNC_TURNING"})
		capabilities := scheduling.NewCapabilities(test.Capability(turning))
		op := test.Operation(v1alpha1.Operation{MachineTypes: []string{"WIRE_CUT"}})
		Expect(capabilities.FeasibleMachines(op, []*v1alpha1.Machine{turning})).To(BeEmpty())
	})
	It("should distinguish primary from secondary matches", func() {
		machine := test.Machine(v1alpha1.Machine{Type: "CNC_TURNING"})
		capabilities := scheduling.NewCapabilities(test.Capability(machine, v1alpha1.MachineCapability{
			MachineTypes: []string{"CNC_TURNING", "CNC_MILLING"},
		}))
		primary := test.Operation(v1alpha1.Operation{MachineTypes: []string{"CNC_TURNING"}})
		secondary := test.Operation(v1alpha1.Operation{MachineTypes: []string{"CNC_MILLING"}})
		Expect(capabilities.Compatible(secondary, machine)).To(Succeed())
		Expect(capabilities.Primary(primary, machine)).To(BeTrue())
		Expect(capabilities.Primary(secondary, machine)).To(BeFalse())
	})
})
