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

package planning_test

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
	"github.com/forgeflow/forgeflow-core/pkg/controllers/planning"
	scheduler "github.com/forgeflow/forgeflow-core/pkg/controllers/planning/scheduling"
	"github.com/forgeflow/forgeflow-core/pkg/events"
	"github.com/forgeflow/forgeflow-core/pkg/test"
)

var planStart = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

type fakeRepository struct {
	snapshot    *planning.Snapshot
	snapshotErr error
	storeErr    error
	stored      map[string]*scheduler.Results
	storeCalls  int
}

func (f *fakeRepository) Snapshot(_ context.Context, _ []string) (*planning.Snapshot, error) {
	return f.snapshot, f.snapshotErr
}

func (f *fakeRepository) Store(_ context.Context, planID string, results *scheduler.Results) error {
	f.storeCalls++
	if f.storeErr != nil {
		return f.storeErr
	}
	if f.stored == nil {
		f.stored = map[string]*scheduler.Results{}
	}
	f.stored[planID] = results
	return nil
}

type capturingRecorder struct {
	events []events.Event
}

func (c *capturingRecorder) Publish(evt events.Event) {
	c.events = append(c.events, evt)
}

func snapshotFixture() *planning.Snapshot {
	machine := test.Machine(v1alpha1.Machine{ID: "machine-1"})
	return &planning.Snapshot{
		Operations: []*v1alpha1.Operation{
			test.Operation(v1alpha1.Operation{ID: "op-1", WorkOrderID: "wo-1", SetupTimeMinutes: 30, RunTimePerUnit: 60}),
		},
		WorkOrders:   []*v1alpha1.WorkOrder{test.WorkOrder(v1alpha1.WorkOrder{ID: "wo-1", Quantity: 1})},
		Machines:     []*v1alpha1.Machine{machine},
		Capabilities: []v1alpha1.MachineCapability{test.Capability(machine)},
		Calendar:     test.Calendar(),
	}
}

var _ = Describe("Planner", func() {
	var repo *fakeRepository
	var recorder *capturingRecorder
	var planner *planning.Planner

	BeforeEach(func() {
		repo = &fakeRepository{snapshot: snapshotFixture()}
		recorder = &capturingRecorder{}
		planner = planning.NewPlanner(ctx, repo, recorder)
	})

	It("should schedule and persist a plan", func() {
		results, err := planner.RunPlan(ctx, planning.PlanRequest{
			PlanID:    "plan-1",
			Policy:    v1alpha1.DefaultSchedulingPolicy(),
			PlanStart: planStart,
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(results.Slots).To(HaveLen(1))
		Expect(repo.stored).To(HaveKey("plan-1"))
		Expect(recorder.events).To(ContainElement(HaveField("Reason", "PlanCompleted")))
	})
	It("should not persist a preview", func() {
		results, err := planner.Preview(ctx, planning.PlanRequest{
			PlanID:    "plan-1",
			Policy:    v1alpha1.DefaultSchedulingPolicy(),
			PlanStart: planStart,
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(results.Slots).To(HaveLen(1))
		Expect(repo.stored).To(BeEmpty())
	})
	It("should answer an identical immediate re-run from the cache", func() {
		req := planning.PlanRequest{PlanID: "plan-1", Policy: v1alpha1.DefaultSchedulingPolicy(), PlanStart: planStart}
		first, err := planner.RunPlan(ctx, req)
		Expect(err).ToNot(HaveOccurred())
		second, err := planner.RunPlan(ctx, req)
		Expect(err).ToNot(HaveOccurred())
		Expect(second).To(BeIdenticalTo(first))
		Expect(repo.storeCalls).To(Equal(1))
	})
	It("should surface snapshot failures", func() {
		repo.snapshotErr = fmt.Errorf("database gone")
		_, err := planner.RunPlan(ctx, planning.PlanRequest{PlanID: "plan-1", Policy: v1alpha1.DefaultSchedulingPolicy(), PlanStart: planStart})
		Expect(err).To(MatchError(ContainSubstring("database gone")))
	})
	It("should retry persistence and surface the final failure", func() {
		repo.storeErr = fmt.Errorf("flaky store")
		_, err := planner.RunPlan(ctx, planning.PlanRequest{PlanID: "plan-1", Policy: v1alpha1.DefaultSchedulingPolicy(), PlanStart: planStart})
		Expect(err).To(HaveOccurred())
		Expect(repo.storeCalls).To(Equal(3))
	})
})

var _ = Describe("Slot validation", func() {
	It("should detect overlapping slots on one machine", func() {
		slots := []*v1alpha1.ScheduleSlot{
			test.Slot(v1alpha1.ScheduleSlot{ID: "slot-1", OperationID: "op-1", MachineID: "machine-1", StartTime: planStart, RunMinutes: 120}),
			test.Slot(v1alpha1.ScheduleSlot{ID: "slot-2", OperationID: "op-2", MachineID: "machine-1", StartTime: planStart.Add(time.Hour), RunMinutes: 120}),
		}
		conflicts := planning.ValidateSlots(slots)
		Expect(conflicts).To(HaveLen(1))
		Expect(conflicts[0].Type).To(Equal(v1alpha1.ConflictResource))
		Expect(conflicts[0].AffectedOperations).To(ConsistOf("op-1", "op-2"))
	})
	It("should ignore cancelled slots", func() {
		slots := []*v1alpha1.ScheduleSlot{
			test.Slot(v1alpha1.ScheduleSlot{ID: "slot-1", MachineID: "machine-1", StartTime: planStart, RunMinutes: 120, Status: v1alpha1.SlotCancelled}),
			test.Slot(v1alpha1.ScheduleSlot{ID: "slot-2", MachineID: "machine-1", StartTime: planStart.Add(time.Hour), RunMinutes: 120}),
		}
		Expect(planning.ValidateSlots(slots)).To(BeEmpty())
	})
	It("should flag slot windows that disagree with setup plus run", func() {
		slot := test.Slot(v1alpha1.ScheduleSlot{ID: "slot-1", OperationID: "op-1", MachineID: "machine-1", StartTime: planStart, RunMinutes: 60})
		slot.EndTime = slot.StartTime.Add(2 * time.Hour)
		conflicts := planning.ValidateSlots([]*v1alpha1.ScheduleSlot{slot})
		Expect(conflicts).To(HaveLen(1))
	})
})

var _ = Describe("Slot updates", func() {
	It("should reject moving a locked slot", func() {
		slot := test.Slot(v1alpha1.ScheduleSlot{ID: "slot-1", MachineID: "machine-1", StartTime: planStart, RunMinutes: 60, Locked: true})
		newStart := planStart.Add(time.Hour)
		Expect(planning.ApplyUpdate(slot, planning.SlotUpdate{SlotID: "slot-1", StartTime: &newStart})).ToNot(Succeed())
		Expect(slot.StartTime).To(Equal(planStart))
	})
	It("should allow status changes on a locked slot", func() {
		slot := test.Slot(v1alpha1.ScheduleSlot{ID: "slot-1", MachineID: "machine-1", StartTime: planStart, RunMinutes: 60, Locked: true})
		status := v1alpha1.SlotInProgress
		Expect(planning.ApplyUpdate(slot, planning.SlotUpdate{SlotID: "slot-1", Status: &status})).To(Succeed())
		Expect(slot.Status).To(Equal(v1alpha1.SlotInProgress))
	})
	It("should fail a bulk update atomically when any slot is locked", func() {
		unlocked := test.Slot(v1alpha1.ScheduleSlot{ID: "slot-1", MachineID: "machine-1", StartTime: planStart, RunMinutes: 60})
		locked := test.Slot(v1alpha1.ScheduleSlot{ID: "slot-2", MachineID: "machine-1", StartTime: planStart.Add(2 * time.Hour), RunMinutes: 60, Locked: true})
		newStart := planStart.Add(4 * time.Hour)
		err := planning.ApplyBulkUpdate([]*v1alpha1.ScheduleSlot{unlocked, locked}, []planning.SlotUpdate{
			{SlotID: "slot-1", StartTime: &newStart},
			{SlotID: "slot-2", StartTime: &newStart},
		})
		Expect(err).To(HaveOccurred())
		Expect(unlocked.StartTime).To(Equal(planStart))
	})
})
