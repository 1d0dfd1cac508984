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

package scheduling

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/forgeflow/forgeflow-core/pkg/apis/config/settings"
	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
	"github.com/forgeflow/forgeflow-core/pkg/calendar"
	"github.com/forgeflow/forgeflow-core/pkg/logging"
	"github.com/forgeflow/forgeflow-core/pkg/metrics"
	"github.com/forgeflow/forgeflow-core/pkg/scheduling"
)

// Scheduler produces a forward schedule for one plan: an assignment of every
// operation to a machine and a time window, plus capacity buckets and
// conflicts. All working state is owned by a single Solve invocation; the
// scheduler takes no locks and does no I/O.
type Scheduler struct {
	planID       string
	planStart    time.Time
	machines     []*v1alpha1.Machine
	workOrders   map[string]*v1alpha1.WorkOrder
	capabilities scheduling.Capabilities
	calendar     *calendar.Calendar
	setupMatrix  scheduling.SetupMatrix
	policy       v1alpha1.SchedulingPolicy

	transferMinutes   int
	gridMinutes       int
	nonOptimalPenalty float64

	// occupancy is each machine's timeline, seeded from existing
	// non-cancelled slots and extended as this run places new ones.
	occupancy       map[string][]*v1alpha1.ScheduleSlot
	lastOpOnMachine map[string]*v1alpha1.Operation
	scheduledOps    map[string]placement
	newSlots        []*v1alpha1.ScheduleSlot
	conflicts       []v1alpha1.SchedulingConflict
}

type placement struct {
	end       time.Time
	machineID string
}

// Results is the output of one scheduling run.
type Results struct {
	Slots     []*v1alpha1.ScheduleSlot
	Buckets   []v1alpha1.CapacityBucket
	Conflicts []v1alpha1.SchedulingConflict
	Summary   Summary
}

// Summary carries the plan-level figures the preview surface reports.
type Summary struct {
	TotalOperations     int     `json:"totalOperations"`
	ScheduledOperations int     `json:"scheduledOperations"`
	MakespanMinutes     int     `json:"makespanMinutes"`
	MeanUtilization     float64 `json:"meanUtilization"`
}

// AllOperationsScheduled reports whether every operation was placed.
func (r *Results) AllOperationsScheduled() bool {
	return r.Summary.ScheduledOperations == r.Summary.TotalOperations
}

func NewScheduler(ctx context.Context, machines []*v1alpha1.Machine, workOrders []*v1alpha1.WorkOrder,
	capabilities []v1alpha1.MachineCapability, cal *calendar.Calendar, setupMatrix []v1alpha1.SetupMatrixEntry,
	policy v1alpha1.SchedulingPolicy, existingSlots []*v1alpha1.ScheduleSlot, planID string, planStart time.Time) *Scheduler {

	opts := settings.FromContext(ctx)
	transfer := opts.TransferTimeMinutes
	if policy.TransferTimeMinutes != nil {
		transfer = *policy.TransferTimeMinutes
	}
	if policy.HorizonHours == 0 {
		policy.HorizonHours = opts.DefaultHorizonHours
	}
	s := &Scheduler{
		planID:            planID,
		planStart:         planStart.UTC(),
		machines:          machines,
		workOrders:        lo.SliceToMap(workOrders, func(w *v1alpha1.WorkOrder) (string, *v1alpha1.WorkOrder) { return w.ID, w }),
		capabilities:      scheduling.NewCapabilities(capabilities...),
		calendar:          cal,
		setupMatrix:       scheduling.NewSetupMatrix(setupMatrix...),
		policy:            policy,
		transferMinutes:   transfer,
		gridMinutes:       opts.PlacementGridMinutes,
		nonOptimalPenalty: opts.NonOptimalRunPenalty,
		occupancy:         map[string][]*v1alpha1.ScheduleSlot{},
		lastOpOnMachine:   map[string]*v1alpha1.Operation{},
		scheduledOps:      map[string]placement{},
	}
	for _, slot := range existingSlots {
		if slot.Active() {
			s.occupancy[slot.MachineID] = insertSorted(s.occupancy[slot.MachineID], slot)
		}
	}
	return s
}

// Solve runs the main scheduling loop over the given operations. Validation
// failures abort with an error; every other problem is collected into the
// returned conflicts and scheduling continues for the remaining operations.
func (s *Scheduler) Solve(ctx context.Context, operations []*v1alpha1.Operation) (*Results, error) {
	start := time.Now()
	defer func() {
		metrics.SchedulingDurationHistogram.Observe(time.Since(start).Seconds())
	}()
	if err := s.validateInputs(operations); err != nil {
		return nil, fmt.Errorf("validating scheduler inputs, %w", err)
	}

	graph := scheduling.NewDependencyGraph(operations)
	cycleMembers := map[string]struct{}{}
	for _, cycle := range graph.Cycles() {
		for _, id := range cycle {
			cycleMembers[id] = struct{}{}
		}
		s.recordConflict(v1alpha1.SchedulingConflict{
			Type:                v1alpha1.ConflictPrecedenceViolation,
			Severity:            v1alpha1.SeverityCritical,
			Description:         fmt.Sprintf("operations %v form a dependency cycle", cycle),
			AffectedOperations:  cycle,
			SuggestedResolution: "remove one of the cycle's predecessor links",
		})
	}

	horizonEnd := s.planStart.Add(time.Duration(s.policy.HorizonHours) * time.Hour)
	for _, batch := range graph.Batches() {
		scores := lo.SliceToMap(batch, func(op *v1alpha1.Operation) (string, float64) {
			return op.ID, scheduling.PriorityScore(s.policy.Rule, op, s.workOrders[op.WorkOrderID], s.planStart)
		})
		scheduling.SortByPriority(batch, scores)
		for _, op := range batch {
			_, inCycle := cycleMembers[op.ID]
			s.place(ctx, graph, op, scores[op.ID], horizonEnd, inCycle)
		}
	}

	s.sortConflicts()
	buckets := s.buildBuckets()
	summary := s.summarize(len(operations))
	if len(buckets) > 0 {
		summary.MeanUtilization = lo.SumBy(buckets, func(b v1alpha1.CapacityBucket) float64 { return b.Utilization }) / float64(len(buckets))
	}
	results := &Results{
		Slots:     s.newSlots,
		Buckets:   buckets,
		Conflicts: s.conflicts,
		Summary:   summary,
	}
	logging.FromContext(ctx).With("planID", s.planID).Infof("scheduled %d out of %d operation(s) with %d conflict(s)",
		results.Summary.ScheduledOperations, results.Summary.TotalOperations, len(results.Conflicts))
	return results, nil
}

// place evaluates every feasible machine for the operation and commits the
// earliest-finishing candidate. Cycle members are placed best-effort with
// their unresolvable predecessors ignored; the cycle itself was already
// reported.
func (s *Scheduler) place(ctx context.Context, graph *scheduling.DependencyGraph, op *v1alpha1.Operation, score float64, horizonEnd time.Time, inCycle bool) {
	earliest, ok := s.predecessorEarliestStart(graph, op, inCycle)
	if !ok {
		metrics.OperationsFailedCounter.WithLabelValues(string(s.policy.Rule)).Inc()
		return
	}

	feasible := s.capabilities.FeasibleMachines(op, s.machines)
	if len(feasible) == 0 {
		s.recordConflict(v1alpha1.SchedulingConflict{
			Type:                v1alpha1.ConflictResource,
			Severity:            v1alpha1.SeverityHigh,
			Description:         fmt.Sprintf("no machine satisfies types %v required by operation %q", op.MachineTypes, op.ID),
			AffectedOperations:  []string{op.ID},
			SuggestedResolution: "add the required capability to a machine or retype the operation",
		})
		metrics.OperationsFailedCounter.WithLabelValues(string(s.policy.Rule)).Inc()
		return
	}

	quantity := 1
	if workOrder := s.workOrders[op.WorkOrderID]; workOrder != nil {
		quantity = workOrder.Quantity
	}

	type candidate struct {
		machine *v1alpha1.Machine
		start   time.Time
		end     time.Time
		setup   int
		run     int
	}
	var best *candidate
	logger := logging.FromContext(ctx)
	for _, machine := range feasible {
		setup := s.setupMatrix.ChangeoverMinutes(s.lastOpOnMachine[machine.ID], op, machine.Type)
		run := int(math.Ceil(op.RunTimePerUnit * float64(quantity) / machine.EffectiveEfficiency()))
		if len(op.MachineTypes) > 0 && len(s.capabilities.MachineTypes(machine.ID)) > 0 && !s.capabilities.Primary(op, machine) {
			run = int(math.Ceil(float64(run) * s.nonOptimalPenalty))
		}
		duration := setup + run

		start, placed := earliestAvailable(s.occupancy[machine.ID], duration, s.calendar, s.planStart, earliest, horizonEnd, s.gridMinutes)
		if !placed {
			logger.With("operation", op.ID, "machine", machine.ID).Debugf("no window of %d minute(s) within horizon", duration)
			continue
		}
		end := start.Add(time.Duration(duration) * time.Minute)
		if best == nil || end.Before(best.end) {
			best = &candidate{machine: machine, start: start, end: end, setup: setup, run: run}
		}
	}
	if best == nil {
		s.recordConflict(v1alpha1.SchedulingConflict{
			Type:                v1alpha1.ConflictResource,
			Severity:            v1alpha1.SeverityCritical,
			Description:         fmt.Sprintf("no machine can fit operation %q within the %dh horizon", op.ID, s.policy.HorizonHours),
			AffectedOperations:  []string{op.ID},
			SuggestedResolution: "extend the horizon or free capacity on a feasible machine",
		})
		metrics.OperationsFailedCounter.WithLabelValues(string(s.policy.Rule)).Inc()
		return
	}

	slot := &v1alpha1.ScheduleSlot{
		ID:             fmt.Sprintf("%s-%s", s.planID, op.ID),
		PlanID:         s.planID,
		WorkOrderID:    op.WorkOrderID,
		OperationID:    op.ID,
		MachineID:      best.machine.ID,
		StartTime:      best.start,
		EndTime:        best.end,
		SetupMinutes:   best.setup,
		RunMinutes:     best.run,
		Quantity:       quantity,
		PriorityScore:  score,
		SchedulingRule: string(s.policy.Rule),
		Status:         v1alpha1.SlotScheduled,
	}
	s.newSlots = append(s.newSlots, slot)
	s.occupancy[best.machine.ID] = insertSorted(s.occupancy[best.machine.ID], slot)
	s.lastOpOnMachine[best.machine.ID] = op
	s.scheduledOps[op.ID] = placement{end: best.end, machineID: best.machine.ID}
	metrics.OperationsScheduledCounter.WithLabelValues(string(s.policy.Rule)).Inc()

	s.checkOverload(best.machine, best.start)
	if op.DueDate != nil && best.end.After(*op.DueDate) {
		s.recordConflict(v1alpha1.SchedulingConflict{
			Type:                v1alpha1.ConflictDeadlineMissed,
			Severity:            v1alpha1.SeverityHigh,
			Description:         fmt.Sprintf("operation %q finishes at %s, after its due date %s", op.ID, best.end.Format(time.RFC3339), op.DueDate.Format(time.RFC3339)),
			AffectedOperations:  []string{op.ID},
			SuggestedResolution: "raise the work order priority or add capacity",
		})
	}
}

// predecessorEarliestStart returns the transfer-buffered earliest start
// implied by the operation's scheduled predecessors. A predecessor without a
// slot is a precedence violation; the operation is skipped.
func (s *Scheduler) predecessorEarliestStart(graph *scheduling.DependencyGraph, op *v1alpha1.Operation, inCycle bool) (time.Time, bool) {
	earliest := s.planStart
	for _, pred := range graph.Predecessors(op) {
		placed, ok := s.scheduledOps[pred.ID]
		if !ok {
			if inCycle {
				continue
			}
			s.recordConflict(v1alpha1.SchedulingConflict{
				Type:                v1alpha1.ConflictPrecedenceViolation,
				Severity:            v1alpha1.SeverityHigh,
				Description:         fmt.Sprintf("operation %q cannot start before unscheduled predecessor %q", op.ID, pred.ID),
				AffectedOperations:  []string{op.ID, pred.ID},
				SuggestedResolution: "resolve the predecessor's conflict first",
			})
			return time.Time{}, false
		}
		if buffered := placed.end.Add(time.Duration(s.transferMinutes) * time.Minute); buffered.After(earliest) {
			earliest = buffered
		}
	}
	return earliest, true
}

// checkOverload emits a capacity conflict when overload is allowed and the
// machine's day has drifted past the tolerated utilization.
func (s *Scheduler) checkOverload(machine *v1alpha1.Machine, day time.Time) {
	if !s.policy.AllowOverload {
		return
	}
	available := s.calendar.AvailableMinutesOn(day)
	if available <= 0 {
		return
	}
	date := day.UTC().Format(calendar.DateFormat)
	planned := lo.SumBy(s.occupancy[machine.ID], func(slot *v1alpha1.ScheduleSlot) int {
		if slot.StartTime.UTC().Format(calendar.DateFormat) != date {
			return 0
		}
		return slot.SetupMinutes + slot.RunMinutes
	})
	utilization := float64(planned) / float64(available)
	if utilization*100 > 100+s.policy.MaxOverloadPercentage {
		s.recordConflict(v1alpha1.SchedulingConflict{
			Type:     v1alpha1.ConflictCapacityOverload,
			Severity: v1alpha1.SeverityMedium,
			Description: fmt.Sprintf("machine %q is loaded to %.0f%% of capacity on %s, above the %.0f%% tolerance",
				machine.ID, utilization*100, date, 100+s.policy.MaxOverloadPercentage),
			AffectedOperations:  lo.Map(s.machineSlotsOn(machine.ID, date), func(slot *v1alpha1.ScheduleSlot, _ int) string { return slot.OperationID }),
			SuggestedResolution: "move load to another day or machine",
		})
	}
}

func (s *Scheduler) machineSlotsOn(machineID, date string) []*v1alpha1.ScheduleSlot {
	return lo.Filter(s.occupancy[machineID], func(slot *v1alpha1.ScheduleSlot, _ int) bool {
		return slot.StartTime.UTC().Format(calendar.DateFormat) == date
	})
}

func (s *Scheduler) recordConflict(conflict v1alpha1.SchedulingConflict) {
	s.conflicts = append(s.conflicts, conflict)
	metrics.ConflictsCounter.WithLabelValues(string(conflict.Type), string(conflict.Severity)).Inc()
}

// sortConflicts gives the conflict list a stable, deterministic order.
func (s *Scheduler) sortConflicts() {
	sort.SliceStable(s.conflicts, func(a, b int) bool {
		if s.conflicts[a].Type != s.conflicts[b].Type {
			return s.conflicts[a].Type < s.conflicts[b].Type
		}
		return firstAffected(s.conflicts[a]) < firstAffected(s.conflicts[b])
	})
}

func firstAffected(c v1alpha1.SchedulingConflict) string {
	if len(c.AffectedOperations) == 0 {
		return ""
	}
	return c.AffectedOperations[0]
}

func (s *Scheduler) summarize(totalOperations int) Summary {
	summary := Summary{
		TotalOperations:     totalOperations,
		ScheduledOperations: len(s.newSlots),
	}
	if len(s.newSlots) > 0 {
		first := lo.MinBy(s.newSlots, func(a, b *v1alpha1.ScheduleSlot) bool { return a.StartTime.Before(b.StartTime) })
		last := lo.MaxBy(s.newSlots, func(a, b *v1alpha1.ScheduleSlot) bool { return a.EndTime.After(b.EndTime) })
		summary.MakespanMinutes = int(last.EndTime.Sub(first.StartTime) / time.Minute)
	}
	return summary
}
