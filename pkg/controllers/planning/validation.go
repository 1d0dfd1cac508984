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

package planning

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
)

// ValidateSlots checks an arbitrary slot set for the structural invariants
// every committed schedule must hold: consistent slot arithmetic and no
// double-booked machine time. It backs the transport's validate endpoint.
func ValidateSlots(slots []*v1alpha1.ScheduleSlot) []v1alpha1.SchedulingConflict {
	var conflicts []v1alpha1.SchedulingConflict
	for _, slot := range slots {
		if slot.DurationMinutes() != slot.SetupMinutes+slot.RunMinutes {
			conflicts = append(conflicts, v1alpha1.SchedulingConflict{
				Type:               v1alpha1.ConflictResource,
				Severity:           v1alpha1.SeverityMedium,
				Description:        fmt.Sprintf("slot %q spans %d minute(s) but declares %d setup + %d run", slot.ID, slot.DurationMinutes(), slot.SetupMinutes, slot.RunMinutes),
				AffectedOperations: []string{slot.OperationID},
			})
		}
	}
	for machineID, machineSlots := range lo.GroupBy(lo.Filter(slots, func(s *v1alpha1.ScheduleSlot, _ int) bool { return s.Active() }),
		func(s *v1alpha1.ScheduleSlot) string { return s.MachineID }) {
		sorted := make([]*v1alpha1.ScheduleSlot, len(machineSlots))
		copy(sorted, machineSlots)
		sort.Slice(sorted, func(a, b int) bool { return sorted[a].StartTime.Before(sorted[b].StartTime) })
		for i := 1; i < len(sorted); i++ {
			if sorted[i-1].Overlaps(sorted[i]) {
				conflicts = append(conflicts, v1alpha1.SchedulingConflict{
					Type:                v1alpha1.ConflictResource,
					Severity:            v1alpha1.SeverityHigh,
					Description:         fmt.Sprintf("slots %q and %q overlap on machine %q", sorted[i-1].ID, sorted[i].ID, machineID),
					AffectedOperations:  []string{sorted[i-1].OperationID, sorted[i].OperationID},
					SuggestedResolution: "shift one of the slots to free time",
				})
			}
		}
	}
	sort.SliceStable(conflicts, func(a, b int) bool {
		if conflicts[a].Type != conflicts[b].Type {
			return conflicts[a].Type < conflicts[b].Type
		}
		return firstAffected(conflicts[a]) < firstAffected(conflicts[b])
	})
	return conflicts
}

// SlotUpdate is a partial update to a schedule slot.
type SlotUpdate struct {
	SlotID    string
	StartTime *time.Time
	EndTime   *time.Time
	MachineID *string
	Status    *v1alpha1.SlotStatus
	Locked    *bool
}

// movesSlot reports whether the update would change the slot's placement.
func (u SlotUpdate) movesSlot() bool {
	return u.StartTime != nil || u.EndTime != nil || u.MachineID != nil
}

// ApplyUpdate mutates a slot in place. Locked slots reject any change to
// their start, end, or machine.
func ApplyUpdate(slot *v1alpha1.ScheduleSlot, update SlotUpdate) error {
	if slot.Locked && update.movesSlot() {
		return fmt.Errorf("slot %q is locked", slot.ID)
	}
	if update.StartTime != nil {
		slot.StartTime = *update.StartTime
	}
	if update.EndTime != nil {
		slot.EndTime = *update.EndTime
	}
	if update.MachineID != nil {
		slot.MachineID = *update.MachineID
	}
	if update.Status != nil {
		slot.Status = *update.Status
	}
	if update.Locked != nil {
		slot.Locked = *update.Locked
	}
	return nil
}

// ApplyBulkUpdate applies all updates or none: a single locked or unknown
// slot fails the whole request before anything is mutated.
func ApplyBulkUpdate(slots []*v1alpha1.ScheduleSlot, updates []SlotUpdate) error {
	byID := lo.SliceToMap(slots, func(s *v1alpha1.ScheduleSlot) (string, *v1alpha1.ScheduleSlot) { return s.ID, s })
	var errs error
	for _, update := range updates {
		slot, ok := byID[update.SlotID]
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("unknown slot %q", update.SlotID))
			continue
		}
		if slot.Locked && update.movesSlot() {
			errs = multierr.Append(errs, fmt.Errorf("slot %q is locked", update.SlotID))
		}
	}
	if errs != nil {
		return errs
	}
	for _, update := range updates {
		if err := ApplyUpdate(byID[update.SlotID], update); err != nil {
			return err
		}
	}
	return nil
}
