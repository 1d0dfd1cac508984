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
	"sort"
	"time"

	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
	"github.com/forgeflow/forgeflow-core/pkg/calendar"
)

// earliestAvailable searches a machine's timeline for the first start at or
// after earliest where a window of the given duration is
// calendar-admissible, free of the machine's existing occupancy, and ends by
// horizonEnd. The cursor starts on the reporting grid at the plan start and
// walks it, hopping over occupied slots, so total work is bounded by the
// horizon divided by the grid plus one hop per slot. A predecessor-derived
// earliest bound is honored exactly rather than grid-rounded, matching how
// handoff buffers land on the floor.
func earliestAvailable(occupancy []*v1alpha1.ScheduleSlot, durationMinutes int, cal *calendar.Calendar, planStart, earliest, horizonEnd time.Time, gridMinutes int) (time.Time, bool) {
	grid := time.Duration(gridMinutes) * time.Minute
	duration := time.Duration(durationMinutes) * time.Minute
	cursor := roundUpToGrid(planStart, grid)
	if earliest.After(cursor) {
		cursor = earliest
	}

	maxSteps := int(horizonEnd.Sub(cursor)/grid) + len(occupancy) + 1
	for step := 0; step < maxSteps; step++ {
		end := cursor.Add(duration)
		if end.After(horizonEnd) {
			return horizonEnd, false
		}
		if conflict := firstOverlap(occupancy, cursor, end); conflict != nil {
			cursor = roundUpToGrid(conflict.EndTime, grid)
			if earliest.After(cursor) {
				cursor = earliest
			}
			continue
		}
		if !cal.IsAdmissible(cursor, end) {
			cursor = cursor.Add(grid)
			continue
		}
		return cursor, true
	}
	return horizonEnd, false
}

// firstOverlap returns the earliest-ending occupied slot intersecting
// [start, end), or nil. Occupancy must be sorted by start time.
func firstOverlap(occupancy []*v1alpha1.ScheduleSlot, start, end time.Time) *v1alpha1.ScheduleSlot {
	for _, slot := range occupancy {
		if !slot.StartTime.Before(end) {
			break
		}
		if slot.EndTime.After(start) {
			return slot
		}
	}
	return nil
}

// insertSorted keeps a machine's occupancy ordered by start time as new
// slots are placed.
func insertSorted(occupancy []*v1alpha1.ScheduleSlot, slot *v1alpha1.ScheduleSlot) []*v1alpha1.ScheduleSlot {
	i := sort.Search(len(occupancy), func(i int) bool { return occupancy[i].StartTime.After(slot.StartTime) })
	occupancy = append(occupancy, nil)
	copy(occupancy[i+1:], occupancy[i:])
	occupancy[i] = slot
	return occupancy
}

func roundUpToGrid(t time.Time, grid time.Duration) time.Time {
	truncated := t.Truncate(grid)
	if truncated.Before(t) {
		return truncated.Add(grid)
	}
	return truncated
}
