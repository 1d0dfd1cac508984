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
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
	"github.com/forgeflow/forgeflow-core/pkg/calendar"
)

// buildBuckets aggregates the run's new slots into per-machine, per-day
// capacity figures. A bucket is emitted for every (machine, date) with at
// least one slot, keyed by the UTC date of the slot start.
func (s *Scheduler) buildBuckets() []v1alpha1.CapacityBucket {
	groups := lo.GroupBy(s.newSlots, func(slot *v1alpha1.ScheduleSlot) string {
		return fmt.Sprintf("%s/%s", slot.MachineID, slot.StartTime.UTC().Format(calendar.DateFormat))
	})
	buckets := lo.MapToSlice(groups, func(_ string, slots []*v1alpha1.ScheduleSlot) v1alpha1.CapacityBucket {
		date := slots[0].StartTime.UTC().Format(calendar.DateFormat)
		day, _ := time.Parse(calendar.DateFormat, date)
		planned := lo.SumBy(slots, func(slot *v1alpha1.ScheduleSlot) int { return slot.SetupMinutes + slot.RunMinutes })
		return v1alpha1.NewCapacityBucket(slots[0].MachineID, date, s.calendar.AvailableMinutesOn(day), planned, 0)
	})
	sort.Slice(buckets, func(a, b int) bool {
		if buckets[a].MachineID != buckets[b].MachineID {
			return buckets[a].MachineID < buckets[b].MachineID
		}
		return buckets[a].Date < buckets[b].Date
	})
	return buckets
}
