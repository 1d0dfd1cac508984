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

// nolint:revive
package expectations

import (
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive,stylecheck
	. "github.com/onsi/gomega"    //nolint:revive,stylecheck
	"github.com/samber/lo"

	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
	"github.com/forgeflow/forgeflow-core/pkg/calendar"
)

// ExpectSlotArithmetic asserts every slot's window equals its declared
// setup plus run minutes.
func ExpectSlotArithmetic(slots []*v1alpha1.ScheduleSlot) {
	GinkgoHelper()
	for _, slot := range slots {
		Expect(slot.DurationMinutes()).To(Equal(slot.SetupMinutes+slot.RunMinutes),
			"slot %s window disagrees with setup+run", slot.ID)
	}
}

// ExpectNoOverlap asserts no two active slots on the same machine intersect.
func ExpectNoOverlap(slots []*v1alpha1.ScheduleSlot) {
	GinkgoHelper()
	byMachine := lo.GroupBy(lo.Filter(slots, func(s *v1alpha1.ScheduleSlot, _ int) bool { return s.Active() }),
		func(s *v1alpha1.ScheduleSlot) string { return s.MachineID })
	for _, machineSlots := range byMachine {
		for i := 0; i < len(machineSlots); i++ {
			for j := i + 1; j < len(machineSlots); j++ {
				Expect(machineSlots[i].Overlaps(machineSlots[j])).To(BeFalse(),
					"slots %s and %s overlap on machine %s", machineSlots[i].ID, machineSlots[j].ID, machineSlots[i].MachineID)
			}
		}
	}
}

// ExpectPrecedenceRespected asserts each operation starts no earlier than
// every scheduled predecessor's end plus the transfer buffer.
func ExpectPrecedenceRespected(slots []*v1alpha1.ScheduleSlot, operations []*v1alpha1.Operation, transferMinutes int) {
	GinkgoHelper()
	byOperation := lo.SliceToMap(slots, func(s *v1alpha1.ScheduleSlot) (string, *v1alpha1.ScheduleSlot) { return s.OperationID, s })
	for _, op := range operations {
		slot, ok := byOperation[op.ID]
		if !ok {
			continue
		}
		for _, predID := range op.Predecessors {
			pred, ok := byOperation[predID]
			if !ok {
				continue
			}
			Expect(slot.StartTime).To(BeTemporally(">=", pred.EndTime.Add(time.Duration(transferMinutes)*time.Minute)),
				"operation %s starts before predecessor %s hands off", op.ID, predID)
		}
	}
}

// ExpectAdmissible asserts every slot window is calendar-admissible.
func ExpectAdmissible(cal *calendar.Calendar, slots []*v1alpha1.ScheduleSlot) {
	GinkgoHelper()
	for _, slot := range slots {
		Expect(cal.IsAdmissible(slot.StartTime, slot.EndTime)).To(BeTrue(),
			"slot %s window [%s, %s) is outside working time", slot.ID, slot.StartTime, slot.EndTime)
	}
}
