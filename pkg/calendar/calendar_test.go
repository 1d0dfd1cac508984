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

package calendar_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
	"github.com/forgeflow/forgeflow-core/pkg/calendar"
	"github.com/forgeflow/forgeflow-core/pkg/test"
)

// 2024-01-01 is a Monday.
var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

var _ = Describe("Calendar", func() {
	Context("working days", func() {
		It("should accept weekdays and reject the weekend", func() {
			cal := calendar.New(test.Calendar())
			Expect(cal.IsWorkingDay(monday)).To(BeTrue())
			Expect(cal.IsWorkingDay(monday.AddDate(0, 0, 4))).To(BeTrue())  // Friday
			Expect(cal.IsWorkingDay(monday.AddDate(0, 0, 5))).To(BeFalse()) // Saturday
		})
		It("should reject exception dates even on working weekdays", func() {
			cal := calendar.New(test.Calendar(v1alpha1.Calendar{Exceptions: []string{"2024-01-01"}}))
			Expect(cal.IsWorkingDay(monday)).To(BeFalse())
			Expect(cal.IsWorkingDay(monday.AddDate(0, 0, 1))).To(BeTrue())
		})
	})

	Context("shift coverage", func() {
		It("should cover a window inside the day shift", func() {
			cal := calendar.New(test.Calendar())
			Expect(cal.TimeCoveredByShifts(monday.Add(9*time.Hour), monday.Add(11*time.Hour))).To(BeTrue())
			Expect(cal.FitsSingleShift(monday.Add(9*time.Hour), monday.Add(11*time.Hour))).To(BeTrue())
		})
		It("should not cover a window leaking past shift end", func() {
			cal := calendar.New(test.Calendar())
			Expect(cal.TimeCoveredByShifts(monday.Add(15*time.Hour), monday.Add(17*time.Hour))).To(BeFalse())
		})
		It("should treat an overnight shift as one window ending the next day", func() {
			cal := calendar.New(test.Calendar(v1alpha1.Calendar{
				Shifts: []v1alpha1.Shift{{Name: "night", Start: "22:00", End: "06:00"}},
			}))
			intervals := cal.ShiftIntervalsOn(monday)
			Expect(intervals).To(HaveLen(1))
			Expect(intervals[0].Minutes()).To(Equal(8 * 60))
			Expect(intervals[0].End).To(Equal(monday.AddDate(0, 0, 1).Add(6 * time.Hour)))
		})
		It("should cover a window straddling midnight on contiguous shifts", func() {
			cal := calendar.New(test.Calendar(v1alpha1.Calendar{
				Shifts:      []v1alpha1.Shift{{Name: "late", Start: "16:00", End: "00:00"}, {Name: "night", Start: "00:00", End: "08:00"}},
				WorkingDays: []int{1, 2, 3, 4, 5},
			}))
			Expect(cal.IsAdmissible(monday.Add(23*time.Hour), monday.AddDate(0, 0, 1).Add(2*time.Hour))).To(BeTrue())
		})
		It("should reject a window touching a non-working day", func() {
			cal := calendar.New(test.Calendar(v1alpha1.Calendar{
				Shifts:      []v1alpha1.Shift{{Name: "night", Start: "22:00", End: "06:00"}},
				WorkingDays: []int{5}, // Friday only
			}))
			friday := monday.AddDate(0, 0, 4)
			// the shift spills into Saturday, but Saturday is non-working
			Expect(cal.IsAdmissible(friday.Add(23*time.Hour), friday.Add(25*time.Hour))).To(BeFalse())
		})
	})

	Context("available minutes", func() {
		It("should subtract breaks from shift capacity", func() {
			cal := calendar.New(test.Calendar(v1alpha1.Calendar{
				Shifts: []v1alpha1.Shift{{Name: "day", Start: "08:00", End: "16:00", BreakMinutes: 45}},
			}))
			Expect(cal.AvailableMinutesOn(monday)).To(Equal(8*60 - 45))
		})
		It("should report zero capacity on non-working days", func() {
			cal := calendar.New(test.Calendar())
			Expect(cal.AvailableMinutesOn(monday.AddDate(0, 0, 5))).To(Equal(0))
		})
		It("should subtract cron maintenance windows landing on the day", func() {
			cal := calendar.New(test.Calendar(v1alpha1.Calendar{
				MaintenanceWindows: []v1alpha1.MaintenanceWindow{{
					Name:            "weekly-pm",
					Schedule:        "0 12 * * 1", // Mondays at noon
					DurationMinutes: 60,
				}},
			}))
			Expect(cal.AvailableMinutesOn(monday)).To(Equal(8*60 - 60))
			Expect(cal.AvailableMinutesOn(monday.AddDate(0, 0, 1))).To(Equal(8 * 60))
		})
	})

	Context("validation", func() {
		It("should surface malformed clock strings", func() {
			cal := calendar.New(test.Calendar(v1alpha1.Calendar{
				Shifts: []v1alpha1.Shift{{Name: "bad", Start: "8am", End: "16:00"}},
			}))
			Expect(cal.Validate()).To(HaveOccurred())
		})
		It("should treat an unparseable shift as absent at run time", func() {
			cal := calendar.New(test.Calendar(v1alpha1.Calendar{
				Shifts: []v1alpha1.Shift{
					{Name: "bad", Start: "25:00", End: "99:99"},
					{Name: "day", Start: "08:00", End: "16:00"},
				},
			}))
			Expect(cal.ShiftIntervalsOn(monday)).To(HaveLen(1))
			Expect(cal.AvailableMinutesOn(monday)).To(Equal(8 * 60))
		})
		It("should reject a calendar with no shifts", func() {
			cal := calendar.New(v1alpha1.Calendar{WorkingDays: []int{1}})
			Expect(cal.Validate()).To(HaveOccurred())
		})
		It("should reject overlapping shifts on the same day", func() {
			cal := calendar.New(test.Calendar(v1alpha1.Calendar{
				Shifts: []v1alpha1.Shift{
					{Name: "one", Start: "08:00", End: "16:00"},
					{Name: "two", Start: "15:00", End: "22:00"},
				},
			}))
			Expect(cal.Validate()).To(HaveOccurred())
		})
	})
})
