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

package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
)

const DateFormat = "2006-01-02"

type shift struct {
	name         string
	startMinute  int
	endMinute    int
	breakMinutes int
	// overnight shifts roll their end into the next calendar day
	overnight bool
	valid     bool
	parseErr  error
}

type maintenanceWindow struct {
	name            string
	schedule        cron.Schedule
	durationMinutes int
	parseErr        error
}

// Calendar answers working-time questions for the scheduler: whether a date
// is a working day, whether a window is covered by shifts, and how many
// minutes of capacity a machine day offers. Construction never fails; shifts
// or maintenance windows that do not parse are treated as absent at run time
// and surfaced by Validate before scheduling begins.
type Calendar struct {
	shifts      []shift
	workingDays map[time.Weekday]struct{}
	exceptions  map[string]struct{}
	maintenance []maintenanceWindow
}

func New(api v1alpha1.Calendar) *Calendar {
	c := &Calendar{
		workingDays: map[time.Weekday]struct{}{},
		exceptions:  map[string]struct{}{},
	}
	for _, d := range api.WorkingDays {
		if d >= 0 && d <= 6 {
			c.workingDays[time.Weekday(d)] = struct{}{}
		}
	}
	for _, e := range api.Exceptions {
		c.exceptions[e] = struct{}{}
	}
	for _, s := range api.Shifts {
		parsed := shift{name: s.Name, breakMinutes: s.BreakMinutes}
		start, startErr := parseClock(s.Start)
		end, endErr := parseClock(s.End)
		if err := multierr.Append(startErr, endErr); err != nil {
			parsed.parseErr = fmt.Errorf("shift %q, %w", s.Name, err)
		} else {
			parsed.startMinute = start
			parsed.endMinute = end
			parsed.overnight = end <= start
			parsed.valid = true
		}
		c.shifts = append(c.shifts, parsed)
	}
	cronParser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	for _, m := range api.MaintenanceWindows {
		window := maintenanceWindow{name: m.Name, durationMinutes: m.DurationMinutes}
		if sched, err := cronParser.Parse(m.Schedule); err != nil {
			window.parseErr = fmt.Errorf("maintenance window %q, %w", m.Name, err)
		} else {
			window.schedule = sched
		}
		c.maintenance = append(c.maintenance, window)
	}
	return c
}

// Validate reports every malformed shift clock or maintenance schedule. The
// scheduler refuses to run on a calendar that fails validation.
func (c *Calendar) Validate() error {
	var errs error
	if len(c.shifts) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("calendar has no shifts"))
	}
	for _, s := range c.shifts {
		errs = multierr.Append(errs, s.parseErr)
	}
	for _, m := range c.maintenance {
		errs = multierr.Append(errs, m.parseErr)
	}
	errs = multierr.Append(errs, c.validateShiftOverlap())
	return errs
}

// validateShiftOverlap rejects calendars whose same-day shift windows
// intersect, which would double-count capacity.
func (c *Calendar) validateShiftOverlap() error {
	day := time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC)
	intervals := c.rawShiftIntervalsOn(day)
	for i := 0; i < len(intervals); i++ {
		for j := i + 1; j < len(intervals); j++ {
			if intervals[i].Start.Before(intervals[j].End) && intervals[j].Start.Before(intervals[i].End) {
				return fmt.Errorf("shifts overlap within a single day")
			}
		}
	}
	return nil
}

// IsWorkingDay reports whether the date's weekday is a working day and the
// date is not an exception.
func (c *Calendar) IsWorkingDay(date time.Time) bool {
	if _, excepted := c.exceptions[date.UTC().Format(DateFormat)]; excepted {
		return false
	}
	_, ok := c.workingDays[date.UTC().Weekday()]
	return ok
}

// rawShiftIntervalsOn returns the uncoalesced shift windows anchored to the
// given date. Overnight shifts extend past midnight into the next day.
func (c *Calendar) rawShiftIntervalsOn(date time.Time) []Interval {
	midnight := midnightUTC(date)
	var intervals []Interval
	for _, s := range c.shifts {
		if !s.valid {
			continue
		}
		start := midnight.Add(time.Duration(s.startMinute) * time.Minute)
		end := midnight.Add(time.Duration(s.endMinute) * time.Minute)
		if s.overnight {
			end = end.Add(24 * time.Hour)
		}
		intervals = append(intervals, Interval{Start: start, End: end})
	}
	return intervals
}

// ShiftIntervalsOn returns the coalesced working windows anchored to the
// date, empty when the date is not a working day.
func (c *Calendar) ShiftIntervalsOn(date time.Time) []Interval {
	if !c.IsWorkingDay(date) {
		return nil
	}
	return coalesce(c.rawShiftIntervalsOn(date))
}

// TimeCoveredByShifts reports whether [start, end) on a single date is fully
// covered by the union of that date's shifts, counting spillover from the
// previous day's overnight shift.
func (c *Calendar) TimeCoveredByShifts(start, end time.Time) bool {
	if !end.After(start) {
		return false
	}
	window := Interval{Start: start, End: end}
	intervals := append(c.ShiftIntervalsOn(start.AddDate(0, 0, -1)), c.ShiftIntervalsOn(start)...)
	return lo.SomeBy(coalesce(intervals), func(i Interval) bool { return i.Contains(window) })
}

// FitsSingleShift is the stricter variant requiring the window to sit inside
// one shift interval rather than a union.
func (c *Calendar) FitsSingleShift(start, end time.Time) bool {
	if !end.After(start) {
		return false
	}
	window := Interval{Start: start, End: end}
	for _, date := range []time.Time{start.AddDate(0, 0, -1), start} {
		if !c.IsWorkingDay(date) {
			continue
		}
		if lo.SomeBy(c.rawShiftIntervalsOn(date), func(i Interval) bool { return i.Contains(window) }) {
			return true
		}
	}
	return false
}

// IsAdmissible is the combined placement check: every calendar day the
// window touches must be a working day, and the window must be covered by
// the (possibly cross-midnight contiguous) union of those days' shifts.
func (c *Calendar) IsAdmissible(start, end time.Time) bool {
	if !end.After(start) {
		return false
	}
	window := Interval{Start: start, End: end}
	lastTouched := midnightUTC(end.Add(-time.Minute))
	for day := midnightUTC(start); !day.After(lastTouched); day = day.AddDate(0, 0, 1) {
		if !c.IsWorkingDay(day) {
			return false
		}
	}
	var intervals []Interval
	for day := midnightUTC(start).AddDate(0, 0, -1); !day.After(lastTouched); day = day.AddDate(0, 0, 1) {
		intervals = append(intervals, c.ShiftIntervalsOn(day)...)
	}
	return lo.SomeBy(coalesce(intervals), func(i Interval) bool { return i.Contains(window) })
}

// AvailableMinutesOn is the capacity figure for one date: shift minutes less
// declared breaks and less maintenance activations landing on the date.
// Breaks and maintenance reduce capacity without fragmenting placement.
func (c *Calendar) AvailableMinutesOn(date time.Time) int {
	if !c.IsWorkingDay(date) {
		return 0
	}
	total := 0
	for _, s := range c.shifts {
		if !s.valid {
			continue
		}
		duration := s.endMinute - s.startMinute
		if s.overnight {
			duration += 24 * 60
		}
		total += duration - s.breakMinutes
	}
	total -= c.maintenanceMinutesOn(date)
	if total < 0 {
		return 0
	}
	return total
}

func (c *Calendar) maintenanceMinutesOn(date time.Time) int {
	dayStart := midnightUTC(date)
	dayEnd := dayStart.AddDate(0, 0, 1)
	total := 0
	for _, m := range c.maintenance {
		if m.schedule == nil || m.durationMinutes <= 0 {
			continue
		}
		for t := m.schedule.Next(dayStart.Add(-time.Minute)); t.Before(dayEnd); t = m.schedule.Next(t) {
			window := Interval{Start: t, End: t.Add(time.Duration(m.durationMinutes) * time.Minute)}
			total += window.overlapMinutes(Interval{Start: dayStart, End: dayEnd})
		}
	}
	return total
}

func midnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// parseClock converts "HH:MM" into minutes since midnight.
func parseClock(clock string) (int, error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed clock time %q", clock)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("malformed clock hour %q", clock)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("malformed clock minute %q", clock)
	}
	return hours*60 + minutes, nil
}
