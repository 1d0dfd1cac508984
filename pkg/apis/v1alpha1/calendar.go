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

package v1alpha1

// Shift is a daily working window. Start and End are clock times in "HH:MM"
// form; End at or before Start means the shift rolls over midnight into the
// next calendar day.
type Shift struct {
	Name         string `json:"name"`
	Start        string `json:"start"`
	End          string `json:"end"`
	BreakMinutes int    `json:"breakMinutes,omitempty"`
}

// MaintenanceWindow is a recurring planned-downtime window described by a
// cron expression. Activations subtract from available capacity on the days
// they land on.
type MaintenanceWindow struct {
	Name            string `json:"name"`
	Schedule        string `json:"schedule"`
	DurationMinutes int    `json:"durationMinutes"`
	Reason          string `json:"reason,omitempty"`
}

// Calendar describes when the plant works. WorkingDays holds weekday indices
// with 0=Sunday through 6=Saturday. Exceptions are non-working dates in
// "2006-01-02" form.
type Calendar struct {
	ID                 string              `json:"id,omitempty"`
	Shifts             []Shift             `json:"shifts"`
	WorkingDays        []int               `json:"workingDays"`
	Exceptions         []string            `json:"exceptions,omitempty"`
	MaintenanceWindows []MaintenanceWindow `json:"maintenanceWindows,omitempty"`
}
