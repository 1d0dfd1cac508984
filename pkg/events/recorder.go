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

package events

import (
	"fmt"

	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
)

type EventType string

const (
	EventNormal  EventType = "Normal"
	EventWarning EventType = "Warning"
)

// Event is a human-oriented notification about a plan or an operation. The
// embedding service forwards these to its broadcast channel.
type Event struct {
	Type EventType
	// Reason is a short machine-readable cause, e.g. "PlacementFailed".
	Reason string
	// InvolvedObject identifies the plan, operation, or machine concerned.
	InvolvedObject string
	Message        string
}

// dedupeKey collapses repeats of the same logical event.
func (e Event) dedupeKey() string {
	return fmt.Sprintf("%s/%s/%s", e.Type, e.Reason, e.InvolvedObject)
}

type Recorder interface {
	Publish(Event)
}

// NopRecorder drops all events. Used by pure-function callers and tests.
type NopRecorder struct{}

func (NopRecorder) Publish(Event) {}

func PlanCompleted(planID string, scheduled, total int) Event {
	return Event{
		Type:           EventNormal,
		Reason:         "PlanCompleted",
		InvolvedObject: planID,
		Message:        fmt.Sprintf("scheduled %d out of %d operations", scheduled, total),
	}
}

func PlacementFailed(operationID string, err error) Event {
	return Event{
		Type:           EventWarning,
		Reason:         "PlacementFailed",
		InvolvedObject: operationID,
		Message:        fmt.Sprintf("could not place operation, %s", err),
	}
}

func ConflictDetected(conflict v1alpha1.SchedulingConflict) Event {
	obj := ""
	if len(conflict.AffectedOperations) > 0 {
		obj = conflict.AffectedOperations[0]
	}
	return Event{
		Type:           EventWarning,
		Reason:         "ConflictDetected",
		InvolvedObject: obj,
		Message:        fmt.Sprintf("%s (%s): %s", conflict.Type, conflict.Severity, conflict.Description),
	}
}
