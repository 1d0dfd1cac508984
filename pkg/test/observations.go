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

package test

import (
	"github.com/google/uuid"

	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
)

func ProductionLog(overrides ...v1alpha1.ProductionLog) v1alpha1.ProductionLog {
	log := v1alpha1.ProductionLog{}
	mustMerge(&log, overrides...)
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.QuantityProduced == 0 {
		log.QuantityProduced = 1
	}
	return log
}

func DowntimeEvent(overrides ...v1alpha1.DowntimeEvent) v1alpha1.DowntimeEvent {
	event := v1alpha1.DowntimeEvent{}
	mustMerge(&event, overrides...)
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.DurationMinutes == 0 && !event.EndTime.IsZero() {
		event.DurationMinutes = int(event.EndTime.Sub(event.StartTime).Minutes())
	}
	if event.Reason == "" {
		event.Reason = "breakdown"
	}
	return event
}

func QualityRecord(overrides ...v1alpha1.QualityRecord) v1alpha1.QualityRecord {
	record := v1alpha1.QualityRecord{}
	mustMerge(&record, overrides...)
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Result == "" {
		record.Result = v1alpha1.InspectionPass
	}
	return record
}

func OperatorSession(overrides ...v1alpha1.OperatorSession) v1alpha1.OperatorSession {
	session := v1alpha1.OperatorSession{}
	mustMerge(&session, overrides...)
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.OperatorID == "" {
		session.OperatorID = RandomName()
	}
	return session
}
