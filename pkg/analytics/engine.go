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

package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/forgeflow/forgeflow-core/pkg/apis/config/settings"
	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
	"github.com/forgeflow/forgeflow-core/pkg/logging"
	"github.com/forgeflow/forgeflow-core/pkg/metrics"
)

// Period is a closed reporting window [From, To].
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.From) && !t.After(p.To)
}

func (p Period) Validate() error {
	if p.To.Before(p.From) {
		return fmt.Errorf("period end precedes start")
	}
	return nil
}

// Input is everything the analytics engine reads. It is treated as
// immutable; the engine is a pure function over it.
type Input struct {
	Machines         []*v1alpha1.Machine
	WorkOrders       []*v1alpha1.WorkOrder
	ProductionLogs   []v1alpha1.ProductionLog
	DowntimeEvents   []v1alpha1.DowntimeEvent
	QualityRecords   []v1alpha1.QualityRecord
	ScheduleSlots    []*v1alpha1.ScheduleSlot
	OperatorSessions []v1alpha1.OperatorSession
	Period           Period
	// StandardCycleTimes maps machine ID to a declared standard cycle time
	// in minutes. When present it supersedes the observed-average heuristic
	// for the OEE performance factor.
	StandardCycleTimes map[string]float64
}

// KPIs is the aggregate report the engine produces.
type KPIs struct {
	Period      Period               `json:"period"`
	OEE         []MachineOEE         `json:"oee"`
	Adherence   AdherenceReport      `json:"adherence"`
	Utilization []MachineUtilization `json:"utilization"`
	Quality     QualitySummary       `json:"quality"`
}

// Engine computes production KPIs over historical records. All methods are
// pure; Compute only adds logging and metrics around them.
type Engine struct {
	// idealCycleFactor derives ideal cycle time from the observed average
	// when no standard cycle time is declared for a machine.
	idealCycleFactor float64
}

func NewEngine(ctx context.Context) *Engine {
	return &Engine{
		idealCycleFactor: settings.FromContext(ctx).IdealCycleTimeFactor,
	}
}

func (e *Engine) Compute(ctx context.Context, input Input) (*KPIs, error) {
	start := time.Now()
	defer func() {
		metrics.AnalyticsDurationHistogram.Observe(time.Since(start).Seconds())
	}()
	if err := input.Period.Validate(); err != nil {
		return nil, fmt.Errorf("validating analytics period, %w", err)
	}
	kpis := &KPIs{
		Period:      input.Period,
		OEE:         e.OEE(input),
		Adherence:   e.Adherence(input),
		Utilization: e.Utilization(input),
		Quality:     e.Quality(input),
	}
	logging.FromContext(ctx).With("machines", len(input.Machines)).Debugf("computed KPIs for period %s to %s",
		input.Period.From.Format(time.RFC3339), input.Period.To.Format(time.RFC3339))
	return kpis, nil
}
