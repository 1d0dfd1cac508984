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

package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

type settingsKey struct{}

var ContextKey = settingsKey{}

var defaultSettings = Settings{
	TransferTimeMinutes:   10,
	PlacementGridMinutes:  15,
	DefaultHorizonHours:   168,
	DefaultMaxOverloadPct: 20,
	NonOptimalRunPenalty:  1.2,
	IdealCycleTimeFactor:  0.9,
	BatchMaxDuration:      10 * time.Second,
	BatchIdleDuration:     time.Second,
	PlanCacheTTL:          5 * time.Minute,
}

// Settings holds process-wide scheduling defaults. Every field can be tuned
// through the environment with the FORGEFLOW_ prefix.
type Settings struct {
	// TransferTimeMinutes is the handoff buffer between dependent operations.
	TransferTimeMinutes int `envconfig:"TRANSFER_TIME_MINUTES" validate:"gte=0"`
	// PlacementGridMinutes aligns slot starts to the shop reporting grid.
	PlacementGridMinutes int `envconfig:"PLACEMENT_GRID_MINUTES" validate:"gt=0"`
	// DefaultHorizonHours bounds scheduling when the policy leaves it unset.
	DefaultHorizonHours int `envconfig:"DEFAULT_HORIZON_HOURS" validate:"gt=0"`
	// DefaultMaxOverloadPct is a process-wide default for the tolerated
	// utilization overshoot percentage. The scheduler does not read it; it
	// takes the tolerance from the policy's MaxOverloadPercentage.
	DefaultMaxOverloadPct float64 `envconfig:"DEFAULT_MAX_OVERLOAD_PCT" validate:"gte=0"`
	// NonOptimalRunPenalty inflates run time on machines whose capability
	// match is incidental rather than primary.
	NonOptimalRunPenalty float64 `envconfig:"NONOPTIMAL_RUN_PENALTY" validate:"gte=1"`
	// IdealCycleTimeFactor derives ideal cycle time from observed averages
	// when no standard cycle time is declared.
	IdealCycleTimeFactor float64       `envconfig:"IDEAL_CYCLE_TIME_FACTOR" validate:"gt=0,lte=1"`
	BatchMaxDuration     time.Duration `envconfig:"BATCH_MAX_DURATION" validate:"gt=0"`
	BatchIdleDuration    time.Duration `envconfig:"BATCH_IDLE_DURATION" validate:"gt=0"`
	// PlanCacheTTL bounds how long an unchanged plan input can be answered
	// from the planner's result cache.
	PlanCacheTTL time.Duration `envconfig:"PLAN_CACHE_TTL" validate:"gte=0"`
}

// NewSettingsFromEnv layers FORGEFLOW_-prefixed environment variables over
// the defaults and validates the result.
func NewSettingsFromEnv() (Settings, error) {
	s := defaultSettings
	if err := envconfig.Process("FORGEFLOW", &s); err != nil {
		return Settings{}, fmt.Errorf("parsing settings from environment, %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("validating settings, %w", err)
	}
	return s, nil
}

func (s Settings) Validate() error {
	validate := validator.New()
	return multierr.Combine(
		validate.Struct(s),
	)
}

func ToContext(ctx context.Context, s Settings) context.Context {
	return context.WithValue(ctx, ContextKey, s)
}

// FromContext returns the settings stored in the context, falling back to
// the compiled defaults so pure-library callers need no setup.
func FromContext(ctx context.Context) Settings {
	if data := ctx.Value(ContextKey); data != nil {
		return data.(Settings)
	}
	return defaultSettings
}
