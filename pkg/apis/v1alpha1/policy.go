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

import (
	"fmt"

	"github.com/samber/lo"
)

// SchedulingRule selects the dispatching heuristic used to order operations
// within a dependency batch.
type SchedulingRule string

const (
	RuleEDD      SchedulingRule = "EDD"
	RuleSPT      SchedulingRule = "SPT"
	RuleCR       SchedulingRule = "CR"
	RuleFIFO     SchedulingRule = "FIFO"
	RulePriority SchedulingRule = "PRIORITY"
)

func KnownRules() []SchedulingRule {
	return []SchedulingRule{RuleEDD, RuleSPT, RuleCR, RuleFIFO, RulePriority}
}

// SchedulingPolicy parameterizes one scheduler run.
type SchedulingPolicy struct {
	Rule                  SchedulingRule `json:"rule"`
	HorizonHours          int            `json:"horizonHours"`
	AllowOverload         bool           `json:"allowOverload"`
	MaxOverloadPercentage float64        `json:"maxOverloadPercentage"`
	// TransferTimeMinutes overrides the process-wide handoff buffer between
	// dependent operations when set.
	TransferTimeMinutes *int `json:"transferTimeMinutes,omitempty"`
}

// DefaultSchedulingPolicy is a one-week FIFO horizon with a 20% overload
// tolerance.
func DefaultSchedulingPolicy() SchedulingPolicy {
	return SchedulingPolicy{
		Rule:                  RuleFIFO,
		HorizonHours:          168,
		AllowOverload:         false,
		MaxOverloadPercentage: 20,
	}
}

func (p SchedulingPolicy) Validate() error {
	if !lo.Contains(KnownRules(), p.Rule) {
		return fmt.Errorf("unknown scheduling rule %q", p.Rule)
	}
	if p.HorizonHours <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", p.HorizonHours)
	}
	if p.MaxOverloadPercentage < 0 {
		return fmt.Errorf("max overload percentage must be non-negative, got %v", p.MaxOverloadPercentage)
	}
	if p.TransferTimeMinutes != nil && *p.TransferTimeMinutes < 0 {
		return fmt.Errorf("transfer time must be non-negative, got %d", *p.TransferTimeMinutes)
	}
	return nil
}
