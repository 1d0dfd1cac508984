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

	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
)

// validateInputs refuses to run the scheduler on structurally broken input.
// Every defect is reported, not just the first.
func (s *Scheduler) validateInputs(operations []*v1alpha1.Operation) error {
	var errs error
	if len(operations) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("no operations to schedule"))
	}
	if len(s.machines) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("no machines available"))
	}
	errs = multierr.Append(errs, s.calendar.Validate())
	errs = multierr.Append(errs, s.policy.Validate())

	machineIDs := lo.SliceToMap(s.machines, func(m *v1alpha1.Machine) (string, struct{}) { return m.ID, struct{}{} })
	for machineID := range s.capabilities {
		if _, ok := machineIDs[machineID]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("capability references unknown machine %q", machineID))
		}
	}
	for _, op := range operations {
		errs = multierr.Append(errs, op.Validate())
		if _, ok := s.workOrders[op.WorkOrderID]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("operation %q references unknown work order %q", op.ID, op.WorkOrderID))
		}
	}
	for _, workOrder := range s.workOrders {
		errs = multierr.Append(errs, workOrder.Validate())
	}
	return errs
}
