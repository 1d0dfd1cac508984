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
	"sort"

	"github.com/samber/lo"

	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
)

// Capabilities indexes machine capability records by machine so feasibility
// checks are a set intersection per machine. Since the underlying types are
// slices and maps, this type should not be used as a pointer.
type Capabilities map[string][]v1alpha1.MachineCapability

func NewCapabilities(capabilities ...v1alpha1.MachineCapability) Capabilities {
	c := Capabilities{}
	for _, capability := range capabilities {
		c[capability.MachineID] = append(c[capability.MachineID], capability)
	}
	return c
}

// MachineTypes returns the union of type families the machine can satisfy.
func (c Capabilities) MachineTypes(machineID string) []string {
	return lo.Uniq(lo.FlatMap(c[machineID], func(capability v1alpha1.MachineCapability, _ int) []string {
		return capability.MachineTypes
	}))
}

// Compatible returns nil iff the operation's accepted machine types
// intersect the machine's declared capabilities.
func (c Capabilities) Compatible(op *v1alpha1.Operation, machine *v1alpha1.Machine) error {
	types := c.MachineTypes(machine.ID)
	if len(lo.Intersect(op.MachineTypes, types)) == 0 {
		return fmt.Errorf("operation %q requires one of %v, machine %q offers %v", op.ID, op.MachineTypes, machine.ID, types)
	}
	return nil
}

// Primary reports whether the machine's own type is among the operation's
// accepted types. A match that only goes through secondary capability
// families is workable but carries a run-time penalty.
func (c Capabilities) Primary(op *v1alpha1.Operation, machine *v1alpha1.Machine) bool {
	return lo.Contains(op.MachineTypes, machine.Type)
}

// FeasibleMachines filters the fleet down to machines the operation can run
// on, in sorted machine-ID order for determinism.
func (c Capabilities) FeasibleMachines(op *v1alpha1.Operation, machines []*v1alpha1.Machine) []*v1alpha1.Machine {
	feasible := lo.Filter(machines, func(machine *v1alpha1.Machine, _ int) bool {
		return c.Compatible(op, machine) == nil
	})
	return sortedByID(feasible)
}

func sortedByID(machines []*v1alpha1.Machine) []*v1alpha1.Machine {
	sorted := make([]*v1alpha1.Machine, len(machines))
	copy(sorted, machines)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].ID < sorted[b].ID })
	return sorted
}
