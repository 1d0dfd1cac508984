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
	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
)

type setupKey struct {
	fromFamily  string
	toFamily    string
	machineType string
}

// SetupMatrix resolves sequence-dependent changeover minutes between
// operation families on a machine type.
type SetupMatrix map[setupKey]int

func NewSetupMatrix(entries ...v1alpha1.SetupMatrixEntry) SetupMatrix {
	m := SetupMatrix{}
	for _, e := range entries {
		m[setupKey{fromFamily: e.FromFamily, toFamily: e.ToFamily, machineType: e.MachineType}] = e.ChangeoverMinutes
	}
	return m
}

// ChangeoverMinutes returns the setup time for next following prev on a
// machine of the given type. Resolution order: exact matrix entry, then the
// incoming operation's declared setup time. Negative figures clamp to zero.
func (m SetupMatrix) ChangeoverMinutes(prev *v1alpha1.Operation, next *v1alpha1.Operation, machineType string) int {
	minutes := next.SetupTimeMinutes
	if prev != nil {
		if entry, ok := m[setupKey{fromFamily: prev.OperationFamily, toFamily: next.OperationFamily, machineType: machineType}]; ok {
			minutes = entry
		}
	}
	if minutes < 0 {
		return 0
	}
	return minutes
}
