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

type MachineStatus string

const (
	MachineRunning     MachineStatus = "running"
	MachineIdle        MachineStatus = "idle"
	MachineSetup       MachineStatus = "setup"
	MachineMaintenance MachineStatus = "maintenance"
	MachineError       MachineStatus = "error"
)

// Machine is a shop-floor resource that operations are placed onto.
type Machine struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Type       string        `json:"type"`
	Status     MachineStatus `json:"status"`
	Efficiency float64       `json:"efficiency"`
	Location   string        `json:"location,omitempty"`
	Operation  string        `json:"operation,omitempty"`
}

// EffectiveEfficiency clamps the machine efficiency into (0, 1] so duration
// adjustment never divides by zero or inflates past nominal.
func (m *Machine) EffectiveEfficiency() float64 {
	if m.Efficiency <= 0 {
		return 0.01
	}
	if m.Efficiency > 1 {
		return 1
	}
	return m.Efficiency
}

// MachineCapability binds a machine to the machine-type families it can
// satisfy, with a pair-specific efficiency factor.
type MachineCapability struct {
	ID               string   `json:"id"`
	MachineID        string   `json:"machineId"`
	MachineTypes     []string `json:"machineTypes"`
	EfficiencyFactor float64  `json:"efficiencyFactor,omitempty"`
}
