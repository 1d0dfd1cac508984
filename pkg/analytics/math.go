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
	"math"
)

// round2 rounds to two decimal places for display.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// safeDiv divides, yielding the fallback on a zero, NaN, or infinite
// denominator instead of propagating NaN into reports.
func safeDiv(numerator, denominator, fallback float64) float64 {
	if denominator == 0 || math.IsNaN(denominator) || math.IsInf(denominator, 0) {
		return fallback
	}
	result := numerator / denominator
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return fallback
	}
	return result
}
