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
	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
)

// QualitySummary aggregates inspection outcomes over the period. Rates are
// percentages rounded to two decimals.
type QualitySummary struct {
	TotalInspections int          `json:"totalInspections"`
	FirstPassYield   float64      `json:"firstPassYield"`
	ScrapRate        float64      `json:"scrapRate"`
	ReworkRate       float64      `json:"reworkRate"`
	DefectPareto     []ParetoItem `json:"defectPareto"`
}

// Quality computes first-pass yield, scrap and rework rates, and the defect
// Pareto over the period's inspections.
func (e *Engine) Quality(input Input) QualitySummary {
	var summary QualitySummary
	var passed, failed, reworked int
	defects := map[string]float64{}
	for _, record := range input.QualityRecords {
		if !input.Period.Contains(record.InspectionDate) {
			continue
		}
		summary.TotalInspections++
		switch record.Result {
		case v1alpha1.InspectionPass:
			passed++
		case v1alpha1.InspectionFail:
			failed++
		case v1alpha1.InspectionRework:
			reworked++
		}
		if record.Result != v1alpha1.InspectionPass && record.DefectType != "" {
			defects[record.DefectType]++
		}
	}
	total := float64(summary.TotalInspections)
	summary.FirstPassYield = round2(safeDiv(float64(passed), total, 0) * 100)
	summary.ScrapRate = round2(safeDiv(float64(failed), total, 0) * 100)
	summary.ReworkRate = round2(safeDiv(float64(reworked), total, 0) * 100)
	summary.DefectPareto = Pareto(defects)
	return summary
}
