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
	"sort"

	"github.com/samber/lo"
)

// paretoTopN bounds how many categories a Pareto breakdown reports.
const paretoTopN = 10

// ParetoItem is one ranked category with its share and running total.
type ParetoItem struct {
	Category             string  `json:"category"`
	Value                float64 `json:"value"`
	Percentage           float64 `json:"percentage"`
	CumulativePercentage float64 `json:"cumulativePercentage"`
}

// Pareto ranks categories by value descending, keeps the top ten, and
// annotates each with its percentage of the whole and the cumulative
// percentage. Ties rank alphabetically so output is deterministic.
func Pareto(values map[string]float64) []ParetoItem {
	if len(values) == 0 {
		return nil
	}
	items := lo.MapToSlice(values, func(category string, value float64) ParetoItem {
		return ParetoItem{Category: category, Value: value}
	})
	sort.Slice(items, func(a, b int) bool {
		if items[a].Value != items[b].Value {
			return items[a].Value > items[b].Value
		}
		return items[a].Category < items[b].Category
	})
	total := lo.SumBy(items, func(item ParetoItem) float64 { return item.Value })
	if len(items) > paretoTopN {
		items = items[:paretoTopN]
	}
	var cumulative float64
	for i := range items {
		items[i].Percentage = round2(safeDiv(items[i].Value, total, 0) * 100)
		cumulative += items[i].Percentage
		items[i].CumulativePercentage = round2(cumulative)
	}
	return items
}
