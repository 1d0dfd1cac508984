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
	"sort"

	"github.com/samber/lo"

	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
)

// DependencyGraph holds the precedence DAG over one scheduling run's
// operations in arena form: operations in a slice, edges as index pairs.
// Edges referencing operations outside the run's scope are dropped, since
// the scheduler is handed a closed scope per run.
type DependencyGraph struct {
	ops   []*v1alpha1.Operation
	index map[string]int
	preds [][]int
	succs [][]int
}

func NewDependencyGraph(ops []*v1alpha1.Operation) *DependencyGraph {
	arena := make([]*v1alpha1.Operation, len(ops))
	copy(arena, ops)
	sort.Slice(arena, func(a, b int) bool { return arena[a].ID < arena[b].ID })

	g := &DependencyGraph{
		ops:   arena,
		index: make(map[string]int, len(arena)),
		preds: make([][]int, len(arena)),
		succs: make([][]int, len(arena)),
	}
	for i, op := range arena {
		g.index[op.ID] = i
	}
	// Edges are declared from both sides; direction is always
	// predecessor → successor, deduplicated below.
	for i, op := range arena {
		for _, predID := range op.Predecessors {
			if j, ok := g.index[predID]; ok {
				g.addEdge(j, i)
			}
		}
		for _, succID := range op.Successors {
			if j, ok := g.index[succID]; ok {
				g.addEdge(i, j)
			}
		}
	}
	for i := range arena {
		sort.Ints(g.preds[i])
		sort.Ints(g.succs[i])
	}
	return g
}

func (g *DependencyGraph) addEdge(from, to int) {
	if from == to || lo.Contains(g.succs[from], to) {
		return
	}
	g.succs[from] = append(g.succs[from], to)
	g.preds[to] = append(g.preds[to], from)
}

// Operations returns the arena in ID order.
func (g *DependencyGraph) Operations() []*v1alpha1.Operation {
	return g.ops
}

// Predecessors returns the in-scope predecessors of the operation.
func (g *DependencyGraph) Predecessors(op *v1alpha1.Operation) []*v1alpha1.Operation {
	i, ok := g.index[op.ID]
	if !ok {
		return nil
	}
	return lo.Map(g.preds[i], func(j int, _ int) *v1alpha1.Operation { return g.ops[j] })
}

const (
	colorUnvisited = iota
	colorOnStack
	colorDone
)

// Cycles finds dependency cycles with a three-color depth-first search:
// every back edge yields one cycle, reported once as the operation IDs on it.
func (g *DependencyGraph) Cycles() [][]string {
	colors := make([]int, len(g.ops))
	var stack []int
	var cycles [][]string

	var visit func(int)
	visit = func(u int) {
		colors[u] = colorOnStack
		stack = append(stack, u)
		for _, v := range g.succs[u] {
			switch colors[v] {
			case colorUnvisited:
				visit(v)
			case colorOnStack:
				// back edge: the cycle is the stack segment from v to u
				start := lo.IndexOf(stack, v)
				members := stack[start:]
				cycles = append(cycles, lo.Map(members, func(i int, _ int) string { return g.ops[i].ID }))
			}
		}
		stack = stack[:len(stack)-1]
		colors[u] = colorDone
	}
	for i := range g.ops {
		if colors[i] == colorUnvisited {
			visit(i)
		}
	}
	return cycles
}

// Batches layers the graph topologically: each batch is the set of
// operations whose remaining predecessors have all been emitted, so members
// of one batch have no precedence relation among themselves. When a cycle
// blocks progress the remaining operations form one final degenerate batch.
func (g *DependencyGraph) Batches() [][]*v1alpha1.Operation {
	remaining := make([]int, len(g.ops))
	emitted := make([]bool, len(g.ops))
	for i := range g.ops {
		remaining[i] = len(g.preds[i])
	}
	var batches [][]*v1alpha1.Operation
	left := len(g.ops)
	for left > 0 {
		var free []int
		for i := range g.ops {
			if !emitted[i] && remaining[i] == 0 {
				free = append(free, i)
			}
		}
		if len(free) == 0 {
			// cycle fallback: everything left forms the last batch
			for i := range g.ops {
				if !emitted[i] {
					free = append(free, i)
				}
			}
			batches = append(batches, lo.Map(free, func(i int, _ int) *v1alpha1.Operation { return g.ops[i] }))
			break
		}
		for _, i := range free {
			emitted[i] = true
			left--
			for _, j := range g.succs[i] {
				remaining[j]--
			}
		}
		batches = append(batches, lo.Map(free, func(i int, _ int) *v1alpha1.Operation { return g.ops[i] }))
	}
	return batches
}
