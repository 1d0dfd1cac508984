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

package scheduling_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/samber/lo"

	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
	"github.com/forgeflow/forgeflow-core/pkg/scheduling"
	"github.com/forgeflow/forgeflow-core/pkg/test"
)

var _ = Describe("DependencyGraph", func() {
	It("should layer a linear chain into single-operation batches", func() {
		ops := test.Chain(
			test.Operation(v1alpha1.Operation{ID: "op-1", WorkOrderID: "wo-1"}),
			test.Operation(v1alpha1.Operation{ID: "op-2", WorkOrderID: "wo-1"}),
			test.Operation(v1alpha1.Operation{ID: "op-3", WorkOrderID: "wo-1"}),
		)
		graph := scheduling.NewDependencyGraph(ops)
		batches := graph.Batches()
		Expect(batches).To(HaveLen(3))
		Expect(batches[0][0].ID).To(Equal("op-1"))
		Expect(batches[1][0].ID).To(Equal("op-2"))
		Expect(batches[2][0].ID).To(Equal("op-3"))
		Expect(graph.Cycles()).To(BeEmpty())
	})
	It("should group independent operations into one batch", func() {
		graph := scheduling.NewDependencyGraph([]*v1alpha1.Operation{
			test.Operation(v1alpha1.Operation{ID: "op-b", WorkOrderID: "wo-1"}),
			test.Operation(v1alpha1.Operation{ID: "op-a", WorkOrderID: "wo-1"}),
		})
		batches := graph.Batches()
		Expect(batches).To(HaveLen(1))
		Expect(lo.Map(batches[0], func(op *v1alpha1.Operation, _ int) string { return op.ID })).To(Equal([]string{"op-a", "op-b"}))
	})
	It("should honor edges declared from either side", func() {
		// op-1 only declares a successor; op-2 declares nothing
		op1 := test.Operation(v1alpha1.Operation{ID: "op-1", WorkOrderID: "wo-1", Successors: []string{"op-2"}})
		op2 := test.Operation(v1alpha1.Operation{ID: "op-2", WorkOrderID: "wo-1"})
		graph := scheduling.NewDependencyGraph([]*v1alpha1.Operation{op1, op2})
		Expect(graph.Predecessors(op2)).To(HaveLen(1))
		Expect(graph.Predecessors(op2)[0].ID).To(Equal("op-1"))
	})
	It("should drop edges to operations outside the scope", func() {
		op := test.Operation(v1alpha1.Operation{ID: "op-1", WorkOrderID: "wo-1", Predecessors: []string{"elsewhere"}})
		graph := scheduling.NewDependencyGraph([]*v1alpha1.Operation{op})
		Expect(graph.Predecessors(op)).To(BeEmpty())
		Expect(graph.Batches()).To(HaveLen(1))
	})
	It("should detect a two-operation cycle and fall back to a degenerate batch", func() {
		op1 := test.Operation(v1alpha1.Operation{ID: "op-1", WorkOrderID: "wo-1", Predecessors: []string{"op-2"}})
		op2 := test.Operation(v1alpha1.Operation{ID: "op-2", WorkOrderID: "wo-1", Predecessors: []string{"op-1"}})
		graph := scheduling.NewDependencyGraph([]*v1alpha1.Operation{op1, op2})
		cycles := graph.Cycles()
		Expect(cycles).To(HaveLen(1))
		Expect(cycles[0]).To(ConsistOf("op-1", "op-2"))
		batches := graph.Batches()
		Expect(batches).To(HaveLen(1))
		Expect(batches[0]).To(HaveLen(2))
	})
	It("should keep the acyclic portion layered ahead of a cycle", func() {
		free := test.Operation(v1alpha1.Operation{ID: "op-0", WorkOrderID: "wo-1"})
		op1 := test.Operation(v1alpha1.Operation{ID: "op-1", WorkOrderID: "wo-1", Predecessors: []string{"op-2"}})
		op2 := test.Operation(v1alpha1.Operation{ID: "op-2", WorkOrderID: "wo-1", Predecessors: []string{"op-1"}})
		graph := scheduling.NewDependencyGraph([]*v1alpha1.Operation{op1, op2, free})
		batches := graph.Batches()
		Expect(batches).To(HaveLen(2))
		Expect(batches[0][0].ID).To(Equal("op-0"))
		Expect(batches[1]).To(HaveLen(2))
	})
})
