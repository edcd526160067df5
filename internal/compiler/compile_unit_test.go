package compiler

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/evolimo/evolimo/internal/definition"
	"github.com/evolimo/evolimo/internal/ir"
)

func baseBuilder(name string) definition.Builder {
	return definition.NewBuilder(name).
		WithGenesInit(definition.ConstDist(0)).
		WithAgents(4).
		WithGeneLen(1).
		WithHiddenLen(1)
}

var _ = Describe("Compile", func() {
	Context("state-var column stability", func() {
		It("orders declared vars first, then referenced-but-undeclared vars lexically", func() {
			def := baseBuilder("order").
				WithStateOrder("b", "a").
				WithRule("b", ir.State("b")).
				WithRule("a", ir.State("a")).
				WithRule("z", ir.State("z")).
				WithStateInit("a", definition.ConstDist(0)).
				WithStateInit("b", definition.ConstDist(0)).
				WithStateInit("z", definition.ConstDist(0)).
				Build()

			out, _, err := Compile(def)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.StateVars).To(Equal([]string{"b", "a", "z"}))
		})

		It("is unaffected by the order rules are declared in", func() {
			defA := baseBuilder("orderA").
				WithStateOrder("x", "y").
				WithRule("x", ir.State("x")).
				WithRule("y", ir.State("y")).
				WithStateInit("x", definition.ConstDist(0)).
				WithStateInit("y", definition.ConstDist(0)).
				Build()
			defB := baseBuilder("orderB").
				WithStateOrder("x", "y").
				WithRule("y", ir.State("y")).
				WithRule("x", ir.State("x")).
				WithStateInit("x", definition.ConstDist(0)).
				WithStateInit("y", definition.ConstDist(0)).
				Build()

			outA, _, errA := Compile(defA)
			outB, _, errB := Compile(defB)
			Expect(errA).NotTo(HaveOccurred())
			Expect(errB).NotTo(HaveOccurred())
			Expect(outA.StateVars).To(Equal(outB.StateVars))
		})
	})

	Context("CSE idempotence", func() {
		It("emits exactly one op for two structurally identical subtrees", func() {
			shared := ir.Add(ir.State("x"), ir.Lit(1))
			def := baseBuilder("cse").
				WithStateOrder("a", "b").
				WithRule("a", shared).
				WithRule("b", ir.Add(shared, ir.Lit(0))).
				WithStateInit("a", definition.ConstDist(0)).
				WithStateInit("b", definition.ConstDist(0)).
				WithStateInit("x", definition.ConstDist(0)).
				Build()

			out, stats, err := Compile(def)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.CSEHits).To(BeNumerically(">=", 1))

			addCount := 0
			for _, op := range out.Operations {
				if op.Op == "add" && len(op.Args) == 2 {
					addCount++
				}
			}
			Expect(addCount).To(Equal(2)) // shared "x+1" once, "shared+0" once
		})

		It("collapses two identical stencil kernels to one stencil op", func() {
			kernel := func(c, n ir.Expr) ir.Expr { return ir.Sub(n, c) }
			pos := ir.Cat(1, ir.State("pos_x"), ir.State("pos_y"))
			scattered := ir.Scatter(pos, ir.State("pos_x"), ir.State("pos_y"))
			s1 := ir.Stencil(scattered, 1, kernel)
			s2 := ir.Stencil(scattered, 1, func(c, n ir.Expr) ir.Expr { return ir.Sub(n, c) })

			def := baseBuilder("stencilcse").
				WithStateOrder("pos_x", "pos_y", "a", "b").
				WithGrid(4, 4, 4, 1, 1).
				WithRule("a", ir.Gather(s1, ir.State("pos_x"), ir.State("pos_y"))).
				WithRule("b", ir.Gather(s2, ir.State("pos_x"), ir.State("pos_y"))).
				WithStateInit("pos_x", definition.ConstDist(0)).
				WithStateInit("pos_y", definition.ConstDist(0)).
				WithStateInit("a", definition.ConstDist(0)).
				WithStateInit("b", definition.ConstDist(0)).
				Build()

			out, stats, err := Compile(def)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.CSEHits).To(BeNumerically(">=", 1))

			stencilCount := 0
			for _, op := range out.Operations {
				if op.Op == "stencil" {
					stencilCount++
				}
			}
			Expect(stencilCount).To(Equal(1))
		})
	})

	Context("pass-through closure", func() {
		It("assigns every state var exactly once, rule or pass-through", func() {
			def := baseBuilder("passthrough").
				WithStateOrder("energy", "pos_x").
				WithRule("pos_x", ir.Add(ir.State("pos_x"), ir.Lit(1))).
				WithStateInit("energy", definition.ConstDist(100)).
				WithStateInit("pos_x", definition.ConstDist(0)).
				Build()

			out, _, err := Compile(def)
			Expect(err).NotTo(HaveOccurred())

			assignedTo := map[string]int{}
			for _, op := range out.Operations {
				if op.Op == "assign" {
					assignedTo[op.Target]++
				}
			}
			Expect(assignedTo["energy"]).To(Equal(1))
			Expect(assignedTo["pos_x"]).To(Equal(1))
		})
	})

	Context("initialization coverage", func() {
		It("fails when a referenced state var has no initialization", func() {
			def := baseBuilder("missinginit").
				WithStateOrder("a").
				WithRule("a", ir.State("a")).
				Build()

			_, _, err := Compile(def)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("a"))
		})
	})

	Context("unknown parameter group", func() {
		It("fails naming the offending identifier", func() {
			def := baseBuilder("unknowngroup").
				WithStateOrder("a").
				WithRule("a", ir.Param("strength", "nosuchgroup")).
				WithStateInit("a", definition.ConstDist(0)).
				Build()

			_, _, err := Compile(def)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("nosuchgroup"))
		})
	})
})
