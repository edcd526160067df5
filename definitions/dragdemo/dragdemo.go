// Package dragdemo is the simplest possible dynamics module: a single
// velocity decaying under constant drag, with no parameter groups or
// grid path at all. It exists to exercise the core compile/run loop
// end to end with a hand-checkable closed form.
package dragdemo

import (
	"github.com/evolimo/evolimo/internal/definition"
	"github.com/evolimo/evolimo/internal/ir"
)

const drag = 0.5
const dt = 0.1

func build() *definition.Definition {
	return definition.NewBuilder("dragdemo").
		WithStateOrder("pos_x", "vel_x").
		WithRule("vel_x", ir.Sub(
			ir.State("vel_x"),
			ir.Mul(ir.Mul(ir.State("vel_x"), ir.Lit(drag)), ir.Lit(dt)),
		)).
		WithStateInit("pos_x", definition.ConstDist(0)).
		WithStateInit("vel_x", definition.ConstDist(1.0)).
		WithGenesInit(definition.ConstDist(0)).
		WithAgents(4).
		WithGeneLen(1).
		WithHiddenLen(1).
		Build()
}

func init() {
	definition.Register("dragdemo", build)
}
