// Package toruswrap exercises the torus boundary condition in
// isolation: a rule that always pushes a position outside its declared
// range, so every step must wrap it back in.
package toruswrap

import (
	"github.com/evolimo/evolimo/internal/definition"
	"github.com/evolimo/evolimo/internal/ir"
)

func build() *definition.Definition {
	return definition.NewBuilder("toruswrap").
		WithStateOrder("pos_x").
		WithRule("pos_x", ir.Add(ir.State("pos_x"), ir.Lit(30))).
		WithBoundary("pos_x", definition.BoundaryTorus, -10, 10).
		WithStateInit("pos_x", definition.UniformDist(-10, 10)).
		WithGenesInit(definition.ConstDist(0)).
		WithAgents(8).
		WithGeneLen(1).
		WithHiddenLen(1).
		Build()
}

func init() {
	definition.Register("toruswrap", build)
}
