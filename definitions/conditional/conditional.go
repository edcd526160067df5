// Package conditional exercises the where/indicator path: one state
// var is recomputed every step as the indicator of another's sign.
package conditional

import (
	"github.com/evolimo/evolimo/internal/definition"
	"github.com/evolimo/evolimo/internal/ir"
)

func build() *definition.Definition {
	return definition.NewBuilder("conditional").
		WithStateOrder("pos_x", "size").
		WithRule("size", ir.Where(
			ir.Gt(ir.State("pos_x"), ir.Lit(0)),
			ir.Lit(1),
			ir.Lit(0),
		)).
		WithStateInit("pos_x", definition.UniformDist(-5, 5)).
		WithStateInit("size", definition.ConstDist(0)).
		WithGenesInit(definition.ConstDist(0)).
		WithAgents(12).
		WithGeneLen(1).
		WithHiddenLen(1).
		Build()
}

func init() {
	definition.Register("conditional", build)
}
