// Package passthrough declares one state var with no rule referencing
// it at all, exercising the compiler's pass-through generation (spec
// §4.2 step 6): the var still gets exactly one assignment per step, an
// identity copy of its own previous value.
package passthrough

import "github.com/evolimo/evolimo/internal/definition"

func build() *definition.Definition {
	return definition.NewBuilder("passthrough").
		WithStateOrder("energy").
		WithStateInit("energy", definition.ConstDist(100)).
		WithGenesInit(definition.ConstDist(0)).
		WithAgents(5).
		WithGeneLen(1).
		WithHiddenLen(1).
		Build()
}

func init() {
	definition.Register("passthrough", build)
}
