// Package softmaxheads exercises a parameter group with a softmax
// head: both of its parameters are referenced by a rule so the
// compiler collects them into one group, and the phenotype engine's
// softmax activation must leave each agent's row summing to 1.
package softmaxheads

import (
	"github.com/evolimo/evolimo/internal/definition"
	"github.com/evolimo/evolimo/internal/ir"
)

func build() *definition.Definition {
	return definition.NewBuilder("softmaxheads").
		WithStateOrder("upkeep").
		WithParamGroup("attr", definition.ActivationSoftmax).
		WithRule("upkeep", ir.Add(
			ir.Param("metabolism", "attr"),
			ir.Param("move_cost", "attr"),
		)).
		WithStateInit("upkeep", definition.ConstDist(0)).
		WithGenesInit(definition.UniformDist(-1, 1)).
		WithAgents(16).
		WithGeneLen(3).
		WithHiddenLen(4).
		Build()
}

func init() {
	definition.Register("softmaxheads", build)
}
