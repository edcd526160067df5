// Package initstate draws the initial state tensor and gene population
// from an OutputIR's compiled Distribution entries (spec §4.6 step i).
package initstate

import (
	"fmt"
	"math/rand"

	"github.com/evolimo/evolimo/internal/compiler"
	"github.com/evolimo/evolimo/internal/tensor"
)

// Sample draws n values from dist using rng.
func Sample(dist compiler.DistributionIR, rng *rand.Rand, n int) (*tensor.Dense, error) {
	data := make([]float64, n)
	switch dist.Kind {
	case "const":
		for i := range data {
			data[i] = dist.Value
		}
	case "uniform":
		span := dist.High - dist.Low
		for i := range data {
			data[i] = dist.Low + rng.Float64()*span
		}
	case "normal":
		for i := range data {
			data[i] = dist.Mean + rng.NormFloat64()*dist.Std
		}
	default:
		return nil, fmt.Errorf("initstate.Sample: unknown distribution kind %q", dist.Kind)
	}
	return tensor.FromRows(n, 1, data)
}

// State draws every state var's initial column.
func State(out *compiler.OutputIR, rng *rand.Rand) (map[string]*tensor.Dense, error) {
	state := make(map[string]*tensor.Dense, len(out.StateVars))
	for _, sv := range out.StateVars {
		dist, ok := out.Initialization.State[sv]
		if !ok {
			return nil, fmt.Errorf("initstate.State: no initialization for %q", sv)
		}
		col, err := Sample(dist, rng, out.Constants.NAgents)
		if err != nil {
			return nil, err
		}
		state[sv] = col
	}
	return state, nil
}

// Genes draws the [N, gene_len] gene population, one independent draw
// per cell since a single Distribution governs the whole vector.
func Genes(out *compiler.OutputIR, rng *rand.Rand) (*tensor.Dense, error) {
	n, g := out.Constants.NAgents, out.Constants.GeneLen
	data := make([]float64, n*g)
	for i := 0; i < n*g; i++ {
		col, err := Sample(out.Initialization.Genes, rng, 1)
		if err != nil {
			return nil, err
		}
		data[i] = tensor.At(col, 0, 0)
	}
	return tensor.FromRows(n, g, data)
}
