package gridgravity

import (
	"math"
	"math/rand"
	"testing"

	"github.com/evolimo/evolimo/internal/compiler"
	"github.com/evolimo/evolimo/internal/initstate"
	"github.com/evolimo/evolimo/internal/phenotype"
	"github.com/evolimo/evolimo/internal/runtime"
	"github.com/evolimo/evolimo/internal/tensor"
)

// The gravitational stencil's pairwise pull cancels to zero net
// momentum change across all agents every step (spec §8 property 7).
func TestNetMomentumChangeIsZero(t *testing.T) {
	out, _, err := compiler.Compile(build())
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(7))
	pheno, err := phenotype.Build(out, rng)
	if err != nil {
		t.Fatal(err)
	}
	genes, err := initstate.Genes(out, rng)
	if err != nil {
		t.Fatal(err)
	}
	state, err := initstate.State(out, rng)
	if err != nil {
		t.Fatal(err)
	}

	interp := runtime.New(out, out.Constants.NAgents)
	for step := 0; step < 3; step++ {
		params, err := pheno.Eval(genes)
		if err != nil {
			t.Fatal(err)
		}

		var sumVxBefore, sumVyBefore float64
		for i := 0; i < out.Constants.NAgents; i++ {
			sumVxBefore += tensor.At(state["vel_x"], i, 0)
			sumVyBefore += tensor.At(state["vel_y"], i, 0)
		}

		next, report, err := interp.Step(state, params)
		if err != nil {
			t.Fatal(err)
		}
		if report.Capacity.TotalDropped != 0 {
			t.Fatalf("step %d: unexpected capacity drop %d", step, report.Capacity.TotalDropped)
		}

		var sumVxAfter, sumVyAfter float64
		for i := 0; i < out.Constants.NAgents; i++ {
			sumVxAfter += tensor.At(next["vel_x"], i, 0)
			sumVyAfter += tensor.At(next["vel_y"], i, 0)
		}

		if math.Abs(sumVxAfter-sumVxBefore) > 1e-9 {
			t.Errorf("step %d: net vel_x momentum changed by %v", step, sumVxAfter-sumVxBefore)
		}
		if math.Abs(sumVyAfter-sumVyBefore) > 1e-9 {
			t.Errorf("step %d: net vel_y momentum changed by %v", step, sumVyAfter-sumVyBefore)
		}

		state = next
	}
}
