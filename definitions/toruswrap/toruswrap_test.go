package toruswrap

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

// pos_x <- pos_x+30 inside a [-10,10) torus wraps every step, and the
// result must always land back in range.
func TestPositionStaysWithinTorusRange(t *testing.T) {
	out, _, err := compiler.Compile(build())
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(1))
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
	for step := 0; step < 6; step++ {
		params, err := pheno.Eval(genes)
		if err != nil {
			t.Fatal(err)
		}
		next, _, err := interp.Step(state, params)
		if err != nil {
			t.Fatal(err)
		}
		state = next
		for i := 0; i < out.Constants.NAgents; i++ {
			v := tensor.At(state["pos_x"], i, 0)
			if v < -10 || v >= 10 {
				t.Fatalf("step %d agent %d: pos_x=%v escaped [-10,10)", step, i, v)
			}
		}
	}
}

func TestWrapsToExpectedValue(t *testing.T) {
	out, _, err := compiler.Compile(build())
	if err != nil {
		t.Fatal(err)
	}
	interp := runtime.New(out, out.Constants.NAgents)
	state := map[string]*tensor.Dense{}
	col, err := tensor.Fill(out.Constants.NAgents, 1, -10)
	if err != nil {
		t.Fatal(err)
	}
	state["pos_x"] = col
	// -10+30 = 20, one full [-10,10) span (width 20) past the range:
	// wraps back to 0.
	next, _, err := interp.Step(state, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < out.Constants.NAgents; i++ {
		if math.Abs(tensor.At(next["pos_x"], i, 0)-0) > 1e-9 {
			t.Errorf("agent %d: want 0, got %v", i, tensor.At(next["pos_x"], i, 0))
		}
	}
}
