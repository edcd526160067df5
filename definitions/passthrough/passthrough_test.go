package passthrough

import (
	"math/rand"
	"testing"

	"github.com/evolimo/evolimo/internal/compiler"
	"github.com/evolimo/evolimo/internal/initstate"
	"github.com/evolimo/evolimo/internal/phenotype"
	"github.com/evolimo/evolimo/internal/runtime"
	"github.com/evolimo/evolimo/internal/tensor"
)

// An unreferenced state var must hold its value across every step.
func TestEnergyNeverChanges(t *testing.T) {
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
	for step := 0; step < 5; step++ {
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
			if tensor.At(state["energy"], i, 0) != 100 {
				t.Fatalf("step %d agent %d: energy drifted to %v", step, i, tensor.At(state["energy"], i, 0))
			}
		}
	}
}
