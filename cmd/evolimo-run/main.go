// Command evolimo-run loads one compiled definition's IR and advances
// it for a fixed number of steps under an akita serial engine,
// printing a final-state summary.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/evolimo/evolimo/internal/compiler"
	"github.com/evolimo/evolimo/internal/initstate"
	"github.com/evolimo/evolimo/internal/phenotype"
	"github.com/evolimo/evolimo/internal/runconfig"
	"github.com/evolimo/evolimo/internal/runtime"
	"github.com/evolimo/evolimo/internal/step"
	"github.com/evolimo/evolimo/internal/tensor"
	"github.com/evolimo/evolimo/internal/xlog"
)

func main() {
	genDir := flag.String("gen-dir", "_gen", "directory compiled IR was written into")
	name := flag.String("definition", "", "name of the compiled definition to run")
	configPath := flag.String("config", "", "path to a YAML run config (only its seed and steps are used)")
	flag.Parse()

	cfg := runconfig.Default()
	if *configPath != "" {
		loaded, err := runconfig.Load(*configPath)
		if err != nil {
			xlog.Logger().Error("failed to load run config", "err", err)
			atexit.Exit(1)
			return
		}
		cfg = loaded
	}
	if *name == "" {
		xlog.Logger().Error("missing required -definition flag")
		atexit.Exit(1)
		return
	}

	out, err := loadIR(filepath.Join(*genDir, *name, "ir.json"))
	if err != nil {
		xlog.Logger().Error("failed to load IR", "definition", *name, "err", err)
		atexit.Exit(1)
		return
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	pheno, err := phenotype.Build(out, rng)
	if err != nil {
		xlog.Logger().Error("failed to build phenotype engine", "err", err)
		atexit.Exit(1)
		return
	}

	genes, err := initstate.Genes(out, rng)
	if err != nil {
		xlog.Logger().Error("failed to sample genes", "err", err)
		atexit.Exit(1)
		return
	}

	initState, err := initstate.State(out, rng)
	if err != nil {
		xlog.Logger().Error("failed to sample initial state", "err", err)
		atexit.Exit(1)
		return
	}

	interp := runtime.New(out, out.Constants.NAgents)

	engine := sim.NewSerialEngine()
	driver := step.NewDriver("Driver", engine, 1*sim.GHz, interp, pheno, genes, initState, cfg.Steps)
	driver.OnStep = func(snap step.Snapshot) {
		xlog.Debugf("step complete", "step", snap.Step)
	}

	if err := engine.Run(); err != nil {
		xlog.Logger().Error("engine run failed", "err", err)
		atexit.Exit(1)
		return
	}

	if err := driver.Err(); err != nil {
		xlog.Logger().Error("simulation stopped early", "err", err)
		atexit.Exit(1)
		return
	}

	printSummary(*name, out, driver.Snapshot())
	atexit.Exit(0)
}

func loadIR(path string) (*compiler.OutputIR, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out compiler.OutputIR
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func printSummary(name string, out *compiler.OutputIR, snap step.Snapshot) {
	fmt.Printf("%s: %d steps, %d agents\n", name, snap.Step, out.Constants.NAgents)
	for _, sv := range out.StateVars {
		col := snap.State[sv]
		fmt.Printf("  %s: %s\n", sv, summarizeColumn(col))
	}
}

func summarizeColumn(col *tensor.Dense) string {
	n := col.Rows()
	if n == 0 {
		return "(empty)"
	}
	var sum, min, max float64
	min = tensor.At(col, 0, 0)
	max = min
	for i := 0; i < n; i++ {
		v := tensor.At(col, i, 0)
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return fmt.Sprintf("mean=%.4f min=%.4f max=%.4f", sum/float64(n), min, max)
}
