// Package step drives the compiled simulation forward one tick per
// step, the way sarchlab-zeonica's core.Core embeds a
// *sim.TickingComponent and implements Tick to advance its own state
// machine (internal/runtime supplies the op-stream executor; this
// package is only the akita-facing scheduling wrapper around it).
package step

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/evolimo/evolimo/internal/phenotype"
	"github.com/evolimo/evolimo/internal/runtime"
	"github.com/evolimo/evolimo/internal/tensor"
	"github.com/evolimo/evolimo/internal/xlog"
)

// Snapshot is the state of the simulation after a completed step.
type Snapshot struct {
	Step   int64
	State  map[string]*tensor.Dense
	Report runtime.Report
}

// Driver advances a compiled definition: each Tick evaluates the
// phenotype network once on the (fixed, per spec §4.4) gene
// population, runs one interpreter step with the resulting params, and
// applies the result's boundary conditions.
type Driver struct {
	*sim.TickingComponent

	interp   *runtime.Interpreter
	pheno    *phenotype.Engine
	genes    *tensor.Dense
	state    map[string]*tensor.Dense
	maxSteps int64
	step     int64
	err      error

	// OnStep, if set, is called synchronously after every completed
	// tick with that tick's snapshot.
	OnStep func(Snapshot)
}

// NewDriver builds a Driver ticking at freq on engine. initState must
// carry one [N,1] column per state var the interpreter's IR names.
func NewDriver(
	name string,
	engine sim.Engine,
	freq sim.Freq,
	interp *runtime.Interpreter,
	pheno *phenotype.Engine,
	genes *tensor.Dense,
	initState map[string]*tensor.Dense,
	maxSteps int64,
) *Driver {
	d := &Driver{
		interp:   interp,
		pheno:    pheno,
		genes:    genes,
		state:    initState,
		maxSteps: maxSteps,
	}
	d.TickingComponent = sim.NewTickingComponent(name, engine, freq, d)
	return d
}

// Tick runs one simulation step and reports whether it made progress.
func (d *Driver) Tick(now sim.VTimeInSec) (madeProgress bool) {
	if d.err != nil {
		return false
	}
	if d.maxSteps >= 0 && d.step >= d.maxSteps {
		return false
	}

	params, err := d.pheno.Eval(d.genes)
	if err != nil {
		d.err = err
		xlog.Warnf("phenotype evaluation failed", "step", d.step, "err", err)
		return false
	}

	next, report, err := d.interp.Step(d.state, params)
	if err != nil {
		d.err = err
		xlog.Warnf("interpreter step failed", "step", d.step, "err", err)
		return false
	}

	d.state = next
	d.step++

	if report.Capacity.TotalDropped > 0 {
		xlog.Warnf("grid capacity overflow", "step", d.step, "dropped", report.Capacity.TotalDropped)
	}
	for _, issue := range report.NumericIssues {
		xlog.Warnf("numeric issue", "step", d.step, "target", issue.Target, "op", issue.Op)
	}

	if d.OnStep != nil {
		d.OnStep(Snapshot{Step: d.step, State: d.state, Report: report})
	}

	return true
}

// Err returns the error that stopped the driver, if any.
func (d *Driver) Err() error { return d.err }

// Step returns how many ticks have completed.
func (d *Driver) Step() int64 { return d.step }

// Snapshot returns the current state without advancing.
func (d *Driver) Snapshot() Snapshot {
	return Snapshot{Step: d.step, State: d.state}
}
