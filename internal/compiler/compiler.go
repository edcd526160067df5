// Package compiler flattens a definition.Definition into the linear,
// deduplicated, deterministically-ordered OutputIR a runtime executes.
// The procedure follows spec §4.2 step by step: state-var collection,
// parameter collection (descending into stencil kernels), flattening
// with structural CSE, rule assignment, pass-through generation, and
// initialization-coverage validation.
package compiler

import (
	"sort"

	"github.com/evolimo/evolimo/internal/definition"
	"github.com/evolimo/evolimo/internal/ir"
	"github.com/evolimo/evolimo/internal/xlog"
)

// Stats reports compiler-internal telemetry alongside the IR.
type Stats struct {
	OperationCount int
	CSEHits        int
	ParamsByGroup  map[string]int
}

// Compile produces an OutputIR from def, or a *DefinitionError.
func Compile(def *definition.Definition) (*OutputIR, *Stats, error) {
	stateVars := collectStateVars(def)
	paramsByGroup, err := collectParams(def)
	if err != nil {
		return nil, nil, err
	}

	ctx := newCompileCtx(def.ParamGroups)
	written := map[string]bool{}

	for _, rule := range def.Rules {
		v, err := ctx.compile(rule.Expr)
		if err != nil {
			return nil, nil, err
		}
		ctx.emit(Operation{Target: rule.Target, Op: "assign", Args: []string{v}})
		written[rule.Target] = true
	}

	for _, sv := range stateVars {
		if written[sv] {
			continue
		}
		v, err := ctx.compile(ir.State(sv))
		if err != nil {
			return nil, nil, err
		}
		ctx.emit(Operation{Target: sv, Op: "assign", Args: []string{v}})
	}

	for _, sv := range stateVars {
		if _, ok := def.Init.State[sv]; !ok {
			return nil, nil, errMissingInit(sv)
		}
	}

	groups := map[string]GroupIR{}
	paramCounts := map[string]int{}
	for name, group := range def.ParamGroups {
		ids := make([]string, 0, len(paramsByGroup[name]))
		for id := range paramsByGroup[name] {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		groups[name] = GroupIR{Activation: string(group.Activation), Params: ids}
		paramCounts[name] = len(ids)
	}

	boundaries := make([]BoundaryIR, 0, len(def.Boundaries))
	for _, b := range def.Boundaries {
		boundaries = append(boundaries, BoundaryIR{
			TargetState: b.Target,
			Kind:        string(b.Kind),
			Range:       [2]float64{b.Min, b.Max},
		})
	}

	stateInit := make(map[string]DistributionIR, len(def.Init.State))
	for name, d := range def.Init.State {
		stateInit[name] = toDistIR(d)
	}

	var gridIR *GridConfigIR
	if def.Grid != nil {
		gridIR = &GridConfigIR{
			Width:    def.Grid.Width,
			Height:   def.Grid.Height,
			Capacity: def.Grid.Capacity,
			CellSize: [2]float64{def.Grid.CellSizeX, def.Grid.CellSizeY},
		}
	}

	out := &OutputIR{
		StateVars: stateVars,
		Constants: Constants{
			NAgents:   def.NAgents,
			GeneLen:   def.GeneLen,
			HiddenLen: def.HiddenLen,
		},
		GridConfig: gridIR,
		Groups:     groups,
		BoundaryConditions: boundaries,
		Initialization: InitializationIR{
			State: stateInit,
			Genes: toDistIR(def.Init.Genes),
		},
		Operations: ctx.ops,
	}

	stats := &Stats{
		OperationCount: len(ctx.ops),
		CSEHits:        ctx.cseHits,
		ParamsByGroup:  paramCounts,
	}

	xlog.Debugf("compiled definition",
		"name", def.Name,
		"state_vars", len(stateVars),
		"operations", stats.OperationCount,
		"cse_hits", stats.CSEHits,
	)

	return out, stats, nil
}

// collectStateVars returns every declared STATE_VAR_ORDER entry first
// (declared order preserved, whether or not a rule references it), then
// the remaining rule targets and ref_state ids sorted lexicographically.
func collectStateVars(def *definition.Definition) []string {
	refs := map[string]bool{}
	for _, id := range def.StateVarOrder {
		refs[id] = true
	}
	for _, rule := range def.Rules {
		refs[rule.Target] = true
		walk(rule.Expr, func(e ir.Expr) {
			if rs, ok := e.(ir.RefState); ok {
				refs[rs.ID] = true
			}
		})
	}

	ordered := make([]string, 0, len(refs))
	seen := map[string]bool{}
	for _, id := range def.StateVarOrder {
		if refs[id] && !seen[id] {
			ordered = append(ordered, id)
			seen[id] = true
		}
	}

	remainder := make([]string, 0)
	for id := range refs {
		if !seen[id] {
			remainder = append(remainder, id)
		}
	}
	sort.Strings(remainder)

	return append(ordered, remainder...)
}

// collectParams implements spec §4.2 step 2, including descent into
// every stencil kernel body so parameters referenced only inside a
// neighborhood kernel are still collected.
func collectParams(def *definition.Definition) (map[string]map[string]bool, error) {
	byGroup := map[string]map[string]bool{}
	for name := range def.ParamGroups {
		byGroup[name] = map[string]bool{}
	}

	var walkErr error
	for _, rule := range def.Rules {
		walk(rule.Expr, func(e ir.Expr) {
			if walkErr != nil {
				return
			}
			rp, ok := e.(ir.RefParam)
			if !ok {
				return
			}
			if _, known := def.ParamGroups[rp.Group]; !known {
				walkErr = errUnknownGroup(rp.Group, rp.ID)
				return
			}
			byGroup[rp.Group][rp.ID] = true
		})
		if walkErr != nil {
			return nil, walkErr
		}
	}

	return byGroup, nil
}

func toDistIR(d definition.Distribution) DistributionIR {
	return DistributionIR{
		Kind:  string(d.Kind),
		Value: d.Value,
		Low:   d.Low,
		High:  d.High,
		Mean:  d.Mean,
		Std:   d.Std,
	}
}
