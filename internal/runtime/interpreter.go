// Package runtime executes a compiled compiler.OutputIR's operation
// stream against agent-population state, the way the teacher's
// core/emu.go walks a decoded instruction stream: one switch over the
// op's opcode, dispatching to a handler that reads its argument
// variables out of an environment and writes its result back in.
package runtime

import (
	"math"
	"strings"

	"github.com/evolimo/evolimo/internal/compiler"
	"github.com/evolimo/evolimo/internal/grid"
	"github.com/evolimo/evolimo/internal/tensor"
)

// Report carries the soft conditions produced by one Step: capacity
// overflow from every grid_scatter, and any NaN/Inf values observed.
type Report struct {
	Capacity      grid.CapacityReport
	NumericIssues []NumericIssue
}

func mergeCapacity(into *grid.CapacityReport, from grid.CapacityReport) {
	if into.DroppedByCell == nil {
		into.DroppedByCell = map[[2]int]int{}
	}
	into.TotalDropped += from.TotalDropped
	for k, v := range from.DroppedByCell {
		into.DroppedByCell[k] += v
	}
}

// Interpreter executes one OutputIR's operation stream for a fixed
// population size.
type Interpreter struct {
	ir      *compiler.OutputIR
	nAgents int
	grid    *grid.Engine
}

// New builds an Interpreter for out. nAgents must match the population
// size state columns and parameter columns are shaped for.
func New(out *compiler.OutputIR, nAgents int) *Interpreter {
	in := &Interpreter{ir: out, nAgents: nAgents}
	if out.GridConfig != nil {
		in.grid = grid.NewEngine(out.GridConfig.Width, out.GridConfig.Height, out.GridConfig.Capacity,
			out.GridConfig.CellSize[0], out.GridConfig.CellSize[1])
	}
	return in
}

// env is the op-stream's variable bindings: tensor-valued for every
// scalar/elementwise op, plus a parallel grid-valued map for the
// grid_scatter/stencil/grid_gather family (a *grid.Grid is not a
// tensor and has no place alongside [N,1] columns).
type env struct {
	tensors map[string]*tensor.Dense
	grids   map[string]*grid.Grid
}

// Step runs the op stream once: state holds one [N,1] column per
// state var, params one [N,1] column per "group.id" parameter. It
// returns the next state (same key set as state) and a Report of soft
// conditions observed.
func (in *Interpreter) Step(state, params map[string]*tensor.Dense) (map[string]*tensor.Dense, Report, error) {
	e := &env{tensors: map[string]*tensor.Dense{}, grids: map[string]*grid.Grid{}}
	report := Report{Capacity: grid.CapacityReport{DroppedByCell: map[[2]int]int{}}}

	if err := in.run(in.ir.Operations, e, state, params, &report); err != nil {
		return nil, report, err
	}

	next := make(map[string]*tensor.Dense, len(in.ir.StateVars))
	for _, sv := range in.ir.StateVars {
		next[sv] = e.tensors[sv]
	}

	for _, b := range in.ir.BoundaryConditions {
		col, ok := next[b.TargetState]
		if !ok {
			continue
		}
		applied, err := applyBoundary(col, b)
		if err != nil {
			return nil, report, errShape(b.TargetState, "boundary", err)
		}
		next[b.TargetState] = applied
	}

	return next, report, nil
}

// run executes ops against e, reading ref_state/ref_param leaves from
// state/params and recording capacity/numeric conditions into report.
// It is used both for the top-level op stream and, recursively, for a
// stencil's kernel_operations against a one-row center/neighbor env.
func (in *Interpreter) run(ops []compiler.Operation, e *env, state, params map[string]*tensor.Dense, report *Report) error {
	for _, op := range ops {
		if err := in.runOne(op, e, state, params, report); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) runOne(op compiler.Operation, e *env, state, params map[string]*tensor.Dense, report *Report) error {
	switch op.Op {
	case "ref_state":
		id := strings.TrimPrefix(op.Target, "s_")
		e.tensors[op.Target] = state[id]
		return nil

	case "ref_param":
		key := op.ParamInfo.Group + "." + op.ParamInfo.ID
		e.tensors[op.Target] = params[key]
		return nil

	case "const":
		// Inside a stencil kernel every binding is a single row.
		rows := in.nAgents
		if c, ok := e.tensors["center"]; ok {
			rows = c.Rows()
		}
		t, err := tensor.Fill(rows, 1, *op.Value)
		if err != nil {
			return errShape(op.Target, op.Op, err)
		}
		e.tensors[op.Target] = t
		return nil

	case "assign":
		e.tensors[op.Target] = e.tensors[op.Args[0]]
		return nil

	case "add", "sub", "mul", "div":
		a, b := e.tensors[op.Args[0]], e.tensors[op.Args[1]]
		var out *tensor.Dense
		var err error
		switch op.Op {
		case "add":
			out, err = tensor.Add(a, b)
		case "sub":
			out, err = tensor.Sub(a, b)
		case "mul":
			out, err = tensor.Mul(a, b)
		case "div":
			out, err = tensor.Div(a, b)
		}
		if err != nil {
			return errShape(op.Target, op.Op, err)
		}
		e.tensors[op.Target] = out
		in.checkNumeric(op, out, report)
		return nil

	case "lt", "gt", "ge":
		a, b := e.tensors[op.Args[0]], e.tensors[op.Args[1]]
		var out *tensor.Dense
		var err error
		switch op.Op {
		case "lt":
			out, err = tensor.Lt(a, b)
		case "gt":
			out, err = tensor.Gt(a, b)
		case "ge":
			out, err = tensor.Ge(a, b)
		}
		if err != nil {
			return errShape(op.Target, op.Op, err)
		}
		e.tensors[op.Target] = out
		return nil

	case "where":
		out, err := tensor.Where(e.tensors[op.Args[0]], e.tensors[op.Args[1]], e.tensors[op.Args[2]])
		if err != nil {
			return errShape(op.Target, op.Op, err)
		}
		e.tensors[op.Target] = out
		in.checkNumeric(op, out, report)
		return nil

	case "sqrt", "relu", "neg":
		v := e.tensors[op.Args[0]]
		var out *tensor.Dense
		var err error
		switch op.Op {
		case "sqrt":
			out, err = tensor.Sqrt(v)
		case "relu":
			out, err = tensor.Relu(v)
		case "neg":
			out, err = tensor.Neg(v)
		}
		if err != nil {
			return errShape(op.Target, op.Op, err)
		}
		e.tensors[op.Target] = out
		in.checkNumeric(op, out, report)
		return nil

	case "transpose":
		out, err := tensor.Transpose(e.tensors[op.Args[0]], *op.Dim0, *op.Dim1)
		if err != nil {
			return errShape(op.Target, op.Op, err)
		}
		e.tensors[op.Target] = out
		return nil

	case "sum":
		out, err := tensor.Sum(e.tensors[op.Args[0]], *op.Dim, *op.KeepDim)
		if err != nil {
			return errShape(op.Target, op.Op, err)
		}
		e.tensors[op.Target] = out
		return nil

	case "cat":
		vals := make([]*tensor.Dense, len(op.Args))
		for i, a := range op.Args {
			vals[i] = e.tensors[a]
		}
		out, err := tensor.Cat(*op.Dim, vals...)
		if err != nil {
			return errShape(op.Target, op.Op, err)
		}
		e.tensors[op.Target] = out
		return nil

	case "slice":
		out, err := tensor.Slice(e.tensors[op.Args[0]], *op.Dim, *op.Start, *op.Len)
		if err != nil {
			return errShape(op.Target, op.Op, err)
		}
		e.tensors[op.Target] = out
		return nil

	case "grid_scatter":
		if in.grid == nil {
			return errShape(op.Target, op.Op, errNoGrid)
		}
		value, x, y := e.tensors[op.Args[0]], e.tensors[op.Args[1]], e.tensors[op.Args[2]]
		g, cap, err := in.grid.Scatter(value, x, y)
		if err != nil {
			return errShape(op.Target, op.Op, err)
		}
		mergeCapacity(&report.Capacity, cap)
		e.grids[op.Target] = g
		return nil

	case "stencil":
		if in.grid == nil {
			return errShape(op.Target, op.Op, errNoGrid)
		}
		g := e.grids[op.Args[0]]
		kernel := func(center, neighbor []float64) ([]float64, error) {
			sub := &env{tensors: map[string]*tensor.Dense{}, grids: map[string]*grid.Grid{}}
			cv, err := tensor.FromRows(1, len(center), center)
			if err != nil {
				return nil, err
			}
			nv, err := tensor.FromRows(1, len(neighbor), neighbor)
			if err != nil {
				return nil, err
			}
			sub.tensors["center"] = cv
			sub.tensors["neighbor"] = nv
			if err := in.run(op.KernelOperations, sub, state, params, report); err != nil {
				return nil, err
			}
			out := sub.tensors["kernel_output"]
			res := make([]float64, out.Cols())
			for k := 0; k < out.Cols(); k++ {
				res[k] = tensor.At(out, 0, k)
			}
			return res, nil
		}
		out, err := in.grid.Stencil(g, *op.StencilRange, kernel)
		if err != nil {
			return errShape(op.Target, op.Op, err)
		}
		e.grids[op.Target] = out
		return nil

	case "grid_gather":
		if in.grid == nil {
			return errShape(op.Target, op.Op, errNoGrid)
		}
		g := e.grids[op.Args[0]]
		out, err := in.grid.Gather(g, in.nAgents)
		if err != nil {
			return errShape(op.Target, op.Op, err)
		}
		e.tensors[op.Target] = out
		in.checkNumeric(op, out, report)
		return nil

	default:
		return errShape(op.Target, op.Op, errUnknownOp)
	}
}

func (in *Interpreter) checkNumeric(op compiler.Operation, t *tensor.Dense, report *Report) {
	for i := 0; i < t.Rows(); i++ {
		for j := 0; j < t.Cols(); j++ {
			v := tensor.At(t, i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				report.NumericIssues = append(report.NumericIssues, NumericIssue{Target: op.Target, Op: op.Op})
				return
			}
		}
	}
}

// applyBoundary implements spec §4.3 step 5 for one state column:
// torus wraps into [min,max), clamp saturates at the edges, none
// passes the column through unchanged.
func applyBoundary(col *tensor.Dense, b compiler.BoundaryIR) (*tensor.Dense, error) {
	min, max := b.Range[0], b.Range[1]
	switch b.Kind {
	case "none":
		return col, nil
	case "clamp":
		return tensor.FromRows(col.Rows(), col.Cols(), mapCol(col, func(v float64) float64 {
			if v < min {
				return min
			}
			if v > max {
				return max
			}
			return v
		}))
	case "torus":
		span := max - min
		return tensor.FromRows(col.Rows(), col.Cols(), mapCol(col, func(v float64) float64 {
			return min + math.Mod(math.Mod(v-min, span)+span, span)
		}))
	default:
		return nil, errUnknownBoundary
	}
}

func mapCol(col *tensor.Dense, f func(float64) float64) []float64 {
	rows, cols := col.Rows(), col.Cols()
	out := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[i*cols+j] = f(tensor.At(col, i, j))
		}
	}
	return out
}
