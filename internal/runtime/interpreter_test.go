package runtime

import (
	"math"
	"testing"

	"github.com/evolimo/evolimo/internal/compiler"
	"github.com/evolimo/evolimo/internal/tensor"
)

func col(t *testing.T, vals ...float64) *tensor.Dense {
	t.Helper()
	d, err := tensor.FromRows(len(vals), 1, vals)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func intp(v int) *int       { return &v }
func f64p(v float64) *float64 { return &v }

func TestApplyBoundaryTorus(t *testing.T) {
	c := col(t, -12, 0, 15)
	out, err := applyBoundary(c, compiler.BoundaryIR{Kind: "torus", Range: [2]float64{-10, 10}})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{8, 0, -5}
	for i, w := range want {
		if math.Abs(tensor.At(out, i, 0)-w) > 1e-9 {
			t.Errorf("row %d: want %v got %v", i, w, tensor.At(out, i, 0))
		}
	}
}

func TestApplyBoundaryClamp(t *testing.T) {
	c := col(t, -12, 0, 15)
	out, err := applyBoundary(c, compiler.BoundaryIR{Kind: "clamp", Range: [2]float64{-10, 10}})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{-10, 0, 10}
	for i, w := range want {
		if tensor.At(out, i, 0) != w {
			t.Errorf("row %d: want %v got %v", i, w, tensor.At(out, i, 0))
		}
	}
}

func TestApplyBoundaryNone(t *testing.T) {
	c := col(t, 1, 2, 3)
	out, err := applyBoundary(c, compiler.BoundaryIR{Kind: "none"})
	if err != nil {
		t.Fatal(err)
	}
	if out != c {
		t.Errorf("none boundary should pass the column through unchanged")
	}
}

// Step runs a tiny drag-like op stream: vel_x <- vel_x - vel_x*drag*dt,
// pos_x passes through unchanged. Checks SSA evaluation order, pass-
// through, and that no spurious numeric issues are reported.
func TestStepDragLikeChain(t *testing.T) {
	out := &compiler.OutputIR{
		StateVars: []string{"pos_x", "vel_x"},
		Constants: compiler.Constants{NAgents: 2},
		Groups:    map[string]compiler.GroupIR{},
		Operations: []compiler.Operation{
			{Target: "s_pos_x", Op: "ref_state"},
			{Target: "s_vel_x", Op: "ref_state"},
			{Target: "c_drag", Op: "const", Value: f64p(0.5)},
			{Target: "c_dt", Op: "const", Value: f64p(0.1)},
			{Target: "t1", Op: "mul", Args: []string{"s_vel_x", "c_drag"}},
			{Target: "t2", Op: "mul", Args: []string{"t1", "c_dt"}},
			{Target: "vel_x", Op: "sub", Args: []string{"s_vel_x", "t2"}},
			{Target: "pos_x", Op: "assign", Args: []string{"s_pos_x"}},
		},
	}

	in := New(out, 2)
	state := map[string]*tensor.Dense{
		"pos_x": col(t, 1, 2),
		"vel_x": col(t, 1, 1),
	}
	next, report, err := in.Step(state, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.NumericIssues) != 0 {
		t.Errorf("unexpected numeric issues: %v", report.NumericIssues)
	}
	want := 1 - 1*0.5*0.1
	for i := 0; i < 2; i++ {
		if math.Abs(tensor.At(next["vel_x"], i, 0)-want) > 1e-12 {
			t.Errorf("vel_x[%d]: want %v got %v", i, want, tensor.At(next["vel_x"], i, 0))
		}
	}
	if tensor.At(next["pos_x"], 0, 0) != 1 || tensor.At(next["pos_x"], 1, 0) != 2 {
		t.Errorf("pos_x should pass through unchanged, got %v %v",
			tensor.At(next["pos_x"], 0, 0), tensor.At(next["pos_x"], 1, 0))
	}
}

func TestStepDetectsNumericIssue(t *testing.T) {
	out := &compiler.OutputIR{
		StateVars: []string{"x"},
		Constants: compiler.Constants{NAgents: 1},
		Groups:    map[string]compiler.GroupIR{},
		Operations: []compiler.Operation{
			{Target: "s_x", Op: "ref_state"},
			{Target: "c_zero", Op: "const", Value: f64p(0)},
			{Target: "x", Op: "div", Args: []string{"s_x", "c_zero"}},
		},
	}
	in := New(out, 1)
	state := map[string]*tensor.Dense{"x": col(t, 1)}
	_, report, err := in.Step(state, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.NumericIssues) != 1 {
		t.Fatalf("expected 1 numeric issue, got %d", len(report.NumericIssues))
	}
	if report.NumericIssues[0].Target != "x" {
		t.Errorf("want issue on target x, got %s", report.NumericIssues[0].Target)
	}
}

// Step with a grid_scatter/stencil/grid_gather chain exercises the
// interpreter's kernel-closure wiring, not just internal/grid directly.
func TestStepGridRoundTrip(t *testing.T) {
	out := &compiler.OutputIR{
		StateVars: []string{"pos_x", "pos_y", "force"},
		Constants: compiler.Constants{NAgents: 2},
		GridConfig: &compiler.GridConfigIR{
			Width: 3, Height: 3, Capacity: 2, CellSize: [2]float64{1, 1},
		},
		Groups: map[string]compiler.GroupIR{},
		Operations: []compiler.Operation{
			{Target: "s_pos_x", Op: "ref_state"},
			{Target: "s_pos_y", Op: "ref_state"},
			{Target: "g1", Op: "grid_scatter", Args: []string{"s_pos_x", "s_pos_x", "s_pos_y"}},
			{
				Target: "g2", Op: "stencil", Args: []string{"g1"}, StencilRange: intp(1),
				KernelOperations: []compiler.Operation{
					{Target: "kernel_output", Op: "sub", Args: []string{"neighbor", "center"}},
				},
			},
			{Target: "force", Op: "grid_gather", Args: []string{"g2"}},
			{Target: "pos_x", Op: "assign", Args: []string{"s_pos_x"}},
			{Target: "pos_y", Op: "assign", Args: []string{"s_pos_y"}},
		},
	}

	in := New(out, 2)
	state := map[string]*tensor.Dense{
		"pos_x": col(t, 0.5, 1.5),
		"pos_y": col(t, 0.5, 0.5),
	}
	next, report, err := in.Step(state, nil)
	if err != nil {
		t.Fatal(err)
	}
	if report.Capacity.TotalDropped != 0 {
		t.Fatalf("expected no drops, got %d", report.Capacity.TotalDropped)
	}
	if next["force"].Rows() != 2 || next["force"].Cols() != 1 {
		t.Fatalf("force shape: want 2x1, got %dx%d", next["force"].Rows(), next["force"].Cols())
	}
	// Exact magnitudes depend on how many empty slots fall within range
	// (covered precisely by internal/grid's own stencil tests); here we
	// only check that the kernel closure actually ran and produced
	// different values for the two differently-positioned agents.
	if tensor.At(next["force"], 0, 0) == tensor.At(next["force"], 1, 0) {
		t.Errorf("expected the two agents' gathered forces to differ, both got %v", tensor.At(next["force"], 0, 0))
	}
}

func TestStepUnknownOpReturnsShapeError(t *testing.T) {
	out := &compiler.OutputIR{
		StateVars: []string{"x"},
		Constants: compiler.Constants{NAgents: 1},
		Groups:    map[string]compiler.GroupIR{},
		Operations: []compiler.Operation{
			{Target: "x", Op: "nonsense"},
		},
	}
	in := New(out, 1)
	_, _, err := in.Step(map[string]*tensor.Dense{"x": col(t, 1)}, nil)
	if err == nil {
		t.Fatal("expected an error for an unknown op")
	}
	if _, ok := err.(*ShapeError); !ok {
		t.Errorf("expected *ShapeError, got %T", err)
	}
}
