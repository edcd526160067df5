// Package definition is the user-facing bundle a compiler run consumes:
// declared state order, parameter groups, per-state dynamics rules,
// boundary conditions, initialization distributions, an optional grid
// configuration, and a visual mapping the core carries through
// unvalidated for the external viewer.
package definition

import "github.com/evolimo/evolimo/internal/ir"

// Activation is the nonlinearity applied at a parameter group's
// phenotype head.
type Activation string

// Supported head activations.
const (
	ActivationSoftmax Activation = "softmax"
	ActivationTanh    Activation = "tanh"
	ActivationSigmoid Activation = "sigmoid"
	ActivationNone    Activation = "none"
)

// BoundaryKind is the wrap/clamp/no-op policy applied to a state var
// after each step.
type BoundaryKind string

// Supported boundary kinds.
const (
	BoundaryTorus BoundaryKind = "torus"
	BoundaryClamp BoundaryKind = "clamp"
	BoundaryNone  BoundaryKind = "none"
)

// DistKind tags a Distribution variant.
type DistKind string

// Supported distribution kinds.
const (
	DistConst   DistKind = "const"
	DistUniform DistKind = "uniform"
	DistNormal  DistKind = "normal"
)

// Distribution describes how a state var or the gene vector is
// initialized.
type Distribution struct {
	Kind      DistKind
	Value     float64 // const
	Low, High float64 // uniform
	Mean, Std float64 // normal
}

// ConstDist is a degenerate distribution returning Value for every agent.
func ConstDist(v float64) Distribution { return Distribution{Kind: DistConst, Value: v} }

// UniformDist draws uniformly from [low, high).
func UniformDist(low, high float64) Distribution {
	return Distribution{Kind: DistUniform, Low: low, High: high}
}

// NormalDist draws from a normal distribution with the given mean/std.
func NormalDist(mean, std float64) Distribution {
	return Distribution{Kind: DistNormal, Mean: mean, Std: std}
}

// Boundary constrains one state var after every step.
type Boundary struct {
	Target   string
	Kind     BoundaryKind
	Min, Max float64
}

// GridConfig parameterizes the fixed-capacity spatial grid.
type GridConfig struct {
	Width, Height, Capacity int
	CellSizeX, CellSizeY    float64
}

// ParamGroup names a genetic parameter group and its head activation.
// Its member parameters are discovered by the compiler from ref_param
// usage, not declared here.
type ParamGroup struct {
	Name       string
	Activation Activation
}

// Rule assigns one state var's next value to an expression.
type Rule struct {
	Target string
	Expr   ir.Expr
}

// Channel names a state-var source feeding one visual attribute,
// with an optional blend mode. The core passes this through unvalidated.
type Channel struct {
	Source string
	Blend  string
}

// VisualMapping is the sibling JSON the viewer consumes; the core
// neither interprets nor validates its contents.
type VisualMapping struct {
	Position *Channel
	Size     *Channel
	Color    *Channel
	Opacity  *Channel
}

// Initialization covers every state var and the gene vector.
type Initialization struct {
	State map[string]Distribution
	Genes Distribution
}

// Definition is the complete input to the compiler.
type Definition struct {
	Name          string
	StateVarOrder []string
	ParamGroups   map[string]ParamGroup
	Rules         []Rule
	Boundaries    []Boundary
	Init          Initialization
	Grid          *GridConfig
	Visual        *VisualMapping
	NAgents       int
	GeneLen       int
	HiddenLen     int
}
