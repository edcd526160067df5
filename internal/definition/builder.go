package definition

import "github.com/evolimo/evolimo/internal/ir"

// Builder constructs a Definition through fluent With* calls on a
// value receiver, the same shape as the teacher's config.DeviceBuilder
// and core.Builder.
type Builder struct {
	def Definition
}

// NewBuilder starts a Definition builder for a named module.
func NewBuilder(name string) Builder {
	return Builder{def: Definition{
		Name:        name,
		ParamGroups: map[string]ParamGroup{},
		Init:        Initialization{State: map[string]Distribution{}},
	}}
}

// WithStateOrder declares STATE_VAR_ORDER.
func (b Builder) WithStateOrder(ids ...string) Builder {
	b.def.StateVarOrder = append([]string{}, ids...)
	return b
}

// WithParamGroup declares a parameter group and its head activation.
func (b Builder) WithParamGroup(name string, activation Activation) Builder {
	groups := make(map[string]ParamGroup, len(b.def.ParamGroups)+1)
	for k, v := range b.def.ParamGroups {
		groups[k] = v
	}
	groups[name] = ParamGroup{Name: name, Activation: activation}
	b.def.ParamGroups = groups
	return b
}

// WithRule adds a dynamics rule assigning expr to target.
func (b Builder) WithRule(target string, expr ir.Expr) Builder {
	b.def.Rules = append(append([]Rule{}, b.def.Rules...), Rule{Target: target, Expr: expr})
	return b
}

// WithBoundary adds a boundary condition for target.
func (b Builder) WithBoundary(target string, kind BoundaryKind, min, max float64) Builder {
	b.def.Boundaries = append(append([]Boundary{}, b.def.Boundaries...), Boundary{
		Target: target, Kind: kind, Min: min, Max: max,
	})
	return b
}

// WithStateInit declares the initialization distribution for one state var.
func (b Builder) WithStateInit(name string, dist Distribution) Builder {
	state := make(map[string]Distribution, len(b.def.Init.State)+1)
	for k, v := range b.def.Init.State {
		state[k] = v
	}
	state[name] = dist
	b.def.Init.State = state
	return b
}

// WithGenesInit declares the gene vector's initialization distribution.
func (b Builder) WithGenesInit(dist Distribution) Builder {
	b.def.Init.Genes = dist
	return b
}

// WithGrid enables the spatial grid path.
func (b Builder) WithGrid(width, height, capacity int, cellX, cellY float64) Builder {
	b.def.Grid = &GridConfig{
		Width: width, Height: height, Capacity: capacity,
		CellSizeX: cellX, CellSizeY: cellY,
	}
	return b
}

// WithVisual attaches the viewer's visual mapping.
func (b Builder) WithVisual(v VisualMapping) Builder {
	b.def.Visual = &v
	return b
}

// WithAgents sets the agent population size N.
func (b Builder) WithAgents(n int) Builder {
	b.def.NAgents = n
	return b
}

// WithGeneLen sets the gene vector length.
func (b Builder) WithGeneLen(n int) Builder {
	b.def.GeneLen = n
	return b
}

// WithHiddenLen sets the phenotype MLP's hidden layer width.
func (b Builder) WithHiddenLen(n int) Builder {
	b.def.HiddenLen = n
	return b
}

// Build returns the assembled Definition, a fresh copy the caller owns.
func (b Builder) Build() *Definition {
	d := b.def
	return &d
}
