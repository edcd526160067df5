package compiler

import (
	"fmt"

	"github.com/evolimo/evolimo/internal/definition"
	"github.com/evolimo/evolimo/internal/ir"
)

// compileCtx flattens expressions into an SSA-form op stream with
// structural CSE. A fresh, isolated context is created for each
// stencil's kernel body (spec §4.2 step 4): its cache and temp counter
// never see the outer context's entries.
type compileCtx struct {
	knownGroups map[string]definition.ParamGroup
	ops         []Operation
	cache       map[string]string
	counter     int
	cseHits     int
}

func newCompileCtx(knownGroups map[string]definition.ParamGroup) *compileCtx {
	return &compileCtx{
		knownGroups: knownGroups,
		cache:       map[string]string{},
	}
}

func (c *compileCtx) newTemp() string {
	name := fmt.Sprintf("temp_%d", c.counter)
	c.counter++
	return name
}

func (c *compileCtx) emit(op Operation) {
	c.ops = append(c.ops, op)
}

// compile flattens e into the op stream, returning the variable name
// holding its result. Structurally identical subtrees reuse the same
// variable and emit nothing on the second and later visits.
func (c *compileCtx) compile(e ir.Expr) (string, error) {
	key := serialize(e)
	if name, ok := c.cache[key]; ok {
		c.cseHits++
		return name, nil
	}

	switch n := e.(type) {
	case ir.RefState:
		name := "s_" + n.ID
		c.emit(Operation{Target: name, Op: string(ir.KindRefState)})
		c.cache[key] = name
		return name, nil

	case ir.RefParam:
		if _, known := c.knownGroups[n.Group]; !known {
			return "", errUnknownGroup(n.Group, n.ID)
		}
		name := "p_" + n.ID
		c.emit(Operation{Target: name, Op: string(ir.KindRefParam), ParamInfo: &ParamInfo{ID: n.ID, Group: n.Group}})
		c.cache[key] = name
		return name, nil

	case ir.RefAux:
		// Aux bindings (center/neighbor, and any other runtime-named
		// intermediate) are supplied by the caller before the op
		// stream runs; no op needs emitting.
		c.cache[key] = n.ID
		return n.ID, nil

	case ir.Const:
		name := c.newTemp()
		v := n.Value
		c.emit(Operation{Target: name, Op: string(ir.KindConst), Value: &v})
		c.cache[key] = name
		return name, nil

	case ir.Binary:
		l, err := c.compile(n.Left)
		if err != nil {
			return "", err
		}
		r, err := c.compile(n.Right)
		if err != nil {
			return "", err
		}
		name := c.newTemp()
		c.emit(Operation{Target: name, Op: string(n.Op), Args: []string{l, r}})
		c.cache[key] = name
		return name, nil

	case ir.Compare:
		l, err := c.compile(n.Left)
		if err != nil {
			return "", err
		}
		r, err := c.compile(n.Right)
		if err != nil {
			return "", err
		}
		name := c.newTemp()
		c.emit(Operation{Target: name, Op: string(n.Op), Args: []string{l, r}})
		c.cache[key] = name
		return name, nil

	case ir.WhereExpr:
		cv, err := c.compile(n.Cond)
		if err != nil {
			return "", err
		}
		tv, err := c.compile(n.True)
		if err != nil {
			return "", err
		}
		fv, err := c.compile(n.False)
		if err != nil {
			return "", err
		}
		name := c.newTemp()
		c.emit(Operation{Target: name, Op: string(ir.KindWhere), Args: []string{cv, tv, fv}})
		c.cache[key] = name
		return name, nil

	case ir.Unary:
		v, err := c.compile(n.Value)
		if err != nil {
			return "", err
		}
		name := c.newTemp()
		c.emit(Operation{Target: name, Op: string(n.Op), Args: []string{v}})
		c.cache[key] = name
		return name, nil

	case ir.TransposeExpr:
		v, err := c.compile(n.Value)
		if err != nil {
			return "", err
		}
		name := c.newTemp()
		d0, d1 := n.Dim0, n.Dim1
		c.emit(Operation{Target: name, Op: string(ir.KindTranspose), Args: []string{v}, Dim0: &d0, Dim1: &d1})
		c.cache[key] = name
		return name, nil

	case ir.SumExpr:
		v, err := c.compile(n.Value)
		if err != nil {
			return "", err
		}
		name := c.newTemp()
		dim, keepdim := n.Dim, n.KeepDim
		c.emit(Operation{Target: name, Op: string(ir.KindSum), Args: []string{v}, Dim: &dim, KeepDim: &keepdim})
		c.cache[key] = name
		return name, nil

	case ir.CatExpr:
		args := make([]string, len(n.Values))
		for i, v := range n.Values {
			av, err := c.compile(v)
			if err != nil {
				return "", err
			}
			args[i] = av
		}
		name := c.newTemp()
		dim := n.Dim
		c.emit(Operation{Target: name, Op: string(ir.KindCat), Args: args, Dim: &dim})
		c.cache[key] = name
		return name, nil

	case ir.SliceExpr:
		v, err := c.compile(n.Value)
		if err != nil {
			return "", err
		}
		name := c.newTemp()
		dim, start, length := n.Dim, n.Start, n.Len
		c.emit(Operation{Target: name, Op: string(ir.KindSlice), Args: []string{v}, Dim: &dim, Start: &start, Len: &length})
		c.cache[key] = name
		return name, nil

	case ir.GridScatterExpr:
		v, err := c.compile(n.Value)
		if err != nil {
			return "", err
		}
		x, err := c.compile(n.X)
		if err != nil {
			return "", err
		}
		y, err := c.compile(n.Y)
		if err != nil {
			return "", err
		}
		name := c.newTemp()
		c.emit(Operation{Target: name, Op: string(ir.KindGridScatter), Args: []string{v, x, y}})
		c.cache[key] = name
		return name, nil

	case ir.StencilExpr:
		v, err := c.compile(n.Value)
		if err != nil {
			return "", err
		}
		sub := newCompileCtx(c.knownGroups)
		body := n.Kernel(ir.Aux("center"), ir.Aux("neighbor"))
		bodyVar, err := sub.compile(body)
		if err != nil {
			return "", err
		}
		sub.emit(Operation{Target: "kernel_output", Op: "assign", Args: []string{bodyVar}})
		name := c.newTemp()
		rng := n.Range
		c.emit(Operation{Target: name, Op: string(ir.KindStencil), Args: []string{v}, StencilRange: &rng, KernelOperations: sub.ops})
		c.cache[key] = name
		return name, nil

	case ir.GridGatherExpr:
		v, err := c.compile(n.Value)
		if err != nil {
			return "", err
		}
		x, err := c.compile(n.X)
		if err != nil {
			return "", err
		}
		y, err := c.compile(n.Y)
		if err != nil {
			return "", err
		}
		name := c.newTemp()
		c.emit(Operation{Target: name, Op: string(ir.KindGridGather), Args: []string{v, x, y}})
		c.cache[key] = name
		return name, nil

	default:
		return "", errUnknownExprKind(fmt.Sprintf("%T", e))
	}
}
