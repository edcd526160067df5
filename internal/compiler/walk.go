package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/evolimo/evolimo/internal/ir"
)

// walk visits every node of e, descending into a stencil's kernel body
// by invoking it once with placeholder center/neighbor aux bindings —
// the same expansion the compiler itself performs when flattening a
// Stencil into kernel_operations.
func walk(e ir.Expr, visit func(ir.Expr)) {
	visit(e)
	switch n := e.(type) {
	case ir.RefState, ir.RefParam, ir.RefAux, ir.Const:
		// leaves
	case ir.Binary:
		walk(n.Left, visit)
		walk(n.Right, visit)
	case ir.Compare:
		walk(n.Left, visit)
		walk(n.Right, visit)
	case ir.WhereExpr:
		walk(n.Cond, visit)
		walk(n.True, visit)
		walk(n.False, visit)
	case ir.Unary:
		walk(n.Value, visit)
	case ir.TransposeExpr:
		walk(n.Value, visit)
	case ir.SumExpr:
		walk(n.Value, visit)
	case ir.CatExpr:
		for _, v := range n.Values {
			walk(v, visit)
		}
	case ir.SliceExpr:
		walk(n.Value, visit)
	case ir.GridScatterExpr:
		walk(n.Value, visit)
		walk(n.X, visit)
		walk(n.Y, visit)
	case ir.StencilExpr:
		walk(n.Value, visit)
		body := n.Kernel(ir.Aux("center"), ir.Aux("neighbor"))
		walk(body, visit)
	case ir.GridGatherExpr:
		walk(n.Value, visit)
		walk(n.X, visit)
		walk(n.Y, visit)
	default:
		panic(fmt.Sprintf("compiler: unknown expression kind %T in walk", e))
	}
}

// serialize produces a canonical, structural string key for e, used by
// CSE. Two structurally identical subtrees — including, for a
// stencil, the expanded kernel body — serialize to the same string.
func serialize(e ir.Expr) string {
	switch n := e.(type) {
	case ir.RefState:
		return "rs(" + n.ID + ")"
	case ir.RefParam:
		return "rp(" + n.Group + "." + n.ID + ")"
	case ir.RefAux:
		return "ra(" + n.ID + ")"
	case ir.Const:
		return "c(" + strconv.FormatFloat(n.Value, 'g', -1, 64) + ")"
	case ir.Binary:
		return string(n.Op) + "(" + serialize(n.Left) + "," + serialize(n.Right) + ")"
	case ir.Compare:
		return string(n.Op) + "(" + serialize(n.Left) + "," + serialize(n.Right) + ")"
	case ir.WhereExpr:
		return "where(" + serialize(n.Cond) + "," + serialize(n.True) + "," + serialize(n.False) + ")"
	case ir.Unary:
		return string(n.Op) + "(" + serialize(n.Value) + ")"
	case ir.TransposeExpr:
		return fmt.Sprintf("transpose(%s,%d,%d)", serialize(n.Value), n.Dim0, n.Dim1)
	case ir.SumExpr:
		return fmt.Sprintf("sum(%s,%d,%t)", serialize(n.Value), n.Dim, n.KeepDim)
	case ir.CatExpr:
		parts := make([]string, len(n.Values))
		for i, v := range n.Values {
			parts[i] = serialize(v)
		}
		return fmt.Sprintf("cat(%d;%s)", n.Dim, strings.Join(parts, ";"))
	case ir.SliceExpr:
		return fmt.Sprintf("slice(%s,%d,%d,%d)", serialize(n.Value), n.Dim, n.Start, n.Len)
	case ir.GridScatterExpr:
		return fmt.Sprintf("scatter(%s,%s,%s)", serialize(n.Value), serialize(n.X), serialize(n.Y))
	case ir.StencilExpr:
		body := n.Kernel(ir.Aux("center"), ir.Aux("neighbor"))
		return fmt.Sprintf("stencil(%s,%d,%s)", serialize(n.Value), n.Range, serialize(body))
	case ir.GridGatherExpr:
		return fmt.Sprintf("gather(%s,%s,%s)", serialize(n.Value), serialize(n.X), serialize(n.Y))
	default:
		panic(fmt.Sprintf("compiler: unknown expression kind %T in serialize", e))
	}
}
