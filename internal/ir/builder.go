package ir

// State references state column id.
func State(id string) Expr { return RefState{ID: id} }

// Param references parameter id in group.
func Param(id, group string) Expr { return RefParam{ID: id, Group: group} }

// Aux references a runtime-named intermediate.
func Aux(id string) Expr { return RefAux{ID: id} }

// Lit wraps a broadcast scalar constant.
func Lit(v float64) Expr { return Const{Value: v} }

// Add returns l + r.
func Add(l, r Expr) Expr { return Binary{Op: KindAdd, Left: l, Right: r} }

// Sub returns l - r.
func Sub(l, r Expr) Expr { return Binary{Op: KindSub, Left: l, Right: r} }

// Mul returns l * r.
func Mul(l, r Expr) Expr { return Binary{Op: KindMul, Left: l, Right: r} }

// Div returns l / r.
func Div(l, r Expr) Expr { return Binary{Op: KindDiv, Left: l, Right: r} }

// Lt returns 1.0 where l < r, else 0.0.
func Lt(l, r Expr) Expr { return Compare{Op: KindLt, Left: l, Right: r} }

// Gt returns 1.0 where l > r, else 0.0.
func Gt(l, r Expr) Expr { return Compare{Op: KindGt, Left: l, Right: r} }

// Ge returns 1.0 where l >= r, else 0.0.
func Ge(l, r Expr) Expr { return Compare{Op: KindGe, Left: l, Right: r} }

// Where selects trueVal where cond != 0, else falseVal.
func Where(cond, trueVal, falseVal Expr) Expr {
	return WhereExpr{Cond: cond, True: trueVal, False: falseVal}
}

// Sqrt is the elementwise square root.
func Sqrt(v Expr) Expr { return Unary{Op: KindSqrt, Value: v} }

// Relu is the elementwise rectifier max(v, 0).
func Relu(v Expr) Expr { return Unary{Op: KindRelu, Value: v} }

// Neg is the elementwise negation.
func Neg(v Expr) Expr { return Unary{Op: KindNeg, Value: v} }

// Transpose swaps dim0 and dim1.
func Transpose(v Expr, dim0, dim1 int) Expr {
	return TransposeExpr{Value: v, Dim0: dim0, Dim1: dim1}
}

// Sum reduces along dim, keeping it as size 1 when keepdim is set.
func Sum(v Expr, dim int, keepdim bool) Expr {
	return SumExpr{Value: v, Dim: dim, KeepDim: keepdim}
}

// Cat concatenates values along dim.
func Cat(dim int, values ...Expr) Expr {
	return CatExpr{Values: values, Dim: dim}
}

// Slice takes a contiguous sub-range of length length starting at start along dim.
func Slice(v Expr, dim, start, length int) Expr {
	return SliceExpr{Value: v, Dim: dim, Start: start, Len: length}
}

// Scatter projects [N,D] positions (x, y) into a [H,W,C,D] grid.
func Scatter(value, x, y Expr) Expr {
	return GridScatterExpr{Value: value, X: x, Y: y}
}

// Stencil applies kernel to every neighbor pair within rng cells.
func Stencil(value Expr, rng int, kernel Kernel) Expr {
	return StencilExpr{Value: value, Range: rng, Kernel: kernel}
}

// Gather reverses the slot map of the last Scatter, reading each agent's vector.
func Gather(value, x, y Expr) Expr {
	return GridGatherExpr{Value: value, X: x, Y: y}
}
