// Package ir defines the symbolic expression tree that user-authored
// dynamics rules are built from. Every constructor here is pure: it
// allocates one immutable node and performs no validation beyond the
// shape of the node itself. Semantic checks (unknown parameter groups,
// missing state vars, cycles) are the compiler's job, not the
// builder's.
package ir

// Kind tags the variant an Expr node carries.
type Kind string

// Expression kinds, matching the wire vocabulary of the compiled IR.
const (
	KindRefState    Kind = "ref_state"
	KindRefParam    Kind = "ref_param"
	KindRefAux      Kind = "ref_aux"
	KindConst       Kind = "const"
	KindAdd         Kind = "add"
	KindSub         Kind = "sub"
	KindMul         Kind = "mul"
	KindDiv         Kind = "div"
	KindLt          Kind = "lt"
	KindGt          Kind = "gt"
	KindGe          Kind = "ge"
	KindWhere       Kind = "where"
	KindSqrt        Kind = "sqrt"
	KindRelu        Kind = "relu"
	KindNeg         Kind = "neg"
	KindTranspose   Kind = "transpose"
	KindSum         Kind = "sum"
	KindCat         Kind = "cat"
	KindSlice       Kind = "slice"
	KindGridScatter Kind = "grid_scatter"
	KindStencil     Kind = "stencil"
	KindGridGather  Kind = "grid_gather"
)

// Expr is any node of the expression tree. The marker method keeps the
// interface closed to the kinds declared in this package.
type Expr interface {
	Kind() Kind
	exprNode()
}

// RefState references a scalar-per-agent state column.
type RefState struct{ ID string }

// RefParam references a scalar-per-agent genetic parameter in a named group.
type RefParam struct{ ID, Group string }

// RefAux references a runtime-named intermediate, used for interaction
// outputs and the two stencil kernel bindings "center"/"neighbor".
type RefAux struct{ ID string }

// Const is a broadcast scalar constant.
type Const struct{ Value float64 }

// Binary is elementwise add/sub/mul/div with standard broadcasting.
type Binary struct {
	Op          Kind
	Left, Right Expr
}

// Compare is elementwise lt/gt/ge, producing a 0/1-valued tensor.
type Compare struct {
	Op          Kind
	Left, Right Expr
}

// WhereExpr is an elementwise select: Cond is 0/1-valued.
type WhereExpr struct{ Cond, True, False Expr }

// Unary is elementwise sqrt/relu/neg.
type Unary struct {
	Op    Kind
	Value Expr
}

// TransposeExpr swaps two axes.
type TransposeExpr struct {
	Value      Expr
	Dim0, Dim1 int
}

// SumExpr reduces along one dimension.
type SumExpr struct {
	Value   Expr
	Dim     int
	KeepDim bool
}

// CatExpr concatenates along one dimension.
type CatExpr struct {
	Values []Expr
	Dim    int
}

// SliceExpr takes a contiguous sub-range along one dimension.
type SliceExpr struct {
	Value      Expr
	Dim        int
	Start, Len int
}

// GridScatterExpr projects [N,D] positions into a [H,W,C,D] grid.
type GridScatterExpr struct{ Value, X, Y Expr }

// Kernel is the body of a Stencil: it maps a center/neighbor pair of
// aux bindings to a result expression. It is a host-language closure
// at authoring time; the compiler expands it into a self-contained
// nested operation list during compilation (see internal/compiler).
type Kernel func(center, neighbor Expr) Expr

// StencilExpr is a neighborhood reduction over a fixed-capacity grid.
type StencilExpr struct {
	Value  Expr
	Range  int
	Kernel Kernel
}

// GridGatherExpr reverses a GridScatterExpr, reading each agent's slot.
type GridGatherExpr struct{ Value, X, Y Expr }

func (RefState) exprNode()        {}
func (RefParam) exprNode()        {}
func (RefAux) exprNode()          {}
func (Const) exprNode()           {}
func (Binary) exprNode()          {}
func (Compare) exprNode()         {}
func (WhereExpr) exprNode()       {}
func (Unary) exprNode()           {}
func (TransposeExpr) exprNode()   {}
func (SumExpr) exprNode()         {}
func (CatExpr) exprNode()         {}
func (SliceExpr) exprNode()       {}
func (GridScatterExpr) exprNode() {}
func (StencilExpr) exprNode()     {}
func (GridGatherExpr) exprNode()  {}

func (RefState) Kind() Kind        { return KindRefState }
func (RefParam) Kind() Kind        { return KindRefParam }
func (RefAux) Kind() Kind          { return KindRefAux }
func (Const) Kind() Kind           { return KindConst }
func (b Binary) Kind() Kind        { return b.Op }
func (c Compare) Kind() Kind       { return c.Op }
func (WhereExpr) Kind() Kind       { return KindWhere }
func (u Unary) Kind() Kind         { return u.Op }
func (TransposeExpr) Kind() Kind   { return KindTranspose }
func (SumExpr) Kind() Kind         { return KindSum }
func (CatExpr) Kind() Kind         { return KindCat }
func (SliceExpr) Kind() Kind       { return KindSlice }
func (GridScatterExpr) Kind() Kind { return KindGridScatter }
func (StencilExpr) Kind() Kind     { return KindStencil }
func (GridGatherExpr) Kind() Kind  { return KindGridGather }
