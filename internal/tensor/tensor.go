// Package tensor provides the 2-D [rows, cols] numeric value the
// runtime and phenotype engine compute over. It is a thin layer on top
// of github.com/katalvlaran/lvlath/matrix.Dense: Dense already gives us
// a flat, row-major float64 buffer with bounds-checked At/Set, plus
// Add/Sub/Hadamard/Scale/Transpose/Mul (matrix product). Operations the
// library doesn't expose — divide, comparisons, select, unary
// sqrt/relu/neg, reductions, slicing and concatenation — are written
// here as small kernels over Dense's own public At/Set contract, the
// same way matrix/ops_elementwise.go's unexported ew* helpers are built
// inside the library itself.
package tensor

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvlath/matrix"
)

// Dense is a [rows, cols] tensor of float64 values.
type Dense = matrix.Dense

// New allocates a zero-filled [rows, cols] tensor.
func New(rows, cols int) (*Dense, error) {
	return matrix.NewDense(rows, cols)
}

// FromRows builds a column-major-agnostic tensor from row-major data.
func FromRows(rows, cols int, data []float64) (*Dense, error) {
	t, err := matrix.NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("tensor.FromRows: got %d values, want %d", len(data), rows*cols)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if err := t.Set(i, j, data[i*cols+j]); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

// Fill returns a [rows, cols] tensor with every element set to v.
func Fill(rows, cols int, v float64) (*Dense, error) {
	t, err := matrix.NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			_ = t.Set(i, j, v)
		}
	}
	return t, nil
}

func shapeOf(t *Dense) (int, int) { return t.Rows(), t.Cols() }

// broadcastShape resolves the output shape of an elementwise binary op,
// allowing either operand to be a [1,1] scalar broadcast against the
// other, or equal shapes.
func broadcastShape(a, b *Dense) (int, int, error) {
	ar, ac := shapeOf(a)
	br, bc := shapeOf(b)
	if ar == br && ac == bc {
		return ar, ac, nil
	}
	if ar == 1 && ac == 1 {
		return br, bc, nil
	}
	if br == 1 && bc == 1 {
		return ar, ac, nil
	}
	return 0, 0, fmt.Errorf("tensor: shape mismatch %dx%d vs %dx%d", ar, ac, br, bc)
}

func at(t *Dense, i, j int) float64 {
	r, c := shapeOf(t)
	ri, ci := i, j
	if r == 1 {
		ri = 0
	}
	if c == 1 {
		ci = 0
	}
	v, _ := t.At(ri, ci)
	return v
}

func elementwise(a, b *Dense, f func(x, y float64) float64) (*Dense, error) {
	rows, cols, err := broadcastShape(a, b)
	if err != nil {
		return nil, err
	}
	out, err := matrix.NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			_ = out.Set(i, j, f(at(a, i, j), at(b, i, j)))
		}
	}
	return out, nil
}

// Add is elementwise a+b with scalar broadcast.
func Add(a, b *Dense) (*Dense, error) { return elementwise(a, b, func(x, y float64) float64 { return x + y }) }

// Sub is elementwise a-b with scalar broadcast.
func Sub(a, b *Dense) (*Dense, error) { return elementwise(a, b, func(x, y float64) float64 { return x - y }) }

// Mul is elementwise a*b (Hadamard) with scalar broadcast.
func Mul(a, b *Dense) (*Dense, error) { return elementwise(a, b, func(x, y float64) float64 { return x * y }) }

// Div is elementwise a/b with scalar broadcast.
func Div(a, b *Dense) (*Dense, error) { return elementwise(a, b, func(x, y float64) float64 { return x / y }) }

// Lt is elementwise 1.0 where a<b else 0.0.
func Lt(a, b *Dense) (*Dense, error) {
	return elementwise(a, b, func(x, y float64) float64 {
		if x < y {
			return 1
		}
		return 0
	})
}

// Gt is elementwise 1.0 where a>b else 0.0.
func Gt(a, b *Dense) (*Dense, error) {
	return elementwise(a, b, func(x, y float64) float64 {
		if x > y {
			return 1
		}
		return 0
	})
}

// Ge is elementwise 1.0 where a>=b else 0.0.
func Ge(a, b *Dense) (*Dense, error) {
	return elementwise(a, b, func(x, y float64) float64 {
		if x >= y {
			return 1
		}
		return 0
	})
}

// Where realizes cond*t + (1-cond)*f elementwise.
func Where(cond, t, f *Dense) (*Dense, error) {
	ct, err := Mul(cond, t)
	if err != nil {
		return nil, err
	}
	one, err := Fill(1, 1, 1)
	if err != nil {
		return nil, err
	}
	invCond, err := Sub(one, cond)
	if err != nil {
		return nil, err
	}
	cf, err := Mul(invCond, f)
	if err != nil {
		return nil, err
	}
	return Add(ct, cf)
}

func unary(v *Dense, f func(x float64) float64) (*Dense, error) {
	rows, cols := shapeOf(v)
	out, err := matrix.NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x, _ := v.At(i, j)
			_ = out.Set(i, j, f(x))
		}
	}
	return out, nil
}

// Sqrt is the elementwise square root.
func Sqrt(v *Dense) (*Dense, error) { return unary(v, math.Sqrt) }

// Relu is the elementwise rectifier.
func Relu(v *Dense) (*Dense, error) {
	return unary(v, func(x float64) float64 {
		if x < 0 {
			return 0
		}
		return x
	})
}

// Neg is the elementwise negation.
func Neg(v *Dense) (*Dense, error) { return unary(v, func(x float64) float64 { return -x }) }

// Transpose swaps the two axes of a 2-D tensor. dim0/dim1 must be {0,1} in some order.
func Transpose(v *Dense, dim0, dim1 int) (*Dense, error) {
	if (dim0 == 0 && dim1 == 1) || (dim0 == 1 && dim1 == 0) {
		rows, cols := shapeOf(v)
		out, err := matrix.NewDense(cols, rows)
		if err != nil {
			return nil, err
		}
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				x, _ := v.At(i, j)
				_ = out.Set(j, i, x)
			}
		}
		return out, nil
	}
	if dim0 == dim1 {
		return nil, fmt.Errorf("tensor.Transpose: dim0 == dim1 (%d)", dim0)
	}
	return nil, fmt.Errorf("tensor.Transpose: dim out of range, only rank-2 tensors are supported (got %d,%d)", dim0, dim1)
}

// Sum reduces along dim (0 = rows, 1 = cols). When keepdim is false the
// reduced axis collapses to length 1 anyway, since every tensor here is
// rank-2 and a 0-length axis is not representable; keepdim only affects
// whether callers may later treat the result as broadcastable (it always is).
func Sum(v *Dense, dim int, keepdim bool) (*Dense, error) {
	rows, cols := shapeOf(v)
	switch dim {
	case 0:
		out, err := matrix.NewDense(1, cols)
		if err != nil {
			return nil, err
		}
		for j := 0; j < cols; j++ {
			var s float64
			for i := 0; i < rows; i++ {
				x, _ := v.At(i, j)
				s += x
			}
			_ = out.Set(0, j, s)
		}
		return out, nil
	case 1:
		out, err := matrix.NewDense(rows, 1)
		if err != nil {
			return nil, err
		}
		for i := 0; i < rows; i++ {
			var s float64
			for j := 0; j < cols; j++ {
				x, _ := v.At(i, j)
				s += x
			}
			_ = out.Set(i, 0, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("tensor.Sum: dim out of range (%d)", dim)
	}
}

// Cat concatenates values along dim (0 = rows, 1 = cols).
func Cat(dim int, values ...*Dense) (*Dense, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("tensor.Cat: no values")
	}
	rows, cols := shapeOf(values[0])
	switch dim {
	case 1:
		total := 0
		for _, v := range values {
			r, c := shapeOf(v)
			if r != rows {
				return nil, fmt.Errorf("tensor.Cat: row mismatch %d vs %d", r, rows)
			}
			total += c
		}
		out, err := matrix.NewDense(rows, total)
		if err != nil {
			return nil, err
		}
		col := 0
		for _, v := range values {
			_, c := shapeOf(v)
			for i := 0; i < rows; i++ {
				for j := 0; j < c; j++ {
					x, _ := v.At(i, j)
					_ = out.Set(i, col+j, x)
				}
			}
			col += c
		}
		return out, nil
	case 0:
		total := 0
		for _, v := range values {
			r, c := shapeOf(v)
			if c != cols {
				return nil, fmt.Errorf("tensor.Cat: col mismatch %d vs %d", c, cols)
			}
			total += r
		}
		out, err := matrix.NewDense(total, cols)
		if err != nil {
			return nil, err
		}
		row := 0
		for _, v := range values {
			r, _ := shapeOf(v)
			for i := 0; i < r; i++ {
				for j := 0; j < cols; j++ {
					x, _ := v.At(i, j)
					_ = out.Set(row+i, j, x)
				}
			}
			row += r
		}
		return out, nil
	default:
		return nil, fmt.Errorf("tensor.Cat: dim out of range (%d)", dim)
	}
}

// Slice takes a contiguous sub-range of length length starting at start along dim.
func Slice(v *Dense, dim, start, length int) (*Dense, error) {
	rows, cols := shapeOf(v)
	switch dim {
	case 0:
		if start < 0 || start+length > rows {
			return nil, fmt.Errorf("tensor.Slice: out of bounds [%d:%d) of %d rows", start, start+length, rows)
		}
		out, err := matrix.NewDense(length, cols)
		if err != nil {
			return nil, err
		}
		for i := 0; i < length; i++ {
			for j := 0; j < cols; j++ {
				x, _ := v.At(start+i, j)
				_ = out.Set(i, j, x)
			}
		}
		return out, nil
	case 1:
		if start < 0 || start+length > cols {
			return nil, fmt.Errorf("tensor.Slice: out of bounds [%d:%d) of %d cols", start, start+length, cols)
		}
		out, err := matrix.NewDense(rows, length)
		if err != nil {
			return nil, err
		}
		for i := 0; i < rows; i++ {
			for j := 0; j < length; j++ {
				x, _ := v.At(i, start+j)
				_ = out.Set(i, j, x)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("tensor.Slice: dim out of range (%d)", dim)
	}
}

// MatMul is the linear-algebra matrix product a*b, used by the
// phenotype engine's dense layers (not an IR op: the IR's "mul" is
// the elementwise Mul above).
func MatMul(a, b *Dense) (*Dense, error) {
	out, err := matrix.Mul(a, b)
	if err != nil {
		return nil, err
	}
	d, ok := out.(*Dense)
	if !ok {
		return nil, fmt.Errorf("tensor.MatMul: unexpected result type %T", out)
	}
	return d, nil
}

// AddBroadcastRow adds row (shape [1,cols]) to every row of m (shape [rows,cols]).
func AddBroadcastRow(m, row *Dense) (*Dense, error) {
	rows, cols := shapeOf(m)
	rr, rc := shapeOf(row)
	if rr != 1 || rc != cols {
		return nil, fmt.Errorf("tensor.AddBroadcastRow: row shape %dx%d does not broadcast over %dx%d", rr, rc, rows, cols)
	}
	out, err := matrix.NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x, _ := m.At(i, j)
			y, _ := row.At(0, j)
			_ = out.Set(i, j, x+y)
		}
	}
	return out, nil
}

// Col extracts column j of m as a [rows,1] tensor.
func Col(m *Dense, j int) (*Dense, error) { return Slice(m, 1, j, 1) }

// At reads element (i,j), panicking on an out-of-range index: callers
// in this package only ever index within shapes they just validated.
func At(m *Dense, i, j int) float64 {
	v, err := m.At(i, j)
	if err != nil {
		panic(err)
	}
	return v
}
