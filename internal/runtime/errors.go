package runtime

import (
	"errors"
	"fmt"
)

var (
	errNoGrid          = errors.New("definition has no grid_config but an op references a grid")
	errUnknownOp       = errors.New("unknown operation code")
	errUnknownBoundary = errors.New("unknown boundary kind")
)

// ShapeError is a fatal runtime error: an operation's operands don't
// agree in shape (spec §7, raised at the first offending op).
type ShapeError struct {
	Target string
	Op     string
	Msg    string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("runtime: shape error at %s (%s): %s", e.Target, e.Op, e.Msg)
}

func errShape(target, op string, err error) *ShapeError {
	return &ShapeError{Target: target, Op: op, Msg: err.Error()}
}

// NumericIssue is a soft condition: a computed tensor carried a NaN or
// Inf value. It is never raised as an error, only counted in a Report
// (spec §7).
type NumericIssue struct {
	Target string
	Op     string
}
