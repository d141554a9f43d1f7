package shapeinference

import (
	"fmt"

	"github.com/pkg/errors"
)

// The recoverable failures of the unification operations. Each is a typed
// error carrying the conflicting numbers, so callers can match with
// errors.As and render precise diagnostics; all are returned with a stack
// attached. They mean the operands are semantically incompatible: there is
// nothing to retry, the operation being inferred is simply wrong.

// RankMismatchError is returned by WithRank when the shape already has a
// known rank different from the requested one.
type RankMismatchError struct {
	Expected, Actual int
}

func (e *RankMismatchError) Error() string {
	return fmt.Sprintf("shape must be rank %d but is rank %d", e.Expected, e.Actual)
}

// ValueMismatchError is returned by WithValue when the dimension already has
// a known size different from the requested one.
type ValueMismatchError struct {
	Expected, Actual int64
}

func (e *ValueMismatchError) Error() string {
	return fmt.Sprintf("dimension must be %d but is %d", e.Expected, e.Actual)
}

// RankConflictError is returned by Merge when both shapes have known but
// different ranks.
type RankConflictError struct {
	Rank0, Rank1 int
}

func (e *RankConflictError) Error() string {
	return fmt.Sprintf("shapes must be equal rank, but are %d and %d", e.Rank0, e.Rank1)
}

// DimensionConflictError is returned by MergeDims and Merge when two
// dimensions have known but different sizes. Axis is the conflicting axis
// for a shape merge, or negative when two dimensions were merged directly.
type DimensionConflictError struct {
	Axis           int
	Value0, Value1 int64
}

func (e *DimensionConflictError) Error() string {
	if e.Axis < 0 {
		return fmt.Sprintf("dimensions must be equal, but are %d and %d", e.Value0, e.Value1)
	}
	return fmt.Sprintf("dimension %d in both shapes must be equal, but are %d and %d", e.Axis, e.Value0, e.Value1)
}

// InvalidArgumentError is returned by Subshape and MakeShapeFromTensor when
// an argument is outside what the operation supports; Reason is the full
// human-readable message.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return e.Reason
}

func invalidArgumentf(format string, args ...any) error {
	return errors.WithStack(&InvalidArgumentError{Reason: fmt.Sprintf(format, args...)})
}
