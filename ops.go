package shapeinference

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/shapeinference/dtypes"
	"github.com/pkg/errors"
)

// WithRank asserts that s has the given rank.
//
// If the rank is already known and equal, it returns s itself. If the rank
// of s is unknown, it returns a new rank-`rank` shape whose every axis is a
// fresh unknown dimension: structure is manufactured, sizes are not.
// Otherwise it returns a *RankMismatchError and the zero Shape.
//
// rank must be non-negative: it comes from an operation's definition, never
// from data, so a negative rank is a bug and panics.
func (c *Context) WithRank(s Shape, rank int) (Shape, error) {
	if rank < 0 {
		exceptions.Panicf("shapeinference: WithRank called with negative rank %d!?", rank)
	}
	entry := c.resolveShape(s)
	if !entry.rankKnown {
		dims := make([]Dimension, rank)
		for axis := range dims {
			dims[axis] = c.MakeUnknownDim()
		}
		return c.MakeShape(dims...), nil
	}
	if len(entry.dims) == rank {
		return s, nil
	}
	return Shape{}, errors.WithStack(&RankMismatchError{Expected: rank, Actual: len(entry.dims)})
}

// WithValue asserts that d has the given size.
//
// If the size is already known and equal, it returns d itself. If the size
// of d is unknown, it returns a new dimension holding value. Otherwise it
// returns a *ValueMismatchError and the zero Dimension.
func (c *Context) WithValue(d Dimension, value int64) (Dimension, error) {
	existing := c.resolveDim(d)
	if existing == value {
		return d, nil
	}
	if existing == UnknownDim {
		return c.MakeDim(value), nil
	}
	return Dimension{}, errors.WithStack(&ValueMismatchError{Expected: value, Actual: existing})
}

// MergeDims unifies two dimensions into the most specific one consistent
// with both. The checks run in order, first match wins:
//
//  1. d0 == d1, or d1 unknown: d0.
//  2. d0 unknown: d1.
//  3. Equal known values: d0.
//  4. Different known values: *DimensionConflictError with both.
//
// Ties resolve to d0, so repeated merges keep returning the same handle.
func (c *Context) MergeDims(d0, d1 Dimension) (Dimension, error) {
	v0, v1 := c.resolveDim(d0), c.resolveDim(d1)
	if d0 == d1 || v1 == UnknownDim {
		return d0, nil
	}
	if v0 == UnknownDim {
		return d1, nil
	}
	if v0 == v1 {
		return d0, nil
	}
	return Dimension{}, errors.WithStack(&DimensionConflictError{Axis: -1, Value0: v0, Value1: v1})
}

// Merge unifies two shapes into the most specific shape consistent with
// both: identical handles or a rank-unknown s1 yield s0; a rank-unknown s0
// yields s1; different known ranks fail with *RankConflictError; and two
// known axes with different sizes fail with *DimensionConflictError naming
// the axis, even when every earlier axis was compatible.
//
// When possible the result is one of the operands (s0 preferred, the same
// stability rule as MergeDims); a new shape is built only when neither
// operand alone carries all the merged information.
func (c *Context) Merge(s0, s1 Shape) (Shape, error) {
	e0, e1 := c.resolveShape(s0), c.resolveShape(s1)
	if s0 == s1 || !e1.rankKnown {
		return s0, nil
	}
	if !e0.rankKnown {
		return s1, nil
	}
	rank := len(e0.dims)
	if len(e1.dims) != rank {
		return Shape{}, errors.WithStack(&RankConflictError{Rank0: rank, Rank1: len(e1.dims)})
	}

	// Scan the axes: an axis known on one side only means the other side's
	// shape cannot be returned as-is.
	canReturnS0, canReturnS1 := true, true
	for axis, d0 := range e0.dims {
		d1 := e1.dims[axis]
		if d0 == d1 {
			continue
		}
		v0, v1 := c.resolveDim(d0), c.resolveDim(d1)
		if v0 == UnknownDim {
			if v1 != UnknownDim {
				canReturnS0 = false
			}
		} else if v1 == UnknownDim {
			canReturnS1 = false
		} else if v0 != v1 {
			return Shape{}, errors.WithStack(&DimensionConflictError{Axis: axis, Value0: v0, Value1: v1})
		}
	}
	if canReturnS0 {
		return s0, nil
	}
	if canReturnS1 {
		return s1, nil
	}

	// Neither operand is expressive enough alone: build a fresh shape
	// merging axis by axis. Conflicts were already excluded by the scan.
	dims := make([]Dimension, rank)
	for axis := range dims {
		merged, err := c.MergeDims(e0.dims[axis], e1.dims[axis])
		if err != nil {
			return Shape{}, err
		}
		dims[axis] = merged
	}
	return c.MakeShape(dims...), nil
}

// Subshape returns the shape made of the axes of s from start (inclusive) to
// its last axis, reusing the dimension handles.
//
// start 0 returns s itself. A negative start, or a known rank smaller than
// start, fails with *InvalidArgumentError. When the rank of s is unknown the
// result is a fresh unknown shape and start is discarded, even when a
// later-known rank would put start out of range.
func (c *Context) Subshape(s Shape, start int) (Shape, error) {
	if start < 0 {
		return Shape{}, invalidArgumentf("negative start is not implemented; got %d", start)
	}
	if start == 0 {
		return s, nil
	}
	entry := c.resolveShape(s)
	if !entry.rankKnown {
		return c.MakeUnknownShape(), nil
	}
	if len(entry.dims) < start {
		return Shape{}, invalidArgumentf("shape must have rank >= %d, but is %d", start, len(entry.dims))
	}
	return c.MakeShape(entry.dims[start:]...), nil
}

// Concatenate returns a new shape whose axes are the axes of s1 followed by
// the axes of s2, reusing the dimension handles.
//
// If either operand has unknown rank the result is a fresh unknown shape:
// the known operand's axes are dropped rather than kept as a partial
// bound. Concatenate cannot fail.
func (c *Context) Concatenate(s1, s2 Shape) Shape {
	e1, e2 := c.resolveShape(s1), c.resolveShape(s2)
	if !e1.rankKnown || !e2.rankKnown {
		return c.MakeUnknownShape()
	}
	dims := make([]Dimension, 0, len(e1.dims)+len(e2.dims))
	dims = append(dims, e1.dims...)
	dims = append(dims, e2.dims...)
	return c.MakeShape(dims...)
}

// MakeShapeFromTensor builds the shape described by the materialized value
// of the inputIdx-th input: a 1-D int32 or int64 tensor whose elements are
// the dimension sizes, in order.
//
// When the input has no materialized value the result is a fresh unknown
// shape: absence of a constant is expected, not an error. A tensor of any
// other rank or element type fails with *InvalidArgumentError. Element
// values are stored literally, so a -1 element becomes an unknown dimension
// and other negative values stay as they are.
func (c *Context) MakeShapeFromTensor(inputIdx int) (Shape, error) {
	t := c.InputTensor(inputIdx)
	if t == nil {
		return c.MakeUnknownShape(), nil
	}
	if t.Rank() != 1 {
		return Shape{}, invalidArgumentf("input tensor must be rank 1, but was rank %d", t.Rank())
	}
	dims := make([]Dimension, t.Size())
	switch t.DType() {
	case dtypes.Int32:
		for ii := range dims {
			dims[ii] = c.MakeDim(int64(t.Int32At(ii)))
		}
	case dtypes.Int64:
		for ii := range dims {
			dims[ii] = c.MakeDim(t.Int64At(ii))
		}
	default:
		return Shape{}, invalidArgumentf("input tensor must be int32 or int64, but was %s", t.DType())
	}
	return c.MakeShape(dims...), nil
}
