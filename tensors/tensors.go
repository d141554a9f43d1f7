// Package tensors implements a minimal dense tensor: an element type, a list
// of dimensions and the flat (row-major) data.
//
// It exists to feed materialized constant values into the shape inference
// engine, typically small 1-D integer tensors whose contents describe a
// shape. It is not a compute library: there are no tensor operations, only
// construction and read access.
package tensors

import (
	"fmt"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/shapeinference/dtypes"
	"github.com/pkg/errors"
)

// Tensor is an immutable dense tensor value.
//
// It implements the Tensor interface consumed by the shapeinference package.
type Tensor struct {
	dtype dtypes.DType
	dims  []int
	flat  any // []T with dtypes.FromGenericsType[T]() == dtype
}

// FromFlatDataAndDimensions creates a Tensor with the given flat data and
// dimensions. The data is interpreted in row-major order and copied, so the
// caller keeps ownership of the slice. No dimensions creates a scalar, which
// must hold exactly one value.
func FromFlatDataAndDimensions[T dtypes.Supported](data []T, dimensions ...int) (*Tensor, error) {
	size := 1
	for _, dim := range dimensions {
		if dim < 0 {
			return nil, errors.Errorf("invalid dimension %d in tensor dimensions %v", dim, dimensions)
		}
		size *= dim
	}
	if len(data) != size {
		return nil, errors.Errorf("tensor dimensions %v hold %d values, but %d were provided!?",
			dimensions, size, len(data))
	}
	return &Tensor{
		dtype: dtypes.FromGenericsType[T](),
		dims:  slices.Clone(dimensions),
		flat:  slices.Clone(data),
	}, nil
}

// Vector creates a 1-D Tensor with the given values. It is a shortcut for
// FromFlatDataAndDimensions(values, len(values)), the common case when
// building shape tensors.
func Vector[T dtypes.Supported](values ...T) *Tensor {
	return &Tensor{
		dtype: dtypes.FromGenericsType[T](),
		dims:  []int{len(values)},
		flat:  slices.Clone(values),
	}
}

// DType returns the element type of the tensor.
func (t *Tensor) DType() dtypes.DType { return t.dtype }

// Rank returns the number of axes of the tensor. Scalars have rank 0.
func (t *Tensor) Rank() int { return len(t.dims) }

// Dimensions returns a copy of the tensor's dimensions.
func (t *Tensor) Dimensions() []int { return slices.Clone(t.dims) }

// Dim returns the size of the given axis.
func (t *Tensor) Dim(axis int) int {
	if axis < 0 || axis >= len(t.dims) {
		exceptions.Panicf("Tensor.Dim: axis %d out of range for rank %d tensor", axis, len(t.dims))
	}
	return t.dims[axis]
}

// Size returns the number of elements stored.
func (t *Tensor) Size() int {
	size := 1
	for _, dim := range t.dims {
		size *= dim
	}
	return size
}

// Int32At returns the flatIdx-th element of an int32 tensor, in row-major
// order. Calling it on any other element type is a bug and panics.
func (t *Tensor) Int32At(flatIdx int) int32 {
	data, ok := t.flat.([]int32)
	if !ok {
		exceptions.Panicf("Tensor.Int32At called on a %s tensor", t.dtype)
	}
	return data[flatIdx]
}

// Int64At returns the flatIdx-th element of an int64 tensor, in row-major
// order. Calling it on any other element type is a bug and panics.
func (t *Tensor) Int64At(flatIdx int) int64 {
	data, ok := t.flat.([]int64)
	if !ok {
		exceptions.Panicf("Tensor.Int64At called on a %s tensor", t.dtype)
	}
	return data[flatIdx]
}

// String implements fmt.Stringer with a short description of the tensor's
// element type and dimensions, e.g. "(int32)[3]". It does not print the data.
func (t *Tensor) String() string {
	return fmt.Sprintf("(%s)%v", t.dtype, t.dims)
}
