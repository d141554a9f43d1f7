// Package dtypes defines the closed set of tensor element types used by the
// shape inference engine and its tensor values.
//
// The set is small: shape arithmetic only ever reads int32 or int64 data,
// and the remaining entries exist so that tensors can be tagged with (and
// errors can name) the element types the engine rejects.
package dtypes

import "fmt"

// DType is the element type of a tensor.
//
// It is a closed enumeration: code that consumes tensor data switches
// explicitly over the kinds it supports and rejects everything else, there is
// no generic numeric abstraction behind it.
type DType int

const (
	// InvalidDType is the zero value of DType, and doesn't represent any type.
	InvalidDType DType = iota

	// Bool, stored as one byte per element.
	Bool

	// Int32 is a 32-bit signed integer.
	Int32

	// Int64 is a 64-bit signed integer.
	Int64

	// Float32 is a 32-bit IEEE-754 floating point number.
	Float32

	// Float64 is a 64-bit IEEE-754 floating point number.
	Float64
)

// String implements fmt.Stringer. It returns the lower-case Go name of the
// element type, e.g. "int32", which is also how errors refer to them.
func (dtype DType) String() string {
	switch dtype {
	case InvalidDType:
		return "invalid"
	case Bool:
		return "bool"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	}
	return fmt.Sprintf("DType(%d)", int(dtype))
}

// IsInt returns whether dtype is one of the signed integer types.
func (dtype DType) IsInt() bool {
	return dtype == Int32 || dtype == Int64
}

// Size returns the number of bytes one element of dtype occupies, or 0 for
// InvalidDType.
func (dtype DType) Size() int {
	switch dtype {
	case Bool:
		return 1
	case Int32, Float32:
		return 4
	case Int64, Float64:
		return 8
	}
	return 0
}

// Supported is the constraint of Go types that can back a tensor, the
// generics counterpart of the DType values above.
type Supported interface {
	bool | int32 | int64 | float32 | float64
}

// FromGenericsType returns the DType of the given Go type.
func FromGenericsType[T Supported]() DType {
	var t T
	switch any(t).(type) {
	case bool:
		return Bool
	case int32:
		return Int32
	case int64:
		return Int64
	case float32:
		return Float32
	case float64:
		return Float64
	}
	return InvalidDType
}
