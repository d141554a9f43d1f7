// Package shapeinference infers tensor shapes that are only partially known:
// both the rank of a shape and the size of each of its axes may be unknown,
// and the package propagates, merges and derives whatever is known without
// executing the computation the shapes describe.
//
// All values live in a Context, created once per operation whose output
// shapes are being inferred and discarded afterwards:
//
//   - Dimension: the size of one axis, either known or unknown.
//   - Shape: either a rank and one Dimension per axis, or rank-unknown.
//   - Context: owns every Dimension and Shape created during one inference
//     call, holds the operation's input shapes, optionally the materialized
//     constant value of each input, and the inferred output shapes.
//
// Dimension and Shape are immutable handles: refining a value always creates
// a new handle, so identical handles are always equal values (the reverse
// does not hold, two handles may describe the same value). The unification
// operations (WithRank, WithValue, MergeDims, Merge) exploit this to return
// one of their operands unchanged whenever it already carries all the
// information.
//
// Example, inferring the output shape of a rank-2 matrix product:
//
//	c := shapeinference.New([]string{"[100,?]", "[32,10]"}, 1, nil)
//	a, _ := c.WithRank(c.Input(0), 2)
//	b, _ := c.WithRank(c.Input(1), 2)
//	_, err := c.MergeDims(c.Dim(a, 1), c.Dim(b, 0)) // unify inner axes
//	if err == nil {
//		c.SetOutput(0, c.MakeShape(c.Dim(a, 0), c.Dim(b, 1)))
//	}
//	fmt.Println(c.DebugString(c.Output(0))) // -> "[100,10]"
//
// A Context is not safe for concurrent use: it is meant to be driven by a
// single goroutine and thrown away.
package shapeinference

import (
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/shapeinference/dtypes"
)

const (
	// UnknownDim is the value of a dimension whose size is not (yet) known.
	//
	// It doubles as the stored sentinel: a dimension explicitly created with
	// the value -1 is indistinguishable from an unknown dimension. Other
	// negative values are stored and rendered literally.
	UnknownDim int64 = -1

	// UnknownRank is the rank reported for a shape whose rank is not known.
	UnknownRank int = -1
)

// Dimension is a handle to the size of one axis, owned by a Context.
//
// The zero value is not a valid handle; Dimensions are only obtained from
// the Context that owns them and are meaningless in any other Context.
// Handles are comparable: d0 == d1 implies they hold the same value.
type Dimension struct {
	id int32
}

// Shape is a handle to a shape value owned by a Context: a sequence of
// Dimensions, or a rank-unknown marker.
//
// The zero value is not a valid handle; Shapes are only obtained from the
// Context that owns them. Handles are comparable: s0 == s1 implies they
// describe the same shape.
type Shape struct {
	id int32
}

// Tensor is the read-only view of a materialized tensor value, as consumed
// by MakeShapeFromTensor. The tensors package provides an implementation.
//
// Int32At/Int64At access flat elements of the respective element type; the
// engine only calls the accessor matching DType.
type Tensor interface {
	Rank() int
	DType() dtypes.DType
	Size() int
	Int32At(flatIdx int) int32
	Int64At(flatIdx int) int64
}

// shapeEntry is one slot of the Context's shape store. The zero value is a
// rank-unknown shape. Entries are never modified once created.
type shapeEntry struct {
	rankKnown bool
	dims      []Dimension
}

// Context holds every value created while inferring the output shapes of one
// operation: the arena of Dimension and Shape values, the operation's input
// shapes, the materialized value of inputs that are statically known
// constants, and one output slot per declared output.
//
// All handles remain valid for as long as the Context is alive; contexts are
// single-use and must not be shared across goroutines.
type Context struct {
	// dimValues and shapeEntries are the arena; handle ids are 1-based
	// indices into them, so the zero handle is invalid.
	dimValues    []int64
	shapeEntries []shapeEntry

	inputs       []Shape
	inputTensors []Tensor
	outputs      []Shape
}

// New creates a Context with one shape specifier per operation input, the
// declared number of outputs, and the materialized values of the leading
// inputs. inputTensors may be shorter than inputSpecs (missing entries mean
// the value is not statically known) but never longer.
//
// Specifier grammar: "?" for unknown rank, or "[" axes "]" with
// comma-separated axes that are each "?" or a non-negative decimal, e.g.
// "[2,?,3]". Specifiers come from trusted code, never from external input:
// malformed text panics, as does a too-long inputTensors list.
//
// Output slots start as unknown shapes.
func New(inputSpecs []string, numOutputs int, inputTensors []Tensor) *Context {
	c := newContext(len(inputSpecs), numOutputs, inputTensors)
	for ii, spec := range inputSpecs {
		dims, rankKnown, err := ParseShapeSpec(spec)
		if err != nil {
			exceptions.Panicf("shapeinference.New: input #%d: %v", ii, err)
		}
		c.inputs = append(c.inputs, c.shapeFromDims(dims, rankKnown))
	}
	return c
}

// NewFromDims is like New, but takes each input shape already parsed: a nil
// slice is an input of unknown rank, an UnknownDim (-1) entry an unknown
// axis, and an empty non-nil slice a scalar.
func NewFromDims(inputDims [][]int64, numOutputs int, inputTensors []Tensor) *Context {
	c := newContext(len(inputDims), numOutputs, inputTensors)
	for _, dims := range inputDims {
		c.inputs = append(c.inputs, c.shapeFromDims(dims, dims != nil))
	}
	return c
}

func newContext(numInputs, numOutputs int, inputTensors []Tensor) *Context {
	if len(inputTensors) > numInputs {
		exceptions.Panicf("shapeinference: %d input tensor values provided for only %d inputs!?",
			len(inputTensors), numInputs)
	}
	c := &Context{
		inputs:       make([]Shape, 0, numInputs),
		inputTensors: make([]Tensor, numInputs),
		outputs:      make([]Shape, numOutputs),
	}
	copy(c.inputTensors, inputTensors)
	for ii := range c.outputs {
		c.outputs[ii] = c.MakeUnknownShape()
	}
	return c
}

// shapeFromDims materializes one input shape from its parsed form.
func (c *Context) shapeFromDims(dims []int64, rankKnown bool) Shape {
	if !rankKnown {
		return c.MakeUnknownShape()
	}
	handles := make([]Dimension, len(dims))
	for axis, value := range dims {
		handles[axis] = c.MakeDim(value)
	}
	return c.MakeShape(handles...)
}

// MakeDim creates a new dimension with the given size and returns its
// handle. The value is stored literally: UnknownDim (-1) creates an unknown
// dimension. No deduplication happens, two calls with the same value return
// two distinct handles; callers that want sharing must reuse a handle.
func (c *Context) MakeDim(value int64) Dimension {
	c.dimValues = append(c.dimValues, value)
	return Dimension{id: int32(len(c.dimValues))}
}

// MakeUnknownDim creates a new dimension of unknown size.
func (c *Context) MakeUnknownDim() Dimension {
	return c.MakeDim(UnknownDim)
}

// MakeShape creates a new shape with the given dimensions, which must belong
// to this Context. No dimensions creates a scalar (rank 0, which is known).
// As with MakeDim, every call returns a distinct handle.
func (c *Context) MakeShape(dims ...Dimension) Shape {
	for _, d := range dims {
		c.resolveDim(d)
	}
	c.shapeEntries = append(c.shapeEntries, shapeEntry{rankKnown: true, dims: slices.Clone(dims)})
	return Shape{id: int32(len(c.shapeEntries))}
}

// MakeUnknownShape creates a new shape of unknown rank.
func (c *Context) MakeUnknownShape() Shape {
	c.shapeEntries = append(c.shapeEntries, shapeEntry{})
	return Shape{id: int32(len(c.shapeEntries))}
}

// resolveDim returns the stored value of d, panicking on handles this
// Context never created (the zero Dimension, or one from another Context).
func (c *Context) resolveDim(d Dimension) int64 {
	if d.id <= 0 || int(d.id) > len(c.dimValues) {
		exceptions.Panicf("shapeinference: invalid Dimension handle (id=%d), was it created by this Context?", d.id)
	}
	return c.dimValues[d.id-1]
}

// resolveShape returns the stored entry of s, panicking on handles this
// Context never created. The entry is immutable.
func (c *Context) resolveShape(s Shape) *shapeEntry {
	if s.id <= 0 || int(s.id) > len(c.shapeEntries) {
		exceptions.Panicf("shapeinference: invalid Shape handle (id=%d), was it created by this Context?", s.id)
	}
	return &c.shapeEntries[s.id-1]
}

// NumInputs returns the number of operation inputs.
func (c *Context) NumInputs() int { return len(c.inputs) }

// Input returns the shape of the idx-th operation input.
func (c *Context) Input(idx int) Shape {
	if idx < 0 || idx >= len(c.inputs) {
		exceptions.Panicf("shapeinference: input index %d out of range, there are %d inputs", idx, len(c.inputs))
	}
	return c.inputs[idx]
}

// InputTensor returns the materialized value of the idx-th input, or nil
// when the input is not a statically known constant.
func (c *Context) InputTensor(idx int) Tensor {
	if idx < 0 || idx >= len(c.inputTensors) {
		exceptions.Panicf("shapeinference: input index %d out of range, there are %d inputs", idx, len(c.inputTensors))
	}
	return c.inputTensors[idx]
}

// NumOutputs returns the number of output slots.
func (c *Context) NumOutputs() int { return len(c.outputs) }

// Output returns the shape currently set for the idx-th output. Before any
// SetOutput it is an unknown shape.
func (c *Context) Output(idx int) Shape {
	if idx < 0 || idx >= len(c.outputs) {
		exceptions.Panicf("shapeinference: output index %d out of range, there are %d outputs", idx, len(c.outputs))
	}
	return c.outputs[idx]
}

// SetOutput records s as the inferred shape of the idx-th output.
func (c *Context) SetOutput(idx int, s Shape) {
	if idx < 0 || idx >= len(c.outputs) {
		exceptions.Panicf("shapeinference: output index %d out of range, there are %d outputs", idx, len(c.outputs))
	}
	c.resolveShape(s)
	c.outputs[idx] = s
}

// RankKnown returns whether the rank of s is known.
func (c *Context) RankKnown(s Shape) bool {
	return c.resolveShape(s).rankKnown
}

// Rank returns the number of axes of s, or UnknownRank when the rank is
// unknown.
func (c *Context) Rank(s Shape) int {
	entry := c.resolveShape(s)
	if !entry.rankKnown {
		return UnknownRank
	}
	return len(entry.dims)
}

// Dims returns a freshly allocated slice with the dimensions of s, or nil
// when the rank is unknown.
func (c *Context) Dims(s Shape) []Dimension {
	return slices.Clone(c.resolveShape(s).dims)
}

// Dim returns the dimension of the given axis of s. The rank of s must be
// known and axis in range: callers assert the rank (WithRank) before
// addressing axes, so a violation is a bug and panics.
func (c *Context) Dim(s Shape, axis int) Dimension {
	entry := c.resolveShape(s)
	if !entry.rankKnown {
		exceptions.Panicf("shapeinference: Dim(axis=%d) called on a shape of unknown rank", axis)
	}
	if axis < 0 || axis >= len(entry.dims) {
		exceptions.Panicf("shapeinference: axis %d out of range for a rank %d shape", axis, len(entry.dims))
	}
	return entry.dims[axis]
}

// ValueKnown returns whether the size of d is known.
func (c *Context) ValueKnown(d Dimension) bool {
	return c.resolveDim(d) != UnknownDim
}

// Value returns the size of d, or UnknownDim when it is not known.
func (c *Context) Value(d Dimension) int64 {
	return c.resolveDim(d)
}
