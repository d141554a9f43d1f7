package shapeinference

import (
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/shapeinference/tensors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew tests Context construction from shape specifiers.
func TestNew(t *testing.T) {
	t.Run("InputsAndOutputs", func(t *testing.T) {
		c := New([]string{"[2,?,3]", "?", "[]"}, 2, nil)
		require.Equal(t, 3, c.NumInputs())
		require.Equal(t, 2, c.NumOutputs())
		assert.Equal(t, "[2,?,3]", c.DebugString(c.Input(0)))
		assert.Equal(t, "?", c.DebugString(c.Input(1)))
		assert.Equal(t, "[]", c.DebugString(c.Input(2)))
	})

	t.Run("InputRanksAndValues", func(t *testing.T) {
		c := New([]string{"[2,?,3]"}, 1, nil)
		in := c.Input(0)
		require.True(t, c.RankKnown(in))
		require.Equal(t, 3, c.Rank(in))
		assert.Equal(t, int64(2), c.Value(c.Dim(in, 0)))
		assert.False(t, c.ValueKnown(c.Dim(in, 1)))
		assert.Equal(t, UnknownDim, c.Value(c.Dim(in, 1)))
		assert.Equal(t, int64(3), c.Value(c.Dim(in, 2)))
	})

	t.Run("UnknownRankInput", func(t *testing.T) {
		c := New([]string{"?"}, 1, nil)
		in := c.Input(0)
		require.False(t, c.RankKnown(in))
		require.Equal(t, UnknownRank, c.Rank(in))
		require.Nil(t, c.Dims(in))
	})

	t.Run("OutputsStartUnknown", func(t *testing.T) {
		c := New([]string{"[1]"}, 3, nil)
		for idx := 0; idx < c.NumOutputs(); idx++ {
			require.False(t, c.RankKnown(c.Output(idx)))
		}
	})

	t.Run("MalformedSpecPanics", func(t *testing.T) {
		err := exceptions.TryCatch[error](func() { New([]string{"[2,"}, 1, nil) })
		require.Error(t, err)
		require.Contains(t, err.Error(), "input #0")
		require.Contains(t, err.Error(), "invalid shape specifier")
	})

	t.Run("TensorListPadded", func(t *testing.T) {
		c := New([]string{"[3]", "[4]"}, 1, []Tensor{tensors.Vector[int32](7, 2, 9)})
		require.NotNil(t, c.InputTensor(0))
		require.Nil(t, c.InputTensor(1))
	})

	t.Run("TooManyTensorsPanics", func(t *testing.T) {
		tensor := tensors.Vector[int32](1)
		err := exceptions.TryCatch[error](func() {
			New([]string{"[1]"}, 1, []Tensor{tensor, tensor})
		})
		require.Error(t, err)
		require.Contains(t, err.Error(), "2 input tensor values")
	})
}

// TestNewFromDims tests the pre-parsed construction conventions: nil for an
// unknown rank, UnknownDim entries for unknown axes, empty for a scalar.
func TestNewFromDims(t *testing.T) {
	c := NewFromDims([][]int64{{2, UnknownDim}, nil, {}}, 1, nil)
	assert.Equal(t, "[2,?]", c.DebugString(c.Input(0)))
	assert.Equal(t, "?", c.DebugString(c.Input(1)))
	assert.Equal(t, "[]", c.DebugString(c.Input(2)))
}

// TestHandleIdentity tests that creation never deduplicates and that equal
// handles can be relied on as equal values.
func TestHandleIdentity(t *testing.T) {
	c := New(nil, 0, nil)

	d0 := c.MakeDim(7)
	d1 := c.MakeDim(7)
	require.NotEqual(t, d0, d1)
	require.Equal(t, c.Value(d0), c.Value(d1))

	u0 := c.MakeUnknownShape()
	u1 := c.MakeUnknownShape()
	require.NotEqual(t, u0, u1)

	s := c.MakeShape(d0, d1)
	require.Equal(t, []Dimension{d0, d1}, c.Dims(s))
	require.Equal(t, d0, c.Dim(s, 0))
	require.Equal(t, d1, c.Dim(s, 1))
}

// TestDimsReturnsCopy tests that mutating the slice returned by Dims does
// not change the shape.
func TestDimsReturnsCopy(t *testing.T) {
	c := New([]string{"[2,3]"}, 1, nil)
	in := c.Input(0)
	dims := c.Dims(in)
	dims[0] = c.MakeDim(9)
	require.Equal(t, "[2,3]", c.DebugString(in))
}

// TestSetOutput tests recording inferred outputs.
func TestSetOutput(t *testing.T) {
	c := New([]string{"[2,3]"}, 2, nil)
	c.SetOutput(1, c.Input(0))
	require.Equal(t, c.Input(0), c.Output(1))
	require.False(t, c.RankKnown(c.Output(0)))

	err := exceptions.TryCatch[error](func() { c.SetOutput(2, c.Input(0)) })
	require.Error(t, err)
	require.Contains(t, err.Error(), "output index 2 out of range")
}

// TestInvalidHandles tests that the zero handle and handles from another
// Context are rejected.
func TestInvalidHandles(t *testing.T) {
	c := New([]string{"[1]"}, 1, nil)

	err := exceptions.TryCatch[error](func() { c.Value(Dimension{}) })
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid Dimension handle")

	err = exceptions.TryCatch[error](func() { c.DebugString(Shape{}) })
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid Shape handle")

	other := New(nil, 0, nil)
	var foreign Dimension
	for ii := 0; ii < 10; ii++ {
		foreign = other.MakeDim(int64(ii))
	}
	err = exceptions.TryCatch[error](func() { c.Value(foreign) })
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid Dimension handle")
}

// TestAccessorPanics tests the contract checks of the indexed accessors.
func TestAccessorPanics(t *testing.T) {
	c := New([]string{"[2,3]", "?"}, 1, nil)

	t.Run("InputOutOfRange", func(t *testing.T) {
		err := exceptions.TryCatch[error](func() { c.Input(2) })
		require.Error(t, err)
		require.Contains(t, err.Error(), "input index 2 out of range")
	})

	t.Run("AxisOutOfRange", func(t *testing.T) {
		err := exceptions.TryCatch[error](func() { c.Dim(c.Input(0), 5) })
		require.Error(t, err)
		require.Contains(t, err.Error(), "axis 5 out of range")
	})

	t.Run("DimOnUnknownRank", func(t *testing.T) {
		err := exceptions.TryCatch[error](func() { c.Dim(c.Input(1), 0) })
		require.Error(t, err)
		require.Contains(t, err.Error(), "unknown rank")
	})
}

// TestContextString tests the session's pretty printing, including the
// materialized value annotation.
func TestContextString(t *testing.T) {
	c := New([]string{"[2,3]", "?"}, 1, []Tensor{nil, tensors.Vector[int64](4, 4)})
	require.Equal(t, "InferenceContext{inputs=[[2,3], ?=(int64)[2]], outputs=[?]}", c.String())

	c.SetOutput(0, c.Input(0))
	require.Equal(t, "InferenceContext{inputs=[[2,3], ?=(int64)[2]], outputs=[[2,3]]}", c.String())
}
