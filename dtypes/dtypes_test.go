package dtypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	assert.Equal(t, "invalid", InvalidDType.String())
	assert.Equal(t, "bool", Bool.String())
	assert.Equal(t, "int32", Int32.String())
	assert.Equal(t, "int64", Int64.String())
	assert.Equal(t, "float32", Float32.String())
	assert.Equal(t, "float64", Float64.String())
	assert.Equal(t, "DType(99)", DType(99).String())
}

func TestIsInt(t *testing.T) {
	assert.True(t, Int32.IsInt())
	assert.True(t, Int64.IsInt())
	assert.False(t, Bool.IsInt())
	assert.False(t, Float32.IsInt())
	assert.False(t, Float64.IsInt())
	assert.False(t, InvalidDType.IsInt())
}

func TestSize(t *testing.T) {
	assert.Equal(t, 0, InvalidDType.Size())
	assert.Equal(t, 1, Bool.Size())
	assert.Equal(t, 4, Int32.Size())
	assert.Equal(t, 8, Int64.Size())
	assert.Equal(t, 4, Float32.Size())
	assert.Equal(t, 8, Float64.Size())
}

func TestFromGenericsType(t *testing.T) {
	require.Equal(t, Bool, FromGenericsType[bool]())
	require.Equal(t, Int32, FromGenericsType[int32]())
	require.Equal(t, Int64, FromGenericsType[int64]())
	require.Equal(t, Float32, FromGenericsType[float32]())
	require.Equal(t, Float64, FromGenericsType[float64]())
}
