package shapefn

import (
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/shapeinference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// einsumOutput runs the equation's shape function over the given input
// specifiers and renders the output.
func einsumOutput(t *testing.T, equation string, inputSpecs []string) string {
	t.Helper()
	c := shapeinference.New(inputSpecs, 1, nil)
	require.NoError(t, Einsum(equation)(c))
	return c.DebugString(c.Output(0))
}

// TestEinsum tests shape inference over Einstein-summation equations.
func TestEinsum(t *testing.T) {
	t.Run("MatrixProduct", func(t *testing.T) {
		assert.Equal(t, "[2,4]", einsumOutput(t, "ij,jk->ik", []string{"[2,3]", "[3,4]"}))
	})

	t.Run("BatchedWithUnknowns", func(t *testing.T) {
		assert.Equal(t, "[8,2,4]", einsumOutput(t, "bij,bjk->bik", []string{"[8,2,?]", "[?,3,4]"}))
	})

	t.Run("UnknownRankOperand", func(t *testing.T) {
		assert.Equal(t, "[?,4]", einsumOutput(t, "ij,jk->ik", []string{"?", "[3,4]"}))
	})

	t.Run("Transpose", func(t *testing.T) {
		assert.Equal(t, "[3,2]", einsumOutput(t, "ij->ji", []string{"[2,3]"}))
	})

	t.Run("Diagonal", func(t *testing.T) {
		assert.Equal(t, "[4]", einsumOutput(t, "ii->i", []string{"[4,4]"}))
	})

	t.Run("OuterProduct", func(t *testing.T) {
		assert.Equal(t, "[2,3]", einsumOutput(t, "i,j->ij", []string{"[2]", "[3]"}))
	})

	t.Run("FullContraction", func(t *testing.T) {
		assert.Equal(t, "[]", einsumOutput(t, "ij->", []string{"[5,6]"}))
	})

	t.Run("SpacesAllowed", func(t *testing.T) {
		assert.Equal(t, "[2,4]", einsumOutput(t, "ij, jk -> ik", []string{"[2,3]", "[3,4]"}))
	})

	t.Run("ContractedAxesConflict", func(t *testing.T) {
		c := shapeinference.New([]string{"[2,3]", "[4,5]"}, 1, nil)
		err := Einsum("ij,jk->ik")(c)
		require.Error(t, err)
		require.Contains(t, err.Error(), `label 'j'`)
		require.Contains(t, err.Error(), "dimensions must be equal, but are 3 and 4")
	})

	t.Run("DiagonalConflict", func(t *testing.T) {
		c := shapeinference.New([]string{"[4,5]"}, 1, nil)
		err := Einsum("ii->i")(c)
		require.Error(t, err)
		require.Contains(t, err.Error(), "dimensions must be equal, but are 4 and 5")
	})

	t.Run("OperandRankMismatch", func(t *testing.T) {
		c := shapeinference.New([]string{"[2,3,4]", "[3,4]"}, 1, nil)
		err := Einsum("ij,jk->ik")(c)
		require.Error(t, err)
		require.Contains(t, err.Error(), `input #0 ("ij")`)
		require.Contains(t, err.Error(), "shape must be rank 2 but is rank 3")
	})

	t.Run("WrongInputCount", func(t *testing.T) {
		c := shapeinference.New([]string{"[2,3]"}, 1, nil)
		err := Einsum("ij,jk->ik")(c)
		require.Error(t, err)
		require.Contains(t, err.Error(), "expects 2 inputs, got 1")
	})

	t.Run("RegisteredSpecialization", func(t *testing.T) {
		Register("TestOnlyBatchMatMul", Einsum("bij,bjk->bik"))
		got := inferOutput(t, "TestOnlyBatchMatMul", []string{"[16,100,?]", "[16,32,10]"}, nil)
		assert.Equal(t, "[16,100,10]", got)
	})
}

// TestEinsumEquationContract tests that malformed equations panic when the
// shape function is built.
func TestEinsumEquationContract(t *testing.T) {
	for name, equation := range map[string]string{
		"MissingArrow":        "ij,jk",
		"Ellipsis":            "...ij,jk->...ik",
		"BadLabel":            "i1,1k->ik",
		"RepeatedOutputLabel": "ij->jj",
		"UnboundOutputLabel":  "ij->ik",
	} {
		t.Run(name, func(t *testing.T) {
			err := exceptions.TryCatch[error](func() { Einsum(equation) })
			require.Error(t, err)
			require.Contains(t, err.Error(), "shapefn.Einsum")
		})
	}
}
