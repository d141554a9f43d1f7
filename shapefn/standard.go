package shapefn

import (
	"github.com/gomlx/shapeinference"
	"github.com/pkg/errors"
)

func init() {
	for _, opType := range []string{"Identity", "Relu", "Sigmoid", "Tanh", "Neg", "Abs", "Exp", "Log", "ZerosLike"} {
		Register(opType, Unchanged)
	}
	Register("Rank", Scalar)
	Register("Size", Scalar)
	Register("Shape", ShapeOf)
	Register("MatMul", MatMul)
	Register("BiasAdd", BiasAdd)
	Register("Reshape", Reshape)
	Register("Fill", Fill)
	Register("Gather", Gather)
}

// Unchanged sets every output to the shape of the first input, the shape
// function of element-wise operations.
func Unchanged(c *shapeinference.Context) error {
	for idx := 0; idx < c.NumOutputs(); idx++ {
		c.SetOutput(idx, c.Input(0))
	}
	return nil
}

// Scalar sets every output to a scalar shape, for operations like Rank or
// Size whose result is a single number.
func Scalar(c *shapeinference.Context) error {
	for idx := 0; idx < c.NumOutputs(); idx++ {
		c.SetOutput(idx, c.MakeShape())
	}
	return nil
}

// ShapeOf sets the output to a rank-1 vector with one element per axis of
// the input. An unknown input rank is UnknownRank (-1), which MakeDim
// stores as an unknown size, so the output becomes a vector of unknown
// length.
func ShapeOf(c *shapeinference.Context) error {
	c.SetOutput(0, c.MakeShape(c.MakeDim(int64(c.Rank(c.Input(0))))))
	return nil
}

// MatMul infers the output of a rank-2 matrix product, "[m,k] x [k,n] ->
// [m,n]", unifying the two contracted axes.
func MatMul(c *shapeinference.Context) error {
	a, err := c.WithRank(c.Input(0), 2)
	if err != nil {
		return err
	}
	b, err := c.WithRank(c.Input(1), 2)
	if err != nil {
		return err
	}
	if _, err = c.MergeDims(c.Dim(a, 1), c.Dim(b, 0)); err != nil {
		return err
	}
	c.SetOutput(0, c.MakeShape(c.Dim(a, 0), c.Dim(b, 1)))
	return nil
}

// BiasAdd checks a rank-1 bias against the last axis of the input and sets
// the output to the input shape, with the last axis refined by whatever the
// bias axis adds.
func BiasAdd(c *shapeinference.Context) error {
	bias, err := c.WithRank(c.Input(1), 1)
	if err != nil {
		return err
	}
	input := c.Input(0)
	if !c.RankKnown(input) {
		c.SetOutput(0, input)
		return nil
	}
	rank := c.Rank(input)
	if rank == 0 {
		return errors.New("BiasAdd input must have at least one axis, got a scalar")
	}
	last := c.Dim(input, rank-1)
	merged, err := c.MergeDims(last, c.Dim(bias, 0))
	if err != nil {
		return err
	}
	if merged == last {
		c.SetOutput(0, input)
		return nil
	}
	dims := c.Dims(input)
	dims[rank-1] = merged
	c.SetOutput(0, c.MakeShape(dims...))
	return nil
}

// Reshape sets the output to the shape described by the second input's
// materialized value, or to an unknown shape when the new dimensions are
// not a statically known constant.
func Reshape(c *shapeinference.Context) error {
	out, err := c.MakeShapeFromTensor(1)
	if err != nil {
		return err
	}
	c.SetOutput(0, out)
	return nil
}

// Fill sets the output to the shape described by the first input's
// materialized value: the dimensions argument of operations that build a
// tensor from scratch.
func Fill(c *shapeinference.Context) error {
	out, err := c.MakeShapeFromTensor(0)
	if err != nil {
		return err
	}
	c.SetOutput(0, out)
	return nil
}

// Gather infers indexing the first axis of params (input 0) with indices
// (input 1): the output is the indices' axes followed by the params' axes
// after the first.
func Gather(c *shapeinference.Context) error {
	suffix, err := c.Subshape(c.Input(0), 1)
	if err != nil {
		return err
	}
	c.SetOutput(0, c.Concatenate(c.Input(1), suffix))
	return nil
}
