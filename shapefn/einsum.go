package shapefn

import (
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/shapeinference"
	"github.com/pkg/errors"
)

// Einsum returns the shape function of an Einstein-summation operation with
// the given equation, e.g. "ij,jk->ik" for a matrix product or
// "bij,bjk->bik" for its batched form.
//
// Each input term names one axis label per axis of the corresponding
// operand; axes sharing a label are unified with MergeDims, and the output
// shape is assembled from the labels of the output term. The equation is
// part of an operation's definition, so malformed text (missing "->",
// non-letter labels, a repeated or unbound output label, ellipsis) panics;
// mismatches against the actual inputs are returned as errors.
//
// Use the returned function directly, or register specializations:
//
//	shapefn.Register("BatchMatMul", shapefn.Einsum("bij,bjk->bik"))
func Einsum(equation string) Func {
	inputTerms, outputTerm := parseEinsumEquation(equation)
	return func(c *shapeinference.Context) error {
		if c.NumInputs() != len(inputTerms) {
			return errors.Errorf("einsum %q expects %d inputs, got %d", equation, len(inputTerms), c.NumInputs())
		}
		labelDims := make(map[rune]shapeinference.Dimension)
		for ii, term := range inputTerms {
			operand, err := c.WithRank(c.Input(ii), len(term))
			if err != nil {
				return errors.WithMessagef(err, "einsum %q input #%d (%q)", equation, ii, term)
			}
			for axis, label := range term {
				d := c.Dim(operand, axis)
				if prev, found := labelDims[label]; found {
					d, err = c.MergeDims(prev, d)
					if err != nil {
						return errors.WithMessagef(err, "einsum %q label %q", equation, label)
					}
				}
				labelDims[label] = d
			}
		}
		dims := make([]shapeinference.Dimension, 0, len(outputTerm))
		for _, label := range outputTerm {
			dims = append(dims, labelDims[label])
		}
		c.SetOutput(0, c.MakeShape(dims...))
		return nil
	}
}

// parseEinsumEquation splits and validates an equation. All terms are plain
// ASCII letter sequences, so byte positions within a term double as axis
// indices.
func parseEinsumEquation(equation string) (inputTerms []string, outputTerm string) {
	compact := strings.ReplaceAll(equation, " ", "")
	if strings.Contains(compact, "...") {
		exceptions.Panicf("shapefn.Einsum: ellipsis is not supported, in equation %q", equation)
	}
	var found bool
	var lhs string
	lhs, outputTerm, found = strings.Cut(compact, "->")
	if !found {
		exceptions.Panicf(`shapefn.Einsum: equation %q is missing "->"`, equation)
	}
	inputTerms = strings.Split(lhs, ",")
	inputLabels := make(map[rune]bool)
	for _, term := range inputTerms {
		for _, label := range term {
			if !isAxisLabel(label) {
				exceptions.Panicf("shapefn.Einsum: invalid axis label %q in equation %q", label, equation)
			}
			inputLabels[label] = true
		}
	}
	seen := make(map[rune]bool)
	for _, label := range outputTerm {
		if !isAxisLabel(label) {
			exceptions.Panicf("shapefn.Einsum: invalid axis label %q in equation %q", label, equation)
		}
		if seen[label] {
			exceptions.Panicf("shapefn.Einsum: output axis label %q repeated in equation %q", label, equation)
		}
		seen[label] = true
		if !inputLabels[label] {
			exceptions.Panicf("shapefn.Einsum: output axis label %q does not appear in any input of equation %q", label, equation)
		}
	}
	return inputTerms, outputTerm
}

func isAxisLabel(label rune) bool {
	return (label >= 'a' && label <= 'z') || (label >= 'A' && label <= 'Z')
}
