// Package shapefn maps operation types to shape functions: small
// per-operation programs that, given a shapeinference.Context, derive the
// operation's output shapes from whatever is known about its inputs.
//
// Shape functions are registered per op type, usually from init(), and run
// through Infer:
//
//	c, err := shapefn.Infer("MatMul", []string{"[100,?]", "[32,10]"}, 1, nil)
//	if err == nil {
//		fmt.Println(c.DebugString(c.Output(0))) // -> "[100,10]"
//	}
//
// The standard functions in this package cover common operations
// (element-wise ops, MatMul, Reshape, Gather, ...) and can also be
// registered directly for new op types with the same shape behavior, e.g.
// Register("Gelu", shapefn.Unchanged).
package shapefn

import (
	"maps"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/shapeinference"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Func computes the output shapes of one operation: it reads the input
// shapes, and any materialized input values, from c, and sets the output
// slots it can say something about. An error means the inputs are
// incompatible with the operation.
type Func func(c *shapeinference.Context) error

var registry = map[string]Func{}

// Register adds fn as the shape function for the given op type.
// Registration happens from init() of the package defining the operation,
// so an empty op type, a nil fn or a duplicate registration is a bug and
// panics.
func Register(opType string, fn Func) {
	if opType == "" {
		exceptions.Panicf("shapefn.Register: empty op type")
	}
	if fn == nil {
		exceptions.Panicf("shapefn.Register: nil shape function for op type %q", opType)
	}
	if _, found := registry[opType]; found {
		exceptions.Panicf("shapefn.Register: op type %q registered twice", opType)
	}
	registry[opType] = fn
}

// Lookup returns the shape function registered for the given op type, and
// whether there is one.
func Lookup(opType string) (Func, bool) {
	fn, found := registry[opType]
	return fn, found
}

// Ops returns the sorted list of op types with a registered shape function.
func Ops() []string {
	return slices.Sorted(maps.Keys(registry))
}

// Infer creates a Context for one operation (see shapeinference.New for the
// specifier grammar and the inputTensors conventions) and runs the op
// type's registered shape function over it. On success the returned Context
// carries the inferred output shapes.
func Infer(opType string, inputSpecs []string, numOutputs int, inputTensors []shapeinference.Tensor) (*shapeinference.Context, error) {
	fn, found := registry[opType]
	if !found {
		return nil, errors.Errorf("no shape function registered for op type %q", opType)
	}
	c := shapeinference.New(inputSpecs, numOutputs, inputTensors)
	if err := fn(c); err != nil {
		return nil, errors.WithMessagef(err, "while computing output shapes for %q", opType)
	}
	klog.V(2).Infof("shapefn.Infer(%q): %s", opType, c)
	return c, nil
}
