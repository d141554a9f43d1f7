package shapeinference

import (
	"bytes"
	"fmt"
	"strconv"
)

// DebugString renders s for diagnostics: "?" when the rank is unknown,
// otherwise the axes between square brackets, e.g. "[2,?,3]". A shape built
// purely from the specifier grammar renders back to its specifier.
func (c *Context) DebugString(s Shape) string {
	entry := c.resolveShape(s)
	if !entry.rankKnown {
		return "?"
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	for axis, d := range entry.dims {
		if axis > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(c.DebugStringDim(d))
	}
	buf.WriteByte(']')
	return buf.String()
}

// DebugStringDim renders d for diagnostics: "?" when its size is unknown,
// otherwise the decimal value.
func (c *Context) DebugStringDim(d Dimension) string {
	value := c.resolveDim(d)
	if value == UnknownDim {
		return "?"
	}
	return strconv.FormatInt(value, 10)
}

// String implements fmt.Stringer, and pretty prints the session: input
// shapes, which inputs have a materialized value, and the output shapes.
func (c *Context) String() string {
	var buf bytes.Buffer
	w := func(format string, args ...any) {
		if len(args) == 0 {
			buf.WriteString(format)
		} else {
			buf.WriteString(fmt.Sprintf(format, args...))
		}
	}
	w("InferenceContext{inputs=[")
	for ii, s := range c.inputs {
		if ii > 0 {
			w(", ")
		}
		w("%s", c.DebugString(s))
		if c.inputTensors[ii] != nil {
			w("=%v", c.inputTensors[ii])
		}
	}
	w("], outputs=[")
	for ii, s := range c.outputs {
		if ii > 0 {
			w(", ")
		}
		w("%s", c.DebugString(s))
	}
	w("]}")
	return buf.String()
}
