package shapeinference

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// ParseShapeSpec parses a shape specifier.
//
// The grammar is one of:
//
//	"?"                      unknown rank
//	"[" ( AXIS ("," AXIS)* )? "]"   known rank, one AXIS per axis
//	AXIS := "?" | non-negative decimal integer
//
// ASCII spaces around tokens are ignored. For an unknown rank it returns
// (nil, false, nil); for a known rank, a never-nil dims slice with unknown
// axes mapped to UnknownDim, and rankKnown true.
//
// ParseShapeSpec is pure and never panics: malformed text is returned as an
// error. New is the trusted call site that turns that error into a panic.
func ParseShapeSpec(spec string) (dims []int64, rankKnown bool, err error) {
	p := &specParser{spec: spec}
	p.skipSpaces()
	if p.consume('?') {
		p.skipSpaces()
		if !p.done() {
			return nil, false, p.errorf(`trailing text after "?"`)
		}
		return nil, false, nil
	}
	if !p.consume('[') {
		return nil, false, p.errorf(`expected "[" or "?"`)
	}
	dims = []int64{}
	p.skipSpaces()
	if !p.consume(']') {
		for {
			p.skipSpaces()
			if p.consume('?') {
				dims = append(dims, UnknownDim)
			} else {
				var value int64
				value, err = p.axisSize()
				if err != nil {
					return nil, false, err
				}
				dims = append(dims, value)
			}
			p.skipSpaces()
			if p.consume(',') {
				continue
			}
			if p.consume(']') {
				break
			}
			return nil, false, p.errorf(`expected "," or "]"`)
		}
	}
	p.skipSpaces()
	if !p.done() {
		return nil, false, p.errorf("trailing text after the closing bracket")
	}
	return dims, true, nil
}

// specParser is a cursor over the specifier text.
type specParser struct {
	spec string
	pos  int
}

func (p *specParser) done() bool {
	return p.pos >= len(p.spec)
}

func (p *specParser) skipSpaces() {
	for !p.done() && p.spec[p.pos] == ' ' {
		p.pos++
	}
}

// consume advances over ch if it is the next byte and reports whether it did.
func (p *specParser) consume(ch byte) bool {
	if !p.done() && p.spec[p.pos] == ch {
		p.pos++
		return true
	}
	return false
}

// axisSize scans one non-negative decimal integer.
func (p *specParser) axisSize() (int64, error) {
	start := p.pos
	for !p.done() && p.spec[p.pos] >= '0' && p.spec[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, p.errorf(`expected an axis size or "?"`)
	}
	value, err := strconv.ParseInt(p.spec[start:p.pos], 10, 64)
	if err != nil {
		return 0, p.errorf("axis size %q overflows int64", p.spec[start:p.pos])
	}
	return value, nil
}

func (p *specParser) errorf(format string, args ...any) error {
	return errors.Errorf("invalid shape specifier %q at position %d: %s",
		p.spec, p.pos, fmt.Sprintf(format, args...))
}
