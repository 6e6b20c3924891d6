// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package renderer

import (
	"math"

	"github.com/open2b/ftl/ast"
	"github.com/open2b/ftl/model"
)

// rangeValue is the value of a range expression. It is a sequence of
// consecutive integers, increasing or decreasing.
type rangeValue struct {
	begin          int
	size           int
	step           int  // 1 or -1
	inclusive      bool // a..b
	rightUnbounded bool // a..
	rightAdaptive  bool // the end is clamped when used for slicing
}

// Index returns the integer at index i.
func (r *rangeValue) Index(i int) (model.Value, error) {
	if i < 0 || i >= r.size {
		return nil, nil
	}
	return model.IntNum(int64(r.begin) + int64(i)*int64(r.step)), nil
}

// Len returns the number of integers of the range. An unbounded range has
// math.MaxInt32 integers.
func (r *rangeValue) Len() (int, error) { return r.size, nil }

// evalRange evaluates a range expression.
func (env *Environment) evalRange(n *ast.Range) *rangeValue {
	begin := env.rangeBound(n.Low)
	r := &rangeValue{begin: begin, step: 1}
	switch n.End {
	case ast.RangeUnbounded:
		r.size = math.MaxInt32
		r.rightUnbounded = true
		r.rightAdaptive = true
	case ast.RangeLength:
		length := env.rangeBound(n.High)
		if length < 0 {
			r.step = -1
			length = -length
		}
		r.size = length
		r.rightAdaptive = env.settings.RightAdaptiveSlicing
	case ast.RangeInclusive:
		end := env.rangeBound(n.High)
		if end >= begin {
			r.size = end - begin + 1
		} else {
			r.step = -1
			r.size = begin - end + 1
		}
		r.inclusive = true
	case ast.RangeExclusive:
		end := env.rangeBound(n.High)
		if end >= begin {
			r.size = end - begin
		} else {
			r.step = -1
			r.size = begin - end
		}
	}
	return r
}

// rangeBound evaluates a bound of a range, that must be an integer.
func (env *Environment) rangeBound(expr ast.Expression) int {
	n := env.toNumber(expr, env.evalValue(expr))
	i, ok := n.Int()
	if !ok {
		panic(env.newError(expr, "The bounds of a range must be integers, but this has evaluated to ", n.String(), "."))
	}
	return i
}

// slice returns the slice of target, a sequence or a string, with the
// indexes of the range r.
func (env *Environment) slice(n *ast.DynamicKeyName, target model.Value, r *rangeValue) model.Value {
	var seq model.Sequence
	var str []rune
	var targetLen int
	switch t := target.(type) {
	case model.Sequence:
		seq = t
		var err error
		targetLen, err = seq.Len()
		if err != nil {
			panic(env.newError(n.Target, "Failed to get the size of the sequence: ", err.Error()).withCause(err))
		}
	case model.String:
		str = []rune(env.toString(n.Target, t))
		targetLen = len(str)
	default:
		panic(env.newUnexpectedTypeError(n.Target, target, "sequence or string"))
	}
	what, unit := "sequence", "element(s)"
	if seq == nil {
		what, unit = "string", "character(s)"
	}
	empty := func() model.Value {
		if seq == nil {
			return model.SimpleString("")
		}
		return model.EmptySequence
	}
	first := r.begin
	if first < 0 {
		panic(env.newError(n.Key, "Negative range start index (", first, ") isn't allowed for a range used for slicing."))
	}
	if !r.rightUnbounded && r.size == 0 {
		return empty()
	}
	outOfBounds := first >= targetLen
	if r.rightAdaptive && r.step == 1 {
		outOfBounds = first > targetLen
	}
	if outOfBounds {
		panic(env.newError(n.Key, "Range start index ", first, " is out of bounds, because the sliced ", what,
			" has only ", targetLen, " ", unit, ". (Note that indices are 0-based)."))
	}
	var size int
	if r.rightUnbounded {
		size = targetLen - first
	} else {
		last := first + (r.size-1)*r.step
		switch {
		case last < 0:
			if !r.rightAdaptive {
				panic(env.newError(n.Key, "Negative range end index (", last, ") isn't allowed for a range used for slicing."))
			}
			size = first + 1
		case last >= targetLen:
			if !r.rightAdaptive {
				panic(env.newError(n.Key, "Range end index ", last, " is out of bounds, because the sliced ", what,
					" has only ", targetLen, " ", unit, ". (Note that indices are 0-based)."))
			}
			size = targetLen - first
		default:
			size = r.size
		}
	}
	if size == 0 {
		return empty()
	}
	if seq == nil {
		if r.step != 1 && size > 1 {
			if env.settings.LegacyStringSlicing && r.inclusive && size == 2 {
				return empty()
			}
			panic(env.newError(n.Key, "Decreasing ranges aren't allowed for slicing strings (as it would give reversed text). ",
				"The index range was: first = ", first, ", last = ", first+(size-1)*r.step))
		}
		return model.SimpleString(string(str[first : first+size]))
	}
	items := make(model.SimpleSequence, size)
	for i := range items {
		v, err := seq.Index(first + i*r.step)
		if err != nil {
			panic(env.newError(n.Target, "Failed to get the item at index ", first+i*r.step, ": ", err.Error()).withCause(err))
		}
		items[i] = v
	}
	return items
}
