// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package renderer

import (
	"github.com/open2b/ftl/ast"
	"github.com/open2b/ftl/model"
)

// numberBuiltIns are the built-ins of the numbers, and the conversions to
// string that apply to more types.
var numberBuiltIns = map[string]builtInFunc{
	"abs":         numberFunc(model.Num.Abs),
	"round":       numberFunc(model.Num.Round),
	"floor":       numberFunc(model.Num.Floor),
	"ceiling":     numberFunc(model.Num.Ceiling),
	"int":         numberFunc(model.Num.Truncate),
	"is_infinite": func(env *Environment, n *ast.BuiltIn) model.Value { return model.Bool(env.targetNumber(n).IsInf()) },
	"is_nan":      func(env *Environment, n *ast.BuiltIn) model.Value { return model.Bool(env.targetNumber(n).IsNaN()) },
	"lower_abc":   abcFunc('a'),
	"upper_abc":   abcFunc('A'),
	"c":           builtInC,
	"string":      builtInString,
}

// numberFunc returns a built-in that transforms a number with f.
func numberFunc(f func(model.Num) model.Num) builtInFunc {
	return func(env *Environment, n *ast.BuiltIn) model.Value {
		num := env.targetNumber(n)
		if !num.IsFinite() {
			return num
		}
		return f(num)
	}
}

// abcFunc returns the ?lower_abc or the ?upper_abc built-in, that converts
// 1, 2, 3, ... to a, b, c, ..., z, aa, ab, ...
func abcFunc(first byte) builtInFunc {
	return func(env *Environment, n *ast.BuiltIn) model.Value {
		num := env.targetNumber(n)
		i, ok := num.Int()
		if !ok || i < 1 {
			panic(env.newError(n.Target, "The left side operand of ?", n.Name,
				" must be at least 1, but was ", num.String(), "."))
		}
		var b []byte
		for i > 0 {
			i--
			b = append(b, first+byte(i%26))
			i /= 26
		}
		for l, r := 0, len(b)-1; l < r; l, r = l+1, r-1 {
			b[l], b[r] = b[r], b[l]
		}
		return model.SimpleString(b)
	}
}

// builtInC implements ?c, that formats a number or a boolean for computer
// consumption.
func builtInC(env *Environment, n *ast.BuiltIn) model.Value {
	switch v := env.evalValue(n.Target).(type) {
	case model.Number:
		return model.SimpleString(env.asNum(n.Target, v).String())
	case model.Boolean:
		return model.SimpleString(env.formatBoolean(n.Target, v, "c"))
	case model.String:
		return v
	default:
		panic(env.newUnexpectedTypeError(n.Target, v, "number, boolean or string"))
	}
}

// builtInString implements ?string. For numbers and dates, the result can
// be printed, called with a format, as n?string("0.00"), or used as a hash
// of formats, as n?string.percent. For booleans, it can be called with the
// strings for true and false.
func builtInString(env *Environment, n *ast.BuiltIn) model.Value {
	switch v := env.evalValue(n.Target).(type) {
	case model.Number:
		num := env.asNum(n.Target, v)
		return env.newFormattedValue(n, env.formatNumber(n.Target, num), func(f string) string {
			return env.formatNumberWith(n.Target, num, f)
		})
	case model.Date:
		return env.newFormattedValue(n, env.formatDate(n.Target, v, ""), func(f string) string {
			return env.formatDate(n.Target, v, f)
		})
	case model.Boolean:
		b := env.asBool(n.Target, v)
		var s string
		if f := env.settings.BooleanFormat; f != "" {
			s = env.formatBoolean(n.Target, v, f)
		} else {
			s = env.formatBoolean(n.Target, v, "c")
		}
		m := env.newMethod(n, 2, 2, func(args methodArgs) model.Value {
			if b {
				return model.SimpleString(args.string(0))
			}
			return model.SimpleString(args.string(1))
		})
		return dualValue{method: m, s: s}
	case model.String:
		return v
	case nil:
		panic(env.newInvalidReferenceError(n.Target))
	default:
		panic(env.newUnexpectedTypeError(n.Target, v, "number, date, boolean or string"))
	}
}

// formattedValue is the value of ?string applied to a number or a date.
type formattedValue struct {
	dualValue
	format func(f string) string
}

// newFormattedValue returns a formattedValue with the string s that formats
// with the given function when called or read as a hash.
func (env *Environment) newFormattedValue(n *ast.BuiltIn, s string, format func(f string) string) formattedValue {
	m := env.newMethod(n, 1, 1, func(args methodArgs) model.Value {
		return model.SimpleString(format(args.string(0)))
	})
	return formattedValue{dualValue: dualValue{method: m, s: s}, format: format}
}

// Get returns the value formatted with the format key.
func (v formattedValue) Get(key string) (model.Value, error) {
	return v.env.evalSafely(func() model.Value {
		return model.SimpleString(v.format(key))
	})
}
