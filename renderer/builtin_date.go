// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package renderer

import (
	"fmt"
	"time"

	"github.com/open2b/ftl/ast"
	"github.com/open2b/ftl/format"
	"github.com/open2b/ftl/model"
)

// dateBuiltIns are the built-ins of the date-like values.
var dateBuiltIns = map[string]builtInFunc{
	"date":                dateTypeFunc(model.DateOnly),
	"time":                dateTypeFunc(model.TimeOnly),
	"datetime":            dateTypeFunc(model.DateTime),
	"date_if_unknown":     dateIfUnknownFunc(model.DateOnly),
	"time_if_unknown":     dateIfUnknownFunc(model.TimeOnly),
	"datetime_if_unknown": dateIfUnknownFunc(model.DateTime),
	"iso":                 isoFunc(false),
	"iso_utc":             isoFunc(true),
	"xs":                  builtInXS,
}

// targetDate evaluates the target of n as a date-like value.
func (env *Environment) targetDate(n *ast.BuiltIn) model.Date {
	v := env.evalValue(n.Target)
	d, ok := v.(model.Date)
	if !ok {
		panic(env.newUnexpectedTypeError(n.Target, v, "date/time/date-time"))
	}
	return d
}

// dateTypeFunc returns the ?date, ?time or ?datetime built-in. Applied to
// a date-like value, it tells its type. Applied to a string, it parses it,
// detecting the format or, if called, with the pattern passed as argument.
func dateTypeFunc(typ model.DateType) builtInFunc {
	return func(env *Environment, n *ast.BuiltIn) model.Value {
		switch v := env.evalValue(n.Target).(type) {
		case model.Date:
			from := v.DateType()
			if from == typ {
				return v
			}
			if from == model.DateOnly && typ != model.DateOnly || from == model.TimeOnly && typ != model.TimeOnly {
				panic(env.newError(n, "Can't convert a ", from.String(), " to a ", typ.String(), "."))
			}
			return model.SimpleDate{Time: env.asTime(n.Target, v), Type: typ}
		case model.String:
			s := env.toString(n.Target, v)
			p := &dateParser{env: env, expr: n.Target, s: s, typ: typ}
			p.method = env.newMethod(n, 1, 1, func(args methodArgs) model.Value {
				t, err := p.parse(args.string(0))
				if err != nil {
					args.fail(0, "%s", err)
				}
				return model.SimpleDate{Time: t, Type: typ}
			})
			return p
		case nil:
			panic(env.newInvalidReferenceError(n.Target))
		default:
			panic(env.newUnexpectedTypeError(n.Target, v, "date/time/date-time or string"))
		}
	}
}

// dateParser is the value of ?date, ?time and ?datetime applied to a
// string. It is a date-like value, parsed when read, and a method that
// parses the string with a pattern.
type dateParser struct {
	*method
	env  *Environment
	expr ast.Expression
	s    string
	typ  model.DateType
	t    time.Time
	err  error
	done bool
}

// AsDate parses the string detecting its format.
func (p *dateParser) AsDate() (time.Time, error) {
	if !p.done {
		p.t, p.err = p.parse("")
		p.done = true
	}
	return p.t, p.err
}

// DateType returns the type of the date.
func (p *dateParser) DateType() model.DateType { return p.typ }

// parse parses the string with the given pattern.
func (p *dateParser) parse(pattern string) (time.Time, error) {
	t, err := format.ParseDate(p.s, pattern, p.env.locale, p.env.location)
	if err != nil {
		if pattern == "" {
			return time.Time{}, fmt.Errorf("the string %s can't be parsed as a %s: %w", ast.Quote(p.s), p.typ, err)
		}
		return time.Time{}, fmt.Errorf("the string %s doesn't match the %s pattern %s: %w", ast.Quote(p.s), p.typ, ast.Quote(pattern), err)
	}
	return t, nil
}

// dateIfUnknownFunc returns the ?date_if_unknown, ?time_if_unknown or
// ?datetime_if_unknown built-in, that sets the type of a date-like value
// only if it is unknown.
func dateIfUnknownFunc(typ model.DateType) builtInFunc {
	return func(env *Environment, n *ast.BuiltIn) model.Value {
		d := env.targetDate(n)
		if d.DateType() != model.UnknownDateType {
			return d
		}
		return model.SimpleDate{Time: env.asTime(n.Target, d), Type: typ}
	}
}

// isoFunc returns the ?iso or the ?iso_utc built-in.
func isoFunc(utc bool) builtInFunc {
	return func(env *Environment, n *ast.BuiltIn) model.Value {
		d := env.targetDate(n)
		t := env.asTime(n.Target, d)
		if !utc {
			t = t.In(env.location)
		}
		s, err := format.ISO(t, d.DateType(), utc)
		if err != nil {
			panic(env.newError(n.Target, "Can't format the date-like value with ?", n.Name, ": ", err.Error()).withCause(err).tip(
				"Use ?date, ?time, or ?datetime to tell the exact type."))
		}
		return model.SimpleString(s)
	}
}

// builtInXS implements ?xs, that formats a date-like value in the XML
// Schema format.
func builtInXS(env *Environment, n *ast.BuiltIn) model.Value {
	d := env.targetDate(n)
	s, err := format.XS(env.asTime(n.Target, d).In(env.location), d.DateType())
	if err != nil {
		panic(env.newError(n.Target, "Can't format the date-like value with ?", n.Name, ": ", err.Error()).withCause(err).tip(
			"Use ?date, ?time, or ?datetime to tell the exact type."))
	}
	return model.SimpleString(s)
}
