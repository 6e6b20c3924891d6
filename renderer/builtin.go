// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package renderer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/open2b/ftl/ast"
	"github.com/open2b/ftl/model"
)

// builtInFunc evaluates a built-in. It evaluates the target itself and, in
// the event of an error, calls panic with an *Error as parameter.
type builtInFunc func(env *Environment, n *ast.BuiltIn) model.Value

// builtInOp is the operation of a built-in. It implements ast.BuiltInOp.
type builtInOp struct {
	name string
	fn   builtInFunc
}

// BuiltInName returns the name of the built-in.
func (op *builtInOp) BuiltInName() string { return op.name }

// builtIns maps the names of the built-ins, in snake_case and in
// camelCase, to their operations. It is not changed after the package
// initialization.
var builtIns map[string]*builtInOp

func init() {
	defs := []map[string]builtInFunc{
		stringBuiltIns,
		numberBuiltIns,
		sequenceBuiltIns,
		dateBuiltIns,
		loopBuiltIns,
		miscBuiltIns,
	}
	builtIns = map[string]*builtInOp{}
	for _, def := range defs {
		for name, fn := range def {
			if _, ok := builtIns[name]; ok {
				panic("renderer: built-in " + name + " is defined twice")
			}
			builtIns[name] = &builtInOp{name: name, fn: fn}
			if camel := camelCase(name); camel != name {
				builtIns[camel] = &builtInOp{name: camel, fn: fn}
			}
		}
	}
}

// camelCase converts a snake_case name to camelCase.
func camelCase(name string) string {
	if !strings.Contains(name, "_") {
		return name
	}
	var b strings.Builder
	upper := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '_' {
			upper = true
			continue
		}
		if upper && 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		b.WriteByte(c)
	}
	return b.String()
}

// snakeCase converts a camelCase name to snake_case.
func snakeCase(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if 'A' <= c && c <= 'Z' {
			b.WriteByte('_')
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

// NewBuiltIn returns a BuiltIn node applying the built-in with the given
// name to target. It returns a *ParseError if there is no built-in with
// this name.
func NewBuiltIn(pos *ast.Position, target ast.Expression, name string) (*ast.BuiltIn, error) {
	op, ok := builtIns[name]
	if !ok {
		err := &ParseError{Err: unknownBuiltInError(name)}
		if pos != nil {
			err.Pos = *pos
		}
		if target != nil && target.Template() != nil {
			err.Path = target.Template().Name
		}
		return nil, err
	}
	return ast.NewBuiltIn(pos, target, name, op), nil
}

// unknownBuiltInError returns the error for an unknown built-in name.
func unknownBuiltInError(name string) error {
	var b strings.Builder
	b.WriteString("Unknown built-in: ")
	b.WriteString(ast.Quote(name))
	b.WriteString(".")
	corrected := ""
	if strings.Contains(name, "_") {
		if _, ok := builtIns[camelCase(name)]; ok {
			corrected = camelCase(name)
		}
	} else if snake := snakeCase(name); snake != name {
		if _, ok := builtIns[snake]; ok {
			corrected = snake
		}
	}
	switch {
	case corrected != "":
		b.WriteString("\nThe correct name is: ")
		b.WriteString(corrected)
	case name == "exists":
		b.WriteString("\nUse someExpression?? instead of someExpression?exists.")
	case name == "if_exists" || name == "ifExists":
		b.WriteString("\nUse someExpression! instead of someExpression?")
		b.WriteString(name)
		b.WriteString(".")
	case name == "default":
		b.WriteString("\nUse someExpression!defaultExpression instead of someExpression?default(defaultExpression), ")
		b.WriteString("or someExpression!(defaultExpression) if defaultExpression contains operators that have lower ")
		b.WriteString("precedence than the default value operator (!). Also note that instead of x?default(y, z), ")
		b.WriteString("you can write x!y!z.")
	default:
		var snake, camel []string
		for n := range builtIns {
			if strings.Contains(n, "_") {
				snake = append(snake, n)
			} else if strings.ToLower(n) != n {
				camel = append(camel, n)
			} else {
				snake = append(snake, n)
				camel = append(camel, n)
			}
		}
		sort.Strings(snake)
		sort.Strings(camel)
		b.WriteString("\nThe alphabetical list of built-ins with snake_case names:")
		writeNames(&b, snake)
		b.WriteString("\nThe alphabetical list of built-ins with camelCase names:")
		writeNames(&b, camel)
	}
	return errors.New(b.String())
}

// writeNames writes names separated by commas, starting a new line when
// the initial letter changes.
func writeNames(b *strings.Builder, names []string) {
	var last byte
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		if name[0] != last {
			last = name[0]
			b.WriteByte('\n')
		}
		b.WriteString(name)
	}
}

// evalBuiltIn evaluates a built-in. If the operation has not been resolved
// when the tree was built, it is looked up by name.
func (env *Environment) evalBuiltIn(n *ast.BuiltIn) model.Value {
	var op *builtInOp
	switch o := n.Op.(type) {
	case *builtInOp:
		op = o
	case nil:
		var ok bool
		op, ok = builtIns[n.Name]
		if !ok {
			panic(env.newError(n, unknownBuiltInError(n.Name).Error()))
		}
	default:
		panic(env.newError(n, "Unsupported operation for the built-in ", quoted{n.Name}, ": ", fmt.Sprintf("%T", n.Op)))
	}
	return op.fn(env, n)
}

// method is the value returned by the built-ins that take arguments, as
// s?replace. It is called with the arguments of a FunctionCall.
type method struct {
	env  *Environment
	name string
	min  int // minimum number of arguments
	max  int // maximum number of arguments; -1 if there is no maximum
	fn   func(args methodArgs) model.Value
}

// methodValue is implemented by the values that embed a method.
type methodValue interface {
	builtInMethod() *method
}

func (m *method) builtInMethod() *method { return m }

// newMethod returns a new method of the built-in n.
func (env *Environment) newMethod(n *ast.BuiltIn, min, max int, fn func(args methodArgs) model.Value) *method {
	return &method{env: env, name: n.Name, min: min, max: max, fn: fn}
}

// ArgumentLayout returns the argument layout of the method. All the
// arguments are passed by position.
func (m *method) ArgumentLayout() *model.ArgumentLayout {
	return &model.ArgumentLayout{PositionalVarargs: true}
}

// Call calls the method.
func (m *method) Call(args []model.Value, _ model.CallPlace) (v model.Value, err error) {
	var values model.SimpleSequence
	if len(args) > 0 {
		values, _ = args[0].(model.SimpleSequence)
	}
	v, err = m.env.evalSafely(func() model.Value {
		return m.call(nil, values)
	})
	return v, err
}

// callMethod calls the method m with the arguments of n.
func (env *Environment) callMethod(n *ast.FunctionCall, m *method) model.Value {
	if len(n.Named) > 0 {
		panic(env.newError(n, "?", m.name, "(...) can't have arguments passed by name."))
	}
	args := make([]model.Value, len(n.Args))
	for i, arg := range n.Args {
		args[i] = env.evalValue(arg)
	}
	return m.call(n, args)
}

// call checks the number of the arguments and calls the method. An
// argument error raised by fn is reported blaming the node n.
func (m *method) call(n ast.Node, args []model.Value) (v model.Value) {
	if len(args) < m.min || m.max >= 0 && len(args) > m.max {
		panic(m.env.newError(n, m.arityMessage(len(args))))
	}
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(argumentError); ok {
				panic(m.env.newError(n, e.Error()).withCause(e.err))
			}
			panic(r)
		}
	}()
	return m.fn(methodArgs{name: m.name, values: args, env: m.env})
}

// arityMessage returns the message of the error for a call with count
// arguments.
func (m *method) arityMessage(count int) string {
	var expects string
	switch {
	case m.max < 0:
		expects = "at least " + pluralArguments(m.min)
	case m.min == m.max:
		expects = pluralArguments(m.min)
	default:
		expects = fmt.Sprintf("%d to %d arguments", m.min, m.max)
	}
	return fmt.Sprintf("?%s(...) expects %s, but has received %s.", m.name, expects, pluralArguments(count))
}

func pluralArguments(n int) string {
	switch n {
	case 0:
		return "no arguments"
	case 1:
		return "1 argument"
	}
	return fmt.Sprintf("%d arguments", n)
}

// argumentError is an error with an argument of a method.
type argumentError struct{ err error }

func (e argumentError) Error() string { return e.err.Error() }

// methodArgs are the arguments of a method call.
type methodArgs struct {
	name   string
	values []model.Value
	env    *Environment
}

// len returns the number of the arguments.
func (a methodArgs) len() int { return len(a.values) }

// fail panics with an argument error for the argument i.
func (a methodArgs) fail(i int, format string, args ...interface{}) {
	panic(argumentError{newArgumentError(a.name, i, format, args...)})
}

// string returns the argument i, that must be a string.
func (a methodArgs) string(i int) string {
	v, ok := a.values[i].(model.String)
	if !ok {
		a.fail(i, "must be a string, but it was %s.", model.TypeName(a.values[i]))
	}
	s, err := v.AsString()
	if err != nil {
		a.fail(i, "can't be read: %s", err)
	}
	return s
}

// optString returns the argument i, if present, or def.
func (a methodArgs) optString(i int, def string) string {
	if i >= len(a.values) {
		return def
	}
	return a.string(i)
}

// num returns the argument i, that must be a number.
func (a methodArgs) num(i int) model.Num {
	v, ok := a.values[i].(model.Number)
	if !ok {
		a.fail(i, "must be a number, but it was %s.", model.TypeName(a.values[i]))
	}
	n, err := v.AsNumber()
	if err != nil {
		a.fail(i, "can't be read: %s", err)
	}
	return n
}

// int returns the argument i, that must be an integer number.
func (a methodArgs) int(i int) int {
	n := a.num(i)
	v, ok := n.Int()
	if !ok {
		a.fail(i, "must be an integer, but it was %s.", n)
	}
	return v
}

// value returns the argument i.
func (a methodArgs) value(i int) model.Value { return a.values[i] }

// stringFlags are the flags of the string built-ins that accept them, as
// s?replace(a, b, "ri").
type stringFlags struct {
	caseInsensitive bool // i
	regexp          bool // r
	first           bool // f
	multiline       bool // m
	dotAll          bool // s
}

// flags returns the flags of the argument i, if present.
func (a methodArgs) flags(i int) stringFlags {
	var f stringFlags
	for _, c := range a.optString(i, "") {
		switch c {
		case 'i':
			f.caseInsensitive = true
		case 'r':
			f.regexp = true
		case 'f':
			f.first = true
		case 'm':
			f.multiline = true
		case 's':
			f.dotAll = true
		case 'c':
		default:
			a.fail(i, "contains the unsupported flag %q.", c)
		}
	}
	return f
}

// miscBuiltIns are the built-ins that do not depend on a single type.
var miscBuiltIns = map[string]builtInFunc{
	"has_content":          builtInHasContent,
	"then":                 builtInThen,
	"no_esc":               builtInNoEsc,
	"esc":                  builtInEsc,
	"is_string":            isType(func(v model.Value) bool { _, ok := v.(model.String); return ok }),
	"is_number":            isType(func(v model.Value) bool { _, ok := v.(model.Number); return ok }),
	"is_boolean":           isType(func(v model.Value) bool { _, ok := v.(model.Boolean); return ok }),
	"is_date_like":         isType(func(v model.Value) bool { _, ok := v.(model.Date); return ok }),
	"is_date_only":         isDateType(model.DateOnly),
	"is_time":              isDateType(model.TimeOnly),
	"is_datetime":          isDateType(model.DateTime),
	"is_unknown_date_like": isDateType(model.UnknownDateType),
	"is_sequence":          isType(func(v model.Value) bool { _, ok := v.(model.Sequence); return ok }),
	"is_collection":        isType(func(v model.Value) bool { _, ok := v.(model.Collection); return ok }),
	"is_enumerable":        isType(isIterable),
	"is_iterable":          isType(isIterable),
	"is_indexable":         isType(func(v model.Value) bool { _, ok := v.(model.Sequence); return ok }),
	"is_hash":              isType(func(v model.Value) bool { _, ok := v.(model.Hash); return ok }),
	"is_hash_ex":           isType(func(v model.Value) bool { _, ok := v.(model.HashEx); return ok }),
	"is_directive":         isType(func(v model.Value) bool { _, ok := v.(model.Directive); return ok }),
	"is_macro":             isType(func(v model.Value) bool { _, ok := v.(*Macro); return ok }),
	"is_function":          isType(func(v model.Value) bool { _, ok := v.(*Function); return ok }),
	"is_method":            isType(func(v model.Value) bool { _, ok := v.(methodValue); return ok }),
	"is_markup_output":     isType(func(v model.Value) bool { _, ok := v.(model.Markup); return ok }),
}

func isIterable(v model.Value) bool {
	switch v.(type) {
	case model.Sequence, model.Iterable:
		return true
	}
	return false
}

// isType returns a built-in that reports whether the target satisfies is.
func isType(is func(v model.Value) bool) builtInFunc {
	return func(env *Environment, n *ast.BuiltIn) model.Value {
		return model.Bool(is(env.evalValue(n.Target)))
	}
}

// isDateType returns a built-in that reports whether the target is a
// date-like value of type typ.
func isDateType(typ model.DateType) builtInFunc {
	return isType(func(v model.Value) bool {
		d, ok := v.(model.Date)
		return ok && d.DateType() == typ
	})
}

// builtInHasContent implements ?has_content. It is false for the missing
// values and the empty strings, sequences, collections and hashes.
func builtInHasContent(env *Environment, n *ast.BuiltIn) model.Value {
	v := env.evalOptional(n.Target)
	if v == nil {
		return model.False
	}
	return model.Bool(!env.isEmpty(n.Target, v))
}

// isEmpty reports whether v is empty.
func (env *Environment) isEmpty(expr ast.Expression, v model.Value) bool {
	var size int
	var err error
	switch v := v.(type) {
	case model.String:
		var s string
		s, err = v.AsString()
		size = len(s)
	case model.Sequence:
		size, err = v.Len()
	case model.Collection:
		size, err = v.Len()
	case model.HashEx:
		size, err = v.Len()
	case model.Markup:
		size = len(v.MarkupString())
	case model.Iterable:
		var it model.Iterator
		if it, err = v.Iterator(); err == nil {
			var has bool
			has, err = it.HasNext()
			if has {
				size = 1
			}
		}
	default:
		return false
	}
	if err != nil {
		panic(env.newError(expr, "Failed to check if the value is empty: ", err.Error()).withCause(err))
	}
	return size == 0
}

// builtInThen implements ?then(whenTrue, whenFalse).
func builtInThen(env *Environment, n *ast.BuiltIn) model.Value {
	b := env.targetBool(n)
	return env.newMethod(n, 2, 2, func(args methodArgs) model.Value {
		if b {
			return args.value(0)
		}
		return args.value(1)
	})
}

// builtInNoEsc implements ?no_esc, that marks a string as already escaped
// for the current output format.
func builtInNoEsc(env *Environment, n *ast.BuiltIn) model.Value {
	v := env.evalValue(n.Target)
	if m, ok := v.(model.Markup); ok {
		return m
	}
	if env.format.escape == nil {
		panic(env.newError(n, "?", n.Name, " can't be used here, as the current output format, ", quoted{env.format.name},
			", doesn't support escaping."))
	}
	return model.SimpleMarkup{Format: env.format.name, Text: env.toString(n.Target, v)}
}

// builtInEsc implements ?esc, that escapes a string for the current output
// format.
func builtInEsc(env *Environment, n *ast.BuiltIn) model.Value {
	v := env.evalValue(n.Target)
	if m, ok := v.(model.Markup); ok {
		return m
	}
	if env.format.escape == nil {
		panic(env.newError(n, "?", n.Name, " can't be used here, as the current output format, ", quoted{env.format.name},
			", doesn't support escaping."))
	}
	return model.SimpleMarkup{Format: env.format.name, Text: env.format.escape(env.toString(n.Target, v))}
}

// targetString evaluates the target of n as a string.
func (env *Environment) targetString(n *ast.BuiltIn) string {
	return env.toString(n.Target, env.evalValue(n.Target))
}

// targetNumber evaluates the target of n as a number.
func (env *Environment) targetNumber(n *ast.BuiltIn) model.Num {
	return env.toNumber(n.Target, env.evalValue(n.Target))
}

// targetBool evaluates the target of n as a boolean.
func (env *Environment) targetBool(n *ast.BuiltIn) bool {
	return env.evalBool(n.Target)
}

// dualValue is a value that is both a string and a function, as the value
// of n?string, that can be printed or called with a format.
type dualValue struct {
	*method
	s string
}

// AsString returns the string value.
func (v dualValue) AsString() (string, error) { return v.s, nil }
