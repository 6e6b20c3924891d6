// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package renderer

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/open2b/ftl/ast"
	"github.com/open2b/ftl/format"
	"github.com/open2b/ftl/model"
)

// eval evaluates an expression by returning its value. The value is nil
// if the expression refers to a missing value.
func (env *Environment) eval(expr ast.Expression) (value model.Value, err error) {
	return env.evalSafely(func() model.Value {
		return env.evalExpression(expr)
	})
}

// evalSafely calls f, returning as an error the *Error with which f
// panics.
func (env *Environment) evalSafely(f func() model.Value) (value model.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*Error); ok {
				err = e
			} else {
				panic(r)
			}
		}
	}()
	return f(), nil
}

// evalValue evaluates an expression and returns its value. If the value is
// missing, it panics with an invalid reference error.
func (env *Environment) evalValue(expr ast.Expression) model.Value {
	v := env.evalExpression(expr)
	if v == nil {
		panic(env.newInvalidReferenceError(expr))
	}
	return v
}

// evalExpression evaluates an expression and returns its value.
// In the event of an error, calls panic with an *Error as parameter.
func (env *Environment) evalExpression(expr ast.Expression) model.Value {
	switch e := expr.(type) {
	case *ast.Identifier:
		return env.lookup(e.Name)
	case *ast.StringLiteral:
		if e.Parts == nil {
			return model.SimpleString(e.Value)
		}
		return env.evalInterpolatedString(e)
	case *ast.NumberLiteral:
		return e.Value
	case *ast.BooleanLiteral:
		return model.Bool(e.Value)
	case *ast.ListLiteral:
		items := make(model.SimpleSequence, len(e.Items))
		for i, item := range e.Items {
			items[i] = env.evalValue(item)
		}
		return items
	case *ast.HashLiteral:
		h := &model.SimpleHash{}
		for i, key := range e.Keys {
			h.Put(env.toString(key, env.evalValue(key)), env.evalValue(e.Values[i]))
		}
		return h
	case *ast.Range:
		return env.evalRange(e)
	case *ast.AddOrConcat:
		return env.addOrConcat(e.Left, e.Right, env.evalValue(e.Left), env.evalValue(e.Right))
	case *ast.Arithmetic:
		a := env.toNumber(e.Left, env.evalValue(e.Left))
		b := env.toNumber(e.Right, env.evalValue(e.Right))
		return env.arithmetic(e, e.Op, a, b)
	case *ast.Comparison:
		left, right := env.evalValue(e.Left), env.evalValue(e.Right)
		return model.Bool(env.compare(e, e.Op, e.Left, e.Right, left, right))
	case *ast.And:
		return model.Bool(env.evalBool(e.Left) && env.evalBool(e.Right))
	case *ast.Or:
		return model.Bool(env.evalBool(e.Left) || env.evalBool(e.Right))
	case *ast.Not:
		return model.Bool(!env.evalBool(e.Operand))
	case *ast.Negate:
		return env.toNumber(e.Operand, env.evalValue(e.Operand)).Neg()
	case *ast.Dot:
		return env.evalDot(e)
	case *ast.DynamicKeyName:
		return env.evalDynamicKeyName(e)
	case *ast.BuiltIn:
		return env.evalBuiltIn(e)
	case *ast.FunctionCall:
		return env.evalFunctionCall(e)
	case *ast.DefaultTo:
		if v := env.evalOptional(e.Left); v != nil {
			return v
		}
		if e.Right == nil {
			return emptyDefault{}
		}
		return env.evalExpression(e.Right)
	case *ast.Exists:
		return model.Bool(env.evalOptional(e.Operand) != nil)
	case *ast.Parenthesis:
		return env.evalExpression(e.Expr)
	case *ast.BuiltInVariable:
		return env.evalBuiltInVariable(e)
	}
	panic(env.newError(expr, "Unexpected expression type ", quoted{expr.Label()}, "."))
}

// evalOptional evaluates an expression that can be missing, as the operand
// of ?? and !. Only the last step of the expression can be missing, unless
// the expression is enclosed in parenthesis.
func (env *Environment) evalOptional(expr ast.Expression) model.Value {
	p, ok := expr.(*ast.Parenthesis)
	if !ok {
		return env.evalExpression(expr)
	}
	v, err := env.eval(p.Expr)
	if err != nil {
		var e *Error
		if errors.As(err, &e) && e.missing {
			return nil
		}
		panic(err)
	}
	return v
}

// evalCondition evaluates a condition.
func (env *Environment) evalCondition(expr ast.Expression) (b bool, err error) {
	_, err = env.evalSafely(func() model.Value {
		b = env.evalBool(expr)
		return nil
	})
	return b, err
}

// evalBool evaluates an expression that must be a boolean.
func (env *Environment) evalBool(expr ast.Expression) bool {
	v := env.evalValue(expr)
	b, ok := v.(model.Boolean)
	if !ok {
		panic(env.newUnexpectedTypeError(expr, v, "boolean"))
	}
	return env.asBool(expr, b)
}

// asBool returns the boolean value of b, panicking if it fails.
func (env *Environment) asBool(expr ast.Expression, b model.Boolean) bool {
	v, err := b.AsBoolean()
	if err != nil {
		panic(env.newError(expr, "Failed to get the boolean value: ", err.Error()).withCause(err))
	}
	return v
}

// evalString converts the value v of the expression expr to a string, the
// way it is interpolated.
func (env *Environment) evalString(expr ast.Expression, v model.Value) (s string, err error) {
	if v == nil {
		return "", env.newInvalidReferenceError(expr)
	}
	_, err = env.evalSafely(func() model.Value {
		str, m, ok := env.stringOrMarkup(expr, v)
		if !ok {
			panic(env.newNotStringError(expr, v))
		}
		if m != nil {
			str = m.MarkupString()
		}
		s = str
		return nil
	})
	return s, err
}

// toString converts v to a string, the way it is interpolated but without
// the markup values.
func (env *Environment) toString(expr ast.Expression, v model.Value) string {
	s, m, ok := env.stringOrMarkup(expr, v)
	if !ok || m != nil {
		panic(env.newNotStringError(expr, v))
	}
	return s
}

// toNumber returns the number value of v.
func (env *Environment) toNumber(expr ast.Expression, v model.Value) model.Num {
	n, ok := v.(model.Number)
	if !ok {
		if v == nil && expr != nil {
			panic(env.newInvalidReferenceError(expr))
		}
		panic(env.newUnexpectedTypeError(expr, v, "number"))
	}
	return env.asNum(expr, n)
}

// toInt returns the value of v as an int. The fractional part of a number
// is truncated.
func (env *Environment) toInt(expr ast.Expression, v model.Value) int {
	n := env.toNumber(expr, v)
	i, ok := n.Truncate().Int()
	if !ok {
		panic(env.newError(expr, "The value is not a valid integer: ", n.String(), "."))
	}
	return i
}

// arithmetic returns the result of the arithmetic operation a op b.
func (env *Environment) arithmetic(blamed ast.Expression, op ast.OperatorType, a, b model.Num) model.Num {
	var r model.Num
	var err error
	switch op {
	case ast.OperatorAddition:
		return a.Add(b)
	case ast.OperatorSubtraction:
		return a.Sub(b)
	case ast.OperatorMultiplication:
		return a.Mul(b)
	case ast.OperatorDivision:
		r, err = a.Div(b)
	case ast.OperatorModulo:
		r, err = a.Mod(b)
	default:
		panic(env.newError(blamed, "Unknown arithmetic operator ", quoted{op.String()}, "."))
	}
	if err != nil {
		panic(env.newError(blamed, "Arithmetic operation failed: ", err.Error(), ".").withCause(err))
	}
	return r
}

// addOrConcat returns left + right. Two numbers are added, two sequences
// are concatenated, values that can be converted to strings are
// concatenated as strings and two hashes are merged.
func (env *Environment) addOrConcat(leftExpr, rightExpr ast.Expression, left, right model.Value) model.Value {
	if l, ok := left.(model.Number); ok {
		if r, ok := right.(model.Number); ok {
			return env.asNum(leftExpr, l).Add(env.asNum(rightExpr, r))
		}
	}
	if l, ok := left.(model.Sequence); ok {
		if r, ok := right.(model.Sequence); ok {
			return model.Concat(l, r)
		}
	}
	lh, lIsHash := left.(model.Hash)
	rh, rIsHash := right.(model.Hash)
	const expected = "string or something automatically convertible to string (number, date or boolean), or sequence, or hash"
	ls, lm, ok := env.stringOrMarkup(leftExpr, left)
	if !ok {
		if lIsHash && rIsHash {
			return model.ConcatHash(lh, rh)
		}
		panic(env.newUnexpectedTypeError(leftExpr, left, expected))
	}
	rs, rm, ok := env.stringOrMarkup(rightExpr, right)
	if !ok {
		if lIsHash && rIsHash {
			return model.ConcatHash(lh, rh)
		}
		panic(env.newUnexpectedTypeError(rightExpr, right, expected))
	}
	if lm != nil || rm != nil {
		return env.concatMarkup(rightExpr, ls, lm, rs, rm)
	}
	return model.SimpleString(ls + rs)
}

// compare compares the values left and right with the operator op.
func (env *Environment) compare(blamed ast.Expression, op ast.OperatorType, leftExpr, rightExpr ast.Expression, left, right model.Value) bool {
	var c int
	switch l := left.(type) {
	case model.Number:
		r, ok := right.(model.Number)
		if !ok {
			break
		}
		cmp, ok := env.asNum(leftExpr, l).Cmp(env.asNum(rightExpr, r))
		if !ok {
			return op == ast.OperatorNotEqual
		}
		return compareResult(op, cmp)
	case model.String:
		r, ok := right.(model.String)
		if !ok {
			break
		}
		a, b := env.toString(leftExpr, l), env.toString(rightExpr, r)
		if op == ast.OperatorEqual || op == ast.OperatorNotEqual {
			if a != b {
				c = 1
			}
		} else {
			c = env.collate(a, b)
		}
		return compareResult(op, c)
	case model.Date:
		r, ok := right.(model.Date)
		if !ok {
			break
		}
		lt, rt := l.DateType(), r.DateType()
		if lt == model.UnknownDateType || rt == model.UnknownDateType {
			side, expr := "left", leftExpr
			if lt != model.UnknownDateType {
				side, expr = "right", rightExpr
			}
			panic(env.newError(expr, "The ", side, " hand operand of the comparison is a date-like value where it's not known if ",
				"it's a date (no time part), time, or date-time, and thus can't be used in a comparison.").tip(
				"Use ?date, ?time, or ?datetime to tell the exact type."))
		}
		if lt != rt {
			panic(env.newError(blamed, "Can't compare dates of different types. Left date type is ", lt.String(),
				", right date type is ", rt.String(), "."))
		}
		return compareResult(op, env.asTime(leftExpr, l).Compare(env.asTime(rightExpr, r)))
	case model.Boolean:
		r, ok := right.(model.Boolean)
		if !ok {
			break
		}
		if op != ast.OperatorEqual && op != ast.OperatorNotEqual {
			panic(env.newError(blamed, "Can't use operator ", quoted{op.String()}, " on boolean values."))
		}
		if env.asBool(leftExpr, l) != env.asBool(rightExpr, r) {
			c = 1
		}
		return compareResult(op, c)
	}
	panic(env.newError(blamed, "Can't compare values of these types. Allowed comparisons are between two numbers, ",
		"two strings, two dates, or two booleans.\nLeft hand operand is ", typeName{left},
		".\nRight hand operand is ", typeName{right}, "."))
}

// compareResult returns the result of a comparison with the operator op,
// where c is the result of the comparison of the two operands.
func compareResult(op ast.OperatorType, c int) bool {
	switch op {
	case ast.OperatorEqual:
		return c == 0
	case ast.OperatorNotEqual:
		return c != 0
	case ast.OperatorLess:
		return c < 0
	case ast.OperatorLessEqual:
		return c <= 0
	case ast.OperatorGreater:
		return c > 0
	case ast.OperatorGreaterEqual:
		return c >= 0
	}
	return false
}

// equal reports whether a and b are equal, as with the == operator. ok is
// false if a and b can not be compared.
func (env *Environment) equal(a, b model.Value) (eq, ok bool) {
	_, err := env.evalSafely(func() model.Value {
		eq = env.compare(nil, ast.OperatorEqual, nil, nil, a, b)
		return nil
	})
	return eq, err == nil
}

// collate compares two strings according to the locale.
func (env *Environment) collate(a, b string) int {
	if env.collator == nil {
		env.collator = format.NewCollator(env.locale)
	}
	return env.collator.Compare(a, b)
}

// asTime returns the time of d, panicking if it fails.
func (env *Environment) asTime(expr ast.Expression, d model.Date) time.Time {
	t, err := d.AsDate()
	if err != nil {
		panic(env.newError(expr, "Failed to get the date value: ", err.Error()).withCause(err))
	}
	return t
}

// evalInterpolatedString evaluates a string literal with interpolations.
func (env *Environment) evalInterpolatedString(n *ast.StringLiteral) model.Value {
	var b strings.Builder
	var m model.Markup
	for _, part := range n.Parts {
		if s, ok := part.(*ast.StringLiteral); ok && s.Parts == nil {
			if m != nil {
				m = env.concatMarkup(part, "", m, s.Value, nil)
			} else {
				b.WriteString(s.Value)
			}
			continue
		}
		v := env.evalValue(part)
		s, pm, ok := env.stringOrMarkup(part, v)
		if !ok {
			panic(env.newNotStringError(part, v))
		}
		if m == nil && pm == nil {
			b.WriteString(s)
			continue
		}
		if m == nil {
			m = env.concatMarkup(part, b.String(), nil, "", pm)
			continue
		}
		m = env.concatMarkup(part, "", m, s, pm)
	}
	if m != nil {
		return m
	}
	return model.SimpleString(b.String())
}

// evalDot evaluates the access to a sub-variable with a.b.
func (env *Environment) evalDot(n *ast.Dot) model.Value {
	target := env.evalValue(n.Target)
	h, ok := target.(model.Hash)
	if !ok {
		panic(env.newUnexpectedTypeError(n.Target, target, "hash"))
	}
	v, err := h.Get(n.Name)
	if err != nil {
		panic(env.newError(n, "Failed to get the sub-variable ", quoted{n.Name}, ": ", err.Error()).withCause(err))
	}
	return v
}

// evalDynamicKeyName evaluates the access with a[key], where key can be a
// string, an index or a range for slicing.
func (env *Environment) evalDynamicKeyName(n *ast.DynamicKeyName) model.Value {
	target := env.evalValue(n.Target)
	key := env.evalValue(n.Key)
	switch k := key.(type) {
	case *rangeValue:
		return env.slice(n, target, k)
	case model.Number:
		index := env.toInt(n.Key, k)
		if seq, ok := target.(model.Sequence); ok {
			v, err := seq.Index(index)
			if err != nil {
				panic(env.newError(n, "Failed to get the item at index ", index, ": ", err.Error()).withCause(err))
			}
			return v
		}
		if s, ok := target.(model.String); ok {
			r := []rune(env.toString(n.Target, s))
			if index < 0 {
				panic(env.newError(n.Key, "Negative index not allowed: ", index))
			}
			if index >= len(r) {
				panic(env.newError(n.Key, "String index out of range: The index was ", index,
					" (0-based), but the length of the string is only ", len(r), "."))
			}
			return model.SimpleString(string(r[index]))
		}
		panic(env.newUnexpectedTypeError(n.Target, target, "sequence or string"))
	case model.String:
		h, ok := target.(model.Hash)
		if !ok {
			panic(env.newUnexpectedTypeError(n.Target, target, "hash"))
		}
		name := env.toString(n.Key, k)
		v, err := h.Get(name)
		if err != nil {
			panic(env.newError(n, "Failed to get the sub-variable ", quoted{name}, ": ", err.Error()).withCause(err))
		}
		return v
	}
	panic(env.newUnexpectedTypeError(n.Key, key, "number, range, or string"))
}

// evalFunctionCall evaluates a function call.
func (env *Environment) evalFunctionCall(n *ast.FunctionCall) model.Value {
	callee := env.evalValue(n.Function)
	if m, ok := callee.(methodValue); ok {
		return env.callMethod(n, m.builtInMethod())
	}
	f, ok := callee.(model.Function)
	if !ok {
		err := env.newUnexpectedTypeError(n.Function, callee, "function")
		if _, ok := callee.(model.Directive); ok {
			err.tip("Macros and other directives are called with <@myMacro ... />, not in expressions.")
		}
		panic(err)
	}
	args, err := env.bindArguments(n, callableDescription(callee), f.ArgumentLayout(), n.Args, n.Named)
	if err != nil {
		panic(err)
	}
	v, err := f.Call(args, env.newCallPlace(nil))
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			panic(e)
		}
		panic(env.newError(n, "The function call has failed: ", err.Error()).withCause(err))
	}
	return v
}

// builtInVariables are the names of the built-in variables.
var builtInVariables = []string{
	"current_template_name", "currentTemplateName", "data_model", "dataModel", "error", "globals",
	"lang", "locale", "main", "now", "output_format", "outputFormat", "template_name", "templateName",
	"time_zone", "timeZone", "vars",
}

// evalBuiltInVariable evaluates a built-in variable, as .now.
func (env *Environment) evalBuiltInVariable(n *ast.BuiltInVariable) model.Value {
	switch n.Name {
	case "now":
		return model.SimpleDate{Time: time.Now().In(env.location), Type: model.DateTime}
	case "locale":
		return model.SimpleString(format.LocaleString(env.locale))
	case "lang":
		base, _ := env.locale.Base()
		return model.SimpleString(base.String())
	case "output_format", "outputFormat":
		return model.SimpleString(env.format.name)
	case "time_zone", "timeZone":
		return model.SimpleString(env.location.String())
	case "error":
		if len(env.recovered) == 0 {
			panic(env.newError(n, "The \".error\" variable can only be used inside a #recover block."))
		}
		return model.SimpleString(env.recovered[len(env.recovered)-1].Description())
	case "vars":
		return varsHash{env}
	case "main":
		return env.main
	case "globals":
		return env.globals
	case "data_model", "dataModel":
		return env.root
	case "current_template_name", "currentTemplateName", "template_name", "templateName":
		t := env.template
		if len(env.stack) > 0 {
			if tt := env.stack[len(env.stack)-1].Template(); tt != nil {
				t = tt
			}
		}
		if t == nil {
			return model.SimpleString("")
		}
		return model.SimpleString(t.Name)
	}
	names := append([]string(nil), builtInVariables...)
	sort.Strings(names)
	panic(env.newError(n, "Unknown special variable name: ", quoted{n.Name}, ". The allowed special variable names are: ",
		strings.Join(names, ", "), "."))
}

// emptyDefault is the value of a!, when a is missing. It is an empty
// string, an empty sequence and an empty hash at the same time.
type emptyDefault struct{}

func (emptyDefault) AsString() (string, error) { return "", nil }
func (emptyDefault) Index(int) (model.Value, error) { return nil, nil }
func (emptyDefault) Len() (int, error) { return 0, nil }
func (emptyDefault) Get(string) (model.Value, error) { return nil, nil }
func (emptyDefault) Keys() (model.Collection, error) { return model.EmptySequence, nil }
func (emptyDefault) Values() (model.Collection, error) { return model.EmptySequence, nil }
func (emptyDefault) Pairs() (model.PairIterator, error) { return model.EmptyHash.Pairs() }
func (emptyDefault) Iterator() (model.Iterator, error) { return model.EmptySequence.Iterator() }
