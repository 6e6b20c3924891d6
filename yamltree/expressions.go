// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yamltree

import (
	"errors"
	"math"
	"strings"

	"github.com/open2b/ftl/ast"
	"github.com/open2b/ftl/model"
	"github.com/open2b/ftl/renderer"

	"gopkg.in/yaml.v3"
)

var comparisonOperators = map[string]ast.OperatorType{
	"eq": ast.OperatorEqual,
	"ne": ast.OperatorNotEqual,
	"lt": ast.OperatorLess,
	"le": ast.OperatorLessEqual,
	"gt": ast.OperatorGreater,
	"ge": ast.OperatorGreaterEqual,
}

var arithmeticOperators = map[string]ast.OperatorType{
	"sub": ast.OperatorSubtraction,
	"mul": ast.OperatorMultiplication,
	"div": ast.OperatorDivision,
	"mod": ast.OperatorModulo,
}

var rangeEnds = map[string]ast.RangeEnd{
	"inclusive": ast.RangeInclusive,
	"exclusive": ast.RangeExclusive,
	"length":    ast.RangeLength,
	"unbounded": ast.RangeUnbounded,
}

// expression returns the expression represented by n.
func expression(n *yaml.Node) ast.Expression {
	p := pos(n)
	switch n.Kind {
	case yaml.ScalarNode:
		return literal(n)
	case yaml.SequenceNode:
		return ast.NewListLiteral(p, expressions(n)...)
	case yaml.MappingNode:
	case yaml.AliasNode:
		return expression(n.Alias)
	default:
		fail(n, "expecting an expression")
	}
	m := newMapping(n)
	switch m.kind {
	case "range":
		return rangeExpression(n)
	case "call":
		return functionCall(n)
	}
	m.check(m.kind)
	v := m.get(m.kind)
	switch m.kind {
	case "ident":
		name := scalar(v)
		if name == "" {
			fail(v, "ident: empty name")
		}
		parts := strings.Split(name, ".")
		var expr ast.Expression = ast.NewIdentifier(p, parts[0])
		for _, part := range parts[1:] {
			if part == "" {
				fail(v, "ident: invalid name %q", name)
			}
			expr = ast.NewDot(p, expr, part)
		}
		return expr
	case "string":
		return ast.NewStringLiteral(p, scalar(v))
	case "number":
		return ast.NewNumberLiteral(p, number(v))
	case "hash":
		if v.Kind != yaml.MappingNode {
			fail(v, "hash: expecting a mapping")
		}
		keys := make([]ast.Expression, 0, len(v.Content)/2)
		values := make([]ast.Expression, 0, len(v.Content)/2)
		for i := 0; i+1 < len(v.Content); i += 2 {
			k := v.Content[i]
			keys = append(keys, ast.NewStringLiteral(pos(k), scalar(k)))
			values = append(values, expression(v.Content[i+1]))
		}
		return ast.NewHashLiteral(p, keys, values)
	case "dot":
		ops := operands(m, 2)
		return ast.NewDot(p, expression(ops[0]), scalar(ops[1]))
	case "index":
		ops := operands(m, 2)
		return ast.NewDynamicKeyName(p, expression(ops[0]), expression(ops[1]))
	case "add":
		ops := operands(m, 2)
		return ast.NewAddOrConcat(p, expression(ops[0]), expression(ops[1]))
	case "sub", "mul", "div", "mod":
		ops := operands(m, 2)
		return ast.NewArithmetic(p, arithmeticOperators[m.kind], expression(ops[0]), expression(ops[1]))
	case "eq", "ne", "lt", "le", "gt", "ge":
		ops := operands(m, 2)
		return ast.NewComparison(p, comparisonOperators[m.kind], expression(ops[0]), expression(ops[1]))
	case "and":
		ops := operands(m, 2)
		return ast.NewAnd(p, expression(ops[0]), expression(ops[1]))
	case "or":
		ops := operands(m, 2)
		return ast.NewOr(p, expression(ops[0]), expression(ops[1]))
	case "not":
		return ast.NewNot(p, expression(v))
	case "neg":
		return ast.NewNegate(p, expression(v))
	case "builtin":
		ops := operands(m, 2)
		expr, err := renderer.NewBuiltIn(p, expression(ops[0]), scalar(ops[1]))
		if err != nil {
			var e *renderer.ParseError
			if errors.As(err, &e) {
				err = e.Err
			}
			fail(ops[1], "%s", err)
		}
		return expr
	case "default":
		if v.Kind != yaml.SequenceNode || len(v.Content) < 1 || len(v.Content) > 2 {
			fail(v, "default: expecting one or two operands")
		}
		var right ast.Expression
		if len(v.Content) == 2 {
			right = expression(v.Content[1])
		}
		return ast.NewDefaultTo(p, expression(v.Content[0]), right)
	case "exists":
		return ast.NewExists(p, expression(v))
	case "paren":
		return ast.NewParenthesis(p, expression(v))
	case "var":
		return ast.NewBuiltInVariable(p, scalar(v))
	}
	fail(n, "unknown expression %q", m.kind)
	return nil
}

// optionalExpression returns the expression represented by n, or nil if n
// is nil or the null value.
func optionalExpression(n *yaml.Node) ast.Expression {
	if isNull(n) {
		return nil
	}
	return expression(n)
}

// expressions returns the expressions of the sequence node n.
func expressions(n *yaml.Node) []ast.Expression {
	if n.Kind != yaml.SequenceNode {
		fail(n, "expecting a sequence of expressions")
	}
	exprs := make([]ast.Expression, len(n.Content))
	for i, c := range n.Content {
		exprs[i] = expression(c)
	}
	return exprs
}

// namedArguments returns the named arguments of the mapping node n.
func namedArguments(n *yaml.Node) []ast.NamedArgument {
	if n.Kind != yaml.MappingNode {
		fail(n, "named: expecting a mapping")
	}
	named := make([]ast.NamedArgument, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		named = append(named, ast.NamedArgument{
			Name:  scalar(n.Content[i]),
			Value: expression(n.Content[i+1]),
		})
	}
	return named
}

// operands returns the operands of the expression m, that must be a
// sequence of count nodes.
func operands(m mapping, count int) []*yaml.Node {
	v := m.get(m.kind)
	if v.Kind != yaml.SequenceNode || len(v.Content) != count {
		fail(v, "%s: expecting %d operands", m.kind, count)
	}
	return v.Content
}

// literal returns the literal expression represented by the scalar node n.
func literal(n *yaml.Node) ast.Expression {
	p := pos(n)
	switch n.ShortTag() {
	case "!!str":
		return ast.NewStringLiteral(p, n.Value)
	case "!!int", "!!float":
		return ast.NewNumberLiteral(p, number(n))
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			fail(n, "invalid boolean: %s", err)
		}
		return ast.NewBooleanLiteral(p, b)
	case "!!null":
		fail(n, "null is not an expression")
	}
	fail(n, "unsupported scalar %s", n.ShortTag())
	return nil
}

// number returns the number represented by the scalar node n.
func number(n *yaml.Node) model.Num {
	s := scalar(n)
	if num, err := model.ParseNum(strings.ReplaceAll(s, "_", "")); err == nil {
		return num
	}
	switch strings.ToLower(s) {
	case ".inf", "+.inf":
		return model.FloatNum(math.Inf(1))
	case "-.inf":
		return model.FloatNum(math.Inf(-1))
	case ".nan":
		return model.FloatNum(math.NaN())
	}
	var i int64
	if err := n.Decode(&i); err == nil {
		return model.IntNum(i)
	}
	fail(n, "invalid number %q", s)
	return model.Num{}
}

// rangeExpression returns the range represented by n.
//
//	range: [1, 5]
//	end: exclusive
func rangeExpression(n *yaml.Node) ast.Expression {
	m := newMapping(n)
	m.check("range", "end")
	end := ast.RangeInclusive
	if v := m.get("end"); v != nil {
		var ok bool
		end, ok = rangeEnds[scalar(v)]
		if !ok {
			fail(v, "range: unknown end %q", v.Value)
		}
	}
	v := m.get("range")
	if v.Kind != yaml.SequenceNode || len(v.Content) < 1 || len(v.Content) > 2 {
		fail(v, "range: expecting one or two operands")
	}
	var high ast.Expression
	if len(v.Content) == 2 {
		high = expression(v.Content[1])
	}
	if end == ast.RangeUnbounded {
		if high != nil {
			fail(v, "range: an unbounded range can't have a high bound")
		}
	} else if high == nil {
		fail(v, "range: missing high bound")
	}
	return ast.NewRange(pos(n), expression(v.Content[0]), high, end)
}

// functionCall returns the function call represented by n.
//
//	call: [{ident: f}, 1, 2]
//	named: {sep: ", "}
func functionCall(n *yaml.Node) ast.Expression {
	m := newMapping(n)
	m.check("call", "named")
	v := m.get("call")
	if v.Kind != yaml.SequenceNode || len(v.Content) == 0 {
		fail(v, "call: expecting the function and its arguments")
	}
	fn := expression(v.Content[0])
	var args []ast.Expression
	for _, c := range v.Content[1:] {
		args = append(args, expression(c))
	}
	var named []ast.NamedArgument
	if a := m.get("named"); !isNull(a) {
		named = namedArguments(a)
	}
	return ast.NewFunctionCall(pos(n), fn, args, named)
}
