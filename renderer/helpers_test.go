// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package renderer

import (
	"strings"

	"github.com/open2b/ftl/ast"
	"github.com/open2b/ftl/model"
)

// scope is the data model of a test.
type scope map[string]interface{}

// The following functions build the nodes of the trees of the tests.

func str(s string) *ast.StringLiteral { return ast.NewStringLiteral(nil, s) }

func num(s string) *ast.NumberLiteral {
	n, err := model.ParseNum(s)
	if err != nil {
		panic(err)
	}
	return ast.NewNumberLiteral(nil, n)
}

func boolean(b bool) *ast.BooleanLiteral { return ast.NewBooleanLiteral(nil, b) }

func ident(name string) *ast.Identifier { return ast.NewIdentifier(nil, name) }

func list(items ...ast.Expression) *ast.ListLiteral { return ast.NewListLiteral(nil, items...) }

func hash(kv ...ast.Expression) *ast.HashLiteral {
	var keys, values []ast.Expression
	for i := 0; i+1 < len(kv); i += 2 {
		keys = append(keys, kv[i])
		values = append(values, kv[i+1])
	}
	return ast.NewHashLiteral(nil, keys, values)
}

func dot(target ast.Expression, name string) *ast.Dot { return ast.NewDot(nil, target, name) }

func index(target, key ast.Expression) *ast.DynamicKeyName {
	return ast.NewDynamicKeyName(nil, target, key)
}

func rng(low, high ast.Expression, end ast.RangeEnd) *ast.Range {
	return ast.NewRange(nil, low, high, end)
}

func add(left, right ast.Expression) *ast.AddOrConcat { return ast.NewAddOrConcat(nil, left, right) }

func arith(op ast.OperatorType, left, right ast.Expression) *ast.Arithmetic {
	return ast.NewArithmetic(nil, op, left, right)
}

func cmp(op ast.OperatorType, left, right ast.Expression) *ast.Comparison {
	return ast.NewComparison(nil, op, left, right)
}

func paren(expr ast.Expression) *ast.Parenthesis { return ast.NewParenthesis(nil, expr) }

// bi returns a built-in node, panicking if the built-in does not exist.
func bi(target ast.Expression, name string) *ast.BuiltIn {
	n, err := NewBuiltIn(nil, target, name)
	if err != nil {
		panic(err)
	}
	return n
}

func call(fn ast.Expression, args ...ast.Expression) *ast.FunctionCall {
	return ast.NewFunctionCall(nil, fn, args, nil)
}

func text(s string) *ast.StaticText { return ast.NewStaticText(nil, s) }

func interp(expr ast.Expression) *ast.Interpolation { return ast.NewInterpolation(nil, expr) }

func block(children ...ast.Element) *ast.Block { return ast.NewBlock(nil, children...) }

func assign(name string, value ast.Expression) *ast.Assignment {
	return ast.NewAssignment(nil, ast.ScopeAssign, name, ast.AssignmentSimple, value)
}

// render renders the tree with root element root, with the given data
// model and settings.
func render(root ast.Element, vars scope, settings *Settings) (string, error) {
	ast.NewTemplate("test.ftl", root)
	var data model.Hash
	if vars != nil {
		data = model.MustWrap(map[string]interface{}(vars)).(model.Hash)
	}
	var b strings.Builder
	env, err := NewEnvironment(data, &b, settings)
	if err != nil {
		return "", err
	}
	err = env.Process(root)
	return b.String(), err
}

// renderExpr renders the interpolation of expr.
func renderExpr(expr ast.Expression, vars scope) (string, error) {
	return render(interp(expr), vars, nil)
}
