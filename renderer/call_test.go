// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package renderer

import (
	"strings"
	"testing"

	"github.com/open2b/ftl/ast"
)

func macro(name string, params []ast.MacroParameter, catchAll string, children ...ast.Element) *ast.Macro {
	return ast.NewMacro(nil, name, false, params, catchAll, children...)
}

func function(name string, params []ast.MacroParameter, catchAll string, children ...ast.Element) *ast.Macro {
	return ast.NewMacro(nil, name, true, params, catchAll, children...)
}

func params(names ...string) []ast.MacroParameter {
	ps := make([]ast.MacroParameter, len(names))
	for i, name := range names {
		ps[i] = ast.MacroParameter{Name: name}
	}
	return ps
}

func directiveCall(name string, args []ast.Expression, named []ast.NamedArgument, nestedParams []string, children ...ast.Element) *ast.DynamicCall {
	return ast.NewDynamicCall(nil, ident(name), args, named, nestedParams, children...)
}

type callTest struct {
	name string
	tree ast.Element
	res  string
}

func callTests() []callTest {
	return []callTest{
		{"macro", block(
			macro("greet", params("name"), "", text("Hello "), interp(ident("name")), text("!")),
			directiveCall("greet", nil, []ast.NamedArgument{{Name: "name", Value: str("World")}}, nil),
		), "Hello World!"},
		{"default", block(
			macro("greet", []ast.MacroParameter{{Name: "name", Default: str("you")}}, "", text("Hello "), interp(ident("name"))),
			directiveCall("greet", nil, nil, nil),
		), "Hello you"},
		{"positional", block(
			macro("m", []ast.MacroParameter{{Name: "a", Positional: true}, {Name: "b"}}, "", interp(ident("a")), interp(ident("b"))),
			directiveCall("m", []ast.Expression{str("p")}, []ast.NamedArgument{{Name: "b", Value: str("n")}}, nil),
		), "pn"},
		{"catch-all macro", block(
			macro("m", params("a"), "rest", interp(ident("a")), text(":"),
				interp(call(bi(bi(ident("rest"), "keys"), "join"), str(",")))),
			directiveCall("m", nil, []ast.NamedArgument{
				{Name: "a", Value: num("1")}, {Name: "b", Value: num("2")}, {Name: "c", Value: num("3")}}, nil),
		), "1:b,c"},
		{"empty catch-all macro", block(
			macro("m", nil, "rest", interp(bi(ident("rest"), "size"))),
			directiveCall("m", nil, nil, nil),
		), "0"},
		{"function", block(
			function("double", params("x"), "", ast.NewReturn(nil, arith(ast.OperatorMultiplication, ident("x"), num("2")))),
			interp(call(ident("double"), num("21"))),
		), "42"},
		{"filter", block(
			function("even", params("x"), "", ast.NewReturn(nil,
				cmp(ast.OperatorEqual, arith(ast.OperatorModulo, ident("x"), num("2")), num("0")))),
			interp(call(bi(call(bi(list(num("1"), num("2"), num("3"), num("4")), "filter"), ident("even")), "join"), str(","))),
		), "2,4"},
		{"map", block(
			function("double", params("x"), "", ast.NewReturn(nil, arith(ast.OperatorMultiplication, ident("x"), num("2")))),
			interp(call(bi(call(bi(list(num("1"), num("2"), num("3")), "map"), ident("double")), "join"), str(","))),
		), "2,4,6"},
		{"map with catch-all", block(
			function("first", nil, "rest", ast.NewReturn(nil, index(ident("rest"), num("0")))),
			interp(call(bi(call(bi(list(str("a"), str("b")), "map"), ident("first")), "join"), str(","))),
		), "a,b"},
		{"catch-all function", block(
			function("count", params("first"), "rest", ast.NewReturn(nil, bi(ident("rest"), "size"))),
			interp(call(ident("count"), num("1"), num("2"), num("3"))),
		), "2"},
		{"function output", block(
			function("f", nil, "", text("ignored"), ast.NewReturn(nil, str("r"))),
			interp(call(ident("f"))),
		), "r"},
		{"return from macro", block(
			macro("m", nil, "", text("a"), ast.NewReturn(nil, nil), text("b")),
			directiveCall("m", nil, nil, nil),
		), "a"},
		{"nested", block(
			macro("wrap", nil, "", text("["), ast.NewNested(nil), text("]")),
			directiveCall("wrap", nil, nil, nil, text("x")),
		), "[x]"},
		{"nested twice", block(
			macro("twice", nil, "", ast.NewNested(nil), ast.NewNested(nil)),
			directiveCall("twice", nil, nil, nil, text("x")),
		), "xx"},
		{"nested parameters", block(
			macro("m", nil, "", ast.NewNested(nil, str("a"), str("b"))),
			directiveCall("m", nil, nil, []string{"x", "y"}, interp(ident("x")), interp(ident("y"))),
		), "ab"},
		{"nested scope", block(
			assign("x", str("outer")),
			macro("m", nil, "",
				ast.NewAssignment(nil, ast.ScopeLocal, "x", ast.AssignmentSimple, str("inner")),
				interp(ident("x")), text(" "), ast.NewNested(nil)),
			directiveCall("m", nil, nil, nil, interp(ident("x"))),
		), "inner outer"},
		{"macro namespace", block(
			macro("m", nil, "", assign("y", str("set"))),
			directiveCall("m", nil, nil, nil),
			interp(ident("y")),
		), "set"},
		{"recursive function", block(
			function("fact", params("n"), "",
				ast.NewIf(nil,
					ast.NewConditionalBlock(nil, ast.ConditionIf, cmp(ast.OperatorLess, ident("n"), num("2")), ast.NewReturn(nil, num("1"))),
				),
				ast.NewReturn(nil, arith(ast.OperatorMultiplication, ident("n"),
					call(ident("fact"), arith(ast.OperatorSubtraction, ident("n"), num("1")))))),
			interp(call(ident("fact"), num("5"))),
		), "120"},
	}
}

func TestCalls(t *testing.T) {
	for _, test := range callTests() {
		res, err := render(test.tree, nil, nil)
		if err != nil {
			t.Errorf("%s: %s\n", test.name, err)
			continue
		}
		if res != test.res {
			t.Errorf("%s: unexpected %q, expecting %q\n", test.name, res, test.res)
		}
	}
}

var callErrorTests = []struct {
	name string
	tree ast.Element
	err  string
	vars scope
}{
	{"missing parameter", block(
		macro("m", params("a"), "", interp(ident("a"))),
		directiveCall("m", nil, nil, nil),
	), `When calling macro "m", required parameter "a" (parameter #1) was not specified.`, nil},
	{"too many positional arguments", block(
		function("f", params("x"), "", ast.NewReturn(nil, ident("x"))),
		interp(call(ident("f"), num("1"), num("2"))),
	), `The called function "f" can only have 1 arguments passed by position, but the invocation has 2 such arguments.`, nil},
	{"positional argument to macro", block(
		macro("m", params("a"), ""),
		directiveCall("m", []ast.Expression{num("1")}, nil, nil),
	), `The called macro "m" can't have arguments passed by position, but the invocation has 1 such arguments.`, nil},
	{"unknown named argument", block(
		macro("m", params("a"), ""),
		directiveCall("m", nil, []ast.NamedArgument{{Name: "b", Value: num("1")}}, nil),
	), "The called macro \"m\" has no parameter that's passed by name and is called \"b\". The supported parameter names are:\n\"a\"", nil},
	{"named argument to function", block(
		function("f", params("x"), "", ast.NewReturn(nil, ident("x"))),
		interp(ast.NewFunctionCall(nil, ident("f"), nil, []ast.NamedArgument{{Name: "x", Value: num("1")}})),
	), `The called function "f" can't have arguments that are passed by name (like "x").`, nil},
	{"no parameters", block(
		macro("m", nil, ""),
		directiveCall("m", []ast.Expression{num("1")}, nil, nil),
	), `The called macro "m" doesn't support any parameters.`, nil},
	{"not a directive", directiveCall("x", nil, nil, nil),
		"Expected a directive (like a macro), but this has evaluated to string", scope{"x": "s"}},
	{"missing directive", directiveCall("x", nil, nil, nil),
		"The following has evaluated to null or missing:", nil},
	{"macro in expression", block(
		macro("m", nil, ""),
		interp(call(ident("m"))),
	), "Macros and other directives are called with <@myMacro ... />, not in expressions.", nil},
	{"return value from macro", block(
		macro("m", nil, "", ast.NewReturn(nil, num("1"))),
		directiveCall("m", nil, nil, nil),
	), "Can't return a value from a macro, only from a function.", nil},
	{"nested outside macro", ast.NewNested(nil), "#nested can only be used inside a macro.", nil},
	{"nested parameters mismatch", block(
		macro("m", nil, "", ast.NewNested(nil, str("a"))),
		directiveCall("m", nil, nil, []string{"x", "y"}, interp(ident("x"))),
	), `The invocation declares 2 nested content parameter(s) ("x", "y"), but the called object intends to pass 1 parameters.`, nil},
	{"local outside macro", ast.NewAssignment(nil, ast.ScopeLocal, "x", ast.AssignmentSimple, num("1")),
		"The #local directive can only be used inside a macro or a function.", nil},
}

func TestFilterAndMapErrors(t *testing.T) {
	tests := []struct {
		name string
		tree ast.Element
		err  string
	}{
		{"not a function", interp(call(bi(list(num("1")), "filter"), num("1"))),
			"The 1st argument to ?filter(...) must be a function, but it was number."},
		{"not a boolean", block(
			function("id", params("x"), "", ast.NewReturn(nil, ident("x"))),
			interp(call(bi(call(bi(list(num("1")), "filter"), ident("id")), "join"), str(","))),
		), "?filter(...) expects a function that returns a boolean, but it has returned"},
		{"no positional parameters", block(
			function("f", nil, "", ast.NewReturn(nil, num("1"))),
			interp(call(bi(call(bi(list(num("1")), "map"), ident("f")), "join"), str(","))),
		), "must be a function that accepts an argument passed by position."},
	}
	for _, test := range tests {
		_, err := render(test.tree, nil, nil)
		if err == nil {
			t.Errorf("%s: expecting error, got nil\n", test.name)
			continue
		}
		if !strings.Contains(err.Error(), test.err) {
			t.Errorf("%s: unexpected error %q, expecting %q\n", test.name, err, test.err)
		}
	}
}

func TestCallErrors(t *testing.T) {
	for _, test := range callErrorTests {
		_, err := render(test.tree, test.vars, nil)
		if err == nil {
			t.Errorf("%s: expecting error, got nil\n", test.name)
			continue
		}
		if _, ok := err.(*Error); !ok {
			t.Errorf("%s: unexpected error type %T, expecting *Error\n", test.name, err)
			continue
		}
		if !strings.Contains(err.Error(), test.err) {
			t.Errorf("%s: unexpected error %q, expecting %q\n", test.name, err, test.err)
		}
	}
}
