// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/open2b/ftl/ast"
	"github.com/open2b/ftl/model"
)

type TestVisitor struct {
	Labels []string
	Depth  int
	Max    int
}

func (tv *TestVisitor) Visit(node ast.Node) Visitor {
	if node == nil {
		tv.Depth--
		return nil
	}
	tv.Labels = append(tv.Labels, node.Label())
	if _, ok := node.(*ast.StringLiteral); ok {
		return nil
	}
	tv.Depth++
	if tv.Depth > tv.Max {
		tv.Max = tv.Depth
	}
	return tv
}

func id(name string) *ast.Identifier { return ast.NewIdentifier(nil, name) }

func TestWalk(t *testing.T) {
	cases := []struct {
		tree   ast.Node
		labels []string
		depth  int
	}{
		{id("a"), []string{"a"}, 1},
		{ast.NewStringLiteral(nil, "s"), []string{`"s"`}, 0},
		{ast.NewInterpolation(nil, id("a")), []string{"${...}", "a"}, 2},
		{ast.NewInterpolation(nil, ast.NewAddOrConcat(nil, id("a"), ast.NewNumberLiteral(nil, model.IntNum(1)))),
			[]string{"${...}", "+", "a", "1"}, 3},
		{ast.NewInterpolation(nil, ast.NewAddOrConcat(nil, ast.NewStringLiteral(nil, "s"), id("b"))),
			[]string{"${...}", "+", `"s"`, "b"}, 3},
		{ast.NewList(nil, id("seq"), "x", "", ast.NewInterpolation(nil, id("x"))),
			[]string{"#list", "seq", "${...}", "x"}, 3},
		{ast.NewIf(nil,
			ast.NewConditionalBlock(nil, ast.ConditionIf, id("c"), ast.NewStaticText(nil, "yes")),
			ast.NewConditionalBlock(nil, ast.ConditionElse, nil, ast.NewStaticText(nil, "no"))),
			[]string{"#if-#elseif-#else-container", "#if", "c", "#text", "#else", "#text"}, 3},
		{ast.NewAssignment(nil, ast.ScopeAssign, "x", ast.AssignmentSimple, id("y")),
			[]string{"#assign", "y"}, 2},
	}
	for _, c := range cases {
		var visitor TestVisitor
		Walk(&visitor, c.tree)
		if diff := cmp.Diff(c.labels, visitor.Labels); diff != "" {
			t.Errorf("%s: unexpected labels (-want +got):\n%s", c.tree.CanonicalForm(), diff)
		}
		if visitor.Max != c.depth {
			t.Errorf("%s: unexpected depth %d, expecting %d", c.tree.CanonicalForm(), visitor.Max, c.depth)
		}
		if visitor.Depth != 0 {
			t.Errorf("%s: Visit(nil) has been called %d times less than expected", c.tree.CanonicalForm(), visitor.Depth)
		}
	}
}

func TestInspect(t *testing.T) {
	tree := ast.NewBlock(nil,
		ast.NewInterpolation(nil, ast.NewDot(nil, id("a"), "b")),
		ast.NewList(nil, id("seq"), "x", "", ast.NewInterpolation(nil, id("x"))),
	)
	var names []string
	Inspect(tree, func(node ast.Node) bool {
		if n, ok := node.(*ast.Identifier); ok {
			names = append(names, n.Name)
		}
		_, isList := node.(*ast.List)
		return !isList
	})
	if diff := cmp.Diff([]string{"a"}, names); diff != "" {
		t.Errorf("unexpected identifiers (-want +got):\n%s", diff)
	}
}

func TestWalkPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expecting a panic walking a nil node")
		}
	}()
	Walk(&TestVisitor{}, nil)
}
