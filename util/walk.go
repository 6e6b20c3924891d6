// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"github.com/open2b/ftl/ast"
)

// Visitor's Visit method is invoked for every node encountered by Walk.
type Visitor interface {
	Visit(node ast.Node) (w Visitor)
}

// Walk visits a tree in depth. Initially it calls v.Visit(node), where node
// must not be nil. If the value w returned by v.Visit(node) is not nil, Walk
// is called recursively with w on the parameters of node that are
// expressions, in parameter order, and then on the children of node if it
// is an element. Finally it calls w.Visit(nil).
func Walk(v Visitor, node ast.Node) {

	if v == nil {
		panic("v can't be nil")
	}

	if node == nil {
		panic("node can't be nil")
	}

	v = v.Visit(node)

	if v == nil {
		return
	}

	// Elements are reached as children, so a parameter that is an element
	// is not walked.
	for i := 0; i < node.ParameterCount(); i++ {
		if p, ok := node.ParameterValue(i).(ast.Expression); ok && p != nil {
			Walk(v, p)
		}
	}

	if e, ok := node.(ast.Element); ok {
		for _, child := range e.Children() {
			Walk(v, child)
		}
	}

	v.Visit(nil)

}

// Visit implements the Visitor interface for the f function.
func (f inspector) Visit(node ast.Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

type inspector func(ast.Node) bool

// Inspect visits the tree by calling the function f on every node.
// For more information, see the documentation of the Walk function.
func Inspect(node ast.Node, f func(ast.Node) bool) {
	Walk(inspector(f), node)
}
