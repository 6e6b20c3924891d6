// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ast declares the types used to define template trees.
//
// A tree is made of elements, the nodes executed for their output, and of
// expressions, the nodes evaluated to a value. For example the template
//
//	<#list articles as article>
//	<div>${article.title}</div>
//	</#list>
//
// is represented with the tree:
//
//	ast.NewBlock(nil,
//		ast.NewList(&ast.Position{Line: 1, Column: 1, EndLine: 3, EndColumn: 9},
//			ast.NewIdentifier(&ast.Position{Line: 1, Column: 8, EndLine: 1, EndColumn: 15}, "articles"),
//			"article", "",
//			ast.NewStaticText(&ast.Position{Line: 1, Column: 28, EndLine: 2, EndColumn: 5}, "\n<div>"),
//			ast.NewInterpolation(&ast.Position{Line: 2, Column: 6, EndLine: 2, EndColumn: 21},
//				ast.NewDot(&ast.Position{Line: 2, Column: 8, EndLine: 2, EndColumn: 20},
//					ast.NewIdentifier(&ast.Position{Line: 2, Column: 8, EndLine: 2, EndColumn: 14}, "article"),
//					"title")),
//			ast.NewStaticText(&ast.Position{Line: 2, Column: 22, EndLine: 2, EndColumn: 28}, "</div>\n"),
//		),
//	)
//
// Every node exposes a positional parameter view, with ParameterCount,
// ParameterValue and ParameterRole, that allows to traverse and inspect a
// tree without knowing the concrete node types.
package ast

import (
	"errors"
	"strconv"
)

// ErrParameterIndex is the value of the panic raised when a parameter
// index is out of range.
var ErrParameterIndex = errors.New("ast: parameter index out of range")

// Node is a node of the tree.
type Node interface {

	// Pos returns the position of the node in the source.
	Pos() *Position

	// Template returns the template the node belongs to. It returns nil if
	// the node has not been located in a template.
	Template() *Template

	// SetLocation sets the template and, if pos is not nil, the position of
	// the node. It panics if the node has already been located.
	SetLocation(t *Template, pos *Position)

	// CanonicalForm returns the source that, parsed, produces a node
	// equivalent to this.
	CanonicalForm() string

	// Label returns a short description of the node kind, as it is
	// used in error messages.
	Label() string

	// ParameterCount returns the number of parameters of the node.
	ParameterCount() int

	// ParameterValue returns the value of the parameter with index i. A
	// value that is composed of other nodes is always a Node.
	ParameterValue(i int) interface{}

	// ParameterRole returns the role of the parameter with index i.
	ParameterRole(i int) ParameterRole
}

// Position is the position of a node in the source. Lines and columns start
// from 1; zero means unknown.
type Position struct {
	Line      int // line of the first character
	Column    int // column of the first character
	EndLine   int // line of the last character
	EndColumn int // column of the last character
}

// Pos returns the position p.
func (p *Position) Pos() *Position {
	return p
}

// String returns the line and column separated by a colon, for example "37:18".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Template is a located tree.
type Template struct {
	Name string  // name of the template
	Root Element // root element
}

// NewTemplate returns a template with the given name and root, and locates
// in it all the nodes of the tree that have not already been located.
func NewTemplate(name string, root Element) *Template {
	t := &Template{Name: name, Root: root}
	if root != nil {
		locate(t, root)
	}
	return t
}

// Cleanup runs the post-parse cleanup on the tree of t. strip reports
// whether the superfluous white space has to be stripped.
func (t *Template) Cleanup(strip bool) {
	if t.Root != nil {
		t.Root = t.Root.PostParseCleanup(strip)
	}
}

// locate sets the template of n and of all its descendants.
func locate(t *Template, n Node) {
	if n.Template() == nil {
		n.SetLocation(t, nil)
	}
	for i := 0; i < n.ParameterCount(); i++ {
		if p, ok := n.ParameterValue(i).(Node); ok {
			locate(t, p)
		}
	}
	if e, ok := n.(Element); ok {
		for _, c := range e.Children() {
			locate(t, c)
		}
	}
}

// node is embedded by all the nodes.
type node struct {
	*Position
	template *Template
}

func newNode(pos *Position) node {
	if pos == nil {
		pos = &Position{}
	}
	return node{Position: pos}
}

// Template returns the template of n.
func (n *node) Template() *Template {
	return n.template
}

// SetLocation sets the template and the position of n.
func (n *node) SetLocation(t *Template, pos *Position) {
	if n.template != nil {
		panic("ast: location already set")
	}
	n.template = t
	if pos != nil {
		n.Position = pos
	}
}

// ParameterRole represents the role of a parameter of a node.
type ParameterRole int

const (
	RoleLeftHandOperand ParameterRole = iota
	RoleRightHandOperand
	RoleEnclosedOperand
	RoleItemValue
	RoleItemKey
	RoleAssignmentTarget
	RoleAssignmentOperator
	RoleAssignmentSource
	RoleVariableScope
	RolePassedValue
	RoleCondition
	RoleValue
	RoleSubtype
	RoleListSource
	RoleTargetLoopVariable
	RoleParameterName
	RoleParameterDefault
	RoleCatchAllParameterName
	RoleArgumentName
	RoleArgumentValue
	RoleContent
	RoleValuePart
	RoleCallee
	RoleMessage
	RoleErrorHandler
	RoleItemSeparator
)

var roleNames = [...]string{
	"left-hand operand",
	"right-hand operand",
	"enclosed operand",
	"item value",
	"item key",
	"assignment target",
	"assignment operator",
	"assignment source",
	"variable scope",
	"passed value",
	"condition",
	"value",
	"AST-node subtype",
	"list source",
	"target loop variable",
	"parameter name",
	"parameter default",
	"catch-all parameter name",
	"argument name",
	"argument value",
	"content",
	"value part",
	"callee",
	"message",
	"error handler",
	"item separator",
}

// String returns the name of the role, for example "left-hand operand".
func (role ParameterRole) String() string {
	return roleNames[role]
}
