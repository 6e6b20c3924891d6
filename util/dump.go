// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package util implements methods to walk and dump a tree.
package util

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/open2b/ftl/ast"
)

// maxTextLength is the maximum length, in runes, of a static text in a
// dump.
const maxTextLength = 30

type dumper struct {
	output  io.Writer
	parents []ast.Node
}

type errVisitor struct {
	err error
}

func (e errVisitor) Error() string {
	return e.err.Error()
}

// Visit elaborates a node of a tree, writing on a Writer the representation
// of the same node correctly indented. The Visit method is called by the
// Walk function.
func (d *dumper) Visit(node ast.Node) Visitor {

	// Management of the v.Visit(nil) call made by Walk.
	if node == nil {
		d.parents = d.parents[:len(d.parents)-1]
		return nil
	}

	var text string
	switch n := node.(type) {
	case *ast.StaticText:
		text = n.Text
		if utf8.RuneCountInString(text) > maxTextLength {
			text = string([]rune(text)[:maxTextLength]) + "..."
		}
		text = strconv.Quote(text)
	case ast.Element:
		text = n.Description()
	default:
		text = node.CanonicalForm()
	}

	// The role is written for the nodes that are a parameter of the parent.
	if len(d.parents) > 0 {
		parent := d.parents[len(d.parents)-1]
		for i := 0; i < parent.ParameterCount(); i++ {
			if p, ok := parent.ParameterValue(i).(ast.Node); ok && p == node {
				text = parent.ParameterRole(i).String() + ": " + text
				break
			}
		}
	}

	// Inserts the right level of indentation.
	for range d.parents {
		_, err := io.WriteString(d.output, "│    ")
		if err != nil {
			panic(errVisitor{err})
		}
	}

	// Determines the type by removing the prefix "*ast."
	typeStr := fmt.Sprintf("%T", node)[5:]

	_, err := fmt.Fprintf(d.output, "%s (%s) %s\n", typeStr, node.Pos(), text)
	if err != nil {
		panic(errVisitor{err})
	}

	d.parents = append(d.parents, node)

	return d
}

// Dump writes the dump of the tree rooted at node on w, a node per line,
// indented by its depth. Each line contains the type of the node, its
// position, the role it has for its parent, if it is a parameter, and its
// description.
func Dump(w io.Writer, node ast.Node) (err error) {

	defer func() {
		if r := recover(); r != nil {
			if t, ok := r.(errVisitor); ok {
				err = t.err
			} else {
				panic(r)
			}
		}
	}()

	if node == nil {
		return errors.New("can't dump a nil tree")
	}

	d := dumper{output: w}
	Walk(&d, node)

	return nil
}
