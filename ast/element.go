// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ast

import (
	"fmt"
	"strings"
)

// initialChildCapacity is the capacity of the child buffer of an element
// when the first child is added.
const initialChildCapacity = 6

// Element is a node executed for its output, as a directive, a static text
// or an interpolation.
//
// The children of an element are owned by the element; the child with index
// i has the element as parent and i as index.
type Element interface {
	Node

	// Parent returns the parent element or nil if the element is a root.
	Parent() Element

	// Index returns the index of the element in the children of its parent.
	Index() int

	// ChildCount returns the number of children.
	ChildCount() int

	// Child returns the child with index i. It panics if i is out of range.
	Child(i int) Element

	// Children returns the children. The returned slice must not be
	// modified.
	Children() []Element

	// AddChild appends e to the children.
	AddChild(e Element)

	// InsertChild inserts e in the children at index i, shifting the
	// following children.
	InsertChild(i int, e Element)

	// IsNestedBlockRepeater reports whether the element can execute its
	// children more than once.
	IsNestedBlockRepeater() bool

	// IsShownInStackTrace reports whether the element is shown in the stack
	// traces also when it is not the innermost element.
	IsShownInStackTrace() bool

	// IsOutputting reports whether the element can produce output.
	IsOutputting() bool

	// Description returns the description of the element, as shown in the
	// stack traces.
	Description() string

	// PostParseCleanup cleans up the tree rooted at the element and returns
	// the element that replaces it in its parent. strip reports whether the
	// superfluous white space has to be stripped.
	PostParseCleanup(strip bool) Element

	base() *element
	dump(canonical bool) string
	isIgnorable(strip bool) bool
	heedsOpeningWhitespace() bool
	heedsTrailingWhitespace() bool
}

// element is embedded by all the elements.
type element struct {
	node
	self   Element
	parent Element
	index  int
	buf    []Element // child buffer; its length is the capacity
	count  int       // number of children
}

// init initializes e as the element embedded in self and adds the children.
func (e *element) init(self Element, pos *Position, children []Element) {
	e.node = newNode(pos)
	e.self = self
	for _, c := range children {
		if c != nil {
			e.AddChild(c)
		}
	}
}

func (e *element) base() *element { return e }

// Parent returns the parent of e.
func (e *element) Parent() Element { return e.parent }

// Index returns the index of e in its parent.
func (e *element) Index() int { return e.index }

// ChildCount returns the number of children of e.
func (e *element) ChildCount() int { return e.count }

// Child returns the child of e with index i.
func (e *element) Child(i int) Element {
	if i < 0 || i >= e.count {
		panic(fmt.Errorf("Index %d is out of bounds. There are %d child node(s).", i, e.count))
	}
	return e.buf[i]
}

// Children returns the children of e.
func (e *element) Children() []Element {
	return e.buf[:e.count]
}

// AddChild appends c to the children of e.
func (e *element) AddChild(c Element) {
	e.InsertChild(e.count, c)
}

// InsertChild inserts c in the children of e at index i.
func (e *element) InsertChild(i int, c Element) {
	if i < 0 || i > e.count {
		panic(fmt.Errorf("Index %d is out of bounds. There are %d child node(s).", i, e.count))
	}
	if e.buf == nil {
		e.buf = make([]Element, initialChildCapacity)
	} else if e.count == len(e.buf) {
		n := len(e.buf) * 2
		if n == 0 {
			n = 1
		}
		buf := make([]Element, n)
		copy(buf, e.buf[:e.count])
		e.buf = buf
	}
	for j := e.count; j > i; j-- {
		moved := e.buf[j-1]
		e.buf[j] = moved
		moved.base().index = j
	}
	e.buf[i] = c
	cb := c.base()
	cb.parent = e.self
	cb.index = i
	e.count++
}

// capacity returns the capacity of the child buffer.
func (e *element) capacity() int { return len(e.buf) }

func (e *element) IsNestedBlockRepeater() bool { return false }

func (e *element) IsShownInStackTrace() bool { return false }

func (e *element) IsOutputting() bool { return true }

// CanonicalForm returns the canonical form of e.
func (e *element) CanonicalForm() string { return e.self.dump(true) }

// Description returns the description of e.
func (e *element) Description() string { return e.self.dump(false) }

func (e *element) ParameterCount() int { return 0 }

func (e *element) ParameterValue(i int) interface{} { panic(ErrParameterIndex) }

func (e *element) ParameterRole(i int) ParameterRole { panic(ErrParameterIndex) }

// PostParseCleanup cleans up the children of e, removes the ignorable ones
// and trims the child buffer.
func (e *element) PostParseCleanup(strip bool) Element {
	for i := 0; i < e.count; i++ {
		c := e.buf[i].PostParseCleanup(strip)
		e.buf[i] = c
		cb := c.base()
		cb.parent = e.self
		cb.index = i
	}
	for i := 0; i < e.count; i++ {
		c := e.buf[i]
		if !c.isIgnorable(strip) {
			continue
		}
		e.count--
		for j := i; j < e.count; j++ {
			moved := e.buf[j+1]
			e.buf[j] = moved
			moved.base().index = j
		}
		e.buf[e.count] = nil
		cb := c.base()
		cb.index = 0
		cb.parent = nil
		i--
	}
	if e.count == 0 {
		e.buf = nil
	} else if e.count < len(e.buf) && e.count <= len(e.buf)*3/4 {
		buf := make([]Element, e.count)
		copy(buf, e.buf[:e.count])
		e.buf = buf
	}
	return e.self
}

func (e *element) isIgnorable(strip bool) bool { return false }

func (e *element) heedsOpeningWhitespace() bool { return false }

func (e *element) heedsTrailingWhitespace() bool { return false }

// previousSibling returns the previous sibling of e or nil if there is none.
func (e *element) previousSibling() Element {
	if e.parent == nil || e.index == 0 {
		return nil
	}
	return e.parent.Child(e.index - 1)
}

// nextSibling returns the next sibling of e or nil if there is none.
func (e *element) nextSibling() Element {
	if e.parent == nil || e.index+1 >= e.parent.ChildCount() {
		return nil
	}
	return e.parent.Child(e.index + 1)
}

// prevTerminalNode returns the leaf that precedes e in the tree.
func (e *element) prevTerminalNode() Element {
	if prev := e.previousSibling(); prev != nil {
		return lastLeaf(prev)
	}
	if e.parent != nil {
		return e.parent.base().prevTerminalNode()
	}
	return nil
}

// nextTerminalNode returns the leaf that follows e in the tree.
func (e *element) nextTerminalNode() Element {
	if next := e.nextSibling(); next != nil {
		return firstLeaf(next)
	}
	if e.parent != nil {
		return e.parent.base().nextTerminalNode()
	}
	return nil
}

// firstLeaf returns the first leaf of the tree rooted at e. The descent
// stops at macro definitions and capturing assignments.
func firstLeaf(e Element) Element {
	for e.ChildCount() > 0 && !isLeafBoundary(e) {
		e = e.Child(0)
	}
	return e
}

// lastLeaf returns the last leaf of the tree rooted at e. The descent stops
// at macro definitions and capturing assignments.
func lastLeaf(e Element) Element {
	for e.ChildCount() > 0 && !isLeafBoundary(e) {
		e = e.Child(e.ChildCount() - 1)
	}
	return e
}

func isLeafBoundary(e Element) bool {
	switch e.(type) {
	case *Macro, *Assignment:
		return true
	}
	return false
}

// dumpChildren returns the canonical form of the children of e.
func (e *element) dumpChildren() string {
	var b strings.Builder
	for _, c := range e.Children() {
		b.WriteString(c.CanonicalForm())
	}
	return b.String()
}
