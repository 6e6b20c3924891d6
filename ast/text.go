// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ast

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// StaticText node represents a text that is written to the output as is.
type StaticText struct {
	element
	Text     string // text
	Unparsed bool   // reports whether the text comes from a #noparse section
}

// NewStaticText returns a new StaticText node. The position is copied as it
// changes when the white space is stripped.
func NewStaticText(pos *Position, text string) *StaticText {
	n := &StaticText{Text: text}
	var p Position
	if pos != nil {
		p = *pos
	}
	n.init(n, &p, nil)
	return n
}

func (n *StaticText) dump(canonical bool) string {
	if canonical {
		if n.Unparsed {
			return "<#noParse>" + n.Text + "</#noParse>"
		}
		return n.Text
	}
	return "text " + Quote(n.Text)
}

func (n *StaticText) Label() string { return "#text" }

func (n *StaticText) ParameterCount() int { return 1 }

func (n *StaticText) ParameterValue(i int) interface{} {
	if i != 0 {
		panic(ErrParameterIndex)
	}
	return n.Text
}

func (n *StaticText) ParameterRole(i int) ParameterRole {
	if i != 0 {
		panic(ErrParameterIndex)
	}
	return RoleContent
}

// PostParseCleanup strips the white space of the text.
func (n *StaticText) PostParseCleanup(strip bool) Element {
	if n.Text == "" {
		return n
	}
	deliberateLeftTrim := n.deliberateLeftTrim()
	deliberateRightTrim := n.deliberateRightTrim()
	if !strip || n.Text == "" {
		return n
	}
	if isTopLevel(n.parent) && n.previousSibling() == nil {
		return n
	}
	opening, trailing := 0, 0
	if !deliberateLeftTrim {
		trailing = n.trailingCharsToStrip()
	}
	if !deliberateRightTrim {
		opening = n.openingCharsToStrip()
	}
	if opening == 0 && trailing == 0 {
		return n
	}
	n.Text = n.Text[opening : len(n.Text)-trailing]
	if opening > 0 {
		n.Line++
		n.Column = 1
	}
	if trailing > 0 {
		n.EndColumn = 0
	}
	return n
}

// deliberateLeftTrim scans forward the elements on the same line looking for
// a trim directive that trims on the left. It returns true if it is found.
func (n *StaticText) deliberateLeftTrim() bool {
	result := false
	for e := n.nextTerminalNode(); e != nil && e.Pos().Line == n.EndLine; e = e.base().nextTerminalNode() {
		ti, ok := e.(*TrimDirective)
		if !ok {
			continue
		}
		if !ti.Left && !ti.Right {
			result = true
		}
		if ti.Left {
			result = true
			last := lastNewLineIndex(n.Text)
			if last >= 0 || n.Column == 1 {
				firstPart := n.Text[:last+1]
				lastLine := n.Text[last+1:]
				if isTrimmableToEmpty(lastLine) {
					n.Text = firstPart
					n.EndColumn = 0
				} else {
					n.Text = firstPart + strings.TrimLeftFunc(lastLine, isWhitespace)
				}
			}
		}
	}
	return result
}

// deliberateRightTrim scans backward the elements on the same line looking
// for a trim directive that trims on the right. It returns true if it is
// found.
func (n *StaticText) deliberateRightTrim() bool {
	result := false
	for e := n.prevTerminalNode(); e != nil && e.Pos().EndLine == n.Line; e = e.base().prevTerminalNode() {
		ti, ok := e.(*TrimDirective)
		if !ok {
			continue
		}
		if !ti.Left && !ti.Right {
			result = true
		}
		if !ti.Right {
			continue
		}
		result = true
		firstLine := firstNewLineIndex(n.Text) + 1
		if firstLine == 0 {
			return false
		}
		if len(n.Text) > firstLine && n.Text[firstLine-1] == '\r' && n.Text[firstLine] == '\n' {
			firstLine++
		}
		trailingPart := n.Text[firstLine:]
		openingPart := n.Text[:firstLine]
		if isTrimmableToEmpty(openingPart) {
			n.Text = trailingPart
			n.Line++
			n.Column = 1
			continue
		}
		printablePart := strings.TrimRightFunc(openingPart, isWhitespace)
		if isTrimmableToEmpty(trailingPart) {
			trimTrailingPart := true
			for te := n.nextTerminalNode(); te != nil && te.Pos().Line == n.EndLine; te = te.base().nextTerminalNode() {
				if te.heedsOpeningWhitespace() {
					trimTrailingPart = false
				}
				if ti, ok := te.(*TrimDirective); ok && ti.Left {
					trimTrailingPart = true
					break
				}
			}
			if trimTrailingPart {
				trailingPart = ""
			}
		}
		n.Text = printablePart + trailingPart
	}
	return result
}

// openingCharsToStrip returns the number of opening white space bytes to
// strip.
func (n *StaticText) openingCharsToStrip() int {
	newline := firstNewLineIndex(n.Text)
	if newline == -1 && n.Column != 1 {
		return 0
	}
	newline++
	if len(n.Text) > newline && newline > 0 && n.Text[newline-1] == '\r' && n.Text[newline] == '\n' {
		newline++
	}
	if !isTrimmableToEmpty(n.Text[:newline]) {
		return 0
	}
	for e := n.prevTerminalNode(); e != nil && e.Pos().EndLine == n.Line; e = e.base().prevTerminalNode() {
		if e.heedsOpeningWhitespace() {
			return 0
		}
	}
	return newline
}

// trailingCharsToStrip returns the number of trailing white space bytes to
// strip.
func (n *StaticText) trailingCharsToStrip() int {
	last := lastNewLineIndex(n.Text)
	if last == -1 && n.Column != 1 {
		return 0
	}
	if !isTrimmableToEmpty(n.Text[last+1:]) {
		return 0
	}
	for e := n.nextTerminalNode(); e != nil && e.Pos().Line == n.EndLine; e = e.base().nextTerminalNode() {
		if e.heedsTrailingWhitespace() {
			return 0
		}
	}
	return len(n.Text) - (last + 1)
}

func (n *StaticText) heedsTrailingWhitespace() bool {
	if n.isIgnorable(true) {
		return false
	}
	for _, c := range n.Text {
		if c == '\n' || c == '\r' {
			return false
		}
		if !isWhitespace(c) {
			return true
		}
	}
	return true
}

func (n *StaticText) heedsOpeningWhitespace() bool {
	if n.isIgnorable(true) {
		return false
	}
	for s := n.Text; s != ""; {
		c, size := utf8.DecodeLastRuneInString(s)
		if c == '\n' || c == '\r' {
			return false
		}
		if !isWhitespace(c) {
			return true
		}
		s = s[:len(s)-size]
	}
	return true
}

func (n *StaticText) isIgnorable(strip bool) bool {
	if n.Text == "" {
		return true
	}
	if !strip || !isTrimmableToEmpty(n.Text) {
		return false
	}
	atTopLevel := isTopLevel(n.parent)
	prev := n.previousSibling()
	next := n.nextSibling()
	return ((prev == nil && atTopLevel) || isNonOutputting(prev)) &&
		((next == nil && atTopLevel) || isNonOutputting(next))
}

// isTopLevel reports whether a text with the given parent is at the top
// level of a template or of the body of a macro or a function.
func isTopLevel(parent Element) bool {
	if parent == nil || parent.Parent() == nil {
		return true
	}
	if _, ok := parent.(*Macro); ok {
		return true
	}
	if _, ok := parent.(*Block); ok {
		_, ok = parent.Parent().(*Macro)
		return ok
	}
	return false
}

func isNonOutputting(e Element) bool {
	return e != nil && !e.IsOutputting()
}

func firstNewLineIndex(s string) int {
	return strings.IndexAny(s, "\r\n")
}

func lastNewLineIndex(s string) int {
	return strings.LastIndexAny(s, "\r\n")
}

// isTrimmableToEmpty reports whether s contains only characters that are
// less than or equal to the space.
func isTrimmableToEmpty(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > ' ' {
			return false
		}
	}
	return true
}

// isWhitespace reports whether r is a white space character. Non-breaking
// spaces are not white space.
func isWhitespace(r rune) bool {
	switch r {
	case '\u00a0', '\u2007', '\u202f':
		return false
	}
	return unicode.IsSpace(r) || r == '\u001c' || r == '\u001d' || r == '\u001e' || r == '\u001f'
}
