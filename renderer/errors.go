// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package renderer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/open2b/ftl/ast"
	"github.com/open2b/ftl/model"
)

// ErrStopped is the cause of the error returned by Process when a #stop
// directive is executed.
var ErrStopped = errors.New("stop instruction executed")

// Error is an error occurred evaluating a tree.
//
// The message is rendered only when it is requested the first time.
type Error struct {
	fragments  []interface{}
	blamed     ast.Node
	tips       []string
	cause      error
	preamble   bool
	missing    bool
	stack      []ast.Element
	template   string
	pos        ast.Position
	once       sync.Once
	desc       string
	message    string
	stackTrace string
}

// newError returns a new error blaming the node blamed, that can be nil.
// Fragments can be strings, values of the delayed types quoted, typeName
// and canonical, other slices of fragments and fmt.Stringer values.
func (env *Environment) newError(blamed ast.Node, fragments ...interface{}) *Error {
	err := &Error{
		fragments: fragments,
		blamed:    blamed,
		preamble:  true,
		stack:     append([]ast.Element(nil), env.stack...),
	}
	var located ast.Node
	if blamed != nil && blamed.Pos().Line > 0 {
		located = blamed
	} else if len(err.stack) > 0 {
		located = err.stack[len(err.stack)-1]
	}
	if located != nil {
		err.pos = *located.Pos()
		if t := located.Template(); t != nil {
			err.template = t.Name
		}
	}
	return err
}

// tip adds a tip to the error.
func (err *Error) tip(tips ...string) *Error {
	err.tips = append(err.tips, tips...)
	return err
}

// withCause sets the cause of the error.
func (err *Error) withCause(cause error) *Error {
	err.cause = cause
	return err
}

// Line returns the line of the error or zero if it is not known.
func (err *Error) Line() int { return err.pos.Line }

// Column returns the column of the error or zero if it is not known.
func (err *Error) Column() int { return err.pos.Column }

// EndLine returns the end line of the error or zero if it is not known.
func (err *Error) EndLine() int { return err.pos.EndLine }

// EndColumn returns the end column of the error or zero if it is not known.
func (err *Error) EndColumn() int { return err.pos.EndColumn }

// TemplateName returns the name of the template in which the error
// occurred.
func (err *Error) TemplateName() string { return err.template }

// Unwrap returns the cause of the error, if any.
func (err *Error) Unwrap() error { return err.cause }

// Description returns the description of the error without the stack
// trace.
func (err *Error) Description() string {
	err.render()
	return err.desc
}

// FTLStackTrace returns the template stack trace of the error.
func (err *Error) FTLStackTrace() string {
	err.render()
	return err.stackTrace
}

// Error returns the message of the error.
func (err *Error) Error() string {
	err.render()
	return err.message
}

// render renders the description, the stack trace and the message of the
// error, and then releases the stack snapshot.
func (err *Error) render() {
	err.once.Do(func() {
		var b strings.Builder
		if err.preamble && err.blamed != nil && len(err.stack) > 0 {
			if parent, role, ok := findParent(err.stack[len(err.stack)-1], err.blamed); ok {
				b.WriteString("For ")
				b.WriteString(strconv.Quote(parent.Label()))
				b.WriteString(" ")
				b.WriteString(role.String())
				b.WriteString(": ")
			}
		}
		renderFragments(&b, err.fragments)
		if err.blamed != nil {
			if _, ok := err.blamed.(ast.Expression); ok {
				b.WriteString("\n\n==> ")
				b.WriteString(err.blamed.CanonicalForm())
				b.WriteString("  [")
				b.WriteString(location(err.blamed))
				b.WriteString("]")
			}
		}
		if len(err.tips) > 0 {
			b.WriteString("\n\n----")
			for _, tip := range err.tips {
				b.WriteString("\nTip: ")
				b.WriteString(tip)
			}
			b.WriteString("\n----")
		}
		err.desc = b.String()
		err.stackTrace = stackTrace(err.stack)
		if err.stackTrace == "" {
			err.message = err.desc
		} else {
			err.message = err.desc + "\n\n----\nFTL stack trace (\"~\" means nesting-related):\n" + err.stackTrace + "----"
		}
		err.stack = nil
	})
}

// quoted is a fragment rendered as a quoted string.
type quoted struct{ v interface{} }

// typeName is a fragment rendered as the type description of a value.
type typeName struct{ v model.Value }

// canonical is a fragment rendered as the canonical form of a node.
type canonical struct{ n ast.Node }

func renderFragments(b *strings.Builder, fragments []interface{}) {
	for _, f := range fragments {
		switch f := f.(type) {
		case string:
			b.WriteString(f)
		case []interface{}:
			renderFragments(b, f)
		case quoted:
			switch v := f.v.(type) {
			case string:
				b.WriteString(ast.Quote(v))
			default:
				b.WriteString(ast.Quote(fmt.Sprint(v)))
			}
		case typeName:
			b.WriteString(model.TypeDescription(f.v))
		case canonical:
			b.WriteString(f.n.CanonicalForm())
		case int:
			b.WriteString(strconv.Itoa(f))
		case fmt.Stringer:
			b.WriteString(f.String())
		case error:
			b.WriteString(f.Error())
		case nil:
		default:
			fmt.Fprint(b, f)
		}
	}
}

// findParent finds, walking the parameters of n, the node that has blamed
// as a parameter and returns it with the role of blamed.
func findParent(n ast.Node, blamed ast.Node) (ast.Node, ast.ParameterRole, bool) {
	for i := 0; i < n.ParameterCount(); i++ {
		p, ok := n.ParameterValue(i).(ast.Node)
		if !ok {
			continue
		}
		if p == blamed {
			return n, n.ParameterRole(i), true
		}
		if parent, role, ok := findParent(p, blamed); ok {
			return parent, role, true
		}
	}
	return nil, 0, false
}

// location returns the location of n as shown in the messages, as
// `in template "main.ftl" at line 5, column 3`.
func location(n ast.Node) string {
	var b strings.Builder
	if t := n.Template(); t != nil && t.Name != "" {
		b.WriteString("in template ")
		b.WriteString(strconv.Quote(t.Name))
	} else {
		b.WriteString("in nameless template")
	}
	if pos := n.Pos(); pos.Line > 0 {
		b.WriteString(" at line ")
		b.WriteString(strconv.Itoa(pos.Line))
		b.WriteString(", column ")
		b.WriteString(strconv.Itoa(pos.Column))
	}
	return b.String()
}

const maxDescriptionLength = 40

// stackTrace renders the stack trace of the instruction stack, the
// innermost element first.
func stackTrace(stack []ast.Element) string {
	var b strings.Builder
	var inner ast.Element
	for i := len(stack) - 1; i >= 0; i-- {
		e := stack[i]
		if inner != nil && !e.IsShownInStackTrace() {
			continue
		}
		switch {
		case inner == nil:
			b.WriteString("\t- Failed at: ")
		case isAncestor(e, inner):
			b.WriteString("\t~ Reached through: ")
		default:
			b.WriteString("\t- Reached through: ")
		}
		b.WriteString(shorten(e.Description()))
		b.WriteString("  [")
		b.WriteString(location(e))
		b.WriteString("]\n")
		inner = e
	}
	return b.String()
}

// isAncestor reports whether a is an ancestor of e in the tree.
func isAncestor(a, e ast.Element) bool {
	for p := e.Parent(); p != nil; p = p.Parent() {
		if p == a {
			return true
		}
	}
	return false
}

// shorten returns the first line of s shortened to at most
// maxDescriptionLength characters.
func shorten(s string) string {
	cut := false
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
		cut = true
	}
	if utf8.RuneCountInString(s) > maxDescriptionLength {
		r := []rune(s)
		s = string(r[:maxDescriptionLength-3])
		cut = true
	}
	if cut {
		s += "..."
	}
	return s
}

// newInvalidReferenceError returns an error for an expression evaluated to
// a missing value.
func (env *Environment) newInvalidReferenceError(expr ast.Expression) *Error {
	err := env.newError(expr, "The following has evaluated to null or missing:")
	err.preamble = false
	err.missing = true
	switch expr.(type) {
	case *ast.Dot, *ast.DynamicKeyName:
		err.tip("It's the step after the last dot that caused this error, not those before it.")
	}
	return err.tip("If the failing expression is known to legally refer to something that's " +
		"sometimes null or missing, either specify a default value like myOptionalVar!myDefault, or use " +
		"<#if myOptionalVar??>when-present<#else>when-missing</#if>. (These only cover the last step of the " +
		"expression; to cover the whole expression, use parenthesis: (myOptionalVar.foo)!myDefault, (myOptionalVar.foo)??")
}

// newUnexpectedTypeError returns an error for an expression evaluated to a
// value that does not have the expected capabilities.
func (env *Environment) newUnexpectedTypeError(expr ast.Expression, v model.Value, expected string) *Error {
	err := env.newError(expr, "Expected ", expected, ", but this has evaluated to ", typeName{v}, ":")
	if _, ok := v.(model.HashEx); ok && strings.Contains(expected, "sequence") {
		err.tip("If you want to list the key-value pairs of a hash, use <#list myHash as key, value>.")
	}
	if strings.HasPrefix(expected, "string") {
		switch v.(type) {
		case model.Sequence, model.Collection:
			err.tip("If you want to join the items of the sequence, use ?join(\", \").")
		case model.HashEx:
			err.tip("If you want to print the keys of the hash, use ?keys?join(\", \").")
		case model.Boolean:
			err.tip("A boolean can be printed with ?c, or with ?string(\"yes\", \"no\").")
		}
	}
	if _, ok := v.(model.Function); ok {
		err.tip("Maybe you have forgotten the parentheses of the function call, as in myFunction().")
	}
	return err
}

// newArgumentError returns an error for an invalid argument of a built-in
// method.
func newArgumentError(name string, i int, format string, args ...interface{}) error {
	return fmt.Errorf("The %s argument to ?%s(...) %s", ordinal(i+1), name, fmt.Sprintf(format, args...))
}

// ordinal returns the ordinal of n in English, as "1st".
func ordinal(n int) string {
	suffix := "th"
	switch n % 10 {
	case 1:
		if n%100 != 11 {
			suffix = "st"
		}
	case 2:
		if n%100 != 12 {
			suffix = "nd"
		}
	case 3:
		if n%100 != 13 {
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

// ParseError is an error occurred building a tree, as an unknown built-in
// name.
type ParseError struct {
	Path string       // name of the template
	Pos  ast.Position // position of the node
	Err  error        // error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Pos, e.Err)
	}
	return fmt.Sprintf("%s:%s: %s", e.Path, e.Pos, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
