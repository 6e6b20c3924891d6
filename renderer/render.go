// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package renderer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/open2b/ftl/ast"
	"github.com/open2b/ftl/format"
	"github.com/open2b/ftl/model"

	"golang.org/x/text/language"
)

// Flow is the control flow resulting from the execution of an element.
type Flow int

const (
	FlowNormal   Flow = iota // continues with the next element
	FlowBreak                // exits from the innermost loop
	FlowContinue             // continues with the next iteration of the innermost loop
	FlowReturn               // returns from the macro or the function
)

// errBreak, errContinue and errReturn are returned executing a nested
// content when it breaks, continues or returns. They are turned back into
// a flow by the directive call that has the nested content.
var (
	errBreak    = errors.New("#break must be inside a loop")
	errContinue = errors.New("#continue must be inside a loop")
	errReturn   = errors.New("#return must be inside a macro or a function")
)

// flowError returns the error that represents the flow f.
func flowError(f Flow) error {
	switch f {
	case FlowBreak:
		return errBreak
	case FlowContinue:
		return errContinue
	case FlowReturn:
		return errReturn
	}
	return nil
}

// errorFlow returns the flow represented by err, if err represents a flow.
func errorFlow(err error) (Flow, bool) {
	switch err {
	case errBreak:
		return FlowBreak, true
	case errContinue:
		return FlowContinue, true
	case errReturn:
		return FlowReturn, true
	}
	return FlowNormal, false
}

// Environment is the environment of a rendering. It is not safe for
// concurrent use; the same tree can instead be rendered concurrently by
// different environments.
type Environment struct {
	settings  Settings
	locale    language.Tag
	location  *time.Location
	collator  *format.Collator
	format    *outputFormat
	root      model.Hash
	globals   *model.SimpleHash
	main      *model.SimpleHash
	namespace *model.SimpleHash
	out       io.Writer
	stack     []ast.Element
	locals    []localContext
	macro     *macroContext
	recovered []*Error
	template  *ast.Template
}

// NewEnvironment returns a new environment that renders to out with the
// data model root and the given settings. If settings is nil, the default
// settings are used.
func NewEnvironment(root model.Hash, out io.Writer, settings *Settings) (*Environment, error) {
	if out == nil {
		return nil, errors.New("ftl/renderer: out is nil")
	}
	if settings == nil {
		settings = DefaultSettings()
	}
	if root == nil {
		root = model.EmptyHash
	}
	env := &Environment{
		settings: *settings,
		root:     root,
		globals:  &model.SimpleHash{},
		main:     &model.SimpleHash{},
		out:      out,
	}
	env.namespace = env.main
	var err error
	env.locale, err = format.ParseLocale(settings.Locale)
	if err != nil {
		return nil, err
	}
	env.location, err = time.LoadLocation(settings.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("ftl/renderer: invalid time zone %q", settings.TimeZone)
	}
	env.format, err = lookupOutputFormat(settings.OutputFormat)
	if err != nil {
		return nil, err
	}
	return env, nil
}

// Settings returns the current settings. The settings can be changed during
// the rendering by the #setting directive.
func (env *Environment) Settings() Settings {
	return env.settings
}

// Locale returns the current locale.
func (env *Environment) Locale() language.Tag {
	return env.locale
}

// Main returns the main namespace, where #assign defines the variables at
// the top level.
func (env *Environment) Main() model.HashEx {
	return env.main
}

// Globals returns the global namespace, where #global defines the
// variables.
func (env *Environment) Globals() model.HashEx {
	return env.globals
}

// Process executes the tree rooted at tree, writing the output.
//
// If an error occurs evaluating the tree, the returned error is an *Error.
func (env *Environment) Process(tree ast.Element) (err error) {
	if tree == nil {
		return errors.New("ftl/renderer: tree is nil")
	}
	env.template = tree.Template()
	defer func() {
		if r := recover(); r != nil {
			err = env.panicError(r)
			env.stack = env.stack[:0]
		}
	}()
	flow, err := env.execute(tree)
	if err != nil {
		if f, ok := errorFlow(err); ok {
			flow = f
		} else {
			return err
		}
	}
	switch flow {
	case FlowBreak:
		return env.newError(tree, errBreak.Error()+".")
	case FlowContinue:
		return env.newError(tree, errContinue.Error()+".")
	}
	return nil
}

// panicError returns the error for the value r recovered from a
// panic.
func (env *Environment) panicError(r interface{}) *Error {
	switch r := r.(type) {
	case *Error:
		return r
	case error:
		return env.newError(nil, r.Error()).withCause(r)
	}
	return env.newError(nil, fmt.Sprint(r))
}

// execute executes the element e.
func (env *Environment) execute(e ast.Element) (Flow, error) {
	env.stack = append(env.stack, e)
	flow, err := env.executeElement(e)
	env.stack = env.stack[:len(env.stack)-1]
	return flow, err
}

// executeChildren executes the children of e, stopping at the first flow
// that is not normal.
func (env *Environment) executeChildren(e ast.Element) (Flow, error) {
	for _, c := range e.Children() {
		flow, err := env.execute(c)
		if err != nil || flow != FlowNormal {
			return flow, err
		}
	}
	return FlowNormal, nil
}

// executeElement executes e.
func (env *Environment) executeElement(e ast.Element) (Flow, error) {

	switch n := e.(type) {

	case *ast.StaticText:
		if n.Text != "" {
			if _, err := io.WriteString(env.out, n.Text); err != nil {
				return FlowNormal, err
			}
		}

	case *ast.Interpolation:
		v, err := env.eval(n.Expr)
		if err != nil {
			return FlowNormal, err
		}
		return FlowNormal, env.writeValue(n.Expr, v)

	case *ast.If:
		for _, c := range n.Children() {
			block := c.(*ast.ConditionalBlock)
			if block.Condition != nil {
				ok, err := env.evalCondition(block.Condition)
				if err != nil {
					return FlowNormal, err
				}
				if !ok {
					continue
				}
			}
			return env.execute(block)
		}

	case *ast.ConditionalBlock:
		if _, ok := n.Parent().(*ast.If); !ok && n.Condition != nil {
			ok, err := env.evalCondition(n.Condition)
			if err != nil || !ok {
				return FlowNormal, err
			}
		}
		return env.executeChildren(n)

	case *ast.ListElseContainer:
		nonEmpty, flow, err := env.executeList(n.List())
		if err != nil || nonEmpty {
			return flow, err
		}
		return env.execute(n.Else())

	case *ast.List:
		_, flow, err := env.executeList(n)
		return flow, err

	case *ast.Items:
		return env.executeItems(n)

	case *ast.Sep:
		return env.executeSep(n)

	case *ast.Break:
		return FlowBreak, nil

	case *ast.Continue:
		return FlowContinue, nil

	case *ast.Assignment:
		return env.assign(n)

	case *ast.Macro:
		env.namespace.Put(n.Name, newTemplateCallable(n, env.namespace))

	case *ast.Return:
		if n.Value != nil {
			if env.macro == nil || !env.macro.node.Function {
				return FlowNormal, env.newError(n, "Can't return a value from a macro, only from a function.")
			}
			v, err := env.eval(n.Value)
			if err != nil {
				return FlowNormal, err
			}
			env.macro.result = v
		}
		return FlowReturn, nil

	case *ast.DynamicCall:
		return env.call(n)

	case *ast.Nested:
		return FlowNormal, env.executeNested(n)

	case *ast.Setting:
		v, err := env.eval(n.Value)
		if err != nil {
			return FlowNormal, err
		}
		s, err := env.evalString(n.Value, v)
		if err != nil {
			return FlowNormal, err
		}
		if err := env.set(n.Name, s); err != nil {
			return FlowNormal, env.newError(n, err.Error()).withCause(err)
		}

	case *ast.Stop:
		msg := ""
		if n.Message != nil {
			v, err := env.eval(n.Message)
			if err != nil {
				return FlowNormal, err
			}
			msg, err = env.evalString(n.Message, v)
			if err != nil {
				return FlowNormal, err
			}
		}
		if msg == "" {
			return FlowNormal, env.newError(n, "Stop instruction executed.").withCause(ErrStopped)
		}
		return FlowNormal, env.newError(n, "Stop instruction executed: ", msg).withCause(ErrStopped)

	case *ast.Attempt:
		return env.attempt(n)

	case *ast.Block, *ast.ElseOfList, *ast.Recover:
		return env.executeChildren(n)

	case *ast.Comment, *ast.TrimDirective:

	default:
		return FlowNormal, env.newError(e, fmt.Sprintf("unexpected element %T", e))

	}

	return FlowNormal, nil
}

// attempt executes an #attempt directive. The output of the attempted
// section is written only if no error occurs; otherwise the #recover
// section is executed.
func (env *Environment) attempt(n *ast.Attempt) (flow Flow, err error) {
	out := env.out
	stack := len(env.stack)
	locals := env.locals
	macro := env.macro
	namespace := env.namespace
	var b bytes.Buffer
	env.out = &b
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = env.panicError(r)
			}
		}()
		flow, err = env.execute(n.Attempted())
	}()
	env.out = out
	env.stack = env.stack[:stack]
	env.locals = locals
	env.macro = macro
	env.namespace = namespace
	if err == nil {
		_, err = b.WriteTo(out)
		return flow, err
	}
	var e *Error
	if _, ok := errorFlow(err); ok || errors.Is(err, ErrStopped) || !errors.As(err, &e) {
		return flow, err
	}
	env.recovered = append(env.recovered, e)
	flow, err = env.execute(n.Recover())
	env.recovered = env.recovered[:len(env.recovered)-1]
	return flow, err
}

// assign executes an assignment. The returned flow is the flow of the
// captured content, if the assignment captures its nested content.
func (env *Environment) assign(n *ast.Assignment) (Flow, error) {
	var ns *model.SimpleHash
	switch n.Scope {
	case ast.ScopeAssign:
		ns = env.namespace
	case ast.ScopeGlobal:
		ns = env.globals
	case ast.ScopeLocal:
		if env.macro == nil {
			return FlowNormal, env.newError(n, "The #local directive can only be used inside a macro or a function.")
		}
		ns = env.macro.locals
	}
	var value model.Value
	if n.Capture {
		var b bytes.Buffer
		out := env.out
		env.out = &b
		flow, err := env.executeChildren(n)
		env.out = out
		if err != nil {
			return FlowNormal, err
		}
		if env.format.markup && env.settings.AutoEscaping {
			value = model.SimpleMarkup{Format: env.format.name, Text: b.String()}
		} else {
			value = model.SimpleString(b.String())
		}
		ns.Put(n.Target, value)
		return flow, nil
	}
	if n.Op == ast.AssignmentSimple {
		v, err := env.eval(n.Value)
		if err != nil {
			return FlowNormal, err
		}
		if v == nil {
			return FlowNormal, env.newInvalidReferenceError(n.Value)
		}
		ns.Put(n.Target, v)
		return FlowNormal, nil
	}
	current, _ := ns.Get(n.Target)
	if current == nil && n.Scope == ast.ScopeAssign {
		current = env.lookup(n.Target)
	}
	if current == nil {
		return FlowNormal, env.newError(n, "The target variable of the assignment, ", quoted{n.Target}, ", was null or missing.")
	}
	v, err := env.evalSafely(func() model.Value {
		switch n.Op {
		case ast.AssignmentIncrement, ast.AssignmentDecrement:
			x := env.toNumber(nil, current)
			if n.Op == ast.AssignmentIncrement {
				return x.Add(model.IntNum(1))
			}
			return x.Sub(model.IntNum(1))
		case ast.AssignmentAddition:
			right := env.evalValue(n.Value)
			return env.addOrConcat(nil, n.Value, current, right)
		}
		right := env.toNumber(n.Value, env.evalValue(n.Value))
		var op ast.OperatorType
		switch n.Op {
		case ast.AssignmentSubtraction:
			op = ast.OperatorSubtraction
		case ast.AssignmentMultiplication:
			op = ast.OperatorMultiplication
		case ast.AssignmentDivision:
			op = ast.OperatorDivision
		case ast.AssignmentModulo:
			op = ast.OperatorModulo
		}
		return env.arithmetic(n.Value, op, env.toNumber(nil, current), right)
	})
	if err != nil {
		return FlowNormal, err
	}
	ns.Put(n.Target, v)
	return FlowNormal, nil
}

// localContext is a frame of the local context stack.
type localContext interface {
	localVariable(name string) (model.Value, bool)
}

// nestedContentContext is the local context of a nested content, with the
// values of its parameters.
type nestedContentContext struct {
	names  []string
	values []model.Value
}

func (c *nestedContentContext) localVariable(name string) (model.Value, bool) {
	for i, n := range c.names {
		if n == name {
			return c.values[i], true
		}
	}
	return nil, false
}

// pushLocal pushes a local context.
func (env *Environment) pushLocal(c localContext) {
	env.locals = append(env.locals, c)
}

// popLocal pops the innermost local context.
func (env *Environment) popLocal() {
	env.locals[len(env.locals)-1] = nil
	env.locals = env.locals[:len(env.locals)-1]
}

// lookup returns the value of the variable with the given name, or nil if
// it does not exist. The local contexts are searched first, from the
// innermost, then the local variables of the current macro, the current
// namespace, the global namespace and finally the data model.
func (env *Environment) lookup(name string) model.Value {
	for i := len(env.locals) - 1; i >= 0; i-- {
		if v, ok := env.locals[i].localVariable(name); ok && v != nil {
			return v
		}
	}
	if env.macro != nil {
		if v, _ := env.macro.locals.Get(name); v != nil {
			return v
		}
	}
	if v, _ := env.namespace.Get(name); v != nil {
		return v
	}
	if v, _ := env.globals.Get(name); v != nil {
		return v
	}
	v, err := env.root.Get(name)
	if err != nil {
		panic(env.newError(nil, "Failed to get the variable ", quoted{name}, " from the data model: ", err.Error()).withCause(err))
	}
	return v
}

// Variable returns the value of the variable with the given name as it is
// seen by the element that is executing, or nil if it does not exist.
func (env *Environment) Variable(name string) model.Value {
	return env.lookup(name)
}

// varsHash is the value of the .vars built-in variable.
type varsHash struct {
	env *Environment
}

func (h varsHash) Get(key string) (model.Value, error) {
	return h.env.lookup(key), nil
}
