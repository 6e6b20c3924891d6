// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package renderer

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/open2b/ftl/ast"
	"github.com/open2b/ftl/model"
)

// templateCallable is a macro or a function defined in a template.
type templateCallable struct {
	node      *ast.Macro
	namespace *model.SimpleHash
	layout    *model.ArgumentLayout
}

// Macro is a macro defined in a template. It implements model.Directive.
type Macro struct{ templateCallable }

// Function is a function defined in a template. It implements
// model.Function.
type Function struct{ templateCallable }

// newTemplateCallable returns the value of the macro or function defined by
// n in the namespace ns.
func newTemplateCallable(n *ast.Macro, ns *model.SimpleHash) model.Value {
	c := templateCallable{node: n, namespace: ns, layout: n.ArgumentLayout()}
	if n.Function {
		return &Function{c}
	}
	return &Macro{c}
}

// Name returns the name of the macro.
func (c *templateCallable) Name() string { return c.node.Name }

// ArgumentLayout returns the argument layout.
func (c *templateCallable) ArgumentLayout() *model.ArgumentLayout { return c.layout }

// Execute executes the macro.
func (m *Macro) Execute(args []model.Value, w io.Writer, call model.CallPlace) error {
	cp, ok := call.(*callPlace)
	if !ok {
		return fmt.Errorf("macro %q can only be called from a template", m.node.Name)
	}
	env := cp.env
	out := env.out
	env.out = w
	_, err := env.invoke(&m.templateCallable, args, cp)
	env.out = out
	return err
}

// Call calls the function.
func (f *Function) Call(args []model.Value, call model.CallPlace) (model.Value, error) {
	cp, ok := call.(*callPlace)
	if !ok {
		return nil, fmt.Errorf("function %q can only be called from a template", f.node.Name)
	}
	env := cp.env
	out := env.out
	env.out = io.Discard
	v, err := env.invoke(&f.templateCallable, args, cp)
	env.out = out
	return v, err
}

// macroContext is the context of an executing macro or function.
type macroContext struct {
	node   *ast.Macro
	locals *model.SimpleHash
	caller *callPlace
	result model.Value
}

// invoke executes the body of the macro or function c with the arguments
// args, bound according to its argument layout.
func (env *Environment) invoke(c *templateCallable, args []model.Value, cp *callPlace) (model.Value, error) {
	ctx := &macroContext{node: c.node, locals: &model.SimpleHash{}, caller: cp}
	prevMacro, prevLocals, prevNamespace := env.macro, env.locals, env.namespace
	env.macro, env.locals, env.namespace = ctx, nil, c.namespace
	env.stack = append(env.stack, c.node)
	err := env.bindParameters(c, ctx, args)
	var flow Flow
	if err == nil {
		flow, err = env.executeChildren(c.node)
	}
	env.stack = env.stack[:len(env.stack)-1]
	env.macro, env.locals, env.namespace = prevMacro, prevLocals, prevNamespace
	if err != nil {
		return nil, err
	}
	switch flow {
	case FlowBreak, FlowContinue:
		return nil, env.newError(cp.node, flowError(flow).Error(), "; it can't break out of the ", c.node.Label(), " ", quoted{c.node.Name}, ".")
	}
	return ctx.result, nil
}

// bindParameters binds the arguments to the parameters of c, evaluating the
// default values of the missing ones in the scope of the callee.
func (env *Environment) bindParameters(c *templateCallable, ctx *macroContext, args []model.Value) error {
	for i, p := range c.node.SlotParams() {
		var v model.Value
		if i < len(args) {
			v = args[i]
		}
		if v == nil && p.Default != nil {
			var err error
			v, err = env.eval(p.Default)
			if err != nil {
				return err
			}
		}
		if v == nil {
			return env.newError(c.node, "When calling ", c.node.Label()[1:], " ", quoted{c.node.Name},
				", required parameter ", quoted{p.Name}, " (parameter #", i+1, ") was not specified.")
		}
		ctx.locals.Put(p.Name, v)
	}
	if c.node.CatchAll != "" {
		var v model.Value
		if i := c.layout.PositionalVarargsIndex(); i >= 0 && i < len(args) {
			v = args[i]
		} else if i := c.layout.NamedVarargsIndex(); i >= 0 && i < len(args) {
			v = args[i]
		}
		if v == nil {
			if c.node.Function {
				v = model.EmptySequence
			} else {
				v = model.EmptyHash
			}
		}
		ctx.locals.Put(c.node.CatchAll, v)
	}
	return nil
}

// callPlace is the place of a call. It implements model.CallPlace.
type callPlace struct {
	env       *Environment
	node      *ast.DynamicCall
	namespace *model.SimpleHash
	locals    []localContext
	macro     *macroContext
}

// newCallPlace returns the call place of the call n, capturing the state
// of the caller. n is nil for function calls.
func (env *Environment) newCallPlace(n *ast.DynamicCall) *callPlace {
	return &callPlace{
		env:       env,
		node:      n,
		namespace: env.namespace,
		locals:    env.locals[:len(env.locals):len(env.locals)],
		macro:     env.macro,
	}
}

// HasNestedContent reports whether the call has a nested content.
func (cp *callPlace) HasNestedContent() bool {
	return cp.node != nil && cp.node.ChildCount() > 0
}

// NestedContentParameterCount returns the number of the nested content
// parameters declared by the call.
func (cp *callPlace) NestedContentParameterCount() int {
	if cp.node == nil {
		return 0
	}
	return len(cp.node.NestedParams)
}

// ExecuteNestedContent executes the nested content of the call, writing to
// w, with values as values of the nested content parameters. The nested
// content is executed in the namespace and the local contexts of the
// caller.
func (cp *callPlace) ExecuteNestedContent(values []model.Value, w io.Writer) error {
	if cp.node == nil {
		return nil
	}
	env := cp.env
	if len(values) != len(cp.node.NestedParams) {
		return env.newError(cp.node, nestedParamsMismatch(cp.node.NestedParams, len(values)))
	}
	if cp.node.ChildCount() == 0 {
		return nil
	}
	out, locals, macro, namespace := env.out, env.locals, env.macro, env.namespace
	env.out, env.locals, env.macro, env.namespace = w, cp.locals, cp.macro, cp.namespace
	if len(values) > 0 {
		env.pushLocal(&nestedContentContext{names: cp.node.NestedParams, values: values})
	}
	flow, err := env.executeChildren(cp.node)
	env.out, env.locals, env.macro, env.namespace = out, locals, macro, namespace
	if err != nil {
		return err
	}
	return flowError(flow)
}

// nestedParamsMismatch returns the message of the error for a nested
// content called with count values, when params are declared.
func nestedParamsMismatch(params []string, count int) string {
	var b strings.Builder
	b.WriteString("The invocation declares ")
	if len(params) == 0 {
		b.WriteString("no")
	} else {
		b.WriteString(strconv.Itoa(len(params)))
	}
	b.WriteString(" nested content parameter(s)")
	if len(params) > 0 {
		b.WriteString(" (")
		for i, p := range params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(p))
		}
		b.WriteString(")")
	}
	b.WriteString(", but the called object intends to pass ")
	b.WriteString(strconv.Itoa(count))
	b.WriteString(" parameters. You need to declare ")
	b.WriteString(strconv.Itoa(count))
	b.WriteString(" nested content parameters.")
	return b.String()
}

// CustomData returns the custom data of the call place for the given
// provider, creating it with create if it is not present.
func (cp *callPlace) CustomData(provider interface{}, create func() (interface{}, error)) (interface{}, error) {
	if cp.node == nil {
		return create()
	}
	return cp.node.CustomData(provider, create)
}

// call executes a directive call.
func (env *Environment) call(n *ast.DynamicCall) (Flow, error) {
	callee, err := env.eval(n.Callee)
	if err != nil {
		return FlowNormal, err
	}
	if callee == nil {
		return FlowNormal, env.newInvalidReferenceError(n.Callee)
	}
	d, ok := callee.(model.Directive)
	if !ok {
		err := env.newUnexpectedTypeError(n.Callee, callee, "a directive (like a macro)")
		if _, ok := callee.(model.Function); ok {
			err.tip("Functions are called in expressions, as in ${myFunction(1, 2)}.")
		}
		return FlowNormal, err
	}
	args, err := env.bindArguments(n, callableDescription(callee), d.ArgumentLayout(), n.Args, n.Named)
	if err != nil {
		return FlowNormal, err
	}
	err = d.Execute(args, env.out, env.newCallPlace(n))
	if err != nil {
		if flow, ok := errorFlow(err); ok {
			return flow, nil
		}
		var e *Error
		if !errors.As(err, &e) {
			err = env.newError(n, "The called directive has failed: ", err.Error()).withCause(err)
		}
		return FlowNormal, err
	}
	return FlowNormal, nil
}

// executeNested executes a #nested directive.
func (env *Environment) executeNested(n *ast.Nested) error {
	if env.macro == nil {
		return env.newError(n, "#nested can only be used inside a macro.")
	}
	values := make([]model.Value, len(n.Args))
	for i, arg := range n.Args {
		v, err := env.eval(arg)
		if err != nil {
			return err
		}
		values[i] = v
	}
	caller := env.macro.caller
	if caller == nil || caller.node == nil {
		return nil
	}
	return caller.ExecuteNestedContent(values, env.out)
}

// callableDescription returns the description of a callable value used in
// the error messages, as `macro "m"`.
func callableDescription(v model.Value) string {
	switch c := v.(type) {
	case *Macro:
		return "macro " + strconv.Quote(c.node.Name)
	case *Function:
		return "function " + strconv.Quote(c.node.Name)
	case *method:
		return "?" + c.name + "(...)"
	case model.Directive:
		return fmt.Sprintf("directive (%T)", v)
	}
	return fmt.Sprintf("function (%T)", v)
}

// bindArguments evaluates the arguments of a call and binds them to the
// slots of layout. The returned slice has a value for each slot; the
// missing arguments are nil, except the varargs slots that default to an
// empty sequence and an empty hash.
func (env *Environment) bindArguments(n ast.Node, callee string, layout *model.ArgumentLayout, args []ast.Expression, named []ast.NamedArgument) ([]model.Value, error) {
	if layout.Len() == 0 {
		if len(args) > 0 || len(named) > 0 {
			return nil, env.newError(n, "The called ", callee, " doesn't support any parameters.")
		}
		return nil, nil
	}
	values := make([]model.Value, layout.Len())
	if len(args) > layout.PositionalCount && !layout.PositionalVarargs {
		msg := []interface{}{"The called ", callee}
		if layout.PositionalCount == 0 {
			msg = append(msg, " can't have arguments passed by position")
		} else {
			msg = append(msg, " can only have ", layout.PositionalCount, " arguments passed by position")
		}
		msg = append(msg, ", but the invocation has ", len(args), " such arguments.")
		if layout.AcceptsNamed() {
			msg = append(msg, " Try to pass arguments by name (as in <@example x=1 y=2 />).")
			if len(layout.Named) > 0 {
				msg = append(msg, " The supported parameter names are:\n", quotedNames(layout.Named))
			}
		}
		return nil, env.newError(n, msg...)
	}
	var varargs model.SimpleSequence
	for i, arg := range args {
		v, err := env.eval(arg)
		if err != nil {
			return nil, err
		}
		if i < layout.PositionalCount {
			values[i] = v
		} else {
			varargs = append(varargs, v)
		}
	}
	if layout.PositionalVarargs {
		if varargs == nil {
			varargs = model.EmptySequence
		}
		values[layout.PositionalVarargsIndex()] = varargs
	}
	var namedVarargs *model.SimpleHash
	for _, arg := range named {
		i := layout.NamedIndex(arg.Name)
		if i < 0 && !layout.NamedVarargs {
			if len(layout.Named) == 0 {
				return nil, env.newError(n, "The called ", callee, " can't have arguments that are passed by name (like ",
					quoted{arg.Name}, "). Try to pass arguments by position (i.e, without name, as in <@example arg1, arg2, arg3 />).")
			}
			return nil, env.newError(n, "The called ", callee, " has no parameter that's passed by name and is called ",
				quoted{arg.Name}, ". The supported parameter names are:\n", quotedNames(layout.Named))
		}
		v, err := env.eval(arg.Value)
		if err != nil {
			return nil, err
		}
		if i >= 0 {
			values[i] = v
			continue
		}
		if namedVarargs == nil {
			namedVarargs = &model.SimpleHash{}
		}
		namedVarargs.Put(arg.Name, v)
	}
	if layout.NamedVarargs {
		if namedVarargs == nil {
			values[layout.NamedVarargsIndex()] = model.EmptyHash
		} else {
			values[layout.NamedVarargsIndex()] = namedVarargs
		}
	}
	return values, nil
}

// quotedNames returns the names quoted and separated by a comma.
func quotedNames(names []string) string {
	q := make([]string, len(names))
	for i, name := range names {
		q[i] = strconv.Quote(name)
	}
	return strings.Join(q, ", ")
}
