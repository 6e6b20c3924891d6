// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yamltree

import (
	"github.com/open2b/ftl/ast"

	"gopkg.in/yaml.v3"
)

// assignmentOperators maps the operators of the "op" key of an assignment
// to the assignment operators.
var assignmentOperators = map[string]ast.AssignmentOperator{
	"=":  ast.AssignmentSimple,
	"+=": ast.AssignmentAddition,
	"-=": ast.AssignmentSubtraction,
	"*=": ast.AssignmentMultiplication,
	"/=": ast.AssignmentDivision,
	"%=": ast.AssignmentModulo,
	"++": ast.AssignmentIncrement,
	"--": ast.AssignmentDecrement,
}

var assignmentScopes = map[string]ast.AssignmentScope{
	"assign": ast.ScopeAssign,
	"global": ast.ScopeGlobal,
	"local":  ast.ScopeLocal,
}

// element returns the element represented by n.
func element(n *yaml.Node) ast.Element {
	switch n.Kind {
	case yaml.ScalarNode:
		return ast.NewStaticText(pos(n), n.Value)
	case yaml.MappingNode:
	default:
		fail(n, "expecting a text or a directive")
	}
	m := newMapping(n)
	p := pos(n)
	switch m.kind {
	case "text":
		m.check("text")
		return ast.NewStaticText(p, scalar(m.get("text")))
	case "noparse":
		m.check("noparse")
		t := ast.NewStaticText(p, scalar(m.get("noparse")))
		t.Unparsed = true
		return t
	case "interpolation":
		m.check("interpolation")
		return ast.NewInterpolation(p, expression(m.get("interpolation")))
	case "block":
		m.check("block")
		return ast.NewBlock(p, body(m.get("block"))...)
	case "if":
		return ifElement(m)
	case "list":
		m.check("list", "as", "body", "else")
		var loopVar, loopVar2 string
		if v := m.get("as"); v != nil {
			loopVar, loopVar2 = loopVars(v)
		}
		list := ast.NewList(p, expression(m.get("list")), loopVar, loopVar2, body(m.get("body"))...)
		if v := m.get("else"); v != nil {
			return ast.NewListElseContainer(p, list, ast.NewElseOfList(pos(v), body(v)...))
		}
		return list
	case "items":
		m.check("items", "body")
		loopVar, loopVar2 := loopVars(m.get("items"))
		return ast.NewItems(p, loopVar, loopVar2, body(m.get("body"))...)
	case "sep":
		m.check("sep")
		return ast.NewSep(p, body(m.get("sep"))...)
	case "break":
		m.check("break")
		return ast.NewBreak(p)
	case "continue":
		m.check("continue")
		return ast.NewContinue(p)
	case "assign", "global", "local":
		return assignment(m)
	case "macro", "function":
		return macro(m)
	case "return":
		m.check("return")
		return ast.NewReturn(p, optionalExpression(m.get("return")))
	case "call":
		return dynamicCall(m)
	case "nested":
		m.check("nested")
		var args []ast.Expression
		if v := m.get("nested"); !isNull(v) {
			args = expressions(v)
		}
		return ast.NewNested(p, args...)
	case "comment":
		m.check("comment")
		return ast.NewComment(p, scalar(m.get("comment")))
	case "setting":
		m.check("setting", "value")
		return ast.NewSetting(p, scalar(m.get("setting")), expression(m.must("value")))
	case "stop":
		m.check("stop")
		return ast.NewStop(p, optionalExpression(m.get("stop")))
	case "attempt":
		m.check("attempt", "recover")
		attempted := ast.NewBlock(pos(m.get("attempt")), body(m.get("attempt"))...)
		v := m.must("recover")
		return ast.NewAttempt(p, attempted, ast.NewRecover(pos(v), body(v)...))
	case "trim":
		m.check("trim")
		switch kind := scalar(m.get("trim")); kind {
		case "t":
			return ast.NewTrimDirective(p, true, true)
		case "lt":
			return ast.NewTrimDirective(p, true, false)
		case "rt":
			return ast.NewTrimDirective(p, false, true)
		case "nt":
			return ast.NewTrimDirective(p, false, false)
		default:
			fail(m.get("trim"), "unknown trim directive %q", kind)
		}
	}
	fail(n, "unknown directive %q", m.kind)
	return nil
}

// ifElement returns the conditional element represented by m. Without
// "elseif" and "else" keys, it is a single #if block.
//
//	if: {ident: x}
//	then: [...]
//	elseif:
//	  - if: {ident: y}
//	    then: [...]
//	else: [...]
func ifElement(m mapping) ast.Element {
	m.check("if", "then", "elseif", "else")
	p := pos(m.node)
	first := ast.NewConditionalBlock(p, ast.ConditionIf, expression(m.get("if")), body(m.get("then"))...)
	elseIfs, elseBody := m.get("elseif"), m.get("else")
	if elseIfs == nil && elseBody == nil {
		return first
	}
	blocks := []*ast.ConditionalBlock{first}
	if elseIfs != nil {
		if elseIfs.Kind != yaml.SequenceNode {
			fail(elseIfs, "elseif: expecting a sequence")
		}
		for _, c := range elseIfs.Content {
			if c.Kind != yaml.MappingNode {
				fail(c, "elseif: expecting a mapping")
			}
			b := newMapping(c)
			b.check("if", "then")
			blocks = append(blocks, ast.NewConditionalBlock(pos(c), ast.ConditionElseIf,
				expression(b.must("if")), body(b.get("then"))...))
		}
	}
	if elseBody != nil {
		blocks = append(blocks, ast.NewConditionalBlock(pos(elseBody), ast.ConditionElse, nil, body(elseBody)...))
	}
	return ast.NewIf(p, blocks...)
}

// loopVars returns the loop variables of a #list or an #items, a name or
// a sequence of two names for a hash listing.
func loopVars(n *yaml.Node) (string, string) {
	vars := names(n)
	switch len(vars) {
	case 1:
		return vars[0], ""
	case 2:
		return vars[0], vars[1]
	}
	fail(n, "expecting one or two loop variables")
	return "", ""
}

// assignment returns the assignment represented by m.
//
//	assign: x
//	value: 5
//	op: +=
//
// Without "value", the body is captured.
func assignment(m mapping) ast.Element {
	m.check(m.kind, "value", "op", "body")
	p := pos(m.node)
	scope := assignmentScopes[m.kind]
	target := scalar(m.get(m.kind))
	if b := m.get("body"); b != nil {
		if m.get("value") != nil || m.get("op") != nil {
			fail(m.node, "%s: a capturing assignment can't have a value or an operator", m.kind)
		}
		return ast.NewCapturingAssignment(p, scope, target, body(b)...)
	}
	op := ast.AssignmentSimple
	if v := m.get("op"); v != nil {
		var ok bool
		op, ok = assignmentOperators[scalar(v)]
		if !ok {
			fail(v, "unknown assignment operator %q", v.Value)
		}
	}
	if op == ast.AssignmentIncrement || op == ast.AssignmentDecrement {
		if m.get("value") != nil {
			fail(m.node, "%s: the operator %s can't have a value", m.kind, op)
		}
		return ast.NewAssignment(p, scope, target, op, nil)
	}
	return ast.NewAssignment(p, scope, target, op, expression(m.must("value")))
}

// macro returns the macro or function definition represented by m.
//
//	macro: greet
//	params: [name, {name: greeting, default: Hello}]
//	catchall: rest
//	body: [...]
func macro(m mapping) ast.Element {
	m.check(m.kind, "params", "catchall", "body")
	var params []ast.MacroParameter
	if v := m.get("params"); !isNull(v) {
		if v.Kind != yaml.SequenceNode {
			fail(v, "params: expecting a sequence")
		}
		for _, c := range v.Content {
			params = append(params, macroParameter(c))
		}
	}
	var catchAll string
	if v := m.get("catchall"); v != nil {
		catchAll = scalar(v)
	}
	return ast.NewMacro(pos(m.node), scalar(m.get(m.kind)), m.kind == "function", params, catchAll, body(m.get("body"))...)
}

// macroParameter returns the parameter represented by n, a name or a
// mapping with the keys "name", "default" and "positional".
func macroParameter(n *yaml.Node) ast.MacroParameter {
	if n.Kind == yaml.ScalarNode {
		return ast.MacroParameter{Name: n.Value}
	}
	if n.Kind != yaml.MappingNode {
		fail(n, "expecting a parameter")
	}
	m := newMapping(n)
	m.check("name", "default", "positional")
	p := ast.MacroParameter{Name: scalar(m.must("name"))}
	if v := m.get("default"); v != nil {
		p.Default = expression(v)
	}
	if v := m.get("positional"); v != nil {
		if err := v.Decode(&p.Positional); err != nil {
			fail(v, "positional: %s", err)
		}
	}
	return p
}

// dynamicCall returns the directive call represented by m. The callee is a
// name or an expression.
//
//	call: greet
//	args: [...]
//	named: {name: World}
//	params: [x, y]
//	body: [...]
func dynamicCall(m mapping) ast.Element {
	m.check("call", "args", "named", "params", "body")
	v := m.get("call")
	var callee ast.Expression
	if v.Kind == yaml.ScalarNode {
		callee = ast.NewIdentifier(pos(v), v.Value)
	} else {
		callee = expression(v)
	}
	var args []ast.Expression
	if a := m.get("args"); !isNull(a) {
		args = expressions(a)
	}
	var named []ast.NamedArgument
	if a := m.get("named"); !isNull(a) {
		named = namedArguments(a)
	}
	var nestedParams []string
	if a := m.get("params"); !isNull(a) {
		nestedParams = names(a)
	}
	return ast.NewDynamicCall(pos(m.node), callee, args, named, nestedParams, body(m.get("body"))...)
}
