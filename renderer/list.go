// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package renderer

import (
	"github.com/open2b/ftl/ast"
	"github.com/open2b/ftl/model"
)

// IterationContext is the local context of a #list directive.
type IterationContext struct {
	listed      model.Value
	hashListing bool
	loopVars    []string
	iter        itemIterator
	key, value  model.Value
	index       int
	hasNext     bool
	entered     bool
}

// LoopVars returns the names of the loop variables. It returns nil if the
// #list directive does not declare them and no #items is executing.
func (c *IterationContext) LoopVars() []string { return c.loopVars }

// Index returns the 0-based index of the current item.
func (c *IterationContext) Index() int { return c.index }

// HasNext reports whether the current item is not the last one.
func (c *IterationContext) HasNext() bool { return c.hasNext }

// Listed returns the listed value.
func (c *IterationContext) Listed() model.Value { return c.listed }

func (c *IterationContext) localVariable(name string) (model.Value, bool) {
	if len(c.loopVars) == 0 {
		return nil, false
	}
	loopVar := c.loopVars[0]
	switch name {
	case loopVar:
		if c.hashListing {
			return c.key, true
		}
		return c.value, true
	case loopVar + "_index":
		return model.IntNum(int64(c.index)), true
	case loopVar + "_has_next":
		return model.Bool(c.hasNext), true
	}
	if len(c.loopVars) > 1 && name == c.loopVars[1] {
		return c.value, true
	}
	return nil, false
}

// hasLoopVar reports whether name is one of the loop variables.
func (c *IterationContext) hasLoopVar(name string) bool {
	for _, v := range c.loopVars {
		if v == name {
			return true
		}
	}
	return false
}

// FindEnclosingIterationContext returns the innermost iteration context
// that has a loop variable with the given name. If name is empty, it
// returns the innermost iteration context. It returns nil if there is no
// such context.
func (env *Environment) FindEnclosingIterationContext(name string) *IterationContext {
	for i := len(env.locals) - 1; i >= 0; i-- {
		c, ok := env.locals[i].(*IterationContext)
		if !ok {
			continue
		}
		if name == "" || c.hasLoopVar(name) {
			return c
		}
	}
	return nil
}

// itemIterator iterates over the items of a listed value. For a hash
// listing the key is not nil.
type itemIterator interface {
	hasNext() (bool, error)
	next() (key, value model.Value, err error)
}

type valueIterator struct{ it model.Iterator }

func (i valueIterator) hasNext() (bool, error) { return i.it.HasNext() }

func (i valueIterator) next() (model.Value, model.Value, error) {
	v, err := i.it.Next()
	return nil, v, err
}

type pairIterator struct{ it model.PairIterator }

func (i pairIterator) hasNext() (bool, error) { return i.it.HasNext() }

func (i pairIterator) next() (model.Value, model.Value, error) {
	p, err := i.it.Next()
	return p.Key, p.Value, err
}

// openIterator opens the iterator over the value v of the listed
// expression.
//
// For a listing that is not a hash listing, a value that is both a
// sequence and a collection is iterated as a sequence.
func (env *Environment) openIterator(listed ast.Expression, v model.Value, hashListing bool) (itemIterator, error) {
	if hashListing {
		h, ok := v.(model.HashEx)
		if !ok {
			if _, ok := v.(model.Hash); ok {
				return nil, env.newError(listed, "The value you try to list is a hash, but it doesn't support ",
					"the listing of its keys and values (it's not an extended hash): ", typeName{v})
			}
			err := env.newUnexpectedTypeError(listed, v, "an extended hash")
			if _, ok := v.(model.Iterable); ok {
				err.tip("The listed value is not a hash, so you should declare one loop variable only, as in <#list seq as item>.")
			}
			return nil, err
		}
		it, err := h.Pairs()
		if err != nil {
			return nil, env.newError(listed, "Failed to list the hash: ", err.Error()).withCause(err)
		}
		return pairIterator{it}, nil
	}
	switch s := v.(type) {
	case model.Sequence:
		return valueIterator{model.SequenceIterator(s)}, nil
	case model.Iterable:
		it, err := s.Iterator()
		if err != nil {
			return nil, env.newError(listed, "Failed to list the value: ", err.Error()).withCause(err)
		}
		return valueIterator{it}, nil
	case model.HashEx:
		return nil, env.newError(listed, "The value you try to list is an extended hash, but you have declared ",
			"only one loop variable. To list the keys and values, declare two loop variables, as in ",
			"<#list hash as key, value>.").tip("To list only the keys or the values, use hash?keys or hash?values.")
	}
	return nil, env.newUnexpectedTypeError(listed, v, "a sequence or collection")
}

// executeList executes a #list directive. nonEmpty reports whether the
// listed value had at least one item.
func (env *Environment) executeList(n *ast.List) (nonEmpty bool, flow Flow, err error) {
	v, err := env.eval(n.Listed)
	if err != nil {
		return false, FlowNormal, err
	}
	if v == nil {
		return false, FlowNormal, env.newInvalidReferenceError(n.Listed)
	}
	hashListing := n.IsHashListing()
	it, err := env.openIterator(n.Listed, v, hashListing)
	if err != nil {
		return false, FlowNormal, err
	}
	ctx := &IterationContext{
		listed:      v,
		hashListing: hashListing,
		loopVars:    n.LoopVars(),
		iter:        it,
	}
	env.pushLocal(ctx)
	defer env.popLocal()
	if n.LoopVar == "" {
		// The iterator is kept for a nested #items.
		nonEmpty, err = it.hasNext()
		if err != nil {
			return false, FlowNormal, env.newError(n.Listed, "Failed to list the value: ", err.Error()).withCause(err)
		}
		if !nonEmpty {
			return false, FlowNormal, nil
		}
		ctx.hasNext = true
		flow, err = env.executeChildren(n)
		return true, flow, err
	}
	return env.iterate(n, ctx)
}

// iterate executes the children of body for each item of the iteration
// context ctx.
func (env *Environment) iterate(body ast.Element, ctx *IterationContext) (bool, Flow, error) {
	nonEmpty := false
	hasNext, err := ctx.iter.hasNext()
	for err == nil && hasNext {
		nonEmpty = true
		ctx.key, ctx.value, err = ctx.iter.next()
		if err != nil {
			break
		}
		hasNext, err = ctx.iter.hasNext()
		if err != nil {
			break
		}
		ctx.hasNext = hasNext
		flow, err := env.executeChildren(body)
		if err != nil {
			return nonEmpty, flow, err
		}
		switch flow {
		case FlowBreak:
			return nonEmpty, FlowNormal, nil
		case FlowReturn:
			return nonEmpty, flow, nil
		}
		ctx.index++
	}
	if err != nil {
		return nonEmpty, FlowNormal, env.newError(nil, "Failed to get the next item of the listed value: ", err.Error()).withCause(err)
	}
	return nonEmpty, FlowNormal, nil
}

// executeItems executes an #items directive.
func (env *Environment) executeItems(n *ast.Items) (Flow, error) {
	ctx := env.FindEnclosingIterationContext("")
	if ctx == nil || len(ctx.loopVars) > 0 && !ctx.entered {
		return FlowNormal, env.newError(n, "#items must be inside a #list block that has no loop variables.")
	}
	if ctx.entered {
		return FlowNormal, env.newError(n, "The #items directive was already entered earlier for this listing.")
	}
	if hashListing := n.LoopVar2 != ""; hashListing != ctx.hashListing {
		if hashListing {
			return FlowNormal, env.newError(n, "#items declares two loop variables, but the #list directive ",
				"doesn't list a hash. Declare only one loop variable.")
		}
		return FlowNormal, env.newError(n, "#items declares one loop variable, but the listed value is listed ",
			"as a hash. Declare two loop variables.")
	}
	ctx.entered = true
	ctx.loopVars = n.LoopVars()
	_, flow, err := env.iterate(n, ctx)
	ctx.loopVars = nil
	return flow, err
}

// executeSep executes a #sep directive.
func (env *Environment) executeSep(n *ast.Sep) (Flow, error) {
	ctx := env.FindEnclosingIterationContext("")
	if ctx == nil {
		return FlowNormal, env.newError(n, "#sep must be inside a #list or an #items block.")
	}
	if !ctx.hasNext {
		return FlowNormal, nil
	}
	return env.executeChildren(n)
}
