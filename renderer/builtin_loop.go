// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package renderer

import (
	"github.com/open2b/ftl/ast"
	"github.com/open2b/ftl/model"
)

// loopBuiltIns are the built-ins of the loop variables, as item?index.
var loopBuiltIns = map[string]builtInFunc{
	"index":           loopFunc(func(c *IterationContext) model.Value { return model.IntNum(int64(c.Index())) }),
	"counter":         loopFunc(func(c *IterationContext) model.Value { return model.IntNum(int64(c.Index() + 1)) }),
	"has_next":        loopFunc(func(c *IterationContext) model.Value { return model.Bool(c.HasNext()) }),
	"is_first":        loopFunc(func(c *IterationContext) model.Value { return model.Bool(c.Index() == 0) }),
	"is_last":         loopFunc(func(c *IterationContext) model.Value { return model.Bool(!c.HasNext()) }),
	"is_even_item":    loopFunc(func(c *IterationContext) model.Value { return model.Bool(c.Index()%2 == 1) }),
	"is_odd_item":     loopFunc(func(c *IterationContext) model.Value { return model.Bool(c.Index()%2 == 0) }),
	"item_parity":     loopFunc(func(c *IterationContext) model.Value { return itemParity(c, "odd", "even") }),
	"item_parity_cap": loopFunc(func(c *IterationContext) model.Value { return itemParity(c, "Odd", "Even") }),
	"item_cycle":      builtInItemCycle,
}

// iterationContext returns the iteration context of the loop variable
// that is the target of n.
func (env *Environment) iterationContext(n *ast.BuiltIn) *IterationContext {
	id, ok := n.Target.(*ast.Identifier)
	if !ok {
		panic(env.newError(n.Target, "The left hand operand of ?", n.Name, " must be a loop variable."))
	}
	c := env.FindEnclosingIterationContext(id.Name)
	if c == nil {
		panic(env.newError(n.Target, "The left hand operand of ?", n.Name, " must be a loop variable, but there's no loop variable ",
			quoted{id.Name}, " in scope."))
	}
	return c
}

// loopFunc returns a built-in that returns a property of the iteration
// with the loop variable that is the target.
func loopFunc(f func(c *IterationContext) model.Value) builtInFunc {
	return func(env *Environment, n *ast.BuiltIn) model.Value {
		return f(env.iterationContext(n))
	}
}

func itemParity(c *IterationContext, odd, even string) model.Value {
	if c.Index()%2 == 0 {
		return model.SimpleString(odd)
	}
	return model.SimpleString(even)
}

// builtInItemCycle implements ?item_cycle(values...), that returns the
// values in turn, one for each iteration.
func builtInItemCycle(env *Environment, n *ast.BuiltIn) model.Value {
	c := env.iterationContext(n)
	return env.newMethod(n, 1, -1, func(args methodArgs) model.Value {
		return args.value(c.Index() % args.len())
	})
}
