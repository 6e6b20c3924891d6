// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package renderer

import (
	"errors"
	"sort"
	"strings"

	"github.com/open2b/ftl/ast"
	"github.com/open2b/ftl/model"
)

// sequenceBuiltIns are the built-ins of the sequences, the collections and
// the extended hashes.
var sequenceBuiltIns = map[string]builtInFunc{
	"size":              builtInSize,
	"first":             builtInFirst,
	"last":              builtInLast,
	"reverse":           builtInReverse,
	"join":              builtInJoin,
	"seq_contains":      builtInSeqContains,
	"seq_index_of":      seqIndexOfFunc(false),
	"seq_last_index_of": seqIndexOfFunc(true),
	"sort":              builtInSort,
	"sort_by":           builtInSortBy,
	"chunk":             builtInChunk,
	"min":               minMaxFunc(ast.OperatorLess),
	"max":               minMaxFunc(ast.OperatorGreater),
	"keys":              hashCollectionFunc(model.HashEx.Keys),
	"values":            hashCollectionFunc(model.HashEx.Values),
	"filter":            builtInFilter,
	"map":               builtInMap,
}

// items returns the items of v, a sequence or an iterable value.
func (env *Environment) items(expr ast.Expression, v model.Value) []model.Value {
	var items []model.Value
	switch s := v.(type) {
	case model.SimpleSequence:
		return s
	case model.Sequence:
		size, err := s.Len()
		if err != nil {
			panic(env.newError(expr, "Failed to get the size of the sequence: ", err.Error()).withCause(err))
		}
		items = make([]model.Value, size)
		for i := range items {
			items[i], err = s.Index(i)
			if err != nil {
				panic(env.newError(expr, "Failed to get the item at index ", i, ": ", err.Error()).withCause(err))
			}
		}
	case model.Iterable:
		it, err := s.Iterator()
		for err == nil {
			var has bool
			if has, err = it.HasNext(); err != nil || !has {
				break
			}
			var item model.Value
			if item, err = it.Next(); err == nil {
				items = append(items, item)
			}
		}
		if err != nil {
			panic(env.newError(expr, "Failed to list the value: ", err.Error()).withCause(err))
		}
	case nil:
		panic(env.newInvalidReferenceError(expr))
	default:
		panic(env.newUnexpectedTypeError(expr, v, "sequence or collection"))
	}
	return items
}

// targetSequence evaluates the target of n as a sequence.
func (env *Environment) targetSequence(n *ast.BuiltIn) model.Sequence {
	v := env.evalValue(n.Target)
	s, ok := v.(model.Sequence)
	if !ok {
		panic(env.newUnexpectedTypeError(n.Target, v, "sequence"))
	}
	return s
}

// builtInSize implements ?size.
func builtInSize(env *Environment, n *ast.BuiltIn) model.Value {
	v := env.evalValue(n.Target)
	var size int
	var err error
	switch s := v.(type) {
	case model.Sequence:
		size, err = s.Len()
	case model.Collection:
		size, err = s.Len()
	case model.HashEx:
		size, err = s.Len()
	default:
		panic(env.newUnexpectedTypeError(n.Target, v, "extended hash or sequence or collection"))
	}
	if err != nil {
		panic(env.newError(n.Target, "Failed to get the size: ", err.Error()).withCause(err))
	}
	return model.IntNum(int64(size))
}

// builtInFirst implements ?first. For an empty sequence or collection, the
// value is missing.
func builtInFirst(env *Environment, n *ast.BuiltIn) model.Value {
	v := env.evalValue(n.Target)
	if s, ok := v.(model.Sequence); ok {
		item, err := s.Index(0)
		if err != nil {
			panic(env.newError(n.Target, "Failed to get the first item: ", err.Error()).withCause(err))
		}
		return item
	}
	if it, ok := v.(model.Iterable); ok {
		iter, err := it.Iterator()
		if err == nil {
			var has bool
			if has, err = iter.HasNext(); err == nil && has {
				var item model.Value
				if item, err = iter.Next(); err == nil {
					return item
				}
			}
		}
		if err != nil {
			panic(env.newError(n.Target, "Failed to get the first item: ", err.Error()).withCause(err))
		}
		return nil
	}
	panic(env.newUnexpectedTypeError(n.Target, v, "sequence or collection"))
}

// builtInLast implements ?last.
func builtInLast(env *Environment, n *ast.BuiltIn) model.Value {
	s := env.targetSequence(n)
	size, err := s.Len()
	if err == nil && size > 0 {
		var item model.Value
		if item, err = s.Index(size - 1); err == nil {
			return item
		}
	}
	if err != nil {
		panic(env.newError(n.Target, "Failed to get the last item: ", err.Error()).withCause(err))
	}
	return nil
}

// builtInReverse implements ?reverse.
func builtInReverse(env *Environment, n *ast.BuiltIn) model.Value {
	items := env.items(n.Target, env.targetSequence(n))
	reversed := make(model.SimpleSequence, len(items))
	for i, item := range items {
		reversed[len(items)-1-i] = item
	}
	return reversed
}

// builtInJoin implements ?join(separator[, whenEmpty[, suffix]]). The
// missing items are skipped.
func builtInJoin(env *Environment, n *ast.BuiltIn) model.Value {
	items := env.items(n.Target, env.evalValue(n.Target))
	return env.newMethod(n, 1, 3, func(args methodArgs) model.Value {
		sep := args.string(0)
		var b strings.Builder
		count := 0
		for i, item := range items {
			if item == nil {
				continue
			}
			if count > 0 {
				b.WriteString(sep)
			}
			s, m, ok := env.stringOrMarkup(n.Target, item)
			if !ok {
				panic(env.newError(n.Target, "?", n.Name, "(...) can only join strings, numbers, dates and booleans, but the item at index ",
					i, " is ", typeName{item}, "."))
			}
			if m != nil {
				s = m.MarkupString()
			}
			b.WriteString(s)
			count++
		}
		if count == 0 {
			return model.SimpleString(args.optString(1, ""))
		}
		if args.len() == 3 {
			b.WriteString(args.string(2))
		}
		return model.SimpleString(b.String())
	})
}

// builtInSeqContains implements ?seq_contains(value).
func builtInSeqContains(env *Environment, n *ast.BuiltIn) model.Value {
	items := env.items(n.Target, env.evalValue(n.Target))
	return env.newMethod(n, 1, 1, func(args methodArgs) model.Value {
		for _, item := range items {
			if eq, ok := env.equal(item, args.value(0)); ok && eq {
				return model.True
			}
		}
		return model.False
	})
}

// seqIndexOfFunc returns the ?seq_index_of or the ?seq_last_index_of
// built-in. The optional second argument is the index where the search
// starts.
func seqIndexOfFunc(last bool) builtInFunc {
	return func(env *Environment, n *ast.BuiltIn) model.Value {
		items := env.items(n.Target, env.evalValue(n.Target))
		return env.newMethod(n, 1, 2, func(args methodArgs) model.Value {
			matches := func(i int) bool {
				eq, ok := env.equal(items[i], args.value(0))
				return ok && eq
			}
			if last {
				start := len(items) - 1
				if args.len() == 2 {
					start = min(args.int(1), start)
				}
				for i := start; i >= 0; i-- {
					if matches(i) {
						return model.IntNum(int64(i))
					}
				}
				return model.IntNum(-1)
			}
			start := 0
			if args.len() == 2 {
				start = max(args.int(1), 0)
			}
			for i := start; i < len(items); i++ {
				if matches(i) {
					return model.IntNum(int64(i))
				}
			}
			return model.IntNum(-1)
		})
	}
}

// builtInSort implements ?sort.
func builtInSort(env *Environment, n *ast.BuiltIn) model.Value {
	items := env.items(n.Target, env.targetSequence(n))
	return env.sortItems(n, items, nil)
}

// builtInSortBy implements ?sort_by(key), where key is the name of a
// subvariable of the items or a sequence of names, as a path.
func builtInSortBy(env *Environment, n *ast.BuiltIn) model.Value {
	items := env.items(n.Target, env.targetSequence(n))
	return env.newMethod(n, 1, 1, func(args methodArgs) model.Value {
		var path []string
		switch key := args.value(0).(type) {
		case model.String:
			path = []string{args.string(0)}
		case model.Sequence:
			for _, k := range env.items(nil, key) {
				s, ok := k.(model.String)
				if !ok {
					args.fail(0, "must be a sequence of strings, but it contains %s.", model.TypeName(k))
				}
				name, _ := s.AsString()
				path = append(path, name)
			}
			if len(path) == 0 {
				args.fail(0, "can't be an empty sequence.")
			}
		default:
			args.fail(0, "must be a string or a sequence of strings, but it was %s.", model.TypeName(key))
		}
		return env.sortItems(n, items, path)
	})
}

// sortKind is the kind of the keys of a sort.
type sortKind int

const (
	sortNone sortKind = iota
	sortString
	sortNumber
	sortDate
	sortBoolean
)

// sortItems sorts items in ascending order. If path is not nil, the items
// are hashes and they are sorted by the subvariable at path.
func (env *Environment) sortItems(n *ast.BuiltIn, items []model.Value, path []string) model.Value {
	keys := make([]model.Value, len(items))
	kind := sortNone
	for i, item := range items {
		key := item
		for _, name := range path {
			h, ok := key.(model.Hash)
			if !ok {
				panic(env.newError(n, "?", n.Name, " failed: the item at index ", i, " is not a hash, but ", typeName{key},
					", so the subvariable ", quoted{name}, " can't be read."))
			}
			var err error
			key, err = h.Get(name)
			if err != nil {
				panic(env.newError(n, "?", n.Name, " failed: can't read the subvariable ", quoted{name}, ": ", err.Error()).withCause(err))
			}
			if key == nil {
				panic(env.newError(n, "?", n.Name, " failed: the subvariable ", quoted{name}, " of the item at index ", i, " is missing."))
			}
		}
		var k sortKind
		switch key.(type) {
		case model.String:
			k = sortString
		case model.Number:
			k = sortNumber
		case model.Date:
			k = sortDate
		case model.Boolean:
			k = sortBoolean
		default:
			panic(env.newError(n, "?", n.Name, " can only sort strings, numbers, dates and booleans, but the key of the item at index ",
				i, " is ", typeName{key}, "."))
		}
		if kind == sortNone {
			kind = k
		} else if k != kind {
			panic(env.newError(n, "?", n.Name, " can't sort values of different types: the key of the item at index ", i,
				" is ", typeName{key}, ", while the previous keys are of another type."))
		}
		keys[i] = key
	}
	indexes := make([]int, len(items))
	for i := range indexes {
		indexes[i] = i
	}
	sort.SliceStable(indexes, func(a, b int) bool {
		ka, kb := keys[indexes[a]], keys[indexes[b]]
		switch kind {
		case sortString:
			return env.collate(env.toString(n, ka), env.toString(n, kb)) < 0
		case sortNumber:
			c, _ := env.asNum(n, ka.(model.Number)).Cmp(env.asNum(n, kb.(model.Number)))
			return c < 0
		case sortDate:
			return env.asTime(n, ka.(model.Date)).Before(env.asTime(n, kb.(model.Date)))
		case sortBoolean:
			return !env.asBool(n, ka.(model.Boolean)) && env.asBool(n, kb.(model.Boolean))
		}
		return false
	})
	sorted := make(model.SimpleSequence, len(items))
	for i, idx := range indexes {
		sorted[i] = items[idx]
	}
	return sorted
}

// builtInChunk implements ?chunk(size[, fill]), that splits a sequence in
// sequences of size items. If fill is passed, the last sequence is filled
// with it.
func builtInChunk(env *Environment, n *ast.BuiltIn) model.Value {
	items := env.items(n.Target, env.targetSequence(n))
	return env.newMethod(n, 1, 2, func(args methodArgs) model.Value {
		size := args.int(0)
		if size < 1 {
			args.fail(0, "must be at least 1, but it was %d.", size)
		}
		var chunks model.SimpleSequence
		for i := 0; i < len(items); i += size {
			chunk := make(model.SimpleSequence, 0, size)
			chunk = append(chunk, items[i:min(i+size, len(items))]...)
			if args.len() == 2 {
				for len(chunk) < size {
					chunk = append(chunk, args.value(1))
				}
			}
			chunks = append(chunks, chunk)
		}
		if chunks == nil {
			return model.EmptySequence
		}
		return chunks
	})
}

// minMaxFunc returns the ?min or the ?max built-in. The missing items are
// skipped and the result is missing if there are no items.
func minMaxFunc(op ast.OperatorType) builtInFunc {
	return func(env *Environment, n *ast.BuiltIn) model.Value {
		var best model.Value
		for _, item := range env.items(n.Target, env.evalValue(n.Target)) {
			if item == nil {
				continue
			}
			switch item.(type) {
			case model.Number, model.Date:
			default:
				panic(env.newError(n, "?", n.Name, " can only compare numbers and dates, but an item is ", typeName{item}, "."))
			}
			if best == nil || env.compare(n, op, n.Target, n.Target, item, best) {
				best = item
			}
		}
		return best
	}
}

// hashCollectionFunc returns the ?keys or the ?values built-in.
func hashCollectionFunc(get func(model.HashEx) (model.Collection, error)) builtInFunc {
	return func(env *Environment, n *ast.BuiltIn) model.Value {
		v := env.evalValue(n.Target)
		h, ok := v.(model.HashEx)
		if !ok {
			panic(env.newUnexpectedTypeError(n.Target, v, "extended hash"))
		}
		c, err := get(h)
		if err != nil {
			panic(env.newError(n.Target, "Failed to get the ", n.Name, " of the hash: ", err.Error()).withCause(err))
		}
		return model.SimpleSequence(env.items(n.Target, c))
	}
}

// builtInFilter implements ?filter(predicate), where predicate is a
// function that returns a boolean for each item.
func builtInFilter(env *Environment, n *ast.BuiltIn) model.Value {
	items := env.items(n.Target, env.evalValue(n.Target))
	return env.newMethod(n, 1, 1, func(args methodArgs) model.Value {
		f := itemFunction(args)
		filtered := model.SimpleSequence{}
		for _, item := range items {
			v := env.callItemFunction(n, f, item)
			b, ok := v.(model.Boolean)
			if !ok {
				panic(env.newError(n, "?filter(...) expects a function that returns a boolean, but it has returned ",
					typeName{v}, "."))
			}
			if env.asBool(n, b) {
				filtered = append(filtered, item)
			}
		}
		return filtered
	})
}

// builtInMap implements ?map(mapper), where mapper is a function that
// returns the new value of each item.
func builtInMap(env *Environment, n *ast.BuiltIn) model.Value {
	items := env.items(n.Target, env.evalValue(n.Target))
	return env.newMethod(n, 1, 1, func(args methodArgs) model.Value {
		f := itemFunction(args)
		mapped := make(model.SimpleSequence, len(items))
		for i, item := range items {
			v := env.callItemFunction(n, f, item)
			if v == nil {
				panic(env.newError(n, "?map(...) expects a function that returns a value, but it has returned null for the item at index ",
					i, "."))
			}
			mapped[i] = v
		}
		return mapped
	})
}

// itemFunction returns the first argument of ?filter and ?map, that must be
// a function accepting an argument passed by position.
func itemFunction(args methodArgs) model.Function {
	f, ok := args.value(0).(model.Function)
	if !ok {
		args.fail(0, "must be a function, but it was %s.", model.TypeName(args.value(0)))
	}
	if !f.ArgumentLayout().AcceptsPositional() {
		args.fail(0, "must be a function that accepts an argument passed by position.")
	}
	return f
}

// callItemFunction calls f with item as its only argument.
func (env *Environment) callItemFunction(n *ast.BuiltIn, f model.Function, item model.Value) model.Value {
	layout := f.ArgumentLayout()
	values := make([]model.Value, layout.Len())
	if layout.PositionalCount > 0 {
		values[0] = item
		if layout.PositionalVarargs {
			values[layout.PositionalVarargsIndex()] = model.EmptySequence
		}
	} else {
		values[layout.PositionalVarargsIndex()] = model.SimpleSequence{item}
	}
	if layout.NamedVarargs {
		values[layout.NamedVarargsIndex()] = model.EmptyHash
	}
	v, err := f.Call(values, env.newCallPlace(nil))
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			panic(e)
		}
		panic(env.newError(n, "The function call has failed: ", err.Error()).withCause(err))
	}
	return v
}
