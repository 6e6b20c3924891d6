// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package model defines the data model of templates.
//
// A value of the data model has one or more capabilities, each one
// represented by an interface: String, Number, Date, Boolean, Sequence, Hash,
// HashEx, Iterable, Collection, Markup, Directive and Function. A value can
// implement any combination of them; for example a value that is both a
// String and a Hash can be printed and can have its subvariables read.
//
// The nil Value represents a missing value.
package model

import (
	"io"
	"time"
)

// Value is a value of the data model.
type Value interface{}

// String is implemented by the string-like values.
type String interface {
	AsString() (string, error)
}

// Number is implemented by the number-like values.
type Number interface {
	AsNumber() (Num, error)
}

// DateType is the type of a date-like value.
type DateType int

const (
	UnknownDateType DateType = iota // it is not known if the value is a date, a time or a date-time
	DateOnly                        // date without time
	TimeOnly                        // time without date
	DateTime                        // date with time
)

var dateTypeName = [...]string{"unknown", "date", "time", "date-time"}

// String returns the name of t.
func (t DateType) String() string { return dateTypeName[t] }

// Date is implemented by the date-like values.
type Date interface {
	AsDate() (time.Time, error)
	DateType() DateType
}

// Boolean is implemented by the boolean values.
type Boolean interface {
	AsBoolean() (bool, error)
}

// Sequence is implemented by the values that have indexed elements.
type Sequence interface {
	// Index returns the element at index i. If i is out of range, Index
	// returns nil and no error.
	Index(i int) (Value, error)
	// Len returns the number of elements.
	Len() (int, error)
}

// Hash is implemented by the values that have subvariables accessible by
// name.
type Hash interface {
	// Get returns the subvariable with the given key, or nil if it does not
	// exist.
	Get(key string) (Value, error)
}

// HashEx is a Hash whose keys and values can be enumerated.
type HashEx interface {
	Hash
	Len() (int, error)
	Keys() (Collection, error)
	Values() (Collection, error)
	Pairs() (PairIterator, error)
}

// Iterator iterates over the elements of an Iterable.
type Iterator interface {
	HasNext() (bool, error)
	Next() (Value, error)
}

// Pair is a key-value pair of a HashEx.
type Pair struct {
	Key   Value
	Value Value
}

// PairIterator iterates over the key-value pairs of a HashEx.
type PairIterator interface {
	HasNext() (bool, error)
	Next() (Pair, error)
}

// Iterable is implemented by the values that can be iterated. Some iterables
// can be iterated only once.
type Iterable interface {
	Iterator() (Iterator, error)
}

// Collection is an Iterable that knows its size.
type Collection interface {
	Iterable
	Len() (int, error)
}

// Markup is implemented by values holding text already escaped for an output
// format. Such values are written as they are when the output format of the
// template is the same.
type Markup interface {
	OutputFormat() string
	MarkupString() string
}

// ArgumentLayout describes the parameters accepted by a callable value.
//
// The arguments are passed to the callable as a slice where the positional
// parameters come first, followed by the positional varargs, then the named
// parameters in the order they are declared and, finally, the named varargs.
type ArgumentLayout struct {
	PositionalCount   int      // number of the positional parameters
	PositionalVarargs bool     // reports whether there are positional varargs
	Named             []string // names of the named parameters
	NamedVarargs      bool     // reports whether there are named varargs
}

// Len returns the length of the argument slice.
func (l *ArgumentLayout) Len() int {
	if l == nil {
		return 0
	}
	n := l.PositionalCount + len(l.Named)
	if l.PositionalVarargs {
		n++
	}
	if l.NamedVarargs {
		n++
	}
	return n
}

// PositionalVarargsIndex returns the index of the positional varargs in the
// argument slice, or -1 if there are no positional varargs.
func (l *ArgumentLayout) PositionalVarargsIndex() int {
	if l == nil || !l.PositionalVarargs {
		return -1
	}
	return l.PositionalCount
}

// NamedIndex returns the index in the argument slice of the named parameter
// name, or -1 if there is no such parameter.
func (l *ArgumentLayout) NamedIndex(name string) int {
	if l == nil {
		return -1
	}
	for i, n := range l.Named {
		if n == name {
			base := l.PositionalCount
			if l.PositionalVarargs {
				base++
			}
			return base + i
		}
	}
	return -1
}

// NamedVarargsIndex returns the index of the named varargs in the argument
// slice, or -1 if there are no named varargs.
func (l *ArgumentLayout) NamedVarargsIndex() int {
	if l == nil || !l.NamedVarargs {
		return -1
	}
	return l.Len() - 1
}

// AcceptsPositional reports whether arguments can be passed by position.
func (l *ArgumentLayout) AcceptsPositional() bool {
	return l != nil && (l.PositionalCount > 0 || l.PositionalVarargs)
}

// AcceptsNamed reports whether arguments can be passed by name.
func (l *ArgumentLayout) AcceptsNamed() bool {
	return l != nil && (len(l.Named) > 0 || l.NamedVarargs)
}

// CallPlace is the place where a directive or a function is called, as seen
// by the called value during one invocation.
type CallPlace interface {

	// HasNestedContent reports whether the call has a nested content.
	HasNestedContent() bool

	// NestedContentParameterCount returns the number of the nested content
	// parameters declared by the call, as 2 in <@foo; k, v>.
	NestedContentParameterCount() int

	// ExecuteNestedContent executes the nested content writing to w and
	// binding values to its parameters. len(values) must be equal to the
	// number of the declared nested content parameters.
	ExecuteNestedContent(values []Value, w io.Writer) error

	// CustomData returns the data associated to the call place by the
	// provider. If there is no such data, or it has been created by another
	// provider, it calls create and stores its result.
	CustomData(provider interface{}, create func() (interface{}, error)) (interface{}, error)
}

// Directive is implemented by the values that can be called as directives.
type Directive interface {
	ArgumentLayout() *ArgumentLayout
	Execute(args []Value, w io.Writer, call CallPlace) error
}

// Function is implemented by the values that can be called as functions.
type Function interface {
	ArgumentLayout() *ArgumentLayout
	Call(args []Value, call CallPlace) (Value, error)
}
