// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"errors"
	"time"
)

// ErrNoMoreElements is returned by the Next method of an iterator that has
// no more elements.
var ErrNoMoreElements = errors.New("no more elements")

// AsNumber returns n.
func (n Num) AsNumber() (Num, error) { return n, nil }

// SimpleString is a String value.
type SimpleString string

// AsString returns s as a string.
func (s SimpleString) AsString() (string, error) { return string(s), nil }

// Bool is a Boolean value.
type Bool bool

// True and False are the boolean values.
const (
	True  = Bool(true)
	False = Bool(false)
)

// AsBoolean returns b as a bool.
func (b Bool) AsBoolean() (bool, error) { return bool(b), nil }

// SimpleDate is a Date value.
type SimpleDate struct {
	Time time.Time
	Type DateType
}

// AsDate returns the time of d.
func (d SimpleDate) AsDate() (time.Time, error) { return d.Time, nil }

// DateType returns the date type of d.
func (d SimpleDate) DateType() DateType { return d.Type }

// SimpleMarkup is a Markup value.
type SimpleMarkup struct {
	Format string
	Text   string
}

// OutputFormat returns the output format of m.
func (m SimpleMarkup) OutputFormat() string { return m.Format }

// MarkupString returns the markup of m.
func (m SimpleMarkup) MarkupString() string { return m.Text }

// SimpleSequence is a Sequence value that is also a Collection.
type SimpleSequence []Value

// EmptySequence is an empty sequence.
var EmptySequence = SimpleSequence{}

// Index returns the element at index i or nil if i is out of range.
func (s SimpleSequence) Index(i int) (Value, error) {
	if i < 0 || i >= len(s) {
		return nil, nil
	}
	return s[i], nil
}

// Len returns the length of s.
func (s SimpleSequence) Len() (int, error) { return len(s), nil }

// Iterator returns an iterator over the elements of s.
func (s SimpleSequence) Iterator() (Iterator, error) {
	return &sliceIterator{elems: s}, nil
}

// sliceIterator iterates over a slice of values.
type sliceIterator struct {
	elems []Value
	next  int
}

func (it *sliceIterator) HasNext() (bool, error) {
	return it.next < len(it.elems), nil
}

func (it *sliceIterator) Next() (Value, error) {
	if it.next >= len(it.elems) {
		return nil, ErrNoMoreElements
	}
	v := it.elems[it.next]
	it.next++
	return v, nil
}

// SequenceIterator returns an iterator over the elements of a sequence.
func SequenceIterator(seq Sequence) Iterator {
	return &sequenceIterator{seq: seq, size: -1}
}

type sequenceIterator struct {
	seq  Sequence
	next int
	size int
}

func (it *sequenceIterator) HasNext() (bool, error) {
	if it.size == -1 {
		size, err := it.seq.Len()
		if err != nil {
			return false, err
		}
		it.size = size
	}
	return it.next < it.size, nil
}

func (it *sequenceIterator) Next() (Value, error) {
	ok, err := it.HasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoMoreElements
	}
	v, err := it.seq.Index(it.next)
	if err != nil {
		return nil, err
	}
	it.next++
	return v, nil
}

// SimpleHash is a HashEx value that keeps the insertion order of its keys.
// The zero value is an empty hash ready to use.
type SimpleHash struct {
	keys   []string
	values map[string]Value
}

// EmptyHash is an empty hash.
var EmptyHash = &SimpleHash{}

// NewHash returns a new hash with the given key-value pairs. kv must have an
// even length and the keys must be strings.
func NewHash(kv ...interface{}) *SimpleHash {
	h := &SimpleHash{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Put(kv[i].(string), kv[i+1])
	}
	return h
}

// Put sets the value of key. If key is already present, its position is kept
// and only the value is replaced.
func (h *SimpleHash) Put(key string, value Value) {
	if h.values == nil {
		h.values = map[string]Value{}
	}
	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.values[key] = value
}

// Get returns the value of key or nil if key is not present.
func (h *SimpleHash) Get(key string) (Value, error) {
	return h.values[key], nil
}

// Len returns the number of keys.
func (h *SimpleHash) Len() (int, error) { return len(h.keys), nil }

// Keys returns the keys in insertion order.
func (h *SimpleHash) Keys() (Collection, error) {
	keys := make(SimpleSequence, len(h.keys))
	for i, k := range h.keys {
		keys[i] = SimpleString(k)
	}
	return keys, nil
}

// Values returns the values in insertion order of their keys.
func (h *SimpleHash) Values() (Collection, error) {
	values := make(SimpleSequence, len(h.keys))
	for i, k := range h.keys {
		values[i] = h.values[k]
	}
	return values, nil
}

// Pairs returns an iterator over the key-value pairs in insertion order.
func (h *SimpleHash) Pairs() (PairIterator, error) {
	return &hashPairIterator{h: h}, nil
}

type hashPairIterator struct {
	h    *SimpleHash
	next int
}

func (it *hashPairIterator) HasNext() (bool, error) {
	return it.next < len(it.h.keys), nil
}

func (it *hashPairIterator) Next() (Pair, error) {
	if it.next >= len(it.h.keys) {
		return Pair{}, ErrNoMoreElements
	}
	k := it.h.keys[it.next]
	it.next++
	return Pair{Key: SimpleString(k), Value: it.h.values[k]}, nil
}
