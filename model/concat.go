// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"sync"
)

// Concat returns a sequence that is the concatenation of a and b. The
// returned sequence is a view: the elements are read from a and b when they
// are requested. Concatenations can be nested at any depth; no method of the
// returned sequence recurses on the nesting level.
func Concat(a, b Sequence) Sequence {
	return &concatSequence{left: a, right: b}
}

type concatSequence struct {
	left, right Sequence
}

// Len returns the sum of the lengths of the concatenated sequences.
func (s *concatSequence) Len() (int, error) {
	size := 0
	stack := []Sequence{s.right, s.left}
	for len(stack) > 0 {
		seq := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if c, ok := seq.(*concatSequence); ok {
			stack = append(stack, c.right, c.left)
			continue
		}
		n, err := seq.Len()
		if err != nil {
			return 0, err
		}
		size += n
	}
	return size, nil
}

// Index returns the element at index i, or nil if i is out of range.
func (s *concatSequence) Index(i int) (Value, error) {
	if i < 0 {
		return nil, nil
	}
	var seq Sequence = s
	for {
		c, ok := seq.(*concatSequence)
		if !ok {
			return seq.Index(i)
		}
		n, err := c.left.Len()
		if err != nil {
			return nil, err
		}
		if i < n {
			seq = c.left
		} else {
			i -= n
			seq = c.right
		}
	}
}

// Iterator returns an iterator over the elements of the concatenated
// sequences.
func (s *concatSequence) Iterator() (Iterator, error) {
	return &concatIterator{pending: []Sequence{s}}, nil
}

// concatIterator iterates over a concatenation of sequences. pending is a
// stack of the sequences still to iterate, the next one on top.
type concatIterator struct {
	pending []Sequence
	current Iterator
}

// advance positions the iterator on a leaf sequence that has a next element.
// It reports whether there is such a sequence.
func (it *concatIterator) advance() (bool, error) {
	for {
		if it.current != nil {
			ok, err := it.current.HasNext()
			if err != nil || ok {
				return ok, err
			}
			it.current = nil
		}
		if len(it.pending) == 0 {
			return false, nil
		}
		seq := it.pending[len(it.pending)-1]
		it.pending = it.pending[:len(it.pending)-1]
		if c, ok := seq.(*concatSequence); ok {
			it.pending = append(it.pending, c.right, c.left)
			continue
		}
		it.current = SequenceIterator(seq)
	}
}

func (it *concatIterator) HasNext() (bool, error) {
	return it.advance()
}

func (it *concatIterator) Next() (Value, error) {
	ok, err := it.advance()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoMoreElements
	}
	return it.current.Next()
}

// ConcatHash returns a hash that is the concatenation of a and b. If a key
// is in both hashes, the value is the one of b. If both a and b are HashEx
// values, the returned hash is also a HashEx whose keys are ordered as first
// seen going through a and then b.
func ConcatHash(a, b Hash) Hash {
	if ae, ok := a.(HashEx); ok {
		if be, ok := b.(HashEx); ok {
			return &concatHashEx{concatHash: concatHash{left: a, right: b}, leftEx: ae, rightEx: be}
		}
	}
	return &concatHash{left: a, right: b}
}

type concatHash struct {
	left, right Hash
}

// Get returns the value of key in the right hash, or in the left hash if the
// right one does not have it.
func (h *concatHash) Get(key string) (Value, error) {
	v, err := h.right.Get(key)
	if err != nil || v != nil {
		return v, err
	}
	return h.left.Get(key)
}

// concatHashEx is the concatenation of two HashEx values. The merged keys
// are computed on the first call to a method that needs them.
type concatHashEx struct {
	concatHash
	leftEx, rightEx HashEx
	once            sync.Once
	merged          *SimpleHash
	err             error
}

func (h *concatHashEx) merge() error {
	h.once.Do(func() {
		merged := &SimpleHash{}
		for _, hash := range []HashEx{h.leftEx, h.rightEx} {
			it, err := hash.Pairs()
			if err != nil {
				h.err = err
				return
			}
			for {
				ok, err := it.HasNext()
				if err != nil {
					h.err = err
					return
				}
				if !ok {
					break
				}
				pair, err := it.Next()
				if err != nil {
					h.err = err
					return
				}
				key, err := pairKey(pair.Key)
				if err != nil {
					h.err = err
					return
				}
				merged.Put(key, pair.Value)
			}
		}
		h.merged = merged
	})
	return h.err
}

func (h *concatHashEx) Len() (int, error) {
	if err := h.merge(); err != nil {
		return 0, err
	}
	return h.merged.Len()
}

func (h *concatHashEx) Keys() (Collection, error) {
	if err := h.merge(); err != nil {
		return nil, err
	}
	return h.merged.Keys()
}

func (h *concatHashEx) Values() (Collection, error) {
	if err := h.merge(); err != nil {
		return nil, err
	}
	return h.merged.Values()
}

func (h *concatHashEx) Pairs() (PairIterator, error) {
	if err := h.merge(); err != nil {
		return nil, err
	}
	return h.merged.Pairs()
}

// pairKey returns the key of a pair as a string.
func pairKey(key Value) (string, error) {
	if s, ok := key.(String); ok {
		return s.AsString()
	}
	return "", &TypeError{Expected: "string", Value: key}
}
