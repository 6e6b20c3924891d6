// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func seqOf(elems ...string) SimpleSequence {
	s := make(SimpleSequence, len(elems))
	for i, e := range elems {
		s[i] = SimpleString(e)
	}
	return s
}

// collect returns the elements of seq read by iteration.
func collect(t *testing.T, seq Sequence) []string {
	t.Helper()
	it, err := seq.(Iterable).Iterator()
	if err != nil {
		t.Fatal(err)
	}
	var elems []string
	for {
		ok, err := it.HasNext()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		v, err := it.Next()
		if err != nil {
			t.Fatal(err)
		}
		s, _ := v.(SimpleString).AsString()
		elems = append(elems, s)
	}
	return elems
}

// collectIndex returns the elements of seq read by index.
func collectIndex(t *testing.T, seq Sequence) []string {
	t.Helper()
	n, err := seq.Len()
	if err != nil {
		t.Fatal(err)
	}
	var elems []string
	for i := 0; i < n; i++ {
		v, err := seq.Index(i)
		if err != nil {
			t.Fatal(err)
		}
		s, _ := v.(SimpleString).AsString()
		elems = append(elems, s)
	}
	return elems
}

var concatTests = []struct {
	name string
	seq  Sequence
	res  []string
}{
	{"empty+empty", Concat(seqOf(), seqOf()), nil},
	{"a+empty", Concat(seqOf("a"), seqOf()), []string{"a"}},
	{"empty+a", Concat(seqOf(), seqOf("a")), []string{"a"}},
	{"ab+cde", Concat(seqOf("a", "b"), seqOf("c", "d", "e")), []string{"a", "b", "c", "d", "e"}},
	{"(a+b)+c", Concat(Concat(seqOf("a"), seqOf("b")), seqOf("c")), []string{"a", "b", "c"}},
	{"a+(b+c)", Concat(seqOf("a"), Concat(seqOf("b"), seqOf("c"))), []string{"a", "b", "c"}},
	{"(a+(b+c))+(d+e)", Concat(Concat(seqOf("a"), Concat(seqOf("b"), seqOf("c"))), Concat(seqOf("d"), seqOf("e"))),
		[]string{"a", "b", "c", "d", "e"}},
}

func TestConcat(t *testing.T) {
	for _, test := range concatTests {
		n, err := test.seq.Len()
		if err != nil {
			t.Fatal(err)
		}
		if n != len(test.res) {
			t.Errorf("%s: expecting length %d, got %d", test.name, len(test.res), n)
		}
		if diff := cmp.Diff(test.res, collect(t, test.seq)); diff != "" {
			t.Errorf("%s: iteration mismatch (-want +got):\n%s", test.name, diff)
		}
		if diff := cmp.Diff(test.res, collectIndex(t, test.seq)); diff != "" {
			t.Errorf("%s: index mismatch (-want +got):\n%s", test.name, diff)
		}
		if v, _ := test.seq.Index(n); v != nil {
			t.Errorf("%s: expecting nil out of range, got %v", test.name, v)
		}
		if v, _ := test.seq.Index(-1); v != nil {
			t.Errorf("%s: expecting nil for negative index, got %v", test.name, v)
		}
	}
}

func TestConcatDeepNesting(t *testing.T) {
	const depth = 100000
	var left Sequence = seqOf()
	var right Sequence = seqOf()
	for i := 0; i < depth; i++ {
		left = Concat(left, seqOf("x"))
		right = Concat(seqOf("x"), right)
	}
	for _, seq := range []Sequence{left, right} {
		n, err := seq.Len()
		if err != nil {
			t.Fatal(err)
		}
		if n != depth {
			t.Fatalf("expecting length %d, got %d", depth, n)
		}
		if got := len(collect(t, seq)); got != depth {
			t.Fatalf("expecting %d iterated elements, got %d", depth, got)
		}
	}
	v, err := right.Index(depth - 1)
	if err != nil {
		t.Fatal(err)
	}
	if v != SimpleString("x") {
		t.Fatalf("expecting \"x\", got %v", v)
	}
}

func TestConcatHash(t *testing.T) {
	a := NewHash("a", IntNum(1), "b", IntNum(2), "c", IntNum(3))
	b := NewHash("d", IntNum(4), "b", IntNum(20), "e", IntNum(5))
	h := ConcatHash(a, b)
	ex, ok := h.(HashEx)
	if !ok {
		t.Fatalf("expecting a HashEx, got %T", h)
	}
	n, err := ex.Len()
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("expecting 5 keys, got %d", n)
	}
	v, _ := ex.Get("b")
	if c, _ := v.(Num).Cmp(IntNum(20)); c != 0 {
		t.Errorf("expecting 20 for key \"b\", got %v", v)
	}
	keys, err := ex.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d", "e"}, collect(t, keys.(Sequence))); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	it, err := ex.Pairs()
	if err != nil {
		t.Fatal(err)
	}
	var values []string
	for {
		ok, _ := it.HasNext()
		if !ok {
			break
		}
		p, _ := it.Next()
		values = append(values, p.Value.(Num).String())
	}
	if diff := cmp.Diff([]string{"1", "20", "3", "4", "5"}, values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

type lookupOnly map[string]Value

func (h lookupOnly) Get(key string) (Value, error) { return h[key], nil }

func TestConcatHashNotExtended(t *testing.T) {
	h := ConcatHash(lookupOnly{"a": SimpleString("left"), "b": SimpleString("b")}, NewHash("a", SimpleString("right")))
	if _, ok := h.(HashEx); ok {
		t.Fatalf("unexpected HashEx")
	}
	if v, _ := h.Get("a"); v != SimpleString("right") {
		t.Errorf("expecting \"right\", got %v", v)
	}
	if v, _ := h.Get("b"); v != SimpleString("b") {
		t.Errorf("expecting \"b\", got %v", v)
	}
	if v, _ := h.Get("c"); v != nil {
		t.Errorf("expecting nil, got %v", v)
	}
}
