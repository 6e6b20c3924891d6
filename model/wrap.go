// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"fmt"
	"math/big"
	"reflect"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})
var timeType = reflect.TypeOf(time.Time{})

// Wrap returns the value of the data model that represents the Go value v.
//
// v can be:
//
//   - nil, wrapped as nil
//   - a value implementing one of the capability interfaces, returned as is
//   - a string, a bool, an integer or a floating-point number
//   - a decimal.Decimal [github.com/shopspring/decimal]
//   - a time.Time, wrapped as a date-time
//   - a slice or an array, wrapped as a sequence
//   - a map with keys of kind string, wrapped as an extended hash with the
//     keys in ascending order
//   - a struct or a pointer to a struct, wrapped as an extended hash of its
//     exported fields; the tag "ftl" changes the name of a field
//   - a fmt.Stringer, wrapped as a string
//
// Slices, maps and structs are wrapped lazily: their elements are wrapped
// when they are read.
func Wrap(v interface{}) (Value, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case String, Number, Date, Boolean, Sequence, Hash, Iterable, Markup, Directive, Function:
		return v, nil
	case string:
		return SimpleString(v), nil
	case bool:
		return Bool(v), nil
	case int:
		return IntNum(int64(v)), nil
	case int64:
		return IntNum(v), nil
	case float64:
		return FloatNum(v), nil
	case decimal.Decimal:
		return NewNum(v), nil
	case time.Time:
		return SimpleDate{Time: v, Type: DateTime}, nil
	case reflect.Value:
		if !v.IsValid() {
			return nil, nil
		}
		return Wrap(v.Interface())
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return IntNum(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return NewNum(decimal.NewFromBigInt(new(big.Int).SetUint64(rv.Uint()), 0)), nil
	case reflect.Float32, reflect.Float64:
		return FloatNum(rv.Float()), nil
	case reflect.String:
		return SimpleString(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Slice:
		if rv.IsNil() {
			return nil, nil
		}
		return &reflectSequence{rv}, nil
	case reflect.Array:
		return &reflectSequence{rv}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		if rv.IsNil() {
			return nil, nil
		}
		return &reflectMap{rv: rv}, nil
	case reflect.Ptr:
		if rv.IsNil() {
			return nil, nil
		}
		if rv.Elem().Kind() == reflect.Struct && rv.Elem().Type() != timeType && rv.Elem().Type() != decimalType {
			return &reflectStruct{rv.Elem()}, nil
		}
		return Wrap(rv.Elem().Interface())
	case reflect.Struct:
		return &reflectStruct{rv}, nil
	}
	if s, ok := v.(fmt.Stringer); ok {
		return SimpleString(s.String()), nil
	}
	return nil, fmt.Errorf("ftl/model: cannot wrap value of type %T", v)
}

// MustWrap is like Wrap but panics if v can not be wrapped.
func MustWrap(v interface{}) Value {
	w, err := Wrap(v)
	if err != nil {
		panic(err)
	}
	return w
}

// reflectSequence wraps a Go slice or array.
type reflectSequence struct {
	rv reflect.Value
}

func (s *reflectSequence) Unwrap() interface{} { return s.rv.Interface() }

func (s *reflectSequence) Len() (int, error) { return s.rv.Len(), nil }

func (s *reflectSequence) Index(i int) (Value, error) {
	if i < 0 || i >= s.rv.Len() {
		return nil, nil
	}
	return Wrap(s.rv.Index(i).Interface())
}

func (s *reflectSequence) Iterator() (Iterator, error) {
	return SequenceIterator(s), nil
}

// reflectMap wraps a Go map with keys of kind string.
type reflectMap struct {
	rv   reflect.Value
	keys []string
}

func (m *reflectMap) Unwrap() interface{} { return m.rv.Interface() }

func (m *reflectMap) Get(key string) (Value, error) {
	v := m.rv.MapIndex(reflect.ValueOf(key).Convert(m.rv.Type().Key()))
	if !v.IsValid() {
		return nil, nil
	}
	return Wrap(v.Interface())
}

func (m *reflectMap) sortedKeys() []string {
	if m.keys == nil {
		keys := make([]string, 0, m.rv.Len())
		for _, k := range m.rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		m.keys = keys
	}
	return m.keys
}

func (m *reflectMap) Len() (int, error) { return m.rv.Len(), nil }

func (m *reflectMap) Keys() (Collection, error) {
	keys := m.sortedKeys()
	seq := make(SimpleSequence, len(keys))
	for i, k := range keys {
		seq[i] = SimpleString(k)
	}
	return seq, nil
}

func (m *reflectMap) Values() (Collection, error) {
	keys := m.sortedKeys()
	seq := make(SimpleSequence, len(keys))
	for i, k := range keys {
		v, err := m.Get(k)
		if err != nil {
			return nil, err
		}
		seq[i] = v
	}
	return seq, nil
}

func (m *reflectMap) Pairs() (PairIterator, error) {
	return &keysPairIterator{keys: m.sortedKeys(), hash: m}, nil
}

// reflectStruct wraps a Go struct.
type reflectStruct struct {
	rv reflect.Value
}

func (s *reflectStruct) Unwrap() interface{} { return s.rv.Interface() }

func (s *reflectStruct) Get(key string) (Value, error) {
	v, ok := structField(s.rv, key)
	if !ok {
		return nil, nil
	}
	return Wrap(v.Interface())
}

func (s *reflectStruct) fieldNames() []string {
	fields := structFields(s.rv.Type())
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return names
}

func (s *reflectStruct) Len() (int, error) { return len(structFields(s.rv.Type())), nil }

func (s *reflectStruct) Keys() (Collection, error) {
	names := s.fieldNames()
	seq := make(SimpleSequence, len(names))
	for i, n := range names {
		seq[i] = SimpleString(n)
	}
	return seq, nil
}

func (s *reflectStruct) Values() (Collection, error) {
	names := s.fieldNames()
	seq := make(SimpleSequence, len(names))
	for i, n := range names {
		v, err := s.Get(n)
		if err != nil {
			return nil, err
		}
		seq[i] = v
	}
	return seq, nil
}

func (s *reflectStruct) Pairs() (PairIterator, error) {
	return &keysPairIterator{keys: s.fieldNames(), hash: s}, nil
}

// keysPairIterator iterates over the pairs of a hash given its keys.
type keysPairIterator struct {
	keys []string
	hash Hash
	next int
}

func (it *keysPairIterator) HasNext() (bool, error) {
	return it.next < len(it.keys), nil
}

func (it *keysPairIterator) Next() (Pair, error) {
	if it.next >= len(it.keys) {
		return Pair{}, ErrNoMoreElements
	}
	k := it.keys[it.next]
	it.next++
	v, err := it.hash.Get(k)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Key: SimpleString(k), Value: v}, nil
}
