// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
)

// fieldName represents the name of a field in a struct.
type fieldName struct {
	name  string
	index []int
}

// structs maintains the association between the field names of a struct,
// as they are called in the template, and the field index in the struct.
var structs = struct {
	fields map[reflect.Type][]fieldName
	sync.RWMutex
}{map[reflect.Type][]fieldName{}, sync.RWMutex{}}

// structField returns the value of the field named name of the struct st.
// ok is false if the field does not exist.
func structField(st reflect.Value, name string) (v reflect.Value, ok bool) {
	for _, field := range structFields(st.Type()) {
		if field.name == name {
			return st.FieldByIndex(field.index), true
		}
	}
	return reflect.Value{}, false
}

// structFields returns the fields of the struct type typ. Fields of embedded
// structs are promoted as in Go, unless shadowed.
func structFields(typ reflect.Type) []fieldName {
	structs.RLock()
	fields, ok := structs.fields[typ]
	structs.RUnlock()
	if !ok {
		structs.Lock()
		if fields, ok = structs.fields[typ]; !ok {
			fields = collectFields(typ, nil, map[string]bool{})
			structs.fields[typ] = fields
		}
		structs.Unlock()
	}
	return fields
}

func collectFields(typ reflect.Type, index []int, seen map[string]bool) []fieldName {
	var fields []fieldName
	var embedded []reflect.StructField
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			embedded = append(embedded, field)
			continue
		}
		if field.PkgPath != "" {
			continue
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup("ftl"); ok {
			name = parseVarTag(tag)
			if name == "" {
				panic(fmt.Errorf("ftl/model: invalid tag of field %q", field.Name))
			}
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		fields = append(fields, fieldName{name, append(append([]int{}, index...), i)})
	}
	for _, field := range embedded {
		fields = append(fields, collectFields(field.Type, append(append([]int{}, index...), field.Index...), seen)...)
	}
	return fields
}

// parseVarTag parses the tag of a field of a struct and returns the name.
func parseVarTag(tag string) string {
	sp := strings.SplitN(tag, ",", 2)
	name := sp[0]
	if name == "" {
		return ""
	}
	for _, r := range name {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return ""
		}
	}
	return name
}
