// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"fmt"
	"strings"
)

// TypeError is returned when a value does not have the expected capability.
type TypeError struct {
	Expected string
	Value    Value
}

func (e *TypeError) Error() string {
	return "expected " + e.Expected + ", but the value is " + TypeDescription(e.Value)
}

// Unwrapper is implemented by the values that wrap a Go value.
type Unwrapper interface {
	Unwrap() interface{}
}

// TypeName returns the names of the capabilities of v joined by "+", as
// "string+hash", or "missing" if v is nil.
func TypeName(v Value) string {
	if v == nil {
		return "missing"
	}
	var names []string
	if _, ok := v.(String); ok {
		names = append(names, "string")
	}
	if _, ok := v.(Number); ok {
		names = append(names, "number")
	}
	if d, ok := v.(Date); ok {
		switch d.DateType() {
		case DateOnly:
			names = append(names, "date")
		case TimeOnly:
			names = append(names, "time")
		case DateTime:
			names = append(names, "date-time")
		default:
			names = append(names, "date-like")
		}
	}
	if _, ok := v.(Boolean); ok {
		names = append(names, "boolean")
	}
	if _, ok := v.(Markup); ok {
		names = append(names, "markup output")
	}
	if _, ok := v.(Sequence); ok {
		names = append(names, "sequence")
	} else if _, ok := v.(Collection); ok {
		names = append(names, "collection")
	} else if _, ok := v.(Iterable); ok {
		names = append(names, "iterable")
	}
	if _, ok := v.(HashEx); ok {
		names = append(names, "extended_hash")
	} else if _, ok := v.(Hash); ok {
		names = append(names, "hash")
	}
	if _, ok := v.(Directive); ok {
		names = append(names, "directive")
	}
	if _, ok := v.(Function); ok {
		names = append(names, "function")
	}
	if names == nil {
		return "unknown"
	}
	return strings.Join(names, "+")
}

// TypeDescription describes the type of v for error messages, as
// "string (wrapper: model.SimpleString)".
func TypeDescription(v Value) string {
	if v == nil {
		return "missing"
	}
	wrapper := strings.TrimPrefix(fmt.Sprintf("%T", v), "*")
	if u, ok := v.(Unwrapper); ok {
		if w := u.Unwrap(); w != nil {
			return fmt.Sprintf("%s (%T wrapped into %s)", TypeName(v), w, wrapper)
		}
	}
	return TypeName(v) + " (wrapper: " + wrapper + ")"
}
