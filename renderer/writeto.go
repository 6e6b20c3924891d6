// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package renderer

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/open2b/ftl/ast"
	"github.com/open2b/ftl/format"
	"github.com/open2b/ftl/model"
)

// outputFormat is an output format. If escape is not nil, the interpolated
// values are escaped with it when the auto-escaping is enabled. Non-markup
// formats, as JavaScript and JSON, have no escape. The values
// captured by an assignment in a markup format are markup values.
type outputFormat struct {
	name     string
	mimeType string
	escape   func(string) string
	markup   bool
}

var outputFormats = map[string]*outputFormat{
	"HTML":       {name: "HTML", mimeType: "text/html", escape: htmlEscape, markup: true},
	"XHTML":      {name: "XHTML", mimeType: "application/xhtml+xml", escape: htmlEscape, markup: true},
	"XML":        {name: "XML", mimeType: "application/xml", escape: xmlEscape, markup: true},
	"RTF":        {name: "RTF", mimeType: "application/rtf", escape: rtfEscape, markup: true},
	"JavaScript": {name: "JavaScript", mimeType: "application/javascript"},
	"JSON":       {name: "JSON", mimeType: "application/json"},
	"CSS":        {name: "CSS", mimeType: "text/css"},
	"URL":        {name: "URL", mimeType: "text/plain"},
	"Markdown":   {name: "Markdown", mimeType: "text/markdown", escape: markdownEscape},
	"plainText":  {name: "plainText", mimeType: "text/plain"},
	"undefined":  {name: "undefined"},
}

// lookupOutputFormat returns the output format with the given name. The
// empty name is the "undefined" format.
func lookupOutputFormat(name string) (*outputFormat, error) {
	if name == "" {
		name = "undefined"
	}
	if f, ok := outputFormats[name]; ok {
		return f, nil
	}
	names := make([]string, 0, len(outputFormats))
	for n := range outputFormats {
		names = append(names, n)
	}
	sort.Strings(names)
	return nil, fmt.Errorf("Unregistered output format name, %q. The output formats registered are: %s.",
		name, strings.Join(names, ", "))
}

// writeValue writes the value v of the interpolated expression expr.
func (env *Environment) writeValue(expr ast.Expression, v model.Value) error {
	if v == nil {
		return env.newInvalidReferenceError(expr)
	}
	var s string
	var m model.Markup
	var ok bool
	_, err := env.evalSafely(func() model.Value {
		s, m, ok = env.stringOrMarkup(expr, v)
		return nil
	})
	if err != nil {
		return err
	}
	if !ok {
		return env.newNotStringError(expr, v)
	}
	if m != nil {
		if f := m.OutputFormat(); f != env.format.name {
			return env.newError(expr, "The value to print is in ", quoted{f}, " format, which differs from the current output format, ",
				quoted{env.format.name}, ". Format conversion wasn't possible.")
		}
		s = m.MarkupString()
	} else if env.settings.AutoEscaping && env.format.escape != nil {
		s = env.format.escape(s)
	}
	_, err = io.WriteString(env.out, s)
	return err
}

// newNotStringError returns the error for a value that can not be
// converted to a string.
func (env *Environment) newNotStringError(expr ast.Expression, v model.Value) *Error {
	if _, ok := v.(model.Boolean); ok {
		return env.newError(expr, "Can't convert boolean to string automatically, because the \"boolean_format\" setting was empty.").tip(
			"Use ?c to print a boolean for computer consumption, as in ${myBool?c}.",
			"Use ?string(\"yes\", \"no\") to print a boolean for human consumption.",
			"You can set the \"boolean_format\" setting to something like \"yes,no\".")
	}
	return env.newUnexpectedTypeError(expr, v, "string or something automatically convertible to string (number, date or boolean), or \"template output\"")
}

// stringOrMarkup converts v to a string or to a markup value, the way it
// is interpolated. ok is false if v has no such conversion. If the
// conversion fails, it panics with an *Error.
func (env *Environment) stringOrMarkup(expr ast.Expression, v model.Value) (s string, m model.Markup, ok bool) {
	switch v := v.(type) {
	case model.Number:
		return env.formatNumber(expr, env.asNum(expr, v)), nil, true
	case model.Markup:
		return "", v, true
	case model.Date:
		return env.formatDate(expr, v, ""), nil, true
	case model.String:
		s, err := v.AsString()
		if err != nil {
			panic(env.newError(expr, "Failed to get the string value: ", err.Error()).withCause(err))
		}
		return s, nil, true
	case model.Boolean:
		if env.settings.BooleanFormat == "" {
			return "", nil, false
		}
		return env.formatBoolean(expr, v, env.settings.BooleanFormat), nil, true
	}
	return "", nil, false
}

// asNum returns the number value of v, panicking if it fails.
func (env *Environment) asNum(expr ast.Expression, v model.Number) model.Num {
	n, err := v.AsNumber()
	if err != nil {
		panic(env.newError(expr, "Failed to get the number value: ", err.Error()).withCause(err))
	}
	return n
}

// formatNumber formats n with the number format of the settings.
func (env *Environment) formatNumber(expr ast.Expression, n model.Num) string {
	return env.formatNumberWith(expr, n, env.settings.NumberFormat)
}

// formatNumberWith formats n with the given number format.
func (env *Environment) formatNumberWith(expr ast.Expression, n model.Num, f string) string {
	s, err := format.Number(n, f, env.locale)
	if err != nil {
		panic(env.newError(expr, "Failed to format the number with format ", quoted{f}, ": ", err.Error()).withCause(err))
	}
	return s
}

// formatDate formats d. If f is empty, the date, time or date-time format
// of the settings is used, according to the type of d.
func (env *Environment) formatDate(expr ast.Expression, d model.Date, f string) string {
	typ := d.DateType()
	if typ == model.UnknownDateType {
		panic(env.newError(expr, "Can't convert the date to string, because it isn't known if it's a date (no time part), ",
			"time or date-time value.").tip(
			"Use ?date, ?time, or ?datetime to tell FreeMarker the exact type.",
			"If you need a particular format only once, use ?string(pattern), like ?string('dd.MM.yyyy HH:mm:ss'), to specify which fields to display."))
	}
	if f == "" {
		switch typ {
		case model.DateOnly:
			f = env.settings.DateFormat
		case model.TimeOnly:
			f = env.settings.TimeFormat
		default:
			f = env.settings.DateTimeFormat
		}
	}
	t, err := d.AsDate()
	if err != nil {
		panic(env.newError(expr, "Failed to get the date value: ", err.Error()).withCause(err))
	}
	s, err := format.Date(t, typ, f, env.locale, env.location)
	if err != nil {
		panic(env.newError(expr, "Failed to format the ", typ.String(), " with format ", quoted{f}, ": ", err.Error()).withCause(err))
	}
	return s
}

// formatBoolean formats b with the boolean format f, as "yes,no" or "c".
func (env *Environment) formatBoolean(expr ast.Expression, b model.Boolean, f string) string {
	v, err := b.AsBoolean()
	if err != nil {
		panic(env.newError(expr, "Failed to get the boolean value: ", err.Error()).withCause(err))
	}
	if f == "c" {
		if v {
			return "true"
		}
		return "false"
	}
	i := strings.IndexByte(f, ',')
	if i < 0 {
		panic(env.newError(expr, "The boolean format must be \"c\" or two comma separated values, as \"yes,no\", but it was ", quoted{f}, "."))
	}
	if v {
		return f[:i]
	}
	return f[i+1:]
}

// concatMarkup concatenates a string or a markup value with a markup value.
// The string parts are escaped with the escape function of the format of
// the markup.
func (env *Environment) concatMarkup(expr ast.Expression, ls string, lm model.Markup, rs string, rm model.Markup) model.Markup {
	name := ""
	if lm != nil {
		name = lm.OutputFormat()
	}
	if rm != nil {
		if name != "" && rm.OutputFormat() != name {
			panic(env.newError(expr, "Concatenation left hand operand is in ", quoted{name}, " format, while the right hand operand is in ",
				quoted{rm.OutputFormat()}, ". Conversion to common format wasn't possible."))
		}
		name = rm.OutputFormat()
	}
	f, err := lookupOutputFormat(name)
	if err != nil || f.escape == nil {
		panic(env.newError(expr, "Can't concatenate a string with a markup value of format ", quoted{name}, "."))
	}
	if lm != nil {
		ls = lm.MarkupString()
	} else {
		ls = f.escape(ls)
	}
	if rm != nil {
		rs = rm.MarkupString()
	} else {
		rs = f.escape(rs)
	}
	return model.SimpleMarkup{Format: name, Text: ls + rs}
}
