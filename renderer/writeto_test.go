// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/open2b/ftl/ast"
	"github.com/open2b/ftl/model"
)

// withSettings returns the default settings modified by f.
func withSettings(f func(s *Settings)) *Settings {
	s := DefaultSettings()
	f(s)
	return s
}

func formatSettings(name string) *Settings {
	return withSettings(func(s *Settings) { s.OutputFormat = name })
}

var autoEscapingTests = []struct {
	format string
	src    string
	res    string
}{
	{"HTML", `<a href='x'>&"</a>`, `&lt;a href=&#39;x&#39;&gt;&amp;&quot;&lt;/a&gt;`},
	{"XHTML", `<a href='x'>&"</a>`, `&lt;a href=&#39;x&#39;&gt;&amp;&quot;&lt;/a&gt;`},
	{"XML", `<a b='c'/>`, `&lt;a b=&apos;c&apos;/&gt;`},
	{"RTF", `{\b x}`, `\{\\b x\}`},
	{"JavaScript", "a\"b'<\n", "a\"b'<\n"},
	{"JSON", "a\"b<\n", "a\"b<\n"},
	{"CSS", `a"b\`, `a"b\`},
	{"URL", "a b&c/d", "a b&c/d"},
	{"Markdown", "*a* [b]", `\*a\* \[b\]`},
	{"plainText", `<a>&`, `<a>&`},
	{"undefined", `<a>&`, `<a>&`},
	{"HTML", "plain", "plain"},
}

func TestAutoEscaping(t *testing.T) {
	for _, test := range autoEscapingTests {
		res, err := render(interp(str(test.src)), nil, formatSettings(test.format))
		if err != nil {
			t.Errorf("format: %s, source: %q, %s\n", test.format, test.src, err)
			continue
		}
		if res != test.res {
			t.Errorf("format: %s, source: %q, unexpected %q, expecting %q\n", test.format, test.src, res, test.res)
		}
	}
}

func TestAutoEscapingDisabled(t *testing.T) {
	settings := withSettings(func(s *Settings) {
		s.OutputFormat = "HTML"
		s.AutoEscaping = false
	})
	res, err := render(block(text("<p>"), interp(str("<a>")), text("</p>")), nil, settings)
	if err != nil {
		t.Fatal(err)
	}
	if res != "<p><a></p>" {
		t.Errorf("unexpected %q, expecting %q\n", res, "<p><a></p>")
	}
}

type markupTest struct {
	name   string
	tree   ast.Element
	format string
	res    string
}

func markupTests() []markupTest {
	return []markupTest{
		{"markup", interp(ident("m")), "HTML", "<b>"},
		{"concatenation", interp(add(ident("m"), str("<"))), "HTML", "<b>&lt;"},
		{"left concatenation", interp(add(str("&"), ident("m"))), "HTML", "&amp;<b>"},
		{"static text", block(text("<i>"), interp(ident("m")), text("</i>")), "HTML", "<i><b></i>"},
		{"capture", block(
			ast.NewCapturingAssignment(nil, ast.ScopeAssign, "x", text("<p>"), interp(str("<"))),
			interp(ident("x")), interp(ident("x"))), "HTML", "<p>&lt;<p>&lt;"},
		{"capture type", block(
			ast.NewCapturingAssignment(nil, ast.ScopeAssign, "x", text("<p>")),
			interp(bi(bi(ident("x"), "is_markup_output"), "c"))), "HTML", "true"},
		{"capture not markup", block(
			ast.NewCapturingAssignment(nil, ast.ScopeAssign, "x", interp(str("'"))),
			interp(ident("x"))), "JavaScript", "'"},
		{"output format variable", interp(ast.NewBuiltInVariable(nil, "output_format")), "HTML", "HTML"},
	}
}

func TestMarkup(t *testing.T) {
	vars := scope{"m": model.SimpleMarkup{Format: "HTML", Text: "<b>"}}
	for _, test := range markupTests() {
		res, err := render(test.tree, vars, formatSettings(test.format))
		if err != nil {
			t.Errorf("%s: %s\n", test.name, err)
			continue
		}
		if res != test.res {
			t.Errorf("%s: unexpected %q, expecting %q\n", test.name, res, test.res)
		}
	}
}

func TestMarkupFormatMismatch(t *testing.T) {
	vars := scope{
		"h": model.SimpleMarkup{Format: "HTML", Text: "<b>"},
		"x": model.SimpleMarkup{Format: "XML", Text: "<c/>"},
	}
	tests := []struct {
		tree   ast.Element
		format string
		err    string
	}{
		{interp(ident("h")), "XML", `The value to print is in "HTML" format, which differs from the current output format, "XML".`},
		{interp(ident("h")), "plainText", `The value to print is in "HTML" format, which differs from the current output format, "plainText".`},
		{interp(add(ident("h"), ident("x"))), "HTML", `Concatenation left hand operand is in "HTML" format, while the right hand operand is in "XML".`},
	}
	for _, test := range tests {
		_, err := render(test.tree, vars, formatSettings(test.format))
		if err == nil {
			t.Errorf("format %s: expecting error, got nil\n", test.format)
			continue
		}
		if !strings.Contains(err.Error(), test.err) {
			t.Errorf("format %s: unexpected error %q, expecting %q\n", test.format, err, test.err)
		}
	}
}

func TestFormatSettings(t *testing.T) {
	d := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name     string
		tree     ast.Element
		settings *Settings
		res      string
	}{
		{"number", interp(num("1234.5")), nil, "1,234.5"},
		{"computer number", interp(num("1234.5")), withSettings(func(s *Settings) { s.NumberFormat = "computer" }), "1234.5"},
		{"italian number", interp(num("1234.5")), withSettings(func(s *Settings) { s.Locale = "it_IT" }), "1.234,5"},
		{"datetime pattern", interp(ident("d")), withSettings(func(s *Settings) { s.DateTimeFormat = "yyyy-MM-dd HH:mm" }), "2020-01-02 03:04"},
		{"date pattern", interp(bi(ident("d"), "date")), withSettings(func(s *Settings) { s.DateFormat = "dd/MM/yyyy" }), "02/01/2020"},
		{"time pattern", interp(bi(ident("d"), "time")), withSettings(func(s *Settings) { s.TimeFormat = "HH:mm:ss" }), "03:04:05"},
		{"time zone", interp(ident("d")), withSettings(func(s *Settings) {
			s.DateTimeFormat = "HH:mm"
			s.TimeZone = "Europe/Rome"
		}), "04:04"},
		{"iso", interp(ident("d")), withSettings(func(s *Settings) { s.DateTimeFormat = "iso" }), "2020-01-02T03:04:05Z"},
		{"boolean", interp(boolean(true)), withSettings(func(s *Settings) { s.BooleanFormat = "yes,no" }), "yes"},
		{"computer boolean", interp(boolean(false)), withSettings(func(s *Settings) { s.BooleanFormat = "c" }), "false"},
	}
	for _, test := range tests {
		res, err := render(test.tree, scope{"d": d}, test.settings)
		if err != nil {
			t.Errorf("%s: %s\n", test.name, err)
			continue
		}
		if res != test.res {
			t.Errorf("%s: unexpected %q, expecting %q\n", test.name, res, test.res)
		}
	}
}

func TestInvalidBooleanFormat(t *testing.T) {
	settings := withSettings(func(s *Settings) { s.BooleanFormat = "yes" })
	_, err := render(interp(boolean(true)), nil, settings)
	if err == nil {
		t.Fatalf("expecting error, got nil\n")
	}
	expected := `The boolean format must be "c" or two comma separated values, as "yes,no", but it was "yes".`
	if !strings.Contains(err.Error(), expected) {
		t.Errorf("unexpected error %q, expecting %q\n", err, expected)
	}
	_, err = render(ast.NewSetting(nil, "boolean_format", str("yes")), nil, nil)
	if err == nil {
		t.Errorf("expecting error setting an invalid boolean format, got nil\n")
	}
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := lookupOutputFormat("Foo")
	if err == nil {
		t.Fatalf("expecting error, got nil\n")
	}
	expected := `Unregistered output format name, "Foo". The output formats registered are: ` +
		"CSS, HTML, JSON, JavaScript, Markdown, RTF, URL, XHTML, XML, plainText, undefined."
	if err.Error() != expected {
		t.Errorf("unexpected error %q, expecting %q\n", err, expected)
	}
	f, err := lookupOutputFormat("")
	if err != nil {
		t.Fatal(err)
	}
	if f.name != "undefined" {
		t.Errorf("unexpected format %q, expecting \"undefined\"\n", f.name)
	}
}
