// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yamltree

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/open2b/ftl/ast"
	"github.com/open2b/ftl/model"
	"github.com/open2b/ftl/renderer"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

// render parses src and renders it with the data model of the document or,
// if it is not empty, with the data model in data.
func render(src, data string) (string, error) {
	doc, err := Parse("test.ftl", []byte(src))
	if err != nil {
		return "", err
	}
	root := doc.Data
	if data != "" {
		root, err = ParseData([]byte(data))
		if err != nil {
			return "", err
		}
	}
	var b strings.Builder
	env, err := renderer.NewEnvironment(root, &b, doc.Settings)
	if err != nil {
		return "", err
	}
	err = env.Process(doc.Template.Root)
	return b.String(), err
}

var renderTests = []struct {
	name string
	src  string
	data string
	out  string
}{
	{"document", `
name: hello.ftl
data:
  user: {name: Ann}
tree:
  - "Hello "
  - interpolation: {ident: user.name}
  - "!"
`, "", "Hello Ann!"},
	{"sequence", `["a", {text: b}, {comment: c}, {noparse: "<#if>"}]`, "", "ab<#if>"},
	{"if", `
- if: {gt: [{ident: n}, 10]}
  then: [big]
  elseif:
    - if: {gt: [{ident: n}, 5]}
      then: [medium]
  else: [small]
`, "n: 7", "medium"},
	{"if else", `
- if: {gt: [{ident: n}, 10]}
  then: [big]
  else: [small]
`, "n: 3", "small"},
	{"single if", `[{if: {ident: ok}, then: ["yes"]}, "."]`, "ok: false", "."},
	{"list", `
- list: {ident: xs}
  as: x
  body:
    - interpolation: {ident: x}
    - sep: [", "]
  else: [empty]
`, "xs: [1, 2, 3]", "1, 2, 3"},
	{"list else", `
- list: {ident: xs}
  as: x
  body: [{interpolation: {ident: x}}]
  else: [empty]
`, "xs: []", "empty"},
	{"hash list", `
- list: {ident: h}
  as: [k, v]
  body:
    - interpolation: {ident: k}
    - "="
    - interpolation: {ident: v}
    - sep: [";"]
`, "h: {b: y, a: x}", "a=x;b=y"},
	{"items", `
- list: {ident: xs}
  body:
    - "["
    - items: x
      body: [{interpolation: {ident: x}}]
    - "]"
`, "xs: [a, b]", "[ab]"},
	{"hash items", `
- list: {ident: h}
  body:
    - "["
    - items: [k, v]
      body:
        - interpolation: {ident: k}
        - "="
        - interpolation: {ident: v}
        - sep: [","]
    - "]"
`, "h: {a: 1, b: 2}", "[a=1,b=2]"},
	{"break", `
- list: {range: [1, 5]}
  as: x
  body:
    - if: {eq: [{ident: x}, 3]}
      then: [{break: null}]
    - interpolation: {ident: x}
`, "", "12"},
	{"assign", `
- assign: n
  value: 1
- assign: n
  op: +=
  value: 2
- assign: n
  op: ++
- interpolation: {ident: n}
`, "", "4"},
	{"capture", `
- assign: s
  body: [a, {interpolation: {mul: [2, 3]}}]
- interpolation: {builtin: [{ident: s}, upper_case]}
`, "", "A6"},
	{"global", `
- global: g
  value: x
- interpolation: {dot: [{var: globals}, g]}
`, "", "x"},
	{"macro", `
- macro: greet
  params: [name, {name: greeting, default: Hello}]
  body:
    - interpolation: {ident: greeting}
    - ", "
    - interpolation: {ident: name}
- call: greet
  named: {name: World}
`, "", "Hello, World"},
	{"nested", `
- macro: twice
  body: [{nested: null}, {nested: null}]
- call: twice
  body: [x]
`, "", "xx"},
	{"nested parameters", `
- macro: each
  body: [{nested: [1]}, {nested: [2]}]
- call: each
  params: [n]
  body: [{interpolation: {ident: n}}]
`, "", "12"},
	{"function", `
- function: double
  params: [x]
  body:
    - return: {mul: [{ident: x}, 2]}
- interpolation: {call: [{ident: double}, 21]}
`, "", "42"},
	{"range join", `[{interpolation: {call: [{builtin: [{range: [1, 4], end: exclusive}, join]}, ", "]}}]`, "", "1, 2, 3"},
	{"default", `[{interpolation: {default: [{ident: missing}, fallback]}}]`, "", "fallback"},
	{"exists", `[{interpolation: {builtin: [{exists: {ident: missing}}, c]}}]`, "", "false"},
	{"logic", `[{interpolation: {builtin: [{and: [true, {not: {or: [false, false]}}]}, c]}}]`, "", "true"},
	{"arithmetic", `[{interpolation: {sub: [{paren: {add: [1, 2]}}, {neg: 4}]}}]`, "", "7"},
	{"index", `[{interpolation: {index: [{ident: xs}, 1]}}]`, "xs: [a, b]", "b"},
	{"hash literal", `[{interpolation: {dot: [{hash: {a: 1, b: {string: two}}}, b]}}]`, "", "two"},
	{"string and number", `[{interpolation: {add: [{string: "10"}, {number: "5"}]}}]`, "", "105"},
	{"attempt", `
- attempt: [a, {interpolation: {ident: missing}}]
  recover: [recovered]
`, "", "recovered"},
	{"setting", `
- setting: locale
  value: it_IT
- interpolation: 1234.5
`, "", "1.234,5"},
	{"output format", `
settings:
  output_format: HTML
tree:
  - interpolation: "<a>"
`, "", "&lt;a&gt;"},
	{"strip whitespace", `
- "  "
- assign: x
  value: 1
- "  "
`, "", ""},
	{"keep whitespace", `
settings: {strip_whitespace: false}
tree:
  - "  "
  - assign: x
    value: 1
  - "  "
`, "", "    "},
}

func TestRender(t *testing.T) {
	for _, test := range renderTests {
		out, err := render(test.src, test.data)
		if err != nil {
			t.Errorf("%s: %s", test.name, err)
			continue
		}
		if out != test.out {
			t.Errorf("%s: unexpected %q, expecting %q", test.name, out, test.out)
		}
	}
}

func TestParseName(t *testing.T) {
	doc, err := Parse("default.ftl", []byte("name: page.ftl\ntree: [a]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Name != "page.ftl" || doc.Template.Name != "page.ftl" {
		t.Errorf("unexpected name %q, expecting %q", doc.Template.Name, "page.ftl")
	}
	doc, err = Parse("default.ftl", nil)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Name != "default.ftl" {
		t.Errorf("unexpected name %q, expecting %q", doc.Name, "default.ftl")
	}
	if n := len(doc.Template.Root.Children()); n != 0 {
		t.Errorf("unexpected %d children, expecting 0", n)
	}
}

func TestParsePosition(t *testing.T) {
	doc, err := Parse("test.ftl", []byte("tree:\n  - \"a\"\n  - interpolation: {ident: x}\n"))
	if err != nil {
		t.Fatal(err)
	}
	children := doc.Template.Root.Children()
	if len(children) != 2 {
		t.Fatalf("unexpected %d children, expecting 2", len(children))
	}
	if p := children[1].Pos().String(); p != "3:5" {
		t.Errorf("unexpected position %s, expecting 3:5", p)
	}
	if children[1].Template() != doc.Template {
		t.Errorf("unexpected template %v", children[1].Template())
	}
}

func TestRenderError(t *testing.T) {
	_, err := render("[{interpolation: {ident: missing}}]", "")
	var e *renderer.Error
	if !errors.As(err, &e) {
		t.Fatalf("unexpected error %#v, expecting *renderer.Error", err)
	}
	if e.TemplateName() != "test.ftl" {
		t.Errorf("unexpected template name %q, expecting %q", e.TemplateName(), "test.ftl")
	}
}

var parseErrorTests = []struct {
	src string
	err string
}{
	{`42`, `1:1: expecting a mapping or a sequence`},
	{`[{foo: 1}]`, `1:2: unknown directive "foo"`},
	{`[[a]]`, `1:2: expecting a text or a directive`},
	{`[{if: true, bogus: 1}]`, `1:2: if: unexpected key "bogus"`},
	{`{tree: [{interpolation: null}]}`, `1:25: null is not an expression`},
	{`{tree: [], extra: 1}`, `1:1: tree: unexpected key "extra"`},
	{`[{assign: x, op: "**", value: 1}]`, `1:18: unknown assignment operator "**"`},
	{`[{assign: x, op: "++", value: 1}]`, `1:2: assign: the operator ++ can't have a value`},
	{`[{assign: x}]`, `1:2: assign: missing "value"`},
	{`[{interpolation: {builtin: [{ident: x}, nope]}}]`, `1:41: Unknown built-in: "nope".`},
	{`[{interpolation: {sub: [1]}}]`, `1:24: sub: expecting 2 operands`},
	{`[{interpolation: {range: [1]}}]`, `1:26: range: missing high bound`},
	{`[{interpolation: {range: [1, 2], end: unbounded}}]`, `1:26: range: an unbounded range can't have a high bound`},
	{`[{interpolation: {ident: "a..b"}}]`, `1:26: ident: invalid name "a..b"`},
	{`[{interpolation: {foo: 1}}]`, `1:18: unknown expression "foo"`},
	{`[{trim: x}]`, `1:9: unknown trim directive "x"`},
	{`[{list: {ident: xs}, as: [a, b, c]}]`, `1:26: expecting one or two loop variables`},
	{`{data: [1]}`, `1:8: the data model must be a mapping`},
}

func TestParseErrors(t *testing.T) {
	for _, test := range parseErrorTests {
		_, err := Parse("test.ftl", []byte(test.src))
		if err == nil {
			t.Errorf("source: %q, expecting error %q, got nil", test.src, test.err)
			continue
		}
		var e *Error
		if !errors.As(err, &e) {
			t.Errorf("source: %q, unexpected error %#v, expecting *Error", test.src, err)
			continue
		}
		if !strings.HasPrefix(err.Error(), test.err) {
			t.Errorf("source: %q, unexpected error %q, expecting %q", test.src, err, test.err)
		}
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse("test.ftl", []byte("[a, b"))
	if err == nil {
		t.Fatal("expecting error, got nil")
	}
	var e *Error
	if errors.As(err, &e) {
		t.Errorf("unexpected *Error %q for a YAML syntax error", err)
	}
}

func TestElementKinds(t *testing.T) {
	tests := []struct {
		src  string
		kind string
	}{
		{`text`, "*ast.StaticText"},
		{`{block: [a]}`, "*ast.Block"},
		{`{if: true, then: [a]}`, "*ast.ConditionalBlock"},
		{`{if: true, then: [a], else: [b]}`, "*ast.If"},
		{`{list: {ident: xs}, body: [a]}`, "*ast.List"},
		{`{list: {ident: xs}, else: [b]}`, "*ast.ListElseContainer"},
		{`{continue: null}`, "*ast.Continue"},
		{`{local: x, value: 1}`, "*ast.Assignment"},
		{`{return: null}`, "*ast.Return"},
		{`{stop: "reason"}`, "*ast.Stop"},
		{`{call: {dot: [{ident: ns}, m]}}`, "*ast.DynamicCall"},
		{`{attempt: [a], recover: [b]}`, "*ast.Attempt"},
		{`{setting: locale, value: en_US}`, "*ast.Setting"},
	}
	for _, test := range tests {
		e := element(node(t, test.src))
		if kind := fmt.Sprintf("%T", e); kind != test.kind {
			t.Errorf("source: %q, unexpected %s, expecting %s", test.src, kind, test.kind)
		}
	}
}

func TestTrimDirectives(t *testing.T) {
	tests := []struct {
		kind        string
		left, right bool
	}{
		{"t", true, true},
		{"lt", true, false},
		{"rt", false, true},
		{"nt", false, false},
	}
	for _, test := range tests {
		e, ok := element(node(t, "{trim: "+test.kind+"}")).(*ast.TrimDirective)
		if !ok {
			t.Errorf("%s: expecting *ast.TrimDirective", test.kind)
			continue
		}
		if e.Left != test.left || e.Right != test.right {
			t.Errorf("%s: unexpected left %t and right %t", test.kind, e.Left, e.Right)
		}
	}
}

func TestMacroParameters(t *testing.T) {
	m, ok := element(node(t, `{function: f, params: [a, {name: b, default: 2}, {name: c, positional: true}], catchall: rest}`)).(*ast.Macro)
	if !ok {
		t.Fatal("expecting *ast.Macro")
	}
	var got []string
	for _, p := range m.Params {
		s := p.Name
		if p.Default != nil {
			s += "=" + p.Default.CanonicalForm()
		}
		if p.Positional {
			s += " positional"
		}
		got = append(got, s)
	}
	want := []string{"a", "b=2", "c positional"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected parameters (-want +got):\n%s", diff)
	}
	if m.CatchAll != "rest" || !m.Function {
		t.Errorf("unexpected catch-all %q and function %t", m.CatchAll, m.Function)
	}
}

func TestExpressionCanonicalForm(t *testing.T) {
	tests := []struct {
		src  string
		form string
	}{
		{`{ident: a.b.c}`, "a.b.c"},
		{`{index: [{ident: a}, "k"]}`, `a["k"]`},
		{`{range: [1], end: unbounded}`, "1.."},
		{`{range: [1, 3], end: length}`, "1..*3"},
		{`{ne: [1, 2]}`, "1 != 2"},
		{`{default: [{ident: a}]}`, "a!"},
		{`{builtin: [{ident: a}, size]}`, "a?size"},
		{`[1, x]`, `[1, "x"]`},
	}
	for _, test := range tests {
		if form := expression(node(t, test.src)).CanonicalForm(); form != test.form {
			t.Errorf("source: %q, unexpected %q, expecting %q", test.src, form, test.form)
		}
	}
}

func TestParseData(t *testing.T) {
	h, err := ParseData(nil)
	if err != nil {
		t.Fatal(err)
	}
	if h != model.EmptyHash {
		t.Errorf("unexpected %#v, expecting the empty hash", h)
	}
	_, err = ParseData([]byte("[1, 2]"))
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("unexpected error %#v, expecting *Error", err)
	}
	if e.Line != 1 || e.Column != 1 {
		t.Errorf("unexpected position %d:%d, expecting 1:1", e.Line, e.Column)
	}
}

func TestParseSettings(t *testing.T) {
	settings, err := ParseSettings([]byte("output_format: HTML\nlocale: it_IT\nstrip_whitespace: false\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := renderer.DefaultSettings()
	want.OutputFormat = "HTML"
	want.Locale = "it_IT"
	want.StripWhitespace = false
	if diff := cmp.Diff(want, settings); diff != "" {
		t.Errorf("unexpected settings (-want +got):\n%s", diff)
	}
}

// node returns the YAML node of src.
func node(t *testing.T, src string) *yaml.Node {
	t.Helper()
	var n yaml.Node
	if err := yaml.Unmarshal([]byte(src), &n); err != nil {
		t.Fatal(err)
	}
	return document(&n)
}
