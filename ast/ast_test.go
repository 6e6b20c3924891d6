// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ast

import (
	"errors"
	"strconv"
	"testing"

	"github.com/open2b/ftl/model"
)

func p(line, column, endLine, endColumn int) *Position {
	return &Position{Line: line, Column: column, EndLine: endLine, EndColumn: endColumn}
}

func ident(name string) *Identifier { return NewIdentifier(nil, name) }

func num(n int64) *NumberLiteral { return NewNumberLiteral(nil, model.IntNum(n)) }

func str(s string) *StringLiteral { return NewStringLiteral(nil, s) }

func text(s string) *StaticText { return NewStaticText(nil, s) }

var expressionCanonicalTests = []struct {
	src  string
	expr Expression
}{
	{"a", ident("a")},
	{`a\-b`, ident("a-b")},
	{`.vars["a b"]`, ident("a b")},
	{"1", num(1)},
	{"true", NewBooleanLiteral(nil, true)},
	{`"abc"`, str("abc")},
	{`'say "hi"'`, str(`say "hi"`)},
	{`"it's \"x\""`, str(`it's "x"`)},
	{`"a\nb"`, str("a\nb")},
	{`"$\{x}"`, str("${x}")},
	{`"Hello ${name}!"`, NewInterpolatedString(nil, str("Hello "), ident("name"), str("!"))},
	{"[1, 2, a]", NewListLiteral(nil, num(1), num(2), ident("a"))},
	{`{"a": 1, "b": x}`, NewHashLiteral(nil, []Expression{str("a"), str("b")}, []Expression{num(1), ident("x")})},
	{"1..5", NewRange(nil, num(1), num(5), RangeInclusive)},
	{"0..<n", NewRange(nil, num(0), ident("n"), RangeExclusive)},
	{"2..*3", NewRange(nil, num(2), num(3), RangeLength)},
	{"1..", NewRange(nil, num(1), nil, RangeUnbounded)},
	{"a + 1", NewAddOrConcat(nil, ident("a"), num(1))},
	{"a % 2", NewArithmetic(nil, OperatorModulo, ident("a"), num(2))},
	{"(a + 1) * 2", NewArithmetic(nil, OperatorMultiplication, NewParenthesis(nil, NewAddOrConcat(nil, ident("a"), num(1))), num(2))},
	{"a >= 2", NewComparison(nil, OperatorGreaterEqual, ident("a"), num(2))},
	{"a && !b", NewAnd(nil, ident("a"), NewNot(nil, ident("b")))},
	{"a || b", NewOr(nil, ident("a"), ident("b"))},
	{"-a", NewNegate(nil, ident("a"))},
	{"user.name", NewDot(nil, ident("user"), "name")},
	{`a.b\-c`, NewDot(nil, ident("a"), "b-c")},
	{"a[0]", NewDynamicKeyName(nil, ident("a"), num(0))},
	{"a[1..2]", NewDynamicKeyName(nil, ident("a"), NewRange(nil, num(1), num(2), RangeInclusive))},
	{"name?upper_case", NewBuiltIn(nil, ident("name"), "upper_case", nil)},
	{"f()", NewFunctionCall(nil, ident("f"), nil, nil)},
	{"f(1, x=2)", NewFunctionCall(nil, ident("f"), []Expression{num(1)}, []NamedArgument{{"x", num(2)}})},
	{`a!"d"`, NewDefaultTo(nil, ident("a"), str("d"))},
	{"a!", NewDefaultTo(nil, ident("a"), nil)},
	{"a??", NewExists(nil, ident("a"))},
	{".now", NewBuiltInVariable(nil, "now")},
}

func TestExpressionCanonicalForm(t *testing.T) {
	for _, test := range expressionCanonicalTests {
		if got := test.expr.CanonicalForm(); got != test.src {
			t.Errorf("expecting %q, got %q", test.src, got)
		}
	}
}

var elementCanonicalTests = []struct {
	src  string
	elem Element
}{
	{"${x}", NewInterpolation(nil, ident("x"))},
	{"<#list xs as x>${x}</#list>", NewList(nil, ident("xs"), "x", "", NewInterpolation(nil, ident("x")))},
	{"<#list h as k, v>${k}</#list>", NewList(nil, ident("h"), "k", "v", NewInterpolation(nil, ident("k")))},
	{"<#list xs as x>${x}<#else>none</#list>", NewListElseContainer(nil,
		NewList(nil, ident("xs"), "x", "", NewInterpolation(nil, ident("x"))),
		NewElseOfList(nil, text("none")))},
	{"<#list xs><#items as x>${x}<#sep>, </#sep></#items></#list>", NewList(nil, ident("xs"), "", "",
		NewItems(nil, "x", "", NewInterpolation(nil, ident("x")), NewSep(nil, text(", "))))},
	{"<#if a>1</#if>", NewConditionalBlock(nil, ConditionIf, ident("a"), text("1"))},
	{"<#if a>1<#elseif b>2<#else>3</#if>", NewIf(nil,
		NewConditionalBlock(nil, ConditionIf, ident("a"), text("1")),
		NewConditionalBlock(nil, ConditionElseIf, ident("b"), text("2")),
		NewConditionalBlock(nil, ConditionElse, nil, text("3")))},
	{`<#macro greet name greeting="Hello" rest...>hi</#macro>`, NewMacro(nil, "greet", false,
		[]MacroParameter{{Name: "name"}, {Name: "greeting", Default: str("Hello")}}, "rest", text("hi"))},
	{"<#macro m a{positional} b></#macro>", NewMacro(nil, "m", false,
		[]MacroParameter{{Name: "a", Positional: true}, {Name: "b"}}, "")},
	{"<#function sum(a, b)><#return a + b></#function>", NewMacro(nil, "sum", true,
		[]MacroParameter{{Name: "a"}, {Name: "b"}}, "", NewReturn(nil, NewAddOrConcat(nil, ident("a"), ident("b"))))},
	{"<#function f(xs...)></#function>", NewMacro(nil, "f", true, nil, "xs")},
	{`<@greet name="Joe"/>`, NewDynamicCall(nil, ident("greet"), nil, []NamedArgument{{"name", str("Joe")}}, nil)},
	{"<@repeat 3; i>${i}</@repeat>", NewDynamicCall(nil, ident("repeat"), []Expression{num(3)}, nil, []string{"i"},
		NewInterpolation(nil, ident("i")))},
	{"<@m.x 1, 2>a</@>", NewDynamicCall(nil, NewDot(nil, ident("m"), "x"), []Expression{num(1), num(2)}, nil, nil, text("a"))},
	{"<#assign x = 1>", NewAssignment(nil, ScopeAssign, "x", AssignmentSimple, num(1))},
	{"<#local x += 2>", NewAssignment(nil, ScopeLocal, "x", AssignmentAddition, num(2))},
	{"<#local x++>", NewAssignment(nil, ScopeLocal, "x", AssignmentIncrement, nil)},
	{"<#global x>a</#global>", NewCapturingAssignment(nil, ScopeGlobal, "x", text("a"))},
	{"<#attempt>a<#recover>b</#attempt>", NewAttempt(nil, NewBlock(nil, text("a")), NewRecover(nil, text("b")))},
	{`<#setting locale="it">`, NewSetting(nil, "locale", str("it"))},
	{`<#stop "bye"/>`, NewStop(nil, str("bye"))},
	{"<#nested 1, 2/>", NewNested(nil, num(1), num(2))},
	{"<#-- c -->", NewComment(nil, " c ")},
	{"<#t/><#lt/><#rt/><#nt/>", NewBlock(nil, NewTrimDirective(nil, true, true), NewTrimDirective(nil, true, false),
		NewTrimDirective(nil, false, true), NewTrimDirective(nil, false, false))},
	{"<#break><#continue>", NewBlock(nil, NewBreak(nil), NewContinue(nil))},
}

func TestElementCanonicalForm(t *testing.T) {
	for _, test := range elementCanonicalTests {
		if got := test.elem.CanonicalForm(); got != test.src {
			t.Errorf("expecting %q, got %q", test.src, got)
		}
	}
}

func TestDescription(t *testing.T) {
	tests := []struct {
		desc string
		elem Element
	}{
		{"#list xs as x", NewList(nil, ident("xs"), "x", "", text("a"))},
		{"@greet 1", NewDynamicCall(nil, ident("greet"), []Expression{num(1)}, nil, nil, text("a"))},
		{"${x}", NewInterpolation(nil, ident("x"))},
		{`text "a\nb"`, text("a\nb")},
		{"#if a", NewConditionalBlock(nil, ConditionIf, ident("a"))},
		{"#macro m a", NewMacro(nil, "m", false, []MacroParameter{{Name: "a"}}, "", text("a"))},
	}
	for _, test := range tests {
		if got := test.elem.Description(); got != test.desc {
			t.Errorf("expecting %q, got %q", test.desc, got)
		}
	}
}

func TestChildBuffer(t *testing.T) {
	b := NewBlock(nil)
	if b.ChildCount() != 0 || b.capacity() != 0 {
		t.Fatalf("expecting no children and no buffer, got %d children and capacity %d", b.ChildCount(), b.capacity())
	}
	for i := 0; i < 7; i++ {
		b.AddChild(NewComment(nil, strconv.Itoa(i)))
		if i == 0 && b.capacity() != initialChildCapacity {
			t.Fatalf("expecting capacity %d, got %d", initialChildCapacity, b.capacity())
		}
	}
	if b.capacity() != 2*initialChildCapacity {
		t.Fatalf("expecting capacity %d, got %d", 2*initialChildCapacity, b.capacity())
	}
	b.InsertChild(0, NewComment(nil, "first"))
	if b.ChildCount() != 8 {
		t.Fatalf("expecting 8 children, got %d", b.ChildCount())
	}
	for i, c := range b.Children() {
		if c.Index() != i {
			t.Errorf("child %d: expecting index %d, got %d", i, i, c.Index())
		}
		if c.Parent() != Element(b) {
			t.Errorf("child %d: unexpected parent", i)
		}
	}
	if text := b.Child(1).(*Comment).Text; text != "0" {
		t.Errorf("expecting child 1 to be \"0\", got %q", text)
	}
	func() {
		defer func() {
			r := recover()
			err, ok := r.(error)
			if !ok {
				t.Fatalf("expecting an error panic, got %v", r)
			}
			if err.Error() != "Index 8 is out of bounds. There are 8 child node(s)." {
				t.Errorf("unexpected panic message %q", err)
			}
		}()
		b.Child(8)
	}()
}

func TestCleanupTrimsBuffer(t *testing.T) {
	tests := []struct {
		texts    []string
		count    int
		capacity int
	}{
		{[]string{"a", "b", "c", "d", "e", "f"}, 6, 6},
		{[]string{"a", "b", "c", "d", "e", ""}, 5, 6},
		{[]string{"a", "b", "", "", "e", ""}, 3, 3},
		{[]string{"a", "", "b", "", "c", "", "d", ""}, 4, 4},
		{[]string{"", ""}, 0, 0},
	}
	for _, test := range tests {
		b := NewBlock(nil)
		for _, s := range test.texts {
			b.AddChild(text(s))
		}
		b.PostParseCleanup(false)
		if b.ChildCount() != test.count {
			t.Errorf("%q: expecting %d children, got %d", test.texts, test.count, b.ChildCount())
		}
		if b.capacity() != test.capacity {
			t.Errorf("%q: expecting capacity %d, got %d", test.texts, test.capacity, b.capacity())
		}
		for i, c := range b.Children() {
			if c.Index() != i || c.Parent() != Element(b) {
				t.Errorf("%q: child %d has index %d", test.texts, i, c.Index())
			}
		}
	}
}

func TestCleanupRemovedChild(t *testing.T) {
	empty := text("")
	b := NewBlock(nil, text("a"), empty, text("b"))
	b.PostParseCleanup(false)
	if empty.Parent() != nil || empty.Index() != 0 {
		t.Errorf("expecting the removed child to be detached")
	}
}

// whitespaceTests are built as a parser would build them from the source in
// the comment.
var whitespaceTests = []struct {
	name     string
	tree     func() Element
	stripped string
}{
	{
		// a
		// <#list xs as x>
		// ${x}
		// </#list>
		// b
		"list lines", func() Element {
			return NewBlock(nil,
				NewStaticText(p(1, 1, 1, 2), "a\n"),
				NewList(p(2, 1, 4, 8), NewIdentifier(p(2, 8, 2, 9), "xs"), "x", "",
					NewStaticText(p(2, 16, 2, 16), "\n"),
					NewInterpolation(p(3, 1, 3, 4), NewIdentifier(p(3, 3, 3, 3), "x")),
					NewStaticText(p(3, 5, 3, 5), "\n"),
				),
				NewStaticText(p(4, 9, 5, 2), "\nb\n"),
			)
		},
		"a\n<#list xs as x>${x}\n</#list>b\n",
	},
	{
		// <#assign x = 1>
		// text
		"assignment line", func() Element {
			return NewBlock(nil,
				NewAssignment(p(1, 1, 1, 15), ScopeAssign, "x", AssignmentSimple, NewNumberLiteral(p(1, 14, 1, 14), model.IntNum(1))),
				NewStaticText(p(1, 16, 2, 5), "\ntext\n"),
			)
		},
		"<#assign x = 1>text\n",
	},
	{
		// <#if c>
		//   yes
		// </#if>
		"indented body", func() Element {
			return NewBlock(nil,
				NewConditionalBlock(p(1, 1, 3, 6), ConditionIf, NewIdentifier(p(1, 6, 1, 6), "c"),
					NewStaticText(p(1, 8, 2, 6), "\n  yes\n"),
				),
			)
		},
		"<#if c>  yes\n</#if>",
	},
	{
		//   a <#t>
		// b
		"trim directive", func() Element {
			return NewBlock(nil,
				NewStaticText(p(1, 1, 1, 4), "  a "),
				NewTrimDirective(p(1, 5, 1, 8), true, true),
				NewStaticText(p(1, 9, 2, 2), "\nb\n"),
			)
		},
		"a <#t/>b\n",
	},
	{
		// x
		//   <#lt>y
		"left trim directive", func() Element {
			return NewBlock(nil,
				NewStaticText(p(1, 1, 2, 2), "x\n  "),
				NewTrimDirective(p(2, 3, 2, 7), true, false),
				NewStaticText(p(2, 8, 2, 8), "y"),
			)
		},
		"x\n<#lt/>y",
	},
	{
		// <#macro m></#macro>
		// <#macro n></#macro>
		"macro definitions", func() Element {
			return NewBlock(nil,
				NewMacro(p(1, 1, 1, 19), "m", false, nil, ""),
				NewStaticText(p(1, 20, 1, 20), "\n"),
				NewMacro(p(2, 1, 2, 19), "n", false, nil, ""),
				NewStaticText(p(2, 20, 2, 20), "\n"),
			)
		},
		"<#macro m></#macro><#macro n></#macro>",
	},
	{
		// a ${x} b
		"inline interpolation", func() Element {
			return NewBlock(nil,
				NewStaticText(p(1, 1, 1, 2), "a "),
				NewInterpolation(p(1, 3, 1, 6), NewIdentifier(p(1, 5, 1, 5), "x")),
				NewStaticText(p(1, 7, 1, 9), " b\n"),
			)
		},
		"a ${x} b\n",
	},
}

func TestWhitespaceStripping(t *testing.T) {
	for _, test := range whitespaceTests {
		tree := test.tree().PostParseCleanup(true)
		if got := tree.CanonicalForm(); got != test.stripped {
			t.Errorf("%s: expecting %q, got %q", test.name, test.stripped, got)
		}
	}
}

func TestWhitespaceStrippingIdempotence(t *testing.T) {
	for _, test := range whitespaceTests {
		tree := test.tree().PostParseCleanup(true)
		once := tree.CanonicalForm()
		tree = tree.PostParseCleanup(true)
		if twice := tree.CanonicalForm(); twice != once {
			t.Errorf("%s: second cleanup changed %q to %q", test.name, once, twice)
		}
	}
}

func TestNoWhitespaceStripping(t *testing.T) {
	// trim directives are honored also when the white space is not stripped.
	deliberate := map[string]bool{"trim directive": true, "left trim directive": true}
	for _, test := range whitespaceTests {
		tree := test.tree()
		want := tree.CanonicalForm()
		if deliberate[test.name] {
			want = test.stripped
		}
		if got := tree.PostParseCleanup(false).CanonicalForm(); got != want {
			t.Errorf("%s: expecting %q, got %q", test.name, want, got)
		}
	}
}

func TestTopLevelText(t *testing.T) {
	inRoot := NewStaticText(nil, " ")
	NewBlock(nil, inRoot)
	inMacro := NewStaticText(nil, " ")
	NewBlock(nil, NewMacro(nil, "m", false, nil, "", inMacro))
	inFunction := NewStaticText(nil, " ")
	NewBlock(nil, NewMacro(nil, "f", true, nil, "", NewBlock(nil, inFunction)))
	inList := NewStaticText(nil, " ")
	NewBlock(nil, NewList(nil, ident("xs"), "x", "", inList))
	rootList := NewStaticText(nil, " ")
	NewList(nil, ident("xs"), "x", "", rootList)
	tests := []struct {
		name string
		text *StaticText
		top  bool
	}{
		{"root block", inRoot, true},
		{"macro body", inMacro, true},
		{"function body block", inFunction, true},
		{"list body", inList, false},
		{"list as root", rootList, true},
	}
	for _, test := range tests {
		if top := isTopLevel(test.text.Parent()); top != test.top {
			t.Errorf("%s: expecting %t, got %t", test.name, test.top, top)
		}
	}
	// white space between the start of a macro body and a non-outputting
	// element is ignorable.
	ws := NewStaticText(nil, "\n  ")
	NewBlock(nil, NewMacro(nil, "m", false, nil, "", ws,
		NewAssignment(nil, ScopeLocal, "x", AssignmentSimple, num(1))))
	if !ws.isIgnorable(true) {
		t.Errorf("expecting white space in the macro body to be ignorable")
	}
}

func TestHashListing(t *testing.T) {
	tests := []struct {
		name string
		list *List
		hash bool
	}{
		{"one loop variable", NewList(nil, ident("xs"), "x", ""), false},
		{"two loop variables", NewList(nil, ident("h"), "k", "v"), true},
		{"items", NewList(nil, ident("xs"), "", "", NewItems(nil, "x", "")), false},
		{"hash items", NewList(nil, ident("h"), "", "", NewItems(nil, "k", "v")), true},
		{"nested hash items", NewList(nil, ident("h"), "", "",
			NewConditionalBlock(nil, ConditionIf, ident("c"), NewItems(nil, "k", "v"))), true},
		{"hash items of an inner list", NewList(nil, ident("xs"), "", "",
			NewItems(nil, "x", "", NewList(nil, ident("h"), "", "", NewItems(nil, "k", "v")))), false},
	}
	for _, test := range tests {
		if hash := test.list.IsHashListing(); hash != test.hash {
			t.Errorf("%s: expecting %t, got %t", test.name, test.hash, hash)
		}
	}
}

func TestStrippedPosition(t *testing.T) {
	tail := NewStaticText(p(1, 16, 2, 5), "\ntext\n")
	b := NewBlock(nil, NewAssignment(p(1, 1, 1, 15), ScopeAssign, "x", AssignmentSimple, num(1)), tail)
	b.PostParseCleanup(true)
	if tail.Line != 2 || tail.Column != 1 {
		t.Errorf("expecting position 2:1, got %s", tail.Pos())
	}
}

func TestParameterView(t *testing.T) {
	call := NewDynamicCall(nil, ident("m"), []Expression{num(1)}, []NamedArgument{{"a", num(2)}}, []string{"x", "y"})
	roles := []ParameterRole{RoleCallee, RoleArgumentValue, RoleArgumentName, RoleArgumentValue,
		RoleTargetLoopVariable, RoleTargetLoopVariable}
	if call.ParameterCount() != len(roles) {
		t.Fatalf("expecting %d parameters, got %d", len(roles), call.ParameterCount())
	}
	for i, role := range roles {
		if got := call.ParameterRole(i); got != role {
			t.Errorf("parameter %d: expecting role %q, got %q", i, role, got)
		}
	}
	if v := call.ParameterValue(2); v != "a" {
		t.Errorf("expecting argument name \"a\", got %v", v)
	}
	if v := call.ParameterValue(5); v != "y" {
		t.Errorf("expecting nested parameter \"y\", got %v", v)
	}
	arith := NewArithmetic(nil, OperatorDivision, ident("a"), ident("b"))
	if arith.ParameterRole(2).String() != "AST-node subtype" {
		t.Errorf("unexpected role %q", arith.ParameterRole(2))
	}
	for _, n := range []Node{call, arith, ident("a"), text("x")} {
		func() {
			defer func() {
				if r := recover(); r != ErrParameterIndex {
					t.Errorf("%s: expecting ErrParameterIndex, got %v", n.Label(), r)
				}
			}()
			n.ParameterValue(n.ParameterCount())
		}()
	}
}

func TestNewTemplate(t *testing.T) {
	x := ident("x")
	interp := NewInterpolation(nil, x)
	root := NewBlock(nil, NewList(nil, ident("xs"), "x", "", interp))
	tmpl := NewTemplate("index.ftl", root)
	for _, n := range []Node{root, interp, x} {
		if n.Template() != tmpl {
			t.Errorf("%s: expecting the template to be set", n.Label())
		}
	}
	defer func() {
		if recover() == nil {
			t.Errorf("expecting a panic setting the location twice")
		}
	}()
	x.SetLocation(tmpl, nil)
}

func TestCustomData(t *testing.T) {
	call := NewDynamicCall(nil, ident("m"), nil, nil, nil)
	calls := 0
	create := func() (interface{}, error) {
		calls++
		return calls, nil
	}
	for i := 0; i < 3; i++ {
		v, err := call.CustomData("a", create)
		if err != nil {
			t.Fatal(err)
		}
		if v != 1 {
			t.Fatalf("expecting 1, got %v", v)
		}
	}
	if v, _ := call.CustomData("b", create); v != 2 {
		t.Errorf("expecting 2 for a different provider, got %v", v)
	}
	fail := errors.New("boom")
	_, err := call.CustomData("c", func() (interface{}, error) { return nil, fail })
	if !errors.Is(err, fail) {
		t.Errorf("expecting the create error to be wrapped, got %v", err)
	}
}

func TestCustomDataProviders(t *testing.T) {
	call := NewDynamicCall(nil, ident("m"), nil, nil, nil)
	calls := 0
	create := func() (interface{}, error) {
		calls++
		return calls, nil
	}
	fn := func() {}
	m := map[string]int{}
	tests := []struct {
		name     string
		provider interface{}
		data     int
	}{
		{"function", fn, 1},
		{"same function", fn, 1},
		{"map", m, 2},
		{"same map", m, 2},
		{"slice", []int{1}, 3},
		{"struct with a function", struct{ f interface{} }{fn}, 4},
		{"struct with a function again", struct{ f interface{} }{fn}, 5},
		{"nil", nil, 6},
		{"nil again", nil, 6},
	}
	for _, test := range tests {
		v, err := call.CustomData(test.provider, create)
		if err != nil {
			t.Fatalf("%s: %s", test.name, err)
		}
		if v != test.data {
			t.Errorf("%s: expecting %d, got %v", test.name, test.data, v)
		}
	}
}

func TestArgumentLayout(t *testing.T) {
	m := NewMacro(nil, "m", false, []MacroParameter{{Name: "a"}, {Name: "p", Positional: true}, {Name: "b"}}, "rest")
	layout := m.ArgumentLayout()
	if layout.PositionalCount != 1 || len(layout.Named) != 2 || !layout.NamedVarargs || layout.PositionalVarargs {
		t.Errorf("unexpected layout %+v", layout)
	}
	slots := m.SlotParams()
	if slots[0].Name != "p" || slots[1].Name != "a" || slots[2].Name != "b" {
		t.Errorf("unexpected slot order %v", slots)
	}
	f := NewMacro(nil, "f", true, []MacroParameter{{Name: "a"}, {Name: "b"}}, "rest")
	layout = f.ArgumentLayout()
	if layout.PositionalCount != 2 || len(layout.Named) != 0 || !layout.PositionalVarargs {
		t.Errorf("unexpected layout %+v", layout)
	}
}
