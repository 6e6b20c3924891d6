// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ast

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/open2b/ftl/model"
)

// Block node represents a sequence of elements with no syntax of its own,
// as the root of a template.
type Block struct {
	element
}

func NewBlock(pos *Position, children ...Element) *Block {
	n := &Block{}
	n.init(n, pos, children)
	return n
}

func (n *Block) dump(canonical bool) string {
	if canonical {
		return n.dumpChildren()
	}
	return "#mixed_content"
}

func (n *Block) Label() string { return "#mixed_content" }

// Interpolation node represents the interpolation of an expression, as
// ${a}.
type Interpolation struct {
	element
	Expr Expression // interpolated expression
}

func NewInterpolation(pos *Position, expr Expression) *Interpolation {
	n := &Interpolation{Expr: expr}
	n.init(n, pos, nil)
	return n
}

func (n *Interpolation) dump(canonical bool) string {
	return "${" + n.Expr.CanonicalForm() + "}"
}

func (n *Interpolation) Label() string { return "${...}" }

func (n *Interpolation) heedsOpeningWhitespace() bool { return true }

func (n *Interpolation) heedsTrailingWhitespace() bool { return true }

func (n *Interpolation) ParameterCount() int { return 1 }

func (n *Interpolation) ParameterValue(i int) interface{} { return paramValue(i, n.Expr) }

func (n *Interpolation) ParameterRole(i int) ParameterRole { return paramRole(i, RoleContent) }

// ConditionKind is the kind of a conditional block.
type ConditionKind int

const (
	ConditionIf     ConditionKind = iota // #if
	ConditionElse                        // #else
	ConditionElseIf                      // #elseif
)

// String returns the name of the directive, as "#if".
func (kind ConditionKind) String() string {
	return []string{"#if", "#else", "#elseif"}[kind]
}

// If node represents an #if directive that has #elseif or #else blocks.
// Its children are ConditionalBlock nodes.
type If struct {
	element
}

func NewIf(pos *Position, blocks ...*ConditionalBlock) *If {
	n := &If{}
	n.init(n, pos, nil)
	for _, b := range blocks {
		n.AddChild(b)
	}
	return n
}

func (n *If) dump(canonical bool) string {
	if canonical {
		return n.dumpChildren() + "</#if>"
	}
	return "#if-#elseif-#else-container"
}

func (n *If) Label() string { return "#if-#elseif-#else-container" }

// ConditionalBlock node represents an #if, #elseif or #else block. A
// conditional block with kind ConditionIf that is not in an If node is a
// standalone #if directive.
type ConditionalBlock struct {
	element
	Kind      ConditionKind // kind
	Condition Expression    // condition; nil for #else
}

func NewConditionalBlock(pos *Position, kind ConditionKind, condition Expression, children ...Element) *ConditionalBlock {
	n := &ConditionalBlock{Kind: kind, Condition: condition}
	n.init(n, pos, children)
	return n
}

func (n *ConditionalBlock) dump(canonical bool) string {
	s := n.Kind.String()
	if n.Condition != nil {
		s += " " + n.Condition.CanonicalForm()
	}
	if !canonical {
		return s
	}
	s = "<" + s + ">" + n.dumpChildren()
	if _, ok := n.parent.(*If); !ok {
		s += "</#if>"
	}
	return s
}

func (n *ConditionalBlock) Label() string { return n.Kind.String() }

func (n *ConditionalBlock) ParameterCount() int { return 2 }

func (n *ConditionalBlock) ParameterValue(i int) interface{} {
	return paramValue(i, n.Condition, int(n.Kind))
}

func (n *ConditionalBlock) ParameterRole(i int) ParameterRole {
	return paramRole(i, RoleCondition, RoleSubtype)
}

// List node represents a #list directive. If LoopVar2 is not empty, the
// listing is a hash listing and LoopVar and LoopVar2 are the key and the
// value. If LoopVar is empty, the iteration is done by a nested #items,
// and the listing is a hash listing if the #items has two loop variables.
type List struct {
	element
	Listed      Expression // listed value
	LoopVar     string     // loop variable or key
	LoopVar2    string     // value of a hash listing
	HashListing bool       // iterates over key-value pairs
}

// NewList returns a #list node. HashListing is set if loopVar2 is not
// empty or if a nested #items of the list has two loop variables.
func NewList(pos *Position, listed Expression, loopVar, loopVar2 string, children ...Element) *List {
	n := &List{Listed: listed, LoopVar: loopVar, LoopVar2: loopVar2}
	n.HashListing = loopVar2 != "" || hasHashItems(children)
	n.init(n, pos, children)
	return n
}

// hasHashItems reports whether an #items with two loop variables is among
// elements or their descendants, not counting the content of nested lists.
func hasHashItems(elements []Element) bool {
	for _, e := range elements {
		switch e := e.(type) {
		case *Items:
			if e.LoopVar2 != "" {
				return true
			}
		case *List, *ListElseContainer:
			continue
		}
		if hasHashItems(e.Children()) {
			return true
		}
	}
	return false
}

// IsHashListing reports whether the listing iterates over key-value pairs.
func (n *List) IsHashListing() bool { return n.HashListing }

// LoopVars returns the names of the loop variables.
func (n *List) LoopVars() []string {
	return loopVars(n.LoopVar, n.LoopVar2)
}

func (n *List) IsNestedBlockRepeater() bool { return n.LoopVar != "" }

func (n *List) dump(canonical bool) string {
	s := "#list " + n.Listed.CanonicalForm() + dumpLoopVars(n.LoopVar, n.LoopVar2)
	if !canonical {
		return s
	}
	s = "<" + s + ">" + n.dumpChildren()
	if _, ok := n.parent.(*ListElseContainer); !ok {
		s += "</#list>"
	}
	return s
}

func (n *List) Label() string { return "#list" }

func (n *List) ParameterCount() int {
	if n.LoopVar == "" {
		return 1
	}
	if n.LoopVar2 == "" {
		return 2
	}
	return 3
}

func (n *List) ParameterValue(i int) interface{} {
	if i >= n.ParameterCount() {
		panic(ErrParameterIndex)
	}
	return paramValue(i, n.Listed, n.LoopVar, n.LoopVar2)
}

func (n *List) ParameterRole(i int) ParameterRole {
	if i >= n.ParameterCount() {
		panic(ErrParameterIndex)
	}
	return paramRole(i, RoleListSource, RoleTargetLoopVariable, RoleTargetLoopVariable)
}

func loopVars(v1, v2 string) []string {
	switch {
	case v1 == "":
		return nil
	case v2 == "":
		return []string{v1}
	}
	return []string{v1, v2}
}

func dumpLoopVars(v1, v2 string) string {
	if v1 == "" {
		return ""
	}
	s := " as " + IdentifierReference(v1)
	if v2 != "" {
		s += ", " + IdentifierReference(v2)
	}
	return s
}

// ListElseContainer node represents a #list directive with an #else. Its
// children are the List node and the ElseOfList node.
type ListElseContainer struct {
	element
}

func NewListElseContainer(pos *Position, list *List, elseOf *ElseOfList) *ListElseContainer {
	n := &ListElseContainer{}
	n.init(n, pos, []Element{list, elseOf})
	return n
}

// List returns the list of n.
func (n *ListElseContainer) List() *List { return n.Child(0).(*List) }

// Else returns the #else of n.
func (n *ListElseContainer) Else() *ElseOfList { return n.Child(1).(*ElseOfList) }

func (n *ListElseContainer) dump(canonical bool) string {
	if canonical {
		return n.dumpChildren() + "</#list>"
	}
	return "#list-#else-container"
}

func (n *ListElseContainer) Label() string { return "#list-#else-container" }

// ElseOfList node represents the #else of a #list directive.
type ElseOfList struct {
	element
}

func NewElseOfList(pos *Position, children ...Element) *ElseOfList {
	n := &ElseOfList{}
	n.init(n, pos, children)
	return n
}

func (n *ElseOfList) dump(canonical bool) string {
	if canonical {
		return "<#else>" + n.dumpChildren()
	}
	return "#else"
}

func (n *ElseOfList) Label() string { return "#else" }

// Items node represents an #items directive.
type Items struct {
	element
	LoopVar  string // loop variable or key
	LoopVar2 string // value of a hash listing
}

func NewItems(pos *Position, loopVar, loopVar2 string, children ...Element) *Items {
	n := &Items{LoopVar: loopVar, LoopVar2: loopVar2}
	n.init(n, pos, children)
	return n
}

// LoopVars returns the names of the loop variables.
func (n *Items) LoopVars() []string {
	return loopVars(n.LoopVar, n.LoopVar2)
}

func (n *Items) IsNestedBlockRepeater() bool { return true }

func (n *Items) dump(canonical bool) string {
	s := "#items" + dumpLoopVars(n.LoopVar, n.LoopVar2)
	if canonical {
		return "<" + s + ">" + n.dumpChildren() + "</#items>"
	}
	return s
}

func (n *Items) Label() string { return "#items" }

func (n *Items) ParameterCount() int {
	if n.LoopVar2 == "" {
		return 1
	}
	return 2
}

func (n *Items) ParameterValue(i int) interface{} {
	if i >= n.ParameterCount() {
		panic(ErrParameterIndex)
	}
	return paramValue(i, n.LoopVar, n.LoopVar2)
}

func (n *Items) ParameterRole(i int) ParameterRole {
	if i >= n.ParameterCount() {
		panic(ErrParameterIndex)
	}
	return paramRole(i, RoleTargetLoopVariable, RoleTargetLoopVariable)
}

// Sep node represents a #sep directive.
type Sep struct {
	element
}

func NewSep(pos *Position, children ...Element) *Sep {
	n := &Sep{}
	n.init(n, pos, children)
	return n
}

func (n *Sep) dump(canonical bool) string {
	if canonical {
		return "<#sep>" + n.dumpChildren() + "</#sep>"
	}
	return "#sep"
}

func (n *Sep) Label() string { return "#sep" }

// Break node represents a #break directive.
type Break struct {
	element
}

func NewBreak(pos *Position) *Break {
	n := &Break{}
	n.init(n, pos, nil)
	return n
}

func (n *Break) dump(canonical bool) string {
	if canonical {
		return "<#break>"
	}
	return "#break"
}

func (n *Break) Label() string { return "#break" }

// Continue node represents a #continue directive.
type Continue struct {
	element
}

func NewContinue(pos *Position) *Continue {
	n := &Continue{}
	n.init(n, pos, nil)
	return n
}

func (n *Continue) dump(canonical bool) string {
	if canonical {
		return "<#continue>"
	}
	return "#continue"
}

func (n *Continue) Label() string { return "#continue" }

// AssignmentScope is the scope of an assignment.
type AssignmentScope int

const (
	ScopeAssign AssignmentScope = iota // #assign, the current namespace
	ScopeGlobal                        // #global, the global namespace
	ScopeLocal                         // #local, the local scope of a macro
)

// String returns the name of the directive, as "#assign".
func (scope AssignmentScope) String() string {
	return []string{"#assign", "#global", "#local"}[scope]
}

// AssignmentOperator represents the operator of an assignment.
type AssignmentOperator int

const (
	AssignmentSimple         AssignmentOperator = iota // =
	AssignmentAddition                                 // +=
	AssignmentSubtraction                              // -=
	AssignmentMultiplication                           // *=
	AssignmentDivision                                 // /=
	AssignmentModulo                                   // %=
	AssignmentIncrement                                // ++
	AssignmentDecrement                                // --
)

// String returns the string representation of the operator.
func (op AssignmentOperator) String() string {
	return []string{"=", "+=", "-=", "*=", "/=", "%=", "++", "--"}[op]
}

// Assignment node represents an #assign, #global or #local directive. A
// capturing assignment assigns the output of its children.
type Assignment struct {
	element
	Scope   AssignmentScope    // scope
	Target  string             // name of the assigned variable
	Op      AssignmentOperator // operator
	Value   Expression         // assigned value; nil for ++, -- and captures
	Capture bool               // reports whether it is a capturing assignment
}

func NewAssignment(pos *Position, scope AssignmentScope, target string, op AssignmentOperator, value Expression) *Assignment {
	n := &Assignment{Scope: scope, Target: target, Op: op, Value: value}
	n.init(n, pos, nil)
	return n
}

// NewCapturingAssignment returns an assignment that assigns the output of
// the children.
func NewCapturingAssignment(pos *Position, scope AssignmentScope, target string, children ...Element) *Assignment {
	n := &Assignment{Scope: scope, Target: target, Capture: true}
	n.init(n, pos, children)
	return n
}

func (n *Assignment) IsOutputting() bool { return false }

func (n *Assignment) dump(canonical bool) string {
	var s string
	switch {
	case n.Capture:
		s = n.Scope.String() + " " + IdentifierReference(n.Target)
	case n.Value == nil:
		s = n.Scope.String() + " " + IdentifierReference(n.Target) + n.Op.String()
	default:
		s = n.Scope.String() + " " + IdentifierReference(n.Target) + " " + n.Op.String() + " " + n.Value.CanonicalForm()
	}
	if !canonical {
		return s
	}
	if n.Capture {
		return "<" + s + ">" + n.dumpChildren() + "</" + n.Scope.String() + ">"
	}
	return "<" + s + ">"
}

func (n *Assignment) Label() string { return n.Scope.String() }

func (n *Assignment) ParameterCount() int { return 4 }

func (n *Assignment) ParameterValue(i int) interface{} {
	return paramValue(i, n.Target, n.Op.String(), n.Value, int(n.Scope))
}

func (n *Assignment) ParameterRole(i int) ParameterRole {
	return paramRole(i, RoleAssignmentTarget, RoleAssignmentOperator, RoleAssignmentSource, RoleVariableScope)
}

// MacroParameter is a parameter of a macro or a function.
type MacroParameter struct {
	Name       string     // name
	Default    Expression // default value; nil if the parameter is required
	Positional bool       // reports whether a macro parameter is passed by position
}

// Macro node represents a #macro or a #function directive.
//
// The parameters of a function are passed by position. The parameters of a
// macro are passed by name, unless they are declared as positional.
// CatchAll, if not empty, collects the arguments that do not match any
// parameter: the positional ones for a function, the named ones for a macro.
type Macro struct {
	element
	Name     string           // name
	Function bool             // reports whether it is a function
	Params   []MacroParameter // parameters
	CatchAll string           // name of the catch-all parameter
}

func NewMacro(pos *Position, name string, function bool, params []MacroParameter, catchAll string, children ...Element) *Macro {
	n := &Macro{Name: name, Function: function, Params: params, CatchAll: catchAll}
	n.init(n, pos, children)
	return n
}

// ArgumentLayout returns the argument layout of the macro.
func (n *Macro) ArgumentLayout() *model.ArgumentLayout {
	layout := &model.ArgumentLayout{}
	for _, p := range n.Params {
		if n.Function || p.Positional {
			layout.PositionalCount++
		} else {
			layout.Named = append(layout.Named, p.Name)
		}
	}
	if n.CatchAll != "" {
		if n.Function {
			layout.PositionalVarargs = true
		} else {
			layout.NamedVarargs = true
		}
	}
	return layout
}

// SlotParams returns the parameters in the order of the slots of the
// argument layout, positional parameters first.
func (n *Macro) SlotParams() []MacroParameter {
	params := make([]MacroParameter, 0, len(n.Params))
	for _, p := range n.Params {
		if n.Function || p.Positional {
			params = append(params, p)
		}
	}
	for _, p := range n.Params {
		if !n.Function && !p.Positional {
			params = append(params, p)
		}
	}
	return params
}

func (n *Macro) IsOutputting() bool { return false }

func (n *Macro) IsNestedBlockRepeater() bool { return true }

func (n *Macro) directive() string {
	if n.Function {
		return "#function"
	}
	return "#macro"
}

func (n *Macro) dump(canonical bool) string {
	var b strings.Builder
	if canonical {
		b.WriteByte('<')
	}
	b.WriteString(n.directive())
	b.WriteByte(' ')
	b.WriteString(IdentifierReference(n.Name))
	if n.Function {
		b.WriteByte('(')
	}
	for i, p := range n.Params {
		if n.Function {
			if i > 0 {
				b.WriteString(", ")
			}
		} else {
			b.WriteByte(' ')
		}
		b.WriteString(IdentifierReference(p.Name))
		if p.Positional && !n.Function {
			b.WriteString("{positional}")
		}
		if p.Default != nil {
			b.WriteByte('=')
			b.WriteString(p.Default.CanonicalForm())
		}
	}
	if n.CatchAll != "" {
		if n.Function {
			if len(n.Params) > 0 {
				b.WriteString(", ")
			}
		} else {
			b.WriteByte(' ')
		}
		b.WriteString(IdentifierReference(n.CatchAll))
		b.WriteString("...")
	}
	if n.Function {
		b.WriteByte(')')
	}
	if canonical {
		b.WriteByte('>')
		b.WriteString(n.dumpChildren())
		b.WriteString("</" + n.directive() + ">")
	}
	return b.String()
}

func (n *Macro) Label() string { return n.directive() }

func (n *Macro) ParameterCount() int { return 1 + 2*len(n.Params) + 2 }

func (n *Macro) ParameterValue(i int) interface{} {
	v, _ := n.parameter(i)
	return v
}

func (n *Macro) ParameterRole(i int) ParameterRole {
	_, role := n.parameter(i)
	return role
}

func (n *Macro) parameter(i int) (interface{}, ParameterRole) {
	switch {
	case i == 0:
		return n.Name, RoleAssignmentTarget
	case i > 0 && i <= 2*len(n.Params):
		p := n.Params[(i-1)/2]
		if (i-1)%2 == 0 {
			return p.Name, RoleParameterName
		}
		return p.Default, RoleParameterDefault
	case i == 2*len(n.Params)+1:
		return n.CatchAll, RoleCatchAllParameterName
	case i == 2*len(n.Params)+2:
		if n.Function {
			return 1, RoleSubtype
		}
		return 0, RoleSubtype
	}
	panic(ErrParameterIndex)
}

// Return node represents a #return directive.
type Return struct {
	element
	Value Expression // returned value; nil in a macro
}

func NewReturn(pos *Position, value Expression) *Return {
	n := &Return{Value: value}
	n.init(n, pos, nil)
	return n
}

func (n *Return) dump(canonical bool) string {
	s := "#return"
	if n.Value != nil {
		s += " " + n.Value.CanonicalForm()
	}
	if canonical {
		return "<" + s + ">"
	}
	return s
}

func (n *Return) Label() string { return "#return" }

func (n *Return) ParameterCount() int { return 1 }

func (n *Return) ParameterValue(i int) interface{} { return paramValue(i, n.Value) }

func (n *Return) ParameterRole(i int) ParameterRole { return paramRole(i, RoleValue) }

// DynamicCall node represents the call of a directive, as
// <@callee a, b c=d; x, y>...</@callee>.
//
// A DynamicCall is the call place of its invocations: it holds the custom
// data of the directives called from it.
type DynamicCall struct {
	element
	Callee       Expression      // called directive
	Args         []Expression    // arguments passed by position
	Named        []NamedArgument // arguments passed by name
	NestedParams []string        // names of the nested content parameters

	mu       sync.Mutex
	provider interface{}
	data     interface{}
}

func NewDynamicCall(pos *Position, callee Expression, args []Expression, named []NamedArgument, nestedParams []string, children ...Element) *DynamicCall {
	n := &DynamicCall{Callee: callee, Args: args, Named: named, NestedParams: nestedParams}
	n.init(n, pos, children)
	return n
}

// CustomData returns the custom data stored for provider. If there is no
// data or it has been stored by another provider, it calls create and
// stores the returned data. Providers are compared with ==, or by pointer
// if they are functions, maps, slices or channels.
func (n *DynamicCall) CustomData(provider interface{}, create func() (interface{}, error)) (interface{}, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.data != nil && sameProvider(n.provider, provider) {
		return n.data, nil
	}
	data, err := create()
	if err != nil {
		return nil, fmt.Errorf("Failed to initialize custom data for provider identity %v: %w", provider, err)
	}
	if data == nil {
		return nil, fmt.Errorf("Failed to initialize custom data for provider identity %v: the create function returned nil", provider)
	}
	n.provider = provider
	n.data = data
	return data, nil
}

// sameProvider reports whether a and b are the same custom data provider.
func sameProvider(a, b interface{}) (same bool) {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta == nil {
		return true
	}
	switch ta.Kind() {
	case reflect.Func, reflect.Map, reflect.Slice, reflect.Chan:
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	}
	if !ta.Comparable() {
		return false
	}
	// a struct or an array can hold a non-comparable value in an interface.
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

func (n *DynamicCall) IsNestedBlockRepeater() bool { return true }

func (n *DynamicCall) IsShownInStackTrace() bool { return true }

func (n *DynamicCall) dump(canonical bool) string {
	var b strings.Builder
	if canonical {
		b.WriteByte('<')
	}
	b.WriteByte('@')
	callee := n.Callee.CanonicalForm()
	b.WriteString(callee)
	if len(n.Args) > 0 {
		b.WriteByte(' ')
		b.WriteString(joinCanonical(n.Args, ", "))
	}
	for _, arg := range n.Named {
		b.WriteByte(' ')
		b.WriteString(IdentifierReference(arg.Name))
		b.WriteByte('=')
		b.WriteString(arg.Value.CanonicalForm())
	}
	if len(n.NestedParams) > 0 {
		b.WriteString("; ")
		for i, p := range n.NestedParams {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(IdentifierReference(p))
		}
	}
	if canonical {
		if n.ChildCount() == 0 {
			b.WriteString("/>")
		} else {
			b.WriteByte('>')
			b.WriteString(n.dumpChildren())
			b.WriteString("</@")
			if _, ok := n.Callee.(*Identifier); ok {
				b.WriteString(callee)
			}
			b.WriteByte('>')
		}
	}
	return b.String()
}

func (n *DynamicCall) Label() string { return "@" }

func (n *DynamicCall) ParameterCount() int {
	return 1 + len(n.Args) + 2*len(n.Named) + len(n.NestedParams)
}

func (n *DynamicCall) ParameterValue(i int) interface{} {
	if j := i - 1 - len(n.Args) - 2*len(n.Named); j >= 0 && j < len(n.NestedParams) {
		return n.NestedParams[j]
	}
	v, _ := callParameter(i, n.Callee, n.Args, n.Named)
	return v
}

func (n *DynamicCall) ParameterRole(i int) ParameterRole {
	if j := i - 1 - len(n.Args) - 2*len(n.Named); j >= 0 && j < len(n.NestedParams) {
		return RoleTargetLoopVariable
	}
	_, role := callParameter(i, n.Callee, n.Args, n.Named)
	return role
}

// Nested node represents a #nested directive.
type Nested struct {
	element
	Args []Expression // values passed to the nested content parameters
}

func NewNested(pos *Position, args ...Expression) *Nested {
	n := &Nested{Args: args}
	n.init(n, pos, nil)
	return n
}

func (n *Nested) dump(canonical bool) string {
	s := "#nested"
	if len(n.Args) > 0 {
		s += " " + joinCanonical(n.Args, ", ")
	}
	if canonical {
		return "<" + s + "/>"
	}
	return s
}

func (n *Nested) Label() string { return "#nested" }

func (n *Nested) ParameterCount() int { return len(n.Args) }

func (n *Nested) ParameterValue(i int) interface{} {
	if i < 0 || i >= len(n.Args) {
		panic(ErrParameterIndex)
	}
	return n.Args[i]
}

func (n *Nested) ParameterRole(i int) ParameterRole {
	if i < 0 || i >= len(n.Args) {
		panic(ErrParameterIndex)
	}
	return RolePassedValue
}

// Comment node represents a comment.
type Comment struct {
	element
	Text string // text of the comment
}

func NewComment(pos *Position, text string) *Comment {
	n := &Comment{Text: text}
	n.init(n, pos, nil)
	return n
}

func (n *Comment) IsOutputting() bool { return false }

func (n *Comment) dump(canonical bool) string {
	if canonical {
		return "<#--" + n.Text + "-->"
	}
	return "#--...--"
}

func (n *Comment) Label() string { return "#--...--" }

func (n *Comment) ParameterCount() int { return 1 }

func (n *Comment) ParameterValue(i int) interface{} { return paramValue(i, n.Text) }

func (n *Comment) ParameterRole(i int) ParameterRole { return paramRole(i, RoleContent) }

// Setting node represents a #setting directive.
type Setting struct {
	element
	Name  string     // name of the setting
	Value Expression // value
}

func NewSetting(pos *Position, name string, value Expression) *Setting {
	n := &Setting{Name: name, Value: value}
	n.init(n, pos, nil)
	return n
}

func (n *Setting) IsOutputting() bool { return false }

func (n *Setting) dump(canonical bool) string {
	s := "#setting " + IdentifierReference(n.Name) + "=" + n.Value.CanonicalForm()
	if canonical {
		return "<" + s + ">"
	}
	return s
}

func (n *Setting) Label() string { return "#setting" }

func (n *Setting) ParameterCount() int { return 2 }

func (n *Setting) ParameterValue(i int) interface{} { return paramValue(i, n.Name, n.Value) }

func (n *Setting) ParameterRole(i int) ParameterRole { return paramRole(i, RoleItemKey, RoleItemValue) }

// Stop node represents a #stop directive.
type Stop struct {
	element
	Message Expression // message; nil if there is no message
}

func NewStop(pos *Position, message Expression) *Stop {
	n := &Stop{Message: message}
	n.init(n, pos, nil)
	return n
}

func (n *Stop) dump(canonical bool) string {
	s := "#stop"
	if n.Message != nil {
		s += " " + n.Message.CanonicalForm()
	}
	if canonical {
		return "<" + s + "/>"
	}
	return s
}

func (n *Stop) Label() string { return "#stop" }

func (n *Stop) ParameterCount() int { return 1 }

func (n *Stop) ParameterValue(i int) interface{} { return paramValue(i, n.Message) }

func (n *Stop) ParameterRole(i int) ParameterRole { return paramRole(i, RoleMessage) }

// Attempt node represents an #attempt directive. Its children are the
// attempted block and the Recover node.
type Attempt struct {
	element
}

func NewAttempt(pos *Position, attempted *Block, recover *Recover) *Attempt {
	n := &Attempt{}
	n.init(n, pos, []Element{attempted, recover})
	return n
}

// Attempted returns the attempted block.
func (n *Attempt) Attempted() Element { return n.Child(0) }

// Recover returns the #recover section.
func (n *Attempt) Recover() *Recover { return n.Child(1).(*Recover) }

func (n *Attempt) dump(canonical bool) string {
	if canonical {
		return "<#attempt>" + n.dumpChildren() + "</#attempt>"
	}
	return "#attempt"
}

func (n *Attempt) Label() string { return "#attempt" }

// Recover node represents the #recover section of an #attempt directive.
type Recover struct {
	element
}

func NewRecover(pos *Position, children ...Element) *Recover {
	n := &Recover{}
	n.init(n, pos, children)
	return n
}

func (n *Recover) dump(canonical bool) string {
	if canonical {
		return "<#recover>" + n.dumpChildren()
	}
	return "#recover"
}

func (n *Recover) Label() string { return "#recover" }

// TrimDirective node represents a #t, #lt, #rt or #nt directive.
type TrimDirective struct {
	element
	Left  bool // trims on the left
	Right bool // trims on the right
}

func NewTrimDirective(pos *Position, left, right bool) *TrimDirective {
	n := &TrimDirective{Left: left, Right: right}
	n.init(n, pos, nil)
	return n
}

func (n *TrimDirective) dump(canonical bool) string {
	if canonical {
		return "<" + n.Label() + "/>"
	}
	return n.Label()
}

func (n *TrimDirective) Label() string {
	switch {
	case n.Left && n.Right:
		return "#t"
	case n.Left:
		return "#lt"
	case n.Right:
		return "#rt"
	}
	return "#nt"
}

func (n *TrimDirective) ParameterCount() int { return 1 }

func (n *TrimDirective) ParameterValue(i int) interface{} {
	var subtype int
	switch {
	case n.Left && n.Right:
		subtype = 0
	case n.Left:
		subtype = 1
	case n.Right:
		subtype = 2
	default:
		subtype = 3
	}
	return paramValue(i, subtype)
}

func (n *TrimDirective) ParameterRole(i int) ParameterRole { return paramRole(i, RoleSubtype) }
