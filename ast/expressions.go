// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ast

import (
	"strings"

	"github.com/open2b/ftl/model"
)

// Expression is a node evaluated to a value.
type Expression interface {
	Node

	// IsLiteral reports whether the expression always evaluates to the same
	// value, independently of the data model.
	IsLiteral() bool

	expr() *expression
}

// expression is embedded by all the expressions.
type expression struct {
	node
}

func newExpression(pos *Position) expression {
	return expression{newNode(pos)}
}

func (e *expression) expr() *expression { return e }

func (e *expression) IsLiteral() bool { return false }

func (e *expression) ParameterCount() int { return 0 }

func (e *expression) ParameterValue(i int) interface{} { panic(ErrParameterIndex) }

func (e *expression) ParameterRole(i int) ParameterRole { panic(ErrParameterIndex) }

// paramValue returns the value with index i, panicking if it is out of
// range.
func paramValue(i int, values ...interface{}) interface{} {
	if i < 0 || i >= len(values) {
		panic(ErrParameterIndex)
	}
	return values[i]
}

// paramRole returns the role with index i, panicking if it is out of range.
func paramRole(i int, roles ...ParameterRole) ParameterRole {
	if i < 0 || i >= len(roles) {
		panic(ErrParameterIndex)
	}
	return roles[i]
}

// OperatorType represents an operator type in a unary and binary expression.
type OperatorType int

const (
	OperatorEqual          OperatorType = iota // ==
	OperatorNotEqual                           // !=
	OperatorLess                               // <
	OperatorLessEqual                          // <=
	OperatorGreater                            // >
	OperatorGreaterEqual                       // >=
	OperatorNot                                // !
	OperatorAnd                                // &&
	OperatorOr                                 // ||
	OperatorAddition                           // +
	OperatorSubtraction                        // -
	OperatorMultiplication                     // *
	OperatorDivision                           // /
	OperatorModulo                             // %
)

// String returns the string representation of the operator type.
func (op OperatorType) String() string {
	return []string{"==", "!=", "<", "<=", ">", ">=", "!", "&&", "||", "+", "-", "*", "/", "%"}[op]
}

// Identifier node represents a reference to a variable.
type Identifier struct {
	expression
	Name string // name
}

func NewIdentifier(pos *Position, name string) *Identifier {
	return &Identifier{newExpression(pos), name}
}

// CanonicalForm returns the canonical form of n.
func (n *Identifier) CanonicalForm() string { return IdentifierReference(n.Name) }

func (n *Identifier) Label() string { return n.CanonicalForm() }

// StringLiteral node represents a string literal. An interpolated string
// literal, as "Hello ${name}!", has parts.
type StringLiteral struct {
	expression
	Value string       // value, if there are no parts
	Parts []Expression // parts of an interpolated string literal
}

func NewStringLiteral(pos *Position, value string) *StringLiteral {
	return &StringLiteral{expression: newExpression(pos), Value: value}
}

// NewInterpolatedString returns a string literal made of parts. Static parts
// are string literals without parts, the other parts are interpolated
// expressions.
func NewInterpolatedString(pos *Position, parts ...Expression) *StringLiteral {
	return &StringLiteral{expression: newExpression(pos), Parts: parts}
}

// IsStatic reports whether n has no interpolated parts.
func (n *StringLiteral) IsStatic() bool { return n.Parts == nil }

func (n *StringLiteral) IsLiteral() bool { return n.Parts == nil }

// CanonicalForm returns the canonical form of n.
func (n *StringLiteral) CanonicalForm() string {
	if n.Parts == nil {
		return Quote(n.Value)
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, part := range n.Parts {
		if s, ok := part.(*StringLiteral); ok && s.Parts == nil {
			b.WriteString(escapeString(s.Value, '"'))
			continue
		}
		b.WriteString("${")
		b.WriteString(part.CanonicalForm())
		b.WriteByte('}')
	}
	b.WriteByte('"')
	return b.String()
}

func (n *StringLiteral) Label() string { return n.CanonicalForm() }

func (n *StringLiteral) ParameterCount() int { return len(n.Parts) }

func (n *StringLiteral) ParameterValue(i int) interface{} {
	if i < 0 || i >= len(n.Parts) {
		panic(ErrParameterIndex)
	}
	return n.Parts[i]
}

func (n *StringLiteral) ParameterRole(i int) ParameterRole {
	if i < 0 || i >= len(n.Parts) {
		panic(ErrParameterIndex)
	}
	return RoleValuePart
}

// NumberLiteral node represents a number literal.
type NumberLiteral struct {
	expression
	Value model.Num // value
}

func NewNumberLiteral(pos *Position, value model.Num) *NumberLiteral {
	return &NumberLiteral{newExpression(pos), value}
}

func (n *NumberLiteral) IsLiteral() bool { return true }

// CanonicalForm returns the canonical form of n.
func (n *NumberLiteral) CanonicalForm() string { return n.Value.String() }

func (n *NumberLiteral) Label() string { return n.CanonicalForm() }

// BooleanLiteral node represents the literals true and false.
type BooleanLiteral struct {
	expression
	Value bool // value
}

func NewBooleanLiteral(pos *Position, value bool) *BooleanLiteral {
	return &BooleanLiteral{newExpression(pos), value}
}

func (n *BooleanLiteral) IsLiteral() bool { return true }

// CanonicalForm returns the canonical form of n.
func (n *BooleanLiteral) CanonicalForm() string {
	if n.Value {
		return "true"
	}
	return "false"
}

func (n *BooleanLiteral) Label() string { return n.CanonicalForm() }

// ListLiteral node represents a sequence literal, as [1, 2, 3].
type ListLiteral struct {
	expression
	Items []Expression // items
}

func NewListLiteral(pos *Position, items ...Expression) *ListLiteral {
	return &ListLiteral{newExpression(pos), items}
}

func (n *ListLiteral) IsLiteral() bool {
	for _, item := range n.Items {
		if !item.IsLiteral() {
			return false
		}
	}
	return true
}

// CanonicalForm returns the canonical form of n.
func (n *ListLiteral) CanonicalForm() string {
	return "[" + joinCanonical(n.Items, ", ") + "]"
}

func (n *ListLiteral) Label() string { return "[...]" }

func (n *ListLiteral) ParameterCount() int { return len(n.Items) }

func (n *ListLiteral) ParameterValue(i int) interface{} {
	if i < 0 || i >= len(n.Items) {
		panic(ErrParameterIndex)
	}
	return n.Items[i]
}

func (n *ListLiteral) ParameterRole(i int) ParameterRole {
	if i < 0 || i >= len(n.Items) {
		panic(ErrParameterIndex)
	}
	return RoleItemValue
}

// HashLiteral node represents a hash literal, as {"a": 1, "b": 2}.
type HashLiteral struct {
	expression
	Keys   []Expression // keys
	Values []Expression // values
}

// NewHashLiteral returns a new HashLiteral node. keys and values must have
// the same length.
func NewHashLiteral(pos *Position, keys, values []Expression) *HashLiteral {
	if len(keys) != len(values) {
		panic("ast: keys and values of a hash literal have different length")
	}
	return &HashLiteral{newExpression(pos), keys, values}
}

func (n *HashLiteral) IsLiteral() bool {
	for i := range n.Keys {
		if !n.Keys[i].IsLiteral() || !n.Values[i].IsLiteral() {
			return false
		}
	}
	return true
}

// CanonicalForm returns the canonical form of n.
func (n *HashLiteral) CanonicalForm() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, key := range n.Keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(key.CanonicalForm())
		b.WriteString(": ")
		b.WriteString(n.Values[i].CanonicalForm())
	}
	b.WriteByte('}')
	return b.String()
}

func (n *HashLiteral) Label() string { return "{...}" }

func (n *HashLiteral) ParameterCount() int { return len(n.Keys) * 2 }

func (n *HashLiteral) ParameterValue(i int) interface{} {
	if i < 0 || i >= len(n.Keys)*2 {
		panic(ErrParameterIndex)
	}
	if i%2 == 0 {
		return n.Keys[i/2]
	}
	return n.Values[i/2]
}

func (n *HashLiteral) ParameterRole(i int) ParameterRole {
	if i < 0 || i >= len(n.Keys)*2 {
		panic(ErrParameterIndex)
	}
	if i%2 == 0 {
		return RoleItemKey
	}
	return RoleItemValue
}

// RangeEnd represents how the end of a range is specified.
type RangeEnd int

const (
	RangeInclusive RangeEnd = iota // a..b
	RangeExclusive                 // a..<b
	RangeLength                    // a..*n
	RangeUnbounded                 // a..
)

// String returns the operator of the range end.
func (end RangeEnd) String() string {
	return []string{"..", "..<", "..*", ".."}[end]
}

// Range node represents a numerical range, as 1..5, 0..<n, 2..*3 and 1.. .
type Range struct {
	expression
	Low  Expression // low bound
	High Expression // high bound or length; nil if the range is unbounded
	End  RangeEnd   // how the end is specified
}

func NewRange(pos *Position, low, high Expression, end RangeEnd) *Range {
	return &Range{newExpression(pos), low, high, end}
}

// CanonicalForm returns the canonical form of n.
func (n *Range) CanonicalForm() string {
	s := n.Low.CanonicalForm() + n.End.String()
	if n.High != nil {
		s += n.High.CanonicalForm()
	}
	return s
}

func (n *Range) Label() string { return n.End.String() }

func (n *Range) ParameterCount() int { return 2 }

func (n *Range) ParameterValue(i int) interface{} { return paramValue(i, n.Low, n.High) }

func (n *Range) ParameterRole(i int) ParameterRole {
	return paramRole(i, RoleLeftHandOperand, RoleRightHandOperand)
}

// binary is embedded by the binary operator expressions.
type binary struct {
	expression
	Left  Expression // left operand
	Right Expression // right operand
}

func newBinary(pos *Position, left, right Expression) binary {
	return binary{newExpression(pos), left, right}
}

func (n *binary) IsLiteral() bool { return n.Left.IsLiteral() && n.Right.IsLiteral() }

func (n *binary) ParameterCount() int { return 2 }

func (n *binary) ParameterValue(i int) interface{} { return paramValue(i, n.Left, n.Right) }

func (n *binary) ParameterRole(i int) ParameterRole {
	return paramRole(i, RoleLeftHandOperand, RoleRightHandOperand)
}

func (n *binary) canonical(op string) string {
	return n.Left.CanonicalForm() + " " + op + " " + n.Right.CanonicalForm()
}

// AddOrConcat node represents the + operator that adds numbers and
// concatenates strings, sequences and hashes.
type AddOrConcat struct {
	binary
}

func NewAddOrConcat(pos *Position, left, right Expression) *AddOrConcat {
	return &AddOrConcat{newBinary(pos, left, right)}
}

// CanonicalForm returns the canonical form of n.
func (n *AddOrConcat) CanonicalForm() string { return n.canonical("+") }

func (n *AddOrConcat) Label() string { return "+" }

// Arithmetic node represents the operators -, *, / and %.
type Arithmetic struct {
	binary
	Op OperatorType // operator
}

func NewArithmetic(pos *Position, op OperatorType, left, right Expression) *Arithmetic {
	switch op {
	case OperatorSubtraction, OperatorMultiplication, OperatorDivision, OperatorModulo:
	default:
		panic("ast: invalid arithmetic operator " + op.String())
	}
	return &Arithmetic{newBinary(pos, left, right), op}
}

// CanonicalForm returns the canonical form of n.
func (n *Arithmetic) CanonicalForm() string { return n.canonical(n.Op.String()) }

func (n *Arithmetic) Label() string { return n.Op.String() }

func (n *Arithmetic) ParameterCount() int { return 3 }

func (n *Arithmetic) ParameterValue(i int) interface{} { return paramValue(i, n.Left, n.Right, n.Op) }

func (n *Arithmetic) ParameterRole(i int) ParameterRole {
	return paramRole(i, RoleLeftHandOperand, RoleRightHandOperand, RoleSubtype)
}

// Comparison node represents the operators ==, !=, <, <=, > and >=.
type Comparison struct {
	binary
	Op OperatorType // operator
}

func NewComparison(pos *Position, op OperatorType, left, right Expression) *Comparison {
	if op > OperatorGreaterEqual {
		panic("ast: invalid comparison operator " + op.String())
	}
	return &Comparison{newBinary(pos, left, right), op}
}

// CanonicalForm returns the canonical form of n.
func (n *Comparison) CanonicalForm() string { return n.canonical(n.Op.String()) }

func (n *Comparison) Label() string { return n.Op.String() }

// And node represents the && operator.
type And struct {
	binary
}

func NewAnd(pos *Position, left, right Expression) *And {
	return &And{newBinary(pos, left, right)}
}

// CanonicalForm returns the canonical form of n.
func (n *And) CanonicalForm() string { return n.canonical("&&") }

func (n *And) Label() string { return "&&" }

// Or node represents the || operator.
type Or struct {
	binary
}

func NewOr(pos *Position, left, right Expression) *Or {
	return &Or{newBinary(pos, left, right)}
}

// CanonicalForm returns the canonical form of n.
func (n *Or) CanonicalForm() string { return n.canonical("||") }

func (n *Or) Label() string { return "||" }

// Not node represents the ! operator.
type Not struct {
	expression
	Operand Expression // operand
}

func NewNot(pos *Position, operand Expression) *Not {
	return &Not{newExpression(pos), operand}
}

func (n *Not) IsLiteral() bool { return n.Operand.IsLiteral() }

// CanonicalForm returns the canonical form of n.
func (n *Not) CanonicalForm() string { return "!" + n.Operand.CanonicalForm() }

func (n *Not) Label() string { return "!" }

func (n *Not) ParameterCount() int { return 1 }

func (n *Not) ParameterValue(i int) interface{} { return paramValue(i, n.Operand) }

func (n *Not) ParameterRole(i int) ParameterRole { return paramRole(i, RoleRightHandOperand) }

// Negate node represents the unary - operator.
type Negate struct {
	expression
	Operand Expression // operand
}

func NewNegate(pos *Position, operand Expression) *Negate {
	return &Negate{newExpression(pos), operand}
}

func (n *Negate) IsLiteral() bool { return n.Operand.IsLiteral() }

// CanonicalForm returns the canonical form of n.
func (n *Negate) CanonicalForm() string { return "-" + n.Operand.CanonicalForm() }

func (n *Negate) Label() string { return "-..." }

func (n *Negate) ParameterCount() int { return 1 }

func (n *Negate) ParameterValue(i int) interface{} { return paramValue(i, n.Operand) }

func (n *Negate) ParameterRole(i int) ParameterRole { return paramRole(i, RoleRightHandOperand) }

// Dot node represents the access to a sub-variable by name, as a.b.
type Dot struct {
	expression
	Target Expression // target
	Name   string     // name of the sub-variable
}

func NewDot(pos *Position, target Expression, name string) *Dot {
	return &Dot{newExpression(pos), target, name}
}

// CanonicalForm returns the canonical form of n.
func (n *Dot) CanonicalForm() string {
	return n.Target.CanonicalForm() + "." + IdentifierReference(n.Name)
}

func (n *Dot) Label() string { return "." }

func (n *Dot) ParameterCount() int { return 2 }

func (n *Dot) ParameterValue(i int) interface{} { return paramValue(i, n.Target, n.Name) }

func (n *Dot) ParameterRole(i int) ParameterRole {
	return paramRole(i, RoleLeftHandOperand, RoleRightHandOperand)
}

// DynamicKeyName node represents the access to a sub-variable by an
// evaluated key, as a[b], including the slicing with a range, as a[1..2].
type DynamicKeyName struct {
	expression
	Target Expression // target
	Key    Expression // key
}

func NewDynamicKeyName(pos *Position, target, key Expression) *DynamicKeyName {
	return &DynamicKeyName{newExpression(pos), target, key}
}

// CanonicalForm returns the canonical form of n.
func (n *DynamicKeyName) CanonicalForm() string {
	return n.Target.CanonicalForm() + "[" + n.Key.CanonicalForm() + "]"
}

func (n *DynamicKeyName) Label() string { return "...[...]" }

func (n *DynamicKeyName) ParameterCount() int { return 2 }

func (n *DynamicKeyName) ParameterValue(i int) interface{} { return paramValue(i, n.Target, n.Key) }

func (n *DynamicKeyName) ParameterRole(i int) ParameterRole {
	return paramRole(i, RoleLeftHandOperand, RoleEnclosedOperand)
}

// BuiltInOp is the operation of a built-in, resolved when the tree is
// built.
type BuiltInOp interface {
	BuiltInName() string
}

// BuiltIn node represents a built-in, as a?upper_case.
type BuiltIn struct {
	expression
	Target Expression // target
	Name   string     // name of the built-in
	Op     BuiltInOp  // operation; nil if not resolved
}

func NewBuiltIn(pos *Position, target Expression, name string, op BuiltInOp) *BuiltIn {
	return &BuiltIn{newExpression(pos), target, name, op}
}

// CanonicalForm returns the canonical form of n.
func (n *BuiltIn) CanonicalForm() string { return n.Target.CanonicalForm() + "?" + n.Name }

func (n *BuiltIn) Label() string { return "?" + n.Name }

func (n *BuiltIn) ParameterCount() int { return 2 }

func (n *BuiltIn) ParameterValue(i int) interface{} { return paramValue(i, n.Target, n.Name) }

func (n *BuiltIn) ParameterRole(i int) ParameterRole {
	return paramRole(i, RoleLeftHandOperand, RoleRightHandOperand)
}

// NamedArgument is an argument passed by name.
type NamedArgument struct {
	Name  string     // name
	Value Expression // value
}

// FunctionCall node represents the call of a function, as f(a, b, c=d).
type FunctionCall struct {
	expression
	Function Expression      // called function
	Args     []Expression    // arguments passed by position
	Named    []NamedArgument // arguments passed by name
}

func NewFunctionCall(pos *Position, function Expression, args []Expression, named []NamedArgument) *FunctionCall {
	return &FunctionCall{newExpression(pos), function, args, named}
}

// CanonicalForm returns the canonical form of n.
func (n *FunctionCall) CanonicalForm() string {
	var b strings.Builder
	b.WriteString(n.Function.CanonicalForm())
	b.WriteByte('(')
	b.WriteString(joinCanonical(n.Args, ", "))
	for i, arg := range n.Named {
		if i > 0 || len(n.Args) > 0 {
			b.WriteString(", ")
		}
		b.WriteString(IdentifierReference(arg.Name))
		b.WriteByte('=')
		b.WriteString(arg.Value.CanonicalForm())
	}
	b.WriteByte(')')
	return b.String()
}

func (n *FunctionCall) Label() string { return "...(...)" }

func (n *FunctionCall) ParameterCount() int { return 1 + len(n.Args) + 2*len(n.Named) }

func (n *FunctionCall) ParameterValue(i int) interface{} {
	v, _ := callParameter(i, n.Function, n.Args, n.Named)
	return v
}

func (n *FunctionCall) ParameterRole(i int) ParameterRole {
	_, role := callParameter(i, n.Function, n.Args, n.Named)
	return role
}

// callParameter returns the value and the role of the parameter with index
// i of a call.
func callParameter(i int, callee Expression, args []Expression, named []NamedArgument) (interface{}, ParameterRole) {
	if i == 0 {
		return callee, RoleCallee
	}
	i--
	if i >= 0 && i < len(args) {
		return args[i], RoleArgumentValue
	}
	i -= len(args)
	if i >= 0 && i < 2*len(named) {
		if i%2 == 0 {
			return named[i/2].Name, RoleArgumentName
		}
		return named[i/2].Value, RoleArgumentValue
	}
	panic(ErrParameterIndex)
}

// DefaultTo node represents the default value operator, as a!b and a!.
type DefaultTo struct {
	expression
	Left  Expression // expression that can be missing
	Right Expression // default value; nil if not specified
}

func NewDefaultTo(pos *Position, left, right Expression) *DefaultTo {
	return &DefaultTo{newExpression(pos), left, right}
}

// CanonicalForm returns the canonical form of n.
func (n *DefaultTo) CanonicalForm() string {
	if n.Right == nil {
		return n.Left.CanonicalForm() + "!"
	}
	return n.Left.CanonicalForm() + "!" + n.Right.CanonicalForm()
}

func (n *DefaultTo) Label() string { return "...!..." }

func (n *DefaultTo) ParameterCount() int { return 2 }

func (n *DefaultTo) ParameterValue(i int) interface{} { return paramValue(i, n.Left, n.Right) }

func (n *DefaultTo) ParameterRole(i int) ParameterRole {
	return paramRole(i, RoleLeftHandOperand, RoleRightHandOperand)
}

// Exists node represents the existence operator, as a??.
type Exists struct {
	expression
	Operand Expression // operand
}

func NewExists(pos *Position, operand Expression) *Exists {
	return &Exists{newExpression(pos), operand}
}

// CanonicalForm returns the canonical form of n.
func (n *Exists) CanonicalForm() string { return n.Operand.CanonicalForm() + "??" }

func (n *Exists) Label() string { return "...??" }

func (n *Exists) ParameterCount() int { return 1 }

func (n *Exists) ParameterValue(i int) interface{} { return paramValue(i, n.Operand) }

func (n *Exists) ParameterRole(i int) ParameterRole { return paramRole(i, RoleLeftHandOperand) }

// Parenthesis node represents an expression enclosed in parenthesis.
type Parenthesis struct {
	expression
	Expr Expression // enclosed expression
}

func NewParenthesis(pos *Position, expr Expression) *Parenthesis {
	return &Parenthesis{newExpression(pos), expr}
}

func (n *Parenthesis) IsLiteral() bool { return n.Expr.IsLiteral() }

// CanonicalForm returns the canonical form of n.
func (n *Parenthesis) CanonicalForm() string { return "(" + n.Expr.CanonicalForm() + ")" }

func (n *Parenthesis) Label() string { return "(...)" }

func (n *Parenthesis) ParameterCount() int { return 1 }

func (n *Parenthesis) ParameterValue(i int) interface{} { return paramValue(i, n.Expr) }

func (n *Parenthesis) ParameterRole(i int) ParameterRole { return paramRole(i, RoleEnclosedOperand) }

// BuiltInVariable node represents a special variable, as .now.
type BuiltInVariable struct {
	expression
	Name string // name without the leading dot
}

func NewBuiltInVariable(pos *Position, name string) *BuiltInVariable {
	return &BuiltInVariable{newExpression(pos), name}
}

// CanonicalForm returns the canonical form of n.
func (n *BuiltInVariable) CanonicalForm() string { return "." + n.Name }

func (n *BuiltInVariable) Label() string { return n.CanonicalForm() }

// joinCanonical joins the canonical forms of exprs with sep.
func joinCanonical(exprs []Expression, sep string) string {
	s := make([]string, len(exprs))
	for i, e := range exprs {
		s[i] = e.CanonicalForm()
	}
	return strings.Join(s, sep)
}
