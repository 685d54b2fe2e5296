package ast

import "minic/pkg/token"

// Expr is the marker interface every AST expression case implements. Every
// node carries a source location and a mutable type slot (initially Unit,
// per §3) filled in by the type checker.
type Expr interface {
	Location() token.Location
	NodeType() Type
	SetType(Type)
}

// Node is embedded by every Expr case; it supplies Location/NodeType/SetType
// via method promotion so each case struct only declares its own operands.
type Node struct {
	Loc token.Location
	Typ Type
}

func (n *Node) Location() token.Location { return n.Loc }
func (n *Node) NodeType() Type           { return n.Typ }
func (n *Node) SetType(t Type)           { n.Typ = t }

func newNode(loc token.Location) Node { return Node{Loc: loc, Typ: Unit} }

// Literal is an Int or Bool constant. Value holds an int64 or a bool.
type Literal struct {
	Node
	Value any
}

func NewLiteral(loc token.Location, value any) *Literal {
	return &Literal{Node: newNode(loc), Value: value}
}

// Identifier reads a bound name (a variable, or -- contextually -- a keyword
// like 'true'/'false' the parser has not distinguished from a name).
type Identifier struct {
	Node
	Name string
}

func NewIdentifier(loc token.Location, name string) *Identifier {
	return &Identifier{Node: newNode(loc), Name: name}
}

// UnaryOp applies '-' or 'not' to Operand.
type UnaryOp struct {
	Node
	Op      string
	Operand Expr
}

func NewUnaryOp(loc token.Location, op string, operand Expr) *UnaryOp {
	return &UnaryOp{Node: newNode(loc), Op: op, Operand: operand}
}

// BinaryOp applies one of + - * / % < <= > >= == != and or = to Left/Right.
type BinaryOp struct {
	Node
	Left  Expr
	Op    string
	Right Expr
}

func NewBinaryOp(loc token.Location, left Expr, op string, right Expr) *BinaryOp {
	return &BinaryOp{Node: newNode(loc), Left: left, Op: op, Right: right}
}

// IfThenElse; Else is nil when the 'else' branch is absent.
type IfThenElse struct {
	Node
	Cond, Then, Else Expr
}

func NewIfThenElse(loc token.Location, cond, then, els Expr) *IfThenElse {
	return &IfThenElse{Node: newNode(loc), Cond: cond, Then: then, Else: els}
}

// WhileExpr evaluates Body repeatedly while Cond is true.
type WhileExpr struct {
	Node
	Cond, Body Expr
}

func NewWhileExpr(loc token.Location, cond, body Expr) *WhileExpr {
	return &WhileExpr{Node: newNode(loc), Cond: cond, Body: body}
}

// FunctionExpr calls Callee (always an *Identifier, per §3's invariant) with
// Arguments.
type FunctionExpr struct {
	Node
	Callee    *Identifier
	Arguments []Expr
}

func NewFunctionExpr(loc token.Location, callee *Identifier, args []Expr) *FunctionExpr {
	return &FunctionExpr{Node: newNode(loc), Callee: callee, Arguments: args}
}

// BlockExpr is an ordered sequence of statements; its value is that of the
// last statement (or Unit, if empty).
type BlockExpr struct {
	Node
	Statements []Expr
}

func NewBlockExpr(loc token.Location, statements []Expr) *BlockExpr {
	return &BlockExpr{Node: newNode(loc), Statements: statements}
}

// VarExpr declares Name, bound to Initializer's value. Typed is either an
// *Identifier naming a type or a *FunctionTypeExpr, or nil if the
// declaration has no type annotation.
type VarExpr struct {
	Node
	Name        string
	Initializer Expr
	Typed       Expr
}

func NewVarExpr(loc token.Location, name string, init Expr, typed Expr) *VarExpr {
	return &VarExpr{Node: newNode(loc), Name: name, Initializer: init, Typed: typed}
}

// FunctionTypeExpr only appears as a VarExpr.Typed value: '(Int, Bool) => Unit'.
// ParamTypes is a (possibly empty) slice of *Identifier; ReturnType is an
// *Identifier.
type FunctionTypeExpr struct {
	Node
	ParamTypes []Expr
	ReturnType Expr
}

func NewFunctionTypeExpr(loc token.Location, params []Expr, ret Expr) *FunctionTypeExpr {
	return &FunctionTypeExpr{Node: newNode(loc), ParamTypes: params, ReturnType: ret}
}
