// Package check implements the type checker of §4.3: a single recursive
// traversal that annotates every ast.Expr node's type slot and yields the
// program's result type.
package check

import (
	"fmt"

	"minic/pkg/ast"
	"minic/pkg/utils"
)

// Checker holds the parent-linked name -> Type environment; it is a context
// object scoped to a single Check call.
type Checker struct {
	env *utils.Environment[ast.Type]
}

// NewChecker returns a Checker whose global frame preinstalls the reserved
// operators, builtins, constants and type names of §4.3/§6.
func NewChecker() *Checker {
	c := &Checker{env: utils.NewEnvironment[ast.Type]()}
	c.installGlobals()
	return c
}

func (c *Checker) installGlobals() {
	arith := ast.Fun([]ast.Type{ast.Int, ast.Int}, ast.Int)
	for _, op := range []string{"+", "-", "*", "/", "%"} {
		c.env.Define(op, arith)
	}
	ordering := ast.Fun([]ast.Type{ast.Int, ast.Int}, ast.Bool)
	for _, op := range []string{"<", "<=", ">", ">="} {
		c.env.Define(op, ordering)
	}
	logical := ast.Fun([]ast.Type{ast.Bool, ast.Bool}, ast.Bool)
	for _, op := range []string{"and", "or"} {
		c.env.Define(op, logical)
	}
	c.env.Define("unary_-", ast.Fun([]ast.Type{ast.Int}, ast.Int))
	c.env.Define("unary_not", ast.Fun([]ast.Type{ast.Bool}, ast.Bool))
	c.env.Define("print_int", ast.Fun([]ast.Type{ast.Int}, ast.Unit))
	c.env.Define("print_bool", ast.Fun([]ast.Type{ast.Bool}, ast.Unit))
	c.env.Define("read_int", ast.Fun(nil, ast.Int))
	c.env.Define("true", ast.Bool)
	c.env.Define("false", ast.Bool)
	c.env.Define("Int", ast.Int)
	c.env.Define("Bool", ast.Bool)
	c.env.Define("Unit", ast.Unit)
}

// Check type-checks a freshly parsed AST and returns its result type.
func Check(expr ast.Expr) (ast.Type, error) {
	return NewChecker().Check(expr)
}

func (c *Checker) Check(expr ast.Expr) (ast.Type, error) {
	return c.handle(expr)
}

func (c *Checker) handle(expr ast.Expr) (ast.Type, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return c.handleLiteral(e)
	case *ast.Identifier:
		return c.handleIdentifier(e)
	case *ast.UnaryOp:
		return c.handleUnaryOp(e)
	case *ast.BinaryOp:
		return c.handleBinaryOp(e)
	case *ast.IfThenElse:
		return c.handleIfThenElse(e)
	case *ast.WhileExpr:
		return c.handleWhileExpr(e)
	case *ast.FunctionExpr:
		return c.handleFunctionExpr(e)
	case *ast.BlockExpr:
		return c.handleBlockExpr(e)
	case *ast.VarExpr:
		return c.handleVarExpr(e)
	case *ast.FunctionTypeExpr:
		return c.handleFunctionTypeExpr(e)
	default:
		return ast.Type{}, fmt.Errorf("type checker: unhandled AST node %T", expr)
	}
}

func (c *Checker) handleLiteral(e *ast.Literal) (ast.Type, error) {
	t := ast.Int
	if _, ok := e.Value.(bool); ok {
		t = ast.Bool
	}
	e.SetType(t)
	return t, nil
}

func (c *Checker) handleIdentifier(e *ast.Identifier) (ast.Type, error) {
	t, ok := c.env.Lookup(e.Name)
	if !ok {
		return ast.Type{}, fmt.Errorf("type checker: identifier: unbound name %q at %s", e.Name, e.Location())
	}
	e.SetType(t)
	return t, nil
}

func (c *Checker) handleUnaryOp(e *ast.UnaryOp) (ast.Type, error) {
	fn, ok := c.env.Lookup("unary_" + e.Op)
	if !ok || fn.Kind != ast.KindFun {
		return ast.Type{}, fmt.Errorf("type checker: unary %q: no such operator at %s", e.Op, e.Location())
	}
	operandType, err := c.handle(e.Operand)
	if err != nil {
		return ast.Type{}, fmt.Errorf("type checker: unary %q: %w", e.Op, err)
	}
	if !operandType.Equal(fn.Params[0]) {
		return ast.Type{}, fmt.Errorf("type checker: unary %q: operand type %s does not match expected %s at %s",
			e.Op, operandType, fn.Params[0], e.Location())
	}
	e.SetType(*fn.Return)
	return *fn.Return, nil
}

func (c *Checker) handleBinaryOp(e *ast.BinaryOp) (ast.Type, error) {
	switch e.Op {
	case "=":
		return c.handleAssign(e)
	case "==", "!=":
		return c.handleEquality(e)
	default:
		return c.handleGenericBinaryOp(e)
	}
}

// handleAssign implements §4.3's deliberately permissive rule: the checker
// only enforces that both sides have equal type, regardless of whether the
// left side is an lvalue (§9 open question, preserved as-is).
func (c *Checker) handleAssign(e *ast.BinaryOp) (ast.Type, error) {
	leftType, err := c.handle(e.Left)
	if err != nil {
		return ast.Type{}, fmt.Errorf("type checker: assignment: %w", err)
	}
	rightType, err := c.handle(e.Right)
	if err != nil {
		return ast.Type{}, fmt.Errorf("type checker: assignment: %w", err)
	}
	if !rightType.Equal(leftType) {
		return ast.Type{}, fmt.Errorf("type checker: assignment: right-hand type %s does not match left-hand type %s at %s",
			rightType, leftType, e.Location())
	}
	e.SetType(leftType)
	return leftType, nil
}

func (c *Checker) handleEquality(e *ast.BinaryOp) (ast.Type, error) {
	leftType, err := c.handle(e.Left)
	if err != nil {
		return ast.Type{}, fmt.Errorf("type checker: %q: %w", e.Op, err)
	}
	rightType, err := c.handle(e.Right)
	if err != nil {
		return ast.Type{}, fmt.Errorf("type checker: %q: %w", e.Op, err)
	}
	if !leftType.Equal(rightType) {
		return ast.Type{}, fmt.Errorf("type checker: %q: operand types %s and %s do not match at %s",
			e.Op, leftType, rightType, e.Location())
	}
	e.SetType(ast.Bool)
	return ast.Bool, nil
}

func (c *Checker) handleGenericBinaryOp(e *ast.BinaryOp) (ast.Type, error) {
	fn, ok := c.env.Lookup(e.Op)
	if !ok || fn.Kind != ast.KindFun {
		return ast.Type{}, fmt.Errorf("type checker: %q: no such operator at %s", e.Op, e.Location())
	}
	leftType, err := c.handle(e.Left)
	if err != nil {
		return ast.Type{}, fmt.Errorf("type checker: %q: %w", e.Op, err)
	}
	rightType, err := c.handle(e.Right)
	if err != nil {
		return ast.Type{}, fmt.Errorf("type checker: %q: %w", e.Op, err)
	}
	if !leftType.Equal(fn.Params[0]) || !rightType.Equal(fn.Params[1]) {
		return ast.Type{}, fmt.Errorf("type checker: %q: operand types (%s, %s) do not match expected (%s, %s) at %s",
			e.Op, leftType, rightType, fn.Params[0], fn.Params[1], e.Location())
	}
	e.SetType(*fn.Return)
	return *fn.Return, nil
}

func (c *Checker) handleIfThenElse(e *ast.IfThenElse) (ast.Type, error) {
	condType, err := c.handle(e.Cond)
	if err != nil {
		return ast.Type{}, fmt.Errorf("type checker: if: %w", err)
	}
	if !condType.Equal(ast.Bool) {
		return ast.Type{}, fmt.Errorf("type checker: if: condition must be Bool, got %s at %s", condType, e.Cond.Location())
	}
	thenType, err := c.handle(e.Then)
	if err != nil {
		return ast.Type{}, fmt.Errorf("type checker: if: %w", err)
	}
	if e.Else == nil {
		e.SetType(thenType)
		return thenType, nil
	}
	elseType, err := c.handle(e.Else)
	if err != nil {
		return ast.Type{}, fmt.Errorf("type checker: if: %w", err)
	}
	if !thenType.Equal(elseType) {
		return ast.Type{}, fmt.Errorf("type checker: if: branch types %s and %s differ at %s", thenType, elseType, e.Location())
	}
	e.SetType(thenType)
	return thenType, nil
}

func (c *Checker) handleWhileExpr(e *ast.WhileExpr) (ast.Type, error) {
	condType, err := c.handle(e.Cond)
	if err != nil {
		return ast.Type{}, fmt.Errorf("type checker: while: %w", err)
	}
	if !condType.Equal(ast.Bool) {
		return ast.Type{}, fmt.Errorf("type checker: while: condition must be Bool, got %s at %s", condType, e.Cond.Location())
	}
	if _, err := c.handle(e.Body); err != nil {
		return ast.Type{}, fmt.Errorf("type checker: while: %w", err)
	}
	e.SetType(ast.Unit)
	return ast.Unit, nil
}

func (c *Checker) handleFunctionExpr(e *ast.FunctionExpr) (ast.Type, error) {
	calleeType, err := c.handle(e.Callee)
	if err != nil {
		return ast.Type{}, fmt.Errorf("type checker: call: %w", err)
	}
	if calleeType.Kind != ast.KindFun {
		return ast.Type{}, fmt.Errorf("type checker: call: %q is not a function at %s", e.Callee.Name, e.Location())
	}
	if len(e.Arguments) > 6 {
		return ast.Type{}, fmt.Errorf("type checker: call: %q takes more than six arguments at %s", e.Callee.Name, e.Location())
	}
	if len(e.Arguments) != len(calleeType.Params) {
		return ast.Type{}, fmt.Errorf("type checker: call: %q expects %d argument(s), got %d at %s",
			e.Callee.Name, len(calleeType.Params), len(e.Arguments), e.Location())
	}
	for i, arg := range e.Arguments {
		argType, err := c.handle(arg)
		if err != nil {
			return ast.Type{}, fmt.Errorf("type checker: call: %w", err)
		}
		if !argType.Equal(calleeType.Params[i]) {
			return ast.Type{}, fmt.Errorf("type checker: call: %q argument %d has type %s, expected %s at %s",
				e.Callee.Name, i, argType, calleeType.Params[i], arg.Location())
		}
	}
	e.SetType(*calleeType.Return)
	return *calleeType.Return, nil
}

func (c *Checker) handleBlockExpr(e *ast.BlockExpr) (ast.Type, error) {
	c.env.Push()
	defer c.env.Pop()

	result := ast.Unit
	for _, stmt := range e.Statements {
		t, err := c.handle(stmt)
		if err != nil {
			return ast.Type{}, fmt.Errorf("type checker: block: %w", err)
		}
		result = t
	}
	e.SetType(result)
	return result, nil
}

func (c *Checker) handleVarExpr(e *ast.VarExpr) (ast.Type, error) {
	initType, err := c.handle(e.Initializer)
	if err != nil {
		return ast.Type{}, fmt.Errorf("type checker: var %q: %w", e.Name, err)
	}
	if e.Typed != nil {
		typedType, err := c.handle(e.Typed)
		if err != nil {
			return ast.Type{}, fmt.Errorf("type checker: var %q: %w", e.Name, err)
		}
		if !typedType.Equal(initType) {
			return ast.Type{}, fmt.Errorf("type checker: var %q: declared type %s disagrees with initializer type %s at %s",
				e.Name, typedType, initType, e.Location())
		}
	}
	c.env.Define(e.Name, initType)
	e.SetType(ast.Unit)
	return ast.Unit, nil
}

func (c *Checker) handleFunctionTypeExpr(e *ast.FunctionTypeExpr) (ast.Type, error) {
	if len(e.ParamTypes) > 6 {
		return ast.Type{}, fmt.Errorf("type checker: function type: more than six parameter types at %s", e.Location())
	}
	params := make([]ast.Type, len(e.ParamTypes))
	for i, p := range e.ParamTypes {
		t, err := c.handle(p)
		if err != nil {
			return ast.Type{}, fmt.Errorf("type checker: function type: %w", err)
		}
		params[i] = t
	}
	retType, err := c.handle(e.ReturnType)
	if err != nil {
		return ast.Type{}, fmt.Errorf("type checker: function type: %w", err)
	}
	fn := ast.Fun(params, retType)
	e.SetType(fn)
	return fn, nil
}
