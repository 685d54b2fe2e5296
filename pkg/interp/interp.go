// Package interp is a tree-walking interpreter over the same ast.Expr the
// parser produces, used as a semantic oracle: it executes a program
// directly, independent of the IR/assembly pipeline, so the pipeline's
// compiled behavior can be cross-checked against a second, much simpler
// implementation of the language's meaning (the concrete scenarios of §8,
// e.g. "interpreted semantically has value 1", are exactly this kind of
// check). It plays no part in producing assembly.
package interp

import (
	"bufio"
	"fmt"
	"io"

	"minic/pkg/ast"
	"minic/pkg/utils"
)

// Value is whatever a running program's expression evaluates to: an int64,
// a bool, a Builtin (a first-class reference to one of the three runtime
// routines, reachable only by aliasing one through a 'var'), or nil (Unit).
type Value any

// Builtin names one of the three external runtime routines (§6) when it is
// held as a value, e.g. after 'var f: (Int) => Unit = print_int'. The
// language has no other first-class functions (§1 non-goals).
type Builtin string

// Interpreter is a context object: its environment is the only mutable
// state, scoped to a single Eval call, mirroring Checker/Generator.
type Interpreter struct {
	env *utils.Environment[Value]
	in  *bufio.Scanner
	out io.Writer
}

// New returns an Interpreter reading read_int input from 'in' and writing
// print_int/print_bool output to 'out', with the reserved booleans and
// builtins preinstalled in its root frame (§6).
func New(in io.Reader, out io.Writer) *Interpreter {
	scanner := bufio.NewScanner(in)
	scanner.Split(bufio.ScanWords)

	it := &Interpreter{env: utils.NewEnvironment[Value](), in: scanner, out: out}
	it.env.Define("true", true)
	it.env.Define("false", false)
	it.env.Define("print_int", Builtin("print_int"))
	it.env.Define("print_bool", Builtin("print_bool"))
	it.env.Define("read_int", Builtin("read_int"))
	// The parser's block-result convention (§4.2) appends a synthetic
	// Identifier("Unit") to end a non-producing block; it must resolve to
	// something when such a block is interpreted directly.
	it.env.Define("Unit", nil)
	return it
}

// Interpret evaluates 'expr' end to end with a fresh Interpreter.
func Interpret(expr ast.Expr, in io.Reader, out io.Writer) (Value, error) {
	return New(in, out).Eval(expr)
}

func (it *Interpreter) Eval(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return e.Value, nil
	case *ast.Identifier:
		return it.evalIdentifier(e)
	case *ast.UnaryOp:
		return it.evalUnaryOp(e)
	case *ast.BinaryOp:
		return it.evalBinaryOp(e)
	case *ast.IfThenElse:
		return it.evalIfThenElse(e)
	case *ast.WhileExpr:
		return it.evalWhileExpr(e)
	case *ast.FunctionExpr:
		return it.evalFunctionExpr(e)
	case *ast.BlockExpr:
		return it.evalBlockExpr(e)
	case *ast.VarExpr:
		return it.evalVarExpr(e)
	default:
		return nil, fmt.Errorf("interp: no runtime semantics for %T", expr)
	}
}

func (it *Interpreter) evalIdentifier(e *ast.Identifier) (Value, error) {
	v, ok := it.env.Lookup(e.Name)
	if !ok {
		return nil, fmt.Errorf("interp: undefined variable %q at %s", e.Name, e.Location())
	}
	return v, nil
}

func (it *Interpreter) evalUnaryOp(e *ast.UnaryOp) (Value, error) {
	operand, err := it.Eval(e.Operand)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "-":
		i, ok := operand.(int64)
		if !ok {
			return nil, fmt.Errorf("interp: unary '-' requires Int at %s", e.Location())
		}
		return -i, nil
	case "not":
		b, ok := operand.(bool)
		if !ok {
			return nil, fmt.Errorf("interp: unary 'not' requires Bool at %s", e.Location())
		}
		return !b, nil
	default:
		return nil, fmt.Errorf("interp: unknown unary operator %q at %s", e.Op, e.Location())
	}
}

func (it *Interpreter) evalBinaryOp(e *ast.BinaryOp) (Value, error) {
	switch e.Op {
	case "=":
		return it.evalAssign(e)
	case "or":
		return it.evalOr(e)
	case "and":
		return it.evalAnd(e)
	default:
		return it.evalArithOrComparison(e)
	}
}

// evalAssign requires an identifier left-hand side -- unlike the type
// checker (§9 open question), the interpreter cannot assign through an
// arbitrary expression, since it has no notion of an lvalue beyond a bound
// name.
func (it *Interpreter) evalAssign(e *ast.BinaryOp) (Value, error) {
	name, ok := e.Left.(*ast.Identifier)
	if !ok {
		return nil, fmt.Errorf("interp: left-hand side of '=' must be an identifier at %s", e.Location())
	}
	value, err := it.Eval(e.Right)
	if err != nil {
		return nil, err
	}
	if !it.env.Assign(name.Name, value) {
		return nil, fmt.Errorf("interp: undefined variable %q at %s", name.Name, e.Location())
	}
	return value, nil
}

func (it *Interpreter) evalOr(e *ast.BinaryOp) (Value, error) {
	left, err := it.evalBool(e.Left, "or")
	if err != nil {
		return nil, err
	}
	if left {
		return true, nil
	}
	return it.evalBool(e.Right, "or")
}

func (it *Interpreter) evalAnd(e *ast.BinaryOp) (Value, error) {
	left, err := it.evalBool(e.Left, "and")
	if err != nil {
		return nil, err
	}
	if !left {
		return false, nil
	}
	return it.evalBool(e.Right, "and")
}

func (it *Interpreter) evalBool(expr ast.Expr, op string) (bool, error) {
	v, err := it.Eval(expr)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("interp: %q requires Bool operands at %s", op, expr.Location())
	}
	return b, nil
}

func (it *Interpreter) evalArithOrComparison(e *ast.BinaryOp) (Value, error) {
	left, err := it.Eval(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := it.Eval(e.Right)
	if err != nil {
		return nil, err
	}

	if e.Op == "==" {
		return left == right, nil
	}
	if e.Op == "!=" {
		return left != right, nil
	}

	l, lok := left.(int64)
	r, rok := right.(int64)
	if !lok || !rok {
		return nil, fmt.Errorf("interp: %q requires Int operands at %s", e.Op, e.Location())
	}
	switch e.Op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return nil, fmt.Errorf("interp: division by zero at %s", e.Location())
		}
		return l / r, nil
	case "%":
		if r == 0 {
			return nil, fmt.Errorf("interp: division by zero at %s", e.Location())
		}
		return l % r, nil
	case "<":
		return l < r, nil
	case "<=":
		return l <= r, nil
	case ">":
		return l > r, nil
	case ">=":
		return l >= r, nil
	default:
		return nil, fmt.Errorf("interp: unknown binary operator %q at %s", e.Op, e.Location())
	}
}

func (it *Interpreter) evalIfThenElse(e *ast.IfThenElse) (Value, error) {
	cond, err := it.evalBool(e.Cond, "if")
	if err != nil {
		return nil, err
	}
	if cond {
		return it.Eval(e.Then)
	}
	if e.Else == nil {
		return nil, nil
	}
	return it.Eval(e.Else)
}

func (it *Interpreter) evalWhileExpr(e *ast.WhileExpr) (Value, error) {
	var result Value
	for {
		cond, err := it.evalBool(e.Cond, "while")
		if err != nil {
			return nil, err
		}
		if !cond {
			return result, nil
		}
		result, err = it.Eval(e.Body)
		if err != nil {
			return nil, err
		}
	}
}

func (it *Interpreter) evalFunctionExpr(e *ast.FunctionExpr) (Value, error) {
	callee, err := it.Eval(e.Callee)
	if err != nil {
		return nil, err
	}
	builtin, ok := callee.(Builtin)
	if !ok {
		return nil, fmt.Errorf("interp: %q is not callable at %s", e.Callee.Name, e.Location())
	}

	args := make([]Value, len(e.Arguments))
	for i, arg := range e.Arguments {
		v, err := it.Eval(arg)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return it.callBuiltin(builtin, args, e)
}

func (it *Interpreter) callBuiltin(builtin Builtin, args []Value, e *ast.FunctionExpr) (Value, error) {
	switch builtin {
	case "print_int":
		i, ok := args[0].(int64)
		if !ok {
			return nil, fmt.Errorf("interp: print_int requires an Int argument at %s", e.Location())
		}
		fmt.Fprintln(it.out, i)
		return nil, nil
	case "print_bool":
		b, ok := args[0].(bool)
		if !ok {
			return nil, fmt.Errorf("interp: print_bool requires a Bool argument at %s", e.Location())
		}
		if b {
			fmt.Fprintln(it.out, "true")
		} else {
			fmt.Fprintln(it.out, "false")
		}
		return nil, nil
	case "read_int":
		if !it.in.Scan() {
			return nil, fmt.Errorf("interp: read_int: no more input at %s", e.Location())
		}
		var n int64
		if _, err := fmt.Sscanf(it.in.Text(), "%d", &n); err != nil {
			return nil, fmt.Errorf("interp: read_int: %w", err)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("interp: unknown builtin %q at %s", builtin, e.Location())
	}
}

func (it *Interpreter) evalBlockExpr(e *ast.BlockExpr) (Value, error) {
	it.env.Push()
	defer it.env.Pop()

	var result Value
	for _, stmt := range e.Statements {
		v, err := it.Eval(stmt)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

// evalVarExpr binds Name to Initializer's value and returns that value --
// unlike the checker/IR generator, which both treat 'var' as statically and
// dynamically Unit-producing, the interpreter returns the bound value
// itself. This mirrors the source interpreter this package is grounded on
// and only matters for interpreting a program directly; it has no bearing
// on compiled output, which never runs this package.
func (it *Interpreter) evalVarExpr(e *ast.VarExpr) (Value, error) {
	value, err := it.Eval(e.Initializer)
	if err != nil {
		return nil, err
	}
	it.env.Define(e.Name, value)
	return value, nil
}
