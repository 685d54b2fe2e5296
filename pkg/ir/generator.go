package ir

import (
	"fmt"

	"minic/pkg/ast"
	"minic/pkg/utils"
)

// reservedGlobals is the full set of §6's reserved global names: operators,
// unary operators, builtins, the boolean constants, and the type names.
// The root environment binds each to an IRVar of its own source name.
var reservedGlobals = []string{
	"+", "-", "*", "/", "%",
	"<", "<=", ">", ">=",
	"==", "!=", "=",
	"and", "or",
	"unary_-", "unary_not",
	"print_int", "print_bool", "read_int",
	"true", "false",
	"Int", "Bool", "Unit",
}

// Generator is the stage context object of §9's design note: the token
// cursor's IR-stage analog is the fresh-variable counter/label table/
// instruction list threaded through a single recursive lowering traversal.
type Generator struct {
	env          *utils.Environment[IRVar]
	instructions []Instruction
	nVar         int
	labelCounts  map[string]int
	unit         IRVar
}

// NewGenerator returns a Generator whose root environment is pre-populated
// with the reserved globals, and whose singleton 'unit' IRVar is allocated
// once (§9: "a designated sentinel IRVar constructed once and shared").
func NewGenerator() *Generator {
	g := &Generator{
		env:         utils.NewEnvironment[IRVar](),
		labelCounts: map[string]int{},
		unit:        IRVar("unit"),
	}
	for _, name := range reservedGlobals {
		g.env.Define(name, IRVar(name))
	}
	return g
}

// Generate lowers a type-checked AST to its instruction list, appending a
// terminal print_int/print_bool call when the root expression's checked
// type is Int or Bool (§4.4).
func Generate(expr ast.Expr) ([]Instruction, error) {
	g := NewGenerator()
	result, err := g.lower(expr)
	if err != nil {
		return nil, err
	}

	switch expr.NodeType().Kind {
	case ast.KindInt:
		dest := g.freshVar()
		g.emit(Call{Fun: IRVar("print_int"), Args: []IRVar{result}, Dest: dest})
	case ast.KindBool:
		dest := g.freshVar()
		g.emit(Call{Fun: IRVar("print_bool"), Args: []IRVar{result}, Dest: dest})
	}
	return g.instructions, nil
}

func (g *Generator) emit(instr Instruction) { g.instructions = append(g.instructions, instr) }

// freshVar allocates the next fresh IR variable name: x, x2, x3, ... (§3).
func (g *Generator) freshVar() IRVar {
	g.nVar++
	if g.nVar == 1 {
		return IRVar("x")
	}
	return IRVar(fmt.Sprintf("x%d", g.nVar))
}

// freshLabel reuses 'base' verbatim the first time it is requested, and
// appends a disambiguating suffix on every subsequent request (§9, preserved
// exactly: "the first then is plain then, the second is then<k> for k>1").
func (g *Generator) freshLabel(base string) Label {
	count := g.labelCounts[base]
	g.labelCounts[base] = count + 1
	if count == 0 {
		return Label(base)
	}
	return Label(fmt.Sprintf("%s%d", base, count+1))
}

// lower dispatches on the dynamic AST case. A nil Expr -- an absent
// optional operand -- lowers directly to the singleton unit variable (§4.4).
func (g *Generator) lower(expr ast.Expr) (IRVar, error) {
	if expr == nil {
		return g.unit, nil
	}
	switch e := expr.(type) {
	case *ast.Literal:
		return g.lowerLiteral(e)
	case *ast.Identifier:
		return g.lowerIdentifier(e)
	case *ast.UnaryOp:
		return g.lowerUnaryOp(e)
	case *ast.BinaryOp:
		return g.lowerBinaryOp(e)
	case *ast.IfThenElse:
		return g.lowerIfThenElse(e)
	case *ast.WhileExpr:
		return g.lowerWhileExpr(e)
	case *ast.FunctionExpr:
		return g.lowerFunctionExpr(e)
	case *ast.BlockExpr:
		return g.lowerBlockExpr(e)
	case *ast.VarExpr:
		return g.lowerVarExpr(e)
	default:
		return "", fmt.Errorf("ir: unhandled AST node %T", expr)
	}
}

func (g *Generator) lowerLiteral(e *ast.Literal) (IRVar, error) {
	dest := g.freshVar()
	switch v := e.Value.(type) {
	case bool:
		g.emit(LoadBoolConst{Value: v, Dest: dest})
	case int64:
		g.emit(LoadIntConst{Value: v, Dest: dest})
	default:
		return "", fmt.Errorf("ir: literal: unsupported value type %T at %s", e.Value, e.Location())
	}
	return dest, nil
}

func (g *Generator) lowerIdentifier(e *ast.Identifier) (IRVar, error) {
	if e.Name == "true" || e.Name == "false" {
		dest := g.freshVar()
		g.emit(LoadBoolConst{Value: e.Name == "true", Dest: dest})
		return dest, nil
	}
	v, ok := g.env.Lookup(e.Name)
	if !ok {
		return "", fmt.Errorf("ir: identifier: unbound name %q at %s", e.Name, e.Location())
	}
	return v, nil
}

func (g *Generator) lowerUnaryOp(e *ast.UnaryOp) (IRVar, error) {
	xv, err := g.lower(e.Operand)
	if err != nil {
		return "", err
	}
	fn, ok := g.env.Lookup("unary_" + e.Op)
	if !ok {
		return "", fmt.Errorf("ir: unary %q: no such reserved global at %s", e.Op, e.Location())
	}
	dest := g.freshVar()
	g.emit(Call{Fun: fn, Args: []IRVar{xv}, Dest: dest})
	return dest, nil
}

func (g *Generator) lowerBinaryOp(e *ast.BinaryOp) (IRVar, error) {
	switch e.Op {
	case "=":
		return g.lowerAssign(e)
	case "or":
		return g.lowerOr(e)
	case "and":
		return g.lowerAnd(e)
	default:
		return g.lowerGenericBinaryOp(e)
	}
}

func (g *Generator) lowerAssign(e *ast.BinaryOp) (IRVar, error) {
	lv, err := g.lower(e.Left)
	if err != nil {
		return "", err
	}
	rv, err := g.lower(e.Right)
	if err != nil {
		return "", err
	}
	g.emit(Copy{Source: rv, Dest: lv})
	return lv, nil
}

// lowerOr implements §4.4's short-circuit lowering for 'or' verbatim.
func (g *Generator) lowerOr(e *ast.BinaryOp) (IRVar, error) {
	orRight := g.freshLabel("or_right")
	orEnd := g.freshLabel("or_end")
	orSkip := g.freshLabel("or_skip")

	leftVar, err := g.lower(e.Left)
	if err != nil {
		return "", err
	}
	g.emit(CondJump{Cond: leftVar, Then: orSkip, Else: orRight})

	g.emit(LabelDecl{Name: orRight})
	rightVar, err := g.lower(e.Right)
	if err != nil {
		return "", err
	}
	result := g.freshVar()
	g.emit(Copy{Source: rightVar, Dest: result})
	g.emit(Jump{Target: orEnd})

	g.emit(LabelDecl{Name: orSkip})
	g.emit(LoadBoolConst{Value: true, Dest: result})
	g.emit(Jump{Target: orEnd})

	g.emit(LabelDecl{Name: orEnd})
	return result, nil
}

// lowerAnd implements §4.4's short-circuit lowering for 'and'. Preserved
// verbatim per §9: the and_skip path does not emit a terminating Jump
// before and_end, falling through into it instead.
func (g *Generator) lowerAnd(e *ast.BinaryOp) (IRVar, error) {
	andRight := g.freshLabel("and_right")
	andEnd := g.freshLabel("and_end")
	andSkip := g.freshLabel("and_skip")

	leftVar, err := g.lower(e.Left)
	if err != nil {
		return "", err
	}
	g.emit(CondJump{Cond: leftVar, Then: andRight, Else: andSkip})

	g.emit(LabelDecl{Name: andRight})
	rightVar, err := g.lower(e.Right)
	if err != nil {
		return "", err
	}
	result := g.freshVar()
	g.emit(Copy{Source: rightVar, Dest: result})
	g.emit(Jump{Target: andEnd})

	g.emit(LabelDecl{Name: andSkip})
	g.emit(LoadBoolConst{Value: false, Dest: result})
	g.emit(LabelDecl{Name: andEnd})
	return result, nil
}

func (g *Generator) lowerGenericBinaryOp(e *ast.BinaryOp) (IRVar, error) {
	opVar, ok := g.env.Lookup(e.Op)
	if !ok {
		return "", fmt.Errorf("ir: %q: no such reserved global at %s", e.Op, e.Location())
	}
	leftVar, err := g.lower(e.Left)
	if err != nil {
		return "", err
	}
	rightVar, err := g.lower(e.Right)
	if err != nil {
		return "", err
	}
	dest := g.freshVar()
	g.emit(Call{Fun: opVar, Args: []IRVar{leftVar, rightVar}, Dest: dest})
	return dest, nil
}

func (g *Generator) lowerIfThenElse(e *ast.IfThenElse) (IRVar, error) {
	if e.Else == nil {
		thenLabel := g.freshLabel("then")
		endLabel := g.freshLabel("if_end")

		condVar, err := g.lower(e.Cond)
		if err != nil {
			return "", err
		}
		g.emit(CondJump{Cond: condVar, Then: thenLabel, Else: endLabel})

		g.emit(LabelDecl{Name: thenLabel})
		if _, err := g.lower(e.Then); err != nil {
			return "", err
		}
		g.emit(LabelDecl{Name: endLabel})
		return g.unit, nil
	}

	thenLabel := g.freshLabel("then")
	elseLabel := g.freshLabel("else")
	endLabel := g.freshLabel("if_end")

	condVar, err := g.lower(e.Cond)
	if err != nil {
		return "", err
	}
	g.emit(CondJump{Cond: condVar, Then: thenLabel, Else: elseLabel})
	result := g.freshVar()

	g.emit(LabelDecl{Name: thenLabel})
	thenVar, err := g.lower(e.Then)
	if err != nil {
		return "", err
	}
	g.emit(Copy{Source: thenVar, Dest: result})
	g.emit(Jump{Target: endLabel})

	g.emit(LabelDecl{Name: elseLabel})
	elseVar, err := g.lower(e.Else)
	if err != nil {
		return "", err
	}
	g.emit(Copy{Source: elseVar, Dest: result})

	g.emit(LabelDecl{Name: endLabel})
	return result, nil
}

func (g *Generator) lowerWhileExpr(e *ast.WhileExpr) (IRVar, error) {
	startLabel := g.freshLabel("while_start")
	bodyLabel := g.freshLabel("while_body")
	endLabel := g.freshLabel("while_end")

	g.emit(LabelDecl{Name: startLabel})
	condVar, err := g.lower(e.Cond)
	if err != nil {
		return "", err
	}
	g.emit(CondJump{Cond: condVar, Then: bodyLabel, Else: endLabel})

	g.emit(LabelDecl{Name: bodyLabel})
	if _, err := g.lower(e.Body); err != nil {
		return "", err
	}
	g.emit(Jump{Target: startLabel})

	g.emit(LabelDecl{Name: endLabel})
	return g.unit, nil
}

func (g *Generator) lowerFunctionExpr(e *ast.FunctionExpr) (IRVar, error) {
	funVar, err := g.lower(e.Callee)
	if err != nil {
		return "", err
	}
	args := make([]IRVar, len(e.Arguments))
	for i, arg := range e.Arguments {
		v, err := g.lower(arg)
		if err != nil {
			return "", err
		}
		args[i] = v
	}
	dest := g.freshVar()
	g.emit(Call{Fun: funVar, Args: args, Dest: dest})
	return dest, nil
}

func (g *Generator) lowerBlockExpr(e *ast.BlockExpr) (IRVar, error) {
	g.env.Push()
	defer g.env.Pop()

	result := g.unit
	for _, stmt := range e.Statements {
		v, err := g.lower(stmt)
		if err != nil {
			return "", err
		}
		result = v
	}
	if e.NodeType().Equal(ast.Unit) {
		return g.unit, nil
	}
	return result, nil
}

func (g *Generator) lowerVarExpr(e *ast.VarExpr) (IRVar, error) {
	if g.env.DefinedInCurrentFrame(e.Name) {
		return "", fmt.Errorf("ir: var %q: already declared in this scope at %s", e.Name, e.Location())
	}
	initVar, err := g.lower(e.Initializer)
	if err != nil {
		return "", err
	}
	a := g.freshVar()
	g.emit(Copy{Source: initVar, Dest: a})
	g.env.Define(e.Name, a)
	return g.unit, nil
}
