package asmgen

import (
	"fmt"
	"math"

	"minic/pkg/ir"
)

// argRegisters holds the System V integer argument registers, in order;
// the language never passes more than six arguments (§4.3 function-type
// annotations cap arity at six).
var argRegisters = [6]string{"%rdi", "%rsi", "%rdx", "%rcx", "%r8", "%r9"}

// comparisonSuffix maps a comparison operator to its setCC suffix.
var comparisonSuffix = map[string]string{
	"==": "e",
	"!=": "ne",
	"<":  "l",
	"<=": "le",
	">":  "g",
	">=": "ge",
}

func (g *Generator) emitInstruction(instr ir.Instruction) error {
	switch i := instr.(type) {
	case ir.LabelDecl:
		g.buf.WriteString(fmt.Sprintf(".L%s:\n", i.Name))
	case ir.LoadIntConst:
		g.emitLoadIntConst(i)
	case ir.LoadBoolConst:
		value := 0
		if i.Value {
			value = 1
		}
		g.line("movq $%d, %s", value, g.slot(i.Dest))
	case ir.Copy:
		g.emitCopy(i)
	case ir.Jump:
		g.line("jmp .L%s", i.Target)
	case ir.CondJump:
		g.line("cmpq $0, %s", g.slot(i.Cond))
		g.line("jne .L%s", i.Then)
		g.line("jmp .L%s", i.Else)
	case ir.Call:
		return g.emitCall(i)
	default:
		return fmt.Errorf("asmgen: unhandled instruction %T", instr)
	}
	return nil
}

func (g *Generator) emitLoadIntConst(i ir.LoadIntConst) {
	if i.Value >= math.MinInt32 && i.Value <= math.MaxInt32 {
		g.line("movq $%d, %s", i.Value, g.slot(i.Dest))
		return
	}
	g.line("movabsq $%d, %%rax", i.Value)
	g.line("movq %%rax, %s", g.slot(i.Dest))
}

// emitCopy special-cases the three builtin routines (§6): copying one of
// them materializes its address rather than reading a stack slot, since
// they are never lowered to ordinary variables.
func (g *Generator) emitCopy(i ir.Copy) {
	switch i.Source {
	case "print_int", "print_bool", "read_int":
		g.line("movq $%s, %%rax", i.Source)
	default:
		g.line("movq %s, %%rax", g.slot(i.Source))
	}
	g.line("movq %%rax, %s", g.slot(i.Dest))
}

func (g *Generator) emitCall(call ir.Call) error {
	for i, arg := range call.Args {
		if i >= len(argRegisters) {
			return fmt.Errorf("asmgen: call to %q has more than six arguments", call.Fun)
		}
		g.line("movq %s, %s", g.slot(arg), argRegisters[i])
	}

	switch string(call.Fun) {
	case "unary_-":
		g.line("movq %s, %%rax", g.slot(call.Args[0]))
		g.line("negq %%rax")
	case "unary_not":
		g.line("movq %s, %%rax", g.slot(call.Args[0]))
		g.line("xorq $1, %%rax")
	case "print_int":
		g.line("movq %s, %%rdi", g.slot(call.Args[0]))
		g.line("callq print_int")
	case "print_bool":
		g.line("subq $8, %%rsp")
		g.line("movq %s, %%rdi", g.slot(call.Args[0]))
		g.line("callq print_bool")
		g.line("addq $8, %%rsp")
	case "read_int":
		g.line("subq $8, %%rsp")
		g.line("callq read_int")
		g.line("addq $8, %%rsp")
	case "+", "-", "*", "/", "%", "<", "<=", ">", ">=", "==", "!=", "and", "or":
		if err := g.emitBinaryOp(string(call.Fun), call.Args); err != nil {
			return err
		}
	default:
		g.line("movq %s, %%rax", g.slot(call.Fun))
		g.line("call *%%rax")
	}

	g.line("movq %%rax, %s", g.slot(call.Dest))
	return nil
}

func (g *Generator) emitBinaryOp(op string, args []ir.IRVar) error {
	if len(args) != 2 {
		return fmt.Errorf("asmgen: operator %q called with %d arguments, want 2", op, len(args))
	}
	left, right := args[0], args[1]
	g.line("movq %s, %%rax", g.slot(left))

	switch op {
	case "+":
		g.line("addq %s, %%rax", g.slot(right))
	case "-":
		g.line("subq %s, %%rax", g.slot(right))
	case "*":
		g.line("imulq %s, %%rax", g.slot(right))
	case "/":
		g.line("cqto")
		g.line("idivq %s", g.slot(right))
	case "%":
		g.line("cqto")
		g.line("idivq %s", g.slot(right))
		g.line("movq %%rdx, %%rax")
	case "and":
		g.line("andq %s, %%rax", g.slot(right))
	case "or":
		g.line("orq %s, %%rax", g.slot(right))
	default:
		suffix, ok := comparisonSuffix[op]
		if !ok {
			return fmt.Errorf("asmgen: unknown binary operator %q", op)
		}
		g.line("cmpq %s, %%rax", g.slot(right))
		g.line("set%s %%al", suffix)
		g.line("movzbq %%al, %%rax")
	}
	return nil
}
