// Package asmgen emits x86-64 System V AT&T-syntax assembly from an IR
// instruction list (§4.5), using a naive one-variable-per-stack-slot
// allocator: every IR variable ever referenced gets its own 8-byte slot,
// assigned in first-appearance order, for the lifetime of the whole
// program (there is no liveness analysis, no register allocation beyond
// scratch registers).
package asmgen

import (
	"fmt"
	"strings"

	"minic/pkg/ir"
)

// Generator holds the slot table and the growing assembly text; it is a
// context object scoped to a single Generate call.
type Generator struct {
	slots map[ir.IRVar]int
	buf   strings.Builder
}

// Generate assigns a stack slot to every IR variable (§4.5 "Slot
// allocation") and emits the full assembly listing for 'instrs': prologue,
// one block per instruction, epilogue.
func Generate(instrs []ir.Instruction) (string, error) {
	g := &Generator{slots: map[ir.IRVar]int{}}
	order := collectVariables(instrs)
	for i, v := range order {
		g.slots[v] = i
	}
	frameSize := 8 * len(order)

	g.emitPrologue(frameSize)
	for _, instr := range instrs {
		if err := g.emitInstruction(instr); err != nil {
			return "", err
		}
	}
	g.emitEpilogue()
	return g.buf.String(), nil
}

// collectVariables walks the instruction list once, recording every IR
// variable the first time it appears in any field of any instruction
// (including argument lists), in that order (§4.5).
func collectVariables(instrs []ir.Instruction) []ir.IRVar {
	var order []ir.IRVar
	seen := map[ir.IRVar]bool{}
	visit := func(v ir.IRVar) {
		if !seen[v] {
			seen[v] = true
			order = append(order, v)
		}
	}

	for _, instr := range instrs {
		switch i := instr.(type) {
		case ir.LoadIntConst:
			visit(i.Dest)
		case ir.LoadBoolConst:
			visit(i.Dest)
		case ir.Copy:
			visit(i.Source)
			visit(i.Dest)
		case ir.Call:
			visit(i.Fun)
			for _, a := range i.Args {
				visit(a)
			}
			visit(i.Dest)
		case ir.CondJump:
			visit(i.Cond)
		case ir.Jump, ir.LabelDecl:
			// no IR-variable operands
		}
	}
	return order
}

// slot returns the AT&T-syntax stack-slot operand for 'v', e.g. "-8(%rbp)".
func (g *Generator) slot(v ir.IRVar) string {
	idx, ok := g.slots[v]
	if !ok {
		panic(fmt.Sprintf("asmgen: IR variable %q referenced but never allocated a slot", v))
	}
	return fmt.Sprintf("-%d(%%rbp)", 8*(idx+1))
}

func (g *Generator) line(format string, args ...any) {
	fmt.Fprintf(&g.buf, "\t"+format+"\n", args...)
}

func (g *Generator) emitPrologue(frameSize int) {
	g.buf.WriteString(".extern print_int\n")
	g.buf.WriteString(".extern print_bool\n")
	g.buf.WriteString(".extern read_int\n")
	g.buf.WriteString(".text\n")
	g.buf.WriteString(".globl main\n")
	g.buf.WriteString("main:\n")
	g.line("pushq %%rbp")
	g.line("movq %%rsp, %%rbp")
	if frameSize > 0 {
		g.line("subq $%d, %%rsp", frameSize)
	}
}

func (g *Generator) emitEpilogue() {
	g.line("movq $0, %%rax")
	g.line("movq %%rbp, %%rsp")
	g.line("popq %%rbp")
	g.line("ret")
}
