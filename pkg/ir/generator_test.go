package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minic/pkg/check"
	"minic/pkg/ir"
	"minic/pkg/parser"
	"minic/pkg/token"
)

func generate(t *testing.T, source string) []ir.Instruction {
	t.Helper()
	expr, err := parser.Parse(token.Tokenize(source))
	require.NoError(t, err)
	_, err = check.Check(expr)
	require.NoError(t, err)
	instrs, err := ir.Generate(expr)
	require.NoError(t, err)
	return instrs
}

func TestGenerateArithmeticEndsWithPrintInt(t *testing.T) {
	instrs := generate(t, "1 + 2")
	require.NotEmpty(t, instrs)
	last, ok := instrs[len(instrs)-1].(ir.Call)
	require.True(t, ok)
	assert.Equal(t, ir.IRVar("print_int"), last.Fun)
}

func TestGenerateBooleanEndsWithPrintBool(t *testing.T) {
	instrs := generate(t, "true or false")
	last, ok := instrs[len(instrs)-1].(ir.Call)
	require.True(t, ok)
	assert.Equal(t, ir.IRVar("print_bool"), last.Fun)
}

func TestGenerateOrShortCircuitLabels(t *testing.T) {
	instrs := generate(t, "true or false")

	var labels []ir.Label
	for _, instr := range instrs {
		if decl, ok := instr.(ir.LabelDecl); ok {
			labels = append(labels, decl.Name)
		}
	}
	assert.Equal(t, []ir.Label{"or_right", "or_skip", "or_end"}, labels)
}

// TestGenerateAndSkipFallsThrough locks in the §9 open question: the
// and_skip branch has no Jump before and_end, so the LoadBoolConst(false,...)
// instruction is immediately followed by the and_end label, not a jump.
func TestGenerateAndSkipFallsThrough(t *testing.T) {
	instrs := generate(t, "true and false")

	skipIdx := -1
	for i, instr := range instrs {
		if decl, ok := instr.(ir.LabelDecl); ok && decl.Name == "and_skip" {
			skipIdx = i
			break
		}
	}
	require.GreaterOrEqual(t, skipIdx, 0)
	require.Less(t, skipIdx+2, len(instrs))

	_, isLoadBool := instrs[skipIdx+1].(ir.LoadBoolConst)
	assert.True(t, isLoadBool)

	_, isLabel := instrs[skipIdx+2].(ir.LabelDecl)
	assert.True(t, isLabel, "and_skip must fall through directly into and_end, not jump to it")
}

func TestGenerateIfWithoutElseResultIsUnit(t *testing.T) {
	instrs := generate(t, "{ var x = 1; if true then x = 2 }")
	// the block's last statement is an if-without-else, so the block (and
	// hence the whole program) is Unit-typed: no terminal print call is
	// appended.
	for _, instr := range instrs {
		if call, ok := instr.(ir.Call); ok && call.Fun == "print_int" {
			t.Fatalf("a Unit-typed program must not append a print call, got %v", call)
		}
	}
}

func TestGenerateSecondLabelOfSameBaseGetsSuffix(t *testing.T) {
	instrs := generate(t, "if (if true then true else false) then 1 else 2")

	var thenLabels []ir.Label
	for _, instr := range instrs {
		if decl, ok := instr.(ir.LabelDecl); ok && (decl.Name == "then" || decl.Name == "then2") {
			thenLabels = append(thenLabels, decl.Name)
		}
	}
	assert.Contains(t, thenLabels, ir.Label("then"))
	assert.Contains(t, thenLabels, ir.Label("then2"))
}

func TestGenerateVarRedeclarationInSameFrameFails(t *testing.T) {
	expr, err := parser.Parse(token.Tokenize("{ var x = 1; var x = 2; x }"))
	require.NoError(t, err)
	_, err = check.Check(expr)
	require.NoError(t, err)
	_, err = ir.Generate(expr)
	assert.Error(t, err)
}

func TestGenerateFreshVariableNaming(t *testing.T) {
	instrs := generate(t, "1 + 2 + 3")

	var dests []ir.IRVar
	for _, instr := range instrs {
		if load, ok := instr.(ir.LoadIntConst); ok {
			dests = append(dests, load.Dest)
		}
	}
	require.Len(t, dests, 3)
	assert.Equal(t, ir.IRVar("x"), dests[0])
	assert.Equal(t, ir.IRVar("x2"), dests[1])
	// x3 is taken by the result of the first '+', which is lowered before
	// the third literal.
	assert.Equal(t, ir.IRVar("x4"), dests[2])
}
