package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minic/pkg/ast"
	"minic/pkg/parser"
	"minic/pkg/token"
)

func parse(t *testing.T, source string) ast.Expr {
	t.Helper()
	expr, err := parser.Parse(token.Tokenize(source))
	require.NoError(t, err)
	return expr
}

func TestParsePrecedence(t *testing.T) {
	expr := parse(t, "1 + 2 * 3")
	bin := expr.(*ast.BinaryOp)
	assert.Equal(t, "+", bin.Op)
	assert.Equal(t, int64(1), bin.Left.(*ast.Literal).Value)
	rhs := bin.Right.(*ast.BinaryOp)
	assert.Equal(t, "*", rhs.Op)
}

func TestParseUnaryBindsTighterThanMultiplicative(t *testing.T) {
	expr := parse(t, "-x * 2")
	bin := expr.(*ast.BinaryOp)
	assert.Equal(t, "*", bin.Op)
	unary := bin.Left.(*ast.UnaryOp)
	assert.Equal(t, "-", unary.Op)
	assert.Equal(t, "x", unary.Operand.(*ast.Identifier).Name)
}

func TestParseAssignmentIsRightAssociativeAndLoosest(t *testing.T) {
	expr := parse(t, "x = y = 1 + 2")
	outer := expr.(*ast.BinaryOp)
	require.Equal(t, "=", outer.Op)
	assert.Equal(t, "x", outer.Left.(*ast.Identifier).Name)
	inner := outer.Right.(*ast.BinaryOp)
	require.Equal(t, "=", inner.Op)
	assert.Equal(t, "y", inner.Left.(*ast.Identifier).Name)
	_, ok := inner.Right.(*ast.BinaryOp)
	assert.True(t, ok)
}

func TestParseIfWithoutElse(t *testing.T) {
	expr := parse(t, "if x then y")
	ifte := expr.(*ast.IfThenElse)
	assert.Nil(t, ifte.Else)
}

func TestParseFunctionCall(t *testing.T) {
	expr := parse(t, "foo(1, 2 + 3)")
	call := expr.(*ast.FunctionExpr)
	assert.Equal(t, "foo", call.Callee.Name)
	require.Len(t, call.Arguments, 2)
	assert.Equal(t, int64(1), call.Arguments[0].(*ast.Literal).Value)
}

func TestParseZeroArgCall(t *testing.T) {
	expr := parse(t, "read_int()")
	call := expr.(*ast.FunctionExpr)
	assert.Empty(t, call.Arguments)
}

func TestParseVarWithTypeAnnotation(t *testing.T) {
	expr := parse(t, "var x: Int = 1")
	v := expr.(*ast.VarExpr)
	assert.Equal(t, "x", v.Name)
	assert.Equal(t, "Int", v.Typed.(*ast.Identifier).Name)
}

func TestParseVarWithFunctionTypeAnnotation(t *testing.T) {
	expr := parse(t, "var f: (Int, Bool) => Unit = g")
	v := expr.(*ast.VarExpr)
	ft := v.Typed.(*ast.FunctionTypeExpr)
	require.Len(t, ft.ParamTypes, 2)
	assert.Equal(t, "Int", ft.ParamTypes[0].(*ast.Identifier).Name)
	assert.Equal(t, "Bool", ft.ParamTypes[1].(*ast.Identifier).Name)
	assert.Equal(t, "Unit", ft.ReturnType.(*ast.Identifier).Name)
}

func TestParseVarRejectedOutsidePermittedPosition(t *testing.T) {
	_, err := parser.Parse(token.Tokenize("1 + var x = 2"))
	assert.Error(t, err)

	_, err = parser.Parse(token.Tokenize("if var x = 1 then 2"))
	assert.Error(t, err)
}

func TestParseBlockUnitSynthesisOnTrailingSemicolon(t *testing.T) {
	expr := parse(t, "{ var x = 1; x = x + 1; }")
	block := expr.(*ast.BlockExpr)
	last := block.Statements[len(block.Statements)-1]
	ident, ok := last.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "Unit", ident.Name)
}

func TestParseBlockUnitSynthesisOnIfWithoutElse(t *testing.T) {
	expr := parse(t, "{ var x = 1; if x then x = 0 }")
	block := expr.(*ast.BlockExpr)
	last := block.Statements[len(block.Statements)-1]
	ident, ok := last.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "Unit", ident.Name)
}

func TestParseBlockNoSynthesisWhenLastStatementProduces(t *testing.T) {
	expr := parse(t, "{ var x = 1; x }")
	block := expr.(*ast.BlockExpr)
	last := block.Statements[len(block.Statements)-1]
	ident, ok := last.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "x", ident.Name)
}

func TestParseBlockRequiresSeparatorBetweenBareStatements(t *testing.T) {
	_, err := parser.Parse(token.Tokenize("{ x y }"))
	assert.Error(t, err)
}

func TestParseTopLevelSingleStatementReturnedAsIs(t *testing.T) {
	expr := parse(t, "1 + 2")
	_, ok := expr.(*ast.BlockExpr)
	assert.False(t, ok)
}

func TestParseTopLevelMultipleStatementsWrapInBlock(t *testing.T) {
	expr := parse(t, "var x = 1; x = x + 1")
	block := expr.(*ast.BlockExpr)
	assert.Len(t, block.Statements, 2)
}

func TestParseEmptyInput(t *testing.T) {
	_, err := parser.Parse(token.Tokenize(""))
	assert.Error(t, err)
}

func TestParseUnexpectedTokenReportsLocation(t *testing.T) {
	_, err := parser.Parse(token.Tokenize(") 1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1:1")
}

func TestParseNestedBlockAsIfCondition(t *testing.T) {
	expr := parse(t, "if { var x = 1; x } then 2 else 3")
	ifte := expr.(*ast.IfThenElse)
	_, ok := ifte.Cond.(*ast.BlockExpr)
	assert.True(t, ok)
}
