package parser

import (
	"fmt"
	"strconv"

	"minic/pkg/ast"
	"minic/pkg/token"
)

func parseIntLiteral(text string) (int64, error) {
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer literal %q", text)
	}
	return value, nil
}

// needsUnitSynthesis reports whether a synthetic Identifier("Unit") must be
// appended to a statement sequence so the sequence's last expression -- and
// hence a BlockExpr built from it -- types as Unit: the last statement is an
// if without an else, a while, or the sequence ended in a trailing ';'
// (§4.2 "Block result convention").
func needsUnitSynthesis(stmts []ast.Expr, trailingSemi bool) bool {
	if trailingSemi {
		return true
	}
	if len(stmts) == 0 {
		return false
	}
	switch last := stmts[len(stmts)-1].(type) {
	case *ast.IfThenElse:
		return last.Else == nil
	case *ast.WhileExpr:
		return true
	default:
		return false
	}
}

func appendSyntheticUnit(stmts []ast.Expr, loc token.Location) []ast.Expr {
	return append(stmts, ast.NewIdentifier(loc, "Unit"))
}
