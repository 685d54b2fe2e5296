package parser

import (
	"minic/pkg/ast"
	"minic/pkg/token"
)

// precedenceLevels lists the binary operator levels from loosest to
// tightest (§4.2): or, and, equality, ordering, additive, multiplicative.
// Assignment ('=') sits above this table and is handled separately, in
// parseAssignment; unary 'not'/'-' sit below it, in parseUnary.
var precedenceLevels = [][]string{
	{"or"},
	{"and"},
	{"==", "!="},
	{"<", "<=", ">", ">="},
	{"+", "-"},
	{"*", "/", "%"},
}

// parseStatement parses one statement: a position where a bare 'var'
// declaration is legal (a BlockExpr statement, or a top-level statement).
// Anywhere else, a sub-expression is parsed through exprNoVar instead.
func (p *Parser) parseStatement() (ast.Expr, error) {
	return p.parseAssignment(true)
}

// exprNoVar parses a sub-expression in a position where 'var' is not a
// legal leading token: if/while conditions and branches, call arguments,
// parenthesized expressions, and operands of every binary/unary operator.
func (p *Parser) exprNoVar() (ast.Expr, error) {
	return p.parseAssignment(false)
}

// parseAssignment parses '=' as a right-associative operator sitting above
// the whole precedence table. allowVar permits a bare 'var' declaration as
// this expression's entire content (only true for parseStatement's callers).
func (p *Parser) parseAssignment(allowVar bool) (ast.Expr, error) {
	left, err := p.parseBinary(0, allowVar)
	if err != nil {
		return nil, err
	}
	if p.check("=") {
		p.advance()
		right, err := p.parseAssignment(false)
		if err != nil {
			return nil, err
		}
		return ast.NewBinaryOp(left.Location(), left, "=", right), nil
	}
	return left, nil
}

// parseBinary climbs precedenceLevels left-to-right, left-folding each
// level's repeated operators. allowVar only ever reaches parseBase along
// the untouched leftmost spine: as soon as an operator is consumed, every
// right operand is parsed with allowVar forced false.
func (p *Parser) parseBinary(level int, allowVar bool) (ast.Expr, error) {
	if level == len(precedenceLevels) {
		return p.parseBase(allowVar)
	}

	left, err := p.parseBinary(level+1, allowVar)
	if err != nil {
		return nil, err
	}

	for {
		op, matched := p.matchOneOf(precedenceLevels[level])
		if !matched {
			return left, nil
		}
		right, err := p.parseBinary(level+1, false)
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(left.Location(), left, op, right)
	}
}

func (p *Parser) matchOneOf(ops []string) (string, bool) {
	tok := p.peek()
	for _, op := range ops {
		if tok.Text == op {
			p.advance()
			return op, true
		}
	}
	return "", false
}

// parseBase is the bottom of the precedence table (§4.2): if, while, and
// (when allowVar) var all dispatch here before falling through to unary.
func (p *Parser) parseBase(allowVar bool) (ast.Expr, error) {
	tok := p.peek()
	switch {
	case tok.Kind == token.Identifier && tok.Text == "if":
		return p.parseIf()
	case tok.Kind == token.Identifier && tok.Text == "while":
		return p.parseWhile()
	case tok.Kind == token.Identifier && tok.Text == "var":
		if !allowVar {
			return nil, p.errorAt(tok, "var is not allowed here")
		}
		return p.parseVar()
	default:
		return p.parseUnary()
	}
}

func (p *Parser) parseIf() (ast.Expr, error) {
	ifTok := p.advance()
	cond, err := p.exprNoVar()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("then"); err != nil {
		return nil, err
	}
	then, err := p.exprNoVar()
	if err != nil {
		return nil, err
	}
	var els ast.Expr
	if p.check("else") {
		p.advance()
		els, err = p.exprNoVar()
		if err != nil {
			return nil, err
		}
	}
	return ast.NewIfThenElse(ifTok.Location, cond, then, els), nil
}

func (p *Parser) parseWhile() (ast.Expr, error) {
	whileTok := p.advance()
	cond, err := p.exprNoVar()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("do"); err != nil {
		return nil, err
	}
	body, err := p.exprNoVar()
	if err != nil {
		return nil, err
	}
	return ast.NewWhileExpr(whileTok.Location, cond, body), nil
}

// parseVar parses 'var' identifier (':' type_ann)? '=' assignment. The
// initializer always disallows a nested 'var' (§4.2).
func (p *Parser) parseVar() (ast.Expr, error) {
	varTok := p.advance()
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}

	var typed ast.Expr
	if p.check(":") {
		p.advance()
		typed, err = p.parseTypeAnnotation()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect("="); err != nil {
		return nil, err
	}
	init, err := p.parseAssignment(false)
	if err != nil {
		return nil, err
	}
	return ast.NewVarExpr(varTok.Location, nameTok.Text, init, typed), nil
}

// parseTypeAnnotation parses either a bare identifier naming a type, or a
// function-type form '(' id (',' id)* ')' '=' '>' id -- '=>' is two
// separate operator tokens, not one (§4.1).
func (p *Parser) parseTypeAnnotation() (ast.Expr, error) {
	if p.check("(") {
		loc := p.advance().Location
		params := []ast.Expr{}
		if !p.check(")") {
			for {
				idTok, err := p.expectIdentifier()
				if err != nil {
					return nil, err
				}
				params = append(params, ast.NewIdentifier(idTok.Location, idTok.Text))
				if p.check(",") {
					p.advance()
					continue
				}
				break
			}
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		if _, err := p.expect("="); err != nil {
			return nil, err
		}
		if _, err := p.expect(">"); err != nil {
			return nil, err
		}
		retTok, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		return ast.NewFunctionTypeExpr(loc, params, ast.NewIdentifier(retTok.Location, retTok.Text)), nil
	}

	idTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	return ast.NewIdentifier(idTok.Location, idTok.Text), nil
}

// parseUnary parses 'not'/'-' nesting right-associatively, binding tighter
// than the multiplicative level (§4.2).
func (p *Parser) parseUnary() (ast.Expr, error) {
	tok := p.peek()
	if tok.Text == "not" || tok.Text == "-" {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOp(tok.Location, tok.Text, operand), nil
	}
	return p.parseFactor()
}

// parseFactor parses a parenthesized expression, a block, a literal, or an
// identifier optionally applied to a call's argument list.
func (p *Parser) parseFactor() (ast.Expr, error) {
	tok := p.peek()

	switch {
	case tok.Text == "(":
		p.advance()
		inner, err := p.exprNoVar()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		return inner, nil

	case tok.Text == "{":
		return p.parseBlock()

	case tok.Kind == token.IntLiteral:
		p.advance()
		value, err := parseIntLiteral(tok.Text)
		if err != nil {
			return nil, p.errorAt(tok, err.Error())
		}
		return ast.NewLiteral(tok.Location, value), nil

	case tok.Kind == token.Identifier:
		p.advance()
		id := ast.NewIdentifier(tok.Location, tok.Text)
		if !p.check("(") {
			return id, nil
		}
		p.advance()
		args := []ast.Expr{}
		if !p.check(")") {
			for {
				arg, err := p.exprNoVar()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.check(",") {
					p.advance()
					continue
				}
				break
			}
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		return ast.NewFunctionExpr(tok.Location, id, args), nil

	default:
		return nil, p.errorAt(tok, "unexpected token")
	}
}

// parseBlock parses '{' (stmt (';')?)* '}', enforcing the separator rule
// and applying the block-result Unit-synthesis convention (§4.2).
func (p *Parser) parseBlock() (ast.Expr, error) {
	loc := p.advance().Location // '{'

	stmts := []ast.Expr{}
	trailingSemi := false

	for !p.check("}") {
		trailingSemi = false
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)

		if p.check(";") {
			p.advance()
			trailingSemi = true
			continue
		}

		if isBareIdentifierOrLiteral(stmt) && !p.check("}") {
			return nil, p.errorAt(p.peek(), "consecutive statements require a separator")
		}
	}
	closeLoc := p.peek().Location
	if _, err := p.expect("}"); err != nil {
		return nil, err
	}

	if needsUnitSynthesis(stmts, trailingSemi) {
		stmts = appendSyntheticUnit(stmts, closeLoc)
	}
	return ast.NewBlockExpr(loc, stmts), nil
}

func isBareIdentifierOrLiteral(expr ast.Expr) bool {
	switch expr.(type) {
	case *ast.Identifier, *ast.Literal:
		return true
	default:
		return false
	}
}
