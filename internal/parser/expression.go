package parser

import (
	"strconv"

	"forkvm/internal/ast"
	"forkvm/internal/diag"
	"forkvm/internal/token"
)

var compareOps = map[token.Kind]ast.CompareOp{
	token.Lt:     ast.OpLt,
	token.LtEq:   ast.OpLe,
	token.EqEq:   ast.OpEq,
	token.BangEq: ast.OpNe,
	token.Gt:     ast.OpGt,
	token.GtEq:   ast.OpGe,
}

// parseExpr — вход в разбор выражений, уровень ||.
func (p *Parser) parseExpr() (ast.Expr, bool) {
	lhs, ok := p.parseAnd()
	for ok && p.at(token.OrOr) {
		p.advance()
		var rhs ast.Expr
		if rhs, ok = p.parseAnd(); ok {
			lhs = ast.Or(lhs, rhs)
		}
	}
	return lhs, ok
}

func (p *Parser) parseAnd() (ast.Expr, bool) {
	lhs, ok := p.parseNot()
	for ok && p.at(token.AndAnd) {
		p.advance()
		var rhs ast.Expr
		if rhs, ok = p.parseNot(); ok {
			lhs = ast.And(lhs, rhs)
		}
	}
	return lhs, ok
}

func (p *Parser) parseNot() (ast.Expr, bool) {
	if p.at(token.Bang) {
		p.advance()
		x, ok := p.parseNot()
		if !ok {
			return nil, false
		}
		return ast.Not(x), true
	}
	return p.parseCompare()
}

// сравнения не цепляются: a < b < c — ошибка
func (p *Parser) parseCompare() (ast.Expr, bool) {
	lhs, ok := p.parseAdd()
	if !ok {
		return nil, false
	}
	op, isCmp := compareOps[p.lx.Peek().Kind]
	if !isCmp {
		return lhs, true
	}
	p.advance()
	rhs, ok := p.parseAdd()
	if !ok {
		return nil, false
	}
	if _, chained := compareOps[p.lx.Peek().Kind]; chained {
		p.err(diag.SynUnexpectedToken, "comparisons cannot be chained; use parentheses")
		return nil, false
	}
	return ast.Cmp(op, lhs, rhs), true
}

func (p *Parser) parseAdd() (ast.Expr, bool) {
	lhs, ok := p.parseMul()
	for ok && p.atAny(token.Plus, token.Minus) {
		op := ast.OpAdd
		if p.advance().Kind == token.Minus {
			op = ast.OpSub
		}
		var rhs ast.Expr
		if rhs, ok = p.parseMul(); ok {
			lhs = ast.Bin(op, lhs, rhs)
		}
	}
	return lhs, ok
}

func (p *Parser) parseMul() (ast.Expr, bool) {
	lhs, ok := p.parseUnary()
	for ok && p.atAny(token.Star, token.Slash) {
		op := ast.OpMul
		if p.advance().Kind == token.Slash {
			op = ast.OpDiv
		}
		var rhs ast.Expr
		if rhs, ok = p.parseUnary(); ok {
			lhs = ast.Bin(op, lhs, rhs)
		}
	}
	return lhs, ok
}

// parseUnary: "-" перед целым литералом сворачивается в отрицательный литерал,
// иначе -x становится 0 - x.
func (p *Parser) parseUnary() (ast.Expr, bool) {
	if !p.at(token.Minus) {
		return p.parsePrimary()
	}
	minus := p.advance()
	if p.at(token.IntLit) {
		tok := p.advance()
		n, err := strconv.ParseInt("-"+tok.Text, 10, 64)
		if err != nil {
			p.report(diag.LexBadNumber, diag.SevError, minus.Pos, "integer literal out of range: -"+tok.Text)
			return nil, false
		}
		return ast.Int(n), true
	}
	x, ok := p.parseUnary()
	if !ok {
		return nil, false
	}
	return ast.Bin(ast.OpSub, ast.Int(0), x), true
}

func (p *Parser) parsePrimary() (ast.Expr, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.IntLit:
		p.advance()
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			p.report(diag.LexBadNumber, diag.SevError, tok.Pos, "integer literal out of range: "+tok.Text)
			return nil, false
		}
		return ast.Int(n), true
	case token.KwTrue, token.KwFalse:
		p.advance()
		return ast.Bool(tok.Kind == token.KwTrue), true
	case token.StringLit:
		p.advance()
		return ast.Str(tok.Text), true
	case token.Ident:
		p.advance()
		return ast.Var(tok.Text), true
	case token.KwRH:
		p.advance()
		inner, ok := p.parseParenExpr()
		if !ok {
			return nil, false
		}
		return ast.RH(inner), true
	case token.LParen:
		return p.parseParenExpr()
	case token.Invalid:
		p.advance()
		return nil, false
	}
	p.err(diag.SynUnexpectedToken, "expected an expression, got "+describe(tok))
	return nil, false
}

// parseParenExpr разбирает `( expr )`.
func (p *Parser) parseParenExpr() (ast.Expr, bool) {
	open, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('")
	if !ok {
		return nil, false
	}
	e, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	if !p.at(token.RParen) {
		p.report(diag.SynUnclosedParen, diag.SevError, p.diagPos(),
			"expected ')' to close '(' at "+open.Pos.String()+", got "+describe(p.lx.Peek()))
		return nil, false
	}
	p.advance()
	return e, true
}

// parseArgs разбирает `( e1, ..., en )` ровно из n выражений.
func (p *Parser) parseArgs(n int) ([]ast.Expr, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('"); !ok {
		return nil, false
	}
	args := make([]ast.Expr, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			if _, ok := p.expect(token.Comma, diag.SynUnexpectedToken, "expected ','"); !ok {
				return nil, false
			}
		}
		e, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		args = append(args, e)
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
		return nil, false
	}
	return args, true
}
