package parser

import (
	"forkvm/internal/ast"
	"forkvm/internal/diag"
	"forkvm/internal/token"
	"forkvm/internal/types"
)

// parseStmt выбирает по первому токену нужный распознаватель.
func (p *Parser) parseStmt() (ast.Stmt, bool) {
	tok := p.lx.Peek()
	if tok.IsType() {
		return p.parseVarDecl()
	}
	switch tok.Kind {
	case token.Ident:
		return p.parseAssign()
	case token.KwPrint:
		p.advance()
		e, ok := p.parseParenExpr()
		if !ok || !p.semi() {
			return nil, false
		}
		return &ast.Print{Value: e}, true
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwNew:
		return p.parseHeapNew()
	case token.KwWH:
		p.advance()
		args, ok := p.parseArgs(2)
		if !ok || !p.semi() {
			return nil, false
		}
		return &ast.HeapWrite{Addr: args[0], Value: args[1]}, true
	case token.KwOpenRFile, token.KwCloseRFile:
		p.advance()
		e, ok := p.parseParenExpr()
		if !ok || !p.semi() {
			return nil, false
		}
		if tok.Kind == token.KwOpenRFile {
			return &ast.OpenFile{Name: e}, true
		}
		return &ast.CloseFile{Name: e}, true
	case token.KwReadFile:
		return p.parseReadFile()
	case token.KwFork:
		p.advance()
		body, ok := p.parseBlock()
		if !ok {
			return nil, false
		}
		return &ast.Fork{Body: body}, true
	case token.KwNop:
		p.advance()
		if !p.semi() {
			return nil, false
		}
		return &ast.Nop{}, true
	case token.LBrace:
		return p.parseBlock()
	case token.Invalid:
		// lexer already reported it
		p.advance()
		return nil, false
	}
	p.err(diag.SynUnexpectedToken, "expected a statement, got "+describe(tok))
	return nil, false
}

func (p *Parser) semi() bool {
	_, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';'")
	return ok
}

func (p *Parser) parseVarDecl() (ast.Stmt, bool) {
	typ, ok := p.parseType()
	if !ok {
		return nil, false
	}
	name, ok := p.parseIdent()
	if !ok || !p.semi() {
		return nil, false
	}
	return &ast.VarDecl{Name: name, Type: typ}, true
}

// parseType разбирает `int | bool | string | ref T`.
func (p *Parser) parseType() (types.Type, bool) {
	switch p.lx.Peek().Kind {
	case token.KwInt:
		p.advance()
		return types.Int(), true
	case token.KwBool:
		p.advance()
		return types.Bool(), true
	case token.KwString:
		p.advance()
		return types.Str(), true
	case token.KwRef:
		p.advance()
		inner, ok := p.parseType()
		if !ok {
			return types.Type{}, false
		}
		return types.Ref(inner), true
	}
	p.err(diag.SynExpectType, "expected a type, got "+describe(p.lx.Peek()))
	return types.Type{}, false
}

func (p *Parser) parseAssign() (ast.Stmt, bool) {
	name, _ := p.parseIdent()
	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '='"); !ok {
		return nil, false
	}
	e, ok := p.parseExpr()
	if !ok || !p.semi() {
		return nil, false
	}
	return &ast.Assign{Name: name, Value: e}, true
}

func (p *Parser) parseIf() (ast.Stmt, bool) {
	p.advance()
	cond, ok := p.parseParenExpr()
	if !ok {
		return nil, false
	}
	then, ok := p.parseBlock()
	if !ok {
		return nil, false
	}
	var els ast.Stmt = &ast.Nop{}
	if p.at(token.KwElse) {
		p.advance()
		if els, ok = p.parseBlock(); !ok {
			return nil, false
		}
	}
	return &ast.If{Cond: cond, Then: then, Else: els}, true
}

func (p *Parser) parseWhile() (ast.Stmt, bool) {
	p.advance()
	cond, ok := p.parseParenExpr()
	if !ok {
		return nil, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return nil, false
	}
	return &ast.While{Cond: cond, Body: body}, true
}

// new(a, e);
func (p *Parser) parseHeapNew() (ast.Stmt, bool) {
	p.advance()
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after new"); !ok {
		return nil, false
	}
	name, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.Comma, diag.SynUnexpectedToken, "expected ','"); !ok {
		return nil, false
	}
	e, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
		return nil, false
	}
	if !p.semi() {
		return nil, false
	}
	return &ast.HeapNew{Name: name, Value: e}, true
}

// readFile(e, v);
func (p *Parser) parseReadFile() (ast.Stmt, bool) {
	p.advance()
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after readFile"); !ok {
		return nil, false
	}
	name, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.Comma, diag.SynUnexpectedToken, "expected ','"); !ok {
		return nil, false
	}
	target, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
		return nil, false
	}
	if !p.semi() {
		return nil, false
	}
	return &ast.ReadFile{Name: name, Target: target}, true
}

// parseBlock разбирает `{ stmt* }` в правоассоциативный Seq.
func (p *Parser) parseBlock() (ast.Stmt, bool) {
	open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'")
	if !ok {
		return nil, false
	}
	// ошибки внутри блока уже посчитаны, закрытый блок отдаём как есть
	var stmts []ast.Stmt
	for !p.atAny(token.RBrace, token.EOF) {
		stmt, ok := p.parseStmt()
		if !ok {
			p.resync()
			continue
		}
		stmts = append(stmts, stmt)
	}
	if !p.at(token.RBrace) {
		p.report(diag.SynUnclosedBrace, diag.SevError, open.Pos, "block opened here is never closed")
		return nil, false
	}
	p.advance()
	return ast.Block(stmts...), true
}
