package parser

import (
	"forkvm/internal/diag"
	"forkvm/internal/token"
)

// advance — съедает следующий токен и обновляет lastPos
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF && tok.Kind != token.Invalid {
		p.lastPos = tok.Pos
	}
	return tok
}

// diagPos — лучшая позиция для диагностики: на EOF указываем на последний токен.
func (p *Parser) diagPos() token.Pos {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF && p.lastPos.Line > 0 {
		return p.lastPos
	}
	return peek.Pos
}

// expect — ожидаем конкретный токен. Если нет — репортим и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	pos := p.diagPos()
	p.report(code, diag.SevError, pos, msg+", got "+describe(p.lx.Peek()))
	return token.Token{Kind: token.Invalid, Pos: pos, Text: p.lx.Peek().Text}, false
}

// репортует ошибку и передает текущую позицию
func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.diagPos(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, pos token.Pos, msg string) bool {
	full := p.opts.Enough()
	if sev == diag.SevError {
		p.opts.CurrentErrors++
	}
	if p.opts.Reporter == nil || full {
		return false // нет reporter или достигли лимита
	}
	p.opts.Reporter.Report(diag.Diagnostic{Severity: sev, Code: code, Pos: pos, Message: msg})
	return true
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.Ident, token.IntLit:
		return tok.Kind.String() + " \"" + tok.Text + "\""
	}
	return tok.Kind.String()
}

// parseIdent — утилита: ожидает Ident. На ошибке — репорт SynExpectIdent.
func (p *Parser) parseIdent() (string, bool) {
	tok, ok := p.expect(token.Ident, diag.SynExpectIdent, "expected identifier")
	return tok.Text, ok
}
