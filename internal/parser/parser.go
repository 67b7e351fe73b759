// Package parser builds ast.Stmt programs from forkvm source text.
package parser

import (
	"fmt"
	"os"
	"slices"

	"forkvm/internal/ast"
	"forkvm/internal/diag"
	"forkvm/internal/lexer"
	"forkvm/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	Program ast.Stmt
	Errors  uint
}

// OK reports whether the program parsed without errors.
func (r Result) OK() bool { return r.Errors == 0 }

// Parser — состояние парсера на один файл
type Parser struct {
	lx      *lexer.Lexer
	opts    Options
	lastPos token.Pos // позиция последнего съеденного токена
}

// ParseSource parses a whole program. The program is a Block of the
// top-level statements; on errors it holds whatever could be recovered.
func ParseSource(src []byte, opts Options) Result {
	p := &Parser{opts: opts}
	p.lx = lexer.New(src, lexReporter{p: p})

	var stmts []ast.Stmt
	for !p.at(token.EOF) {
		if p.at(token.RBrace) {
			p.err(diag.SynUnexpectedToken, "unexpected '}' at top level")
			p.advance()
			continue
		}
		stmt, ok := p.parseStmt()
		if !ok {
			p.resync()
			continue
		}
		stmts = append(stmts, stmt)
	}
	return Result{Program: ast.Block(stmts...), Errors: p.opts.CurrentErrors}
}

// ParseFile reads path and parses it. Read failures are reported as IO diagnostics.
func ParseFile(path string, opts Options) Result {
	src, err := os.ReadFile(path)
	if err != nil {
		if opts.Reporter != nil {
			opts.Reporter.Report(diag.Diagnostic{
				Severity: diag.SevError,
				Code:     diag.IOLoadFileError,
				Message:  fmt.Sprintf("cannot read %s: %v", path, err),
			})
		}
		return Result{Program: &ast.Nop{}, Errors: 1}
	}
	return ParseSource(src, opts)
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atAny(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

// resync — восстановление после ошибки: прокручиваем до ';', '}' или EOF.
// ';' съедается, '}' оставляем блоку.
func (p *Parser) resync() {
	for !p.atAny(token.EOF, token.Semicolon, token.RBrace) {
		p.advance()
	}
	if p.at(token.Semicolon) {
		p.advance()
	}
}

// lexReporter counts lexer errors into the parser's budget.
type lexReporter struct{ p *Parser }

func (r lexReporter) Report(d diag.Diagnostic) {
	r.p.report(d.Code, d.Severity, d.Pos, d.Message)
}
