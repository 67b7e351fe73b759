// Package lexer turns forkvm source text into tokens.
package lexer

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"forkvm/internal/diag"
	"forkvm/internal/token"
)

type Lexer struct {
	src  []byte
	off  int
	line int
	col  int
	rep  diag.Reporter
	look *token.Token // 1 элементный буфер для токена
}

func New(src []byte, rep diag.Reporter) *Lexer {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	return &Lexer{src: src, line: 1, col: 1, rep: rep}
}

// Next возвращает следующий значимый токен. После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}
	lx.skipTrivia()
	pos := lx.pos()
	if lx.eof() {
		return token.Token{Kind: token.EOF, Pos: pos}
	}

	ch := lx.peek()
	switch {
	case ch == '_' || isLetter(ch) || ch >= utf8.RuneSelf:
		return lx.scanIdentOrKeyword(pos)
	case ch >= '0' && ch <= '9':
		return lx.scanNumber(pos)
	case ch == '"':
		return lx.scanString(pos)
	default:
		return lx.scanOperatorOrPunct(pos)
	}
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

func (lx *Lexer) pos() token.Pos { return token.Pos{Line: lx.line, Col: lx.col} }
func (lx *Lexer) eof() bool      { return lx.off >= len(lx.src) }
func (lx *Lexer) peek() byte     { return lx.src[lx.off] }

func (lx *Lexer) peekAt(n int) (byte, bool) {
	if lx.off+n >= len(lx.src) {
		return 0, false
	}
	return lx.src[lx.off+n], true
}

func (lx *Lexer) bump() {
	if lx.eof() {
		return
	}
	_, size := utf8.DecodeRune(lx.src[lx.off:])
	if lx.src[lx.off] == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	lx.off += size
}

func (lx *Lexer) skipTrivia() {
	for !lx.eof() {
		ch := lx.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			lx.bump()
		case ch == '/':
			if next, ok := lx.peekAt(1); ok && next == '/' {
				for !lx.eof() && lx.peek() != '\n' {
					lx.bump()
				}
				continue
			}
			return
		default:
			return
		}
	}
}

func (lx *Lexer) scanIdentOrKeyword(pos token.Pos) token.Token {
	start := lx.off
	for !lx.eof() {
		r, _ := utf8.DecodeRune(lx.src[lx.off:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		lx.bump()
	}
	if lx.off == start {
		// lone non-letter rune above ASCII
		lx.bump()
		text := string(lx.src[start:lx.off])
		diag.ReportError(lx.rep, diag.LexUnknownChar, pos, "unknown character "+strconv.Quote(text))
		return token.Token{Kind: token.Invalid, Text: text, Pos: pos}
	}
	text := string(lx.src[start:lx.off])
	if kw, ok := token.LookupKeyword(text); ok {
		return token.Token{Kind: kw, Text: text, Pos: pos}
	}
	return token.Token{Kind: token.Ident, Text: text, Pos: pos}
}

func (lx *Lexer) scanNumber(pos token.Pos) token.Token {
	start := lx.off
	for !lx.eof() && lx.peek() >= '0' && lx.peek() <= '9' {
		lx.bump()
	}
	// 12abc is one bad token rather than a number followed by an identifier
	bad := false
	for !lx.eof() && (isLetter(lx.peek()) || lx.peek() == '_') {
		bad = true
		lx.bump()
	}
	text := string(lx.src[start:lx.off])
	if bad {
		diag.ReportError(lx.rep, diag.LexBadNumber, pos, "malformed number "+strconv.Quote(text))
		return token.Token{Kind: token.Invalid, Text: text, Pos: pos}
	}
	// 9223372036854775808 is only valid after a unary minus; the parser checks the sign
	if n, err := strconv.ParseUint(text, 10, 64); err != nil || n > 1<<63 {
		diag.ReportError(lx.rep, diag.LexBadNumber, pos, "integer literal out of range: "+text)
		return token.Token{Kind: token.Invalid, Text: text, Pos: pos}
	}
	return token.Token{Kind: token.IntLit, Text: text, Pos: pos}
}

// scanString returns the decoded, NFC-normalized contents in Text.
func (lx *Lexer) scanString(pos token.Pos) token.Token {
	start := lx.off
	lx.bump() // opening '"'
	for !lx.eof() {
		b := lx.peek()
		if b == '"' {
			lx.bump()
			raw := string(lx.src[start:lx.off])
			val, err := strconv.Unquote(raw)
			if err != nil {
				diag.ReportError(lx.rep, diag.LexBadEscape, pos, "invalid escape in string literal "+raw)
				return token.Token{Kind: token.Invalid, Text: raw, Pos: pos}
			}
			return token.Token{Kind: token.StringLit, Text: norm.NFC.String(val), Pos: pos}
		}
		if b == '\\' {
			lx.bump()
			if lx.eof() {
				break
			}
			lx.bump()
			continue
		}
		if b == '\n' {
			diag.ReportError(lx.rep, diag.LexUnterminatedString, pos, "newline in string literal")
			return token.Token{Kind: token.Invalid, Text: string(lx.src[start:lx.off]), Pos: pos}
		}
		lx.bump()
	}
	diag.ReportError(lx.rep, diag.LexUnterminatedString, pos, "unterminated string literal")
	return token.Token{Kind: token.Invalid, Text: string(lx.src[start:lx.off]), Pos: pos}
}

func (lx *Lexer) scanOperatorOrPunct(pos token.Pos) token.Token {
	ch := lx.peek()
	next, _ := lx.peekAt(1)
	two := func(k token.Kind, text string) token.Token {
		lx.bump()
		lx.bump()
		return token.Token{Kind: k, Text: text, Pos: pos}
	}
	one := func(k token.Kind) token.Token {
		lx.bump()
		return token.Token{Kind: k, Text: string(ch), Pos: pos}
	}
	switch ch {
	case '=':
		if next == '=' {
			return two(token.EqEq, "==")
		}
		return one(token.Assign)
	case '!':
		if next == '=' {
			return two(token.BangEq, "!=")
		}
		return one(token.Bang)
	case '<':
		if next == '=' {
			return two(token.LtEq, "<=")
		}
		return one(token.Lt)
	case '>':
		if next == '=' {
			return two(token.GtEq, ">=")
		}
		return one(token.Gt)
	case '&':
		if next == '&' {
			return two(token.AndAnd, "&&")
		}
	case '|':
		if next == '|' {
			return two(token.OrOr, "||")
		}
	case '+':
		return one(token.Plus)
	case '-':
		return one(token.Minus)
	case '*':
		return one(token.Star)
	case '/':
		return one(token.Slash)
	case ';':
		return one(token.Semicolon)
	case ',':
		return one(token.Comma)
	case '(':
		return one(token.LParen)
	case ')':
		return one(token.RParen)
	case '{':
		return one(token.LBrace)
	case '}':
		return one(token.RBrace)
	}
	lx.bump()
	diag.ReportError(lx.rep, diag.LexUnknownChar, pos, "unknown character "+strconv.QuoteRune(rune(ch)))
	return token.Token{Kind: token.Invalid, Text: string(ch), Pos: pos}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
