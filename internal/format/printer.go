package format

import (
	"errors"
	"reflect"

	"forkvm/internal/ast"
	"forkvm/internal/diag"
	"forkvm/internal/parser"
)

type Options struct {
	IndentWidth int
	UseTabs     bool
}

func (o Options) withDefaults() Options {
	if o.IndentWidth <= 0 {
		o.IndentWidth = 4
	}
	return o
}

// ErrParse is returned by Source when the input does not parse.
var ErrParse = errors.New("format: source has syntax errors")

type printer struct {
	w *Writer
}

// FormatProgram renders program in canonical layout.
func FormatProgram(program ast.Stmt, opt Options) []byte {
	p := printer{w: NewWriter(opt)}
	if program != nil {
		p.stmts(program)
	}
	return p.w.Bytes()
}

// Source parses src and formats it. Diagnostics go to r.
func Source(src []byte, opt Options, r diag.Reporter) ([]byte, error) {
	res := parser.ParseSource(src, parser.Options{Reporter: r})
	if !res.OK() {
		return nil, ErrParse
	}
	return FormatProgram(res.Program, opt), nil
}

// stmts flattens a right-nested sequence into consecutive lines.
func (p *printer) stmts(s ast.Stmt) {
	for {
		seq, ok := s.(*ast.Seq)
		if !ok {
			break
		}
		p.stmt(seq.First)
		s = seq.Second
	}
	p.stmt(s)
}

func (p *printer) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.Seq:
		// левая вложенность: печатаем как отдельный блок
		p.block("", s)
	case *ast.If:
		head := "if (" + s.Cond.String() + ") {"
		p.w.Line(head)
		p.body(s.Then)
		if s.Else != nil && s.Else.Kind() != ast.StmtNop {
			p.w.Line("} else {")
			p.body(s.Else)
		}
		p.w.Line("}")
	case *ast.While:
		p.block("while ("+s.Cond.String()+") ", s.Body)
	case *ast.Fork:
		p.block("fork ", s.Body)
	default:
		p.w.Line(s.String())
	}
}

func (p *printer) block(head string, body ast.Stmt) {
	p.w.Line(head + "{")
	p.body(body)
	p.w.Line("}")
}

func (p *printer) body(s ast.Stmt) {
	p.w.Indent()
	p.stmts(s) // пустой блок уже свёрнут парсером в nop
	p.w.Dedent()
}

// CheckRoundTrip formats src and re-parses the result, ensuring the tree
// is unchanged.
func CheckRoundTrip(src []byte, opt Options) (ok bool, msg string) {
	orig := parser.ParseSource(src, parser.Options{})
	if !orig.OK() {
		return false, "fmt-check: initial parse failed"
	}
	formatted := FormatProgram(orig.Program, opt)
	again := parser.ParseSource(formatted, parser.Options{})
	if !again.OK() {
		return false, "fmt-check: reparse failed"
	}
	if !reflect.DeepEqual(orig.Program, again.Program) {
		return false, "fmt-check: tree differs after round-trip"
	}
	return true, "fmt-check: OK"
}
