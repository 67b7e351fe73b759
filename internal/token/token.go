// Package token defines the lexical tokens of forkvm source files.
package token

import "fmt"

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	Ident     // v
	IntLit    // 42
	StringLit // "test.in"

	KwInt        // int
	KwBool       // bool
	KwString     // string
	KwRef        // ref
	KwTrue       // true
	KwFalse      // false
	KwIf         // if
	KwElse       // else
	KwWhile      // while
	KwPrint      // print
	KwNew        // new
	KwWH         // wH
	KwRH         // rH
	KwOpenRFile  // openRFile
	KwReadFile   // readFile
	KwCloseRFile // closeRFile
	KwFork       // fork
	KwNop        // nop

	Plus      // +
	Minus     // -
	Star      // *
	Slash     // /
	Assign    // =
	EqEq      // ==
	Bang      // !
	BangEq    // !=
	Lt        // <
	LtEq      // <=
	Gt        // >
	GtEq      // >=
	AndAnd    // &&
	OrOr      // ||
	Semicolon // ;
	Comma     // ,
	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
)

var kindNames = map[Kind]string{
	Invalid: "invalid", EOF: "end of file",
	Ident: "identifier", IntLit: "integer literal", StringLit: "string literal",
	Plus: "'+'", Minus: "'-'", Star: "'*'", Slash: "'/'", Assign: "'='",
	EqEq: "'=='", Bang: "'!'", BangEq: "'!='", Lt: "'<'", LtEq: "'<='",
	Gt: "'>'", GtEq: "'>='", AndAnd: "'&&'", OrOr: "'||'",
	Semicolon: "';'", Comma: "','", LParen: "'('", RParen: "')'",
	LBrace: "'{'", RBrace: "'}'",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	for text, kw := range keywords {
		if kw == k {
			return "'" + text + "'"
		}
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Pos is a 1-based line and column in a source file.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// Token represents a single source token.
type Token struct {
	Kind Kind
	Text string
	Pos  Pos
}

// IsType reports whether the token starts a type.
func (t Token) IsType() bool {
	switch t.Kind {
	case KwInt, KwBool, KwString, KwRef:
		return true
	default:
		return false
	}
}
