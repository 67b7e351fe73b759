package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Лексические
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadNumber          Code = 1003
	LexBadEscape          Code = 1004

	// Парсерные
	SynUnexpectedToken Code = 2001
	SynExpectSemicolon Code = 2002
	SynExpectType      Code = 2003
	SynExpectIdent     Code = 2004
	SynUnclosedBrace   Code = 2005
	SynUnclosedParen   Code = 2006

	// Type checker
	TypeMismatch         Code = 3001
	TypeUndefinedVar     Code = 3002
	TypeDuplicateDecl    Code = 3003
	TypeNotBoolCondition Code = 3004
	TypeNotReference     Code = 3005
	TypeNotInt           Code = 3006
	TypeNotBool          Code = 3007
	TypeNotString        Code = 3008
	TypeMalformed        Code = 3009

	// IO
	IOLoadFileError Code = 4001
)

var codeDescription = map[Code]string{
	UnknownCode:           "Unknown error",
	LexUnknownChar:        "Unknown character",
	LexUnterminatedString: "Unterminated string",
	LexBadNumber:          "Malformed number",
	LexBadEscape:          "Invalid escape sequence",
	SynUnexpectedToken:    "Unexpected token",
	SynExpectSemicolon:    "Expected ';'",
	SynExpectType:         "Expected a type",
	SynExpectIdent:        "Expected an identifier",
	SynUnclosedBrace:      "Unclosed brace",
	SynUnclosedParen:      "Unclosed parenthesis",
	TypeMismatch:          "Type mismatch",
	TypeUndefinedVar:      "Undefined variable",
	TypeDuplicateDecl:     "Duplicate declaration",
	TypeNotBoolCondition:  "Condition is not bool",
	TypeNotReference:      "Expected a reference",
	TypeNotInt:            "Expected int operands",
	TypeNotBool:           "Expected bool operands",
	TypeNotString:         "Expected a string",
	TypeMalformed:         "Incomplete syntax tree",
	IOLoadFileError:       "I/O error",
}

// ID returns the stable identifier of the code, e.g. TC3001.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("TC%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
