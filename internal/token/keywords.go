package token

var keywords = map[string]Kind{
	"int":        KwInt,
	"bool":       KwBool,
	"string":     KwString,
	"ref":        KwRef,
	"true":       KwTrue,
	"false":      KwFalse,
	"if":         KwIf,
	"else":       KwElse,
	"while":      KwWhile,
	"print":      KwPrint,
	"new":        KwNew,
	"wH":         KwWH,
	"rH":         KwRH,
	"openRFile":  KwOpenRFile,
	"readFile":   KwReadFile,
	"closeRFile": KwCloseRFile,
	"fork":       KwFork,
	"nop":        KwNop,
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Keywords are case-sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
