// Package fuzztests holds Go fuzz harnesses for the forkvm front end
// (lexer -> parser -> sema -> format). They guard against panics and hangs
// on arbitrary input.
//
// Назначение: прогонять произвольные байты через лексер, парсер, проверку
// типов и форматтер.
//
// Не делает: выполнение программ, запись файлов.
package fuzztests
