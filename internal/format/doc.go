// Package format pretty-prints forkvm programs: one statement per line,
// blocks indented.
//
// Назначение: `forkvm fmt` и проверка round-trip.
// Не делает: сохранения комментариев (лексер их отбрасывает).
// Зависимости: internal/ast, internal/parser.
package format
