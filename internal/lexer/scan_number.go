package lexer

import (
	"multrait/internal/diag"
	"multrait/internal/token"
)

// Числа в запросах — только размерности vec/mat, поэтому поддерживаем
// десятичные целые: [0-9][0-9_]*. Дробная часть и экспонента в грамматике
// не существуют — встретив их, репортим и возвращаем Invalid, съев весь хвост,
// чтобы парсер не спотыкался о половину числа.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()

	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}

	// "1.5", "1e3" — не размерность
	if b := lx.cursor.Peek(); b == '.' || b == 'e' || b == 'E' {
		lx.cursor.Bump()
		if lx.cursor.Peek() == '+' || lx.cursor.Peek() == '-' {
			lx.cursor.Bump()
		}
		for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' || lx.cursor.Peek() == '.' {
			lx.cursor.Bump()
		}
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexBadNumber, sp, "dimensions must be decimal integers")
		return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}

	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.IntLit, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
