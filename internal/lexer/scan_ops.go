package lexer

import (
	"multrait/internal/diag"
	"multrait/internal/token"
)

// Грамматика запросов обходится односимвольными операторами,
// жадные 2-3-байтовые матчи не нужны.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	emit := func(k token.Kind) token.Token {
		sp := lx.cursor.SpanFrom(start)
		return token.Token{
			Kind: k,
			Span: sp,
			Text: string(lx.file.Content[sp.Start:sp.End]),
		}
	}

	ch := lx.cursor.Bump()
	switch ch {
	case '*':
		return emit(token.Star)
	case '&':
		return emit(token.Amp)
	case '<':
		return emit(token.Lt)
	case '>':
		return emit(token.Gt)
	case ',':
		return emit(token.Comma)
	case ';':
		return emit(token.Semicolon)
	default:
		// неизвестный символ
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnknownChar, sp, "unknown character")
		return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}
}
