package token

import (
	"multrait/internal/source"
)

// Token represents a single query token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsQualifier reports whether the token is a type qualifier keyword.
func (t Token) IsQualifier() bool {
	switch t.Kind {
	case KwConst, KwVolatile:
		return true
	default:
		return false
	}
}

// IsPunctOrOp reports whether the token is a punctuation or operator.
func (t Token) IsPunctOrOp() bool {
	switch t.Kind {
	case Star, Amp, Lt, Gt, Comma, Semicolon:
		return true
	default:
		return false
	}
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }
