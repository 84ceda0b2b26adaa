package token

// Kind represents the category of a query token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the query input.
	EOF

	// Ident represents an identifier token (type names, extern names).
	Ident
	// KwConst represents the 'const' qualifier keyword.
	KwConst // const
	// KwVolatile represents the 'volatile' qualifier keyword.
	KwVolatile // volatile

	// IntLit represents an integer literal token (vector/matrix dimensions).
	IntLit

	// Star represents the multiplication operator token.
	Star // *
	// Amp represents the reference marker token.
	Amp // &
	// Lt represents the opening angle bracket token.
	Lt // <
	// Gt represents the closing angle bracket token.
	Gt // >
	// Comma represents the comma token.
	Comma // ,
	// Semicolon represents the query terminator token.
	Semicolon // ;
)

// String returns a human-readable name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid token"
	case EOF:
		return "end of input"
	case Ident:
		return "identifier"
	case KwConst:
		return "'const'"
	case KwVolatile:
		return "'volatile'"
	case IntLit:
		return "integer literal"
	case Star:
		return "'*'"
	case Amp:
		return "'&'"
	case Lt:
		return "'<'"
	case Gt:
		return "'>'"
	case Comma:
		return "','"
	case Semicolon:
		return "';'"
	default:
		return "unknown token"
	}
}
