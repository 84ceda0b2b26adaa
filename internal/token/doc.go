// Package token defines lexical token kinds and trivia for multiplication
// queries.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly (Start..End).
//   - Comments never appear in the main token stream; they are leading Trivia
//     on the following token.
//   - Built-in type names (i32, f64, complex, vec, mat, ...) are identifiers.
//     They are recognized by the type-expression parser, not the lexer.
package token
