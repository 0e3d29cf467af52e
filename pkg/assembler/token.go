package assembler

import "github.com/tinyvm/stackvm/pkg/sourcemap"

// TokenKind classifies one lexical token.
type TokenKind uint8

const (
	TokEOF TokenKind = iota
	TokIdentifier
	TokColon
	TokInteger
	TokFloat
	TokString
)

// Token is one lexical unit plus the source span it occupies, carried
// through both assembly passes so pass 2 never needs to re-lex.
type Token struct {
	Kind   TokenKind
	Text   string // raw spelling for Identifier; decoded content for String
	Int    int64
	Float  float64
	Start  sourcemap.TextPosition
	End    sourcemap.TextPosition
}
