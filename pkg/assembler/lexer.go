package assembler

import (
	"strconv"

	"github.com/tinyvm/stackvm/pkg/sourcemap"
	"github.com/tinyvm/stackvm/pkg/vmerr"
)

// lexer turns source bytes into tokens on demand. Positions are
// zero-based internally; the CLI adds one before printing.
type lexer struct {
	src    []byte
	offset int
	line   int
	col    int
}

func newLexer(src []byte) *lexer {
	return &lexer{src: src}
}

func (l *lexer) pos() sourcemap.TextPosition {
	return sourcemap.TextPosition{Line: l.line, Column: l.col, Offset: l.offset}
}

func (l *lexer) atEOF() bool {
	return l.offset >= len(l.src)
}

func (l *lexer) peek() byte {
	if l.atEOF() {
		return 0
	}
	return l.src[l.offset]
}

func (l *lexer) peekAt(n int) byte {
	if l.offset+n >= len(l.src) {
		return 0
	}
	return l.src[l.offset+n]
}

func (l *lexer) advance() byte {
	b := l.src[l.offset]
	l.offset++
	if b == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return b
}

func (l *lexer) skipWhitespaceAndComments() {
	for !l.atEOF() {
		switch c := l.peek(); {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '/':
			// A single slash opens a line comment; there is no division
			// opcode to collide with, so the ambiguity is benign.
			for !l.atEOF() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// next returns the next token, or a TokEOF token once the source is
// exhausted.
func (l *lexer) next() (Token, error) {
	l.skipWhitespaceAndComments()
	start := l.pos()

	if l.atEOF() {
		return Token{Kind: TokEOF, Start: start, End: start}, nil
	}

	c := l.peek()
	switch {
	case c == ':':
		l.advance()
		return Token{Kind: TokColon, Start: start, End: l.pos()}, nil
	case c == '"' || c == '\'':
		return l.readString(start, c)
	case isDigit(c) || ((c == '+' || c == '-') && isDigit(l.peekAt(1))):
		return l.readNumber(start)
	case isIdentStart(c):
		return l.readIdentifier(start)
	default:
		l.advance()
		return Token{Start: start}, &vmerr.NoMatch{Context: "unexpected character " + strconv.QuoteRune(rune(c))}
	}
}

func (l *lexer) readIdentifier(start sourcemap.TextPosition) (Token, error) {
	from := l.offset
	for !l.atEOF() && isIdentCont(l.peek()) {
		l.advance()
	}
	return Token{Kind: TokIdentifier, Text: string(l.src[from:l.offset]), Start: start, End: l.pos()}, nil
}

func (l *lexer) readNumber(start sourcemap.TextPosition) (Token, error) {
	from := l.offset
	if l.peek() == '+' || l.peek() == '-' {
		l.advance()
	}
	for !l.atEOF() && isDigit(l.peek()) {
		l.advance()
	}

	isFloat := false
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		isFloat = true
		l.advance() // '.'
		for !l.atEOF() && isDigit(l.peek()) {
			l.advance()
		}
	}

	literal := string(l.src[from:l.offset])
	if isFloat {
		f, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return Token{Start: start}, &vmerr.InvalidNumber{Literal: literal}
		}
		return Token{Kind: TokFloat, Text: literal, Float: f, Start: start, End: l.pos()}, nil
	}
	i, err := strconv.ParseInt(literal, 10, 64)
	if err != nil {
		return Token{Start: start}, &vmerr.InvalidNumber{Literal: literal}
	}
	return Token{Kind: TokInteger, Text: literal, Int: i, Start: start, End: l.pos()}, nil
}

func (l *lexer) readString(start sourcemap.TextPosition, quote byte) (Token, error) {
	l.advance() // opening quote
	var out []byte
	for {
		if l.atEOF() {
			return Token{Start: start}, &vmerr.NoMatch{Context: "unterminated string literal"}
		}
		c := l.peek()
		if c == quote {
			l.advance()
			break
		}
		if c == '\\' {
			l.advance()
			if l.atEOF() {
				return Token{Start: start}, &vmerr.InvalidEscape{Escape: "\\"}
			}
			esc := l.advance()
			switch esc {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			default:
				out = append(out, esc)
			}
			continue
		}
		out = append(out, c)
		l.advance()
	}
	return Token{Kind: TokString, Text: string(out), Start: start, End: l.pos()}, nil
}
