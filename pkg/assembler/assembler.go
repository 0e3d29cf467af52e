// Package assembler implements the textual-to-bytecode assembler (C4):
// a hand-written character-level lexer, a two-pass label-backpatching
// emitter, and the source map populated alongside it.
package assembler

import (
	"strings"

	"github.com/tinyvm/stackvm/pkg/bytecode"
	"github.com/tinyvm/stackvm/pkg/sourcemap"
	"github.com/tinyvm/stackvm/pkg/vmerr"
)

type labelPatch struct {
	name   string
	pos    int
	refPos sourcemap.TextPosition
}

// Assembler holds the state of one assembly run: the token stream, the
// in-progress writer and source map, and — once assembly fails — the
// error, its position, and the offending source line, mirroring the
// foreign boundary's three accessors (Err, Position, CurrentLine) so
// the CLI can report a diagnostic without re-deriving any of it.
type Assembler struct {
	src    []byte
	tokens []Token
	idx    int

	writer *bytecode.Writer
	sm     *sourcemap.Map
	labels map[string]uint64
	patches []labelPatch

	err    error
	errPos sourcemap.TextPosition
}

// New tokenizes source and prepares an Assembler. Tokenizing eagerly
// means pass 2 never re-lexes: pass 1 walks the token slice, and pass 2
// works only from the label patches pass 1 recorded.
func New(source []byte) *Assembler {
	a := &Assembler{
		src:    source,
		writer: bytecode.NewWriter(),
		sm:     sourcemap.New(),
		labels: make(map[string]uint64),
	}
	lx := newLexer(source)
	for {
		tok, err := lx.next()
		if err != nil {
			a.fail(err, tok.Start)
			break
		}
		a.tokens = append(a.tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}
	return a
}

// Err returns the error that aborted assembly, or nil if assembly has
// not failed. A lexing error found by New is reported here before
// Assemble is called.
func (a *Assembler) Err() error { return a.err }

// Position returns the source position of the error returned by Err.
func (a *Assembler) Position() sourcemap.TextPosition { return a.errPos }

// CurrentLine returns the full text of the source line Position points
// into, for diagnostic printing.
func (a *Assembler) CurrentLine() string {
	lines := strings.Split(string(a.src), "\n")
	if a.errPos.Line < 0 || a.errPos.Line >= len(lines) {
		return ""
	}
	return lines[a.errPos.Line]
}

func (a *Assembler) fail(err error, pos sourcemap.TextPosition) {
	if a.err == nil {
		a.err = err
		a.errPos = pos
	}
}

func (a *Assembler) peek() Token {
	if a.idx >= len(a.tokens) {
		return Token{Kind: TokEOF}
	}
	return a.tokens[a.idx]
}

func (a *Assembler) peekAt(n int) Token {
	if a.idx+n >= len(a.tokens) {
		return Token{Kind: TokEOF}
	}
	return a.tokens[a.idx+n]
}

func (a *Assembler) advance() Token {
	t := a.peek()
	if a.idx < len(a.tokens) {
		a.idx++
	}
	return t
}

// Assemble runs both passes and returns the finished bytecode reader
// and source map. On failure it returns the sentinel error; Err,
// Position, and CurrentLine describe it in detail.
func (a *Assembler) Assemble() (*bytecode.Reader, *sourcemap.Map, error) {
	if a.err != nil {
		return nil, nil, a.err
	}
	a.pass1()
	if a.err != nil {
		return nil, nil, a.err
	}
	a.pass2()
	if a.err != nil {
		return nil, nil, a.err
	}
	return a.writer.IntoReader(), a.sm.Move(), nil
}

func (a *Assembler) pass1() {
	for {
		tok := a.peek()
		if tok.Kind == TokEOF {
			return
		}
		if tok.Kind != TokIdentifier {
			a.fail(&vmerr.NoMatch{Context: "expected a label definition or a mnemonic"}, tok.Start)
			return
		}

		if a.peekAt(1).Kind == TokColon {
			a.labels[tok.Text] = uint64(a.writer.Len())
			a.advance()
			a.advance()
			continue
		}

		a.emitInstruction()
		if a.err != nil {
			return
		}
	}
}

func (a *Assembler) emitInstruction() {
	tok := a.advance()
	mnemonic := strings.ToLower(tok.Text)
	op, ok := bytecode.Lookup(mnemonic)
	if !ok {
		a.fail(&vmerr.NoMatch{Context: "unknown mnemonic " + tok.Text}, tok.Start)
		return
	}

	a.sm.Begin(uint64(a.writer.Len()), tok.Start)
	a.writer.WriteInstruction(op)
	end := tok.End

	switch op.Shape() {
	case bytecode.ShapeNone:
		// no operand

	case bytecode.ShapeI32:
		operand := a.advance()
		if operand.Kind != TokInteger {
			a.fail(&vmerr.NoMatch{Context: mnemonic + ": expected an integer immediate"}, operand.Start)
			return
		}
		a.writer.WriteI32(int32(operand.Int))
		end = operand.End

	case bytecode.ShapeF64:
		operand := a.advance()
		var f float64
		switch operand.Kind {
		case TokFloat:
			f = operand.Float
		case TokInteger:
			f = float64(operand.Int)
		default:
			a.fail(&vmerr.NoMatch{Context: mnemonic + ": expected a float immediate"}, operand.Start)
			return
		}
		a.writer.WriteF64(f)
		end = operand.End

	case bytecode.ShapeAddress:
		operand := a.advance()
		switch operand.Kind {
		case TokInteger:
			a.writer.WriteUsize(uint64(operand.Int))
		case TokIdentifier:
			pos := a.writer.Len()
			a.writer.WriteUsize(0)
			a.patches = append(a.patches, labelPatch{name: operand.Text, pos: pos, refPos: operand.Start})
		default:
			a.fail(&vmerr.NoMatch{Context: mnemonic + ": expected an address or a label"}, operand.Start)
			return
		}
		end = operand.End

	case bytecode.ShapeString:
		operand := a.advance()
		if operand.Kind != TokString {
			a.fail(&vmerr.NoMatch{Context: mnemonic + ": expected a string literal"}, operand.Start)
			return
		}
		a.writer.WriteString([]byte(operand.Text))
		end = operand.End
	}

	a.sm.End(end)
}

func (a *Assembler) pass2() {
	for _, p := range a.patches {
		addr, ok := a.labels[p.name]
		if !ok {
			a.fail(&vmerr.MissingLabel{Name: p.name}, p.refPos)
			return
		}
		a.writer.Seek(p.pos)
		a.writer.WriteUsize(addr)
	}
	a.writer.SeekEnd()
}
