// Package sourcemap maps bytecode instruction offsets back to the
// source text span that produced them, for runtime and assembly
// diagnostics. It never participates in program semantics; only the
// diagnostic path queries it.
package sourcemap

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/tinyvm/stackvm/pkg/rbtree"
)

// TextPosition is a zero-based line, column, and byte offset into the
// source text. Diagnostics print line and column as one-based.
type TextPosition struct {
	Line   int `cbor:"line"`
	Column int `cbor:"column"`
	Offset int `cbor:"offset"`
}

// Span records the source text consumed while emitting one instruction.
type Span struct {
	InstructionOffset uint64       `cbor:"instruction_offset"`
	Start             TextPosition `cbor:"start"`
	End               TextPosition `cbor:"end"`
}

// Map is the ordered mapping from instruction offset to Span, backed by
// the same red-black tree index the typed heap uses for address
// resolution.
type Map struct {
	index *rbtree.Tree[Span]

	// pending holds the state between a Begin and its matching End.
	pendingOffset uint64
	pendingStart  TextPosition
	open          bool
}

// New creates an empty source map.
func New() *Map {
	return &Map{index: &rbtree.Tree[Span]{}}
}

// Begin records the start of an instruction at the given bytecode
// offset and source position. It must be paired with a call to End
// before the next Begin.
func (m *Map) Begin(offset uint64, pos TextPosition) {
	m.pendingOffset = offset
	m.pendingStart = pos
	m.open = true
}

// End closes the span opened by the most recent Begin, inserting it into
// the index.
func (m *Map) End(pos TextPosition) {
	if !m.open {
		return
	}
	m.index.Insert(m.pendingOffset, Span{
		InstructionOffset: m.pendingOffset,
		Start:             m.pendingStart,
		End:               pos,
	})
	m.open = false
}

// Find returns the span for the instruction whose offset is the
// greatest value <= offset — the instruction currently executing by the
// time a fault is raised, since the cursor has already advanced past
// it.
func (m *Map) Find(offset uint64) (Span, bool) {
	_, span, ok := m.index.ClosestSmaller(offset)
	return span, ok
}

// Len returns the number of recorded spans.
func (m *Map) Len() int {
	return m.index.Len()
}

// Each visits every span in ascending instruction-offset order.
func (m *Map) Each(fn func(Span) bool) {
	m.index.Each(func(_ uint64, s Span) bool { return fn(s) })
}

// Move transfers ownership of the underlying index to a fresh Map,
// emptying the receiver. Used when handing a parser's source map to a
// VM, or to an encoder, without a full copy.
func (m *Map) Move() *Map {
	return &Map{index: m.index.Move()}
}

// EncodeCBOR serializes every span to CBOR, for the CLI's
// -emit-sourcemap sidecar file.
func (m *Map) EncodeCBOR() ([]byte, error) {
	spans := make([]Span, 0, m.Len())
	m.Each(func(s Span) bool {
		spans = append(spans, s)
		return true
	})
	b, err := cbor.Marshal(spans)
	if err != nil {
		return nil, fmt.Errorf("sourcemap: encode cbor: %w", err)
	}
	return b, nil
}

// DecodeCBOR rebuilds a Map from bytes produced by EncodeCBOR.
func DecodeCBOR(data []byte) (*Map, error) {
	var spans []Span
	if err := cbor.Unmarshal(data, &spans); err != nil {
		return nil, fmt.Errorf("sourcemap: decode cbor: %w", err)
	}
	m := New()
	for _, s := range spans {
		m.index.Insert(s.InstructionOffset, s)
	}
	return m, nil
}
