package bytecode

import (
	"encoding/binary"
	"math"

	"github.com/tinyvm/stackvm/pkg/vmerr"
)

// Reader walks a byte slice with a read cursor. The slice may be taken
// over from a Writer (via IntoReader) or supplied by the caller; either
// way Reader never mutates it.
type Reader struct {
	data   []byte
	cursor int
}

// NewReader wraps data for sequential reads starting at offset 0.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the total number of bytes in the underlying buffer.
func (r *Reader) Len() int {
	return len(r.data)
}

// Bytes returns the underlying buffer, for tests and for the CLI's
// -dump-bytecode flag. Callers must not mutate it.
func (r *Reader) Bytes() []byte {
	return r.data
}

// Cursor returns the current read position.
func (r *Reader) Cursor() int {
	return r.cursor
}

// SetCursor moves the read position directly, used by jump/call/return.
func (r *Reader) SetCursor(pos int) {
	r.cursor = pos
}

// EndOfFile reports whether the cursor has reached or passed the end of
// the buffer.
func (r *Reader) EndOfFile() bool {
	return r.cursor >= len(r.data)
}

func (r *Reader) need(n int) error {
	if r.cursor+n > len(r.data) {
		return &vmerr.OutOfBounds{What: "bytecode cursor", Index: int64(r.cursor + n), Limit: int64(len(r.data))}
	}
	return nil
}

// ReadByte reads and returns one raw byte.
func (r *Reader) ReadByte() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.data[r.cursor]
	r.cursor++
	return b, nil
}

// ReadInstruction reads one opcode byte.
func (r *Reader) ReadInstruction() (Opcode, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	return Opcode(b), nil
}

// ReadI32 reads a 4-byte big-endian signed integer.
func (r *Reader) ReadI32() (int32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := int32(binary.BigEndian.Uint32(r.data[r.cursor:]))
	r.cursor += 4
	return v, nil
}

// ReadUsize reads an 8-byte big-endian unsigned integer.
func (r *Reader) ReadUsize() (uint64, error) {
	if err := r.need(AddressWidth); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.data[r.cursor:])
	r.cursor += AddressWidth
	return v, nil
}

// ReadF64 reads an 8-byte big-endian IEEE-754 bit pattern and decodes it
// to a float64.
func (r *Reader) ReadF64() (float64, error) {
	bits, err := r.ReadUsize()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// ReadString reads a length-prefixed string.
func (r *Reader) ReadString() ([]byte, error) {
	n, err := r.ReadUsize()
	if err != nil {
		return nil, err
	}
	if err := r.need(int(n)); err != nil {
		return nil, err
	}
	s := make([]byte, n)
	copy(s, r.data[r.cursor:r.cursor+int(n)])
	r.cursor += int(n)
	return s, nil
}

// PeekByte returns the byte at the cursor without consuming it.
func (r *Reader) PeekByte() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	return r.data[r.cursor], nil
}
