// Package bytecode defines the opcode table and the binary codec that
// reads and writes it.
//
// A program is a flat sequence of records, one opcode byte each followed
// by zero or one operand. Scalars are packed big-endian at a fixed
// width: int32 is 4 bytes, a host-width address is 8 bytes regardless of
// platform, and a float64 is written as the raw 8-byte bit pattern of
// its IEEE-754 representation. Strings are length-prefixed: an 8-byte
// length followed by that many raw bytes.
//
// Opcode assignment is positional: the numeric value of each opcode is
// its index into the ordered list in opcodes.go. New opcodes must be
// appended at the end to keep existing bytecode files readable.
package bytecode
