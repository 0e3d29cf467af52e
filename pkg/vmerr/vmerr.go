// Package vmerr defines the typed error values the assembler and engine
// produce. Each kind from spec.md §7 is its own exported type rather
// than a string, so callers can branch with errors.As instead of
// matching on message text, the way the foreign boundary and the CLI
// both need to.
package vmerr

import (
	"fmt"

	"github.com/tinyvm/stackvm/pkg/value"
)

// OutOfBounds reports an operand-stack index, or a bytecode cursor
// position, outside the valid range.
type OutOfBounds struct {
	What  string // "stack index", "bytecode cursor", ...
	Index int64
	Limit int64
}

func (e *OutOfBounds) Error() string {
	return fmt.Sprintf("out of bounds: %s %d exceeds limit %d", e.What, e.Index, e.Limit)
}

// TypeMismatch reports that a typed pop received a value of a different
// tag than expected.
type TypeMismatch struct {
	Want value.Tag
	Got  value.Tag
}

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", e.Want, e.Got)
}

// InvalidAddress reports a heap or string-heap access outside any owned
// allocation, or a dereference through a non-address value.
type InvalidAddress struct {
	Address uint64
	Reason  string
}

func (e *InvalidAddress) Error() string {
	return fmt.Sprintf("invalid address %d: %s", e.Address, e.Reason)
}

// InvalidOperand reports an address kind rejected by an opcode, or an
// out-of-range immediate (e.g. allocn with a non-positive size).
type InvalidOperand struct {
	Op     string
	Reason string
}

func (e *InvalidOperand) Error() string {
	return fmt.Sprintf("invalid operand for %s: %s", e.Op, e.Reason)
}

// InvalidNumber reports an assembler lexing failure on a numeric
// literal.
type InvalidNumber struct {
	Literal string
}

func (e *InvalidNumber) Error() string {
	return fmt.Sprintf("invalid number literal %q", e.Literal)
}

// InvalidEscape reports an assembler lexing failure inside a string
// literal's escape sequence.
type InvalidEscape struct {
	Escape string
}

func (e *InvalidEscape) Error() string {
	return fmt.Sprintf("invalid escape sequence %q", e.Escape)
}

// NoMatch reports that the assembler could not recognize a mnemonic,
// label, or required operand at the current position.
type NoMatch struct {
	Context string
}

func (e *NoMatch) Error() string {
	return fmt.Sprintf("no match: %s", e.Context)
}

// MissingLabel reports that pass 2 of assembly found a reference to a
// label that was never defined.
type MissingLabel struct {
	Name string
}

func (e *MissingLabel) Error() string {
	return fmt.Sprintf("missing label %q", e.Name)
}

// RuntimeError is the distinguished terminal error raised by the `err`
// opcode. The message is entirely user-defined.
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// IO wraps an underlying file, stdin, or stdout failure.
type IO struct {
	Op  string
	Err error
}

func (e *IO) Error() string {
	return fmt.Sprintf("io error during %s: %v", e.Op, e.Err)
}

func (e *IO) Unwrap() error {
	return e.Err
}
