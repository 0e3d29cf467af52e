// Package value defines the tagged value representation shared by the
// operand stack, call frames, and the typed heap. A Value is exactly one
// of an Integer, a Float, or one of four disjoint address kinds; the
// None variant exists only at the boundary between the engine and its
// callers and never appears on the stack.
package value

import (
	"fmt"
	"strconv"
)

// Tag identifies which variant a Value holds.
type Tag uint8

const (
	// None denotes "no value"; it only appears at the external boundary.
	None Tag = iota
	Integer
	Float
	AddressHeap
	AddressString
	AddressCode
	AddressStack
)

// String returns the lowercase tag name used in diagnostics.
func (t Tag) String() string {
	switch t {
	case None:
		return "none"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case AddressHeap:
		return "heap-address"
	case AddressString:
		return "string-address"
	case AddressCode:
		return "code-address"
	case AddressStack:
		return "stack-address"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// IsAddress reports whether the tag is one of the four address kinds.
func (t Tag) IsAddress() bool {
	switch t {
	case AddressHeap, AddressString, AddressCode, AddressStack:
		return true
	default:
		return false
	}
}

// Value is a tagged union over an int32, a float64, or a host-width
// address. Only the field matching Tag is meaningful.
type Value struct {
	Tag   Tag
	i     int32
	f     float64
	addr  uint64
}

// Int constructs an Integer value.
func Int(v int32) Value { return Value{Tag: Integer, i: v} }

// Flt constructs a Float value.
func Flt(v float64) Value { return Value{Tag: Float, f: v} }

// Heap constructs an AddressHeap value.
func Heap(addr uint64) Value { return Value{Tag: AddressHeap, addr: addr} }

// Str constructs an AddressString value.
func Str(addr uint64) Value { return Value{Tag: AddressString, addr: addr} }

// Code constructs an AddressCode value.
func Code(addr uint64) Value { return Value{Tag: AddressCode, addr: addr} }

// StackAddr constructs an AddressStack value.
func StackAddr(addr uint64) Value { return Value{Tag: AddressStack, addr: addr} }

// Addr constructs a value of the given address tag. It panics if tag is
// not one of the four address kinds; callers that accept arbitrary tags
// from decoded bytecode must check IsAddress first.
func Addr(tag Tag, addr uint64) Value {
	if !tag.IsAddress() {
		panic(fmt.Sprintf("value: Addr called with non-address tag %v", tag))
	}
	return Value{Tag: tag, addr: addr}
}

// Int32 returns the integer payload. The caller is responsible for
// checking Tag == Integer first; callers inside this module do so by
// popping the value with the operand stack's typed pop (PopAs).
func (v Value) Int32() int32 { return v.i }

// Float64 returns the float payload.
func (v Value) Float64() float64 { return v.f }

// Address returns the address payload, regardless of which address tag
// is set.
func (v Value) Address() uint64 { return v.addr }

// WithAddress returns a copy of v with its address payload replaced.
// Used by opcodes that apply a signed displacement to an address without
// changing its kind.
func (v Value) WithAddress(addr uint64) Value {
	v.addr = addr
	return v
}

// String renders v using the host's decimal number formatting, matching
// the format the write*/writeln* opcodes send to standard output.
func (v Value) String() string {
	switch v.Tag {
	case Integer:
		return strconv.FormatInt(int64(v.i), 10)
	case Float:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case AddressHeap, AddressString, AddressCode, AddressStack:
		return fmt.Sprintf("%s(%d)", v.Tag, v.addr)
	default:
		return "none"
	}
}

// SameTagEqual compares two values by tag then content, without
// resolving AddressString payloads through the string heap. Two
// AddressString values with different base addresses compare unequal
// here even if their backing bytes are identical; use the runtime
// package's value comparison for the full byte-content semantics spec
// requires for strings.
func SameTagEqual(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case Integer:
		return a.i == b.i
	case Float:
		return a.f == b.f
	case AddressHeap, AddressString, AddressCode, AddressStack:
		return a.addr == b.addr
	case None:
		return true
	default:
		return false
	}
}
