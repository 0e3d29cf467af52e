package memory

import (
	"github.com/tinyvm/stackvm/pkg/value"
	"github.com/tinyvm/stackvm/pkg/vmerr"
)

// Stack is the operand stack. Slots are addressed by absolute index
// from the bottom (index 0), the same numbering value.AddressStack
// values carry, so pushsp/load/store work directly against it without
// a base-pointer translation.
type Stack struct {
	data []value.Value
}

// NewStack creates an empty operand stack with room for capacity
// entries before its first reallocation.
func NewStack(capacity int) *Stack {
	return &Stack{data: make([]value.Value, 0, capacity)}
}

// Len returns the number of entries currently on the stack — also the
// value pushsp reports.
func (s *Stack) Len() int {
	return len(s.data)
}

// Push appends v to the top of the stack. Never fails: the stack grows
// as needed, matching spec.md's choice not to bound operand-stack depth.
func (s *Stack) Push(v value.Value) {
	s.data = append(s.data, v)
}

// Pop removes and returns the top entry.
func (s *Stack) Pop() (value.Value, error) {
	if len(s.data) == 0 {
		return value.Value{}, &vmerr.OutOfBounds{What: "operand stack", Index: -1, Limit: 0}
	}
	top := s.data[len(s.data)-1]
	s.data = s.data[:len(s.data)-1]
	return top, nil
}

// PopAs pops the top entry and requires it carry tag; otherwise the
// stack is left unchanged and a TypeMismatch is returned.
func (s *Stack) PopAs(tag value.Tag) (value.Value, error) {
	if len(s.data) == 0 {
		return value.Value{}, &vmerr.OutOfBounds{What: "operand stack", Index: -1, Limit: 0}
	}
	top := s.data[len(s.data)-1]
	if top.Tag != tag {
		return value.Value{}, &vmerr.TypeMismatch{Want: tag, Got: top.Tag}
	}
	s.data = s.data[:len(s.data)-1]
	return top, nil
}

// Peek returns the top entry without removing it.
func (s *Stack) Peek() (value.Value, error) {
	if len(s.data) == 0 {
		return value.Value{}, &vmerr.OutOfBounds{What: "operand stack", Index: -1, Limit: 0}
	}
	return s.data[len(s.data)-1], nil
}

// Load reads the entry at absolute index i.
func (s *Stack) Load(i uint64) (value.Value, error) {
	if i >= uint64(len(s.data)) {
		return value.Value{}, &vmerr.OutOfBounds{What: "operand stack", Index: int64(i), Limit: int64(len(s.data))}
	}
	return s.data[i], nil
}

// Store writes v at absolute index i and returns the entry it replaced.
func (s *Stack) Store(i uint64, v value.Value) (value.Value, error) {
	if i >= uint64(len(s.data)) {
		return value.Value{}, &vmerr.OutOfBounds{What: "operand stack", Index: int64(i), Limit: int64(len(s.data))}
	}
	prev := s.data[i]
	s.data[i] = v
	return prev, nil
}

// Truncate discards every entry from index n onward, the operation
// `return` uses to unwind a callee's locals back to its frame pointer.
func (s *Stack) Truncate(n uint64) {
	if n >= uint64(len(s.data)) {
		return
	}
	s.data = s.data[:n]
}

// PushN pushes n zero-valued Integers. The corrected semantics per
// spec.md §9: each of the n iterations advances by one slot, not by n.
func (s *Stack) PushN(n int) {
	for i := 0; i < n; i++ {
		s.data = append(s.data, value.Int(0))
	}
}

// DupN duplicates the top n entries in order, leaving 2n entries where
// there were n.
func (s *Stack) DupN(n int) error {
	if n < 0 || n > len(s.data) {
		return &vmerr.OutOfBounds{What: "operand stack dupn", Index: int64(n), Limit: int64(len(s.data))}
	}
	start := len(s.data) - n
	s.data = append(s.data, s.data[start:]...)
	return nil
}
