package runtime

import (
	"github.com/tinyvm/stackvm/internal/obslog"
	"github.com/tinyvm/stackvm/pkg/bytecode"
	"github.com/tinyvm/stackvm/pkg/memory"
)

// Registers is the engine's register file (C7): two plain fields
// (frame_pointer, global_pointer) plus the stop flag and error slot,
// and two derived views (code_pointer, stack_pointer) that alias the
// bytecode reader's cursor and the operand stack's length rather than
// owning storage of their own.
type Registers struct {
	FramePointer  uint64
	GlobalPointer uint64
	Stop          bool
	Err           error

	code  *bytecode.Reader
	stack *memory.Stack
}

func newRegisters(code *bytecode.Reader, stack *memory.Stack) *Registers {
	return &Registers{code: code, stack: stack}
}

// CodePointer reads the derived code_pointer view: the reader's cursor.
func (r *Registers) CodePointer() uint64 {
	return uint64(r.code.Cursor())
}

// SetCodePointer writes the derived code_pointer view, used by jump,
// jz, call, and return.
func (r *Registers) SetCodePointer(pos uint64) {
	r.code.SetCursor(int(pos))
}

// StackPointer reads the derived stack_pointer view: the operand
// stack's length.
func (r *Registers) StackPointer() uint64 {
	return uint64(r.stack.Len())
}

// SetStackPointer is explicitly a no-op per spec.md §4.7/§9: the
// foreign boundary accepts the call, but only push/pop may change the
// stack's length. Logged rather than silently swallowed so a caller
// relying on it notices in a trace.
func (r *Registers) SetStackPointer(requested uint64) {
	obslog.Debugf("set_stack_pointer(%d) ignored: stack_pointer is derived from stack length", requested)
}
