// Package runtime implements the register file (C7) and the
// fetch-decode-execute engine (C8): the ~70 opcode handlers that
// mutate the operand stack, call-frame stack, typed heap, and string
// heap in response to one bytecode program.
package runtime

import (
	"bufio"
	"io"

	"github.com/google/uuid"

	"github.com/tinyvm/stackvm/internal/obslog"
	"github.com/tinyvm/stackvm/pkg/bytecode"
	"github.com/tinyvm/stackvm/pkg/config"
	"github.com/tinyvm/stackvm/pkg/memory"
	"github.com/tinyvm/stackvm/pkg/sourcemap"
)

// State is one of the engine's three logical states.
type State uint8

const (
	// Running is the initial state; every fetch/execute cycle stays
	// here unless a fault occurs or the stop flag is set.
	Running State = iota
	// Stopped is terminal: reached via the `stop` opcode or end-of-file
	// with no error pending.
	Stopped
	// Faulted is terminal: reached when a handler fails or the error
	// slot is otherwise populated.
	Faulted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	case Faulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// VM is one complete execution context: registers, all four address
// spaces, the bytecode reader, and the source map used only for fault
// diagnostics. ID gives every instance a stable identity, standing in
// for the foreign boundary's opaque VM handle.
type VM struct {
	ID uuid.UUID

	code *bytecode.Reader
	sm   *sourcemap.Map

	stack   *memory.Stack
	frames  *memory.Frames
	heap    *memory.Heap
	strings *memory.StringHeap

	reg   *Registers
	state State

	lastInstruction uint64

	out         io.Writer
	in          *bufio.Reader
	maxReadLine int
	trace       bool
}

// New constructs a VM ready to run code. sm may be nil if diagnostics
// are not needed (fault reporting then degrades to offset-only).
func New(code *bytecode.Reader, sm *sourcemap.Map, cfg config.Config, out io.Writer, in io.Reader) *VM {
	stack := memory.NewStack(cfg.StackCapacity)
	vm := &VM{
		ID:          uuid.New(),
		code:        code,
		sm:          sm,
		stack:       stack,
		frames:      memory.NewFrames(cfg.FrameCapacity),
		heap:        memory.NewHeap(),
		strings:     memory.NewStringHeap(),
		out:         out,
		in:          bufio.NewReader(in),
		maxReadLine: cfg.MaxReadLine,
		trace:       cfg.Trace,
		state:       Running,
	}
	vm.reg = newRegisters(code, stack)
	return vm
}

// State reports the engine's current logical state.
func (vm *VM) State() State { return vm.state }

// LastInstruction returns the bytecode offset of the most recently
// fetched instruction, the offset fault diagnostics key off.
func (vm *VM) LastInstruction() uint64 { return vm.lastInstruction }

// Fault returns the span the source map attributes to the last
// executed instruction, for runtime diagnostics. ok is false if no
// source map was supplied or no span covers the offset.
func (vm *VM) Fault() (sourcemap.Span, bool) {
	if vm.sm == nil {
		return sourcemap.Span{}, false
	}
	return vm.sm.Find(vm.lastInstruction)
}

// Run drives the fetch-decode-execute loop to completion: a clean stop
// or end-of-file returns nil, a fault returns its error.
func (vm *VM) Run() error {
	for {
		vm.lastInstruction = vm.reg.CodePointer()
		op, err := vm.code.ReadInstruction()
		if err != nil {
			vm.reg.Err = err
			vm.state = Faulted
			obslog.Errorf("vm %s faulted fetching instruction at %d: %v", vm.ID, vm.lastInstruction, err)
			return err
		}

		if vm.trace {
			obslog.Debugf("vm %s @%d %s", vm.ID, vm.lastInstruction, op)
		}

		if execErr := vm.execute(op); execErr != nil {
			vm.reg.Err = execErr
		}

		if vm.reg.Err != nil {
			vm.state = Faulted
			obslog.Errorf("vm %s faulted at %d (%s): %v", vm.ID, vm.lastInstruction, op, vm.reg.Err)
			return vm.reg.Err
		}
		if vm.reg.Stop || vm.code.EndOfFile() {
			vm.state = Stopped
			obslog.Infof("vm %s stopped at %d", vm.ID, vm.reg.CodePointer())
			return nil
		}
	}
}

// Teardown releases every owned resource in the fixed order spec.md §3
// prescribes: operand stack, frames, heaps, then the source map index.
func (vm *VM) Teardown() {
	vm.stack.Truncate(0)
	vm.frames = memory.NewFrames(0)
	vm.heap.Teardown()
	vm.strings.Teardown()
	vm.sm = nil
}
