package runtime

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/tinyvm/stackvm/pkg/sourcemap"
)

// StackSlot is one operand-stack entry in a fault snapshot, rendered as
// its tag name and decimal representation rather than the private
// value.Value layout.
type StackSlot struct {
	Tag   string `cbor:"tag"`
	Value string `cbor:"value"`
}

// FaultSnapshot is the postmortem record a faulted VM can be serialized
// to: enough to diagnose the fault offline without re-running the
// program, keyed by the VM's session id.
type FaultSnapshot struct {
	SessionID       string      `cbor:"session_id"`
	State           string      `cbor:"state"`
	LastInstruction uint64      `cbor:"last_instruction"`
	FramePointer    uint64      `cbor:"frame_pointer"`
	GlobalPointer   uint64      `cbor:"global_pointer"`
	CodePointer     uint64      `cbor:"code_pointer"`
	StackPointer    uint64      `cbor:"stack_pointer"`
	TopOfStack      []StackSlot `cbor:"top_of_stack"`
	Error           string      `cbor:"error,omitempty"`
	Span            *sourcemap.Span `cbor:"span,omitempty"`
}

// maxSnapshotDepth bounds how many operand-stack entries DumpFault
// captures, so a fault deep in a large program doesn't serialize the
// whole stack.
const maxSnapshotDepth = 16

// DumpFault captures the VM's current register and top-of-stack state
// as CBOR, for post-mortem tooling. Valid to call in any
// state, not just Faulted.
func (vm *VM) DumpFault() ([]byte, error) {
	snap := FaultSnapshot{
		SessionID:       vm.ID.String(),
		State:           vm.state.String(),
		LastInstruction: vm.lastInstruction,
		FramePointer:    vm.reg.FramePointer,
		GlobalPointer:   vm.reg.GlobalPointer,
		CodePointer:     vm.reg.CodePointer(),
		StackPointer:    vm.reg.StackPointer(),
	}
	if vm.reg.Err != nil {
		snap.Error = vm.reg.Err.Error()
	}
	if span, ok := vm.Fault(); ok {
		snap.Span = &span
	}

	depth := vm.stack.Len()
	if depth > maxSnapshotDepth {
		depth = maxSnapshotDepth
	}
	for i := 0; i < depth; i++ {
		idx := uint64(vm.stack.Len() - 1 - i)
		v, err := vm.stack.Load(idx)
		if err != nil {
			break
		}
		snap.TopOfStack = append(snap.TopOfStack, StackSlot{Tag: v.Tag.String(), Value: v.String()})
	}

	data, err := cbor.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("runtime: encode fault snapshot: %w", err)
	}
	return data, nil
}
