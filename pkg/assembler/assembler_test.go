package assembler

import (
	"testing"

	"github.com/tinyvm/stackvm/pkg/bytecode"
	"github.com/tinyvm/stackvm/pkg/sourcemap"
)

func assembleOK(t *testing.T, src string) *bytecode.Reader {
	t.Helper()
	a := New([]byte(src))
	r, _, err := a.Assemble()
	if err != nil {
		t.Fatalf("Assemble(%q): %v", src, err)
	}
	return r
}

func TestAssembleNoneShapeInstruction(t *testing.T) {
	r := assembleOK(t, "stop")
	op, err := r.ReadInstruction()
	if err != nil || op != bytecode.OpStop {
		t.Fatalf("ReadInstruction = %v, %v; want OpStop", op, err)
	}
	if !r.EndOfFile() {
		t.Errorf("expected exactly one instruction")
	}
}

func TestAssembleI32Immediate(t *testing.T) {
	r := assembleOK(t, "pushi 42")
	op, _ := r.ReadInstruction()
	v, err := r.ReadI32()
	if op != bytecode.OpPushI || err != nil || v != 42 {
		t.Fatalf("got op=%v v=%d err=%v; want OpPushI 42 nil", op, v, err)
	}
}

func TestAssembleNegativeI32Immediate(t *testing.T) {
	r := assembleOK(t, "pushl -1")
	r.ReadInstruction()
	v, err := r.ReadI32()
	if err != nil || v != -1 {
		t.Fatalf("ReadI32 = %d, %v; want -1, nil", v, err)
	}
}

func TestAssembleFloatImmediate(t *testing.T) {
	r := assembleOK(t, "pushf 3.25")
	r.ReadInstruction()
	v, err := r.ReadF64()
	if err != nil || v != 3.25 {
		t.Fatalf("ReadF64 = %v, %v; want 3.25, nil", v, err)
	}
}

func TestAssembleStringImmediate(t *testing.T) {
	r := assembleOK(t, `pushs "Hello\n"`)
	r.ReadInstruction()
	s, err := r.ReadString()
	if err != nil || string(s) != "Hello\n" {
		t.Fatalf("ReadString = %q, %v; want %q, nil", s, err, "Hello\n")
	}
}

func TestAssembleLabelForwardReference(t *testing.T) {
	r := assembleOK(t, "jump L1\nL1: stop")
	r.ReadInstruction()
	addr, err := r.ReadUsize()
	if err != nil {
		t.Fatalf("ReadUsize: %v", err)
	}
	// jump's opcode (1 byte) + address operand (8 bytes) = label L1 at offset 9.
	if addr != 9 {
		t.Fatalf("resolved label address = %d, want 9", addr)
	}
}

func TestAssembleMissingLabelFails(t *testing.T) {
	a := New([]byte("jump NoSuchLabel stop"))
	if _, _, err := a.Assemble(); err == nil {
		t.Fatalf("expected MissingLabel error")
	}
}

func TestAssembleUnknownMnemonicFails(t *testing.T) {
	a := New([]byte("bogus 1"))
	_, _, err := a.Assemble()
	if err == nil {
		t.Fatalf("expected NoMatch error for an unknown mnemonic")
	}
	if a.Position().Line != 0 {
		t.Errorf("error position line = %d, want 0", a.Position().Line)
	}
}

func TestAssembleMnemonicsAreCaseInsensitive(t *testing.T) {
	assembleOK(t, "PUSHI 1 STOP")
	assembleOK(t, "PushI 1 Stop")
}

func TestAssembleSingleSlashLineComment(t *testing.T) {
	r := assembleOK(t, "/ this is a comment\nstop")
	op, err := r.ReadInstruction()
	if err != nil || op != bytecode.OpStop {
		t.Fatalf("ReadInstruction = %v, %v; want OpStop", op, err)
	}
}

func TestAssembleTwiceYieldsIdenticalBytecode(t *testing.T) {
	src := "pushi 2 pushi 3 add writelni stop"
	r1 := assembleOK(t, src)
	r2 := assembleOK(t, src)
	if string(r1.Bytes()) != string(r2.Bytes()) {
		t.Errorf("assembling the same source twice produced different bytecode")
	}
}

func TestSourceMapIsPopulatedAndMonotonic(t *testing.T) {
	a := New([]byte("pushi 1\npushi 2\nadd\nstop"))
	_, sm, err := a.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if sm.Len() == 0 {
		t.Fatalf("expected a non-empty source map")
	}
	var last uint64
	first := true
	sm.Each(func(s sourcemap.Span) bool {
		if !first && s.InstructionOffset < last {
			t.Errorf("instruction offsets not monotonically non-decreasing: %d after %d", s.InstructionOffset, last)
		}
		last = s.InstructionOffset
		first = false
		return true
	})
}
