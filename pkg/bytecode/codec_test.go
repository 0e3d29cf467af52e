package bytecode

import (
	"math"
	"testing"
)

func TestRoundTripI32(t *testing.T) {
	for _, v := range []int32{0, 1, -1, math.MaxInt32, math.MinInt32, 12345} {
		w := NewWriter()
		w.WriteI32(v)
		r := w.IntoReader()
		got, err := r.ReadI32()
		if err != nil {
			t.Fatalf("ReadI32(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip i32 = %d, want %d", got, v)
		}
	}
}

func TestRoundTripUsize(t *testing.T) {
	for _, v := range []uint64{0, 1, math.MaxUint64, 1 << 40} {
		w := NewWriter()
		w.WriteUsize(v)
		r := w.IntoReader()
		got, err := r.ReadUsize()
		if err != nil {
			t.Fatalf("ReadUsize(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip usize = %d, want %d", got, v)
		}
	}
}

func TestRoundTripF64(t *testing.T) {
	for _, v := range []float64{0, -0.0, 1.5, -3.25, math.Inf(1), math.Inf(-1), math.NaN()} {
		w := NewWriter()
		w.WriteF64(v)
		r := w.IntoReader()
		got, err := r.ReadF64()
		if err != nil {
			t.Fatalf("ReadF64(%v): %v", v, err)
		}
		if math.IsNaN(v) {
			if !math.IsNaN(got) {
				t.Errorf("round trip NaN = %v, want NaN", got)
			}
			continue
		}
		if got != v {
			t.Errorf("round trip f64 = %v, want %v", got, v)
		}
	}
}

func TestRoundTripString(t *testing.T) {
	for _, s := range [][]byte{[]byte(""), []byte("hello"), []byte("a\nb\tc")} {
		w := NewWriter()
		w.WriteString(s)
		r := w.IntoReader()
		got, err := r.ReadString()
		if err != nil {
			t.Fatalf("ReadString(%q): %v", s, err)
		}
		if string(got) != string(s) {
			t.Errorf("round trip string = %q, want %q", got, s)
		}
	}
}

func TestReaderOutOfBoundsOnTruncatedStream(t *testing.T) {
	w := NewWriter()
	w.WriteI32(42)
	r := w.IntoReader()
	r.SetCursor(1) // only 3 of the 4 bytes remain
	if _, err := r.ReadI32(); err == nil {
		t.Errorf("expected OutOfBounds reading past a truncated stream")
	}
}

func TestEndOfFile(t *testing.T) {
	w := NewWriter()
	w.WriteInstruction(OpNop)
	r := w.IntoReader()
	if r.EndOfFile() {
		t.Fatalf("reader should not report EOF before consuming its only byte")
	}
	if _, err := r.ReadInstruction(); err != nil {
		t.Fatalf("ReadInstruction: %v", err)
	}
	if !r.EndOfFile() {
		t.Errorf("reader should report EOF after consuming its only byte")
	}
}

func TestSeekOverwritesInPlace(t *testing.T) {
	w := NewWriter()
	placeholder := w.Len()
	w.WriteUsize(0)
	tail := w.Len()
	w.WriteInstruction(OpStop)

	w.Seek(placeholder)
	w.WriteUsize(0xDEADBEEF)
	w.SeekEnd()

	if w.Len() != tail+1 {
		t.Fatalf("Seek + overwrite should not change buffer length, got %d want %d", w.Len(), tail+1)
	}

	r := w.IntoReader()
	got, err := r.ReadUsize()
	if err != nil {
		t.Fatalf("ReadUsize: %v", err)
	}
	if got != 0xDEADBEEF {
		t.Errorf("patched usize = %#x, want %#x", got, 0xDEADBEEF)
	}
}

func TestLookupIsCaseInsensitiveAtCallSite(t *testing.T) {
	// Lookup itself is case-sensitive (lowercase keys); the assembler is
	// responsible for lowering mnemonics before calling it.
	op, ok := Lookup("pushi")
	if !ok || op != OpPushI {
		t.Fatalf("Lookup(pushi) = %v, %v; want OpPushI, true", op, ok)
	}
	if _, ok := Lookup("PUSHI"); ok {
		t.Errorf("Lookup should not itself lowercase mnemonics")
	}
}

func TestOpcodeTableIsFullyPopulated(t *testing.T) {
	for op := Opcode(0); int(op) < Count(); op++ {
		if opcodeTable[op].name == "" {
			t.Errorf("opcode %d has no mnemonic", op)
		}
		if resolved, ok := Lookup(opcodeTable[op].name); !ok || resolved != op {
			t.Errorf("mnemonic %q does not resolve back to opcode %d", opcodeTable[op].name, op)
		}
	}
}
