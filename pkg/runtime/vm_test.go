package runtime

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tinyvm/stackvm/pkg/assembler"
	"github.com/tinyvm/stackvm/pkg/config"
)

func run(t *testing.T, src string, stdin string) (string, error) {
	t.Helper()
	a := assembler.New([]byte(src))
	code, sm, err := a.Assemble()
	if err != nil {
		t.Fatalf("Assemble(%q): %v (at %+v: %s)", src, err, a.Position(), a.CurrentLine())
	}
	var out bytes.Buffer
	vm := New(code, sm, config.Default(), &out, strings.NewReader(stdin))
	runErr := vm.Run()
	return out.String(), runErr
}

func TestHelloWorld(t *testing.T) {
	out, err := run(t, `pushs "Hello\n" writes stop`, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "Hello\n" {
		t.Errorf("stdout = %q, want %q", out, "Hello\n")
	}
}

func TestAddition(t *testing.T) {
	out, err := run(t, "pushi 2 pushi 3 add writelni stop", "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "5\n" {
		t.Errorf("stdout = %q, want %q", out, "5\n")
	}
}

func TestLabelsAndControlFlow(t *testing.T) {
	src := `
pushi 0 jz L1
pushs "A" writes stop
L1: pushs "B" writes stop
`
	out, err := run(t, src, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "B" {
		t.Errorf("stdout = %q, want %q", out, "B")
	}
}

func TestCallReturnWithLocals(t *testing.T) {
	src := `
start pushi 10 pusha F call writelni stop
F: pushl -1 pushi 1 add return
`
	out, err := run(t, src, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "11\n" {
		t.Errorf("stdout = %q, want %q", out, "11\n")
	}
}

func TestHeapRoundTrip(t *testing.T) {
	src := "pushi 3 allocn pushi 42 store 1 pushi 0 load 1 writelni stop"
	out, err := run(t, src, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "42\n" {
		t.Errorf("stdout = %q, want %q", out, "42\n")
	}
}

func TestRuntimeTypeMismatch(t *testing.T) {
	src := "pushi 1 pushf 2.0 add"
	a := assembler.New([]byte(src))
	code, sm, err := a.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	var out bytes.Buffer
	vm := New(code, sm, config.Default(), &out, strings.NewReader(""))
	runErr := vm.Run()
	if runErr == nil {
		t.Fatalf("expected a TypeMismatch error")
	}
	if vm.State() != Faulted {
		t.Errorf("State() = %v, want Faulted", vm.State())
	}
	span, ok := vm.Fault()
	if !ok {
		t.Fatalf("expected a source span for the fault")
	}
	// The span for the failing `add` starts after "pushi 1 pushf 2.0 ".
	if !strings.Contains(src[span.Start.Offset:], "add") {
		t.Errorf("fault span does not point at `add`: %+v", span)
	}
}

func TestReadOpcode(t *testing.T) {
	src := `read writes stop`
	out, err := run(t, src, "hello\r\n")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "hello" {
		t.Errorf("stdout = %q, want %q", out, "hello")
	}
}

func TestStackPointerInvariantAfterEveryOpcode(t *testing.T) {
	src := "pushi 1 pushi 2 add pop 1 stop"
	a := assembler.New([]byte(src))
	code, sm, err := a.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	var out bytes.Buffer
	vm := New(code, sm, config.Default(), &out, strings.NewReader(""))
	if err := vm.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if vm.reg.StackPointer() != uint64(vm.stack.Len()) {
		t.Errorf("stack_pointer = %d, stack length = %d; invariant violated", vm.reg.StackPointer(), vm.stack.Len())
	}
}

func TestConcatAndEqualOnStrings(t *testing.T) {
	src := `pushs "ab" pushs "cd" concat pushs "abcd" equal writelni stop`
	out, err := run(t, src, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "1\n" {
		t.Errorf("stdout = %q, want %q", out, "1\n")
	}
}

func TestFreeThenLoadFails(t *testing.T) {
	src := "pushi 2 allocn dup 1 free load 0"
	a := assembler.New([]byte(src))
	code, sm, err := a.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	var out bytes.Buffer
	vm := New(code, sm, config.Default(), &out, strings.NewReader(""))
	if err := vm.Run(); err == nil {
		t.Fatalf("expected InvalidAddress loading through a freed heap allocation")
	}
}
