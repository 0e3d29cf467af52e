package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSource(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.svm")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRunSucceedsOnValidProgram(t *testing.T) {
	path := writeSource(t, `pushs "hi\n" writes stop`)
	if code := run([]string{path}); code != 0 {
		t.Errorf("run() = %d, want 0", code)
	}
}

func TestRunFailsOnAssemblyError(t *testing.T) {
	path := writeSource(t, "bogus 1")
	if code := run([]string{path}); code == 0 {
		t.Errorf("run() = 0, want a non-zero exit code on an assembly error")
	}
}

func TestRunFailsOnRuntimeFault(t *testing.T) {
	path := writeSource(t, "pushi 1 pushf 2.0 add")
	if code := run([]string{path}); code == 0 {
		t.Errorf("run() = 0, want a non-zero exit code on a runtime fault")
	}
}

func TestRunDumpBytecodeWritesFileAndExitsZero(t *testing.T) {
	path := writeSource(t, "pushi 1 stop")
	out := filepath.Join(t.TempDir(), "out.bin")
	if code := run([]string{"-dump-bytecode", out, path}); code != 0 {
		t.Errorf("run() = %d, want 0", code)
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Errorf("expected a non-empty bytecode file at %s", out)
	}
}

func TestRunEmitSourceMapWritesFile(t *testing.T) {
	path := writeSource(t, "pushi 1 stop")
	out := filepath.Join(t.TempDir(), "out.cbor")
	if code := run([]string{"-emit-sourcemap", out, path}); code != 0 {
		t.Errorf("run() = %d, want 0", code)
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Errorf("expected a non-empty source map file at %s", out)
	}
}

func TestRunRequiresExactlyOnePositionalArgument(t *testing.T) {
	if code := run([]string{}); code != 2 {
		t.Errorf("run() = %d, want 2", code)
	}
}
