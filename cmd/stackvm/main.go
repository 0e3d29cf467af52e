// Command stackvm assembles and runs a single stackvm source file.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tinyvm/stackvm/internal/obslog"
	"github.com/tinyvm/stackvm/pkg/assembler"
	"github.com/tinyvm/stackvm/pkg/config"
	"github.com/tinyvm/stackvm/pkg/runtime"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: stackvm [flags] <source-file>\n\nflags:\n")
	flag.PrintDefaults()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("stackvm", flag.ContinueOnError)
	fs.Usage = usage

	trace := fs.Bool("trace", false, "log the disassembly of every instruction executed")
	configPath := fs.String("config", "", "path to an optional TOML tuning file")
	verbose := fs.Bool("v", false, "enable info-level logging")
	veryVerbose := fs.Bool("vv", false, "enable debug-level logging")
	dumpBytecode := fs.String("dump-bytecode", "", "assemble and write bytecode to this path instead of executing")
	emitSourceMap := fs.String("emit-sourcemap", "", "write the CBOR-encoded source map to this path")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		usage()
		return 2
	}
	sourcePath := fs.Arg(0)

	verbosity := 0
	switch {
	case *veryVerbose:
		verbosity = 2
	case *verbose:
		verbosity = 1
	}
	obslog.Configure(verbosity)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "stackvm: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	if *trace {
		cfg.Trace = true
	}

	source, err := os.ReadFile(sourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stackvm: %v\n", err)
		return 1
	}

	a := assembler.New(source)
	code, sm, err := a.Assemble()
	if err != nil {
		printAssemblyError(a, sourcePath)
		return 1
	}

	if *emitSourceMap != "" {
		data, err := sm.EncodeCBOR()
		if err != nil {
			fmt.Fprintf(os.Stderr, "stackvm: %v\n", err)
			return 1
		}
		if err := os.WriteFile(*emitSourceMap, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "stackvm: %v\n", err)
			return 1
		}
	}

	if *dumpBytecode != "" {
		if err := os.WriteFile(*dumpBytecode, code.Bytes(), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "stackvm: %v\n", err)
			return 1
		}
		return 0
	}

	vm := runtime.New(code, sm, cfg, os.Stdout, os.Stdin)
	if err := vm.Run(); err != nil {
		printRuntimeError(vm, err, source)
		return 1
	}
	return 0
}

func printAssemblyError(a *assembler.Assembler, sourcePath string) {
	pos := a.Position()
	fmt.Fprintf(os.Stderr, "ERROR Ln %d, Col %d: %s\n\t%s\n", pos.Line+1, pos.Column+1, a.Err(), a.CurrentLine())
	_ = sourcePath
}

func printRuntimeError(vm *runtime.VM, err error, source []byte) {
	span, ok := vm.Fault()
	if !ok {
		fmt.Fprintf(os.Stderr, "Runtime Error in Ln ?, Col ?: %s\n", err)
		return
	}
	text := ""
	if span.Start.Offset >= 0 && span.End.Offset <= len(source) && span.Start.Offset <= span.End.Offset {
		text = string(source[span.Start.Offset:span.End.Offset])
	}
	fmt.Fprintf(os.Stderr, "Runtime Error in Ln %d, Col %d: %s\n\t%s\n", span.Start.Line+1, span.Start.Column+1, err, text)
}
