// Package config loads the VM's tuning knobs from an optional TOML
// file, the way the teacher's manifest package loads project metadata
// with github.com/BurntSushi/toml.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config holds every knob the engine and CLI read at startup. None of
// it is required for correctness — spec.md defines the defaults below
// unconditionally; a config file only overrides them.
type Config struct {
	// StackCapacity is the operand stack's initial backing capacity.
	StackCapacity int `toml:"stack_capacity"`
	// FrameCapacity is the call-frame stack's initial backing capacity.
	FrameCapacity int `toml:"frame_capacity"`
	// MaxReadLine is the maximum number of bytes of one input line the
	// `read` opcode keeps; the whole line is consumed from standard
	// input and anything past this length is dropped.
	MaxReadLine int `toml:"max_read_line"`
	// Trace enables the per-instruction disassembly trace by default,
	// equivalent to always passing -trace on the CLI.
	Trace bool `toml:"trace"`
}

// Default returns the configuration spec.md's semantics assume when no
// file is supplied.
func Default() Config {
	return Config{
		StackCapacity: 256,
		FrameCapacity: 64,
		MaxReadLine:   1 << 20, // 1 MiB
		Trace:         false,
	}
}

// Load reads path as TOML over the defaults. A missing file is an
// error; callers that want "absent file is fine" should check
// os.IsNotExist themselves before calling Load, or simply not call it
// and use Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	return cfg, nil
}
