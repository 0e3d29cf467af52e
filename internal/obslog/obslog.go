// Package obslog isolates every use of github.com/tliron/commonlog to
// one file, the way the teacher's LSP server keeps logging calls at its
// own boundary rather than scattering them through the VM.
package obslog

import (
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

const name = "stackvm"

var log = commonlog.GetLogger(name)

// Configure sets the log verbosity from a CLI flag count: 0 is warnings
// and above, 1 (-v) adds info, 2+ (-vv) adds debug. Matches the -v/-vv
// flags on cmd/stackvm.
func Configure(verbosity int) {
	commonlog.Configure(verbosity, nil)
}

// Debugf logs a debug-level message, used for the per-instruction trace.
func Debugf(format string, args ...any) {
	log.Debugf(format, args...)
}

// Infof logs an info-level message, used for VM lifecycle events
// (execution finished).
func Infof(format string, args ...any) {
	log.Infof(format, args...)
}

// Warningf logs a warning-level message, for non-fatal anomalies.
func Warningf(format string, args ...any) {
	log.Warningf(format, args...)
}

// Errorf logs an error-level message, used when the engine faults.
func Errorf(format string, args ...any) {
	log.Errorf(format, args...)
}
