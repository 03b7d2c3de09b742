// Package log is viewstream's internal diagnostic logger. It mirrors the
// free-function style the teacher's operators and evaluator call against
// (DEBUG/TRACE/PrintfStdErr, gated by package-level toggles) rather than a
// configured logger instance, because every step in the pipeline needs to
// emit trace output without threading a logger through its constructor.
package log

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/starkandwayne/goutils/ansi"
)

// DebugOn enables DEBUG output when true.
var DebugOn bool

// TraceOn enables TRACE output when true. It does not enable DEBUG output
// by itself; cmd/viewstream's --trace flag sets both TraceOn and DebugOn.
var TraceOn bool

var colorable = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

func init() {
	ansi.Color(colorable)
}

// SetColor forces color output on or off, overriding terminal detection.
func SetColor(on bool) {
	colorable = on
	ansi.Color(on)
}

// DEBUG prints a debug-level message to stderr when DebugOn is set.
func DEBUG(format string, args ...interface{}) {
	if !DebugOn {
		return
	}
	PrintfStdErr("%s", ansi.Sprintf("@c{DEBUG> }%s\n", fmt.Sprintf(format, args...)))
}

// TRACE prints a trace-level message to stderr when TraceOn is set.
func TRACE(format string, args ...interface{}) {
	if !TraceOn {
		return
	}
	PrintfStdErr("%s", ansi.Sprintf("@b{TRACE> }%s\n", fmt.Sprintf(format, args...)))
}

// PrintfStdErr writes unconditionally to stderr, used for warnings and
// fatal diagnostics that must surface regardless of debug/trace toggles.
var PrintfStdErr = func(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
}
