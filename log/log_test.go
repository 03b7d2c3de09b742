package log

import (
	"strings"
	"testing"
)

func TestDebugToggle(t *testing.T) {
	var buf []string
	old := PrintfStdErr
	PrintfStdErr = func(format string, args ...interface{}) {
		buf = append(buf, format)
	}
	defer func() { PrintfStdErr = old }()

	DebugOn = false
	DEBUG("hidden %d", 1)
	if len(buf) != 0 {
		t.Fatalf("expected no output while DebugOn is false, got %v", buf)
	}
}

func TestPrintfStdErrUnconditional(t *testing.T) {
	var got string
	old := PrintfStdErr
	PrintfStdErr = func(format string, args ...interface{}) {
		got = format
		for _, a := range args {
			if s, ok := a.(string); ok && strings.Contains(format, "%s") {
				got = strings.Replace(got, "%s", s, 1)
			}
		}
	}
	defer func() { PrintfStdErr = old }()

	PrintfStdErr("%s", "boom")
	if got != "boom" {
		t.Fatalf("expected boom, got %q", got)
	}
}
