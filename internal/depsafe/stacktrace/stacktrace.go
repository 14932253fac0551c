// Package stacktrace captures a short, fixed-size stack trace for
// attaching to a violation report. Violations are reported on the cold
// path (a dependency was already found invalid, or a spatial check already
// failed), so unlike a hot-path instrumentation probe this has no need for
// a global dedup store keyed by hash — each violation captures and formats
// its own trace once.
package stacktrace

import (
	"fmt"
	"runtime"
	"strings"
)

// MaxFrames bounds how many frames are captured above the caller of
// Capture. Eight frames is enough to show the call site of the violation
// without the noise of everything below main.
const MaxFrames = 8

// Trace is a captured, unresolved stack trace.
type Trace struct {
	pc [MaxFrames]uintptr
	n  int
}

// Capture records the stack of its caller, skipping Capture's own frame.
func Capture() Trace {
	var t Trace
	t.n = runtime.Callers(2, t.pc[:])
	return t
}

// String resolves the captured program counters into a formatted trace,
// one "function()" / "file:line" pair per line, with runtime-internal
// frames elided.
func (t Trace) String() string {
	if t.n == 0 {
		return "  <unknown>\n"
	}

	frames := runtime.CallersFrames(t.pc[:t.n])

	var buf strings.Builder
	for {
		frame, more := frames.Next()
		if frame.PC == 0 {
			break
		}
		if strings.HasPrefix(frame.Function, "runtime.") {
			if !more {
				break
			}
			continue
		}
		fmt.Fprintf(&buf, "  %s()\n", frame.Function)
		fmt.Fprintf(&buf, "      %s:%d\n", frame.File, frame.Line)
		if !more {
			break
		}
	}

	if buf.Len() == 0 {
		return "  <runtime internal>\n"
	}
	return buf.String()
}
