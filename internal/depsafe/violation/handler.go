// Package violation holds the two settable reporting sinks the engine calls
// into when it detects a problem: a dependency violation (validate found an
// invalid object) and a spatial failure (an out-of-bounds access asserted via
// AssertSpatial). Both default to printing a boxed diagnostic and terminating
// the process, matching the original runtime's defaultHandler, which prints
// one line to stderr and calls std::terminate().
package violation

import (
	"fmt"
	"os"

	"github.com/kolkov/depsafe/internal/depsafe/handle"
	"github.com/kolkov/depsafe/internal/depsafe/stacktrace"
)

// Handler is called when validate observes that an object is no longer
// valid. The argument is the handle that was passed to validate, not the
// handle that caused the invalidation — the engine does not track "blame".
type Handler func(a handle.Handle)

// SpatialHandler is called when AssertSpatial observes a failed bounds
// check. It carries no address: the caller is expected to have already
// logged whatever context it has before asserting.
type SpatialHandler func()

// Default prints a boxed diagnostic to stderr and exits the process with a
// nonzero status. Installed automatically on every new Registry.
func Default(a handle.Handle) {
	fmt.Fprintf(os.Stderr, "==================\n")
	fmt.Fprintf(os.Stderr, "WARNING: DEPENDENCY VIOLATION\n")
	fmt.Fprintf(os.Stderr, "object %s was used after a dependency became invalid\n", a)
	fmt.Fprint(os.Stderr, stacktrace.Capture().String())
	fmt.Fprintf(os.Stderr, "==================\n")
	os.Exit(1)
}

// DefaultSpatial prints a boxed diagnostic to stderr and exits the process
// with a nonzero status. Installed automatically on every new Registry.
func DefaultSpatial() {
	fmt.Fprintf(os.Stderr, "==================\n")
	fmt.Fprintf(os.Stderr, "WARNING: SPATIAL ASSERTION FAILED\n")
	fmt.Fprintf(os.Stderr, "an access was rejected by an out-of-bounds check\n")
	fmt.Fprint(os.Stderr, stacktrace.Capture().String())
	fmt.Fprintf(os.Stderr, "==================\n")
	os.Exit(1)
}
