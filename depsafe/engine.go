package depsafe

import (
	"github.com/kolkov/depsafe/internal/depsafe/handle"
	"github.com/kolkov/depsafe/internal/depsafe/registry"
	"github.com/kolkov/depsafe/internal/depsafe/violation"
)

// Handle is an opaque, comparable object identity. Obtain one with
// NewHandle and use it as a collaborator's own identity for the rest of
// its lifetime.
type Handle = handle.Handle

// Stats is a point-in-time snapshot of an Engine's size and violation
// history.
type Stats = registry.Stats

// ViolationHandler is called by Validate when it finds a registered
// object invalid.
type ViolationHandler = violation.Handler

// SpatialHandler is called by AssertSpatial on a failed bounds check.
type SpatialHandler = violation.SpatialHandler

// NewHandle mints a fresh, process-wide-unique Handle. Safe for
// concurrent use even though an Engine itself is not.
func NewHandle() Handle {
	return handle.New()
}

// Engine is one dependency graph: a set of tracked objects and the edges
// between them. An Engine is not safe for concurrent use from multiple
// goroutines — callers that need concurrent tracking should run one Engine
// per goroutine, the way depsafectl's "replay --dir" does.
type Engine struct {
	r *registry.Registry
}

// NewEngine returns a ready-to-use Engine with the default violation and
// spatial handlers installed.
func NewEngine() *Engine {
	return &Engine{r: registry.NewRegistry()}
}

// Close shuts the Engine down. Every operation after Close is a no-op.
// Idempotent.
func (e *Engine) Close() {
	e.r.Close()
}

// Stats returns the Engine's current size and cumulative violation counts.
func (e *Engine) Stats() Stats {
	return e.r.Stats()
}

// Validate reports a violation through the installed handler if a is
// registered and currently invalid.
func (e *Engine) Validate(a Handle) {
	e.r.Validate(a)
}

// IsValid reports whether a is registered and currently valid, without
// invoking the violation handler.
func (e *Engine) IsValid(a Handle) bool {
	return e.r.IsValid(a)
}

// AddDependency registers that a depends on b's existence.
func (e *Engine) AddDependency(a, b Handle) {
	e.r.AddDependency(a, b)
}

// AddContentDependency registers that a depends on b's content.
func (e *Engine) AddContentDependency(a, b Handle) {
	e.r.AddContentDependency(a, b)
}

// MarkModified invalidates every object whose content depends on b.
func (e *Engine) MarkModified(b Handle) {
	e.r.MarkModified(b)
}

// MarkDestroyed invalidates every object that depended on b and removes b
// from the Engine.
func (e *Engine) MarkDestroyed(b Handle) {
	e.r.MarkDestroyed(b)
}

// Reset drops a's outgoing edges and marks it valid again.
func (e *Engine) Reset(a Handle) {
	e.r.Reset(a)
}

// PropagateInvalid invalidates a if b is currently invalid; otherwise it
// does nothing.
func (e *Engine) PropagateInvalid(a, b Handle) {
	e.r.PropagateInvalid(a, b)
}

// PropagateContent invalidates a if b is currently invalid; if b is valid,
// it copies b's outgoing content edges onto a instead.
func (e *Engine) PropagateContent(a, b Handle) {
	e.r.PropagateContent(a, b)
}

// SetViolationHandler replaces the handler Validate calls on a violation.
// Passing nil restores the default (print and exit).
func (e *Engine) SetViolationHandler(h ViolationHandler) {
	e.r.SetViolationHandler(h)
}

// SetSpatialHandler replaces the handler AssertSpatial calls on a failed
// check. Passing nil restores the default (print and exit).
func (e *Engine) SetSpatialHandler(h SpatialHandler) {
	e.r.SetSpatialHandler(h)
}

// AssertSpatial reports a spatial failure through the installed handler
// when ok is false.
func (e *Engine) AssertSpatial(ok bool) {
	e.r.AssertSpatial(ok)
}
