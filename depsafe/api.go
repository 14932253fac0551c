package depsafe

// def is the process-wide default Engine. Every free function in this
// file delegates to it, so callers who only ever need one dependency
// graph can use depsafe.AddDependency etc. directly instead of carrying
// an *Engine around.
var def = NewEngine()

// Validate reports a violation through the installed handler if a is
// registered and currently invalid.
func Validate(a Handle) {
	def.Validate(a)
}

// AddDependency registers that a depends on b's existence: a becomes
// invalid as soon as b is destroyed.
func AddDependency(a, b Handle) {
	def.AddDependency(a, b)
}

// AddContentDependency registers that a depends on b's content: a becomes
// invalid as soon as b is destroyed or modified.
func AddContentDependency(a, b Handle) {
	def.AddContentDependency(a, b)
}

// IsValid reports whether a is registered and currently valid in the
// default Engine, without invoking the violation handler.
func IsValid(a Handle) bool {
	return def.IsValid(a)
}

// MarkModified invalidates every object whose content depends on b.
func MarkModified(b Handle) {
	def.MarkModified(b)
}

// MarkDestroyed invalidates every object that depended on b's existence or
// content, then removes b from the default Engine.
func MarkDestroyed(b Handle) {
	def.MarkDestroyed(b)
}

// Reset drops a's outgoing edges and marks it valid again.
func Reset(a Handle) {
	def.Reset(a)
}

// PropagateInvalid invalidates a if b is currently invalid; otherwise it
// does nothing.
func PropagateInvalid(a, b Handle) {
	def.PropagateInvalid(a, b)
}

// PropagateContent invalidates a if b is currently invalid; if b is valid,
// it copies b's outgoing content edges onto a instead.
func PropagateContent(a, b Handle) {
	def.PropagateContent(a, b)
}

// SetViolationHandler replaces the handler Validate calls on a violation
// in the default Engine.
func SetViolationHandler(h ViolationHandler) {
	def.SetViolationHandler(h)
}

// SetSpatialHandler replaces the handler AssertSpatial calls on a failed
// check in the default Engine.
func SetSpatialHandler(h SpatialHandler) {
	def.SetSpatialHandler(h)
}

// AssertSpatial reports a spatial failure through the installed handler
// when ok is false.
func AssertSpatial(ok bool) {
	def.AssertSpatial(ok)
}

// CollectStats returns the default Engine's current size and cumulative
// violation counts.
func CollectStats() Stats {
	return def.Stats()
}

// Close shuts the default Engine down. Every operation after Close is a
// no-op until the process restarts.
func Close() {
	def.Close()
}
