// Package depsafe provides a process-wide dependency-tracking runtime for
// temporal and content memory safety: "A depends on B's existence" and "A
// depends on B's content being unchanged."
//
// # Quick Start
//
//	package main
//
//	import "github.com/kolkov/depsafe/depsafe"
//
//	func main() {
//		file := depsafe.NewHandle()
//		cursor := depsafe.NewHandle()
//
//		depsafe.AddDependency(cursor, file) // cursor depends on file existing
//
//		depsafe.MarkDestroyed(file)
//		depsafe.Validate(cursor) // reports a violation: cursor outlived file
//	}
//
// # API Overview
//
// The package provides functions for:
//   - Registering dependencies: [AddDependency], [AddContentDependency]
//   - Lifecycle notifications: [MarkModified], [MarkDestroyed]
//   - Queries: [Validate]
//   - Collaborator bookkeeping: [Reset], [PropagateInvalid], [PropagateContent]
//   - Reporting: [SetViolationHandler], [SetSpatialHandler], [AssertSpatial]
//   - Identity: [NewHandle]
//
// Every function above operates on a process-wide default [Engine]. Callers
// that need more than one independent graph — for example, to replay
// several scenarios concurrently — should construct their own [Engine]
// with [NewEngine] instead; an Engine is not safe for concurrent use by
// more than one goroutine at a time, so each concurrent replay gets its
// own.
//
// # How It Works
//
// Every tracked collaborator mints a [Handle] once, at construction, and
// passes it wherever the original design would pass a raw pointer. Adding
// a dependency inserts an edge into the source object's outgoing splay
// tree and the target object's incoming list; destroying or modifying an
// object walks its incoming lists and invalidates every dependent,
// cascading through the graph. Validate is O(1): it just checks a flag.
//
// # Non-goals
//
// depsafe is not a garbage collector and does not free or track the
// lifetime of any actual user memory — it only tracks relationships
// between opaque handles supplied by the caller. It is not a bounds
// checker beyond the one-line [AssertSpatial] helper, and it performs no
// type-punning detection.
package depsafe
