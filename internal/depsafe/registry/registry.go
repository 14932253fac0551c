// Package registry implements the dependency-tracking engine itself: the
// map of live objects, the lifecycle guard, and the operations that add
// edges, cascade invalidation, and answer validation queries.
//
// The cascade semantics follow the original runtime's MemorySafety class
// (_examples/original_source/memorysafety.cpp): invalidateIncoming
// invalidates every dependent of a target, and dropping a newly-invalid
// object's own outgoing edges is what empties other objects' incoming
// lists. Where the original cascades by mutual recursion, this package
// drains an explicit work stack (see invalidateAll), and the storage is a
// Go map keyed by handle.Handle instead of
// std::unordered_map<const void*, Object>.
package registry

import (
	"github.com/kolkov/depsafe/internal/depsafe/deptree"
	"github.com/kolkov/depsafe/internal/depsafe/handle"
	"github.com/kolkov/depsafe/internal/depsafe/violation"
)

// object is the per-handle state: validity, the splay tree of edges sourced
// here, and the two incoming lists (by kind) of edges targeting here.
type object struct {
	valid    bool
	outgoing deptree.Tree
	incoming [2]*deptree.Edge
}

// Stats is a point-in-time snapshot of a Registry's size and history.
type Stats struct {
	Objects         int
	Edges           int
	Violations      int64
	SpatialFailures int64
}

// Registry owns one process-wide-shaped dependency graph. It is not safe
// for concurrent use by multiple goroutines: callers who need concurrent
// tracking should run one Registry per goroutine, the way depsafectl's
// replay --dir does.
type Registry struct {
	objects     map[handle.Handle]*object
	initialized bool

	edgeCount       int64
	violations      int64
	spatialFailures int64

	violationHandler violation.Handler
	spatialHandler   violation.SpatialHandler
}

// NewRegistry returns a ready-to-use Registry with the default violation
// and spatial handlers installed.
func NewRegistry() *Registry {
	return &Registry{
		objects:          make(map[handle.Handle]*object),
		initialized:      true,
		violationHandler: violation.Default,
		spatialHandler:   violation.DefaultSpatial,
	}
}

// Close shuts the Registry down: every subsequent call to any operation is
// a no-op. Idempotent.
func (r *Registry) Close() {
	r.initialized = false
}

// Available reports whether the Registry is still accepting operations.
func (r *Registry) Available() bool {
	return r.initialized
}

// Stats returns a snapshot of the Registry's current size and cumulative
// violation counts.
func (r *Registry) Stats() Stats {
	return Stats{
		Objects:         len(r.objects),
		Edges:           int(r.edgeCount),
		Violations:      r.violations,
		SpatialFailures: r.spatialFailures,
	}
}

func (r *Registry) lookupOrCreate(h handle.Handle) *object {
	o, ok := r.objects[h]
	if !ok {
		o = &object{valid: true}
		r.objects[h] = o
	}
	return o
}

// IsValid reports whether a is registered and currently valid. An
// unregistered handle is treated as valid, the same reading Validate uses.
// Unlike Validate, this never invokes the violation handler — it is a pure
// query, for callers (such as depsafectl) that want to inspect state
// without triggering a report.
func (r *Registry) IsValid(a handle.Handle) bool {
	o, ok := r.objects[a]
	return !ok || o.valid
}

// Validate reports a violation through the installed handler if a is
// registered and currently invalid. An unregistered handle is assumed
// valid, matching the original's "missing from lookup means never failed"
// reading of validate.
func (r *Registry) Validate(a handle.Handle) {
	if !r.initialized {
		return
	}
	o, ok := r.objects[a]
	if ok && !o.valid {
		r.violations++
		r.violationHandler(a)
	}
}

// AddDependency registers that a depends on b's existence: a becomes
// invalid as soon as b is destroyed.
func (r *Registry) AddDependency(a, b handle.Handle) {
	r.addEdge(a, b, deptree.KindExistence)
}

// AddContentDependency registers that a depends on b's content: a becomes
// invalid as soon as b is destroyed or modified. If b is already invalid at
// call time, a is invalidated immediately and no edge is recorded.
func (r *Registry) AddContentDependency(a, b handle.Handle) {
	r.addEdge(a, b, deptree.KindContent)
}

// addEdge is the shared body of AddDependency/AddContentDependency, mirroring
// the original's Object::addDependency(target, content) helper used by both
// free functions.
func (r *Registry) addEdge(a, b handle.Handle, k deptree.Kind) {
	if !r.initialized {
		return
	}
	oa := r.lookupOrCreate(a)
	if !oa.valid {
		return
	}
	if k == deptree.KindContent {
		if ob, ok := r.objects[b]; ok && !ob.valid {
			r.invalidate(oa)
			return
		}
	}

	ob := r.lookupOrCreate(b)
	if e := oa.outgoing.Find(b); e != nil {
		if k == deptree.KindContent && e.Kind == deptree.KindExistence {
			deptree.UnlinkList(&ob.incoming[deptree.KindExistence], e)
			e.Kind = deptree.KindContent
			deptree.LinkList(&ob.incoming[deptree.KindContent], e)
		}
		return
	}

	e := oa.outgoing.Insert(a, b, k)
	deptree.LinkList(&ob.incoming[k], e)
	r.edgeCount++
}

// MarkModified invalidates every object whose content depends on b. b
// itself, and its own outgoing edges, are unaffected.
func (r *Registry) MarkModified(b handle.Handle) {
	if !r.initialized {
		return
	}
	ob, ok := r.objects[b]
	if !ok {
		return
	}
	r.invalidateIncoming(ob, true)
}

// MarkDestroyed invalidates every object that depended on b's existence or
// content, then removes b from the Registry entirely, releasing its
// remaining outgoing edges. A later call naming b as either endpoint of a
// new edge simply re-creates a fresh, empty record for it.
func (r *Registry) MarkDestroyed(b handle.Handle) {
	if !r.initialized {
		return
	}
	ob, ok := r.objects[b]
	if !ok {
		return
	}
	r.invalidateIncoming(ob, false)
	r.dropOutgoing(ob)
	delete(r.objects, b)
}

// Reset drops all of a's outgoing edges and marks it valid again. a's
// incoming edges — other objects depending on a — are untouched. If a has
// never been seen before, Reset still leaves it registered and valid.
func (r *Registry) Reset(a handle.Handle) {
	if !r.initialized {
		return
	}
	oa := r.lookupOrCreate(a)
	r.dropOutgoing(oa)
	oa.valid = true
}

// PropagateInvalid copies only b's current validity to a: if b is invalid
// right now, a becomes invalid too. No edge is created, and a later
// mutation of something b depended on has no further effect on a.
func (r *Registry) PropagateInvalid(a, b handle.Handle) {
	if !r.initialized {
		return
	}
	ob, ok := r.objects[b]
	if ok && !ob.valid {
		r.invalidate(r.lookupOrCreate(a))
	}
}

// PropagateContent behaves like PropagateInvalid, but when b is valid it
// also copies b's outgoing content edges onto a, so that a later mutation
// of something b depended on invalidates a as well.
func (r *Registry) PropagateContent(a, b handle.Handle) {
	if !r.initialized {
		return
	}
	ob, ok := r.objects[b]
	if !ok {
		return
	}
	if !ob.valid {
		r.invalidate(r.lookupOrCreate(a))
		return
	}
	oa := r.lookupOrCreate(a)
	if !oa.valid {
		return
	}
	for _, e := range ob.outgoing.Edges() {
		if e.Kind == deptree.KindContent {
			r.addEdge(a, e.Target, deptree.KindContent)
		}
	}
}

// SetViolationHandler replaces the handler invoked by Validate on a
// violation. Passing nil restores violation.Default.
func (r *Registry) SetViolationHandler(h violation.Handler) {
	if h == nil {
		h = violation.Default
	}
	r.violationHandler = h
}

// SetSpatialHandler replaces the handler invoked by AssertSpatial on a
// failed check. Passing nil restores violation.DefaultSpatial.
func (r *Registry) SetSpatialHandler(h violation.SpatialHandler) {
	if h == nil {
		h = violation.DefaultSpatial
	}
	r.spatialHandler = h
}

// AssertSpatial is the one-line bounds-check helper named in the original
// source's util.hpp (assert_spatial): it reports through the spatial
// handler when ok is false, and does nothing otherwise.
func (r *Registry) AssertSpatial(ok bool) {
	if !r.initialized {
		return
	}
	if !ok {
		r.spatialFailures++
		r.spatialHandler()
	}
}

// invalidate marks o invalid and cascades that invalidation through the
// graph. Equivalent to invalidateAll with a single starting object.
func (r *Registry) invalidate(o *object) {
	r.invalidateAll([]*object{o})
}

// invalidateIncoming cascades invalidation to every object with an
// incoming dependency on o, without invalidating o itself. Content
// dependents are collected before existence dependents, matching the
// original's invalidateIncoming processing order.
func (r *Registry) invalidateIncoming(o *object, contentOnly bool) {
	r.invalidateAll(r.collectIncomingSources(o, contentOnly))
}

// collectIncomingSources reads off the source object of every edge in o's
// incoming lists, without modifying either list. contentOnly restricts the
// read to o's content-incoming list.
func (r *Registry) collectIncomingSources(o *object, contentOnly bool) []*object {
	var out []*object
	collect := func(e *deptree.Edge) {
		if src, ok := r.objects[e.Source]; ok {
			out = append(out, src)
		}
	}
	deptree.WalkList(o.incoming[deptree.KindContent], collect)
	if !contentOnly {
		deptree.WalkList(o.incoming[deptree.KindExistence], collect)
	}
	return out
}

// invalidateAll drains an explicit work queue of objects needing
// invalidation, rather than recursing through the dependency graph: a long
// chain of existence dependencies would otherwise cascade through one
// stack frame per link. Each popped object that is still valid is marked
// invalid, has its own outgoing edges dropped (which is what eventually
// empties other objects' incoming lists, as those edges get unlinked), and
// pushes its own content-dependents back onto the queue. An object already
// invalid when popped is skipped — this is what keeps a diamond-shaped
// dependency graph from being processed more than once.
func (r *Registry) invalidateAll(queue []*object) {
	for len(queue) > 0 {
		n := len(queue) - 1
		o := queue[n]
		queue = queue[:n]
		if !o.valid {
			continue
		}
		o.valid = false
		queue = append(queue, r.collectIncomingSources(o, true)...)
		r.dropOutgoing(o)
	}
}

// dropOutgoing removes every edge sourced at o from the tree and from its
// target's incoming list, decrementing the edge count for each.
func (r *Registry) dropOutgoing(o *object) {
	for _, e := range o.outgoing.DropAll() {
		if tgt, ok := r.objects[e.Target]; ok {
			deptree.UnlinkList(&tgt.incoming[e.Kind], e)
		}
		r.edgeCount--
	}
}
