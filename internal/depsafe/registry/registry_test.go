package registry

import (
	"testing"

	"github.com/kolkov/depsafe/internal/depsafe/deptree"
	"github.com/kolkov/depsafe/internal/depsafe/handle"
	"github.com/kolkov/depsafe/internal/depsafe/violation"
)

// recordingHandler returns a violation.Handler that appends every handle it
// is called with to *got. Each test installs it on its own Registry.
func recordingHandler(got *[]handle.Handle) violation.Handler {
	return func(a handle.Handle) { *got = append(*got, a) }
}

// TestNewRegistry verifies a freshly constructed Registry is empty,
// available, and reports zeroed stats.
func TestNewRegistry(t *testing.T) {
	r := NewRegistry()

	if !r.Available() {
		t.Error("NewRegistry() not Available()")
	}
	s := r.Stats()
	if s.Objects != 0 || s.Edges != 0 || s.Violations != 0 || s.SpatialFailures != 0 {
		t.Errorf("Stats() = %+v, want all zero", s)
	}
}

// TestScenario_SimpleDestroy exercises an existence dependency where A depends on B's
// existence; destroying B invalidates A.
func TestScenario_SimpleDestroy(t *testing.T) {
	r := NewRegistry()
	var got []handle.Handle
	r.SetViolationHandler(recordingHandler(&got))

	a, b := handle.New(), handle.New()
	r.AddDependency(a, b)
	r.MarkDestroyed(b)
	r.Validate(a)

	if len(got) != 1 || got[0] != a {
		t.Errorf("violations = %v, want [%v]", got, a)
	}
}

// TestScenario_ContentMutation exercises a content dependency where A depends on B's
// content; modifying B invalidates A, but B itself stays valid.
func TestScenario_ContentMutation(t *testing.T) {
	r := NewRegistry()
	var got []handle.Handle
	r.SetViolationHandler(recordingHandler(&got))

	a, b := handle.New(), handle.New()
	r.AddContentDependency(a, b)
	r.MarkModified(b)
	r.Validate(a)
	r.Validate(b)

	if len(got) != 1 || got[0] != a {
		t.Errorf("violations = %v, want [%v]", got, a)
	}
	if !r.IsValid(b) {
		t.Error("MarkModified(b) should not invalidate b itself")
	}
}

// TestScenario_CopyPropagates exercises the propagate-invalid case where A
// is already invalid (B was destroyed) when C copies A's state via
// PropagateInvalid, so C becomes invalid too.
func TestScenario_CopyPropagates(t *testing.T) {
	r := NewRegistry()
	var got []handle.Handle
	r.SetViolationHandler(recordingHandler(&got))

	a, b, c := handle.New(), handle.New(), handle.New()
	r.AddDependency(a, b)
	r.MarkDestroyed(b)
	r.PropagateInvalid(c, a)
	r.Validate(c)

	if len(got) != 1 || got[0] != c {
		t.Errorf("violations = %v, want [%v]", got, c)
	}
}

// TestScenario_ResetClears exercises the reset case where resetting A after it was
// invalidated drops its outgoing edges and marks it valid again.
func TestScenario_ResetClears(t *testing.T) {
	r := NewRegistry()
	var got []handle.Handle
	r.SetViolationHandler(recordingHandler(&got))

	a, b := handle.New(), handle.New()
	r.AddDependency(a, b)
	r.MarkDestroyed(b)
	r.Reset(a)
	r.Validate(a)

	if len(got) != 0 {
		t.Errorf("violations = %v, want none after Reset", got)
	}
}

// TestScenario_ContentSubsumesExistence exercises the kind-upgrade case where once an
// existence edge is upgraded to content by a second AddContentDependency
// call, modifying the target invalidates the source even though only an
// existence edge was ever expected to matter.
func TestScenario_ContentSubsumesExistence(t *testing.T) {
	r := NewRegistry()
	var got []handle.Handle
	r.SetViolationHandler(recordingHandler(&got))

	a, b := handle.New(), handle.New()
	r.AddDependency(a, b)
	r.AddContentDependency(a, b)
	r.MarkModified(b)
	r.Validate(a)

	if len(got) != 1 || got[0] != a {
		t.Errorf("violations = %v, want [%v]", got, a)
	}
}

// TestScenario_MarkDestroyedCascadesThroughContent exercises the mark-destroyed cascade case where a
// chain of content dependencies (C on A, A on B) cascades all the way
// through when B is destroyed, even though A and B's own relationship was
// never explicitly re-validated.
func TestScenario_MarkDestroyedCascadesThroughContent(t *testing.T) {
	r := NewRegistry()
	var got []handle.Handle
	r.SetViolationHandler(recordingHandler(&got))

	a, b, c := handle.New(), handle.New(), handle.New()
	r.AddContentDependency(a, b)
	r.AddContentDependency(c, a)
	r.MarkDestroyed(b)
	r.Validate(c)

	if len(got) != 1 || got[0] != c {
		t.Errorf("violations = %v, want [%v]", got, c)
	}
}

// TestInvariant_I1_UnregisteredHandleIsValid verifies a handle that has
// never been mentioned to the Registry reads as valid and reports no
// violation.
func TestInvariant_I1_UnregisteredHandleIsValid(t *testing.T) {
	r := NewRegistry()
	var got []handle.Handle
	r.SetViolationHandler(recordingHandler(&got))

	h := handle.New()
	if !r.IsValid(h) {
		t.Error("IsValid(never-seen handle) = false, want true")
	}
	r.Validate(h)
	if len(got) != 0 {
		t.Errorf("Validate(never-seen handle) reported %v, want no violation", got)
	}
}

// TestInvariant_I2_EdgeUnlinkedFromBothStructures verifies that once an
// edge is removed (via Reset dropping A's outgoing edges), it is gone from
// both A's outgoing tree and B's incoming list: re-adding the same
// dependency afterward creates a brand new edge rather than colliding with
// a dangling one.
func TestInvariant_I2_EdgeUnlinkedFromBothStructures(t *testing.T) {
	r := NewRegistry()
	a, b := handle.New(), handle.New()

	r.AddDependency(a, b)
	if r.Stats().Edges != 1 {
		t.Fatalf("Stats().Edges = %d, want 1", r.Stats().Edges)
	}

	r.Reset(a)
	if r.Stats().Edges != 0 {
		t.Fatalf("Stats().Edges after Reset = %d, want 0", r.Stats().Edges)
	}

	// Destroying b now must invalidate nothing: a's edge to b is gone.
	var got []handle.Handle
	r.SetViolationHandler(recordingHandler(&got))
	r.MarkDestroyed(b)
	r.Validate(a)
	if len(got) != 0 {
		t.Errorf("violations = %v, want none: a's dependency on b was reset away", got)
	}

	// Re-adding must work cleanly, with no leftover list/tree state.
	r.AddDependency(a, b)
	if r.Stats().Edges != 1 {
		t.Errorf("Stats().Edges after re-adding = %d, want 1", r.Stats().Edges)
	}
}

// TestInvariant_I6_KindNeverDowngrades verifies that once an edge is
// upgraded from existence to content, a later AddDependency call (which
// would, on its own, only ask for existence) does not downgrade it: the
// target's content-incoming list keeps the edge.
func TestInvariant_I6_KindNeverDowngrades(t *testing.T) {
	r := NewRegistry()
	a, b := handle.New(), handle.New()

	r.AddDependency(a, b)
	r.AddContentDependency(a, b)
	// Asking for existence again must not downgrade the now-content edge.
	r.AddDependency(a, b)

	var got []handle.Handle
	r.SetViolationHandler(recordingHandler(&got))
	r.MarkModified(b)
	r.Validate(a)

	if len(got) != 1 || got[0] != a {
		t.Errorf("violations = %v, want [%v]: edge should still be content-kind", got, a)
	}
}

// TestRoundtrip_R1_DoubleAddDependencyIdempotent verifies adding the same
// existence dependency twice records exactly one edge.
func TestRoundtrip_R1_DoubleAddDependencyIdempotent(t *testing.T) {
	r := NewRegistry()
	a, b := handle.New(), handle.New()

	r.AddDependency(a, b)
	r.AddDependency(a, b)

	if got := r.Stats().Edges; got != 1 {
		t.Errorf("Stats().Edges after double AddDependency = %d, want 1", got)
	}
}

// TestRoundtrip_R2_UpgradeThenNoDowngrade verifies the order
// AddDependency, AddContentDependency, AddDependency ends with exactly one
// content edge (see also TestInvariant_I6_KindNeverDowngrades, which checks
// the observable effect of this on MarkModified).
func TestRoundtrip_R2_UpgradeThenNoDowngrade(t *testing.T) {
	r := NewRegistry()
	a, b := handle.New(), handle.New()

	r.AddDependency(a, b)
	r.AddContentDependency(a, b)
	r.AddDependency(a, b)

	if got := r.Stats().Edges; got != 1 {
		t.Errorf("Stats().Edges = %d, want 1", got)
	}

	oa := r.objects[a]
	e := oa.outgoing.Find(b)
	if e == nil {
		t.Fatal("edge a->b missing")
	}
	if e.Kind != deptree.KindContent {
		t.Errorf("edge kind = %v, want KindContent", e.Kind)
	}
}

// TestRoundtrip_R3_DoubleMarkDestroyedNoOp verifies a second MarkDestroyed
// on an already-destroyed handle is a harmless no-op.
func TestRoundtrip_R3_DoubleMarkDestroyedNoOp(t *testing.T) {
	r := NewRegistry()
	a, b := handle.New(), handle.New()
	var got []handle.Handle
	r.SetViolationHandler(recordingHandler(&got))

	r.AddDependency(a, b)
	r.MarkDestroyed(b)
	r.MarkDestroyed(b) // must not panic or double-report

	r.Validate(a)
	if len(got) != 1 {
		t.Errorf("violations = %v, want exactly one report of a", got)
	}
}

// TestMarkDestroyed_ReleasesOwnOutgoingEdges verifies B's own outgoing
// edges are dropped, not just its incoming lists, when B is destroyed: the
// edge count falls to zero, not just by the one edge that targeted B.
func TestMarkDestroyed_ReleasesOwnOutgoingEdges(t *testing.T) {
	r := NewRegistry()
	a, b, c := handle.New(), handle.New(), handle.New()

	r.AddDependency(b, c) // b itself depends on c
	r.AddDependency(a, b) // a depends on b

	if got := r.Stats().Edges; got != 2 {
		t.Fatalf("Stats().Edges = %d, want 2", got)
	}

	r.MarkDestroyed(b)

	if got := r.Stats().Edges; got != 0 {
		t.Errorf("Stats().Edges after MarkDestroyed(b) = %d, want 0 (b's own outgoing edge to c must be released too)", got)
	}
}

// TestDiamond_InvalidatedOnce verifies a diamond-shaped dependency graph
// (D depends on both B and C, which both depend on A) invalidates D
// exactly once when A is destroyed, rather than being processed twice
// because it is reachable via two paths.
func TestDiamond_InvalidatedOnce(t *testing.T) {
	r := NewRegistry()
	var got []handle.Handle
	r.SetViolationHandler(recordingHandler(&got))

	a, b, c, d := handle.New(), handle.New(), handle.New(), handle.New()
	r.AddContentDependency(b, a)
	r.AddContentDependency(c, a)
	r.AddContentDependency(d, b)
	r.AddContentDependency(d, c)

	r.MarkDestroyed(a)
	r.Validate(d)

	count := 0
	for _, h := range got {
		if h == d {
			count++
		}
	}
	if count != 1 {
		t.Errorf("d reported %d times, want exactly 1 (diamond must not double-process)", count)
	}
}

// TestLongChain_CascadesWithoutPanicking builds a long chain of content
// dependencies and destroys the root, as a bounded stress check that the
// explicit work-queue cascade handles a chain far longer than any
// reasonable native call stack could recurse through before this test
// would otherwise start failing for unrelated reasons.
func TestLongChain_CascadesWithoutPanicking(t *testing.T) {
	r := NewRegistry()
	var got []handle.Handle
	r.SetViolationHandler(recordingHandler(&got))

	const chainLength = 10000
	handles := make([]handle.Handle, chainLength)
	for i := range handles {
		handles[i] = handle.New()
	}
	for i := 1; i < chainLength; i++ {
		r.AddContentDependency(handles[i], handles[i-1])
	}

	r.MarkDestroyed(handles[0])

	for _, h := range handles[1:] {
		r.Validate(h)
	}

	if len(got) != chainLength-1 {
		t.Errorf("reported %d violations, want %d", len(got), chainLength-1)
	}
}

// TestPropagateContent_CopiesOutgoingContentEdges verifies PropagateContent
// copies B's outgoing content edges onto A, so a later mutation of
// something B depended on invalidates A too, even though A never directly
// named that dependency.
func TestPropagateContent_CopiesOutgoingContentEdges(t *testing.T) {
	r := NewRegistry()
	var got []handle.Handle
	r.SetViolationHandler(recordingHandler(&got))

	a, b, target := handle.New(), handle.New(), handle.New()
	r.AddContentDependency(b, target)
	r.PropagateContent(a, b)

	r.MarkModified(target)
	r.Validate(a)

	if len(got) != 1 || got[0] != a {
		t.Errorf("violations = %v, want [%v]", got, a)
	}
}

// TestPropagateContent_BInvalidPropagatesImmediately verifies that if B is
// already invalid when PropagateContent is called, A is invalidated right
// away and no edges are copied.
func TestPropagateContent_BInvalidPropagatesImmediately(t *testing.T) {
	r := NewRegistry()
	a, b, target := handle.New(), handle.New(), handle.New()

	r.AddDependency(b, target)
	r.MarkDestroyed(target)

	var got []handle.Handle
	r.SetViolationHandler(recordingHandler(&got))
	r.PropagateContent(a, b)
	r.Validate(a)

	if len(got) != 1 || got[0] != a {
		t.Errorf("violations = %v, want [%v]", got, a)
	}
}

// TestAddContentDependency_TargetAlreadyInvalid verifies adding a content
// dependency on a target that is already invalid (but still present in the
// Registry, as MarkModified leaves it) invalidates the source immediately
// instead of recording a stale edge.
func TestAddContentDependency_TargetAlreadyInvalid(t *testing.T) {
	r := NewRegistry()
	x, b := handle.New(), handle.New()

	r.AddContentDependency(b, x)
	r.MarkModified(x) // b is now invalid, but still present in the Registry

	var got []handle.Handle
	r.SetViolationHandler(recordingHandler(&got))
	c := handle.New()
	r.AddContentDependency(c, b)
	r.Validate(c)

	if len(got) != 1 || got[0] != c {
		t.Errorf("violations = %v, want [%v]: b is already invalid, c must be invalidated on addition", got, c)
	}
	if got := r.Stats().Edges; got != 0 {
		t.Errorf("Stats().Edges = %d, want 0: no edge should be recorded for c->b since b is already invalid", got)
	}
}

// TestClose_SilencesFurtherOperations verifies every public operation
// becomes a no-op after Close, even though the Registry's map and handlers
// are still in place.
func TestClose_SilencesFurtherOperations(t *testing.T) {
	r := NewRegistry()
	a, b := handle.New(), handle.New()
	r.AddDependency(a, b)
	r.Close()

	if r.Available() {
		t.Error("Available() = true after Close()")
	}

	var got []handle.Handle
	r.SetViolationHandler(recordingHandler(&got))
	r.MarkDestroyed(b)
	r.Validate(a)
	r.AssertSpatial(false)

	if len(got) != 0 {
		t.Errorf("violations after Close() = %v, want none", got)
	}
}

// TestAssertSpatial verifies AssertSpatial reports through the spatial
// handler only on failure, and increments the spatial failure counter.
func TestAssertSpatial(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.SetSpatialHandler(func() { calls++ })

	r.AssertSpatial(true)
	if calls != 0 {
		t.Errorf("AssertSpatial(true) invoked handler %d times, want 0", calls)
	}

	r.AssertSpatial(false)
	if calls != 1 {
		t.Errorf("AssertSpatial(false) invoked handler %d times, want 1", calls)
	}
	if got := r.Stats().SpatialFailures; got != 1 {
		t.Errorf("Stats().SpatialFailures = %d, want 1", got)
	}
}

// TestSetViolationHandler_NilRestoresDefault verifies passing nil restores
// violation.Default rather than leaving the Registry without a handler.
func TestSetViolationHandler_NilRestoresDefault(t *testing.T) {
	r := NewRegistry()
	r.SetViolationHandler(func(handle.Handle) {})
	r.SetViolationHandler(nil)

	if r.violationHandler == nil {
		t.Fatal("violationHandler is nil after SetViolationHandler(nil)")
	}
}
