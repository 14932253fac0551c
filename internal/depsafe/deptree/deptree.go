// Package deptree implements the intrusive dual-membership structure at the
// heart of the dependency graph engine: every edge lives simultaneously in
// a splay tree (keyed by target, rooted at its source) and in one of its
// target's two doubly linked incoming lists (keyed by kind).
//
// The algorithm is transcribed from the splay-tree dependency store in the
// original C++ runtime (MemorySafety::Object::addDependency / splay /
// leftRotate / rightRotate, and Dependency::link / unlink): same rotation
// cases, same link-at-head list discipline, same single-node-per-ordered-
// pair invariant. Handles replace raw pointers as the tree's sort key.
package deptree

import "github.com/kolkov/depsafe/internal/depsafe/handle"

// Kind distinguishes an existence edge from a content edge.
//
// The two form a small lattice: KindContent subsumes KindExistence for
// propagation purposes (an edge can be upgraded from existence to content,
// never downgraded).
type Kind int

const (
	// KindExistence invalidates its source when the target is destroyed.
	KindExistence Kind = iota
	// KindContent invalidates its source when the target is destroyed OR
	// modified.
	KindContent
)

// Edge is a single dependency record: source depends on target, with the
// given kind. It is a member of exactly two structures at once: the source
// object's outgoing splay tree (via parent/left/right) and the target
// object's incoming list for this kind (via prev/next).
type Edge struct {
	Source, Target handle.Handle
	Kind           Kind

	parent, left, right *Edge
	prev, next           *Edge
}

// Tree is the splay tree of a single object's outgoing edges, keyed by
// target handle.
type Tree struct {
	root *Edge
}

// Empty reports whether the tree has no edges.
func (t *Tree) Empty() bool { return t.root == nil }

// Find returns the edge targeting target, splaying it to the root if
// found. Returns nil if no such edge exists; in that case the tree is left
// unmodified (no splay occurs on a failed search, matching the original,
// which only ever splays on a hit or a fresh insert).
func (t *Tree) Find(target handle.Handle) *Edge {
	n := t.root
	for n != nil {
		switch {
		case target < n.Target:
			n = n.left
		case target > n.Target:
			n = n.right
		default:
			t.splay(n)
			return n
		}
	}
	return nil
}

// Insert creates and links a new edge from source to target with kind k,
// inserts it at its BST position, and splays it to the root.
//
// The caller must already have established (via Find) that no edge to
// target exists; Insert does not check.
func (t *Tree) Insert(source, target handle.Handle, k Kind) *Edge {
	e := &Edge{Source: source, Target: target, Kind: k}

	var parent *Edge
	n := t.root
	for n != nil {
		parent = n
		if target < n.Target {
			n = n.left
		} else {
			n = n.right
		}
	}
	e.parent = parent
	switch {
	case parent == nil:
		t.root = e
	case target < parent.Target:
		parent.left = e
	default:
		parent.right = e
	}

	t.splay(e)
	return e
}

// Remove unlinks e from the tree. e must belong to this tree.
//
// This is the standard "splay to root, join left and right subtrees"
// deletion: splay e to the root, then splice its left subtree's maximum
// (found by descending right) up to take e's place. The original C++ never
// needs a standalone delete-by-splay because invalidate() walks and frees
// the whole tree at once (see DropAll). The registry does the same: both
// invalidation and reset(A) drop a tree through DropAll, so nothing in the
// registry calls Remove.
func (t *Tree) Remove(e *Edge) {
	t.splay(e)
	// e is now the root.
	left, right := e.left, e.right
	if left == nil {
		t.root = right
		if right != nil {
			right.parent = nil
		}
		e.left, e.right, e.parent = nil, nil, nil
		return
	}
	left.parent = nil
	maxLeft := left
	for maxLeft.right != nil {
		maxLeft = maxLeft.right
	}
	// Splaying within the detached left subtree brings its maximum to the
	// top without needing a tree-handle for the subtree itself.
	splayWithinSubtree(&left, maxLeft)
	left.right = right
	if right != nil {
		right.parent = left
	}
	t.root = left
	e.left, e.right, e.parent = nil, nil, nil
}

// DropAll removes every edge from the tree and returns them as a slice in
// no particular order, resetting the tree to empty. Each returned edge is
// detached from the tree (parent/left/right cleared) but is NOT unlinked
// from its target's incoming list — the caller owns that step, since it
// needs to happen while iterating target objects, not tree nodes.
func (t *Tree) DropAll() []*Edge {
	var out []*Edge
	var walk func(*Edge)
	walk = func(n *Edge) {
		if n == nil {
			return
		}
		walk(n.left)
		walk(n.right)
		n.parent, n.left, n.right = nil, nil, nil
		out = append(out, n)
	}
	walk(t.root)
	t.root = nil
	return out
}

// Edges returns every edge currently in the tree, in no particular order,
// without disturbing tree shape or list membership. Used by
// propagate-content, which needs to read B's outgoing content edges and
// re-issue them with a different source while leaving B's own tree intact.
func (t *Tree) Edges() []*Edge {
	var out []*Edge
	var walk func(*Edge)
	walk = func(n *Edge) {
		if n == nil {
			return
		}
		walk(n.left)
		out = append(out, n)
		walk(n.right)
	}
	walk(t.root)
	return out
}

// splay rotates e to the root of t using the standard zig / zig-zig /
// zig-zag cases, transcribed from the original's Object::splay.
func (t *Tree) splay(e *Edge) {
	for e.parent != nil {
		p := e.parent
		gp := p.parent
		switch {
		case gp == nil:
			// zig
			if p.left == e {
				t.rotateRight(p)
			} else {
				t.rotateLeft(p)
			}
		case gp.left == p && p.left == e:
			// zig-zig
			t.rotateRight(gp)
			t.rotateRight(p)
		case gp.right == p && p.right == e:
			// zig-zig
			t.rotateLeft(gp)
			t.rotateLeft(p)
		case gp.left == p && p.right == e:
			// zig-zag
			t.rotateLeft(p)
			t.rotateRight(gp)
		default:
			// zig-zag
			t.rotateRight(p)
			t.rotateLeft(gp)
		}
	}
}

func (t *Tree) rotateLeft(e *Edge) {
	o := e.right
	if o != nil {
		e.right = o.left
		if o.left != nil {
			o.left.parent = e
		}
		o.parent = e.parent
	}
	t.reparent(e, o)
	if o != nil {
		o.left = e
	}
	e.parent = o
}

func (t *Tree) rotateRight(e *Edge) {
	o := e.left
	if o != nil {
		e.left = o.right
		if o.right != nil {
			o.right.parent = e
		}
		o.parent = e.parent
	}
	t.reparent(e, o)
	if o != nil {
		o.right = e
	}
	e.parent = o
}

// reparent rewires whatever pointed at e (t.root, or e's former parent's
// left/right) to point at o instead.
func (t *Tree) reparent(e, o *Edge) {
	switch {
	case e.parent == nil:
		t.root = o
	case e.parent.left == e:
		e.parent.left = o
	default:
		e.parent.right = o
	}
}

// splayWithinSubtree splays target to the root of a detached subtree whose
// current root is *rootp, rewriting *rootp in place. Used by Remove, which
// operates on a subtree that isn't (yet) attached to any Tree.
func splayWithinSubtree(rootp **Edge, target *Edge) {
	t := Tree{root: *rootp}
	t.splay(target)
	*rootp = t.root
}
