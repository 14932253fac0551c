package deptree

// WalkList calls fn once for every edge in the list headed by head, in
// list order, without modifying the list. Used by the registry to read off
// which objects depend on a given target before deciding which of them to
// cascade-invalidate, without exposing the Edge.next field itself.
func WalkList(head *Edge, fn func(*Edge)) {
	for e := head; e != nil; e = e.next {
		fn(e)
	}
}

// LinkList prepends e onto the incoming list whose head is *head.
//
// Prepending (rather than appending) keeps link O(1) without a tail
// pointer, matching Dependency::link in the original, which always
// inserts at B->incoming[content].
func LinkList(head **Edge, e *Edge) {
	e.prev = nil
	e.next = *head
	if e.next != nil {
		e.next.prev = e
	}
	*head = e
}

// UnlinkList removes e from whichever incoming list it is currently
// linked into, fixing up *head if e was the head. e.prev/e.next are reset
// to nil so a since-unlinked edge is never mistaken for still being in a
// list.
//
// O(1), which is the entire point of using a doubly linked list here:
// invalidation drains a list by repeatedly unlinking its head, and
// individual edges are unlinked out of order on reset and on kind
// upgrade.
func UnlinkList(head **Edge, e *Edge) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		*head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	}
	e.prev, e.next = nil, nil
}
