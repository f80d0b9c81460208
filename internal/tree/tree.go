// Package tree holds the mutable syntax tree the repair engine operates
// on. Nodes live in an arena and are addressed by stable NodeID handles;
// mutations invalidate the handles of every node they detach, and the
// engine must never dereference an invalidated handle. Language backends
// build trees from parsed source, attaching their native node as Payload.
package tree

import (
	"mend/internal/source"
)

// KindSynthetic tags nodes created by edits rather than by a parser.
const KindSynthetic = "Synthetic"

// Node is one element of the tree. Span is the node's byte range in the
// original file; synthetic nodes carry replacement Text instead.
type Node struct {
	ID       NodeID
	Parent   NodeID
	Kind     string
	Span     source.Span
	Text     string // synthetic nodes only
	Payload  any    // backend-native node, e.g. go/ast.Node
	Children []NodeID
	Depth    uint32

	alive bool
}

// Tree owns the arena of nodes for one file.
type Tree struct {
	file  *source.File
	arena *arena[Node]
	root  NodeID
}

// New creates an empty tree over file.
func New(file *source.File) *Tree {
	return &Tree{
		file:  file,
		arena: newArena[Node](256),
	}
}

// File returns the file this tree was parsed from.
func (t *Tree) File() *source.File { return t.file }

// Root returns the root handle, or NoNode for an empty tree.
func (t *Tree) Root() NodeID { return t.root }

// Len returns the number of allocated nodes, dead ones included.
func (t *Tree) Len() int { return int(t.arena.len()) }

// AddRoot allocates the root node. Calling it twice is a programming
// error and panics.
func (t *Tree) AddRoot(kind string, span source.Span, payload any) NodeID {
	if t.root != NoNode {
		panic("tree: root already set")
	}
	id := NodeID(t.arena.alloc(Node{
		Kind:    kind,
		Span:    span,
		Payload: payload,
		Depth:   0,
		alive:   true,
	}))
	t.arena.get(uint32(id)).ID = id
	t.root = id
	return id
}

// Add allocates a node as the last child of parent.
func (t *Tree) Add(parent NodeID, kind string, span source.Span, payload any) NodeID {
	p := t.arena.get(uint32(parent))
	if p == nil || !p.alive {
		panic("tree: adding child to invalid parent")
	}
	id := NodeID(t.arena.alloc(Node{
		Parent:  parent,
		Kind:    kind,
		Span:    span,
		Payload: payload,
		Depth:   p.Depth + 1,
		alive:   true,
	}))
	n := t.arena.get(uint32(id))
	n.ID = id
	// re-fetch: alloc may have grown the arena and moved p
	p = t.arena.get(uint32(parent))
	p.Children = append(p.Children, id)
	return id
}

// Node returns the node for a handle, or nil for NoNode, an out-of-range
// handle, or a handle invalidated by a mutation.
func (t *Tree) Node(id NodeID) *Node {
	if !id.IsValid() {
		return nil
	}
	n := t.arena.get(uint32(id))
	if n == nil || !n.alive {
		return nil
	}
	return n
}

// Valid reports whether the handle still refers to a live node.
func (t *Tree) Valid(id NodeID) bool {
	return t.Node(id) != nil
}

// Depth returns the node's depth, with the root at 0. Invalid handles
// report 0.
func (t *Tree) Depth(id NodeID) uint32 {
	if n := t.Node(id); n != nil {
		return n.Depth
	}
	return 0
}

// IsAncestor reports whether a is a proper ancestor of b.
func (t *Tree) IsAncestor(a, b NodeID) bool {
	if a == b || !t.Valid(a) {
		return false
	}
	n := t.Node(b)
	for n != nil && n.Parent.IsValid() {
		if n.Parent == a {
			return true
		}
		n = t.Node(n.Parent)
	}
	return false
}

// Text returns the original source bytes covered by span.
func (t *Tree) Text(span source.Span) string {
	content := t.file.Content
	if int(span.Start) > len(content) || int(span.End) > len(content) || span.Start > span.End {
		return ""
	}
	return string(content[span.Start:span.End])
}

// Walk visits nodes in preorder starting at the root. The callback
// returns false to skip the node's subtree. Dead nodes are not visited.
func (t *Tree) Walk(fn func(id NodeID, n *Node) bool) {
	t.walkFrom(t.root, fn)
}

func (t *Tree) walkFrom(id NodeID, fn func(id NodeID, n *Node) bool) {
	n := t.Node(id)
	if n == nil {
		return
	}
	if !fn(id, n) {
		return
	}
	for _, child := range n.Children {
		t.walkFrom(child, fn)
	}
}
