package tree

import "fmt"

// invalidate marks id and its whole subtree dead. Handles into the
// subtree obtained earlier become invalid; Node returns nil for them.
func (t *Tree) invalidate(id NodeID) {
	n := t.arena.get(uint32(id))
	if n == nil || !n.alive {
		return
	}
	n.alive = false
	for _, child := range n.Children {
		t.invalidate(child)
	}
}

// childIndex returns the slot of child in parent's child list.
func (t *Tree) childIndex(parent, child NodeID) (int, error) {
	p := t.Node(parent)
	if p == nil {
		return 0, fmt.Errorf("tree: invalid parent handle %d", parent)
	}
	for i, c := range p.Children {
		if c == child {
			return i, nil
		}
	}
	return 0, fmt.Errorf("tree: node %d is not a child of %d", child, parent)
}

// allocSynthetic creates a detached synthetic node carrying text.
func (t *Tree) allocSynthetic(parent NodeID, depth uint32, text string) NodeID {
	id := NodeID(t.arena.alloc(Node{
		Parent: parent,
		Kind:   KindSynthetic,
		Text:   text,
		Depth:  depth,
		alive:  true,
	}))
	t.arena.get(uint32(id)).ID = id
	return id
}

// replaceNode swaps old for a synthetic node with text, invalidating
// old's subtree. Replacing the root is allowed.
func (t *Tree) replaceNode(old NodeID, text string) error {
	n := t.Node(old)
	if n == nil {
		return fmt.Errorf("tree: replace of invalid handle %d", old)
	}
	parent, depth := n.Parent, n.Depth

	if parent == NoNode {
		t.invalidate(old)
		t.root = t.allocSynthetic(NoNode, 0, text)
		return nil
	}

	idx, err := t.childIndex(parent, old)
	if err != nil {
		return err
	}
	t.invalidate(old)
	fresh := t.allocSynthetic(parent, depth, text)
	t.Node(parent).Children[idx] = fresh
	return nil
}

// insertSibling places a synthetic node next to anchor, before it when
// before is true. The anchor must not be the root.
func (t *Tree) insertSibling(anchor NodeID, text string, before bool) error {
	n := t.Node(anchor)
	if n == nil {
		return fmt.Errorf("tree: insert at invalid handle %d", anchor)
	}
	if n.Parent == NoNode {
		return fmt.Errorf("tree: cannot insert a sibling of the root")
	}

	idx, err := t.childIndex(n.Parent, anchor)
	if err != nil {
		return err
	}
	if !before {
		idx++
	}
	fresh := t.allocSynthetic(n.Parent, n.Depth, text)
	p := t.Node(n.Parent)
	p.Children = append(p.Children, NoNode)
	copy(p.Children[idx+1:], p.Children[idx:])
	p.Children[idx] = fresh
	return nil
}

// deleteNode detaches id from its parent and invalidates its subtree.
func (t *Tree) deleteNode(id NodeID) error {
	n := t.Node(id)
	if n == nil {
		return fmt.Errorf("tree: delete of invalid handle %d", id)
	}
	if n.Parent == NoNode {
		return fmt.Errorf("tree: cannot delete the root")
	}

	idx, err := t.childIndex(n.Parent, id)
	if err != nil {
		return err
	}
	p := t.Node(n.Parent)
	p.Children = append(p.Children[:idx], p.Children[idx+1:]...)
	t.invalidate(id)
	return nil
}
