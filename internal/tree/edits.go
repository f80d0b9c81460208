package tree

import (
	"fmt"
	"sort"

	"mend/internal/source"
)

// EditOp is the primitive kind of a structural edit.
type EditOp uint8

const (
	OpReplace EditOp = iota
	OpInsertBefore
	OpInsertAfter
	OpDelete
)

func (op EditOp) String() string {
	switch op {
	case OpReplace:
		return "replace"
	case OpInsertBefore:
		return "insert-before"
	case OpInsertAfter:
		return "insert-after"
	case OpDelete:
		return "delete"
	}
	return "unknown"
}

// Edit is one primitive edit against a live node handle.
type Edit struct {
	Op      EditOp
	Node    NodeID
	NewText string
}

// EditSet is the ordered batch of edits one processor invocation
// produced. Processors describe edits; only the engine applies them.
type EditSet struct {
	Edits []Edit
}

func (s *EditSet) Replace(node NodeID, text string) *EditSet {
	s.Edits = append(s.Edits, Edit{Op: OpReplace, Node: node, NewText: text})
	return s
}

func (s *EditSet) InsertBefore(anchor NodeID, text string) *EditSet {
	s.Edits = append(s.Edits, Edit{Op: OpInsertBefore, Node: anchor, NewText: text})
	return s
}

func (s *EditSet) InsertAfter(anchor NodeID, text string) *EditSet {
	s.Edits = append(s.Edits, Edit{Op: OpInsertAfter, Node: anchor, NewText: text})
	return s
}

func (s *EditSet) Delete(node NodeID) *EditSet {
	s.Edits = append(s.Edits, Edit{Op: OpDelete, Node: node})
	return s
}

func (s EditSet) Empty() bool { return len(s.Edits) == 0 }

// TextEdit is the textual projection of one applied structural edit,
// expressed against the original file bytes. OldText guards the render
// step against stale spans.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// Apply performs the batch on the tree and returns the implied text
// edits. Validation happens up front: if any referenced handle is dead
// the whole batch is rejected and the tree is left untouched. Edits are
// applied deepest-first so that no edit invalidates the anchor of a
// not-yet-applied sibling edit.
func (t *Tree) Apply(set EditSet) ([]TextEdit, error) {
	for _, e := range set.Edits {
		if !t.Valid(e.Node) {
			return nil, fmt.Errorf("tree: %s references invalid handle %d", e.Op, e.Node)
		}
	}

	ordered := make([]Edit, len(set.Edits))
	copy(ordered, set.Edits)
	sort.SliceStable(ordered, func(i, j int) bool {
		di, dj := t.Depth(ordered[i].Node), t.Depth(ordered[j].Node)
		if di != dj {
			return di > dj
		}
		return t.Node(ordered[i].Node).Span.Start > t.Node(ordered[j].Node).Span.Start
	})

	out := make([]TextEdit, 0, len(ordered))
	for _, e := range ordered {
		n := t.Node(e.Node)
		if n == nil {
			// A previous edit in the same set consumed this node; the
			// processor produced overlapping edits.
			return out, fmt.Errorf("tree: %s target %d invalidated within the batch", e.Op, e.Node)
		}
		span := n.Span

		switch e.Op {
		case OpReplace:
			if err := t.replaceNode(e.Node, e.NewText); err != nil {
				return out, err
			}
			out = append(out, TextEdit{Span: span, NewText: e.NewText, OldText: t.Text(span)})

		case OpInsertBefore:
			if err := t.insertSibling(e.Node, e.NewText, true); err != nil {
				return out, err
			}
			at := source.Span{File: span.File, Start: span.Start, End: span.Start}
			out = append(out, TextEdit{Span: at, NewText: e.NewText})

		case OpInsertAfter:
			if err := t.insertSibling(e.Node, e.NewText, false); err != nil {
				return out, err
			}
			at := source.Span{File: span.File, Start: span.End, End: span.End}
			out = append(out, TextEdit{Span: at, NewText: e.NewText})

		case OpDelete:
			if err := t.deleteNode(e.Node); err != nil {
				return out, err
			}
			wide := t.expandToLine(span)
			out = append(out, TextEdit{Span: wide, OldText: t.Text(wide)})

		default:
			return out, fmt.Errorf("tree: unknown edit op %d", e.Op)
		}
	}
	return out, nil
}

// expandToLine widens a span to swallow its whole line when the span is
// the only content on it, so deleting a statement does not leave a blank
// line behind.
func (t *Tree) expandToLine(span source.Span) source.Span {
	content := t.file.Content

	start := int(span.Start)
	for start > 0 && content[start-1] != '\n' {
		if c := content[start-1]; c != ' ' && c != '\t' {
			return span
		}
		start--
	}

	end := int(span.End)
	for end < len(content) && content[end] != '\n' {
		if c := content[end]; c != ' ' && c != '\t' {
			return span
		}
		end++
	}
	if end < len(content) {
		end++ // include the newline
	}

	return source.Span{File: span.File, Start: uint32(start), End: uint32(end)}
}
