package engine

import (
	"sort"

	"mend/internal/rules"
	"mend/internal/tree"
)

// resolveConflicts partitions a file's violations into a subset that can
// be repaired simultaneously and the deferred rest. Two violations
// conflict when their nodes are identical or stand in an
// ancestor/descendant relationship; fixing both in one pass would have
// one processor rewrite a subtree another is rewriting.
//
// Violations are taken greedily, deepest node first, with source
// position and then rule id as deterministic tie-breaks. Deferred
// violations are retried in the next pass against the re-parsed tree.
func resolveConflicts(t *tree.Tree, violations []rules.Violation) (accepted, deferred []rules.Violation) {
	ordered := make([]rules.Violation, len(violations))
	copy(ordered, violations)
	sort.SliceStable(ordered, func(i, j int) bool {
		di, dj := t.Depth(ordered[i].Node), t.Depth(ordered[j].Node)
		if di != dj {
			return di > dj
		}
		if ordered[i].Span.Start != ordered[j].Span.Start {
			return ordered[i].Span.Start < ordered[j].Span.Start
		}
		if ordered[i].Span.End != ordered[j].Span.End {
			return ordered[i].Span.End < ordered[j].Span.End
		}
		return ordered[i].RuleID < ordered[j].RuleID
	})

	claimed := make(map[tree.NodeID]bool)  // nodes accepted this pass
	shielded := make(map[tree.NodeID]bool) // ancestors of accepted nodes

	for _, v := range ordered {
		if conflicts(t, v.Node, claimed, shielded) {
			deferred = append(deferred, v)
			continue
		}
		accepted = append(accepted, v)
		claimed[v.Node] = true
		for n := t.Node(v.Node); n != nil && n.Parent != tree.NoNode; n = t.Node(n.Parent) {
			shielded[n.Parent] = true
		}
	}
	return accepted, deferred
}

func conflicts(t *tree.Tree, node tree.NodeID, claimed, shielded map[tree.NodeID]bool) bool {
	if claimed[node] || shielded[node] {
		return true
	}
	// Deepest-first ordering makes a claimed ancestor impossible in
	// practice; the walk keeps the invariant independent of ordering.
	for n := t.Node(node); n != nil && n.Parent != tree.NoNode; n = t.Node(n.Parent) {
		if claimed[n.Parent] {
			return true
		}
	}
	return false
}
