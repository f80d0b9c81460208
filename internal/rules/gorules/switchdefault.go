package gorules

import (
	"go/ast"

	"mend/internal/lang/golang"
	"mend/internal/rules"
	"mend/internal/tree"
)

const ruleSwitchMissingDefault = "switch-missing-default"

func switchMissingDefaultRule() rules.Rule {
	return rules.Rule{
		ID:          ruleSwitchMissingDefault,
		Description: "switch statements should have a default clause",
		Severity:    rules.SevWarning,
		Check:       rules.CheckFunc(checkSwitchDefault),
		Processor:   rules.ProcessorFunc(repairSwitchDefault),
		// The inserted clause has no counterpart in the original text, so
		// targeted rendering cannot place it faithfully.
		BrokenWithTargeted: true,
	}
}

func checkSwitchDefault(t *tree.Tree) []rules.Violation {
	var out []rules.Violation
	t.Walk(func(id tree.NodeID, n *tree.Node) bool {
		body := switchBody(golang.Ast(n))
		if body == nil || len(body.List) == 0 || hasDefaultClause(body) {
			return true
		}
		out = append(out, rules.Violation{
			RuleID:   ruleSwitchMissingDefault,
			Node:     id,
			Span:     n.Span,
			Message:  "switch statement has no default clause",
			Severity: rules.SevWarning,
		})
		return true
	})
	return out
}

func repairSwitchDefault(t *tree.Tree, node tree.NodeID) rules.Result {
	n := t.Node(node)
	if n == nil {
		return rules.Declined("node is no longer part of the tree")
	}
	body := switchBody(golang.Ast(n))
	if body == nil || len(body.List) == 0 {
		return rules.Declined("switch has no case clauses to anchor on")
	}
	if hasDefaultClause(body) {
		return rules.Declined("switch already has a default clause")
	}

	block := childNode(t, node, body)
	if block == nil {
		return rules.Declined("switch body not reachable in tree")
	}
	anchor := childNode(t, block.ID, body.List[len(body.List)-1])
	if anchor == nil {
		return rules.Declined("last case clause not reachable in tree")
	}

	indent := lineIndent(t.File().Content, anchor.Span.Start)
	clause := "\n" + indent + "default:\n" + indent + "\t// nothing to do"

	var edits tree.EditSet
	edits.InsertAfter(anchor.ID, clause)
	return rules.Applied(edits)
}

func switchBody(n ast.Node) *ast.BlockStmt {
	switch s := n.(type) {
	case *ast.SwitchStmt:
		return s.Body
	case *ast.TypeSwitchStmt:
		return s.Body
	}
	return nil
}

func hasDefaultClause(body *ast.BlockStmt) bool {
	for _, stmt := range body.List {
		if cc, ok := stmt.(*ast.CaseClause); ok && cc.List == nil {
			return true
		}
	}
	return false
}
