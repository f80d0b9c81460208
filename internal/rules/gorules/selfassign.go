package gorules

import (
	"go/ast"
	"go/token"

	"mend/internal/lang/golang"
	"mend/internal/rules"
	"mend/internal/tree"
)

const ruleSelfAssignment = "self-assignment"

func selfAssignmentRule() rules.Rule {
	return rules.Rule{
		ID:          ruleSelfAssignment,
		Description: "variables should not be assigned to themselves",
		Severity:    rules.SevWarning,
		Check:       rules.CheckFunc(checkSelfAssign),
		Processor:   rules.ProcessorFunc(repairSelfAssign),
	}
}

func checkSelfAssign(t *tree.Tree) []rules.Violation {
	var out []rules.Violation
	t.Walk(func(id tree.NodeID, n *tree.Node) bool {
		if !isSelfAssign(t, id, n) {
			return true
		}
		out = append(out, rules.Violation{
			RuleID:   ruleSelfAssignment,
			Node:     id,
			Span:     n.Span,
			Message:  "assignment has no effect: left and right sides are the same",
			Severity: rules.SevWarning,
		})
		return true
	})
	return out
}

func repairSelfAssign(t *tree.Tree, node tree.NodeID) rules.Result {
	n := t.Node(node)
	if n == nil {
		return rules.Declined("node is no longer part of the tree")
	}
	if !isSelfAssign(t, node, n) {
		return rules.Declined("statement is no longer a self-assignment")
	}
	var edits tree.EditSet
	edits.Delete(node)
	return rules.Applied(edits)
}

func isSelfAssign(t *tree.Tree, id tree.NodeID, n *tree.Node) bool {
	as, ok := golang.Ast(n).(*ast.AssignStmt)
	if !ok || as.Tok != token.ASSIGN || len(as.Lhs) != 1 || len(as.Rhs) != 1 {
		return false
	}
	// Restricted to plain identifier and field paths: an index or call on
	// either side may carry side effects the statement cannot lose.
	if !isStablePath(as.Lhs[0]) || !isStablePath(as.Rhs[0]) {
		return false
	}
	lhs := childNode(t, id, as.Lhs[0])
	rhs := childNode(t, id, as.Rhs[0])
	if lhs == nil || rhs == nil {
		return false
	}
	return t.Text(lhs.Span) == t.Text(rhs.Span)
}

func isStablePath(e ast.Expr) bool {
	switch x := e.(type) {
	case *ast.Ident:
		return true
	case *ast.SelectorExpr:
		return isStablePath(x.X)
	}
	return false
}
