package gorules

import (
	"go/ast"

	"mend/internal/lang/golang"
	"mend/internal/rules"
	"mend/internal/tree"
)

const ruleRedundantParens = "redundant-parens"

func redundantParensRule() rules.Rule {
	return rules.Rule{
		ID:          ruleRedundantParens,
		Description: "doubled parentheses around an expression are redundant",
		Severity:    rules.SevWarning,
		Check:       rules.CheckFunc(checkRedundantParens),
		Processor:   rules.ProcessorFunc(repairRedundantParens),
	}
}

func checkRedundantParens(t *tree.Tree) []rules.Violation {
	var out []rules.Violation
	t.Walk(func(id tree.NodeID, n *tree.Node) bool {
		pe, ok := golang.Ast(n).(*ast.ParenExpr)
		if !ok {
			return true
		}
		if _, doubled := pe.X.(*ast.ParenExpr); !doubled {
			return true
		}
		out = append(out, rules.Violation{
			RuleID:   ruleRedundantParens,
			Node:     id,
			Span:     n.Span,
			Message:  "redundant parentheses",
			Severity: rules.SevWarning,
		})
		return true
	})
	return out
}

func repairRedundantParens(t *tree.Tree, node tree.NodeID) rules.Result {
	n := t.Node(node)
	if n == nil {
		return rules.Declined("node is no longer part of the tree")
	}
	pe, ok := golang.Ast(n).(*ast.ParenExpr)
	if !ok {
		return rules.Declined("node is not a parenthesized expression")
	}
	if _, doubled := pe.X.(*ast.ParenExpr); !doubled {
		return rules.Declined("inner parentheses already removed")
	}
	inner := childNode(t, node, pe.X)
	if inner == nil {
		return rules.Declined("inner expression not reachable in tree")
	}

	var edits tree.EditSet
	edits.Replace(node, t.Text(inner.Span))
	return rules.Applied(edits)
}
