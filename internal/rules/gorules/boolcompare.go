// Package gorules holds the built-in repair rules for the Go backend.
// Each rule pairs a go/ast pattern check with a processor producing the
// minimal structural edit that removes the violation.
package gorules

import (
	"go/ast"
	"go/token"
	"strings"

	"golang.org/x/tools/go/ast/astutil"

	"mend/internal/lang/golang"
	"mend/internal/rules"
	"mend/internal/tree"
)

const ruleBoolLiteralCompare = "bool-literal-compare"

func boolLiteralCompareRule() rules.Rule {
	return rules.Rule{
		ID:          ruleBoolLiteralCompare,
		Description: "comparisons with boolean literals should be simplified",
		Severity:    rules.SevWarning,
		Check:       rules.CheckFunc(checkBoolCompare),
		Processor:   rules.ProcessorFunc(repairBoolCompare),
	}
}

func checkBoolCompare(t *tree.Tree) []rules.Violation {
	var out []rules.Violation
	t.Walk(func(id tree.NodeID, n *tree.Node) bool {
		be, ok := golang.Ast(n).(*ast.BinaryExpr)
		if !ok || (be.Op != token.EQL && be.Op != token.NEQ) {
			return true
		}
		_, xLit := boolLiteral(be.X)
		_, yLit := boolLiteral(be.Y)
		if !xLit && !yLit {
			return true
		}
		out = append(out, rules.Violation{
			RuleID:   ruleBoolLiteralCompare,
			Node:     id,
			Span:     n.Span,
			Message:  "comparison with boolean literal can be simplified",
			Severity: rules.SevWarning,
		})
		return true
	})
	return out
}

func repairBoolCompare(t *tree.Tree, node tree.NodeID) rules.Result {
	n := t.Node(node)
	if n == nil {
		return rules.Declined("node is no longer part of the tree")
	}
	be, ok := golang.Ast(n).(*ast.BinaryExpr)
	if !ok || (be.Op != token.EQL && be.Op != token.NEQ) {
		return rules.Declined("node is not an equality comparison")
	}

	var lit bool
	var other ast.Expr
	if v, ok := boolLiteral(be.Y); ok {
		lit, other = v, be.X
	} else if v, ok := boolLiteral(be.X); ok {
		lit, other = v, be.Y
	} else {
		return rules.Declined("no boolean literal operand left")
	}

	oc := childNode(t, node, other)
	if oc == nil {
		return rules.Declined("remaining operand not reachable in tree")
	}
	text := t.Text(oc.Span)

	// x == true and x != false keep the operand; the other two forms
	// negate it.
	if (be.Op == token.EQL) != lit {
		text = negate(other, text)
	}

	var edits tree.EditSet
	edits.Replace(node, text)
	return rules.Applied(edits)
}

// boolLiteral reports whether e, ignoring parens, is the predeclared
// identifier true or false.
func boolLiteral(e ast.Expr) (value, ok bool) {
	ident, isIdent := astutil.Unparen(e).(*ast.Ident)
	if !isIdent {
		return false, false
	}
	switch ident.Name {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// negate renders the logical negation of an expression, parenthesizing
// operands whose precedence would otherwise change.
func negate(e ast.Expr, text string) string {
	switch astutil.Unparen(e).(type) {
	case *ast.UnaryExpr:
		if strings.HasPrefix(text, "!") {
			return strings.TrimPrefix(text, "!")
		}
	case *ast.Ident, *ast.SelectorExpr, *ast.CallExpr, *ast.IndexExpr:
		return "!" + text
	}
	if _, ok := e.(*ast.ParenExpr); ok {
		return "!" + text
	}
	return "!(" + text + ")"
}
