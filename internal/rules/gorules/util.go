package gorules

import (
	"go/ast"

	"mend/internal/lang/golang"
	"mend/internal/tree"
)

// childNode finds the direct tree child of parent carrying the given
// go/ast node as payload. Payload identity links the two views of the
// same syntax.
func childNode(t *tree.Tree, parent tree.NodeID, want ast.Node) *tree.Node {
	p := t.Node(parent)
	if p == nil {
		return nil
	}
	for _, cid := range p.Children {
		c := t.Node(cid)
		if c != nil && golang.Ast(c) == want {
			return c
		}
	}
	return nil
}

// lineIndent returns the leading whitespace of the line containing off.
func lineIndent(content []byte, off uint32) string {
	start := int(off)
	if start > len(content) {
		start = len(content)
	}
	for start > 0 && content[start-1] != '\n' {
		start--
	}
	end := start
	for end < len(content) && (content[end] == ' ' || content[end] == '\t') {
		end++
	}
	return string(content[start:end])
}
