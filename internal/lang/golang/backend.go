// Package golang is the Go language backend: it parses Go source into
// the engine's arena tree and re-derives formatted text with gofmt
// rules. Every tree node carries its go/ast node as Payload so that
// Go-specific rules can pattern-match natively.
package golang

import (
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"strings"

	"mend/internal/lang"
	"mend/internal/source"
	"mend/internal/tree"
)

// Backend implements lang.Backend for Go files.
type Backend struct{}

var _ lang.Backend = Backend{}

func New() Backend { return Backend{} }

func (Backend) Name() string { return "go" }

func (Backend) Extensions() []string { return []string{".go"} }

// Parse builds an arena tree mirroring the go/ast structure. Node spans
// are byte offsets into the file's content.
func (Backend) Parse(file *source.File) (*tree.Tree, error) {
	fset := token.NewFileSet()
	parsed, err := parser.ParseFile(fset, file.Path, file.Content, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("go backend: parse %s: %w", file.Path, err)
	}

	tf := fset.File(parsed.Pos())
	tr := tree.New(file)

	span := func(n ast.Node) source.Span {
		return source.Span{
			File:  file.ID,
			Start: uint32(tf.Offset(n.Pos())),
			End:   uint32(tf.Offset(n.End())),
		}
	}

	var stack []tree.NodeID
	ast.Inspect(parsed, func(n ast.Node) bool {
		if n == nil {
			stack = stack[:len(stack)-1]
			return true
		}
		var id tree.NodeID
		if len(stack) == 0 {
			id = tr.AddRoot(kindOf(n), span(n), n)
		} else {
			id = tr.Add(stack[len(stack)-1], kindOf(n), span(n), n)
		}
		stack = append(stack, id)
		return true
	})

	return tr, nil
}

// Format runs the source through gofmt. Invalid programs fail.
func (Backend) Format(src []byte) ([]byte, error) {
	out, err := format.Source(src)
	if err != nil {
		return nil, fmt.Errorf("go backend: format: %w", err)
	}
	return out, nil
}

// kindOf reduces "*ast.BinaryExpr" to "BinaryExpr".
func kindOf(n ast.Node) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", n), "*ast.")
}

// Ast unwraps the go/ast payload of a tree node built by this backend.
func Ast(n *tree.Node) ast.Node {
	if n == nil {
		return nil
	}
	if payload, ok := n.Payload.(ast.Node); ok {
		return payload
	}
	return nil
}
