// Package lang defines the parser/unparser contract the repair engine
// consumes, and a process-wide registry of language backends keyed by
// file extension. The registry is populated at startup and read-only
// afterwards, so file-level workers share it without locking.
package lang

import (
	"fmt"
	"path/filepath"
	"sort"

	"mend/internal/source"
	"mend/internal/tree"
)

// Backend parses source files into trees and re-derives formatted text.
// Parse must be a left-inverse of Format for an unmodified tree: parsing
// the formatted output yields an equivalent tree.
type Backend interface {
	// Name identifies the backend ("go").
	Name() string
	// Extensions lists the file extensions this backend claims (".go").
	Extensions() []string
	// Parse builds a tree over the file's current content.
	Parse(file *source.File) (*tree.Tree, error)
	// Format re-derives the whole file's text using the language's
	// default formatting rules (the Full render mode).
	Format(src []byte) ([]byte, error)
}

// Registry maps file extensions to backends.
type Registry struct {
	byExt map[string]Backend
}

func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]Backend)}
}

// Register claims the backend's extensions. Claiming an extension twice
// is a configuration error.
func (r *Registry) Register(b Backend) error {
	for _, ext := range b.Extensions() {
		if prev, ok := r.byExt[ext]; ok {
			return fmt.Errorf("lang: extension %q already registered by backend %q", ext, prev.Name())
		}
		r.byExt[ext] = b
	}
	return nil
}

// ForPath returns the backend responsible for the file at path.
func (r *Registry) ForPath(path string) (Backend, bool) {
	b, ok := r.byExt[filepath.Ext(path)]
	return b, ok
}

// Extensions returns all claimed extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
