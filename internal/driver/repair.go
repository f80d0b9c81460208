// Package driver orchestrates repairs over real files: it loads sources,
// runs the engine, writes results back, and fans out over directories.
package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"mend/internal/engine"
	"mend/internal/lang"
	"mend/internal/render"
	"mend/internal/rules"
	"mend/internal/source"
)

// Options configures a repair run.
type Options struct {
	Rules  []string
	Mode   render.Mode
	Budget engine.Budget

	// DryRun computes repairs without writing anything back.
	DryRun bool

	// Jobs caps directory-mode parallelism; <= 0 uses GOMAXPROCS.
	Jobs int

	// Cache, when non-nil, skips files already known clean for the
	// selected rule set.
	Cache *Cache
}

// Finding is one violation left in a file after repair, resolved to a
// printable position. Path is relative to the repair target.
type Finding struct {
	RuleID   string
	Message  string
	Severity rules.Severity
	Path     string
	Line     uint32
	Col      uint32
}

// FileReport is the outcome of repairing one file.
type FileReport struct {
	Path       string
	Changed    bool
	Written    bool
	CacheHit   bool
	Skipped    bool
	SkipReason string
	Mode       render.Mode
	Stats      *engine.Statistics
	Remaining  []Finding
}

// RepairFile repairs a single file in place. With DryRun the repaired
// text is computed and reported but the file is left untouched.
func RepairFile(backend lang.Backend, registry *rules.Registry, path string, opts Options) (*FileReport, error) {
	eng, err := engine.New(backend, registry, opts.Rules)
	if err != nil {
		return nil, err
	}
	return repairWith(eng, path, filepath.Dir(path), opts)
}

func repairWith(eng *engine.Engine, path, baseDir string, opts Options) (*FileReport, error) {
	fs := source.NewFileSetWithBase(baseDir)
	id, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("driver: load %s: %w", path, err)
	}
	file := fs.Get(id)

	ids := ruleIDs(eng)
	if clean, _ := opts.Cache.IsClean(file.Hash, ids); clean {
		return &FileReport{
			Path:     path,
			CacheHit: true,
			Mode:     opts.Mode,
			Stats:    engine.NewStatistics(),
		}, nil
	}

	res, err := eng.Repair(fs, id, engine.Options{Mode: opts.Mode, Budget: opts.Budget})
	if err != nil {
		return nil, err
	}

	report := &FileReport{
		Path:      path,
		Changed:   res.Changed,
		Mode:      res.Mode,
		Stats:     res.Stats,
		Remaining: resolveFindings(fs, fs.Get(id), res.Remaining),
	}

	if res.Changed && !opts.DryRun {
		if err := writeBack(path, res.Output); err != nil {
			return nil, fmt.Errorf("driver: write %s: %w", path, err)
		}
		report.Written = true
	}

	// Only a file with nothing left to do is cached as clean; a changed
	// file gets a new hash and re-enters the cache on the next run.
	if !res.Changed && len(res.Remaining) == 0 && len(res.Stats.Crashes) == 0 {
		if err := opts.Cache.MarkClean(file.Hash, ids); err != nil {
			return nil, fmt.Errorf("driver: cache %s: %w", path, err)
		}
	}
	return report, nil
}

// resolveFindings turns leftover violations into printable findings,
// rendering the path relative to the set's base directory.
func resolveFindings(fs *source.FileSet, file *source.File, remaining []rules.Violation) []Finding {
	relPath := file.FormatPath("relative", fs.BaseDir())
	out := make([]Finding, 0, len(remaining))
	for _, v := range remaining {
		start, _ := fs.Resolve(v.Span)
		out = append(out, Finding{
			RuleID:   v.RuleID,
			Message:  v.Message,
			Severity: v.Severity,
			Path:     relPath,
			Line:     start.Line,
			Col:      start.Col,
		})
	}
	return out
}

// writeBack replaces the file's content preserving its permission bits.
func writeBack(path string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, content, mode)
}

func ruleIDs(eng *engine.Engine) []string {
	selected := eng.Rules()
	ids := make([]string, len(selected))
	for i, rule := range selected {
		ids[i] = rule.ID
	}
	return ids
}
