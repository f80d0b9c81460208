package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"mend/internal/engine"
	"mend/internal/lang"
	"mend/internal/rules"
)

// ProjectReport aggregates the per-file outcomes of a directory repair.
type ProjectReport struct {
	Files []*FileReport
	Stats *engine.Statistics
}

// Repaired counts files whose content changed.
func (r *ProjectReport) Repaired() int {
	n := 0
	for _, f := range r.Files {
		if f.Changed {
			n++
		}
	}
	return n
}

// Skipped counts files excluded from repair (load or parse failures).
func (r *ProjectReport) Skipped() int {
	n := 0
	for _, f := range r.Files {
		if f.Skipped {
			n++
		}
	}
	return n
}

// listSourceFiles returns the sorted list of files under dir claimed by
// a registered backend. Hidden directories and testdata are not walked.
func listSourceFiles(dir string, exts []string) ([]string, error) {
	claimed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		claimed[ext] = true
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (strings.HasPrefix(name, ".") || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if claimed[filepath.Ext(path)] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Sorted for a deterministic report order.
	sort.Strings(files)
	return files, nil
}

// RepairDir repairs every claimed file under dir in parallel. A file
// that fails to load or parse is reported as skipped, not fatal: one
// broken file must not stop a project-wide run.
func RepairDir(ctx context.Context, backends *lang.Registry, registry *rules.Registry, dir string, opts Options) (*ProjectReport, error) {
	files, err := listSourceFiles(dir, backends.Extensions())
	if err != nil {
		return nil, err
	}

	report := &ProjectReport{
		Files: make([]*FileReport, len(files)),
		Stats: engine.NewStatistics(),
	}
	if len(files) == 0 {
		return report, nil
	}

	// One engine per backend; an engine carries no per-file state, so
	// the workers share it.
	engines := make(map[string]*engine.Engine, 1)
	for _, ext := range backends.Extensions() {
		backend, _ := backends.ForPath("x" + ext)
		if _, ok := engines[backend.Name()]; ok {
			continue
		}
		eng, err := engine.New(backend, registry, opts.Rules)
		if err != nil {
			return nil, err
		}
		engines[backend.Name()] = eng
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Indexed writes: each worker owns its slot, no mutex needed.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			backend, _ := backends.ForPath(path)
			fileReport, err := repairWith(engines[backend.Name()], path, dir, opts)
			if err != nil {
				report.Files[i] = &FileReport{
					Path:       path,
					Skipped:    true,
					SkipReason: err.Error(),
					Stats:      engine.NewStatistics(),
				}
				return nil
			}
			report.Files[i] = fileReport
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, f := range report.Files {
		report.Stats.Merge(f.Stats)
	}
	return report, nil
}
