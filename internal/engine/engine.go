// Package engine implements the repair loop: analyze the tree, pick a
// non-conflicting set of violations, invoke processors, apply their
// edits as one batch, re-render, and repeat until a fixed point or the
// budget runs out. The engine is the single writer of the tree;
// processors only describe edits.
package engine

import (
	"bytes"
	"fmt"
	"sort"

	"mend/internal/lang"
	"mend/internal/render"
	"mend/internal/rules"
	"mend/internal/source"
	"mend/internal/tree"
)

// DefaultMaxPasses bounds the fixed-point loop when the caller does not.
const DefaultMaxPasses = 8

// Budget bounds the repair loop. MaxRepairsPerRule <= 0 means no
// per-rule cap; MaxPasses <= 0 selects DefaultMaxPasses.
type Budget struct {
	MaxRepairsPerRule int
	MaxPasses         int
}

func (b Budget) withDefaults() Budget {
	if b.MaxPasses <= 0 {
		b.MaxPasses = DefaultMaxPasses
	}
	return b
}

// Options configures one repair run.
type Options struct {
	Mode   render.Mode
	Budget Budget
}

// Result is the outcome of repairing one file.
type Result struct {
	Output  []byte
	Changed bool
	// Mode is the effective render mode; it differs from the requested
	// one after a targeted-render fallback.
	Mode  render.Mode
	Stats *Statistics
	// Remaining lists violations left unfixed: either no processor
	// accepted them or the budget ran out. Their node handles are dead.
	Remaining []rules.Violation
}

// Engine repairs files with a resolved set of rules. Safe for
// concurrent use: all per-file state lives in Repair's locals.
type Engine struct {
	backend  lang.Backend
	selected []rules.Rule
	byID     map[string]rules.Rule
}

// New resolves ruleIDs against the registry. Unknown ids fail here,
// before any file is touched.
func New(backend lang.Backend, registry *rules.Registry, ruleIDs []string) (*Engine, error) {
	selected, err := registry.Resolve(ruleIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]rules.Rule, len(selected))
	for _, rule := range selected {
		byID[rule.ID] = rule
	}
	return &Engine{backend: backend, selected: selected, byID: byID}, nil
}

// Rules returns the resolved rule set.
func (e *Engine) Rules() []rules.Rule { return e.selected }

// Repair runs the fixed-point loop over one file of the set and returns
// the repaired text with statistics. The file on disk is not touched.
func (e *Engine) Repair(fs *source.FileSet, id source.FileID, opts Options) (*Result, error) {
	budget := opts.Budget.withDefaults()
	stats := NewStatistics()

	file := fs.Get(id)
	path := file.Path
	original := file.Content
	content := original
	effective := opts.Mode

	var remaining []rules.Violation
	prevGood := original
	outOfPasses := false

	for pass := 0; pass < budget.MaxPasses; pass++ {
		cur := file
		if pass > 0 {
			cur = fs.Get(fs.Add(path, content, file.Flags))
		}

		t, err := e.backend.Parse(cur)
		if err != nil {
			if pass == 0 {
				return nil, fmt.Errorf("engine: %w", err)
			}
			// The previous splice produced unparseable output; that
			// pass's edits are discarded and the last good state kept.
			stats.PassFailures = append(stats.PassFailures,
				fmt.Sprintf("pass %d: repaired output no longer parses: %v", pass, err))
			content = prevGood
			break
		}
		stats.Passes++

		sess := &session{}
		for _, rule := range e.selected {
			for _, v := range rule.Check.Check(t) {
				// Violations without a resolvable primary location are
				// dropped, not repaired.
				if !t.Valid(v.Node) {
					continue
				}
				stats.rule(rule.ID).Found++
				sess.violations = append(sess.violations, v)
			}
		}
		if len(sess.violations) == 0 {
			remaining = nil
			break
		}
		remaining = sess.violations

		eligible := sess.violations
		if budget.MaxRepairsPerRule > 0 {
			eligible = eligible[:0:0]
			for _, v := range sess.violations {
				if stats.rule(v.RuleID).Applied < budget.MaxRepairsPerRule {
					eligible = append(eligible, v)
				}
			}
		}

		sess.accepted, sess.deferred = resolveConflicts(t, eligible)
		e.invokeProcessors(fs, t, sess, stats, budget, path)

		if len(sess.planned) == 0 {
			// Fixed point: a pass with zero accepted edits ends the
			// loop; what is left is unfixable with available processors.
			break
		}

		textEdits, ok := applyBatch(t, sess, stats, pass)
		if !ok {
			break
		}

		next, err := render.Splice(content, textEdits)
		if err != nil {
			stats.PassFailures = append(stats.PassFailures, fmt.Sprintf("pass %d: %v", pass+1, err))
			break
		}

		for _, p := range sess.planned {
			stats.rule(p.violation.RuleID).Applied++
			if p.broken && effective == render.ModeTargeted {
				effective = render.ModeFull
				stats.RenderFallbacks++
			}
		}
		prevGood = content
		content = next
		outOfPasses = pass == budget.MaxPasses-1
	}

	if outOfPasses {
		remaining = e.reanalyze(fs, path, content, file.Flags)
	}

	changed := !bytes.Equal(content, original)
	if changed && effective == render.ModeFull {
		formatted, err := e.backend.Format(content)
		if err != nil {
			return nil, fmt.Errorf("engine: full render of %s: %w", path, err)
		}
		content = formatted
	}

	return &Result{
		Output:    content,
		Changed:   !bytes.Equal(content, original),
		Mode:      effective,
		Stats:     stats,
		Remaining: remaining,
	}, nil
}

// invokeProcessors runs the processor for every accepted violation,
// filling sess.planned. A crash is recorded and skipped: one bad
// processor must not abort the pass.
func (e *Engine) invokeProcessors(fs *source.FileSet, t *tree.Tree, sess *session, stats *Statistics, budget Budget, path string) {
	plannedPerRule := make(map[string]int)

	for _, v := range sess.accepted {
		if budget.MaxRepairsPerRule > 0 &&
			stats.rule(v.RuleID).Applied+plannedPerRule[v.RuleID] >= budget.MaxRepairsPerRule {
			continue
		}

		rule := e.byID[v.RuleID]
		res, crashErr := invokeProcessor(rule.Processor, t, v.Node)
		if crashErr != nil {
			stats.rule(v.RuleID).Crashed++
			start, _ := fs.Resolve(v.Span)
			stats.Crashes = append(stats.Crashes, CrashRecord{
				RuleID:  v.RuleID,
				Path:    path,
				Line:    start.Line,
				Col:     start.Col,
				Failure: crashErr.Error(),
			})
			continue
		}

		switch res.Status {
		case rules.StatusDeclined:
			stats.rule(v.RuleID).Declined++
		case rules.StatusApplied:
			if res.Edits.Empty() {
				stats.rule(v.RuleID).Declined++
				continue
			}
			sess.planned = append(sess.planned, plannedRepair{
				violation: v,
				edits:     res.Edits,
				broken:    rule.BrokenWithTargeted,
			})
			plannedPerRule[v.RuleID]++
		}
	}
}

// invokeProcessor shields the engine from a panicking processor.
func invokeProcessor(p rules.Processor, t *tree.Tree, node tree.NodeID) (res rules.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processor panic: %v", r)
		}
	}()
	return p.Repair(t, node), nil
}

// applyBatch applies all planned edit sets to the tree deepest-first,
// collecting the implied text edits. A structural failure discards the
// whole pass: the caller keeps the prior content.
func applyBatch(t *tree.Tree, sess *session, stats *Statistics, pass int) ([]tree.TextEdit, bool) {
	sort.SliceStable(sess.planned, func(i, j int) bool {
		return t.Depth(sess.planned[i].violation.Node) > t.Depth(sess.planned[j].violation.Node)
	})

	var textEdits []tree.TextEdit
	for _, p := range sess.planned {
		edits, err := t.Apply(p.edits)
		if err != nil {
			stats.PassFailures = append(stats.PassFailures, fmt.Sprintf("pass %d: %v", pass+1, err))
			return nil, false
		}
		textEdits = append(textEdits, edits...)
	}
	return textEdits, true
}

// reanalyze computes the violations still present in content after the
// pass budget ran out mid-repair.
func (e *Engine) reanalyze(fs *source.FileSet, path string, content []byte, flags source.FileFlags) []rules.Violation {
	f := fs.Get(fs.Add(path, content, flags))
	t, err := e.backend.Parse(f)
	if err != nil {
		return nil
	}
	var out []rules.Violation
	for _, rule := range e.selected {
		for _, v := range rule.Check.Check(t) {
			if t.Valid(v.Node) {
				out = append(out, v)
			}
		}
	}
	return out
}
