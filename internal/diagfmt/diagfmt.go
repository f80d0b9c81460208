// Package diagfmt renders repair reports for humans and machines: a
// colored per-finding listing with a summary block, and a JSON export
// of the statistics.
package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"mend/internal/driver"
	"mend/internal/engine"
	"mend/internal/observ"
	"mend/internal/rules"
)

// Printer writes human-readable repair reports.
type Printer struct {
	w     io.Writer
	quiet bool
	width int

	header   lipgloss.Style
	path     lipgloss.Style
	ruleID   lipgloss.Style
	warn     lipgloss.Style
	errSev   lipgloss.Style
	good     lipgloss.Style
	muted    lipgloss.Style
	crashBox lipgloss.Style
}

// NewPrinter creates a printer. With colored false every style renders
// plain text; quiet suppresses everything except repairs and crashes.
func NewPrinter(w io.Writer, colored, quiet bool, width int) *Printer {
	if width <= 0 {
		width = 100
	}
	p := &Printer{w: w, quiet: quiet, width: width}
	if colored {
		p.header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
		p.path = lipgloss.NewStyle().Bold(true)
		p.ruleID = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
		p.warn = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
		p.errSev = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
		p.good = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
		p.muted = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		p.crashBox = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	}
	return p
}

func (p *Printer) severity(sev rules.Severity) string {
	label := sev.String()
	if sev == rules.SevError {
		return p.errSev.Render(label)
	}
	return p.warn.Render(label)
}

// File prints the outcome of one file's repair.
func (p *Printer) File(rep *driver.FileReport) {
	switch {
	case rep.Skipped:
		fmt.Fprintf(p.w, "%s %s: %s\n", p.warn.Render("skipped"), p.path.Render(rep.Path), rep.SkipReason)
		return
	case rep.CacheHit:
		if !p.quiet {
			fmt.Fprintf(p.w, "%s %s\n", p.muted.Render("clean (cached)"), rep.Path)
		}
		return
	case rep.Changed:
		fmt.Fprintf(p.w, "%s %s (%d repairs)\n", p.good.Render("repaired"), p.path.Render(rep.Path), rep.Stats.TotalApplied())
	case !p.quiet && len(rep.Remaining) == 0 && len(rep.Stats.Crashes) == 0:
		fmt.Fprintf(p.w, "%s %s\n", p.muted.Render("clean"), rep.Path)
	}

	for _, f := range rep.Remaining {
		p.finding(f)
	}
	for _, c := range rep.Stats.Crashes {
		p.crash(c)
	}
}

func (p *Printer) finding(f driver.Finding) {
	msg := truncate(f.Message, p.width/2)
	fmt.Fprintf(p.w, "  %s:%d:%d  %s  %s  %s\n",
		f.Path, f.Line, f.Col, p.severity(f.Severity), p.ruleID.Render(f.RuleID), msg)
}

func (p *Printer) crash(c engine.CrashRecord) {
	fmt.Fprintf(p.w, "  %s %s at %s:%d:%d: %s\n",
		p.crashBox.Render("processor crash:"), p.ruleID.Render(c.RuleID), c.Path, c.Line, c.Col, c.Failure)
}

// Project prints every file report followed by a summary block.
func (p *Printer) Project(rep *driver.ProjectReport) {
	for _, f := range rep.Files {
		p.File(f)
	}
	p.Summary(rep)
}

// Summary prints the aggregated counters of a project run.
func (p *Printer) Summary(rep *driver.ProjectReport) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.header.Render("summary"))
	fmt.Fprintf(&b, "  files      %d\n", len(rep.Files))
	fmt.Fprintf(&b, "  repaired   %d\n", rep.Repaired())
	fmt.Fprintf(&b, "  skipped    %d\n", rep.Skipped())
	for _, rs := range rep.Stats.PerRule() {
		if rs.Found == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %-28s found %-4d applied %-4d declined %-4d crashed %d\n",
			p.ruleID.Render(rs.RuleID), rs.Found, rs.Applied, rs.Declined, rs.Crashed)
	}
	if n := len(rep.Stats.Crashes); n > 0 {
		fmt.Fprintf(&b, "  %s %d\n", p.crashBox.Render("crashes"), n)
	}
	fmt.Fprint(p.w, b.String())
}

// Timings prints a phase timing summary.
func (p *Printer) Timings(timer *observ.Timer) {
	fmt.Fprint(p.w, timer.Summary())
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}

// statsExport is the machine-readable shape of a run's statistics.
type statsExport struct {
	Files           int                  `json:"files"`
	Repaired        int                  `json:"repaired"`
	Skipped         int                  `json:"skipped"`
	Passes          int                  `json:"passes"`
	RenderFallbacks int                  `json:"render_fallbacks"`
	Rules           []engine.RuleStats   `json:"rules"`
	Crashes         []engine.CrashRecord `json:"crashes,omitempty"`
	Remaining       []remainingExport    `json:"remaining,omitempty"`
	Timings         *observ.Report       `json:"timings,omitempty"`
}

type remainingExport struct {
	RuleID   string `json:"rule_id"`
	Path     string `json:"path"`
	Line     uint32 `json:"line"`
	Col      uint32 `json:"col"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// WriteStats serializes a project report as indented JSON.
func WriteStats(w io.Writer, rep *driver.ProjectReport, timings *observ.Report) error {
	export := statsExport{
		Files:           len(rep.Files),
		Repaired:        rep.Repaired(),
		Skipped:         rep.Skipped(),
		Passes:          rep.Stats.Passes,
		RenderFallbacks: rep.Stats.RenderFallbacks,
		Rules:           rep.Stats.PerRule(),
		Crashes:         rep.Stats.Crashes,
		Timings:         timings,
	}
	for _, f := range rep.Files {
		for _, rem := range f.Remaining {
			export.Remaining = append(export.Remaining, remainingExport{
				RuleID:   rem.RuleID,
				Path:     rem.Path,
				Line:     rem.Line,
				Col:      rem.Col,
				Severity: rem.Severity.String(),
				Message:  rem.Message,
			})
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(export)
}
