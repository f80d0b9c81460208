// Package observ carries lightweight instrumentation for the repair
// pipeline: wall-clock phase timings with a serializable report.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Timer collects named phase durations. A run owns its timer; it is not
// safe for concurrent use.
type Timer struct {
	phases []phase
}

type phase struct {
	name  string
	note  string
	start time.Time
	dur   time.Duration
}

func NewTimer() *Timer { return &Timer{} }

// Begin starts a named phase. The returned stop function records the
// elapsed time together with a short note shown next to the duration.
func (t *Timer) Begin(name string) func(note string) {
	idx := len(t.phases)
	t.phases = append(t.phases, phase{name: name, start: time.Now()})
	return func(note string) {
		p := &t.phases[idx]
		p.dur = time.Since(p.start)
		p.note = note
	}
}

// Summary renders the phases for the --timings output.
func (t *Timer) Summary() string {
	rep := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range rep.Phases {
		fmt.Fprintf(&b, "  %-20s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			b.WriteString("  // " + p.Note)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-20s %7.2f ms\n", "total", rep.TotalMS)
	return b.String()
}

// PhaseReport is the serialized form of one timed phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is the machine-readable shape of a timer's phases.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	rep := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, p := range t.phases {
		total += p.dur
		rep.Phases[i] = PhaseReport{
			Name:       p.name,
			DurationMS: float64(p.dur) / float64(time.Millisecond),
			Note:       p.note,
		}
	}
	rep.TotalMS = float64(total) / float64(time.Millisecond)
	return rep
}
