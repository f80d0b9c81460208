package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"mend/internal/driver"
	"mend/internal/engine"
	"mend/internal/observ"
	"mend/internal/rules"
)

func sampleProject() *driver.ProjectReport {
	changed := &driver.FileReport{
		Path:    "a.go",
		Changed: true,
		Stats:   engine.NewStatistics(),
	}
	withLeft := &driver.FileReport{
		Path:  "b.go",
		Stats: engine.NewStatistics(),
		Remaining: []driver.Finding{{
			RuleID:   "switch-missing-default",
			Message:  "switch statement has no default clause",
			Severity: rules.SevWarning,
			Path:     "b.go",
			Line:     4,
			Col:      2,
		}},
	}
	skipped := &driver.FileReport{
		Path:       "c.go",
		Skipped:    true,
		SkipReason: "parse error",
		Stats:      engine.NewStatistics(),
	}
	rep := &driver.ProjectReport{
		Files: []*driver.FileReport{changed, withLeft, skipped},
		Stats: engine.NewStatistics(),
	}
	for _, f := range rep.Files {
		rep.Stats.Merge(f.Stats)
	}
	return rep
}

func TestProjectPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false, false, 100)
	p.Project(sampleProject())
	out := buf.String()

	for _, want := range []string{
		"repaired a.go",
		"b.go:4:2",
		"WARNING",
		"switch-missing-default",
		"skipped c.go: parse error",
		"files      3",
		"repaired   1",
		"skipped    1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestQuietSuppressesCleanFiles(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false, true, 100)
	p.File(&driver.FileReport{Path: "ok.go", Stats: engine.NewStatistics()})
	if buf.Len() != 0 {
		t.Fatalf("quiet mode printed a clean file: %q", buf.String())
	}
}

func TestWriteStats(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteStats(&buf, sampleProject(), nil); err != nil {
		t.Fatalf("WriteStats: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("stats output is not valid JSON: %v", err)
	}
	if decoded["files"].(float64) != 3 {
		t.Fatalf("files = %v, want 3", decoded["files"])
	}
	remaining, ok := decoded["remaining"].([]any)
	if !ok || len(remaining) != 1 {
		t.Fatalf("remaining = %v, want one entry", decoded["remaining"])
	}
	if _, ok := decoded["timings"]; ok {
		t.Fatal("timings must be omitted when none are supplied")
	}
}

func TestWriteStatsWithTimings(t *testing.T) {
	timer := observ.NewTimer()
	timer.Begin("repair")("3 files")
	rep := timer.Report()

	var buf bytes.Buffer
	if err := WriteStats(&buf, sampleProject(), &rep); err != nil {
		t.Fatalf("WriteStats: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("stats output is not valid JSON: %v", err)
	}
	timings, ok := decoded["timings"].(map[string]any)
	if !ok {
		t.Fatalf("timings = %v, want an object", decoded["timings"])
	}
	if _, ok := timings["phases"]; !ok {
		t.Fatal("timings must carry the phase list")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate(short) = %q", got)
	}
	got := truncate("a very long diagnostic message", 10)
	if !strings.HasSuffix(got, "...") || len(got) > 10 {
		t.Fatalf("truncate = %q", got)
	}
}
