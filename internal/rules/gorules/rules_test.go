package gorules

import (
	"bytes"
	"go/ast"
	"go/parser"
	"os"
	"path/filepath"
	"testing"

	"mend/internal/engine"
	"mend/internal/lang/golang"
	"mend/internal/render"
	"mend/internal/rules"
	"mend/internal/source"
)

func newEngine(t *testing.T, ruleIDs ...string) *engine.Engine {
	t.Helper()
	reg := rules.NewRegistry()
	if err := RegisterAll(reg); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	eng, err := engine.New(golang.New(), reg, ruleIDs)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return eng
}

// repairFixture runs a single rule over testdata/<rule>/<name>.go and
// checks the output against the .expected sibling.
func repairFixture(t *testing.T, ruleID, name string) *engine.Result {
	t.Helper()
	input, err := os.ReadFile(filepath.Join("testdata", ruleID, name+".go"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	expected, err := os.ReadFile(filepath.Join("testdata", ruleID, name+".go.expected"))
	if err != nil {
		t.Fatalf("read expected: %v", err)
	}

	eng := newEngine(t, ruleID)
	fs := source.NewFileSet()
	id := fs.AddVirtual(name+".go", input)
	res, err := eng.Repair(fs, id, engine.Options{})
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if !res.Changed {
		t.Fatalf("expected %s/%s to change", ruleID, name)
	}
	if !bytes.Equal(res.Output, expected) {
		t.Fatalf("output mismatch for %s/%s:\ngot:\n%s\nwant:\n%s", ruleID, name, res.Output, expected)
	}
	return res
}

func repairSource(t *testing.T, ruleID string, src string) *engine.Result {
	t.Helper()
	eng := newEngine(t, ruleID)
	fs := source.NewFileSet()
	id := fs.AddVirtual("input.go", []byte(src))
	res, err := eng.Repair(fs, id, engine.Options{})
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	return res
}

func TestBoolLiteralCompare(t *testing.T) {
	res := repairFixture(t, ruleBoolLiteralCompare, "basic")
	rs := res.Stats.Rule(ruleBoolLiteralCompare)
	if rs.Found != 3 || rs.Applied != 3 {
		t.Fatalf("found=%d applied=%d, want 3/3", rs.Found, rs.Applied)
	}
	if res.Mode != render.ModeTargeted {
		t.Fatalf("mode = %v, want targeted", res.Mode)
	}
	if len(res.Remaining) != 0 {
		t.Fatalf("remaining = %d, want 0", len(res.Remaining))
	}
}

func TestBoolLiteralCompareNegation(t *testing.T) {
	src := `package fixtures

func check(a, b int, ok bool) bool {
	if a > b == false {
		return false
	}
	return !ok != true
}
`
	res := repairSource(t, ruleBoolLiteralCompare, src)
	want := `package fixtures

func check(a, b int, ok bool) bool {
	if !(a > b) {
		return false
	}
	return ok
}
`
	if string(res.Output) != want {
		t.Fatalf("output:\n%s\nwant:\n%s", res.Output, want)
	}
}

func TestSelfAssignment(t *testing.T) {
	res := repairFixture(t, ruleSelfAssignment, "basic")
	rs := res.Stats.Rule(ruleSelfAssignment)
	if rs.Applied != 1 {
		t.Fatalf("applied = %d, want 1", rs.Applied)
	}
}

func TestSelfAssignmentSkipsPossibleSideEffects(t *testing.T) {
	src := `package fixtures

func keep(a []int, i func() int) {
	a[i()] = a[i()]
}
`
	res := repairSource(t, ruleSelfAssignment, src)
	if res.Changed {
		t.Fatalf("index expressions must not be treated as self-assignments")
	}
	if res.Stats.TotalFound() != 0 {
		t.Fatalf("found = %d, want 0", res.Stats.TotalFound())
	}
}

func TestRedundantParens(t *testing.T) {
	repairFixture(t, ruleRedundantParens, "basic")
}

// Nested violations land on ancestor nodes, so only the deepest pair is
// repaired per pass; the outer one is retried after the re-parse.
func TestRedundantParensNestedAcrossPasses(t *testing.T) {
	res := repairFixture(t, ruleRedundantParens, "deep")
	rs := res.Stats.Rule(ruleRedundantParens)
	if rs.Applied != 2 {
		t.Fatalf("applied = %d, want 2", rs.Applied)
	}
	if res.Stats.Passes != 3 {
		t.Fatalf("passes = %d, want 3", res.Stats.Passes)
	}
}

func TestSwitchMissingDefault(t *testing.T) {
	res := repairFixture(t, ruleSwitchMissingDefault, "basic")
	if res.Mode != render.ModeFull {
		t.Fatalf("mode = %v, want full render fallback", res.Mode)
	}
	if res.Stats.RenderFallbacks != 1 {
		t.Fatalf("fallbacks = %d, want 1", res.Stats.RenderFallbacks)
	}
}

func TestSwitchMissingDefaultTypeSwitch(t *testing.T) {
	src := `package fixtures

func kind(v interface{}) string {
	switch v.(type) {
	case int:
		return "int"
	}
	return "other"
}
`
	res := repairSource(t, ruleSwitchMissingDefault, src)
	if !res.Changed {
		t.Fatalf("type switch without default must be repaired")
	}
	if !bytes.Contains(res.Output, []byte("default:")) {
		t.Fatalf("output lacks default clause:\n%s", res.Output)
	}
}

func TestSwitchWithDefaultUntouched(t *testing.T) {
	src := `package fixtures

func describe(n int) string {
	switch n {
	case 0:
		return "zero"
	default:
		return "many"
	}
}
`
	res := repairSource(t, ruleSwitchMissingDefault, src)
	if res.Changed || res.Stats.TotalFound() != 0 {
		t.Fatalf("switch with default must not be flagged")
	}
}

func TestRepairIsIdempotent(t *testing.T) {
	first := repairFixture(t, ruleBoolLiteralCompare, "basic")

	eng := newEngine(t, ruleBoolLiteralCompare)
	fs := source.NewFileSet()
	id := fs.AddVirtual("basic.go", first.Output)
	second, err := eng.Repair(fs, id, engine.Options{})
	if err != nil {
		t.Fatalf("second Repair: %v", err)
	}
	if second.Changed || second.Stats.TotalApplied() != 0 {
		t.Fatalf("second run changed already-repaired output")
	}
}

func parseExprNode(t *testing.T, src string) ast.Expr {
	t.Helper()
	expr, err := parser.ParseExpr(src)
	if err != nil {
		t.Fatalf("ParseExpr(%q): %v", src, err)
	}
	return expr
}

func TestNegate(t *testing.T) {
	cases := []struct{ in, out string }{
		{"ready", "!ready"},
		{"c.ready", "!c.ready"},
		{"ready()", "!ready()"},
		{"a > b", "!(a > b)"},
		{"(a > b)", "!(a > b)"},
		{"!ready", "ready"},
	}
	for _, tc := range cases {
		expr := parseExprNode(t, tc.in)
		if got := negate(expr, tc.in); got != tc.out {
			t.Errorf("negate(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}
