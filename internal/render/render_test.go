package render

import (
	"testing"

	"mend/internal/source"
	"mend/internal/tree"
)

func edit(start, end uint32, newText, oldText string) tree.TextEdit {
	return tree.TextEdit{
		Span:    source.Span{File: 0, Start: start, End: end},
		NewText: newText,
		OldText: oldText,
	}
}

func TestSpliceAppliesDisjointEdits(t *testing.T) {
	src := []byte("aa bb cc")
	out, err := Splice(src, []tree.TextEdit{
		edit(0, 2, "X", "aa"),
		edit(6, 8, "ZZZZ", "cc"),
	})
	if err != nil {
		t.Fatalf("splice: %v", err)
	}
	if string(out) != "X bb ZZZZ" {
		t.Fatalf("out = %q", out)
	}
	if string(src) != "aa bb cc" {
		t.Fatalf("source mutated: %q", src)
	}
}

func TestSplicePreservesUntouchedBytes(t *testing.T) {
	src := []byte("prefix MIDDLE suffix")
	out, err := Splice(src, []tree.TextEdit{edit(7, 13, "mid", "MIDDLE")})
	if err != nil {
		t.Fatalf("splice: %v", err)
	}
	if string(out[:7]) != "prefix " || string(out[10:]) != " suffix" {
		t.Fatalf("bytes outside the edit changed: %q", out)
	}
}

func TestSpliceInsertionAndDeletion(t *testing.T) {
	src := []byte("one two")
	out, err := Splice(src, []tree.TextEdit{
		edit(3, 3, " and", ""), // insert
		edit(4, 7, "", "two"),  // delete
	})
	if err != nil {
		t.Fatalf("splice: %v", err)
	}
	if string(out) != "one and " {
		t.Fatalf("out = %q", out)
	}
}

func TestSpliceRejectsOverlap(t *testing.T) {
	src := []byte("abcdef")
	_, err := Splice(src, []tree.TextEdit{
		edit(0, 4, "x", ""),
		edit(2, 6, "y", ""),
	})
	if err == nil {
		t.Fatal("expected overlap error")
	}
}

func TestSpliceRejectsStaleGuard(t *testing.T) {
	src := []byte("abcdef")
	_, err := Splice(src, []tree.TextEdit{edit(0, 3, "x", "zzz")})
	if err == nil {
		t.Fatal("expected guard mismatch error")
	}
}

func TestSpliceRejectsOutOfRange(t *testing.T) {
	src := []byte("ab")
	_, err := Splice(src, []tree.TextEdit{edit(1, 9, "x", "")})
	if err == nil {
		t.Fatal("expected range error")
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("full"); err != nil || m != ModeFull {
		t.Fatalf("full: %v %v", m, err)
	}
	if m, err := ParseMode("targeted"); err != nil || m != ModeTargeted {
		t.Fatalf("targeted: %v %v", m, err)
	}
	if m, err := ParseMode(""); err != nil || m != ModeTargeted {
		t.Fatalf("default: %v %v", m, err)
	}
	if _, err := ParseMode("pretty"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
