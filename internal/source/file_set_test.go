package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAddVirtualAssignsSequentialIDs(t *testing.T) {
	fs := NewFileSet()

	a := fs.AddVirtual("a.go", []byte("package a\n"))
	b := fs.AddVirtual("b.go", []byte("package b\n"))

	if a == b {
		t.Fatalf("expected distinct file ids, got %d twice", a)
	}
	if fs.Get(a).Path != "a.go" || fs.Get(b).Path != "b.go" {
		t.Fatalf("paths not preserved: %q, %q", fs.Get(a).Path, fs.Get(b).Path)
	}
	if fs.Get(a).Flags&FileVirtual == 0 {
		t.Fatalf("expected FileVirtual flag on %q", fs.Get(a).Path)
	}
}

func TestLoadNormalizesCRLFAndBOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.go")
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("package x\r\nvar a = 1\r\n")...)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	f := fs.Get(id)
	if string(f.Content) != "package x\nvar a = 1\n" {
		t.Fatalf("content not normalized: %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 {
		t.Fatal("expected FileHadBOM flag")
	}
	if f.Flags&FileNormalizedCRLF == 0 {
		t.Fatal("expected FileNormalizedCRLF flag")
	}
}

func TestAddSamePathKeepsLatestInIndex(t *testing.T) {
	fs := NewFileSet()
	fs.AddVirtual("main.go", []byte("old"))
	latest := fs.AddVirtual("main.go", []byte("new"))

	f, ok := fs.GetByPath("main.go")
	if !ok {
		t.Fatal("path not found")
	}
	if f.ID != latest {
		t.Fatalf("index points at %d, want latest %d", f.ID, latest)
	}
	if string(f.Content) != "new" {
		t.Fatalf("unexpected content %q", f.Content)
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("lc.go", []byte("one\ntwo\nthree"))

	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{3, LineCol{1, 4}}, // the newline belongs to line 1
		{4, LineCol{2, 1}},
		{6, LineCol{2, 3}},
		{8, LineCol{3, 1}},
		{12, LineCol{3, 5}},
	}
	for _, tc := range cases {
		start, _ := fs.Resolve(Span{File: id, Start: tc.off, End: tc.off})
		if start != tc.want {
			t.Errorf("offset %d: got %d:%d, want %d:%d",
				tc.off, start.Line, start.Col, tc.want.Line, tc.want.Col)
		}
	}
}

func TestFormatPath(t *testing.T) {
	fs := NewFileSetWithBase("/work/proj")
	id := fs.AddVirtual("/work/proj/sub/f.go", []byte("package f\n"))
	f := fs.Get(id)

	if got := f.FormatPath("relative", fs.BaseDir()); got != "sub/f.go" {
		t.Fatalf("relative = %q", got)
	}
	if got := f.FormatPath("basename", ""); got != "f.go" {
		t.Fatalf("basename = %q", got)
	}
	if got := f.FormatPath("absolute", ""); got != "/work/proj/sub/f.go" {
		t.Fatalf("absolute = %q", got)
	}
	if got := f.FormatPath("auto", ""); got != "/work/proj/sub/f.go" {
		t.Fatalf("auto must keep short paths, got %q", got)
	}
	if got := f.FormatPath("unknown-mode", ""); got != "/work/proj/sub/f.go" {
		t.Fatalf("unknown mode = %q", got)
	}

	long := fs.Get(fs.AddVirtual("/work/project/internal/deeply/nested/pkg/file.go", []byte("package pkg\n")))
	if got := long.FormatPath("auto", ""); got != "file.go" {
		t.Fatalf("auto must shorten long absolute paths, got %q", got)
	}
}

func TestFileSetBaseDirFallsBackToWorkingDir(t *testing.T) {
	fs := NewFileSet()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if got := fs.BaseDir(); got != wd {
		t.Fatalf("BaseDir = %q, want working dir %q", got, wd)
	}
}

func TestFileLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("lines.go", []byte("first\nsecond\nthird"))
	f := fs.Get(id)

	if got := f.Line(1); got != "first" {
		t.Fatalf("line 1 = %q", got)
	}
	if got := f.Line(2); got != "second" {
		t.Fatalf("line 2 = %q", got)
	}
	if got := f.Line(3); got != "third" {
		t.Fatalf("line 3 = %q", got)
	}
	if got := f.Line(4); got != "" {
		t.Fatalf("line 4 = %q, want empty", got)
	}
	if got := f.Line(0); got != "" {
		t.Fatalf("line 0 = %q, want empty", got)
	}
}
