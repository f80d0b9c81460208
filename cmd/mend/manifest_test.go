package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "mend.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestFindMendTomlWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[repair]\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	found, ok, err := findMendToml(nested)
	if err != nil {
		t.Fatalf("findMendToml: %v", err)
	}
	if !ok || found != filepath.Join(root, "mend.toml") {
		t.Fatalf("found = %q ok = %v", found, ok)
	}
}

func TestLoadProjectManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[repair]
rules = ["bool-literal-compare", "self-assignment"]
mode = "full"
max_passes = 4
jobs = 2
cache = false
`)

	manifest, ok, err := loadProjectManifest(dir)
	if err != nil {
		t.Fatalf("loadProjectManifest: %v", err)
	}
	if !ok {
		t.Fatalf("manifest not found")
	}
	cfg := manifest.Config.Repair
	if len(cfg.Rules) != 2 || cfg.Rules[0] != "bool-literal-compare" {
		t.Fatalf("rules = %v", cfg.Rules)
	}
	if cfg.Mode != "full" || cfg.MaxPasses != 4 || cfg.Jobs != 2 {
		t.Fatalf("config = %+v", cfg)
	}
	if cfg.Cache == nil || *cfg.Cache {
		t.Fatalf("cache = %v, want explicit false", cfg.Cache)
	}
}

func TestLoadProjectManifestRejectsBadMode(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[repair]\nmode = \"pretty\"\n")

	if _, _, err := loadProjectManifest(dir); err == nil {
		t.Fatalf("invalid render mode must be rejected at load time")
	}
}

func TestMissingManifestIsNotAnError(t *testing.T) {
	// An isolated directory tree; the walk stops at the filesystem root.
	dir := t.TempDir()
	manifest, ok, err := loadProjectManifest(dir)
	if err != nil {
		t.Fatalf("loadProjectManifest: %v", err)
	}
	if manifest != nil && ok {
		// A mend.toml above the temp dir is environment-dependent; only
		// assert that absence is tolerated when nothing was found.
		t.Skip("ambient mend.toml found above temp dir")
	}
}
