package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

const cleanSource = "package p\n\nvar answer = 42\n"

func runMend(t *testing.T, args ...string) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("mend %v: %v\n%s", args, err, out.String())
	}
}

func readStats(t *testing.T, path string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read stats: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("stats output is not valid JSON: %v", err)
	}
	return decoded
}

func TestStatsTimingsFollowTimingsFlag(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.go")
	if err := os.WriteFile(file, []byte(cleanSource), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	statsPath := filepath.Join(dir, "stats.json")

	defer repairCmd.Flags().Set("stats", "")
	runMend(t, "repair", "--no-cache", "--stats", statsPath, file)
	if _, ok := readStats(t, statsPath)["timings"]; ok {
		t.Fatal("stats must omit timings unless --timings is set")
	}

	defer rootCmd.PersistentFlags().Set("timings", "false")
	runMend(t, "repair", "--timings", "--no-cache", "--stats", statsPath, file)
	if _, ok := readStats(t, statsPath)["timings"]; !ok {
		t.Fatal("stats must include timings when --timings is set")
	}
}

func TestClearCacheDropsStoredVerdicts(t *testing.T) {
	cacheRoot := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheRoot)

	stale := filepath.Join(cacheRoot, "mend", "clean", "stale.mp")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(stale, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	dir := t.TempDir()
	file := filepath.Join(dir, "f.go")
	if err := os.WriteFile(file, []byte(cleanSource), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	defer repairCmd.Flags().Set("clear-cache", "false")
	runMend(t, "repair", "--clear-cache", file)

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale verdict survived --clear-cache: %v", err)
	}
}
