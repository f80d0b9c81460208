package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"mend/internal/render"
)

// projectManifest is an optional mend.toml discovered by walking up
// from the repair target. Command-line flags override its values.
type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Repair repairConfig `toml:"repair"`
}

type repairConfig struct {
	Rules             []string `toml:"rules"`
	Mode              string   `toml:"mode"`
	MaxPasses         int      `toml:"max_passes"`
	MaxRepairsPerRule int      `toml:"max_repairs_per_rule"`
	Jobs              int      `toml:"jobs"`
	Cache             *bool    `toml:"cache"`
}

func findMendToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "mend.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadProjectManifest finds and parses the nearest mend.toml. A missing
// manifest is not an error: every setting has a flag default.
func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findMendToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if meta.IsDefined("repair", "mode") {
		if _, err := render.ParseMode(cfg.Repair.Mode); err != nil {
			return projectConfig{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	return cfg, nil
}
