package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mend/internal/diagfmt"
	"mend/internal/driver"
	"mend/internal/engine"
	"mend/internal/lang"
	"mend/internal/lang/golang"
	"mend/internal/observ"
	"mend/internal/render"
	"mend/internal/rules"
	"mend/internal/rules/gorules"
)

var repairCmd = &cobra.Command{
	Use:   "repair [flags] <file|directory>",
	Short: "Repair rule violations in a source file or directory",
	Long:  "Analyze the target for rule violations and rewrite the code in place to eliminate the repairable ones.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepair,
}

func init() {
	repairCmd.Flags().StringSlice("rule", nil, "rule ids to repair (default: all)")
	repairCmd.Flags().String("mode", "targeted", "render mode (targeted|full)")
	repairCmd.Flags().Bool("dry-run", false, "report repairs without writing files")
	repairCmd.Flags().Int("max-passes", 0, "maximum repair passes per file (0 = default)")
	repairCmd.Flags().Int("max-repairs-per-rule", 0, "per-rule repair cap per file (0 = unlimited)")
	repairCmd.Flags().Int("jobs", 0, "parallel workers in directory mode (0 = GOMAXPROCS)")
	repairCmd.Flags().Bool("no-cache", false, "disable the clean-file cache")
	repairCmd.Flags().Bool("clear-cache", false, "drop all cached clean verdicts before running")
	repairCmd.Flags().String("stats", "", "write JSON statistics to a file, or - for stdout")
}

// newCatalog builds the backend and rule registries. Registration
// errors here mean a broken build, not bad user input.
func newCatalog() (*lang.Registry, *rules.Registry, error) {
	backends := lang.NewRegistry()
	if err := backends.Register(golang.New()); err != nil {
		return nil, nil, err
	}
	catalog := rules.NewRegistry()
	if err := gorules.RegisterAll(catalog); err != nil {
		return nil, nil, err
	}
	return backends, catalog, nil
}

func runRepair(cmd *cobra.Command, args []string) error {
	target := args[0]

	opts, statsPath, err := resolveRepairOptions(cmd, target)
	if err != nil {
		return err
	}

	backends, catalog, err := newCatalog()
	if err != nil {
		return err
	}

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	showTimings, _ := cmd.Root().PersistentFlags().GetBool("timings")
	printer := diagfmt.NewPrinter(cmd.OutOrStdout(), colorEnabled(cmd), quiet, terminalWidth())

	timer := observ.NewTimer()

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("repair: %w", err)
	}

	var report *driver.ProjectReport
	stop := timer.Begin("repair")
	if info.IsDir() {
		report, err = driver.RepairDir(cmd.Context(), backends, catalog, target, opts)
	} else {
		report, err = repairSingle(backends, catalog, target, opts)
	}
	if err != nil {
		return fmt.Errorf("repair: %w", err)
	}
	stop(fmt.Sprintf("%d files", len(report.Files)))

	printer.Project(report)
	if showTimings {
		printer.Timings(timer)
	}

	if statsPath != "" {
		var timings *observ.Report
		if showTimings {
			r := timer.Report()
			timings = &r
		}
		if err := writeStats(statsPath, report, timings); err != nil {
			return fmt.Errorf("repair: %w", err)
		}
	}
	return nil
}

func repairSingle(backends *lang.Registry, catalog *rules.Registry, path string, opts driver.Options) (*driver.ProjectReport, error) {
	backend, ok := backends.ForPath(path)
	if !ok {
		return nil, fmt.Errorf("no backend registered for %q files", filepath.Ext(path))
	}
	fileReport, err := driver.RepairFile(backend, catalog, path, opts)
	if err != nil {
		return nil, err
	}
	report := &driver.ProjectReport{
		Files: []*driver.FileReport{fileReport},
		Stats: engine.NewStatistics(),
	}
	report.Stats.Merge(fileReport.Stats)
	return report, nil
}

// resolveRepairOptions merges flags over the optional mend.toml: an
// explicitly set flag always wins over the manifest.
func resolveRepairOptions(cmd *cobra.Command, target string) (driver.Options, string, error) {
	flags := cmd.Flags()

	startDir := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		startDir = filepath.Dir(target)
	}
	manifest, found, err := loadProjectManifest(startDir)
	if err != nil {
		return driver.Options{}, "", err
	}

	var cfg repairConfig
	if found {
		cfg = manifest.Config.Repair
	}

	ruleIDs, _ := flags.GetStringSlice("rule")
	if !flags.Changed("rule") && len(cfg.Rules) > 0 {
		ruleIDs = cfg.Rules
	}

	modeName, _ := flags.GetString("mode")
	if !flags.Changed("mode") && cfg.Mode != "" {
		modeName = cfg.Mode
	}
	mode, err := render.ParseMode(modeName)
	if err != nil {
		return driver.Options{}, "", err
	}

	maxPasses, _ := flags.GetInt("max-passes")
	if !flags.Changed("max-passes") && cfg.MaxPasses > 0 {
		maxPasses = cfg.MaxPasses
	}
	maxPerRule, _ := flags.GetInt("max-repairs-per-rule")
	if !flags.Changed("max-repairs-per-rule") && cfg.MaxRepairsPerRule > 0 {
		maxPerRule = cfg.MaxRepairsPerRule
	}
	jobs, _ := flags.GetInt("jobs")
	if !flags.Changed("jobs") && cfg.Jobs > 0 {
		jobs = cfg.Jobs
	}

	noCache, _ := flags.GetBool("no-cache")
	useCache := !noCache
	if !flags.Changed("no-cache") && cfg.Cache != nil {
		useCache = *cfg.Cache
	}
	dryRun, _ := flags.GetBool("dry-run")
	clearCache, _ := flags.GetBool("clear-cache")

	var cache *driver.Cache
	if clearCache || (useCache && !dryRun) {
		cache, err = driver.OpenCache("mend")
		if err != nil {
			// A broken cache directory degrades to uncached operation.
			cache = nil
		}
	}
	if clearCache {
		if err := cache.DropAll(); err != nil {
			return driver.Options{}, "", fmt.Errorf("clear cache: %w", err)
		}
	}
	if !useCache || dryRun {
		cache = nil
	}

	statsPath, _ := flags.GetString("stats")

	return driver.Options{
		Rules: ruleIDs,
		Mode:  mode,
		Budget: engine.Budget{
			MaxPasses:         maxPasses,
			MaxRepairsPerRule: maxPerRule,
		},
		DryRun: dryRun,
		Jobs:   jobs,
		Cache:  cache,
	}, statsPath, nil
}

func writeStats(path string, report *driver.ProjectReport, timings *observ.Report) error {
	if path == "-" {
		return diagfmt.WriteStats(os.Stdout, report, timings)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := diagfmt.WriteStats(f, report, timings); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func terminalWidth() int {
	if w, _, err := termSize(); err == nil && w > 0 {
		return w
	}
	return 100
}
