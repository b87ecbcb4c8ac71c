// Package config loads procfleet's CLI-facing configuration. The fleet
// core itself takes no configuration; the cmd/ wrapper needs
// profile-driven settings for worker counts, logging, and storage paths,
// loaded from an INI file via gopkg.in/ini.v1 rather than a hand-rolled
// line scanner.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/ini.v1"
)

// Config holds procfleet's CLI-facing settings. The orchestration core
// (future, jobsource, strategy, reaper) never imports this package; only
// cmd/ and fleet do.
type Config struct {
	// MaxWorkers is the default ParallelBounded concurrency when a run
	// doesn't specify one explicitly.
	MaxWorkers int

	// LogsPath is where the log package writes categorized run logs.
	LogsPath string

	// DatabasePath is where package ledger opens its bbolt file.
	DatabasePath string

	Debug bool

	Profile string

	// Throttle configures stats.WorkerThrottler for RunParallelThrottled
	// runs. Zero value means "use stats.DefaultThresholds()".
	Throttle ThrottleConfig
}

// ThrottleConfig mirrors stats.Thresholds as INI-loadable fields; config
// does not import stats so the orchestration core stays config-agnostic.
// A zero field means "keep the default for this one setting".
type ThrottleConfig struct {
	LoadLowFactor  float64
	LoadHighFactor float64
	SwapLowPct     int
	SwapHighPct    int
	FloorFraction  float64
}

// defaultConfigPath is the system-wide config location checked when no
// --config flag is given.
const defaultConfigPath = "/etc/procfleet/procfleet.ini"

// Load reads configuration from path (or defaultConfigPath if empty),
// falling back to built-in defaults for any field the file omits or if no
// file exists at all, so a fresh install runs without any config file
// present.
func Load(path, profile string) (*Config, error) {
	cfg := &Config{
		MaxWorkers:   runtime.NumCPU(),
		LogsPath:     "/var/log/procfleet",
		DatabasePath: "/var/db/procfleet/runs.db",
		Profile:      profile,
	}
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = 1
	}

	if path == "" {
		path = defaultConfigPath
	}
	if _, err := os.Stat(path); err != nil {
		// No config file is not an error: run with built-in defaults.
		return cfg, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: loading %s: %w", path, err)
	}

	section := file.Section(profile)
	if section == nil || !section.HasKey("max_workers") {
		section = file.Section("")
	}

	if section.HasKey("max_workers") {
		if v, err := section.Key("max_workers").Int(); err == nil && v > 0 {
			cfg.MaxWorkers = v
		}
	}
	if section.HasKey("logs_path") {
		cfg.LogsPath = section.Key("logs_path").String()
	}
	if section.HasKey("database_path") {
		cfg.DatabasePath = section.Key("database_path").String()
	}
	if section.HasKey("debug") {
		cfg.Debug, _ = section.Key("debug").Bool()
	}

	throttle := file.Section("throttle")
	if throttle.HasKey("load_low_factor") {
		cfg.Throttle.LoadLowFactor, _ = throttle.Key("load_low_factor").Float64()
	}
	if throttle.HasKey("load_high_factor") {
		cfg.Throttle.LoadHighFactor, _ = throttle.Key("load_high_factor").Float64()
	}
	if throttle.HasKey("swap_low_pct") {
		cfg.Throttle.SwapLowPct, _ = throttle.Key("swap_low_pct").Int()
	}
	if throttle.HasKey("swap_high_pct") {
		cfg.Throttle.SwapHighPct, _ = throttle.Key("swap_high_pct").Int()
	}
	if throttle.HasKey("floor_fraction") {
		cfg.Throttle.FloorFraction, _ = throttle.Key("floor_fraction").Float64()
	}

	return cfg, nil
}

// EnsureDirs creates cfg's LogsPath and the parent directory of
// DatabasePath if they do not already exist.
func (c *Config) EnsureDirs() error {
	if err := os.MkdirAll(c.LogsPath, 0o755); err != nil {
		return fmt.Errorf("config: creating logs path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.DatabasePath), 0o755); err != nil {
		return fmt.Errorf("config: creating database directory: %w", err)
	}
	return nil
}
