// Package fleet is the orchestration facade: it bundles configuration,
// logging, and persistent run history behind one type so cmd/ (the CLI
// layer) never has to wire strategy/jobsource/ledger/log together itself.
package fleet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"procfleet/config"
	"procfleet/jobsource"
	"procfleet/ledger"
	"procfleet/log"
	"procfleet/stats"
	"procfleet/strategy"
	"procfleet/ui"
)

// Fleet coordinates one or more runs against a shared configuration,
// logger, and ledger.
type Fleet struct {
	cfg    *config.Config
	logger *log.Logger
	db     *ledger.DB

	mu            sync.Mutex
	activeCleanup func()
}

// New creates a Fleet, opening the logger and ledger the given config
// points at. Close releases both.
func New(cfg *config.Config) (*Fleet, error) {
	if err := cfg.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("ensure dirs: %w", err)
	}

	logger, err := log.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("open logger: %w", err)
	}

	db, err := ledger.Open(cfg.DatabasePath)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	return &Fleet{cfg: cfg, logger: logger, db: db}, nil
}

// Close releases the logger and ledger.
func (f *Fleet) Close() error {
	var err error
	if f.db != nil {
		if e := f.db.Close(); e != nil {
			err = e
		}
	}
	if f.logger != nil {
		f.logger.Close()
	}
	return err
}

func (f *Fleet) Config() *config.Config { return f.cfg }
func (f *Fleet) Logger() *log.Logger    { return f.logger }
func (f *Fleet) Ledger() *ledger.DB     { return f.db }

// RunMode selects which strategy.* function drives a run.
type RunMode int

const (
	// RunSequential drives the source with strategy.Sequential.
	RunSequential RunMode = iota
	// RunParallelUnlimited drives the source with strategy.ParallelUnlimited.
	RunParallelUnlimited
	// RunParallelBounded drives the source with strategy.ParallelBounded(n).
	RunParallelBounded
	// RunParallelThrottled drives the source with strategy.ParallelDynamic,
	// fed by a stats.WorkerThrottler reacting to live load/swap readings.
	RunParallelThrottled
)

// RunOptions configures one Fleet.Run call.
type RunOptions struct {
	Mode RunMode
	// N is the concurrency bound for RunParallelBounded.
	N int
	// UI, if non-nil, receives live LogEvent/OnStatsUpdate callbacks for the
	// duration of the run.
	UI ui.FleetUI
}

// Summary is the outcome of one Fleet.Run call.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Duration  time.Duration
}

// Run drives src to completion under the selected RunMode, recording every
// completion to the ledger and forwarding progress to opts.UI if given.
// This is the single entry point cmd/ calls for every subcommand that
// spawns children.
func (f *Fleet) Run(src jobsource.JobSource, opts RunOptions) (*Summary, error) {
	start := time.Now()
	summary := &Summary{}

	collector := stats.NewCollector(context.Background(), opts.N)
	defer collector.Close()

	if opts.UI != nil {
		collector.AddConsumer(opts.UI)
		if err := opts.UI.Start(); err != nil {
			return nil, fmt.Errorf("start ui: %w", err)
		}
		defer opts.UI.Stop()
	}

	tracked := &trackingSource{
		inner:     src,
		fleet:     f,
		summary:   summary,
		collector: collector,
		ui:        opts.UI,
	}

	switch opts.Mode {
	case RunSequential:
		strategy.Sequential(tracked)
	case RunParallelUnlimited:
		strategy.ParallelUnlimited(tracked)
	case RunParallelThrottled:
		throttler := stats.NewWorkerThrottlerWithThresholds(opts.N, false, f.throttleThresholds())
		strategy.ParallelDynamic(tracked, func() int {
			snap := collector.Snapshot()
			return throttler.CalculateDynMax(snap.Load, snap.SwapPct)
		})
	default:
		strategy.ParallelBounded(tracked, opts.N)
	}

	summary.Duration = time.Since(start)
	f.logger.WriteSummary(summary.Total, summary.Succeeded, summary.Failed, summary.Duration)
	return summary, nil
}

// throttleThresholds builds a stats.Thresholds from the Fleet's config,
// falling back field-by-field to stats.DefaultThresholds for anything the
// config left at its zero value.
func (f *Fleet) throttleThresholds() stats.Thresholds {
	th := stats.DefaultThresholds()
	cfg := f.cfg.Throttle
	if cfg.LoadLowFactor != 0 {
		th.LoadLowFactor = cfg.LoadLowFactor
	}
	if cfg.LoadHighFactor != 0 {
		th.LoadHighFactor = cfg.LoadHighFactor
	}
	if cfg.SwapLowPct != 0 {
		th.SwapLowPct = cfg.SwapLowPct
	}
	if cfg.SwapHighPct != 0 {
		th.SwapHighPct = cfg.SwapHighPct
	}
	if cfg.FloorFraction != 0 {
		th.FloorFraction = cfg.FloorFraction
	}
	return th
}

// SetActiveCleanup stores a cleanup function (e.g. a launcher.Launcher's
// Cleanup) for the in-flight run, so a signal handler can reach it without
// Run having returned yet.
func (f *Fleet) SetActiveCleanup(cleanup func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activeCleanup = cleanup
}

// ActiveCleanup returns the stored cleanup function, or nil if none is set.
func (f *Fleet) ActiveCleanup() func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activeCleanup
}

// ClearActiveCleanup removes the stored cleanup function.
func (f *Fleet) ClearActiveCleanup() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activeCleanup = nil
}
