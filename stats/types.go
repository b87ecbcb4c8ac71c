// Package stats provides real-time fleet statistics collection and
// monitoring: a 1 Hz sampling loop and sliding-window rate calculation over
// job runs.
package stats

import (
	"fmt"
	"time"
)

// FleetStats is the unified snapshot shared across all stats consumers (e.g.
// a FleetUI).
type FleetStats struct {
	// Worker Metrics
	ActiveWorkers int // Currently running children
	MaxWorkers    int // Configured max
	DynMaxWorkers int // Dynamic max (throttled by load/swap)

	// System Metrics
	Load    float64 // Adjusted 1-min load average
	SwapPct int     // Swap usage percentage (0-100)
	NoSwap  bool

	// Rate Metrics
	Rate    float64 // Completions/hour (60s sliding window)
	Impulse float64 // Completions in the previous 1s bucket

	// Timing
	Elapsed   time.Duration
	StartTime time.Time

	// Totals
	Queued    int
	Succeeded int
	Failed    int
	Skipped   int // Skipped because a dependency failed (jobgraph)
	Remaining int
}

// JobStatus classifies how one job run ended, for stats purposes.
type JobStatus int

const (
	JobOk JobStatus = iota
	JobFailed
	JobSkipped
)

func (s JobStatus) String() string {
	switch s {
	case JobOk:
		return "ok"
	case JobFailed:
		return "failed"
	case JobSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// StatsConsumer receives a fresh FleetStats snapshot on every sampling tick.
type StatsConsumer interface {
	OnStatsUpdate(stats FleetStats)
}

// FormatDuration formats a duration as HH:MM:SS for display.
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FormatRate formats a completions/hour rate for display.
func FormatRate(rate float64) string {
	if rate < 0.1 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", rate)
}

// ThrottleReason returns a human-readable reason the dynamic worker cap is
// below the configured max, or "" if not throttled.
func ThrottleReason(s FleetStats) string {
	if s.DynMaxWorkers >= s.MaxWorkers {
		return ""
	}
	estimatedNCPUs := s.MaxWorkers
	if s.Load > float64(estimatedNCPUs)*2.0 {
		return "high load"
	}
	if s.SwapPct > 10 {
		return "high swap"
	}
	return "system resources"
}
