package ui

import (
	"fmt"
	"sync"
	"time"

	"procfleet/stats"
)

// Stdout implements FleetUI with plain, line-oriented terminal output.
type Stdout struct {
	mu        sync.Mutex
	lastPrint time.Time
}

// NewStdout creates a stdout-based UI.
func NewStdout() *Stdout {
	return &Stdout{}
}

func (u *Stdout) Start() error { return nil }

func (u *Stdout) Stop() {
	fmt.Println()
}

func (u *Stdout) LogEvent(slot int, message string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Printf("\r%-80s\n", fmt.Sprintf("[slot %d] %s", slot, message))
}

// OnStatsUpdate prints a condensed status line, throttled to once every 5s
// so a fast-completing fleet doesn't flood the terminal.
func (u *Stdout) OnStatsUpdate(s stats.FleetStats) {
	u.mu.Lock()
	defer u.mu.Unlock()

	now := time.Now()
	if now.Sub(u.lastPrint) < 5*time.Second {
		return
	}
	u.lastPrint = now

	line := fmt.Sprintf("\r[%s] Load %.2f Swap %d%% Rate %s/hr OK %d Failed %d Remaining %d",
		stats.FormatDuration(s.Elapsed), s.Load, s.SwapPct,
		stats.FormatRate(s.Rate), s.Succeeded, s.Failed, s.Remaining)

	if s.DynMaxWorkers < s.MaxWorkers {
		line += fmt.Sprintf(" [THROTTLED: %s]", stats.ThrottleReason(s))
	}

	fmt.Printf("%-100s\n", line)
}
