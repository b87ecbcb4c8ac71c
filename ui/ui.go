// Package ui renders fleet progress behind a small interface so a run can
// be watched from a plain terminal or a full-screen dashboard without the
// orchestration code caring which.
package ui

import "procfleet/stats"

// FleetUI displays the progress of a running fleet.
type FleetUI interface {
	// Start initializes the UI (e.g., sets up the ncurses screen).
	Start() error

	// Stop cleanly shuts the UI down (e.g., restores the terminal).
	Stop()

	// LogEvent logs a single child-process event, e.g. "[slot 2] spawned pid 4821".
	LogEvent(slot int, message string)

	// OnStatsUpdate receives a fresh snapshot on every sampling tick. It
	// satisfies stats.StatsConsumer.
	OnStatsUpdate(s stats.FleetStats)
}
