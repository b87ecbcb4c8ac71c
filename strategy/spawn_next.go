// Package strategy implements the spawn-and-reap loops: single-step
// spawning, and the three multi-job policies (unlimited parallel, bounded-N
// parallel, sequential) over both the capture-and-decode JobSource and the
// raw-pid PidSource capability sets.
//
// Because package future already drains each child's pipe on its own
// goroutine (see future.New), multiplexing many descriptors with a timeout
// is already discharged per Future; what remains here is multiplexing many
// Futures' *completions*, which this package does with an idiomatic Go
// fan-in over channels rather than a central poll/select loop (see
// DESIGN.md, Open Question OQ-2).
package strategy

import "procfleet/jobsource"

// SpawnNext performs a single spawn step against a pid-only source: if more
// work remains, it spawns the next job and returns the live pid plus true;
// otherwise it returns (0, false) without side effects. Callers that want to
// batch-spawn and drive completion manually (e.g. via their own reaper
// polling) use this instead of one of the strategies below, which both
// spawn and drain to completion.
func SpawnNext(src jobsource.PidSource) (int, bool) {
	if !src.HasNext() {
		return 0, false
	}
	spec := src.Next()
	pid, _ := spawnRawPid(spec)
	return pid, true
}
