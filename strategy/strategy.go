package strategy

import (
	"context"
	"math"

	"procfleet/future"
	"procfleet/jobsource"
)

// inflight tracks one spawned-but-not-yet-settled Future alongside the
// spawn-order index and JobSpec the source produced it from.
type inflight struct {
	idx  int
	spec future.JobSpec
	fut  *future.Future
}

// ParallelUnlimited spawns every job src produces back-to-back, then drains
// until all have settled. Completions are delivered to src.OnComplete in
// settle order. It is a total function: it always runs to exhaustion of
// src, with no cancellation built into the core loop.
func ParallelUnlimited(src jobsource.JobSource) {
	ParallelBounded(src, math.MaxInt32)
}

// Sequential runs src one job at a time: the next job is not spawned until
// the previous one has settled, so settle order equals spawn order by
// construction.
func Sequential(src jobsource.JobSource) {
	ParallelBounded(src, 1)
}

// ParallelBounded runs src keeping at most n Futures live at once. Each time
// one settles, the next job (if any) is pulled from src before returning to
// the drain. With n == 1 this degenerates to Sequential; with n large enough
// to exceed src's total job count it degenerates to ParallelUnlimited.
//
// The drain itself is a fan-in over per-Future goroutines rather than a
// central poll/select loop: each spawned Future gets one goroutine blocked
// in Get, forwarding its completion once settled. The per-Future read
// goroutine inside package future already guarantees no child can deadlock
// the parent by filling its pipe, so strategy only has to fan in
// completions, not multiplex raw descriptors itself.
func ParallelBounded(src jobsource.JobSource, n int) {
	ParallelDynamic(src, func() int { return n })
}

// ParallelDynamic is ParallelBounded with the concurrency ceiling read from
// capFn instead of a fixed N, re-evaluated before every spawn decision. This
// is what lets a caller hand in stats.WorkerThrottler.CalculateDynMax so the
// live worker count tracks system load/swap between completions.
func ParallelDynamic(src jobsource.JobSource, capFn func() int) {
	completions := make(chan inflight)
	running := 0
	index := 0

	ceiling := func() int {
		n := capFn()
		if n <= 0 {
			return 1
		}
		return n
	}

	spawnOne := func() bool {
		if running >= ceiling() || !src.HasNext() {
			return false
		}
		spec, dec := src.Next()
		fut := future.New(spec, dec)
		job := inflight{idx: index, spec: spec, fut: fut}
		index++
		running++
		go func() {
			fut.Get(context.Background())
			completions <- job
		}()
		return true
	}

	for spawnOne() {
	}

	for running > 0 {
		job := <-completions
		running--
		v, st := job.fut.Get(context.Background())
		src.OnComplete(jobsource.Completion{
			Index:  job.idx,
			Spec:   job.spec,
			Value:  v,
			Status: st,
		})
		for spawnOne() {
		}
	}
}
