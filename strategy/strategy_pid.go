package strategy

import (
	"math"

	"procfleet/future"
	"procfleet/jobsource"
	"procfleet/reaper"
	"procfleet/status"
)

// rawInflight is the PidSource analog of inflight: the result of waiting on
// a raw child, carried back to the drain loop over a channel.
type rawInflight struct {
	idx    int
	spec   future.JobSpec
	pid    int
	status status.Status
}

// ParallelUnlimitedPid is the raw-pid, no-capture counterpart of
// ParallelUnlimited. rp may be nil, in which case every child is waited on
// directly; a non-nil, registered Reaper lets the drain avoid a blocking
// wait per child.
func ParallelUnlimitedPid(src jobsource.PidSource, rp *reaper.Reaper) {
	ParallelBoundedPid(src, math.MaxInt32, rp)
}

// SequentialPid is the raw-pid counterpart of Sequential.
func SequentialPid(src jobsource.PidSource, rp *reaper.Reaper) {
	ParallelBoundedPid(src, 1, rp)
}

// ParallelBoundedPid is the raw-pid counterpart of ParallelBounded: it
// spawns up to n children at once, using PidSource instead of JobSource, and
// reports each exit status via OnComplete rather than a decoded Value — a
// status.Status carrying the exit code directly, with no captured stdout.
func ParallelBoundedPid(src jobsource.PidSource, n int, rp *reaper.Reaper) {
	if n <= 0 {
		n = 1
	}

	completions := make(chan rawInflight)
	running := 0
	index := 0

	spawnOne := func() bool {
		if !src.HasNext() {
			return false
		}
		spec := src.Next()
		idx := index
		index++
		running++

		pid, rc := spawnRawPid(spec)
		go func() {
			var st status.Status
			if rc == nil {
				st = status.Abnormal("spawn failed")
			} else {
				st = waitRawChild(rc, rp)
			}
			completions <- rawInflight{idx: idx, spec: spec, pid: pid, status: st}
		}()
		return true
	}

	for running < n {
		if !spawnOne() {
			break
		}
	}

	for running > 0 {
		job := <-completions
		running--
		src.OnComplete(job.idx, job.spec, job.pid, job.status)
		spawnOne()
	}
}
