// Package reaper implements a signal-safe reaper: a process-wide table of
// reaped children, populated by a SIGCHLD watcher, so that the loops in
// package strategy can learn of exits without racing a blocking
// syscall.Wait4 against a child that hasn't exited yet.
//
// Registration is optional and idempotent: callers that never call Register
// get a Reaper that always reports TryTake as empty, pushing strategy back
// to direct per-pid blocking waits — slower, but still correct.
package reaper

import (
	"errors"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// DefaultCapacity is the ring capacity used when none is given.
const DefaultCapacity = 1024

// ErrAlreadyRegistered is returned by a second call to Register on the same
// Reaper. Registration is idempotent in effect (the watcher keeps running),
// but only the first call installs the handler.
var ErrAlreadyRegistered = errors.New("reaper: already registered")

type slot struct {
	// occupied is 1 once a (pid, status) pair has been written and not yet
	// taken; 0 when free. Transitions are made with atomic CAS only, so the
	// producer (signal watcher) and consumer (TryTake) never take a lock.
	occupied atomic.Uint32
	pid      atomic.Int64
	status   atomic.Uint64 // raw syscall.WaitStatus bits
}

// Reaper maintains a fixed-capacity ring of reaped {pid, status} pairs.
// The zero value is a usable, unregistered Reaper (TryTake always misses).
type Reaper struct {
	slots      []slot
	next       atomic.Uint64 // next ring index a newly-reaped pid is written to
	overflow   atomic.Bool
	registered atomic.Bool
	stop       chan struct{}
}

// New creates a Reaper with the given ring capacity. Capacity <= 0 uses
// DefaultCapacity.
func New(capacity int) *Reaper {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Reaper{
		slots: make([]slot, capacity),
		stop:  make(chan struct{}),
	}
}

// Overflowed reports whether the ring has ever filled while a SIGCHLD burst
// was being drained. Once true it stays true: callers (strategy) must treat
// this Reaper as unreliable from that point on and fall back to direct
// blocking waits for any pid they can't find via TryTake.
func (r *Reaper) Overflowed() bool {
	return r.overflow.Load()
}

// Register installs a SIGCHLD watcher that repeatedly performs a
// non-blocking wait-any (syscall.Wait4(-1, ..., WNOHANG)) whenever SIGCHLD
// fires, until no more zombies remain, recording each (pid, raw status)
// into the ring.
//
// The watcher never allocates per-signal and never blocks: it is a
// wait4/WNOHANG loop gated by a buffered notification channel, the same
// shape as the SIGCHLD-driven reap loop in a typical Go child-reaping
// daemon (e.g. a container init process).
//
// Register is safe to call at most once per Reaper; a second call returns
// ErrAlreadyRegistered. It is always optional: strategies function
// correctly, only slower, with no Reaper registered at all.
func (r *Reaper) Register() error {
	if !r.registered.CompareAndSwap(false, true) {
		return ErrAlreadyRegistered
	}

	sigs := make(chan os.Signal, 16)
	signal.Notify(sigs, syscall.SIGCHLD)

	go r.watch(sigs)
	return nil
}

// Unregister stops the SIGCHLD watcher. It does not drain or discard
// already-reaped entries; TryTake continues to serve them.
func (r *Reaper) Unregister() {
	if r.registered.Load() {
		close(r.stop)
	}
}

func (r *Reaper) watch(sigs chan os.Signal) {
	for {
		select {
		case <-r.stop:
			signal.Stop(sigs)
			return
		case <-sigs:
			r.drainOnce()
		}
	}
}

// drainOnce performs non-blocking wait-any calls until none remain,
// recording each reaped child into the ring.
func (r *Reaper) drainOnce() {
	for {
		var ws syscall.WaitStatus
		pid, err := syscall.Wait4(-1, &ws, syscall.WNOHANG, nil)
		if err != nil {
			// ECHILD: no children left to reap. Any other error is
			// transient (EINTR) or not actionable from here; either way
			// stop this pass, the next SIGCHLD will retry.
			return
		}
		if pid <= 0 {
			// No zombie currently waiting; WNOHANG returned immediately.
			return
		}
		r.record(pid, ws)
	}
}

func (r *Reaper) record(pid int, ws syscall.WaitStatus) {
	n := len(r.slots)
	for i := 0; i < n; i++ {
		idx := int(r.next.Add(1)-1) % n
		s := &r.slots[idx]
		if s.occupied.CompareAndSwap(0, 1) {
			s.pid.Store(int64(pid))
			s.status.Store(uint64(ws))
			return
		}
	}
	// Ring is full of unconsumed entries: the strategy loop has fallen
	// behind TryTake-ing. Flag it; callers must fall back to direct waits.
	r.overflow.Store(true)
}

// TryTake atomically removes and returns the recorded status for pid, or
// reports ok=false if nothing has been reaped for that pid yet.
func (r *Reaper) TryTake(pid int) (syscall.WaitStatus, bool) {
	for i := range r.slots {
		s := &r.slots[i]
		if s.occupied.Load() == 0 {
			continue
		}
		if s.pid.Load() != int64(pid) {
			continue
		}
		ws := syscall.WaitStatus(s.status.Load())
		// Release the slot only after reading it, and only if no one else
		// beat us to it (TryTake may race a concurrent strategy, though in
		// practice a single supervisor goroutine calls TryTake).
		if s.occupied.CompareAndSwap(1, 0) {
			return ws, true
		}
	}
	return 0, false
}
