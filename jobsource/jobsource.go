// Package jobsource defines a capability-set abstraction in place of four
// function pointers plus a void* user pointer: a small interface carrying
// the caller's own iteration state by ownership, describing *what to run
// next* rather than *how to run it*.
//
// package strategy is the only consumer of these interfaces; jobsource
// itself is a pure generator layer with no notion of a running set, a
// concurrency bound, or spawn order — those are strategy's job.
package jobsource

import (
	"procfleet/decode"
	"procfleet/future"
	"procfleet/status"
)

// Completion reports the outcome of one job produced by a JobSource's Next.
// Index correlates a completion back to its position in spawn order; every
// strategy sets it, and jobgraph.Source relies on it to map a completion
// back to its node.
type Completion struct {
	Index  int
	Spec   future.JobSpec
	Value  decode.Value
	Status status.Status
}

// JobSource is the capture-and-decode capability set: Next hands back both a
// JobSpec to exec and the Decoder to apply to its captured stdout.
type JobSource interface {
	// HasNext reports whether another job remains to be produced. It may be
	// called any number of times and must not advance iteration state.
	HasNext() bool

	// Next produces the next job to run and advances iteration state. It
	// must not be called when HasNext would return false.
	Next() (future.JobSpec, future.Decoder)

	// OnComplete is invoked once per produced job, in the order strategy
	// determines (settle order for the parallel strategies, spawn order for
	// Sequential), after that job's Future has settled.
	OnComplete(c Completion)
}

// PidSource is the raw-pid variant: no stdout capture, status only. It is
// the capability set the reaper-backed path is built for.
type PidSource interface {
	HasNext() bool
	Next() future.JobSpec
	OnComplete(index int, spec future.JobSpec, pid int, st status.Status)
}

// sliceSource is the simple fixed-list JobSource returned by FromSlice.
type sliceSource struct {
	specs  []future.JobSpec
	dec    future.Decoder
	pos    int
	onComp func(Completion)
}

// FromSlice adapts a fixed list of JobSpecs, all decoded the same way, into
// a JobSource, without requiring callers to implement the interface
// themselves.
func FromSlice(specs []future.JobSpec, decoder future.Decoder) JobSource {
	return &sliceSource{specs: specs, dec: decoder}
}

// FromSliceWithCallback is FromSlice plus an OnComplete hook; useful for
// callers (such as tests) that want to observe completions without a
// bespoke type.
func FromSliceWithCallback(specs []future.JobSpec, decoder future.Decoder, onComplete func(Completion)) JobSource {
	return &sliceSource{specs: specs, dec: decoder, onComp: onComplete}
}

func (s *sliceSource) HasNext() bool {
	return s.pos < len(s.specs)
}

func (s *sliceSource) Next() (future.JobSpec, future.Decoder) {
	spec := s.specs[s.pos]
	s.pos++
	return spec, s.dec
}

func (s *sliceSource) OnComplete(c Completion) {
	if s.onComp != nil {
		s.onComp(c)
	}
}

// pidSliceSource is the PidSource analog of sliceSource.
type pidSliceSource struct {
	specs  []future.JobSpec
	pos    int
	onComp func(index int, spec future.JobSpec, pid int, st status.Status)
}

// PidsFromSlice adapts a fixed list of JobSpecs into a PidSource for the
// raw-pid, no-capture orchestration path.
func PidsFromSlice(specs []future.JobSpec, onComplete func(index int, spec future.JobSpec, pid int, st status.Status)) PidSource {
	return &pidSliceSource{specs: specs, onComp: onComplete}
}

func (s *pidSliceSource) HasNext() bool {
	return s.pos < len(s.specs)
}

func (s *pidSliceSource) Next() future.JobSpec {
	spec := s.specs[s.pos]
	s.pos++
	return spec
}

func (s *pidSliceSource) OnComplete(index int, spec future.JobSpec, pid int, st status.Status) {
	if s.onComp != nil {
		s.onComp(index, spec, pid, st)
	}
}
