package jobgraph

import (
	"sync"

	"procfleet/decode"
	"procfleet/future"
	"procfleet/jobsource"
	"procfleet/status"
)

// Job pairs a graph Node with the JobSpec/Decoder it should run once
// released.
type Job struct {
	Node *Node
	Spec future.JobSpec
	Dec  future.Decoder
}

// result records the settled outcome of one node: whether it has completed
// and whether it succeeded.
type result struct {
	done bool
	ok   bool
}

// Source adapts a dependency-ordered set of Jobs into a jobsource.JobSource:
// a node is released by Next only once every node it DependsOn has settled
// with an Ok status. A node whose dependency failed is skipped — delivered
// to OnComplete immediately with an Abnormal status and never spawned.
type Source struct {
	order []*Job
	specs map[string]*Job // ID -> Job, for dependency lookups

	mu            sync.Mutex
	results       map[string]result
	pos           int
	dispatchOrder []string // index i holds the node ID strategy will label Completion.Index == i

	onComplete func(jobsource.Completion)
}

// NewSource builds a Source from jobs already produced by TopoOrder. jobs
// must be ordered so that each node appears at or after all the nodes it
// DependsOn: Source walks them with a single positional cursor and waits for
// the job at that position to become ready rather than skipping ahead to a
// later, already-ready job. With an order that puts a dependent before its
// dependency, HasNext reports false at that position once nothing else is
// running, the strategy returns, and the remaining jobs are never produced.
func NewSource(jobs []*Job, onComplete func(jobsource.Completion)) *Source {
	specs := make(map[string]*Job, len(jobs))
	for _, j := range jobs {
		specs[j.Node.ID] = j
	}
	return &Source{
		order:      jobs,
		specs:      specs,
		results:    make(map[string]result),
		onComplete: onComplete,
	}
}

// HasNext reports whether a job is ready to be produced right now. It never
// blocks: a job still waiting on an in-flight dependency makes HasNext
// report false until that dependency settles, rather than spinning the
// caller's goroutine. Source is driven by a single supervisor goroutine
// (package strategy's spawn loop), and that same goroutine is the only one
// that can ever unblock a waiting dependency by receiving its completion and
// calling OnComplete — so Next must never block waiting on state only that
// goroutine can produce.
//
// As a side effect, HasNext also skips and auto-completes any leading run of
// not-yet-produced jobs whose dependencies have already failed, reporting
// each to onComplete as Abnormal. This advances iteration state, unlike most
// JobSource implementations' HasNext; it is safe here because jobgraph.Source
// is only ever driven from the single goroutine that also calls Next and
// OnComplete.
func (s *Source) HasNext() bool {
	for {
		s.mu.Lock()
		if s.pos >= len(s.order) {
			s.mu.Unlock()
			return false
		}
		job := s.order[s.pos]
		ready, failed := s.readiness(job.Node)
		if !failed {
			s.mu.Unlock()
			return ready
		}
		s.pos++
		s.results[job.Node.ID] = result{done: true, ok: false}
		s.mu.Unlock()
		if s.onComplete != nil {
			s.onComplete(jobsource.Completion{
				Spec:   job.Spec,
				Value:  decode.Absent(),
				Status: status.Abnormal("skipped: a dependency failed"),
			})
		}
	}
}

// Next returns the JobSpec/Decoder for the next ready job. It does not
// re-check readiness and must only be called immediately after HasNext has
// returned true, per the JobSource contract.
func (s *Source) Next() (future.JobSpec, future.Decoder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.order[s.pos]
	s.pos++
	s.dispatchOrder = append(s.dispatchOrder, job.Node.ID)
	return job.Spec, job.Dec
}

// readiness reports whether n's dependencies have all settled Ok (ready),
// or whether any has settled non-Ok (failed). Both false means still
// waiting.
func (s *Source) readiness(n *Node) (ready, failed bool) {
	ready = true
	for _, depID := range n.DependsOn {
		r, done := s.results[depID]
		if !done {
			ready = false
			continue
		}
		if !r.done {
			ready = false
			continue
		}
		if !r.ok {
			return false, true
		}
	}
	return ready, false
}

// OnComplete records n's outcome so dependents can be released, then
// forwards to the configured callback. c.Index is the dispatch-order
// position strategy assigned when it called Next, which dispatchOrder maps
// back to the originating node ID.
func (s *Source) OnComplete(c jobsource.Completion) {
	s.mu.Lock()
	if c.Index >= 0 && c.Index < len(s.dispatchOrder) {
		id := s.dispatchOrder[c.Index]
		s.results[id] = result{done: true, ok: c.Status.IsOk()}
	}
	s.mu.Unlock()
	if s.onComplete != nil {
		s.onComplete(c)
	}
}
