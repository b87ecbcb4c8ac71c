package jobgraph

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procfleet/decode"
	"procfleet/future"
	"procfleet/jobsource"
	"procfleet/strategy"
)

func TestSourceReleasesInDependencyOrder(t *testing.T) {
	a := &Node{ID: "a"}
	b := &Node{ID: "b", DependsOn: []string{"a"}}
	order, err := TopoOrder([]*Node{b, a})
	require.NoError(t, err)

	jobs := make([]*Job, len(order))
	for i, n := range order {
		jobs[i] = &Job{Node: n, Spec: future.JobSpec{Path: "true"}, Dec: decode.NewBooleanDecoder()}
	}

	var mu sync.Mutex
	completedCount := 0
	src := NewSource(jobs, func(c jobsource.Completion) {
		mu.Lock()
		defer mu.Unlock()
		completedCount++
		assert.True(t, c.Status.IsOk())
	})

	strategy.Sequential(src)

	assert.Equal(t, 2, completedCount)
}

func TestSourceSkipsDependentsOfFailedJob(t *testing.T) {
	a := &Node{ID: "a"}
	b := &Node{ID: "b", DependsOn: []string{"a"}}
	order, err := TopoOrder([]*Node{b, a})
	require.NoError(t, err)

	jobs := make([]*Job, len(order))
	for _, n := range order {
		spec := future.JobSpec{Path: "true"}
		if n.ID == "a" {
			spec = future.JobSpec{Path: "false"}
		}
		jobs[indexForID(order, n.ID)] = &Job{Node: n, Spec: spec, Dec: decode.NewBooleanDecoder()}
	}

	var mu sync.Mutex
	results := map[string]bool{}
	src := NewSource(jobs, func(c jobsource.Completion) {
		mu.Lock()
		defer mu.Unlock()
		results[c.Spec.Path] = c.Status.IsOk()
	})

	strategy.Sequential(src)

	assert.False(t, results["false"])
	dependentOk, reported := results["true"]
	assert.True(t, reported, "b depends on the failed a and is still reported")
	assert.False(t, dependentOk, "b is reported as not ok, never run")
}

func indexForID(nodes []*Node, id string) int {
	for i, n := range nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// TestSourceUnderConcurrentStrategy exercises the exact combination
// jobgraph.Source exists for: a strategy running more than one job at a
// time, where a no-dependency job (c) settles before the slower
// no-dependency job (a) that a dependent (b) is waiting on. The single
// supervisor goroutine inside ParallelBounded must be able to receive c's
// completion and keep draining instead of blocking forever inside Next
// waiting for a.
func TestSourceUnderConcurrentStrategy(t *testing.T) {
	a := &Node{ID: "a"}
	c := &Node{ID: "c"}
	b := &Node{ID: "b", DependsOn: []string{"a"}}
	order, err := TopoOrder([]*Node{b, a, c})
	require.NoError(t, err)

	jobs := make([]*Job, len(order))
	for _, n := range order {
		spec := future.JobSpec{Path: "true"}
		if n.ID == "a" {
			spec = future.JobSpec{Path: "sh", Args: []string{"-c", "sleep 0.2"}}
		}
		jobs[indexForID(order, n.ID)] = &Job{Node: n, Spec: spec, Dec: decode.NewBooleanDecoder()}
	}

	var mu sync.Mutex
	doneOrder := []string{}
	src := NewSource(jobs, func(c jobsource.Completion) {
		mu.Lock()
		defer mu.Unlock()
		assert.True(t, c.Status.IsOk())
		doneOrder = append(doneOrder, c.Spec.Path)
	})

	done := make(chan struct{})
	go func() {
		strategy.ParallelBounded(src, 2)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("ParallelBounded(src, 2) deadlocked waiting on b's dependency a")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, doneOrder, 3)
}

// TestSourceUnderParallelUnlimited is the same scenario run through
// ParallelUnlimited, which must not hang either.
func TestSourceUnderParallelUnlimited(t *testing.T) {
	a := &Node{ID: "a"}
	c := &Node{ID: "c"}
	b := &Node{ID: "b", DependsOn: []string{"a"}}
	order, err := TopoOrder([]*Node{b, a, c})
	require.NoError(t, err)

	jobs := make([]*Job, len(order))
	for _, n := range order {
		spec := future.JobSpec{Path: "true"}
		if n.ID == "a" {
			spec = future.JobSpec{Path: "sh", Args: []string{"-c", "sleep 0.2"}}
		}
		jobs[indexForID(order, n.ID)] = &Job{Node: n, Spec: spec, Dec: decode.NewBooleanDecoder()}
	}

	var mu sync.Mutex
	completed := 0
	src := NewSource(jobs, func(c jobsource.Completion) {
		mu.Lock()
		defer mu.Unlock()
		completed++
		assert.True(t, c.Status.IsOk())
	})

	done := make(chan struct{})
	go func() {
		strategy.ParallelUnlimited(src)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("ParallelUnlimited deadlocked waiting on b's dependency a")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, completed)
}
