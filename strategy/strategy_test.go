package strategy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procfleet/decode"
	"procfleet/future"
	"procfleet/jobsource"
	"procfleet/reaper"
	"procfleet/status"
)

func TestParallelUnlimitedFiveTrues(t *testing.T) {
	specs := make([]future.JobSpec, 5)
	for i := range specs {
		specs[i] = future.JobSpec{Path: "true"}
	}

	var mu sync.Mutex
	count := 0
	allOk := true
	src := jobsource.FromSliceWithCallback(specs, decode.NewBooleanDecoder(), func(c jobsource.Completion) {
		mu.Lock()
		defer mu.Unlock()
		count++
		if !c.Status.IsOk() {
			allOk = false
		}
	})

	ParallelUnlimited(src)

	assert.Equal(t, 5, count)
	assert.True(t, allOk)
}

func TestSequentialOrdering(t *testing.T) {
	specs := []future.JobSpec{
		{Path: "sh", Args: []string{"-c", "printf 1"}},
		{Path: "sh", Args: []string{"-c", "printf 2"}},
		{Path: "sh", Args: []string{"-c", "printf 3"}},
		{Path: "sh", Args: []string{"-c", "printf 4"}},
		{Path: "sh", Args: []string{"-c", "printf 5"}},
	}

	var got []string
	src := jobsource.FromSliceWithCallback(specs, decode.NewStringDecoder(), func(c jobsource.Completion) {
		got = append(got, c.Value.Str())
	})

	Sequential(src)

	require.Equal(t, []string{"1", "2", "3", "4", "5"}, got)
}

func TestParallelBoundedOneMatchesSequentialOrdering(t *testing.T) {
	specs := []future.JobSpec{
		{Path: "sh", Args: []string{"-c", "printf 1"}},
		{Path: "sh", Args: []string{"-c", "printf 2"}},
		{Path: "sh", Args: []string{"-c", "printf 3"}},
		{Path: "sh", Args: []string{"-c", "printf 4"}},
		{Path: "sh", Args: []string{"-c", "printf 5"}},
	}

	var got []string
	src := jobsource.FromSliceWithCallback(specs, decode.NewStringDecoder(), func(c jobsource.Completion) {
		got = append(got, c.Value.Str())
	})

	ParallelBounded(src, 1)

	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, got)
}

func TestParallelBoundedCompletesEveryJob(t *testing.T) {
	specs := make([]future.JobSpec, 10)
	for i := range specs {
		specs[i] = future.JobSpec{Path: "true"}
	}

	var mu sync.Mutex
	seen := map[int]bool{}
	src := jobsource.FromSliceWithCallback(specs, decode.NewBooleanDecoder(), func(c jobsource.Completion) {
		mu.Lock()
		defer mu.Unlock()
		seen[c.Index] = true
	})

	ParallelBounded(src, 3)

	assert.Len(t, seen, 10)
}

func TestParallelDynamicHonorsShrinkingCeiling(t *testing.T) {
	specs := make([]future.JobSpec, 6)
	for i := range specs {
		specs[i] = future.JobSpec{Path: "true"}
	}

	var mu sync.Mutex
	completed := 0
	maxObservedRunning := 0
	src := jobsource.FromSliceWithCallback(specs, decode.NewBooleanDecoder(), func(c jobsource.Completion) {
		mu.Lock()
		defer mu.Unlock()
		completed++
	})

	ceiling := 4
	var ceilingMu sync.Mutex
	ParallelDynamic(src, func() int {
		ceilingMu.Lock()
		defer ceilingMu.Unlock()
		if maxObservedRunning < ceiling {
			maxObservedRunning = ceiling
		}
		n := ceiling
		ceiling = 1 // shrink after the first read so later spawns serialize
		return n
	})

	assert.Equal(t, 6, completed)
}

func TestParallelUnlimitedPidRawChildren(t *testing.T) {
	specs := []future.JobSpec{
		{Path: "true"}, {Path: "false"}, {Path: "true"},
	}

	var mu sync.Mutex
	results := make(map[int]status.Status)
	src := jobsource.PidsFromSlice(specs, func(index int, spec future.JobSpec, pid int, st status.Status) {
		mu.Lock()
		defer mu.Unlock()
		results[index] = st
	})

	ParallelUnlimitedPid(src, nil)

	require.Len(t, results, 3)
	assert.True(t, results[0].IsOk())
	assert.False(t, results[1].IsOk())
	assert.True(t, results[2].IsOk())
}

func TestParallelBoundedPidWithReaper(t *testing.T) {
	r := reaper.New(8)
	require.NoError(t, r.Register())
	defer r.Unregister()

	specs := make([]future.JobSpec, 4)
	for i := range specs {
		specs[i] = future.JobSpec{Path: "true"}
	}

	var mu sync.Mutex
	count := 0
	src := jobsource.PidsFromSlice(specs, func(index int, spec future.JobSpec, pid int, st status.Status) {
		mu.Lock()
		defer mu.Unlock()
		count++
		assert.True(t, st.IsOk())
	})

	ParallelBoundedPid(src, 2, r)

	assert.Equal(t, 4, count)
}
