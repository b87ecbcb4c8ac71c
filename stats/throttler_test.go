package stats

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerThrottlerNoThrottlingBelowThresholds(t *testing.T) {
	wt := NewWorkerThrottler(8, false)

	assert.Equal(t, 8, wt.CalculateDynMax(0, 0))
	assert.Equal(t, 8, wt.CalculateDynMax(1.0, 0))
	assert.Equal(t, 8, wt.CalculateDynMax(0, 5))
	assert.Equal(t, 8, wt.CalculateDynMax(1.0, 5))
}

func TestWorkerThrottlerLoadThrottling(t *testing.T) {
	wt := NewWorkerThrottler(8, false)
	ncpus := float64(runtime.NumCPU())

	assert.Equal(t, 8, wt.CalculateDynMax(1.5*ncpus-0.1, 0), "just below low threshold")
	assert.Equal(t, 8, wt.CalculateDynMax(1.5*ncpus, 0), "at low threshold")
	assert.Equal(t, 5, wt.CalculateDynMax(3.25*ncpus, 0), "midpoint of range")
	assert.Equal(t, 2, wt.CalculateDynMax(5.0*ncpus, 0), "at high threshold floors")
	assert.Equal(t, 2, wt.CalculateDynMax(6.0*ncpus, 0), "above high threshold stays floored")
}

func TestWorkerThrottlerSwapThrottling(t *testing.T) {
	wt := NewWorkerThrottler(8, false)

	assert.Equal(t, 8, wt.CalculateDynMax(0, 9), "just below low threshold")
	assert.Equal(t, 8, wt.CalculateDynMax(0, 10), "at low threshold")
	assert.Equal(t, 5, wt.CalculateDynMax(0, 25), "midpoint of range")
	assert.Equal(t, 2, wt.CalculateDynMax(0, 40), "at high threshold floors")
	assert.Equal(t, 2, wt.CalculateDynMax(0, 50), "above high threshold stays floored")
}

func TestWorkerThrottlerCombinedTakesMoreRestrictiveCap(t *testing.T) {
	wt := NewWorkerThrottler(8, false)
	ncpus := float64(runtime.NumCPU())

	assert.Equal(t, 4, wt.CalculateDynMax(4.0*ncpus, 5), "load cap wins over a slack swap cap")
	assert.Equal(t, 4, wt.CalculateDynMax(1.0, 30), "swap cap wins over a slack load cap")
	assert.Equal(t, 2, wt.CalculateDynMax(5.0*ncpus, 40), "both floored")
}

func TestWorkerThrottlerNeverDropsBelowOneWorker(t *testing.T) {
	wt := NewWorkerThrottler(1, false)
	assert.GreaterOrEqual(t, wt.CalculateDynMax(1000, 100), 1)
}

func TestWorkerThrottlerDisabledAlwaysReturnsMax(t *testing.T) {
	wt := NewWorkerThrottler(16, true)

	assert.Equal(t, 16, wt.CalculateDynMax(0, 0))
	assert.Equal(t, 16, wt.CalculateDynMax(1000.0, 100))
}

func TestWorkerThrottlerAutoDisablesOnZeroMetrics(t *testing.T) {
	wt := NewWorkerThrottler(8, false)

	assert.Equal(t, 8, wt.CalculateDynMax(0.0, 0), "both zero looks like a platform with no metrics source")
	assert.Less(t, wt.CalculateDynMax(0.0, 50), 8, "a single nonzero reading still throttles")
}

// TestWorkerThrottlerCustomThresholds exercises a fleet tuned for
// memory-hungry jobs: throttling kicks in much earlier on swap than the
// defaults, and load is ignored outright by pushing its range out of reach.
func TestWorkerThrottlerCustomThresholds(t *testing.T) {
	th := Thresholds{
		LoadLowFactor:  1000, // effectively disables load throttling
		LoadHighFactor: 2000,
		SwapLowPct:     1,
		SwapHighPct:    5,
		FloorFraction:  0.5,
	}
	wt := NewWorkerThrottlerWithThresholds(10, false, th)

	assert.Equal(t, 10, wt.CalculateDynMax(0, 0))
	assert.Equal(t, 5, wt.CalculateDynMax(0, 5), "floors at 50% per FloorFraction, not the 25% default")
	assert.Equal(t, 10, wt.CalculateDynMax(999, 0), "load range pushed out of reach never throttles")
}

func TestWorkerThrottlerLinearInterpolationIsSmooth(t *testing.T) {
	wt := NewWorkerThrottler(100, false)
	ncpus := float64(runtime.NumCPU())

	midLoad := (1.5 + 5.0) / 2.0 * ncpus
	assert.InDelta(t, 62, wt.CalculateDynMax(midLoad, 0), 1)

	midSwap := (10 + 40) / 2
	assert.InDelta(t, 62, wt.CalculateDynMax(0, midSwap), 1)
}
