//go:build !linux

package stats

// getAdjustedLoad and getSwapUsage have no portable source of truth outside
// Linux; this platform reports throttling-disabled metrics rather than fail
// startup.
func getAdjustedLoad() (float64, error) { return 0, nil }

func getSwapUsage() (int, error) { return 0, nil }
