package launcher

import "procfleet/future"

// Direct is the default, no-isolation launcher: Wrap is the identity
// function and Setup/Cleanup are no-ops.
type Direct struct {
	baseDir string
}

func init() {
	Register("direct", func(baseDir string) Launcher { return &Direct{baseDir: baseDir} })
}

func (d *Direct) Setup() error                            { return nil }
func (d *Direct) Wrap(spec future.JobSpec) future.JobSpec { return spec }
func (d *Direct) Cleanup() error                          { return nil }
func (d *Direct) BasePath() string                        { return d.baseDir }
