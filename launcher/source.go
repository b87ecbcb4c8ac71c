package launcher

import (
	"procfleet/future"
	"procfleet/jobsource"
)

// wrappedSource rewrites every JobSpec a jobsource.JobSource produces
// through a Launcher before handing it to strategy, so an isolated
// environment is transparent to the rest of the orchestration pipeline.
type wrappedSource struct {
	inner jobsource.JobSource
	l     Launcher
}

// Wrap adapts src so every job it produces runs inside l's isolated
// environment instead of directly on the host.
func Wrap(src jobsource.JobSource, l Launcher) jobsource.JobSource {
	return &wrappedSource{inner: src, l: l}
}

func (w *wrappedSource) HasNext() bool { return w.inner.HasNext() }

func (w *wrappedSource) Next() (future.JobSpec, future.Decoder) {
	spec, dec := w.inner.Next()
	return w.l.Wrap(spec), dec
}

func (w *wrappedSource) OnComplete(c jobsource.Completion) {
	w.inner.OnComplete(c)
}
