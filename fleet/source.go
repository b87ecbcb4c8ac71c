package fleet

import (
	"strings"
	"time"

	"procfleet/future"
	"procfleet/jobsource"
	"procfleet/stats"
	"procfleet/status"
	"procfleet/ui"
)

// trackingSource wraps a jobsource.JobSource so every completion is counted
// into a Summary, recorded to the ledger, fed to the stats collector, and
// surfaced on a FleetUI, before being forwarded to the wrapped source's own
// OnComplete.
type trackingSource struct {
	inner     jobsource.JobSource
	fleet     *Fleet
	summary   *Summary
	collector *stats.Collector
	ui        ui.FleetUI
}

func (t *trackingSource) HasNext() bool { return t.inner.HasNext() }

func (t *trackingSource) Next() (future.JobSpec, future.Decoder) {
	t.summary.Total++
	t.collector.UpdateQueuedCount(t.summary.Total)
	return t.inner.Next()
}

func (t *trackingSource) OnComplete(c jobsource.Completion) {
	jobStatus := classify(c.Status)

	switch jobStatus {
	case stats.JobOk:
		t.summary.Succeeded++
	case stats.JobFailed:
		t.summary.Failed++
	case stats.JobSkipped:
		t.summary.Skipped++
	}
	t.collector.RecordCompletion(jobStatus)

	if t.fleet.logger != nil {
		id := jobID(c.Spec)
		if c.Status.IsOk() {
			t.fleet.logger.Success(id)
		} else {
			t.fleet.logger.Failed(id, c.Status.String())
		}
	}

	if t.fleet.db != nil {
		now := time.Now()
		_ = t.fleet.db.Record(c.Spec, c.Status, now, now)
	}

	if t.ui != nil {
		t.ui.LogEvent(c.Index, jobID(c.Spec)+": "+c.Status.String())
	}

	t.inner.OnComplete(c)
}

// classify maps a status.Status to a stats.JobStatus, treating the
// dependency-skip detail jobgraph.Source.HasNext produces as JobSkipped rather
// than JobFailed so fleet's summary distinguishes "never ran" from "ran and
// failed".
func classify(st status.Status) stats.JobStatus {
	if st.IsOk() {
		return stats.JobOk
	}
	if st.Kind() == status.KindAbnormal && strings.HasPrefix(st.Detail(), "skipped:") {
		return stats.JobSkipped
	}
	return stats.JobFailed
}

func jobID(spec future.JobSpec) string {
	id := spec.Path
	if len(spec.Args) > 0 {
		id += " " + strings.Join(spec.Args, " ")
	}
	return id
}

