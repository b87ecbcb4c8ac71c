package stats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCompletionUpdatesTotals(t *testing.T) {
	c := NewCollector(context.Background(), 4)
	defer c.Close()

	c.RecordCompletion(JobOk)
	c.RecordCompletion(JobOk)
	c.RecordCompletion(JobFailed)
	c.RecordCompletion(JobSkipped)

	snap := c.Snapshot()
	assert.Equal(t, 2, snap.Succeeded)
	assert.Equal(t, 1, snap.Failed)
	assert.Equal(t, 1, snap.Skipped)
}

func TestUpdateWorkerCountAndDynMax(t *testing.T) {
	c := NewCollector(context.Background(), 10)
	defer c.Close()

	c.UpdateWorkerCount(3)
	c.UpdateDynMaxWorkers(6)
	c.UpdateQueuedCount(20)
	c.UpdateSystemMetrics(1.5, 12, false)

	snap := c.Snapshot()
	assert.Equal(t, 3, snap.ActiveWorkers)
	assert.Equal(t, 6, snap.DynMaxWorkers)
	assert.Equal(t, 20, snap.Queued)
	assert.Equal(t, 1.5, snap.Load)
	assert.Equal(t, 12, snap.SwapPct)
}

type recordingConsumer struct {
	updates []FleetStats
}

func (r *recordingConsumer) OnStatsUpdate(s FleetStats) {
	r.updates = append(r.updates, s)
}

func TestTickAdvancesRemainingAndNotifiesConsumers(t *testing.T) {
	c := NewCollector(context.Background(), 4)
	defer c.Close()

	cons := &recordingConsumer{}
	c.AddConsumer(cons)

	c.UpdateQueuedCount(5)
	c.RecordCompletion(JobOk)
	c.tick()

	snap := c.Snapshot()
	assert.Equal(t, 4, snap.Remaining)
	require.Len(t, cons.updates, 1)
	assert.Equal(t, 4, cons.updates[0].Remaining)
}

func TestCloseStopsSamplingLoop(t *testing.T) {
	c := NewCollector(context.Background(), 2)
	require.NoError(t, c.Close())
}
