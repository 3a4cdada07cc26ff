package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	io_prometheus_client "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/admission/internal/pkg/guard"
	"github.com/yigit/admission/internal/pkg/metrics"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &io_prometheus_client.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

type fakeCleaner struct{ removed int }

func (f *fakeCleaner) Cleanup() int { return f.removed }

type fakeTokens struct {
	deleted int64
	err     error
	calls   int
}

func (f *fakeTokens) CleanupExpiredTokens(context.Context) (int64, error) {
	f.calls++
	return f.deleted, f.err
}

func TestScheduler_AddRejectsBadJobs(t *testing.T) {
	s := NewScheduler(zerolog.Nop(), time.Second)

	assert.Error(t, s.Add(Job{Name: "broken", Schedule: "every now and then", Run: func(context.Context) (int64, error) { return 0, nil }}))
	assert.Error(t, s.Add(Job{Name: "empty", Schedule: "@hourly"}))
	assert.NoError(t, s.Add(LimiterCleanup("@every 5m", &fakeCleaner{})))
}

func TestScheduler_RunRecordsMetrics(t *testing.T) {
	s := NewScheduler(zerolog.Nop(), time.Second)
	tokens := &fakeTokens{deleted: 3}
	job := TokenCleanup("@hourly", tokens)

	removedBefore := counterValue(t, metrics.MaintenanceRemoved.WithLabelValues(job.Name))
	s.run(job)

	assert.Equal(t, 1, tokens.calls)
	assert.Equal(t, removedBefore+3, counterValue(t, metrics.MaintenanceRemoved.WithLabelValues(job.Name)))
}

func TestScheduler_RunCountsFailures(t *testing.T) {
	s := NewScheduler(zerolog.Nop(), time.Second)
	job := Job{
		Name:     "always_failing",
		Schedule: "@hourly",
		Run:      func(context.Context) (int64, error) { return 0, errors.New("database is down") },
	}

	before := counterValue(t, metrics.MaintenanceRuns.WithLabelValues(job.Name, "error"))
	s.run(job)
	assert.Equal(t, before+1, counterValue(t, metrics.MaintenanceRuns.WithLabelValues(job.Name, "error")))
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(zerolog.Nop(), time.Second)
	require.NoError(t, s.Add(LimiterCleanup("@every 1h", &fakeCleaner{})))

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}

func TestGuardSweep_RemovesLapsedEntries(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := guard.NewMemoryStore(func() time.Time { return now })

	_, err := store.Fail(context.Background(), "203.0.113.7", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	job := GuardSweep("@every 5m", store)

	removed, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)

	now = now.Add(2 * time.Minute)
	removed, err = job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Zero(t, store.Len())
}
