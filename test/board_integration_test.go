package test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsb-logistics/ganttboard/core/model"
	"github.com/bsb-logistics/ganttboard/core/mutation"
	"github.com/bsb-logistics/ganttboard/core/mutation/journal"
	"github.com/bsb-logistics/ganttboard/core/settings"
	"github.com/bsb-logistics/ganttboard/infra/metrics"
	"github.com/bsb-logistics/ganttboard/internal/collab"
	"github.com/bsb-logistics/ganttboard/test/util"
)

// Two operators share one backend. Edits made on the first board reach the
// second through collaboration polling.
func TestTwoBoardsConvergeThroughPolling(t *testing.T) {
	ctx := context.Background()
	base := startBackend(t, nil)

	store, err := journal.NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	first := newBoard(t, base, mutation.WithJournal(store), mutation.WithMetrics(sink))
	second := newBoard(t, base)

	prefs := settings.NewService(settings.NewMemoryStore(), nil)
	_, err = prefs.Update(ctx, func(s *settings.Settings) { s.Collab.Enabled = true })
	require.NoError(t, err)
	poller := collab.NewPoller(second, second.Tree().VehicleIDs, prefs)

	start := time.Now().Add(5 * time.Hour).Truncate(time.Second)
	trip, err := first.AddTrip(ctx, model.TripDraft{
		VehicleID: "PM002",
		StartTime: model.At(start),
		EndTime:   model.At(start.Add(2 * time.Hour)),
	})
	require.NoError(t, err)
	_, ok := second.Tree().Trip(trip.ID)
	assert.False(t, ok, "second board sees the trip before polling")

	require.NoError(t, poller.Poll(ctx))
	owner, ok := second.Tree().TripOwner(trip.ID)
	require.True(t, ok)
	assert.Equal(t, "PM002", owner)

	require.NoError(t, first.ReassignVehicle(ctx, trip.ID, "PM003", model.At(start.Add(time.Hour))))
	require.NoError(t, poller.Poll(ctx))
	owner, _ = second.Tree().TripOwner(trip.ID)
	assert.Equal(t, "PM003", owner)
	moved, _ := second.Tree().Trip(trip.ID)
	assert.Equal(t, 2*time.Hour, moved.EndTime.Sub(moved.StartTime.Time))

	recs, err := store.Query(ctx, journal.Query{Operation: mutation.OpAddTrip})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, string(mutation.OutcomeOK), recs[0].Outcome)
	assert.Equal(t, "PM002", recs[0].VehicleID)

	ts := httptest.NewServer(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	t.Cleanup(ts.Close)
	wctx, cancel := context.WithTimeout(ctx, util.MetricTimeout)
	defer cancel()
	require.NoError(t, util.WaitForMetric(wctx, ts.URL, `operation="reassign_vehicle"`))
}

// A board acting on a trip another operator already deleted is rejected by
// the service. The rejection is journaled with its code and the stale board
// is left as it was.
func TestStaleBoardRejectionIsJournaled(t *testing.T) {
	ctx := context.Background()
	base := startBackend(t, nil)
	store, err := journal.NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	first := newBoard(t, base)
	stale := newBoard(t, base, mutation.WithJournal(store))

	start := time.Now().Add(5 * time.Hour).Truncate(time.Second)
	trip, err := first.AddTrip(ctx, model.TripDraft{
		VehicleID: "PM002",
		StartTime: model.At(start),
		EndTime:   model.At(start.Add(time.Hour)),
	})
	require.NoError(t, err)
	require.NoError(t, stale.FetchVehicles(ctx))
	require.NoError(t, first.DeleteTrip(ctx, trip.ID))
	before := stale.Tree().Counts()

	_, err = stale.AddTask(ctx, model.TaskDraft{TripID: trip.ID, TaskType: model.TaskClient})
	require.Error(t, err)
	assert.Equal(t, mutation.OutcomeRejected, mutation.Classify(err))
	assert.Equal(t, before, stale.Tree().Counts())

	recs, err := store.Query(ctx, journal.Query{Outcome: string(mutation.OutcomeRejected)})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, mutation.OpAddTask, recs[0].Operation)
	assert.Equal(t, 40002, recs[0].Code)
}
