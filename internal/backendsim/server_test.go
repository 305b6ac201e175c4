package backendsim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsb-logistics/ganttboard/core/model"
	coremqtt "github.com/bsb-logistics/ganttboard/core/mqtt"
	"github.com/bsb-logistics/ganttboard/core/remote"
	infraremote "github.com/bsb-logistics/ganttboard/infra/remote"
)

var base = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

type recordNotifier struct {
	mu      sync.Mutex
	changes []coremqtt.Change
	err     error
}

func (n *recordNotifier) Notify(c coremqtt.Change) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, c)
	return n.err
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestServer(t *testing.T) (*Server, *recordNotifier, *infraremote.Client) {
	t.Helper()
	seed, err := DefaultSeed()
	require.NoError(t, err)
	store := NewStore(seed, WithClock(func() time.Time { return base }), WithIDs(sequentialIDs()))
	n := &recordNotifier{}
	srv := NewServer(Config{}, store, WithNotifier(n), WithRegistry(prometheus.NewRegistry()))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, n, infraremote.NewClient(infraremote.Config{BaseURL: ts.URL})
}

func window() model.TimeRange {
	return model.TimeRange{Start: model.At(base.Add(-time.Hour)), End: model.At(base.Add(24 * time.Hour))}
}

func TestDefaultSeed(t *testing.T) {
	seed, err := DefaultSeed()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if len(seed.Vehicles) != 3 {
		t.Fatalf("expected 3 vehicles, got %d", len(seed.Vehicles))
	}
	if seed.Vehicles[0].Trips[0].Start != time.Hour {
		t.Fatalf("unexpected trip offset %s", seed.Vehicles[0].Trips[0].Start)
	}
}

func TestParseSeedRejectsBadFixtures(t *testing.T) {
	cases := map[string]string{
		"duplicate": "vehicles: [{id: A}, {id: A}]",
		"inverted":  "vehicles: [{id: A, trips: [{start: 2h, end: 1h}]}]",
		"task type": "vehicles: [{id: A, trips: [{start: 1h, end: 2h, tasks: [{task_type: Boat}]}]}]",
		"capacity":  "vehicles: [{id: A, trips: [{start: 1h, end: 2h, tasks: [{task_type: Client}, {task_type: Client}, {task_type: Client}]}]}]",
	}
	for name, doc := range cases {
		if _, err := ParseSeed([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestListVehiclesThroughClient(t *testing.T) {
	_, _, c := newTestServer(t)
	vs, err := c.ListVehicles(context.Background(), window())
	require.NoError(t, err)
	require.Len(t, vs, 3)
	assert.Equal(t, "PM001", vs[0].ID)
	require.Len(t, vs[0].Trips, 1)
	trip := vs[0].Trips[0]
	assert.Equal(t, model.At(base.Add(time.Hour)), trip.StartTime)
	assert.Len(t, trip.Tasks, 2)
	assert.Nil(t, vs[2].DriverID)

	// A window ending before the trip hides it.
	early := model.TimeRange{Start: model.At(base.Add(-2 * time.Hour)), End: model.At(base.Add(time.Hour))}
	vs, err = c.ListVehicles(context.Background(), early)
	require.NoError(t, err)
	assert.Empty(t, vs[0].Trips)
}

func TestRefreshFiltersVehicles(t *testing.T) {
	_, _, c := newTestServer(t)
	vs, err := c.RefreshVehicles(context.Background(), []string{"PM003", "GHOST", "PM001"}, window())
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, "PM001", vs[0].ID)
	assert.Equal(t, "PM003", vs[1].ID)
}

func TestTripLifecycle(t *testing.T) {
	_, n, c := newTestServer(t)
	ctx := context.Background()
	trip, err := c.CreateTrip(ctx, model.TripDraft{
		VehicleID: "PM002",
		StartTime: model.At(base.Add(2 * time.Hour)),
		EndTime:   model.At(base.Add(5 * time.Hour)),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, trip.ID)
	assert.Equal(t, "PM002", trip.VehicleID)

	cont := "CONT002"
	task, err := c.CreateTask(ctx, model.TaskDraft{TripID: trip.ID, ContainerNo: &cont, TaskType: model.TaskEmptyPark})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, task.Status)
	assert.Equal(t, model.At(base), task.PlanStart)
	assert.Equal(t, "Melbourne Warehouse", task.StartAddress)
	assert.Equal(t, "Empty Park B", task.EndAddress)

	require.NoError(t, c.DeleteTask(ctx, task.ID))
	require.NoError(t, c.DeleteTrip(ctx, trip.ID))

	err = c.DeleteTrip(ctx, trip.ID)
	code, ok := remote.RejectionCode(err)
	require.True(t, ok, "expected rejection, got %v", err)
	assert.Equal(t, remote.CodeNotFound, code)

	n.mu.Lock()
	defer n.mu.Unlock()
	assert.Len(t, n.changes, 4)
	assert.Equal(t, []string{"PM002"}, n.changes[0].VehicleIDs)
}

func TestCreateTaskRules(t *testing.T) {
	srv, _, c := newTestServer(t)
	ctx := context.Background()
	vs := srv.store.Vehicles(window())
	full := vs[0].Trips[0].ID

	_, err := c.CreateTask(ctx, model.TaskDraft{TripID: full, TaskType: model.TaskClient})
	code, _ := remote.RejectionCode(err)
	assert.Equal(t, remote.CodeTripNotMovable, code)

	_, err = c.CreateTask(ctx, model.TaskDraft{TripID: "missing", TaskType: model.TaskClient})
	code, _ = remote.RejectionCode(err)
	assert.Equal(t, remote.CodeTripNotMovable, code)

	locked, err := c.CreateTrip(ctx, model.TripDraft{
		VehicleID: "PM003",
		StartTime: model.At(base),
		EndTime:   model.At(base.Add(time.Hour)),
		FullLoad:  true,
	})
	require.NoError(t, err)
	_, err = c.CreateTask(ctx, model.TaskDraft{TripID: locked.ID, TaskType: model.TaskClient})
	code, _ = remote.RejectionCode(err)
	assert.Equal(t, remote.CodeTripNotMovable, code)
}

func TestCreateTripRules(t *testing.T) {
	_, _, c := newTestServer(t)
	ctx := context.Background()
	_, err := c.CreateTrip(ctx, model.TripDraft{VehicleID: "GHOST", StartTime: model.At(base), EndTime: model.At(base.Add(time.Hour))})
	code, _ := remote.RejectionCode(err)
	assert.Equal(t, remote.CodeVehicleNotFound, code)

	_, err = c.CreateTrip(ctx, model.TripDraft{VehicleID: "PM001", StartTime: model.At(base.Add(time.Hour)), EndTime: model.At(base)})
	code, _ = remote.RejectionCode(err)
	assert.Equal(t, remote.CodeInvalidTimeRange, code)
}

func TestDragVehicleKeepsDuration(t *testing.T) {
	srv, n, c := newTestServer(t)
	ctx := context.Background()
	tripID := srv.store.Vehicles(window())[0].Trips[0].ID
	start := model.At(base.Add(6 * time.Hour))

	require.NoError(t, c.CommitVehicleDrag(ctx, model.VehicleDrag{TripID: tripID, NewVehicleID: "PM002", NewStartTime: start}))
	trip, err := srv.store.Trip(tripID)
	require.NoError(t, err)
	assert.Equal(t, "PM002", trip.VehicleID)
	assert.Equal(t, start, trip.StartTime)
	assert.Equal(t, 3*time.Hour, trip.EndTime.Sub(trip.StartTime.Time))
	assert.Equal(t, []string{"PM001", "PM002"}, n.changes[len(n.changes)-1].VehicleIDs)

	err = c.CommitVehicleDrag(ctx, model.VehicleDrag{TripID: tripID, NewVehicleID: "GHOST", NewStartTime: start})
	code, _ := remote.RejectionCode(err)
	assert.Equal(t, remote.CodeVehicleNotFound, code)

	err = c.CommitVehicleDrag(ctx, model.VehicleDrag{TripID: "missing", NewVehicleID: "PM001", NewStartTime: start})
	code, _ = remote.RejectionCode(err)
	assert.Equal(t, remote.CodeNotFound, code)
}

func TestDragTime(t *testing.T) {
	srv, _, c := newTestServer(t)
	ctx := context.Background()
	tripID := srv.store.Vehicles(window())[0].Trips[0].ID
	start, end := model.At(base.Add(2*time.Hour)), model.At(base.Add(3*time.Hour))

	require.NoError(t, c.CommitTimeDrag(ctx, model.TimeDrag{TripID: tripID, NewStart: start, NewEnd: end}))
	trip, _ := srv.store.Trip(tripID)
	assert.Equal(t, end, trip.EndTime)

	err := c.CommitTimeDrag(ctx, model.TimeDrag{TripID: tripID, NewStart: end, NewEnd: end})
	code, _ := remote.RejectionCode(err)
	assert.Equal(t, remote.CodeInvalidTimeRange, code)

	err = c.CommitTimeDrag(ctx, model.TimeDrag{TripID: "missing", NewStart: start, NewEnd: end})
	code, _ = remote.RejectionCode(err)
	assert.Equal(t, remote.CodeNotFound, code)
}

func TestAvailableVehicleDriverList(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/gantt/get_vehicle_driver_list", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	var env remote.Envelope[[][]string]
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	assert.Equal(t, []string{"JKL-012", "MNO-345"}, env.Data[0])
	assert.Equal(t, []string{"DRIVER003", "DRIVER004"}, env.Data[1])
}

func TestBadBodyAndMetrics(t *testing.T) {
	srv, _, _ := newTestServer(t)
	h := srv.Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/gantt/trip", strings.NewReader("{")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/gantt/task/nope", nil))
	if got := testutil.ToFloat64(srv.calls.WithLabelValues("delete_task", "404")); got != 1 {
		t.Fatalf("expected one 404 delete, got %v", got)
	}
	if got := testutil.ToFloat64(srv.calls.WithLabelValues("create_trip", "400")); got != 1 {
		t.Fatalf("expected one bad request, got %v", got)
	}
}

func TestNotifierFailureDoesNotFailCall(t *testing.T) {
	srv, n, c := newTestServer(t)
	n.err = errors.New("broker down")
	tripID := srv.store.Vehicles(window())[0].Trips[0].ID
	if err := c.DeleteTrip(context.Background(), tripID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := srv.store.Trip(tripID); err == nil {
		t.Fatalf("trip still present")
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	seed, _ := DefaultSeed()
	srv := NewServer(Config{Address: "127.0.0.1:0"}, NewStore(seed), WithRegistry(prometheus.NewRegistry()))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("start: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestOrderDesk(t *testing.T) {
	_, _, c := newTestServer(t)
	ctx := context.Background()

	all, err := c.Containers(ctx, model.ContainerFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "CONT001", all[0].CtnNumber)

	byClient, err := c.Containers(ctx, model.ContainerFilter{Search: "client b", DeliverType: "Empty"})
	require.NoError(t, err)
	assert.Len(t, byClient, 2)
	sydney, err := c.Containers(ctx, model.ContainerFilter{Terminal: "Sydney Port Terminal", LogisticsStatus: "Yard(F)"})
	require.NoError(t, err)
	require.Len(t, sydney, 1)
	assert.Equal(t, "CONT004", sydney[0].CtnNumber)

	got, err := c.Container(ctx, "CONT003")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-04", got.PlanDeliverDate)
	_, err = c.Container(ctx, "NOPE")
	code, ok := remote.RejectionCode(err)
	require.True(t, ok, "expected rejection, got %v", err)
	assert.Equal(t, remote.CodeNotFound, code)
}

func TestDueContainers(t *testing.T) {
	_, _, c := newTestServer(t)
	ctx := context.Background()
	want := map[model.Deadline][]string{
		model.DeadlineLastPickup:   {"CONT001"},
		model.DeadlineLastDehire:   {"CONT002"},
		model.DeadlineTodayDeliver: {"CONT003"},
	}
	for d, ids := range want {
		cs, err := c.DueContainers(ctx, d, "2024-06-03")
		require.NoError(t, err, d)
		var got []string
		for _, ct := range cs {
			got = append(got, ct.CtnNumber)
		}
		assert.Equal(t, ids, got, d)
	}
	cs, err := c.DueContainers(ctx, model.DeadlineLastPickup, "2024-06-04")
	require.NoError(t, err)
	assert.Empty(t, cs)

	_, err = c.DueContainers(ctx, model.DeadlineLastPickup, "tomorrow")
	code, ok := remote.RejectionCode(err)
	require.True(t, ok, "expected rejection, got %v", err)
	assert.Equal(t, codeBadRequest, code)
}

func TestPlanTaskRules(t *testing.T) {
	srv, _, c := newTestServer(t)
	ctx := context.Background()
	full := srv.store.Vehicles(window())[0].Trips[0].ID
	open, err := c.CreateTrip(ctx, model.TripDraft{VehicleID: "PM002", StartTime: model.At(base), EndTime: model.At(base.Add(2 * time.Hour))})
	require.NoError(t, err)
	locked, err := c.CreateTrip(ctx, model.TripDraft{VehicleID: "PM003", StartTime: model.At(base), EndTime: model.At(base.Add(time.Hour)), FullLoad: true})
	require.NoError(t, err)

	task, err := c.PlanTask(ctx, model.PlanRequest{TripID: open.ID, ContainerNo: "CONT001", TaskType: model.TaskClient})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, open.ID, task.TripID)
	assert.Equal(t, "Sydney Port Terminal", task.StartAddress)
	assert.Equal(t, "Client A Warehouse", task.EndAddress)
	assert.Equal(t, model.At(base), task.PlanStart)
	assert.Equal(t, model.At(base.Add(time.Hour)), task.PlanEnd)
	// A proposal is not stored.
	stored, err := srv.store.Trip(open.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Tasks)

	cases := map[string]struct {
		req  model.PlanRequest
		code int
	}{
		"unknown container": {model.PlanRequest{TripID: open.ID, ContainerNo: "NOPE", TaskType: model.TaskClient}, remote.CodeNotFound},
		"unknown trip":      {model.PlanRequest{TripID: "missing", ContainerNo: "CONT001", TaskType: model.TaskClient}, remote.CodeTripNotMovable},
		"full trip":         {model.PlanRequest{TripID: full, ContainerNo: "CONT001", TaskType: model.TaskClient}, remote.CodeTripNotMovable},
		"locked trip":       {model.PlanRequest{TripID: locked.ID, ContainerNo: "CONT001", TaskType: model.TaskClient}, remote.CodeTripNotMovable},
	}
	for name, tc := range cases {
		_, err := c.PlanTask(ctx, tc.req)
		code, ok := remote.RejectionCode(err)
		require.True(t, ok, "%s: expected rejection, got %v", name, err)
		assert.Equal(t, tc.code, code, name)
	}

	// Without a trip the proposal is free-standing.
	task, err = c.PlanTask(ctx, model.PlanRequest{ContainerNo: "CONT004", TaskType: model.TaskClient})
	require.NoError(t, err)
	assert.Empty(t, task.TripID)
	assert.Equal(t, "Client C - Ready to Deliver", task.StartAddress)
}
