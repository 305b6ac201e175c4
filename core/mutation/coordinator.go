// Package mutation applies operator edits to the board.
//
// Every operation first asks the persistence service and only touches the
// schedule tree once the service has answered with the authoritative entity.
// A failed call leaves the tree exactly as it was.
package mutation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bsb-logistics/ganttboard/core/events"
	"github.com/bsb-logistics/ganttboard/core/logger"
	"github.com/bsb-logistics/ganttboard/core/metrics"
	"github.com/bsb-logistics/ganttboard/core/model"
	"github.com/bsb-logistics/ganttboard/core/monitoring"
	"github.com/bsb-logistics/ganttboard/core/mutation/journal"
	"github.com/bsb-logistics/ganttboard/core/remote"
	"github.com/bsb-logistics/ganttboard/core/schedule"
	"github.com/bsb-logistics/ganttboard/internal/eventbus"
)

// Operation names used in metrics and the journal.
const (
	OpFetch           = "fetch"
	OpRefresh         = "refresh"
	OpAddTrip         = "add_trip"
	OpAddTask         = "add_task"
	OpDeleteTask      = "delete_task"
	OpDeleteTrip      = "delete_trip"
	OpReassignVehicle = "reassign_vehicle"
	OpShiftTripTime   = "shift_trip_time"
	OpPlanTask        = "plan_task"
)

// Window supplies the time range the board currently shows.
type Window interface {
	Range() model.TimeRange
}

// Coordinator runs the two-phase mutation protocol against one tree.
// Operations are not serialized: when two responses race, the one applied
// last wins.
type Coordinator struct {
	tree    *schedule.Tree
	backend remote.Backend
	window  Window
	sink    metrics.MetricsSink
	journal journal.Store
	bus     *eventbus.TypedBus[events.BoardEvent]
	log     logger.Logger
	now     func() time.Time

	mu       sync.Mutex
	syncErr  error
	lastSync time.Time
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithMetrics sets the sink receiving mutation and refresh events.
func WithMetrics(s metrics.MetricsSink) Option {
	return func(c *Coordinator) {
		if s != nil {
			c.sink = s
		}
	}
}

// WithJournal sets the audit store.
func WithJournal(s journal.Store) Option {
	return func(c *Coordinator) {
		if s != nil {
			c.journal = s
		}
	}
}

// WithBus sets the bus receiving board events.
func WithBus(b *eventbus.TypedBus[events.BoardEvent]) Option {
	return func(c *Coordinator) { c.bus = b }
}

func WithLogger(l logger.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCoordinator wires a coordinator. tree, backend and window are required.
func NewCoordinator(tree *schedule.Tree, backend remote.Backend, window Window, opts ...Option) (*Coordinator, error) {
	if tree == nil || backend == nil || window == nil {
		return nil, fmt.Errorf("mutation: nil parameter provided to NewCoordinator")
	}
	c := &Coordinator{
		tree:    tree,
		backend: backend,
		window:  window,
		sink:    metrics.NopSink{},
		journal: journal.NopStore{},
		log:     logger.NopLogger{},
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Tree returns the tree the coordinator mutates.
func (c *Coordinator) Tree() *schedule.Tree { return c.tree }

// LastSync returns the time of the last successful fetch or refresh and the
// error of the last failed one, if it failed after that.
func (c *Coordinator) LastSync() (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSync, c.syncErr
}

// FetchVehicles replaces the whole board with the vehicles of the current
// window. On failure the prior board stays in place; the error is logged
// and returned for callers that want to report staleness.
func (c *Coordinator) FetchVehicles(ctx context.Context) error {
	start := c.now()
	vs, err := c.backend.ListVehicles(ctx, c.window.Range())
	c.recordRefresh(true, len(vs), err, start)
	if err != nil {
		c.log.Errorf("fetch vehicles: %v", err)
		c.capture(OpFetch, err)
		return err
	}
	c.tree.ReplaceAll(vs)
	c.publish(events.BoardEvent{Kind: events.KindFetched, VehicleIDs: c.tree.VehicleIDs()})
	c.log.Debugf("fetched %d vehicles", len(vs))
	return nil
}

// RefreshVehicles reloads the given vehicles. Returned vehicles replace their
// current rows; vehicles the board does not show are ignored.
func (c *Coordinator) RefreshVehicles(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	start := c.now()
	vs, err := c.backend.RefreshVehicles(ctx, ids, c.window.Range())
	c.recordRefresh(false, len(vs), err, start)
	if err != nil {
		c.log.Errorf("refresh vehicles %v: %v", ids, err)
		c.capture(OpRefresh, err)
		return err
	}
	var replaced []string
	for _, v := range vs {
		if err := c.tree.ReplaceVehicle(v); err != nil {
			c.log.Debugf("refresh: skip vehicle %s: %v", v.ID, err)
			continue
		}
		replaced = append(replaced, v.ID)
	}
	if len(replaced) > 0 {
		c.publish(events.BoardEvent{Kind: events.KindRefreshed, VehicleIDs: replaced})
	}
	return nil
}

// AddTrip creates a trip on the draft's vehicle and attaches the trip the
// service returns.
func (c *Coordinator) AddTrip(ctx context.Context, d model.TripDraft) (model.Trip, error) {
	o := c.begin(OpAddTrip, d)
	o.vehicle = d.VehicleID
	if _, ok := c.tree.Vehicle(d.VehicleID); !ok {
		return model.Trip{}, c.finish(o, fmt.Errorf("%w: %s", schedule.ErrVehicleNotFound, d.VehicleID))
	}
	if err := d.Validate(); err != nil {
		return model.Trip{}, c.finish(o, fmt.Errorf("%w: %v", schedule.ErrInvalidDraft, err))
	}
	trip, err := c.backend.CreateTrip(ctx, d)
	if err == nil && trip.ID == "" {
		err = &remote.TransportError{Op: "create trip", Err: remote.ErrMissingEntity}
	}
	if err != nil {
		return model.Trip{}, c.finish(o, err)
	}
	o.trip = trip.ID
	if err := c.tree.AttachTrip(d.VehicleID, trip); err != nil {
		c.log.Warnf("trip %s created but not attached: %v", trip.ID, err)
	} else {
		c.publish(events.BoardEvent{Kind: events.KindTripAdded, VehicleIDs: []string{d.VehicleID}, TripID: trip.ID})
	}
	_ = c.finish(o, nil)
	return trip, nil
}

// AddTask creates a task in the draft's trip. Lock and capacity are checked
// locally first; the service remains the final judge of both.
func (c *Coordinator) AddTask(ctx context.Context, d model.TaskDraft) (model.Task, error) {
	o := c.begin(OpAddTask, d)
	o.trip = d.TripID
	if err := c.tree.CheckTaskCapacity(d.TripID); err != nil {
		return model.Task{}, c.finish(o, err)
	}
	if err := d.Validate(); err != nil {
		return model.Task{}, c.finish(o, fmt.Errorf("%w: %v", schedule.ErrInvalidDraft, err))
	}
	task, err := c.backend.CreateTask(ctx, d)
	if err == nil && task.ID == "" {
		err = &remote.TransportError{Op: "create task", Err: remote.ErrMissingEntity}
	}
	if err != nil {
		return model.Task{}, c.finish(o, err)
	}
	o.task = task.ID
	if err := c.tree.AttachTask(d.TripID, task); err != nil {
		c.log.Warnf("task %s created but not attached: %v", task.ID, err)
	} else {
		owner, _ := c.tree.TripOwner(d.TripID)
		o.vehicle = owner
		c.publish(events.BoardEvent{Kind: events.KindTaskAdded, VehicleIDs: []string{owner}, TripID: d.TripID, TaskID: task.ID})
	}
	_ = c.finish(o, nil)
	return task, nil
}

// Orders is the order desk of the persistence service.
func (c *Coordinator) Orders() remote.Orders { return c.backend }

// PlanTask asks the service for the task moving a container. A named trip
// passes the same local lock and capacity check as AddTask before the
// service is asked. The proposal is not attached; commit it with AddTask.
func (c *Coordinator) PlanTask(ctx context.Context, r model.PlanRequest) (model.Task, error) {
	o := c.begin(OpPlanTask, r)
	o.trip = r.TripID
	o.vehicle = r.VehicleID
	if r.TripID != "" {
		if err := c.tree.CheckTaskCapacity(r.TripID); err != nil {
			return model.Task{}, c.finish(o, err)
		}
		if owner, ok := c.tree.TripOwner(r.TripID); ok {
			o.vehicle = owner
		}
	}
	if err := r.Validate(); err != nil {
		return model.Task{}, c.finish(o, fmt.Errorf("%w: %v", schedule.ErrInvalidDraft, err))
	}
	task, err := c.backend.PlanTask(ctx, r)
	if err == nil && task.ID == "" {
		err = &remote.TransportError{Op: "plan task", Err: remote.ErrMissingEntity}
	}
	if err != nil {
		return model.Task{}, c.finish(o, err)
	}
	o.task = task.ID
	_ = c.finish(o, nil)
	return task, nil
}

// DeleteTask removes the task on the service, then from the tree and the
// selection.
func (c *Coordinator) DeleteTask(ctx context.Context, taskID string) error {
	o := c.begin(OpDeleteTask, map[string]string{"taskId": taskID})
	o.task = taskID
	task, ok := c.tree.Task(taskID)
	if !ok {
		return c.finish(o, fmt.Errorf("%w: %s", schedule.ErrTaskNotFound, taskID))
	}
	o.trip = task.TripID
	if err := c.backend.DeleteTask(ctx, taskID); err != nil {
		return c.finish(o, err)
	}
	owner, _ := c.tree.TripOwner(task.TripID)
	o.vehicle = owner
	if _, err := c.tree.DetachTask(taskID); err != nil {
		c.log.Warnf("task %s deleted but already gone: %v", taskID, err)
	} else {
		c.publish(events.BoardEvent{Kind: events.KindTaskDeleted, VehicleIDs: []string{owner}, TripID: task.TripID, TaskID: taskID})
	}
	return c.finish(o, nil)
}

// DeleteTrip removes the trip on the service, then from the tree. Its tasks
// leave the selection.
func (c *Coordinator) DeleteTrip(ctx context.Context, tripID string) error {
	o := c.begin(OpDeleteTrip, map[string]string{"tripId": tripID})
	o.trip = tripID
	owner, ok := c.tree.TripOwner(tripID)
	if !ok {
		return c.finish(o, fmt.Errorf("%w: %s", schedule.ErrTripNotFound, tripID))
	}
	o.vehicle = owner
	if err := c.backend.DeleteTrip(ctx, tripID); err != nil {
		return c.finish(o, err)
	}
	if _, err := c.tree.DetachTrip(tripID); err != nil {
		c.log.Warnf("trip %s deleted but already gone: %v", tripID, err)
	} else {
		c.publish(events.BoardEvent{Kind: events.KindTripDeleted, VehicleIDs: []string{owner}, TripID: tripID})
	}
	return c.finish(o, nil)
}

// ReassignVehicle moves a trip to another vehicle lane. The move can ripple
// into other trips, so success is followed by a full fetch of the window
// instead of a local relocation.
func (c *Coordinator) ReassignVehicle(ctx context.Context, tripID, newVehicleID string, newStart model.Timestamp) error {
	drag := model.VehicleDrag{TripID: tripID, NewVehicleID: newVehicleID, NewStartTime: newStart}
	o := c.begin(OpReassignVehicle, drag)
	o.trip = tripID
	o.vehicle = newVehicleID
	if _, ok := c.tree.Trip(tripID); !ok {
		return c.finish(o, fmt.Errorf("%w: %s", schedule.ErrTripNotFound, tripID))
	}
	if err := c.backend.CommitVehicleDrag(ctx, drag); err != nil {
		return c.finish(o, err)
	}
	// The drag is committed; a failed refetch only leaves the view stale.
	if err := c.FetchVehicles(ctx); err == nil {
		c.publish(events.BoardEvent{Kind: events.KindTripReassigned, VehicleIDs: []string{newVehicleID}, TripID: tripID})
	}
	return c.finish(o, nil)
}

// ShiftTripTime moves or resizes a trip along the time axis. Success patches
// the trip bounds in place; task plan times are not touched.
func (c *Coordinator) ShiftTripTime(ctx context.Context, tripID string, start, end model.Timestamp) error {
	drag := model.TimeDrag{TripID: tripID, NewStart: start, NewEnd: end}
	o := c.begin(OpShiftTripTime, drag)
	o.trip = tripID
	owner, ok := c.tree.TripOwner(tripID)
	if !ok {
		return c.finish(o, fmt.Errorf("%w: %s", schedule.ErrTripNotFound, tripID))
	}
	o.vehicle = owner
	if end.Before(start.Time) {
		return c.finish(o, schedule.ErrInvalidTimeRange)
	}
	if err := c.backend.CommitTimeDrag(ctx, drag); err != nil {
		return c.finish(o, err)
	}
	if err := c.tree.SetTripTimes(tripID, start, end); err != nil {
		c.log.Warnf("trip %s shifted but not patched: %v", tripID, err)
	} else {
		c.publish(events.BoardEvent{Kind: events.KindTripShifted, VehicleIDs: []string{owner}, TripID: tripID})
	}
	return c.finish(o, nil)
}

type op struct {
	name    string
	vehicle string
	trip    string
	task    string
	request json.RawMessage
	start   time.Time
}

func (c *Coordinator) begin(name string, req any) *op {
	o := &op{name: name, start: c.now()}
	if b, err := json.Marshal(req); err == nil {
		o.request = b
	}
	return o
}

// finish records the outcome of o everywhere it is observed and returns err.
func (c *Coordinator) finish(o *op, err error) error {
	now := c.now()
	outcome := Classify(err)
	code, _ := remote.RejectionCode(err)
	latency := now.Sub(o.start)

	if merr := c.sink.RecordMutation(metrics.MutationEvent{
		Operation:  o.name,
		Outcome:    string(outcome),
		VehicleID:  o.vehicle,
		TripID:     o.trip,
		TaskID:     o.task,
		RejectCode: code,
		Latency:    latency,
		Time:       now,
	}); merr != nil {
		c.log.Errorf("metrics error: %v", merr)
	}

	rec := journal.Record{
		ID:        uuid.NewString(),
		Timestamp: now,
		Operation: o.name,
		Outcome:   string(outcome),
		VehicleID: o.vehicle,
		TripID:    o.trip,
		TaskID:    o.task,
		Code:      code,
		Request:   o.request,
		LatencyMS: latency.Milliseconds(),
	}
	if err != nil {
		rec.Message = err.Error()
	}
	if jerr := c.journal.Append(context.Background(), rec); jerr != nil {
		c.log.Errorf("journal append: %v", jerr)
	}

	switch outcome {
	case OutcomeOK:
		c.log.Debugw("mutation applied", map[string]any{"operation": o.name, "trip_id": o.trip, "task_id": o.task, "latency_ms": rec.LatencyMS})
	case OutcomeTransport:
		c.log.Errorf("%s: %v", o.name, err)
		c.capture(o.name, err)
	default:
		c.log.Warnf("%s: %v", o.name, err)
	}
	return err
}

func (c *Coordinator) recordRefresh(full bool, n int, err error, start time.Time) {
	now := c.now()
	c.mu.Lock()
	if err != nil {
		c.syncErr = err
	} else {
		c.syncErr = nil
		c.lastSync = now
	}
	c.mu.Unlock()
	rr, ok := c.sink.(metrics.RefreshRecorder)
	if !ok {
		return
	}
	if rerr := rr.RecordRefresh(metrics.RefreshEvent{
		Full:     full,
		Vehicles: n,
		Failed:   err != nil,
		Latency:  now.Sub(start),
		Time:     now,
	}); rerr != nil {
		c.log.Errorf("metrics error: %v", rerr)
	}
}

// publish stamps ev with the current board size and sends it on the bus.
func (c *Coordinator) publish(ev events.BoardEvent) {
	if c.bus == nil {
		return
	}
	n := c.tree.Counts()
	ev.Vehicles = n.Vehicles
	ev.Trips = n.Trips
	ev.Tasks = n.Tasks
	ev.Locked = n.Locked
	ev.Time = c.now()
	c.bus.Publish(ev)
}

func (c *Coordinator) capture(name string, err error) {
	if Classify(err) != OutcomeTransport {
		return
	}
	monitoring.CaptureException(err, map[string]string{"operation": name})
}
