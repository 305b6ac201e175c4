// Package schedule holds the in-memory vehicle → trip → task hierarchy.
//
// Nodes live in an arena indexed by id so that any trip or task resolves in
// constant time while ownership stays hierarchical: a vehicle node owns its
// trip nodes, a trip node owns its tasks. Every structural change updates the
// indexes and the selection under the same lock.
package schedule

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bsb-logistics/ganttboard/core/model"
)

// SelectionSet is the selection the tree keeps consistent with its tasks.
type SelectionSet interface {
	Add(ids ...string)
	Remove(ids ...string)
	Toggle(id string) bool
	Retain(keep func(id string) bool)
}

type vehicleNode struct {
	vehicle model.Vehicle // Trips is always nil; see trips
	trips   []*tripNode
}

type tripNode struct {
	trip  model.Trip
	owner *vehicleNode
}

// Tree is the schedule of every vehicle in the current window.
type Tree struct {
	mu       sync.RWMutex
	order    []*vehicleNode
	vehicles map[string]*vehicleNode
	trips    map[string]*tripNode
	tasks    map[string]*tripNode
	sel      SelectionSet
}

// NewTree returns an empty tree. sel may be nil when no selection is kept.
func NewTree(sel SelectionSet) *Tree {
	return &Tree{
		vehicles: make(map[string]*vehicleNode),
		trips:    make(map[string]*tripNode),
		tasks:    make(map[string]*tripNode),
		sel:      sel,
	}
}

// ReplaceAll swaps the whole hierarchy for vs, keeping their order.
// Duplicate ids after the first occurrence are dropped.
func (t *Tree) ReplaceAll(vs []model.Vehicle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.order = make([]*vehicleNode, 0, len(vs))
	t.vehicles = make(map[string]*vehicleNode, len(vs))
	t.trips = make(map[string]*tripNode)
	t.tasks = make(map[string]*tripNode)
	for _, v := range vs {
		if _, dup := t.vehicles[v.ID]; dup {
			continue
		}
		vn := &vehicleNode{}
		t.order = append(t.order, vn)
		t.vehicles[v.ID] = vn
		t.fillVehicle(vn, v)
	}
	t.scrubSelection()
}

// Vehicles returns a deep copy of every vehicle in display order.
func (t *Tree) Vehicles() []model.Vehicle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]model.Vehicle, len(t.order))
	for i, vn := range t.order {
		out[i] = vn.export()
	}
	return out
}

// VehicleIDs returns the vehicle ids in display order.
func (t *Tree) VehicleIDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]string, len(t.order))
	for i, vn := range t.order {
		ids[i] = vn.vehicle.ID
	}
	return ids
}

// Len returns the number of vehicles.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.order)
}

func (t *Tree) Vehicle(id string) (model.Vehicle, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	vn, ok := t.vehicles[id]
	if !ok {
		return model.Vehicle{}, false
	}
	return vn.export(), true
}

func (t *Tree) Trip(id string) (model.Trip, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tn, ok := t.trips[id]
	if !ok {
		return model.Trip{}, false
	}
	return tn.trip.Clone(), true
}

// TripOwner returns the id of the vehicle currently holding the trip.
func (t *Tree) TripOwner(tripID string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tn, ok := t.trips[tripID]
	if !ok {
		return "", false
	}
	return tn.owner.vehicle.ID, true
}

func (t *Tree) Task(id string) (model.Task, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tn, ok := t.tasks[id]
	if !ok {
		return model.Task{}, false
	}
	for _, k := range tn.trip.Tasks {
		if k.ID == id {
			return k.Clone(), true
		}
	}
	return model.Task{}, false
}

// CheckTaskCapacity reports whether a task could be attached to the trip.
// The lock takes precedence over the count.
func (t *Tree) CheckTaskCapacity(tripID string) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tn, ok := t.trips[tripID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTripNotFound, tripID)
	}
	return capacity(tn.trip)
}

// AttachTrip appends trip to the vehicle's lane.
func (t *Tree) AttachTrip(vehicleID string, trip model.Trip) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	vn, ok := t.vehicles[vehicleID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrVehicleNotFound, vehicleID)
	}
	if _, dup := t.trips[trip.ID]; dup {
		return fmt.Errorf("%w: trip %s", ErrDuplicateID, trip.ID)
	}
	for _, k := range trip.Tasks {
		if _, dup := t.tasks[k.ID]; dup {
			return fmt.Errorf("%w: task %s", ErrDuplicateID, k.ID)
		}
	}
	trip = trip.Clone()
	trip.VehicleID = vehicleID
	t.attach(vn, trip)
	return nil
}

// DetachTrip removes the trip from whichever vehicle holds it. Its task ids
// leave the selection.
func (t *Tree) DetachTrip(tripID string) (model.Trip, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tn, ok := t.trips[tripID]
	if !ok {
		return model.Trip{}, fmt.Errorf("%w: %s", ErrTripNotFound, tripID)
	}
	t.detach(tn)
	if t.sel != nil {
		t.sel.Remove(tn.trip.TaskIDs()...)
	}
	return tn.trip, nil
}

// AttachTask appends task to the trip.
func (t *Tree) AttachTask(tripID string, task model.Task) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	tn, ok := t.trips[tripID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTripNotFound, tripID)
	}
	if err := capacity(tn.trip); err != nil {
		return err
	}
	if _, dup := t.tasks[task.ID]; dup {
		return fmt.Errorf("%w: task %s", ErrDuplicateID, task.ID)
	}
	task = task.Clone()
	task.TripID = tripID
	tn.trip.Tasks = append(tn.trip.Tasks, task)
	t.tasks[task.ID] = tn
	return nil
}

// DetachTask removes the task from its trip and from the selection.
func (t *Tree) DetachTask(taskID string) (model.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tn, ok := t.tasks[taskID]
	if !ok {
		return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	var removed model.Task
	kept := tn.trip.Tasks[:0]
	for _, k := range tn.trip.Tasks {
		if k.ID == taskID {
			removed = k
			continue
		}
		kept = append(kept, k)
	}
	tn.trip.Tasks = kept
	delete(t.tasks, taskID)
	if t.sel != nil {
		t.sel.Remove(taskID)
	}
	return removed, nil
}

// SetTripTimes patches the trip bounds in place. Task plan times are left
// untouched.
func (t *Tree) SetTripTimes(tripID string, start, end model.Timestamp) error {
	if end.Before(start.Time) {
		return ErrInvalidTimeRange
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	tn, ok := t.trips[tripID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTripNotFound, tripID)
	}
	tn.trip.StartTime = start
	tn.trip.EndTime = end
	return nil
}

// ReplaceVehicle overwrites the vehicle and its whole trip list with v.
// Fields absent from v are lost. Trips of v currently held by another
// vehicle move to v.
func (t *Tree) ReplaceVehicle(v model.Vehicle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	vn, ok := t.vehicles[v.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrVehicleNotFound, v.ID)
	}
	for _, tn := range vn.trips {
		t.unindex(tn)
	}
	vn.trips = nil
	for _, trip := range v.Trips {
		if other, ok := t.trips[trip.ID]; ok {
			t.detach(other)
		}
	}
	t.fillVehicle(vn, v)
	t.scrubSelection()
	return nil
}

// ReplaceTrip overwrites the trip with tr, tasks included. When tr names a
// different known vehicle the trip moves there.
func (t *Tree) ReplaceTrip(tr model.Trip) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	tn, ok := t.trips[tr.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTripNotFound, tr.ID)
	}
	tr = tr.Clone()
	for _, k := range tn.trip.Tasks {
		delete(t.tasks, k.ID)
	}
	if target, ok := t.vehicles[tr.VehicleID]; ok && target != tn.owner {
		t.detach(tn)
		t.attach(target, tr)
	} else {
		tr.VehicleID = tn.owner.vehicle.ID
		tn.trip = tr
		t.indexTasks(tn)
	}
	t.scrubSelection()
	return nil
}

func (t *Tree) fillVehicle(vn *vehicleNode, v model.Vehicle) {
	vn.vehicle = v.Clone()
	vn.vehicle.Trips = nil
	for _, trip := range v.Trips {
		if _, dup := t.trips[trip.ID]; dup {
			continue
		}
		trip = trip.Clone()
		trip.VehicleID = v.ID
		t.attach(vn, trip)
	}
}

func (t *Tree) attach(vn *vehicleNode, trip model.Trip) {
	tn := &tripNode{trip: trip, owner: vn}
	vn.trips = append(vn.trips, tn)
	t.trips[trip.ID] = tn
	t.indexTasks(tn)
}

func (t *Tree) indexTasks(tn *tripNode) {
	kept := tn.trip.Tasks[:0]
	for _, k := range tn.trip.Tasks {
		if _, dup := t.tasks[k.ID]; dup {
			continue
		}
		k.TripID = tn.trip.ID
		t.tasks[k.ID] = tn
		kept = append(kept, k)
	}
	tn.trip.Tasks = kept
}

func (t *Tree) detach(tn *tripNode) {
	vn := tn.owner
	for i, other := range vn.trips {
		if other == tn {
			vn.trips = append(vn.trips[:i], vn.trips[i+1:]...)
			break
		}
	}
	t.unindex(tn)
}

func (t *Tree) unindex(tn *tripNode) {
	delete(t.trips, tn.trip.ID)
	for _, k := range tn.trip.Tasks {
		delete(t.tasks, k.ID)
	}
}

// Select adds tasks to the selection. Any id the tree does not hold refuses
// the whole call and leaves the selection unchanged.
func (t *Tree) Select(ids ...string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.knownTasks(ids); err != nil {
		return err
	}
	if t.sel != nil {
		t.sel.Add(ids...)
	}
	return nil
}

// ToggleSelected flips the selection of each task, refusing unknown ids
// like Select.
func (t *Tree) ToggleSelected(ids ...string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.knownTasks(ids); err != nil {
		return err
	}
	if t.sel != nil {
		for _, id := range ids {
			t.sel.Toggle(id)
		}
	}
	return nil
}

// SetSelection replaces the selection with ids, refusing unknown ids like
// Select.
func (t *Tree) SetSelection(ids ...string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.knownTasks(ids); err != nil {
		return err
	}
	if t.sel == nil {
		return nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	t.sel.Retain(func(id string) bool { return want[id] })
	t.sel.Add(ids...)
	return nil
}

func (t *Tree) knownTasks(ids []string) error {
	var missing []string
	for _, id := range ids {
		if _, ok := t.tasks[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, strings.Join(missing, ", "))
	}
	return nil
}

func (t *Tree) scrubSelection() {
	if t.sel == nil {
		return
	}
	t.sel.Retain(func(id string) bool {
		_, ok := t.tasks[id]
		return ok
	})
}

func (vn *vehicleNode) export() model.Vehicle {
	v := vn.vehicle.Clone()
	v.Trips = make([]model.Trip, len(vn.trips))
	for i, tn := range vn.trips {
		v.Trips[i] = tn.trip.Clone()
	}
	return v
}

func capacity(trip model.Trip) error {
	if trip.Locked() {
		return fmt.Errorf("%w: %s", ErrLocked, trip.ID)
	}
	if trip.Full() {
		return fmt.Errorf("%w: %s holds %d tasks", ErrCapacityExceeded, trip.ID, len(trip.Tasks))
	}
	return nil
}

// Counts is the number of entities held by the tree.
type Counts struct {
	Vehicles int
	Trips    int
	Tasks    int
	Locked   int
}

// Counts returns the current entity counts.
func (t *Tree) Counts() Counts {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c := Counts{Vehicles: len(t.order), Trips: len(t.trips), Tasks: len(t.tasks)}
	for _, tn := range t.trips {
		if tn.trip.Locked() {
			c.Locked++
		}
	}
	return c
}
