// Package backendsim is an in-memory rendition of the schedule persistence
// service used for local development and integration tests.
package backendsim

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bsb-logistics/ganttboard/core/model"
	"github.com/bsb-logistics/ganttboard/core/remote"
)

// Store holds vehicles, trips and tasks. Trips keep insertion order and are
// attached to vehicles only when read.
type Store struct {
	mu         sync.RWMutex
	vehicles   []model.Vehicle
	trips      []model.Trip
	containers map[string]model.Container
	ctnOrder   []string
	plates     []string
	drivers    []string
	now        func() time.Time
	newID      func() string
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithIDs overrides the identifier generator.
func WithIDs(next func() string) StoreOption {
	return func(s *Store) { s.newID = next }
}

// NewStore creates a store loaded with seed.
func NewStore(seed Seed, opts ...StoreOption) *Store {
	s := &Store{
		containers: map[string]model.Container{},
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	s.load(seed)
	return s
}

func (s *Store) load(seed Seed) {
	base := s.now()
	at := func(d time.Duration) model.Timestamp { return model.At(base.Add(d)) }

	s.plates = append([]string(nil), seed.PlateNumbers...)
	s.drivers = append([]string(nil), seed.Drivers...)
	for _, c := range seed.Containers {
		if _, dup := s.containers[c.CtnNumber]; !dup {
			s.ctnOrder = append(s.ctnOrder, c.CtnNumber)
		}
		s.containers[c.CtnNumber] = c
	}
	for _, sv := range seed.Vehicles {
		s.vehicles = append(s.vehicles, model.Vehicle{
			ID:          sv.ID,
			PlateNumber: sv.PlateNumber,
			DriverID:    optional(sv.DriverID),
		})
		for _, st := range sv.Trips {
			trip := model.Trip{
				ID:        orDefault(st.ID, s.newID),
				VehicleID: sv.ID,
				DriverID:  optional(st.DriverID),
				StartTime: at(st.Start),
				EndTime:   at(st.End),
				FullLoad:  model.FullLoad(st.FullLoad),
				Tasks:     []model.Task{},
			}
			for _, sk := range st.Tasks {
				status := model.TaskStatus(sk.Status)
				if status == "" {
					status = model.StatusPending
				}
				trip.Tasks = append(trip.Tasks, model.Task{
					ID:           orDefault(sk.ID, s.newID),
					TripID:       trip.ID,
					ContainerNo:  optional(sk.ContainerNo),
					TaskType:     model.TaskType(sk.TaskType),
					PlanStart:    at(sk.Start),
					PlanEnd:      at(sk.End),
					StartAddress: sk.StartAddress,
					EndAddress:   sk.EndAddress,
					Status:       status,
				})
			}
			s.trips = append(s.trips, trip)
		}
	}
}

// Vehicles returns every vehicle with the trips overlapping r.
func (s *Store) Vehicles(r model.TimeRange) []model.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assemble(nil, r)
}

// VehiclesByID returns the listed vehicles in board order. Unknown ids are
// ignored.
func (s *Store) VehiclesByID(ids []string, r model.TimeRange) []model.Vehicle {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assemble(want, r)
}

func (s *Store) assemble(want map[string]bool, r model.TimeRange) []model.Vehicle {
	out := make([]model.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		if want != nil && !want[v.ID] {
			continue
		}
		v = v.Clone()
		v.Trips = []model.Trip{}
		for _, tr := range s.trips {
			if tr.VehicleID == v.ID && r.Overlaps(tr.StartTime.Time, tr.EndTime.Time) {
				v.Trips = append(v.Trips, tr.Clone())
			}
		}
		out = append(out, v)
	}
	return out
}

// Trip returns a copy of the trip with its tasks.
func (s *Store) Trip(id string) (model.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.tripIndex(id)
	if i < 0 {
		return model.Trip{}, remote.Reject(remote.CodeNotFound, "trip not found")
	}
	return s.trips[i].Clone(), nil
}

// CreateTrip stores a new trip with a fresh id.
func (s *Store) CreateTrip(d model.TripDraft) (model.Trip, error) {
	if d.EndTime.Before(d.StartTime.Time) {
		return model.Trip{}, remote.Reject(remote.CodeInvalidTimeRange, "start time must be before end time")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vehicleIndex(d.VehicleID) < 0 {
		return model.Trip{}, remote.Reject(remote.CodeVehicleNotFound, "vehicle not found")
	}
	trip := model.Trip{
		ID:        s.newID(),
		VehicleID: d.VehicleID,
		DriverID:  d.DriverID,
		StartTime: d.StartTime,
		EndTime:   d.EndTime,
		FullLoad:  d.FullLoad,
		Tasks:     []model.Task{},
	}
	s.trips = append(s.trips, trip)
	return trip.Clone(), nil
}

// DeleteTrip removes a trip and its tasks.
func (s *Store) DeleteTrip(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.tripIndex(id)
	if i < 0 {
		return "", remote.Reject(remote.CodeNotFound, "trip not found")
	}
	owner := s.trips[i].VehicleID
	s.trips = append(s.trips[:i], s.trips[i+1:]...)
	return owner, nil
}

// CreateTask appends a task to a trip that is neither locked nor full.
// Missing plan times default to now; addresses are derived from the
// container when it is known.
func (s *Store) CreateTask(d model.TaskDraft) (model.Task, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.tripIndex(d.TripID)
	if i < 0 {
		return model.Task{}, "", remote.Reject(remote.CodeTripNotMovable, "trip not found")
	}
	trip := &s.trips[i]
	if trip.Locked() {
		return model.Task{}, "", remote.Reject(remote.CodeTripNotMovable, "trip is full load, no more tasks allowed")
	}
	if trip.Full() {
		return model.Task{}, "", remote.Reject(remote.CodeTripNotMovable, "trip already holds two tasks")
	}
	now := model.At(s.now())
	task := model.Task{
		ID:          s.newID(),
		TripID:      trip.ID,
		ContainerNo: d.ContainerNo,
		TaskType:    d.TaskType,
		PlanStart:   now,
		PlanEnd:     now,
		Status:      model.StatusPending,
	}
	if d.PlanStart != nil {
		task.PlanStart = *d.PlanStart
	}
	if d.PlanEnd != nil {
		task.PlanEnd = *d.PlanEnd
	}
	if d.ContainerNo != nil {
		if c, ok := s.containers[*d.ContainerNo]; ok {
			task.StartAddress = c.PickupAddress()
			task.EndAddress = c.DeliveryAddress(d.TaskType)
			task.ContainerType = optional(c.CtnType)
			task.ContainerWeight = optional(c.CtnWeight)
		}
	}
	trip.Tasks = append(trip.Tasks, task)
	return task.Clone(), trip.VehicleID, nil
}

// DeleteTask removes a task from its trip.
func (s *Store) DeleteTask(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.trips {
		tr := &s.trips[i]
		for j, k := range tr.Tasks {
			if k.ID == id {
				tr.Tasks = append(tr.Tasks[:j], tr.Tasks[j+1:]...)
				return tr.VehicleID, nil
			}
		}
	}
	return "", remote.Reject(remote.CodeNotFound, "task not found")
}

// MoveTrip reassigns a trip to another vehicle, keeping its duration. It
// returns the previous and the new owner.
func (s *Store) MoveTrip(d model.VehicleDrag) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vehicleIndex(d.NewVehicleID) < 0 {
		return nil, remote.Reject(remote.CodeVehicleNotFound, "target vehicle not found")
	}
	i := s.tripIndex(d.TripID)
	if i < 0 {
		return nil, remote.Reject(remote.CodeNotFound, "trip not found")
	}
	tr := &s.trips[i]
	old := tr.VehicleID
	length := tr.EndTime.Sub(tr.StartTime.Time)
	tr.VehicleID = d.NewVehicleID
	tr.StartTime = d.NewStartTime
	tr.EndTime = model.At(d.NewStartTime.Add(length))
	if old == d.NewVehicleID {
		return []string{old}, nil
	}
	return []string{old, d.NewVehicleID}, nil
}

// ResizeTrip sets new bounds on a trip.
func (s *Store) ResizeTrip(d model.TimeDrag) (string, error) {
	if !d.NewStart.Before(d.NewEnd.Time) {
		return "", remote.Reject(remote.CodeInvalidTimeRange, "start time must be before end time")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.tripIndex(d.TripID)
	if i < 0 {
		return "", remote.Reject(remote.CodeNotFound, "trip not found")
	}
	s.trips[i].StartTime = d.NewStart
	s.trips[i].EndTime = d.NewEnd
	return s.trips[i].VehicleID, nil
}

// Containers returns the containers matching f in seed order.
func (s *Store) Containers(f model.ContainerFilter) []model.Container {
	return s.selectContainers(f.Match)
}

// Container returns one container by number.
func (s *Store) Container(no string) (model.Container, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.containers[no]
	if !ok {
		return model.Container{}, remote.Reject(remote.CodeNotFound, "container not found")
	}
	return c, nil
}

// Due returns the containers on the d list of day.
func (s *Store) Due(d model.Deadline, day string) []model.Container {
	return s.selectContainers(func(c model.Container) bool { return c.Due(d, day) })
}

func (s *Store) selectContainers(keep func(model.Container) bool) []model.Container {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Container{}
	for _, no := range s.ctnOrder {
		if c := s.containers[no]; keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// PlanTask proposes the task moving a container. When a trip is named it
// must exist and accept another task. Nothing is stored.
func (s *Store) PlanTask(r model.PlanRequest) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.containers[r.ContainerNo]
	if !ok {
		return model.Task{}, remote.Reject(remote.CodeNotFound, "container not found")
	}
	if r.TripID != "" {
		i := s.tripIndex(r.TripID)
		if i < 0 {
			return model.Task{}, remote.Reject(remote.CodeTripNotMovable, "trip not found")
		}
		if s.trips[i].Locked() {
			return model.Task{}, remote.Reject(remote.CodeTripNotMovable, "trip is full load, no more tasks allowed")
		}
		if s.trips[i].Full() {
			return model.Task{}, remote.Reject(remote.CodeTripNotMovable, "trip already holds two tasks")
		}
	}
	return c.Plan(r, model.At(s.now()), s.newID()), nil
}

// Available returns the plate numbers and drivers not yet assigned to a
// vehicle.
func (s *Store) Available() (plates, drivers []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	usedPlates := map[string]bool{}
	usedDrivers := map[string]bool{}
	for _, v := range s.vehicles {
		usedPlates[v.PlateNumber] = true
		if v.DriverID != nil {
			usedDrivers[*v.DriverID] = true
		}
	}
	plates = remaining(s.plates, usedPlates)
	drivers = remaining(s.drivers, usedDrivers)
	return plates, drivers
}

// Counts reports the number of vehicles, trips and tasks held.
func (s *Store) Counts() (vehicles, trips, tasks int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tr := range s.trips {
		tasks += len(tr.Tasks)
	}
	return len(s.vehicles), len(s.trips), tasks
}

func (s *Store) vehicleIndex(id string) int {
	for i, v := range s.vehicles {
		if v.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) tripIndex(id string) int {
	for i, tr := range s.trips {
		if tr.ID == id {
			return i
		}
	}
	return -1
}

func remaining(all []string, used map[string]bool) []string {
	out := []string{}
	for _, v := range all {
		if !used[v] {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orDefault(id string, next func() string) string {
	if id != "" {
		return id
	}
	return next()
}
