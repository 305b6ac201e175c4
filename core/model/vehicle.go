package model

import (
	"encoding/json"
	"fmt"
)

// MaxTasksPerTrip bounds the number of tasks a trip may hold.
const MaxTasksPerTrip = 2

// Vehicle is a prime mover row on the board. It owns its trips.
type Vehicle struct {
	ID          string  `json:"id"`
	PlateNumber string  `json:"plateNumber"`
	DriverID    *string `json:"driverId,omitempty"`
	Trips       []Trip  `json:"trips"`
}

// Trip is a scheduled movement of one vehicle holding up to two tasks.
type Trip struct {
	ID        string    `json:"id"`
	VehicleID string    `json:"vehicleId"`
	DriverID  *string   `json:"driverId,omitempty"`
	StartTime Timestamp `json:"startTime"`
	EndTime   Timestamp `json:"endTime"`
	FullLoad  FullLoad  `json:"fullLoad"`
	Tasks     []Task    `json:"tasks"`
}

// Task is a single unit of work inside a trip.
type Task struct {
	ID              string     `json:"id"`
	TripID          string     `json:"tripId"`
	ContainerNo     *string    `json:"containerNo,omitempty"`
	TaskType        TaskType   `json:"taskType"`
	PlanStart       Timestamp  `json:"planStart"`
	PlanEnd         Timestamp  `json:"planEnd"`
	StartAddress    string     `json:"startAddress"`
	EndAddress      string     `json:"endAddress"`
	Status          TaskStatus `json:"status"`
	DriverID        *string    `json:"driverId,omitempty"`
	VehiclePmID     *string    `json:"vehiclePmId,omitempty"`
	VehicleTailID   *string    `json:"vehicleTailId,omitempty"`
	ContainerWeight *string    `json:"containerWeight,omitempty"`
	ContainerType   *string    `json:"containerType,omitempty"`
}

// FullLoad locks a trip against new tasks. It travels as "Y" or "N".
type FullLoad bool

func (f FullLoad) MarshalJSON() ([]byte, error) {
	if f {
		return []byte(`"Y"`), nil
	}
	return []byte(`"N"`), nil
}

func (f *FullLoad) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var v bool
		if berr := json.Unmarshal(b, &v); berr != nil {
			return fmt.Errorf("full load: %w", err)
		}
		*f = FullLoad(v)
		return nil
	}
	switch s {
	case "Y", "y":
		*f = true
	case "N", "n", "":
		*f = false
	default:
		return fmt.Errorf("full load: unexpected value %q", s)
	}
	return nil
}

// Clone returns a deep copy of the vehicle.
func (v Vehicle) Clone() Vehicle {
	out := v
	out.DriverID = cloneString(v.DriverID)
	if v.Trips != nil {
		out.Trips = make([]Trip, len(v.Trips))
		for i, t := range v.Trips {
			out.Trips[i] = t.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the trip.
func (t Trip) Clone() Trip {
	out := t
	out.DriverID = cloneString(t.DriverID)
	if t.Tasks != nil {
		out.Tasks = make([]Task, len(t.Tasks))
		for i, k := range t.Tasks {
			out.Tasks[i] = k.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the task.
func (k Task) Clone() Task {
	out := k
	out.ContainerNo = cloneString(k.ContainerNo)
	out.DriverID = cloneString(k.DriverID)
	out.VehiclePmID = cloneString(k.VehiclePmID)
	out.VehicleTailID = cloneString(k.VehicleTailID)
	out.ContainerWeight = cloneString(k.ContainerWeight)
	out.ContainerType = cloneString(k.ContainerType)
	return out
}

// Validate checks the trip bounds.
func (t Trip) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("trip id is required")
	}
	if t.EndTime.Before(t.StartTime.Time) {
		return fmt.Errorf("trip %s ends before it starts", t.ID)
	}
	return nil
}

// Hours returns the planned length of the trip in hours.
func (t Trip) Hours() float64 {
	return t.EndTime.Sub(t.StartTime.Time).Hours()
}

// Locked reports whether the full-load flag forbids new tasks.
func (t Trip) Locked() bool { return bool(t.FullLoad) }

// Full reports whether the trip already holds the maximum number of tasks.
func (t Trip) Full() bool { return len(t.Tasks) >= MaxTasksPerTrip }

// CanAcceptTask reports whether one more task fits into the trip.
func (t Trip) CanAcceptTask() bool { return !t.Locked() && !t.Full() }

// TaskIDs returns the identifiers of the trip's tasks in order.
func (t Trip) TaskIDs() []string {
	ids := make([]string, len(t.Tasks))
	for i, k := range t.Tasks {
		ids[i] = k.ID
	}
	return ids
}

// StringPtr is a helper for optional string fields.
func StringPtr(s string) *string { return &s }

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
