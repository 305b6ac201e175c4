package model

import "fmt"

// TripDraft carries the fields an operator supplies for a new trip.
type TripDraft struct {
	VehicleID string    `json:"vehicleId"`
	DriverID  *string   `json:"driverId,omitempty"`
	StartTime Timestamp `json:"startTime"`
	EndTime   Timestamp `json:"endTime"`
	FullLoad  FullLoad  `json:"fullLoad"`
}

// Validate checks the draft before it is sent.
func (d TripDraft) Validate() error {
	if d.VehicleID == "" {
		return fmt.Errorf("vehicle id is required")
	}
	if d.StartTime.IsZero() || d.EndTime.IsZero() {
		return fmt.Errorf("start and end time are required")
	}
	return TimeRange{Start: d.StartTime, End: d.EndTime}.Validate()
}

// TaskDraft carries the fields an operator supplies for a new task.
type TaskDraft struct {
	TripID      string     `json:"tripId"`
	ContainerNo *string    `json:"containerNo,omitempty"`
	TaskType    TaskType   `json:"taskType"`
	PlanStart   *Timestamp `json:"planStart,omitempty"`
	PlanEnd     *Timestamp `json:"planEnd,omitempty"`
}

// Validate checks the draft before it is sent.
func (d TaskDraft) Validate() error {
	if d.TripID == "" {
		return fmt.Errorf("trip id is required")
	}
	if !d.TaskType.Valid() {
		return fmt.Errorf("unknown task type %q", d.TaskType)
	}
	if d.PlanStart != nil && d.PlanEnd != nil {
		return TimeRange{Start: *d.PlanStart, End: *d.PlanEnd}.Validate()
	}
	return nil
}

// VehicleDrag commits a trip moved onto another vehicle lane.
type VehicleDrag struct {
	TripID       string    `json:"tripId"`
	NewVehicleID string    `json:"newPmId"`
	NewStartTime Timestamp `json:"newStartTime"`
}

// TimeDrag commits a trip moved or resized along the time axis.
type TimeDrag struct {
	TripID   string    `json:"tripId"`
	NewStart Timestamp `json:"newStart"`
	NewEnd   Timestamp `json:"newEnd"`
}
