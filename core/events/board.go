package events

import "time"

// Kind names what changed on the board.
type Kind string

const (
	KindFetched        Kind = "fetched"
	KindRefreshed      Kind = "refreshed"
	KindTripAdded      Kind = "trip_added"
	KindTripDeleted    Kind = "trip_deleted"
	KindTaskAdded      Kind = "task_added"
	KindTaskDeleted    Kind = "task_deleted"
	KindTripReassigned Kind = "trip_reassigned"
	KindTripShifted    Kind = "trip_shifted"
)

// BoardEvent is published after a successful change to the schedule tree.
type BoardEvent struct {
	Kind       Kind      `json:"kind"`
	VehicleIDs []string  `json:"vehicleIds,omitempty"`
	TripID     string    `json:"tripId,omitempty"`
	TaskID     string    `json:"taskId,omitempty"`
	Vehicles   int       `json:"vehicles"`
	Trips      int       `json:"trips"`
	Tasks      int       `json:"tasks"`
	Locked     int       `json:"lockedTrips"`
	Time       time.Time `json:"time"`
}
