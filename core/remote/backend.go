// Package remote defines the contract with the schedule persistence service.
//
// The service is the final arbiter of validity: every mutation is committed
// there first and the board only reflects what it returns.
package remote

import (
	"context"

	"github.com/bsb-logistics/ganttboard/core/model"
)

// Backend is the remote persistence service.
type Backend interface {
	// ListVehicles returns every vehicle with the trips overlapping r.
	ListVehicles(ctx context.Context, r model.TimeRange) ([]model.Vehicle, error)
	// RefreshVehicles returns the listed vehicles only.
	RefreshVehicles(ctx context.Context, ids []string, r model.TimeRange) ([]model.Vehicle, error)
	CreateTrip(ctx context.Context, d model.TripDraft) (model.Trip, error)
	DeleteTrip(ctx context.Context, tripID string) error
	CreateTask(ctx context.Context, d model.TaskDraft) (model.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
	// CommitVehicleDrag moves a trip to another vehicle. The service may
	// reshuffle other trips as a side effect.
	CommitVehicleDrag(ctx context.Context, d model.VehicleDrag) error
	// CommitTimeDrag moves or resizes a trip on its own vehicle.
	CommitTimeDrag(ctx context.Context, d model.TimeDrag) error

	Orders
}

// Orders is the order desk of the persistence service: the containers
// waiting to be moved and their conversion into tasks.
type Orders interface {
	Containers(ctx context.Context, f model.ContainerFilter) ([]model.Container, error)
	// Container rejects unknown numbers with CodeNotFound.
	Container(ctx context.Context, ctnNumber string) (model.Container, error)
	// DueContainers lists the containers on the d list of day.
	DueContainers(ctx context.Context, d model.Deadline, day string) ([]model.Container, error)
	// PlanTask proposes the task moving a container. Nothing is stored;
	// the proposal is committed with CreateTask.
	PlanTask(ctx context.Context, r model.PlanRequest) (model.Task, error)
}

// Envelope is the response wrapper used by every endpoint. Code 0 is success.
type Envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// CodeOK is the envelope code of a successful call.
const CodeOK = 0

// Rejection codes returned by the persistence service.
const (
	CodeInvalidTimeRange = 40001
	CodeTripNotMovable   = 40002
	CodeVehicleNotFound  = 40003
	CodeNotFound         = 404
)
