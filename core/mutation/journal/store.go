// Package journal keeps an append-only audit trail of board mutations.
package journal

import (
	"context"
	"encoding/json"
	"time"
)

// Record captures one coordinator operation and its outcome.
type Record struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Operation string          `json:"operation"`
	Outcome   string          `json:"outcome"`
	VehicleID string          `json:"vehicle_id,omitempty"`
	TripID    string          `json:"trip_id,omitempty"`
	TaskID    string          `json:"task_id,omitempty"`
	Code      int             `json:"code,omitempty"`
	Message   string          `json:"message,omitempty"`
	Request   json.RawMessage `json:"request,omitempty"`
	LatencyMS int64           `json:"latency_ms"`
}

// Query defines filters for retrieving records. Zero fields match all.
type Query struct {
	Start     time.Time
	End       time.Time
	Operation string
	Outcome   string
	VehicleID string
	TripID    string
}

// Match reports whether r passes every filter of q.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Operation != "" && r.Operation != q.Operation {
		return false
	}
	if q.Outcome != "" && r.Outcome != q.Outcome {
		return false
	}
	if q.VehicleID != "" && r.VehicleID != q.VehicleID {
		return false
	}
	if q.TripID != "" && r.TripID != q.TripID {
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards every record.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
