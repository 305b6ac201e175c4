package metrics

import "time"

// Outcome labels of a mutation.
const (
	OutcomeOK         = "ok"
	OutcomeStructural = "structural"
	OutcomeRejected   = "rejected"
	OutcomeTransport  = "transport"
)

// MutationEvent describes one coordinator operation.
type MutationEvent struct {
	Operation string
	Outcome   string
	VehicleID string
	TripID    string
	TaskID    string
	// RejectCode is the service code of a rejected call.
	RejectCode int
	Latency    time.Duration
	Time       time.Time
}

// MetricsSink records mutation results for observability purposes.
type MetricsSink interface {
	RecordMutation(ev MutationEvent) error
}

// RefreshEvent describes a fetch or partial refresh of the board.
type RefreshEvent struct {
	Full     bool
	Vehicles int
	Failed   bool
	Latency  time.Duration
	Time     time.Time
}

// RefreshRecorder records board refreshes.
type RefreshRecorder interface {
	RecordRefresh(ev RefreshEvent) error
}

// BoardSize is a count of the entities currently on the board.
type BoardSize struct {
	Vehicles int
	Trips    int
	Tasks    int
	Locked   int
}

// BoardSizeRecorder records the size of the board after each change.
type BoardSizeRecorder interface {
	RecordBoardSize(s BoardSize) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordMutation(MutationEvent) error { return nil }
func (NopSink) RecordRefresh(RefreshEvent) error   { return nil }
func (NopSink) RecordBoardSize(BoardSize) error    { return nil }
