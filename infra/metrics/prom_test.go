package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/bsb-logistics/ganttboard/core/metrics"
)

func TestPromSink_RecordMutation(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	evs := []coremetrics.MutationEvent{
		{Operation: "add_task", Outcome: coremetrics.OutcomeOK, Latency: 20 * time.Millisecond},
		{Operation: "add_task", Outcome: coremetrics.OutcomeStructural},
		{Operation: "shift_trip_time", Outcome: coremetrics.OutcomeRejected, RejectCode: 40001},
	}
	for _, ev := range evs {
		if err := sink.RecordMutation(ev); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	expected := `
# HELP gantt_mutations_total Total number of board mutations by operation and outcome
# TYPE gantt_mutations_total counter
gantt_mutations_total{code="",operation="add_task",outcome="ok"} 1
gantt_mutations_total{code="",operation="add_task",outcome="structural"} 1
gantt_mutations_total{code="40001",operation="shift_trip_time",outcome="rejected"} 1
`
	if err := testutil.CollectAndCompare(sink.mutations, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if c := testutil.CollectAndCount(sink.latency); c != 2 {
		t.Errorf("expected 2 latency series got %d", c)
	}
}

func TestPromSink_RefreshAndBoardSize(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	_ = sink.RecordRefresh(coremetrics.RefreshEvent{Full: true})
	_ = sink.RecordRefresh(coremetrics.RefreshEvent{Full: false, Failed: true})
	if v := testutil.ToFloat64(sink.refreshes.WithLabelValues("full", "false")); v != 1 {
		t.Fatalf("full refreshes %v", v)
	}
	if v := testutil.ToFloat64(sink.refreshes.WithLabelValues("partial", "true")); v != 1 {
		t.Fatalf("failed partial refreshes %v", v)
	}

	_ = sink.RecordBoardSize(coremetrics.BoardSize{Vehicles: 3, Trips: 5, Tasks: 7, Locked: 1})
	if v := testutil.ToFloat64(sink.board.WithLabelValues("tasks")); v != 7 {
		t.Fatalf("tasks gauge %v", v)
	}
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	b, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	_ = a.RecordMutation(coremetrics.MutationEvent{Operation: "delete_trip", Outcome: coremetrics.OutcomeOK})
	if v := testutil.ToFloat64(b.mutations.WithLabelValues("delete_trip", "ok", "")); v != 1 {
		t.Fatalf("collectors not shared: %v", v)
	}
}
