package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/bsb-logistics/ganttboard/core/events"
	coremetrics "github.com/bsb-logistics/ganttboard/core/metrics"
	"github.com/bsb-logistics/ganttboard/internal/eventbus"
)

type sizeSink struct {
	coremetrics.NopSink
	sizes chan coremetrics.BoardSize
}

func (s *sizeSink) RecordBoardSize(b coremetrics.BoardSize) error {
	s.sizes <- b
	return nil
}

func TestStartEventCollector(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus := eventbus.NewTyped[events.BoardEvent]()
	sink := &sizeSink{sizes: make(chan coremetrics.BoardSize, 1)}
	StartEventCollector(ctx, bus, sink)

	deadline := time.After(time.Second)
	for bus.Subscribers() == 0 {
		select {
		case <-deadline:
			t.Fatal("collector did not subscribe")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	bus.Publish(events.BoardEvent{Kind: events.KindTaskAdded, Vehicles: 2, Trips: 3, Tasks: 4, Locked: 1})
	select {
	case got := <-sink.sizes:
		if got.Tasks != 4 || got.Locked != 1 {
			t.Fatalf("unexpected size %#v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("board size not recorded")
	}
}
