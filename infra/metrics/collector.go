package metrics

import (
	"context"

	"github.com/bsb-logistics/ganttboard/core/events"
	coremetrics "github.com/bsb-logistics/ganttboard/core/metrics"
	"github.com/bsb-logistics/ganttboard/internal/eventbus"
)

// StartEventCollector subscribes to the board bus and records the board size
// carried by every event. It stops when the context is canceled or the bus
// is closed.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.BoardEvent], sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	rec, ok := sink.(coremetrics.BoardSizeRecorder)
	if !ok {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				_ = rec.RecordBoardSize(coremetrics.BoardSize{
					Vehicles: ev.Vehicles,
					Trips:    ev.Trips,
					Tasks:    ev.Tasks,
					Locked:   ev.Locked,
				})
			}
		}
	}()
}
