// Package collab keeps the board in step with edits made by other operators.
package collab

import (
	"context"
	"time"

	"github.com/bsb-logistics/ganttboard/core/settings"
	"github.com/bsb-logistics/ganttboard/infra/logger"
)

// Board is the part of the mutation coordinator the poller drives.
type Board interface {
	FetchVehicles(ctx context.Context) error
	RefreshVehicles(ctx context.Context, ids []string) error
}

// Settings supplies the collaboration preferences. They are re-read before
// every wait, so toggling them takes effect without a restart.
type Settings interface {
	Current() settings.Settings
}

// Poller periodically refreshes the board while collaboration is enabled.
type Poller struct {
	board    Board
	visible  func() []string
	settings Settings
	log      logger.Logger
	unit     time.Duration
}

// NewPoller creates a poller. visible returns the ids of the vehicles on the
// board.
func NewPoller(b Board, visible func() []string, s Settings) *Poller {
	return &Poller{
		board:    b,
		visible:  visible,
		settings: s,
		log:      logger.New("collab-poller"),
		unit:     time.Second,
	}
}

// Start runs the polling loop until ctx is canceled.
func (p *Poller) Start(ctx context.Context) error {
	timer := time.NewTimer(p.interval())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			if err := p.Poll(ctx); err != nil {
				p.log.Errorf("poll error: %v", err)
			}
			timer.Reset(p.interval())
		}
	}
}

// Poll performs one round. It does nothing when collaboration is disabled.
func (p *Poller) Poll(ctx context.Context) error {
	c := p.settings.Current().Collab
	if !c.Enabled {
		return nil
	}
	if c.VisibleOnly {
		ids := p.visible()
		if len(ids) == 0 {
			return nil
		}
		p.log.Debugf("refreshing %d visible vehicles", len(ids))
		return p.board.RefreshVehicles(ctx, ids)
	}
	p.log.Debugf("refetching board window")
	return p.board.FetchVehicles(ctx)
}

func (p *Poller) interval() time.Duration {
	sec := p.settings.Current().Collab.IntervalSec
	if sec <= 0 {
		sec = settings.Defaults().Collab.IntervalSec
	}
	return time.Duration(sec) * p.unit
}
