package collab

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bsb-logistics/ganttboard/core/settings"
	"github.com/bsb-logistics/ganttboard/infra/logger"
)

type fakeBoard struct {
	mu        sync.Mutex
	fetches   int
	refreshes [][]string
}

func (f *fakeBoard) FetchVehicles(context.Context) error {
	f.mu.Lock()
	f.fetches++
	f.mu.Unlock()
	return nil
}

func (f *fakeBoard) RefreshVehicles(_ context.Context, ids []string) error {
	f.mu.Lock()
	f.refreshes = append(f.refreshes, ids)
	f.mu.Unlock()
	return nil
}

func (f *fakeBoard) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches, len(f.refreshes)
}

type staticSettings settings.Settings

func (s staticSettings) Current() settings.Settings { return settings.Settings(s) }

func collab(enabled, visibleOnly bool) staticSettings {
	st := settings.Defaults()
	st.Collab.Enabled = enabled
	st.Collab.VisibleOnly = visibleOnly
	st.Collab.IntervalSec = 5
	return staticSettings(st)
}

func newTestPoller(b Board, s Settings) *Poller {
	p := NewPoller(b, func() []string { return []string{"V1", "V2"} }, s)
	p.log = logger.NopLogger{}
	p.unit = time.Millisecond
	return p
}

func TestPollModes(t *testing.T) {
	cases := []struct {
		name      string
		s         staticSettings
		fetches   int
		refreshes int
	}{
		{"disabled", collab(false, true), 0, 0},
		{"visible only", collab(true, true), 0, 1},
		{"whole window", collab(true, false), 1, 0},
	}
	for _, tc := range cases {
		b := &fakeBoard{}
		if err := newTestPoller(b, tc.s).Poll(context.Background()); err != nil {
			t.Fatalf("%s: poll: %v", tc.name, err)
		}
		f, r := b.counts()
		if f != tc.fetches || r != tc.refreshes {
			t.Fatalf("%s: got %d fetches %d refreshes", tc.name, f, r)
		}
	}
}

func TestPollSkipsEmptyBoard(t *testing.T) {
	b := &fakeBoard{}
	p := newTestPoller(b, collab(true, true))
	p.visible = func() []string { return nil }
	if err := p.Poll(context.Background()); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if _, r := b.counts(); r != 0 {
		t.Fatalf("expected no refresh for an empty board")
	}
}

func TestStartPollsUntilCanceled(t *testing.T) {
	b := &fakeBoard{}
	p := newTestPoller(b, collab(true, false))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = p.Start(ctx)
		close(done)
	}()
	deadline := time.After(2 * time.Second)
	for {
		if f, _ := b.counts(); f >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("poller did not tick")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}
