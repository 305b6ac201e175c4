package monitoring

import (
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"

	"github.com/bsb-logistics/ganttboard/config"
	coremon "github.com/bsb-logistics/ganttboard/core/monitoring"
)

func TestNewSentryMonitorWithoutDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{})
	if err != nil {
		t.Fatalf("monitor: %v", err)
	}
	if _, ok := m.(coremon.NopMonitor); !ok {
		t.Fatalf("expected NopMonitor got %T", m)
	}
}

func TestSentryMonitorTags(t *testing.T) {
	var events []*sentry.Event
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn: "https://key@sentry.invalid/1",
		BeforeSend: func(e *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			events = append(events, e)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	m := &sentryMonitor{hub: sentry.NewHub(client, sentry.NewScope())}
	m.CaptureException(errors.New("boom"), map[string]string{"operation": "add_trip"})
	m.CaptureException(nil, nil)
	if len(events) != 1 {
		t.Fatalf("expected 1 event got %d", len(events))
	}
	if events[0].Tags["operation"] != "add_trip" || events[0].Tags["service"] != "ganttboard" {
		t.Fatalf("unexpected tags %v", events[0].Tags)
	}
}
