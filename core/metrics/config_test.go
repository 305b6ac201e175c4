package metrics_test

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/bsb-logistics/ganttboard/core/factory"
	metrics "github.com/bsb-logistics/ganttboard/core/metrics"
	inframetrics "github.com/bsb-logistics/ganttboard/infra/metrics"
)

func TestSinkDefaultsToNop(t *testing.T) {
	for _, cfg := range []metrics.Config{{}, {Sinks: []factory.ModuleConfig{{Type: "nop"}}}} {
		s, err := cfg.Sink()
		if err != nil {
			t.Fatalf("create default: %v", err)
		}
		if _, ok := s.(metrics.NopSink); !ok {
			t.Fatalf("expected NopSink, got %T", s)
		}
	}
}

func TestSinkFromYAML(t *testing.T) {
	data := `prometheus_addr: ":9102"
sinks:
  - type: nop
  - type: prometheus
`
	var cfg metrics.Config
	if err := yaml.Unmarshal([]byte(data), &cfg); err != nil {
		t.Fatalf("yaml unmarshal: %v", err)
	}
	if cfg.PrometheusAddr != ":9102" {
		t.Fatalf("prometheus addr not decoded: %q", cfg.PrometheusAddr)
	}
	s, err := cfg.Sink()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// The nop entry is dropped next to a real sink.
	if _, ok := s.(*inframetrics.PromSink); !ok {
		t.Fatalf("expected PromSink, got %T", s)
	}
	// A second board in the process reuses the registered collectors.
	if _, err := (metrics.Config{Sinks: []factory.ModuleConfig{{Type: "prometheus"}}}).Sink(); err != nil {
		t.Fatalf("second prometheus sink: %v", err)
	}
}

// An unreachable Influx endpoint degrades to a NopSink instead of failing
// startup.
func TestInfluxSinkFallsBackWhenUnreachable(t *testing.T) {
	data := `{"sinks":[{"type":"influx","conf":{"url":"http://127.0.0.1:1","token":"t","org":"o","bucket":"b"}}]}`
	var cfg metrics.Config
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	s, err := cfg.Sink()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := s.(metrics.NopSink); !ok {
		t.Fatalf("expected NopSink fallback, got %T", s)
	}

	cfg.Sinks = append(cfg.Sinks, factory.ModuleConfig{Type: "prometheus"})
	s, err = cfg.Sink()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := s.(*inframetrics.PromSink); !ok {
		t.Fatalf("expected the fallback to be dropped, got %T", s)
	}
}

func TestSinkRejectsBadConfig(t *testing.T) {
	bad := map[string][]factory.ModuleConfig{
		"unknown":         {{Type: "statsd"}},
		"unknown second":  {{Type: "nop"}, {Type: "statsd"}},
		"duplicated type": {{Type: "prometheus"}, {Type: "prometheus"}},
	}
	for name, sinks := range bad {
		if _, err := (metrics.Config{Sinks: sinks}).Sink(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
