package metrics

import (
	"fmt"

	"github.com/bsb-logistics/ganttboard/core/factory"
)

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
	// PrometheusAddr exposes /metrics on a dedicated listener when set.
	PrometheusAddr string `json:"prometheus_addr" yaml:"prometheus_addr"`
}

var sinks = factory.NewRegistry[MetricsSink]()

// RegisterSink makes a sink type available to Config.Sink.
func RegisterSink(name string, f factory.Factory[MetricsSink]) error {
	return sinks.Register(name, f)
}

// Sink builds the recorder the coordinator reports mutations and refreshes
// to. No sinks means a NopSink; nop entries are dropped next to real ones.
// Each sink type may appear once.
func (c Config) Sink() (MetricsSink, error) {
	seen := make(map[string]bool, len(c.Sinks))
	var out []MetricsSink
	for i, mc := range c.Sinks {
		if seen[mc.Type] {
			return nil, fmt.Errorf("metrics sink %d: %q configured twice", i, mc.Type)
		}
		seen[mc.Type] = true
		s, err := sinks.Create(mc)
		if err != nil {
			return nil, fmt.Errorf("metrics sink %d: %w", i, err)
		}
		if _, nop := s.(NopSink); nop {
			continue
		}
		out = append(out, s)
	}
	switch len(out) {
	case 0:
		return NopSink{}, nil
	case 1:
		return out[0], nil
	}
	return NewMultiSink(out...), nil
}
