// Package metrics defines the recorders fed by the mutation coordinator.
// Sinks like PromSink and InfluxSink live in infra/metrics and register
// themselves by type; Config.Sink combines the configured ones into a
// MultiSink.
package metrics
