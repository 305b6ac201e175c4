// Package infra holds the adapters behind the board's core interfaces:
// the persistence client, settings stores, MQTT, metrics and Sentry.
package infra
