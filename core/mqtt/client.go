// Package mqtt defines the change notification contract shared by the
// board and the development backend.
package mqtt

// DefaultTopic carries board change notifications.
const DefaultTopic = "gantt/changes"

// Change announces that the listed vehicles were modified elsewhere. An
// empty list means the whole window may have changed.
type Change struct {
	VehicleIDs []string `json:"vehicleIds"`
}

// Notifier publishes change notifications.
type Notifier interface {
	Notify(c Change) error
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(Change) error { return nil }
