// Package settings holds the operator's display preferences and their
// persistence.
package settings

import (
	"fmt"
	"regexp"
)

// Key is the store key the settings document lives under.
const Key = "gantt_settings"

// View modes.
const (
	ViewHorizontal = "horizontal"
	ViewVertical   = "vertical"
)

// Collab configures background polling for changes made by other operators.
type Collab struct {
	Enabled     bool `json:"enabled"`
	IntervalSec int  `json:"intervalSec"`
	// VisibleOnly refreshes the vehicles on the board instead of refetching
	// the whole window.
	VisibleOnly bool `json:"visibleOnly"`
}

// Settings are read by the layout and never written by it.
type Settings struct {
	RowHeight           float64 `json:"rowHeight"`
	TaskMargin          float64 `json:"taskMargin"`
	TripBackgroundColor string  `json:"tripBackgroundColor"`
	ShowCurrentTime     bool    `json:"showCurrentTime"`
	Collab              Collab  `json:"collab"`
	ViewMode            string  `json:"viewMode"`
}

// Defaults returns the settings used when nothing has been persisted.
func Defaults() Settings {
	return Settings{
		RowHeight:           60,
		TaskMargin:          4,
		TripBackgroundColor: "#e3f2fd",
		ShowCurrentTime:     true,
		Collab: Collab{
			Enabled:     false,
			IntervalSec: 30,
			VisibleOnly: true,
		},
		ViewMode: ViewHorizontal,
	}
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// Validate checks that the settings can drive a layout.
func (s Settings) Validate() error {
	if s.RowHeight <= 0 {
		return fmt.Errorf("rowHeight must be positive")
	}
	if s.TaskMargin < 0 || s.TaskMargin*2 >= s.RowHeight {
		return fmt.Errorf("taskMargin must be between 0 and half the row height")
	}
	if !hexColor.MatchString(s.TripBackgroundColor) {
		return fmt.Errorf("invalid tripBackgroundColor %q", s.TripBackgroundColor)
	}
	if s.Collab.IntervalSec <= 0 {
		return fmt.Errorf("collab.intervalSec must be positive")
	}
	switch s.ViewMode {
	case ViewHorizontal, ViewVertical:
	default:
		return fmt.Errorf("unknown viewMode %q", s.ViewMode)
	}
	return nil
}
