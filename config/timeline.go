package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/bsb-logistics/ganttboard/core/timeline"
)

// TimelineConfig sets the zone and zoom of a freshly opened board.
type TimelineConfig struct {
	// Location is an IANA zone name used for wire timestamps.
	Location      string  `json:"location"`
	PixelsPerHour float64 `json:"pixels_per_hour"`
}

// SetDefaults applies sane defaults.
func (c *TimelineConfig) SetDefaults() {
	if c.Location == "" {
		c.Location = "Australia/Sydney"
	}
	if c.PixelsPerHour <= 0 {
		c.PixelsPerHour = timeline.DefaultPixelsPerHour
	}
}

// Validate checks mandatory fields.
func (c TimelineConfig) Validate() error {
	if _, err := time.LoadLocation(c.Location); err != nil {
		return fmt.Errorf("timeline location: %w", err)
	}
	return nil
}

// Zone returns the configured location, falling back to UTC when it
// cannot be loaded.
func (c TimelineConfig) Zone() *time.Location {
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Window returns the default window around now at the configured zoom.
func (c TimelineConfig) Window(now time.Time) timeline.Window {
	w := timeline.DefaultWindow(now, c.Zone())
	if c.PixelsPerHour > 0 {
		w.PixelsPerHour = c.PixelsPerHour
	}
	return w
}
