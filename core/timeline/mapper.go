// Package timeline projects calendar time onto the board's pixel axis.
//
// The mapping functions are pure: they read a Window and return a value,
// never mutating trips, tasks or the window itself. Viewport holds the
// process-wide window that zoom and pan interactions change.
package timeline

import (
	"errors"
	"math"
	"time"
)

// DefaultPixelsPerHour is the zoom factor of a freshly opened board.
const DefaultPixelsPerHour = 100.0

// ErrInvalidZoom is returned when a zoom factor is not strictly positive.
var ErrInvalidZoom = errors.New("pixels per hour must be positive")

// Window is the visible span of the board and its zoom factor. Bounds are
// board wall-clock times, held like model.Timestamp.
type Window struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	PixelsPerHour float64   `json:"pixelsPerHour"`
}

// Validate checks that the window can be used for projection.
func (w Window) Validate() error {
	if !(w.PixelsPerHour > 0) || math.IsInf(w.PixelsPerHour, 0) {
		return ErrInvalidZoom
	}
	if w.End.Before(w.Start) {
		return errors.New("window end before start")
	}
	return nil
}

// MinutesPerPixel is derived from the zoom factor on every call.
func MinutesPerPixel(w Window) float64 {
	return 60 / w.PixelsPerHour
}

// TimeToOffset returns the pixel offset of t from the window origin.
// Times before the origin yield negative offsets; no clamping is applied.
func TimeToOffset(t time.Time, w Window) float64 {
	diffMinutes := float64(t.Sub(w.Start)) / float64(time.Minute)
	return diffMinutes / MinutesPerPixel(w)
}

// OffsetToTime returns the instant projected at px pixels from the origin.
// The result is rounded to the nearest nanosecond.
func OffsetToTime(px float64, w Window) time.Time {
	diffMinutes := px * MinutesPerPixel(w)
	d := time.Duration(math.Round(diffMinutes * float64(time.Minute)))
	return w.Start.Add(d)
}

// DurationToLength converts a span of time into pixels at the window zoom.
func DurationToLength(d time.Duration, w Window) float64 {
	return d.Minutes() / MinutesPerPixel(w)
}

// LengthToDuration converts a pixel length into a span of time.
func LengthToDuration(px float64, w Window) time.Duration {
	return time.Duration(math.Round(px * MinutesPerPixel(w) * float64(time.Minute)))
}

// Width returns the pixel length of the whole window.
func Width(w Window) float64 {
	return TimeToOffset(w.End, w)
}

// Contains reports whether t falls within the window bounds.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// DefaultWindow spans from 21:00 the day before now to 03:00 three days
// after now, reading the calendar in loc.
func DefaultWindow(now time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	y := now.AddDate(0, 0, -1)
	e := now.AddDate(0, 0, 3)
	return Window{
		Start:         time.Date(y.Year(), y.Month(), y.Day(), 21, 0, 0, 0, time.UTC),
		End:           time.Date(e.Year(), e.Month(), e.Day(), 3, 0, 0, 0, time.UTC),
		PixelsPerHour: DefaultPixelsPerHour,
	}
}
