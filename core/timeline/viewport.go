package timeline

import (
	"sync"
	"time"

	"github.com/bsb-logistics/ganttboard/core/model"
)

// Orientation selects which screen axis carries time.
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Viewport is the single Timeline Window of a board. Only zoom and pan
// calls mutate it; everything else reads snapshots.
type Viewport struct {
	mu          sync.RWMutex
	win         Window
	orientation Orientation
}

// NewViewport validates w and returns a horizontal viewport.
func NewViewport(w Window) (*Viewport, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Viewport{win: w, orientation: Horizontal}, nil
}

// Window returns a copy of the current window.
func (v *Viewport) Window() Window {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.win
}

// Range returns the window bounds as a wire time range.
func (v *Viewport) Range() model.TimeRange {
	w := v.Window()
	return model.TimeRange{Start: model.At(w.Start), End: model.At(w.End)}
}

// SetRange moves the window to [start, end] keeping the zoom factor.
func (v *Viewport) SetRange(start, end time.Time) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	next := v.win
	next.Start, next.End = start, end
	if err := next.Validate(); err != nil {
		return err
	}
	v.win = next
	return nil
}

// Zoom sets the zoom factor keeping the origin fixed.
func (v *Viewport) Zoom(pixelsPerHour float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	next := v.win
	next.PixelsPerHour = pixelsPerHour
	if err := next.Validate(); err != nil {
		return err
	}
	v.win = next
	return nil
}

// ZoomAt scales the zoom factor by factor while keeping the instant under
// anchorPx at the same pixel offset. The window length is preserved.
func (v *Viewport) ZoomAt(factor, anchorPx float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	next := v.win
	next.PixelsPerHour = v.win.PixelsPerHour * factor
	if err := next.Validate(); err != nil {
		return err
	}
	anchor := OffsetToTime(anchorPx, v.win)
	span := v.win.End.Sub(v.win.Start)
	next.Start = anchor.Add(-LengthToDuration(anchorPx, next))
	next.End = next.Start.Add(span)
	v.win = next
	return nil
}

// Pan shifts the window by px pixels; positive values move later in time.
func (v *Viewport) Pan(px float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	d := LengthToDuration(px, v.win)
	v.win.Start = v.win.Start.Add(d)
	v.win.End = v.win.End.Add(d)
}

// Orientation returns the current view mode.
func (v *Viewport) Orientation() Orientation {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.orientation
}

// SetOrientation forces the view mode. Unknown values fall back to horizontal.
func (v *Viewport) SetOrientation(o Orientation) {
	if o != Vertical {
		o = Horizontal
	}
	v.mu.Lock()
	v.orientation = o
	v.mu.Unlock()
}

// ToggleOrientation flips between horizontal and vertical and returns the
// new mode.
func (v *Viewport) ToggleOrientation() Orientation {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.orientation == Horizontal {
		v.orientation = Vertical
	} else {
		v.orientation = Horizontal
	}
	return v.orientation
}
