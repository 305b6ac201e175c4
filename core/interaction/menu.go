package interaction

import (
	"encoding/json"
	"sync"
)

// MenuKind discriminates the context menu payloads.
type MenuKind string

const (
	KindNone  MenuKind = "none"
	KindTrack MenuKind = "track"
	KindTrip  MenuKind = "trip"
	KindTask  MenuKind = "task"
)

// Payload is implemented by TrackTarget, TripTarget and TaskTarget.
type Payload interface {
	Kind() MenuKind
}

// TrackTarget is a click on an empty area of a vehicle lane.
type TrackTarget struct {
	VehicleID string `json:"vehicleId"`
	// At is the wall-clock position of the click, as "YYYY-MM-DD HH:mm:ss".
	At string `json:"at,omitempty"`
}

// TripTarget is a click on a trip bar.
type TripTarget struct {
	TripID string `json:"tripId"`
}

// TaskTarget is a click on a task inside a trip.
type TaskTarget struct {
	TaskID string `json:"taskId"`
	TripID string `json:"tripId"`
}

func (TrackTarget) Kind() MenuKind { return KindTrack }
func (TripTarget) Kind() MenuKind  { return KindTrip }
func (TaskTarget) Kind() MenuKind  { return KindTask }

// Menu is a snapshot of the context menu.
type Menu struct {
	Visible bool     `json:"visible"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	Kind    MenuKind `json:"type"`
	Payload Payload  `json:"payload,omitempty"`
}

// ContextMenu holds at most one live menu.
type ContextMenu struct {
	mu   sync.RWMutex
	menu Menu
}

func NewContextMenu() *ContextMenu {
	return &ContextMenu{menu: Menu{Kind: KindNone}}
}

// Show opens a menu at (x, y) for p, replacing any current menu.
// A nil payload opens nothing and hides the current menu.
func (c *ContextMenu) Show(x, y float64, p Payload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p == nil {
		c.menu.Visible = false
		return
	}
	c.menu = Menu{Visible: true, X: x, Y: y, Kind: p.Kind(), Payload: p}
}

// Hide makes the menu invisible but keeps its last position and payload.
func (c *ContextMenu) Hide() {
	c.mu.Lock()
	c.menu.Visible = false
	c.mu.Unlock()
}

// Current returns the menu state.
func (c *ContextMenu) Current() Menu {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.menu
}

// Target returns the last payload and whether the menu is visible.
func (c *ContextMenu) Target() (Payload, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.menu.Payload, c.menu.Visible
}

// DecodePayload builds the payload for kind from raw JSON.
func DecodePayload(kind MenuKind, raw json.RawMessage) (Payload, error) {
	var p Payload
	switch kind {
	case KindTrack:
		var t TrackTarget
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, err
		}
		p = t
	case KindTrip:
		var t TripTarget
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, err
		}
		p = t
	case KindTask:
		var t TaskTarget
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, err
		}
		p = t
	case KindNone, "":
		return nil, nil
	default:
		return nil, &UnknownKindError{Kind: kind}
	}
	return p, nil
}

// UnknownKindError reports a menu kind outside the closed set.
type UnknownKindError struct {
	Kind MenuKind
}

func (e *UnknownKindError) Error() string { return "unknown menu kind " + string(e.Kind) }
