package board

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bsb-logistics/ganttboard/core/interaction"
	"github.com/bsb-logistics/ganttboard/core/model"
	"github.com/bsb-logistics/ganttboard/core/schedule"
	"github.com/bsb-logistics/ganttboard/core/settings"
	"github.com/bsb-logistics/ganttboard/core/timeline"
)

// Snapshot is everything a renderer needs to draw the board.
type Snapshot struct {
	Layout    timeline.Layout   `json:"layout"`
	Selection []string          `json:"selection"`
	Menu      interaction.Menu  `json:"menu"`
	Settings  settings.Settings `json:"settings"`
	Counts    schedule.Counts   `json:"counts"`
	// NowOffset is the position of the current-time marker, present when
	// the marker is enabled and now lies in the window.
	NowOffset *float64   `json:"nowOffset,omitempty"`
	LastSync  *time.Time `json:"lastSync,omitempty"`
	SyncError string     `json:"syncError,omitempty"`
}

func (a *API) snapshot() Snapshot {
	st := a.d.Settings.Current()
	win := a.d.Viewport.Window()
	tree := a.d.Coordinator.Tree()
	snap := Snapshot{
		Layout:    timeline.Project(tree.Vehicles(), win, a.d.Viewport.Orientation(), st.RowHeight, st.TaskMargin),
		Selection: a.d.Selection.IDs(),
		Menu:      a.d.Menu.Current(),
		Settings:  st,
		Counts:    tree.Counts(),
	}
	if now := a.d.Zone.At(a.d.Now()).Time; st.ShowCurrentTime && win.Contains(now) {
		off := timeline.TimeToOffset(now, win)
		snap.NowOffset = &off
	}
	last, err := a.d.Coordinator.LastSync()
	if !last.IsZero() {
		snap.LastSync = &last
	}
	if err != nil {
		snap.SyncError = err.Error()
	}
	return snap
}

func (a *API) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, http.StatusOK, a.snapshot())
}

func (a *API) handleFetch(w http.ResponseWriter, r *http.Request) {
	if err := a.d.Coordinator.FetchVehicles(r.Context()); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, a.snapshot())
}

type refreshRequest struct {
	VehicleIDs []string `json:"vehicleIds"`
}

// handleRefresh refreshes the listed vehicles, or every vehicle on the
// board when none are listed.
func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !a.decode(w, r, &req) {
		return
	}
	ids := req.VehicleIDs
	if len(ids) == 0 {
		ids = a.d.Coordinator.Tree().VehicleIDs()
	}
	if err := a.d.Coordinator.RefreshVehicles(r.Context(), ids); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, a.snapshot())
}

func (a *API) handleAddTrip(w http.ResponseWriter, r *http.Request) {
	var d model.TripDraft
	if !a.decode(w, r, &d) {
		return
	}
	trip, err := a.d.Coordinator.AddTrip(r.Context(), d)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, trip)
}

func (a *API) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var d model.TaskDraft
	if !a.decode(w, r, &d) {
		return
	}
	task, err := a.d.Coordinator.AddTask(r.Context(), d)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, task)
}

func (a *API) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	if err := a.d.Coordinator.DeleteTrip(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := a.d.Coordinator.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// vehicleDragRequest drops a trip on another lane. The new start is either
// an instant or a pixel offset on the current window; without both the
// trip keeps its start.
type vehicleDragRequest struct {
	TripID    string           `json:"tripId"`
	VehicleID string           `json:"vehicleId"`
	StartTime *model.Timestamp `json:"startTime,omitempty"`
	Offset    *float64         `json:"offset,omitempty"`
}

func (a *API) handleDragVehicle(w http.ResponseWriter, r *http.Request) {
	var req vehicleDragRequest
	if !a.decode(w, r, &req) {
		return
	}
	trip, ok := a.d.Coordinator.Tree().Trip(req.TripID)
	if !ok {
		a.writeError(w, fmt.Errorf("%w: %s", schedule.ErrTripNotFound, req.TripID))
		return
	}
	start := trip.StartTime
	switch {
	case req.StartTime != nil:
		start = *req.StartTime
	case req.Offset != nil:
		start = model.At(timeline.OffsetToTime(*req.Offset, a.d.Viewport.Window()))
	}
	if err := a.d.Coordinator.ReassignVehicle(r.Context(), req.TripID, req.VehicleID, start); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, a.snapshot())
}

// timeDragRequest moves or resizes a trip, either with instants or with a
// pixel offset and length on the current window.
type timeDragRequest struct {
	TripID string           `json:"tripId"`
	Start  *model.Timestamp `json:"start,omitempty"`
	End    *model.Timestamp `json:"end,omitempty"`
	Offset *float64         `json:"offset,omitempty"`
	Length *float64         `json:"length,omitempty"`
}

func (a *API) handleDragTime(w http.ResponseWriter, r *http.Request) {
	var req timeDragRequest
	if !a.decode(w, r, &req) {
		return
	}
	var start, end model.Timestamp
	switch {
	case req.Start != nil && req.End != nil:
		start, end = *req.Start, *req.End
	case req.Offset != nil && req.Length != nil:
		win := a.d.Viewport.Window()
		start = model.At(timeline.OffsetToTime(*req.Offset, win))
		end = model.At(timeline.OffsetToTime(*req.Offset+*req.Length, win))
	default:
		a.badRequest(w, "either start and end or offset and length are required")
		return
	}
	if err := a.d.Coordinator.ShiftTripTime(r.Context(), req.TripID, start, end); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, a.snapshot())
}

type selectionRequest struct {
	Action string   `json:"action"`
	IDs    []string `json:"ids"`
}

func (a *API) handleGetSelection(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, http.StatusOK, a.d.Selection.IDs())
}

// handleSelection changes the selection. Adding, toggling and replacing go
// through the tree so that only tasks it holds can be selected.
func (a *API) handleSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if !a.decode(w, r, &req) {
		return
	}
	tree := a.d.Coordinator.Tree()
	var err error
	switch req.Action {
	case "add":
		err = tree.Select(req.IDs...)
	case "remove":
		a.d.Selection.Remove(req.IDs...)
	case "toggle":
		err = tree.ToggleSelected(req.IDs...)
	case "set":
		err = tree.SetSelection(req.IDs...)
	case "clear":
		a.d.Selection.Clear()
	default:
		a.badRequest(w, fmt.Sprintf("unknown selection action %q", req.Action))
		return
	}
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, a.d.Selection.IDs())
}

type menuRequest struct {
	X       float64              `json:"x"`
	Y       float64              `json:"y"`
	Kind    interaction.MenuKind `json:"type"`
	Payload json.RawMessage      `json:"payload"`
}

func (a *API) handleGetMenu(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, http.StatusOK, a.d.Menu.Current())
}

func (a *API) handleShowMenu(w http.ResponseWriter, r *http.Request) {
	var req menuRequest
	if !a.decode(w, r, &req) {
		return
	}
	p, err := interaction.DecodePayload(req.Kind, req.Payload)
	if err != nil {
		a.badRequest(w, err.Error())
		return
	}
	a.d.Menu.Show(req.X, req.Y, p)
	a.writeJSON(w, http.StatusOK, a.d.Menu.Current())
}

func (a *API) handleHideMenu(w http.ResponseWriter, _ *http.Request) {
	a.d.Menu.Hide()
	a.writeJSON(w, http.StatusOK, a.d.Menu.Current())
}

// zoomRequest sets the zoom factor outright, or scales it around an anchor.
type zoomRequest struct {
	PixelsPerHour *float64 `json:"pixelsPerHour,omitempty"`
	Factor        *float64 `json:"factor,omitempty"`
	Anchor        float64  `json:"anchor"`
}

func (a *API) handleZoom(w http.ResponseWriter, r *http.Request) {
	var req zoomRequest
	if !a.decode(w, r, &req) {
		return
	}
	var err error
	switch {
	case req.PixelsPerHour != nil:
		err = a.d.Viewport.Zoom(*req.PixelsPerHour)
	case req.Factor != nil:
		err = a.d.Viewport.ZoomAt(*req.Factor, req.Anchor)
	default:
		a.badRequest(w, "pixelsPerHour or factor is required")
		return
	}
	if err != nil {
		a.badRequest(w, err.Error())
		return
	}
	a.writeJSON(w, http.StatusOK, a.d.Viewport.Window())
}

type panRequest struct {
	Pixels float64 `json:"px"`
}

func (a *API) handlePan(w http.ResponseWriter, r *http.Request) {
	var req panRequest
	if !a.decode(w, r, &req) {
		return
	}
	a.d.Viewport.Pan(req.Pixels)
	a.writeJSON(w, http.StatusOK, a.d.Viewport.Window())
}

// handleRange moves the window and refetches it.
func (a *API) handleRange(w http.ResponseWriter, r *http.Request) {
	var req model.TimeRange
	if !a.decode(w, r, &req) {
		return
	}
	if req.Start.IsZero() || req.End.IsZero() {
		a.badRequest(w, "startTime and endTime are required")
		return
	}
	if err := a.d.Viewport.SetRange(req.Start.Time, req.End.Time); err != nil {
		a.badRequest(w, err.Error())
		return
	}
	if err := a.d.Coordinator.FetchVehicles(r.Context()); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, a.snapshot())
}

type orientationRequest struct {
	Mode string `json:"mode"`
}

// handleOrientation sets the view mode, or toggles it when none is given,
// and persists it.
func (a *API) handleOrientation(w http.ResponseWriter, r *http.Request) {
	var req orientationRequest
	if !a.decode(w, r, &req) {
		return
	}
	var o timeline.Orientation
	switch req.Mode {
	case "":
		o = a.d.Viewport.ToggleOrientation()
	case settings.ViewHorizontal, settings.ViewVertical:
		o = timeline.Orientation(req.Mode)
		a.d.Viewport.SetOrientation(o)
	default:
		a.badRequest(w, fmt.Sprintf("unknown view mode %q", req.Mode))
		return
	}
	if _, err := a.d.Settings.Update(r.Context(), func(s *settings.Settings) { s.ViewMode = string(o) }); err != nil {
		a.d.Log.Warnf("persist view mode: %v", err)
	}
	a.writeJSON(w, http.StatusOK, orientationRequest{Mode: string(o)})
}

func (a *API) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, http.StatusOK, a.d.Settings.Current())
}

func (a *API) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	st := a.d.Settings.Current()
	if !a.decode(w, r, &st) {
		return
	}
	if err := st.Validate(); err != nil {
		a.badRequest(w, err.Error())
		return
	}
	if err := a.d.Settings.Save(r.Context(), st); err != nil {
		a.d.Log.Errorf("save settings: %v", err)
		a.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrorDetail{Code: "storage", Message: err.Error()}})
		return
	}
	a.d.Viewport.SetOrientation(timeline.Orientation(st.ViewMode))
	a.writeJSON(w, http.StatusOK, st)
}
