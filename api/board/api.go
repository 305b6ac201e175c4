// Package board serves the board state to a rendering shell over HTTP.
package board

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bsb-logistics/ganttboard/core/events"
	"github.com/bsb-logistics/ganttboard/core/interaction"
	"github.com/bsb-logistics/ganttboard/core/logger"
	"github.com/bsb-logistics/ganttboard/core/model"
	"github.com/bsb-logistics/ganttboard/core/mutation"
	"github.com/bsb-logistics/ganttboard/core/mutation/journal"
	"github.com/bsb-logistics/ganttboard/core/reference"
	"github.com/bsb-logistics/ganttboard/core/settings"
	"github.com/bsb-logistics/ganttboard/core/timeline"
	"github.com/bsb-logistics/ganttboard/internal/eventbus"
	"github.com/bsb-logistics/ganttboard/internal/httpx"
)

// Deps are the board components the API drives.
type Deps struct {
	Coordinator *mutation.Coordinator
	Selection   *interaction.Selection
	Menu        *interaction.ContextMenu
	Viewport    *timeline.Viewport
	Settings    *settings.Service
	Drivers     *reference.Directory
	Bus         *eventbus.TypedBus[events.BoardEvent]
	Journal     journal.Store
	// Token guards the journal endpoint when non-empty.
	Token string
	Log   logger.Logger
	Now   func() time.Time
	// Zone reads Now as board wall clock for the current-time marker.
	Zone model.Zone
}

// API is the board HTTP surface.
type API struct {
	d Deps
}

// New checks the mandatory dependencies and fills optional ones.
func New(d Deps) (*API, error) {
	if d.Coordinator == nil || d.Selection == nil || d.Menu == nil || d.Viewport == nil || d.Settings == nil {
		return nil, errors.New("board api: coordinator, selection, menu, viewport and settings are required")
	}
	if d.Drivers == nil {
		d.Drivers = reference.NewDirectory(nil)
	}
	if d.Journal == nil {
		d.Journal = journal.NopStore{}
	}
	if d.Log == nil {
		d.Log = logger.NopLogger{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &API{d: d}, nil
}

// Routes returns the routed handler.
func (a *API) Routes() http.Handler {
	r := httpx.NewRouter(a.d.Log)
	r.Route("/api/board", func(r chi.Router) {
		r.Get("/", a.handleSnapshot)
		r.Post("/fetch", a.handleFetch)
		r.Post("/refresh", a.handleRefresh)

		r.Post("/trips", a.handleAddTrip)
		r.Delete("/trips/{id}", a.handleDeleteTrip)
		r.Post("/tasks", a.handleAddTask)
		r.Delete("/tasks/{id}", a.handleDeleteTask)
		r.Post("/drag/vehicle", a.handleDragVehicle)
		r.Post("/drag/time", a.handleDragTime)

		r.Get("/selection", a.handleGetSelection)
		r.Post("/selection", a.handleSelection)
		r.Get("/menu", a.handleGetMenu)
		r.Post("/menu", a.handleShowMenu)
		r.Delete("/menu", a.handleHideMenu)

		r.Post("/zoom", a.handleZoom)
		r.Post("/pan", a.handlePan)
		r.Post("/range", a.handleRange)
		r.Post("/orientation", a.handleOrientation)

		r.Get("/settings", a.handleGetSettings)
		r.Put("/settings", a.handlePutSettings)

		r.Get("/task-types", a.handleTaskTypes)
		r.Get("/drivers", a.handleDrivers)
		r.Post("/drivers/{id}/status", a.handleDriverStatus)
		r.Get("/containers", a.handleContainers)
		r.Get("/containers/{ctn}", a.handleContainer)
		r.Get("/deadlines/{kind}", a.handleDeadline)
		r.Post("/plan-task", a.handlePlanTask)

		r.Get("/utilisation", a.handleUtilisation)
		r.Get("/export", a.handleExport)
		r.Get("/journal", a.handleJournal)
		r.Get("/events", a.handleEvents)
	})
	return r
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	if err := httpx.WriteJSON(w, status, v); err != nil {
		a.d.Log.Errorf("write response: %v", err)
	}
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status, body := statusFor(err)
	a.writeJSON(w, status, body)
}

func (a *API) badRequest(w http.ResponseWriter, msg string) {
	a.writeJSON(w, http.StatusBadRequest, requestBody(msg))
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := httpx.DecodeJSON(r, v); err != nil {
		a.badRequest(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}
