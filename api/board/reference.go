package board

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bsb-logistics/ganttboard/core/reference"
	"github.com/bsb-logistics/ganttboard/pkg/export"
)

func (a *API) handleTaskTypes(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, http.StatusOK, reference.TaskTypes())
}

// handleDrivers lists the directory; ?available=true keeps active drivers.
func (a *API) handleDrivers(w http.ResponseWriter, r *http.Request) {
	if ok, _ := strconv.ParseBool(r.URL.Query().Get("available")); ok {
		a.writeJSON(w, http.StatusOK, a.d.Drivers.Available())
		return
	}
	a.writeJSON(w, http.StatusOK, a.d.Drivers.All())
}

type driverStatusRequest struct {
	Status reference.DriverStatus `json:"status"`
}

func (a *API) handleDriverStatus(w http.ResponseWriter, r *http.Request) {
	var req driverStatusRequest
	if !a.decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	if _, ok := a.d.Drivers.Get(id); !ok {
		a.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: ErrorDetail{Code: "not_found", Message: "driver not found"}})
		return
	}
	if err := a.d.Drivers.SetStatus(id, req.Status); err != nil {
		a.badRequest(w, err.Error())
		return
	}
	dr, _ := a.d.Drivers.Get(id)
	a.writeJSON(w, http.StatusOK, dr)
}

// handleUtilisation summarises the trips on the board against the window.
func (a *API) handleUtilisation(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, http.StatusOK, export.Summarize(a.d.Coordinator.Tree().Vehicles(), a.d.Viewport.Range()))
}

// handleExport writes the board as ?format=json (default), csv or html.
func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	vehicles := a.d.Coordinator.Tree().Vehicles()
	var (
		buf         bytes.Buffer
		err         error
		contentType string
	)
	switch r.URL.Query().Get("format") {
	case "", "json":
		contentType = "application/json"
		err = export.WriteJSON(&buf, vehicles)
	case "csv":
		contentType = "text/csv"
		err = export.WriteCSV(&buf, vehicles)
	case "html":
		contentType = "text/html; charset=utf-8"
		err = export.WriteChartHTML(&buf, vehicles, a.d.Viewport.Range())
	default:
		a.badRequest(w, "format must be json, csv or html")
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(buf.Bytes()); err != nil {
		a.d.Log.Errorf("write export: %v", err)
	}
}
