package board

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bsb-logistics/ganttboard/core/model"
)

func (a *API) handleContainers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cs, err := a.d.Coordinator.Orders().Containers(r.Context(), model.ContainerFilter{
		Search:          q.Get("search"),
		LogisticsStatus: q.Get("logisticsStatus"),
		DeliverType:     q.Get("deliverType"),
		Terminal:        q.Get("terminal"),
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, cs)
}

func (a *API) handleContainer(w http.ResponseWriter, r *http.Request) {
	c, err := a.d.Coordinator.Orders().Container(r.Context(), chi.URLParam(r, "ctn"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, c)
}

// handleDeadline lists the containers due on ?date=YYYY-MM-DD, today on the
// board clock when absent.
func (a *API) handleDeadline(w http.ResponseWriter, r *http.Request) {
	d, err := model.ParseDeadline(chi.URLParam(r, "kind"))
	if err != nil {
		a.badRequest(w, err.Error())
		return
	}
	day := r.URL.Query().Get("date")
	if day == "" {
		day = a.d.Zone.At(a.d.Now()).Format(model.DayLayout)
	} else if day, err = model.ParseDay(day); err != nil {
		a.badRequest(w, err.Error())
		return
	}
	cs, err := a.d.Coordinator.Orders().DueContainers(r.Context(), d, day)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, cs)
}

type planTaskRequest struct {
	model.PlanRequest
	// Commit creates the proposed task in its trip.
	Commit bool `json:"commit"`
}

// handlePlanTask turns a container into a task proposal, and creates it when
// asked to.
func (a *API) handlePlanTask(w http.ResponseWriter, r *http.Request) {
	var req planTaskRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Commit && req.TripID == "" {
		a.badRequest(w, "a trip is required to commit a planned task")
		return
	}
	task, err := a.d.Coordinator.PlanTask(r.Context(), req.PlanRequest)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if !req.Commit {
		a.writeJSON(w, http.StatusOK, task)
		return
	}
	created, err := a.d.Coordinator.AddTask(r.Context(), task.Draft())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, created)
}
