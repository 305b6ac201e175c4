package board

import (
	"net/http"
	"time"

	"github.com/bsb-logistics/ganttboard/core/mutation/journal"
)

// handleJournal exposes the mutation journal. Requests must carry
// "Authorization: Bearer <token>" when a token is configured.
func (a *API) handleJournal(w http.ResponseWriter, r *http.Request) {
	if a.d.Token != "" {
		if r.Header.Get("Authorization") != "Bearer "+a.d.Token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}
	q := journal.Query{
		Operation: r.URL.Query().Get("operation"),
		Outcome:   r.URL.Query().Get("outcome"),
		VehicleID: r.URL.Query().Get("vehicle_id"),
		TripID:    r.URL.Query().Get("trip_id"),
	}
	if s := r.URL.Query().Get("start"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			q.Start = t
		}
	}
	if s := r.URL.Query().Get("end"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			q.End = t
		}
	}
	records, err := a.d.Journal.Query(r.Context(), q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []journal.Record{}
	}
	a.writeJSON(w, http.StatusOK, records)
}
