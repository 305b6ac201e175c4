package board

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// keepAlive is the interval between SSE comments on an idle stream.
const keepAlive = 15 * time.Second

// handleEvents streams board events as server-sent events until the client
// goes away or the bus is closed.
func (a *API) handleEvents(w http.ResponseWriter, r *http.Request) {
	if a.d.Bus == nil {
		http.Error(w, "event stream disabled", http.StatusNotFound)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	ch := a.d.Bus.Subscribe()
	defer a.d.Bus.Unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, ok := <-ch:
			if !ok {
				return
			}
			b, err := json.Marshal(ev)
			if err != nil {
				a.d.Log.Errorf("encode event: %v", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, b); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
