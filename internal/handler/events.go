package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/storefront-kit/catalog-dashboard/internal/dashboard"
)

// eventPayload is the SSE data frame for a controller event.
type eventPayload struct {
	Kind         dashboard.EventKind     `json:"kind"`
	View         *viewResponse           `json:"view,omitempty"`
	Busy         dashboard.Busy          `json:"busy"`
	Notification *dashboard.Notification `json:"notification,omitempty"`
}

func toEventPayload(e dashboard.Event) eventPayload {
	out := eventPayload{Kind: e.Kind, Busy: e.Busy, Notification: e.Notification}
	if e.View != nil {
		v := toViewResponse(*e.View, e.LoadFailed)
		out.View = &v
	}
	return out
}

// events streams controller events to the presentation surface as
// server-sent events. This is the observer channel: surfaces render
// from these pushes instead of polling the view endpoint.
func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	events, cancel := h.ctrl.Subscribe(32)
	defer cancel()

	send := func(e dashboard.Event) bool {
		data, err := json.Marshal(toEventPayload(e))
		if err != nil {
			zctx.From(r.Context()).Error("Encode event", zap.Error(err))
			return false
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Kind, data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	// Initial snapshot so a late subscriber starts from current state.
	v := h.ctrl.View()
	if !send(dashboard.Event{Kind: dashboard.EventView, View: &v, LoadFailed: h.ctrl.LoadFailed()}) {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case e, open := <-events:
			if !open {
				return
			}
			if !send(e) {
				return
			}
		}
	}
}
