package handler

import (
	"net/http"

	"github.com/bananagame/platform/internal/event"
)

// EventsHandler exposes the bus history for debugging and game replays.
type EventsHandler struct {
	bus *event.Bus
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(bus *event.Bus) *EventsHandler {
	return &EventsHandler{bus: bus}
}

// History handles GET /events/history.
func (h *EventsHandler) History(w http.ResponseWriter, r *http.Request) {
	records := h.bus.History()
	if records == nil {
		records = []event.Record{}
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"events":  records,
	})
}

// Clear handles DELETE /events/history.
func (h *EventsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.bus.ClearHistory()
	RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
