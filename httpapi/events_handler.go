package httpapi

import (
	"net/http"
	"strconv"

	"github.com/goforj/driftwatch/audit"
	"github.com/goforj/driftwatch/coordinator"
)

type eventsHandler struct {
	coord *coordinator.Coordinator
}

func (h *eventsHandler) list(w http.ResponseWriter, r *http.Request) {
	events, err := h.coord.Events(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *eventsHandler) recent(w http.ResponseWriter, r *http.Request) {
	n := audit.DefaultRecentLimit
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		n = parsed
	}
	events, err := h.coord.RecentEvents(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *eventsHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.coord.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
