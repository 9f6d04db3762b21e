package httpapi

import (
	"net/http"

	"github.com/goforj/driftwatch"
)

type cacheHandler struct {
	engine *driftwatch.Engine
}

type failureRateRequest struct {
	Rate float64 `json:"rate"`
}

func (h *cacheHandler) get(w http.ResponseWriter, r *http.Request) {
	entry, ok, err := h.engine.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "cache entry not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *cacheHandler) list(w http.ResponseWriter, r *http.Request) {
	entries, err := h.engine.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *cacheHandler) invalidate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ok, err := h.engine.Invalidate(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	msg := "cache invalidated"
	if !ok {
		msg = "invalidation failed"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          id,
		"invalidated": ok,
		"message":     msg,
	})
}

func (h *cacheHandler) clear(w http.ResponseWriter, r *http.Request) {
	removed, err := h.engine.Clear(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "cache cleared",
		"removed": removed,
	})
}

func (h *cacheHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *cacheHandler) setFailureRate(w http.ResponseWriter, r *http.Request) {
	var req failureRateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// The engine clamps silently; the API is stricter and rejects.
	if req.Rate < 0.0 || req.Rate > 1.0 {
		writeError(w, http.StatusBadRequest, "failure rate must be between 0.0 and 1.0")
		return
	}
	applied := h.engine.SetFailureRate(req.Rate)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "failure rate updated",
		"newRate": applied,
	})
}
