package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goforj/driftwatch/coordinator"
	"github.com/goforj/driftwatch/record"
)

type recordHandler struct {
	coord *coordinator.Coordinator
}

type createRecordRequest struct {
	Value            string `json:"value"`
	CacheImmediately bool   `json:"cacheImmediately"`
}

type updateRecordRequest struct {
	Value           string `json:"value"`
	InvalidateCache bool   `json:"invalidateCache"`
	SimulateFailure bool   `json:"simulateFailure"`
}

func (h *recordHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Value) == "" {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}
	rec, err := h.coord.Create(r.Context(), req.Value, req.CacheImmediately)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *recordHandler) list(w http.ResponseWriter, r *http.Request) {
	records, err := h.coord.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *recordHandler) get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.coord.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *recordHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Value) == "" {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}
	rec, err := h.coord.Update(r.Context(), r.PathValue("id"), req.Value, req.InvalidateCache, req.SimulateFailure)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *recordHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.coord.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, record.ErrNotFound) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
