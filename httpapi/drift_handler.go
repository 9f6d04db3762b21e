package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/goforj/driftwatch/analyzer"
	"github.com/goforj/driftwatch/record"
)

type driftHandler struct {
	analyzer *analyzer.Analyzer
}

func (h *driftHandler) analyze(w http.ResponseWriter, r *http.Request) {
	autoFix := false
	if raw := r.URL.Query().Get("autoFix"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "autoFix must be a boolean")
			return
		}
		autoFix = parsed
	}
	report, err := h.analyzer.AnalyzeDrift(r.Context(), autoFix)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *driftHandler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analyzer.QuickSummary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *driftHandler) stale(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	isStale, err := h.analyzer.IsRecordStale(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	msg := "cache entry is consistent with the database"
	if isStale {
		msg = "cache entry is stale"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"recordId": id,
		"isStale":  isStale,
		"message":  msg,
	})
}

func (h *driftHandler) refresh(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	entry, err := h.analyzer.ForceRefresh(r.Context(), id)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
