// Package httpapi maps the drift model onto a REST surface. It is mechanical
// glue: request/response shaping only, no policy logic.
package httpapi

import (
	"net/http"

	"github.com/goforj/driftwatch"
	"github.com/goforj/driftwatch/analyzer"
	"github.com/goforj/driftwatch/coordinator"
)

// RouterDeps holds the dependencies needed by the HTTP API router.
type RouterDeps struct {
	Engine      *driftwatch.Engine
	Coordinator *coordinator.Coordinator
	Analyzer    *analyzer.Analyzer
}

// NewRouter creates an http.Handler with all API routes.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	rec := &recordHandler{coord: deps.Coordinator}
	mux.HandleFunc("POST /api/v1/records", rec.create)
	mux.HandleFunc("GET /api/v1/records", rec.list)
	mux.HandleFunc("GET /api/v1/records/{id}", rec.get)
	mux.HandleFunc("PUT /api/v1/records/{id}", rec.update)
	mux.HandleFunc("DELETE /api/v1/records/{id}", rec.delete)

	cache := &cacheHandler{engine: deps.Engine}
	mux.HandleFunc("GET /api/v1/cache", cache.list)
	mux.HandleFunc("GET /api/v1/cache/stats", cache.stats)
	mux.HandleFunc("GET /api/v1/cache/{id}", cache.get)
	mux.HandleFunc("DELETE /api/v1/cache/{id}", cache.invalidate)
	mux.HandleFunc("DELETE /api/v1/cache", cache.clear)
	mux.HandleFunc("PUT /api/v1/cache/failure-rate", cache.setFailureRate)

	drift := &driftHandler{analyzer: deps.Analyzer}
	mux.HandleFunc("GET /api/v1/drift", drift.analyze)
	mux.HandleFunc("GET /api/v1/drift/summary", drift.summary)
	mux.HandleFunc("GET /api/v1/drift/stale/{id}", drift.stale)
	mux.HandleFunc("POST /api/v1/drift/refresh/{id}", drift.refresh)

	events := &eventsHandler{coord: deps.Coordinator}
	mux.HandleFunc("GET /api/v1/events", events.list)
	mux.HandleFunc("GET /api/v1/events/recent", events.recent)
	mux.HandleFunc("GET /api/v1/events/stats", events.stats)

	mux.HandleFunc("GET /api/v1/health", healthCheck)

	return mux
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
