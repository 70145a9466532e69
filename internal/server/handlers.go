package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"league-standings-service/internal/cache"
	"league-standings-service/internal/domain"
	"league-standings-service/internal/logging"
	"league-standings-service/internal/metrics"
	"league-standings-service/internal/partitions"
)

// CacheEngine is the cache surface the API serves from.
type CacheEngine interface {
	Refreshable
	TeamSchedule(ctx context.Context, teamID, division, tier string) (domain.TeamSchedule, error)
	Status() map[string][]cache.EntryInfo
}

// Handler serves the JSON API over the cache engine.
type Handler struct {
	cache    CacheEngine
	logger   *slog.Logger
	metrics  *metrics.Recorder
	statusFn func() Status
}

func NewHandler(engine CacheEngine, logger *slog.Logger, recorder *metrics.Recorder, statusFn func() Status) *Handler {
	return &Handler{
		cache:    engine,
		logger:   logger,
		metrics:  recorder,
		statusFn: statusFn,
	}
}

// Router mounts all routes.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.observe)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/ready", h.Ready).Methods(http.MethodGet)
	r.HandleFunc("/standings/{division}/{tier}", h.Standings).Methods(http.MethodGet)
	r.HandleFunc("/schedule/{division}/{tier}", h.Schedule).Methods(http.MethodGet)
	r.HandleFunc("/teams/{id}/schedule", h.TeamSchedule).Methods(http.MethodGet)
	r.HandleFunc("/status", h.StatusReport).Methods(http.MethodGet)
	return r
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(h.logger, w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports 200 once the refresher has warmed the cache, or always when
// background refresh is disabled.
func (h *Handler) Ready(w http.ResponseWriter, _ *http.Request) {
	if h.statusFn != nil && !h.statusFn().IsReady() {
		writeError(h.logger, w, http.StatusServiceUnavailable, "cache not warmed yet")
		return
	}
	writeJSON(h.logger, w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) Standings(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	snap, err := h.cache.Standings(r.Context(), vars["division"], vars["tier"], forceRequested(r))
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, snap)
}

func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	snap, err := h.cache.PartitionSchedule(r.Context(), vars["division"], vars["tier"], forceRequested(r))
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, snap)
}

func (h *Handler) TeamSchedule(w http.ResponseWriter, r *http.Request) {
	division := r.URL.Query().Get("division")
	tier := r.URL.Query().Get("tier")
	if division == "" || tier == "" {
		writeError(h.logger, w, http.StatusBadRequest, "division and tier query parameters are required")
		return
	}

	ts, err := h.cache.TeamSchedule(r.Context(), mux.Vars(r)["id"], division, tier)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, ts)
}

func (h *Handler) StatusReport(w http.ResponseWriter, _ *http.Request) {
	report := map[string]any{"cache": h.cache.Status()}
	if h.statusFn != nil {
		report["refresher"] = h.statusFn()
	}
	writeJSON(h.logger, w, http.StatusOK, report)
}

func (h *Handler) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, partitions.ErrUnknownPartition) {
		writeError(h.logger, w, http.StatusNotFound, err.Error())
		return
	}
	// No cached entry and the scrape failed.
	writeError(h.logger, w, http.StatusBadGateway, "data source unavailable: "+err.Error())
}

// observe records one metric and log line per request, labeled with the
// route template rather than the raw path.
func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		h.metrics.RecordHTTPRequest(r.Method, path, sw.status, time.Since(start))
		logging.Info(h.logger, "request handled",
			logging.FieldMethod, r.Method,
			logging.FieldPath, path,
			logging.FieldStatusCode, sw.status,
			logging.FieldDurationMS, time.Since(start).Milliseconds(),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func forceRequested(r *http.Request) bool {
	return r.URL.Query().Get("refresh") == "true"
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn(logger, "response encode failed", "error", err)
	}
}

func writeError(logger *slog.Logger, w http.ResponseWriter, status int, msg string) {
	writeJSON(logger, w, status, errorResponse{Error: msg})
}
