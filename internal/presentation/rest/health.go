package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"time"
)

// Check reports whether one dependency is usable.
type Check func(ctx context.Context) error

// HealthHandler serves liveness, readiness and metrics over HTTP.
type HealthHandler struct {
	service string
	checks  map[string]Check
	metrics http.Handler
	timeout time.Duration
	logger  *slog.Logger
}

// NewHealthHandler creates the handler. checks are run by /readyz; a nil
// metrics handler leaves /metrics unregistered.
func NewHealthHandler(service string, checks map[string]Check, metrics http.Handler, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		checks:  checks,
		metrics: metrics,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// RegisterRoutes attaches the routes to mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.liveness)
	mux.HandleFunc("GET /readyz", h.readiness)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}
}

func (h *HealthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": h.service,
	})
}

type readinessResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks,omitempty"`
}

func (h *HealthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := readinessResponse{Status: "ready", Service: h.service, Checks: make(map[string]string, len(names))}
	code := http.StatusOK
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.WarnContext(ctx, "readiness check failed", "check", name, "error", err)
			resp.Checks[name] = "unavailable"
			resp.Status = "not_ready"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}
