package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"progress-service/internal/httputil"

	"github.com/go-chi/chi/v5"
)

const checkTimeout = 2 * time.Second

// Checker probes one dependency.
type Checker func(ctx context.Context) error

type dependency struct {
	name     string
	check    Checker
	critical bool
}

type Handler struct {
	deps   []dependency
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Require registers a dependency the service cannot serve without.
func (h *Handler) Require(name string, check Checker) *Handler {
	h.deps = append(h.deps, dependency{name: name, check: check, critical: true})
	return h
}

// Optional registers a dependency whose outage only degrades the service.
func (h *Handler) Optional(name string, check Checker) *Handler {
	h.deps = append(h.deps, dependency{name: name, check: check})
	return h
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready answers 503 only when a required dependency fails.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ready", Checks: make(map[string]string, len(h.deps))}
	code := http.StatusOK

	for _, dep := range h.deps {
		if err := dep.check(ctx); err != nil {
			h.logger.WarnContext(ctx, "readiness check failed", "dependency", dep.name, "error", err)
			resp.Checks[dep.name] = "down"
			if dep.critical {
				resp.Status = "unavailable"
				code = http.StatusServiceUnavailable
			} else if resp.Status == "ready" {
				resp.Status = "degraded"
			}
			continue
		}
		resp.Checks[dep.name] = "up"
	}

	httputil.RespondWithJSON(w, code, resp)
}
