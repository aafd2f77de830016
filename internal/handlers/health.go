package handlers

import (
	"net/http"
	"time"

	"github.com/la-fiesta/storefront/internal/platform/httpx"
)

// ReadinessCheck reports whether a dependency is ready to serve traffic.
type ReadinessCheck func() error

// HealthHandlers serves the liveness and readiness probes.
type HealthHandlers struct {
	clock  func() time.Time
	checks map[string]ReadinessCheck
}

// HealthOption customises the health handlers.
type HealthOption func(*HealthHandlers)

// NewHealthHandlers builds the probe handlers with the given options.
func NewHealthHandlers(opts ...HealthOption) *HealthHandlers {
	h := &HealthHandlers{
		clock:  func() time.Time { return time.Now().UTC() },
		checks: map[string]ReadinessCheck{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// WithReadinessCheck registers a named readiness check.
func WithReadinessCheck(name string, check ReadinessCheck) HealthOption {
	return func(h *HealthHandlers) {
		if check != nil {
			h.checks[name] = check
		}
	}
}

// WithHealthClock overrides the clock used in probe payloads.
func WithHealthClock(clock func() time.Time) HealthOption {
	return func(h *HealthHandlers) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// Healthz reports process liveness.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   h.clock().Format(time.RFC3339),
	})
}

// Readyz runs the registered readiness checks and reports the first failure.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	for name, check := range h.checks {
		if err := check(); err != nil {
			httpx.WriteError(r.Context(), w, httpx.NewError("not_ready", name+": "+err.Error(), http.StatusServiceUnavailable))
			return
		}
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status": "ready",
		"time":   h.clock().Format(time.RFC3339),
	})
}
