package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/teemow/tasknotes/internal/evernote"
)

// Check values reported by the health endpoints.
const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
	healthStatusNoSession    = "not connected"
	healthStatusNoToken      = "not configured"
)

// HealthChecker serves the liveness and readiness endpoints for the HTTP transport.
// Readiness fails while the server is draining or its context is shut down.
// A missing Evernote session or token is reported but never fails readiness:
// the session opens on the first tool call and tool calls report a missing
// token themselves.
type HealthChecker struct {
	ready     atomic.Bool
	sc        *ServerContext
	startTime time.Time
}

// NewHealthChecker returns a ready checker. sc may be nil.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{sc: sc, startTime: time.Now()}
	h.ready.Store(true)
	return h
}

// SetReady marks the server ready or draining.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports the value last given to SetReady.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed.
type DetailedHealthResponse struct {
	Status          string `json:"status"`
	Uptime          string `json:"uptime"`
	Service         string `json:"service,omitempty"`
	Session         bool   `json:"session"`
	TokenConfigured bool   `json:"tokenConfigured"`
}

// check is one named readiness condition. Informational checks never fail.
type check struct {
	name          string
	status        string
	ok            bool
	informational bool
}

func newCheck(name string, ok bool, failedStatus string, informational bool) check {
	c := check{name: name, status: healthStatusOK, ok: ok, informational: informational}
	if !ok {
		c.status = failedStatus
	}
	return c
}

func (h *HealthChecker) checks() []check {
	return []check{
		newCheck("ready", h.ready.Load(), healthStatusNotReady, false),
		newCheck("shutdown", !h.shuttingDown(), healthStatusShuttingDown, false),
		newCheck("session", h.hasSession(), healthStatusNoSession, true),
		newCheck("token", h.tokenConfigured(), healthStatusNoToken, true),
	}
}

// status returns the overall status and the HTTP code it maps to.
func (h *HealthChecker) status() (string, int) {
	switch {
	case !h.ready.Load():
		return healthStatusNotReady, http.StatusServiceUnavailable
	case h.shuttingDown():
		return healthStatusShuttingDown, http.StatusServiceUnavailable
	}
	return healthStatusOK, http.StatusOK
}

func (h *HealthChecker) shuttingDown() bool {
	return h.sc != nil && h.sc.IsShutdown()
}

func (h *HealthChecker) hasSession() bool {
	return h.sc != nil && h.sc.HasSession()
}

func (h *HealthChecker) tokenConfigured() bool {
	if h.sc == nil {
		return false
	}
	_, err := h.sc.Config().ResolveToken()
	return err == nil
}

// LivenessHandler answers /healthz. It only shows the process is serving.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler answers /readyz with every check in Checks.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		statuses := make(map[string]string)
		allOK := true
		for _, c := range h.checks() {
			statuses[c.name] = c.status
			if !c.ok && !c.informational {
				allOK = false
			}
		}

		resp := HealthResponse{Status: healthStatusOK, Checks: statuses}
		code := http.StatusOK
		if !allOK {
			resp.Status = healthStatusNotReady
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, resp)
	})
}

// DetailedHealthHandler answers /healthz/detailed.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status, code := h.status()
		resp := DetailedHealthResponse{
			Status:          status,
			Uptime:          time.Since(h.startTime).Truncate(time.Second).String(),
			Session:         h.hasSession(),
			TokenConfigured: h.tokenConfigured(),
		}
		if h.sc != nil {
			resp.Service = evernote.ServiceURL(h.sc.Config().Service)
		}
		writeJSON(w, code, resp)
	})
}

// RegisterHealthEndpoints adds /healthz, /readyz and /healthz/detailed to mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
