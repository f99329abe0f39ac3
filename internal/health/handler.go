// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

const probeTimeout = 3 * time.Second

type Checker interface {
	Ping(ctx context.Context) error
}

// Probe is one dependency consulted by the readiness endpoint.
type Probe struct {
	Name    string
	Checker Checker
}

type state int32

const (
	stateServing state = iota
	stateNotReady
	stateDraining
)

type Handler struct {
	probes []Probe
	state  atomic.Int32
}

func NewHandler(probes ...Probe) *Handler {
	return &Handler{probes: probes}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

// Liveness only fails once the process has started draining.
func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	if h.current() == stateDraining {
		writeProbe(w, http.StatusServiceUnavailable, StatusResponse{Status: "shutting_down"})
		return
	}
	writeProbe(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	switch h.current() {
	case stateDraining:
		writeProbe(w, http.StatusServiceUnavailable, StatusResponse{Status: "shutting_down"})
		return
	case stateNotReady:
		writeProbe(w, http.StatusServiceUnavailable, StatusResponse{Status: "not_ready"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	resp := ReadinessResponse{Status: "ok", Checks: h.probeAll(ctx)}
	code := http.StatusOK
	for _, c := range resp.Checks {
		if !c.Healthy {
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}

	writeProbe(w, code, resp)
}

func (h *Handler) probeAll(ctx context.Context) []HealthCheck {
	results := make([]HealthCheck, len(h.probes))

	var wg sync.WaitGroup
	for i, p := range h.probes {
		wg.Go(func() {
			results[i] = p.run(ctx)
		})
	}
	wg.Wait()

	return results
}

func (p Probe) run(ctx context.Context) HealthCheck {
	if p.Checker == nil {
		return HealthCheck{Name: p.Name, Message: p.Name + " checker not configured"}
	}

	start := time.Now()
	err := p.Checker.Ping(ctx)
	check := HealthCheck{
		Name:    p.Name,
		Healthy: err == nil,
		Latency: time.Since(start).String(),
	}
	if err != nil {
		check.Message = "ping failed"
	}
	return check
}

func (h *Handler) current() state {
	return state(h.state.Load())
}

// SetReady toggles readiness. It has no effect once draining has begun.
func (h *Handler) SetReady(ready bool) {
	next := stateServing
	if !ready {
		next = stateNotReady
	}
	for {
		cur := h.state.Load()
		if state(cur) == stateDraining ||
			h.state.CompareAndSwap(cur, int32(next)) {
			return
		}
	}
}

func (h *Handler) SetShutdown(shutdown bool) {
	if shutdown {
		h.state.Store(int32(stateDraining))
		return
	}
	h.state.Store(int32(stateServing))
}

func writeProbe(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	core.JSON(w, status, body)
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ReadinessResponse struct {
	Status string        `json:"status"`
	Checks []HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}
