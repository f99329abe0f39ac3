// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

var (
	up   = pingFunc(func(context.Context) error { return nil })
	down = pingFunc(func(context.Context) error { return errors.New("connection refused") })
)

func dependencies(db, cache, store Checker) *Handler {
	return NewHandler(
		Probe{Name: "database", Checker: db},
		Probe{Name: "redis", Checker: cache},
		Probe{Name: "storage", Checker: store},
	)
}

func get(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestReadiness_AllHealthy(t *testing.T) {
	rec := get(dependencies(up, up, up), "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Checks, 3)
	assert.Equal(t, "storage", resp.Checks[2].Name)
	assert.NotEmpty(t, resp.Checks[0].Latency)
}

func TestReadiness_Degraded(t *testing.T) {
	rec := get(dependencies(up, down, nil), "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.True(t, resp.Checks[0].Healthy)
	assert.False(t, resp.Checks[1].Healthy)
	assert.Equal(t, "ping failed", resp.Checks[1].Message)
	assert.Equal(t, "storage checker not configured", resp.Checks[2].Message)
}

func TestReadiness_NoProbes(t *testing.T) {
	assert.Equal(t, http.StatusOK, get(NewHandler(), "/readyz").Code)
}

func TestShutdownFlipsProbes(t *testing.T) {
	h := dependencies(up, up, up)
	assert.Equal(t, http.StatusOK, get(h, "/healthz").Code)

	h.SetReady(false)
	assert.Equal(t, http.StatusServiceUnavailable, get(h, "/readyz").Code)
	assert.Equal(t, http.StatusOK, get(h, "/livez").Code)

	h.SetShutdown(true)
	assert.Equal(t, http.StatusServiceUnavailable, get(h, "/healthz").Code)

	h.SetReady(true)
	assert.Equal(t, http.StatusServiceUnavailable, get(h, "/readyz").Code)
	assert.Contains(t, get(h, "/readyz").Body.String(), "shutting_down")
}
