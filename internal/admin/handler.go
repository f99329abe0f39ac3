// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

const probeTimeout = 3 * time.Second

// Sources are the live dependencies the dashboard reports on. Any of them
// may be nil, in which case that section is omitted.
type Sources struct {
	Content       Repository
	DBStats       func() sql.DBStats
	RedisStats    func() *redis.PoolStats
	DBPing        func(ctx context.Context) error
	RedisPing     func(ctx context.Context) error
	StoragePing   func(ctx context.Context) error
	SchemaVersion func(ctx context.Context) (int64, error)
}

type Handler struct {
	src Sources
}

func NewHandler(src Sources) *Handler {
	return &Handler{src: src}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator, adminOnly)

		r.Get("/admin/stats", h.GetOverview)
		r.Get("/admin/stats/content", h.GetContentStats)
		r.Get("/admin/stats/db", h.GetDatabaseStats)
		r.Get("/admin/stats/redis", h.GetRedisStats)
		r.Get("/admin/stats/runtime", h.GetRuntimeStats)
	})
}

func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	resp := Overview{
		Database: DatabaseStatus{
			Healthy: reachable(ctx, h.src.DBPing),
			Pool:    h.dbPool(),
		},
		Redis: RedisStatus{
			Healthy: reachable(ctx, h.src.RedisPing),
			Pool:    h.redisPool(),
		},
		Storage: StorageStatus{Healthy: reachable(ctx, h.src.StoragePing)},
		Runtime: readRuntime(),
	}

	if h.src.SchemaVersion != nil {
		if v, err := h.src.SchemaVersion(ctx); err == nil {
			resp.Database.SchemaVersion = v
		}
	}

	if h.src.Content != nil {
		content, err := h.src.Content.ContentStats(ctx)
		if err != nil {
			slog.WarnContext(ctx, "content stats unavailable", "error", err)
		}
		resp.Content = content
	}

	core.OK(w, resp)
}

func (h *Handler) GetContentStats(w http.ResponseWriter, r *http.Request) {
	if h.src.Content == nil {
		core.JSONError(w, core.UnavailableError("content stats not configured"))
		return
	}

	stats, err := h.src.Content.ContentStats(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, stats)
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, h.dbPool())
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, h.redisPool())
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, readRuntime())
}

func reachable(ctx context.Context, ping func(ctx context.Context) error) bool {
	return ping != nil && ping(ctx) == nil
}

func readRuntime() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		CPUs:       runtime.NumCPU(),
		HeapAlloc:  mem.HeapAlloc,
		SysBytes:   mem.Sys,
		GCCycles:   mem.NumGC,
	}
}

func (h *Handler) dbPool() *DBPool {
	if h.src.DBStats == nil {
		return nil
	}

	s := h.src.DBStats()
	return &DBPool{
		MaxOpen:      s.MaxOpenConnections,
		Open:         s.OpenConnections,
		InUse:        s.InUse,
		Idle:         s.Idle,
		WaitCount:    s.WaitCount,
		WaitDuration: s.WaitDuration.String(),
	}
}

func (h *Handler) redisPool() *RedisPool {
	if h.src.RedisStats == nil {
		return nil
	}

	s := h.src.RedisStats()
	return &RedisPool{
		Hits:     s.Hits,
		Misses:   s.Misses,
		Timeouts: s.Timeouts,
		Total:    s.TotalConns,
		Idle:     s.IdleConns,
	}
}

type Overview struct {
	Content  *ContentStats  `json:"content,omitempty"`
	Database DatabaseStatus `json:"database"`
	Redis    RedisStatus    `json:"redis"`
	Storage  StorageStatus  `json:"storage"`
	Runtime  RuntimeStats   `json:"runtime"`
}

type DatabaseStatus struct {
	Healthy       bool    `json:"healthy"`
	SchemaVersion int64   `json:"schema_version,omitempty"`
	Pool          *DBPool `json:"pool,omitempty"`
}

type RedisStatus struct {
	Healthy bool       `json:"healthy"`
	Pool    *RedisPool `json:"pool,omitempty"`
}

type StorageStatus struct {
	Healthy bool `json:"healthy"`
}

type DBPool struct {
	MaxOpen      int    `json:"max_open"`
	Open         int    `json:"open"`
	InUse        int    `json:"in_use"`
	Idle         int    `json:"idle"`
	WaitCount    int64  `json:"wait_count"`
	WaitDuration string `json:"wait_duration"`
}

type RedisPool struct {
	Hits     uint32 `json:"hits"`
	Misses   uint32 `json:"misses"`
	Timeouts uint32 `json:"timeouts"`
	Total    uint32 `json:"total"`
	Idle     uint32 `json:"idle"`
}

type RuntimeStats struct {
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
	CPUs       int    `json:"cpus"`
	HeapAlloc  uint64 `json:"heap_alloc_bytes"`
	SysBytes   uint64 `json:"sys_bytes"`
	GCCycles   uint32 `json:"gc_cycles"`
}
