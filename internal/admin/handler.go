// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/edustack/edustack-api/internal/core"
	"github.com/edustack/edustack-api/internal/payment"
)

type Handler struct {
	service *Service
	sampler systemSampler
}

type HandlerConfig struct {
	Service    *Service
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	RedisPing  func(ctx context.Context) error
	DBPing     func(ctx context.Context) error
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		service: cfg.Service,
		sampler: systemSampler{
			dbStats:    cfg.DBStats,
			redisStats: cfg.RedisStats,
			dbPing:     cfg.DBPing,
			redisPing:  cfg.RedisPing,
		},
	}
}

// RegisterRoutes expects r to be mounted at /admin and guarded by admin
// middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.Dashboard)
	r.Get("/top-instructors", h.TopInstructors)
	r.Get("/revenue-report", h.RevenueReport)

	r.Get("/stats", h.SystemStats)
	r.Get("/stats/db", h.DatabaseStats)
	r.Get("/stats/redis", h.RedisStats)
	r.Get("/stats/runtime", h.RuntimeStats)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Dashboard(r.Context())
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToDashboardResponse(d))
}

func (h *Handler) TopInstructors(w http.ResponseWriter, r *http.Request) {
	count := core.ParseIntQuery(r, "count", defaultTopCount)

	instructors, err := h.service.TopInstructors(r.Context(), count)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToTopInstructorResponseList(instructors))
}

func (h *Handler) RevenueReport(w http.ResponseWriter, r *http.Request) {
	filter, err := payment.ParseRevenueFilter(r)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	payments, err := h.service.RevenueReport(r.Context(), filter)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, payment.ToRevenueReportResponse(payments))
}

func (h *Handler) SystemStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.sampler.collect(r.Context()))
}

func (h *Handler) DatabaseStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.sampler.dbPool())
}

func (h *Handler) RedisStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.sampler.redisPool())
}

func (h *Handler) RuntimeStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, readRuntimeStats())
}
