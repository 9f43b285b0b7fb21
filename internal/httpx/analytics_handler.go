package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/retailops/backoffice/internal/analytics"
	"github.com/retailops/backoffice/internal/redisx"
)

type AnalyticsHandler struct {
	Aggregator *analytics.Aggregator
	Redis      *redis.Client // optional summary cache
	CacheTTL   time.Duration
	Timeout    time.Duration
	Logger     *zap.Logger
}

func (h *AnalyticsHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(RequireActor)
		r.Get("/analytics/summary", h.summary)
	})
}

func (h *AnalyticsHandler) summary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.Timeout)
	defer cancel()

	if h.Redis != nil {
		if body, err := h.Redis.Get(ctx, redisx.KeyAnalyticsSummary).Bytes(); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
			return
		}
	}

	sum, err := h.Aggregator.Summary(ctx)
	if err != nil {
		h.Logger.Error("analytics summary failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error generando resumen")
		return
	}

	body, err := json.Marshal(sum)
	if err != nil {
		h.Logger.Error("summary marshal failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error generando resumen")
		return
	}
	if h.Redis != nil {
		ttl := h.CacheTTL
		if ttl <= 0 {
			ttl = redisx.TTLSummaryCache
		}
		if err := h.Redis.Set(ctx, redisx.KeyAnalyticsSummary, body, ttl).Err(); err != nil {
			h.Logger.Warn("summary cache write failed", zap.Error(err))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
