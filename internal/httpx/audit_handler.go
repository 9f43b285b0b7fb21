package httpx

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/retailops/backoffice/internal/audit"
)

type AuditHandler struct {
	Recorder *audit.Recorder
	Timeout  time.Duration
	Logger   *zap.Logger
}

func (h *AuditHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin)
		r.Get("/audit", h.query)
	})
}

func (h *AuditHandler) query(w http.ResponseWriter, r *http.Request) {
	f := audit.Filter{
		Action:     r.URL.Query().Get("action"),
		EntityType: r.URL.Query().Get("entityType"),
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		// Unparsable limits fall back to the default, matching the limit
		// clamp's zero handling.
		limit, _ = strconv.Atoi(raw)
	}

	ctx, cancel := contextWithTimeout(r, h.Timeout)
	defer cancel()

	entries, err := h.Recorder.Query(ctx, f, limit)
	if err != nil {
		h.Logger.Error("audit query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error consultando auditoría")
		return
	}
	if entries == nil {
		entries = []*audit.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
