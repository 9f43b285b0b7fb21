package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/retailops/backoffice/internal/inventory"
	"github.com/retailops/backoffice/internal/sales"
)

type SalesHandler struct {
	Processor *sales.Processor
	Timeout   time.Duration
	Logger    *zap.Logger
}

type createSaleReq struct {
	Items []sales.LineRequest `json:"items"`
}

func (h *SalesHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(RequireActor)
		r.Post("/sales", h.createSale)
		r.Get("/sales", h.listSales)
		r.Get("/sales/export", h.exportSales)
	})
}

func (h *SalesHandler) createSale(w http.ResponseWriter, r *http.Request) {
	var req createSaleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "No se enviaron productos")
		return
	}

	actor, _ := ActorFrom(r.Context())
	ctx, cancel := h.requestCtx(r)
	defer cancel()

	sale, err := h.Processor.Create(ctx, actor.ID, req.Items)
	if err != nil {
		h.writeSaleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

func (h *SalesHandler) writeSaleError(w http.ResponseWriter, err error) {
	var vErr *sales.ValidationError
	var nfErr *inventory.NotFoundError
	var stockErr *inventory.InsufficientStockError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Msg)
	case errors.As(err, &nfErr):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Producto no encontrado: %s", nfErr.ProductID))
	case errors.As(err, &stockErr):
		name := stockErr.ProductName
		if name == "" {
			name = stockErr.ProductID
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Stock insuficiente para %s", name))
	case errors.Is(err, inventory.ErrConflict):
		writeError(w, http.StatusConflict, "Conflicto de concurrencia, reintente")
	default:
		h.Logger.Error("create sale failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error creando venta")
	}
}

func (h *SalesHandler) listSales(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestCtx(r)
	defer cancel()

	views, err := h.Processor.List(ctx)
	if err != nil {
		h.Logger.Error("list sales failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error obteniendo ventas")
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *SalesHandler) exportSales(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestCtx(r)
	defer cancel()

	views, err := h.Processor.List(ctx)
	if err != nil {
		h.Logger.Error("export sales failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error exportando ventas")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="sales-%d.csv"`, time.Now().UnixMilli()))
	if err := sales.WriteCSV(w, views); err != nil {
		h.Logger.Error("csv write failed", zap.Error(err))
	}
}

func (h *SalesHandler) requestCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return contextWithTimeout(r, h.Timeout)
}
