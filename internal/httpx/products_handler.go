package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailops/backoffice/internal/audit"
	"github.com/retailops/backoffice/internal/inventory"
	"github.com/retailops/backoffice/internal/product"
)

type ProductsHandler struct {
	Store    product.Store
	Ledger   inventory.Ledger
	Recorder *audit.Recorder
	Timeout  time.Duration
	Logger   *zap.Logger
}

type productReq struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
}

type restockReq struct {
	Quantity int `json:"quantity"`
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Get("/products", h.list)
	r.Get("/products/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin)
		r.Post("/products", h.create)
		r.Put("/products/{id}", h.update)
		r.Delete("/products/{id}", h.delete)
		r.Post("/products/{id}/restock", h.restock)
	})
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.Name == "" || req.Price < 0 || req.Stock < 0 {
		writeError(w, http.StatusBadRequest, "Datos de producto inválidos")
		return
	}

	ctx, cancel := contextWithTimeout(r, h.Timeout)
	defer cancel()

	p := &product.Product{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Stock:    req.Stock,
	}
	if err := h.Store.Create(ctx, p); err != nil {
		h.Logger.Error("create product failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error creando producto")
		return
	}

	h.audit(r, audit.ActionProductCreated, p.ID, p.Name,
		fmt.Sprintf("Producto creado: %s", p.Name), nil)
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.Timeout)
	defer cancel()

	ps, err := h.Store.List(ctx)
	if err != nil {
		h.Logger.Error("list products failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error obteniendo productos")
		return
	}
	if ps == nil {
		ps = []*product.Product{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.Timeout)
	defer cancel()

	p, err := h.Store.Get(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, product.ErrNotFound) {
		writeError(w, http.StatusNotFound, "No encontrado")
		return
	}
	if err != nil {
		h.Logger.Error("get product failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error obteniendo producto")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.Name == "" || req.Price < 0 {
		writeError(w, http.StatusBadRequest, "Datos de producto inválidos")
		return
	}

	ctx, cancel := contextWithTimeout(r, h.Timeout)
	defer cancel()

	p := &product.Product{
		ID:       chi.URLParam(r, "id"),
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
	}
	err := h.Store.Update(ctx, p)
	if errors.Is(err, product.ErrNotFound) {
		writeError(w, http.StatusNotFound, "No encontrado")
		return
	}
	if err != nil {
		h.Logger.Error("update product failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error actualizando producto")
		return
	}

	h.audit(r, audit.ActionProductUpdated, p.ID, p.Name,
		fmt.Sprintf("Producto actualizado: %s", p.Name), nil)
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.Timeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	p, err := h.Store.Get(ctx, id)
	if errors.Is(err, product.ErrNotFound) {
		writeError(w, http.StatusNotFound, "No encontrado")
		return
	}
	if err != nil {
		h.Logger.Error("get product failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error eliminando producto")
		return
	}

	if err := h.Store.Delete(ctx, id); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No encontrado")
			return
		}
		h.Logger.Error("delete product failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error eliminando producto")
		return
	}

	h.audit(r, audit.ActionProductDeleted, id, p.Name,
		fmt.Sprintf("Producto eliminado: %s", p.Name), nil)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Producto eliminado"})
}

func (h *ProductsHandler) restock(w http.ResponseWriter, r *http.Request) {
	var req restockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "Cantidad inválida")
		return
	}

	ctx, cancel := contextWithTimeout(r, h.Timeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	var nfErr *inventory.NotFoundError
	if err := h.Ledger.Restock(ctx, id, req.Quantity); err != nil {
		if errors.As(err, &nfErr) {
			writeError(w, http.StatusNotFound, "No encontrado")
			return
		}
		h.Logger.Error("restock failed", zap.String("product_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error reponiendo stock")
		return
	}

	p, err := h.Store.Get(ctx, id)
	if err != nil {
		h.Logger.Error("get product after restock failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error reponiendo stock")
		return
	}

	h.audit(r, audit.ActionProductRestocked, p.ID, p.Name,
		fmt.Sprintf("Stock repuesto: %s (+%d)", p.Name, req.Quantity),
		map[string]any{"quantity": req.Quantity, "stock": p.Stock})
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) audit(r *http.Request, action, entityID, entityName, details string, meta map[string]any) {
	actor, _ := ActorFrom(r.Context())
	h.Recorder.RecordAsync(audit.Entry{
		Action:     action,
		EntityType: audit.EntityProduct,
		EntityID:   entityID,
		EntityName: entityName,
		ActorID:    actor.ID,
		Details:    details,
		Metadata:   meta,
	})
}
