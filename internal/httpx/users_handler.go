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
	"github.com/retailops/backoffice/internal/user"
)

type UsersHandler struct {
	Store    user.Store
	Recorder *audit.Recorder
	Timeout  time.Duration
	Logger   *zap.Logger
}

type createUserReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type userStatusReq struct {
	Status string `json:"status"`
}

func (h *UsersHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin)
		r.Post("/users", h.create)
		r.Get("/users", h.list)
		r.Patch("/users/{id}/status", h.updateStatus)
		r.Delete("/users/{id}", h.delete)
	})
}

func (h *UsersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Nombre y email son requeridos")
		return
	}
	role := req.Role
	if role == "" {
		role = user.RoleVendor
	}
	if role != user.RoleAdmin && role != user.RoleVendor {
		writeError(w, http.StatusBadRequest, "Rol inválido")
		return
	}

	ctx, cancel := contextWithTimeout(r, h.Timeout)
	defer cancel()

	if _, err := h.Store.GetByEmail(ctx, req.Email); err == nil {
		writeError(w, http.StatusBadRequest, "Email ya existe")
		return
	}

	u := &user.User{
		ID:     uuid.NewString(),
		Name:   req.Name,
		Email:  req.Email,
		Role:   role,
		Status: user.StatusActive,
	}
	if err := h.Store.Create(ctx, u); err != nil {
		h.Logger.Error("create user failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error creando usuario")
		return
	}

	h.audit(r, audit.ActionUserCreated, u.ID, u.Name,
		fmt.Sprintf("Usuario creado: %s", u.Email), nil)
	writeJSON(w, http.StatusCreated, u)
}

func (h *UsersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.Timeout)
	defer cancel()

	us, err := h.Store.List(ctx)
	if err != nil {
		h.Logger.Error("list users failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error obteniendo usuarios")
		return
	}
	if us == nil {
		us = []*user.User{}
	}
	writeJSON(w, http.StatusOK, us)
}

func (h *UsersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req userStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.Status != user.StatusActive && req.Status != user.StatusInactive {
		writeError(w, http.StatusBadRequest, "Estado inválido")
		return
	}

	ctx, cancel := contextWithTimeout(r, h.Timeout)
	defer cancel()

	u, err := h.Store.Get(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, user.ErrNotFound) {
		writeError(w, http.StatusNotFound, "No encontrado")
		return
	}
	if err != nil {
		h.Logger.Error("get user failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error actualizando usuario")
		return
	}

	u.Status = req.Status
	if err := h.Store.Update(ctx, u); err != nil {
		h.Logger.Error("update user failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error actualizando usuario")
		return
	}

	h.audit(r, audit.ActionUserStatusChange, u.ID, u.Name,
		fmt.Sprintf("Estado cambiado a %s: %s", u.Status, u.Email), nil)
	writeJSON(w, http.StatusOK, u)
}

func (h *UsersHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.Timeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	u, err := h.Store.Get(ctx, id)
	if errors.Is(err, user.ErrNotFound) {
		writeError(w, http.StatusNotFound, "No encontrado")
		return
	}
	if err != nil {
		h.Logger.Error("get user failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error eliminando usuario")
		return
	}

	if err := h.Store.Delete(ctx, id); err != nil && !errors.Is(err, user.ErrNotFound) {
		h.Logger.Error("delete user failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error eliminando usuario")
		return
	}

	h.audit(r, audit.ActionUserDeleted, id, u.Name,
		fmt.Sprintf("Usuario eliminado: %s", u.Email), nil)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Usuario eliminado"})
}

func (h *UsersHandler) audit(r *http.Request, action, entityID, entityName, details string, meta map[string]any) {
	actor, _ := ActorFrom(r.Context())
	h.Recorder.RecordAsync(audit.Entry{
		Action:     action,
		EntityType: audit.EntityUser,
		EntityID:   entityID,
		EntityName: entityName,
		ActorID:    actor.ID,
		Details:    details,
		Metadata:   meta,
	})
}
