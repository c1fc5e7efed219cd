package official

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bims/internal/account"
	"bims/internal/platform/middleware"
	"bims/internal/transport/http/shared"
	dErrors "bims/pkg/domain-errors"
)

// Handler handles official endpoints.
type Handler struct {
	logger    *slog.Logger
	officials *Service
	validator middleware.TokenValidator
}

func NewHandler(officials *Service, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		officials: officials,
		validator: validator,
	}
}

// Register registers the official routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Get("/officials", h.handleList)
		r.Get("/officials/{id}", h.handleGet)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Use(middleware.RequireRole(h.logger, account.RoleAdmin))
		r.Post("/officials", h.handleCreate)
		r.Put("/officials/{id}", h.handleUpdate)
		r.Delete("/officials/{id}", h.handleDelete)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var data map[string]string
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	id, err := h.officials.Create(ctx, data)
	if err != nil {
		h.logWarn(ctx, "official create failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, map[string]string{
		"message": "Official saved successfully",
		"id":      id,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	officials, err := h.officials.List(ctx, r.URL.Query().Get("search"))
	if err != nil {
		h.logger.ErrorContext(ctx, "official listing failed",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, officials)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	official, err := h.officials.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.logWarn(ctx, "official fetch failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, official)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var data map[string]string
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.officials.Update(ctx, chi.URLParam(r, "id"), data); err != nil {
		h.logWarn(ctx, "official update failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "Official updated successfully"})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.officials.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		h.logWarn(ctx, "official delete failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "Official deleted successfully"})
}

func (h *Handler) logWarn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err.Error(),
		"request_id", middleware.GetRequestID(ctx),
	)
}
