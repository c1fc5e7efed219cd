package announcement

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

// Handler handles announcement endpoints.
type Handler struct {
	logger        *slog.Logger
	announcements *Service
	validator     middleware.TokenValidator
}

func NewHandler(announcements *Service, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:        logger,
		announcements: announcements,
		validator:     validator,
	}
}

// Register registers the announcement routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Get("/announcements", h.handleList)
		r.Get("/announcements/{id}", h.handleGet)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Use(middleware.RequireRole(h.logger, account.RoleAdmin))
		r.Post("/announcements", h.handleCreate)
		r.Put("/announcements/{id}", h.handleUpdate)
		r.Delete("/announcements/{id}", h.handleDelete)
	})
}

type announcementRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req announcementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	id, err := h.announcements.Create(ctx, req.Title, req.Description)
	if err != nil {
		h.logWarn(ctx, "announcement create failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]string{
		"message": "Announcement saved successfully",
		"id":      id,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	announcements, err := h.announcements.List(ctx, r.URL.Query().Get("search"))
	if err != nil {
		h.logError(ctx, "announcement listing failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, announcements)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	announcement, err := h.announcements.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.logWarn(ctx, "announcement fetch failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, announcement)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req announcementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.announcements.Update(ctx, chi.URLParam(r, "id"), req.Title, req.Description); err != nil {
		h.logWarn(ctx, "announcement update failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "Announcement updated successfully"})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.announcements.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		h.logWarn(ctx, "announcement delete failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "Announcement deleted successfully"})
}

func (h *Handler) logWarn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err.Error(),
		"request_id", middleware.GetRequestID(ctx),
	)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"error", err.Error(),
		"request_id", middleware.GetRequestID(ctx),
	)
}
