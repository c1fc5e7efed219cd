package resident

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bims/internal/account"
	"bims/internal/platform/metrics"
	"bims/internal/platform/middleware"
	"bims/internal/transport/http/shared"
	dErrors "bims/pkg/domain-errors"
)

// Handler handles resident endpoints.
type Handler struct {
	logger    *slog.Logger
	residents *Service
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

func NewHandler(residents *Service, logger *slog.Logger, m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		residents: residents,
		metrics:   m,
		validator: validator,
	}
}

// Register registers the resident routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Get("/residents", h.handleList)
		r.Get("/residents/{id}", h.handleGet)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Use(middleware.RequireRole(h.logger, account.RoleAdmin))
		r.Post("/residents", h.handleCreate)
		r.Put("/residents/{id}", h.handleUpdate)
		r.Delete("/residents/{id}", h.handleDelete)
		r.Post("/residents/import", h.handleImport)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var data map[string]string
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	id, err := h.residents.Create(ctx, data)
	if err != nil {
		h.logWarn(ctx, "resident create failed", err)
		shared.WriteError(w, err)
		return
	}

	h.metrics.ResidentsCreated.Inc()
	shared.WriteJSON(w, http.StatusCreated, map[string]string{
		"message": "Resident saved successfully",
		"id":      id,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	residents, err := h.residents.List(ctx, r.URL.Query().Get("search"))
	if err != nil {
		h.logError(ctx, "resident listing failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, residents)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resident, err := h.residents.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.logWarn(ctx, "resident fetch failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, resident)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var data map[string]string
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.residents.Update(ctx, chi.URLParam(r, "id"), data); err != nil {
		h.logWarn(ctx, "resident update failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "Resident updated successfully"})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.residents.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		h.logWarn(ctx, "resident delete failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "Resident deleted successfully"})
}

// handleImport accepts a CSV document in the request body and bulk-creates
// residents. Per-row failures skip and continue; only an unreadable file
// fails the batch.
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.residents.ImportCSV(ctx, r.Body)
	if err != nil {
		h.logError(ctx, "resident import failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
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
