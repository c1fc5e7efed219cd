package certificate

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

// Handler handles certificate endpoints.
type Handler struct {
	logger       *slog.Logger
	certificates *Service
	metrics      *metrics.Metrics
	validator    middleware.TokenValidator
}

func NewHandler(certificates *Service, logger *slog.Logger, m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:       logger,
		certificates: certificates,
		metrics:      m,
		validator:    validator,
	}
}

// Register registers the certificate routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Use(middleware.RequireRole(h.logger, account.RoleUser))
		r.Post("/certificates", h.handleRequest)
		r.Get("/certificates", h.handleListOwn)
		r.Put("/certificates/{id}", h.handleUpdate)
		r.Put("/certificates/{id}/cancel", h.handleCancel)
		r.Delete("/certificates/{id}", h.handleDelete)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Use(middleware.RequireRole(h.logger, account.RoleAdmin))
		r.Get("/certificates/pending", h.handleListPending)
		r.Get("/certificates/{id}", h.handleGet)
		r.Put("/certificates/{id}/status", h.handleUpdateStatus)
	})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	id, err := h.certificates.Request(ctx, middleware.GetUsername(ctx), req)
	if err != nil {
		h.logWarn(ctx, "certificate request failed", err)
		shared.WriteError(w, err)
		return
	}

	h.metrics.CertificatesRequested.Inc()
	shared.WriteJSON(w, http.StatusCreated, map[string]string{
		"message":       "Certificate request submitted successfully",
		"certificateId": id,
	})
}

func (h *Handler) handleListOwn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	certificates, err := h.certificates.ListOwn(ctx, middleware.GetUsername(ctx))
	if err != nil {
		h.logError(ctx, "certificate listing failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string][]Certificate{"certificates": certificates})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.certificates.Update(ctx, middleware.GetUsername(ctx), chi.URLParam(r, "id"), req); err != nil {
		h.logWarn(ctx, "certificate update failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "Certificate updated successfully"})
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.certificates.Cancel(ctx, middleware.GetUsername(ctx), chi.URLParam(r, "id")); err != nil {
		h.logWarn(ctx, "certificate cancel failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "Certificate request canceled successfully"})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.certificates.Delete(ctx, middleware.GetUsername(ctx), chi.URLParam(r, "id")); err != nil {
		h.logWarn(ctx, "certificate delete failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "Certificate deleted successfully"})
}

func (h *Handler) handleListPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pending, err := h.certificates.ListPending(ctx)
	if err != nil {
		h.logError(ctx, "pending certificates listing failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, pending)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cert, err := h.certificates.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.logWarn(ctx, "certificate fetch failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, cert)
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.certificates.UpdateStatus(ctx, chi.URLParam(r, "id"), req.Status); err != nil {
		h.logWarn(ctx, "certificate status update failed", err)
		shared.WriteError(w, err)
		return
	}

	if req.Status == StatusCompleted {
		h.metrics.CertificatesCompleted.Inc()
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "Certificate status updated successfully"})
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
