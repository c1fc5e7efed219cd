package account

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bims/internal/platform/metrics"
	"bims/internal/platform/middleware"
	"bims/internal/transport/http/shared"
	dErrors "bims/pkg/domain-errors"
)

// AccountService defines the account operations the handler needs.
type AccountService interface {
	Register(ctx context.Context, username, password string, isAdminCreated bool, assignedResident map[string]string) (string, error)
	Login(ctx context.Context, username, password, userAgent string) (LoginResult, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	PendingUsers(ctx context.Context) ([]PendingUser, error)
	ActiveUsers(ctx context.Context) ([]User, error)
	Approve(ctx context.Context, username string) error
	Reject(ctx context.Context, username string) error
	Assign(ctx context.Context, username, residentID string) error
	AssignedResident(ctx context.Context, username string) (map[string]string, error)
	Delete(ctx context.Context, username string) error
	Account(ctx context.Context, username string) (User, error)
	CreateStaff(ctx context.Context, username, password, name, position string) (string, error)
	ListStaff(ctx context.Context) ([]Staff, error)
	UpdateStaff(ctx context.Context, id, name, position string) error
	DeleteStaff(ctx context.Context, id string) error
}

// Handler handles account endpoints.
type Handler struct {
	logger    *slog.Logger
	accounts  AccountService
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

func New(accounts AccountService, logger *slog.Logger, m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		accounts:  accounts,
		metrics:   m,
		validator: validator,
	}
}

type registerRequest struct {
	Username         string            `json:"username"`
	Password         string            `json:"password"`
	IsAdminCreated   bool              `json:"isAdminCreated"`
	AssignedResident map[string]string `json:"assignedResident"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type assignRequest struct {
	ResidentID string `json:"residentId"`
}

type staffRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Position string `json:"position"`
}

// Register registers the account routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Get("/check-username/{username}", h.handleCheckUsername)
		r.Get("/account", h.handleAccount)
		r.Get("/assigned-resident/{username}", h.handleAssignedResident)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Use(middleware.RequireRole(h.logger, RoleAdmin))
		r.Get("/pending-users", h.handlePendingUsers)
		r.Get("/users", h.handleActiveUsers)
		r.Put("/users/{username}/approve", h.handleApprove)
		r.Delete("/users/{username}/reject", h.handleReject)
		r.Put("/users/{username}/assign", h.handleAssign)
		r.Delete("/users/{username}", h.handleDelete)
		r.Post("/staff", h.handleCreateStaff)
		r.Get("/staff", h.handleListStaff)
		r.Put("/staff/{id}", h.handleUpdateStaff)
		r.Delete("/staff/{id}", h.handleDeleteStaff)
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	status, err := h.accounts.Register(ctx, req.Username, req.Password, req.IsAdminCreated, req.AssignedResident)
	if err != nil {
		h.logWarn(ctx, "register failed", err)
		shared.WriteError(w, err)
		return
	}

	h.metrics.UsersRegistered.Inc()
	shared.WriteJSON(w, http.StatusCreated, map[string]string{
		"message": "User registered successfully",
		"status":  status,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Username == "" || req.Password == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "Username and password are required"))
		return
	}

	result, err := h.accounts.Login(ctx, req.Username, req.Password, r.UserAgent())
	if err != nil {
		h.logWarn(ctx, "login failed", err)
		shared.WriteError(w, err)
		return
	}

	h.metrics.Logins.Inc()
	shared.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCheckUsername(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	exists, err := h.accounts.UsernameExists(ctx, chi.URLParam(r, "username"))
	if err != nil {
		h.logError(ctx, "username check failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

func (h *Handler) handleAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.accounts.Account(ctx, middleware.GetUsername(ctx))
	if err != nil {
		h.logWarn(ctx, "account fetch failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleAssignedResident(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snapshot, err := h.accounts.AssignedResident(ctx, chi.URLParam(r, "username"))
	if err != nil {
		h.logWarn(ctx, "assigned resident fetch failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) handlePendingUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pending, err := h.accounts.PendingUsers(ctx)
	if err != nil {
		h.logError(ctx, "pending users listing failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, pending)
}

func (h *Handler) handleActiveUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.accounts.ActiveUsers(ctx)
	if err != nil {
		h.logError(ctx, "active users listing failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.accounts.Approve(ctx, chi.URLParam(r, "username")); err != nil {
		h.logWarn(ctx, "approve failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "User approved successfully"})
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.accounts.Reject(ctx, chi.URLParam(r, "username")); err != nil {
		h.logWarn(ctx, "reject failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "User rejected successfully"})
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	username := chi.URLParam(r, "username")
	if err := h.accounts.Assign(ctx, username, req.ResidentID); err != nil {
		h.logWarn(ctx, "assign failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "Resident assigned successfully to " + username})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.accounts.Delete(ctx, chi.URLParam(r, "username")); err != nil {
		h.logWarn(ctx, "delete user failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

func (h *Handler) handleCreateStaff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	id, err := h.accounts.CreateStaff(ctx, req.Username, req.Password, req.Name, req.Position)
	if err != nil {
		h.logWarn(ctx, "staff create failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]string{
		"message": "Staff added successfully",
		"id":      id,
	})
}

func (h *Handler) handleListStaff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	staff, err := h.accounts.ListStaff(ctx)
	if err != nil {
		h.logError(ctx, "staff listing failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, staff)
}

func (h *Handler) handleUpdateStaff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.accounts.UpdateStaff(ctx, chi.URLParam(r, "id"), req.Name, req.Position); err != nil {
		h.logWarn(ctx, "staff update failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "Staff updated successfully"})
}

func (h *Handler) handleDeleteStaff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.accounts.DeleteStaff(ctx, chi.URLParam(r, "id")); err != nil {
		h.logWarn(ctx, "staff delete failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "Staff deleted successfully"})
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
