// Package account implements the user account lifecycle: registration with
// admin approval, login, and assignment of resident records to accounts.
//
// The resident assignment is a denormalized snapshot: the resident's fields
// are serialized into the user record at assignment time. Later edits to the
// resident do not propagate to the copy unless it is re-assigned. This
// mirrors long-standing observable behavior and must not be "fixed" into a
// live reference without a product decision.
package account

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"bims/internal/store"
	dErrors "bims/pkg/domain-errors"
)

// TokenIssuer issues signed credential tokens for authenticated sessions.
type TokenIssuer interface {
	GenerateToken(username, role string, assignedResident map[string]string, expiresIn time.Duration) (string, error)
}

// ResidentFetcher looks up a resident field map by ID; an empty map means
// the resident does not exist.
type ResidentFetcher interface {
	Fields(ctx context.Context, id string) (map[string]string, error)
}

// Service owns user records. The bootstrap admin username is held so
// listings can exclude it.
type Service struct {
	store         store.Store
	tokens        TokenIssuer
	residents     ResidentFetcher
	tokenTTL      time.Duration
	adminUsername string
	now           func() time.Time
}

// Option configures the service.
type Option func(*Service)

// WithClock overrides the wall clock used for staff profile IDs.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(st store.Store, tokens TokenIssuer, residents ResidentFetcher, tokenTTL time.Duration, adminUsername string, opts ...Option) *Service {
	s := &Service{
		store:         st,
		tokens:        tokens,
		residents:     residents,
		tokenTTL:      tokenTTL,
		adminUsername: adminUsername,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bootstrap materializes the default admin account if it is absent. Run once
// at process start; a second run is a no-op.
func (s *Service) Bootstrap(ctx context.Context, password string) error {
	existing, err := s.store.GetAll(ctx, EntityType, s.adminUsername)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to check admin account")
	}
	if len(existing) > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash admin password")
	}
	err = s.store.PutFields(ctx, EntityType, s.adminUsername, map[string]string{
		"password": string(hash),
		"role":     RoleAdmin,
		"status":   StatusApproved,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to create admin account")
	}
	return nil
}

// Register creates a user account. Accounts created by an admin are approved
// immediately; self-registrations wait for approval. An optional resident
// snapshot may be embedded at creation.
func (s *Service) Register(ctx context.Context, username, password string, isAdminCreated bool, assignedResident map[string]string) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", dErrors.New(dErrors.CodeValidation, "Username is required")
	}
	if password == "" {
		return "", dErrors.New(dErrors.CodeValidation, "Password is required")
	}

	existing, err := s.store.GetAll(ctx, EntityType, username)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to check username")
	}
	if len(existing) > 0 {
		return "", dErrors.New(dErrors.CodeConflict, "Username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	status := StatusPending
	if isAdminCreated {
		status = StatusApproved
	}

	fields := map[string]string{
		"password": string(hash),
		"role":     RoleUser,
		"status":   status,
	}
	if assignedResident != nil {
		snapshot, err := json.Marshal(assignedResident)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to serialize resident snapshot")
		}
		fields["assignedResident"] = string(snapshot)
	}

	if err := s.store.PutFields(ctx, EntityType, username, fields); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to store user")
	}
	return status, nil
}

// Login authenticates a user and issues a time-bounded credential token.
// The user agent, when supplied, is condensed into a device label recorded
// on the record.
func (s *Service) Login(ctx context.Context, username, password, userAgent string) (LoginResult, error) {
	user, err := s.store.GetAll(ctx, EntityType, username)
	if err != nil {
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch user")
	}
	if len(user) == 0 {
		return LoginResult{}, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials")
	}
	if user["status"] != StatusApproved {
		return LoginResult{}, dErrors.New(dErrors.CodeForbidden, "Your account is pending approval. Please wait for admin confirmation.")
	}
	if bcrypt.CompareHashAndPassword([]byte(user["password"]), []byte(password)) != nil {
		return LoginResult{}, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials")
	}

	assignedResident := decodeSnapshot(user["assignedResident"])

	marks := map[string]string{
		"loggedIn": "true",
		"username": username,
	}
	if device := deviceLabel(userAgent); device != "" {
		marks["lastDevice"] = device
	}
	if err := s.store.PutFields(ctx, EntityType, username, marks); err != nil {
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to mark login")
	}

	token, err := s.tokens.GenerateToken(username, user["role"], assignedResident, s.tokenTTL)
	if err != nil {
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	return LoginResult{
		Token:            token,
		Role:             user["role"],
		AssignedResident: assignedResident,
	}, nil
}

// UsernameExists reports whether the username is taken.
func (s *Service) UsernameExists(ctx context.Context, username string) (bool, error) {
	user, err := s.store.GetAll(ctx, EntityType, username)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to check username")
	}
	return len(user) > 0, nil
}

// PendingUsers lists accounts awaiting approval.
func (s *Service) PendingUsers(ctx context.Context) ([]PendingUser, error) {
	users, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]PendingUser, 0)
	for _, user := range users {
		if user.fields["status"] == StatusPending {
			pending = append(pending, PendingUser{Username: user.username, Role: user.fields["role"]})
		}
	}
	return pending, nil
}

// ActiveUsers lists accounts that have logged in, excluding the bootstrap
// admin, with their assignment state.
func (s *Service) ActiveUsers(ctx context.Context) ([]User, error) {
	users, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]User, 0)
	for _, user := range users {
		if user.fields["loggedIn"] != "true" || user.username == s.adminUsername {
			continue
		}
		active = append(active, User{
			Username:   user.username,
			Role:       user.fields["role"],
			Status:     user.fields["status"],
			LoggedIn:   true,
			IsAssigned: user.fields["assignedResident"] != "",
			LastDevice: user.fields["lastDevice"],
		})
	}
	return active, nil
}

// Approve flips a pending account to approved. Approved accounts never move
// back to pending.
func (s *Service) Approve(ctx context.Context, username string) error {
	if err := s.mustExist(ctx, username); err != nil {
		return err
	}
	if err := s.store.PutFields(ctx, EntityType, username, map[string]string{"status": StatusApproved}); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to approve user")
	}
	return nil
}

// Reject deletes a registration outright. Irreversible; no rejected state is
// retained.
func (s *Service) Reject(ctx context.Context, username string) error {
	if err := s.mustExist(ctx, username); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, EntityType, username); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to reject user")
	}
	return nil
}

// Assign serializes the resident's current fields into the user record.
// Overwrites any prior assignment; last write wins.
func (s *Service) Assign(ctx context.Context, username, residentID string) error {
	resident, err := s.residents.Fields(ctx, residentID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch resident")
	}
	if len(resident) == 0 {
		return dErrors.New(dErrors.CodeNotFound, "Resident not found")
	}
	snapshot, err := json.Marshal(resident)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to serialize resident snapshot")
	}
	if err := s.store.PutFields(ctx, EntityType, username, map[string]string{"assignedResident": string(snapshot)}); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to assign resident")
	}
	return nil
}

// AssignedResident returns the snapshot embedded in the user record.
func (s *Service) AssignedResident(ctx context.Context, username string) (map[string]string, error) {
	raw, err := s.store.GetField(ctx, EntityType, username, "assignedResident")
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch assignment")
	}
	snapshot := decodeSnapshot(raw)
	if snapshot == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "Assigned resident not found")
	}
	return snapshot, nil
}

// Delete removes a user account entirely.
func (s *Service) Delete(ctx context.Context, username string) error {
	if err := s.mustExist(ctx, username); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, EntityType, username); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to delete user")
	}
	return nil
}

// Account returns the authenticated user's own view of their record.
func (s *Service) Account(ctx context.Context, username string) (User, error) {
	user, err := s.store.GetAll(ctx, EntityType, username)
	if err != nil {
		return User{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch user")
	}
	if len(user) == 0 {
		return User{}, dErrors.New(dErrors.CodeNotFound, "User not found")
	}
	return User{
		Username:         username,
		Role:             user["role"],
		Status:           user["status"],
		LoggedIn:         user["loggedIn"] == "true",
		IsAssigned:       user["assignedResident"] != "",
		LastDevice:       user["lastDevice"],
		AssignedResident: decodeSnapshot(user["assignedResident"]),
	}, nil
}

type fetchedUser struct {
	username string
	fields   map[string]string
}

// fetchAll enumerates user IDs then fans out per-record reads. A single
// failed read fails the whole listing rather than dropping rows.
func (s *Service) fetchAll(ctx context.Context) ([]fetchedUser, error) {
	ids, err := s.store.ListIDs(ctx, EntityType)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list users")
	}

	users := make([]fetchedUser, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			fields, err := s.store.GetAll(gctx, EntityType, id)
			if err != nil {
				return err
			}
			users[i] = fetchedUser{username: id, fields: fields}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch users")
	}
	return users, nil
}

func (s *Service) mustExist(ctx context.Context, username string) error {
	user, err := s.store.GetAll(ctx, EntityType, username)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch user")
	}
	if len(user) == 0 {
		return dErrors.New(dErrors.CodeNotFound, "User not found")
	}
	return nil
}

func decodeSnapshot(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	var snapshot map[string]string
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return nil
	}
	return snapshot
}
