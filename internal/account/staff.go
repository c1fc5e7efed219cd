package account

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	dErrors "bims/pkg/domain-errors"
)

// EntityTypeStaff is the store namespace for staff profiles.
const EntityTypeStaff = "staff"

// CreateStaff provisions a staff member: an approved user account plus a
// profile record keyed by creation timestamp. The two records are linked by
// username.
func (s *Service) CreateStaff(ctx context.Context, username, password, name, position string) (string, error) {
	if username == "" || password == "" || name == "" || position == "" {
		return "", dErrors.New(dErrors.CodeValidation, "Username, password, name and position are required")
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

	err = s.store.PutFields(ctx, EntityType, username, map[string]string{
		"password": string(hash),
		"role":     RoleStaff,
		"status":   StatusApproved,
	})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to store staff account")
	}

	createdAt := s.now().UTC()
	id := strconv.FormatInt(createdAt.UnixMilli(), 10)
	err = s.store.PutFields(ctx, EntityTypeStaff, id, map[string]string{
		"id":        id,
		"username":  username,
		"name":      name,
		"position":  position,
		"createdAt": createdAt.Format(time.RFC3339),
	})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to store staff profile")
	}
	return id, nil
}

// ListStaff returns all staff profiles.
func (s *Service) ListStaff(ctx context.Context) ([]Staff, error) {
	ids, err := s.store.ListIDs(ctx, EntityTypeStaff)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list staff")
	}

	staff := make([]Staff, 0, len(ids))
	for _, id := range ids {
		fields, err := s.store.GetAll(ctx, EntityTypeStaff, id)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch staff")
		}
		if len(fields) == 0 {
			continue
		}
		staff = append(staff, Staff{
			ID:        id,
			Username:  fields["username"],
			Name:      fields["name"],
			Position:  fields["position"],
			CreatedAt: fields["createdAt"],
		})
	}
	return staff, nil
}

// UpdateStaff changes a profile's name and/or position. The linked account
// and username are immutable.
func (s *Service) UpdateStaff(ctx context.Context, id, name, position string) error {
	existing, err := s.store.GetAll(ctx, EntityTypeStaff, id)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch staff")
	}
	if len(existing) == 0 {
		return dErrors.New(dErrors.CodeNotFound, "Staff not found")
	}

	fields := map[string]string{}
	if name != "" {
		fields["name"] = name
	}
	if position != "" {
		fields["position"] = position
	}
	if len(fields) == 0 {
		return nil
	}
	if err := s.store.PutFields(ctx, EntityTypeStaff, id, fields); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to update staff")
	}
	return nil
}

// DeleteStaff removes the profile and cascades to the linked user account.
func (s *Service) DeleteStaff(ctx context.Context, id string) error {
	existing, err := s.store.GetAll(ctx, EntityTypeStaff, id)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch staff")
	}
	if len(existing) == 0 {
		return dErrors.New(dErrors.CodeNotFound, "Staff not found")
	}

	if username := existing["username"]; username != "" {
		if err := s.store.Delete(ctx, EntityType, username); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to delete staff account")
		}
	}
	if err := s.store.Delete(ctx, EntityTypeStaff, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to delete staff profile")
	}
	return nil
}
