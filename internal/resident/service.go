// Package resident manages the registry of barangay residents: validated
// creation with year-scoped IDs, search, partial updates, and bulk CSV
// import.
package resident

import (
	"context"
	"log/slog"

	"bims/internal/idgen"
	"bims/internal/store"
	dErrors "bims/pkg/domain-errors"
)

// EntityType is the store namespace for resident records.
const EntityType = "resident"

type Service struct {
	store  store.Store
	ids    *idgen.Allocator
	logger *slog.Logger
}

func NewService(st store.Store, ids *idgen.Allocator, logger *slog.Logger) *Service {
	return &Service{store: st, ids: ids, logger: logger}
}

// Create validates the resident data, allocates an ID and persists the
// record. Validation runs before allocation so a rejected record never
// consumes a sequence number.
func (s *Service) Create(ctx context.Context, data map[string]string) (string, error) {
	validated, err := Validate(data)
	if err != nil {
		return "", err
	}

	id, err := s.ids.NextID(ctx, idgen.CounterResident, idgen.WidthResident)
	if err != nil {
		return "", err
	}

	record := make(map[string]string, len(validated)+1)
	for field, value := range validated {
		record[field] = value
	}
	record["id"] = id

	if err := s.store.PutFields(ctx, EntityType, id, record); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to save resident")
	}
	return id, nil
}

// List returns all residents, optionally filtered by a case-insensitive
// substring match across every field value.
func (s *Service) List(ctx context.Context, search string) ([]map[string]string, error) {
	records, err := store.FetchAll(ctx, s.store, EntityType)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list residents")
	}

	residents := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		if !store.MatchAny(rec, search) {
			continue
		}
		rec.Fields["id"] = rec.ID
		residents = append(residents, rec.Fields)
	}
	return residents, nil
}

// Get fetches one resident by ID.
func (s *Service) Get(ctx context.Context, id string) (map[string]string, error) {
	fields, err := s.store.GetAll(ctx, EntityType, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch resident")
	}
	if len(fields) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "Resident not found")
	}
	return fields, nil
}

// Update writes only the supplied fields, leaving others untouched. The ID
// is immutable once assigned.
func (s *Service) Update(ctx context.Context, id string, fields map[string]string) error {
	existing, err := s.store.GetAll(ctx, EntityType, id)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch resident")
	}
	if len(existing) == 0 {
		return dErrors.New(dErrors.CodeNotFound, "Resident not found")
	}

	delete(fields, "id")
	if len(fields) == 0 {
		return nil
	}
	if err := s.store.PutFields(ctx, EntityType, id, fields); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to update resident")
	}
	return nil
}

// Delete removes a resident record. The consumed ID is never reused.
func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.store.GetAll(ctx, EntityType, id)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch resident")
	}
	if len(existing) == 0 {
		return dErrors.New(dErrors.CodeNotFound, "Resident not found")
	}
	if err := s.store.Delete(ctx, EntityType, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to delete resident")
	}
	return nil
}

// Fields returns the raw field map (empty when absent). Satisfies the
// account service's ResidentFetcher for assignment snapshots.
func (s *Service) Fields(ctx context.Context, id string) (map[string]string, error) {
	return s.store.GetAll(ctx, EntityType, id)
}
