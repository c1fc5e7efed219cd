// Package official manages the roster of barangay officials. Officials carry
// a narrower three-digit ID sequence and an optional photo, stored as a
// file-path reference only; upload mechanics live outside this service.
package official

import (
	"context"

	"bims/internal/idgen"
	"bims/internal/store"
	dErrors "bims/pkg/domain-errors"
)

// EntityType is the store namespace for official records.
const EntityType = "official"

type Service struct {
	store store.Store
	ids   *idgen.Allocator
}

func NewService(st store.Store, ids *idgen.Allocator) *Service {
	return &Service{store: st, ids: ids}
}

// Create validates the official data, allocates an ID and persists the
// record. The optional photo path rides along as a plain field.
func (s *Service) Create(ctx context.Context, data map[string]string) (string, error) {
	validated, err := Validate(data)
	if err != nil {
		return "", err
	}

	id, err := s.ids.NextID(ctx, idgen.CounterOfficial, idgen.WidthOfficial)
	if err != nil {
		return "", err
	}

	record := make(map[string]string, len(validated)+1)
	for field, value := range validated {
		record[field] = value
	}
	record["id"] = id

	if err := s.store.PutFields(ctx, EntityType, id, record); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to save official")
	}
	return id, nil
}

// List returns all officials, optionally filtered by a case-insensitive
// substring match across every field value.
func (s *Service) List(ctx context.Context, search string) ([]map[string]string, error) {
	records, err := store.FetchAll(ctx, s.store, EntityType)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list officials")
	}

	officials := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		if !store.MatchAny(rec, search) {
			continue
		}
		rec.Fields["id"] = rec.ID
		officials = append(officials, rec.Fields)
	}
	return officials, nil
}

// Get fetches one official by ID.
func (s *Service) Get(ctx context.Context, id string) (map[string]string, error) {
	fields, err := s.store.GetAll(ctx, EntityType, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch official")
	}
	if len(fields) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "Official not found")
	}
	return fields, nil
}

// Update writes only the supplied fields. The ID is immutable.
func (s *Service) Update(ctx context.Context, id string, fields map[string]string) error {
	existing, err := s.store.GetAll(ctx, EntityType, id)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch official")
	}
	if len(existing) == 0 {
		return dErrors.New(dErrors.CodeNotFound, "Official not found")
	}

	delete(fields, "id")
	if len(fields) == 0 {
		return nil
	}
	if err := s.store.PutFields(ctx, EntityType, id, fields); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to update official")
	}
	return nil
}

// Delete removes an official record.
func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.store.GetAll(ctx, EntityType, id)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch official")
	}
	if len(existing) == 0 {
		return dErrors.New(dErrors.CodeNotFound, "Official not found")
	}
	if err := s.store.Delete(ctx, EntityType, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to delete official")
	}
	return nil
}
