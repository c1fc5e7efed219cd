// Package announcement manages public announcements. Updates enforce the
// paired-fields rule: title and description change together or not at all.
package announcement

import (
	"context"

	"bims/internal/idgen"
	"bims/internal/store"
	dErrors "bims/pkg/domain-errors"
)

// EntityType is the store namespace for announcement records.
const EntityType = "announcement"

// Announcement is the typed view of an announcement field map.
type Announcement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Service struct {
	store store.Store
	ids   *idgen.Allocator
}

func NewService(st store.Store, ids *idgen.Allocator) *Service {
	return &Service{store: st, ids: ids}
}

// Create persists a new announcement. Both title and description are
// required.
func (s *Service) Create(ctx context.Context, title, description string) (string, error) {
	if title == "" || description == "" {
		return "", dErrors.New(dErrors.CodeValidation, "Title and description are required")
	}

	id, err := s.ids.NextID(ctx, idgen.CounterAnnouncement, idgen.WidthAnnouncement)
	if err != nil {
		return "", err
	}

	err = s.store.PutFields(ctx, EntityType, id, map[string]string{
		"id":          id,
		"title":       title,
		"description": description,
	})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to save announcement")
	}
	return id, nil
}

// Update replaces title and description together. Supplying one without the
// other is rejected without mutating the record.
func (s *Service) Update(ctx context.Context, id, title, description string) error {
	existing, err := s.store.GetAll(ctx, EntityType, id)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch announcement")
	}
	if len(existing) == 0 {
		return dErrors.New(dErrors.CodeNotFound, "Announcement not found")
	}

	if (title == "") != (description == "") {
		return dErrors.New(dErrors.CodeValidation, "Both title and description are required")
	}
	if title == "" {
		return nil
	}

	err = s.store.PutFields(ctx, EntityType, id, map[string]string{
		"title":       title,
		"description": description,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to update announcement")
	}
	return nil
}

// Get fetches one announcement by ID.
func (s *Service) Get(ctx context.Context, id string) (Announcement, error) {
	fields, err := s.store.GetAll(ctx, EntityType, id)
	if err != nil {
		return Announcement{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch announcement")
	}
	if len(fields) == 0 {
		return Announcement{}, dErrors.New(dErrors.CodeNotFound, "Announcement not found")
	}
	return Announcement{ID: id, Title: fields["title"], Description: fields["description"]}, nil
}

// List returns all announcements, optionally filtered by a case-insensitive
// substring match.
func (s *Service) List(ctx context.Context, search string) ([]Announcement, error) {
	records, err := store.FetchAll(ctx, s.store, EntityType)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list announcements")
	}

	announcements := make([]Announcement, 0, len(records))
	for _, rec := range records {
		if !store.MatchAny(rec, search) {
			continue
		}
		announcements = append(announcements, Announcement{
			ID:          rec.ID,
			Title:       rec.Fields["title"],
			Description: rec.Fields["description"],
		})
	}
	return announcements, nil
}

// Delete removes an announcement.
func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.store.GetAll(ctx, EntityType, id)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch announcement")
	}
	if len(existing) == 0 {
		return dErrors.New(dErrors.CodeNotFound, "Announcement not found")
	}
	if err := s.store.Delete(ctx, EntityType, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to delete announcement")
	}
	return nil
}
