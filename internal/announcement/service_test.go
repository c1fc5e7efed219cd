package announcement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bims/internal/idgen"
	"bims/internal/store"
	dErrors "bims/pkg/domain-errors"
)

type AnnouncementServiceSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	service *Service
}

func TestAnnouncementServiceSuite(t *testing.T) {
	suite.Run(t, new(AnnouncementServiceSuite))
}

func (s *AnnouncementServiceSuite) SetupTest() {
	s.store = store.NewInMemoryStore()
	fixed := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	alloc := idgen.New(s.store, idgen.WithClock(func() time.Time { return fixed }))
	s.service = NewService(s.store, alloc)
}

func (s *AnnouncementServiceSuite) TestCreate() {
	ctx := context.Background()

	s.Run("both fields required", func() {
		_, err := s.service.Create(ctx, "Fiesta schedule", "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = s.service.Create(ctx, "", "Road closed on Saturday.")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("valid announcement gets a year-scoped id", func() {
		id, err := s.service.Create(ctx, "Fiesta schedule", "Parade starts at 8 AM.")
		s.Require().NoError(err)
		s.Equal("2025-00001", id)

		got, err := s.service.Get(ctx, id)
		s.Require().NoError(err)
		s.Equal("Fiesta schedule", got.Title)
		s.Equal("Parade starts at 8 AM.", got.Description)
	})
}

func (s *AnnouncementServiceSuite) TestUpdatePairedFields() {
	ctx := context.Background()
	id, err := s.service.Create(ctx, "Fiesta schedule", "Parade starts at 8 AM.")
	s.Require().NoError(err)

	s.Run("title without description is rejected", func() {
		err := s.service.Update(ctx, id, "New title", "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "Both title and description are required")

		got, getErr := s.service.Get(ctx, id)
		s.Require().NoError(getErr)
		s.Equal("Fiesta schedule", got.Title, "record must not change on rejected update")
	})

	s.Run("description without title is rejected", func() {
		err := s.service.Update(ctx, id, "", "New description")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("both fields set succeeds", func() {
		s.Require().NoError(s.service.Update(ctx, id, "Updated schedule", "Parade moved to 9 AM."))

		got, err := s.service.Get(ctx, id)
		s.Require().NoError(err)
		s.Equal("Updated schedule", got.Title)
		s.Equal("Parade moved to 9 AM.", got.Description)
	})

	s.Run("both fields empty is a no-op", func() {
		s.Require().NoError(s.service.Update(ctx, id, "", ""))

		got, err := s.service.Get(ctx, id)
		s.Require().NoError(err)
		s.Equal("Updated schedule", got.Title)
	})

	s.Run("unknown id is not found", func() {
		err := s.service.Update(ctx, "2025-99999", "a", "b")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *AnnouncementServiceSuite) TestListAndSearch() {
	ctx := context.Background()
	_, err := s.service.Create(ctx, "Fiesta schedule", "Parade starts at 8 AM.")
	s.Require().NoError(err)
	_, err = s.service.Create(ctx, "Water interruption", "Purok 3 supply cut on Monday.")
	s.Require().NoError(err)

	all, err := s.service.List(ctx, "")
	s.Require().NoError(err)
	s.Len(all, 2)

	matched, err := s.service.List(ctx, "purok 3")
	s.Require().NoError(err)
	s.Require().Len(matched, 1)
	s.Equal("Water interruption", matched[0].Title)
}

func (s *AnnouncementServiceSuite) TestDelete() {
	ctx := context.Background()
	id, err := s.service.Create(ctx, "Fiesta schedule", "Parade starts at 8 AM.")
	s.Require().NoError(err)

	s.Require().NoError(s.service.Delete(ctx, id))

	_, err = s.service.Get(ctx, id)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	err = s.service.Delete(ctx, id)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
