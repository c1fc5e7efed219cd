package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func (s *InMemoryStoreSuite) TestFieldMapRoundTrip() {
	ctx := context.Background()

	s.Run("absent record reads as empty map", func() {
		fields, err := s.store.GetAll(ctx, "resident", "2025-00001")
		s.NoError(err)
		s.Empty(fields)
		s.NotNil(fields)
	})

	s.Run("partial update leaves other fields untouched", func() {
		err := s.store.PutFields(ctx, "resident", "2025-00001", map[string]string{
			"surname":   "Nisnisan",
			"firstName": "Loren",
		})
		s.Require().NoError(err)

		err = s.store.PutFields(ctx, "resident", "2025-00001", map[string]string{
			"firstName": "Lorena",
		})
		s.Require().NoError(err)

		fields, err := s.store.GetAll(ctx, "resident", "2025-00001")
		s.NoError(err)
		s.Equal("Nisnisan", fields["surname"])
		s.Equal("Lorena", fields["firstName"])
	})

	s.Run("delete removes all fields at once", func() {
		err := s.store.Delete(ctx, "resident", "2025-00001")
		s.Require().NoError(err)

		fields, err := s.store.GetAll(ctx, "resident", "2025-00001")
		s.NoError(err)
		s.Empty(fields)
	})
}

func (s *InMemoryStoreSuite) TestListIDsSkipsIndexKeys() {
	ctx := context.Background()

	s.Require().NoError(s.store.PutFields(ctx, "user", "juan", map[string]string{"role": "user"}))
	s.Require().NoError(s.store.PutFields(ctx, "user", "maria", map[string]string{"role": "user"}))
	s.Require().NoError(s.store.SetAdd(ctx, "user:juan:certificates", "2025-00001"))

	ids, err := s.store.ListIDs(ctx, "user")
	s.NoError(err)
	s.Equal([]string{"juan", "maria"}, ids)
}

func (s *InMemoryStoreSuite) TestCounters() {
	ctx := context.Background()

	first, err := s.store.Incr(ctx, "residentIdCounter")
	s.NoError(err)
	s.Equal(int64(1), first)

	second, err := s.store.Incr(ctx, "residentIdCounter")
	s.NoError(err)
	s.Equal(int64(2), second)

	// Independent counters do not interfere.
	other, err := s.store.Incr(ctx, "officialIdCounter")
	s.NoError(err)
	s.Equal(int64(1), other)
}

func (s *InMemoryStoreSuite) TestSetOperations() {
	ctx := context.Background()
	key := "user:juan:certificates"

	ok, err := s.store.SetIsMember(ctx, key, "2025-00001")
	s.NoError(err)
	s.False(ok)

	s.Require().NoError(s.store.SetAdd(ctx, key, "2025-00001"))
	s.Require().NoError(s.store.SetAdd(ctx, key, "2025-00002"))

	ok, err = s.store.SetIsMember(ctx, key, "2025-00001")
	s.NoError(err)
	s.True(ok)

	members, err := s.store.SetMembers(ctx, key)
	s.NoError(err)
	s.Equal([]string{"2025-00001", "2025-00002"}, members)

	s.Require().NoError(s.store.SetRemove(ctx, key, "2025-00001"))
	members, err = s.store.SetMembers(ctx, key)
	s.NoError(err)
	s.Equal([]string{"2025-00002"}, members)
}
