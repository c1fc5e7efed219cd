//go:build integration

package store_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"bims/internal/store"
	"bims/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = store.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestFieldMapRoundTrip() {
	ctx := context.Background()

	fields := map[string]string{
		"id":        "2025-00001",
		"surname":   "Nisnisan",
		"firstName": "Loren",
	}
	s.Require().NoError(s.store.PutFields(ctx, "resident", "2025-00001", fields))

	got, err := s.store.GetAll(ctx, "resident", "2025-00001")
	s.Require().NoError(err)
	s.Equal(fields, got)

	s.Require().NoError(s.store.PutFields(ctx, "resident", "2025-00001", map[string]string{"surname": "Reyes"}))

	surname, err := s.store.GetField(ctx, "resident", "2025-00001", "surname")
	s.Require().NoError(err)
	s.Equal("Reyes", surname)

	firstName, err := s.store.GetField(ctx, "resident", "2025-00001", "firstName")
	s.Require().NoError(err)
	s.Equal("Loren", firstName, "partial update must not clear other fields")
}

func (s *RedisStoreSuite) TestGetAllMissingIsEmpty() {
	got, err := s.store.GetAll(context.Background(), "resident", "2025-99999")
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *RedisStoreSuite) TestListIDsSkipsIndexKeys() {
	ctx := context.Background()

	s.Require().NoError(s.store.PutFields(ctx, "user", "juan", map[string]string{"role": "user"}))
	s.Require().NoError(s.store.PutFields(ctx, "user", "maria", map[string]string{"role": "user"}))
	s.Require().NoError(s.store.SetAdd(ctx, "user:juan:certificates", "2025-00001"))

	ids, err := s.store.ListIDs(ctx, "user")
	s.Require().NoError(err)
	s.ElementsMatch([]string{"juan", "maria"}, ids)
}

// TestConcurrentIncr exercises the atomic counter under contention: N
// concurrent increments must hand out exactly {1..N}.
func (s *RedisStoreSuite) TestConcurrentIncr() {
	ctx := context.Background()

	const goroutines = 50
	var wg sync.WaitGroup
	seen := make([]atomic.Bool, goroutines+1)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := s.store.Incr(ctx, "residentIdCounter")
			s.NoError(err)
			if n >= 1 && n <= goroutines {
				if seen[n].Swap(true) {
					s.Failf("duplicate", "sequence %d handed out twice", n)
				}
			} else {
				s.Failf("out of range", "sequence %d", n)
			}
		}()
	}
	wg.Wait()

	for i := 1; i <= goroutines; i++ {
		s.True(seen[i].Load(), fmt.Sprintf("sequence %d missing", i))
	}
}

func (s *RedisStoreSuite) TestSetOperations() {
	ctx := context.Background()

	s.Require().NoError(s.store.SetAdd(ctx, "user:juan:certificates", "2025-00001"))
	s.Require().NoError(s.store.SetAdd(ctx, "user:juan:certificates", "2025-00002"))

	member, err := s.store.SetIsMember(ctx, "user:juan:certificates", "2025-00001")
	s.Require().NoError(err)
	s.True(member)

	member, err = s.store.SetIsMember(ctx, "user:maria:certificates", "2025-00001")
	s.Require().NoError(err)
	s.False(member, "membership is scoped per user")

	s.Require().NoError(s.store.SetRemove(ctx, "user:juan:certificates", "2025-00001"))

	members, err := s.store.SetMembers(ctx, "user:juan:certificates")
	s.Require().NoError(err)
	s.Equal([]string{"2025-00002"}, members)
}

func (s *RedisStoreSuite) TestDelete() {
	ctx := context.Background()

	s.Require().NoError(s.store.PutFields(ctx, "official", "2025-001", map[string]string{"name": "Juan"}))
	s.Require().NoError(s.store.Delete(ctx, "official", "2025-001"))

	got, err := s.store.GetAll(ctx, "official", "2025-001")
	s.Require().NoError(err)
	s.Empty(got)
}
