package idgen

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bims/internal/store"
)

type AllocatorSuite struct {
	suite.Suite
	alloc *Allocator
}

func TestAllocatorSuite(t *testing.T) {
	suite.Run(t, new(AllocatorSuite))
}

func (s *AllocatorSuite) SetupTest() {
	fixed := time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)
	s.alloc = New(store.NewInMemoryStore(), WithClock(func() time.Time { return fixed }))
}

func (s *AllocatorSuite) TestFormat() {
	ctx := context.Background()

	s.Run("resident ids are five digits wide", func() {
		id, err := s.alloc.NextID(ctx, CounterResident, WidthResident)
		s.NoError(err)
		s.Equal("2025-00001", id)
	})

	s.Run("official ids are three digits wide", func() {
		id, err := s.alloc.NextID(ctx, CounterOfficial, WidthOfficial)
		s.NoError(err)
		s.Equal("2025-001", id)

		id, err = s.alloc.NextID(ctx, CounterOfficial, WidthOfficial)
		s.NoError(err)
		s.Equal("2025-002", id)
	})

	s.Run("counters are independent per entity type", func() {
		id, err := s.alloc.NextID(ctx, CounterAnnouncement, WidthAnnouncement)
		s.NoError(err)
		s.Equal("2025-00001", id)
	})
}

func (s *AllocatorSuite) TestConcurrentAllocationsAreGapFree() {
	const n = 100
	ctx := context.Background()

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[string]struct{}, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.alloc.NextID(ctx, CounterCertificate, WidthCertificate)
			s.NoError(err)
			mu.Lock()
			ids[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	// Exactly {1..n}, no duplicates or gaps regardless of interleaving.
	s.Len(ids, n)
	for seq := 1; seq <= n; seq++ {
		s.Contains(ids, fmt.Sprintf("2025-%05d", seq))
	}
}
