package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemoryStore is the test twin of RedisStore. It intentionally favors
// clarity over performance.
type InMemoryStore struct {
	mu       sync.RWMutex
	hashes   map[string]map[string]string
	sets     map[string]map[string]struct{}
	counters map[string]int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		hashes:   make(map[string]map[string]string),
		sets:     make(map[string]map[string]struct{}),
		counters: make(map[string]int64),
	}
}

func (s *InMemoryStore) PutFields(_ context.Context, entityType, id string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := Key(entityType, id)
	record, ok := s.hashes[key]
	if !ok {
		record = make(map[string]string, len(fields))
		s.hashes[key] = record
	}
	for field, value := range fields {
		record[field] = value
	}
	return nil
}

func (s *InMemoryStore) GetAll(_ context.Context, entityType, id string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record := s.hashes[Key(entityType, id)]
	out := make(map[string]string, len(record))
	for field, value := range record {
		out[field] = value
	}
	return out, nil
}

func (s *InMemoryStore) GetField(_ context.Context, entityType, id, field string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hashes[Key(entityType, id)][field], nil
}

func (s *InMemoryStore) Delete(_ context.Context, entityType, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hashes, Key(entityType, id))
	return nil
}

func (s *InMemoryStore) ListIDs(_ context.Context, entityType string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefix := entityType + ":"
	var ids []string
	for key := range s.hashes {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		id := strings.TrimPrefix(key, prefix)
		if strings.Contains(id, ":") {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *InMemoryStore) Incr(_ context.Context, counter string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[counter]++
	return s.counters[counter], nil
}

func (s *InMemoryStore) SetAdd(_ context.Context, key, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]struct{})
		s.sets[key] = set
	}
	set[member] = struct{}{}
	return nil
}

func (s *InMemoryStore) SetRemove(_ context.Context, key, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sets[key], member)
	return nil
}

func (s *InMemoryStore) SetIsMember(_ context.Context, key, member string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sets[key][member]
	return ok, nil
}

func (s *InMemoryStore) SetMembers(_ context.Context, key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := make([]string, 0, len(s.sets[key]))
	for member := range s.sets[key] {
		members = append(members, member)
	}
	sort.Strings(members)
	return members, nil
}
