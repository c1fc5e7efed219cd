package store

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Record pairs an entity ID with its field map.
type Record struct {
	ID     string
	Fields map[string]string
}

// FetchAll enumerates every record of the given type, fanning out the
// per-key reads. Any single failed read fails the whole listing; presenting
// an incomplete listing as complete is worse than failing.
func FetchAll(ctx context.Context, st Store, entityType string) ([]Record, error) {
	ids, err := st.ListIDs(ctx, entityType)
	if err != nil {
		return nil, err
	}

	records := make([]Record, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			fields, err := st.GetAll(gctx, entityType, id)
			if err != nil {
				return err
			}
			records[i] = Record{ID: id, Fields: fields}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// MatchAny reports whether any field value (or the ID) contains the search
// term, case-insensitively. An empty term matches everything.
func MatchAny(rec Record, term string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	if strings.Contains(strings.ToLower(rec.ID), needle) {
		return true
	}
	for _, value := range rec.Fields {
		if strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}
	return false
}
