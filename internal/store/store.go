// Package store is the persistence boundary: every entity is a field map
// saved under a "<type>:<id>" key, plus named counters and set-valued keys
// for secondary indexes. The adapter carries no validation logic; callers
// treat an empty field map as "not found".
package store

import "context"

// Store is the entity store contract shared by the Redis implementation and
// the in-memory twin used in tests.
type Store interface {
	// PutFields writes the supplied fields of the record, leaving any other
	// fields untouched. All supplied fields land in one store operation.
	PutFields(ctx context.Context, entityType, id string, fields map[string]string) error

	// GetAll returns every field of the record, or an empty map when the
	// record does not exist.
	GetAll(ctx context.Context, entityType, id string) (map[string]string, error)

	// GetField returns a single field value, or "" when absent.
	GetField(ctx context.Context, entityType, id, field string) (string, error)

	// Delete removes the record and all its fields atomically.
	Delete(ctx context.Context, entityType, id string) error

	// ListIDs enumerates the IDs of every record of the given type. Set-valued
	// index keys sharing the prefix are excluded.
	ListIDs(ctx context.Context, entityType string) ([]string, error)

	// Incr atomically increments the named counter and returns the new value.
	Incr(ctx context.Context, counter string) (int64, error)

	// Set operations back secondary indexes such as the per-user
	// certificate ownership set.
	SetAdd(ctx context.Context, key, member string) error
	SetRemove(ctx context.Context, key, member string) error
	SetIsMember(ctx context.Context, key, member string) (bool, error)
	SetMembers(ctx context.Context, key string) ([]string, error)
}

// Key builds the composite record key.
func Key(entityType, id string) string {
	return entityType + ":" + id
}
