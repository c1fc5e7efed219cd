// Package idgen mints the year-scoped composite IDs used across the system.
// Sequence numbers come from store counters that never reset, so an ID is
// never reused even after the record it named is deleted.
package idgen

import (
	"context"
	"fmt"
	"time"

	dErrors "bims/pkg/domain-errors"
)

// Counter names, one per entity type with sequential IDs.
const (
	CounterResident     = "residentIdCounter"
	CounterOfficial     = "officialIdCounter"
	CounterAnnouncement = "announcementIdCounter"
	CounterCertificate  = "certificateIdCounter"
)

// Widths of the zero-padded sequence segment.
const (
	WidthResident     = 5
	WidthOfficial     = 3
	WidthAnnouncement = 5
	WidthCertificate  = 5
)

// Incrementer is the one store capability the allocator needs.
type Incrementer interface {
	Incr(ctx context.Context, counter string) (int64, error)
}

// Allocator produces globally unique human-readable IDs.
type Allocator struct {
	store Incrementer
	now   func() time.Time
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Allocator) { a.now = now }
}

func New(store Incrementer, opts ...Option) *Allocator {
	a := &Allocator{store: store, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NextID atomically increments the named counter and returns
// "<year>-<value zero-padded to width>". The increment happens before any
// record write, so a failed creation never leaves a partial record behind;
// the consumed sequence number is simply skipped.
func (a *Allocator) NextID(ctx context.Context, counter string, width int) (string, error) {
	seq, err := a.store.Incr(ctx, counter)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to allocate id")
	}
	return fmt.Sprintf("%d-%0*d", a.now().Year(), width, seq), nil
}
