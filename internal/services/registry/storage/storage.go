// Package storage defines persistence contracts for registry state and its
// event journal.
package storage

import (
	"context"
	"errors"

	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/event"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/registry"
)

var (
	// ErrNotConfigured indicates a store method was called on a nil or closed store.
	ErrNotConfigured = errors.New("storage is not configured")
	// ErrSequenceConflict indicates another writer committed to the journal first.
	ErrSequenceConflict = errors.New("event sequence conflict")
)

// EventLog reads the committed event journal in sequence order.
type EventLog interface {
	// ListEvents returns up to limit events with Seq > afterSeq.
	ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]event.Event, error)
	// LatestSeq returns the sequence of the last committed event, 0 when empty.
	LatestSeq(ctx context.Context) (uint64, error)
}

// Backend is a complete registry persistence implementation.
type Backend interface {
	registry.Store
	EventLog
	Close() error
}
