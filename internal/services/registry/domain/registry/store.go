package registry

import (
	"context"

	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/event"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/token"
)

// Snapshot is the durable registry state a store loads at startup.
type Snapshot struct {
	// Initialized is false until the genesis change has been committed.
	Initialized bool
	Authority   token.Address
	NextID      token.ID
	Tokens      []token.Token
	Operators   []token.OperatorApproval
	LastSeq     uint64
}

// Change is one atomic registry mutation.
type Change struct {
	// Authority is the administrative authority after the change.
	Authority token.Address
	// NextID is the next id to allocate after the change.
	NextID token.ID
	// Tokens are full records to upsert.
	Tokens []token.Token
	// Operators are approvals to upsert; Approved=false removes the pair.
	Operators []token.OperatorApproval
	// Events are drafted, unsequenced journal entries in emission order.
	Events []event.Event
}

// Store persists registry changes. Commit applies a change atomically and
// returns its events with sequence and integrity fields assigned. When Commit
// fails nothing has been persisted.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Commit(ctx context.Context, change Change) ([]event.Event, error)
}

// Publisher receives committed events after they are applied in memory.
type Publisher interface {
	Publish(events []event.Event)
}

// Recorder observes registry activity for operational metrics.
type Recorder interface {
	ObserveEvent(eventType string, seq uint64)
	SetTokenCount(count uint64)
}
