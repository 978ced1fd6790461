// Package memory provides a process-local registry store for tests and
// ephemeral deployments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/event"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/registry"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/token"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage/integrity"
)

// Store keeps registry state and its journal in memory.
type Store struct {
	keyring *integrity.Keyring

	mu          sync.RWMutex
	initialized bool
	authority   token.Address
	nextID      token.ID
	tokens      map[token.ID]token.Token
	operators   map[token.OperatorKey]token.OperatorApproval
	events      []event.Event
	// failNext makes the next Commit fail, for exercising rollback paths.
	failNext error
}

// New returns an empty store. keyring may be nil.
func New(keyring *integrity.Keyring) *Store {
	return &Store{
		keyring:   keyring,
		tokens:    make(map[token.ID]token.Token),
		operators: make(map[token.OperatorKey]token.OperatorApproval),
	}
}

// FailNextCommit makes the next Commit return err without persisting anything.
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

// Load implements registry.Store.
func (s *Store) Load(ctx context.Context) (registry.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return registry.Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := registry.Snapshot{
		Initialized: s.initialized,
		Authority:   s.authority,
		NextID:      s.nextID,
		LastSeq:     s.lastSeqLocked(),
	}
	for _, tok := range s.tokens {
		snapshot.Tokens = append(snapshot.Tokens, tok)
	}
	sort.Slice(snapshot.Tokens, func(i, j int) bool { return snapshot.Tokens[i].ID < snapshot.Tokens[j].ID })
	for _, approval := range s.operators {
		snapshot.Operators = append(snapshot.Operators, approval)
	}
	return snapshot, nil
}

// Commit implements registry.Store.
func (s *Store) Commit(ctx context.Context, change registry.Change) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return nil, err
	}

	head := integrity.Head{Seq: s.lastSeqLocked()}
	if n := len(s.events); n > 0 {
		head.ChainHash = s.events[n-1].ChainHash
	}
	sealed, err := integrity.Seal(head, change.Events, s.keyring)
	if err != nil {
		return nil, fmt.Errorf("seal events: %w", err)
	}

	s.initialized = true
	s.authority = change.Authority
	s.nextID = change.NextID
	for _, tok := range change.Tokens {
		s.tokens[tok.ID] = tok
	}
	for _, approval := range change.Operators {
		if approval.Approved {
			s.operators[approval.Key()] = approval
		} else {
			delete(s.operators, approval.Key())
		}
	}
	s.events = append(s.events, sealed...)
	return sealed, nil
}

// ListEvents implements storage.EventLog.
func (s *Store) ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Seq is 1-based and contiguous, so seq n lives at index n-1.
	if afterSeq >= uint64(len(s.events)) {
		return nil, nil
	}
	end := min(int(afterSeq)+limit, len(s.events))
	out := make([]event.Event, end-int(afterSeq))
	copy(out, s.events[afterSeq:end])
	return out, nil
}

// LatestSeq implements storage.EventLog.
func (s *Store) LatestSeq(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeqLocked(), nil
}

// Close implements storage.Backend.
func (s *Store) Close() error {
	return nil
}

func (s *Store) lastSeqLocked() uint64 {
	if n := len(s.events); n > 0 {
		return s.events[n-1].Seq
	}
	return 0
}

var _ storage.Backend = (*Store)(nil)
