// Package registry implements the token registry: id allocation, creator and
// royalty bookkeeping, and the access rules gating every mutation.
//
// Each mutation runs under one write lock: validate, build a Change, commit it
// to the Store, then apply it in memory and publish the committed events. A
// failed commit leaves memory untouched.
package registry

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	platformotel "github.com/Douglas360/smart-contracts/internal/platform/otel"
	"github.com/Douglas360/smart-contracts/internal/platform/requestctx"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/custody"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/event"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/token"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Info summarizes registry state.
type Info struct {
	Authority  token.Address
	NextID     token.ID
	TokenCount uint64
	LastSeq    uint64
}

// Registry owns all token state. It is safe for concurrent use.
type Registry struct {
	store     Store
	custodian custody.Custodian
	clock     func() time.Time
	publisher Publisher
	recorder  Recorder
	tracer    trace.Tracer

	mu        sync.RWMutex
	authority token.Address
	nextID    token.ID
	lastSeq   uint64
	tokens    map[token.ID]token.Token
	balances  map[token.Address]uint64
	operators map[token.OperatorKey]struct{}
}

// Option configures a Registry.
type Option func(*Registry)

// WithCustodian replaces the default custodian.
func WithCustodian(c custody.Custodian) Option {
	return func(r *Registry) {
		if c != nil {
			r.custodian = c
		}
	}
}

// WithClock sets the time source for event timestamps.
func WithClock(clock func() time.Time) Option {
	return func(r *Registry) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithPublisher sets the receiver of committed events.
func WithPublisher(p Publisher) Option {
	return func(r *Registry) {
		r.publisher = p
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Registry) {
		r.recorder = rec
	}
}

// Open loads state from store. An empty store is initialized with authority
// as the administrative authority; otherwise the persisted authority wins.
func Open(ctx context.Context, store Store, authority token.Address, opts ...Option) (*Registry, error) {
	if store == nil {
		return nil, fmt.Errorf("registry store is required")
	}
	r := &Registry{
		store:     store,
		custodian: custody.Standard{},
		clock:     time.Now,
		tracer:    platformotel.Tracer("registry"),
		nextID:    token.FirstID,
		tokens:    make(map[token.ID]token.Token),
		balances:  make(map[token.Address]uint64),
		operators: make(map[token.OperatorKey]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	snapshot, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	if !snapshot.Initialized {
		if err := r.initialize(ctx, authority); err != nil {
			return nil, err
		}
		return r, nil
	}

	r.restore(snapshot)
	if !authority.IsZero() && authority != r.authority {
		log.Printf("configured authority %q ignored; persisted authority is %q", authority, r.authority)
	}
	return r, nil
}

func (r *Registry) initialize(ctx context.Context, authority token.Address) error {
	if authority.IsZero() {
		return token.InvalidArgument("authority", "administrative authority is required")
	}
	evt, err := event.New(event.TypeRegistryInitialized, r.clock(), authority, 0, event.RegistryInitialized{Authority: authority})
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commitLocked(ctx, Change{
		Authority: authority,
		NextID:    token.FirstID,
		Events:    []event.Event{evt},
	})
}

func (r *Registry) restore(snapshot Snapshot) {
	r.authority = snapshot.Authority
	r.nextID = snapshot.NextID
	if r.nextID < token.FirstID {
		r.nextID = token.FirstID
	}
	r.lastSeq = snapshot.LastSeq
	for _, tok := range snapshot.Tokens {
		r.tokens[tok.ID] = tok
		r.balances[tok.Holder]++
	}
	for _, approval := range snapshot.Operators {
		if approval.Approved {
			r.operators[approval.Key()] = struct{}{}
		}
	}
	if r.recorder != nil {
		r.recorder.SetTokenCount(uint64(len(r.tokens)))
	}
}

// Mint creates a token held and created by to. Only the authority may mint.
func (r *Registry) Mint(ctx context.Context, caller, to token.Address, metadataURI string, royaltyRate uint64) (id token.ID, err error) {
	ctx, span := r.startSpan(ctx, "Mint", caller)
	defer func() { endSpan(span, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if caller.IsZero() || caller != r.authority {
		return 0, token.Unauthorized("mint", caller)
	}
	if to.IsZero() {
		return 0, token.InvalidArgument("to", "recipient address is required")
	}
	// The last id is reserved so nextID never wraps onto an existing token.
	if r.nextID == math.MaxUint64 {
		return 0, token.InvalidArgument("token id", "id space exhausted")
	}

	now := r.clock().UTC()
	id = r.nextID
	minted := token.Token{
		ID:          id,
		Holder:      to,
		Creator:     to,
		MetadataURI: metadataURI,
		RoyaltyRate: royaltyRate,
		MintedAt:    now,
		UpdatedAt:   now,
	}
	move, err := r.custodian.Issue(now, caller, minted)
	if err != nil {
		return 0, err
	}
	mintedEvt, err := event.New(event.TypeMinted, now, caller, id, event.Minted{
		ID:          id,
		Creator:     to,
		RoyaltyRate: royaltyRate,
	})
	if err != nil {
		return 0, err
	}

	change := r.changeFromMove(move)
	change.NextID = id + 1
	change.Events = append(change.Events, mintedEvt)
	if err := r.commitLocked(ctx, change); err != nil {
		return 0, err
	}
	span.SetAttributes(attribute.Int64("registry.token_id", int64(id)))
	return id, nil
}

// UpdateRoyalty overwrites the royalty rate of id. The authority and the
// token's creator may update it; the holder may not unless they are the creator.
func (r *Registry) UpdateRoyalty(ctx context.Context, caller token.Address, id token.ID, newRate uint64) (err error) {
	ctx, span := r.startSpan(ctx, "UpdateRoyalty", caller)
	defer func() { endSpan(span, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	tok, ok := r.tokens[id]
	if !ok {
		return token.NotFound(id)
	}
	if caller.IsZero() || (caller != r.authority && caller != tok.Creator) {
		return token.Unauthorized("update royalty", caller)
	}

	now := r.clock().UTC()
	tok.RoyaltyRate = newRate
	tok.UpdatedAt = now
	evt, err := event.New(event.TypeRoyaltyUpdated, now, caller, id, event.RoyaltyUpdated{ID: id, NewRate: newRate})
	if err != nil {
		return err
	}
	return r.commitLocked(ctx, Change{
		Authority: r.authority,
		NextID:    r.nextID,
		Tokens:    []token.Token{tok},
		Events:    []event.Event{evt},
	})
}

// Transfer moves id from from to to. The custodian authorizes the move and
// records its own transfer event; the registry then records Transferred.
func (r *Registry) Transfer(ctx context.Context, caller, from, to token.Address, id token.ID) (err error) {
	ctx, span := r.startSpan(ctx, "Transfer", caller)
	defer func() { endSpan(span, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[id]; !ok {
		return token.NotFound(id)
	}
	now := r.clock().UTC()
	move, err := r.custodian.Transfer(r.bookLocked(), now, caller, from, to, id)
	if err != nil {
		return err
	}
	evt, err := event.New(event.TypeTransferred, now, caller, id, event.Transferred{ID: id, From: from, To: to})
	if err != nil {
		return err
	}
	change := r.changeFromMove(move)
	change.Events = append(change.Events, evt)
	return r.commitLocked(ctx, change)
}

// SetMetadata overwrites the metadata reference of id. Only the authority may
// set metadata. No event is recorded.
func (r *Registry) SetMetadata(ctx context.Context, caller token.Address, id token.ID, metadataURI string) (err error) {
	ctx, span := r.startSpan(ctx, "SetMetadata", caller)
	defer func() { endSpan(span, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if caller.IsZero() || caller != r.authority {
		return token.Unauthorized("set metadata", caller)
	}
	tok, ok := r.tokens[id]
	if !ok {
		return token.NotFound(id)
	}
	tok.MetadataURI = metadataURI
	tok.UpdatedAt = r.clock().UTC()
	return r.commitLocked(ctx, Change{
		Authority: r.authority,
		NextID:    r.nextID,
		Tokens:    []token.Token{tok},
	})
}

// Approve sets or clears the address allowed to transfer id on the holder's behalf.
func (r *Registry) Approve(ctx context.Context, caller, approved token.Address, id token.ID) (err error) {
	ctx, span := r.startSpan(ctx, "Approve", caller)
	defer func() { endSpan(span, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[id]; !ok {
		return token.NotFound(id)
	}
	move, err := r.custodian.Approve(r.bookLocked(), r.clock().UTC(), caller, approved, id)
	if err != nil {
		return err
	}
	return r.commitLocked(ctx, r.changeFromMove(move))
}

// SetApprovalForAll grants or revokes operator rights over all of caller's tokens.
func (r *Registry) SetApprovalForAll(ctx context.Context, caller, operator token.Address, approved bool) (err error) {
	ctx, span := r.startSpan(ctx, "SetApprovalForAll", caller)
	defer func() { endSpan(span, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	move, err := r.custodian.SetApprovalForAll(r.clock().UTC(), caller, operator, approved)
	if err != nil {
		return err
	}
	return r.commitLocked(ctx, r.changeFromMove(move))
}

// TransferAuthority hands administrative authority to next.
func (r *Registry) TransferAuthority(ctx context.Context, caller, next token.Address) (err error) {
	ctx, span := r.startSpan(ctx, "TransferAuthority", caller)
	defer func() { endSpan(span, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if caller.IsZero() || caller != r.authority {
		return token.Unauthorized("transfer authority", caller)
	}
	if next.IsZero() {
		return token.InvalidArgument("authority", "new authority address is required")
	}
	evt, err := event.New(event.TypeAuthorityTransferred, r.clock().UTC(), caller, 0, event.AuthorityTransferred{
		Previous: r.authority,
		Next:     next,
	})
	if err != nil {
		return err
	}
	return r.commitLocked(ctx, Change{
		Authority: next,
		NextID:    r.nextID,
		Events:    []event.Event{evt},
	})
}

func (r *Registry) changeFromMove(move custody.Move) Change {
	change := Change{
		Authority: r.authority,
		NextID:    r.nextID,
		Operators: move.Operators,
		Events:    move.Events,
	}
	if move.Token != nil {
		change.Tokens = []token.Token{*move.Token}
	}
	return change
}

// commitLocked persists change and applies it. r.mu must be held for writing.
func (r *Registry) commitLocked(ctx context.Context, change Change) error {
	requestID := requestctx.RequestIDFromContext(ctx)
	for i := range change.Events {
		change.Events[i].RequestID = requestID
	}

	committed, err := r.store.Commit(ctx, change)
	if err != nil {
		return fmt.Errorf("commit registry change: %w", err)
	}
	r.applyLocked(change, committed)

	if r.recorder != nil {
		for _, evt := range committed {
			r.recorder.ObserveEvent(string(evt.Type), evt.Seq)
		}
		r.recorder.SetTokenCount(uint64(len(r.tokens)))
	}
	if r.publisher != nil && len(committed) > 0 {
		r.publisher.Publish(committed)
	}
	return nil
}

func (r *Registry) applyLocked(change Change, committed []event.Event) {
	r.authority = change.Authority
	if change.NextID > r.nextID {
		r.nextID = change.NextID
	}
	for _, tok := range change.Tokens {
		if previous, ok := r.tokens[tok.ID]; ok {
			if previous.Holder != tok.Holder {
				r.debitLocked(previous.Holder)
				r.balances[tok.Holder]++
			}
		} else {
			r.balances[tok.Holder]++
		}
		r.tokens[tok.ID] = tok
	}
	for _, approval := range change.Operators {
		if approval.Approved {
			r.operators[approval.Key()] = struct{}{}
		} else {
			delete(r.operators, approval.Key())
		}
	}
	if n := len(committed); n > 0 {
		r.lastSeq = committed[n-1].Seq
	}
}

func (r *Registry) debitLocked(holder token.Address) {
	if r.balances[holder] <= 1 {
		delete(r.balances, holder)
		return
	}
	r.balances[holder]--
}

func (r *Registry) startSpan(ctx context.Context, op string, caller token.Address) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return r.tracer.Start(ctx, "registry."+op, trace.WithAttributes(
		attribute.String("registry.caller", caller.String()),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
