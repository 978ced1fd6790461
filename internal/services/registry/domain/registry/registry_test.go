package registry_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/Douglas360/smart-contracts/internal/platform/requestctx"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/event"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/registry"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/token"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage/integrity"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage/memory"
)

const (
	authority token.Address = "owner"
	alice     token.Address = "alice"
	bob       token.Address = "bob"
	mallory   token.Address = "mallory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) Publish(events []event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
}

func (p *recordingPublisher) types() []event.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.Type, len(p.events))
	for i, evt := range p.events {
		out[i] = evt.Type
	}
	return out
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

type fixture struct {
	reg   *registry.Registry
	store *memory.Store
	feed  *recordingPublisher
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.New(nil)
	feed := &recordingPublisher{}
	clock := func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	reg, err := registry.Open(context.Background(), store, authority,
		registry.WithPublisher(feed),
		registry.WithClock(clock),
	)
	if err != nil {
		t.Fatalf("open registry: %v", err)
	}
	feed.reset()
	return fixture{reg: reg, store: store, feed: feed}
}

func (f fixture) mint(t *testing.T, to token.Address, uri string, rate uint64) token.ID {
	t.Helper()
	id, err := f.reg.Mint(context.Background(), authority, to, uri, rate)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return id
}

func TestOpenRequiresAuthorityForEmptyStore(t *testing.T) {
	t.Parallel()

	_, err := registry.Open(context.Background(), memory.New(nil), "")
	if !errors.Is(err, token.ErrInvalidArgument) {
		t.Fatalf("open err = %v, want invalid argument", err)
	}
}

func TestOpenRecordsGenesis(t *testing.T) {
	t.Parallel()

	store := memory.New(nil)
	reg, err := registry.Open(context.Background(), store, authority)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	info := reg.Info()
	if info.Authority != authority || info.NextID != 1 || info.LastSeq != 1 {
		t.Fatalf("info = %+v", info)
	}
	events, err := store.ListEvents(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 || events[0].Type != event.TypeRegistryInitialized {
		t.Fatalf("events = %+v", events)
	}
}

// Scenario: authority mints to A; creator and royalty read back.
func TestMintAssignsFirstID(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.mint(t, alice, "ipfs://x", 500)
	if id != 1 {
		t.Fatalf("id = %d, want 1", id)
	}
	creator, err := f.reg.Creator(1)
	if err != nil || creator != alice {
		t.Fatalf("creator = %q, %v; want alice", creator, err)
	}
	rate, err := f.reg.Royalty(1)
	if err != nil || rate != 500 {
		t.Fatalf("royalty = %d, %v; want 500", rate, err)
	}
	holder, err := f.reg.Holder(1)
	if err != nil || holder != alice {
		t.Fatalf("holder = %q, %v; want alice", holder, err)
	}
	uri, err := f.reg.Metadata(1)
	if err != nil || uri != "ipfs://x" {
		t.Fatalf("metadata = %q, %v; want ipfs://x", uri, err)
	}
	if got := f.reg.BalanceOf(alice); got != 1 {
		t.Fatalf("balance = %d, want 1", got)
	}

	want := []event.Type{event.TypeTransfer, event.TypeMinted}
	if got := f.feed.types(); !equalTypes(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	var minted event.Minted
	if err := f.feed.events[1].Decode(&minted); err != nil {
		t.Fatalf("decode minted: %v", err)
	}
	if minted != (event.Minted{ID: 1, Creator: alice, RoyaltyRate: 500}) {
		t.Fatalf("minted = %+v", minted)
	}
}

func TestMintIDsStrictlyIncrease(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	var last token.ID
	for i := 0; i < 20; i++ {
		id := f.mint(t, alice, "", 0)
		if id <= last {
			t.Fatalf("id %d not greater than previous %d", id, last)
		}
		last = id
	}
	if next := f.reg.Info().NextID; next != last+1 {
		t.Fatalf("next id = %d, want %d", next, last+1)
	}
}

func TestConcurrentMintsAreUnique(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	const workers = 16
	ids := make(chan token.ID, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := f.reg.Mint(context.Background(), authority, bob, "", 1)
			if err != nil {
				t.Errorf("mint: %v", err)
				return
			}
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[token.ID]bool{}
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != workers {
		t.Fatalf("minted %d ids, want %d", len(seen), workers)
	}
	if got := f.reg.BalanceOf(bob); got != workers {
		t.Fatalf("balance = %d, want %d", got, workers)
	}
}

// Scenario: non-authority mint fails and nextId is unchanged.
func TestMintRequiresAuthority(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	for _, caller := range []token.Address{alice, mallory, ""} {
		_, err := f.reg.Mint(context.Background(), caller, caller, "ipfs://x", 1)
		if !errors.Is(err, token.ErrUnauthorized) {
			t.Fatalf("mint by %q err = %v, want unauthorized", caller, err)
		}
	}
	if next := f.reg.Info().NextID; next != 1 {
		t.Fatalf("next id = %d, want 1", next)
	}
	if len(f.feed.types()) != 0 {
		t.Fatal("failed mint must not emit events")
	}
}

func TestMintRejectsNullRecipient(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	if _, err := f.reg.Mint(context.Background(), authority, "", "ipfs://x", 1); !errors.Is(err, token.ErrInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}
	if next := f.reg.Info().NextID; next != 1 {
		t.Fatalf("next id = %d, want 1", next)
	}
}

func TestMintRoyaltyIsUnbounded(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.mint(t, alice, "", math.MaxUint64)
	rate, err := f.reg.Royalty(id)
	if err != nil {
		t.Fatalf("royalty: %v", err)
	}
	if rate != math.MaxUint64 {
		t.Fatalf("royalty = %d, want max uint64", rate)
	}
}

// Scenarios: creator updates royalty; third party cannot.
func TestUpdateRoyaltyAuthorization(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.mint(t, alice, "ipfs://x", 500)
	f.feed.reset()

	if err := f.reg.UpdateRoyalty(context.Background(), alice, id, 750); err != nil {
		t.Fatalf("creator update: %v", err)
	}
	if rate, _ := f.reg.Royalty(id); rate != 750 {
		t.Fatalf("royalty = %d, want 750", rate)
	}
	if got := f.feed.types(); !equalTypes(got, []event.Type{event.TypeRoyaltyUpdated}) {
		t.Fatalf("events = %v", got)
	}
	var updated event.RoyaltyUpdated
	if err := f.feed.events[0].Decode(&updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated != (event.RoyaltyUpdated{ID: id, NewRate: 750}) {
		t.Fatalf("payload = %+v", updated)
	}

	if err := f.reg.UpdateRoyalty(context.Background(), mallory, id, 1); !errors.Is(err, token.ErrUnauthorized) {
		t.Fatalf("third party err = %v, want unauthorized", err)
	}
	if rate, _ := f.reg.Royalty(id); rate != 750 {
		t.Fatalf("royalty after rejected update = %d, want 750", rate)
	}

	if err := f.reg.UpdateRoyalty(context.Background(), authority, id, 100); err != nil {
		t.Fatalf("authority update: %v", err)
	}
	if rate, _ := f.reg.Royalty(id); rate != 100 {
		t.Fatalf("royalty = %d, want 100", rate)
	}
}

func TestUpdateRoyaltyHolderIsNotCreator(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.mint(t, alice, "", 500)
	if err := f.reg.Transfer(context.Background(), alice, alice, bob, id); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := f.reg.UpdateRoyalty(context.Background(), bob, id, 1); !errors.Is(err, token.ErrUnauthorized) {
		t.Fatalf("holder update err = %v, want unauthorized", err)
	}
	if err := f.reg.UpdateRoyalty(context.Background(), alice, id, 2); err != nil {
		t.Fatalf("creator update after transfer: %v", err)
	}
}

// Scenario: transfer keeps creator and emits Transferred.
func TestTransferEmitsCustodyThenRegistryEvent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.mint(t, alice, "ipfs://x", 500)
	f.feed.reset()

	if err := f.reg.Transfer(context.Background(), alice, alice, bob, id); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	want := []event.Type{event.TypeTransfer, event.TypeTransferred}
	if got := f.feed.types(); !equalTypes(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	var transferred event.Transferred
	if err := f.feed.events[1].Decode(&transferred); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if transferred != (event.Transferred{ID: id, From: alice, To: bob}) {
		t.Fatalf("payload = %+v", transferred)
	}
	if creator, _ := f.reg.Creator(id); creator != alice {
		t.Fatalf("creator = %q, want alice", creator)
	}
	if holder, _ := f.reg.Holder(id); holder != bob {
		t.Fatalf("holder = %q, want bob", holder)
	}
	if f.reg.BalanceOf(alice) != 0 || f.reg.BalanceOf(bob) != 1 {
		t.Fatalf("balances alice=%d bob=%d", f.reg.BalanceOf(alice), f.reg.BalanceOf(bob))
	}
}

func TestTransferAuthorization(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.mint(t, alice, "", 0)

	if err := f.reg.Transfer(context.Background(), mallory, alice, mallory, id); !errors.Is(err, token.ErrUnauthorized) {
		t.Fatalf("stranger err = %v, want unauthorized", err)
	}
	if err := f.reg.Transfer(context.Background(), authority, alice, bob, id); !errors.Is(err, token.ErrUnauthorized) {
		t.Fatalf("authority err = %v, want unauthorized", err)
	}
	if err := f.reg.Transfer(context.Background(), bob, bob, mallory, id); !errors.Is(err, token.ErrUnauthorized) {
		t.Fatalf("wrong from err = %v, want unauthorized", err)
	}
	if err := f.reg.Transfer(context.Background(), alice, alice, "", id); !errors.Is(err, token.ErrInvalidArgument) {
		t.Fatalf("null recipient err = %v, want invalid argument", err)
	}

	if err := f.reg.Approve(context.Background(), alice, bob, id); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved, _ := f.reg.Approved(id); approved != bob {
		t.Fatalf("approved = %q, want bob", approved)
	}
	if err := f.reg.Transfer(context.Background(), bob, alice, mallory, id); err != nil {
		t.Fatalf("approved transfer: %v", err)
	}
	if approved, _ := f.reg.Approved(id); !approved.IsZero() {
		t.Fatalf("approval not cleared: %q", approved)
	}
	if err := f.reg.Transfer(context.Background(), bob, mallory, bob, id); !errors.Is(err, token.ErrUnauthorized) {
		t.Fatalf("stale approval err = %v, want unauthorized", err)
	}
}

func TestOperatorCanTransferAndApprove(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.mint(t, alice, "", 0)
	if err := f.reg.SetApprovalForAll(context.Background(), alice, bob, true); err != nil {
		t.Fatalf("set approval for all: %v", err)
	}
	if !f.reg.IsApprovedForAll(alice, bob) {
		t.Fatal("expected operator approval")
	}
	if err := f.reg.Approve(context.Background(), bob, mallory, id); err != nil {
		t.Fatalf("operator approve: %v", err)
	}
	if err := f.reg.Transfer(context.Background(), bob, alice, bob, id); err != nil {
		t.Fatalf("operator transfer: %v", err)
	}

	if err := f.reg.SetApprovalForAll(context.Background(), alice, bob, false); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if f.reg.IsApprovedForAll(alice, bob) {
		t.Fatal("expected operator approval revoked")
	}
	if err := f.reg.SetApprovalForAll(context.Background(), alice, alice, true); !errors.Is(err, token.ErrInvalidArgument) {
		t.Fatalf("self operator err = %v, want invalid argument", err)
	}
}

func TestSetMetadata(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.mint(t, alice, "ipfs://x", 0)
	f.feed.reset()

	if err := f.reg.SetMetadata(context.Background(), alice, id, "ipfs://y"); !errors.Is(err, token.ErrUnauthorized) {
		t.Fatalf("creator set metadata err = %v, want unauthorized", err)
	}
	if err := f.reg.SetMetadata(context.Background(), mallory, 999, "ipfs://y"); !errors.Is(err, token.ErrUnauthorized) {
		t.Fatalf("unauthorized check must run before existence, got %v", err)
	}
	if err := f.reg.SetMetadata(context.Background(), authority, 999, "ipfs://y"); !errors.Is(err, token.ErrNotFound) {
		t.Fatalf("missing token err = %v, want not found", err)
	}
	if err := f.reg.SetMetadata(context.Background(), authority, id, "ipfs://y"); err != nil {
		t.Fatalf("set metadata: %v", err)
	}
	if uri, _ := f.reg.Metadata(id); uri != "ipfs://y" {
		t.Fatalf("metadata = %q, want ipfs://y", uri)
	}
	if got := f.feed.types(); len(got) != 0 {
		t.Fatalf("set metadata emitted %v, want no events", got)
	}
}

// Scenario: reads on unminted ids fail with NotFound.
func TestUnmintedIDsAreNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.mint(t, alice, "", 0)
	ctx := context.Background()

	for _, id := range []token.ID{0, 2, 999} {
		checks := map[string]error{}
		_, checks["token"] = f.reg.Token(id)
		_, checks["metadata"] = f.reg.Metadata(id)
		_, checks["creator"] = f.reg.Creator(id)
		_, checks["royalty"] = f.reg.Royalty(id)
		_, checks["holder"] = f.reg.Holder(id)
		_, checks["approved"] = f.reg.Approved(id)
		checks["update royalty"] = f.reg.UpdateRoyalty(ctx, authority, id, 1)
		checks["transfer"] = f.reg.Transfer(ctx, alice, alice, bob, id)
		checks["set metadata"] = f.reg.SetMetadata(ctx, authority, id, "x")
		checks["approve"] = f.reg.Approve(ctx, alice, bob, id)
		for name, err := range checks {
			if !errors.Is(err, token.ErrNotFound) {
				t.Fatalf("%s(%d) err = %v, want not found", name, id, err)
			}
		}
	}
	if f.reg.Info().TokenCount != 1 {
		t.Fatal("queries must not create records")
	}
}

func TestCreatorNeverChanges(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	id := f.mint(t, alice, "", 0)

	steps := []func() error{
		func() error { return f.reg.Transfer(ctx, alice, alice, bob, id) },
		func() error { return f.reg.UpdateRoyalty(ctx, authority, id, 9) },
		func() error { return f.reg.SetMetadata(ctx, authority, id, "ipfs://z") },
		func() error { return f.reg.Approve(ctx, bob, mallory, id) },
		func() error { return f.reg.Transfer(ctx, mallory, bob, mallory, id) },
		func() error { return f.reg.TransferAuthority(ctx, authority, bob) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if creator, _ := f.reg.Creator(id); creator != alice {
			t.Fatalf("creator after step %d = %q, want alice", i, creator)
		}
	}
}

func TestReadsAreIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.mint(t, alice, "ipfs://x", 42)
	first, err := f.reg.Token(id)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	second, err := f.reg.Token(id)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if first != second {
		t.Fatalf("reads differ: %+v vs %+v", first, second)
	}
	if f.reg.Info() != f.reg.Info() {
		t.Fatal("info reads differ")
	}
}

func TestEventsFollowCommitOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	id := f.mint(t, alice, "", 1)
	if err := f.reg.UpdateRoyalty(ctx, alice, id, 2); err != nil {
		t.Fatalf("update royalty: %v", err)
	}
	if err := f.reg.Transfer(ctx, alice, alice, bob, id); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	second := f.mint(t, bob, "", 3)

	var registryEvents []event.Type
	for _, typ := range f.feed.types() {
		switch typ {
		case event.TypeMinted, event.TypeRoyaltyUpdated, event.TypeTransferred:
			registryEvents = append(registryEvents, typ)
		}
	}
	want := []event.Type{event.TypeMinted, event.TypeRoyaltyUpdated, event.TypeTransferred, event.TypeMinted}
	if !equalTypes(registryEvents, want) {
		t.Fatalf("events = %v, want %v", registryEvents, want)
	}

	journal, err := f.store.ListEvents(ctx, 0, 100)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	for i := 1; i < len(journal); i++ {
		if journal[i].Seq != journal[i-1].Seq+1 {
			t.Fatalf("journal not contiguous at %d", journal[i].Seq)
		}
	}
	if last := journal[len(journal)-1]; last.TokenID != second || last.Type != event.TypeMinted {
		t.Fatalf("last event = %+v", last)
	}
	if err := integrity.VerifyChain(journal, nil); err != nil {
		t.Fatalf("verify chain: %v", err)
	}
}

func TestCommitFailureLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.mint(t, alice, "ipfs://x", 5)
	before := f.reg.Info()
	f.feed.reset()

	boom := errors.New("disk full")
	f.store.FailNextCommit(boom)
	if _, err := f.reg.Mint(context.Background(), authority, bob, "", 1); !errors.Is(err, boom) {
		t.Fatalf("mint err = %v, want %v", err, boom)
	}
	f.store.FailNextCommit(boom)
	if err := f.reg.Transfer(context.Background(), alice, alice, bob, id); !errors.Is(err, boom) {
		t.Fatalf("transfer err = %v, want %v", err, boom)
	}

	if after := f.reg.Info(); after != before {
		t.Fatalf("info changed after failed commits: %+v vs %+v", after, before)
	}
	if holder, _ := f.reg.Holder(id); holder != alice {
		t.Fatalf("holder = %q, want alice", holder)
	}
	if len(f.feed.types()) != 0 {
		t.Fatal("failed commits must not publish")
	}
}

func TestTransferAuthority(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if err := f.reg.TransferAuthority(ctx, alice, alice); !errors.Is(err, token.ErrUnauthorized) {
		t.Fatalf("non-authority err = %v, want unauthorized", err)
	}
	if err := f.reg.TransferAuthority(ctx, authority, ""); !errors.Is(err, token.ErrInvalidArgument) {
		t.Fatalf("null authority err = %v, want invalid argument", err)
	}
	if err := f.reg.TransferAuthority(ctx, authority, bob); err != nil {
		t.Fatalf("transfer authority: %v", err)
	}
	if f.reg.Authority() != bob {
		t.Fatalf("authority = %q, want bob", f.reg.Authority())
	}
	if _, err := f.reg.Mint(ctx, authority, alice, "", 0); !errors.Is(err, token.ErrUnauthorized) {
		t.Fatalf("old authority mint err = %v, want unauthorized", err)
	}
	if _, err := f.reg.Mint(ctx, bob, alice, "", 0); err != nil {
		t.Fatalf("new authority mint: %v", err)
	}
	var payload event.AuthorityTransferred
	if err := f.feed.events[0].Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload != (event.AuthorityTransferred{Previous: authority, Next: bob}) {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestReopenRestoresState(t *testing.T) {
	t.Parallel()

	store := memory.New(nil)
	ctx := context.Background()
	first, err := registry.Open(ctx, store, authority)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	id, err := first.Mint(ctx, authority, alice, "ipfs://x", 7)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := first.SetApprovalForAll(ctx, alice, bob, true); err != nil {
		t.Fatalf("set approval for all: %v", err)
	}

	// A different configured authority is ignored once the store is initialized.
	second, err := registry.Open(ctx, store, mallory)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if second.Authority() != authority {
		t.Fatalf("authority = %q, want %q", second.Authority(), authority)
	}
	if second.Info() != first.Info() {
		t.Fatalf("info = %+v, want %+v", second.Info(), first.Info())
	}
	if !second.IsApprovedForAll(alice, bob) {
		t.Fatal("expected operator approval restored")
	}
	if second.BalanceOf(alice) != 1 {
		t.Fatalf("balance = %d, want 1", second.BalanceOf(alice))
	}
	next, err := second.Mint(ctx, authority, bob, "", 0)
	if err != nil {
		t.Fatalf("mint after reopen: %v", err)
	}
	if next != id+1 {
		t.Fatalf("id after reopen = %d, want %d", next, id+1)
	}
}

func TestRequestIDIsJournaled(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := requestctx.WithRequestID(context.Background(), "req-42")
	if _, err := f.reg.Mint(ctx, authority, alice, "", 0); err != nil {
		t.Fatalf("mint: %v", err)
	}
	for _, evt := range f.feed.events {
		if evt.RequestID != "req-42" {
			t.Fatalf("event %s request id = %q, want req-42", evt.Type, evt.RequestID)
		}
	}
}

type countingRecorder struct {
	mu     sync.Mutex
	events int
	tokens uint64
}

func (r *countingRecorder) ObserveEvent(string, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events++
}

func (r *countingRecorder) SetTokenCount(count uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = count
}

func TestRecorderObservesCommits(t *testing.T) {
	t.Parallel()

	rec := &countingRecorder{}
	reg, err := registry.Open(context.Background(), memory.New(nil), authority, registry.WithRecorder(rec))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := reg.Mint(context.Background(), authority, alice, "", 0); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if rec.events != 3 {
		t.Fatalf("observed events = %d, want 3", rec.events)
	}
	if rec.tokens != 1 {
		t.Fatalf("token count = %d, want 1", rec.tokens)
	}
}

func equalTypes(got, want []event.Type) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

type exhaustedStore struct {
	*memory.Store
}

func (s exhaustedStore) Load(ctx context.Context) (registry.Snapshot, error) {
	snapshot, err := s.Store.Load(ctx)
	snapshot.NextID = math.MaxUint64
	return snapshot, err
}

func TestMintRejectsExhaustedIDSpace(t *testing.T) {
	f := newFixture(t)
	first := f.mint(t, alice, "ipfs://a", 1)

	reg, err := registry.Open(context.Background(), exhaustedStore{f.store}, authority)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	_, err = reg.Mint(context.Background(), authority, bob, "ipfs://b", 2)
	if !errors.Is(err, token.ErrInvalidArgument) {
		t.Fatalf("mint err = %v, want invalid argument", err)
	}
	info := reg.Info()
	if info.NextID != math.MaxUint64 || info.TokenCount != 1 {
		t.Fatalf("info = %+v, want unchanged state", info)
	}
	creator, err := reg.Creator(first)
	if err != nil || creator != alice {
		t.Fatalf("creator = %q, %v; want alice", creator, err)
	}
}
