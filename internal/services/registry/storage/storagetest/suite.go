// Package storagetest holds behavior checks shared by every registry backend.
package storagetest

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/event"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/registry"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/token"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage/integrity"
)

// Factory opens a backend. Calling it again with the same t must reopen the
// same underlying data for durable backends.
type Factory func(t *testing.T, keyring *integrity.Keyring) storage.Backend

// Options configure the shared suite.
type Options struct {
	// Durable backends are reopened to check that commits survive a restart.
	Durable bool
}

// Stamp carries a sub-millisecond part every backend must round-trip exactly.
var Stamp = time.Date(2026, time.March, 1, 12, 0, 0, 123456789, time.UTC)

// Keyring returns the signing keyring used by the suite.
func Keyring(t *testing.T) *integrity.Keyring {
	t.Helper()
	ring, err := integrity.NewKeyring(map[string][]byte{"v1": []byte("suite-secret")}, "v1")
	if err != nil {
		t.Fatalf("new keyring: %v", err)
	}
	return ring
}

// Run exercises a backend through the registry.Store and storage.EventLog contracts.
func Run(t *testing.T, open Factory, opts Options) {
	t.Run("empty load", func(t *testing.T) {
		store := open(t, nil)
		snapshot, err := store.Load(context.Background())
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if snapshot.Initialized {
			t.Fatal("expected empty store to be uninitialized")
		}
		seq, err := store.LatestSeq(context.Background())
		if err != nil {
			t.Fatalf("latest seq: %v", err)
		}
		if seq != 0 {
			t.Fatalf("latest seq = %d, want 0", seq)
		}
	})

	t.Run("commit and load", func(t *testing.T) {
		ring := Keyring(t)
		store := open(t, ring)
		commitSample(t, store)

		snapshot, err := store.Load(context.Background())
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		checkSampleSnapshot(t, snapshot)
	})

	t.Run("sequences and chain", func(t *testing.T) {
		ring := Keyring(t)
		store := open(t, ring)
		committed := commitSample(t, store)

		for i, evt := range committed {
			if evt.Seq != uint64(i+1) {
				t.Fatalf("committed[%d].Seq = %d, want %d", i, evt.Seq, i+1)
			}
			if evt.SignatureKeyID != "v1" || evt.Signature == "" {
				t.Fatalf("event %d not signed", evt.Seq)
			}
		}

		all, err := store.ListEvents(context.Background(), 0, 100)
		if err != nil {
			t.Fatalf("list events: %v", err)
		}
		if len(all) != len(committed) {
			t.Fatalf("listed %d events, want %d", len(all), len(committed))
		}
		if err := integrity.VerifyChain(all, ring); err != nil {
			t.Fatalf("verify chain: %v", err)
		}
		for i := range all {
			if string(all[i].PayloadJSON) != string(committed[i].PayloadJSON) {
				t.Fatalf("event %d payload = %s, want %s", all[i].Seq, all[i].PayloadJSON, committed[i].PayloadJSON)
			}
			if !all[i].Timestamp.Equal(committed[i].Timestamp) {
				t.Fatalf("event %d timestamp = %v, want %v", all[i].Seq, all[i].Timestamp, committed[i].Timestamp)
			}
		}
	})

	t.Run("list paging", func(t *testing.T) {
		store := open(t, nil)
		committed := commitSample(t, store)

		page, err := store.ListEvents(context.Background(), 1, 2)
		if err != nil {
			t.Fatalf("list events: %v", err)
		}
		if len(page) != 2 || page[0].Seq != 2 || page[1].Seq != 3 {
			t.Fatalf("page = %v, want seqs 2,3", seqs(page))
		}
		tail, err := store.ListEvents(context.Background(), uint64(len(committed)), 10)
		if err != nil {
			t.Fatalf("list events: %v", err)
		}
		if len(tail) != 0 {
			t.Fatalf("tail = %v, want empty", seqs(tail))
		}
		if _, err := store.ListEvents(context.Background(), 0, 0); err == nil {
			t.Fatal("expected error for zero limit")
		}
		latest, err := store.LatestSeq(context.Background())
		if err != nil {
			t.Fatalf("latest seq: %v", err)
		}
		if latest != uint64(len(committed)) {
			t.Fatalf("latest seq = %d, want %d", latest, len(committed))
		}
	})

	t.Run("operator revoke", func(t *testing.T) {
		store := open(t, nil)
		commitSample(t, store)
		commit(t, store, registry.Change{
			Authority: "owner",
			NextID:    2,
			Operators: []token.OperatorApproval{{Owner: "alice", Operator: "dave", Approved: false}},
			Events: []event.Event{draft(t, event.TypeApprovalForAll, 0,
				event.ApprovalForAll{Owner: "alice", Operator: "dave", Approved: false})},
		})
		snapshot, err := store.Load(context.Background())
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if len(snapshot.Operators) != 0 {
			t.Fatalf("operators = %+v, want none", snapshot.Operators)
		}
	})

	t.Run("canceled commit", func(t *testing.T) {
		store := open(t, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := store.Commit(ctx, registry.Change{Authority: "owner", NextID: 1}); err == nil {
			t.Fatal("expected canceled context error")
		}
		snapshot, err := store.Load(context.Background())
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if snapshot.Initialized {
			t.Fatal("canceled commit must not persist")
		}
	})

	if opts.Durable {
		t.Run("reopen", func(t *testing.T) {
			ring := Keyring(t)
			store := open(t, ring)
			commitSample(t, store)
			if err := store.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}

			reopened := open(t, ring)
			snapshot, err := reopened.Load(context.Background())
			if err != nil {
				t.Fatalf("load after reopen: %v", err)
			}
			checkSampleSnapshot(t, snapshot)

			next := commit(t, reopened, registry.Change{
				Authority: "owner",
				NextID:    2,
				Events: []event.Event{draft(t, event.TypeAuthorityTransferred, 0,
					event.AuthorityTransferred{Previous: "owner", Next: "owner"})},
			})
			if next[0].Seq != snapshot.LastSeq+1 {
				t.Fatalf("seq after reopen = %d, want %d", next[0].Seq, snapshot.LastSeq+1)
			}
			all, err := reopened.ListEvents(context.Background(), 0, 100)
			if err != nil {
				t.Fatalf("list events: %v", err)
			}
			if err := integrity.VerifyChain(all, ring); err != nil {
				t.Fatalf("verify chain after reopen: %v", err)
			}
		})
	}
}

// commitSample commits genesis plus a mint of token 1 to alice with the
// maximum royalty rate and an operator approval for dave.
func commitSample(t *testing.T, store storage.Backend) []event.Event {
	t.Helper()
	var committed []event.Event
	committed = append(committed, commit(t, store, registry.Change{
		Authority: "owner",
		NextID:    1,
		Events: []event.Event{draft(t, event.TypeRegistryInitialized, 0,
			event.RegistryInitialized{Authority: "owner"})},
	})...)
	committed = append(committed, commit(t, store, registry.Change{
		Authority: "owner",
		NextID:    2,
		Tokens: []token.Token{{
			ID:          1,
			Holder:      "alice",
			Creator:     "alice",
			MetadataURI: "ipfs://one",
			RoyaltyRate: math.MaxUint64,
			MintedAt:    Stamp,
			UpdatedAt:   Stamp,
		}},
		Events: []event.Event{
			draft(t, event.TypeTransfer, 1, event.Transfer{To: "alice", ID: 1}),
			draft(t, event.TypeMinted, 1, event.Minted{ID: 1, Creator: "alice", RoyaltyRate: math.MaxUint64}),
		},
	})...)
	committed = append(committed, commit(t, store, registry.Change{
		Authority: "owner",
		NextID:    2,
		Operators: []token.OperatorApproval{{Owner: "alice", Operator: "dave", Approved: true}},
		Events: []event.Event{draft(t, event.TypeApprovalForAll, 0,
			event.ApprovalForAll{Owner: "alice", Operator: "dave", Approved: true})},
	})...)
	return committed
}

func checkSampleSnapshot(t *testing.T, snapshot registry.Snapshot) {
	t.Helper()
	if !snapshot.Initialized {
		t.Fatal("expected initialized snapshot")
	}
	if snapshot.Authority != "owner" {
		t.Fatalf("authority = %q, want owner", snapshot.Authority)
	}
	if snapshot.NextID != 2 {
		t.Fatalf("next id = %d, want 2", snapshot.NextID)
	}
	if snapshot.LastSeq != 4 {
		t.Fatalf("last seq = %d, want 4", snapshot.LastSeq)
	}
	if len(snapshot.Tokens) != 1 {
		t.Fatalf("tokens = %d, want 1", len(snapshot.Tokens))
	}
	tok := snapshot.Tokens[0]
	if tok.ID != 1 || tok.Holder != "alice" || tok.Creator != "alice" || tok.MetadataURI != "ipfs://one" {
		t.Fatalf("token = %+v", tok)
	}
	if tok.RoyaltyRate != math.MaxUint64 {
		t.Fatalf("royalty = %d, want %d", tok.RoyaltyRate, uint64(math.MaxUint64))
	}
	if !tok.MintedAt.Equal(Stamp) || !tok.UpdatedAt.Equal(Stamp) {
		t.Fatalf("timestamps = %v / %v, want %v", tok.MintedAt, tok.UpdatedAt, Stamp)
	}
	if len(snapshot.Operators) != 1 || snapshot.Operators[0].Operator != "dave" || !snapshot.Operators[0].Approved {
		t.Fatalf("operators = %+v", snapshot.Operators)
	}
}

func commit(t *testing.T, store storage.Backend, change registry.Change) []event.Event {
	t.Helper()
	committed, err := store.Commit(context.Background(), change)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if len(committed) != len(change.Events) {
		t.Fatalf("committed %d events, want %d", len(committed), len(change.Events))
	}
	return committed
}

func draft(t *testing.T, eventType event.Type, id token.ID, payload any) event.Event {
	t.Helper()
	evt, err := event.New(eventType, Stamp, "owner", id, payload)
	if err != nil {
		t.Fatalf("draft event: %v", err)
	}
	return evt
}

func seqs(events []event.Event) []uint64 {
	out := make([]uint64, len(events))
	for i, evt := range events {
		out[i] = evt.Seq
	}
	return out
}
