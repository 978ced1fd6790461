// Package bbolt provides a BoltDB-backed registry store.
package bbolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/event"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/registry"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/token"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage/integrity"
	"go.etcd.io/bbolt"
)

var (
	stateBucket    = []byte("state")
	tokenBucket    = []byte("tokens")
	operatorBucket = []byte("operators")
	eventBucket    = []byte("events")

	authorityKey = []byte("authority")
	nextIDKey    = []byte("next_id")
)

// Store provides a BoltDB-backed registry store.
type Store struct {
	db      *bbolt.DB
	keyring *integrity.Keyring
}

// Open opens a BoltDB-backed store at the provided path.
// keyring may be nil, in which case journal events are chained but unsigned.
func Open(path string, keyring *integrity.Keyring) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db, keyring: keyring}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type tokenRecord struct {
	ID          uint64    `json:"id"`
	Holder      string    `json:"holder"`
	Creator     string    `json:"creator"`
	MetadataURI string    `json:"metadata_uri"`
	RoyaltyRate uint64    `json:"royalty_rate"`
	Approved    string    `json:"approved,omitempty"`
	MintedAt    time.Time `json:"minted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type eventRecord struct {
	Seq            uint64          `json:"seq"`
	Type           string          `json:"type"`
	Timestamp      time.Time       `json:"timestamp"`
	Actor          string          `json:"actor"`
	TokenID        uint64          `json:"token_id"`
	RequestID      string          `json:"request_id,omitempty"`
	Payload        json.RawMessage `json:"payload"`
	Hash           string          `json:"hash"`
	PrevHash       string          `json:"prev_hash"`
	ChainHash      string          `json:"chain_hash"`
	Signature      string          `json:"signature,omitempty"`
	SignatureKeyID string          `json:"signature_key_id,omitempty"`
}

// Load implements registry.Store.
func (s *Store) Load(ctx context.Context) (registry.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return registry.Snapshot{}, err
	}
	if s == nil || s.db == nil {
		return registry.Snapshot{}, storage.ErrNotConfigured
	}

	var snapshot registry.Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		state := tx.Bucket(stateBucket)
		authority := state.Get(authorityKey)
		if authority == nil {
			return nil
		}
		snapshot.Initialized = true
		snapshot.Authority = token.Address(authority)
		if raw := state.Get(nextIDKey); len(raw) == 8 {
			snapshot.NextID = token.ID(binary.BigEndian.Uint64(raw))
		}

		if err := tx.Bucket(tokenBucket).ForEach(func(_, value []byte) error {
			var record tokenRecord
			if err := json.Unmarshal(value, &record); err != nil {
				return fmt.Errorf("unmarshal token: %w", err)
			}
			snapshot.Tokens = append(snapshot.Tokens, record.toDomain())
			return nil
		}); err != nil {
			return err
		}

		if err := tx.Bucket(operatorBucket).ForEach(func(key, _ []byte) error {
			owner, operator, ok := bytes.Cut(key, []byte{0})
			if !ok {
				return fmt.Errorf("malformed operator key %q", key)
			}
			snapshot.Operators = append(snapshot.Operators, token.OperatorApproval{
				Owner:    token.Address(owner),
				Operator: token.Address(operator),
				Approved: true,
			})
			return nil
		}); err != nil {
			return err
		}

		if key, _ := tx.Bucket(eventBucket).Cursor().Last(); key != nil {
			snapshot.LastSeq = binary.BigEndian.Uint64(key)
		}
		return nil
	})
	if err != nil {
		return registry.Snapshot{}, fmt.Errorf("load registry: %w", err)
	}
	return snapshot, nil
}

// Commit implements registry.Store.
func (s *Store) Commit(ctx context.Context, change registry.Change) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, storage.ErrNotConfigured
	}

	var sealed []event.Event
	err := s.db.Update(func(tx *bbolt.Tx) error {
		events := tx.Bucket(eventBucket)
		head := integrity.Head{}
		if key, value := events.Cursor().Last(); key != nil {
			var last eventRecord
			if err := json.Unmarshal(value, &last); err != nil {
				return fmt.Errorf("unmarshal journal head: %w", err)
			}
			head = integrity.Head{Seq: last.Seq, ChainHash: last.ChainHash}
		}

		var err error
		sealed, err = integrity.Seal(head, change.Events, s.keyring)
		if err != nil {
			return fmt.Errorf("seal events: %w", err)
		}

		state := tx.Bucket(stateBucket)
		if err := state.Put(authorityKey, []byte(change.Authority)); err != nil {
			return err
		}
		if err := state.Put(nextIDKey, uint64Key(uint64(change.NextID))); err != nil {
			return err
		}

		tokens := tx.Bucket(tokenBucket)
		for _, tok := range change.Tokens {
			payload, err := json.Marshal(tokenRecordFrom(tok))
			if err != nil {
				return fmt.Errorf("marshal token: %w", err)
			}
			if err := tokens.Put(uint64Key(uint64(tok.ID)), payload); err != nil {
				return err
			}
		}

		operators := tx.Bucket(operatorBucket)
		for _, approval := range change.Operators {
			key := operatorKey(approval.Owner, approval.Operator)
			if approval.Approved {
				err = operators.Put(key, []byte{1})
			} else {
				err = operators.Delete(key)
			}
			if err != nil {
				return err
			}
		}

		for _, evt := range sealed {
			key := uint64Key(evt.Seq)
			if events.Get(key) != nil {
				return fmt.Errorf("append event %d: %w", evt.Seq, storage.ErrSequenceConflict)
			}
			payload, err := json.Marshal(eventRecordFrom(evt))
			if err != nil {
				return fmt.Errorf("marshal event: %w", err)
			}
			if err := events.Put(key, payload); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("commit registry change: %w", err)
	}
	return sealed, nil
}

// ListEvents implements storage.EventLog.
func (s *Store) ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, storage.ErrNotConfigured
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	var out []event.Event
	err := s.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(eventBucket).Cursor()
		for key, value := cursor.Seek(uint64Key(afterSeq + 1)); key != nil && len(out) < limit; key, value = cursor.Next() {
			var record eventRecord
			if err := json.Unmarshal(value, &record); err != nil {
				return fmt.Errorf("unmarshal event: %w", err)
			}
			out = append(out, record.toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

// LatestSeq implements storage.EventLog.
func (s *Store) LatestSeq(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.db == nil {
		return 0, storage.ErrNotConfigured
	}
	var seq uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		if key, _ := tx.Bucket(eventBucket).Cursor().Last(); key != nil {
			seq = binary.BigEndian.Uint64(key)
		}
		return nil
	})
	return seq, err
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{stateBucket, tokenBucket, operatorBucket, eventBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// uint64Key encodes big-endian so cursor order matches numeric order.
func uint64Key(value uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, value)
	return key
}

func operatorKey(owner, operator token.Address) []byte {
	key := make([]byte, 0, len(owner)+len(operator)+1)
	key = append(key, owner...)
	key = append(key, 0)
	return append(key, operator...)
}

func tokenRecordFrom(tok token.Token) tokenRecord {
	return tokenRecord{
		ID:          uint64(tok.ID),
		Holder:      tok.Holder.String(),
		Creator:     tok.Creator.String(),
		MetadataURI: tok.MetadataURI,
		RoyaltyRate: tok.RoyaltyRate,
		Approved:    tok.Approved.String(),
		MintedAt:    tok.MintedAt.UTC(),
		UpdatedAt:   tok.UpdatedAt.UTC(),
	}
}

func (r tokenRecord) toDomain() token.Token {
	return token.Token{
		ID:          token.ID(r.ID),
		Holder:      token.Address(r.Holder),
		Creator:     token.Address(r.Creator),
		MetadataURI: r.MetadataURI,
		RoyaltyRate: r.RoyaltyRate,
		Approved:    token.Address(r.Approved),
		MintedAt:    r.MintedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func eventRecordFrom(evt event.Event) eventRecord {
	payload := json.RawMessage(evt.PayloadJSON)
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	return eventRecord{
		Seq:            evt.Seq,
		Type:           string(evt.Type),
		Timestamp:      evt.Timestamp.UTC(),
		Actor:          evt.Actor.String(),
		TokenID:        uint64(evt.TokenID),
		RequestID:      evt.RequestID,
		Payload:        payload,
		Hash:           evt.Hash,
		PrevHash:       evt.PrevHash,
		ChainHash:      evt.ChainHash,
		Signature:      evt.Signature,
		SignatureKeyID: evt.SignatureKeyID,
	}
}

func (r eventRecord) toDomain() event.Event {
	return event.Event{
		Seq:            r.Seq,
		Type:           event.Type(r.Type),
		Timestamp:      r.Timestamp.UTC(),
		Actor:          token.Address(r.Actor),
		TokenID:        token.ID(r.TokenID),
		RequestID:      r.RequestID,
		PayloadJSON:    []byte(r.Payload),
		Hash:           r.Hash,
		PrevHash:       r.PrevHash,
		ChainHash:      r.ChainHash,
		Signature:      r.Signature,
		SignatureKeyID: r.SignatureKeyID,
	}
}

var _ storage.Backend = (*Store)(nil)
