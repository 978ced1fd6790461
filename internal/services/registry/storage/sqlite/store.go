// Package sqlite provides a SQLite-backed registry store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sqlitemigrate "github.com/Douglas360/smart-contracts/internal/platform/storage/sqlitemigrate"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/event"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/registry"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/token"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage/integrity"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists registry state and its journal in SQLite.
type Store struct {
	sqlDB   *sql.DB
	keyring *integrity.Keyring
}

func toNanos(value time.Time) int64 {
	return value.UTC().UnixNano()
}

func fromNanos(value int64) time.Time {
	return time.Unix(0, value).UTC()
}

// Open opens a SQLite registry store and applies embedded migrations.
// keyring may be nil, in which case journal events are chained but unsigned.
func Open(path string, keyring *integrity.Keyring) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer; the registry already serializes commits.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	applied, err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, "")
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	for _, name := range applied {
		log.Printf("applied migration %s", name)
	}
	return &Store{sqlDB: sqlDB, keyring: keyring}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Load implements registry.Store.
func (s *Store) Load(ctx context.Context) (registry.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return registry.Snapshot{}, err
	}
	if s == nil || s.sqlDB == nil {
		return registry.Snapshot{}, storage.ErrNotConfigured
	}

	var snapshot registry.Snapshot
	var authority string
	var nextID int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT authority, next_id FROM registry_state WHERE id = 1`,
	).Scan(&authority, &nextID)
	if errors.Is(err, sql.ErrNoRows) {
		return registry.Snapshot{}, nil
	}
	if err != nil {
		return registry.Snapshot{}, fmt.Errorf("load registry state: %w", err)
	}
	snapshot.Initialized = true
	snapshot.Authority = token.Address(authority)
	snapshot.NextID = token.ID(nextID)

	if snapshot.Tokens, err = s.loadTokens(ctx); err != nil {
		return registry.Snapshot{}, err
	}
	if snapshot.Operators, err = s.loadOperators(ctx); err != nil {
		return registry.Snapshot{}, err
	}
	if snapshot.LastSeq, err = s.LatestSeq(ctx); err != nil {
		return registry.Snapshot{}, err
	}
	return snapshot, nil
}

func (s *Store) loadTokens(ctx context.Context) ([]token.Token, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, holder, creator, metadata_uri, royalty_rate, approved, minted_at, updated_at
		   FROM tokens
		  ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("load tokens: %w", err)
	}
	defer rows.Close()

	var tokens []token.Token
	for rows.Next() {
		var (
			tok                 token.Token
			id                  int64
			holder, creator     string
			royalty, approved   string
			mintedAt, updatedAt int64
		)
		if err := rows.Scan(&id, &holder, &creator, &tok.MetadataURI, &royalty, &approved, &mintedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("load tokens: %w", err)
		}
		rate, err := strconv.ParseUint(royalty, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("token %d royalty rate %q: %w", id, royalty, err)
		}
		tok.ID = token.ID(id)
		tok.Holder = token.Address(holder)
		tok.Creator = token.Address(creator)
		tok.RoyaltyRate = rate
		tok.Approved = token.Address(approved)
		tok.MintedAt = fromNanos(mintedAt)
		tok.UpdatedAt = fromNanos(updatedAt)
		tokens = append(tokens, tok)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load tokens: %w", err)
	}
	return tokens, nil
}

func (s *Store) loadOperators(ctx context.Context) ([]token.OperatorApproval, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT owner, operator FROM operator_approvals ORDER BY owner, operator`,
	)
	if err != nil {
		return nil, fmt.Errorf("load operator approvals: %w", err)
	}
	defer rows.Close()

	var approvals []token.OperatorApproval
	for rows.Next() {
		var owner, operator string
		if err := rows.Scan(&owner, &operator); err != nil {
			return nil, fmt.Errorf("load operator approvals: %w", err)
		}
		approvals = append(approvals, token.OperatorApproval{
			Owner:    token.Address(owner),
			Operator: token.Address(operator),
			Approved: true,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load operator approvals: %w", err)
	}
	return approvals, nil
}

// Commit implements registry.Store.
func (s *Store) Commit(ctx context.Context, change registry.Change) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, storage.ErrNotConfigured
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin commit: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	head, err := readHead(ctx, tx)
	if err != nil {
		return nil, err
	}
	sealed, err := integrity.Seal(head, change.Events, s.keyring)
	if err != nil {
		return nil, fmt.Errorf("seal events: %w", err)
	}

	now := toNanos(time.Now())
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO registry_state (id, authority, next_id, updated_at)
		 VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   authority = excluded.authority,
		   next_id = excluded.next_id,
		   updated_at = excluded.updated_at`,
		change.Authority.String(), int64(change.NextID), now,
	); err != nil {
		return nil, fmt.Errorf("write registry state: %w", err)
	}

	for _, tok := range change.Tokens {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tokens (id, holder, creator, metadata_uri, royalty_rate, approved, minted_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   holder = excluded.holder,
			   metadata_uri = excluded.metadata_uri,
			   royalty_rate = excluded.royalty_rate,
			   approved = excluded.approved,
			   updated_at = excluded.updated_at`,
			int64(tok.ID),
			tok.Holder.String(),
			tok.Creator.String(),
			tok.MetadataURI,
			strconv.FormatUint(tok.RoyaltyRate, 10),
			tok.Approved.String(),
			toNanos(tok.MintedAt),
			toNanos(tok.UpdatedAt),
		); err != nil {
			return nil, fmt.Errorf("write token %d: %w", tok.ID, err)
		}
	}

	for _, approval := range change.Operators {
		if approval.Approved {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO operator_approvals (owner, operator, updated_at) VALUES (?, ?, ?)
				 ON CONFLICT(owner, operator) DO UPDATE SET updated_at = excluded.updated_at`,
				approval.Owner.String(), approval.Operator.String(), now,
			)
		} else {
			_, err = tx.ExecContext(ctx,
				`DELETE FROM operator_approvals WHERE owner = ? AND operator = ?`,
				approval.Owner.String(), approval.Operator.String(),
			)
		}
		if err != nil {
			return nil, fmt.Errorf("write operator approval: %w", err)
		}
	}

	for _, evt := range sealed {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO events (
			   seq, event_type, timestamp_nanos, actor, token_id, request_id, payload_json,
			   hash, prev_hash, chain_hash, signature, signature_key_id
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			int64(evt.Seq),
			string(evt.Type),
			evt.Timestamp.UnixNano(),
			evt.Actor.String(),
			int64(evt.TokenID),
			evt.RequestID,
			evt.PayloadJSON,
			evt.Hash,
			evt.PrevHash,
			evt.ChainHash,
			evt.Signature,
			evt.SignatureKeyID,
		); err != nil {
			if isPrimaryKeyViolation(err) {
				return nil, fmt.Errorf("append event %d: %w", evt.Seq, storage.ErrSequenceConflict)
			}
			return nil, fmt.Errorf("append event %d: %w", evt.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit registry change: %w", err)
	}
	return sealed, nil
}

func readHead(ctx context.Context, tx *sql.Tx) (integrity.Head, error) {
	var seq int64
	var chainHash string
	err := tx.QueryRowContext(ctx,
		`SELECT seq, chain_hash FROM events ORDER BY seq DESC LIMIT 1`,
	).Scan(&seq, &chainHash)
	if errors.Is(err, sql.ErrNoRows) {
		return integrity.Head{}, nil
	}
	if err != nil {
		return integrity.Head{}, fmt.Errorf("read journal head: %w", err)
	}
	return integrity.Head{Seq: uint64(seq), ChainHash: chainHash}, nil
}

// ListEvents implements storage.EventLog.
func (s *Store) ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, storage.ErrNotConfigured
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT seq, event_type, timestamp_nanos, actor, token_id, request_id, payload_json,
		        hash, prev_hash, chain_hash, signature, signature_key_id
		   FROM events
		  WHERE seq > ?
		  ORDER BY seq ASC
		  LIMIT ?`,
		int64(afterSeq), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]event.Event, 0, limit)
	for rows.Next() {
		var (
			evt          event.Event
			seq, tokenID int64
			nanos        int64
			eventType    string
			actor        string
			payloadJSON  []byte
		)
		if err := rows.Scan(
			&seq, &eventType, &nanos, &actor, &tokenID, &evt.RequestID, &payloadJSON,
			&evt.Hash, &evt.PrevHash, &evt.ChainHash, &evt.Signature, &evt.SignatureKeyID,
		); err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		evt.Seq = uint64(seq)
		evt.Type = event.Type(eventType)
		evt.Timestamp = time.Unix(0, nanos).UTC()
		evt.Actor = token.Address(actor)
		evt.TokenID = token.ID(tokenID)
		evt.PayloadJSON = payloadJSON
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// LatestSeq implements storage.EventLog.
func (s *Store) LatestSeq(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, storage.ErrNotConfigured
	}
	var seq sql.NullInt64
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT MAX(seq) FROM events`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("latest event seq: %w", err)
	}
	if !seq.Valid {
		return 0, nil
	}
	return uint64(seq.Int64), nil
}

func isPrimaryKeyViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ storage.Backend = (*Store)(nil)
