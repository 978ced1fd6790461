package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Douglas360/smart-contracts/internal/services/registry/storage"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage/bbolt"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage/integrity"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage/memory"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage/sqlite"
)

// Storage backend kinds.
const (
	BackendSQLite = "sqlite"
	BackendBbolt  = "bbolt"
	BackendMemory = "memory"
)

// OpenBackend opens the named storage backend at path.
func OpenBackend(kind, path string, keyring *integrity.Keyring) (storage.Backend, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	switch kind {
	case "", BackendSQLite:
		if err := ensureDir(path); err != nil {
			return nil, err
		}
		store, err := sqlite.Open(path, keyring)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case BackendBbolt:
		if err := ensureDir(path); err != nil {
			return nil, err
		}
		store, err := bbolt.Open(path, keyring)
		if err != nil {
			return nil, fmt.Errorf("open bbolt store: %w", err)
		}
		return store, nil
	case BackendMemory:
		return memory.New(keyring), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}

func ensureDir(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("storage path is required")
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	return nil
}
