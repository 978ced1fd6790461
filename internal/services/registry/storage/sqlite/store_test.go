package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/Douglas360/smart-contracts/internal/services/registry/storage"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage/integrity"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage/storagetest"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open("", nil); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestStoreContract(t *testing.T) {
	t.Parallel()

	paths := map[string]string{}
	storagetest.Run(t, func(t *testing.T, keyring *integrity.Keyring) storage.Backend {
		path, ok := paths[t.Name()]
		if !ok {
			path = filepath.Join(t.TempDir(), "registry.db")
			paths[t.Name()] = path
		}
		store, err := Open(path, keyring)
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		t.Cleanup(func() { _ = store.Close() })
		return store
	}, storagetest.Options{Durable: true})
}

func TestMigrationsAreIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "registry.db")
	first, err := Open(path, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}
	second, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	if err := second.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}
}

func TestNilStoreIsNotConfigured(t *testing.T) {
	t.Parallel()

	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
}
