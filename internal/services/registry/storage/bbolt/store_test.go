package bbolt

import (
	"path/filepath"
	"testing"

	"github.com/Douglas360/smart-contracts/internal/services/registry/storage"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage/integrity"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage/storagetest"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open("  ", nil); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestStoreContract(t *testing.T) {
	t.Parallel()

	paths := map[string]string{}
	storagetest.Run(t, func(t *testing.T, keyring *integrity.Keyring) storage.Backend {
		path, ok := paths[t.Name()]
		if !ok {
			path = filepath.Join(t.TempDir(), "registry.bolt")
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

func TestUint64KeyOrdersNumerically(t *testing.T) {
	t.Parallel()

	if string(uint64Key(2)) >= string(uint64Key(10)) {
		t.Fatal("expected big-endian keys to sort numerically")
	}
}

func TestOperatorKeyIsSeparated(t *testing.T) {
	t.Parallel()

	if string(operatorKey("ab", "c")) == string(operatorKey("a", "bc")) {
		t.Fatal("expected distinct keys for distinct pairs")
	}
}
