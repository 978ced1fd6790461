package integrity

import (
	"crypto/hkdf"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Scope is the HKDF info label for registry journal signing keys.
const Scope = "registry-journal"

var (
	// ErrUnknownKey reports a signature made with a key id the keyring lacks.
	ErrUnknownKey = errors.New("unknown signature key id")
	// ErrSignatureMismatch reports a signature that does not match its chain hash.
	ErrSignatureMismatch = errors.New("signature mismatch")
)

// Keyring holds HKDF-derived signing keys by id. Only the active key signs;
// every key verifies, so retired keys keep old journals checkable.
type Keyring struct {
	derived     map[string][]byte
	activeKeyID string
}

// NewKeyring derives a signing key from each root secret in keys.
func NewKeyring(keys map[string][]byte, activeKeyID string) (*Keyring, error) {
	if len(keys) == 0 {
		return nil, errors.New("hmac keys are required")
	}
	activeKeyID = strings.TrimSpace(activeKeyID)
	if activeKeyID == "" {
		return nil, errors.New("active hmac key id is required")
	}
	if _, ok := keys[activeKeyID]; !ok {
		return nil, fmt.Errorf("active hmac key id %q is not configured", activeKeyID)
	}
	derived := make(map[string][]byte, len(keys))
	for id, root := range keys {
		if len(root) == 0 {
			return nil, fmt.Errorf("hmac key %q is empty", id)
		}
		key, err := hkdf.Key(sha256.New, root, nil, Scope, sha256.Size)
		if err != nil {
			return nil, fmt.Errorf("derive journal key %q: %w", id, err)
		}
		derived[id] = key
	}
	return &Keyring{derived: derived, activeKeyID: activeKeyID}, nil
}

// ActiveKeyID returns the id of the signing key.
func (k *Keyring) ActiveKeyID() string {
	if k == nil {
		return ""
	}
	return k.activeKeyID
}

// KeyIDs returns every key id that can verify, sorted.
func (k *Keyring) KeyIDs() []string {
	if k == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(k.derived))
}

// Sign signs a chain hash with the active key and returns the signature and key id.
func (k *Keyring) Sign(chainHash string) (signature, keyID string, err error) {
	if k == nil {
		return "", "", errors.New("hmac keyring is not configured")
	}
	return mac(k.derived[k.activeKeyID], chainHash), k.activeKeyID, nil
}

// Verify checks a chain hash signature made with keyID.
func (k *Keyring) Verify(chainHash, signature, keyID string) error {
	if k == nil {
		return errors.New("hmac keyring is not configured")
	}
	keyID = strings.TrimSpace(keyID)
	key, ok := k.derived[keyID]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownKey, keyID)
	}
	if !hmac.Equal([]byte(mac(key, chainHash)), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}

func mac(key []byte, value string) string {
	h := hmac.New(sha256.New, key)
	_, _ = h.Write([]byte(value))
	return hex.EncodeToString(h.Sum(nil))
}
