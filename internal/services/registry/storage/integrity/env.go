package integrity

import (
	"fmt"
	"strings"
)

const defaultKeyID = "v1"

// KeyringConfig is the HMAC key configuration loaded from the environment.
type KeyringConfig struct {
	// Keys is a comma-separated list of id=secret pairs, for rotation.
	Keys string `env:"REGISTRY_EVENT_HMAC_KEYS"`
	// Key is a single secret used when Keys is empty.
	Key string `env:"REGISTRY_EVENT_HMAC_KEY"`
	// KeyID selects the active signing key.
	KeyID string `env:"REGISTRY_EVENT_HMAC_KEY_ID"`
}

// Enabled reports whether any key material is configured.
func (c KeyringConfig) Enabled() bool {
	return strings.TrimSpace(c.Keys) != "" || strings.TrimSpace(c.Key) != ""
}

// Keyring builds the keyring described by c. It returns nil, nil when no key
// material is configured so journals are chained but unsigned.
func (c KeyringConfig) Keyring() (*Keyring, error) {
	if !c.Enabled() {
		return nil, nil
	}
	keyID := strings.TrimSpace(c.KeyID)
	if keyID == "" {
		keyID = defaultKeyID
	}

	keySpec := strings.TrimSpace(c.Keys)
	if keySpec == "" {
		return NewKeyring(map[string][]byte{keyID: []byte(strings.TrimSpace(c.Key))}, keyID)
	}

	keys := make(map[string][]byte)
	for _, entry := range strings.Split(keySpec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, value, ok := strings.Cut(entry, "=")
		id = strings.TrimSpace(id)
		value = strings.TrimSpace(value)
		if !ok || id == "" || value == "" {
			return nil, fmt.Errorf("invalid REGISTRY_EVENT_HMAC_KEYS entry %q", entry)
		}
		keys[id] = []byte(value)
	}
	return NewKeyring(keys, keyID)
}
