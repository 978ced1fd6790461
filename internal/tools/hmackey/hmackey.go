// Package hmackey generates secrets for signing the registry event journal.
package hmackey

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// Config holds configuration for HMAC key generation.
type Config struct {
	Bytes int
	// KeyID, when set, is emitted as the active key id and as a rotation entry.
	KeyID string
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Bytes: 32}
	fs.IntVar(&cfg.Bytes, "bytes", cfg.Bytes, "number of random bytes (default: 32)")
	fs.StringVar(&cfg.KeyID, "key-id", cfg.KeyID, "optional key id for rotation")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run generates the key and writes it to out.
func Run(cfg Config, out io.Writer, reader io.Reader) error {
	if cfg.Bytes <= 0 {
		return errors.New("bytes must be greater than zero")
	}
	if out == nil {
		return errors.New("output is required")
	}
	keyID := strings.TrimSpace(cfg.KeyID)
	if strings.ContainsAny(keyID, "=, ") {
		return fmt.Errorf("key id %q must not contain '=', ',' or spaces", keyID)
	}
	if reader == nil {
		reader = rand.Reader
	}

	buf := make([]byte, cfg.Bytes)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return fmt.Errorf("generate random bytes: %w", err)
	}
	secret := hex.EncodeToString(buf)
	if keyID == "" {
		_, err := fmt.Fprintf(out, "REGISTRY_EVENT_HMAC_KEY=%s\n", secret)
		return err
	}
	if _, err := fmt.Fprintf(out, "REGISTRY_EVENT_HMAC_KEY_ID=%s\n", keyID); err != nil {
		return err
	}
	// Append to any existing REGISTRY_EVENT_HMAC_KEYS value when rotating.
	_, err := fmt.Fprintf(out, "REGISTRY_EVENT_HMAC_KEYS=%s=%s\n", keyID, secret)
	return err
}
