// Package callerauth verifies and issues caller grants: short-lived EdDSA JWTs
// whose subject is the caller's registry address.
package callerauth

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Douglas360/smart-contracts/internal/platform/config"
	apperrors "github.com/Douglas360/smart-contracts/internal/platform/errors"
	"github.com/Douglas360/smart-contracts/internal/platform/id"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/token"
)

const (
	EnvGrantIssuer    = "REGISTRY_GRANT_ISSUER"
	EnvGrantAudience  = "REGISTRY_GRANT_AUDIENCE"
	EnvGrantPublicKey = "REGISTRY_GRANT_PUBLIC_KEY"
)

// grantEnv holds raw env values before post-parse validation.
type grantEnv struct {
	Issuer    string `env:"REGISTRY_GRANT_ISSUER"`
	Audience  string `env:"REGISTRY_GRANT_AUDIENCE"`
	PublicKey string `env:"REGISTRY_GRANT_PUBLIC_KEY"`
}

// Config defines how caller grants are verified.
type Config struct {
	Issuer   string
	Audience string
	Key      ed25519.PublicKey
	Now      func() time.Time
}

// Claims captures validated grant claims.
type Claims struct {
	Caller    token.Address
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	IssuedAt  time.Time
	JWTID     string
}

// LoadConfigFromEnv reads grant verification configuration. It returns
// ok=false when no grant settings are present at all.
func LoadConfigFromEnv(now func() time.Time) (cfg Config, ok bool, err error) {
	var raw grantEnv
	if err := config.ParseEnv(&raw); err != nil {
		return Config{}, false, fmt.Errorf("parse caller grant env: %w", err)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	publicKey := strings.TrimSpace(raw.PublicKey)
	if issuer == "" && audience == "" && publicKey == "" {
		return Config{}, false, nil
	}
	if issuer == "" {
		return Config{}, false, fmt.Errorf("%s is required", EnvGrantIssuer)
	}
	if audience == "" {
		return Config{}, false, fmt.Errorf("%s is required", EnvGrantAudience)
	}
	if publicKey == "" {
		return Config{}, false, fmt.Errorf("%s is required", EnvGrantPublicKey)
	}
	key, err := DecodePublicKey(publicKey)
	if err != nil {
		return Config{}, false, err
	}
	if now == nil {
		now = time.Now
	}
	return Config{Issuer: issuer, Audience: audience, Key: key, Now: now}, true, nil
}

// DecodePublicKey parses a base64 Ed25519 public key.
func DecodePublicKey(value string) (ed25519.PublicKey, error) {
	keyBytes, err := decodeBase64(strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("decode caller grant public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("caller grant public key must be %d bytes", ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(keyBytes), nil
}

// DecodePrivateKey parses a base64 Ed25519 private key.
func DecodePrivateKey(value string) (ed25519.PrivateKey, error) {
	keyBytes, err := decodeBase64(strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("decode caller grant private key: %w", err)
	}
	if len(keyBytes) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("caller grant private key must be %d bytes", ed25519.PrivateKeySize)
	}
	return ed25519.PrivateKey(keyBytes), nil
}

// GenerateKeyPair returns a new key pair encoded as unpadded base64.
func GenerateKeyPair() (publicKey, privateKey string, err error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("generate key pair: %w", err)
	}
	return base64.RawStdEncoding.EncodeToString(pub), base64.RawStdEncoding.EncodeToString(priv), nil
}

// IssueRequest describes a grant to sign.
type IssueRequest struct {
	Caller   token.Address
	Issuer   string
	Audience string
	TTL      time.Duration
	Now      time.Time
}

// Issue signs a caller grant with key.
func Issue(req IssueRequest, key ed25519.PrivateKey) (string, error) {
	if req.Caller.IsZero() {
		return "", fmt.Errorf("caller address is required")
	}
	if strings.TrimSpace(req.Issuer) == "" || strings.TrimSpace(req.Audience) == "" {
		return "", fmt.Errorf("issuer and audience are required")
	}
	if req.TTL <= 0 {
		return "", fmt.Errorf("ttl must be positive")
	}
	if len(key) != ed25519.PrivateKeySize {
		return "", fmt.Errorf("signing key is not configured")
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	jti, err := id.NewID()
	if err != nil {
		return "", err
	}
	claims := jwt.RegisteredClaims{
		Subject:   req.Caller.String(),
		Issuer:    req.Issuer,
		Audience:  jwt.ClaimStrings{req.Audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(req.TTL)),
		ID:        jti,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign caller grant: %w", err)
	}
	return signed, nil
}

// Verify checks a grant's signature and claims and returns the caller it names.
func Verify(grant string, cfg Config) (Claims, error) {
	grant = strings.TrimSpace(grant)
	if grant == "" {
		return Claims{}, apperrors.New(apperrors.CodeUnauthenticated, "caller grant is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Key) != ed25519.PublicKeySize {
		return Claims{}, errors.New("caller grant verifier is not configured")
	}

	var parsed jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(grant, &parsed, func(*jwt.Token) (any, error) {
		return cfg.Key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != cfg.Issuer {
		return Claims{}, invalid("caller grant issuer mismatch", "issuer")
	}
	if !slices.Contains([]string(parsed.Audience), cfg.Audience) {
		return Claims{}, invalid("caller grant audience mismatch", "audience")
	}
	caller := token.ParseAddress(parsed.Subject)
	if caller.IsZero() {
		return Claims{}, invalid("caller grant subject is required", "sub")
	}
	if parsed.ExpiresAt == nil {
		return Claims{}, invalid("caller grant exp is required", "exp")
	}

	now := cfg.Now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return Claims{}, apperrors.New(apperrors.CodeCallerGrantExpired, "caller grant is expired")
	}
	if parsed.NotBefore != nil && now.Before(parsed.NotBefore.Time) {
		return Claims{}, invalid("caller grant not active yet", "nbf")
	}

	claims := Claims{
		Caller:    caller,
		Issuer:    parsed.Issuer,
		Audience:  []string(parsed.Audience),
		ExpiresAt: exp,
		JWTID:     parsed.ID,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
}

func invalid(message, field string) error {
	return apperrors.WithMetadata(apperrors.CodeCallerGrantInvalid, message, map[string]string{"Field": field})
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.New(apperrors.CodeCallerGrantInvalid, "caller grant signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeCallerGrantInvalid, "caller grant alg is invalid")
	}
	return apperrors.New(apperrors.CodeCallerGrantInvalid, "caller grant is invalid")
}

func decodeBase64(value string) ([]byte, error) {
	if value == "" {
		return nil, errors.New("empty base64 value")
	}
	decoded, err := base64.RawStdEncoding.DecodeString(value)
	if err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}
