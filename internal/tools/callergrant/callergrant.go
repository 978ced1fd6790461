// Package callergrant generates caller grant keys and issues signed grants.
package callergrant

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	entrypoint "github.com/Douglas360/smart-contracts/internal/platform/cmd"
	"github.com/Douglas360/smart-contracts/internal/services/registry/callerauth"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/token"
)

// EnvGrantPrivateKey holds the issuer signing key.
const EnvGrantPrivateKey = "REGISTRY_GRANT_PRIVATE_KEY"

// Keygen generates a caller grant key pair and writes exports.
func Keygen(out io.Writer, reader io.Reader) error {
	if out == nil {
		return errors.New("output is required")
	}
	if reader == nil {
		reader = rand.Reader
	}
	publicKey, privateKey, err := ed25519.GenerateKey(reader)
	if err != nil {
		return fmt.Errorf("generate caller grant key: %w", err)
	}
	if _, err := fmt.Fprintf(out, "export %s=%s\n", EnvGrantPrivateKey, base64.RawStdEncoding.EncodeToString(privateKey)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "export %s=%s\n", callerauth.EnvGrantPublicKey, base64.RawStdEncoding.EncodeToString(publicKey)); err != nil {
		return err
	}
	return nil
}

// IssueConfig holds configuration for issuing one grant.
type IssueConfig struct {
	Caller     string        `env:"REGISTRY_GRANT_CALLER"`
	Issuer     string        `env:"REGISTRY_GRANT_ISSUER"`
	Audience   string        `env:"REGISTRY_GRANT_AUDIENCE"`
	PrivateKey string        `env:"REGISTRY_GRANT_PRIVATE_KEY"`
	TTL        time.Duration `env:"REGISTRY_GRANT_TTL" envDefault:"1h"`
}

// ParseIssueConfig loads environment defaults and then flags.
func ParseIssueConfig(fs *flag.FlagSet, args []string) (IssueConfig, error) {
	var cfg IssueConfig
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return IssueConfig{}, err
	}
	fs.StringVar(&cfg.Caller, "caller", cfg.Caller, "caller address the grant authenticates")
	fs.StringVar(&cfg.Issuer, "issuer", cfg.Issuer, "grant issuer")
	fs.StringVar(&cfg.Audience, "audience", cfg.Audience, "grant audience")
	fs.DurationVar(&cfg.TTL, "ttl", cfg.TTL, "grant lifetime")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return IssueConfig{}, err
	}
	return cfg, nil
}

// Issue signs a grant described by cfg and writes it to out.
func Issue(cfg IssueConfig, out io.Writer, now time.Time) error {
	if out == nil {
		return errors.New("output is required")
	}
	if strings.TrimSpace(cfg.PrivateKey) == "" {
		return fmt.Errorf("%s is required", EnvGrantPrivateKey)
	}
	key, err := callerauth.DecodePrivateKey(cfg.PrivateKey)
	if err != nil {
		return err
	}
	grant, err := callerauth.Issue(callerauth.IssueRequest{
		Caller:   token.ParseAddress(cfg.Caller),
		Issuer:   cfg.Issuer,
		Audience: cfg.Audience,
		TTL:      cfg.TTL,
		Now:      now,
	}, key)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, grant)
	return err
}

// Run dispatches the keygen and issue subcommands.
func Run(args []string, out, errOut io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: caller-grant <keygen|issue> [flags]")
	}
	switch args[0] {
	case "keygen":
		return Keygen(out, nil)
	case "issue":
		fs := flag.NewFlagSet("caller-grant issue", flag.ContinueOnError)
		if errOut != nil {
			fs.SetOutput(errOut)
		}
		cfg, err := ParseIssueConfig(fs, args[1:])
		if err != nil {
			return err
		}
		return Issue(cfg, out, time.Now())
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
