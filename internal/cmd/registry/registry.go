// Package registry parses registry server configuration and starts it.
package registry

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	entrypoint "github.com/Douglas360/smart-contracts/internal/platform/cmd"
	server "github.com/Douglas360/smart-contracts/internal/services/registry/app"
	"github.com/Douglas360/smart-contracts/internal/services/registry/callerauth"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/token"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage/integrity"
)

// Config holds registry command configuration.
type Config struct {
	Port           int      `env:"REGISTRY_PORT" envDefault:"8095"`
	Addr           string   `env:"REGISTRY_ADDR"`
	HTTPAddr       string   `env:"REGISTRY_HTTP_ADDR" envDefault:":8096"`
	Authority      string   `env:"REGISTRY_AUTHORITY"`
	Storage        string   `env:"REGISTRY_STORAGE" envDefault:"sqlite"`
	DBPath         string   `env:"REGISTRY_DB_PATH" envDefault:"data/registry.db"`
	InsecureAuth   bool     `env:"REGISTRY_AUTH_INSECURE"`
	AllowedOrigins []string `env:"REGISTRY_ALLOWED_ORIGINS" envSeparator:","`

	Keyring integrity.KeyringConfig
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The registry gRPC server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The registry gRPC listen address (overrides -port)")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The registry HTTP address; empty disables HTTP")
	fs.StringVar(&cfg.Authority, "authority", cfg.Authority, "The administrative authority address for a new registry")
	fs.StringVar(&cfg.Storage, "storage", cfg.Storage, "Storage backend: sqlite, bbolt or memory")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "Path of the registry database file")
	fs.BoolVar(&cfg.InsecureAuth, "insecure-auth", cfg.InsecureAuth, "Trust the x-registry-caller header (development only)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.Authority) == "" {
		return Config{}, errors.New("authority is required (REGISTRY_AUTHORITY or -authority)")
	}
	return cfg, nil
}

// ListenAddr returns the gRPC listen address.
func (c Config) ListenAddr() string {
	if strings.TrimSpace(c.Addr) != "" {
		return c.Addr
	}
	return fmt.Sprintf(":%d", c.Port)
}

// Run starts the registry service.
func Run(ctx context.Context, cfg Config) error {
	keyring, err := cfg.Keyring.Keyring()
	if err != nil {
		return fmt.Errorf("load event keyring: %w", err)
	}
	if keyring == nil {
		log.Printf("no event HMAC key configured; journal entries are chained but unsigned")
	}

	grants, ok, err := callerauth.LoadConfigFromEnv(time.Now)
	if err != nil {
		return fmt.Errorf("load caller grant config: %w", err)
	}
	var grantConfig *callerauth.Config
	if ok {
		grantConfig = &grants
	} else if !cfg.InsecureAuth {
		log.Printf("caller grants are not configured; only read methods are available")
	}

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceRegistry, func(ctx context.Context) error {
		backend, err := server.OpenBackend(cfg.Storage, cfg.DBPath, keyring)
		if err != nil {
			return err
		}
		return server.Run(ctx, server.Config{
			GRPCAddr:        cfg.ListenAddr(),
			HTTPAddr:        cfg.HTTPAddr,
			Authority:       token.ParseAddress(cfg.Authority),
			Backend:         backend,
			Keyring:         keyring,
			Grants:          grantConfig,
			InsecureCallers: cfg.InsecureAuth,
			AllowedOrigins:  cfg.AllowedOrigins,
		})
	})
}
