package registry

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("REGISTRY_AUTHORITY", "owner")
	fs := flag.NewFlagSet("registry", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8095 {
		t.Fatalf("expected default port 8095, got %d", cfg.Port)
	}
	if cfg.HTTPAddr != ":8096" {
		t.Fatalf("expected default http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.Storage != "sqlite" || cfg.DBPath != "data/registry.db" {
		t.Fatalf("unexpected storage defaults %q %q", cfg.Storage, cfg.DBPath)
	}
	if cfg.ListenAddr() != ":8095" {
		t.Fatalf("listen addr = %q", cfg.ListenAddr())
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("REGISTRY_AUTHORITY", "env-owner")
	t.Setenv("REGISTRY_STORAGE", "bbolt")
	t.Setenv("REGISTRY_EVENT_HMAC_KEY", "secret")
	t.Setenv("REGISTRY_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	fs := flag.NewFlagSet("registry", flag.ContinueOnError)
	args := []string{"-port", "9000", "-addr", "127.0.0.1:9001", "-authority", "flag-owner", "-insecure-auth"}
	cfg, err := ParseConfig(fs, args)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9000 || cfg.ListenAddr() != "127.0.0.1:9001" {
		t.Fatalf("port %d addr %q", cfg.Port, cfg.ListenAddr())
	}
	if cfg.Authority != "flag-owner" || cfg.Storage != "bbolt" || !cfg.InsecureAuth {
		t.Fatalf("config = %+v", cfg)
	}
	if !cfg.Keyring.Enabled() {
		t.Fatal("expected keyring config from env")
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("allowed origins = %v", cfg.AllowedOrigins)
	}
}

func TestParseConfigRequiresAuthority(t *testing.T) {
	t.Setenv("REGISTRY_AUTHORITY", "")
	fs := flag.NewFlagSet("registry", flag.ContinueOnError)
	if _, err := ParseConfig(fs, nil); err == nil {
		t.Fatal("expected error without authority")
	}
}
