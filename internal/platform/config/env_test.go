package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port    int           `env:"REGISTRY_TEST_PORT" envDefault:"123"`
	Storage string        `env:"REGISTRY_TEST_STORAGE" envDefault:"sqlite"`
	TTL     time.Duration `env:"REGISTRY_TEST_TTL" envDefault:"1h"`
	Origins []string      `env:"REGISTRY_TEST_ORIGINS" envSeparator:","`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 || cfg.Storage != "sqlite" || cfg.TTL != time.Hour {
		t.Fatalf("config = %+v", cfg)
	}
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("REGISTRY_TEST_STORAGE", "bbolt")
	t.Setenv("REGISTRY_TEST_ORIGINS", "https://a.example,https://b.example")
	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Storage != "bbolt" {
		t.Fatalf("storage = %q", cfg.Storage)
	}
	if len(cfg.Origins) != 2 || cfg.Origins[1] != "https://b.example" {
		t.Fatalf("origins = %v", cfg.Origins)
	}
}

func TestParseEnvReportsAllErrors(t *testing.T) {
	t.Setenv("REGISTRY_TEST_PORT", "not-an-int")
	t.Setenv("REGISTRY_TEST_TTL", "soon")

	var cfg envTestConfig
	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "parse env:") {
		t.Fatalf("error = %v", err)
	}
	if !strings.Contains(msg, `"Port"`) || !strings.Contains(msg, `"TTL"`) {
		t.Fatalf("expected both fields in %q", msg)
	}
}
