package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Driver != DriverFile {
		t.Fatalf("expected file driver, got %s", cfg.Store.Driver)
	}
	if cfg.SessionTTL() != 30*24*time.Hour {
		t.Fatalf("expected 30 day ttl, got %s", cfg.SessionTTL())
	}
	if cfg.Session.Secret == "" {
		t.Fatalf("expected a development secret to be filled in")
	}
}

func TestLoadYAMLThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("server:\n  port: \"9000\"\n  cors_origins: [\"http://a.test\"]\nstore:\n  dir: /tmp/ds\nsession:\n  ttl: 2h\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PORT", "9100")
	t.Setenv("CORS_ORIGINS", "http://b.test, http://c.test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9100" {
		t.Fatalf("expected env port override, got %s", cfg.Server.Port)
	}
	if cfg.Store.Dir != "/tmp/ds" {
		t.Fatalf("expected yaml dir, got %s", cfg.Store.Dir)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "http://c.test" {
		t.Fatalf("unexpected cors origins %v", cfg.Server.CORSOrigins)
	}
	if cfg.SessionTTL() != 2*time.Hour {
		t.Fatalf("expected 2h ttl, got %s", cfg.SessionTTL())
	}
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "redis")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestValidateRequiresSecretInRelease(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("SESSION_SECRET", "")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected missing secret error")
	}
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	t.Setenv("GIN_MODE", "staging")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected unknown mode error")
	}
}
