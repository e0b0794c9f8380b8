package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wellmind/authcore/store"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", `
app:
  name: authcore
`)

	cfg, err := Load(WithConfigFile(path))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.App.Environment != "development" {
		t.Errorf("expected development default, got %q", cfg.App.Environment)
	}
	if !cfg.App.Debug {
		t.Error("expected debug to default on in development")
	}
	if cfg.Server.Port != 5001 {
		t.Errorf("expected default port 5001, got %d", cfg.Server.Port)
	}
	if cfg.Store.Driver != store.DriverMongo {
		t.Errorf("expected mongo driver default, got %q", cfg.Store.Driver)
	}
	if cfg.Store.Database != "mental_wellness_db" {
		t.Errorf("expected default database, got %q", cfg.Store.Database)
	}
	if cfg.Token.TTL != 7*24*time.Hour {
		t.Errorf("expected 7-day token TTL, got %v", cfg.Token.TTL)
	}
	if cfg.Token.Secret == "" {
		t.Error("expected a development fallback secret")
	}
	if cfg.Password.BcryptCost != 12 {
		t.Errorf("expected default bcrypt cost 12, got %d", cfg.Password.BcryptCost)
	}
}

func TestLoad_YAMLValues(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", `
app:
  name: authcore
  environment: development
server:
  port: 6001
store:
  driver: memory
token:
  ttl: 24h
logging:
  level: debug
  format: json
`)

	cfg, err := Load(WithConfigFile(path))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 6001 {
		t.Errorf("expected port 6001, got %d", cfg.Server.Port)
	}
	if cfg.Store.Driver != store.DriverMemory {
		t.Errorf("expected memory driver, got %q", cfg.Store.Driver)
	}
	if cfg.Token.TTL != 24*time.Hour {
		t.Errorf("expected 24h TTL, got %v", cfg.Token.TTL)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("expected logging overrides, got %+v", cfg.Logging)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", `
app:
  name: authcore
server:
  port: 6001
`)

	t.Setenv("PORT", "7001")
	t.Setenv("MONGODB_URI", "mongodb://db.internal:27017")
	t.Setenv("JWT_SECRET_KEY", "env-secret")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load(WithConfigFile(path))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 7001 {
		t.Errorf("expected env PORT to win, got %d", cfg.Server.Port)
	}
	if cfg.Store.URI != "mongodb://db.internal:27017" {
		t.Errorf("expected env MONGODB_URI to win, got %q", cfg.Store.URI)
	}
	if cfg.Token.Secret != "env-secret" {
		t.Errorf("expected env JWT_SECRET_KEY to win, got %q", cfg.Token.Secret)
	}
	if cfg.Store.Driver != store.DriverMemory {
		t.Errorf("expected env STORE_DRIVER to win, got %q", cfg.Store.Driver)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yml", `
app:
  name: authcore
`)
	envPath := writeFile(t, dir, ".env", "MONGODB_DATABASE=envfile_db\n")
	t.Setenv("MONGODB_DATABASE", "")
	os.Unsetenv("MONGODB_DATABASE")

	cfg, err := Load(WithConfigFile(cfgPath), WithEnvFile(envPath))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Store.Database != "envfile_db" {
		t.Errorf("expected .env database, got %q", cfg.Store.Database)
	}
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", `
app:
  name: authcore
  environment: production
store:
  driver: memory
`)

	_, err := Load(WithConfigFile(path))
	if err == nil {
		t.Fatal("expected production without a signing secret to fail")
	}
}

func TestLoad_InvalidEnvironment(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", `
app:
  name: authcore
  environment: sandbox
`)

	_, err := Load(WithConfigFile(path))
	if err == nil {
		t.Fatal("expected an unknown environment to fail validation")
	}
}
