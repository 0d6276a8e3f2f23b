package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	uploads := filepath.Join(t.TempDir(), "uploads")
	dir := writeConfig(t, `
server:
  mode: debug
database:
  driver: sqlite
  path: test.db
jwt:
  secret: short
storage:
  type: local
  local_path: `+uploads+`
`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("port: want=8080 got=%s", cfg.Server.Port)
	}
	if cfg.JWT.ExpireTime != 24*time.Hour {
		t.Fatalf("jwt expiry: want=24h got=%v", cfg.JWT.ExpireTime)
	}
	if !cfg.Scheduler.Enabled || cfg.Scheduler.OverdueCron != "@every 10m" {
		t.Fatalf("scheduler: got=%+v", cfg.Scheduler)
	}
	if cfg.Training.StatsCacheMinutes != 5 {
		t.Fatalf("stats cache minutes: want=5 got=%d", cfg.Training.StatsCacheMinutes)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "test.db" {
		t.Fatalf("database: got=%+v", cfg.Database)
	}
	if len(cfg.CORS.AllowedMethods) != 4 || cfg.CORS.MaxAgeSeconds != 600 || !cfg.CORS.AllowCredentials {
		t.Fatalf("cors defaults: got=%+v", cfg.CORS)
	}
	if cfg.ConfigFile == "" {
		t.Fatalf("config file path must be recorded")
	}
	if _, err := os.Stat(uploads); err != nil {
		t.Fatalf("local storage dir must be created: %v", err)
	}
}

func TestLoadConfigRejectsShortSecretInRelease(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: release
jwt:
  secret: too-short
storage:
  type: minio
`)
	if _, err := LoadConfig(dir); err == nil {
		t.Fatalf("expected error for short secret in release mode")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Fatalf("expected error when config.yaml is absent")
	}
}
