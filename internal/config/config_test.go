package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "app:\n  env: dev\n  timezone: Europe/Paris\npostgres:\n  dsn: postgres://file\nsync:\n  mode: xlsx\n  path: out.xlsx\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("APP_POSTGRES_DSN", "postgres://env")

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Postgres.DSN != "postgres://env" {
		t.Errorf("dsn = %q, want env override", c.Postgres.DSN)
	}
	if c.HTTP.Addr != ":8080" || c.Telegram.Timeout != 60 || c.Telegram.Enabled {
		t.Errorf("defaults not applied: %+v", c)
	}
	if c.Sync.Mode != "xlsx" || c.Sync.Path != "out.xlsx" {
		t.Errorf("sync = %+v", c.Sync)
	}
	if c.Location().String() != "Europe/Paris" {
		t.Errorf("location = %s", c.Location())
	}
}

func TestLocationFallback(t *testing.T) {
	var c Config
	c.App.Timezone = "Nowhere/Land"
	if c.Location() != time.UTC {
		t.Errorf("location = %s, want UTC", c.Location())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
