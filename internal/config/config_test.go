package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "0123456789abcdef-test")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.Port != 3001 {
		t.Errorf("port = %d, want 3001", cfg.API.Port)
	}
	if cfg.Session.CookieName != "jobboard_sid" || cfg.Session.TTL != 24*time.Hour {
		t.Errorf("unexpected session defaults %+v", cfg.Session)
	}
	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("driver = %q, want %q", cfg.Database.Driver, DriverPostgres)
	}
	if got := cfg.Redis.Addr(); got != "localhost:6379" {
		t.Errorf("redis addr = %q", got)
	}
	if len(cfg.API.AllowedOrigins) != 0 {
		t.Errorf("allowed origins = %v, want none", cfg.API.AllowedOrigins)
	}
}

func TestLoadFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("API_PORT", "8080")
	t.Setenv("API_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_SQLITE_PATH", "/tmp/jobs.db")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("port = %d", cfg.API.Port)
	}
	if want := []string{"http://a.test", "http://b.test"}; strings.Join(cfg.API.AllowedOrigins, "|") != strings.Join(want, "|") {
		t.Errorf("origins = %v, want %v", cfg.API.AllowedOrigins, want)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Errorf("ttl = %v", cfg.Session.TTL)
	}
	if cfg.Database.Driver != DriverSQLite || cfg.Database.SQLitePath != "/tmp/jobs.db" {
		t.Errorf("database = %+v", cfg.Database)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]map[string]string{
		"short secret":   {"SESSION_SECRET": "short"},
		"unknown driver": {"DATABASE_DRIVER": "mysql"},
		"bad log format": {"LOG_FORMAT": "xml"},
		"zero rate":      {"API_LOGIN_RATE_LIMIT_PER_HOUR": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadDatabaseIgnoresSessionSettings(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("DATABASE_DRIVER", "sqlite")

	db, err := LoadDatabase()
	if err != nil {
		t.Fatalf("LoadDatabase: %v", err)
	}
	if db.SQLitePath != "jobboard.db" {
		t.Errorf("sqlite path = %q", db.SQLitePath)
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "jobs", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=jobs sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
