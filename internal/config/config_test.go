package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newViper(env map[string]string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range env {
		v.Set(k, val)
	}
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg, err := fromViper(newViper(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.Store.Driver != "redis" {
		t.Errorf("expected redis driver, got %s", cfg.Store.Driver)
	}
	if cfg.Store.Timeout != 2*time.Second {
		t.Errorf("expected 2s store timeout, got %v", cfg.Store.Timeout)
	}
	if cfg.Store.RedisConfigured() {
		t.Error("redis should not be configured by default")
	}
	if cfg.Store.Atomic {
		t.Error("atomic counters should be off by default")
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("expected 2 default origins, got %v", cfg.AllowedOrigins)
	}
	if cfg.GitHub.APIURL != "https://api.github.com" {
		t.Errorf("unexpected api url %s", cfg.GitHub.APIURL)
	}
}

func TestFromViperOverrides(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]string{
		"STORE_DRIVER":     "SQLite",
		"COUNTER_ATOMIC":   "true",
		"REDIS_URL":        "rediss://default:pw@example.upstash.io:6379",
		"ALLOWED_ORIGINS":  " https://zach.dev , ,https://www.zach.dev",
		"GITHUB_API_URL":   "http://localhost:9999/",
		"GITHUB_CACHE_TTL": "2h",
		"GITHUB_STALE_TTL": "30m",
		"STORE_TIMEOUT":    "-1s",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %s", cfg.Store.Driver)
	}
	if !cfg.Store.Atomic {
		t.Error("expected atomic counters")
	}
	if !cfg.Store.RedisConfigured() {
		t.Error("expected redis to be configured")
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://www.zach.dev" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.GitHub.APIURL != "http://localhost:9999" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.GitHub.APIURL)
	}
	if cfg.GitHub.StaleTTL != 2*time.Hour {
		t.Errorf("stale ttl should be raised to cache ttl, got %v", cfg.GitHub.StaleTTL)
	}
	if cfg.Store.Timeout != 2*time.Second {
		t.Errorf("non-positive timeout should reset to 2s, got %v", cfg.Store.Timeout)
	}
}

func TestFromViperRejectsUnknownValues(t *testing.T) {
	tests := map[string]map[string]string{
		"gin mode": {"GIN_MODE": "loud"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := fromViper(newViper(env)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFromViperKeepsUnknownDriver(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]string{"STORE_DRIVER": "mongo"}))
	if err != nil {
		t.Fatalf("unknown store driver must not prevent startup: %v", err)
	}
	if cfg.Store.Driver != "mongo" {
		t.Errorf("expected driver to be kept for logging, got %s", cfg.Store.Driver)
	}
}
