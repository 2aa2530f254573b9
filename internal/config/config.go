package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	Store   StoreConfig
	GitHub  GitHubConfig
	Contact ContactConfig

	AllowedOrigins []string
	AdminToken     string
}

type StoreConfig struct {
	Driver          string // redis, sqlite or memory
	RedisURL        string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisPrefix     string
	Timeout         time.Duration
	SQLitePath      string
	Atomic          bool
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

type GitHubConfig struct {
	Token      string
	User       string
	APIURL     string
	GraphQLURL string
	CacheTTL   time.Duration
	StaleTTL   time.Duration
}

type ContactConfig struct {
	ResendAPIKey string
	From         string
	To           string
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPass     string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", "redis")
	v.SetDefault("REDIS_PREFIX", "portfolio:")
	v.SetDefault("STORE_TIMEOUT", 2*time.Second)
	v.SetDefault("SQLITE_PATH", "portfolio.db")
	v.SetDefault("COUNTER_ATOMIC", false)
	v.SetDefault("BREAKER_FAILURES", 5)
	v.SetDefault("BREAKER_COOLDOWN", 30*time.Second)
	v.SetDefault("GITHUB_USER", "Zachkp")
	v.SetDefault("GITHUB_API_URL", "https://api.github.com")
	v.SetDefault("GITHUB_GRAPHQL_URL", "https://api.github.com/graphql")
	v.SetDefault("GITHUB_CACHE_TTL", time.Hour)
	v.SetDefault("GITHUB_STALE_TTL", 24*time.Hour)
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:4321")
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", "587")
}

// Load reads an optional .env file and then the process environment.
// Store settings are never fatal: a bad or missing store degrades to memory.
func Load() (*Config, error) {
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:     v.GetString("PORT"),
		GinMode:  strings.ToLower(v.GetString("GIN_MODE")),
		LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),
		Store: StoreConfig{
			Driver:          strings.ToLower(v.GetString("STORE_DRIVER")),
			RedisURL:        v.GetString("REDIS_URL"),
			RedisAddr:       v.GetString("REDIS_ADDR"),
			RedisPassword:   v.GetString("REDIS_PASSWORD"),
			RedisDB:         v.GetInt("REDIS_DB"),
			RedisPrefix:     v.GetString("REDIS_PREFIX"),
			Timeout:         v.GetDuration("STORE_TIMEOUT"),
			SQLitePath:      v.GetString("SQLITE_PATH"),
			Atomic:          v.GetBool("COUNTER_ATOMIC"),
			BreakerFailures: v.GetUint32("BREAKER_FAILURES"),
			BreakerCooldown: v.GetDuration("BREAKER_COOLDOWN"),
		},
		GitHub: GitHubConfig{
			Token:      v.GetString("GITHUB_TOKEN"),
			User:       v.GetString("GITHUB_USER"),
			APIURL:     strings.TrimRight(v.GetString("GITHUB_API_URL"), "/"),
			GraphQLURL: v.GetString("GITHUB_GRAPHQL_URL"),
			CacheTTL:   v.GetDuration("GITHUB_CACHE_TTL"),
			StaleTTL:   v.GetDuration("GITHUB_STALE_TTL"),
		},
		Contact: ContactConfig{
			ResendAPIKey: v.GetString("RESEND_API_KEY"),
			From:         v.GetString("CONTACT_FROM"),
			To:           v.GetString("CONTACT_TO"),
			SMTPHost:     v.GetString("SMTP_HOST"),
			SMTPPort:     v.GetString("SMTP_PORT"),
			SMTPUser:     v.GetString("SMTP_USER"),
			SMTPPass:     v.GetString("SMTP_PASS"),
		},
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		AdminToken:     v.GetString("ADMIN_TOKEN"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		return nil, fmt.Errorf("unknown GIN_MODE: %s", cfg.GinMode)
	}

	if cfg.Store.Timeout <= 0 {
		cfg.Store.Timeout = 2 * time.Second
	}
	if cfg.GitHub.StaleTTL < cfg.GitHub.CacheTTL {
		cfg.GitHub.StaleTTL = cfg.GitHub.CacheTTL
	}

	return cfg, nil
}

// RedisConfigured reports whether any Redis connection parameters were given.
func (s StoreConfig) RedisConfigured() bool {
	return s.RedisURL != "" || s.RedisAddr != ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
