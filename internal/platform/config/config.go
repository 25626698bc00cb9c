// Package config builds process configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures every tunable for the server process.
type Config struct {
	Addr            string
	BasePath        string
	ShutdownTimeout time.Duration

	Redis       RedisConfig
	PostgresURL string
	Provider    ProviderConfig
	Audit       AuditConfig
}

// RedisConfig covers the record-store Redis backend. An empty URL means Redis
// is not configured.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ProviderConfig selects the identity provider. When BaseURL is set the
// remote HTTP provider is used; otherwise the in-process provider signs its
// own tokens with JWTSigningKey.
type ProviderConfig struct {
	BaseURL       string
	APIKey        string
	JWTSigningKey string
	TokenTTL      time.Duration
}

// AuditConfig sizes the async audit pipeline.
type AuditConfig struct {
	BufferSize int
}

// FromEnv builds a Config from environment variables, with development
// defaults for everything optional.
func FromEnv() Config {
	jwtSigningKey := getenv("JWT_SIGNING_KEY", "")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Config{
		Addr:            getenv("BUSLINK_ADDR", ":8080"),
		BasePath:        getenv("BUSLINK_BASE_PATH", "/api"),
		ShutdownTimeout: getenvDuration("BUSLINK_SHUTDOWN_TIMEOUT", 10*time.Second),
		Redis: RedisConfig{
			URL:          os.Getenv("BUSLINK_REDIS_URL"),
			PoolSize:     getenvInt("BUSLINK_REDIS_POOL_SIZE", 10),
			MinIdleConns: getenvInt("BUSLINK_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getenvDuration("BUSLINK_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getenvDuration("BUSLINK_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getenvDuration("BUSLINK_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		PostgresURL: os.Getenv("BUSLINK_POSTGRES_URL"),
		Provider: ProviderConfig{
			BaseURL:       os.Getenv("BUSLINK_PROVIDER_URL"),
			APIKey:        os.Getenv("BUSLINK_PROVIDER_API_KEY"),
			JWTSigningKey: jwtSigningKey,
			TokenTTL:      getenvDuration("BUSLINK_TOKEN_TTL", 24*time.Hour),
		},
		Audit: AuditConfig{
			BufferSize: getenvInt("BUSLINK_AUDIT_BUFFER", 256),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
