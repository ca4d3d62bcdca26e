package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// CatalogDir is the external catalog folder; empty means built-ins only.
	CatalogDir string
	// DatabaseURL enables calculation history when set.
	DatabaseURL string
	// APITokenKey enables bearer-token checks on /api when set.
	APITokenKey string

	RateLimitRPS   float64
	RateLimitBurst int

	TLSCertFile string
	TLSKeyFile  string
}

// Load reads a .env file when one exists (variables already in the
// environment win), then the environment, applying defaults where unset.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	shutdown, err := time.ParseDuration(envOrDefault("SHUTDOWN_TIMEOUT", "5s"))
	if err != nil || shutdown <= 0 {
		return nil, errors.New("invalid SHUTDOWN_TIMEOUT")
	}
	rps, err := strconv.ParseFloat(envOrDefault("RATE_LIMIT_RPS", "5"), 64)
	if err != nil || rps <= 0 {
		return nil, errors.New("invalid RATE_LIMIT_RPS")
	}
	burst, err := strconv.Atoi(envOrDefault("RATE_LIMIT_BURST", "10"))
	if err != nil || burst <= 0 {
		return nil, errors.New("invalid RATE_LIMIT_BURST")
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "text"),
		ShutdownTimeout: shutdown,
		CatalogDir:      os.Getenv("CATALOG_DIR"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		APITokenKey:     os.Getenv("API_TOKEN_KEY"),
		RateLimitRPS:    rps,
		RateLimitBurst:  burst,
		TLSCertFile:     os.Getenv("TLS_CERT_FILE"),
		TLSKeyFile:      os.Getenv("TLS_KEY_FILE"),
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return nil, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	return cfg, nil
}

// TLS reports whether the server should listen with TLS.
func (c *Config) TLS() bool {
	return c.TLSCertFile != ""
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
