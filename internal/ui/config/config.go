package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/Netflix/go-env"
)

// Config for the web client
type Config struct {
	Environment  string        `env:"ENVIRONMENT,default=dev"`
	Host         string        `env:"HOST,default=0.0.0.0"`
	Port         int           `env:"PORT,default=3000"`
	LogLevel     string        `env:"LOG_LEVEL,default=debug"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,default=60s"`

	// API client
	APIBaseURL    string        `env:"API_BASE_URL,default=http://localhost:8080"`
	APITimeout    time.Duration `env:"API_TIMEOUT,default=10s"`
	APIRetries    int           `env:"API_RETRIES,default=2"`
	APIRetryDelay time.Duration `env:"API_RETRY_DELAY,default=1s"`

	// error monitoring
	MonitorFlushInterval time.Duration `env:"MONITOR_FLUSH_INTERVAL,default=10s"`
	MonitorMaxQueue      int           `env:"MONITOR_MAX_QUEUE,default=500"`
}

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"perf":    true,
	"prod":    true,
	"staging": true,
}

const (
	SessionCookieName = "shopfront_session"
	FlashCookieName   = "shopfront_flash"
)

func NewConfig() (*Config, error) {
	var cfg Config

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := validateUIConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// SecureCookies reports whether cookies should be marked Secure (everywhere except dev)
func (c *Config) SecureCookies() bool {
	return c.Environment != "dev" && c.Environment != "test"
}

func validateUIConfig(cfg *Config) error {
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid environment '%s'. Valid environments: dev, test, perf, staging, prod", cfg.Environment)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}

	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %v", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive, got %v", cfg.WriteTimeout)
	}
	if cfg.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive, got %v", cfg.IdleTimeout)
	}

	if cfg.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL cannot be empty")
	}
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) url, got %q", cfg.APIBaseURL)
	}

	if cfg.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive, got %v", cfg.APITimeout)
	}
	if cfg.APIRetries < 0 {
		return fmt.Errorf("API_RETRIES cannot be negative, got %d", cfg.APIRetries)
	}
	if cfg.APIRetryDelay < 0 {
		return fmt.Errorf("API_RETRY_DELAY cannot be negative, got %v", cfg.APIRetryDelay)
	}

	if cfg.MonitorFlushInterval <= 0 {
		return fmt.Errorf("MONITOR_FLUSH_INTERVAL must be positive, got %v", cfg.MonitorFlushInterval)
	}
	if cfg.MonitorMaxQueue < 1 {
		return fmt.Errorf("MONITOR_MAX_QUEUE must be at least 1, got %d", cfg.MonitorMaxQueue)
	}

	return nil
}
