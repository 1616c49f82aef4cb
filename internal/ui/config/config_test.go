package config

import (
	"strings"
	"testing"
	"time"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}

	if cfg.APIBaseURL != "http://localhost:8080" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.APITimeout != 10*time.Second || cfg.APIRetries != 2 || cfg.APIRetryDelay != time.Second {
		t.Errorf("unexpected API client defaults: %v %d %v", cfg.APITimeout, cfg.APIRetries, cfg.APIRetryDelay)
	}
	if cfg.MonitorFlushInterval != 10*time.Second {
		t.Errorf("MonitorFlushInterval = %v", cfg.MonitorFlushInterval)
	}
}

func TestNewConfigFromEnvironment(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.shop.example")
	t.Setenv("API_RETRIES", "5")
	t.Setenv("API_RETRY_DELAY", "250ms")
	t.Setenv("ENVIRONMENT", "prod")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.APIBaseURL != "https://api.shop.example" || cfg.APIRetries != 5 || cfg.APIRetryDelay != 250*time.Millisecond {
		t.Errorf("environment not applied: %+v", cfg)
	}
	if !cfg.SecureCookies() {
		t.Error("expected secure cookies in prod")
	}
}

func TestValidateUIConfig(t *testing.T) {
	valid := func() Config {
		return Config{
			Environment:          "dev",
			Port:                 3000,
			ReadTimeout:          time.Second,
			WriteTimeout:         time.Second,
			IdleTimeout:          time.Second,
			APIBaseURL:           "http://localhost:8080",
			APITimeout:           time.Second,
			APIRetries:           2,
			APIRetryDelay:        time.Second,
			MonitorFlushInterval: time.Second,
			MonitorMaxQueue:      10,
		}
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"zero retries allowed", func(c *Config) { c.APIRetries = 0 }, ""},
		{"bad environment", func(c *Config) { c.Environment = "qa" }, "invalid environment"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "port must be between"},
		{"relative api url", func(c *Config) { c.APIBaseURL = "/api" }, "API_BASE_URL must be"},
		{"empty api url", func(c *Config) { c.APIBaseURL = "" }, "cannot be empty"},
		{"negative retries", func(c *Config) { c.APIRetries = -1 }, "API_RETRIES"},
		{"zero timeout", func(c *Config) { c.APITimeout = 0 }, "API_TIMEOUT"},
		{"zero flush interval", func(c *Config) { c.MonitorFlushInterval = 0 }, "MONITOR_FLUSH_INTERVAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(&cfg)
			err := validateUIConfig(&cfg)

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
