package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func validConfig() ServerEnvironment {
	return ServerEnvironment{
		Environment:       "dev",
		Port:              8080,
		SecretKey:         "dev-secret",
		DatabaseURL:       "postgres://localhost:5432/shopfront",
		DBMaxConnections:  4,
		AccessTokenExpiry: time.Hour,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*ServerEnvironment)
		wantErr string
	}{
		{"valid dev", func(c *ServerEnvironment) {}, ""},
		{"bad env", func(c *ServerEnvironment) { c.Environment = "qa" }, "invalid ENVIRONMENT"},
		{"bad port", func(c *ServerEnvironment) { c.Port = 0 }, "PORT must be"},
		{"short prod secret", func(c *ServerEnvironment) { c.Environment = "prod" }, "SECRET_KEY must be at least 32"},
		{"prod without ssl", func(c *ServerEnvironment) {
			c.Environment = "prod"
			c.SecretKey = strings.Repeat("k", 32)
		}, "must use SSL"},
		{"prod without origins", func(c *ServerEnvironment) {
			c.Environment = "prod"
			c.SecretKey = strings.Repeat("k", 32)
			c.DatabaseURL += "?sslmode=require"
		}, "ALLOWED_ORIGINS must be set"},
		{"wildcard origin in staging", func(c *ServerEnvironment) {
			c.Environment = "staging"
			c.AllowedOrigins = []string{"*"}
		}, "must not be set to '*'"},
		{"min > max connections", func(c *ServerEnvironment) { c.DBMinConnections = 5 }, "cannot be greater"},
		{"zero token expiry", func(c *ServerEnvironment) { c.AccessTokenExpiry = 0 }, "ACCESS_TOKEN_EXPIRY"},
		{"bad smtp port", func(c *ServerEnvironment) {
			c.SMTPHost = "smtp.example.com"
			c.SMTPPort = 0
		}, "SMTP_PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := validateConfig(&cfg)

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateConfigDefaultsOrigins(t *testing.T) {
	cfg := validConfig()
	if err := validateConfig(&cfg); err != nil {
		t.Fatal(err)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v, want [*]", cfg.AllowedOrigins)
	}

	corsConfigs, err := createCORSConfigs(&cfg)
	if err != nil {
		t.Fatalf("createCORSConfigs: %v", err)
	}
	if corsConfigs.Public == nil || corsConfigs.Protected == nil {
		t.Error("expected both CORS middlewares")
	}
}

func TestNewServerConfigRequiresSecrets(t *testing.T) {
	// t.Setenv restores the original values when the test ends
	t.Setenv("SECRET_KEY", "")
	t.Setenv("DATABASE_URL", "")
	os.Unsetenv("SECRET_KEY")
	os.Unsetenv("DATABASE_URL")

	if _, _, err := NewServerConfig(); err == nil {
		t.Error("expected an error when SECRET_KEY and DATABASE_URL are missing")
	}
}
