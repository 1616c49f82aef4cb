package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nickabs/shopfront/internal/auth"
	"github.com/nickabs/shopfront/internal/database"
	"github.com/nickabs/shopfront/internal/server/config"
)

type noopMailer struct{}

func (noopMailer) SendWelcome(ctx context.Context, to, name string) {}

func (noopMailer) SendPasswordReset(ctx context.Context, to, otp string, expiry time.Duration) {}

func newTestServer(t *testing.T) (*Server, *config.ServerEnvironment) {
	t.Helper()
	t.Setenv("SECRET_KEY", "route-test-secret")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/shopfront_test?sslmode=disable")
	t.Setenv("ENVIRONMENT", "test")

	cfg, corsConfigs, err := config.NewServerConfig()
	if err != nil {
		t.Fatalf("NewServerConfig() error = %v", err)
	}

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(nil, cfg, corsConfigs, discard, noopMailer{}), cfg
}

// the routes below are answered by middleware or handlers before the database is used
func TestRoutes(t *testing.T) {
	s, cfg := newTestServer(t)

	authService := auth.NewAuthService(cfg.SecretKey, cfg.Environment, time.Hour, nil)
	customer, err := authService.CreateAccessToken(database.User{ID: uuid.New()})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       string
		wantStatus int
	}{
		{"liveness", http.MethodGet, "/health/live", "", "", http.StatusOK},
		{"version", http.MethodGet, "/version", "", "", http.StatusOK},
		{"cart requires a token", http.MethodGet, "/api/cart", "", "", http.StatusUnauthorized},
		{"profile requires a token", http.MethodGet, "/api/users/me", "", "", http.StatusUnauthorized},
		{"create category requires a token", http.MethodPost, "/api/categories", "", `{}`, http.StatusUnauthorized},
		{"create category requires admin", http.MethodPost, "/api/categories", customer.AccessToken, `{}`, http.StatusForbidden},
		{"delete product requires admin", http.MethodDelete, "/api/products/" + uuid.NewString(), customer.AccessToken, "", http.StatusForbidden},
		{"user list requires admin", http.MethodGet, "/api/users", customer.AccessToken, "", http.StatusForbidden},
		{"monitoring accepts reports", http.MethodPost, "/api/monitoring/errors", "", `{"errors":[]}`, http.StatusAccepted},
		{"register validates before writing", http.MethodPost, "/api/users/register", "", `{"email":"a@example.com"}`, http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/api/nope", "", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}

			rr := httptest.NewRecorder()
			s.Router().ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("%s %s status = %d, want %d: %s", tt.method, tt.path, rr.Code, tt.wantStatus, rr.Body.String())
			}
		})
	}
}

func TestRequestSizeLimit(t *testing.T) {
	s, cfg := newTestServer(t)

	big := `{"errors":[{"message":"` + strings.Repeat("x", int(cfg.MaxAPIRequestSize)) + `"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/monitoring/errors", strings.NewReader(big))
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rr.Code)
	}
}
