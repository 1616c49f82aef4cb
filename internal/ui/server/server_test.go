package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nickabs/shopfront/internal/ui/config"
	"github.com/nickabs/shopfront/internal/ui/monitoring"
)

func testConfig(apiURL string) *config.Config {
	return &config.Config{
		Environment:          "test",
		Host:                 "127.0.0.1",
		Port:                 3000,
		ReadTimeout:          time.Second,
		WriteTimeout:         time.Second,
		IdleTimeout:          time.Second,
		APIBaseURL:           apiURL,
		APITimeout:           time.Second,
		APIRetries:           0,
		MonitorFlushInterval: time.Hour,
		MonitorMaxQueue:      10,
	}
}

func TestRoutes(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[]`)
	}))
	defer api.Close()

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testConfig(api.URL)
	apiClient := NewAPIClient(cfg, discard)
	s := NewServer(cfg, discard, apiClient, monitoring.New(apiClient, discard, monitoring.Options{}))

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantHeader string
	}{
		{"liveness", http.MethodGet, "/health/live", http.StatusOK, ""},
		{"login page", http.MethodGet, "/login", http.StatusOK, ""},
		{"categories page", http.MethodGet, "/categories", http.StatusOK, ""},
		{"cart requires auth", http.MethodGet, "/cart", http.StatusSeeOther, "/login"},
		{"account requires auth", http.MethodGet, "/account", http.StatusSeeOther, "/login"},
		{"unknown route", http.MethodGet, "/nope", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			s.Router().ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantHeader != "" && rr.Header().Get("Location") != tt.wantHeader {
				t.Errorf("Location = %q, want %q", rr.Header().Get("Location"), tt.wantHeader)
			}
		})
	}
}
