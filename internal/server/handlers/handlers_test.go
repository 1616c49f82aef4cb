package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nickabs/shopfront/internal/auth"
	"github.com/nickabs/shopfront/internal/database"
	"github.com/nickabs/shopfront/internal/optional"
	"github.com/nickabs/shopfront/internal/server/responses"
	"github.com/nickabs/shopfront/internal/server/schemas"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(ctx context.Context) error {
	return f.err
}

type fakeMailer struct {
	welcomes []string
	resets   []string
}

func (f *fakeMailer) SendWelcome(ctx context.Context, to, name string) {
	f.welcomes = append(f.welcomes, to)
}

func (f *fakeMailer) SendPasswordReset(ctx context.Context, to, otp string, expiry time.Duration) {
	f.resets = append(f.resets, to)
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) responses.ErrorResponse {
	t.Helper()
	var res responses.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("could not decode error response %q: %v", rr.Body.String(), err)
	}
	return res
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name         string
		pingErr      error
		wantStatus   int
		wantDatabase string
	}{
		{"database up", nil, http.StatusOK, "connected"},
		{"database down", errors.New("connection refused"), http.StatusServiceUnavailable, "disconnected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(fakePinger{err: tt.pingErr})

			rr := httptest.NewRecorder()
			h.HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			var res HealthResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
				t.Fatal(err)
			}
			if res.Database != tt.wantDatabase {
				t.Errorf("database = %q, want %q", res.Database, tt.wantDatabase)
			}
			if res.Version == "" {
				t.Error("version should be reported")
			}

			rr = httptest.NewRecorder()
			h.ReadinessHandler(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			if rr.Code != tt.wantStatus {
				t.Errorf("readiness status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestReportErrorsHandler(t *testing.T) {
	var buf bytes.Buffer
	h := NewMonitoringHandler(slog.New(slog.NewJSONHandler(&buf, nil)))

	body := `{"errors":[
		{"message":"Service temporarily unavailable","kind":"http","status":503,"path":"/products","occurred_at":"2026-01-02T10:00:00Z"},
		{"message":"Request timed out","kind":"timeout","status":408,"occurred_at":"2026-01-02T10:00:01Z","context":{"endpoint":"/api/cart"}}
	]}`

	rr := httptest.NewRecorder()
	h.ReportErrorsHandler(rr, httptest.NewRequest(http.MethodPost, "/api/monitoring/errors", strings.NewReader(body)))

	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rr.Code, rr.Body.String())
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var logged []string
	for _, line := range lines {
		if strings.Contains(line, `"type":"client_error"`) {
			logged = append(logged, line)
		}
	}
	if len(logged) != 2 {
		t.Fatalf("expected 2 client_error log entries, got %d: %s", len(logged), buf.String())
	}
	if !strings.Contains(logged[1], `"ctx_endpoint":"/api/cart"`) {
		t.Errorf("context values should be logged: %s", logged[1])
	}
}

func TestReportErrorsHandlerRejectsLargeBatches(t *testing.T) {
	h := NewMonitoringHandler(slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)))

	batch := ErrorReportBatch{Errors: make([]ErrorReport, 101)}
	data, _ := json.Marshal(batch)

	rr := httptest.NewRecorder()
	h.ReportErrorsHandler(rr, httptest.NewRequest(http.MethodPost, "/api/monitoring/errors", bytes.NewReader(data)))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	mailer := &fakeMailer{}
	h := NewUserHandler(nil, auth.NewAuthService("secret", "test", time.Hour, nil), nil, mailer)

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"malformed json", `{"email":`, "malformed_body"},
		{"unknown field", `{"name":"a","email":"a@example.com","password":"long-enough-pw","role":"admin"}`, "malformed_body"},
		{"missing name", `{"email":"a@example.com","password":"long-enough-pw"}`, "malformed_body"},
		{"invalid email", `{"name":"Ann","email":"not-an-email","password":"long-enough-pw"}`, "validation_failed"},
		{"short password", `{"name":"Ann","email":"a@example.com","password":"short"}`, "password_too_short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.RegisterUserHandler(rr, httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(tt.body)))

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			if got := decodeError(t, rr).ErrorCode; string(got) != tt.wantCode {
				t.Errorf("error_code = %q, want %q", got, tt.wantCode)
			}
		})
	}
	if len(mailer.welcomes) != 0 {
		t.Error("no email should be sent for rejected registrations")
	}
}

func TestResetPasswordValidation(t *testing.T) {
	h := NewUserHandler(nil, auth.NewAuthService("secret", "test", time.Hour, nil), nil, &fakeMailer{})

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"missing otp", `{"email":"a@example.com","new_password":"long-enough-pw"}`, "malformed_body"},
		{"short password", `{"email":"a@example.com","otp":"123456","new_password":"short"}`, "password_too_short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ResetPasswordHandler(rr, httptest.NewRequest(http.MethodPost, "/api/users/reset-password", strings.NewReader(tt.body)))

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			if got := decodeError(t, rr).ErrorCode; string(got) != tt.wantCode {
				t.Errorf("error_code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestApplyUserUpdate(t *testing.T) {
	phone := "0123"

	tests := []struct {
		name        string
		req         UpdateUserRequest
		wantMessage string
		check       func(t *testing.T, u database.User)
	}{
		{
			name: "only supplied fields change",
			req:  UpdateUserRequest{Name: optional.Some("New Name")},
			check: func(t *testing.T, u database.User) {
				if u.Name != "New Name" || u.Email != "old@example.com" || u.Phone == nil {
					t.Errorf("unexpected user %+v", u)
				}
			},
		},
		{
			name: "null clears optional fields",
			req:  UpdateUserRequest{Phone: optional.Null[string]()},
			check: func(t *testing.T, u database.User) {
				if u.Phone != nil {
					t.Errorf("phone = %v, want nil", *u.Phone)
				}
			},
		},
		{
			name:        "name can not be null",
			req:         UpdateUserRequest{Name: optional.Null[string]()},
			wantMessage: "name can not be null",
		},
		{
			name:        "email can not be null",
			req:         UpdateUserRequest{Email: optional.Null[string]()},
			wantMessage: "email can not be null",
		},
		{
			name:        "email is validated",
			req:         UpdateUserRequest{Email: optional.Some("nope")},
			wantMessage: "invalid email address",
		},
		{
			name:        "blank name",
			req:         UpdateUserRequest{Name: optional.Some("  ")},
			wantMessage: "name can not be empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := phone
			user := database.User{Name: "Old", Email: "old@example.com", Phone: &p}

			msg := applyUserUpdate(&user, tt.req)
			if msg != tt.wantMessage {
				t.Fatalf("applyUserUpdate() = %q, want %q", msg, tt.wantMessage)
			}
			if tt.check != nil {
				tt.check(t, user)
			}
		})
	}
}

func TestNewCart(t *testing.T) {
	lines := []database.CartLine{
		{ProductID: uuid.New(), Name: "Cable", PriceCents: 499, Quantity: 3, Stock: 10},
		{ProductID: uuid.New(), Name: "Laptop", PriceCents: 89900, Quantity: 1, Stock: 2},
	}

	cart := newCart(lines)

	if cart.ItemCount != 4 {
		t.Errorf("item_count = %d, want 4", cart.ItemCount)
	}
	if cart.TotalCents != 499*3+89900 {
		t.Errorf("total_cents = %d, want %d", cart.TotalCents, 499*3+89900)
	}
	if cart.Items[0].SubtotalCents != 1497 {
		t.Errorf("subtotal = %d, want 1497", cart.Items[0].SubtotalCents)
	}

	empty := newCart(nil)
	data, _ := json.Marshal(empty)
	if !strings.Contains(string(data), `"items":[]`) {
		t.Errorf("an empty cart should encode items as [], got %s", data)
	}
}

func TestListProductsRejectsBadParameters(t *testing.T) {
	h := NewProductHandler(nil, schemas.NewCache())

	for _, query := range []string{"sort=cheapest", "limit=-1", "min_price=abc", "featured=maybe"} {
		t.Run(query, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ListProductsHandler(rr, httptest.NewRequest(http.MethodGet, "/api/products?"+query, nil))

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			if got := decodeError(t, rr).ErrorCode; got != "invalid_url_param" {
				t.Errorf("error_code = %q, want invalid_url_param", got)
			}
		})
	}
}

func TestInvalidIDsAreNotFound(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/products/{id}", NewProductHandler(nil, schemas.NewCache()).GetProductHandler)
	r.Get("/api/categories/{id}", NewCategoryHandler(nil, schemas.NewCache()).GetCategoryHandler)

	tests := []struct {
		path        string
		wantMessage string
	}{
		{"/api/products/42", "Product not found"},
		{"/api/categories/not-a-uuid", "Category not found"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rr.Code != http.StatusNotFound {
				t.Fatalf("status = %d, want 404", rr.Code)
			}
			if got := decodeError(t, rr).Message; got != tt.wantMessage {
				t.Errorf("message = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestCreateCategoryValidatesSchema(t *testing.T) {
	h := NewCategoryHandler(nil, schemas.NewCache())

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"description":"x"}`},
		{"invalid schema", `{"name":"Laptops","attribute_schema":{"type":42}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.CreateCategoryHandler(rr, httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(tt.body)))

			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rr.Code, rr.Body.String())
			}
		})
	}
}
