package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/nickabs/shopfront/internal/ui/auth"
	"github.com/nickabs/shopfront/internal/ui/client"
	"github.com/nickabs/shopfront/internal/ui/config"
	"github.com/nickabs/shopfront/internal/ui/monitoring"
	"github.com/nickabs/shopfront/internal/ui/types"
)

func testToken(t *testing.T, userID string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":      userID,
		"user_id":  userID,
		"is_admin": false,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

type noopSink struct{}

func (noopSink) ReportErrors(context.Context, []types.ErrorReport) error { return nil }

// newTestService wires the handlers to a fake API
func newTestService(t *testing.T, api http.Handler) *HandlerService {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &HandlerService{
		AuthService: auth.NewAuthService(false),
		ApiClient: client.NewClient(server.URL,
			client.WithRetryPolicy(client.RetryPolicy{Timeout: time.Second}),
			client.WithLogger(discard),
		),
		Monitor:     monitoring.New(noopSink{}, discard, monitoring.Options{FlushInterval: time.Hour}),
		Environment: "test",
	}
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	return req
}

func TestHandleLoginPost(t *testing.T) {
	token := testToken(t, "user-1")

	h := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/api/users/login" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body client.LoginRequest
		_ = jsonDecode(r, &body)
		if body.Password != "correct horse battery" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error_code":"authentication_error","message":"Incorrect email or password"}`)
			return
		}
		_, _ = fmt.Fprintf(w, `{"token":%q,"token_type":"Bearer","expires_in":3600,"user":{"id":"user-1","email":"ada@example.com","name":"Ada"}}`, token)
	}))

	t.Run("success", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.HandleLoginPost(rr, postForm("/login", url.Values{"email": {"ada@example.com"}, "password": {"correct horse battery"}}))

		if rr.Header().Get("HX-Redirect") != "/" {
			t.Errorf("HX-Redirect = %q, want /", rr.Header().Get("HX-Redirect"))
		}
		var found bool
		for _, c := range rr.Result().Cookies() {
			if c.Name == config.SessionCookieName && c.Value != "" {
				found = true
			}
		}
		if !found {
			t.Error("session cookie not set")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.HandleLoginPost(rr, postForm("/login", url.Values{"email": {"ada@example.com"}, "password": {"wrong"}}))

		if !strings.Contains(rr.Body.String(), "Incorrect email or password") {
			t.Errorf("expected the API message, got %s", rr.Body.String())
		}
		if h.Monitor.Pending() != 0 {
			t.Error("authentication failures should not be reported to the monitor")
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.HandleLoginPost(rr, postForm("/login", url.Values{"email": {"ada@example.com"}}))
		if !strings.Contains(rr.Body.String(), "Please enter your email and password.") {
			t.Errorf("unexpected body %s", rr.Body.String())
		}
	})
}

func TestHandleProductNotFound(t *testing.T) {
	h := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error_code":"resource_not_found","message":"Product not found"}`)
	}))

	router := chi.NewRouter()
	router.Get("/products/{productID}", h.HandleProduct)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/products/42", nil))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Product not found") {
		t.Errorf("expected the not found message, got %s", rr.Body.String())
	}
}

func TestUnavailableAPIIsReportedToMonitor(t *testing.T) {
	h := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	rr := httptest.NewRecorder()
	h.HandleCategories(rr, httptest.NewRequest(http.MethodGet, "/categories", nil))

	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "temporarily unavailable") {
		t.Errorf("unexpected body %s", rr.Body.String())
	}
	if h.Monitor.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", h.Monitor.Pending())
	}
}

func TestExpiredAPITokenEndsSession(t *testing.T) {
	h := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error_code":"access_token_expired","message":"token expired"}`)
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req = req.WithContext(auth.ContextWithSession(req.Context(), &types.Session{UserID: "u1", AccessToken: "t"}))

	rr := httptest.NewRecorder()
	h.HandleCart(rr, req)

	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Errorf("got %d %q, want redirect to /login", rr.Code, rr.Header().Get("Location"))
	}
}

func TestHandleAddToCart(t *testing.T) {
	var gotAuth string
	h := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"items":[],"item_count":3,"total_cents":1500}`)
	}))

	req := postForm("/cart/items", url.Values{"product_id": {"p1"}, "quantity": {"3"}})
	req = req.WithContext(auth.ContextWithSession(req.Context(), &types.Session{UserID: "u1", AccessToken: "tok"}))

	rr := httptest.NewRecorder()
	h.HandleAddToCart(rr, req)

	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if !strings.Contains(rr.Body.String(), "Added to cart (3 items, £15.00)") {
		t.Errorf("unexpected body %s", rr.Body.String())
	}

	bad := httptest.NewRecorder()
	badReq := postForm("/cart/items", url.Values{"product_id": {"p1"}, "quantity": {"0"}})
	badReq = badReq.WithContext(auth.ContextWithSession(badReq.Context(), &types.Session{UserID: "u1", AccessToken: "tok"}))
	h.HandleAddToCart(bad, badReq)
	if !strings.Contains(bad.Body.String(), "at least 1") {
		t.Errorf("expected a validation message, got %s", bad.Body.String())
	}
}

func TestParseProductQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/products?category=c1&search=usb&sort=price_asc&offset=40", nil)
	q := parseProductQuery(req)

	if q.CategoryID != "c1" || q.Search != "usb" || q.Sort != "price_asc" || q.Offset != 40 || q.Limit != productsPerPage {
		t.Errorf("unexpected query %+v", q)
	}

	if q := parseProductQuery(httptest.NewRequest(http.MethodGet, "/products?offset=-5", nil)); q.Offset != 0 {
		t.Errorf("negative offset accepted: %d", q.Offset)
	}
}

func jsonDecode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
