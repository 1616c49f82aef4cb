package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nickabs/shopfront/internal/ui/config"
	"github.com/nickabs/shopfront/internal/ui/types"
)

func signedToken(t *testing.T, userID string, isAdmin bool, expiresAt time.Time) string {
	t.Helper()
	claims := accessClaims{
		UserID:  userID,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    "shopfront",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("could not sign token: %v", err)
	}
	return token
}

// requestWithCookies copies the cookies set on rr to a new request
func requestWithCookies(rr *httptest.ResponseRecorder, path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionRoundTrip(t *testing.T) {
	a := NewAuthService(false)
	token := signedToken(t, "user-1", true, time.Now().Add(time.Hour))

	rr := httptest.NewRecorder()
	err := a.SetSessionCookie(rr, &types.LoginResponse{
		Token:     token,
		ExpiresIn: 3600,
		User:      types.User{ID: "user-1", Email: "ada@example.com", Name: "Ada"},
	})
	if err != nil {
		t.Fatalf("SetSessionCookie: %v", err)
	}

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != config.SessionCookieName || !cookies[0].HttpOnly {
		t.Fatalf("unexpected cookies %+v", cookies)
	}

	session, status := a.GetSession(requestWithCookies(rr, "/account"))
	if status != TokenValid {
		t.Fatalf("status = %v, want TokenValid", status)
	}
	if session.UserID != "user-1" || !session.IsAdmin || session.Email != "ada@example.com" || session.Name != "Ada" {
		t.Errorf("unexpected session %+v", session)
	}
	if session.AccessToken != token {
		t.Error("access token not preserved")
	}
}

func TestGetSessionStatus(t *testing.T) {
	a := NewAuthService(false)

	tests := []struct {
		name   string
		cookie *http.Cookie
		want   TokenStatus
	}{
		{"missing", nil, TokenMissing},
		{"not base64", &http.Cookie{Name: config.SessionCookieName, Value: "%%%"}, TokenInvalid},
		{"not a token", &http.Cookie{Name: config.SessionCookieName, Value: "eyJhY2Nlc3NfdG9rZW4iOiJub3BlIn0="}, TokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			if _, got := a.GetSession(req); got != tt.want {
				t.Errorf("status = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("expired", func(t *testing.T) {
		rr := httptest.NewRecorder()
		expired := signedToken(t, "user-1", false, time.Now().Add(-time.Minute))
		if err := a.SetSessionCookie(rr, &types.LoginResponse{Token: expired, ExpiresIn: 60}); err != nil {
			t.Fatalf("SetSessionCookie: %v", err)
		}
		if _, got := a.GetSession(requestWithCookies(rr, "/")); got != TokenExpired {
			t.Errorf("status = %v, want TokenExpired", got)
		}
	})
}

func TestSetSessionCookieRejectsInvalidToken(t *testing.T) {
	a := NewAuthService(false)
	if err := a.SetSessionCookie(httptest.NewRecorder(), &types.LoginResponse{Token: "not-a-jwt"}); err == nil {
		t.Error("expected an error for an unparseable token")
	}
}

func TestRequireAuth(t *testing.T) {
	a := NewAuthService(false)

	var reached bool
	protected := a.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		if _, ok := ContextSession(r.Context()); !ok {
			t.Error("session missing from context")
		}
	}))

	t.Run("redirects anonymous users", func(t *testing.T) {
		reached = false
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/cart", nil))

		if reached {
			t.Error("handler reached without a session")
		}
		if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
			t.Errorf("got %d %q, want 303 /login", rr.Code, rr.Header().Get("Location"))
		}
	})

	t.Run("htmx redirect", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/cart/items", nil)
		req.Header.Set("HX-Request", "true")
		protected.ServeHTTP(rr, req)

		if rr.Header().Get("HX-Redirect") != "/login" {
			t.Errorf("HX-Redirect = %q, want /login", rr.Header().Get("HX-Redirect"))
		}
	})

	t.Run("valid session", func(t *testing.T) {
		reached = false
		login := httptest.NewRecorder()
		token := signedToken(t, "user-2", false, time.Now().Add(time.Hour))
		if err := a.SetSessionCookie(login, &types.LoginResponse{Token: token, ExpiresIn: 3600}); err != nil {
			t.Fatal(err)
		}

		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, requestWithCookies(login, "/cart"))
		if !reached {
			t.Errorf("handler not reached, status %d", rr.Code)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	a := NewAuthService(false)
	handler := a.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name    string
		session *types.Session
		want    int
	}{
		{"admin", &types.Session{UserID: "u", IsAdmin: true}, http.StatusNoContent},
		{"customer", &types.Session{UserID: "u"}, http.StatusSeeOther},
		{"anonymous", nil, http.StatusSeeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.session != nil {
				req = req.WithContext(ContextWithSession(req.Context(), tt.session))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}
