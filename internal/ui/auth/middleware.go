package auth

import (
	"log/slog"
	"net/http"

	"github.com/nickabs/shopfront/internal/logger"
)

// LoadSession adds the session to the request context when the user is signed in.
// Requests without a valid session are passed through unchanged.
func (a *AuthService) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, status := a.GetSession(r)
		if status != TokenValid {
			next.ServeHTTP(w, r)
			return
		}

		_ = logger.ContextWithLogAttrs(r.Context(), slog.String("user_id", session.UserID))
		next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), session)))
	})
}

// RequireAuth redirects to the login page unless the request carries a valid session.
func (a *AuthService) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logger.ContextRequestLogger(r.Context())

		if _, ok := ContextSession(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}

		session, status := a.GetSession(r)
		if status != TokenValid {
			reqLogger.Debug("Authentication failed - redirecting to login",
				slog.String("component", "ui.RequireAuth"),
				slog.String("status", status.String()),
			)
			if status == TokenExpired || status == TokenInvalid {
				a.ClearSessionCookie(w)
			}
			RedirectToLogin(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), session)))
	})
}

// RequireAdmin must run after RequireAuth
func (a *AuthService) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := ContextSession(r.Context())
		if !ok || !session.IsAdmin {
			logger.ContextRequestLogger(r.Context()).Debug("Access denied - admin role required",
				slog.String("component", "ui.RequireAdmin"),
			)
			redirect(w, r, "/access-denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RedirectToLogin redirects the browser to the login page. HTMX requests are redirected with the HX-Redirect header.
func RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	redirect(w, r, "/login")
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}
