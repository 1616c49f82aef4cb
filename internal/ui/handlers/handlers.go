package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nickabs/shopfront/internal/logger"
	"github.com/nickabs/shopfront/internal/ui/auth"
	"github.com/nickabs/shopfront/internal/ui/client"
	"github.com/nickabs/shopfront/internal/ui/monitoring"
	"github.com/nickabs/shopfront/internal/ui/templates"
	"github.com/nickabs/shopfront/internal/ui/types"
)

type HandlerService struct {
	AuthService *auth.AuthService
	ApiClient   *client.Client
	Monitor     *monitoring.Monitor
	Environment string
}

// render writes a component, logging (but otherwise ignoring) render failures
func (h *HandlerService) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	if err := c.Render(r.Context(), w); err != nil {
		logger.ContextRequestLogger(r.Context()).Error("Failed to render component", slog.String("error", err.Error()))
	}
}

// RenderError renders an alert fragment. htmx forms swap it into their result element.
func (h *HandlerService) RenderError(w http.ResponseWriter, r *http.Request, message string) {
	h.render(w, r, templates.ErrorAlert(message))
}

// handleAPIError reports a failed API call to the user.
//
// Expired or revoked tokens end the session. Failures caused by the API being unavailable are sent to the error monitor.
// When fragment is false a full error page is rendered instead of an alert.
func (h *HandlerService) handleAPIError(w http.ResponseWriter, r *http.Request, err error, fragment bool) {
	reqLogger := logger.ContextRequestLogger(r.Context())
	apiErr := client.AsApiError(err)

	reqLogger.Error("API request failed",
		slog.String("error", apiErr.Error()),
		slog.Int("status", apiErr.Status),
		slog.String("kind", apiErr.Kind.String()),
	)

	if h.Monitor != nil {
		h.Monitor.CaptureError(apiErr, r.URL.Path, middleware.GetReqID(r.Context()))
	}

	session, signedIn := auth.ContextSession(r.Context())
	if apiErr.Kind == client.KindHTTP && apiErr.Status == http.StatusUnauthorized && signedIn {
		h.AuthService.ClearSessionCookie(w)
		auth.RedirectToLogin(w, r)
		return
	}

	if fragment {
		h.RenderError(w, r, apiErr.UserMessage())
		return
	}

	status := http.StatusBadGateway
	switch {
	case apiErr.Kind == client.KindHTTP && apiErr.Status < 500:
		status = apiErr.Status
	case apiErr.Kind == client.KindTimeout:
		status = http.StatusGatewayTimeout
	}

	title := "Something went wrong"
	if status == http.StatusNotFound {
		title = "Not found"
	}

	w.WriteHeader(status)
	h.render(w, r, templates.ErrorPage(sessionOrNil(session, signedIn), title, apiErr.UserMessage()))
}

func sessionOrNil(session *types.Session, ok bool) *types.Session {
	if !ok {
		return nil
	}
	return session
}

// currentSession returns the session added by the auth middleware
func currentSession(r *http.Request) *types.Session {
	return sessionOrNil(auth.ContextSession(r.Context()))
}

// htmxRedirect sends the browser to path after an htmx form post
func htmxRedirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

var errMissingSession = errors.New("handler requires an authenticated session")

// requireSession is used by handlers registered behind RequireAuth
func requireSession(w http.ResponseWriter, r *http.Request) (*types.Session, bool) {
	session, ok := auth.ContextSession(r.Context())
	if !ok {
		logger.ContextRequestLogger(r.Context()).Error(errMissingSession.Error(), slog.String("path", r.URL.Path))
		auth.RedirectToLogin(w, r)
		return nil, false
	}
	return session, true
}
