package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/nickabs/shopfront/internal/logger"
	"github.com/nickabs/shopfront/internal/ui/client"
	"github.com/nickabs/shopfront/internal/ui/templates"
)

const minPasswordLength = 11

func (h *HandlerService) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if currentSession(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, templates.LoginPage())
}

// HandleLoginPost authenticates the user and stores the access token in the session cookie
func (h *HandlerService) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if email == "" || password == "" {
		h.RenderError(w, r, "Please enter your email and password.")
		return
	}

	login, err := h.ApiClient.Login(r.Context(), email, password)
	if err != nil {
		h.handleAPIError(w, r, err, true)
		return
	}

	if err := h.AuthService.SetSessionCookie(w, login); err != nil {
		logger.ContextRequestLogger(r.Context()).Error("Failed to set session cookie", slog.String("error", err.Error()))
		h.RenderError(w, r, "An error occurred. Please try again.")
		return
	}

	_ = logger.ContextWithLogAttrs(r.Context(), slog.String("user_id", login.User.ID))

	htmxRedirect(w, r, "/")
}

func (h *HandlerService) HandleRegister(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, templates.RegisterPage())
}

// HandleRegisterPost creates the account and signs the new user in
func (h *HandlerService) HandleRegisterPost(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirmPassword := r.FormValue("confirm_password")

	if name == "" || email == "" || password == "" || confirmPassword == "" {
		h.RenderError(w, r, "Please fill in all fields.")
		return
	}
	if password != confirmPassword {
		h.RenderError(w, r, "Passwords do not match.")
		return
	}
	if len(password) < minPasswordLength {
		h.RenderError(w, r, "Passwords must be at least 11 characters.")
		return
	}

	if _, err := h.ApiClient.Register(r.Context(), client.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}); err != nil {
		h.handleAPIError(w, r, err, true)
		return
	}

	login, err := h.ApiClient.Login(r.Context(), email, password)
	if err != nil {
		// the account exists, so send the user to the login page rather than showing an error
		logger.ContextRequestLogger(r.Context()).Warn("Login after registration failed", slog.String("error", err.Error()))
		htmxRedirect(w, r, "/login")
		return
	}

	if err := h.AuthService.SetSessionCookie(w, login); err != nil {
		logger.ContextRequestLogger(r.Context()).Error("Failed to set session cookie", slog.String("error", err.Error()))
		htmxRedirect(w, r, "/login")
		return
	}

	htmxRedirect(w, r, "/")
}

func (h *HandlerService) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.AuthService.ClearSessionCookie(w)
	htmxRedirect(w, r, "/login")
}

func (h *HandlerService) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, templates.ForgotPasswordPage())
}

// HandleForgotPasswordPost requests a one-time password reset code.
// The API responds the same way whether or not the email is registered.
func (h *HandlerService) HandleForgotPasswordPost(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" {
		h.RenderError(w, r, "Please enter your email address.")
		return
	}

	if _, err := h.ApiClient.ForgotPassword(r.Context(), email); err != nil {
		h.handleAPIError(w, r, err, true)
		return
	}

	htmxRedirect(w, r, "/reset-password?email="+url.QueryEscape(email))
}

func (h *HandlerService) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, templates.ResetPasswordPage(r.URL.Query().Get("email")))
}

func (h *HandlerService) HandleResetPasswordPost(w http.ResponseWriter, r *http.Request) {
	req := client.ResetPasswordRequest{
		Email:       strings.TrimSpace(r.FormValue("email")),
		OTP:         strings.TrimSpace(r.FormValue("otp")),
		NewPassword: r.FormValue("new_password"),
	}

	if req.Email == "" || req.OTP == "" || req.NewPassword == "" {
		h.RenderError(w, r, "Please fill in all fields.")
		return
	}
	if req.NewPassword != r.FormValue("confirm_password") {
		h.RenderError(w, r, "Passwords do not match.")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		h.RenderError(w, r, "Passwords must be at least 11 characters.")
		return
	}

	if err := h.ApiClient.ResetPassword(r.Context(), req); err != nil {
		h.handleAPIError(w, r, err, true)
		return
	}

	htmxRedirect(w, r, "/login")
}

func (h *HandlerService) HandleAccessDenied(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusForbidden)
	h.render(w, r, templates.AccessDeniedPage(currentSession(r)))
}
