package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/nickabs/shopfront/internal/logger"
	"github.com/nickabs/shopfront/internal/optional"
	"github.com/nickabs/shopfront/internal/ui/client"
	"github.com/nickabs/shopfront/internal/ui/templates"
)

func (h *HandlerService) HandleAccount(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	user, err := h.ApiClient.GetAccount(r.Context(), session.AccessToken)
	if err != nil {
		h.handleAPIError(w, r, err, false)
		return
	}

	h.render(w, r, templates.AccountPage(session, user))
}

// HandleAccountUpdate saves the profile form. Blank phone and address fields clear the stored values.
func (h *HandlerService) HandleAccountUpdate(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	if name == "" || email == "" {
		h.RenderError(w, r, "Name and email are required.")
		return
	}

	req := client.UpdateAccountRequest{
		Name:    optional.Some(name),
		Email:   optional.Some(email),
		Phone:   optionalFormField(r.FormValue("phone")),
		Address: optionalFormField(r.FormValue("address")),
	}

	user, err := h.ApiClient.UpdateAccount(r.Context(), session.AccessToken, req)
	if err != nil {
		h.handleAPIError(w, r, err, true)
		return
	}

	if err := h.AuthService.UpdateSessionDetails(w, session, user); err != nil {
		logger.ContextRequestLogger(r.Context()).Warn("Could not update session details", slog.String("error", err.Error()))
	}

	h.render(w, r, templates.SuccessAlert("Your details have been saved."))
}

func (h *HandlerService) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	current := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")

	if current == "" || newPassword == "" {
		h.RenderError(w, r, "Please fill in all fields.")
		return
	}
	if newPassword != r.FormValue("confirm_password") {
		h.RenderError(w, r, "Passwords do not match.")
		return
	}
	if len(newPassword) < minPasswordLength {
		h.RenderError(w, r, "Passwords must be at least 11 characters.")
		return
	}

	if err := h.ApiClient.ChangePassword(r.Context(), session.AccessToken, current, newPassword); err != nil {
		h.handleAPIError(w, r, err, true)
		return
	}

	h.render(w, r, templates.SuccessAlert("Your password has been changed."))
}

func optionalFormField(value string) optional.Value[string] {
	value = strings.TrimSpace(value)
	if value == "" {
		return optional.Null[string]()
	}
	return optional.Some(value)
}
