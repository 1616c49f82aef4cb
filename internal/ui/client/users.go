package client

import (
	"context"
	"net/http"

	"github.com/nickabs/shopfront/internal/optional"
	"github.com/nickabs/shopfront/internal/ui/types"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

// UpdateAccountRequest only sends the fields that are set. Null clears an optional field.
type UpdateAccountRequest struct {
	Name    optional.Value[string] `json:"name,omitzero"`
	Email   optional.Value[string] `json:"email,omitzero"`
	Phone   optional.Value[string] `json:"phone,omitzero"`
	Address optional.Value[string] `json:"address,omitzero"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// Login authenticates a user and returns the signed access token
func (c *Client) Login(ctx context.Context, email, password string) (*types.LoginResponse, error) {
	res, err := doJSON[types.LoginResponse](ctx, c, "/api/users/login", RequestOptions{
		Method: http.MethodPost,
		Body:   LoginRequest{Email: email, Password: password},
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Register creates a new user account
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*types.User, error) {
	user, err := doJSON[types.User](ctx, c, "/api/users/register", RequestOptions{
		Method: http.MethodPost,
		Body:   req,
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ForgotPassword asks the API to email a one time password to the user
func (c *Client) ForgotPassword(ctx context.Context, email string) (*types.MessageResponse, error) {
	res, err := doJSON[types.MessageResponse](ctx, c, "/api/users/forgot-password", RequestOptions{
		Method: http.MethodPost,
		Body:   forgotPasswordRequest{Email: email},
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ResetPassword sets a new password using the one time password sent by ForgotPassword
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	_, err := c.Do(ctx, "/api/users/reset-password", RequestOptions{
		Method: http.MethodPost,
		Body:   req,
	})
	return err
}

// GetAccount returns the profile of the signed-in user
func (c *Client) GetAccount(ctx context.Context, accessToken string) (*types.User, error) {
	user, err := doJSON[types.User](ctx, c, "/api/users/me", RequestOptions{
		Headers: bearer(accessToken),
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateAccount applies a partial update to the signed-in user's profile
func (c *Client) UpdateAccount(ctx context.Context, accessToken string, req UpdateAccountRequest) (*types.User, error) {
	user, err := doJSON[types.User](ctx, c, "/api/users/me", RequestOptions{
		Method:  http.MethodPut,
		Headers: bearer(accessToken),
		Body:    req,
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword updates the signed-in user's password
func (c *Client) ChangePassword(ctx context.Context, accessToken, currentPassword, newPassword string) error {
	_, err := c.Do(ctx, "/api/users/me/password", RequestOptions{
		Method:  http.MethodPut,
		Headers: bearer(accessToken),
		Body:    changePasswordRequest{CurrentPassword: currentPassword, NewPassword: newPassword},
	})
	return err
}
