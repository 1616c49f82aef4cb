package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nickabs/shopfront/internal/apperrors"
	"github.com/nickabs/shopfront/internal/auth"
	"github.com/nickabs/shopfront/internal/database"
	"github.com/nickabs/shopfront/internal/logger"
	"github.com/nickabs/shopfront/internal/mailer"
	"github.com/nickabs/shopfront/internal/optional"
	"github.com/nickabs/shopfront/internal/server/config"
	"github.com/nickabs/shopfront/internal/server/responses"
)

const (
	userNotFound        = "User not found"
	invalidCredentials  = "Invalid email or password"
	invalidResetCode    = "Invalid or expired reset code"
	forgotPasswordReply = "If the email is registered a reset code has been sent"

	// emails are sent after the response has been decided, the request context may already be cancelled
	emailTimeout = 10 * time.Second
)

// Mailer sends the account emails
type Mailer interface {
	SendWelcome(ctx context.Context, to, name string)
	SendPasswordReset(ctx context.Context, to, otp string, expiry time.Duration)
}

type UserHandler struct {
	queries     *database.Queries
	authService *auth.AuthService
	pool        *pgxpool.Pool
	mailer      Mailer
}

func NewUserHandler(queries *database.Queries, authService *auth.AuthService, pool *pgxpool.Pool, mailer Mailer) *UserHandler {
	return &UserHandler{
		queries:     queries,
		authService: authService,
		pool:        pool,
		mailer:      mailer,
	}
}

type CreateUserRequest struct {
	Name     string `json:"name" example:"Ada Lovelace"`
	Email    string `json:"email" example:"example@example.com"`
	Password string `json:"password" example:"lkIB53@6O^Y"` // passwords must be at least 11 characters long
}

type LoginRequest struct {
	Email    string `json:"email" example:"example@example.com"`
	Password string `json:"password" example:"lkIB53@6O^Y"`
}

type LoginResponse struct {
	auth.AccessTokenResponse
	User database.User `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" example:"example@example.com"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" example:"example@example.com"`
	OTP         string `json:"otp" example:"042917"`
	NewPassword string `json:"new_password" example:"ue6U>&X3j570"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" example:"lkIB53@6O^Y"`
	NewPassword     string `json:"new_password" example:"ue6U>&X3j570"`
}

// UpdateUserRequest only changes the supplied fields. name and email can not be null, phone and address can be cleared with null.
type UpdateUserRequest struct {
	Name    optional.Value[string] `json:"name"`
	Email   optional.Value[string] `json:"email"`
	Phone   optional.Value[string] `json:"phone"`
	Address optional.Value[string] `json:"address"`
}

// RegisterUserHandler creates a customer account.
//
// The first user to be created for this service is made an admin.
// A welcome email is sent on a best effort basis.
func (u *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeMalformedBody, "you must supply {name}, {email} and {password}")
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeValidationFailed, "invalid email address")
		return
	}

	if len(req.Password) < config.MinimumPasswordLength {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodePasswordTooShort, fmt.Sprintf("password must be at least %d chars", config.MinimumPasswordLength))
		return
	}

	hashedPassword, err := u.authService.HashPassword(req.Password)
	if err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeInternalError, fmt.Sprintf("could not hash password: %v", err))
		return
	}

	// the first-user check and insert happen in one statement; the unique email index catches duplicates
	user, err := u.queries.CreateUser(r.Context(), database.CreateUserParams{
		Email:          req.Email,
		Name:           req.Name,
		HashedPassword: hashedPassword,
	})
	if err != nil {
		respondWithWriteError(w, r, err, "a user already exists with this email address")
		return
	}

	_ = logger.ContextWithLogAttrs(r.Context(),
		slog.String("user_id", user.ID.String()),
		slog.Bool("is_admin", user.IsAdmin),
	)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), emailTimeout)
	defer cancel()
	u.mailer.SendWelcome(ctx, user.Email, user.Name)

	responses.RespondWithJSON(w, http.StatusCreated, user)
}

// LoginHandler checks the user's credentials and returns a signed access token
func (u *UserHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeMalformedBody, "you must supply {email} and {password}")
		return
	}

	user, err := u.queries.GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			responses.RespondWithError(w, r, http.StatusUnauthorized, apperrors.ErrCodeAuthenticationFailure, invalidCredentials)
			return
		}
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("database error: %v", err))
		return
	}

	if err := u.authService.CheckPasswordHash(user.HashedPassword, req.Password); err != nil {
		_ = logger.ContextWithLogAttrs(r.Context(), slog.String("user_id", user.ID.String()))
		responses.RespondWithError(w, r, http.StatusUnauthorized, apperrors.ErrCodeAuthenticationFailure, invalidCredentials)
		return
	}

	token, err := u.authService.CreateAccessToken(user)
	if err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeInternalError, fmt.Sprintf("error creating access token: %v", err))
		return
	}

	_ = logger.ContextWithLogAttrs(r.Context(), slog.String("user_id", user.ID.String()))

	responses.RespondWithJSON(w, http.StatusOK, LoginResponse{
		AccessTokenResponse: token,
		User:                user,
	})
}

// ForgotPasswordHandler emails a one time password to the user.
//
// The response is the same whether or not the email is registered.
func (u *UserHandler) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeMalformedBody, "you must supply {email}")
		return
	}

	user, err := u.queries.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			responses.RespondWithMessage(w, http.StatusOK, forgotPasswordReply)
			return
		}
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("database error: %v", err))
		return
	}

	otp, err := mailer.GenerateOTP(config.OTPDigits)
	if err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeInternalError, err.Error())
		return
	}

	// only the latest code is valid
	tx, err := u.pool.BeginTx(r.Context(), pgx.TxOptions{})
	if err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("failed to begin transaction: %v", err))
		return
	}
	defer func() {
		if err := tx.Rollback(r.Context()); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.ContextRequestLogger(r.Context()).Error("failed to rollback transaction", slog.String("error", err.Error()))
		}
	}()

	txQueries := u.queries.WithTx(tx)

	if err := txQueries.InvalidatePasswordResets(r.Context(), user.ID); err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("database error: %v", err))
		return
	}

	_, err = txQueries.CreatePasswordReset(r.Context(), database.CreatePasswordResetParams{
		UserID:    user.ID,
		HashedOtp: u.authService.HashToken(otp),
		ExpiresAt: time.Now().Add(config.PasswordResetExpiry),
	})
	if err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("could not store reset code: %v", err))
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("failed to commit transaction: %v", err))
		return
	}

	_ = logger.ContextWithLogAttrs(r.Context(), slog.String("user_id", user.ID.String()))

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), emailTimeout)
	defer cancel()
	u.mailer.SendPasswordReset(ctx, user.Email, otp, config.PasswordResetExpiry)

	responses.RespondWithMessage(w, http.StatusOK, forgotPasswordReply)
}

// ResetPasswordHandler sets a new password using a one time password sent by ForgotPasswordHandler.
// Codes expire after 15 minutes and can only be used once.
func (u *UserHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Email == "" || req.OTP == "" || req.NewPassword == "" {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeMalformedBody, "you must supply {email}, {otp} and {new_password}")
		return
	}

	if len(req.NewPassword) < config.MinimumPasswordLength {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodePasswordTooShort, fmt.Sprintf("password must be at least %d chars", config.MinimumPasswordLength))
		return
	}

	user, err := u.queries.GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeOTPInvalid, invalidResetCode)
			return
		}
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("database error: %v", err))
		return
	}

	hashedPassword, err := u.authService.HashPassword(req.NewPassword)
	if err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeInternalError, fmt.Sprintf("could not hash password: %v", err))
		return
	}

	tx, err := u.pool.BeginTx(r.Context(), pgx.TxOptions{})
	if err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("failed to begin transaction: %v", err))
		return
	}
	defer func() {
		if err := tx.Rollback(r.Context()); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.ContextRequestLogger(r.Context()).Error("failed to rollback transaction", slog.String("error", err.Error()))
		}
	}()

	txQueries := u.queries.WithTx(tx)

	consumed, err := txQueries.ConsumePasswordReset(r.Context(), database.ConsumePasswordResetParams{
		UserID:    user.ID,
		HashedOtp: u.authService.HashToken(strings.TrimSpace(req.OTP)),
	})
	if err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("database error: %v", err))
		return
	}
	if consumed == 0 {
		_ = logger.ContextWithLogAttrs(r.Context(), slog.String("user_id", user.ID.String()))
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeOTPInvalid, invalidResetCode)
		return
	}

	if _, err := txQueries.UpdatePassword(r.Context(), database.UpdatePasswordParams{
		ID:             user.ID,
		HashedPassword: hashedPassword,
	}); err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("could not update password: %v", err))
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("failed to commit transaction: %v", err))
		return
	}

	responses.RespondWithMessage(w, http.StatusOK, "Password has been reset")
}

// GetMeHandler returns the profile of the authenticated user
func (u *UserHandler) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.ContextUserID(r.Context())
	if !ok {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeInternalError, "did not receive userID from middleware")
		return
	}

	user, err := u.queries.GetUserByID(r.Context(), userID)
	if err != nil {
		respondWithQueryError(w, r, err, userNotFound)
		return
	}
	responses.RespondWithJSON(w, http.StatusOK, user)
}

// UpdateMeHandler applies a partial update to the authenticated user's profile
func (u *UserHandler) UpdateMeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.ContextUserID(r.Context())
	if !ok {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeInternalError, "did not receive userID from middleware")
		return
	}

	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := u.queries.GetUserByID(r.Context(), userID)
	if err != nil {
		respondWithQueryError(w, r, err, userNotFound)
		return
	}

	if msg := applyUserUpdate(&user, req); msg != "" {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeValidationFailed, msg)
		return
	}

	updated, err := u.queries.UpdateUser(r.Context(), database.UpdateUserParams{
		ID:      user.ID,
		Email:   user.Email,
		Name:    user.Name,
		Phone:   user.Phone,
		Address: user.Address,
	})
	if err != nil {
		respondWithWriteError(w, r, err, "a user already exists with this email address")
		return
	}

	responses.RespondWithJSON(w, http.StatusOK, updated)
}

// applyUserUpdate copies the supplied fields to user and returns a validation message when the update is not allowed
func applyUserUpdate(user *database.User, req UpdateUserRequest) string {
	if !req.Name.Apply(&user.Name) {
		return "name can not be null"
	}
	if !req.Email.Apply(&user.Email) {
		return "email can not be null"
	}
	req.Phone.ApplyNullable(&user.Phone)
	req.Address.ApplyNullable(&user.Address)

	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.TrimSpace(user.Email)
	if user.Name == "" {
		return "name can not be empty"
	}
	if req.Email.IsSet() {
		if _, err := mail.ParseAddress(user.Email); err != nil {
			return "invalid email address"
		}
	}
	return ""
}

// UpdatePasswordHandler changes the authenticated user's password. The current password must be supplied.
func (u *UserHandler) UpdatePasswordHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.ContextUserID(r.Context())
	if !ok {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeInternalError, "did not receive userID from middleware")
		return
	}

	var req UpdatePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.NewPassword == "" || req.CurrentPassword == "" {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeMalformedBody, "you must supply current and new password in the request")
		return
	}

	if len(req.NewPassword) < config.MinimumPasswordLength {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodePasswordTooShort, fmt.Sprintf("password must be at least %d chars", config.MinimumPasswordLength))
		return
	}

	user, err := u.queries.GetUserByID(r.Context(), userID)
	if err != nil {
		respondWithQueryError(w, r, err, userNotFound)
		return
	}

	// 400 rather than 401: the access token is valid, only the supplied password is wrong
	if err := u.authService.CheckPasswordHash(user.HashedPassword, req.CurrentPassword); err != nil {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeAuthenticationFailure, "Current password is incorrect")
		return
	}

	hashedPassword, err := u.authService.HashPassword(req.NewPassword)
	if err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeInternalError, fmt.Sprintf("could not hash password: %v", err))
		return
	}

	if _, err := u.queries.UpdatePassword(r.Context(), database.UpdatePasswordParams{
		ID:             user.ID,
		HashedPassword: hashedPassword,
	}); err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("could not update password: %v", err))
		return
	}

	responses.RespondWithStatusCodeOnly(w, http.StatusNoContent)
}

// ListUsersHandler returns all users (admin only)
func (u *UserHandler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := u.queries.ListUsers(r.Context())
	if err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("database error: %v", err))
		return
	}
	responses.RespondWithJSON(w, http.StatusOK, users)
}

// GetUserHandler returns a single user (admin only)
func (u *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", userNotFound)
	if !ok {
		return
	}

	user, err := u.queries.GetUserByID(r.Context(), id)
	if err != nil {
		respondWithQueryError(w, r, err, userNotFound)
		return
	}
	responses.RespondWithJSON(w, http.StatusOK, user)
}
