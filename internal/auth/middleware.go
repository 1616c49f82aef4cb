package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nickabs/shopfront/internal/apperrors"
	"github.com/nickabs/shopfront/internal/logger"
	"github.com/nickabs/shopfront/internal/server/responses"
)

// RequireValidAccessToken checks that the access token is valid and adds the requestor's user id and jwt claims to the Context.
func (a AuthService) RequireValidAccessToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accessToken, err := a.GetAccessTokenFromHeader(r.Header)
		if err != nil {
			responses.RespondWithError(w, r, http.StatusUnauthorized, apperrors.ErrCodeAuthorizationFailure, fmt.Sprintf("unauthorized: %v", err))
			return
		}

		claims, err := a.ParseAccessToken(accessToken)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				responses.RespondWithError(w, r, http.StatusUnauthorized, apperrors.ErrCodeAccessTokenExpired, "access token expired, please log in again")
				return
			}
			responses.RespondWithError(w, r, http.StatusUnauthorized, apperrors.ErrCodeAuthorizationFailure, fmt.Sprintf("unauthorized: %v", err))
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			responses.RespondWithError(w, r, http.StatusUnauthorized, apperrors.ErrCodeTokenInvalid, fmt.Sprintf("signed jwt received without a valid user id in sub: %v", err))
			return
		}

		_ = logger.ContextWithLogAttrs(r.Context(), slog.String("user_id", userID.String()))

		ctx := ContextWithUserID(r.Context(), userID)
		ctx = ContextWithAccessTokenClaims(ctx, claims)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin checks the is_admin claim.
// It should only be used after RequireValidAccessToken, which adds the claims to the context
func (a AuthService) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ContextAccessTokenClaims(r.Context())
		if !ok {
			responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeInternalError, "could not get claims from context")
			return
		}

		if !claims.IsAdmin {
			responses.RespondWithError(w, r, http.StatusForbidden, apperrors.ErrCodeForbidden, "you do not have permission to use this feature")
			return
		}
		next.ServeHTTP(w, r)
	})
}
