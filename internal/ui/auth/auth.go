package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nickabs/shopfront/internal/ui/config"
	"github.com/nickabs/shopfront/internal/ui/types"
)

// AuthService manages the browser session for the web client.
//
// The API access token is kept in an http-only cookie together with the user's display details.
// The token is verified by the API on every call; the UI only reads its claims to decide what to show.
type AuthService struct {
	secureCookies bool
}

func NewAuthService(secureCookies bool) *AuthService {
	return &AuthService{secureCookies: secureCookies}
}

// TokenStatus represents the state of the access token presented with a UI request
type TokenStatus int

const (
	TokenMissing TokenStatus = iota
	TokenInvalid
	TokenExpired
	TokenValid
)

var tokenStatusNames = []string{"TokenMissing", "TokenInvalid", "TokenExpired", "TokenValid"}

func (t TokenStatus) String() string {
	if t < 0 || int(t) >= len(tokenStatusNames) {
		return fmt.Sprintf("TokenStatus(%d)", int(t))
	}
	return tokenStatusNames[t]
}

// accessClaims mirrors the claims issued by the API
type accessClaims struct {
	UserID  string `json:"user_id"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// sessionCookie is the JSON stored (base64 encoded) in the session cookie
type sessionCookie struct {
	AccessToken string `json:"access_token"`
	Email       string `json:"email"`
	Name        string `json:"name"`
}

var ErrNoSession = errors.New("no session cookie")

// SessionFromToken decodes the access token claims without verifying the signature.
func SessionFromToken(accessToken string) (*types.Session, error) {
	if accessToken == "" {
		return nil, errors.New("empty access token")
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := &accessClaims{}

	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("could not parse access token: %w", err)
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return nil, errors.New("access token has no user id")
	}
	if claims.ExpiresAt == nil {
		return nil, errors.New("access token has no expiry")
	}

	return &types.Session{
		AccessToken: accessToken,
		UserID:      userID,
		IsAdmin:     claims.IsAdmin,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// GetSession reads the session cookie and reports the state of the access token it contains.
// The session is only returned when the token is valid.
func (a *AuthService) GetSession(r *http.Request) (*types.Session, TokenStatus) {
	cookie, err := r.Cookie(config.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, TokenMissing
	}

	decoded, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil, TokenInvalid
	}

	var stored sessionCookie
	if err := json.Unmarshal(decoded, &stored); err != nil {
		return nil, TokenInvalid
	}

	session, err := SessionFromToken(stored.AccessToken)
	if err != nil {
		return nil, TokenInvalid
	}

	// browsers normally drop the cookie when the token expires (MaxAge matches the token lifetime)
	if session.ExpiresAt.Before(time.Now()) {
		return nil, TokenExpired
	}

	session.Email = stored.Email
	session.Name = stored.Name
	return session, TokenValid
}

// SetSessionCookie stores the login response in the session cookie
func (a *AuthService) SetSessionCookie(w http.ResponseWriter, login *types.LoginResponse) error {
	if _, err := SessionFromToken(login.Token); err != nil {
		return err
	}

	return a.writeSessionCookie(w, sessionCookie{
		AccessToken: login.Token,
		Email:       login.User.Email,
		Name:        login.User.Name,
	}, login.ExpiresIn)
}

// UpdateSessionDetails rewrites the display details held in the session cookie (e.g after the user changes their name)
func (a *AuthService) UpdateSessionDetails(w http.ResponseWriter, session *types.Session, user *types.User) error {
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	if maxAge <= 0 {
		return errors.New("session has expired")
	}

	return a.writeSessionCookie(w, sessionCookie{
		AccessToken: session.AccessToken,
		Email:       user.Email,
		Name:        user.Name,
	}, maxAge)
}

func (a *AuthService) writeSessionCookie(w http.ResponseWriter, stored sessionCookie, maxAge int) error {
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.SessionCookieName,
		Value:    base64.URLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
	return nil
}

// ClearSessionCookie logs the user out of the web client
func (a *AuthService) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
