package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nickabs/shopfront/internal/database"
	"github.com/nickabs/shopfront/internal/server/config"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	secretKey   string
	environment string
	tokenExpiry time.Duration
	queries     *database.Queries
}

func NewAuthService(secretKey string, environment string, tokenExpiry time.Duration, queries *database.Queries) *AuthService {
	return &AuthService{
		secretKey:   secretKey,
		environment: environment,
		tokenExpiry: tokenExpiry,
		queries:     queries,
	}
}

type AccessTokenResponse struct {
	AccessToken string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType   string `json:"token_type" example:"Bearer"`
	ExpiresIn   int    `json:"expires_in" example:"86400"` //seconds
}

// AccessTokenClaims are the claims carried by the signed access token.
// user_id duplicates sub so that clients can read the id without knowing the JWT conventions.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
	UserID  uuid.UUID `json:"user_id" example:"a38c99ed-c75c-4a4a-a901-c9485cf93cf3"`
	IsAdmin bool      `json:"is_admin"`
}

func (a AuthService) HashPassword(password string) (string, error) {
	dat, err := bcrypt.GenerateFromPassword([]byte(password), config.BcryptCost)
	if err != nil {
		return "", err
	}
	return string(dat), nil
}

func (a AuthService) CheckPasswordHash(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateSecureToken
// Returns the token as a base64-URL-encoded string for safe transmission/storage
func (a AuthService) GenerateSecureToken(byteLength int) (string, error) {
	tokenBytes := make([]byte, byteLength)
	_, err := io.ReadFull(rand.Reader, tokenBytes)
	if err != nil {
		return "", fmt.Errorf("error generating secure random bytes: %v", err)
	}

	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}

// hash a token using sha512
func (a AuthService) HashToken(token string) string {
	hasher := sha512.New()
	hasher.Write([]byte(token))
	return base64.URLEncoding.EncodeToString(hasher.Sum(nil))
}

// check that the hashed value of a token is the same as the supplied hash
func (a AuthService) CheckTokenHash(hash string, token string) bool {
	return hash == a.HashToken(token)
}

// CreateAccessToken creates a JWT access token signed with HS256 using the app's secret key.
//
// the access token contains:
//   - standard jwt registered claims (sub, exp, iat, iss)
//   - the user id
//   - the admin flag
//
// The admin flag is read from the user record at login. A change to the flag takes effect when the user next logs in.
func (a AuthService) CreateAccessToken(user database.User) (AccessTokenResponse, error) {
	issuedAt := time.Now()
	expiresAt := issuedAt.Add(a.tokenExpiry)

	claims := AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    config.TokenIssuerName,
		},
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedAccessToken, err := accessToken.SignedString([]byte(a.secretKey))
	if err != nil {
		return AccessTokenResponse{}, fmt.Errorf("failed to sign JWT: %w", err)
	}
	return AccessTokenResponse{
		AccessToken: signedAccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(a.tokenExpiry.Seconds()),
	}, nil
}

// ParseAccessToken validates the token signature and expiry and returns the claims.
// jwt.ErrTokenExpired is returned (wrapped) for expired tokens.
func (a AuthService) ParseAccessToken(accessToken string) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}

	_, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (any, error) {
		return []byte(a.secretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(config.TokenIssuerName),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// return the JWT access token from Authorization header
func (a AuthService) GetAccessTokenFromHeader(headers http.Header) (string, error) {
	authorizationHeaderValue := headers.Get("Authorization")
	if authorizationHeaderValue == "" {
		return "", fmt.Errorf("authorization header is missing")
	}

	parts := strings.Fields(authorizationHeaderValue)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", fmt.Errorf("authorization header format must be Bearer {token}")
	}

	return parts[1], nil
}
