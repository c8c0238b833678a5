package auth

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var bearerPattern = regexp.MustCompile(`^\s*(?i)\bbearer\b\s*([^\s]+)\s*$`)

// BearerTokenFromHeader returns the token from an Authorization: Bearer {token} header
func BearerTokenFromHeader(headers http.Header) (string, error) {
	authorizationHeaderValue := headers.Get("Authorization")
	if authorizationHeaderValue == "" {
		return "", fmt.Errorf("authorization header is missing")
	}

	bearerToken := bearerPattern.ReplaceAllString(authorizationHeaderValue, "$1")
	if bearerToken == authorizationHeaderValue {
		return "", fmt.Errorf(`authorization header format must be Bearer {token}`)
	}

	return bearerToken, nil
}

// Claims are the fields of the access tokens issued by the API (djangorestframework-simplejwt)
type Claims struct {
	jwt.RegisteredClaims
	UserID          int    `json:"user_id,omitempty"`
	TokenType       string `json:"token_type,omitempty"`
	TypeUtilisateur string `json:"type_utilisateur,omitempty"`
}

// ParseClaims decodes the claims of a token without checking its signature.
// The signing key stays on the server: the result is only good for display and expiry checks.
func ParseClaims(token string) (Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, fmt.Errorf("could not parse token: %w", err)
	}
	return claims, nil
}

// ExpiresAt returns the expiry time, zero when the token has none
func (c Claims) ExpiresAt() time.Time {
	if c.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.ExpiresAt.Time
}

// Expired reports whether the token is expired at now. Tokens without expiry never expire.
func (c Claims) Expired(now time.Time) bool {
	exp := c.ExpiresAt()
	return !exp.IsZero() && !now.Before(exp)
}

// ErrTokenExpired is returned by CheckAccessToken for expired tokens
var ErrTokenExpired = errors.New("token expired")

// CheckAccessToken parses an access token and rejects refresh tokens and expired tokens
func CheckAccessToken(token string, now time.Time) (Claims, error) {
	claims, err := ParseClaims(token)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != "" && claims.TokenType != "access" {
		return Claims{}, fmt.Errorf("expected an access token, got %q", claims.TokenType)
	}
	if claims.Expired(now) {
		return claims, ErrTokenExpired
	}
	return claims, nil
}
