// Package auth issues and verifies the bearer tokens that guard the JSON API.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const (
	Issuer = "vitabot"

	// AccessTokenDuration is the default lifetime handed out by cmd/token.
	AccessTokenDuration = 30 * 24 * time.Hour
)

var ErrNoSecret = errors.New("auth: empty signing secret")

// JwtCustomClaims carries the operator name in the standard subject claim.
type JwtCustomClaims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs an HS256 token for subject that expires after ttl.
func GenerateAccessToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := &JwtCustomClaims{
		Scope: "api",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAccessToken verifies signature, expiry and issuer and returns the claims.
func ParseAccessToken(secret, tokenString string) (*JwtCustomClaims, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	claims := &JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("auth: invalid token")
	}
	return claims, nil
}

// CookieName carries the token for browser clients, which cannot set headers on a websocket.
const CookieName = "access-token"

// JwtAuthMiddleware rejects requests without a valid token, taken from
// "Authorization: Bearer" or else the access-token cookie.
// The subject is stored under "subject" for utility.GetSubjectFromContext.
func JwtAuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var tokenString string
			authHeader := c.Request().Header.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			} else if cookie, err := c.Cookie(CookieName); err == nil {
				tokenString = cookie.Value
			}
			if tokenString == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing bearer token"})
			}

			claims, err := ParseAccessToken(secret, tokenString)
			if err != nil {
				log.Warn().Err(err).Str("path", c.Path()).Msg("Token validation failed")
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
			}

			c.Set("subject", claims.Subject)
			return next(c)
		}
	}
}
