package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/setpoint-app/setpoint/internal/httputil"
)

type ContextKey string

const ManagerKey ContextKey = "manager"

// TokenIssuer issues and verifies the signed, expiring bearer tokens used by
// the manager endpoints.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

func (i *TokenIssuer) Issue(username string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify returns the subject of a valid, unexpired token.
func (i *TokenIssuer) Verify(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// RequireManager guards the scorekeeper endpoints with a bearer token.
func RequireManager(issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				httputil.Unauthorized(w, "missing bearer token")
				return
			}

			username, err := issuer.Verify(tokenString)
			if err != nil {
				httputil.Unauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ManagerKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetManagerFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(ManagerKey)
	if val == nil {
		return "", false
	}
	username, ok := val.(string)
	return username, ok
}
