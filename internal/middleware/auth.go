// Package middleware provides HTTP middleware for the dashboard service.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aidentify/detection-dashboard/internal/model"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// UserIDKey is the context key for the identity provider's user id.
	UserIDKey ContextKey = "user_id"
	// EmailKey is the context key for the user's primary email.
	EmailKey ContextKey = "email"
)

// Claims are the session token claims issued by the identity provider.
// Subject carries the user id.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// parseSessionToken verifies a session token and returns its claims.
func parseSessionToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// Auth verifies the identity provider's session token and puts the user
// identity on the context. API clients send a bearer token; page forms
// carry the same token in the session cookie.
func Auth(secret, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := ""

			if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
					http.Error(w, `{"error":"invalid authorization header format"}`, http.StatusUnauthorized)
					return
				}
				tokenString = parts[1]
			} else if cookie, err := r.Cookie(cookieName); err == nil {
				tokenString = cookie.Value
			}

			if tokenString == "" {
				http.Error(w, `{"error":"missing session token"}`, http.StatusUnauthorized)
				return
			}

			claims, err := parseSessionToken(tokenString, secret)
			if err != nil {
				http.Error(w, `{"error":"invalid session token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.Subject)
			ctx = context.WithValue(ctx, EmailKey, claims.Email)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromCookie reads and verifies the session cookie for page
// requests. It returns nil when there is no valid session; page handlers
// redirect on nil rather than erroring.
func SessionFromCookie(r *http.Request, cookieName, secret string) *model.User {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	claims, err := parseSessionToken(cookie.Value, secret)
	if err != nil {
		return nil
	}
	return &model.User{ID: claims.Subject, Email: claims.Email}
}

// GetUserID gets the user id from context.
func GetUserID(ctx context.Context) string {
	if v := ctx.Value(UserIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetEmail gets the user email from context.
func GetEmail(ctx context.Context) string {
	if v := ctx.Value(EmailKey); v != nil {
		return v.(string)
	}
	return ""
}
