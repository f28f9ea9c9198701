package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	testCookie = "__session"
)

func signToken(t *testing.T, secret, subject, email string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Email: email,
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authedRouter() (http.Handler, *string, *string) {
	var gotUserID, gotEmail string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
		gotEmail = GetEmail(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return Auth(testSecret, testCookie)(inner), &gotUserID, &gotEmail
}

func TestAuthBearerToken(t *testing.T) {
	h, userID, email := authedRouter()
	token := signToken(t, testSecret, "user_2x", "user@example.com", time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user_2x", *userID)
	assert.Equal(t, "user@example.com", *email)
}

func TestAuthSessionCookieFallback(t *testing.T) {
	h, userID, email := authedRouter()
	token := signToken(t, testSecret, "user_2x", "user@example.com", time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user_2x", *userID)
	assert.Equal(t, "user@example.com", *email)
}

func TestAuthRejects(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, req *http.Request)
	}{
		{"no credentials", func(t *testing.T, req *http.Request) {}},
		{"malformed header", func(t *testing.T, req *http.Request) {
			req.Header.Set("Authorization", "just-a-token")
		}},
		{"wrong secret", func(t *testing.T, req *http.Request) {
			token := signToken(t, "other-secret", "user_2x", "user@example.com", time.Now().Add(time.Hour))
			req.Header.Set("Authorization", "Bearer "+token)
		}},
		{"expired token", func(t *testing.T, req *http.Request) {
			token := signToken(t, testSecret, "user_2x", "user@example.com", time.Now().Add(-time.Hour))
			req.Header.Set("Authorization", "Bearer "+token)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := authedRouter()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(t, req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestSessionFromCookie(t *testing.T) {
	token := signToken(t, testSecret, "user_2x", "user@example.com", time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})

	user := SessionFromCookie(req, testCookie, testSecret)
	require.NotNil(t, user)
	assert.Equal(t, "user_2x", user.ID)
	assert.Equal(t, "user@example.com", user.Email)
}

func TestSessionFromCookieMissingOrInvalid(t *testing.T) {
	assert.Nil(t, SessionFromCookie(httptest.NewRequest(http.MethodGet, "/", nil), testCookie, testSecret))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "garbage"})
	assert.Nil(t, SessionFromCookie(req, testCookie, testSecret))
}
