package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidentify/detection-dashboard/internal/middleware"
	"github.com/aidentify/detection-dashboard/internal/model"
	"github.com/aidentify/detection-dashboard/internal/session"
	"github.com/aidentify/detection-dashboard/internal/upload"
	"github.com/aidentify/detection-dashboard/pkg/logger"
)

const (
	testSecret = "test-secret"
	testCookie = "__session"
	testEmail  = "user@example.com"
)

type staticBackend struct {
	chats []model.Chat
}

func (s *staticBackend) History(ctx context.Context, email string) ([]model.Chat, error) {
	return s.chats, nil
}

func (s *staticBackend) DeleteChat(ctx context.Context, email, chatID string) error {
	return nil
}

func (s *staticBackend) DeleteAllChats(ctx context.Context, email string) error {
	return nil
}

func newPageHandler(t *testing.T, chats []model.Chat) *Handler {
	t.Helper()
	store := session.NewStore(&staticBackend{chats: chats}, logger.NewNop())
	h, err := NewHandler(store, upload.NewRegistry(0), testCookie, testSecret, logger.NewNop())
	require.NoError(t, err)
	return h
}

func sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user_2x",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: testEmail,
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return &http.Cookie{Name: testCookie, Value: signed}
}

func TestLandingRendersForAnonymous(t *testing.T) {
	h := newPageHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Landing(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestLandingRedirectsSignedIn(t *testing.T) {
	h := newPageHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t))
	rec := httptest.NewRecorder()
	h.Landing(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestLandingUnknownPath(t *testing.T) {
	h := newPageHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
	rec := httptest.NewRecorder()
	h.Landing(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardRedirectsAnonymous(t *testing.T) {
	h := newPageHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	h.Dashboard(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestDashboardRendersHistory(t *testing.T) {
	h := newPageHandler(t, []model.Chat{
		{ID: "c1", Name: "Image Analysis 14:02"},
		{ID: "c2", Name: "Audio Analysis 09:15"},
	})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(sessionCookie(t))
	rec := httptest.NewRecorder()
	h.Dashboard(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Image Analysis 14:02")
	assert.Contains(t, body, "Audio Analysis 09:15")
	assert.Contains(t, body, testEmail)
}

func TestDashboardRendersVerdictMessages(t *testing.T) {
	h := newPageHandler(t, []model.Chat{{
		ID:   "c1",
		Name: "Image Analysis 14:02",
		Messages: []model.Message{
			{ID: "m1", Role: model.RoleUser, Type: model.MediaImage, FileName: "photo.png"},
			{
				ID: "m2", Role: model.RoleVerdict, Type: model.MediaImage,
				Label: "AI-Generated", Confidence: 0.93, Reason: "texture artifacts",
				Result: model.ResultAI,
			},
		},
	}})
	// Render with the chat open.
	h.store.EnsureLoaded(context.Background(), testEmail)
	h.store.SelectChat(testEmail, "c1")

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(sessionCookie(t))
	rec := httptest.NewRecorder()
	h.Dashboard(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "AI Generated", "display label, not the raw backend label")
	assert.Contains(t, body, "93.0%")
	assert.Contains(t, body, "texture artifacts")
}

func TestDashboardWiresDroppedFilesToInput(t *testing.T) {
	h := newPageHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(sessionCookie(t))
	rec := httptest.NewRecorder()
	h.Dashboard(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	// The drop handler must hand the dropped files to the form's file
	// input, or submitting after a drop posts nothing.
	assert.Contains(t, body, "e.dataTransfer.files")
	assert.Contains(t, body, "input[type=file]")
}

func TestDashboardShowsAttachment(t *testing.T) {
	h := newPageHandler(t, nil)
	require.NoError(t, h.widgets.Widget(testEmail).Attach("clip.mp4", "video/mp4", []byte("vid")))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(sessionCookie(t))
	rec := httptest.NewRecorder()
	h.Dashboard(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "clip.mp4"))
}
