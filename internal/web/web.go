// Package web serves the landing and dashboard pages. The pages are a thin
// server-rendered shell over the dashboard API; all detection work happens
// in the external backend.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/aidentify/detection-dashboard/internal/middleware"
	"github.com/aidentify/detection-dashboard/internal/model"
	"github.com/aidentify/detection-dashboard/internal/session"
	"github.com/aidentify/detection-dashboard/internal/upload"
	"github.com/aidentify/detection-dashboard/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static serves the embedded stylesheet and any other page assets.
func Static() http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// Handler renders the page shell.
type Handler struct {
	store     *session.Store
	widgets   *upload.Registry
	templates *template.Template
	logger    *logger.Logger

	cookieName string
	jwtSecret  string
}

// NewHandler creates the page handler and parses the embedded templates.
func NewHandler(store *session.Store, widgets *upload.Registry, cookieName, jwtSecret string, log *logger.Logger) (*Handler, error) {
	funcs := template.FuncMap{
		"displayLabel": func(r model.Result) string { return r.DisplayLabel() },
		"confidence":   model.FormatConfidence,
	}

	tmpl, err := template.New("web").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Handler{
		store:      store,
		widgets:    widgets,
		templates:  tmpl,
		logger:     log,
		cookieName: cookieName,
		jwtSecret:  jwtSecret,
	}, nil
}

func (h *Handler) user(r *http.Request) *model.User {
	return middleware.SessionFromCookie(r, h.cookieName, h.jwtSecret)
}

// Landing handles GET /. A signed-in user is sent straight to the dashboard.
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if h.user(r) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	h.render(w, "landing.html", nil)
}

// dashboardPage is the data fed to the dashboard template.
type dashboardPage struct {
	User         *model.User
	Chats        []model.Chat
	SelectedChat *model.Chat
	WidgetState  upload.State
	AttachedFile string
}

// Dashboard handles GET /dashboard. Without a session it redirects to the
// landing page.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := h.user(r)
	if user == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	h.store.EnsureLoaded(r.Context(), user.Email)

	widget := h.widgets.Widget(user.Email)
	page := dashboardPage{
		User:         user,
		Chats:        h.store.Chats(user.Email),
		SelectedChat: h.store.SelectedChat(user.Email),
		WidgetState:  widget.State(),
	}
	if att := widget.Attachment(); att != nil {
		page.AttachedFile = att.FileName
	}

	h.render(w, "dashboard.html", page)
}

// render executes a template into a buffer first so a template error can
// still produce a clean 500 instead of a half-written page.
func (h *Handler) render(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("template render failed",
			zap.String("template", name),
			zap.Error(err),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}
