// Package handler provides HTTP handlers for the dashboard API.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aidentify/detection-dashboard/internal/middleware"
	"github.com/aidentify/detection-dashboard/internal/model"
	"github.com/aidentify/detection-dashboard/internal/session"
	"github.com/aidentify/detection-dashboard/internal/upload"
	"github.com/aidentify/detection-dashboard/pkg/logger"
	"github.com/aidentify/detection-dashboard/pkg/metrics"
)

// ChatHandler handles chat list and selection endpoints.
type ChatHandler struct {
	store   *session.Store
	widgets *upload.Registry
	logger  *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(store *session.Store, widgets *upload.Registry, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		store:   store,
		widgets: widgets,
		logger:  log,
	}
}

// dashboardView is the full view the dashboard page polls nothing for:
// it is returned after every state-changing call.
type dashboardView struct {
	Chats          []model.Chat `json:"chats"`
	SelectedChatID string       `json:"selected_chat_id,omitempty"`
	WidgetState    upload.State `json:"widget_state"`
	AttachedFile   string       `json:"attached_file,omitempty"`
}

func (h *ChatHandler) view(email string) dashboardView {
	v := dashboardView{
		Chats:          h.store.Chats(email),
		SelectedChatID: h.store.SelectedChatID(email),
		WidgetState:    h.widgets.Widget(email).State(),
	}
	if att := h.widgets.Widget(email).Attachment(); att != nil {
		v.AttachedFile = att.FileName
	}
	return v
}

// List handles GET /api/v1/chats
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetEmail(r.Context())

	// First sight of this identity loads history; afterwards the local
	// state is authoritative until a mutation forces a refetch.
	h.store.EnsureLoaded(r.Context(), email)

	respond(w, r, http.StatusOK, h.view(email))
}

// Refresh handles POST /api/v1/chats/refresh
func (h *ChatHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetEmail(r.Context())

	metrics.HistoryRefreshesTotal.Inc()
	h.store.Refresh(r.Context(), email)

	respond(w, r, http.StatusOK, h.view(email))
}

// New handles POST /api/v1/chats/new — selection resets to the composing
// state; no chat is created until the first successful analysis.
func (h *ChatHandler) New(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetEmail(r.Context())
	h.store.CreateNewChat(email)
	respond(w, r, http.StatusOK, h.view(email))
}

// Select handles POST /api/v1/chats/{id}/select
func (h *ChatHandler) Select(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetEmail(r.Context())
	chatID := chi.URLParam(r, "id")

	found := false
	for _, chat := range h.store.Chats(email) {
		if chat.ID == chatID {
			found = true
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "chat not found")
		return
	}

	h.store.SelectChat(email, chatID)
	respond(w, r, http.StatusOK, h.view(email))
}

// Delete handles DELETE /api/v1/chats/{id}. Deleting an already-deleted id
// surfaces an error notification and leaves state unchanged.
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetEmail(r.Context())
	chatID := chi.URLParam(r, "id")

	if err := h.store.DeleteChat(r.Context(), email, chatID); err != nil {
		h.logger.Error("failed to delete chat",
			zap.String("chat_id", chatID),
			zap.Error(err),
		)
		metrics.RecordChatDeletion("one", "error")
		writeError(w, http.StatusBadGateway, "failed to delete chat")
		return
	}

	metrics.RecordChatDeletion("one", "success")
	respond(w, r, http.StatusOK, h.view(email))
}

// DeleteAll handles DELETE /api/v1/chats — removes every chat for the user
// and resets the view to the composing state.
func (h *ChatHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetEmail(r.Context())

	if err := h.store.DeleteAllChats(r.Context(), email); err != nil {
		h.logger.Error("failed to delete all chats", zap.Error(err))
		metrics.RecordChatDeletion("all", "error")
		writeError(w, http.StatusBadGateway, "failed to delete chats")
		return
	}

	metrics.RecordChatDeletion("all", "success")
	respond(w, r, http.StatusOK, h.view(email))
}
