// Package session holds per-user dashboard state: the chat list and the
// current selection. State is in-memory only; a fresh session always
// refetches from the detection backend.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/aidentify/detection-dashboard/internal/model"
	"github.com/aidentify/detection-dashboard/pkg/logger"
)

// Backend is the slice of the detection client the store depends on.
type Backend interface {
	History(ctx context.Context, email string) ([]model.Chat, error)
	DeleteChat(ctx context.Context, email, chatID string) error
	DeleteAllChats(ctx context.Context, email string) error
}

// dashboard is one user's view state. An empty selectedChatID means the
// user is composing a new, not-yet-created chat.
type dashboard struct {
	chats          []model.Chat
	selectedChatID string
	loaded         bool
}

// Store keeps dashboard state for all active users.
type Store struct {
	backend Backend
	logger  *logger.Logger

	mu         sync.RWMutex
	dashboards map[string]*dashboard
}

// NewStore creates a new session store.
func NewStore(backend Backend, log *logger.Logger) *Store {
	return &Store{
		backend:    backend,
		logger:     log,
		dashboards: make(map[string]*dashboard),
	}
}

func (s *Store) dashboardFor(email string) *dashboard {
	d, ok := s.dashboards[email]
	if !ok {
		d = &dashboard{}
		s.dashboards[email] = d
	}
	return d
}

// EnsureLoaded fetches history the first time a user's identity shows up.
// Subsequent calls are no-ops; there is no polling.
func (s *Store) EnsureLoaded(ctx context.Context, email string) {
	s.mu.RLock()
	d, ok := s.dashboards[email]
	loaded := ok && d.loaded
	s.mu.RUnlock()

	if loaded {
		return
	}
	s.Refresh(ctx, email)
}

// Refresh refetches chat history from the backend and replaces local state
// wholesale. On failure the error is logged and stale data is retained;
// the caller sees nothing. A refresh racing an analysis completion resolves
// last-write-wins, which is an accepted inconsistency window.
func (s *Store) Refresh(ctx context.Context, email string) {
	chats, err := s.backend.History(ctx, email)
	if err != nil {
		s.logger.Warn("failed to fetch history, keeping stale state",
			zap.String("email", email),
			zap.Error(err),
		)
		return
	}

	s.mu.Lock()
	d := s.dashboardFor(email)
	d.chats = chats
	d.loaded = true
	s.mu.Unlock()
}

// Chats returns a copy of the user's chat list.
func (s *Store) Chats(email string) []model.Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.dashboards[email]
	if !ok {
		return nil
	}
	chats := make([]model.Chat, len(d.chats))
	copy(chats, d.chats)
	return chats
}

// SelectedChatID returns the current selection, empty for "new chat".
func (s *Store) SelectedChatID(email string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if d, ok := s.dashboards[email]; ok {
		return d.selectedChatID
	}
	return ""
}

// SelectedChat returns the currently selected chat, or nil.
func (s *Store) SelectedChat(email string) *model.Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.dashboards[email]
	if !ok || d.selectedChatID == "" {
		return nil
	}
	for i := range d.chats {
		if d.chats[i].ID == d.selectedChatID {
			chat := d.chats[i]
			return &chat
		}
	}
	return nil
}

// CreateNewChat resets selection to the composing state. No chat is created
// until the first successful analysis round-trips through the backend.
func (s *Store) CreateNewChat(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dashboardFor(email).selectedChatID = ""
}

// SelectChat selects a chat by id.
func (s *Store) SelectChat(email, chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dashboardFor(email).selectedChatID = chatID
}

// AddMessageToChat appends a message to a chat already present locally.
// Appending to an unknown chat is a no-op.
func (s *Store) AddMessageToChat(email, chatID string, msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.dashboards[email]
	if !ok {
		return
	}
	for i := range d.chats {
		if d.chats[i].ID == chatID {
			d.chats[i].Messages = append(d.chats[i].Messages, msg)
			return
		}
	}
}

// DeleteChat deletes one chat upstream, then refetches. If the deleted chat
// was selected, selection resets to the composing state. The upstream error
// is returned for user notification; local state stays untouched on failure.
func (s *Store) DeleteChat(ctx context.Context, email, chatID string) error {
	if err := s.backend.DeleteChat(ctx, email, chatID); err != nil {
		return err
	}

	s.mu.Lock()
	d := s.dashboardFor(email)
	if d.selectedChatID == chatID {
		d.selectedChatID = ""
	}
	s.mu.Unlock()

	s.Refresh(ctx, email)
	return nil
}

// DeleteAllChats deletes every chat upstream, resets selection and
// refetches. Any non-error backend response counts as full success; the
// bulk-delete contract does not expose partial failure.
func (s *Store) DeleteAllChats(ctx context.Context, email string) error {
	if err := s.backend.DeleteAllChats(ctx, email); err != nil {
		return err
	}

	s.mu.Lock()
	s.dashboardFor(email).selectedChatID = ""
	s.mu.Unlock()

	s.Refresh(ctx, email)
	return nil
}
