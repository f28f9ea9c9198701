// Package detect is the HTTP client for the external detection backend.
// The backend performs the actual AI-or-real analysis; this client only
// moves bytes and maps wire shapes onto the dashboard model.
package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aidentify/detection-dashboard/internal/model"
	"github.com/aidentify/detection-dashboard/pkg/logger"
)

// Client talks to the detection backend over HTTP/JSON(+multipart).
type Client struct {
	baseURL    string
	httpClient *http.Client

	// analyzeClient carries no client timeout; analysis calls are bounded
	// by a per-request context deadline instead.
	analyzeClient  *http.Client
	analyzeTimeout time.Duration

	logger *logger.Logger
}

// Config holds client configuration.
type Config struct {
	// BaseURL is the detection backend origin, e.g. "https://api.example.com".
	BaseURL string

	// Timeout bounds history and delete calls. Zero means 15s.
	Timeout time.Duration

	// AnalyzeTimeout bounds analysis calls, which are expected to be
	// long-running. Zero means 300s.
	AnalyzeTimeout time.Duration
}

// NewClient creates a new detection backend client.
func NewClient(cfg Config, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	analyzeTimeout := cfg.AnalyzeTimeout
	if analyzeTimeout == 0 {
		analyzeTimeout = 300 * time.Second
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:     &http.Client{Timeout: timeout},
		analyzeClient:  &http.Client{},
		analyzeTimeout: analyzeTimeout,
		logger:         log,
	}
}

// wireMessage is the backend's message record.
type wireMessage struct {
	ID         string    `json:"id"`
	Role       string    `json:"role"`
	Type       string    `json:"type"`
	Content    string    `json:"content"`
	Label      string    `json:"label,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// wireChat is the backend's chat record.
type wireChat struct {
	ID       string        `json:"_id"`
	Title    string        `json:"title"`
	Messages []wireMessage `json:"messages"`
}

func mapMessage(wm wireMessage) model.Message {
	msg := model.Message{
		ID:         wm.ID,
		Role:       model.Role(wm.Role),
		Type:       model.MediaType(wm.Type),
		Content:    wm.Content,
		Label:      wm.Label,
		Confidence: wm.Confidence,
		Reason:     wm.Reason,
		CreatedAt:  wm.CreatedAt,
	}
	if wm.Role != string(model.RoleUser) {
		// The backend's assistant role name has drifted over time;
		// anything that is not the user is the verdict side.
		msg.Role = model.RoleVerdict
		msg.Result = model.ClassifyLabel(wm.Label)
	}
	return msg
}

func mapChat(wc wireChat) model.Chat {
	chat := model.Chat{
		ID:       wc.ID,
		Name:     wc.Title,
		Messages: make([]model.Message, 0, len(wc.Messages)),
	}
	for _, wm := range wc.Messages {
		chat.Messages = append(chat.Messages, mapMessage(wm))
	}
	return chat
}

// History fetches all chats for a user, newest first as ordered by the
// backend. Message Result fields are derived from labels at mapping time.
func (c *Client) History(ctx context.Context, email string) ([]model.Chat, error) {
	u := fmt.Sprintf("%s/api/chat/history?email=%s", c.baseURL, url.QueryEscape(email))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build history request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch history: unexpected status %d", resp.StatusCode)
	}

	var wireChats []wireChat
	if err := json.NewDecoder(resp.Body).Decode(&wireChats); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}

	chats := make([]model.Chat, 0, len(wireChats))
	for _, wc := range wireChats {
		chats = append(chats, mapChat(wc))
	}

	c.logger.Debug("fetched chat history",
		zap.String("email", email),
		zap.Int("chats", len(chats)),
	)

	return chats, nil
}

// DeleteChat deletes a single chat. Any non-2xx status is a uniform failure.
func (c *Client) DeleteChat(ctx context.Context, email, chatID string) error {
	u := fmt.Sprintf("%s/api/chat/delete?email=%s&chatId=%s",
		c.baseURL, url.QueryEscape(email), url.QueryEscape(chatID))
	return c.doDelete(ctx, u, "delete chat")
}

// DeleteAllChats deletes every chat for a user. The client treats any
// non-error response as full success; the backend does not expose partial
// deletion to us.
func (c *Client) DeleteAllChats(ctx context.Context, email string) error {
	u := fmt.Sprintf("%s/api/chat/delete_all_chats?email=%s",
		c.baseURL, url.QueryEscape(email))
	return c.doDelete(ctx, u, "delete all chats")
}

func (c *Client) doDelete(ctx context.Context, u, op string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}
	return nil
}
