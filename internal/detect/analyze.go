package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/aidentify/detection-dashboard/internal/model"
)

// AnalyzeRequest carries one media file to the detection backend.
type AnalyzeRequest struct {
	FileName string
	MimeType string
	File     io.Reader

	Email  string
	UserID string

	// ChatID is empty when the upload should create a new chat.
	ChatID string
}

// AnalyzeResult is the backend's verdict for one upload. ChatID is always
// set: for a fresh upload it identifies the newly created chat.
type AnalyzeResult struct {
	ChatID      string        `json:"chat_id"`
	UserMessage model.Message `json:"user_message"`
	AIMessage   model.Message `json:"ai_message"`
}

// analyzeEndpoint selects the analysis endpoint from the coarse media type.
func analyzeEndpoint(mediaType model.MediaType) string {
	switch mediaType {
	case model.MediaVideo:
		return "/api/video/analyze"
	case model.MediaAudio:
		return "/api/audio/analyze"
	default:
		return "/api/image/analyze"
	}
}

// Analyze posts the file as multipart form data and returns the verdict.
// The call is bounded by the analyze timeout (default 300s) rather than the
// client's short timeout: media analysis is expected to be slow. There is no
// retry and no way to abort short of the context deadline.
func (c *Client) Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalyzeResult, error) {
	mediaType := model.MediaTypeFromMIME(req.MimeType)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("file", req.FileName)
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, req.File); err != nil {
		return nil, fmt.Errorf("copy file into request: %w", err)
	}

	fields := map[string]string{
		"mime_type":     req.MimeType,
		"email":         req.Email,
		"clerk_user_id": req.UserID,
	}
	if req.ChatID != "" {
		fields["chat_id"] = req.ChatID
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write form field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.analyzeTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+analyzeEndpoint(mediaType), &body)
	if err != nil {
		return nil, fmt.Errorf("build analyze request: %w", err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	start := time.Now()

	resp, err := c.analyzeClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", mediaType, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("analyze %s: unexpected status %d", mediaType, resp.StatusCode)
	}

	var wire struct {
		ChatID      string      `json:"chat_id"`
		UserMessage wireMessage `json:"user_message"`
		AIMessage   wireMessage `json:"ai_message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode analyze response: %w", err)
	}

	result := &AnalyzeResult{
		ChatID:      wire.ChatID,
		UserMessage: mapMessage(wire.UserMessage),
		AIMessage:   mapMessage(wire.AIMessage),
	}

	c.logger.Info("analysis completed",
		zap.String("media_type", string(mediaType)),
		zap.String("chat_id", result.ChatID),
		zap.String("label", result.AIMessage.Label),
		zap.Float64("confidence", result.AIMessage.Confidence),
		zap.Duration("duration", time.Since(start)),
	)

	return result, nil
}
