package model

import (
	"strings"
	"time"
)

// Role represents the author of a message.
type Role string

const (
	RoleUser    Role = "user"
	RoleVerdict Role = "aidentify"
)

// MediaType is the coarse kind of uploaded media.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// MediaTypeFromMIME maps a MIME type onto a coarse media type by prefix.
// Anything that is not video/* or audio/* is treated as an image, matching
// the endpoint selection contract of the detection backend.
func MediaTypeFromMIME(mimeType string) MediaType {
	switch {
	case strings.HasPrefix(mimeType, "video/"):
		return MediaVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return MediaAudio
	default:
		return MediaImage
	}
}

// Message is one entry in a chat. A user message carries the uploaded media
// reference; a verdict message additionally carries the detection result.
// Every verdict message is causally preceded by the user message of the same
// exchange; pairing is by append order, not enforced structurally.
type Message struct {
	ID   string    `json:"id"`
	Role Role      `json:"role"`
	Type MediaType `json:"type"`

	// Content is the server-provided media URL. Empty for an optimistic
	// user message that has not round-tripped through the backend yet;
	// FileName then identifies the locally held attachment.
	Content  string `json:"content,omitempty"`
	FileName string `json:"file_name,omitempty"`

	// Verdict fields (verdict role only).
	Label      string  `json:"label,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	Result     Result  `json:"result,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}

// IsVerdict reports whether the message carries a detection verdict.
func (m *Message) IsVerdict() bool {
	return m.Role == RoleVerdict
}
