// Package upload implements the upload widget state machine: one held
// attachment per user, a fixed allow-list, and an explicit submission guard.
package upload

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// State is the widget's upload state. Drag highlighting is a purely visual
// concern on the page and never appears here.
type State string

const (
	// StateIdle means no file is attached.
	StateIdle State = "idle"
	// StateAttached means a file passed validation and is held for submit.
	StateAttached State = "attached"
	// StateAnalyzing means a submission is in flight.
	StateAnalyzing State = "analyzing"
)

var (
	// ErrUnsupportedType is returned for files outside the allow-list.
	ErrUnsupportedType = errors.New("unsupported file type: only images, videos, MP3 and WAV are allowed")
	// ErrNoAttachment is returned when submitting with nothing attached.
	ErrNoAttachment = errors.New("no file attached")
	// ErrAnalysisInFlight is returned when a submission is already running.
	ErrAnalysisInFlight = errors.New("analysis already in progress")
	// ErrTooLarge is returned when the file exceeds the size limit.
	ErrTooLarge = errors.New("file exceeds the 50MB limit")
)

// allowedExtensions maps accepted extensions to the MIME prefix they must
// arrive with. The set is fixed by the product contract.
var allowedExtensions = map[string]string{
	".jpg":  "image/",
	".jpeg": "image/",
	".png":  "image/",
	".gif":  "image/",
	".webp": "image/",
	".bmp":  "image/",
	".mp4":  "video/",
	".webm": "video/",
	".ogg":  "video/",
	".mov":  "video/",
	".avi":  "video/",
	".mp3":  "audio/",
	".wav":  "audio/",
}

// Validate checks a file name and MIME type against the allow-list.
func Validate(fileName, mimeType string) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	prefix, ok := allowedExtensions[ext]
	if !ok {
		return ErrUnsupportedType
	}
	if !strings.HasPrefix(mimeType, prefix) {
		return fmt.Errorf("%w: %s does not match %s", ErrUnsupportedType, mimeType, ext)
	}
	return nil
}

// Attachment is the file currently held by a widget.
type Attachment struct {
	FileName string
	MimeType string
	Data     []byte
}

// Widget is one user's upload widget. All transitions are guarded by a
// mutex so a double submit cannot slip past UI-level control disablement.
type Widget struct {
	mu         sync.Mutex
	state      State
	attachment *Attachment
	maxBytes   int64
}

// NewWidget creates an idle widget. maxBytes <= 0 disables the size check.
func NewWidget(maxBytes int64) *Widget {
	return &Widget{state: StateIdle, maxBytes: maxBytes}
}

// State returns the current upload state.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Attachment returns the held attachment, or nil when idle.
func (w *Widget) Attachment() *Attachment {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attachment
}

// Attach validates and holds a file. A rejected file never leaves Idle and
// replaces nothing. Attaching while a previous file is held replaces it;
// attaching during analysis is refused.
func (w *Widget) Attach(fileName, mimeType string, data []byte) error {
	if err := Validate(fileName, mimeType); err != nil {
		return err
	}
	if w.maxBytes > 0 && int64(len(data)) > w.maxBytes {
		return ErrTooLarge
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateAnalyzing {
		return ErrAnalysisInFlight
	}
	w.attachment = &Attachment{FileName: fileName, MimeType: mimeType, Data: data}
	w.state = StateAttached
	return nil
}

// Clear drops the held attachment. A no-op during analysis.
func (w *Widget) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateAnalyzing {
		return
	}
	w.attachment = nil
	w.state = StateIdle
}

// BeginSubmit transitions Attached -> Analyzing and returns the attachment
// to submit. This is the submission guard: a second concurrent submit gets
// ErrAnalysisInFlight, and submitting with no attachment is refused.
func (w *Widget) BeginSubmit() (*Attachment, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateAnalyzing:
		return nil, ErrAnalysisInFlight
	case StateIdle:
		return nil, ErrNoAttachment
	}
	w.state = StateAnalyzing
	return w.attachment, nil
}

// FinishSubmit ends an in-flight submission. On success the attachment is
// cleared; on failure it is retained so the user can retry without
// re-selecting the file.
func (w *Widget) FinishSubmit(success bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateAnalyzing {
		return
	}
	if success {
		w.attachment = nil
		w.state = StateIdle
		return
	}
	w.state = StateAttached
}
