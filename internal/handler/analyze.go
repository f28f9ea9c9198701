package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aidentify/detection-dashboard/internal/detect"
	"github.com/aidentify/detection-dashboard/internal/events"
	"github.com/aidentify/detection-dashboard/internal/middleware"
	"github.com/aidentify/detection-dashboard/internal/model"
	"github.com/aidentify/detection-dashboard/internal/session"
	"github.com/aidentify/detection-dashboard/internal/upload"
	"github.com/aidentify/detection-dashboard/pkg/logger"
	"github.com/aidentify/detection-dashboard/pkg/metrics"
)

// Analyzer is the slice of the detection client the analyze handler uses.
type Analyzer interface {
	Analyze(ctx context.Context, req *detect.AnalyzeRequest) (*detect.AnalyzeResult, error)
}

// AnalyzeHandler handles attachment and analysis endpoints.
type AnalyzeHandler struct {
	store     *session.Store
	widgets   *upload.Registry
	analyzer  Analyzer
	publisher *events.Publisher
	logger    *logger.Logger
	maxBytes  int64
}

// NewAnalyzeHandler creates a new analyze handler. publisher may be nil.
func NewAnalyzeHandler(store *session.Store, widgets *upload.Registry, analyzer Analyzer, publisher *events.Publisher, maxBytes int64, log *logger.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		store:     store,
		widgets:   widgets,
		analyzer:  analyzer,
		publisher: publisher,
		logger:    log,
		maxBytes:  maxBytes,
	}
}

// Attach handles POST /api/v1/attachment — multipart upload of one file.
// Validation happens here, before any network call to the backend; a
// rejected file leaves the widget untouched.
func (h *AnalyzeHandler) Attach(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetEmail(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+64*1024)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			metrics.RecordUploadRejection("too_large")
			writeError(w, http.StatusRequestEntityTooLarge, upload.ErrTooLarge.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "malformed upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if v := r.FormValue("mime_type"); v != "" {
		mimeType = v
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	widget := h.widgets.Widget(email)
	if err := widget.Attach(header.Filename, mimeType, buf.Bytes()); err != nil {
		switch {
		case errors.Is(err, upload.ErrUnsupportedType):
			metrics.RecordUploadRejection("unsupported_type")
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, upload.ErrTooLarge):
			metrics.RecordUploadRejection("too_large")
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, upload.ErrAnalysisInFlight):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	respond(w, r, http.StatusOK, map[string]string{
		"state":     string(widget.State()),
		"file_name": header.Filename,
	})
}

// Detach handles DELETE /api/v1/attachment
func (h *AnalyzeHandler) Detach(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetEmail(r.Context())
	h.widgets.Widget(email).Clear()

	if wantsHTML(r) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Analyze handles POST /api/v1/analyze — submits the held attachment.
//
// Two disjoint transition paths, per the backend contract:
// continuing an existing chat appends the verdict locally with no refetch;
// a fresh upload creates the chat server-side, so history is refetched and
// the returned chat_id becomes selected (replacing the optimistic append).
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := middleware.GetEmail(ctx)
	userID := middleware.GetUserID(ctx)

	widget := h.widgets.Widget(email)
	att, err := widget.BeginSubmit()
	if err != nil {
		if errors.Is(err, upload.ErrAnalysisInFlight) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	selectedChatID := h.store.SelectedChatID(email)
	mediaType := model.MediaTypeFromMIME(att.MimeType)

	// Optimistic local append of the upload bubble; on the new-chat path
	// the refetch below replaces it with the persisted message.
	if selectedChatID != "" {
		h.store.AddMessageToChat(email, selectedChatID, model.Message{
			ID:       uuid.Must(uuid.NewV7()).String(),
			Role:     model.RoleUser,
			Type:     mediaType,
			FileName: att.FileName,
		})
	}

	metrics.AnalysesInFlight.Inc()
	defer metrics.AnalysesInFlight.Dec()

	start := time.Now()
	result, err := h.analyzer.Analyze(ctx, &detect.AnalyzeRequest{
		FileName: att.FileName,
		MimeType: att.MimeType,
		File:     bytes.NewReader(att.Data),
		Email:    email,
		UserID:   userID,
		ChatID:   selectedChatID,
	})
	if err != nil {
		widget.FinishSubmit(false)
		metrics.RecordAnalysis(string(mediaType), "error", time.Since(start).Seconds())
		h.logger.Error("analysis failed",
			zap.String("media_type", string(mediaType)),
			zap.Error(err),
		)
		writeError(w, http.StatusBadGateway, "Analysis failed. Please try again.")
		return
	}

	if selectedChatID == "" {
		h.store.Refresh(ctx, email)
		h.store.SelectChat(email, result.ChatID)
	} else {
		h.store.AddMessageToChat(email, selectedChatID, result.AIMessage)
	}

	widget.FinishSubmit(true)
	metrics.RecordAnalysis(string(mediaType), "success", time.Since(start).Seconds())
	metrics.RecordVerdict(string(mediaType), string(result.AIMessage.Result))
	h.publisher.PublishVerdict(ctx, email, result.ChatID, &result.AIMessage)

	respond(w, r, http.StatusOK, map[string]interface{}{
		"chat_id":    result.ChatID,
		"ai_message": result.AIMessage,
	})
}
