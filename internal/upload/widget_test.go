package upload

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAllowList(t *testing.T) {
	valid := []struct {
		name string
		mime string
	}{
		{"photo.jpg", "image/jpeg"},
		{"photo.JPEG", "image/jpeg"},
		{"anim.gif", "image/gif"},
		{"pic.webp", "image/webp"},
		{"pic.bmp", "image/bmp"},
		{"clip.mp4", "video/mp4"},
		{"clip.mov", "video/quicktime"},
		{"clip.avi", "video/x-msvideo"},
		{"song.mp3", "audio/mpeg"},
		{"take.wav", "audio/wav"},
	}
	for _, f := range valid {
		assert.NoError(t, Validate(f.name, f.mime), f.name)
	}

	invalid := []struct {
		name string
		mime string
	}{
		{"document.pdf", "application/pdf"},
		{"archive.zip", "application/zip"},
		{"notes.txt", "text/plain"},
		{"song.flac", "audio/flac"},
		{"noext", "image/png"},
		{"sneaky.png", "application/octet-stream"}, // extension ok, MIME not
	}
	for _, f := range invalid {
		assert.ErrorIs(t, Validate(f.name, f.mime), ErrUnsupportedType, f.name)
	}
}

func TestWidgetRejectedFileStaysIdle(t *testing.T) {
	w := NewWidget(0)

	err := w.Attach("document.pdf", "application/pdf", []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Equal(t, StateIdle, w.State())
	assert.Nil(t, w.Attachment())
}

func TestWidgetAttachSubmitLifecycle(t *testing.T) {
	w := NewWidget(0)

	require.NoError(t, w.Attach("photo.png", "image/png", []byte("png-bytes")))
	assert.Equal(t, StateAttached, w.State())

	att, err := w.BeginSubmit()
	require.NoError(t, err)
	assert.Equal(t, "photo.png", att.FileName)
	assert.Equal(t, StateAnalyzing, w.State())

	w.FinishSubmit(true)
	assert.Equal(t, StateIdle, w.State())
	assert.Nil(t, w.Attachment(), "attachment cleared on success")
}

func TestWidgetFailureRetainsAttachment(t *testing.T) {
	w := NewWidget(0)
	require.NoError(t, w.Attach("clip.mp4", "video/mp4", []byte("vid")))

	_, err := w.BeginSubmit()
	require.NoError(t, err)

	w.FinishSubmit(false)
	assert.Equal(t, StateAttached, w.State())
	require.NotNil(t, w.Attachment())
	assert.Equal(t, "clip.mp4", w.Attachment().FileName)

	// Retry without re-attaching works.
	_, err = w.BeginSubmit()
	assert.NoError(t, err)
}

func TestWidgetSubmitWithNothingAttached(t *testing.T) {
	w := NewWidget(0)
	_, err := w.BeginSubmit()
	assert.ErrorIs(t, err, ErrNoAttachment)
	assert.Equal(t, StateIdle, w.State())
}

func TestWidgetSubmissionGuard(t *testing.T) {
	w := NewWidget(0)
	require.NoError(t, w.Attach("photo.png", "image/png", []byte("x")))

	_, err := w.BeginSubmit()
	require.NoError(t, err)

	// A second submit while in flight is refused, no matter how many race.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := w.BeginSubmit()
			assert.ErrorIs(t, err, ErrAnalysisInFlight)
		}()
	}
	wg.Wait()

	// Attach and Clear are also refused mid-flight.
	assert.ErrorIs(t, w.Attach("other.png", "image/png", []byte("y")), ErrAnalysisInFlight)
	w.Clear()
	assert.Equal(t, StateAnalyzing, w.State())
}

func TestWidgetSizeLimit(t *testing.T) {
	w := NewWidget(4)
	err := w.Attach("photo.png", "image/png", []byte("12345"))
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Equal(t, StateIdle, w.State())

	assert.NoError(t, w.Attach("photo.png", "image/png", []byte("1234")))
}

func TestRegistryOneWidgetPerUser(t *testing.T) {
	r := NewRegistry(0)
	a := r.Widget("a@example.com")
	b := r.Widget("b@example.com")
	assert.NotSame(t, a, b)
	assert.Same(t, a, r.Widget("a@example.com"))
}
