package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyLabel(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  Result
	}{
		{"ai generated", "AI-Generated", ResultAI},
		{"lowercase ai", "likely ai content", ResultAI},
		{"plain ai", "AI", ResultAI},
		{"human voice", "Authentic Human Voice", ResultReal},
		{"real", "Real", ResultReal},
		{"empty", "", ResultReal},
		{"ai inside word", "pAInted portrait", ResultAI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyLabel(tt.label))
		})
	}
}

func TestResultDisplayLabel(t *testing.T) {
	assert.Equal(t, "AI Generated", ResultAI.DisplayLabel())
	assert.Equal(t, "Human", ResultReal.DisplayLabel())
}

func TestFormatConfidence(t *testing.T) {
	assert.Equal(t, "93.0%", FormatConfidence(0.93))
	assert.Equal(t, "81.0%", FormatConfidence(0.81))
	assert.Equal(t, "0.0%", FormatConfidence(0))
	assert.Equal(t, "100.0%", FormatConfidence(1))
	assert.Equal(t, "66.7%", FormatConfidence(0.6666))
}

func TestMediaTypeFromMIME(t *testing.T) {
	assert.Equal(t, MediaVideo, MediaTypeFromMIME("video/mp4"))
	assert.Equal(t, MediaAudio, MediaTypeFromMIME("audio/mpeg"))
	assert.Equal(t, MediaImage, MediaTypeFromMIME("image/png"))
	assert.Equal(t, MediaImage, MediaTypeFromMIME("application/octet-stream"))
}
