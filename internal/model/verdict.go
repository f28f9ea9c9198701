package model

import (
	"fmt"
	"strings"
)

// Result is the display category of a verdict.
type Result string

const (
	ResultAI   Result = "AI"
	ResultReal Result = "Real"
)

// ClassifyLabel maps a backend verdict label onto a display category.
// A label counts as AI iff it contains the substring "ai" case-insensitively.
// Every path that turns a label into a category goes through here.
func ClassifyLabel(label string) Result {
	if strings.Contains(strings.ToLower(label), "ai") {
		return ResultAI
	}
	return ResultReal
}

// DisplayLabel returns the headline text shown for a result.
func (r Result) DisplayLabel() string {
	if r == ResultAI {
		return "AI Generated"
	}
	return "Human"
}

// FormatConfidence renders a confidence score in [0,1] as a one-decimal
// percentage, e.g. 0.93 -> "93.0%".
func FormatConfidence(confidence float64) string {
	return fmt.Sprintf("%.1f%%", confidence*100)
}
