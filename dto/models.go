package dto

import (
	"errors"
	"time"
)

// Custom errors
var (
	ErrEmptyImage     = errors.New("no image data provided")
	ErrInvalidImage   = errors.New("invalid image data")
	ErrTextTooShort   = errors.New("receipt text is too short to analyze")
	ErrInvalidAPIKey  = errors.New("OpenAI API key is missing or invalid")
	ErrRateLimited    = errors.New("OpenAI API rate limit exceeded")
	ErrTextTooLong    = errors.New("receipt text exceeds the model context limit")
	ErrAnalysisFailed = errors.New("receipt analysis failed")
)

// RecognitionSource tags how a recognition result was produced
type RecognitionSource string

const (
	SourceEngine   RecognitionSource = "engine"
	SourceFallback RecognitionSource = "fallback"
)

// RecognitionResult is the outcome of an OCR pass. Source tells whether the
// text came from the engine or from the stand-in used when recognition fails;
// callers must not treat fallback text as a successful read.
type RecognitionResult struct {
	Text     string            `json:"text"`
	Language string            `json:"language"`
	Source   RecognitionSource `json:"source"`
}

// Receipt is a stored analysis record. ImageURL is kept for schema parity
// with the analyze flow but is never populated.
type Receipt struct {
	ID             int       `json:"id"`
	ImageURL       string    `json:"image_url,omitempty"`
	OCRText        string    `json:"ocr_text"`
	Language       string    `json:"language"`
	AnalysisResult string    `json:"analysis_result"`
	ProcessedAt    time.Time `json:"processed_at"`
}

// StatusKind classifies a transient status message
type StatusKind string

const (
	StatusInfo    StatusKind = "info"
	StatusSuccess StatusKind = "success"
	StatusWarning StatusKind = "warning"
	StatusError   StatusKind = "error"
)

// StatusMessage is an ephemeral user-facing notification
type StatusMessage struct {
	ID   string     `json:"id"`
	Text string     `json:"text"`
	Kind StatusKind `json:"kind"`
}
