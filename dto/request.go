package dto

import "strings"

// DefaultLanguage is used whenever a request does not specify one.
const DefaultLanguage = "bg"

// OCRRequest is the body of POST /api/ocr
type OCRRequest struct {
	ImageBase64 string `json:"imageBase64" binding:"required"`
	Language    string `json:"language"`
}

// Validate performs basic validation on the request
func (r *OCRRequest) Validate() error {
	if strings.TrimSpace(r.ImageBase64) == "" {
		return ErrEmptyImage
	}
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	return nil
}

// AnalyzeRequest is the body of POST /api/analyze-receipt
type AnalyzeRequest struct {
	Text     string `json:"text" binding:"required"`
	Language string `json:"language"`
}

// Validate performs basic validation on the request
func (r *AnalyzeRequest) Validate() error {
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	return nil
}
