package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// OCRResponse is the success body of POST /api/ocr
type OCRResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// AnalyzeResponse is the success body of POST /api/analyze-receipt
type AnalyzeResponse struct {
	Text string `json:"text"`
}

// KeyCheckResponse is the body of GET /api/check-openai-key
type KeyCheckResponse struct {
	IsValid bool   `json:"isValid"`
	Message string `json:"message"`
}
