package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/stoyanh/receipt-scanner/dto"
)

// APIClient talks to the receipt-scanner HTTP API
type APIClient struct {
	baseURL string
	http    *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		http:    http.DefaultClient,
	}
}

// PerformOCR calls POST /api/ocr
func (c *APIClient) PerformOCR(ctx context.Context, imageBase64, language string) (*dto.OCRResponse, error) {
	var resp dto.OCRResponse
	err := c.postJSON(ctx, "/api/ocr", dto.OCRRequest{
		ImageBase64: imageBase64,
		Language:    language,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// AnalyzeReceipt calls POST /api/analyze-receipt
func (c *APIClient) AnalyzeReceipt(ctx context.Context, text, language string) (*dto.AnalyzeResponse, error) {
	var resp dto.AnalyzeResponse
	err := c.postJSON(ctx, "/api/analyze-receipt", dto.AnalyzeRequest{
		Text:     text,
		Language: language,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *APIClient) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr dto.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("%s: %s", apiErr.Error, apiErr.Message)
		}
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
