package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoyanh/receipt-scanner/dto"
)

func TestPerformOCRRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/ocr", r.URL.Path)

		var req dto.OCRRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "en", req.Language)

		json.NewEncoder(w).Encode(dto.OCRResponse{Text: "BREAD 1.99", Language: req.Language})
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL)
	resp, err := c.PerformOCR(context.Background(), "data:image/png;base64,AAAA", "en")
	require.NoError(t, err)
	assert.Equal(t, "BREAD 1.99", resp.Text)
	assert.Equal(t, "en", resp.Language)
}

func TestAnalyzeReceiptErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(dto.ErrorResponse{
			Error:   "MISSING_API_KEY",
			Message: "OpenAI API key is missing or invalid",
			Code:    http.StatusBadRequest,
		})
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL)
	_, err := c.AnalyzeReceipt(context.Background(), "BREAD 1.99\nMILK 2.89", "en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MISSING_API_KEY")
}

func TestAnalyzeReceiptSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(dto.AnalyzeResponse{Text: "Общо; ; 4.88"})
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL)
	resp, err := c.AnalyzeReceipt(context.Background(), "BREAD 1.99\nMILK 2.89", "bg")
	require.NoError(t, err)
	assert.Equal(t, "Общо; ; 4.88", resp.Text)
}
