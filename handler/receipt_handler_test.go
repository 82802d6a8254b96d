package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoyanh/receipt-scanner/dto"
	"github.com/stoyanh/receipt-scanner/store"
)

type stubRecognizer struct {
	result dto.RecognitionResult
	err    error
	called bool
}

func (s *stubRecognizer) Recognize(ctx context.Context, imageData, language string) (dto.RecognitionResult, error) {
	s.called = true
	return s.result, s.err
}

type stubAnalyzer struct {
	result string
	err    error
	called bool
}

func (s *stubAnalyzer) Analyze(ctx context.Context, receiptText string) (string, error) {
	s.called = true
	return s.result, s.err
}

func newTestRouter(rec *stubRecognizer, an *stubAnalyzer, receipts *store.ReceiptStore, hasKey bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewReceiptHandler(rec, an, receipts, hasKey)

	router := gin.New()
	router.POST("/api/ocr", h.PerformOCR)
	router.POST("/api/analyze-receipt", h.AnalyzeReceipt)
	router.GET("/api/receipts", h.ListReceipts)
	router.GET("/api/receipts/:id", h.GetReceipt)
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOCRMissingImageReturns400(t *testing.T) {
	rec := &stubRecognizer{}
	router := newTestRouter(rec, &stubAnalyzer{}, store.NewReceiptStore(), true)

	w := doJSON(router, http.MethodPost, "/api/ocr", `{"language":"bg"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, rec.called, "recognition must not run on invalid input")
}

func TestOCRSuccessEchoesLanguage(t *testing.T) {
	rec := &stubRecognizer{result: dto.RecognitionResult{
		Text:     "BREAD 1.99",
		Language: "en",
		Source:   dto.SourceEngine,
	}}
	router := newTestRouter(rec, &stubAnalyzer{}, store.NewReceiptStore(), true)

	w := doJSON(router, http.MethodPost, "/api/ocr", `{"imageBase64":"data:image/png;base64,AAAA","language":"en"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.OCRResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "BREAD 1.99", resp.Text)
	assert.Equal(t, "en", resp.Language)
}

func TestOCRRecognitionFailureReturns500(t *testing.T) {
	rec := &stubRecognizer{err: dto.ErrAnalysisFailed}
	router := newTestRouter(rec, &stubAnalyzer{}, store.NewReceiptStore(), true)

	w := doJSON(router, http.MethodPost, "/api/ocr", `{"imageBase64":"AAAA"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAnalyzeMissingKeyReturns400(t *testing.T) {
	an := &stubAnalyzer{}
	receipts := store.NewReceiptStore()
	router := newTestRouter(&stubRecognizer{}, an, receipts, false)

	w := doJSON(router, http.MethodPost, "/api/analyze-receipt", `{"text":"BREAD 1.99\nMILK 2.89","language":"en"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, an.called, "analysis must not run without a credential")
	assert.Equal(t, 0, receipts.Len(), "no record may be created on failure")

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "MISSING_API_KEY", resp.Error)
}

func TestAnalyzeSuccessPersistsReceipt(t *testing.T) {
	an := &stubAnalyzer{result: "Общо; ; 4.88"}
	receipts := store.NewReceiptStore()
	router := newTestRouter(&stubRecognizer{}, an, receipts, true)

	w := doJSON(router, http.MethodPost, "/api/analyze-receipt", `{"text":"BREAD 1.99\nMILK 2.89","language":"en"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Общо; ; 4.88", resp.Text)

	all := receipts.List()
	require.Len(t, all, 1)
	assert.Equal(t, "BREAD 1.99\nMILK 2.89", all[0].OCRText)
	assert.Equal(t, "en", all[0].Language)
	assert.False(t, all[0].ProcessedAt.IsZero())
}

func TestAnalyzeErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"short text", dto.ErrTextTooShort, http.StatusBadRequest},
		{"invalid key", dto.ErrInvalidAPIKey, http.StatusBadRequest},
		{"rate limited", dto.ErrRateLimited, http.StatusTooManyRequests},
		{"generic failure", dto.ErrAnalysisFailed, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			receipts := store.NewReceiptStore()
			router := newTestRouter(&stubRecognizer{}, &stubAnalyzer{err: tc.err}, receipts, true)

			w := doJSON(router, http.MethodPost, "/api/analyze-receipt", `{"text":"BREAD 1.99\nMILK 2.89"}`)

			assert.Equal(t, tc.code, w.Code)
			assert.Equal(t, 0, receipts.Len())
		})
	}
}

func TestAnalyzeDefaultsLanguage(t *testing.T) {
	receipts := store.NewReceiptStore()
	router := newTestRouter(&stubRecognizer{}, &stubAnalyzer{result: "Общо; ; 1.99"}, receipts, true)

	w := doJSON(router, http.MethodPost, "/api/analyze-receipt", `{"text":"ХЛЯБ ДОБРУДЖА 1.99 ОБЩО 1.99"}`)

	require.Equal(t, http.StatusOK, w.Code)
	all := receipts.List()
	require.Len(t, all, 1)
	assert.Equal(t, "bg", all[0].Language)
}

func TestGetReceipt(t *testing.T) {
	receipts := store.NewReceiptStore()
	created := receipts.Create(dto.Receipt{OCRText: "x", Language: "bg"})
	router := newTestRouter(&stubRecognizer{}, &stubAnalyzer{}, receipts, true)

	w := doJSON(router, http.MethodGet, "/api/receipts/1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got dto.Receipt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)

	w = doJSON(router, http.MethodGet, "/api/receipts/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
