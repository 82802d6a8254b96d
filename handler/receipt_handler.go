package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/stoyanh/receipt-scanner/dto"
	"github.com/stoyanh/receipt-scanner/logger"
	"github.com/stoyanh/receipt-scanner/store"
)

// Recognizer extracts text from a receipt image
type Recognizer interface {
	Recognize(ctx context.Context, imageData, language string) (dto.RecognitionResult, error)
}

// Analyzer turns receipt text into a structured breakdown
type Analyzer interface {
	Analyze(ctx context.Context, receiptText string) (string, error)
}

// ReceiptHandler wires the OCR and analysis services to the HTTP surface
type ReceiptHandler struct {
	recognizer Recognizer
	analyzer   Analyzer
	receipts   *store.ReceiptStore
	hasAPIKey  bool
	log        zerolog.Logger
}

func NewReceiptHandler(recognizer Recognizer, analyzer Analyzer, receipts *store.ReceiptStore, hasAPIKey bool) *ReceiptHandler {
	return &ReceiptHandler{
		recognizer: recognizer,
		analyzer:   analyzer,
		receipts:   receipts,
		hasAPIKey:  hasAPIKey,
		log:        logger.WithComponent("handler"),
	}
}

// PerformOCR handles POST /api/ocr
func (h *ReceiptHandler) PerformOCR(c *gin.Context) {
	var req dto.OCRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "INVALID_REQUEST", readableBindingError(err))
		return
	}

	if err := req.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	h.log.Info().Str("language", req.Language).Int("payload_len", len(req.ImageBase64)).Msg("OCR request received")

	result, err := h.recognizer.Recognize(c.Request.Context(), req.ImageBase64, req.Language)
	if err != nil {
		if errors.Is(err, dto.ErrEmptyImage) || errors.Is(err, dto.ErrInvalidImage) {
			h.sendError(c, http.StatusBadRequest, "INVALID_IMAGE", err.Error())
			return
		}
		h.sendError(c, http.StatusInternalServerError, "OCR_FAILED", fmt.Sprintf("failed to perform OCR: %v", err))
		return
	}

	c.JSON(http.StatusOK, dto.OCRResponse{
		Text:     result.Text,
		Language: result.Language,
	})
}

// AnalyzeReceipt handles POST /api/analyze-receipt
func (h *ReceiptHandler) AnalyzeReceipt(c *gin.Context) {
	var req dto.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "INVALID_REQUEST", readableBindingError(err))
		return
	}

	if err := req.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	// A missing credential is an operator problem, not a runtime fault.
	if !h.hasAPIKey {
		h.sendError(c, http.StatusBadRequest, "MISSING_API_KEY", dto.ErrInvalidAPIKey.Error())
		return
	}

	analysis, err := h.analyzer.Analyze(c.Request.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, dto.ErrTextTooShort):
			h.sendError(c, http.StatusBadRequest, "TEXT_TOO_SHORT", err.Error())
		case errors.Is(err, dto.ErrInvalidAPIKey):
			h.sendError(c, http.StatusBadRequest, "MISSING_API_KEY", err.Error())
		case errors.Is(err, dto.ErrRateLimited):
			h.sendError(c, http.StatusTooManyRequests, "RATE_LIMITED", err.Error())
		default:
			h.sendError(c, http.StatusInternalServerError, "ANALYSIS_FAILED", err.Error())
		}
		return
	}

	h.persistReceipt(dto.Receipt{
		OCRText:        req.Text,
		Language:       req.Language,
		AnalysisResult: analysis,
	})

	c.JSON(http.StatusOK, dto.AnalyzeResponse{Text: analysis})
}

// ListReceipts handles GET /api/receipts
func (h *ReceiptHandler) ListReceipts(c *gin.Context) {
	c.JSON(http.StatusOK, h.receipts.List())
}

// GetReceipt handles GET /api/receipts/:id
func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "INVALID_ID", "receipt id must be an integer")
		return
	}

	receipt, ok := h.receipts.Get(id)
	if !ok {
		h.sendError(c, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("no receipt with id %d", id))
		return
	}

	c.JSON(http.StatusOK, receipt)
}

// persistReceipt records the analysis best-effort. Storage is telemetry, not
// a transactional guarantee: any failure is logged and swallowed so it can
// never affect the HTTP response.
func (h *ReceiptHandler) persistReceipt(receipt dto.Receipt) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error().Interface("panic", r).Msg("failed to persist receipt")
		}
	}()

	stored := h.receipts.Create(receipt)
	h.log.Info().Int("receipt_id", stored.ID).Msg("receipt persisted")
}

// sendError sends a structured error response
func (h *ReceiptHandler) sendError(c *gin.Context, statusCode int, code, message string) {
	h.log.Warn().Int("status", statusCode).Str("code", code).Str("message", message).Msg("request failed")
	c.JSON(statusCode, dto.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    statusCode,
	})
}

// readableBindingError turns gin's validator errors into messages a user can
// act on.
func readableBindingError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fmt.Sprintf("field '%s' failed on the '%s' rule", fe.Field(), fe.Tag()))
		}
		return strings.Join(parts, "; ")
	}
	return err.Error()
}
