package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stoyanh/receipt-scanner/dto"
)

// KeyChecker verifies the analysis credential against the upstream API
type KeyChecker interface {
	CheckKey(ctx context.Context) error
}

// KeyHandler exposes the credential diagnostic endpoint
type KeyHandler struct {
	checker   KeyChecker
	hasAPIKey bool
}

func NewKeyHandler(checker KeyChecker, hasAPIKey bool) *KeyHandler {
	return &KeyHandler{checker: checker, hasAPIKey: hasAPIKey}
}

// CheckOpenAIKey handles GET /api/check-openai-key
func (h *KeyHandler) CheckOpenAIKey(c *gin.Context) {
	if !h.hasAPIKey {
		c.JSON(http.StatusOK, dto.KeyCheckResponse{
			IsValid: false,
			Message: "OPENAI_API_KEY is not configured",
		})
		return
	}

	if err := h.checker.CheckKey(c.Request.Context()); err != nil {
		c.JSON(http.StatusOK, dto.KeyCheckResponse{
			IsValid: false,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.KeyCheckResponse{
		IsValid: true,
		Message: "OpenAI API key is valid",
	})
}
