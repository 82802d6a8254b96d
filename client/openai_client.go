package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/stoyanh/receipt-scanner/dto"
	"github.com/stoyanh/receipt-scanner/logger"
)

// OpenAIClient wraps the chat-completion API used for receipt analysis
type OpenAIClient struct {
	api   *openai.Client
	model string
	log   zerolog.Logger
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return &OpenAIClient{
		api:   openai.NewClient(apiKey),
		model: model,
		log:   logger.WithComponent("openai"),
	}
}

// Complete submits a system and user message and returns the completion text.
// Low temperature and a bounded completion length keep the output
// reproducible. Errors are classified into the dto sentinel errors.
func (oc *OpenAIClient) Complete(ctx context.Context, systemMsg, userMsg string) (string, error) {
	resp, err := oc.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: oc.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMsg},
			{Role: openai.ChatMessageRoleUser, Content: userMsg},
		},
		Temperature: 0.3,
		MaxTokens:   2000,
	})
	if err != nil {
		return "", oc.classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", dto.ErrAnalysisFailed)
	}

	return resp.Choices[0].Message.Content, nil
}

// CheckKey verifies the configured credential by listing available models.
func (oc *OpenAIClient) CheckKey(ctx context.Context) error {
	if _, err := oc.api.ListModels(ctx); err != nil {
		return oc.classifyError(err)
	}
	return nil
}

// classifyError maps an OpenAI API failure onto the service error taxonomy:
// invalid credential, rate limiting and context overflow are distinguished,
// everything else collapses to a generic analysis failure.
func (oc *OpenAIClient) classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 401:
			return fmt.Errorf("%w: %s", dto.ErrInvalidAPIKey, apiErr.Message)
		case apiErr.HTTPStatusCode == 429:
			return fmt.Errorf("%w: %s", dto.ErrRateLimited, apiErr.Message)
		case apiErr.HTTPStatusCode == 400 && strings.Contains(apiErr.Message, "maximum context length"):
			return fmt.Errorf("%w: %s", dto.ErrTextTooLong, apiErr.Message)
		}
	}

	oc.log.Error().Err(err).Msg("OpenAI request failed")
	return fmt.Errorf("%w: %v", dto.ErrAnalysisFailed, err)
}
