package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/paydesk/backend/internal/application/chatbot"
	"github.com/paydesk/backend/internal/domain/shared"
	"github.com/paydesk/backend/internal/infrastructure/config"
	"github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const systemPrompt = `You are a payment recording assistant. Extract payment information from messages.

Rules:
- Extract customer name (could be first name, full name, or company name)
- Extract payment amount (look for numbers with or without currency symbols)
- Return JSON format only: {"customerName": "...", "amount": number}
- If information is unclear, return {"error": "message"}
- Amount should be a number without currency symbols

Examples:
"Joel paid 3000" -> {"customerName": "Joel", "amount": 3000}
"Received Rs 5000 from ABC Company" -> {"customerName": "ABC Company", "amount": 5000}
"John Doe payment 1500" -> {"customerName": "John Doe", "amount": 1500}`

// OpenAIExtractor implements chatbot.Extractor using the OpenAI chat API
type OpenAIExtractor struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewOpenAIExtractor creates an extractor from configuration
func NewOpenAIExtractor(cfg config.OpenAIConfig, logger *zap.Logger) (*OpenAIExtractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIExtractor{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.Named("extractor"),
	}, nil
}

// Extract runs a free-text payment message through the model and returns
// the structured fields, or a typed extraction error. It never returns
// partial results.
func (e *OpenAIExtractor) Extract(ctx context.Context, text string) (*chatbot.ExtractedPayment, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0.3,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		e.logger.Warn("extraction request failed", zap.Error(err))
		return nil, shared.NewDomainError("EXTRACTION_FAILED", "Failed to parse message")
	}
	if len(resp.Choices) == 0 {
		return nil, shared.NewDomainError("EXTRACTION_FAILED", "Failed to parse message")
	}

	extracted, err := parseExtraction(resp.Choices[0].Message.Content)
	if err != nil {
		e.logger.Warn("extraction response rejected",
			zap.String("content", resp.Choices[0].Message.Content),
			zap.Error(err))
		return nil, err
	}
	return extracted, nil
}

// extractionPayload is the wire shape of the model's reply
type extractionPayload struct {
	CustomerName string          `json:"customerName"`
	Amount       decimal.Decimal `json:"amount"`
	Error        string          `json:"error"`
}

// parseExtraction decodes the model reply into an ExtractedPayment.
// Code-fenced JSON is tolerated; an {"error": ...} reply, a missing name
// or a non-positive amount all come back as EXTRACTION_FAILED.
func parseExtraction(content string) (*chatbot.ExtractedPayment, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var payload extractionPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, shared.NewDomainError("EXTRACTION_FAILED", "Failed to parse message")
	}

	if payload.Error != "" {
		return nil, shared.NewDomainError("EXTRACTION_FAILED", payload.Error)
	}
	if strings.TrimSpace(payload.CustomerName) == "" {
		return nil, shared.NewDomainError("EXTRACTION_FAILED", "Could not identify the customer name")
	}
	if !payload.Amount.IsPositive() {
		return nil, shared.NewDomainError("EXTRACTION_FAILED", "Could not identify a positive payment amount")
	}

	return &chatbot.ExtractedPayment{
		CustomerName: strings.TrimSpace(payload.CustomerName),
		Amount:       payload.Amount,
	}, nil
}

// Ensure OpenAIExtractor implements Extractor
var _ chatbot.Extractor = (*OpenAIExtractor)(nil)
