package langchain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fare-rules-worker/internal/application/port/output"
	"fare-rules-worker/internal/domain/entity"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var _ output.LLMPort = (*Adapter)(nil)

var ErrEmptyResponse = errors.New("no choices in response")

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Adapter talks to an OpenAI compatible endpoint through langchaingo.
type Adapter struct {
	llm llms.Model
}

func NewAdapter(cfg Config) (*Adapter, error) {
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
		openai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create langchain openai client: %w", err)
	}
	return &Adapter{llm: llm}, nil
}

func NewWithModel(model llms.Model) *Adapter {
	return &Adapter{llm: model}
}

func (a *Adapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	opts := []llms.CallOption{llms.WithTemperature(float64(req.Temperature))}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}

	resp, err := a.llm.GenerateContent(ctx, convertMessages(req.Messages), opts...)
	if err != nil {
		return nil, fmt.Errorf("generate content failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	return &output.ChatResponse{
		Message: entity.Message{
			Role:    entity.RoleAssistant,
			Content: resp.Choices[0].Content,
		},
	}, nil
}

func convertMessages(messages []entity.Message) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		result = append(result, llms.TextParts(messageType(msg.Role), msg.Content))
	}
	return result
}

func messageType(role entity.MessageRole) llms.ChatMessageType {
	switch role {
	case entity.RoleSystem:
		return llms.ChatMessageTypeSystem
	case entity.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
