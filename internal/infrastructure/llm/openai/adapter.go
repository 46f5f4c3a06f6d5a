package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"fare-rules-worker/internal/application/port/output"
	"fare-rules-worker/internal/domain/entity"

	oai "github.com/sashabaranov/go-openai"
)

var _ output.LLMPort = (*Adapter)(nil)

var ErrEmptyResponse = errors.New("no choices in response")

type Adapter struct {
	client *oai.Client
	model  string
	logger output.LoggerPort
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	Logger  output.LoggerPort
}

func DefaultConfig(apiKey, model string) Config {
	return Config{
		APIKey:  apiKey,
		Model:   model,
		Timeout: 30 * time.Second,
	}
}

type loggingTransport struct {
	base   http.RoundTripper
	logger output.LoggerPort
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var bodyBytes []byte
	if req.Body != nil {
		bodyBytes, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	}

	var requestData map[string]any
	if len(bodyBytes) > 0 {
		_ = json.Unmarshal(bodyBytes, &requestData)
	}

	t.logger.Debug("HTTP Request",
		"method", req.Method,
		"url", req.URL.String(),
		"body", requestData,
	)

	resp, err := t.base.RoundTrip(req)

	if resp != nil {
		t.logger.Debug("HTTP Response",
			"status", resp.Status,
			"statusCode", resp.StatusCode,
		)
	}

	return resp, err
}

func NewAdapter(cfg Config) *Adapter {
	config := oai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	var transport http.RoundTripper = http.DefaultTransport
	if cfg.Logger != nil {
		transport = &loggingTransport{
			base:   http.DefaultTransport,
			logger: cfg.Logger,
		}
	}
	config.HTTPClient = &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}

	return &Adapter{
		client: oai.NewClientWithConfig(config),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

func (a *Adapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	resp, err := a.client.CreateChatCompletion(ctx, oai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    convertMessages(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	msg := resp.Choices[0].Message
	return &output.ChatResponse{
		Message: entity.Message{
			Role:    entity.MessageRole(msg.Role),
			Content: msg.Content,
		},
	}, nil
}

func convertMessages(messages []entity.Message) []oai.ChatCompletionMessage {
	result := make([]oai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		result = append(result, oai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return result
}
