package farerules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fare-rules-worker/internal/application/port/input"
	"fare-rules-worker/internal/application/port/output"
	"fare-rules-worker/internal/domain/entity"
)

var _ input.TaskHandler = (*UseCase)(nil)

const (
	DefaultProvider    = "OpenAI GPT-4o-mini"
	DefaultMaxTokens   = 10
	DefaultTemperature = 0.3
	DefaultCallTimeout = 30 * time.Second
)

var errUnknownFailure = errors.New("text generation failed")

type Config struct {
	// Backend names the LLM adapter in metrics and logs.
	Backend     string
	Provider    string
	MaxTokens   int
	Temperature float32
	CallTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Backend:     "openai",
		Provider:    DefaultProvider,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		CallTimeout: DefaultCallTimeout,
	}
}

type PromptBuilder interface {
	Messages(req entity.FareRequest) ([]entity.Message, error)
}

// UseCase classifies the refund request of one external task.
type UseCase struct {
	llm     output.LLMPort
	prompts PromptBuilder
	logger  output.LoggerPort
	metrics output.MetricsPort
	cfg     Config
}

func New(
	llm output.LLMPort,
	prompts PromptBuilder,
	logger output.LoggerPort,
	metrics output.MetricsPort,
	cfg Config,
) *UseCase {
	if metrics == nil {
		metrics = output.NopMetrics{}
	}
	return &UseCase{
		llm:     llm,
		prompts: prompts,
		logger:  logger,
		metrics: metrics,
		cfg:     cfg,
	}
}

// Verdict is the result of consulting the model: a raw reply, or the message
// of the error that prevented one.
type Verdict struct {
	Reply   string
	Failure string
}

func (v Verdict) Failed() bool {
	return v.Failure != ""
}

func (uc *UseCase) Handle(ctx context.Context, task entity.ExternalTask) entity.TaskReport {
	log := uc.logger.WithField("taskId", task.ID)

	req := entity.NewFareRequest(task)
	log.Info("Processing booking", "bookingId", req.BookingID, "ticketClass", req.TicketClass)

	verdict := uc.consult(ctx, log, req)

	var outcome entity.ClassificationOutcome
	switch {
	case verdict.Failed():
		log.Error("LLM API error, routing to manual review", "error", verdict.Failure)
		uc.metrics.IncClassification(string(entity.FareManual), "error")
		outcome = entity.ClassificationOutcome{
			Category: entity.FareManual,
			Error:    verdict.Failure,
		}
	default:
		category, ok := entity.ParseFareCategory(verdict.Reply)
		if ok {
			uc.metrics.IncClassification(string(category), "model")
		} else {
			log.Warn("Invalid decision, defaulting to MANUAL", "reply", verdict.Reply)
			uc.metrics.IncClassification(string(category), "fallback")
		}
		log.Info("LLM decision", "category", category)
		outcome = entity.ClassificationOutcome{
			Category:  category,
			Provider:  uc.cfg.Provider,
			Reasoning: fmt.Sprintf("AI analysis for %s", req.BookingID),
		}
	}

	return entity.TaskReport{TaskID: task.ID, Outcome: outcome}
}

// consult never returns an error: every failure, panics in the adapter
// included, is folded into the verdict.
func (uc *UseCase) consult(ctx context.Context, log output.LoggerPort, req entity.FareRequest) (verdict Verdict) {
	messages, err := uc.prompts.Messages(req)
	if err != nil {
		return failed(fmt.Errorf("build prompt: %w", err))
	}

	if uc.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.cfg.CallTimeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			verdict = failed(fmt.Errorf("llm adapter panic: %v", r))
		}
		status := "ok"
		if verdict.Failed() {
			status = "error"
		}
		uc.metrics.ObserveLLMCall(uc.cfg.Backend, status, time.Since(start))
	}()

	log.Debug("Calling LLM API", "backend", uc.cfg.Backend)
	resp, err := uc.llm.Chat(ctx, output.ChatRequest{
		Messages:    messages,
		MaxTokens:   uc.cfg.MaxTokens,
		Temperature: uc.cfg.Temperature,
	})
	if err != nil {
		return failed(err)
	}
	if resp == nil {
		return failed(errors.New("empty response from llm"))
	}

	return Verdict{Reply: resp.Message.Content}
}

func failed(err error) Verdict {
	if err == nil || err.Error() == "" {
		err = errUnknownFailure
	}
	return Verdict{Failure: err.Error()}
}
