package di

import (
	"context"
	"fmt"
	"time"

	"fare-rules-worker/internal/application/port/input"
	"fare-rules-worker/internal/application/port/output"
	"fare-rules-worker/internal/infrastructure/camunda"
	"fare-rules-worker/internal/infrastructure/httpserver"
	"fare-rules-worker/internal/infrastructure/llm/langchain"
	"fare-rules-worker/internal/infrastructure/llm/openai"
	"fare-rules-worker/internal/infrastructure/logger"
	"fare-rules-worker/internal/infrastructure/metrics"
	"fare-rules-worker/internal/infrastructure/prompts"
	"fare-rules-worker/internal/usecase/farerules"
	"fare-rules-worker/internal/usecase/poller"

	"github.com/prometheus/client_golang/prometheus"
)

const serviceName = "fare-rules-worker"

type Container struct {
	LLM         output.LLMPort
	TaskSource  output.TaskSourcePort
	Logger      output.LoggerPort
	Metrics     output.MetricsPort
	TaskHandler input.TaskHandler
	Poller      *poller.Poller
	OpsServer   *httpserver.Server
}

type Options struct {
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Logger     output.LoggerPort
}

func NewContainer(cfg Config, opts Options) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		l, err := logger.NewLoggerAdapter(logger.Config{
			Level:       cfg.LogLevel,
			Development: cfg.LogDevelopment,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		log = l
	}

	reg, gatherer := opts.Registerer, opts.Gatherer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	recorder := metrics.NewRecorder(reg)

	llm, err := newLLM(cfg, log)
	if err != nil {
		log.Close()
		return nil, err
	}

	gen, err := prompts.NewDefaultGenerator()
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}

	source := camunda.NewClient(camunda.Config{
		BaseURL: cfg.CamundaURL,
		Timeout: cfg.AsyncResponseTimeout + 10*time.Second,
		Logger:  log,
	})

	handler := farerules.New(llm, gen, log, recorder, cfg.classifierConfig())

	c := &Container{
		LLM:         llm,
		TaskSource:  source,
		Logger:      log,
		Metrics:     recorder,
		TaskHandler: handler,
		Poller:      poller.New(source, handler, log, recorder, cfg.pollerConfig()),
	}

	if cfg.HTTPAddr != "" {
		c.OpsServer = httpserver.New(httpserver.Config{
			Addr:        cfg.HTTPAddr,
			ServiceName: serviceName,
			Gatherer:    gatherer,
		}, log)
	}

	return c, nil
}

func newLLM(cfg Config, log output.LoggerPort) (output.LLMPort, error) {
	switch cfg.LLMBackend {
	case BackendLangChain:
		llm, err := langchain.NewAdapter(langchain.Config{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.LLMTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create llm: %w", err)
		}
		return llm, nil
	default:
		llmCfg := openai.DefaultConfig(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		llmCfg.BaseURL = cfg.OpenAIBaseURL
		llmCfg.Timeout = cfg.LLMTimeout
		llmCfg.Logger = log
		return openai.NewAdapter(llmCfg), nil
	}
}

// Run starts the polling loop and, when configured, the ops server. It
// returns once ctx is cancelled or the loop fails.
func (c *Container) Run(ctx context.Context) error {
	if c.OpsServer == nil {
		return c.Poller.Run(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opsErr := make(chan error, 1)
	go func() {
		err := c.OpsServer.Run(ctx)
		if err != nil {
			c.Logger.Error("Ops server stopped", "error", err)
		}
		opsErr <- err
	}()

	err := c.Poller.Run(ctx)
	cancel()
	if serr := <-opsErr; serr != nil && err == nil {
		err = serr
	}
	return err
}

func (c *Container) Close() {
	if c.Logger != nil {
		c.Logger.Close()
	}
}
