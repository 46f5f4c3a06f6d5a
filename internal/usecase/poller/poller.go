package poller

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"fare-rules-worker/internal/application/port/input"
	"fare-rules-worker/internal/application/port/output"
	"fare-rules-worker/internal/domain/entity"

	"github.com/sethvargo/go-retry"
)

type Config struct {
	WorkerID             string
	Topic                string
	MaxTasks             int
	LockDuration         time.Duration
	AsyncResponseTimeout time.Duration
	// Variables restricts the fetched variables; nil fetches all.
	Variables []string
	// PollInterval is the pause after a fetch that returned no tasks.
	PollInterval time.Duration
	BackoffBase  time.Duration
	BackoffMax   time.Duration
	// ReportTimeout bounds the completion and failure calls, which run
	// even while shutting down.
	ReportTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		WorkerID:             "llm-fare-analyzer-1",
		Topic:                "analyze-fare-rules",
		MaxTasks:             1,
		LockDuration:         30 * time.Second,
		AsyncResponseTimeout: 10 * time.Second,
		PollInterval:         time.Second,
		BackoffBase:          500 * time.Millisecond,
		BackoffMax:           30 * time.Second,
		ReportTimeout:        10 * time.Second,
	}
}

// Poller subscribes to one topic and feeds locked tasks to the handler one
// at a time.
type Poller struct {
	source  output.TaskSourcePort
	handler input.TaskHandler
	logger  output.LoggerPort
	metrics output.MetricsPort
	cfg     Config
}

func New(
	source output.TaskSourcePort,
	handler input.TaskHandler,
	logger output.LoggerPort,
	metrics output.MetricsPort,
	cfg Config,
) *Poller {
	if metrics == nil {
		metrics = output.NopMetrics{}
	}
	if cfg.MaxTasks <= 0 {
		cfg.MaxTasks = 1
	}
	return &Poller{
		source:  source,
		handler: handler,
		logger:  logger.WithFields(map[string]any{"workerId": cfg.WorkerID, "topic": cfg.Topic}),
		metrics: metrics,
		cfg:     cfg,
	}
}

// Run polls until ctx is cancelled. It returns nil on cancellation.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("Worker started, listening for tasks")

	for {
		tasks, err := p.fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("Worker stopped")
				return nil
			}
			return fmt.Errorf("fetch tasks: %w", err)
		}

		for _, task := range tasks {
			p.process(ctx, task)
		}

		if len(tasks) == 0 && p.cfg.PollInterval > 0 {
			select {
			case <-ctx.Done():
				p.logger.Info("Worker stopped")
				return nil
			case <-time.After(p.cfg.PollInterval):
			}
		}
	}
}

func (p *Poller) fetch(ctx context.Context) ([]entity.ExternalTask, error) {
	req := output.FetchRequest{
		WorkerID:             p.cfg.WorkerID,
		MaxTasks:             p.cfg.MaxTasks,
		AsyncResponseTimeout: p.cfg.AsyncResponseTimeout,
		Topics: []output.TopicSubscription{{
			TopicName:    p.cfg.Topic,
			LockDuration: p.cfg.LockDuration,
			Variables:    p.cfg.Variables,
		}},
	}

	var tasks []entity.ExternalTask
	err := retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		var fetchErr error
		tasks, fetchErr = p.source.FetchAndLock(ctx, req)
		if fetchErr != nil {
			if ctx.Err() != nil {
				return fetchErr
			}
			p.metrics.IncFetchError(p.cfg.Topic)
			p.logger.Warn("Fetch and lock failed, backing off", "error", fetchErr)
			return retry.RetryableError(fetchErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(tasks) > 0 {
		p.metrics.IncTasksFetched(p.cfg.Topic, len(tasks))
	}
	return tasks, nil
}

func (p *Poller) backoff() retry.Backoff {
	base := p.cfg.BackoffBase
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	b := retry.NewExponential(base)
	if p.cfg.BackoffMax > 0 {
		b = retry.WithCappedDuration(p.cfg.BackoffMax, b)
	}
	return b
}

func (p *Poller) process(ctx context.Context, task entity.ExternalTask) {
	log := p.logger.WithField("taskId", task.ID)
	start := time.Now()

	// A locked task is classified and reported even when shutdown has
	// begun. The handler bounds its own call with a timeout.
	report, err := p.invoke(context.WithoutCancel(ctx), task)

	reportCtx, cancel := p.reportContext(ctx)
	defer cancel()

	if err != nil {
		log.Error("Handler crashed, reporting failure", "error", err)
		var details string
		var pe *panicError
		if errors.As(err, &pe) {
			details = string(pe.stack)
		}
		failErr := p.source.HandleFailure(reportCtx, task.ID, output.TaskFailure{
			WorkerID:     p.cfg.WorkerID,
			ErrorMessage: err.Error(),
			ErrorDetails: details,
			Retries:      0,
		})
		if failErr != nil {
			p.metrics.IncCompletionError(p.cfg.Topic)
			log.Error("Could not report failure", "error", failErr)
		}
		return
	}

	if err := p.source.Complete(reportCtx, task.ID, p.cfg.WorkerID, report.Variables()); err != nil {
		p.metrics.IncCompletionError(p.cfg.Topic)
		log.Error("Could not complete task", "error", err)
		return
	}

	log.Info("Task completed",
		"category", report.Outcome.Category,
		"durationMs", time.Since(start).Milliseconds())
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("handler panic: %v", e.value)
}

func (p *Poller) invoke(ctx context.Context, task entity.ExternalTask) (report entity.TaskReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: debug.Stack()}
		}
	}()
	return p.handler.Handle(ctx, task), nil
}

func (p *Poller) reportContext(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if p.cfg.ReportTimeout <= 0 {
		return context.WithCancel(base)
	}
	return context.WithTimeout(base, p.cfg.ReportTimeout)
}
