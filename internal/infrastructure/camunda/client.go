package camunda

import (
	"context"
	"fmt"
	"time"

	"fare-rules-worker/internal/application/port/output"
	"fare-rules-worker/internal/domain/entity"

	"github.com/go-resty/resty/v2"
)

var _ output.TaskSourcePort = (*Client)(nil)

const DefaultBaseURL = "http://localhost:8080/engine-rest"

type Config struct {
	BaseURL string
	// Timeout bounds one HTTP exchange. It has to outlast the long poll
	// window of fetchAndLock.
	Timeout time.Duration
	Logger  output.LoggerPort
}

// Client speaks the external task REST API of the engine.
type Client struct {
	http   *resty.Client
	logger output.LoggerPort
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:   client,
		logger: cfg.Logger,
	}
}

func (c *Client) FetchAndLock(ctx context.Context, req output.FetchRequest) ([]entity.ExternalTask, error) {
	body := fetchAndLockRequest{
		WorkerID:             req.WorkerID,
		MaxTasks:             req.MaxTasks,
		UsePriority:          true,
		AsyncResponseTimeout: req.AsyncResponseTimeout.Milliseconds(),
		Topics:               make([]topicRequest, 0, len(req.Topics)),
	}
	for _, topic := range req.Topics {
		body.Topics = append(body.Topics, topicRequest{
			TopicName:    topic.TopicName,
			LockDuration: topic.LockDuration.Milliseconds(),
			Variables:    topic.Variables,
		})
	}

	var locked []lockedTask
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&locked).
		SetError(&Error{}).
		Post("/external-task/fetchAndLock")
	if err != nil {
		return nil, fmt.Errorf("fetch and lock: %w", err)
	}
	if err := asError(resp); err != nil {
		return nil, fmt.Errorf("fetch and lock: %w", err)
	}

	tasks := make([]entity.ExternalTask, 0, len(locked))
	for _, t := range locked {
		task, err := t.toEntity()
		if err != nil {
			return nil, fmt.Errorf("decode task %s: %w", t.ID, err)
		}
		tasks = append(tasks, task)
	}

	if c.logger != nil && len(tasks) > 0 {
		c.logger.Debug("Locked external tasks", "count", len(tasks), "workerId", req.WorkerID)
	}
	return tasks, nil
}

func (c *Client) Complete(ctx context.Context, taskID, workerID string, variables entity.Variables) error {
	vars, err := encodeVariables(variables)
	if err != nil {
		return fmt.Errorf("complete task %s: %w", taskID, err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", taskID).
		SetBody(completeRequest{WorkerID: workerID, Variables: vars}).
		SetError(&Error{}).
		Post("/external-task/{id}/complete")
	if err != nil {
		return fmt.Errorf("complete task %s: %w", taskID, err)
	}
	if err := asError(resp); err != nil {
		return fmt.Errorf("complete task %s: %w", taskID, err)
	}
	return nil
}

func (c *Client) HandleFailure(ctx context.Context, taskID string, failure output.TaskFailure) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", taskID).
		SetBody(failureRequest{
			WorkerID:     failure.WorkerID,
			ErrorMessage: failure.ErrorMessage,
			ErrorDetails: failure.ErrorDetails,
			Retries:      failure.Retries,
			RetryTimeout: failure.RetryTimeout.Milliseconds(),
		}).
		SetError(&Error{}).
		Post("/external-task/{id}/failure")
	if err != nil {
		return fmt.Errorf("report failure for task %s: %w", taskID, err)
	}
	if err := asError(resp); err != nil {
		return fmt.Errorf("report failure for task %s: %w", taskID, err)
	}
	return nil
}

func asError(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}
	apiErr, ok := resp.Error().(*Error)
	if !ok || apiErr == nil {
		apiErr = &Error{}
	}
	apiErr.StatusCode = resp.StatusCode()
	if apiErr.Message == "" {
		apiErr.Message = resp.Status()
	}
	return apiErr
}
