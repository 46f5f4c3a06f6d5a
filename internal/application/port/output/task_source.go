package output

import (
	"context"
	"time"

	"fare-rules-worker/internal/domain/entity"
)

type FetchRequest struct {
	WorkerID             string
	MaxTasks             int
	AsyncResponseTimeout time.Duration
	Topics               []TopicSubscription
}

type TopicSubscription struct {
	TopicName    string
	LockDuration time.Duration
	// Variables limits the fetched variables. Nil fetches all of them.
	Variables []string
}

type TaskFailure struct {
	WorkerID     string
	ErrorMessage string
	ErrorDetails string
	Retries      int
	RetryTimeout time.Duration
}

// TaskSourcePort is the engine side of the external task protocol.
type TaskSourcePort interface {
	FetchAndLock(ctx context.Context, req FetchRequest) ([]entity.ExternalTask, error)
	Complete(ctx context.Context, taskID, workerID string, variables entity.Variables) error
	HandleFailure(ctx context.Context, taskID string, failure TaskFailure) error
}
