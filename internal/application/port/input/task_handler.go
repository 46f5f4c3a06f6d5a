package input

import (
	"context"

	"fare-rules-worker/internal/domain/entity"
)

// TaskHandler turns one locked external task into the report that completes
// it. Implementations absorb their own failures into the report.
type TaskHandler interface {
	Handle(ctx context.Context, task entity.ExternalTask) entity.TaskReport
}
