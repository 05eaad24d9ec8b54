package stage

import (
	"context"

	"newsreel/internal/queue"
)

// Handler is the contract every pipeline stage satisfies. Prepare runs
// before the item transitions to its processing status and may reject
// the item; Execute does the actual work and is supervised by the
// workflow manager (heartbeats, cancellation, retries); HealthCheck
// reports whether the stage could run right now.
type Handler interface {
	Prepare(context.Context, *queue.Item) error
	Execute(context.Context, *queue.Item) error
	HealthCheck(context.Context) Health
}
