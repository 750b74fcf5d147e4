package redelivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/dmitrymomot/tenantkit/pkg/event"
)

// NewHandler returns the worker for TaskType. A publish error makes asynq retry the task.
// A malformed payload is skipped.
func NewHandler(pub event.Publisher) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p Payload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("%w: %w", errors.Join(ErrInvalidTask, err), asynq.SkipRetry)
		}
		if len(p.Events) == 0 {
			return nil
		}
		for _, e := range p.Events {
			if err := e.Validate(); err != nil {
				return fmt.Errorf("%w: %w", errors.Join(ErrInvalidTask, err), asynq.SkipRetry)
			}
		}
		return pub.Publish(ctx, p.Events...)
	}
}

// NewMux returns a mux serving TaskType.
func NewMux(pub event.Publisher) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TaskType, NewHandler(pub))
	return mux
}
