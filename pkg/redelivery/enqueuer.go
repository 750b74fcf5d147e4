package redelivery

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/dmitrymomot/tenantkit/pkg/event"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
)

// Client is the part of *asynq.Client the enqueuer needs.
type Client interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Payload is the JSON body of a redelivery task.
type Payload struct {
	Events []event.Event `json:"events"`
	Cause  string        `json:"cause,omitempty"`
}

// Option configures an Enqueuer.
type Option func(*Enqueuer)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Enqueuer) {
		if l != nil {
			e.logger = l
		}
	}
}

// Enqueuer implements event.FailureHandler.
type Enqueuer struct {
	client Client
	cfg    Config
	logger *slog.Logger
}

var _ event.FailureHandler = (*Enqueuer)(nil)

// NewEnqueuer creates an Enqueuer.
func NewEnqueuer(client Client, cfg Config, opts ...Option) *Enqueuer {
	e := &Enqueuer{client: client, cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleFailure enqueues the whole batch as one task so it is redelivered in order.
func (e *Enqueuer) HandleFailure(ctx context.Context, events []event.Event, cause error) error {
	if len(events) == 0 {
		return nil
	}

	p := Payload{Events: events}
	if cause != nil {
		p.Cause = cause.Error()
	}
	body, err := json.Marshal(p)
	if err != nil {
		return errors.Join(ErrEnqueueFailed, err)
	}

	opts := []asynq.Option{asynq.MaxRetry(e.cfg.MaxRetry)}
	if e.cfg.Queue != "" {
		opts = append(opts, asynq.Queue(e.cfg.Queue))
	}
	if e.cfg.Retention > 0 {
		opts = append(opts, asynq.Retention(e.cfg.Retention))
	}

	info, err := e.client.EnqueueContext(ctx, asynq.NewTask(TaskType, body), opts...)
	if err != nil {
		return errors.Join(ErrEnqueueFailed, err)
	}

	e.logger.InfoContext(ctx, "events handed off for redelivery",
		logger.Component("redelivery"),
		slog.String("task_id", info.ID),
		slog.String("queue", info.Queue),
		logger.EventCount(len(events)),
	)
	return nil
}
