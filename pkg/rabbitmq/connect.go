package rabbitmq

import (
	"context"
	"errors"
	"time"

	"github.com/streadway/amqp"
)

type dialFunc func(url string) (*amqp.Connection, error)

// Dial connects to the broker, retrying up to cfg.RetryAttempts times.
func Dial(ctx context.Context, cfg Config) (*amqp.Connection, error) {
	return dial(ctx, cfg, amqp.Dial)
}

func dial(ctx context.Context, cfg Config, fn dialFunc) (*amqp.Connection, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyURL
	}
	attempts := max(cfg.RetryAttempts, 1)

	var errs []error
	for i := range attempts {
		conn, err := fn(cfg.URL)
		if err == nil {
			return conn, nil
		}
		errs = append(errs, err)
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}
	return nil, errors.Join(ErrConnectionFailed, errors.Join(errs...))
}
