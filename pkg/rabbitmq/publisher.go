package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/dmitrymomot/tenantkit/pkg/event"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
)

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// Publisher sends events to a durable topic exchange.
type Publisher struct {
	mu       sync.Mutex
	ch       Channel
	exchange string
	logger   *slog.Logger
}

var _ event.Publisher = (*Publisher)(nil)

// NewPublisher declares the exchange and returns a publisher bound to it.
func NewPublisher(ch Channel, cfg Config, opts ...Option) (*Publisher, error) {
	if cfg.Exchange == "" {
		return nil, errors.Join(ErrDeclareExchange, errors.New("empty exchange name"))
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, errors.Join(ErrDeclareExchange, err)
	}

	p := &Publisher{ch: ch, exchange: cfg.Exchange, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Publish sends events one by one and stops at the first failure.
func (p *Publisher) Publish(ctx context.Context, events ...event.Event) error {
	msgs := make([]amqp.Publishing, 0, len(events))
	for _, e := range events {
		msg, err := Encode(e)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for i, msg := range msgs {
		if err := ctx.Err(); err != nil {
			return errors.Join(ErrPublishFailed, event.ErrPublishFailed, err)
		}
		if err := p.ch.Publish(p.exchange, events[i].Type, false, false, msg); err != nil {
			p.logger.ErrorContext(ctx, "failed to publish event to rabbitmq",
				logger.Component("rabbitmq"),
				slog.String("exchange", p.exchange),
				logger.EventType(events[i].Type),
				logger.Error(err),
			)
			return errors.Join(ErrPublishFailed, event.ErrPublishFailed, err)
		}
	}
	return nil
}

// Close closes the channel.
func (p *Publisher) Close() error {
	return p.ch.Close()
}

// Encode turns an event into a persistent JSON message.
func Encode(e event.Event) (amqp.Publishing, error) {
	if err := e.Validate(); err != nil {
		return amqp.Publishing{}, errors.Join(ErrEncode, err)
	}
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, errors.Join(ErrEncode, err)
	}
	return amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     e.ID.String(),
		CorrelationId: e.CorrelationID(),
		Timestamp:     e.OccurredAt,
		Type:          e.Type,
		Headers: amqp.Table{
			"tenant_id":      e.TenantID,
			"aggregate_type": e.AggregateType,
			"aggregate_id":   e.AggregateID,
		},
		Body: body,
	}, nil
}
