package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/tenantkit/pkg/event"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
)

const tracerName = "github.com/dmitrymomot/tenantkit/pkg/kafka"

// Message headers.
const (
	HeaderEventID       = "event_id"
	HeaderEventType     = "event_type"
	HeaderAggregateType = "aggregate_type"
	HeaderTenantID      = "tenant_id"
	HeaderCorrelationID = "correlation_id"
)

// Writer is the part of *kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
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

// WithTracerProvider sets the provider spans are created from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Publisher) {
		if tp != nil {
			p.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithWriter replaces the kafka-go writer, e.g. in tests.
func WithWriter(w Writer) Option {
	return func(p *Publisher) {
		if w != nil {
			p.writer = w
		}
	}
}

// Publisher writes events to a single topic.
type Publisher struct {
	writer Writer
	topic  string
	logger *slog.Logger
	tracer trace.Tracer
}

var _ event.Publisher = (*Publisher)(nil)

// NewPublisher builds a synchronous producer from cfg.
func NewPublisher(cfg Config, opts ...Option) (*Publisher, error) {
	p := &Publisher{
		topic:  cfg.Topic,
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.topic == "" {
		return nil, ErrNoTopic
	}
	if p.writer == nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		p.writer = &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  max(cfg.MaxAttempts, 1),
			BatchTimeout: cfg.BatchTimeout,
			WriteTimeout: cfg.WriteTimeout,
			Transport:    &kafka.Transport{ClientID: cfg.ClientID},
		}
	}
	return p, nil
}

// Publish writes all events in one call. Events are encoded up front, so an
// encoding error sends nothing.
func (p *Publisher) Publish(ctx context.Context, events ...event.Event) error {
	if len(events) == 0 {
		return nil
	}

	ctx, span := p.tracer.Start(ctx, "kafka.publish", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()
	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination.name", p.topic),
		attribute.Int("messaging.batch.message_count", len(events)),
	)

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msg, err := Encode(e)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "encode")
			return err
		}
		msgs = append(msgs, msg)
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write")
		p.logger.ErrorContext(ctx, "failed to write events to kafka",
			logger.Component("kafka"),
			slog.String("topic", p.topic),
			logger.EventCount(len(events)),
			logger.Error(err),
		)
		return errors.Join(ErrWriteFailed, event.ErrPublishFailed, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Encode turns an event into a message.
func Encode(e event.Event) (kafka.Message, error) {
	if err := e.Validate(); err != nil {
		return kafka.Message{}, errors.Join(ErrEncode, err)
	}
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, errors.Join(ErrEncode, err)
	}

	headers := []kafka.Header{
		{Key: HeaderEventID, Value: []byte(e.ID.String())},
		{Key: HeaderEventType, Value: []byte(e.Type)},
		{Key: HeaderAggregateType, Value: []byte(e.AggregateType)},
		{Key: HeaderTenantID, Value: []byte(e.TenantID)},
	}
	if id := e.CorrelationID(); id != "" {
		headers = append(headers, kafka.Header{Key: HeaderCorrelationID, Value: []byte(id)})
	}

	return kafka.Message{
		Key:     []byte(e.AggregateID),
		Value:   value,
		Headers: headers,
		Time:    e.OccurredAt,
	}, nil
}

// Decode reverses Encode.
func Decode(msg kafka.Message) (event.Event, error) {
	var e event.Event
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		return event.Event{}, errors.Join(ErrDecode, err)
	}
	return e, nil
}
