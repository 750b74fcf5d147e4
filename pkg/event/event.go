package event

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Metadata keys set by this module.
const (
	MetaCorrelationID = "correlation_id"
	MetaCausationID   = "causation_id"
)

// Event is a fact recorded by an aggregate.
type Event struct {
	ID            uuid.UUID         `json:"id"`
	Type          string            `json:"type"`
	AggregateID   string            `json:"aggregate_id"`
	AggregateType string            `json:"aggregate_type"`
	TenantID      string            `json:"tenant_id"`
	OccurredAt    time.Time         `json:"occurred_at"`
	Payload       json.RawMessage   `json:"payload,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// New creates an event with a fresh id and payload marshaled as JSON.
// Aggregate id and tenant may be left empty and filled in when the event is recorded.
func New(eventType, aggregateType string, payload any) (Event, error) {
	if eventType == "" {
		return Event{}, errors.Join(ErrInvalidEvent, errors.New("empty event type"))
	}
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return Event{}, errors.Join(ErrInvalidEvent, err)
		}
		raw = b
	}
	return Event{
		ID:            uuid.New(),
		Type:          eventType,
		AggregateType: aggregateType,
		OccurredAt:    time.Now().UTC(),
		Payload:       raw,
	}, nil
}

// WithCorrelationID returns a copy of e tagged with the correlation id.
func (e Event) WithCorrelationID(id string) Event {
	return e.WithMetadata(MetaCorrelationID, id)
}

// WithMetadata returns a copy of e with key set. The original map is not modified.
func (e Event) WithMetadata(key, value string) Event {
	md := make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		md[k] = v
	}
	md[key] = value
	e.Metadata = md
	return e
}

// CorrelationID returns the correlation id, if any.
func (e Event) CorrelationID() string {
	return e.Metadata[MetaCorrelationID]
}

// Validate reports whether e can be published.
func (e Event) Validate() error {
	switch {
	case e.Type == "":
		return errors.Join(ErrInvalidEvent, errors.New("empty event type"))
	case e.AggregateID == "":
		return errors.Join(ErrInvalidEvent, errors.New("empty aggregate id"))
	case e.ID == uuid.Nil:
		return errors.Join(ErrInvalidEvent, errors.New("empty event id"))
	}
	return nil
}

// Unmarshal decodes the payload into v.
func (e Event) Unmarshal(v any) error {
	return json.Unmarshal(e.Payload, v)
}
