package event_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/event"
)

func TestNew(t *testing.T) {
	t.Parallel()

	type moved struct {
		From string `json:"from"`
		To   string `json:"to"`
	}

	e, err := event.New("stock.moved", "stock_item", moved{From: "A1", To: "B2"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, "stock.moved", e.Type)
	assert.Equal(t, "stock_item", e.AggregateType)
	assert.False(t, e.OccurredAt.IsZero())
	assert.JSONEq(t, `{"from":"A1","to":"B2"}`, string(e.Payload))

	var got moved
	require.NoError(t, e.Unmarshal(&got))
	assert.Equal(t, "B2", got.To)

	_, err = event.New("", "stock_item", nil)
	assert.ErrorIs(t, err, event.ErrInvalidEvent)

	_, err = event.New("x", "y", make(chan int))
	assert.ErrorIs(t, err, event.ErrInvalidEvent)
}

func TestEvent_Metadata(t *testing.T) {
	t.Parallel()

	e, err := event.New("stock.moved", "stock_item", nil)
	require.NoError(t, err)

	tagged := e.WithCorrelationID("req-1")
	assert.Equal(t, "req-1", tagged.CorrelationID())
	assert.Empty(t, e.CorrelationID(), "original is not modified")

	again := tagged.WithMetadata(event.MetaCausationID, "cmd-9")
	assert.Equal(t, "req-1", again.CorrelationID())
	assert.Equal(t, "cmd-9", again.Metadata[event.MetaCausationID])
	assert.NotContains(t, tagged.Metadata, event.MetaCausationID)
}

func TestEvent_Validate(t *testing.T) {
	t.Parallel()

	e, err := event.New("stock.moved", "stock_item", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, e.Validate(), event.ErrInvalidEvent, "aggregate id is required")

	e.AggregateID = "item-1"
	assert.NoError(t, e.Validate())

	e.ID = uuid.Nil
	assert.ErrorIs(t, e.Validate(), event.ErrInvalidEvent)
}
