package kafka

import (
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrapPayload(t *testing.T) {
	type payload struct {
		OrderID string `json:"order_id"`
	}
	got, err := UnwrapPayload[payload](json.RawMessage(`{"order_id":"o-1"}`))
	require.NoError(t, err)
	assert.Equal(t, "o-1", got.OrderID)

	_, err = UnwrapPayload[payload](json.RawMessage(`{`))
	assert.Error(t, err)
}

func TestEventHeaders(t *testing.T) {
	m := kafka.Message{Headers: EventHeaders("OrderPlaced", 1)}
	assert.Equal(t, "OrderPlaced", Header(m, "x-event-type"))
	assert.Equal(t, "1", Header(m, "x-event-version"))
	assert.Equal(t, "", Header(m, "missing"))
}
