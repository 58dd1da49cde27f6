package orders

import (
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"time"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "order-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type OrderPlacedPayload struct {
	OrderID      string    `json:"order_id"`
	ExternalID   string    `json:"external_id"`
	CustomerID   string    `json:"customer_id"`
	RestaurantID string    `json:"restaurant_id"`
	Items        []Item    `json:"items"`
	Total        string    `json:"total"`     // 2 desimal
	PlacedAt     time.Time `json:"placed_at"` // updated_at dari DB, jam yang sama dengan status change
}

type OrderStatusChangedPayload struct {
	OrderID      string    `json:"order_id"`
	CustomerID   string    `json:"customer_id"`
	RestaurantID string    `json:"restaurant_id"`
	From         Status    `json:"from"`
	To           Status    `json:"to"`
	ChangedAt    time.Time `json:"changed_at"`
}

// NewEnvelope wraps payload in a v1 envelope keyed by orderID.
func NewEnvelope(eventType, producer, traceID, orderID string, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       traceID,
		CorrelationID: orderID,
		Payload:       b,
	}, nil
}

func PlacedPayload(o Order) OrderPlacedPayload {
	return OrderPlacedPayload{
		OrderID:      o.ID,
		ExternalID:   o.ExternalID,
		CustomerID:   o.CustomerID,
		RestaurantID: o.RestaurantID,
		Items:        o.Items,
		Total:        o.ChargedAmount().StringFixed(2),
		PlacedAt:     o.UpdatedAt,
	}
}
