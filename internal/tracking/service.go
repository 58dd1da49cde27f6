package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	kafkax "github.com/ariefcatur/go-food-orders/internal/kafka"
	"github.com/ariefcatur/go-food-orders/internal/logger"
	"github.com/ariefcatur/go-food-orders/internal/orders"
	"github.com/ariefcatur/go-food-orders/internal/redisx"
	kafkago "github.com/segmentio/kafka-go"
	"log/slog"
	"time"
)

type Deduper interface {
	FirstSeen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type StatusCache interface {
	Set(ctx context.Context, orderID string, e redisx.StatusEntry) error
}

type Notifier interface {
	Notify(ctx context.Context, messageID string, body []byte) error
}

type Audience string

const (
	AudienceRestaurant Audience = "restaurant"
	AudienceCustomer   Audience = "customer"
)

type Notification struct {
	EventID      string        `json:"event_id"`
	Audience     Audience      `json:"audience"`
	OrderID      string        `json:"order_id"`
	CustomerID   string        `json:"customer_id"`
	RestaurantID string        `json:"restaurant_id"`
	Status       orders.Status `json:"status"`
	Message      string        `json:"message"`
	At           time.Time     `json:"at"`
}

var statusMessages = map[orders.Status]string{
	orders.StatusAccepted:       "Your order has been accepted by the restaurant",
	orders.StatusPreparing:      "Your food is being prepared",
	orders.StatusOutForDelivery: "Your order is out for delivery",
	orders.StatusDelivered:      "Your order has been delivered. Enjoy your meal!",
	orders.StatusCancelled:      "Your order was cancelled",
}

type Service struct {
	Dedup    Deduper
	Cache    StatusCache
	Notifier Notifier
	Log      *logger.Logger
}

// HandleEvent dipasang sebagai handler consumer untuk order.placed dan
// order.status.changed.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	switch t := kafkax.Header(m, "x-event-type"); t {
	case "", orders.EventOrderPlaced, orders.EventOrderStatusChanged:
	default:
		s.Log.Debug("tracking_skip", string(m.Key), "event type not tracked", slog.String("event_type", t))
		return nil
	}

	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// pesan rusak tidak akan pernah sukses, commit saja
		s.Log.Error("tracking_decode_failed", string(m.Key), "dropping undecodable event", err)
		return nil
	}

	n, entry, ok, err := s.translate(env)
	if err != nil || !ok {
		if err != nil {
			s.Log.Error("tracking_decode_failed", env.TraceID, "dropping event with bad payload", err,
				slog.String("event_id", env.EventID))
		}
		return nil
	}

	first, err := s.Dedup.FirstSeen(ctx, env.EventID)
	if err != nil {
		return err
	}
	if !first {
		return nil
	}

	if err := s.Cache.Set(ctx, n.OrderID, entry); err != nil {
		_ = s.Dedup.Forget(ctx, env.EventID)
		return fmt.Errorf("cache status: %w", err)
	}
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	if err := s.Notifier.Notify(ctx, env.EventID, body); err != nil {
		_ = s.Dedup.Forget(ctx, env.EventID)
		return fmt.Errorf("notify: %w", err)
	}

	s.Log.Info("order_tracked", env.TraceID, "status recorded",
		slog.String("order_id", n.OrderID), slog.String("status", string(n.Status)))
	return nil
}

func (s *Service) translate(env orders.Envelope) (Notification, redisx.StatusEntry, bool, error) {
	switch env.EventType {
	case orders.EventOrderPlaced:
		p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
		if err != nil {
			return Notification{}, redisx.StatusEntry{}, false, err
		}
		placedAt := p.PlacedAt
		if placedAt.IsZero() {
			placedAt = env.OccurredAt
		}
		n := Notification{
			EventID:      env.EventID,
			Audience:     AudienceRestaurant,
			OrderID:      p.OrderID,
			CustomerID:   p.CustomerID,
			RestaurantID: p.RestaurantID,
			Status:       orders.StatusPending,
			Message:      fmt.Sprintf("New order with %d item(s), total %s", countItems(p.Items), p.Total),
			At:           placedAt,
		}
		return n, redisx.StatusEntry{Status: string(orders.StatusPending), CustomerID: p.CustomerID,
			RestaurantID: p.RestaurantID, UpdatedAt: placedAt}, true, nil

	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return Notification{}, redisx.StatusEntry{}, false, err
		}
		n := Notification{
			EventID:      env.EventID,
			Audience:     AudienceCustomer,
			OrderID:      p.OrderID,
			CustomerID:   p.CustomerID,
			RestaurantID: p.RestaurantID,
			Status:       p.To,
			Message:      statusMessages[p.To],
			At:           p.ChangedAt,
		}
		return n, redisx.StatusEntry{Status: string(p.To), CustomerID: p.CustomerID,
			RestaurantID: p.RestaurantID, UpdatedAt: p.ChangedAt}, true, nil
	}
	return Notification{}, redisx.StatusEntry{}, false, nil
}

func countItems(items []orders.Item) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
