package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	kafkax "github.com/ariefcatur/go-food-orders/internal/kafka"
	"github.com/ariefcatur/go-food-orders/internal/logger"
	"github.com/ariefcatur/go-food-orders/internal/orders"
	"github.com/ariefcatur/go-food-orders/internal/redisx"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDedup struct {
	seen    map[string]bool
	forgot  []string
	failGet bool
}

func (f *fakeDedup) FirstSeen(_ context.Context, id string) (bool, error) {
	if f.failGet {
		return false, errors.New("redis down")
	}
	if f.seen[id] {
		return false, nil
	}
	f.seen[id] = true
	return true, nil
}

func (f *fakeDedup) Forget(_ context.Context, id string) error {
	delete(f.seen, id)
	f.forgot = append(f.forgot, id)
	return nil
}

type fakeCache struct{ entries map[string]redisx.StatusEntry }

func (f *fakeCache) Set(_ context.Context, orderID string, e redisx.StatusEntry) error {
	f.entries[orderID] = e
	return nil
}

type fakeNotifier struct {
	sent [][]byte
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, _ string, body []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, body)
	return nil
}

func newTestService() (*Service, *fakeDedup, *fakeCache, *fakeNotifier) {
	d := &fakeDedup{seen: map[string]bool{}}
	c := &fakeCache{entries: map[string]redisx.StatusEntry{}}
	n := &fakeNotifier{}
	return &Service{Dedup: d, Cache: c, Notifier: n, Log: logger.NewWithWriter("tracker", io.Discard)}, d, c, n
}

func message(t *testing.T, eventType string, payload any) kafkago.Message {
	t.Helper()
	env, err := orders.NewEnvelope(eventType, "order-api", "trace-1", "o-1", payload)
	require.NoError(t, err)
	b, err := json.Marshal(env)
	require.NoError(t, err)
	return kafkago.Message{Key: []byte("o-1"), Value: b}
}

func TestHandleEvent_StatusChanged(t *testing.T) {
	s, _, cache, notifier := newTestService()
	changed := time.Date(2026, 10, 18, 13, 0, 0, 0, time.UTC)
	m := message(t, orders.EventOrderStatusChanged, orders.OrderStatusChangedPayload{
		OrderID: "o-1", CustomerID: "c-1", RestaurantID: "r-1",
		From: orders.StatusAccepted, To: orders.StatusPreparing, ChangedAt: changed,
	})

	require.NoError(t, s.HandleEvent(context.Background(), m))
	assert.Equal(t, redisx.StatusEntry{Status: "preparing", CustomerID: "c-1", RestaurantID: "r-1", UpdatedAt: changed}, cache.entries["o-1"])
	require.Len(t, notifier.sent, 1)

	var n Notification
	require.NoError(t, json.Unmarshal(notifier.sent[0], &n))
	assert.Equal(t, AudienceCustomer, n.Audience)
	assert.Equal(t, "Your food is being prepared", n.Message)

	// redelivery di-dedup
	require.NoError(t, s.HandleEvent(context.Background(), m))
	assert.Len(t, notifier.sent, 1)
}

func TestHandleEvent_OrderPlaced(t *testing.T) {
	s, _, cache, notifier := newTestService()
	m := message(t, orders.EventOrderPlaced, orders.OrderPlacedPayload{
		OrderID: "o-1", CustomerID: "c-1", RestaurantID: "r-1", Total: "302.00",
		Items: []orders.Item{{FoodItemName: "Dosa", Quantity: 2}, {FoodItemName: "Coffee", Quantity: 1}},
	})

	require.NoError(t, s.HandleEvent(context.Background(), m))
	assert.Equal(t, "pending", cache.entries["o-1"].Status)

	var n Notification
	require.NoError(t, json.Unmarshal(notifier.sent[0], &n))
	assert.Equal(t, AudienceRestaurant, n.Audience)
	assert.Equal(t, "New order with 3 item(s), total 302.00", n.Message)
}

func TestHandleEvent_OrderPlacedStampedWithPlacedAt(t *testing.T) {
	s, _, cache, notifier := newTestService()
	placed := time.Date(2026, 10, 18, 12, 30, 0, 0, time.UTC)
	m := message(t, orders.EventOrderPlaced, orders.OrderPlacedPayload{
		OrderID: "o-1", CustomerID: "c-1", RestaurantID: "r-1", Total: "100.00", PlacedAt: placed,
	})

	require.NoError(t, s.HandleEvent(context.Background(), m))
	// cache pakai jam database, bukan jam producer
	assert.True(t, placed.Equal(cache.entries["o-1"].UpdatedAt))

	var n Notification
	require.NoError(t, json.Unmarshal(notifier.sent[0], &n))
	assert.True(t, placed.Equal(n.At))
}

func TestHandleEvent_NotifyFailureAllowsRetry(t *testing.T) {
	s, dedup, _, notifier := newTestService()
	notifier.err = errors.New("broker unavailable")
	m := message(t, orders.EventOrderStatusChanged, orders.OrderStatusChangedPayload{OrderID: "o-1", To: orders.StatusDelivered})

	assert.Error(t, s.HandleEvent(context.Background(), m))
	assert.Len(t, dedup.forgot, 1)

	notifier.err = nil
	require.NoError(t, s.HandleEvent(context.Background(), m))
	assert.Len(t, notifier.sent, 1)
}

func TestHandleEvent_IgnoresJunk(t *testing.T) {
	s, _, cache, notifier := newTestService()

	assert.NoError(t, s.HandleEvent(context.Background(), kafkago.Message{Value: []byte("{not json")}))
	assert.NoError(t, s.HandleEvent(context.Background(), message(t, "SomethingElse", map[string]string{})))
	assert.Empty(t, cache.entries)
	assert.Empty(t, notifier.sent)
}

func TestHandleEvent_DedupErrorIsRetried(t *testing.T) {
	s, dedup, _, _ := newTestService()
	dedup.failGet = true
	m := message(t, orders.EventOrderStatusChanged, orders.OrderStatusChangedPayload{OrderID: "o-1", To: orders.StatusAccepted})
	assert.Error(t, s.HandleEvent(context.Background(), m))
}

func TestHandleEvent_SkipsUntrackedTypeByHeader(t *testing.T) {
	s, dedup, cache, _ := newTestService()
	m := message(t, orders.EventOrderStatusChanged, orders.OrderStatusChangedPayload{OrderID: "o-1", To: orders.StatusAccepted})
	m.Headers = kafkax.EventHeaders("PaymentCaptured", 1)

	require.NoError(t, s.HandleEvent(context.Background(), m))
	assert.Empty(t, dedup.seen)
	assert.Empty(t, cache.entries)
}
