package httpx

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-food-orders/internal/billing"
	"github.com/ariefcatur/go-food-orders/internal/cart"
	kafkax "github.com/ariefcatur/go-food-orders/internal/kafka"
	"github.com/ariefcatur/go-food-orders/internal/logger"
	"github.com/ariefcatur/go-food-orders/internal/orders"
	"github.com/ariefcatur/go-food-orders/internal/redisx"
	"github.com/ariefcatur/go-food-orders/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

type OrderStore interface {
	CreateOrderTx(ctx context.Context, in orders.NewOrder) (orders.Order, bool, error)
	Get(ctx context.Context, orderID string) (orders.Order, error)
	GetByExternalID(ctx context.Context, externalID string) (orders.Order, error)
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]orders.Order, error)
	ListByRestaurant(ctx context.Context, restaurantID string, since time.Time) ([]orders.Order, error)
	UpdateStatus(ctx context.Context, orderID, restaurantID string, to orders.Status) (orders.Order, orders.Status, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, key, value []byte, headers ...kafkago.Header) error
}

type StatusCache interface {
	Get(ctx context.Context, orderID string) (redisx.StatusEntry, bool, error)
	Set(ctx context.Context, orderID string, e redisx.StatusEntry) error
}

type OrdersHandler struct {
	Orders        OrderStore
	Cart          CartService
	Cache         StatusCache
	Placed        EventPublisher // order.placed
	StatusChanged EventPublisher // order.status.changed
	Service       string
	WindowDays    int
	Now           func() time.Time
	Log           *logger.Logger
}

type CheckoutReq struct {
	PromoCode string `json:"promo_code"`
}

type CheckoutResp struct {
	Order      orders.Order  `json:"order"`
	Bill       *billing.View `json:"bill,omitempty"`
	Idempotent bool          `json:"idempotent"`
}

type updateStatusReq struct {
	Status string `json:"status"`
}

type StatusResp struct {
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.With(RequireRole(session.RoleCustomer)).Post("/orders", h.checkout)
	r.Get("/orders", h.list)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/status", h.getStatus)
	r.With(RequireRole(session.RoleRestaurant)).Patch("/orders/{id}/status", h.updateStatus)
}

func (h *OrdersHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// checkout: cart -> bill -> order (idempotent) -> status cache -> OrderPlaced -> kosongkan cart
func (h *OrdersHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutReq
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	sess := currentSession(r)
	reqID := middleware.GetReqID(r.Context())

	key := r.Header.Get("X-Idempotency-Key")
	clientKey := key != ""
	if !clientKey {
		key = uuid.NewString()
	}
	externalID := sess.UserID + ":" + key

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q, err := h.Cart.Quote(ctx, sess.UserID, req.PromoCode)
	if err != nil {
		// cart sudah dikosongkan oleh checkout pertama; kembalikan order lama
		if clientKey {
			if existing, gerr := h.Orders.GetByExternalID(ctx, externalID); gerr == nil {
				writeJSON(w, http.StatusOK, CheckoutResp{Order: existing, Idempotent: true})
				return
			}
		}
		writeError(w, r, h.Log, "checkout_quote", err)
		return
	}

	o, existed, err := h.Orders.CreateOrderTx(ctx, orders.NewOrder{
		ExternalID:   externalID,
		CustomerID:   sess.UserID,
		RestaurantID: q.RestaurantID,
		Items:        orderItems(q.Lines),
		Bill:         q.Bill,
	})
	if err != nil {
		writeError(w, r, h.Log, "checkout_create", err)
		return
	}
	if existed {
		writeJSON(w, http.StatusOK, CheckoutResp{Order: o, Idempotent: true})
		return
	}

	_ = h.Cache.Set(ctx, o.ID, redisx.StatusEntry{
		Status: string(o.Status), CustomerID: o.CustomerID, RestaurantID: o.RestaurantID, UpdatedAt: o.UpdatedAt,
	})

	env, err := orders.NewEnvelope(orders.EventOrderPlaced, h.Service, reqID, o.ID, orders.PlacedPayload(o))
	if err != nil {
		writeError(w, r, h.Log, "checkout_event", err)
		return
	}
	// order sudah tersimpan; event yang gagal antre hanya di-log
	if err := h.Placed.Publish(ctx, orders.PartitionKey(o.ID), kafkax.MustMarshal(env),
		kafkax.EventHeaders(orders.EventOrderPlaced, 1)...); err != nil {
		h.Log.Error("checkout_publish", reqID, "order placed but event not queued", err, slog.String("order_id", o.ID))
	}

	if err := h.Cart.Clear(ctx, sess.UserID); err != nil {
		h.Log.Error("checkout_clear_cart", reqID, "order placed but cart not cleared", err, slog.String("order_id", o.ID))
	}
	h.Log.Info("order_placed", reqID, "order placed",
		slog.String("order_id", o.ID), slog.String("total", q.Bill.Total.StringFixed(2)))

	v := q.Bill.View()
	writeJSON(w, http.StatusAccepted, CheckoutResp{Order: o, Bill: &v})
}

func orderItems(lines []cart.Line) []orders.Item {
	out := make([]orders.Item, 0, len(lines))
	for _, l := range lines {
		out = append(out, orders.Item{
			FoodItemID:   l.FoodItem.ID,
			FoodItemName: l.FoodItem.Name,
			Quantity:     l.Quantity,
			UnitPrice:    l.FoodItem.BillingItem().EffectiveUnitPrice(),
		})
	}
	return out
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	sess := currentSession(r)

	var (
		list []orders.Order
		err  error
	)
	switch sess.Role {
	case session.RoleRestaurant:
		since := h.now().AddDate(0, 0, -h.WindowDays)
		if s := r.URL.Query().Get("since"); s != "" {
			if since, err = time.Parse(time.RFC3339, s); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "since must be RFC3339"})
				return
			}
		}
		list, err = h.Orders.ListByRestaurant(ctx, sess.UserID, since)
	default:
		limit := 50
		if s := r.URL.Query().Get("limit"); s != "" {
			if limit, err = strconv.Atoi(s); err != nil || limit < 1 || limit > 200 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be 1..200"})
				return
			}
		}
		list, err = h.Orders.ListByCustomer(ctx, sess.UserID, limit)
	}
	if err != nil {
		writeError(w, r, h.Log, "orders_list", err)
		return
	}
	if list == nil {
		list = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Orders.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.Log, "orders_get", err)
		return
	}
	if !canSee(currentSession(r), o.CustomerID, o.RestaurantID) {
		writeError(w, r, h.Log, "orders_get", orders.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// getStatus: 1) coba cache 2) fallback DB lalu isi cache
func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	sess := currentSession(r)

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if e, ok, err := h.Cache.Get(ctx, orderID); err == nil && ok && e.CustomerID != "" {
		if !canSee(sess, e.CustomerID, e.RestaurantID) {
			writeError(w, r, h.Log, "orders_status", orders.ErrNotFound)
			return
		}
		writeJSON(w, http.StatusOK, StatusResp{OrderID: orderID, Status: e.Status, UpdatedAt: e.UpdatedAt})
		return
	}

	o, err := h.Orders.Get(ctx, orderID)
	if err != nil {
		writeError(w, r, h.Log, "orders_status", err)
		return
	}
	if !canSee(sess, o.CustomerID, o.RestaurantID) {
		writeError(w, r, h.Log, "orders_status", orders.ErrNotFound)
		return
	}
	_ = h.Cache.Set(ctx, o.ID, redisx.StatusEntry{
		Status: string(o.Status), CustomerID: o.CustomerID, RestaurantID: o.RestaurantID, UpdatedAt: o.UpdatedAt,
	})
	writeJSON(w, http.StatusOK, StatusResp{OrderID: o.ID, Status: string(o.Status), UpdatedAt: o.UpdatedAt})
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusReq
	if !decodeJSON(w, r, &req) {
		return
	}
	to, err := orders.ParseStatus(req.Status)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sess := currentSession(r)
	reqID := middleware.GetReqID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, from, err := h.Orders.UpdateStatus(ctx, chi.URLParam(r, "id"), sess.UserID, to)
	if err != nil {
		writeError(w, r, h.Log, "orders_update_status", err)
		return
	}

	_ = h.Cache.Set(ctx, o.ID, redisx.StatusEntry{
		Status: string(o.Status), CustomerID: o.CustomerID, RestaurantID: o.RestaurantID, UpdatedAt: o.UpdatedAt,
	})
	env, err := orders.NewEnvelope(orders.EventOrderStatusChanged, h.Service, reqID, o.ID, orders.OrderStatusChangedPayload{
		OrderID:      o.ID,
		CustomerID:   o.CustomerID,
		RestaurantID: o.RestaurantID,
		From:         from,
		To:           o.Status,
		ChangedAt:    o.UpdatedAt,
	})
	if err != nil {
		writeError(w, r, h.Log, "orders_update_status", err)
		return
	}
	if err := h.StatusChanged.Publish(ctx, orders.PartitionKey(o.ID), kafkax.MustMarshal(env),
		kafkax.EventHeaders(orders.EventOrderStatusChanged, 1)...); err != nil {
		h.Log.Error("orders_update_status_publish", reqID, "status changed but event not queued", err, slog.String("order_id", o.ID))
	}

	h.Log.Info("order_status_changed", reqID, fmt.Sprintf("%s -> %s", from, o.Status), slog.String("order_id", o.ID))
	writeJSON(w, http.StatusOK, o)
}

func canSee(s session.Session, customerID, restaurantID string) bool {
	switch s.Role {
	case session.RoleCustomer:
		return s.UserID == customerID
	case session.RoleRestaurant:
		return s.UserID == restaurantID
	}
	return false
}
