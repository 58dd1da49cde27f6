package httpx

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-food-orders/internal/billing"
	"github.com/ariefcatur/go-food-orders/internal/cart"
	"github.com/ariefcatur/go-food-orders/internal/logger"
	"github.com/ariefcatur/go-food-orders/internal/session"
	"github.com/go-chi/chi/v5"
	"net/http"
	"time"
)

type CartService interface {
	AddItem(ctx context.Context, customerID, itemID string, qty int) error
	SetQuantity(ctx context.Context, customerID, itemID string, qty int) error
	RemoveItem(ctx context.Context, customerID, itemID string) error
	Clear(ctx context.Context, customerID string) error
	Quote(ctx context.Context, customerID, promoCode string) (cart.Quote, error)
}

type CartHandler struct {
	Cart CartService
	Log  *logger.Logger
}

type addCartItemReq struct {
	FoodItemID string `json:"food_item_id"`
	Quantity   int    `json:"quantity"`
}

type setQuantityReq struct {
	Quantity *int `json:"quantity"`
}

type CartResp struct {
	RestaurantID string        `json:"restaurant_id,omitempty"`
	Lines        []cart.Line   `json:"lines"`
	Bill         *billing.View `json:"bill"`
}

func (h *CartHandler) Register(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Use(RequireRole(session.RoleCustomer))
		r.Get("/", h.get)
		r.Delete("/", h.clear)
		r.Get("/bill", h.bill)
		r.Post("/items", h.addItem)
		r.Patch("/items/{itemID}", h.setQuantity)
		r.Delete("/items/{itemID}", h.removeItem)
	})
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r, http.StatusOK)
}

// writeCart renders the cart with its bill; an empty cart has no bill.
func (h *CartHandler) writeCart(w http.ResponseWriter, r *http.Request, code int) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	customerID := currentSession(r).UserID

	q, err := h.Cart.Quote(ctx, customerID, r.URL.Query().Get("promo"))
	if errors.Is(err, cart.ErrEmptyCart) {
		writeJSON(w, code, CartResp{Lines: []cart.Line{}})
		return
	}
	if err != nil {
		writeError(w, r, h.Log, "cart_get", err)
		return
	}
	v := q.Bill.View()
	writeJSON(w, code, CartResp{RestaurantID: q.RestaurantID, Lines: q.Lines, Bill: &v})
}

func (h *CartHandler) bill(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	q, err := h.Cart.Quote(ctx, currentSession(r).UserID, r.URL.Query().Get("promo"))
	if err != nil {
		writeError(w, r, h.Log, "cart_bill", err)
		return
	}
	writeJSON(w, http.StatusOK, q.Bill.View())
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.FoodItemID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing food_item_id"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := h.Cart.AddItem(ctx, currentSession(r).UserID, req.FoodItemID, req.Quantity); err != nil {
		writeError(w, r, h.Log, "cart_add", err)
		return
	}
	h.writeCart(w, r, http.StatusOK)
}

func (h *CartHandler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing quantity"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := h.Cart.SetQuantity(ctx, currentSession(r).UserID, chi.URLParam(r, "itemID"), *req.Quantity); err != nil {
		writeError(w, r, h.Log, "cart_set_quantity", err)
		return
	}
	h.writeCart(w, r, http.StatusOK)
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := h.Cart.RemoveItem(ctx, currentSession(r).UserID, chi.URLParam(r, "itemID")); err != nil {
		writeError(w, r, h.Log, "cart_remove", err)
		return
	}
	h.writeCart(w, r, http.StatusOK)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := h.Cart.Clear(ctx, currentSession(r).UserID); err != nil {
		writeError(w, r, h.Log, "cart_clear", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
