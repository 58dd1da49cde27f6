package httpx

import (
	"encoding/json"
	"errors"
	"github.com/ariefcatur/go-food-orders/internal/billing"
	"github.com/ariefcatur/go-food-orders/internal/cart"
	"github.com/ariefcatur/go-food-orders/internal/logger"
	"github.com/ariefcatur/go-food-orders/internal/menu"
	"github.com/ariefcatur/go-food-orders/internal/orders"
	"github.com/ariefcatur/go-food-orders/internal/restaurants"
	"github.com/go-chi/chi/v5/middleware"
	"net/http"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return false
	}
	return true
}

// writeError maps domain errors to HTTP codes; anything unknown is logged and
// reported as 500.
func writeError(w http.ResponseWriter, r *http.Request, log *logger.Logger, action string, err error) {
	var ve billing.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": ve.Message, "field": ve.Field})
	case errors.Is(err, cart.ErrEmptyCart), errors.Is(err, billing.ErrUnknownPromo):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, cart.ErrInvalidQuantity):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, cart.ErrMixedRestaurant), errors.Is(err, cart.ErrItemUnavailable),
		errors.Is(err, cart.ErrRestaurantClosed), errors.Is(err, orders.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, cart.ErrItemNotInCart), errors.Is(err, menu.ErrNotFound), errors.Is(err, orders.ErrNotFound),
		errors.Is(err, restaurants.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		if log != nil {
			log.Error(action, middleware.GetReqID(r.Context()), "request failed", err)
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
