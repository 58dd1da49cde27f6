package httpx

import (
	"context"
	"github.com/ariefcatur/go-food-orders/internal/logger"
	"github.com/ariefcatur/go-food-orders/internal/restaurants"
	"github.com/ariefcatur/go-food-orders/internal/session"
	"github.com/go-chi/chi/v5"
	"net/http"
	"time"
)

type RestaurantStore interface {
	Get(ctx context.Context, id string) (restaurants.Restaurant, error)
	Upsert(ctx context.Context, id string, p restaurants.Profile) (restaurants.Restaurant, error)
}

type RestaurantHandler struct {
	Restaurants RestaurantStore
	Log         *logger.Logger
}

func (h *RestaurantHandler) RegisterPublic(r chi.Router) {
	r.Get("/restaurants/{id}", h.get)
}

func (h *RestaurantHandler) Register(r chi.Router) {
	r.With(RequireRole(session.RoleRestaurant)).Put("/restaurants/{id}", h.put)
}

func (h *RestaurantHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rest, err := h.Restaurants.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.Log, "restaurant_get", err)
		return
	}
	writeJSON(w, http.StatusOK, rest)
}

// put onboard restoran pertama kali, setelah itu update nama / buka-tutup.
func (h *RestaurantHandler) put(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if currentSession(r).UserID != id {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
		return
	}
	var req restaurants.Profile
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rest, err := h.Restaurants.Upsert(ctx, id, req)
	if err != nil {
		writeError(w, r, h.Log, "restaurant_upsert", err)
		return
	}
	writeJSON(w, http.StatusOK, rest)
}
