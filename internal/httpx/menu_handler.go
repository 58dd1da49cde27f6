package httpx

import (
	"context"
	"github.com/ariefcatur/go-food-orders/internal/logger"
	"github.com/ariefcatur/go-food-orders/internal/menu"
	"github.com/ariefcatur/go-food-orders/internal/session"
	"github.com/go-chi/chi/v5"
	"net/http"
	"time"
)

type MenuStore interface {
	ListByRestaurant(ctx context.Context, restaurantID string) ([]menu.FoodItem, error)
	Get(ctx context.Context, id string) (menu.FoodItem, error)
	Create(ctx context.Context, restaurantID string, in menu.NewFoodItem) (menu.FoodItem, error)
}

type MenuHandler struct {
	Menu MenuStore
	Log  *logger.Logger
}

func (h *MenuHandler) RegisterPublic(r chi.Router) {
	r.Get("/restaurants/{id}/menu", h.list)
	r.Get("/restaurants/{id}/menu/{itemID}", h.get)
}

func (h *MenuHandler) Register(r chi.Router) {
	r.With(RequireRole(session.RoleRestaurant)).Post("/restaurants/{id}/menu", h.create)
}

func (h *MenuHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := h.Menu.ListByRestaurant(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.Log, "menu_list", err)
		return
	}
	if items == nil {
		items = []menu.FoodItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *MenuHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	it, err := h.Menu.Get(ctx, chi.URLParam(r, "itemID"))
	if err == nil && it.RestaurantID != chi.URLParam(r, "id") {
		err = menu.ErrNotFound
	}
	if err != nil {
		writeError(w, r, h.Log, "menu_get", err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *MenuHandler) create(w http.ResponseWriter, r *http.Request) {
	restaurantID := chi.URLParam(r, "id")
	if currentSession(r).UserID != restaurantID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
		return
	}
	var req menu.NewFoodItem
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	it, err := h.Menu.Create(ctx, restaurantID, req)
	if err != nil {
		writeError(w, r, h.Log, "menu_create", err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}
