package httpx

import (
	"context"
	"github.com/ariefcatur/go-food-orders/internal/logger"
	"github.com/ariefcatur/go-food-orders/internal/metrics"
	"github.com/ariefcatur/go-food-orders/internal/orders"
	"github.com/ariefcatur/go-food-orders/internal/session"
	"github.com/go-chi/chi/v5"
	"net/http"
	"time"
)

type RestaurantOrders interface {
	ListByRestaurant(ctx context.Context, restaurantID string, since time.Time) ([]orders.Order, error)
}

type DashboardHandler struct {
	Orders     RestaurantOrders
	Dashboard  metrics.Dashboard
	WindowDays int
	Log        *logger.Logger
}

func (h *DashboardHandler) Register(r chi.Router) {
	r.With(RequireRole(session.RoleRestaurant)).Get("/restaurants/{id}/dashboard", h.get)
}

// get menghitung KPI dari order dalam window; ?date=YYYY-MM-DD memilih hari
// referensi selain hari ini.
func (h *DashboardHandler) get(w http.ResponseWriter, r *http.Request) {
	restaurantID := chi.URLParam(r, "id")
	if currentSession(r).UserID != restaurantID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
		return
	}

	loc := h.Dashboard.Location
	if loc == nil {
		loc = time.UTC
	}
	ref := now(h.Dashboard)
	var until time.Time
	if s := r.URL.Query().Get("date"); s != "" {
		day, err := time.ParseInLocation("2006-01-02", s, loc)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
			return
		}
		ref = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
		until = ref
	}
	d := metrics.Dashboard{Location: loc, Now: func() time.Time { return ref }}

	days := h.WindowDays
	if days < 2 {
		days = 2
	}
	y, m, dd := ref.In(loc).Date()
	since := time.Date(y, m, dd, 0, 0, 0, 0, loc).AddDate(0, 0, -(days - 1))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	list, err := h.Orders.ListByRestaurant(ctx, restaurantID, since)
	if err != nil {
		writeError(w, r, h.Log, "dashboard", err)
		return
	}
	if !until.IsZero() {
		list = createdUntil(list, until)
	}
	writeJSON(w, http.StatusOK, d.Summarize(list).View())
}

func now(d metrics.Dashboard) time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func createdUntil(list []orders.Order, until time.Time) []orders.Order {
	out := make([]orders.Order, 0, len(list))
	for _, o := range list {
		if !o.CreatedAt.After(until) {
			out = append(out, o)
		}
	}
	return out
}
