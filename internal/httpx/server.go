package httpx

import (
	"github.com/ariefcatur/go-food-orders/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"log/slog"
	"net/http"
	"time"
)

func NewRouter(log *logger.Logger, limiter *IPRateLimiter) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(log), middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	if limiter != nil {
		r.Use(limiter.Middleware)
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// requestLogger menulis satu access log JSON per request lewat logger service.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				if log == nil {
					return
				}
				log.Info("http_request", middleware.GetReqID(r.Context()), r.Method+" "+r.URL.Path,
					slog.Int("status", ww.Status()),
					slog.Int("bytes", ww.BytesWritten()),
					slog.Duration("duration", time.Since(start)),
					slog.String("remote_ip", r.RemoteAddr))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

type Routes struct {
	Auth        TokenParser
	Restaurants *RestaurantHandler
	Menu        *MenuHandler
	Cart        *CartHandler
	Orders      *OrdersHandler
	Dashboard   *DashboardHandler
}

// Mount pasang semua route; selain /healthz, profil restoran dan menu publik
// wajib bearer token.
func (rt Routes) Mount(r chi.Router) {
	rt.Restaurants.RegisterPublic(r)
	rt.Menu.RegisterPublic(r)
	r.Group(func(r chi.Router) {
		r.Use(Authenticate(rt.Auth))
		rt.Restaurants.Register(r)
		rt.Menu.Register(r)
		rt.Cart.Register(r)
		rt.Orders.Register(r)
		rt.Dashboard.Register(r)
	})
}
