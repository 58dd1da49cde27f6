package main

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-food-orders/internal/cart"
	"github.com/ariefcatur/go-food-orders/internal/config"
	"github.com/ariefcatur/go-food-orders/internal/httpx"
	kafkax "github.com/ariefcatur/go-food-orders/internal/kafka"
	"github.com/ariefcatur/go-food-orders/internal/logger"
	"github.com/ariefcatur/go-food-orders/internal/menu"
	"github.com/ariefcatur/go-food-orders/internal/metrics"
	"github.com/ariefcatur/go-food-orders/internal/orders"
	"github.com/ariefcatur/go-food-orders/internal/postgres"
	"github.com/ariefcatur/go-food-orders/internal/redisx"
	"github.com/ariefcatur/go-food-orders/internal/restaurants"
	"github.com/ariefcatur/go-food-orders/internal/session"
	"github.com/joho/godotenv"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New("order-api").Error("config", "", "invalid configuration", err)
		os.Exit(1)
	}
	log := logger.New(cfg.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Error("startup", "", "db connect", err)
		os.Exit(1)
	}
	defer db.Close()
	applied, err := postgres.Migrate(ctx, db)
	if err != nil {
		log.Error("startup", "", "migrate", err)
		os.Exit(1)
	}
	if len(applied) > 0 {
		log.Info("startup", "", "migrations applied", slog.String("files", strings.Join(applied, ",")))
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, satu per topic
	placed := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024, log)
	placed.Start(ctx)
	changed := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024, log)
	changed.Start(ctx)

	// Repos & services
	restaurantRepo := &restaurants.Repo{DB: db}
	menuRepo := &menu.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}
	cartSvc := &cart.Service{
		Store:       cart.RedisStore{RDB: rdb},
		Menu:        menuRepo,
		Restaurants: restaurantRepo,
		Promos:      cfg.Promos,
		Billing:     cfg.Billing,
	}
	cache := redisx.StatusCache{RDB: rdb}

	router := httpx.NewRouter(log, httpx.NewIPRateLimiter(cfg.RateRPS, cfg.RateBurst))
	httpx.Routes{
		Auth:        session.Issuer{Secret: cfg.JWTSecret},
		Restaurants: &httpx.RestaurantHandler{Restaurants: restaurantRepo, Log: log},
		Menu:        &httpx.MenuHandler{Menu: menuRepo, Log: log},
		Cart:        &httpx.CartHandler{Cart: cartSvc, Log: log},
		Orders: &httpx.OrdersHandler{
			Orders:        orderRepo,
			Cart:          cartSvc,
			Cache:         cache,
			Placed:        placed,
			StatusChanged: changed,
			Service:       cfg.ServiceName,
			WindowDays:    cfg.DashboardWindowDays,
			Log:           log,
		},
		Dashboard: &httpx.DashboardHandler{
			Orders:     orderRepo,
			Dashboard:  metrics.Dashboard{Location: cfg.Location},
			WindowDays: cfg.DashboardWindowDays,
			Log:        log,
		},
	}.Mount(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("startup", "", "HTTP listening", slog.String("addr", cfg.HTTPAddr), slog.String("tz", cfg.Location.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen", "", "http server stopped", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutdown", "", "shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	placed.Close() // tutup inbox -> flush & close writer
	changed.Close()
	cancel()
	placed.WaitClosed()
	changed.WaitClosed()
}
