package main

import (
	"context"
	"github.com/ariefcatur/go-food-orders/internal/config"
	kafkax "github.com/ariefcatur/go-food-orders/internal/kafka"
	"github.com/ariefcatur/go-food-orders/internal/logger"
	"github.com/ariefcatur/go-food-orders/internal/orders"
	"github.com/ariefcatur/go-food-orders/internal/rabbitmq"
	"github.com/ariefcatur/go-food-orders/internal/redisx"
	"github.com/ariefcatur/go-food-orders/internal/tracking"
	"github.com/joho/godotenv"
	"log/slog"
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
		logger.New("order-tracker").Error("config", "", "invalid configuration", err)
		os.Exit(1)
	}
	service := cfg.ServiceName + "-tracker"
	log := logger.New(service)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// RabbitMQ
	mq, err := rabbitmq.Dial(cfg.AMQPURL)
	if err != nil {
		log.Error("startup", "", "rabbitmq dial", err)
		os.Exit(1)
	}
	defer mq.Close()

	svc := &tracking.Service{
		Dedup:    redisx.Deduper{RDB: rdb, Service: service},
		Cache:    redisx.StatusCache{RDB: rdb},
		Notifier: mq,
		Log:      log,
	}

	topics := []string{orders.TopicOrderPlaced, orders.TopicOrderStatusChanged}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.TrackerGroup, topics, cfg.TrackerWorkers, log)

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info("startup", "", "tracker consumer started",
			slog.String("group", cfg.TrackerGroup),
			slog.String("topics", strings.Join(topics, ",")),
			slog.Int("workers", cfg.TrackerWorkers))
		if err := cons.Start(ctx, svc.HandleEvent); err != nil {
			log.Error("consumer", "", "consumer exit", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutdown", "", "shutting down consumer...")
	cancel()
	select {
	case <-done: // worker selesai, offset terakhir sudah di-commit
	case <-time.After(10 * time.Second):
		log.Info("shutdown", "", "consumer did not stop in time")
	}
}
