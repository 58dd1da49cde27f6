package postgres

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-food-orders/internal/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"log/slog"
	"time"
)

// Connect opens the pool and waits for Postgres to answer; compose starts the
// database and the api together, so the first pings may fail.
func Connect(ctx context.Context, dsn string, log *logger.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 8
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	const attempts = 5
	for i := 1; ; i++ {
		err = pool.Ping(ctx)
		if err == nil {
			return pool, nil
		}
		if i == attempts {
			break
		}
		log.Info("postgres_wait", "", "postgres not ready, retrying", slog.Int("attempt", i), slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(time.Duration(i) * time.Second):
		}
	}
	pool.Close()
	return nil, fmt.Errorf("postgres ping: %w", err)
}
