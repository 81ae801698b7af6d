package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Apurer/canteen-orders/internal/app/api"
	cartpostgres "github.com/Apurer/canteen-orders/internal/domains/cart/adapters/persistence/postgres"
	platformobservability "github.com/Apurer/canteen-orders/internal/platform/observability"
	platformpostgres "github.com/Apurer/canteen-orders/internal/platform/postgres"
)

func main() {
	loop := flag.Bool("loop", false, "keep purging every SESSION_PURGE_INTERVAL_MINUTES")
	flag.Parse()

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: platformobservability.ParseLevel(os.Getenv("LOG_LEVEL"))}))
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	db, cleanup := platformpostgres.ConnectOrFallback(connectCtx, cfg.PostgresDSN, platformpostgres.PoolConfig{MaxOpenConns: 1}, logger)
	cancel()
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge cart sessions")
	}

	store := cartpostgres.NewSessionStore(db, cfg.CartTTL)
	purge := func() error {
		purgeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		n, err := store.PurgeExpired(purgeCtx)
		if err != nil {
			return err
		}
		logger.Info("cart session purge completed", slog.Int64("removed", n))
		return nil
	}

	if err := purge(); err != nil {
		log.Fatalf("failed to purge cart sessions: %v", err)
	}
	if !*loop {
		return
	}
	ticker := time.NewTicker(cfg.SessionPurgePeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := purge(); err != nil {
				logger.Error("cart session purge failed", slog.String("error", err.Error()))
			}
		}
	}
}
