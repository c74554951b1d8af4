package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/clients"
	"github.com/noah-isme/backend-pos/internal/config"
	"github.com/noah-isme/backend-pos/internal/database"
	"github.com/noah-isme/backend-pos/internal/demo"
	"github.com/noah-isme/backend-pos/internal/lock"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/sales"
	"github.com/noah-isme/backend-pos/internal/stock"
	"github.com/noah-isme/backend-pos/internal/suppliers"
)

func main() {
	migrate := flag.Bool("migrate", false, "apply schema migrations before seeding")
	timeout := flag.Duration("timeout", time.Minute, "overall seeding deadline")
	flag.Parse()

	logger := obs.NewLogger("pos-seeder", "console", "info")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if cfg.DatabaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if *migrate {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("migrate")
		}
		logger.Info().Msg("migrations applied")
	}

	pool, err := database.Open(ctx, cfg.DatabaseURL, "pos-seeder", 5*time.Second)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer pool.Close()

	locker := lock.Locker{}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse redis url")
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		locker.Client = rdb
	}

	var res demo.Result
	err = locker.TryWithLock(ctx, "seed-demo", *timeout, func(ctx context.Context) error {
		var err error
		res, err = demo.Seed(ctx, demo.Targets{
			Catalog:   catalog.NewPostgresStore(pool),
			Stock:     stock.NewPostgresStore(pool),
			Documents: sales.NewPostgresStore(pool),
			Clients:   clients.NewPostgresStore(pool),
			Suppliers: suppliers.NewPostgresStore(pool),
			Logger:    logger,
		})
		return err
	})
	switch {
	case errors.Is(err, lock.ErrNotAcquired):
		logger.Warn().Msg("another process is seeding, nothing to do")
		return
	case err != nil:
		logger.Fatal().Err(err).Msg("seed")
	}

	logger.Info().
		Int("warehouses", res.Warehouses).
		Int("products", res.Products).
		Int("allocations", res.Allocations).
		Int("sales", res.Sales).
		Int("purchases", res.Purchases).
		Int("clients", res.Clients).
		Int("suppliers", res.Suppliers).
		Msg("demo data seeded")
}
