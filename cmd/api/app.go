package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"

	"github.com/noah-isme/backend-pos/internal/cart"
	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/clients"
	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/config"
	"github.com/noah-isme/backend-pos/internal/demo"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/lock"
	"github.com/noah-isme/backend-pos/internal/notify"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/queue"
	"github.com/noah-isme/backend-pos/internal/ratelimit"
	"github.com/noah-isme/backend-pos/internal/resilience"
	"github.com/noah-isme/backend-pos/internal/sales"
	"github.com/noah-isme/backend-pos/internal/stock"
	"github.com/noah-isme/backend-pos/internal/suppliers"
)

type documentStore interface {
	sales.Repository
	sales.PurchaseRepository
}

type stores struct {
	Catalog   catalog.Store
	Stock     stock.Store
	Documents documentStore
	Clients   clients.Store
	Suppliers suppliers.Store
}

// app bundles the wired services the router needs.
type app struct {
	Catalog   *catalog.Service
	Stock     *stock.Service
	Sales     *sales.Service
	Cart      *cart.Service
	Clients   *clients.Directory
	Suppliers *suppliers.Service
	Center    *notify.Center
	Queue     *queue.AdminHandler
	Limiter   *limiter.Limiter
}

func memoryStores(seed bool) stores {
	if !seed {
		return stores{
			Catalog:   catalog.NewMemoryStore(nil, catalog.DemoWarehouses()),
			Stock:     stock.NewMemoryStore(nil),
			Documents: sales.NewMemoryStore(nil, nil),
			Clients:   clients.NewMemoryStore(nil),
			Suppliers: suppliers.NewMemoryStore(nil),
		}
	}
	return stores{
		Catalog:   catalog.NewMemoryStore(catalog.DemoProducts(), catalog.DemoWarehouses()),
		Stock:     stock.NewMemoryStore(stock.DemoAllocations()),
		Documents: sales.NewMemoryStore(sales.DemoSales(), sales.DemoPurchases()),
		Clients:   clients.NewMemoryStore(clients.DemoClients()),
		Suppliers: suppliers.NewMemoryStore(suppliers.DemoSuppliers()),
	}
}

func buildApp(ctx context.Context, cfg *config.Config, in *infra, logger zerolog.Logger) (*app, error) {
	st := memoryStores(cfg.SeedDemo)
	if in.Pool != nil {
		catalogStore := catalog.NewPostgresStore(in.Pool)
		stockStore := stock.NewPostgresStore(in.Pool)
		docStore := sales.NewPostgresStore(in.Pool)
		clientStore := clients.NewPostgresStore(in.Pool)
		supplierStore := suppliers.NewPostgresStore(in.Pool)
		st = stores{Catalog: catalogStore, Stock: stockStore, Documents: docStore, Clients: clientStore, Suppliers: supplierStore}

		if cfg.SeedDemo {
			locker := lock.Locker{}
			if in.Redis != nil {
				locker.Client = in.Redis
			}
			err := locker.TryWithLock(ctx, "seed-demo", time.Minute, func(ctx context.Context) error {
				_, err := demo.Seed(ctx, demo.Targets{
					Catalog:   catalogStore,
					Stock:     stockStore,
					Documents: docStore,
					Clients:   clientStore,
					Suppliers: supplierStore,
					Logger:    logger,
				})
				return err
			})
			switch {
			case errors.Is(err, lock.ErrNotAcquired):
				logger.Info().Msg("demo seeding running on another replica")
			case err != nil:
				return nil, err
			}
		}
	}

	var tally *sales.Tally
	if in.Redis != nil {
		tally = sales.NewTally(in.Redis, "")
	}
	bus := newBus(cfg, in, tally, logger)
	return wire(ctx, cfg, st, in, bus, tally, logger)
}

// newBus picks the publisher and in-process notifiers. Without the asynq
// worker the daily tally is fed in-process.
func newBus(cfg *config.Config, in *infra, tally *sales.Tally, logger zerolog.Logger) *events.Bus {
	bus := &events.Bus{Notifiers: []events.Notifier{events.LogNotifier{Logger: logger}}}
	switch {
	case in.Asynq != nil:
		bus.Publisher = &queue.AsynqPublisher{Client: in.Asynq, Queue: cfg.EventsQueue, MaxRetry: cfg.EventsMaxRetry}
	case in.Kafka != nil:
		bus.Publisher = in.Kafka
	}
	if tally != nil && in.Asynq == nil {
		bus.Notifiers = append(bus.Notifiers, sales.TallyNotifier{Tally: tally})
	}
	if cfg.WebhookURL != "" {
		hook := &notify.Webhook{
			URL:       cfg.WebhookURL,
			Secret:    cfg.WebhookSecret,
			Client:    notify.HTTPClient(cfg.WebhookTimeout),
			Topics:    cfg.WebhookTopicSet(),
			ReplayTTL: cfg.WebhookReplayTTL,
			Retry: resilience.Retry{
				Breaker:     resilience.NewBreaker("webhook", 5, 0.5, 30*time.Second).WithLogger(logger),
				MaxAttempts: cfg.WebhookAttempts,
				BaseBackoff: 200 * time.Millisecond,
				Jitter:      0.2,
			},
		}
		if in.Redis != nil {
			hook.Replay = notify.RedisReplayGuard{Client: in.Redis}
		}
		bus.Notifiers = append(bus.Notifiers, hook)
	}
	return bus
}

func wire(ctx context.Context, cfg *config.Config, st stores, in *infra, bus *events.Bus, tally *sales.Tally, logger zerolog.Logger) (*app, error) {
	rdb := in.Redis
	validate := common.NewValidator()

	catalogSvc, err := catalog.NewService(catalog.ServiceConfig{
		Store:     st.Catalog,
		Cache:     catalog.NewCache(rdb, cfg.CatalogCacheTTL),
		Events:    bus,
		Validator: validate,
		Logger:    logger.With().Str("component", "catalog").Logger(),
	})
	if err != nil {
		return nil, err
	}
	stockSvc, err := stock.NewService(stock.ServiceConfig{
		Store:   st.Stock,
		Catalog: catalogSvc,
		Events:  bus,
		Logger:  logger.With().Str("component", "stock").Logger(),
	})
	if err != nil {
		return nil, err
	}
	supplierSvc, err := suppliers.NewService(suppliers.ServiceConfig{
		Store:     st.Suppliers,
		Validator: validate,
		Logger:    logger.With().Str("component", "suppliers").Logger(),
	})
	if err != nil {
		return nil, err
	}
	salesSvc, err := sales.NewService(sales.ServiceConfig{
		Sales:     st.Documents,
		Purchases: st.Documents,
		Suppliers: st.Suppliers,
		Tally:     tally,
		Validator: validate,
		Logger:    logger.With().Str("component", "sales").Logger(),
	})
	if err != nil {
		return nil, err
	}
	directory, err := clients.NewDirectory(st.Clients, validate)
	if err != nil {
		return nil, err
	}

	center := notify.NewCenter(cfg.NotifyTTL)
	cartSvc, err := cart.NewService(cart.ServiceConfig{
		Catalog:     catalogSvc,
		Clients:     directory,
		Sales:       st.Documents,
		Events:      bus,
		Notifier:    notify.Fanout{notify.LogSink{Logger: logger.With().Str("component", "notify").Logger()}, center},
		Engine:      pricing.Engine{Mode: pricing.ParseMode(cfg.TaxMode)},
		Series:      cfg.DocumentSeries,
		StartNumber: cfg.DocumentStart,
		Currency:    cfg.Currency,
		Logger:      logger.With().Str("component", "cart").Logger(),
	})
	if err != nil {
		return nil, err
	}
	if err := cartSvc.Sync(ctx); err != nil {
		return nil, fmt.Errorf("sync document counter: %w", err)
	}

	store, err := ratelimit.NewStore(rdb, "")
	if err != nil {
		return nil, err
	}
	lim, err := ratelimit.New(cfg.RateLimit, store)
	if err != nil {
		return nil, err
	}

	admin := &queue.AdminHandler{PageSize: 20, Logger: logger.With().Str("component", "queue").Logger()}
	if in.Inspector != nil {
		admin.Inspector = in.Inspector
	}

	return &app{
		Catalog:   catalogSvc,
		Stock:     stockSvc,
		Sales:     salesSvc,
		Cart:      cartSvc,
		Clients:   directory,
		Suppliers: supplierSvc,
		Center:    center,
		Queue:     admin,
		Limiter:   lim,
	}, nil
}
