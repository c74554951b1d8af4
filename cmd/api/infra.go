package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/config"
	"github.com/noah-isme/backend-pos/internal/database"
	"github.com/noah-isme/backend-pos/internal/health"
	"github.com/noah-isme/backend-pos/internal/queue"
)

// infra holds the optional external connections. Nil fields mean the
// deployment runs without that dependency.
type infra struct {
	Pool      *pgxpool.Pool
	Redis     *redis.Client
	Asynq     *asynq.Client
	Inspector *asynq.Inspector
	Kafka     *queue.KafkaPublisher
}

func openInfra(ctx context.Context, cfg *config.Config, metrics bool, logger zerolog.Logger) (*infra, error) {
	in := &infra{}
	if cfg.DatabaseURL != "" {
		if cfg.MigrateOnStart {
			if err := database.Migrate(cfg.DatabaseURL); err != nil {
				return nil, err
			}
			logger.Info().Msg("database migrations applied")
		}
		pool, err := database.Open(ctx, cfg.DatabaseURL, "pos-api", 5*time.Second)
		if err != nil {
			return nil, err
		}
		in.Pool = pool
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			in.Close()
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		in.Redis = redis.NewClient(opts)
		if err := redisotel.InstrumentTracing(in.Redis); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
		if metrics {
			if err := redisotel.InstrumentMetrics(in.Redis); err != nil {
				logger.Error().Err(err).Msg("instrument redis metrics")
			}
		}
		conn, err := asynq.ParseRedisURI(cfg.RedisURL)
		if err != nil {
			in.Close()
			return nil, fmt.Errorf("parse asynq redis uri: %w", err)
		}
		in.Inspector = asynq.NewInspector(conn)
		if cfg.EventsPublisher == config.PublisherAsynq {
			in.Asynq = asynq.NewClient(conn)
		}
	}

	if cfg.EventsPublisher == config.PublisherKafka {
		kp, err := queue.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopicPrefix)
		if err != nil {
			in.Close()
			return nil, err
		}
		in.Kafka = kp
	}
	return in, nil
}

// PingDB implements health.Checker.
func (in *infra) PingDB(ctx context.Context, timeout time.Duration) error {
	if in == nil || in.Pool == nil {
		return health.ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return in.Pool.Ping(ctx)
}

// PingRedis implements health.Checker.
func (in *infra) PingRedis(ctx context.Context, timeout time.Duration) error {
	if in == nil || in.Redis == nil {
		return health.ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return in.Redis.Ping(ctx).Err()
}

func (in *infra) Close() {
	if in.Kafka != nil {
		_ = in.Kafka.Close()
	}
	if in.Asynq != nil {
		_ = in.Asynq.Close()
	}
	if in.Inspector != nil {
		_ = in.Inspector.Close()
	}
	if in.Redis != nil {
		_ = in.Redis.Close()
	}
	if in.Pool != nil {
		in.Pool.Close()
	}
}
