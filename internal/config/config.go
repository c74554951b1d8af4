package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Event publisher backends.
const (
	PublisherNone  = "none"
	PublisherAsynq = "asynq"
	PublisherKafka = "kafka"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	TaxMode        string
	DocumentSeries string
	DocumentStart  int
	Currency       string

	CatalogCacheTTL time.Duration
	RateLimit       string
	NotifyTTL       time.Duration

	EventsPublisher  string
	EventsQueue      string
	EventsMaxRetry   int
	KafkaBrokers     []string
	KafkaTopicPrefix string

	WebhookURL       string
	WebhookSecret    string
	WebhookTopics    []string
	WebhookTimeout   time.Duration
	WebhookReplayTTL time.Duration
	WebhookAttempts  int

	MigrateOnStart    bool
	SeedDemo          bool
	WorkerConcurrency int
}

// Load reads configuration from environment variables and optional .env files.
// Postgres and Redis are optional; without them the API runs on in-memory stores.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        strings.TrimSpace(k.String("DATABASE_URL")),
		RedisURL:           strings.TrimSpace(k.String("REDIS_URL")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		TaxMode:        strings.ToLower(valueOrDefault(k.String("POS_TAX_MODE"), "inclusive")),
		DocumentSeries: strings.ToUpper(valueOrDefault(k.String("POS_DOCUMENT_SERIES"), "F001")),
		DocumentStart:  parseInt(k.String("POS_DOCUMENT_START"), 1),
		Currency:       strings.ToUpper(valueOrDefault(k.String("POS_CURRENCY"), "PEN")),

		CatalogCacheTTL: parseDuration(k.String("CATALOG_CACHE_TTL"), "60s"),
		RateLimit:       valueOrDefault(k.String("RATE_LIMIT"), "100-M"),
		NotifyTTL:       parseDuration(k.String("NOTIFY_TTL"), "5s"),

		EventsPublisher:  strings.ToLower(valueOrDefault(k.String("EVENTS_PUBLISHER"), PublisherNone)),
		EventsQueue:      valueOrDefault(k.String("EVENTS_QUEUE"), "events"),
		EventsMaxRetry:   parseInt(k.String("EVENTS_MAX_RETRY"), 10),
		KafkaBrokers:     splitAndTrim(k.String("KAFKA_BROKERS")),
		KafkaTopicPrefix: valueOrDefault(k.String("KAFKA_TOPIC_PREFIX"), "pos."),

		WebhookURL:       strings.TrimSpace(k.String("WEBHOOK_URL")),
		WebhookSecret:    k.String("WEBHOOK_SECRET"),
		WebhookTopics:    splitAndTrim(k.String("WEBHOOK_TOPICS")),
		WebhookTimeout:   parseDuration(k.String("WEBHOOK_TIMEOUT"), "5s"),
		WebhookReplayTTL: parseDuration(k.String("WEBHOOK_REPLAY_TTL"), "24h"),
		WebhookAttempts:  parseInt(k.String("WEBHOOK_MAX_ATTEMPTS"), 3),

		MigrateOnStart:    parseBool(k.String("MIGRATE_ON_START")),
		SeedDemo:          parseBoolDefault(k.String("SEED_DEMO"), true),
		WorkerConcurrency: parseInt(k.String("WORKER_CONCURRENCY"), 10),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.TaxMode {
	case "inclusive", "exclusive":
	default:
		return fmt.Errorf("POS_TAX_MODE must be inclusive or exclusive, got %q", c.TaxMode)
	}
	if c.DocumentStart < 1 {
		return errors.New("POS_DOCUMENT_START must be at least 1")
	}
	switch c.EventsPublisher {
	case PublisherNone:
	case PublisherAsynq:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when EVENTS_PUBLISHER=asynq")
		}
	case PublisherKafka:
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when EVENTS_PUBLISHER=kafka")
		}
	default:
		return fmt.Errorf("EVENTS_PUBLISHER must be none, asynq or kafka, got %q", c.EventsPublisher)
	}
	if c.WebhookURL != "" && c.WebhookSecret == "" {
		return errors.New("WEBHOOK_SECRET is required when WEBHOOK_URL is set")
	}
	return nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// WebhookTopicSet returns the configured topic filter, or nil to accept all topics.
func (c *Config) WebhookTopicSet() map[string]bool {
	if len(c.WebhookTopics) == 0 {
		return nil
	}
	set := make(map[string]bool, len(c.WebhookTopics))
	for _, topic := range c.WebhookTopics {
		set[topic] = true
	}
	return set
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func parseBool(value string) bool {
	return parseBoolDefault(value, false)
}

func parseBoolDefault(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
