package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/resilience"
)

// Webhook posts domain events to an external endpoint. Each request carries an
// HMAC-SHA256 signature over "<ts>.<eventID>.<body>" keyed by Secret.
type Webhook struct {
	URL       string
	Secret    string
	Client    *http.Client
	Topics    map[string]bool
	Replay    ReplayGuard
	ReplayTTL time.Duration
	// Retry governs redelivery of transport errors and 5xx answers.
	Retry resilience.Retry
	Now   func() time.Time
}

// ReplayGuard suppresses repeated deliveries of the same event.
type ReplayGuard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RedisReplayGuard claims delivery keys with SETNX.
type RedisReplayGuard struct {
	Client redis.UniversalClient
}

func (g RedisReplayGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if g.Client == nil {
		return true, nil
	}
	return g.Client.SetNX(ctx, key, "1", ttl).Result()
}

type webhookBody struct {
	EventID     string          `json:"eventId"`
	Topic       string          `json:"topic"`
	AggregateID string          `json:"aggregateId"`
	Data        json.RawMessage `json:"data"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

// Notify implements events.Notifier.
func (w *Webhook) Notify(ctx context.Context, event events.Event) error {
	if w == nil || w.URL == "" {
		return nil
	}
	if w.Topics != nil && !w.Topics[event.Topic] {
		return nil
	}
	ctx, span := otel.Tracer("notify.Webhook").Start(ctx, "Webhook.Notify")
	defer span.End()
	span.SetAttributes(attribute.String("webhook.topic", event.Topic), attribute.String("webhook.event_id", event.ID))

	if err := validateURL(w.URL); err != nil {
		span.RecordError(err)
		return err
	}
	if w.Replay != nil && w.ReplayTTL > 0 {
		ok, err := w.Replay.Acquire(ctx, "pos:webhook:"+event.ID, w.ReplayTTL)
		if err != nil {
			span.RecordError(err)
			return err
		}
		if !ok {
			span.AddEvent("delivery replay prevented")
			return nil
		}
	}
	body, err := json.Marshal(webhookBody{
		EventID:     event.ID,
		Topic:       event.Topic,
		AggregateID: event.AggregateID,
		Data:        event.Payload,
		OccurredAt:  event.OccurredAt,
	})
	if err != nil {
		return err
	}
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	ts := now().Unix()
	signature := ComputeSignature(w.Secret, ts, event.ID, body)

	client := w.Client
	if client == nil {
		client = HTTPClient(5 * time.Second)
	}
	err = w.Retry.Do(ctx, func(ctx context.Context) error {
		return w.post(ctx, client, event.ID, ts, signature, body)
	})
	if err != nil {
		span.RecordError(err)
		countDelivery(event.Topic, "failed")
		return fmt.Errorf("webhook %s: %w", event.Topic, err)
	}
	countDelivery(event.Topic, "delivered")
	return nil
}

func (w *Webhook) post(ctx context.Context, client *http.Client, eventID string, ts int64, signature string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return resilience.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "backend-pos-webhooks/1.0")
	req.Header.Set("X-Event-ID", eventID)
	req.Header.Set("X-Timestamp", strconv.FormatInt(ts, 10))
	req.Header.Set("X-Signature", signature)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	default:
		return resilience.Permanent(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
}

func countDelivery(topic, result string) {
	if obs.EventsPublishedTotal != nil {
		obs.EventsPublishedTotal.WithLabelValues(topic, "webhook_"+result).Inc()
	}
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return errors.New("webhook url must be http or https")
	}
	if parsed.Host == "" {
		return errors.New("webhook url must include host")
	}
	if parsed.Scheme == "http" {
		host := parsed.Hostname()
		if host != "localhost" && host != "127.0.0.1" {
			return errors.New("http webhook only allowed for localhost")
		}
	}
	return nil
}

// ComputeSignature returns the hex HMAC-SHA256 of "<ts>.<eventID>.<body>".
func ComputeSignature(secret string, ts int64, eventID string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(strconv.FormatInt(ts, 10)))
	_, _ = mac.Write([]byte("."))
	_, _ = mac.Write([]byte(eventID))
	_, _ = mac.Write([]byte("."))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// HTTPClient returns a traced client for webhook delivery.
func HTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
