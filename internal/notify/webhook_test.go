package notify_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/notify"
	"github.com/noah-isme/backend-pos/internal/resilience"
)

type recorded struct {
	req  *http.Request
	body []byte
}

func newEndpoint(t *testing.T, status int) (*httptest.Server, chan recorded) {
	t.Helper()
	received := make(chan recorded, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- recorded{req: r, body: body}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, received
}

func saleEvent() events.Event {
	return events.Event{
		ID:          "6f1c1f0e-0d8b-4a53-9a55-0f3b1c2d4e5f",
		Topic:       events.TopicSaleCommitted,
		AggregateID: "F001-000001",
		Payload:     json.RawMessage(`{"total":"82.60"}`),
		OccurredAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestWebhookSignsDelivery(t *testing.T) {
	srv, received := newEndpoint(t, http.StatusOK)
	hook := &notify.Webhook{URL: srv.URL, Secret: "secret", Client: srv.Client()}

	require.NoError(t, hook.Notify(context.Background(), saleEvent()))

	record := <-received
	req := record.req
	require.Equal(t, "application/json", req.Header.Get("Content-Type"))
	require.Equal(t, saleEvent().ID, req.Header.Get("X-Event-ID"))
	ts, err := strconv.ParseInt(req.Header.Get("X-Timestamp"), 10, 64)
	require.NoError(t, err)
	require.Equal(t, notify.ComputeSignature("secret", ts, saleEvent().ID, record.body), req.Header.Get("X-Signature"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(record.body, &body))
	require.Equal(t, "sale.committed", body["topic"])
	require.Equal(t, "F001-000001", body["aggregateId"])
	require.Equal(t, map[string]any{"total": "82.60"}, body["data"])
}

func TestWebhookTopicFilterAndFailures(t *testing.T) {
	srv, received := newEndpoint(t, http.StatusInternalServerError)
	hook := &notify.Webhook{
		URL:    srv.URL,
		Client: srv.Client(),
		Topics: map[string]bool{events.TopicStockReassigned: true},
	}
	require.NoError(t, hook.Notify(context.Background(), saleEvent()))
	require.Empty(t, received)

	ev := saleEvent()
	ev.Topic = events.TopicStockReassigned
	require.Error(t, hook.Notify(context.Background(), ev))
	<-received

	insecure := &notify.Webhook{URL: "http://example.com/hook"}
	require.Error(t, insecure.Notify(context.Background(), ev))

	var disabled *notify.Webhook
	require.NoError(t, disabled.Notify(context.Background(), ev))
}

func TestWebhookReplayGuard(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	srv, received := newEndpoint(t, http.StatusNoContent)
	hook := &notify.Webhook{
		URL:       srv.URL,
		Client:    srv.Client(),
		Replay:    notify.RedisReplayGuard{Client: client},
		ReplayTTL: time.Minute,
	}
	require.NoError(t, hook.Notify(context.Background(), saleEvent()))
	require.NoError(t, hook.Notify(context.Background(), saleEvent()))
	require.Len(t, received, 1)
	require.True(t, mr.Exists("pos:webhook:"+saleEvent().ID))
}

func TestWebhookRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	hook := &notify.Webhook{
		URL:    srv.URL,
		Client: srv.Client(),
		Retry: resilience.Retry{
			MaxAttempts: 3,
			Sleep:       func(context.Context, time.Duration) error { return nil },
		},
	}
	require.NoError(t, hook.Notify(context.Background(), saleEvent()))
	require.EqualValues(t, 2, calls.Load())
}

func TestWebhookDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	hook := &notify.Webhook{
		URL:    srv.URL,
		Client: srv.Client(),
		Retry: resilience.Retry{
			MaxAttempts: 3,
			Sleep:       func(context.Context, time.Duration) error { return nil },
		},
	}
	require.Error(t, hook.Notify(context.Background(), saleEvent()))
	require.EqualValues(t, 1, calls.Load())
}
