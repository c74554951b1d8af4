package events_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/events"
)

type capturePublisher struct {
	events []events.Event
	err    error
}

func (c *capturePublisher) Publish(_ context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return c.err
}

type captureNotifier struct {
	events []events.Event
}

func (c *captureNotifier) Notify(_ context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return nil
}

func TestEmitDispatchesEvent(t *testing.T) {
	publisher := &capturePublisher{}
	notifier := &captureNotifier{}
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	bus := events.Bus{
		Publisher: publisher,
		Notifiers: []events.Notifier{notifier},
		Now:       func() time.Time { return fixed },
	}

	payload := map[string]any{"saleId": "123"}
	event, err := bus.Emit(context.Background(), events.TopicSaleCommitted, "123", payload)
	require.NoError(t, err)
	require.NotEmpty(t, event.ID)
	require.Equal(t, events.TopicSaleCommitted, event.Topic)
	require.Equal(t, fixed, event.OccurredAt)
	require.JSONEq(t, `{"saleId":"123"}`, string(event.Payload))
	require.Len(t, publisher.events, 1)
	require.Len(t, notifier.events, 1)
	require.Equal(t, event.ID, publisher.events[0].ID)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	require.Equal(t, "123", decoded["saleId"])
}

func TestEmitValidatesInput(t *testing.T) {
	bus := events.Bus{}
	_, err := bus.Emit(context.Background(), " ", "1", nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicProductSaved, "", nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicProductSaved, "1", "not json")
	require.Error(t, err)

	event, err := bus.Emit(context.Background(), events.TopicProductSaved, "1", nil)
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(event.Payload))
}

func TestEmitJoinsPublisherFailure(t *testing.T) {
	publisher := &capturePublisher{err: errors.New("broker down")}
	notifier := &captureNotifier{}
	bus := events.Bus{Publisher: publisher, Notifiers: []events.Notifier{notifier}}

	event, err := bus.Emit(context.Background(), events.TopicStockReassigned, "P001", map[string]int{"rows": 2})
	require.ErrorContains(t, err, "broker down")
	require.NotEmpty(t, event.ID)
	require.Len(t, notifier.events, 1)
}

func TestNilBusDiscards(t *testing.T) {
	var bus *events.Bus
	event, err := bus.Emit(context.Background(), events.TopicSaleCommitted, "1", nil)
	require.NoError(t, err)
	require.Empty(t, event.ID)
}

func TestLogNotifierWritesTopic(t *testing.T) {
	var buf bytes.Buffer
	bus := events.Bus{Notifiers: []events.Notifier{events.LogNotifier{Logger: zerolog.New(&buf)}}}
	_, err := bus.Emit(context.Background(), events.TopicProductDeleted, "p-1", map[string]string{"code": "P001"})
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"topic":"product.deleted"`)
	require.Contains(t, buf.String(), `"code":"P001"`)
}
