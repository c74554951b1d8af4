package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/queue"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	f.opts = append(f.opts, opts)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func sampleEvent() events.Event {
	return events.Event{
		ID:          "0b9c3c8e-4d1e-4a5f-8f62-6c8f2d7a9b10",
		Topic:       events.TopicSaleCommitted,
		AggregateID: "F001-000001",
		Payload:     json.RawMessage(`{"total":"82.60"}`),
		OccurredAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestAsynqPublisherEnqueuesEventTask(t *testing.T) {
	client := &fakeEnqueuer{}
	pub := &queue.AsynqPublisher{Client: client}

	require.NoError(t, pub.Publish(context.Background(), sampleEvent()))
	require.Len(t, client.tasks, 1)
	require.Equal(t, "event:sale.committed", client.tasks[0].Type())

	decoded, err := queue.DecodeTask(client.tasks[0])
	require.NoError(t, err)
	require.Equal(t, sampleEvent().ID, decoded.ID)
	require.Equal(t, "F001-000001", decoded.AggregateID)
	require.JSONEq(t, `{"total":"82.60"}`, string(decoded.Payload))

	var types []asynq.OptionType
	for _, opt := range client.opts[0] {
		types = append(types, opt.Type())
	}
	require.Contains(t, types, asynq.QueueOpt)
	require.Contains(t, types, asynq.MaxRetryOpt)
	require.Contains(t, types, asynq.TaskIDOpt)
}

func TestAsynqPublisherConflictsAndErrors(t *testing.T) {
	pub := &queue.AsynqPublisher{Client: &fakeEnqueuer{err: asynq.ErrTaskIDConflict}}
	require.NoError(t, pub.Publish(context.Background(), sampleEvent()))

	pub = &queue.AsynqPublisher{Client: &fakeEnqueuer{err: errors.New("redis down")}}
	require.ErrorContains(t, pub.Publish(context.Background(), sampleEvent()), "redis down")

	bad := sampleEvent()
	bad.Topic = "Sale Committed"
	require.Error(t, (&queue.AsynqPublisher{Client: &fakeEnqueuer{}}).Publish(context.Background(), bad))

	var unset *queue.AsynqPublisher
	require.Error(t, unset.Publish(context.Background(), sampleEvent()))
}

type fakeWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisherWritesKeyedMessage(t *testing.T) {
	w := &fakeWriter{}
	pub := &queue.KafkaPublisher{Writer: w, Prefix: "pos."}

	require.NoError(t, pub.Publish(context.Background(), sampleEvent()))
	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	require.Equal(t, "pos.sale.committed", msg.Topic)
	require.Equal(t, "F001-000001", string(msg.Key))
	require.Equal(t, "event-id", msg.Headers[0].Key)

	var ev events.Event
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	require.Equal(t, sampleEvent().ID, ev.ID)

	require.NoError(t, pub.Close())
	require.True(t, w.closed)

	_, err := queue.NewKafkaPublisher(nil, "")
	require.Error(t, err)
}
