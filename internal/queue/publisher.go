package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/obs"
)

// DefaultQueue is the asynq queue event tasks are written to.
const DefaultQueue = "events"

const taskPrefix = "event:"

// TaskType maps an event topic to its asynq task type.
func TaskType(topic string) string {
	return taskPrefix + topic
}

// Enqueuer is the subset of *asynq.Client used by AsynqPublisher.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqPublisher turns domain events into asynq tasks. The event ID doubles as
// the task ID so a retried publish never produces a second task.
type AsynqPublisher struct {
	Client    Enqueuer
	Queue     string
	MaxRetry  int
	Retention time.Duration
}

// Publish implements events.Publisher.
func (p *AsynqPublisher) Publish(ctx context.Context, event events.Event) error {
	if p == nil || p.Client == nil {
		return errors.New("queue: asynq client not configured")
	}
	if !validKind(event.Topic) {
		return fmt.Errorf("queue: invalid topic %q", event.Topic)
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("queue: encode event: %w", err)
	}
	queue := p.Queue
	if queue == "" {
		queue = DefaultQueue
	}
	maxRetry := p.MaxRetry
	if maxRetry <= 0 {
		maxRetry = 10
	}
	opts := []asynq.Option{asynq.Queue(queue), asynq.MaxRetry(maxRetry)}
	if event.ID != "" {
		opts = append(opts, asynq.TaskID(event.ID))
	}
	if p.Retention > 0 {
		opts = append(opts, asynq.Retention(p.Retention))
	}
	_, err = p.Client.EnqueueContext(ctx, asynq.NewTask(TaskType(event.Topic), raw), opts...)
	switch {
	case err == nil:
		countPublish(event.Topic, "enqueued")
		return nil
	case errors.Is(err, asynq.ErrTaskIDConflict), errors.Is(err, asynq.ErrDuplicateTask):
		countPublish(event.Topic, "duplicate")
		return nil
	default:
		countPublish(event.Topic, "error")
		return fmt.Errorf("queue: enqueue %s: %w", event.Topic, err)
	}
}

func countPublish(topic, result string) {
	if obs.EventsPublishedTotal != nil {
		obs.EventsPublishedTotal.WithLabelValues(topic, result).Inc()
	}
}

func validKind(kind string) bool {
	if kind == "" {
		return false
	}
	for i := 0; i < len(kind); i++ {
		c := kind[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '.' || c == ':':
		default:
			return false
		}
	}
	return true
}
