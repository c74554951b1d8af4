package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/obs"
)

// EventHandler processes one decoded event.
type EventHandler func(ctx context.Context, event events.Event) error

// DecodeTask restores the event carried by an event task.
func DecodeTask(t *asynq.Task) (events.Event, error) {
	var ev events.Event
	if err := json.Unmarshal(t.Payload(), &ev); err != nil {
		return events.Event{}, fmt.Errorf("queue: decode %s: %w: %w", t.Type(), err, asynq.SkipRetry)
	}
	if ev.Topic == "" {
		ev.Topic = strings.TrimPrefix(t.Type(), taskPrefix)
	}
	return ev, nil
}

// NewEventMux registers one asynq handler per topic. Every task outcome is
// counted and failures are logged.
func NewEventMux(handlers map[string]EventHandler, logger zerolog.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Use(observe(logger))
	for topic, fn := range handlers {
		fn := fn
		mux.HandleFunc(TaskType(topic), func(ctx context.Context, t *asynq.Task) error {
			ev, err := DecodeTask(t)
			if err != nil {
				return err
			}
			return fn(ctx, ev)
		})
	}
	return mux
}

func observe(logger zerolog.Logger) asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
			err := next.ProcessTask(ctx, t)
			result := "ok"
			if err != nil {
				result = "error"
				logger.Error().Err(err).Str("task", t.Type()).Msg("task failed")
			}
			if obs.WorkerTasksTotal != nil {
				obs.WorkerTasksTotal.WithLabelValues(t.Type(), result).Inc()
			}
			return err
		})
	}
}

// Logger adapts zerolog to asynq.Logger.
type Logger struct {
	Log zerolog.Logger
}

func (l Logger) Debug(args ...any) { l.Log.Debug().Msg(fmt.Sprint(args...)) }
func (l Logger) Info(args ...any)  { l.Log.Info().Msg(fmt.Sprint(args...)) }
func (l Logger) Warn(args ...any)  { l.Log.Warn().Msg(fmt.Sprint(args...)) }
func (l Logger) Error(args ...any) { l.Log.Error().Msg(fmt.Sprint(args...)) }
func (l Logger) Fatal(args ...any) { l.Log.Fatal().Msg(fmt.Sprint(args...)) }
