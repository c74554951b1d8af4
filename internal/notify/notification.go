package notify

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Severity classifies a notification for display.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is a short message addressed to the operator.
type Notification struct {
	ID        string    `json:"id"`
	Severity  Severity  `json:"severity"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Sink receives notifications. Implementations must not block the caller for
// long and must tolerate being called concurrently.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

// Send is a nil-safe helper that builds and delivers a notification.
func Send(ctx context.Context, sink Sink, severity Severity, title, message string) {
	if sink == nil {
		return
	}
	sink.Notify(ctx, Notification{Severity: severity, Title: title, Message: message})
}

// Fanout delivers each notification to every sink in order.
type Fanout []Sink

func (f Fanout) Notify(ctx context.Context, n Notification) {
	for _, sink := range f {
		if sink != nil {
			sink.Notify(ctx, n)
		}
	}
}

// LogSink writes notifications to a zerolog logger.
type LogSink struct {
	Logger zerolog.Logger
}

func (s LogSink) Notify(_ context.Context, n Notification) {
	var evt *zerolog.Event
	switch n.Severity {
	case SeverityError:
		evt = s.Logger.Error()
	case SeverityWarning:
		evt = s.Logger.Warn()
	default:
		evt = s.Logger.Info()
	}
	evt.Str("severity", string(n.Severity)).Str("title", n.Title).Msg(n.Message)
}

// ErrUnknownNotification is returned by Dismiss for ids not in the center.
var ErrUnknownNotification = errors.New("notify: unknown notification")
