package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/noah-isme/backend-pos/internal/events"
)

// MessageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes each event to the Kafka topic Prefix+event.Topic, keyed
// by aggregate so updates to one sale or product stay ordered.
type KafkaPublisher struct {
	Writer MessageWriter
	Prefix string
}

// NewKafkaPublisher builds a publisher with one long-lived writer. The writer
// has no fixed topic; each message names its own.
func NewKafkaPublisher(brokers []string, prefix string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("queue: kafka brokers are required")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{Writer: w, Prefix: prefix}, nil
}

// Publish implements events.Publisher.
func (p *KafkaPublisher) Publish(ctx context.Context, event events.Event) error {
	if p == nil || p.Writer == nil {
		return errors.New("queue: kafka writer not configured")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("queue: encode event: %w", err)
	}
	err = p.Writer.WriteMessages(ctx, kafka.Message{
		Topic: p.Prefix + event.Topic,
		Key:   []byte(event.AggregateID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(event.ID)},
			{Key: "topic", Value: []byte(event.Topic)},
		},
		Time: event.OccurredAt,
	})
	if err != nil {
		countPublish(event.Topic, "error")
		return fmt.Errorf("queue: kafka write %s: %w", event.Topic, err)
	}
	countPublish(event.Topic, "written")
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	if p == nil || p.Writer == nil {
		return nil
	}
	return p.Writer.Close()
}
