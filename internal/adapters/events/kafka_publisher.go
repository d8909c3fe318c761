package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

// messageWriter is the subset of kafka.Writer used by the publisher
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// messageReader is the subset of kafka.Reader used by the subscriber
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes triage events to a Kafka topic keyed by urgency
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaPublisher creates a publisher for the given brokers and topic
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		MaxAttempts:  3,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	})
	return &KafkaPublisher{writer: writer, topic: topic}
}

// Publish writes one event
func (p *KafkaPublisher) Publish(ctx context.Context, event *entities.TriageEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal triage event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Urgency),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "language", Value: []byte(event.Language)},
		},
		Time: event.Timestamp,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write triage event to %s: %w", p.topic, err)
	}

	log.Debug().Str("topic", p.topic).Str("event_id", event.ID).Msg("published triage event")
	return nil
}

// Close flushes pending writes
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// KafkaSubscriber consumes triage events as part of a consumer group. Offsets
// are committed after the event is handed to the caller.
type KafkaSubscriber struct {
	reader messageReader
	topic  string
}

// NewKafkaSubscriber creates a consumer group reader
func NewKafkaSubscriber(brokers []string, topic, groupID string) *KafkaSubscriber {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
	})
	return &KafkaSubscriber{reader: reader, topic: topic}
}

// Subscribe starts a consume loop. The returned channel closes when ctx is
// done or the reader fails.
func (s *KafkaSubscriber) Subscribe(ctx context.Context) (<-chan *entities.TriageEvent, error) {
	out := make(chan *entities.TriageEvent, subscriberBuffer)

	go func() {
		defer close(out)
		for {
			msg, err := s.reader.FetchMessage(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
					log.Error().Err(err).Str("topic", s.topic).Msg("kafka fetch failed")
				}
				return
			}

			var event entities.TriageEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Warn().Err(err).Int("partition", msg.Partition).Int64("offset", msg.Offset).
					Msg("skipping undecodable triage event")
			} else {
				select {
				case out <- &event:
				case <-ctx.Done():
					return
				}
			}

			if err := s.reader.CommitMessages(ctx, msg); err != nil {
				log.Warn().Err(err).Int64("offset", msg.Offset).Msg("kafka commit failed")
			}
		}
	}()

	return out, nil
}

// Close closes the reader
func (s *KafkaSubscriber) Close() error {
	return s.reader.Close()
}
