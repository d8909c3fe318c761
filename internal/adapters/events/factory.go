package events

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
	"github.com/zatekoja/careroute/backend/internal/domain/providers"
	redisclient "github.com/zatekoja/careroute/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/careroute/backend/pkg/config"
)

// NoopPublisher drops events, used when EVENTS_BACKEND=none
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *entities.TriageEvent) error { return nil }
func (NoopPublisher) Close() error                                         { return nil }

// NewPublisher builds the publisher selected by cfg.Backend. The redis
// backend needs a connected client.
func NewPublisher(cfg *config.EventsConfig, redis *redisclient.Client) (providers.TriageEventPublisher, error) {
	switch cfg.Backend {
	case "", "none":
		return NoopPublisher{}, nil
	case "redis":
		if redis == nil {
			return nil, fmt.Errorf("events backend redis requires REDIS_HOST")
		}
		log.Info().Str("channel", cfg.RedisChannel).Msg("publishing triage events to Redis")
		return NewRedisTriageBus(redis, cfg.RedisChannel), nil
	case "kafka":
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("events backend kafka requires KAFKA_BROKERS")
		}
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing triage events to Kafka")
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

// NewSubscriber builds a subscriber for the configured backend, or nil when
// events are disabled. Kafka subscribers join cfg.KafkaGroupID, defaulting
// to a per-host group so every API replica sees every event.
func NewSubscriber(cfg *config.EventsConfig, redis *redisclient.Client) (providers.TriageEventSubscriber, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "redis":
		if redis == nil {
			return nil, fmt.Errorf("events backend redis requires REDIS_HOST")
		}
		return NewRedisTriageBus(redis, cfg.RedisChannel), nil
	case "kafka":
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("events backend kafka requires KAFKA_BROKERS")
		}
		group := cfg.KafkaGroupID
		if group == "" {
			host, _ := os.Hostname()
			group = "careroute-stream-" + host
		}
		return NewKafkaSubscriber(cfg.KafkaBrokers, cfg.KafkaTopic, group), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}
