package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
	redisclient "github.com/zatekoja/careroute/backend/internal/infrastructure/clients/redis"
)

const subscriberBuffer = 100

// RedisTriageBus publishes triage events on a Redis Pub/Sub channel and fans
// them out to local subscribers.
type RedisTriageBus struct {
	client      *redisclient.Client
	channel     string
	pubsub      *redis.PubSub
	subscribers map[chan *entities.TriageEvent]struct{}
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewRedisTriageBus creates a bus bound to one channel
func NewRedisTriageBus(client *redisclient.Client, channel string) *RedisTriageBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisTriageBus{
		client:      client,
		channel:     channel,
		subscribers: make(map[chan *entities.TriageEvent]struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Publish sends the event to the channel
func (b *RedisTriageBus) Publish(ctx context.Context, event *entities.TriageEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal triage event: %w", err)
	}

	if err := b.client.Client().Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish triage event: %w", err)
	}

	log.Debug().Str("channel", b.channel).Str("event_id", event.ID).Msg("published triage event")
	return nil
}

// Subscribe returns a channel of events that closes when ctx is done or the
// bus is closed.
func (b *RedisTriageBus) Subscribe(ctx context.Context) (<-chan *entities.TriageEvent, error) {
	b.mu.Lock()
	if b.pubsub == nil {
		pubsub := b.client.Client().Subscribe(b.ctx, b.channel)
		if _, err := pubsub.Receive(ctx); err != nil {
			b.mu.Unlock()
			_ = pubsub.Close()
			return nil, fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
		}
		b.pubsub = pubsub
		go b.receiveMessages(pubsub)
	}

	eventChan := make(chan *entities.TriageEvent, subscriberBuffer)
	b.subscribers[eventChan] = struct{}{}
	count := len(b.subscribers)
	b.mu.Unlock()

	log.Info().Str("channel", b.channel).Int("subscribers", count).Msg("subscribed to triage events")

	go func() {
		select {
		case <-ctx.Done():
		case <-b.ctx.Done():
		}
		b.removeSubscriber(eventChan)
	}()

	return eventChan, nil
}

func (b *RedisTriageBus) receiveMessages(pubsub *redis.PubSub) {
	ch := pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.dispatch(msg.Payload)
		}
	}
}

// dispatch decodes one payload and hands it to every subscriber without
// blocking on slow readers.
func (b *RedisTriageBus) dispatch(payload string) {
	var event entities.TriageEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		log.Warn().Err(err).Str("channel", b.channel).Msg("dropping undecodable triage event")
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for subscriber := range b.subscribers {
		select {
		case subscriber <- &event:
		default:
			log.Warn().Str("channel", b.channel).Str("event_id", event.ID).Msg("subscriber channel full, skipping event")
		}
	}
}

func (b *RedisTriageBus) removeSubscriber(eventChan chan *entities.TriageEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[eventChan]; !ok {
		return
	}
	delete(b.subscribers, eventChan)
	close(eventChan)

	if len(b.subscribers) == 0 && b.pubsub != nil {
		_ = b.pubsub.Close()
		b.pubsub = nil
		log.Info().Str("channel", b.channel).Msg("closed triage event subscription")
	}
}

// Close stops delivery and closes every subscriber channel. The Redis client
// itself is owned by the caller.
func (b *RedisTriageBus) Close() error {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()
	for subscriber := range b.subscribers {
		close(subscriber)
	}
	b.subscribers = make(map[chan *entities.TriageEvent]struct{})

	if b.pubsub != nil {
		err := b.pubsub.Close()
		b.pubsub = nil
		if err != nil {
			return fmt.Errorf("failed to close subscription %s: %w", b.channel, err)
		}
	}
	return nil
}
