package providers

import (
	"context"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

// TriageEventPublisher ships triage events to a downstream consumer
type TriageEventPublisher interface {
	// Publish sends one event. Implementations must not retain ctx.
	Publish(ctx context.Context, event *entities.TriageEvent) error

	// Close flushes and releases the underlying connection
	Close() error
}

// TriageEventSubscriber receives triage events, used by consumers and tests
type TriageEventSubscriber interface {
	Subscribe(ctx context.Context) (<-chan *entities.TriageEvent, error)
}
