package repositories

import (
	"context"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

// TriageHistoryRepository stores analyses for a caller-supplied session
type TriageHistoryRepository interface {
	Save(ctx context.Context, entry *entities.TriageHistoryEntry) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*entities.TriageHistoryEntry, error)
}
