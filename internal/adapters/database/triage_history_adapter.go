package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
	"github.com/zatekoja/careroute/backend/internal/domain/repositories"
	"github.com/zatekoja/careroute/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/careroute/backend/pkg/errors"
)

const triageHistoryTable = "triage_history"

// TriageHistoryAdapter implements triage history persistence in Postgres.
type TriageHistoryAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewTriageHistoryAdapter creates a new triage history adapter.
func NewTriageHistoryAdapter(client *postgres.Client) repositories.TriageHistoryRepository {
	return &TriageHistoryAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Save inserts one history entry.
func (a *TriageHistoryAdapter) Save(ctx context.Context, entry *entities.TriageHistoryEntry) error {
	if entry == nil {
		return apperrors.NewInternalError("history entry is nil", fmt.Errorf("history entry is nil"))
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	record := goqu.Record{
		"id":               entry.ID,
		"session_id":       entry.SessionID,
		"symptom_text":     entry.SymptomText,
		"language":         string(entry.Language),
		"urgency_level":    string(entry.Urgency),
		"urgency_score":    entry.UrgencyScore,
		"specialties":      pq.Array(entry.Specialties),
		"matched_symptoms": pq.Array(entry.MatchedSymptoms),
		"ai_powered":       entry.AIPowered,
		"created_at":       entry.CreatedAt,
	}

	query, args, err := a.db.Insert(triageHistoryTable).Rows(record).Prepared(true).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build history insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to save triage history", err)
	}
	return nil
}

// ListBySession returns a session's entries, newest first.
func (a *TriageHistoryAdapter) ListBySession(ctx context.Context, sessionID string, limit int) ([]*entities.TriageHistoryEntry, error) {
	query, args, err := a.db.From(triageHistoryTable).
		Select("id", "session_id", "symptom_text", "language", "urgency_level", "urgency_score",
			"specialties", "matched_symptoms", "ai_powered", "created_at").
		Where(goqu.C("session_id").Eq(sessionID)).
		Order(goqu.C("created_at").Desc()).
		Limit(uint(limit)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build history query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list triage history", err)
	}
	defer rows.Close()

	entries := make([]*entities.TriageHistoryEntry, 0)
	for rows.Next() {
		e := &entities.TriageHistoryEntry{}
		var language, urgency string
		if err := rows.Scan(
			&e.ID,
			&e.SessionID,
			&e.SymptomText,
			&language,
			&urgency,
			&e.UrgencyScore,
			pq.Array(&e.Specialties),
			pq.Array(&e.MatchedSymptoms),
			&e.AIPowered,
			&e.CreatedAt,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan triage history", err)
		}
		e.Language = entities.Language(language)
		e.Urgency = entities.UrgencyLevel(urgency)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read triage history", err)
	}

	return entries, nil
}
