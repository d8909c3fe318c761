package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
	"github.com/zatekoja/careroute/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/careroute/backend/pkg/errors"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// TriageHistoryService stores analyses per session
type TriageHistoryService struct {
	repo repositories.TriageHistoryRepository
	wait bool
}

func NewTriageHistoryService(repo repositories.TriageHistoryRepository) *TriageHistoryService {
	return &TriageHistoryService{repo: repo}
}

// Record saves the analysis in the background. Failures are logged only.
func (s *TriageHistoryService) Record(sessionID, text string, result *entities.AnalysisResult) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" || result == nil {
		return
	}

	matched := make([]string, 0, len(result.MatchedSymptoms))
	for _, m := range result.MatchedSymptoms {
		matched = append(matched, m.Key())
	}
	entry := &entities.TriageHistoryEntry{
		ID:              uuid.NewString(),
		SessionID:       sessionID,
		SymptomText:     text,
		Language:        result.Language,
		Urgency:         result.Urgency,
		UrgencyScore:    result.UrgencyScore,
		Specialties:     result.Specialties,
		MatchedSymptoms: matched,
		AIPowered:       result.AIPowered,
		CreatedAt:       time.Now().UTC(),
	}

	save := func() {
		// Use a fresh context since the request context might be cancelled
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.repo.Save(ctx, entry); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to save triage history")
		}
	}
	if s.wait {
		save()
		return
	}
	go save()
}

// List returns the most recent entries for a session, newest first
func (s *TriageHistoryService) List(ctx context.Context, sessionID string, limit int) ([]*entities.TriageHistoryEntry, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apperrors.NewValidationError("session_id is required")
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	entries, err := s.repo.ListBySession(ctx, sessionID, min(limit, MaxHistoryLimit))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load triage history", err)
	}
	return entries, nil
}
