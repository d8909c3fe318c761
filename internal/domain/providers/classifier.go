package providers

import (
	"context"
	"errors"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

// ErrClassifierUnavailable is wrapped by every classifier failure: missing
// configuration, timeouts, transport errors, malformed or low-confidence
// responses. Callers fall back to the rule-based analysis on any error.
var ErrClassifierUnavailable = errors.New("symptom classifier unavailable")

// SymptomClassifier is an optional external classifier consulted before the
// rule-based urgency and specialty decision.
type SymptomClassifier interface {
	// Classify receives the cleaned symptom text. A nil error guarantees a
	// valid urgency label.
	Classify(ctx context.Context, text string) (*entities.ClassifierResult, error)

	// Name identifies the classifier in logs and metrics.
	Name() string
}
