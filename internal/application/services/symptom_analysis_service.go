package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/zatekoja/careroute/backend/internal/catalog"
	"github.com/zatekoja/careroute/backend/internal/domain/entities"
	"github.com/zatekoja/careroute/backend/internal/domain/providers"
)

const (
	// MinSymptomTextLength is the shortest description worth analysing
	MinSymptomTextLength = 3

	DefaultSymptomSearchLimit = 10
	MaxSymptomSearchLimit     = 50

	defaultClassifierTimeout = 8 * time.Second
	classifierExplanation    = "Please consult a healthcare professional."
)

// Coarse scores used when the external classifier decides urgency
var classifierUrgencyScore = map[entities.UrgencyLevel]int{
	entities.UrgencyHigh:   9,
	entities.UrgencyMedium: 5,
	entities.UrgencyLow:    2,
}

var tracer = otel.Tracer("github.com/zatekoja/careroute/backend/services")

var (
	triageMetricsOnce   sync.Once
	analysisCounter     metric.Int64Counter
	classifierFallbacks metric.Int64Counter
)

// SymptomAnalysisService triages free-text symptom descriptions against the
// symptom catalog, optionally consulting an external classifier first.
type SymptomAnalysisService struct {
	catalog           *catalog.SymptomCatalog
	matcher           *SymptomMatcher
	classifier        providers.SymptomClassifier
	classifierTimeout time.Duration
	minConfidence     float64
	now               func() time.Time
}

// AnalysisOption configures a SymptomAnalysisService
type AnalysisOption func(*SymptomAnalysisService)

// WithClassifier enables the external classifier with a per-call timeout.
// Results that report a confidence below minConfidence are discarded.
// A nil classifier leaves the rule-based path as the only path.
func WithClassifier(c providers.SymptomClassifier, timeout time.Duration, minConfidence float64) AnalysisOption {
	return func(s *SymptomAnalysisService) {
		s.classifier = c
		s.minConfidence = minConfidence
		if timeout > 0 {
			s.classifierTimeout = timeout
		}
	}
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) AnalysisOption {
	return func(s *SymptomAnalysisService) {
		s.now = now
	}
}

// NewSymptomAnalysisService creates the service over a loaded catalog
func NewSymptomAnalysisService(c *catalog.SymptomCatalog, opts ...AnalysisOption) *SymptomAnalysisService {
	s := &SymptomAnalysisService{
		catalog:           c,
		matcher:           NewSymptomMatcher(c),
		classifierTimeout: defaultClassifierTimeout,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze triages text. It never fails: empty or too-short text and text
// with no recognised symptom both yield the generic LOW result.
func (s *SymptomAnalysisService) Analyze(ctx context.Context, text string, lang entities.Language) *entities.AnalysisResult {
	ctx, span := tracer.Start(ctx, "SymptomAnalysisService.Analyze")
	defer span.End()

	if lang == "" {
		lang = entities.LanguageEnglish
	}

	cleaned := NormalizeSymptomText(text)
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinSymptomTextLength || cleaned == "" {
		result := s.emptyResult(lang)
		s.record(ctx, result)
		return result
	}

	// Rule matches are computed up front so a classifier failure never
	// re-enters the matcher.
	matches := s.matcher.MatchNormalized(cleaned, lang)
	span.SetAttributes(attribute.Int("triage.matched_count", len(matches)))

	if result, ok := s.classify(ctx, cleaned, matches, lang); ok {
		span.SetAttributes(attribute.Bool("triage.ai_powered", true))
		s.record(ctx, result)
		return result
	}

	if len(matches) == 0 {
		log.Debug().Str("language", string(lang)).Msg("no symptoms matched")
		result := s.emptyResult(lang)
		s.record(ctx, result)
		return result
	}

	urgency, score := AggregateUrgency(matches)
	advice := SynthesizeAdvice(matches, urgency)

	result := &entities.AnalysisResult{
		Urgency:         urgency,
		UrgencyScore:    score,
		MatchedSymptoms: matches,
		Specialties:     RecommendSpecialties(matches),
		Description:     advice.Description,
		FirstAid:        advice.FirstAid,
		RedFlags:        advice.RedFlags,
		AIPowered:       false,
		Language:        lang,
		Timestamp:       s.now().UTC(),
	}

	log.Info().
		Str("urgency", string(urgency)).
		Int("urgency_score", score).
		Int("matched", len(matches)).
		Strs("specialties", result.Specialties).
		Msg("rule-based analysis complete")

	s.record(ctx, result)
	return result
}

// classify consults the external classifier. ok is false whenever the
// rule-based result must be used instead.
func (s *SymptomAnalysisService) classify(ctx context.Context, cleaned string, matches []entities.MatchedSymptom, lang entities.Language) (*entities.AnalysisResult, bool) {
	if s.classifier == nil {
		return nil, false
	}

	cctx, cancel := context.WithTimeout(ctx, s.classifierTimeout)
	defer cancel()
	cctx, span := tracer.Start(cctx, "SymptomClassifier.Classify")
	defer span.End()

	res, err := s.classifier.Classify(cctx, cleaned)
	if err == nil && res == nil {
		err = errors.New("classifier returned no result")
	}
	if err == nil {
		if _, valid := entities.ParseUrgency(string(res.Urgency)); !valid {
			err = errors.New("classifier returned an invalid urgency")
		} else if res.Confidence != nil && *res.Confidence < s.minConfidence {
			err = fmt.Errorf("classifier confidence %.2f below %.2f", *res.Confidence, s.minConfidence)
		}
	}
	if err != nil {
		span.RecordError(err)
		s.recordFallback(ctx, err)
		log.Warn().Err(err).Str("classifier", s.classifier.Name()).Msg("classifier unavailable, using rule-based analysis")
		return nil, false
	}

	urgency, _ := entities.ParseUrgency(string(res.Urgency))
	advice := SynthesizeAdvice(matches, urgency)

	specialties := dedupeSpecialties(res.Specialties)
	if len(specialties) == 0 {
		specialties = []string{entities.DefaultSpecialty}
	}

	explanation := strings.TrimSpace(res.Explanation)
	if explanation == "" {
		explanation = classifierExplanation
	}

	log.Info().
		Str("urgency", string(urgency)).
		Strs("specialties", specialties).
		Str("classifier", s.classifier.Name()).
		Msg("classifier analysis complete")

	return &entities.AnalysisResult{
		Urgency:         urgency,
		UrgencyScore:    classifierUrgencyScore[urgency],
		MatchedSymptoms: matches,
		Specialties:     specialties,
		Description:     explanation,
		FirstAid:        advice.FirstAid,
		RedFlags:        advice.RedFlags,
		AIPowered:       true,
		Language:        lang,
		Timestamp:       s.now().UTC(),
	}, true
}

func (s *SymptomAnalysisService) emptyResult(lang entities.Language) *entities.AnalysisResult {
	return &entities.AnalysisResult{
		Urgency:         entities.UrgencyLow,
		UrgencyScore:    entities.MinUrgencyScore,
		MatchedSymptoms: []entities.MatchedSymptom{},
		Specialties:     []string{entities.DefaultSpecialty},
		Description:     emptyAnalysisRecommendation,
		FirstAid:        append([]string(nil), emptyAnalysisFirstAid...),
		RedFlags:        []string{},
		AIPowered:       false,
		Language:        lang,
		Timestamp:       s.now().UTC(),
	}
}

// EmergencyCheck answers whether text describes an emergency.
func (s *SymptomAnalysisService) EmergencyCheck(ctx context.Context, text string, lang entities.Language) *entities.EmergencyCheckResult {
	result := s.Analyze(ctx, text, lang)

	check := &entities.EmergencyCheckResult{
		IsEmergency:  result.Urgency == entities.UrgencyHigh,
		Urgency:      result.Urgency,
		UrgencyScore: result.UrgencyScore,
		FirstAid:     result.FirstAid,
		RedFlags:     result.RedFlags,
	}
	if check.IsEmergency {
		check.Message = "This may be a medical emergency. Call 108 or go to the nearest emergency department now."
	} else {
		check.Message = "No emergency indicators detected. Consult a doctor if symptoms persist or worsen."
	}
	return check
}

// ListSymptoms returns the whole catalog in catalog order
func (s *SymptomAnalysisService) ListSymptoms() []*entities.Symptom {
	return s.catalog.All()
}

// GetSymptom returns one catalog record
func (s *SymptomAnalysisService) GetSymptom(id string) (*entities.Symptom, bool) {
	return s.catalog.Get(id)
}

// SearchSymptoms finds records by name or keyword. A non-positive limit
// means DefaultSymptomSearchLimit; limits above MaxSymptomSearchLimit are
// capped.
func (s *SymptomAnalysisService) SearchSymptoms(query string, limit int) []*entities.Symptom {
	if limit <= 0 {
		limit = DefaultSymptomSearchLimit
	}
	return s.catalog.Search(query, min(limit, MaxSymptomSearchLimit))
}

// CatalogStatus reports how the symptom catalog was loaded
func (s *SymptomAnalysisService) CatalogStatus() catalog.Status {
	return s.catalog.Status()
}

// ClassifierEnabled reports whether an external classifier is wired in
func (s *SymptomAnalysisService) ClassifierEnabled() bool {
	return s.classifier != nil
}

func dedupeSpecialties(in []string) []string {
	out := make([]string, 0, entities.MaxSpecialties)
	seen := make(map[string]struct{})
	for _, sp := range in {
		sp = strings.TrimSpace(sp)
		key := strings.ToLower(sp)
		if sp == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, sp)
		if len(out) == entities.MaxSpecialties {
			break
		}
	}
	return out
}

func initTriageMetrics() {
	meter := otel.Meter("github.com/zatekoja/careroute/backend/triage")
	if c, err := meter.Int64Counter(
		"triage.analysis.count",
		metric.WithDescription("Number of symptom analyses by urgency and path"),
	); err == nil {
		analysisCounter = c
	}
	if c, err := meter.Int64Counter(
		"triage.classifier.fallback.count",
		metric.WithDescription("Number of classifier calls that fell back to rules"),
	); err == nil {
		classifierFallbacks = c
	}
}

func (s *SymptomAnalysisService) record(ctx context.Context, result *entities.AnalysisResult) {
	triageMetricsOnce.Do(initTriageMetrics)
	if analysisCounter == nil {
		return
	}
	path := "rules"
	if result.AIPowered {
		path = "classifier"
	}
	analysisCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("triage.urgency", string(result.Urgency)),
		attribute.String("triage.path", path),
		attribute.String("triage.language", string(result.Language)),
	))
}

func (s *SymptomAnalysisService) recordFallback(ctx context.Context, err error) {
	triageMetricsOnce.Do(initTriageMetrics)
	if classifierFallbacks == nil {
		return
	}
	reason := "error"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		reason = "timeout"
	case errors.Is(err, providers.ErrClassifierUnavailable):
		reason = "unavailable"
	}
	classifierFallbacks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("classifier", s.classifier.Name()),
		attribute.String("reason", reason),
	))
}
