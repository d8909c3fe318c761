package entities

import "strings"

// UrgencyLevel is the coarse triage bucket
type UrgencyLevel string

const (
	UrgencyHigh   UrgencyLevel = "HIGH"
	UrgencyMedium UrgencyLevel = "MEDIUM"
	UrgencyLow    UrgencyLevel = "LOW"
)

// Urgency score bounds
const (
	MinUrgencyScore = 1
	MaxUrgencyScore = 10
)

// ParseUrgency accepts a label in any case. ok is false for anything other
// than HIGH, MEDIUM or LOW.
func ParseUrgency(s string) (UrgencyLevel, bool) {
	switch UrgencyLevel(strings.ToUpper(strings.TrimSpace(s))) {
	case UrgencyHigh:
		return UrgencyHigh, true
	case UrgencyMedium:
		return UrgencyMedium, true
	case UrgencyLow:
		return UrgencyLow, true
	}
	return "", false
}

// UrgencyFromScore derives a label for a 1-10 score.
func UrgencyFromScore(score int) UrgencyLevel {
	switch {
	case score >= 8:
		return UrgencyHigh
	case score >= 5:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// ClampUrgencyScore forces score into [1, 10].
func ClampUrgencyScore(score int) int {
	if score < MinUrgencyScore {
		return MinUrgencyScore
	}
	if score > MaxUrgencyScore {
		return MaxUrgencyScore
	}
	return score
}

// Language is a supported input language code
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageKannada Language = "kn"
	LanguageHindi   Language = "hi"
	LanguageTamil   Language = "ta"
)

// SupportedLanguages lists the accepted language codes
var SupportedLanguages = []Language{LanguageEnglish, LanguageKannada, LanguageHindi, LanguageTamil}

// IsRegional reports whether l is one of the non-English catalog languages.
func (l Language) IsRegional() bool {
	return l == LanguageKannada || l == LanguageHindi || l == LanguageTamil
}

// Symptom is a catalog record describing one recognisable complaint
type Symptom struct {
	ID           string              `json:"id" yaml:"id"`
	Name         string              `json:"name" yaml:"name"`
	Keywords     []string            `json:"keywords" yaml:"keywords"`
	Translations map[Language]string `json:"translations,omitempty" yaml:"translations,omitempty"`
	Urgency      UrgencyLevel        `json:"urgency" yaml:"urgency"`
	UrgencyScore int                 `json:"urgency_score" yaml:"urgency_score"`
	Specialties  []string            `json:"specialties" yaml:"specialties"`
	FirstAid     []string            `json:"first_aid" yaml:"first_aid"`
	RedFlags     []string            `json:"red_flags" yaml:"red_flags"`
	Description  string              `json:"description" yaml:"description"`
}

// Key returns the identity used for deduplication.
func (s *Symptom) Key() string {
	if s.ID != "" {
		return s.ID
	}
	return s.Name
}

// Term returns the catalog term for a regional language, if any.
func (s *Symptom) Term(lang Language) (string, bool) {
	t, ok := s.Translations[lang]
	if !ok || strings.TrimSpace(t) == "" {
		return "", false
	}
	return t, true
}

// Symptom match scores
const (
	MatchScoreSubstring = 7
	MatchScoreExact     = 10
)

// MatchedSymptom is a catalog symptom found in user text
type MatchedSymptom struct {
	*Symptom
	MatchScore      int      `json:"match_score"`
	MatchedKeywords []string `json:"matched_keywords"`
}
