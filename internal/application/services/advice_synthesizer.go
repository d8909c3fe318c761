package services

import (
	"fmt"
	"sort"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

const (
	noSymptomsDescription       = "No specific symptoms identified. Please consult a healthcare provider."
	defaultSymptomDescription   = "Medical attention may be needed."
	emptyAnalysisRecommendation = "No specific symptoms identified. Please describe your symptoms in more detail or consult a general physician."
)

var urgencyPrefix = map[entities.UrgencyLevel]string{
	entities.UrgencyHigh:   "⚠️ URGENT: ",
	entities.UrgencyMedium: "⚡ Important: ",
	entities.UrgencyLow:    "ℹ️ ",
}

var urgencyAdvice = map[entities.UrgencyLevel]string{
	entities.UrgencyHigh:   " Please seek immediate medical attention or visit the emergency department.",
	entities.UrgencyMedium: " It's advisable to see a doctor soon, preferably within 24-48 hours.",
	entities.UrgencyLow:    " Monitor your symptoms and consult a doctor if they persist or worsen.",
}

// GenericFirstAid is returned when no matched symptom carries tips.
var GenericFirstAid = []string{
	"Rest and avoid strenuous activity",
	"Stay hydrated with water",
	"Monitor your symptoms",
	"Avoid self-medication",
	"Seek medical advice if symptoms worsen",
}

// Tips attached to the analysis when nothing in the text was recognised.
var emptyAnalysisFirstAid = []string{
	"Rest and monitor symptoms",
	"Stay hydrated",
	"Maintain a healthy diet",
}

// Advice is the user-facing text derived from a set of matches
type Advice struct {
	Description string
	FirstAid    []string
	RedFlags    []string
}

// SynthesizeAdvice builds the description, first-aid tips and red flags.
// matches must be in MatchNormalized order; the first entry drives the
// description.
func SynthesizeAdvice(matches []entities.MatchedSymptom, urgency entities.UrgencyLevel) Advice {
	return Advice{
		Description: describe(matches, urgency),
		FirstAid:    collectFirstAid(matches),
		RedFlags:    collectRedFlags(matches),
	}
}

func describe(matches []entities.MatchedSymptom, urgency entities.UrgencyLevel) string {
	if len(matches) == 0 {
		return noSymptomsDescription
	}

	prefix, ok := urgencyPrefix[urgency]
	if !ok {
		urgency = entities.UrgencyLow
		prefix = urgencyPrefix[urgency]
	}

	base := matches[0].Description
	if base == "" {
		base = defaultSymptomDescription
	}

	var count string
	if len(matches) > 1 {
		count = fmt.Sprintf(" You have reported %d concerning symptoms.", len(matches))
	}

	return prefix + base + count + urgencyAdvice[urgency]
}

func collectFirstAid(matches []entities.MatchedSymptom) []string {
	ordered := make([]entities.MatchedSymptom, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].UrgencyScore > ordered[j].UrgencyScore
	})

	tips := make([]string, 0, entities.MaxFirstAid)
	seen := make(map[string]struct{})
	for _, m := range ordered {
		for _, tip := range m.FirstAid {
			if _, ok := seen[tip]; ok || tip == "" {
				continue
			}
			seen[tip] = struct{}{}
			tips = append(tips, tip)
			if len(tips) == entities.MaxFirstAid {
				return tips
			}
		}
	}

	if len(tips) == 0 {
		return append([]string(nil), GenericFirstAid...)
	}
	return tips
}

func collectRedFlags(matches []entities.MatchedSymptom) []string {
	flags := make([]string, 0)
	seen := make(map[string]struct{})
	for _, m := range matches {
		if m.Urgency != entities.UrgencyHigh && m.UrgencyScore < 7 {
			continue
		}
		for _, flag := range m.RedFlags {
			if _, ok := seen[flag]; ok || flag == "" {
				continue
			}
			seen[flag] = struct{}{}
			flags = append(flags, flag)
			if len(flags) == entities.MaxRedFlags {
				return flags
			}
		}
	}
	return flags
}
