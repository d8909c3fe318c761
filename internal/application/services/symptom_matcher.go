package services

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/zatekoja/careroute/backend/internal/catalog"
	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

var languageNames = map[string]entities.Language{
	"english": entities.LanguageEnglish,
	"kannada": entities.LanguageKannada,
	"hindi":   entities.LanguageHindi,
	"tamil":   entities.LanguageTamil,
}

// ParseLanguage resolves a BCP 47 tag ("hi", "kn-IN") or a language name
// ("Tamil") to a supported language. An empty string is English.
func ParseLanguage(s string) (entities.Language, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return entities.LanguageEnglish, true
	}
	if l, ok := languageNames[strings.ToLower(s)]; ok {
		return l, true
	}

	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	candidate := entities.Language(base.String())
	for _, l := range entities.SupportedLanguages {
		if l == candidate {
			return l, true
		}
	}
	return "", false
}

// NormalizeSymptomText applies the catalog's text normalization to user
// input.
func NormalizeSymptomText(text string) string {
	return catalog.NormalizeText(text)
}

// foldTerm prepares a regional-language term for case-insensitive
// containment checks against normalized text.
func foldTerm(s string) string {
	return cases.Fold().String(catalog.NormalizeText(s))
}

type keywordPattern struct {
	keyword string
	word    *regexp.Regexp
}

type symptomPatterns struct {
	symptom  *entities.Symptom
	keywords []keywordPattern
	regional map[entities.Language]string
}

// SymptomMatcher finds catalog symptoms referenced in free text. It is
// immutable after construction and safe for concurrent use.
type SymptomMatcher struct {
	records []symptomPatterns
}

// NewSymptomMatcher precompiles the keyword patterns of every record.
func NewSymptomMatcher(c *catalog.SymptomCatalog) *SymptomMatcher {
	m := &SymptomMatcher{records: make([]symptomPatterns, 0, c.Len())}
	for _, s := range c.All() {
		p := symptomPatterns{
			symptom:  s,
			keywords: make([]keywordPattern, 0, len(s.Keywords)),
			regional: make(map[entities.Language]string, len(s.Translations)),
		}
		for _, kw := range s.Keywords {
			p.keywords = append(p.keywords, keywordPattern{
				keyword: kw,
				word:    regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`),
			})
		}
		for lang, term := range s.Translations {
			if folded := foldTerm(term); folded != "" {
				p.regional[lang] = folded
			}
		}
		m.records = append(m.records, p)
	}
	return m
}

// Match normalizes text and returns the matching symptoms, best first.
func (m *SymptomMatcher) Match(text string, lang entities.Language) []entities.MatchedSymptom {
	return m.MatchNormalized(NormalizeSymptomText(text), lang)
}

// MatchNormalized matches text already passed through NormalizeSymptomText.
// The result is ordered by match score then urgency score, both descending,
// and holds at most one entry per symptom. An empty result is valid.
func (m *SymptomMatcher) MatchNormalized(text string, lang entities.Language) []entities.MatchedSymptom {
	matches := make([]entities.MatchedSymptom, 0)
	if text == "" {
		return matches
	}

	var folded string
	if lang.IsRegional() {
		folded = cases.Fold().String(text)
	}

	seen := make(map[string]struct{})
	for _, rec := range m.records {
		score := 0
		var matched []string

		if lang.IsRegional() {
			if term, ok := rec.regional[lang]; ok && strings.Contains(folded, term) {
				score = entities.MatchScoreExact
				matched = append(matched, term)
			}
		}

		for _, kp := range rec.keywords {
			if kp.word.MatchString(text) {
				score = entities.MatchScoreExact
				matched = append(matched, kp.keyword)
				break
			}
			if strings.Contains(text, kp.keyword) {
				score = max(score, entities.MatchScoreSubstring)
				matched = append(matched, kp.keyword)
			}
		}

		if score == 0 {
			continue
		}
		key := rec.symptom.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		matches = append(matches, entities.MatchedSymptom{
			Symptom:         rec.symptom,
			MatchScore:      score,
			MatchedKeywords: matched,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].MatchScore != matches[j].MatchScore {
			return matches[i].MatchScore > matches[j].MatchScore
		}
		return matches[i].UrgencyScore > matches[j].UrgencyScore
	})

	return matches
}
