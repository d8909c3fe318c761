package catalog

import (
	"math"
	"sort"
	"strings"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

type rawSymptom struct {
	ID           string            `json:"id" yaml:"id"`
	Name         string            `json:"name" yaml:"name"`
	Keywords     []string          `json:"keywords" yaml:"keywords"`
	Translations map[string]string `json:"translations" yaml:"translations"`
	Kannada      string            `json:"kannada" yaml:"kannada"`
	Hindi        string            `json:"hindi" yaml:"hindi"`
	Tamil        string            `json:"tamil" yaml:"tamil"`
	Urgency      string            `json:"urgency" yaml:"urgency"`
	UrgencyScore *float64          `json:"urgency_score" yaml:"urgency_score"`
	Specialties  []string          `json:"specialties" yaml:"specialties"`
	FirstAid     []string          `json:"first_aid" yaml:"first_aid"`
	RedFlags     []string          `json:"red_flags" yaml:"red_flags"`
	Description  string            `json:"description" yaml:"description"`
}

// Score assumed for a valid label when the record has no urgency_score
var defaultScoreForLabel = map[entities.UrgencyLevel]int{
	entities.UrgencyHigh:   8,
	entities.UrgencyMedium: 5,
	entities.UrgencyLow:    2,
}

// SymptomCatalog is the immutable, ordered set of symptom records
type SymptomCatalog struct {
	symptoms []*entities.Symptom
	byID     map[string]*entities.Symptom
	status   Status
}

// NewSymptomCatalog builds a catalog from records already in memory. The
// same defaulting as file loading is applied.
func NewSymptomCatalog(records []entities.Symptom) *SymptomCatalog {
	raws := make([]rawSymptom, 0, len(records))
	for _, r := range records {
		score := float64(r.UrgencyScore)
		raw := rawSymptom{
			ID:          r.ID,
			Name:        r.Name,
			Keywords:    r.Keywords,
			Urgency:     string(r.Urgency),
			Specialties: r.Specialties,
			FirstAid:    r.FirstAid,
			RedFlags:    r.RedFlags,
			Description: r.Description,
		}
		if r.UrgencyScore != 0 {
			raw.UrgencyScore = &score
		}
		if len(r.Translations) > 0 {
			raw.Translations = make(map[string]string, len(r.Translations))
			for lang, term := range r.Translations {
				raw.Translations[string(lang)] = term
			}
		}
		raws = append(raws, raw)
	}
	return buildSymptomCatalog(raws, Status{Source: "memory"})
}

// LoadSymptoms reads a JSON or YAML symptom catalog. It never fails; the
// returned catalog's Status reports missing or malformed sources.
func LoadSymptoms(path string) *SymptomCatalog {
	doc := listDocument[rawSymptom]{keys: []string{"symptoms"}}
	status, err := readDocument(path, &doc)
	if err != nil {
		return buildSymptomCatalog(nil, status)
	}
	return buildSymptomCatalog(doc.items, status)
}

func buildSymptomCatalog(raws []rawSymptom, status Status) *SymptomCatalog {
	c := &SymptomCatalog{
		symptoms: make([]*entities.Symptom, 0, len(raws)),
		byID:     make(map[string]*entities.Symptom, len(raws)),
	}

	for i, raw := range raws {
		s, ok := normalizeSymptom(i, raw, &status)
		if !ok {
			continue
		}
		if _, dup := c.byID[s.ID]; dup {
			status.warnf("symptom %d: duplicate id %q dropped", i, s.ID)
			continue
		}
		c.byID[s.ID] = s
		c.symptoms = append(c.symptoms, s)
	}

	finalize(&status, len(c.symptoms))
	c.status = status
	return c
}

func normalizeSymptom(i int, raw rawSymptom, status *Status) (*entities.Symptom, bool) {
	s := &entities.Symptom{
		ID:          strings.TrimSpace(raw.ID),
		Name:        strings.TrimSpace(raw.Name),
		Specialties: dedupeStrings(raw.Specialties),
		FirstAid:    dedupeStrings(raw.FirstAid),
		RedFlags:    dedupeStrings(raw.RedFlags),
		Description: strings.TrimSpace(raw.Description),
	}

	if s.ID == "" {
		if s.Name == "" {
			status.warnf("symptom %d: no id or name, dropped", i)
			return nil, false
		}
		s.ID = s.Name
		status.warnf("symptom %d: missing id, using name %q", i, s.Name)
	}
	if s.Name == "" {
		s.Name = s.ID
	}

	for _, kw := range raw.Keywords {
		if strings.TrimSpace(kw) == "" {
			continue
		}
		normalized := NormalizeText(kw)
		switch {
		case normalized == "":
			status.warnf("symptom %q: keyword %q has no matchable words, dropped", s.ID, kw)
			continue
		case normalized != collapse(kw):
			status.warnf("symptom %q: keyword %q matches as %q", s.ID, kw, normalized)
		}
		s.Keywords = append(s.Keywords, normalized)
	}
	s.Keywords = dedupeStrings(s.Keywords)

	s.Translations = make(map[entities.Language]string)
	for lang, term := range raw.Translations {
		if term = strings.TrimSpace(term); term != "" {
			s.Translations[entities.Language(strings.ToLower(lang))] = term
		}
	}
	legacy := map[entities.Language]string{
		entities.LanguageKannada: raw.Kannada,
		entities.LanguageHindi:   raw.Hindi,
		entities.LanguageTamil:   raw.Tamil,
	}
	for lang, term := range legacy {
		term = strings.TrimSpace(term)
		if _, ok := s.Translations[lang]; !ok && term != "" {
			s.Translations[lang] = term
		}
	}
	for _, lang := range entities.SupportedLanguages {
		term, ok := s.Translations[lang]
		if !ok {
			continue
		}
		switch normalized := NormalizeText(term); {
		case normalized == "":
			status.warnf("symptom %q: %s term %q has no matchable words, dropped", s.ID, lang, term)
			delete(s.Translations, lang)
		case normalized != collapse(term):
			status.warnf("symptom %q: %s term %q matches as %q", s.ID, lang, term, normalized)
		}
	}

	label, labelOK := entities.ParseUrgency(raw.Urgency)
	switch {
	case raw.UrgencyScore != nil:
		score := int(math.Round(*raw.UrgencyScore))
		clamped := entities.ClampUrgencyScore(score)
		if clamped != score {
			status.warnf("symptom %q: urgency_score %d clamped to %d", s.ID, score, clamped)
		}
		s.UrgencyScore = clamped
	case labelOK:
		s.UrgencyScore = defaultScoreForLabel[label]
		status.warnf("symptom %q: missing urgency_score, using %d for %s", s.ID, s.UrgencyScore, label)
	default:
		s.UrgencyScore = entities.MinUrgencyScore
		status.warnf("symptom %q: missing urgency_score, using %d", s.ID, s.UrgencyScore)
	}

	if labelOK {
		s.Urgency = label
	} else {
		s.Urgency = entities.UrgencyFromScore(s.UrgencyScore)
		status.warnf("symptom %q: urgency %q invalid, derived %s from score", s.ID, raw.Urgency, s.Urgency)
	}

	return s, true
}

// All returns every record in catalog order. The slice must not be modified.
func (c *SymptomCatalog) All() []*entities.Symptom {
	return c.symptoms
}

// Len returns the number of records
func (c *SymptomCatalog) Len() int {
	return len(c.symptoms)
}

// Get returns the record with id, if present.
func (c *SymptomCatalog) Get(id string) (*entities.Symptom, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Search returns records whose name, then any keyword, contains query
// case-insensitively, in catalog order.
func (c *SymptomCatalog) Search(query string, limit int) []*entities.Symptom {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return []*entities.Symptom{}
	}

	results := make([]*entities.Symptom, 0, limit)
	for _, s := range c.symptoms {
		if len(results) == limit {
			break
		}
		if strings.Contains(strings.ToLower(s.Name), q) {
			results = append(results, s)
			continue
		}
		for _, kw := range s.Keywords {
			if strings.Contains(kw, q) {
				results = append(results, s)
				break
			}
		}
	}
	return results
}

// Specialties returns the sorted distinct specialties referenced by symptoms
func (c *SymptomCatalog) Specialties() []string {
	seen := make(map[string]struct{})
	for _, s := range c.symptoms {
		for _, sp := range s.Specialties {
			seen[sp] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for sp := range seen {
		out = append(out, sp)
	}
	sort.Strings(out)
	return out
}

// Status reports how the catalog was loaded
func (c *SymptomCatalog) Status() Status {
	return c.status
}
