package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

// LoadGoldenCases reads and parses a golden triage set from a JSON file.
func LoadGoldenCases(path string) ([]GoldenCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read golden cases file: %w", err)
	}

	var cases []GoldenCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse golden cases: %w", err)
	}

	return cases, nil
}

var validDifficulties = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
}

// ValidateGoldenCases checks that every case has the required fields and
// valid labels. An empty language means English.
func ValidateGoldenCases(cases []GoldenCase) error {
	seen := make(map[string]struct{}, len(cases))

	for i, c := range cases {
		if c.ID == "" {
			return fmt.Errorf("case at index %d: missing id", i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("case at index %d: duplicate id %q", i, c.ID)
		}
		seen[c.ID] = struct{}{}

		if c.Text == "" {
			return fmt.Errorf("case %q: missing text", c.ID)
		}
		if c.Language != "" && !slices.Contains(entities.SupportedLanguages, c.Language) {
			return fmt.Errorf("case %q: unsupported language %q", c.ID, c.Language)
		}
		if _, ok := entities.ParseUrgency(string(c.ExpectedUrgency)); !ok {
			return fmt.Errorf("case %q: invalid expected urgency %q", c.ID, c.ExpectedUrgency)
		}
		if len(c.ExpectedSpecialties) == 0 {
			return fmt.Errorf("case %q: no expected specialties", c.ID)
		}
		if !validDifficulties[c.Difficulty] {
			return fmt.Errorf("case %q: invalid difficulty %q (must be easy/medium/hard)", c.ID, c.Difficulty)
		}
	}

	return nil
}
