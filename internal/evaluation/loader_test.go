package evaluation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "golden.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadGoldenCases(t *testing.T) {
	path := writeTempFile(t, `[
		{"id": "c1", "text": "crushing chest pain", "language": "en", "expected_urgency": "HIGH", "expected_specialties": ["Cardiology"], "difficulty": "easy"},
		{"id": "c2", "text": "बुखार", "language": "hi", "expected_urgency": "MEDIUM", "expected_specialties": ["General Medicine"], "difficulty": "medium"}
	]`)

	cases, err := LoadGoldenCases(path)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, entities.UrgencyHigh, cases[0].ExpectedUrgency)
	assert.Equal(t, entities.LanguageHindi, cases[1].Language)
	assert.NoError(t, ValidateGoldenCases(cases))
}

func TestLoadGoldenCases_Errors(t *testing.T) {
	_, err := LoadGoldenCases("/nonexistent/path.json")
	assert.Error(t, err)

	_, err = LoadGoldenCases(writeTempFile(t, `not valid json`))
	assert.Error(t, err)
}

func TestValidateGoldenCases(t *testing.T) {
	valid := GoldenCase{
		ID:                  "c1",
		Text:                "headache",
		ExpectedUrgency:     entities.UrgencyLow,
		ExpectedSpecialties: []string{"Neurology"},
		Difficulty:          "easy",
	}

	tests := []struct {
		name   string
		mutate func(c *GoldenCase)
		errMsg string
	}{
		{"missing id", func(c *GoldenCase) { c.ID = "" }, "missing id"},
		{"missing text", func(c *GoldenCase) { c.Text = "" }, "missing text"},
		{"bad language", func(c *GoldenCase) { c.Language = "fr" }, "unsupported language"},
		{"bad urgency", func(c *GoldenCase) { c.ExpectedUrgency = "CRITICAL" }, "invalid expected urgency"},
		{"no specialties", func(c *GoldenCase) { c.ExpectedSpecialties = nil }, "no expected specialties"},
		{"bad difficulty", func(c *GoldenCase) { c.Difficulty = "trivial" }, "invalid difficulty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := ValidateGoldenCases([]GoldenCase{c})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	err := ValidateGoldenCases([]GoldenCase{valid, valid})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
}
