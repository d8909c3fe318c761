package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuardrails_Pass(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{})

	violations := g.Check(&Summary{TotalCases: 10, UrgencyAccuracy: 0.9, AvgRecallAt3: 0.7})
	assert.Empty(t, violations)
}

func TestGuardrails_Violations(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{MinUrgencyAccuracy: 0.95, MaxUnderTriageRate: 0.05, MinRecallAt3: 0.8})

	violations := g.Check(&Summary{TotalCases: 10, UrgencyAccuracy: 0.9, UnderTriageRate: 0.1, AvgRecallAt3: 0.5})
	assert.Len(t, violations, 3)
	assert.Contains(t, violations[1], "under-triage")
}

func TestGuardrails_EmptyRun(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{})
	assert.Equal(t, []string{"no golden cases were evaluated"}, g.Check(&Summary{}))
}
