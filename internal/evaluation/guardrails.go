package evaluation

import "fmt"

// GuardrailConfig sets the minimum quality a triage run must reach.
type GuardrailConfig struct {
	MinUrgencyAccuracy float64
	MaxUnderTriageRate float64
	MinRecallAt3       float64
}

type Guardrails struct {
	config GuardrailConfig
}

// NewGuardrails fills unset limits. Under-triage defaults to zero tolerance.
func NewGuardrails(config GuardrailConfig) *Guardrails {
	if config.MinUrgencyAccuracy <= 0 {
		config.MinUrgencyAccuracy = 0.8
	}
	if config.MinRecallAt3 <= 0 {
		config.MinRecallAt3 = 0.6
	}
	return &Guardrails{config: config}
}

// Check returns one message per violated limit; empty means the run passes.
func (g *Guardrails) Check(s *Summary) []string {
	if s == nil || s.TotalCases == 0 {
		return []string{"no golden cases were evaluated"}
	}

	var violations []string
	if s.UrgencyAccuracy < g.config.MinUrgencyAccuracy {
		violations = append(violations, fmt.Sprintf("urgency accuracy %.2f below %.2f", s.UrgencyAccuracy, g.config.MinUrgencyAccuracy))
	}
	if s.UnderTriageRate > g.config.MaxUnderTriageRate {
		violations = append(violations, fmt.Sprintf("under-triage rate %.2f above %.2f", s.UnderTriageRate, g.config.MaxUnderTriageRate))
	}
	if s.AvgRecallAt3 < g.config.MinRecallAt3 {
		violations = append(violations, fmt.Sprintf("specialty recall@3 %.2f below %.2f", s.AvgRecallAt3, g.config.MinRecallAt3))
	}
	return violations
}
