package evaluation

import (
	"context"
	"time"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

const specialtyCutoff = 3

// Analyzer is the triage entry point under evaluation
type Analyzer interface {
	Analyze(ctx context.Context, text string, lang entities.Language) *entities.AnalysisResult
}

// Runner runs evaluation across a set of golden cases.
type Runner struct {
	analyzer Analyzer
}

func NewRunner(analyzer Analyzer) *Runner {
	return &Runner{analyzer: analyzer}
}

func (r *Runner) Run(ctx context.Context, cases []GoldenCase) (*Summary, error) {
	summary := &Summary{
		TotalCases: len(cases),
		ByUrgency:  make(map[entities.UrgencyLevel]*UrgencySummary),
	}

	for _, gc := range cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		lang := gc.Language
		if lang == "" {
			lang = entities.LanguageEnglish
		}
		expected, _ := entities.ParseUrgency(string(gc.ExpectedUrgency))

		start := time.Now()
		analysis := r.analyzer.Analyze(ctx, gc.Text, lang)
		duration := time.Since(start)

		result := CaseResult{
			CaseID:               gc.ID,
			ExpectedUrgency:      expected,
			PredictedUrgency:     analysis.Urgency,
			UrgencyCorrect:       analysis.Urgency == expected,
			UnderTriaged:         UnderTriaged(expected, analysis.Urgency),
			RecallAt3:            RecallAtK(gc.ExpectedSpecialties, analysis.Specialties, specialtyCutoff),
			MRRAt3:               MRRAtK(gc.ExpectedSpecialties, analysis.Specialties, specialtyCutoff),
			PredictedSpecialties: analysis.Specialties,
			AIPowered:            analysis.AIPowered,
			Latency:              duration,
		}

		r.updateSummary(summary, result)
	}

	r.finalizeSummary(summary)
	return summary, nil
}

func (r *Runner) updateSummary(s *Summary, res CaseResult) {
	s.AvgRecallAt3 += res.RecallAt3
	s.AvgMRRAt3 += res.MRRAt3
	s.AvgLatency += res.Latency
	if res.UrgencyCorrect {
		s.UrgencyAccuracy++
	} else {
		s.Failures = append(s.Failures, res)
	}
	if res.ExpectedUrgency == entities.UrgencyHigh {
		s.highCases++
	}
	if res.UnderTriaged {
		s.UnderTriageRate++
	}

	if _, ok := s.ByUrgency[res.ExpectedUrgency]; !ok {
		s.ByUrgency[res.ExpectedUrgency] = &UrgencySummary{}
	}
	us := s.ByUrgency[res.ExpectedUrgency]
	us.Count++
	if res.UrgencyCorrect {
		us.Correct++
	}
}

func (r *Runner) finalizeSummary(s *Summary) {
	if s.TotalCases > 0 {
		n := float64(s.TotalCases)
		s.UrgencyAccuracy /= n
		s.AvgRecallAt3 /= n
		s.AvgMRRAt3 /= n
		s.AvgLatency /= time.Duration(s.TotalCases)
	}
	// under-triage is measured against HIGH cases only
	if s.highCases > 0 {
		s.UnderTriageRate /= float64(s.highCases)
	} else {
		s.UnderTriageRate = 0
	}

	for _, us := range s.ByUrgency {
		if us.Count > 0 {
			us.Accuracy = float64(us.Correct) / float64(us.Count)
		}
	}
}
