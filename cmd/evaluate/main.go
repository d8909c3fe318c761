package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/careroute/backend/internal/adapters/cache"
	"github.com/zatekoja/careroute/backend/internal/application/services"
	"github.com/zatekoja/careroute/backend/internal/catalog"
	"github.com/zatekoja/careroute/backend/internal/evaluation"
	"github.com/zatekoja/careroute/backend/internal/infrastructure/clients/openai"
	"github.com/zatekoja/careroute/backend/internal/infrastructure/observability"
	"github.com/zatekoja/careroute/backend/pkg/config"
)

func main() {
	var (
		goldenPath    string
		useClassifier bool
		minAccuracy   float64
		maxUnder      float64
		minRecall     float64
	)
	flag.StringVar(&goldenPath, "golden", "config/golden_triage_cases.json", "path to the golden triage cases")
	flag.BoolVar(&useClassifier, "classifier", false, "consult the configured external classifier")
	flag.Float64Var(&minAccuracy, "min-accuracy", 0.8, "minimum urgency accuracy")
	flag.Float64Var(&maxUnder, "max-under-triage", 0, "maximum share of HIGH cases predicted lower")
	flag.Float64Var(&minRecall, "min-recall", 0.6, "minimum specialty recall@3")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger("careroute-evaluate", cfg.Environment)

	if _, err := os.Stat(goldenPath); err != nil {
		if _, alt := os.Stat("backend/" + goldenPath); alt == nil {
			goldenPath = "backend/" + goldenPath
		}
	}

	cases, err := evaluation.LoadGoldenCases(goldenPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load golden cases")
	}
	if err := evaluation.ValidateGoldenCases(cases); err != nil {
		log.Fatal().Err(err).Msg("invalid golden cases")
	}

	symptoms := catalog.LoadSymptoms(cfg.Catalog.SymptomsPath)
	if !symptoms.Status().Healthy() {
		log.Fatal().Str("reason", symptoms.Status().Reason).Msg("symptom catalog is not active")
	}

	var opts []services.AnalysisOption
	if useClassifier {
		client, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Fatal().Err(err).Msg("classifier requested but unavailable")
		}
		classifier := cache.NewCachedClassifier(client, cache.NewMemoryAdapter(0), cfg.Triage.ClassifierCacheTTL)
		opts = append(opts, services.WithClassifier(classifier, cfg.Triage.ClassifierTimeout, cfg.Triage.ClassifierMinConfidence))
	}
	analysis := services.NewSymptomAnalysisService(symptoms, opts...)

	summary, err := evaluation.NewRunner(analysis).Run(context.Background(), cases)
	if err != nil {
		log.Fatal().Err(err).Msg("evaluation failed")
	}

	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))

	guardrails := evaluation.NewGuardrails(evaluation.GuardrailConfig{
		MinUrgencyAccuracy: minAccuracy,
		MaxUnderTriageRate: maxUnder,
		MinRecallAt3:       minRecall,
	})
	if violations := guardrails.Check(summary); len(violations) > 0 {
		for _, v := range violations {
			log.Error().Str("violation", v).Msg("evaluation below threshold")
		}
		os.Exit(1)
	}
	log.Info().Int("cases", summary.TotalCases).Msg("evaluation passed")
}
