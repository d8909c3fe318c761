package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zatekoja/careroute/backend/internal/application/services"
	"github.com/zatekoja/careroute/backend/internal/catalog"
	"github.com/zatekoja/careroute/backend/pkg/config"
	"github.com/zatekoja/careroute/backend/pkg/geo"
)

// options are shared by every subcommand
type options struct {
	symptomsPath   string
	facilitiesPath string
	format         string
	debug          bool
}

// newRootCmd builds the command tree. Catalog paths default to the same
// environment variables the API server reads.
func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "triagectl",
		Short: "Operate the careroute triage catalogs from the terminal",
		Long: `triagectl runs symptom analysis and facility ranking in-process against
the local catalog files, and validates those files before a deploy.

Examples:
  triagectl analyze "chest pain and sweating"
  triagectl analyze --language hi "सीने में दर्द"
  triagectl facilities --specialty Cardiology --urgency HIGH --lat 12.97 --lng 77.59
  triagectl emergency --lat 12.97 --lng 77.59 --max 3
  triagectl stats --format json
  triagectl validate`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.WarnLevel
			if opts.debug {
				level = zerolog.DebugLevel
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).Level(level).With().Timestamp().Logger()

			if opts.format != "text" && opts.format != "json" {
				return fmt.Errorf("unknown format %q, use text or json", opts.format)
			}
			return nil
		},
	}

	cfg, err := config.Load()
	defaults := config.CatalogConfig{SymptomsPath: "data/symptoms.json", FacilitiesPath: "data/facilities.json"}
	if err == nil {
		defaults = cfg.Catalog
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.symptomsPath, "symptoms", defaults.SymptomsPath, "symptom catalog file (JSON or YAML)")
	flags.StringVar(&opts.facilitiesPath, "facilities", defaults.FacilitiesPath, "facility catalog file (JSON or YAML)")
	flags.StringVar(&opts.format, "format", "text", "output format: text, json")
	flags.BoolVar(&opts.debug, "debug", false, "log catalog loading and ranking details")

	rootCmd.AddCommand(
		newAnalyzeCmd(opts),
		newFacilitiesCmd(opts),
		newEmergencyCmd(opts),
		newStatsCmd(opts),
		newValidateCmd(opts),
	)
	return rootCmd
}

func (o *options) analysisService() *services.SymptomAnalysisService {
	return services.NewSymptomAnalysisService(catalog.LoadSymptoms(o.symptomsPath))
}

func (o *options) rankingService() *services.FacilityRankingService {
	return services.NewFacilityRankingService(catalog.LoadFacilities(o.facilitiesPath), services.DefaultLocation, services.DefaultMaxDistanceKm)
}

// location returns nil unless both coordinates were given
func location(cmd *cobra.Command, lat, lng float64) *geo.Point {
	if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
		return nil
	}
	return &geo.Point{Latitude: lat, Longitude: lng}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
