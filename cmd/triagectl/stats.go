package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zatekoja/careroute/backend/internal/adapters/analytics"
	"github.com/zatekoja/careroute/backend/internal/catalog"
	"github.com/zatekoja/careroute/backend/internal/domain/entities"
	"github.com/zatekoja/careroute/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/careroute/backend/pkg/config"
)

type statsOutput struct {
	Facilities *entities.CatalogStatistics `json:"facilities"`
	Symptoms   int                         `json:"symptoms"`
	Usage      *entities.AnalyticsStats    `json:"usage,omitempty"`
}

func newStatsCmd(opts *options) *cobra.Command {
	var usage bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show catalog statistics, and usage counters with --usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := statsOutput{
				Facilities: catalog.LoadFacilities(opts.facilitiesPath).Statistics(),
				Symptoms:   catalog.LoadSymptoms(opts.symptomsPath).Len(),
			}

			if usage {
				stats, err := usageCounters()
				if err != nil {
					return err
				}
				out.Usage = stats
			}

			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			printStats(cmd, out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&usage, "usage", false, "read usage counters from Redis (REDIS_HOST)")
	return cmd
}

func usageCounters() (*entities.AnalyticsStats, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if !cfg.Redis.Enabled() {
		return nil, fmt.Errorf("--usage needs REDIS_HOST")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return analytics.NewRedisAdapter(client).Snapshot(ctx)
}

func printStats(cmd *cobra.Command, s statsOutput) {
	w := cmd.OutOrStdout()
	f := s.Facilities
	fmt.Fprintf(w, "Symptoms:             %d\n", s.Symptoms)
	fmt.Fprintf(w, "Facilities:           %d\n", f.TotalFacilities)
	fmt.Fprintf(w, "  emergency:          %d\n", f.EmergencyFacilities)
	fmt.Fprintf(w, "  open 24/7:          %d\n", f.Open24x7Facilities)
	fmt.Fprintf(w, "  government/private: %d/%d\n", f.GovernmentFacilities, f.PrivateFacilities)
	fmt.Fprintf(w, "Specialties (%d):     %s\n", f.TotalSpecialties, strings.Join(f.Specialties, ", "))

	if s.Usage != nil {
		fmt.Fprintf(w, "\nAnalyses:             %d\n", s.Usage.TotalAnalyses)
		levels := make([]string, 0, len(s.Usage.ByUrgency))
		for level := range s.Usage.ByUrgency {
			levels = append(levels, level)
		}
		sort.Strings(levels)
		for _, level := range levels {
			fmt.Fprintf(w, "  %-6s              %d\n", level, s.Usage.ByUrgency[level])
		}
	}
}
