package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zatekoja/careroute/backend/internal/application/services"
	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

func newFacilitiesCmd(opts *options) *cobra.Command {
	var (
		specialties   []string
		urgency       string
		lat, lng      float64
		facilityType  string
		emergencyOnly bool
		open24x7      bool
		maxDistance   float64
	)

	cmd := &cobra.Command{
		Use:   "facilities",
		Short: "Rank facilities for specialties and urgency",
		RunE: func(cmd *cobra.Command, args []string) error {
			level, ok := entities.ParseUrgency(urgency)
			if !ok {
				return fmt.Errorf("urgency must be HIGH, MEDIUM, or LOW")
			}
			req := entities.FacilitySearchRequest{
				Specialties: specialties,
				Location:    location(cmd, lat, lng),
				Urgency:     level,
				Filters: entities.FacilityFilters{
					Type:          facilityType,
					EmergencyOnly: emergencyOnly,
					Open24x7:      open24x7,
				},
			}
			if cmd.Flags().Changed("max-distance") {
				if maxDistance <= 0 {
					return fmt.Errorf("max-distance must be positive")
				}
				req.Filters.MaxDistanceKm = &maxDistance
			}

			ranked := opts.rankingService().Rank(context.Background(), req)
			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), ranked)
			}
			printRanked(cmd, ranked, true)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&specialties, "specialty", "s", nil, "requested specialty, repeatable")
	f.StringVarP(&urgency, "urgency", "u", "MEDIUM", "HIGH, MEDIUM or LOW")
	f.Float64Var(&lat, "lat", 0, "patient latitude")
	f.Float64Var(&lng, "lng", 0, "patient longitude")
	f.StringVar(&facilityType, "type", "", "facility type filter, e.g. Government")
	f.BoolVar(&emergencyOnly, "emergency-only", false, "only facilities with an emergency department")
	f.BoolVar(&open24x7, "open-24-7", false, "only facilities open around the clock")
	f.Float64Var(&maxDistance, "max-distance", 0, "search radius in km")
	return cmd
}

func newEmergencyCmd(opts *options) *cobra.Command {
	var (
		lat, lng   float64
		maxResults int
	)

	cmd := &cobra.Command{
		Use:   "emergency",
		Short: "List the nearest emergency facilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
				return fmt.Errorf("--lat and --lng are required")
			}
			if maxResults < services.MinEmergencyResults || maxResults > services.MaxEmergencyResults {
				return fmt.Errorf("--max must be between %d and %d", services.MinEmergencyResults, services.MaxEmergencyResults)
			}

			nearest := opts.rankingService().NearestEmergency(context.Background(), location(cmd, lat, lng), maxResults)
			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), nearest)
			}
			if len(nearest) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No emergency facilities in range. Call 108 or your local emergency number.")
				return nil
			}
			printRanked(cmd, nearest, false)
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "patient latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "patient longitude")
	cmd.Flags().IntVarP(&maxResults, "max", "n", services.DefaultEmergencyResults, "number of facilities to list")
	return cmd
}

func printRanked(cmd *cobra.Command, ranked []entities.RankedFacility, withScore bool) {
	if len(ranked) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching facilities.")
		return
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	if withScore {
		fmt.Fprintln(tw, "ID\tNAME\tKM\tETA\tSCORE\tSPECIALTIES")
	} else {
		fmt.Fprintln(tw, "ID\tNAME\tKM\tETA\tPHONE")
	}
	for _, r := range ranked {
		if withScore {
			fmt.Fprintf(tw, "%s\t%s\t%.2f\t%dm\t%.2f\t%s\n",
				r.ID, r.Name, r.DistanceKm, r.EstimatedTimeMinutes, r.MatchScore, strings.Join(r.Specialties, ", "))
		} else {
			fmt.Fprintf(tw, "%s\t%s\t%.2f\t%dm\t%s\n", r.ID, r.Name, r.DistanceKm, r.EstimatedTimeMinutes, r.PhoneNumber)
		}
	}
	tw.Flush()
}
