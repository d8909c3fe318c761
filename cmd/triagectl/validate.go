package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zatekoja/careroute/backend/internal/catalog"
)

type validationReport struct {
	Symptoms   catalog.Status `json:"symptoms"`
	Facilities catalog.Status `json:"facilities"`
}

func newValidateCmd(opts *options) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load both catalogs and report warnings; fails unless both are active",
		RunE: func(cmd *cobra.Command, args []string) error {
			report := validationReport{
				Symptoms:   catalog.LoadSymptoms(opts.symptomsPath).Status(),
				Facilities: catalog.LoadFacilities(opts.facilitiesPath).Status(),
			}

			if opts.format == "json" {
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				printStatus(cmd, "symptoms", report.Symptoms)
				printStatus(cmd, "facilities", report.Facilities)
			}

			var failed []string
			if !report.Symptoms.Healthy() {
				failed = append(failed, "symptoms")
			}
			if !report.Facilities.Healthy() {
				failed = append(failed, "facilities")
			}
			if strict && len(report.Symptoms.Warnings)+len(report.Facilities.Warnings) > 0 {
				failed = append(failed, "warnings present")
			}
			if len(failed) > 0 {
				return fmt.Errorf("catalog validation failed: %v", failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "also fail when a catalog loaded with warnings")
	return cmd
}

func printStatus(cmd *cobra.Command, name string, s catalog.Status) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-11s %-9s %d records  %s\n", name, s.State, s.Records, s.Source)
	if s.Reason != "" {
		fmt.Fprintf(w, "  reason: %s\n", s.Reason)
	}
	for _, warning := range s.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
}
