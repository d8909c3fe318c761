package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zatekoja/careroute/backend/internal/application/services"
	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

func newAnalyzeCmd(opts *options) *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "analyze <symptom text>",
		Short: "Triage a symptom description with the rule-based analyzer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, ok := services.ParseLanguage(language)
			if !ok {
				return fmt.Errorf("unsupported language %q, use one of: en, kn, hi, ta", language)
			}
			text := strings.Join(args, " ")

			result := opts.analysisService().Analyze(context.Background(), text, lang)
			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			printAnalysis(cmd, result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "en", "language of the description: en, kn, hi, ta")
	return cmd
}

func printAnalysis(cmd *cobra.Command, r *entities.AnalysisResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Urgency:      %s (%d/10)\n", r.Urgency, r.UrgencyScore)
	fmt.Fprintf(out, "Specialties:  %s\n", strings.Join(r.Specialties, ", "))

	if len(r.MatchedSymptoms) > 0 {
		names := make([]string, 0, len(r.MatchedSymptoms))
		for _, m := range r.MatchedSymptoms {
			names = append(names, m.Name)
		}
		fmt.Fprintf(out, "Matched:      %s\n", strings.Join(names, ", "))
	} else {
		fmt.Fprintln(out, "Matched:      none")
	}

	fmt.Fprintf(out, "\n%s\n", r.Description)
	printList(cmd, "First aid", r.FirstAid)
	printList(cmd, "Red flags", r.RedFlags)
}

func printList(cmd *cobra.Command, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", item)
	}
}
