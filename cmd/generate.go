package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/pipeline"
)

var (
	genMethod       string
	genJobTitles    []string
	genLocations    []string
	genIndustries   []string
	genCompanySizes []string
	genLimit        int
	genJSON         bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one lead-generation query",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, "generate")
		if err != nil {
			return err
		}
		defer env.Close()

		q := model.Query{
			Method:       model.Method(genMethod),
			JobTitles:    genJobTitles,
			Locations:    genLocations,
			Industries:   genIndustries,
			CompanySizes: genCompanySizes,
			Limit:        genLimit,
		}

		summary := env.Generator.Generate(ctx, q, "")
		if genJSON {
			return json.NewEncoder(os.Stdout).Encode(summary)
		}
		printSummary(summary)
		if summary.Status == pipeline.StatusError {
			return fmt.Errorf("generation failed: %s", summary.Message)
		}
		return nil
	},
}

func printSummary(s *pipeline.Summary) {
	if s.Status == pipeline.StatusError {
		fmt.Printf("status: %s (%s)\n", s.Status, s.Message)
		return
	}

	fmt.Printf("status: %s\n", s.Status)
	fmt.Printf("leads:  %d\n", s.Count)
	if s.SaveStats != nil {
		fmt.Printf("saved:  %d new, %d duplicates, %d failed\n",
			s.SaveStats.Successful, s.SaveStats.Duplicates, s.SaveStats.Failed)
		if len(s.SaveStats.SkippedFields) > 0 {
			fmt.Printf("skipped fields: %v\n", s.SaveStats.SkippedFields)
		}
	}
	for _, lead := range s.Leads {
		grade := lead.ICPGrade
		if grade == "" {
			grade = "-"
		}
		fmt.Printf("  [%s] %-28s %-30s %s\n", grade, lead.FullName, lead.JobTitle, lead.CompanyName)
	}
}

func init() {
	generateCmd.Flags().StringVar(&genMethod, "method", "apollo", "search method (apollo or google)")
	generateCmd.Flags().StringSliceVar(&genJobTitles, "title", nil, "job title to search for (repeatable)")
	generateCmd.Flags().StringSliceVar(&genLocations, "location", nil, "location to search in (repeatable)")
	generateCmd.Flags().StringSliceVar(&genIndustries, "industry", nil, "industry keyword (repeatable)")
	generateCmd.Flags().StringSliceVar(&genCompanySizes, "company-size", nil, "employee range like 11,20 (repeatable)")
	generateCmd.Flags().IntVar(&genLimit, "limit", 0, "max leads (default from config)")
	generateCmd.Flags().BoolVar(&genJSON, "json", false, "emit the summary as JSON")
	rootCmd.AddCommand(generateCmd)
}
