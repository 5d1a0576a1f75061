package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/store"
)

var (
	leadsGrade  string
	leadsSource string
	leadsMinPct float64
	leadsLimit  int
	leadsJSON   bool
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List saved leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		leads, err := st.ListLeads(ctx, store.Filter{
			Grade:         leadsGrade,
			Source:        leadsSource,
			MinPercentage: leadsMinPct,
			Limit:         leadsLimit,
		})
		if err != nil {
			return err
		}

		if leadsJSON {
			return json.NewEncoder(os.Stdout).Encode(leads)
		}
		for _, lead := range leads {
			grade := lead.ICPGrade
			if grade == "" {
				grade = "-"
			}
			fmt.Printf("[%-2s %5.1f%%] %-28s %-30s %s\n",
				grade, lead.ICPPercentage, lead.FullName, lead.JobTitle, lead.CompanyName)
		}
		fmt.Printf("%d leads\n", len(leads))
		return nil
	},
}

func init() {
	leadsCmd.Flags().StringVar(&leadsGrade, "grade", "", "filter by ICP grade")
	leadsCmd.Flags().StringVar(&leadsSource, "source", "", "filter by source (apollo or google)")
	leadsCmd.Flags().Float64Var(&leadsMinPct, "min-percentage", 0, "minimum ICP percentage")
	leadsCmd.Flags().IntVar(&leadsLimit, "limit", 100, "max rows")
	leadsCmd.Flags().BoolVar(&leadsJSON, "json", false, "emit leads as JSON")
	rootCmd.AddCommand(leadsCmd)
}
