package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/shoplytics/mart-engine/pkg/services"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run consistency checks over the analytics views",
	Long: `Runs read-only consistency checks against the live views: daily
order counts never exceed item counts, AOV division is guarded, category
revenue reconciles with item revenue, repeat-rate fractions partition the
customer base, and fulfillment latency is never negative. Exits non-zero
if any check fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		results := services.NewChecksService(a.db, a.logger).Run(cmd.Context())

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Check", "Result", "Details"})

		failed := 0
		for _, r := range results {
			result := color.GreenString("PASS")
			if !r.Passed {
				result = color.RedString("FAIL")
				failed++
			}
			table.Append([]string{r.Name, result, r.Details})
		}
		table.Render()

		if failed > 0 {
			return fmt.Errorf("%d of %d checks failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
