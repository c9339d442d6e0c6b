package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/shoplytics/mart-engine/pkg/models"
	"github.com/shoplytics/mart-engine/pkg/repositories"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent refresh runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		runs, err := repositories.NewRefreshRunRepository(a.db).Recent(cmd.Context(), statusLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No refresh runs recorded yet. Run 'mart-engine refresh' first.")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Run", "Started", "Duration", "Views", "Status", "Error"})
		for _, run := range runs {
			status := color.GreenString(run.Status)
			if run.Status == models.RefreshStatusFailed {
				status = color.RedString(run.Status)
			}
			table.Append([]string{
				run.ID.String()[:8],
				run.StartedAt.Local().Format(time.RFC3339),
				run.Duration().Round(time.Millisecond).String(),
				fmt.Sprintf("%d", run.ViewsApplied),
				status,
				run.Error,
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "number of runs to show")
	rootCmd.AddCommand(statusCmd)
}
