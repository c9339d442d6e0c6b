package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shoplytics/mart-engine/pkg/repositories"
	"github.com/shoplytics/mart-engine/pkg/services"
	"github.com/shoplytics/mart-engine/pkg/views"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "(Re)materialize the raw alias views and the analytics views",
	Long: `Applies every view definition with drop-then-create semantics:
the raw alias layer first, then the analytics metric views. Safe to run
repeatedly; each run is recorded in the mart_refresh_runs audit table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		exec := a.db.SQLDB()
		defer exec.Close()

		source := views.Source{
			Schema:      a.cfg.Source.Schema,
			TablePrefix: a.cfg.Source.TablePrefix,
		}
		svc := services.NewRefreshService(exec,
			repositories.NewRefreshRunRepository(a.db), source, a.logger)

		run, err := svc.Refresh(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Applied %d views in %s (run %s)\n",
			run.ViewsApplied, run.Duration().Round(time.Millisecond), run.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
