package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskledger/internal/history"
	"github.com/mesh-intelligence/taskledger/internal/paths"
)

const runTimeLayout = "2006/1/2 15:04:05"

func newRunsCmd(e *env) *cobra.Command {
	var (
		limit   int
		details bool
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored probe runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.setup(cmd); err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			path, err := paths.ResolveHistory(e.configDir, e.cfg.HistoryPath)
			if err != nil {
				return sysError(err)
			}
			store, err := history.Open(ctx, path, e.logger)
			if err != nil {
				return sysError(err)
			}
			defer store.Close()

			runs, err := store.ListRuns(ctx, limit)
			if err != nil {
				return sysError(err)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No probe runs recorded.")
				return nil
			}
			for _, run := range runs {
				status := color.GreenString("✅")
				if run.Failed() > 0 {
					status = color.RedString("❌")
				}
				fmt.Fprintf(out, "%s %s  %s  %d/%d passed (%s%%)  %s\n",
					status, run.StartedAt.In(e.loc).Format(runTimeLayout), run.ID,
					run.Passed(), len(run.Results), run.SuccessRate(), run.BaseURL)
				if !details {
					continue
				}
				for _, res := range run.Results {
					if res.Success {
						continue
					}
					fmt.Fprintf(out, "    -> %s: %s\n", res.Name, res.Details)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of runs (0 lists all)")
	cmd.Flags().BoolVar(&details, "details", false, "show failed checks of each run")
	return cmd
}
