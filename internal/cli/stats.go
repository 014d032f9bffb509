package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newStatsCmd(e *env) *cobra.Command {
	var update bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show task statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.setup(cmd); err != nil {
				return err
			}
			l, err := e.openLedger()
			if err != nil {
				return err
			}

			stats := l.Statistics()
			if update {
				if stats, err = l.UpdateStatistics(); err != nil {
					return sysError(fmt.Errorf("update statistics: %w", err))
				}
			}

			out := cmd.OutOrStdout()
			bold := color.New(color.Bold).SprintFunc()
			fmt.Fprintln(out, bold("📊 任务统计:"))
			fmt.Fprintf(out, "  总任务数: %d\n", stats.Total)
			fmt.Fprintf(out, "  已完成: %s\n", color.GreenString("%d", stats.Completed))
			fmt.Fprintf(out, "  进行中: %s\n", color.YellowString("%d", stats.InProgress))
			fmt.Fprintf(out, "  待开始: %d\n", stats.Pending)
			fmt.Fprintf(out, "  已验证: %s\n", color.GreenString("%d", stats.Verified))
			fmt.Fprintf(out, "  失败: %s\n", color.RedString("%d", stats.Failed))
			fmt.Fprintf(out, "  完成率: %s%%\n", stats.CompletionRate())
			return nil
		},
	}
	cmd.Flags().BoolVar(&update, "update", false, "also rewrite the summary fields in the ledger")
	return cmd
}
