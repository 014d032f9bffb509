package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskledger/pkg/types"
)

func newSetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <taskId> <status> [notes...]",
		Short: "Set a task to any status",
		Long: "set writes the given status into the task row. Status is one of pending,\n" +
			"in_progress, completed, verified or failed; notes are appended as given.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := types.ParseStatus(args[1])
			if err != nil {
				return userError(fmt.Errorf("%w: %s", err, args[1]))
			}
			if err := e.setup(cmd); err != nil {
				return err
			}
			return runSet(cmd, e, args[0], status, strings.Join(args[2:], " "))
		},
	}
}

func runSet(cmd *cobra.Command, e *env, id string, status types.Status, notes string) error {
	l, err := e.openLedger()
	if err != nil {
		return err
	}

	row, found := l.Task(id)
	if !found {
		fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("❌ 未找到任务 %s", id))
		return silentExit(exitUserError)
	}
	previous := row.Label
	if s, ok := row.Status(); ok {
		previous = s.Label()
	}

	found, err = l.UpdateStatus(id, status, notes)
	if err != nil {
		return userErrorOrSys(err)
	}
	if !found {
		fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("❌ 未找到任务 %s", id))
		return silentExit(exitUserError)
	}

	if err := l.Record(fmt.Sprintf("更新任务 %s 状态为 %s", id, status.Label())); err != nil {
		return sysError(fmt.Errorf("record history: %w", err))
	}
	if _, err := l.UpdateStatistics(); err != nil {
		return sysError(fmt.Errorf("update statistics: %w", err))
	}
	e.logger.Debug("task status set", "task", id, "status", status, "ledger", l.Path())

	fmt.Fprintf(cmd.OutOrStdout(), "📝 任务 %s: %s -> %s\n", id, previous, status.Label())
	return nil
}
