package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskledger/internal/ledger"
)

// taskAction describes one status-changing command.
type taskAction struct {
	use     string
	short   string
	apply   func(l *ledger.Ledger, id, notes string) (bool, error)
	history string // history line format, %s is the task id
	done    string // confirmation format, %s is the task id
	failed  bool   // print the confirmation in red
}

var (
	completeAction = taskAction{
		use:   "complete",
		short: "Mark a task completed",
		apply: func(l *ledger.Ledger, id, notes string) (bool, error) {
			return l.CompleteTask(id, notes)
		},
		history: "完成任务 %s",
		done:    "✅ 任务 %s 已标记为完成",
	}
	startAction = taskAction{
		use:   "start",
		short: "Mark a task in progress",
		apply: func(l *ledger.Ledger, id, notes string) (bool, error) {
			return l.StartTask(id, notes)
		},
		history: "开始任务 %s",
		done:    "🔄 任务 %s 已标记为进行中",
	}
	verifyAction = taskAction{
		use:   "verify",
		short: "Mark a task verified",
		apply: func(l *ledger.Ledger, id, notes string) (bool, error) {
			return l.VerifyTask(id, true, notes)
		},
		history: "验证任务 %s 通过",
		done:    "✅ 任务 %s 验证通过",
	}
	failAction = taskAction{
		use:   "fail",
		short: "Mark a task as failing verification",
		apply: func(l *ledger.Ledger, id, notes string) (bool, error) {
			return l.VerifyTask(id, false, notes)
		},
		history: "验证任务 %s 失败",
		done:    "❌ 任务 %s 验证失败",
		failed:  true,
	}
)

func newTaskCmd(e *env, a taskAction) *cobra.Command {
	return &cobra.Command{
		Use:   a.use + " <taskId> [notes...]",
		Short: a.short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.setup(cmd); err != nil {
				return err
			}
			return runTask(cmd, e, a, args[0], strings.Join(args[1:], " "))
		},
	}
}

// runTask applies a, then records the history line and refreshes the
// summary. An unknown task id leaves the ledger untouched.
func runTask(cmd *cobra.Command, e *env, a taskAction, id, notes string) error {
	l, err := e.openLedger()
	if err != nil {
		return err
	}

	found, err := a.apply(l, id, notes)
	if err != nil {
		return userErrorOrSys(err)
	}
	if !found {
		fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("❌ 未找到任务 %s", id))
		return silentExit(exitUserError)
	}

	if err := l.Record(fmt.Sprintf(a.history, id)); err != nil {
		return sysError(fmt.Errorf("record history: %w", err))
	}
	stats, err := l.UpdateStatistics()
	if err != nil {
		return sysError(fmt.Errorf("update statistics: %w", err))
	}
	e.logger.Debug("task updated", "task", id, "action", a.use, "completed", stats.Completed, "total", stats.Total)

	paint := color.GreenString
	if a.failed {
		paint = color.RedString
	}
	fmt.Fprintln(cmd.OutOrStdout(), paint(a.done, id))
	return nil
}
