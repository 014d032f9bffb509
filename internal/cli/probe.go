package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskledger/internal/history"
	"github.com/mesh-intelligence/taskledger/internal/paths"
	"github.com/mesh-intelligence/taskledger/internal/probe"
	"github.com/mesh-intelligence/taskledger/pkg/types"
)

type probeFlags struct {
	baseURL     string
	projectRoot string
	plan        string
	noLedger    bool
	markFailed  bool
}

func newProbeCmd(e *env) *cobra.Command {
	var f probeFlags

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Validate the running application and verify ledger tasks",
		Long: "probe runs the endpoint, page, file and dependency checks in order, prints a\n" +
			"report, stores the run in the history database and verifies every ledger task\n" +
			"whose probes all passed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.setup(cmd); err != nil {
				return err
			}
			return runProbe(cmd, e, f)
		},
	}
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "application base URL (default from config)")
	cmd.Flags().StringVar(&f.projectRoot, "project-root", "", "project directory for file and dependency checks")
	cmd.Flags().StringVar(&f.plan, "plan", "", "verification plan TOML file (default: built-in plan)")
	cmd.Flags().BoolVar(&f.noLedger, "no-ledger", false, "do not update the ledger")
	cmd.Flags().BoolVar(&f.markFailed, "mark-failed", false, "mark tasks whose probes failed as failed")
	return cmd
}

func runProbe(cmd *cobra.Command, e *env, f probeFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	baseURL := firstNonEmpty(f.baseURL, e.cfg.BaseURL)
	root := firstNonEmpty(f.projectRoot, e.cfg.ProjectRoot)
	planPath := firstNonEmpty(f.plan, e.cfg.PlanPath)

	// Load the plan first so a bad plan fails before any request is made.
	var plan *probe.Plan
	if !f.noLedger {
		p, err := probe.LoadPlan(planPath)
		if err != nil {
			return userError(err)
		}
		plan = p
	}

	runner := probe.NewRunner(probe.Options{
		BaseURL:     baseURL,
		ProjectRoot: root,
		Timeout:     e.cfg.ProbeTimeout,
		Clock:       e.clock,
		Logger:      e.logger,
		Out:         out,
	})
	run := runner.Run(ctx)
	probe.Report(out, run, e.loc)

	if e.cfg.HistoryEnabled {
		saveRun(ctx, e, run)
	}

	if plan != nil {
		if err := applyPlan(cmd, e, plan, run, f.markFailed); err != nil {
			return err
		}
	}

	if run.Failed() > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, color.YellowString("⚠️  Some checks failed, see the details above."))
		return silentExit(exitUserError)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, color.GreenString("🎉 All checks passed."))
	return nil
}

// saveRun stores run in the history database. Failures are logged and do
// not fail the command.
func saveRun(ctx context.Context, e *env, run *types.Run) {
	path, err := paths.ResolveHistory(e.configDir, e.cfg.HistoryPath)
	if err != nil {
		e.logger.Warn("history path", "err", err)
		return
	}
	store, err := history.Open(ctx, path, e.logger)
	if err != nil {
		e.logger.Warn("open history", "err", err)
		return
	}
	defer store.Close()

	if err := store.SaveRun(ctx, run); err != nil {
		e.logger.Warn("save run", "run", run.ID, "err", err)
	}
}

func applyPlan(cmd *cobra.Command, e *env, plan *probe.Plan, run *types.Run, markFailed bool) error {
	l, err := e.openLedger()
	if err != nil {
		return err
	}
	outcomes, err := plan.Apply(run, l, markFailed)
	if err != nil {
		return sysError(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "📝 Updating ledger...")
	for _, o := range outcomes {
		switch {
		case !o.Applied:
			fmt.Fprintf(out, "%s task %s: probes failed, left unchanged\n", color.YellowString("⏭ "), o.Task)
		case !o.Found:
			fmt.Fprintf(out, "%s task %s: not in ledger\n", color.YellowString("⚠️ "), o.Task)
		case o.Passed:
			fmt.Fprintf(out, "%s task %s verified\n", color.GreenString("✅"), o.Task)
		default:
			fmt.Fprintf(out, "%s task %s marked failed\n", color.RedString("❌"), o.Task)
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
