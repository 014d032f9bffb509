// Package cli implements the ledger command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskledger/internal/config"
	"github.com/mesh-intelligence/taskledger/internal/ledger"
	"github.com/mesh-intelligence/taskledger/internal/logging"
	"github.com/mesh-intelligence/taskledger/internal/paths"
	"github.com/mesh-intelligence/taskledger/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	ledger    string
	logLevel  string
	logFormat string
	logTime   bool
}

// env is the state shared by the commands of one invocation.
type env struct {
	flags rootFlags
	clock types.Clock

	configDir string
	cfg       types.Config
	loc       *time.Location
	logger    *log.Logger
}

const examples = `  ledger complete 1.1
  ledger verify 1.1 功能测试通过
  ledger fail 2.4 返回500
  ledger stats
  ledger probe --mark-failed`

// NewRootCmd creates the top-level "ledger" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmd(time.Now)
}

func newRootCmd(clock types.Clock) *cobra.Command {
	e := &env{clock: clock}

	root := &cobra.Command{
		Use:   "ledger",
		Short: "Track task progress in a Markdown ledger",
		Long: "ledger updates task statuses in a Markdown task list, keeps its summary and\n" +
			"update history current, and validates a running application against it.",
		Example: examples,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&e.flags.configDir, "config-dir", "", "configuration directory (default: .ledger)")
	root.PersistentFlags().StringVar(&e.flags.ledger, "ledger", "", "ledger file (default: docs/TASK_LIST.md)")
	root.PersistentFlags().StringVar(&e.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&e.flags.logFormat, "log-format", "", "log format: text, json, logfmt")
	root.PersistentFlags().BoolVar(&e.flags.logTime, "log-timestamps", false, "prefix diagnostics with a timestamp")

	root.AddCommand(
		newTaskCmd(e, completeAction),
		newTaskCmd(e, startAction),
		newTaskCmd(e, verifyAction),
		newTaskCmd(e, failAction),
		newSetCmd(e),
		newStatsCmd(e),
		newShowCmd(e),
		newProbeCmd(e),
		newRunsCmd(e),
		newGatewayCmd(e),
		newInitCmd(e),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil && !errors.Is(err, errSilent) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(ExitCode(err))
}

// setup loads configuration and builds the logger. Flags override config
// values.
func (e *env) setup(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(e.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config directory: %w", err))
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		return sysError(err)
	}
	if e.flags.logLevel != "" {
		cfg.LogLevel = e.flags.logLevel
	}
	if e.flags.logFormat != "" {
		cfg.LogFormat = e.flags.logFormat
	}
	if cfg.LedgerPath, err = paths.ResolveLedger(e.flags.ledger, cfg.LedgerPath); err != nil {
		return sysError(fmt.Errorf("resolve ledger path: %w", err))
	}

	logger, err := logging.New(cmd.ErrOrStderr(), logging.Options{
		Level:           cfg.LogLevel,
		Format:          cfg.LogFormat,
		ReportTimestamp: e.flags.logTime,
	})
	if err != nil {
		return userError(err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return userError(fmt.Errorf("timezone %q: %w", cfg.Timezone, err))
	}

	e.configDir, e.cfg, e.loc, e.logger = configDir, cfg, loc, logger
	logger.Debug("config loaded", "dir", configDir, "ledger", cfg.LedgerPath)
	return nil
}

// openLedger opens the configured ledger file.
func (e *env) openLedger() (*ledger.Ledger, error) {
	l, err := ledger.Open(e.cfg.LedgerPath, ledger.Options{
		Clock:    e.clock,
		Location: e.loc,
		Logger:   e.logger,
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, userError(fmt.Errorf("ledger not found: %s", e.cfg.LedgerPath))
		}
		return nil, sysError(err)
	}
	return l, nil
}

// exitError carries the process exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// silentExit reports a failure that has already been printed.
func silentExit(code int) error {
	return &exitError{code: code, err: errSilent}
}

var errSilent = errors.New("")

// ExitCode maps an error returned by the root command to a process exit
// code. Errors without an explicit code are usage errors.
func ExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// userErrorOrSys classifies ledger errors: bad input is a user error,
// anything else a system error.
func userErrorOrSys(err error) error {
	if errors.Is(err, types.ErrInvalidStatus) || errors.Is(err, types.ErrEmptyTaskID) {
		return userError(err)
	}
	return sysError(err)
}
