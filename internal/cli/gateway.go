package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskledger/internal/gateway"
)

const gatewayStopTimeout = 10 * time.Second

func newGatewayCmd(e *env) *cobra.Command {
	var (
		dir       string
		eventFile string
		addr      string
		serve     bool
	)

	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Serve a build directory and answer function events",
		Long: "gateway serves a standalone build directory. With --event it replays one\n" +
			"function event from a JSON file (- reads stdin) and prints the response;\n" +
			"with --serve it keeps serving until interrupted. HOSTNAME, PORT and\n" +
			"KEEP_ALIVE_TIMEOUT (milliseconds) configure the listener.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if eventFile == "" && !serve {
				return userError(fmt.Errorf("one of --event or --serve is required"))
			}
			if err := e.setup(cmd); err != nil {
				return err
			}

			var ev gateway.Event
			if eventFile != "" {
				if err := readEvent(cmd.InOrStdin(), eventFile, &ev); err != nil {
					return userError(err)
				}
			}

			opts := gateway.OptionsFromEnv(dir)
			if addr != "" {
				opts.Addr = addr
			}
			opts.Logger = e.logger
			g := gateway.New(opts)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := g.Start(ctx); err != nil {
				return sysError(err)
			}
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), gatewayStopTimeout)
				defer cancel()
				if err := g.Stop(stopCtx); err != nil {
					e.logger.Warn("gateway stop", "err", err)
				}
			}()

			if eventFile != "" {
				resp, err := g.Handle(ctx, ev)
				if err != nil {
					return sysError(err)
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(resp); err != nil {
					return sysError(err)
				}
			}

			if serve {
				fmt.Fprintf(cmd.OutOrStdout(), "🌐 Serving %s on http://%s (Ctrl+C to stop)\n", dir, g.Addr())
				sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()
				<-sigCtx.Done()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "netlify-dist/apps/nextjs", "standalone build directory to serve")
	cmd.Flags().StringVar(&eventFile, "event", "", "function event JSON file, - for stdin")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address host:port (default from HOSTNAME and PORT)")
	cmd.Flags().BoolVar(&serve, "serve", false, "keep serving until interrupted")
	return cmd
}

func readEvent(stdin io.Reader, path string, ev *gateway.Event) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read event: %w", err)
	}
	if err := json.Unmarshal(data, ev); err != nil {
		return fmt.Errorf("parse event: %w", err)
	}
	return nil
}
