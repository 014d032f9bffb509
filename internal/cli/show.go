package cli

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

func newShowCmd(e *env) *cobra.Command {
	var (
		style string
		width int
		raw   bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Render the ledger in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.setup(cmd); err != nil {
				return err
			}
			l, err := e.openLedger()
			if err != nil {
				return err
			}
			if raw {
				fmt.Fprint(cmd.OutOrStdout(), l.String())
				return nil
			}

			opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
			if style == "auto" {
				opts = append(opts, glamour.WithAutoStyle())
			} else {
				opts = append(opts, glamour.WithStandardStyle(style))
			}
			renderer, err := glamour.NewTermRenderer(opts...)
			if err != nil {
				return userError(fmt.Errorf("renderer: %w", err))
			}
			out, err := renderer.Render(l.String())
			if err != nil {
				return sysError(fmt.Errorf("render ledger: %w", err))
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&style, "style", "auto", "glamour style: auto, dark, light, notty, ascii")
	cmd.Flags().IntVar(&width, "width", 100, "word wrap width")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the Markdown source unchanged")
	return cmd
}
