package cmd

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/statusbar/bar"
	"github.com/grovetools/statusbar/cli"
	"github.com/grovetools/statusbar/logging"
	"github.com/grovetools/statusbar/scheduler"
	"github.com/grovetools/statusbar/tui"
	"github.com/grovetools/statusbar/tui/preview"
	"github.com/grovetools/statusbar/tui/theme"
	"github.com/spf13/cobra"
)

// NewPreviewCmd creates the `preview` command.
func NewPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Preview the bar interactively",
		Long: `Run the configured blocks in an interactive terminal view. Select a
block with the arrow keys and click it with enter (left), m (middle) or
r (right). Logs are kept off the screen while the preview runs; they still
go to the log file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			logging.SetGlobalOutput(io.Discard)
			defer logging.SetGlobalOutput(os.Stderr)

			tui.InitializeTUI()
			logger := logging.NewLogger("preview")
			sink := preview.NewSink()
			s, errs := bar.Build(cfg, bar.Options{Logger: logger, Sinks: []scheduler.Sink{sink}})
			if s == nil || (s.Len() == 0 && len(errs) > 0) {
				return errs[0]
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			done := make(chan struct{})
			go func() {
				defer close(done)
				_ = s.Run(ctx)
			}()

			model := preview.New(ctx, bar.Renderer(cfg, tui.ProfileFor(os.Stdout)), theme.NewThemeWithName(cfg.Theme), sink.Updates(), s)
			_, err = tea.NewProgram(model, tea.WithContext(ctx)).Run()
			cancel()
			<-done
			return err
		},
	}
}
