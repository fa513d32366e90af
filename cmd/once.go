package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/grovetools/statusbar/bar"
	"github.com/grovetools/statusbar/cli"
	"github.com/grovetools/statusbar/config"
	"github.com/grovetools/statusbar/logging"
	"github.com/grovetools/statusbar/pkg/profiling"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

// NewOnceCmd creates the `once` command.
func NewOnceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Update every block once and print a single line",
		Long: `Update every configured block once, concurrently, print the rendered
line and exit. The exit status is non-zero when any block failed, in which
case the line still shows what the other blocks reported.

Examples:
  # Show pending updates in a tmux status line
  set -g status-right '#(statusbar once)'

  # Machine-readable views
  statusbar once --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			return runOnce(cmd.Context(), cfg, cmd.OutOrStdout(), profileFor(cmd.OutOrStdout()), cli.GetOptions(cmd).JSONOutput)
		},
	}
}

func runOnce(ctx context.Context, cfg *config.Config, out io.Writer, profile termenv.Profile, jsonOutput bool) error {
	logger := logging.NewLogger("once")
	span := profiling.Start("build")
	s, buildErrs := bar.Build(cfg, bar.Options{Logger: logger})
	span.Stop()
	if s == nil {
		return buildErrs[0]
	}

	span = profiling.Start("update")
	views, errs := s.Once(ctx)
	span.Stop()
	for _, err := range errs {
		logger.WithError(err).Warn("Block update failed")
	}

	if jsonOutput {
		if err := printJSON(out, views); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, bar.Renderer(cfg, profile).Line(views))
	}

	errs = append(buildErrs, errs...)
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
