package cmd

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grovetools/statusbar/bar"
	"github.com/grovetools/statusbar/cli"
	"github.com/grovetools/statusbar/config"
	"github.com/grovetools/statusbar/input"
	"github.com/grovetools/statusbar/logging"
	"github.com/grovetools/statusbar/render"
	"github.com/grovetools/statusbar/scheduler"
	"github.com/grovetools/statusbar/tui"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the `run` command.
func NewRunCmd() *cobra.Command {
	var noClicks bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the bar in the foreground",
		Long: `Run every configured block and print the rendered bar to stdout, one
line per change. Click events are read from stdin as JSON objects, one per
line, for example {"name":"pamac","instance":"<id>","button":1}.

With --json every change is printed as a JSON array of blocks instead. The
"id" of each block is the "instance" its clicks must carry. In text mode the
ids are logged to stderr when the bar starts.

Colors are used only when stdout is a terminal, unless CLICOLOR_FORCE=1.

Examples:
  # Feed the bar into a panel that reads lines
  statusbar run | lemonbar

  # Run with a specific config and no click input
  statusbar run -c ~/.config/statusbar/laptop.toml --no-clicks

  # Block states with their ids, for a panel that sends clicks back
  statusbar run --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var clicks io.Reader
			if !noClicks {
				clicks = cmd.InOrStdin()
			}
			out := cmd.OutOrStdout()
			return runBar(ctx, cfg, clicks, out, profileFor(out), cli.GetOptions(cmd).JSONOutput, logging.NewLogger("run"))
		},
	}

	cmd.Flags().BoolVar(&noClicks, "no-clicks", false, "Do not read click events from stdin")
	return cmd
}

// runBar drives cfg until ctx is cancelled. The bar fails to start only when
// no block could be built at all.
func runBar(ctx context.Context, cfg *config.Config, clicks io.Reader, out io.Writer, profile termenv.Profile, jsonOutput bool, logger *logrus.Entry) error {
	var sink scheduler.Sink
	if jsonOutput {
		sink = render.NewJSONSink(out, logger)
	} else {
		sink = render.NewLineSink(out, bar.Renderer(cfg, profile), logger)
	}
	s, errs := bar.Build(cfg, bar.Options{Logger: logger, Sinks: []scheduler.Sink{sink}})
	if s == nil || (s.Len() == 0 && len(errs) > 0) {
		return errs[0]
	}
	for _, v := range s.Views() {
		logger.WithFields(logrus.Fields{"id": v.ID, "block": v.Kind}).Info("Block ready")
	}

	if clicks != nil {
		go readClicks(ctx, clicks, s, logger)
	}
	return s.Run(ctx)
}

// readClicks forwards decoded click events until the stream ends. Malformed
// lines are logged and skipped.
func readClicks(ctx context.Context, r io.Reader, s *scheduler.Scheduler, logger *logrus.Entry) {
	dec := input.NewDecoder(r)
	for {
		ev, err := dec.Next()
		if err != nil {
			var malformed *input.MalformedEventError
			if stderrors.As(err, &malformed) {
				logger.WithError(err).Warn("Ignoring click event")
				continue
			}
			if err != io.EOF {
				logger.WithError(err).Error("Click stream failed")
			}
			return
		}
		logger.WithFields(logrus.Fields{
			"instance": ev.Instance,
			"button":   ev.Button.String(),
		}).Debug("Click received")
		if err := s.Dispatch(ctx, ev); err != nil {
			return
		}
	}
}

// profileFor picks the color profile for w: the terminal's when w is a
// terminal file, plain text otherwise.
func profileFor(w io.Writer) termenv.Profile {
	if f, ok := w.(*os.File); ok {
		return tui.ProfileFor(f)
	}
	return termenv.Ascii
}
