package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/statusbar/bar"
	"github.com/grovetools/statusbar/cli"
	"github.com/grovetools/statusbar/config"
	"github.com/grovetools/statusbar/errors"
	"github.com/grovetools/statusbar/input"
	"github.com/grovetools/statusbar/logging"
	"github.com/grovetools/statusbar/pkg/daemon"
	"github.com/grovetools/statusbar/scheduler"
	"github.com/grovetools/statusbar/tui/components/table"
	"github.com/grovetools/statusbar/tui/theme"
	"github.com/spf13/cobra"
)

// newClient talks to the daemon when it runs and to an in-process bar
// otherwise.
func newClient(cfg *config.Config) daemon.Client {
	local := daemon.NewLocalClient(cfg, bar.Options{Logger: logging.NewLogger("client")})
	return daemon.New(cfg.Daemon.SocketPath(), local)
}

// NewBlocksCmd creates the `blocks` command.
func NewBlocksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blocks",
		Short: "List the blocks and what they currently show",
		Long: `List every block with its identity, kind and widgets. When the daemon
is running the live blocks are listed and their ids can be passed to
'statusbar click'. Otherwise the blocks are built and updated once in
process, and their ids are only valid for this invocation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			client := newClient(cfg)
			defer client.Close()

			views, err := client.Blocks(cmd.Context())
			if err != nil {
				return err
			}
			if cli.GetOptions(cmd).JSONOutput {
				return printJSON(cmd.OutOrStdout(), views)
			}

			source := "local"
			if client.IsRunning() {
				source = "daemon"
			}
			printBlocks(cmd.OutOrStdout(), theme.NewThemeWithName(cfg.Theme), views, source)
			return nil
		},
	}
}

func printBlocks(w io.Writer, t *theme.Theme, views []scheduler.BlockView, source string) {
	if len(views) == 0 {
		fmt.Fprintln(w, t.Muted.Render("No blocks configured."))
		return
	}

	rows := make([][]string, 0, len(views))
	for _, v := range views {
		labels := make([]string, 0, len(v.Widgets))
		state := "-"
		for i, wd := range v.Widgets {
			if i == 0 {
				state = wd.State.String()
			}
			if label := wd.Label(); label != "" {
				labels = append(labels, label)
			}
		}
		rows = append(rows, []string{v.ID, v.Kind, strings.Join(labels, " "), state, v.Err})
	}

	fmt.Fprintln(w, table.NewBuilder().
		WithTheme(t).
		WithHeaders("ID", "KIND", "SHOWS", "STATE", "ERROR").
		WithRows(rows...).
		WithCellStyle(func(row, col int, base lipgloss.Style) lipgloss.Style {
			if col == 4 {
				return base.Foreground(t.Colors.Red)
			}
			return base
		}).
		Render())
	fmt.Fprintln(w, t.Muted.Render("source: "+source))
}

// NewClickCmd creates the `click` command.
func NewClickCmd() *cobra.Command {
	var button, name string

	cmd := &cobra.Command{
		Use:   "click <id>",
		Short: "Send a click to a block of the running daemon",
		Long: `Deliver a click event to the block with the given id. The id comes
from 'statusbar blocks' while the daemon runs.

Examples:
  # Open the package manager from a pamac block
  statusbar click 3f2c9a0d4e5b4c7fa1b2c3d4e5f60718 --name pamac

  # Right click
  statusbar click 3f2c9a0d4e5b4c7fa1b2c3d4e5f60718 -b right`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			ev, err := clickEvent(args[0], name, button)
			if err != nil {
				return err
			}

			client, err := daemon.Connect(cfg.Daemon.SocketPath())
			if err != nil {
				return err
			}
			defer client.Close()

			if ev.Name == "" {
				views, err := client.Blocks(cmd.Context())
				if err != nil {
					return err
				}
				if ev.Name, err = defaultElement(views, ev.Instance); err != nil {
					return err
				}
			}

			if err := client.Click(cmd.Context(), ev); err != nil {
				return err
			}
			cli.GetLogger(cmd).WithField("instance", ev.Instance).Debug("Click delivered")
			return nil
		},
	}

	cmd.Flags().StringVarP(&button, "button", "b", "left", "Mouse button: left, middle, right, wheel_up, wheel_down")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Element name of the clicked widget (defaults to the block's first widget)")
	return cmd
}

// clickEvent builds the event for an id. The name may be left empty and
// filled in later by defaultElement.
func clickEvent(id, name, button string) (input.Event, error) {
	if strings.TrimSpace(id) == "" {
		return input.Event{}, errors.New(errors.ErrCodeInvalidInput, "block id cannot be empty")
	}
	b := input.ParseButton(button)
	if b == input.Unknown {
		return input.Event{}, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown mouse button %q", button))
	}
	return input.Event{Instance: id, Name: name, Button: b}, nil
}

// defaultElement names the first widget of block id, which is what a bar
// reports for a click on a single-widget block.
func defaultElement(views []scheduler.BlockView, id string) (string, error) {
	for _, v := range views {
		if v.ID != id {
			continue
		}
		if len(v.Widgets) > 0 {
			return v.Widgets[0].Name, nil
		}
		return v.Kind, nil
	}
	return "", errors.BlockNotFound(id)
}
