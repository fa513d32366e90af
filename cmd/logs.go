package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/statusbar/cli"
	"github.com/grovetools/statusbar/config"
	"github.com/grovetools/statusbar/pkg/paths"
	"github.com/grovetools/statusbar/tui/theme"
	"github.com/grovetools/statusbar/util/pathutil"
	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"
)

// NewLogsCmd creates the `logs` command.
func NewLogsCmd() *cobra.Command {
	var (
		component string
		follow    bool
		lines     int
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the log file of a statusbar component",
		Long: `Print the most recent lines of today's log file for a component and
optionally follow it. JSON log lines are pretty-printed; text lines are
printed as written.

Examples:
  # Follow the daemon log
  statusbar logs -f

  # The last 100 lines of the foreground bar's log
  statusbar logs --component run --tail 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			path := logFilePath(cfg, component, time.Now())
			emit := logPrinter(cmd.OutOrStdout(), cli.GetOptions(cmd).JSONOutput)

			if err := printLastLines(path, lines, emit); err != nil {
				if !follow || !os.IsNotExist(err) {
					return err
				}
			}
			if !follow {
				return nil
			}
			return followLog(cmd, path, emit)
		},
	}

	cmd.Flags().StringVar(&component, "component", "daemon", "Component whose log to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVar(&lines, "tail", 20, "Number of lines to show from the end of the log (-1 for all)")
	return cmd
}

// logFilePath is the file the component writes today: the configured path,
// or the dated file under the log directory.
func logFilePath(cfg *config.Config, component string, now time.Time) string {
	if cfg.Logging.File.Path != "" {
		return pathutil.Expand(cfg.Logging.File.Path)
	}
	return paths.LogFile(component, now)
}

// printLastLines prints the last n lines of path, or all of them when n is
// negative.
func printLastLines(path string, n int, emit func(string)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var ring []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		ring = append(ring, scanner.Text())
		if n >= 0 && len(ring) > n {
			ring = ring[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	for _, line := range ring {
		emit(line)
	}
	return nil
}

// followLog prints lines appended to path until interrupted. The file may
// not exist yet and may be recreated.
func followLog(cmd *cobra.Command, path string, emit func(string)) error {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: false,
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		Logger:    stdlog.New(io.Discard, "", 0),
	})
	if err != nil {
		return fmt.Errorf("cannot follow %s: %w", path, err)
	}
	defer t.Cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return t.Stop()
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				cli.GetLogger(cmd).WithError(line.Err).Debug("Error reading log line")
				continue
			}
			emit(line.Text)
		}
	}
}

// logPrinter returns the function that prints one log line.
func logPrinter(w io.Writer, jsonOutput bool) func(string) {
	if jsonOutput {
		return func(line string) { printLogJSON(w, line) }
	}
	return func(line string) { printLogText(w, theme.DefaultTheme, line) }
}

// printLogJSON passes JSON lines through and wraps text lines.
func printLogJSON(w io.Writer, line string) {
	var logMap map[string]interface{}
	if err := json.Unmarshal([]byte(line), &logMap); err != nil {
		logMap = map[string]interface{}{"raw_line": line}
	}
	jsonData, _ := json.Marshal(logMap)
	fmt.Fprintln(w, string(jsonData))
}

// printLogText pretty-prints a JSON log line for human consumption. Other
// lines are printed unchanged.
func printLogText(w io.Writer, t *theme.Theme, line string) {
	var logMap map[string]interface{}
	if err := json.Unmarshal([]byte(line), &logMap); err != nil {
		fmt.Fprintln(w, line)
		return
	}

	ts, _ := logMap["time"].(string)
	level, _ := logMap["level"].(string)
	msg, _ := logMap["msg"].(string)
	component, _ := logMap["component"].(string)

	parsedTime, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		parsedTime, _ = time.Parse(time.RFC3339, ts)
	}

	var levelStyle lipgloss.Style
	switch strings.ToLower(level) {
	case "error", "fatal", "panic":
		levelStyle = t.Error
	case "warning":
		levelStyle = t.Warning
	case "info":
		levelStyle = t.Info
	default:
		levelStyle = t.Muted
	}

	var keys []string
	for k := range logMap {
		if k != "time" && k != "level" && k != "msg" && k != "component" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	fields := make([]string, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, fmt.Sprintf("%s=%v", t.Muted.Render(k), logMap[k]))
	}

	fmt.Fprintf(w, "%s %s [%s] %s %s\n",
		parsedTime.Format("15:04:05"),
		levelStyle.Render(strings.ToUpper(level)),
		t.Accent.Render(component),
		msg,
		strings.Join(fields, " "),
	)
}
