package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grovetools/statusbar/bar"
	"github.com/grovetools/statusbar/cli"
	"github.com/grovetools/statusbar/config"
	"github.com/grovetools/statusbar/internal/daemon/engine"
	"github.com/grovetools/statusbar/internal/daemon/pidfile"
	"github.com/grovetools/statusbar/internal/daemon/server"
	"github.com/grovetools/statusbar/internal/daemon/store"
	"github.com/grovetools/statusbar/logging"
	"github.com/grovetools/statusbar/pkg/daemon"
	"github.com/grovetools/statusbar/pkg/paths"
	"github.com/grovetools/statusbar/pkg/process"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

// NewDaemonCmd returns the daemon command with subcommands.
func NewDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the bar as a background service",
		Long: `The daemon runs the configured blocks once for every client. Bars,
prompts and scripts read the live state from its unix socket, over plain
HTTP, Server-Sent Events or a websocket, and inject clicks through it.`,
	}

	cmd.AddCommand(newDaemonStartCmd())
	cmd.AddCommand(newDaemonStopCmd())
	cmd.AddCommand(newDaemonStatusCmd())

	return cmd
}

func newDaemonStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the daemon",
		Long: `Start the daemon in the foreground. It stops on SIGINT or SIGTERM.
With daemon.watch enabled, edits to the config file are picked up without a
restart; a file that fails to load keeps the previous blocks running.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runDaemon(ctx, cfg, cli.GetOptions(cmd).Verbose)
		},
	}
}

func runDaemon(ctx context.Context, cfg *config.Config, verbose bool) error {
	logger := logging.NewLogger("daemon")
	pidPath := paths.PidFilePath()
	sockPath := cfg.Daemon.SocketPath()

	if err := paths.EnsureDirs(); err != nil {
		return err
	}
	if err := pidfile.Acquire(pidPath); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer func() {
		if err := pidfile.Release(pidPath); err != nil {
			logger.Errorf("Failed to release pidfile: %v", err)
		}
	}()

	eng := engine.New(store.New(), bar.Options{}, logger)
	buildErrs, err := eng.Start(ctx, cfg)
	if err != nil {
		return err
	}
	defer eng.Stop()
	for _, err := range buildErrs {
		logger.WithError(err).Warn("Block left out")
	}

	if cfg.Daemon.Watch && cfg.Path != "" {
		watcher, err := daemon.NewConfigWatcher(cfg.Path, cfg.Daemon.Debounce(), func(path string) {
			reloadConfig(path, eng, verbose, logger)
		})
		if err != nil {
			logger.WithError(err).Warn("Config watching disabled")
		} else {
			go watcher.Start(ctx)
			defer watcher.Close()
		}
	}

	srv := server.New(eng, logger)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe(sockPath)
	}()

	logger.WithFields(logrus.Fields{
		"pid":    os.Getpid(),
		"socket": sockPath,
		"config": cfg.Path,
	}).Info("Starting daemon")

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received stop signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown error: %v", err)
	}
	_ = os.Remove(sockPath)
	return <-serveErr
}

// reloadConfig applies a changed config file. On failure the running blocks
// are kept and subscribers are told why.
func reloadConfig(path string, eng *engine.Engine, verbose bool, logger *logrus.Entry) {
	log := logger.WithField("config", path)

	cfg, err := config.Load(path)
	if err != nil {
		log.WithError(err).Error("Config reload failed, keeping the running blocks")
		eng.Store().BroadcastConfigError(path, err)
		return
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	logging.Configure(cfg.Logging)

	buildErrs, err := eng.Reload(cfg)
	if err != nil {
		log.WithError(err).Error("Config reload failed, keeping the running blocks")
		eng.Store().BroadcastConfigError(path, err)
		return
	}
	for _, err := range buildErrs {
		log.WithError(err).Warn("Block left out")
	}
	eng.Store().BroadcastConfigReload(path)
	log.Info("Config reloaded")
}

func newDaemonStopCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			running, pid, err := pidfile.IsRunning(paths.PidFilePath())
			if err != nil {
				return fmt.Errorf("error checking status: %w", err)
			}
			if !running {
				fmt.Fprintln(out, "Daemon is not running")
				return nil
			}

			if err := process.Terminate(pid); err != nil {
				return fmt.Errorf("failed to send stop signal: %w", err)
			}
			fmt.Fprintf(out, "Sent SIGTERM to process %d\n", pid)

			if wait > 0 {
				if !process.WaitForExit(pid, wait) {
					return fmt.Errorf("daemon (PID %d) still running after %s", pid, wait)
				}
				fmt.Fprintln(out, "Stopped")
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", shutdownTimeout, "How long to wait for the daemon to exit (0 to not wait)")
	return cmd
}

// DaemonStatus is the output of `statusbar daemon status --json`.
type DaemonStatus struct {
	Running bool                  `json:"running"`
	PID     int                   `json:"pid,omitempty"`
	Socket  string                `json:"socket"`
	Config  *daemon.RunningConfig `json:"config,omitempty"`
}

func newDaemonStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check daemon status",
		Long:  "Check daemon status. Exits with status 1 when the daemon is stopped.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			running, pid, err := pidfile.IsRunning(paths.PidFilePath())
			if err != nil {
				return fmt.Errorf("error: %w", err)
			}

			status := DaemonStatus{Running: running, PID: pid, Socket: cfg.Daemon.SocketPath()}
			if running {
				if client, err := daemon.Connect(status.Socket); err == nil {
					status.Config, _ = client.Config(cmd.Context())
					client.Close()
				}
			}

			out := cmd.OutOrStdout()
			if cli.GetOptions(cmd).JSONOutput {
				if err := printJSON(out, status); err != nil {
					return err
				}
			} else if running {
				fmt.Fprintf(out, "Running (PID: %d)\nSocket: %s\n", pid, status.Socket)
				if rc := status.Config; rc != nil {
					fmt.Fprintf(out, "Config: %s\nBlocks: %d (%d failed to build)\nLoaded: %s\n",
						configLabel(rc.Path), len(rc.Blocks), len(rc.BuildErrors), rc.LoadedAt.Format(time.RFC3339))
				}
			} else {
				fmt.Fprintln(out, "Stopped")
			}

			if !running {
				os.Exit(1) // Non-zero for stopped state (useful for scripts)
			}
			return nil
		},
	}
}

func configLabel(path string) string {
	if path == "" {
		return "(built-in default)"
	}
	return path
}
