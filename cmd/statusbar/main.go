package main

import (
	"os"

	"github.com/grovetools/statusbar/cli"
	"github.com/grovetools/statusbar/cmd"
	"github.com/grovetools/statusbar/config"
	"github.com/grovetools/statusbar/pkg/profiling"
	"github.com/grovetools/statusbar/schema"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"statusbar",
		"Status bar blocks that poll shell commands",
	)
	rootCmd.Long = `statusbar runs blocks that poll shell commands and render the result as
a line of small widgets, such as the number of pending package updates.
The line can be printed continuously, once, or served by a daemon.`
	cli.SetVersionTemplate(rootCmd)

	profiler := profiling.NewCobraProfiler()
	profiler.AddFlags(rootCmd)
	rootCmd.PersistentPreRunE = profiler.PreRun

	rootCmd.AddCommand(cmd.NewRunCmd())
	rootCmd.AddCommand(cmd.NewOnceCmd())
	rootCmd.AddCommand(cmd.NewDaemonCmd())
	rootCmd.AddCommand(cmd.NewBlocksCmd())
	rootCmd.AddCommand(cmd.NewClickCmd())
	rootCmd.AddCommand(cmd.NewCheckCmd())
	rootCmd.AddCommand(cli.NewSchemaCommand(schema.Schema(), config.GenerateSchema))
	rootCmd.AddCommand(cmd.NewLogsCmd())
	rootCmd.AddCommand(cmd.NewPreviewCmd())
	rootCmd.AddCommand(cmd.NewPathsCmd())
	rootCmd.AddCommand(cli.NewVersionCommand("statusbar"))

	code := cli.Execute(rootCmd)
	profiler.Finish(os.Stderr)
	os.Exit(code)
}
