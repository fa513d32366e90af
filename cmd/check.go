package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/grovetools/statusbar/block"
	"github.com/grovetools/statusbar/blocks"
	"github.com/grovetools/statusbar/cli"
	"github.com/grovetools/statusbar/command"
	"github.com/grovetools/statusbar/config"
	"github.com/grovetools/statusbar/errors"
	"github.com/grovetools/statusbar/logging"
	"github.com/grovetools/statusbar/widget"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// CheckResult is the outcome for one [[block]] record.
type CheckResult struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// CheckReport is the outcome of `statusbar check`.
type CheckReport struct {
	ConfigFile string        `json:"config_file,omitempty"`
	Fallback   bool          `json:"fallback,omitempty"`
	Blocks     []CheckResult `json:"blocks"`
}

// Failed counts the blocks that could not be built.
func (r CheckReport) Failed() int {
	n := 0
	for _, b := range r.Blocks {
		if !b.OK {
			n++
		}
	}
	return n
}

// NewCheckCmd creates the `check` command.
func NewCheckCmd() *cobra.Command {
	var dumpYAML bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the config file and every block in it",
		Long: `Load the config file, validate it against the schema and construct
every block without running any command. Each block is reported on its own
line; the exit status is non-zero when the file or any block is invalid.

Examples:
  # Validate a config before installing it
  statusbar check -c ./config.toml

  # Show the configuration after defaults were applied
  statusbar check --yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			report, err := checkConfig(cfg, blocks.NewRegistry())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case cli.GetOptions(cmd).JSONOutput:
				if err := printJSON(out, report); err != nil {
					return err
				}
			case dumpYAML:
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("failed to marshal config to YAML: %w", err)
				}
				fmt.Fprint(out, string(data))
			default:
				printCheckReport(out, report)
			}

			if failed := report.Failed(); failed > 0 {
				return errors.New(errors.ErrCodeConfigValidation,
					fmt.Sprintf("%d of %d blocks are invalid", failed, len(report.Blocks)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dumpYAML, "yaml", false, "Print the effective configuration as YAML")
	return cmd
}

// checkConfig constructs every block of cfg with a runner that is never
// invoked. Constructors only decode their options.
func checkConfig(cfg *config.Config, registry *block.Registry) (CheckReport, error) {
	report := CheckReport{ConfigFile: cfg.Path, Fallback: cfg.Path == ""}

	factory, err := widget.NewFactory(cfg.Icons)
	if err != nil {
		return report, errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid icon set")
	}
	env := block.Env{
		Widgets: factory,
		Runner:  command.NewShellRunner(),
		Logger:  logging.NewLogger("check"),
	}

	for i, b := range cfg.Blocks {
		res := CheckResult{Index: i + 1, Kind: b.Kind(), OK: true}
		if _, err := registry.Build(b.Kind(), b.Options(), env); err != nil {
			res.OK = false
			res.Error = err.Error()
		}
		report.Blocks = append(report.Blocks, res)
	}
	return report, nil
}

func printCheckReport(w io.Writer, r CheckReport) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	if r.Fallback {
		fmt.Fprintf(w, "%s no config file found, using the built-in default\n", faint("•"))
	} else {
		fmt.Fprintf(w, "%s %s\n", green("✓"), r.ConfigFile)
	}

	for _, b := range r.Blocks {
		if b.OK {
			fmt.Fprintf(w, "  %s block #%d %s\n", green("✓"), b.Index, b.Kind)
			continue
		}
		fmt.Fprintf(w, "  %s block #%d %s: %s\n", red("✗"), b.Index, b.Kind, b.Error)
	}

	if len(r.Blocks) == 0 {
		fmt.Fprintln(w, faint("  no blocks configured"))
	}
}
