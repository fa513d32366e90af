package cmd

import (
	"github.com/grovetools/statusbar/cli"
	"github.com/grovetools/statusbar/config"
	"github.com/grovetools/statusbar/pkg/paths"
	"github.com/spf13/cobra"
)

// PathsOutput represents the paths used by statusbar.
type PathsOutput struct {
	ConfigDir  string `json:"config_dir"`
	ConfigFile string `json:"config_file,omitempty"`
	StateDir   string `json:"state_dir"`
	LogDir     string `json:"log_dir"`
	RuntimeDir string `json:"runtime_dir"`
	Socket     string `json:"socket"`
	PidFile    string `json:"pid_file"`
}

func NewPathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print the paths used by statusbar",
		Long: `Print the paths used by statusbar as JSON.

The paths follow the XDG Base Directory Specification, or live under
$STATUSBAR_HOME when it is set:
- config_dir: config.toml, config.yml or config.yaml
- config_file: the config file that would be loaded, if any
- state_dir: pid file and logs
- runtime_dir: the daemon socket`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := PathsOutput{
				ConfigDir:  paths.ConfigDir(),
				StateDir:   paths.StateDir(),
				LogDir:     paths.LogDir(),
				RuntimeDir: paths.RuntimeDir(),
				Socket:     paths.SocketPath(),
				PidFile:    paths.PidFilePath(),
			}
			if file, err := config.FindConfigFile(cli.GetOptions(cmd).ConfigFile); err == nil {
				output.ConfigFile = file
			}
			return printJSON(cmd.OutOrStdout(), output)
		},
	}

	return cmd
}
