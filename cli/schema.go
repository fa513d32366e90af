package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSchemaCommand creates a 'schema' command that prints the embedded JSON
// Schema for the config file, or regenerates it from the Go types when
// generate is non-nil and --generate is set.
func NewSchemaCommand(embedded []byte, generate func() ([]byte, error)) *cobra.Command {
	var regenerate bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the config file",
		Long: `Print the JSON Schema the config file is validated against. Editors
with JSON Schema support can use it for completion in YAML configs.

Examples:
  # Save the schema next to the config
  statusbar schema > ~/.config/statusbar/statusbar.schema.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data := embedded
			if regenerate && generate != nil {
				var err error
				if data, err = generate(); err != nil {
					return err
				}
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().BoolVar(&regenerate, "generate", false, "Reflect the schema from the config types instead of printing the embedded copy")
	return cmd
}
