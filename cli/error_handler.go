package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/grovetools/statusbar/errors"
	"github.com/grovetools/statusbar/pkg/paths"
	"github.com/spf13/cobra"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
	}
}

// Handle prints err to the command's stderr with a hint chosen by its code.
// Errors without a code get the generic styled message.
func (h *ErrorHandler) Handle(cmd *cobra.Command, err error) error {
	out := cmd.ErrOrStderr()
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	hint := color.New(color.Faint).SprintFunc()

	statusErr, ok := errors.As(err)
	if !ok {
		PrintError(cmd, err)
		return err
	}

	fmt.Fprintf(out, "%s %s\n", red("Error:"), statusErr.Error())

	switch statusErr.Code {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintln(out, hint(fmt.Sprintf("Create %s/config.toml, or pass --config.", paths.ConfigDir())))

	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigValidation, errors.ErrCodeUnknownBlock:
		fmt.Fprintln(out, hint("Run 'statusbar check' for a per-block report."))

	case errors.ErrCodeBlockNotFound:
		fmt.Fprintln(out, hint("Run 'statusbar blocks' to list the ids of the running blocks."))

	case errors.ErrCodeDaemonNotRunning:
		fmt.Fprintln(out, hint("Start the daemon with 'statusbar daemon start'."))

	case errors.ErrCodeCommandLaunch:
		fmt.Fprintln(out, hint("Make sure 'sh' and the block's command are on PATH."))
	}

	if h.Verbose {
		fmt.Fprintf(out, "\nError details:\n%s\n", statusErr.ToJSON())
	}
	return err
}
