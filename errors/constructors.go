package errors

import "fmt"

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *StatusError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *StatusError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// ConfigValidation reports a block configuration record that failed to
// decode, typically because of an unknown or malformed field.
func ConfigValidation(kind string, err error) *StatusError {
	return Wrap(err, ErrCodeConfigValidation, fmt.Sprintf("invalid configuration for block '%s'", kind)).
		WithDetail("block", kind)
}

// UnknownBlock creates an error for a block kind with no registered constructor
func UnknownBlock(kind string) *StatusError {
	return New(ErrCodeUnknownBlock, fmt.Sprintf("unknown block '%s'", kind)).
		WithDetail("block", kind)
}

// BlockNotFound creates an error for an identity that matches no live block
func BlockNotFound(id string) *StatusError {
	return New(ErrCodeBlockNotFound, fmt.Sprintf("no block with id '%s'", id)).
		WithDetail("id", id)
}

// CommandLaunch creates an error for a shell that could not be spawned or
// whose output could not be read.
func CommandLaunch(cmd string, err error) *StatusError {
	return Wrap(err, ErrCodeCommandLaunch, fmt.Sprintf("failed to run command: %s", cmd)).
		WithDetail("command", cmd)
}

// OutputDecode creates an error for command output that is not valid UTF-8
func OutputDecode(cmd string) *StatusError {
	return New(ErrCodeOutputDecode, fmt.Sprintf("output of '%s' is not valid UTF-8", cmd)).
		WithDetail("command", cmd)
}

// DaemonNotRunning creates an error for clients that cannot reach the daemon
func DaemonNotRunning(socket string, err error) *StatusError {
	return Wrap(err, ErrCodeDaemonNotRunning, "statusbar daemon is not running").
		WithDetail("socket", socket)
}

// ForBlock tags err with the kind and identity of the block that produced it.
// A StatusError is tagged in place; any other error is wrapped as internal.
func ForBlock(err error, kind, id string) *StatusError {
	statusErr, ok := err.(*StatusError)
	if !ok {
		statusErr = Wrap(err, ErrCodeInternal, "block update failed")
	}
	return statusErr.WithDetail("block", kind).WithDetail("id", id)
}
