package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Block errors
	ErrCodeUnknownBlock  ErrorCode = "UNKNOWN_BLOCK"
	ErrCodeBlockNotFound ErrorCode = "BLOCK_NOT_FOUND"

	// Command execution errors
	ErrCodeCommandLaunch ErrorCode = "COMMAND_LAUNCH_FAILED"
	ErrCodeOutputDecode  ErrorCode = "OUTPUT_DECODE_FAILED"

	// Daemon errors
	ErrCodeDaemonNotRunning ErrorCode = "DAEMON_NOT_RUNNING"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// StatusError represents a structured error with context
type StatusError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *StatusError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *StatusError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *StatusError) WithDetail(key string, value interface{}) *StatusError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *StatusError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new StatusError
func New(code ErrorCode, message string) *StatusError {
	return &StatusError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a StatusError
func Wrap(err error, code ErrorCode, message string) *StatusError {
	return &StatusError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// As returns the outermost StatusError in err's chain.
func As(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if err == nil || !stderrors.As(err, &statusErr) {
		return nil, false
	}
	return statusErr, true
}

// Is checks if an error is a specific StatusError code
func Is(err error, code ErrorCode) bool {
	statusErr, ok := As(err)
	if !ok {
		return false
	}
	return statusErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	statusErr, ok := As(err)
	if !ok {
		return ""
	}
	return statusErr.Code
}

// BlockID returns the identity of the block that produced err, or "" when
// the error is not tagged with one.
func BlockID(err error) string {
	statusErr, ok := As(err)
	if !ok {
		return ""
	}
	id, _ := statusErr.Details["id"].(string)
	return id
}
