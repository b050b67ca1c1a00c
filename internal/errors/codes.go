// Package errors provides structured error handling for ragcheck.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (file, disk)
//   - 3XX: Network errors
//   - 4XX: Probe and validation errors
//   - 5XX: Internal and environment errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryNetwork indicates network-related errors.
	CategoryNetwork Category = "NETWORK"
	// CategoryProbe indicates probe execution and validation errors.
	CategoryProbe Category = "PROBE"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort the run.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but the run can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeFileNotFound   = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFilePermission = "ERR_202_FILE_PERMISSION"
	ErrCodeHistoryStore   = "ERR_203_HISTORY_STORE"
	ErrCodeLockHeld       = "ERR_204_LOCK_HELD"

	// Network errors (300-399)
	ErrCodeNetworkTimeout     = "ERR_301_NETWORK_TIMEOUT"
	ErrCodeNetworkUnavailable = "ERR_302_NETWORK_UNAVAILABLE"

	// Probe errors (400-499)
	ErrCodeProbeFailed   = "ERR_401_PROBE_FAILED"
	ErrCodeUnknownPhase  = "ERR_402_UNKNOWN_PHASE"
	ErrCodeInvalidInput  = "ERR_403_INVALID_INPUT"
	ErrCodeConfirmFailed = "ERR_404_CONFIRM_FAILED"

	// Internal errors (500-599)
	ErrCodeInternal    = "ERR_501_INTERNAL"
	ErrCodeEnvironment = "ERR_502_ENVIRONMENT"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryNetwork
	case '4':
		return CategoryProbe
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
// ErrCodeEnvironment is the one fatal condition: the runner's own
// execution environment is broken and the whole run must abort.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeEnvironment:
		return SeverityFatal
	case ErrCodeNetworkTimeout, ErrCodeNetworkUnavailable:
		return SeverityWarning
	}
	return SeverityError
}
