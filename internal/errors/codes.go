// Package errors provides structured error handling for txtseek.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (documents, snapshots)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates document and snapshot I/O errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigInvalid = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeFileRead        = "ERR_201_FILE_READ"
	ErrCodeFilePermission  = "ERR_202_FILE_PERMISSION"
	ErrCodeFileEncoding    = "ERR_203_FILE_ENCODING"
	ErrCodeCorruptSnapshot = "ERR_205_CORRUPT_SNAPSHOT"
	ErrCodeSnapshotWrite   = "ERR_206_SNAPSHOT_WRITE"
	ErrCodeSnapshotLocked  = "ERR_207_SNAPSHOT_LOCKED"

	// Validation errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidRoot  = "ERR_406_INVALID_ROOT"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
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
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
// Per-document read failures and corrupt snapshots never stop an index build.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeFileRead, ErrCodeFilePermission, ErrCodeFileEncoding, ErrCodeCorruptSnapshot:
		return SeverityWarning
	case ErrCodeInternal:
		return SeverityFatal
	}
	return SeverityError
}
