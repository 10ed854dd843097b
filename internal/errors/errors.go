package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
)

// SeekError is the structured error type for txtseek.
// It carries enough context for logging and for user presentation.
type SeekError struct {
	// Code is the unique error code (e.g., "ERR_201_FILE_READ").
	Code string

	// Message is the human-readable error message.
	Message string

	Category Category
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *SeekError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SeekError) Unwrap() error {
	return e.Cause
}

// Is matches by code, so errors.Is(err, &SeekError{Code: ...}) works.
func (e *SeekError) Is(target error) bool {
	if t, ok := target.(*SeekError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *SeekError) WithDetail(key, value string) *SeekError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *SeekError) WithSuggestion(suggestion string) *SeekError {
	e.Suggestion = suggestion
	return e
}

// New creates a new SeekError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *SeekError {
	return &SeekError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a SeekError from an existing error.
func Wrap(code string, err error) *SeekError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ReadError reports a document that could not be read or decoded.
// The document is still tracked, with an empty fingerprint and no terms.
// Permission failures get their own code.
func ReadError(path string, cause error) *SeekError {
	code := ErrCodeFileRead
	if stderrors.Is(cause, fs.ErrPermission) {
		code = ErrCodeFilePermission
	}
	return New(code, fmt.Sprintf("cannot read %s", path), cause).
		WithDetail("path", path)
}

// CorruptSnapshotError reports a snapshot that exists but cannot be decoded.
func CorruptSnapshotError(path string, cause error) *SeekError {
	return New(ErrCodeCorruptSnapshot, fmt.Sprintf("snapshot %s is corrupt", path), cause).
		WithDetail("path", path).
		WithSuggestion("The index will be rebuilt automatically")
}

// InvalidRootError reports a root that does not exist or is not a directory.
func InvalidRootError(root string, cause error) *SeekError {
	return New(ErrCodeInvalidRoot, fmt.Sprintf("invalid root directory: %s", root), cause).
		WithDetail("root", root).
		WithSuggestion("Pass an existing directory")
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *SeekError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *SeekError {
	return New(ErrCodeInternal, message, cause)
}

// As returns the first SeekError in err's chain.
func As(err error) (*SeekError, bool) {
	var se *SeekError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// GetCode extracts the error code from the chain.
// Returns empty string if no SeekError is present.
func GetCode(err error) string {
	if se, ok := As(err); ok {
		return se.Code
	}
	return ""
}

// HasCode reports whether err's chain contains a SeekError with code.
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	if se, ok := As(err); ok {
		return se.Severity == SeverityFatal
	}
	return false
}
