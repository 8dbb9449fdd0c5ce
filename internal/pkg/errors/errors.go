// Package errors provides error types and handling utilities for brocode.
package errors

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrorCode represents the category of an error.
type ErrorCode int

const (
	// User errors (Exit Code 1)
	ErrNoChanges ErrorCode = iota + 100
	ErrMissingCredential
	ErrEmptySummary
	ErrNotARepository
	ErrConfigMalformed
	ErrConfigUnreadable
	ErrInvalidArguments

	// System errors (Exit Code 2)
	ErrGitCommandFailed ErrorCode = iota + 200
	ErrCommitFailed
	ErrFileSystemError

	// External errors (Exit Code 3)
	ErrProvider ErrorCode = iota + 300
	ErrNoCompletion
)

// ExitCode returns the appropriate exit code for an error code.
func (c ErrorCode) ExitCode() int {
	switch {
	case c >= 100 && c < 200:
		return 1 // User errors
	case c >= 200 && c < 300:
		return 2 // System errors
	case c >= 300:
		return 3 // External errors
	default:
		return 1
	}
}

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrNoChanges:
		return "NoChanges"
	case ErrMissingCredential:
		return "MissingCredential"
	case ErrEmptySummary:
		return "EmptySummary"
	case ErrNotARepository:
		return "NotARepository"
	case ErrConfigMalformed:
		return "ConfigMalformed"
	case ErrConfigUnreadable:
		return "ConfigUnreadable"
	case ErrInvalidArguments:
		return "InvalidArguments"
	case ErrGitCommandFailed:
		return "GitCommandFailed"
	case ErrCommitFailed:
		return "CommitFailed"
	case ErrFileSystemError:
		return "FileSystemError"
	case ErrProvider:
		return "ProviderError"
	case ErrNoCompletion:
		return "NoCompletion"
	default:
		return "Unknown"
	}
}

// AppError represents an application error with context.
type AppError struct {
	Code       ErrorCode
	Message    string
	Cause      error
	Context    map[string]interface{}
	Suggestion string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError with the same code, so that
// errors.Is(err, errors.New(ErrNoChanges, "")) matches by category.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithContext adds context to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion to the error.
func (e *AppError) WithSuggestion(suggestion string) *AppError {
	e.Suggestion = suggestion
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with context.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}

// GetExitCode returns the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code.ExitCode()
	}
	return 1 // Default to user error
}

// Common error constructors with suggestions

// NewNotARepositoryError creates an error for running outside a work tree.
func NewNotARepositoryError(err error, output string) *AppError {
	appErr := &AppError{
		Code:       ErrNotARepository,
		Message:    "not in a git repository",
		Cause:      err,
		Suggestion: "Run brocode from inside a git working tree",
	}
	if output != "" {
		appErr.WithContext("output", output)
	}
	return appErr
}

// NewNoChangesError creates an error for an empty diff.
func NewNoChangesError() *AppError {
	return &AppError{
		Code:       ErrNoChanges,
		Message:    "no changes to commit",
		Suggestion: "Make some changes first",
	}
}

// NewMissingCredentialError creates an error for a missing API key.
func NewMissingCredentialError(envVar string) *AppError {
	return &AppError{
		Code:       ErrMissingCredential,
		Message:    fmt.Sprintf("OpenAI API key not found: set openai.api_key in the config or %s in the environment or .env", envVar),
		Suggestion: fmt.Sprintf("Set the %s environment variable or run 'brocode config set openai.api_key <your-key>'", envVar),
	}
}

// NewGitError creates an error for git command failures.
func NewGitError(err error, output string) *AppError {
	appErr := &AppError{
		Code:    ErrGitCommandFailed,
		Message: "git command failed",
		Cause:   err,
	}
	if output != "" {
		appErr.WithContext("output", output)
	}
	return appErr
}

// NewCommitFailedError creates an error for a rejected git commit.
func NewCommitFailedError(err error, output string) *AppError {
	appErr := &AppError{
		Code:       ErrCommitFailed,
		Message:    "failed to commit changes, git exited with non-zero status",
		Cause:      err,
		Suggestion: "Check the git output above (hooks, user.name/user.email, nothing staged)",
	}
	if output != "" {
		appErr.WithContext("output", output)
	}
	return appErr
}

// NewProviderError creates an error for a non-2xx completion response.
// The raw response body is kept in the message so the user sees what the
// provider said.
func NewProviderError(statusCode int, body string, cause error) *AppError {
	msg := fmt.Sprintf("OpenAI API error (status %d)", statusCode)
	if body = strings.TrimSpace(body); body != "" {
		msg += ": " + body
	}
	appErr := &AppError{
		Code:    ErrProvider,
		Message: msg,
		Cause:   cause,
	}
	appErr.WithContext("status", statusCode)
	if statusCode == 401 {
		appErr.Suggestion = "Please check your API key is valid and has not expired"
	}
	return appErr
}

// NewNoCompletionError creates an error for a response without choices.
func NewNoCompletionError() *AppError {
	return &AppError{
		Code:    ErrNoCompletion,
		Message: "no completion choices returned from OpenAI",
	}
}

// FormatError formats an error for user display.
// API keys and other sensitive data are automatically masked.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	appErr := GetAppError(err)
	if appErr != nil {
		sb.WriteString("Error: ")
		sb.WriteString(SanitizeErrorMessage(appErr.Message))

		if appErr.Cause != nil {
			sb.WriteString("\n  Cause: ")
			sb.WriteString(SanitizeErrorMessage(appErr.Cause.Error()))
		}

		if appErr.Suggestion != "" {
			sb.WriteString("\n  Suggestion: ")
			sb.WriteString(appErr.Suggestion)
		}
	} else {
		sb.WriteString("Error: ")
		sb.WriteString(SanitizeErrorMessage(err.Error()))
	}

	return sb.String()
}

// FormatErrorVerbose formats an error with full details for verbose mode.
// API keys and other sensitive data are automatically masked.
func FormatErrorVerbose(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	appErr := GetAppError(err)
	if appErr != nil {
		sb.WriteString(fmt.Sprintf("Error [%s]: %s\n", appErr.Code.String(), SanitizeErrorMessage(appErr.Message)))

		if appErr.Cause != nil {
			sb.WriteString(fmt.Sprintf("  Cause: %v\n", SanitizeErrorMessage(appErr.Cause.Error())))
			sb.WriteString("  Error chain:\n")
			printErrorChain(&sb, appErr.Cause, 2)
		}

		if len(appErr.Context) > 0 {
			sb.WriteString("  Context:\n")
			for k, v := range appErr.Context {
				sb.WriteString(fmt.Sprintf("    %s: %v\n", k, SanitizeErrorMessage(fmt.Sprintf("%v", v))))
			}
		}

		if appErr.Suggestion != "" {
			sb.WriteString(fmt.Sprintf("  Suggestion: %s\n", appErr.Suggestion))
		}
	} else {
		sb.WriteString(fmt.Sprintf("Error: %v\n", SanitizeErrorMessage(err.Error())))
		sb.WriteString("  Error chain:\n")
		printErrorChain(&sb, err, 2)
	}

	return sb.String()
}

// printErrorChain prints the error chain with indentation.
func printErrorChain(sb *strings.Builder, err error, indent int) {
	if err == nil {
		return
	}

	prefix := strings.Repeat("  ", indent)
	errMsg := SanitizeErrorMessage(err.Error())
	sb.WriteString(fmt.Sprintf("%s- %T: %v\n", prefix, err, errMsg))

	if unwrapped := errors.Unwrap(err); unwrapped != nil {
		printErrorChain(sb, unwrapped, indent+1)
	}
}

// SanitizeErrorMessage masks any API keys or sensitive data in error messages.
func SanitizeErrorMessage(msg string) string {
	return apiKeyPattern.ReplaceAllStringFunc(msg, func(match string) string {
		if len(match) <= 4 {
			return "****"
		}
		return strings.Repeat("*", len(match)-4) + match[len(match)-4:]
	})
}

// apiKeyPattern matches common API key patterns.
var apiKeyPattern = regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`)
