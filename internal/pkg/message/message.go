// Package message provides commit message splitting and validation for brocode.
package message

import (
	"errors"
	"fmt"
	"strings"
)

// MaxSummaryLength is the recommended maximum length for the summary line.
const MaxSummaryLength = 72

// ErrEmptySummary is returned by Validate when the first line is blank.
var ErrEmptySummary = errors.New("commit summary is empty")

// ValidationResult contains the result of commit message validation.
type ValidationResult struct {
	IsValid  bool
	Errors   []error
	Warnings []string
}

// CommitMessage is a commit message split into its summary line and an
// optional description.
type CommitMessage struct {
	Summary     string
	Description string
}

// Split divides text into a summary (the first line) and a description (the
// remaining lines joined and trimmed). Extra blank lines are ignored; an empty
// description means there is none.
func Split(text string) *CommitMessage {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	summary, rest, _ := strings.Cut(text, "\n")

	return &CommitMessage{
		Summary:     strings.TrimRight(summary, " \t\r"),
		Description: strings.TrimSpace(rest),
	}
}

// HasDescription reports whether the message has a body.
func (cm *CommitMessage) HasDescription() bool {
	return cm.Description != ""
}

// String returns the message with a blank line between summary and description.
func (cm *CommitMessage) String() string {
	if !cm.HasDescription() {
		return cm.Summary
	}
	return cm.Summary + "\n\n" + cm.Description
}

// Validate returns ErrEmptySummary when the summary is blank.
func (cm *CommitMessage) Validate() error {
	result := cm.ValidateWithWarnings()
	if !result.IsValid {
		return result.Errors[0]
	}
	return nil
}

// ValidateWithWarnings validates the commit message and returns detailed results.
// Only an empty summary is an error; everything else is a warning so that the
// user keeps full control over the text.
func (cm *CommitMessage) ValidateWithWarnings() *ValidationResult {
	result := &ValidationResult{
		IsValid:  true,
		Errors:   []error{},
		Warnings: []string{},
	}

	if strings.TrimSpace(cm.Summary) == "" {
		result.IsValid = false
		result.Errors = append(result.Errors, ErrEmptySummary)
		return result
	}

	if n := len([]rune(cm.Summary)); n > MaxSummaryLength {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"summary line exceeds %d characters (%d chars)",
			MaxSummaryLength, n,
		))
	}

	return result
}
