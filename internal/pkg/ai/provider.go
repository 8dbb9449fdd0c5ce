// Package ai provides the chat-completion client that drafts commit messages.
package ai

import (
	"context"
)

// GenerateRequest contains the data needed to generate a commit message.
type GenerateRequest struct {
	Credential   string
	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
	Diff         string
}

// Generator drafts a commit message for a diff.
type Generator interface {
	GenerateCommitMessage(ctx context.Context, req *GenerateRequest) (string, error)
}
