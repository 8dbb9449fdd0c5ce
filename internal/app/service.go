// Package app contains the application layer with business orchestration logic.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/brocode/brocode/internal/pkg/ai"
	"github.com/brocode/brocode/internal/pkg/config"
	apperrors "github.com/brocode/brocode/internal/pkg/errors"
	"github.com/brocode/brocode/internal/pkg/git"
	"github.com/brocode/brocode/internal/pkg/message"
	"github.com/brocode/brocode/internal/pkg/security"
	"github.com/brocode/brocode/internal/pkg/ui"
)

// writeFile is a variable to allow mocking in tests.
var writeFile = os.WriteFile

// maxUntrackedHint caps how many untracked paths are listed in the no-changes hint.
const maxUntrackedHint = 5

const (
	editQuestion    = "Would you like to edit this message?"
	confirmQuestion = "Do you want to commit with this message?"
)

// Outcome describes how a successful Run ended.
type Outcome int

const (
	// OutcomeAborted is returned alongside an error.
	OutcomeAborted Outcome = iota
	// OutcomeCommitted means git commit succeeded.
	OutcomeCommitted
	// OutcomeCancelled means the user declined the confirmation.
	OutcomeCancelled
	// OutcomeDryRun means the message was produced but not committed.
	OutcomeDryRun
)

// String returns the string representation of an Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeAborted:
		return "aborted"
	case OutcomeCommitted:
		return "committed"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeDryRun:
		return "dry-run"
	default:
		return "unknown"
	}
}

// CommitOptions contains options for the commit workflow.
type CommitOptions struct {
	// Message, when set, is used as-is and no completion request is made.
	Message string
	// SkipConfirm skips the edit question and the confirmation.
	SkipConfirm bool
	// DryRun stops before committing.
	DryRun bool
	// OutputFile receives the final message in dry-run mode.
	OutputFile string
}

// ResolverFactory builds the credential resolver chain for a repository root.
type ResolverFactory func(repoRoot string) []security.CredentialResolver

// CommitService orchestrates the commit workflow:
// locate → diff → message → confirm → split → commit.
type CommitService struct {
	gitClient git.Client
	generator ai.Generator
	uiManager ui.Manager
	config    *config.Config
	resolvers ResolverFactory
}

// NewCommitService creates a new CommitService with the given dependencies.
// The credential chain is config value, environment, then .env at the
// repository root.
func NewCommitService(
	gitClient git.Client,
	generator ai.Generator,
	uiManager ui.Manager,
	cfg *config.Config,
) *CommitService {
	if cfg == nil {
		cfg = config.Default()
	}

	return &CommitService{
		gitClient: gitClient,
		generator: generator,
		uiManager: uiManager,
		config:    cfg,
		resolvers: func(repoRoot string) []security.CredentialResolver {
			return security.DefaultResolvers(cfg.OpenAI.APIKey, repoRoot)
		},
	}
}

// WithResolvers replaces the credential resolver chain.
func (s *CommitService) WithResolvers(f ResolverFactory) *CommitService {
	if f != nil {
		s.resolvers = f
	}
	return s
}

// Run executes the workflow once. A declined confirmation is not an error.
func (s *CommitService) Run(ctx context.Context, opts *CommitOptions) (Outcome, error) {
	if opts == nil {
		opts = &CommitOptions{}
	}

	// Locate
	root, err := s.gitClient.RepositoryRoot(ctx)
	if err != nil {
		return OutcomeAborted, err
	}
	s.uiManager.ShowInfo(fmt.Sprintf("Git repository found at: %s", root))

	// Diff
	diff, err := s.gitClient.UncommittedDiff(ctx)
	if err != nil {
		return OutcomeAborted, err
	}
	if strings.TrimSpace(diff) == "" {
		return OutcomeAborted, s.noChangesError(ctx)
	}
	s.uiManager.ShowInfo("Found uncommitted changes")
	apperrors.Debug("Diff is %d bytes", len(diff))

	// Message
	text, err := s.resolveMessage(ctx, opts, root, diff)
	if err != nil {
		return OutcomeAborted, err
	}

	// Confirm
	if !opts.SkipConfirm && !opts.DryRun {
		confirmed, err := s.uiManager.AskYesNo(confirmQuestion)
		if err != nil {
			return OutcomeAborted, fmt.Errorf("failed to prompt user: %w", err)
		}
		if !confirmed {
			s.uiManager.ShowInfo("Commit cancelled.")
			return OutcomeCancelled, nil
		}
	}

	// Split
	cm := message.Split(text)
	if err := cm.Validate(); err != nil {
		return OutcomeAborted, apperrors.Wrap(err, apperrors.ErrEmptySummary, "cannot commit without a summary line").
			WithSuggestion("The first line of the commit message must not be blank")
	}

	if opts.DryRun {
		return s.finishDryRun(opts, cm)
	}

	// Commit
	s.uiManager.ShowInfo("Committing changes...")
	if err := s.gitClient.Commit(ctx, cm.Summary, cm.Description); err != nil {
		return OutcomeAborted, err
	}

	s.uiManager.ShowSuccess("Successfully committed changes")
	return OutcomeCommitted, nil
}

// noChangesError builds the empty-diff error, pointing at untracked files
// since git diff HEAD does not show them.
func (s *CommitService) noChangesError(ctx context.Context) error {
	appErr := apperrors.NewNoChangesError()

	untracked, err := s.gitClient.UntrackedFiles(ctx)
	if err != nil {
		apperrors.Debug("Could not list untracked files: %v", err)
		return appErr
	}
	if len(untracked) == 0 {
		return appErr
	}

	shown := untracked
	if len(shown) > maxUntrackedHint {
		shown = shown[:maxUntrackedHint]
	}
	hint := strings.Join(shown, ", ")
	if more := len(untracked) - len(shown); more > 0 {
		hint += fmt.Sprintf(" and %d more", more)
	}

	return appErr.WithContext("untracked", len(untracked)).
		WithSuggestion(fmt.Sprintf("Untracked files are not part of the diff (%s). Stage them with 'git add' first", hint))
}

// resolveMessage returns the manual message, or drafts one through the
// completion client and lets the user edit it.
func (s *CommitService) resolveMessage(ctx context.Context, opts *CommitOptions, root, diff string) (string, error) {
	if opts.Message != "" {
		s.uiManager.DisplayMessage("Commit message:", opts.Message)
		s.showWarnings(opts.Message)
		return opts.Message, nil
	}

	credential, err := security.ResolveCredential(s.resolvers(root)...)
	if err != nil {
		return "", err
	}

	draft, err := s.generate(ctx, credential, diff)
	if err != nil {
		return "", err
	}

	s.uiManager.DisplayMessage("Generated commit message:", draft)
	s.showWarnings(draft)

	if opts.SkipConfirm || opts.DryRun {
		return draft, nil
	}

	edit, err := s.uiManager.AskYesNo(editQuestion)
	if err != nil {
		return "", fmt.Errorf("failed to prompt user: %w", err)
	}
	if !edit {
		return draft, nil
	}

	edited, err := s.uiManager.EditText(draft)
	if err != nil {
		return "", err
	}
	if edited != draft {
		s.uiManager.DisplayMessage("Edited commit message:", edited)
		s.showWarnings(edited)
	}

	return edited, nil
}

// generate calls the completion client with a spinner running.
func (s *CommitService) generate(ctx context.Context, credential, diff string) (string, error) {
	req := &ai.GenerateRequest{
		Credential:   credential,
		Model:        s.config.OpenAI.Model,
		Temperature:  s.config.OpenAI.Temperature,
		MaxTokens:    s.config.OpenAI.MaxTokens,
		SystemPrompt: s.config.OpenAI.SystemPrompt,
		Diff:         diff,
	}

	spinner := s.uiManager.ShowSpinner("Generating commit message using OpenAI...")
	spinner.Start()
	draft, err := s.generator.GenerateCommitMessage(ctx, req)
	spinner.Stop()

	return draft, err
}

// showWarnings surfaces non-blocking validation warnings.
func (s *CommitService) showWarnings(text string) {
	result := message.Split(text).ValidateWithWarnings()
	for _, warning := range result.Warnings {
		s.uiManager.ShowWarning(warning)
	}
}

// finishDryRun outputs the final message without committing.
func (s *CommitService) finishDryRun(opts *CommitOptions, cm *message.CommitMessage) (Outcome, error) {
	if opts.OutputFile != "" {
		if err := writeFile(opts.OutputFile, []byte(cm.String()+"\n"), 0644); err != nil {
			return OutcomeAborted, apperrors.Wrap(err, apperrors.ErrFileSystemError,
				fmt.Sprintf("failed to write to file %s", opts.OutputFile))
		}
		s.uiManager.ShowSuccess(fmt.Sprintf("Message written to %s", opts.OutputFile))
		return OutcomeDryRun, nil
	}

	s.uiManager.ShowSuccess("Dry-run complete - message generated but not committed")
	return OutcomeDryRun, nil
}
