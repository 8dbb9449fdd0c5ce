package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brocode/brocode/internal/app"
	"github.com/brocode/brocode/internal/pkg/ai"
	"github.com/brocode/brocode/internal/pkg/config"
	apperrors "github.com/brocode/brocode/internal/pkg/errors"
	"github.com/brocode/brocode/internal/pkg/git"
	"github.com/brocode/brocode/internal/pkg/security"
	"github.com/brocode/brocode/internal/pkg/ui"
)

// runService is a variable to allow mocking in tests.
var runService = func(ctx context.Context, s *app.CommitService, opts *app.CommitOptions) (app.Outcome, error) {
	return s.Run(ctx, opts)
}

// CommitFlags holds the flags for the commit command.
type CommitFlags struct {
	Message    string
	Yes        bool
	DryRun     bool
	OutputFile string
}

// NewCommitCmd creates the commit command.
func NewCommitCmd() *cobra.Command {
	flags := &CommitFlags{}

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Generate a commit message for your changes and commit",
		Long: `Generate a commit message from the uncommitted changes (git diff HEAD),
then commit with it after you review it.

The draft is shown before anything is committed. You can edit it in your
$EDITOR (or an inline editor) and must confirm the commit unless --yes is set.

Examples:
  brocode commit                     # Interactive commit
  brocode commit -m "Fix typo"       # Skip generation, use this message
  brocode commit --yes               # Commit the generated message as-is
  brocode commit --dry-run           # Generate without committing
  brocode commit -o msg.txt          # Save message to file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(cmd, flags)
		},
	}

	addCommitFlags(cmd, flags)

	return cmd
}

func addCommitFlags(cmd *cobra.Command, flags *CommitFlags) {
	cmd.Flags().StringVarP(&flags.Message, "message", "m", "", "Use this commit message instead of generating one")
	cmd.Flags().BoolVarP(&flags.Yes, "yes", "y", false, "Skip the edit question and confirmation, commit immediately")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Generate message without committing")
	cmd.Flags().StringVarP(&flags.OutputFile, "output", "o", "", "Write the final message to file (implies --dry-run)")
}

// runCommit wires the dependencies and executes the commit workflow.
func runCommit(cmd *cobra.Command, flags *CommitFlags) error {
	if cmd.Flags().Changed("message") && strings.TrimSpace(flags.Message) == "" {
		return apperrors.New(apperrors.ErrInvalidArguments, "commit message must not be empty").
			WithSuggestion("Omit -m to generate a message, or pass a non-empty one")
	}

	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		apperrors.Debug("Using custom config path: %s", configPath)
	}
	cfg := config.LoadOrBootstrap(configPath)

	// If output file is specified, enable dry-run mode
	if flags.OutputFile != "" {
		flags.DryRun = true
	}

	if apperrors.IsVerbose() {
		apperrors.Info("Using model: %s", cfg.OpenAI.Model)
		if cfg.OpenAI.BaseURL != "" {
			apperrors.Info("Using base URL: %s", cfg.OpenAI.BaseURL)
		}
		if cfg.OpenAI.APIKey != "" {
			apperrors.Info("API key: %s", security.MaskAPIKey(cfg.OpenAI.APIKey))
		}
		if flags.DryRun {
			apperrors.Info("Dry-run mode enabled")
		}
	}

	colorEnabled := os.Getenv("NO_COLOR") == ""

	var uiMgr ui.Manager
	if flags.Yes {
		uiMgr = ui.NewNonInteractiveManager(colorEnabled)
	} else {
		uiMgr = ui.NewDefaultManager(colorEnabled, "")
	}

	service := app.NewCommitService(
		git.NewClient(),
		ai.NewClient(cfg.OpenAI.BaseURL),
		uiMgr,
		cfg,
	)

	// no deadline of our own; git hooks and the HTTP transport bound themselves
	outcome, err := runService(cmd.Context(), service, &app.CommitOptions{
		Message:     flags.Message,
		SkipConfirm: flags.Yes,
		DryRun:      flags.DryRun,
		OutputFile:  flags.OutputFile,
	})
	apperrors.Debug("Workflow finished: %s", outcome)

	return err
}
