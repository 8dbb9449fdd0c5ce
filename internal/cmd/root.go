// Package cmd contains the CLI command definitions for brocode.
package cmd

import (
	"github.com/spf13/cobra"

	apperrors "github.com/brocode/brocode/internal/pkg/errors"
)

// NewRootCmd creates the root command for the brocode CLI.
func NewRootCmd(version, commitHash, date string) *cobra.Command {
	flags := &CommitFlags{}

	rootCmd := &cobra.Command{
		Use:   "brocode",
		Short: "AI-assisted git commit message generator",
		Long: `brocode drafts a Git commit message from your uncommitted changes.

It sends the diff against HEAD to an OpenAI-compatible chat completions
endpoint, lets you review and edit the draft, and commits once you confirm.
Running brocode without a subcommand is the same as 'brocode commit'.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			apperrors.SetVerbose(verbose)
		},
		// Default action is to run the commit command
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(cmd, flags)
		},
	}

	rootCmd.SetVersionTemplate(`brocode {{.Version}}
Commit: ` + commitHash + `
Built:  ` + date + "\n")

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: <user config dir>/brocode/config.toml)")

	addCommitFlags(rootCmd, flags)

	rootCmd.AddCommand(NewCommitCmd())
	rootCmd.AddCommand(NewConfigCmd())

	return rootCmd
}
