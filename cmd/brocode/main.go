// Package main is the entry point for the brocode CLI application.
// brocode generates Git commit messages from uncommitted changes using an
// OpenAI-compatible chat completions endpoint.
package main

import (
	"fmt"
	"os"

	"github.com/brocode/brocode/internal/cmd"
	apperrors "github.com/brocode/brocode/internal/pkg/errors"
)

// Version information - set via ldflags during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := cmd.NewRootCmd(version, commit, date)
	if err := rootCmd.Execute(); err != nil {
		if apperrors.IsVerbose() {
			fmt.Fprint(os.Stderr, apperrors.FormatErrorVerbose(err))
		} else {
			fmt.Fprintln(os.Stderr, apperrors.FormatError(err))
		}
		os.Exit(apperrors.GetExitCode(err))
	}
}
