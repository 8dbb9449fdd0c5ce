// Package git provides Git operations for brocode.
package git

import (
	"bytes"
	"context"
	"os/exec"
	"sort"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"

	apperrors "github.com/brocode/brocode/internal/pkg/errors"
)

const (
	// GitCommandTimeout is the default timeout for read-only git commands.
	// git commit is not bounded because hooks may run for a long time.
	GitCommandTimeout = 10 * time.Second
)

// Client defines the interface for Git operations.
type Client interface {
	RepositoryRoot(ctx context.Context) (string, error)
	UncommittedDiff(ctx context.Context) (string, error)
	Commit(ctx context.Context, summary, description string) error
	UntrackedFiles(ctx context.Context) ([]string, error)
}

// DefaultClient implements the Client interface using exec.CommandContext.
type DefaultClient struct {
	// workDir is the working directory for git commands.
	// If empty, uses the current directory.
	workDir string
}

// NewClient creates a new DefaultClient.
func NewClient() *DefaultClient {
	return &DefaultClient{}
}

// NewClientWithWorkDir creates a new DefaultClient with a specific working directory.
func NewClientWithWorkDir(workDir string) *DefaultClient {
	return &DefaultClient{workDir: workDir}
}

// run executes git with args and returns stdout, stderr and the run error.
func (c *DefaultClient) run(ctx context.Context, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// RepositoryRoot returns the top-level directory of the working tree.
func (c *DefaultClient) RepositoryRoot(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, GitCommandTimeout)
	defer cancel()

	stdout, stderr, err := c.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", apperrors.NewGitError(ctx.Err(), "")
		}
		return "", apperrors.NewNotARepositoryError(err, strings.TrimSpace(string(stderr)))
	}

	return strings.TrimSpace(string(stdout)), nil
}

// UncommittedDiff returns the diff of the working tree against HEAD, which
// covers both staged and unstaged modifications. An empty string means there
// is nothing to commit.
func (c *DefaultClient) UncommittedDiff(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, GitCommandTimeout)
	defer cancel()

	stdout, stderr, err := c.run(ctx, "diff", "HEAD")
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", apperrors.NewGitError(ctx.Err(), "")
		}
		return "", apperrors.NewGitError(err, strings.TrimSpace(string(stderr)))
	}

	return string(stdout), nil
}

// Commit runs git commit with the summary as the first message segment and,
// when non-empty, the description as a second one. git separates the two
// segments with a blank line.
func (c *DefaultClient) Commit(ctx context.Context, summary, description string) error {
	args := []string{"commit", "-m", summary}
	if description != "" {
		args = append(args, "-m", description)
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return apperrors.NewCommitFailedError(err, strings.TrimSpace(string(output)))
	}

	apperrors.Debug("git commit output: %s", strings.TrimSpace(string(output)))
	return nil
}

// UntrackedFiles lists paths that git diff HEAD does not see because they
// were never added. It reads the worktree status through go-git.
func (c *DefaultClient) UntrackedFiles(ctx context.Context) ([]string, error) {
	path := c.workDir
	if path == "" {
		path = "."
	}

	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, apperrors.NewNotARepositoryError(err, "")
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, apperrors.NewGitError(err, "")
	}

	status, err := wt.Status()
	if err != nil {
		return nil, apperrors.NewGitError(err, "")
	}

	var untracked []string
	for file, st := range status {
		if st.Worktree == gogit.Untracked {
			untracked = append(untracked, file)
		}
	}
	sort.Strings(untracked)

	return untracked, nil
}
