package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/brocode/brocode/internal/pkg/errors"
)

// setupTestRepo creates a temporary git repository for testing.
func setupTestRepo(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	runGit(t, tmpDir, "init")
	runGit(t, tmpDir, "config", "user.email", "test@example.com")
	runGit(t, tmpDir, "config", "user.name", "Test User")
	runGit(t, tmpDir, "config", "commit.gpgsign", "false")

	return tmpDir
}

// setupRepoWithCommit creates a repository with a single committed README.
func setupRepoWithCommit(t *testing.T) string {
	t.Helper()

	tmpDir := setupTestRepo(t)
	writeFile(t, tmpDir, "README.md", "# Test\n")
	runGit(t, tmpDir, "add", ".")
	runGit(t, tmpDir, "commit", "-m", "initial commit")
	return tmpDir
}

// runGit runs a git command in the specified directory.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\nOutput: %s", args, err, output)
	}
	return string(output)
}

// writeFile creates a file with the given content.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directories: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func resolved(t *testing.T, path string) string {
	t.Helper()
	p, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("failed to resolve %s: %v", path, err)
	}
	return p
}

func TestRepositoryRoot_FromSubdirectory(t *testing.T) {
	tmpDir := setupRepoWithCommit(t)
	sub := filepath.Join(tmpDir, "a", "b")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}

	client := NewClientWithWorkDir(sub)
	root, err := client.RepositoryRoot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resolved(t, root) != resolved(t, tmpDir) {
		t.Errorf("RepositoryRoot() = %q, want %q", root, tmpDir)
	}
}

func TestRepositoryRoot_NotARepository(t *testing.T) {
	client := NewClientWithWorkDir(t.TempDir())

	_, err := client.RepositoryRoot(context.Background())
	if err == nil {
		t.Fatal("expected error outside a repository")
	}
	if !apperrors.HasCode(err, apperrors.ErrNotARepository) {
		t.Errorf("expected NotARepository, got %v", err)
	}
}

func TestUncommittedDiff_NoChanges(t *testing.T) {
	tmpDir := setupRepoWithCommit(t)

	client := NewClientWithWorkDir(tmpDir)
	diff, err := client.UncommittedDiff(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff != "" {
		t.Errorf("expected empty diff, got %q", diff)
	}
}

func TestUncommittedDiff_StagedAndUnstaged(t *testing.T) {
	tmpDir := setupRepoWithCommit(t)
	writeFile(t, tmpDir, "main.go", "package main\n")
	runGit(t, tmpDir, "add", "main.go")
	writeFile(t, tmpDir, "README.md", "# Test\n\nUnstaged edit\n")

	client := NewClientWithWorkDir(tmpDir)
	diff, err := client.UncommittedDiff(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(diff, "main.go") {
		t.Error("diff should include the staged file")
	}
	if !strings.Contains(diff, "Unstaged edit") {
		t.Error("diff should include the unstaged modification")
	}
}

func TestUncommittedDiff_NoHead(t *testing.T) {
	tmpDir := setupTestRepo(t)

	client := NewClientWithWorkDir(tmpDir)
	_, err := client.UncommittedDiff(context.Background())
	if err == nil {
		t.Fatal("expected error when HEAD does not exist")
	}
	if !apperrors.HasCode(err, apperrors.ErrGitCommandFailed) {
		t.Errorf("expected GitCommandFailed, got %v", err)
	}
}

func TestCommit_SummaryOnly(t *testing.T) {
	tmpDir := setupRepoWithCommit(t)
	writeFile(t, tmpDir, "README.md", "# Changed\n")
	runGit(t, tmpDir, "add", ".")

	client := NewClientWithWorkDir(tmpDir)
	if err := client.Commit(context.Background(), "Update readme", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := strings.TrimSpace(runGit(t, tmpDir, "log", "-1", "--format=%B"))
	if got != "Update readme" {
		t.Errorf("commit message = %q, want %q", got, "Update readme")
	}
}

func TestCommit_WithDescription(t *testing.T) {
	tmpDir := setupRepoWithCommit(t)
	writeFile(t, tmpDir, "README.md", "# Changed\n")
	runGit(t, tmpDir, "add", ".")

	client := NewClientWithWorkDir(tmpDir)
	if err := client.Commit(context.Background(), "Add feature", "Details here"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := strings.TrimSpace(runGit(t, tmpDir, "log", "-1", "--format=%B"))
	want := "Add feature\n\nDetails here"
	if got != want {
		t.Errorf("commit message = %q, want %q", got, want)
	}
}

func TestCommit_NothingStaged(t *testing.T) {
	tmpDir := setupRepoWithCommit(t)

	client := NewClientWithWorkDir(tmpDir)
	err := client.Commit(context.Background(), "Empty", "")
	if err == nil {
		t.Fatal("expected error when nothing is staged")
	}
	if !apperrors.HasCode(err, apperrors.ErrCommitFailed) {
		t.Errorf("expected CommitFailed, got %v", err)
	}
	appErr := apperrors.GetAppError(err)
	if appErr.Context["output"] == nil {
		t.Error("expected git output to be captured")
	}
}

func TestUntrackedFiles(t *testing.T) {
	tmpDir := setupRepoWithCommit(t)
	writeFile(t, tmpDir, "new.txt", "hello\n")
	writeFile(t, tmpDir, "dir/other.txt", "hello\n")

	client := NewClientWithWorkDir(tmpDir)
	files, err := client.UntrackedFiles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"dir/other.txt", "new.txt"}
	if len(files) != len(want) {
		t.Fatalf("UntrackedFiles() = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("UntrackedFiles()[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestUntrackedFiles_NotARepository(t *testing.T) {
	client := NewClientWithWorkDir(t.TempDir())

	_, err := client.UntrackedFiles(context.Background())
	if !apperrors.HasCode(err, apperrors.ErrNotARepository) {
		t.Errorf("expected NotARepository, got %v", err)
	}
}
