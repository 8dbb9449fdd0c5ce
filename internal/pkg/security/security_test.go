package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/brocode/brocode/internal/pkg/errors"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{
			name:     "normal key",
			key:      "sk-1234567890abcdef1234567890abcdef",
			expected: "*******************************cdef",
		},
		{
			name:     "short key",
			key:      "abc",
			expected: "****",
		},
		{
			name:     "exactly 4 chars",
			key:      "abcd",
			expected: "****",
		},
		{
			name:     "5 chars",
			key:      "abcde",
			expected: "*bcde",
		},
		{
			name:     "empty key",
			key:      "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MaskAPIKey(tt.key)
			if result != tt.expected {
				t.Errorf("MaskAPIKey(%q) = %q, want %q", tt.key, result, tt.expected)
			}
		})
	}
}

func TestResolveCredential_ConfigWins(t *testing.T) {
	t.Setenv(CredentialEnvVar, "sk-from-env")
	dir := t.TempDir()
	writeDotEnv(t, dir, "OPENAI_API_KEY=sk-from-dotenv\n")

	key, err := ResolveCredential(DefaultResolvers("sk-from-config", dir)...)

	require.NoError(t, err)
	assert.Equal(t, "sk-from-config", key)
}

func TestResolveCredential_EnvBeforeDotEnv(t *testing.T) {
	t.Setenv(CredentialEnvVar, "sk-from-env")
	dir := t.TempDir()
	writeDotEnv(t, dir, "OPENAI_API_KEY=sk-from-dotenv\n")

	key, err := ResolveCredential(DefaultResolvers("  ", dir)...)

	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", key)
}

func TestResolveCredential_DotEnv(t *testing.T) {
	t.Setenv(CredentialEnvVar, "")
	dir := t.TempDir()
	writeDotEnv(t, dir, "# local\nOTHER=1\nOPENAI_API_KEY=\"sk-from-dotenv\"\n")

	key, err := ResolveCredential(DefaultResolvers("", dir)...)

	require.NoError(t, err)
	assert.Equal(t, "sk-from-dotenv", key)
	// the file must not leak into the process environment
	assert.Empty(t, os.Getenv(CredentialEnvVar))
}

func TestResolveCredential_Missing(t *testing.T) {
	t.Setenv(CredentialEnvVar, "")

	_, err := ResolveCredential(DefaultResolvers("", t.TempDir())...)

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrMissingCredential))
	assert.Contains(t, err.Error(), CredentialEnvVar)
}

func TestResolveCredential_NilAndEmptyResolvers(t *testing.T) {
	key, err := ResolveCredential(nil, FromValue("", "empty"), FromDotEnv("", CredentialEnvVar), FromValue("sk-last", "last"))

	require.NoError(t, err)
	assert.Equal(t, "sk-last", key)
}

func writeDotEnv(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DotEnvFileName), []byte(content), 0600))
}
