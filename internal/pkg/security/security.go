// Package security provides credential resolution and secret masking for brocode.
package security

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	apperrors "github.com/brocode/brocode/internal/pkg/errors"
)

// CredentialEnvVar is the environment variable consulted for the API key.
const CredentialEnvVar = "OPENAI_API_KEY"

// DotEnvFileName is the file read from the repository root as a last resort.
const DotEnvFileName = ".env"

// CredentialResolver returns a credential and the name of its source, or an
// empty string when it has nothing to offer.
type CredentialResolver interface {
	Resolve() (credential string, source string)
}

// ResolverFunc adapts a function to CredentialResolver.
type ResolverFunc func() (string, string)

// Resolve calls f.
func (f ResolverFunc) Resolve() (string, string) {
	return f()
}

// FromValue resolves to a fixed value, typically the config file's api_key.
func FromValue(value, source string) CredentialResolver {
	return ResolverFunc(func() (string, string) {
		return strings.TrimSpace(value), source
	})
}

// FromEnv resolves from a process environment variable.
func FromEnv(name string) CredentialResolver {
	return ResolverFunc(func() (string, string) {
		return strings.TrimSpace(os.Getenv(name)), "environment variable " + name
	})
}

// FromDotEnv resolves a key from a .env file in dir without exporting it into
// the process environment. A missing or unreadable file yields nothing.
func FromDotEnv(dir, name string) CredentialResolver {
	return ResolverFunc(func() (string, string) {
		if dir == "" {
			return "", ""
		}
		path := filepath.Join(dir, DotEnvFileName)
		values, err := godotenv.Read(path)
		if err != nil {
			if !os.IsNotExist(err) {
				apperrors.Debug("Ignoring %s: %v", path, err)
			}
			return "", ""
		}
		return strings.TrimSpace(values[name]), path
	})
}

// ResolveCredential walks resolvers in order; the first non-empty value wins.
// It returns a MissingCredential error when none of them yields a value.
func ResolveCredential(resolvers ...CredentialResolver) (string, error) {
	for _, r := range resolvers {
		if r == nil {
			continue
		}
		value, source := r.Resolve()
		if value != "" {
			apperrors.Debug("Using API key %s from %s", MaskAPIKey(value), source)
			return value, nil
		}
	}
	return "", apperrors.NewMissingCredentialError(CredentialEnvVar)
}

// DefaultResolvers returns the standard precedence: config value, then the
// environment, then a .env file at the repository root.
func DefaultResolvers(configValue, repoRoot string) []CredentialResolver {
	return []CredentialResolver{
		FromValue(configValue, "config file"),
		FromEnv(CredentialEnvVar),
		FromDotEnv(repoRoot, CredentialEnvVar),
	}
}

// MaskAPIKey masks an API key, showing only the last 4 characters.
// This should be used when logging or displaying API keys.
func MaskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
