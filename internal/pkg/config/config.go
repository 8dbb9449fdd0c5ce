// Package config provides configuration management for brocode.
package config

import (
	"fmt"

	"github.com/brocode/brocode/internal/pkg/ai"
	apperrors "github.com/brocode/brocode/internal/pkg/errors"
)

// Config represents the complete brocode configuration.
type Config struct {
	OpenAI OpenAIConfig `mapstructure:"openai"`
}

// OpenAIConfig contains the completion endpoint settings.
type OpenAIConfig struct {
	// APIKey is optional; an empty value defers to the environment.
	APIKey       string  `mapstructure:"api_key"`
	BaseURL      string  `mapstructure:"base_url"`
	Model        string  `mapstructure:"model"`
	Temperature  float64 `mapstructure:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	SystemPrompt string  `mapstructure:"system_prompt"`
}

// Default returns the configuration written on first run.
func Default() *Config {
	return &Config{
		OpenAI: OpenAIConfig{
			Model:        ai.DefaultModel,
			Temperature:  ai.DefaultTemperature,
			MaxTokens:    ai.DefaultMaxTokens,
			SystemPrompt: ai.DefaultSystemPrompt,
		},
	}
}

// Validate checks value ranges. Violations are reported as ErrConfigMalformed.
func (c *Config) Validate() error {
	switch {
	case c.OpenAI.Model == "":
		return malformed("openai.model must not be empty")
	case c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2:
		return malformed(fmt.Sprintf("openai.temperature must be between 0 and 2, got %v", c.OpenAI.Temperature))
	case c.OpenAI.MaxTokens <= 0:
		return malformed(fmt.Sprintf("openai.max_tokens must be positive, got %d", c.OpenAI.MaxTokens))
	}
	return nil
}

func malformed(msg string) *apperrors.AppError {
	return apperrors.New(apperrors.ErrConfigMalformed, msg).
		WithSuggestion("Fix the value with 'brocode config set' or delete the file to regenerate defaults")
}

// Manager defines the interface for configuration management.
type Manager interface {
	Load() (*Config, error)
	Save(config *Config) error
	Set(key string, value string) error
	Get(key string) (string, error)
	Init() error
	List() (map[string]interface{}, error)
	GetConfigPath() string
}
