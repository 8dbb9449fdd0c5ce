package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	apperrors "github.com/brocode/brocode/internal/pkg/errors"
)

const (
	// AppName is the directory created under the user config dir.
	AppName = "brocode"
	// DefaultConfigFileName is the default config file name.
	DefaultConfigFileName = "config.toml"
	// ConfigType is the format viper reads and writes.
	ConfigType = "toml"
	// EnvPrefix is the prefix for environment overrides, e.g. BROCODE_OPENAI_MODEL.
	EnvPrefix = "BROCODE"
)

// keys lists every setting in the file. The API key has no environment
// override here; OPENAI_API_KEY is handled by the credential resolvers.
var keys = []string{
	"openai.api_key",
	"openai.base_url",
	"openai.model",
	"openai.temperature",
	"openai.max_tokens",
	"openai.system_prompt",
}

// ViperManager implements the Manager interface using Viper.
type ViperManager struct {
	configPath string
}

// DefaultPath returns <user-config-dir>/brocode/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to determine config directory")
	}
	return filepath.Join(dir, AppName, DefaultConfigFileName), nil
}

// NewManager creates a new configuration manager.
// If configPath is empty, DefaultPath is used.
func NewManager(configPath string) (*ViperManager, error) {
	if configPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}
	return &ViperManager{configPath: configPath}, nil
}

// newViper returns a viper instance bound to the config file with defaults
// applied. Environment overrides are only wanted when reading, never when
// the result is written back to disk.
func (m *ViperManager) newViper(withEnv bool) *viper.Viper {
	v := viper.New()
	v.SetConfigType(ConfigType)
	v.SetConfigFile(m.configPath)
	setDefaults(v)

	if withEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		bindEnvVars(v)
	}

	return v
}

// bindEnvVars explicitly binds environment variables for nested keys,
// which AutomaticEnv does not pick up on Unmarshal.
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("openai.base_url")
	_ = v.BindEnv("openai.model")
	_ = v.BindEnv("openai.temperature")
	_ = v.BindEnv("openai.max_tokens")
	_ = v.BindEnv("openai.system_prompt")
}

// setDefaults sets the default configuration values.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("openai.api_key", d.OpenAI.APIKey)
	v.SetDefault("openai.base_url", d.OpenAI.BaseURL)
	v.SetDefault("openai.model", d.OpenAI.Model)
	v.SetDefault("openai.temperature", d.OpenAI.Temperature)
	v.SetDefault("openai.max_tokens", d.OpenAI.MaxTokens)
	v.SetDefault("openai.system_prompt", d.OpenAI.SystemPrompt)
}

// readInto reads the config file into v, classifying failures.
func (m *ViperManager) readInto(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var parseErr viper.ConfigParseError
		if errors.As(err, &parseErr) {
			return apperrors.Wrap(err, apperrors.ErrConfigMalformed,
				fmt.Sprintf("failed to parse config file %s", m.configPath))
		}
		return apperrors.Wrap(err, apperrors.ErrConfigUnreadable,
			fmt.Sprintf("failed to read config file %s", m.configPath))
	}
	return nil
}

// GetConfigPath returns the path to the configuration file.
func (m *ViperManager) GetConfigPath() string {
	return m.configPath
}

// Load reads the configuration file. Keys missing from the file take their
// default values; BROCODE_OPENAI_* variables override file values.
func (m *ViperManager) Load() (*Config, error) {
	v := m.newViper(true)
	if err := m.readInto(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrConfigMalformed,
			fmt.Sprintf("invalid value in config file %s", m.configPath))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes cfg to the config file, creating parent directories.
// Sets file permissions to 0600 since the file may hold an API key.
func (m *ViperManager) Save(cfg *Config) error {
	v := viper.New()
	v.SetConfigType(ConfigType)
	v.Set("openai.api_key", cfg.OpenAI.APIKey)
	v.Set("openai.base_url", cfg.OpenAI.BaseURL)
	v.Set("openai.model", cfg.OpenAI.Model)
	v.Set("openai.temperature", cfg.OpenAI.Temperature)
	v.Set("openai.max_tokens", cfg.OpenAI.MaxTokens)
	v.Set("openai.system_prompt", cfg.OpenAI.SystemPrompt)

	return m.write(v)
}

func (m *ViperManager) write(v *viper.Viper) error {
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to create config directory")
	}

	// WriteConfigAs would pick the format from the extension; the file is
	// always TOML whatever it is called.
	f, err := os.OpenFile(m.configPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to open config file")
	}
	if err := v.WriteConfigTo(f); err != nil {
		f.Close()
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to write config file")
	}
	if err := f.Close(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to write config file")
	}

	if err := os.Chmod(m.configPath, 0600); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to set config file permissions")
	}

	return nil
}

// Init creates a new configuration file with default values.
func (m *ViperManager) Init() error {
	if m.ConfigExists() {
		return apperrors.New(apperrors.ErrInvalidArguments,
			fmt.Sprintf("config file already exists at %s", m.configPath))
	}
	return m.Save(Default())
}

// Set sets a configuration value by key, converting it to the type of the
// current value. The result must still validate before it is written.
func (m *ViperManager) Set(key string, value string) error {
	key = strings.ToLower(key)
	if !isKnownKey(key) {
		return apperrors.New(apperrors.ErrInvalidArguments, fmt.Sprintf("unknown config key: %s", key)).
			WithSuggestion("Valid keys: " + strings.Join(keys, ", "))
	}

	v := m.newViper(false)
	if err := m.readInto(v); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	convertedValue, err := convertValue(value, v.Get(key))
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInvalidArguments,
			fmt.Sprintf("failed to convert value for key %s", key))
	}
	v.Set(key, convertedValue)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return apperrors.Wrap(err, apperrors.ErrConfigMalformed, "invalid config value")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	return m.Save(&cfg)
}

// convertValue converts a string value to the appropriate type based on the existing value type.
func convertValue(value string, existingValue interface{}) (interface{}, error) {
	switch existingValue.(type) {
	case bool:
		return strconv.ParseBool(value)
	case int, int64:
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i, nil
		}
		// a float typed over an integer-looking file value, e.g. temperature = 1
		return strconv.ParseFloat(value, 64)
	case float32, float64:
		return strconv.ParseFloat(value, 64)
	default:
		return value, nil
	}
}

// Get retrieves a configuration value by key.
func (m *ViperManager) Get(key string) (string, error) {
	key = strings.ToLower(key)
	if !isKnownKey(key) {
		return "", apperrors.New(apperrors.ErrInvalidArguments, fmt.Sprintf("unknown config key: %s", key))
	}

	v := m.newViper(true)
	if err := m.readInto(v); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	return fmt.Sprintf("%v", v.Get(key)), nil
}

// List returns every known key with its effective value. A missing file
// lists the defaults.
func (m *ViperManager) List() (map[string]interface{}, error) {
	v := m.newViper(true)
	if err := m.readInto(v); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	settings := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		settings[k] = v.Get(k)
	}
	return settings, nil
}

// Keys returns the known configuration keys in sorted order.
func Keys() []string {
	out := append([]string(nil), keys...)
	sort.Strings(out)
	return out
}

func isKnownKey(key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// ConfigExists checks if the configuration file exists.
func (m *ViperManager) ConfigExists() bool {
	_, err := os.Stat(m.configPath)
	return err == nil
}

// Load reads the configuration at path.
func Load(path string) (*Config, error) {
	m, err := NewManager(path)
	if err != nil {
		return nil, err
	}
	return m.Load()
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	m, err := NewManager(path)
	if err != nil {
		return err
	}
	return m.Save(cfg)
}

// LoadOrBootstrap loads the configuration at path. On any failure the
// defaults are used for this run and written to path; both the load and
// the save failure are only logged.
func LoadOrBootstrap(path string) *Config {
	if path == "" {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}

	cfg, err := Load(path)
	if err == nil {
		return cfg
	}

	if errors.Is(err, fs.ErrNotExist) {
		apperrors.Info("No configuration found. Creating default configuration at %s", path)
	} else {
		apperrors.Warn("%v; using default configuration", err)
	}

	cfg = Default()
	if err := Save(path, cfg); err != nil {
		apperrors.Warn("Failed to save default configuration: %v", err)
	}
	return cfg
}
