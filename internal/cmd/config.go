package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brocode/brocode/internal/pkg/config"
	"github.com/brocode/brocode/internal/pkg/security"
)

// NewConfigCmd creates the config command and its subcommands.
func NewConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage brocode configuration",
		Long: `Manage brocode configuration settings.

Use subcommands to initialize, view, or modify configuration values.
Configuration is stored as TOML in <user config dir>/brocode/config.toml
unless --config points elsewhere.`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigSetCmd())
	configCmd.AddCommand(newConfigGetCmd())
	configCmd.AddCommand(newConfigListCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// newManager builds a config manager for the --config flag value.
func newManager(cmd *cobra.Command) (*config.ViperManager, error) {
	configPath, _ := cmd.Flags().GetString("config")
	return config.NewManager(configPath)
}

// displayValue masks API keys.
func displayValue(key string, value interface{}) string {
	s := fmt.Sprintf("%v", value)
	if strings.HasSuffix(key, "api_key") && s != "" {
		return security.MaskAPIKey(s)
	}
	return s
}

// newConfigInitCmd creates the 'config init' subcommand.
func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file",
		Long: `Create a new configuration file with default values.

The configuration file is created with permissions 0600 (user read/write only)
as it may contain an API key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager(cmd)
			if err != nil {
				return err
			}

			if err := mgr.Init(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration file created at %s\n", mgr.GetConfigPath())
			fmt.Fprintln(out, "Set your API key with 'brocode config set openai.api_key <key>' or export OPENAI_API_KEY.")
			return nil
		},
	}
}

// newConfigSetCmd creates the 'config set' subcommand.
func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value by key.

Keys use dot notation. The value is converted to the type of the current value.

Examples:
  brocode config set openai.api_key sk-xxx
  brocode config set openai.model gpt-4o-mini
  brocode config set openai.temperature 0.2
  brocode config set openai.base_url http://localhost:11434/v1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := strings.ToLower(args[0]), args[1]

			mgr, err := newManager(cmd)
			if err != nil {
				return err
			}

			if err := mgr.Set(key, value); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, displayValue(key, value))
			return nil
		},
	}
}

// newConfigGetCmd creates the 'config get' subcommand.
func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.ToLower(args[0])

			mgr, err := newManager(cmd)
			if err != nil {
				return err
			}

			value, err := mgr.Get(key)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), displayValue(key, value))
			return nil
		},
	}
}

// newConfigListCmd creates the 'config list' subcommand.
func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `Display all current configuration values, including environment overrides.

API keys are masked, showing only the last 4 characters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager(cmd)
			if err != nil {
				return err
			}

			settings, err := mgr.List()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, key := range config.Keys() {
				fmt.Fprintf(out, "%s = %s\n", key, displayValue(key, settings[key]))
			}
			return nil
		},
	}
}

// newConfigPathCmd creates the 'config path' subcommand.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager(cmd)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), mgr.GetConfigPath())
			return nil
		},
	}
}
