package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"retryer/pkg/config"
	"retryer/pkg/policy"
	"retryer/pkg/ui"
)

const defaultConfigPath = "retryer.yaml"

// exampleConfig is written by `retryer config init`
const exampleConfig = `# retryer configuration file
#
# Every option can also be set through environment variables prefixed with
# RETRYER_, for example RETRYER_MAX_ATTEMPTS or RETRYER_BACKOFF.

retry:
  # Attempt budget. -1 retries forever, 0 never runs the command.
  max_attempts: 3

  # Exit codes that stop retrying immediately
  # no_retry_exit_codes: [2, 126]

  backoff:
    # constant, linear, exponential, exponential_jitter or composite_jitter
    kind: exponential_jitter

    # Delay after the first attempt (linear, exponential, exponential_jitter)
    base: 1s

    # Largest delay (linear, exponential, exponential_jitter)
    cap: 1m

    # Random reduction of up to this fraction of each delay, within [0, 1]
    randomization_factor: 0.5

    # constant only
    # timeout: 2s

    # composite_jitter only: the strategy to randomize
    # inner:
    #   kind: linear
    #   base: 5s
    #   cap: 100s

logging:
  # debug, info, warn, error
  level: info

  # Log file path; leave empty to log to stderr only
  file: ""

  # Rotation of the log file
  max_size: 100    # megabytes
  max_backups: 3
  max_age: 7       # days
  compress: false
`

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage retryer configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (RETRYER_*)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'retryer.yaml'
unless a different path is specified with the --config flag.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Backoff kind and its parameters
  - Value ranges
  - Log file location`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s (remove it first to overwrite)", configPath)
	}

	if err := writeExampleConfig(configPath); err != nil {
		return err
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
	fmt.Fprintln(cmd.OutOrStdout(), "1. Edit the retry policy to your needs")
	fmt.Fprintln(cmd.OutOrStdout(), "2. Run 'retryer config validate' to check the configuration")
	fmt.Fprintln(cmd.OutOrStdout(), "3. Preview the waits with 'retryer delays'")
	return nil
}

func writeExampleConfig(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprint(cmd.OutOrStdout(), string(data))

	fmt.Fprintln(cmd.OutOrStdout(), "\nConfiguration sources (in order of priority):")
	fmt.Fprintln(cmd.OutOrStdout(), "1. Command line flags")
	fmt.Fprintf(cmd.OutOrStdout(), "2. Environment variables (%s*)\n", config.EnvPrefix)
	if configFile != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "3. Configuration file: %s\n", configFile)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "3. Configuration file: (searched in default locations)")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "4. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		for _, candidate := range config.SearchPaths() {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return errors.New("no configuration file found, specify one with --config")
		}
	}

	ui.PrintInfo("Validating configuration", path)

	cfg, err := validateConfigFile(path)
	if err != nil {
		return err
	}

	ui.PrintSuccess("Configuration is valid")
	fmt.Fprintln(cmd.OutOrStdout(), "\nConfiguration summary:")
	fmt.Fprintf(cmd.OutOrStdout(), "  Max attempts: %d\n", cfg.Retry.MaxAttempts)
	fmt.Fprintf(cmd.OutOrStdout(), "  Backoff: %s\n", policy.Describe(cfg.Retry.Backoff))
	if len(cfg.Retry.NoRetryExitCodes) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "  Final exit codes: %v\n", cfg.Retry.NoRetryExitCodes)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  Log level: %s\n", cfg.Logging.Level)
	return nil
}

// validateConfigFile loads path on top of the defaults and checks that the
// result builds a working retrier
func validateConfigFile(path string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(path); err != nil {
		return nil, err
	}

	var problems []error
	if err := cfg.Validate(); err != nil {
		problems = append(problems, err)
	}
	if _, err := policy.Backoff(cfg.Retry.Backoff); err != nil && len(problems) == 0 {
		problems = append(problems, err)
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Errorf("cannot create log directory: %w", err))
		}
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("configuration has errors:\n%w", errors.Join(problems...))
	}
	return cfg, nil
}
