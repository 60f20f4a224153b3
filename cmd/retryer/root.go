package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"retryer/pkg/config"
	"retryer/pkg/logger"
	"retryer/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile          string
	logLevel            string
	maxAttempts         int
	backoffKind         string
	baseDelay           time.Duration
	capDelay            time.Duration
	timeout             time.Duration
	randomizationFactor float64
	quiet               bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "retryer",
	Short: "Run commands again until they succeed, with configurable backoff",
	Long: `retryer runs a command and, when it fails, runs it again after a delay
computed by a backoff strategy, until it succeeds or the attempt budget is spent.

Backoff strategies:
  - constant            the same timeout after every attempt
  - linear              base * attempt, capped
  - exponential         base * 2^(attempt-1), capped
  - exponential_jitter  exponential with a random reduction of up to r
  - composite_jitter    jitter around any other strategy (config file only)

A max attempts of -1 retries forever.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			ui.SetQuietMode(true)
		}

		// exec passes the child's output through untouched
		if cmd.Name() != "exec" && cmd.Name() != "version" && cmd.Name() != "help" {
			ui.PrintLogo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err.Error())

		var exitErr *commandExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file (default is ./retryer.yaml or $HOME/.config/retryer/config.yaml)")
	flags.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.IntVarP(&maxAttempts, "max-attempts", "n", 3, "attempt budget, -1 for unbounded")
	flags.StringVarP(&backoffKind, "backoff", "b", "", "backoff strategy (constant, linear, exponential, exponential_jitter)")
	flags.DurationVar(&baseDelay, "base", 0, "base delay of linear and exponential backoffs")
	flags.DurationVar(&capDelay, "cap", 0, "maximum delay of linear and exponential backoffs")
	flags.DurationVar(&timeout, "timeout", 0, "delay of the constant backoff")
	flags.Float64VarP(&randomizationFactor, "randomization-factor", "r", 0, "jitter range in [0, 1]")
	flags.BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	// Version template
	rootCmd.SetVersionTemplate(`retryer {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig resolves the configuration from every source and initializes
// the global logger. Only flags set explicitly override file and env values.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, changedFlags(cmd))
	if err != nil {
		return nil, err
	}

	if quiet && cfg.Logging.File == "" {
		cfg.Logging.Level = "error"
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	return cfg, nil
}

func changedFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	set := cmd.Flags()

	if set.Changed("max-attempts") {
		flags["max-attempts"] = maxAttempts
	}
	if set.Changed("backoff") {
		flags["backoff"] = backoffKind
	}
	if set.Changed("base") {
		flags["base"] = baseDelay
	}
	if set.Changed("cap") {
		flags["cap"] = capDelay
	}
	if set.Changed("timeout") {
		flags["timeout"] = timeout
	}
	if set.Changed("randomization-factor") {
		flags["randomization-factor"] = randomizationFactor
	}
	if set.Changed("log-level") {
		flags["log-level"] = logLevel
	}
	if set.Lookup("no-retry-exit-codes") != nil && set.Changed("no-retry-exit-codes") {
		flags["no-retry-exit-codes"] = noRetryExitCodes
	}
	return flags
}
