package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"retryer/pkg/config"
	"retryer/pkg/logger"
	"retryer/pkg/policy"
	"retryer/pkg/ui"
)

// defaultUnboundedCount is the number of delays shown when the budget is unbounded
const defaultUnboundedCount = 10

var delayCount int

// delaysCmd represents the delays command
var delaysCmd = &cobra.Command{
	Use:   "delays",
	Short: "Print the delay schedule of the configured backoff",
	Long: `Print the delays the configured policy waits between attempts.

By default one row is printed per wait the attempt budget allows, which is one
less than max attempts. An unbounded budget never advances the attempt index,
so every row shows the delay for attempt 0. Jittered strategies show one
random draw.`,
	Example: `  retryer delays -b linear --base 5s --cap 100s -n 25
  retryer delays -b exponential_jitter -r 0.3 --count 8`,
	Args: cobra.NoArgs,
	RunE: runDelays,
}

func init() {
	rootCmd.AddCommand(delaysCmd)
	delaysCmd.Flags().IntVar(&delayCount, "count", 0, "number of delays to print (default: max attempts - 1)")
}

func runDelays(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out, err := renderDelays(cfg, delayCount, logger.GetLogger())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// renderDelays computes and renders the schedule of cfg. A count of zero
// derives the number of waits from the attempt budget.
func renderDelays(cfg *config.Config, count int, log logger.Logger) (string, error) {
	backoff, err := policy.Backoff(cfg.Retry.Backoff)
	if err != nil {
		return "", err
	}

	if count <= 0 {
		count = waitsFor(cfg.Retry.MaxAttempts)
	}

	description := policy.Describe(cfg.Retry.Backoff)
	delays := policy.Schedule(backoff, cfg.Retry.MaxAttempts, count)
	logger.LogSchedule(log, description, delays)

	// capped rows are only meaningful without jitter
	var maxDelay time.Duration
	if kind := cfg.Retry.Backoff.Kind; (kind == config.BackoffLinear || kind == config.BackoffExponential) && cfg.Retry.Backoff.Cap != nil {
		maxDelay = *cfg.Retry.Backoff.Cap
	}

	return ui.RenderSchedule(description, ui.BuildSchedule(delays, maxDelay)), nil
}

// waitsFor returns how many waits a budget of maxAttempts allows
func waitsFor(maxAttempts int) int {
	if maxAttempts < 0 {
		return defaultUnboundedCount
	}
	return max(maxAttempts-1, 0)
}
