package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"retryer/pkg/logger"
	"retryer/pkg/policy"
	"retryer/pkg/retry"
	"retryer/pkg/ui"
)

// waitDelay bounds how long a cancelled command may hold its output open
const waitDelay = 500 * time.Millisecond

var noRetryExitCodes []int

// execCmd represents the exec command
var execCmd = &cobra.Command{
	Use:   "exec [flags] -- <command> [args...]",
	Short: "Run a command, retrying it while it fails",
	Long: `Run a command under the configured retry policy.

A non-zero exit status counts as a failure and is retried, unless the status is
listed in --no-retry-exit-codes. A command that cannot be started is never
retried. Interrupting retryer stops the running command and cancels any wait.

retryer exits with the status of the last run of the command.`,
	Example: `  retryer exec -n 5 -b exponential --base 500ms --cap 10s -- curl -fsS https://example.com
  retryer exec -n -1 -b constant --timeout 2s --no-retry-exit-codes 2 -- ./healthcheck.sh`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func init() {
	rootCmd.AddCommand(execCmd)
	execCmd.Flags().IntSliceVar(&noRetryExitCodes, "no-retry-exit-codes", nil, "exit codes that stop retrying immediately")
}

// commandExitError reports a non-zero exit status of the child process
type commandExitError struct {
	Code int
}

func (e *commandExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// exitCodeCondition retries failed runs unless their exit status is listed
// as final. Start failures and cancellation are never retried.
type exitCodeCondition struct {
	final map[int]bool
}

func newExitCodeCondition(codes []int) exitCodeCondition {
	final := make(map[int]bool, len(codes))
	for _, code := range codes {
		final[code] = true
	}
	return exitCodeCondition{final: final}
}

func (c exitCodeCondition) ShouldRetryOnError(err error) bool {
	var exitErr *commandExitError
	if errors.As(err, &exitErr) {
		return !c.final[exitErr.Code]
	}
	return false
}

func (c exitCodeCondition) ShouldRetryOnValue(int) bool { return false }

// commandRunner runs the child process once per attempt
type commandRunner struct {
	name   string
	args   []string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	log    logger.Logger

	attempt int
}

// run executes the command once and reports its exit status. A failure to
// start yields exit code -1.
func (r *commandRunner) run(ctx context.Context) (int, error) {
	r.attempt++
	start := time.Now()

	cmd := exec.CommandContext(ctx, r.name, r.args...)
	cmd.Stdin = r.stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	// grandchildren may keep the output pipes open after a kill
	cmd.WaitDelay = waitDelay

	code, err := 0, cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case ctx.Err() != nil:
			code, err = -1, ctx.Err()
		case errors.As(err, &exitErr):
			code = exitErr.ExitCode()
			err = &commandExitError{Code: code}
		default:
			code = -1
		}
	}

	logger.LogCommandAttempt(r.log, r.name, r.attempt, code, time.Since(start), err)
	return code, err
}

func runExec(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.GetLogger()
	ui.SetOutput(cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := policy.NewRetrier[int](cfg, newExitCodeCondition(cfg.Retry.NoRetryExitCodes), log)
	if err != nil {
		return err
	}

	runner := &commandRunner{
		name:   args[0],
		args:   args[1:],
		stdin:  os.Stdin,
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
		log:    log,
	}

	log.WithFields(map[string]interface{}{
		"command":      strings.Join(args, " "),
		"max_attempts": cfg.Retry.MaxAttempts,
		"backoff":      policy.Describe(cfg.Retry.Backoff),
	}).Debug("Starting command")

	_, err = r.Do(ctx, func() (int, error) {
		return runner.run(ctx)
	})
	if err != nil {
		if errors.Is(err, retry.ErrExhausted) {
			ui.PrintWarning("Giving up", fmt.Sprintf("%d attempts", runner.attempt))
		}
		return err
	}

	if runner.attempt > 1 {
		ui.PrintSuccess(fmt.Sprintf("Command succeeded after %d attempts", runner.attempt))
	}
	return nil
}
