package retry

import (
	"context"
	"time"
)

// Sleeper suspends the caller between attempts
type Sleeper interface {
	// Sleep waits for d or until ctx is done, whichever comes first, and
	// returns ctx.Err() in the latter case
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to the Sleeper interface
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep calls f(ctx, d)
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// TimerSleeper waits on a time.Timer
type TimerSleeper struct{}

// Sleep waits for delay or until ctx is done
func (TimerSleeper) Sleep(ctx context.Context, delay time.Duration) error {
	return Wait(ctx, delay)
}

// Wait waits for the specified duration or until context is cancelled. A
// context that is already done wins even when delay is zero.
func Wait(ctx context.Context, delay time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
