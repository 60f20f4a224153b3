// Package retry runs a fallible operation until it succeeds, a retry
// condition declines another attempt, or the attempt budget runs out.
//
// A Retrier is assembled from three parts:
//   - a Condition deciding, per outcome, whether to try again
//     (DefaultCondition retries on any error and never on a value)
//   - a Backoff mapping the number of completed attempts to a delay
//     (Constant, Linear, Exponential or a CompositeJitter around one of them)
//   - a Sleeper that waits between attempts and honours context cancellation
//
// Basic usage:
//
//	backoff, err := retry.NewExponential(500*time.Millisecond, 10*time.Second)
//	if err != nil {
//		return err
//	}
//	r, err := retry.New(retry.Config[*http.Response]{
//		MaxAttempts: 5,
//		Backoff:     backoff,
//		Condition:   retry.HTTPCondition[*http.Response]{},
//		Logger:      logger.GetLogger(),
//	})
//	if err != nil {
//		return err
//	}
//	resp, err := r.Do(ctx, func() (*http.Response, error) {
//		return client.Get(url)
//	})
//
// Outcomes of Do:
//   - the value of the first attempt the condition accepts
//   - the first error the condition refuses to retry, returned as is
//   - an *ExhaustedError once MaxAttempts attempts were spent; it carries the
//     last value and last error and matches ErrExhausted with errors.Is
//   - an error wrapping ctx.Err() when the context ends while waiting
//
// MaxAttempts of Unbounded (-1) never exhausts. Its attempt count never
// advances, so the Backoff is asked for attempt 0 before every wait: Linear
// waits nothing and Exponential waits half its base. MaxAttempts of 0
// performs no attempt at all and reports exhaustion immediately.
//
// Retriers and backoffs are immutable once built and may be shared between
// goroutines; every Do call keeps its attempt state on its own stack.
package retry
