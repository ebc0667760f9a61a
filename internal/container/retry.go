// SPDX-License-Identifier: EPL-2.0

package container

import (
	"context"
	"fmt"
	"time"
)

// RetryWithBackoff runs op up to maxAttempts times, doubling the wait between
// attempts starting from baseBackoff. The wait is interruptible: cancelling
// ctx during a backoff returns immediately instead of finishing the sleep.
//
// op reports (retry, err). A nil err ends the loop successfully. A non-nil
// err with retry=false is permanent and returned as-is. When every attempt
// fails, the last error is returned wrapped with the attempt count.
func RetryWithBackoff(
	ctx context.Context,
	maxAttempts int,
	baseBackoff time.Duration,
	op func(attempt int) (retry bool, err error),
) error {
	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			if err := waitBackoff(ctx, baseBackoff<<(attempt-1)); err != nil {
				return err
			}
		}

		retry, err := op(attempt)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	if lastErr == nil {
		return nil
	}
	return fmt.Errorf("giving up after %d attempts: %w", maxAttempts, lastErr)
}

// waitBackoff blocks for d unless ctx is done first.
func waitBackoff(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("retry aborted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
