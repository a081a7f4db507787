package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
)

// pollUntil runs step immediately and then once per interval until step
// reports done or returns an error. The interval is constant; no backoff
// is applied. Step decides what counts as transient by returning
// (false, nil) to keep the loop going. A configured timeout surfaces
// domain.ErrWaitTimeout; a zero timeout waits forever.
func pollUntil(ctx context.Context, poll domain.PollSettings, step func(context.Context) (bool, error)) error {
	if poll.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, poll.Timeout)
		defer cancel()
	}

	interval := poll.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := step(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			if poll.Timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w after %s", domain.ErrWaitTimeout, poll.Timeout)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
