package services

import (
	"context"
	"time"
)

// awaitConsistentRead polls fetch until it reports a consistent value, giving
// an upstream writer a bounded amount of time to catch up. The dispute row is
// created by the resolving request just before the email trigger fires, so
// the first read can observe the row still pending. Returns false when the
// value never became consistent within the attempt budget.
func awaitConsistentRead[T any](ctx context.Context, attempts int, delay time.Duration, fetch func(context.Context) (T, bool, error)) (T, bool, error) {
	var zero T
	for i := 0; i < attempts; i++ {
		v, ready, err := fetch(ctx)
		if err != nil {
			return zero, false, err
		}
		if ready {
			return v, true, nil
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return zero, false, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return zero, false, nil
}
