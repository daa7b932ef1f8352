// Copyright (C) 2019 Michael J. Fromberger. All Rights Reserved.

package totp

import (
	"context"
	"fmt"
	"time"
)

// DefaultMinValid is the conventional minimum remaining validity, in
// seconds, for a code that still has to travel over a network.
const DefaultMinValid = 5

// Generate returns a code guaranteed to remain valid for at least minValid
// seconds. If fewer than minValid seconds remain in the current time window,
// Generate sleeps until the window boundary and returns the next window's
// code; otherwise it returns the current window's code without blocking.
// The wait never exceeds Period seconds.
//
// minValid must be in [1, Period]; out-of-range values fail with
// ErrInvalidConfig before the clock is read. An invalid secret also fails
// before any wait. If ctx ends while Generate is waiting, the wait is
// abandoned and the context's error is returned with no code.
func Generate(ctx context.Context, secret string, minValid int) (string, error) {
	if minValid < 1 || minValid > Period {
		return "", fmt.Errorf("%w: minValid %d out of range [1, %d]", ErrInvalidConfig, minValid, Period)
	}
	key, err := ParseKey(secret)
	if err != nil {
		return "", err
	}

	if rem := remaining(timeNow()); rem < time.Duration(minValid)*time.Second {
		t := time.NewTimer(rem)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("interrupted waiting for the next window: %w", ctx.Err())
		case <-t.C:
		}
	}

	// Re-read the clock: the code must reflect the instant after the wait,
	// not the instant of the threshold check.
	return format(truncate(hmacSHA1(key, window(timeNow())))), nil
}
