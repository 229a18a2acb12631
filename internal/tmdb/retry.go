package tmdb

import (
	"context"
	"time"
)

// Retry runs an operation up to Attempts times with linear backoff:
// after the nth failed attempt it waits Delay*n before trying again.
type Retry struct {
	Attempts int
	Delay    time.Duration

	// Sleep overrides time.Sleep; tests inject a fake clock here.
	Sleep func(time.Duration)
}

func (r Retry) Do(ctx context.Context, fn func() error) error {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for n := 1; n <= attempts; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if n < attempts {
			r.pause(r.Delay * time.Duration(n))
		}
	}
	return lastErr
}

func (r Retry) pause(d time.Duration) {
	if d <= 0 {
		return
	}
	if r.Sleep != nil {
		r.Sleep(d)
		return
	}
	time.Sleep(d)
}
