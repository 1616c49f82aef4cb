package client

import (
	"context"
	"net/http"
	"time"
)

const (
	DefaultTimeout        = 10 * time.Second
	DefaultRetries        = 2
	DefaultRetryDelayBase = time.Second
)

// RetryPolicy configures the timeout and retry behaviour applied to every request made by the client.
type RetryPolicy struct {
	// Timeout is the deadline for a single attempt
	Timeout time.Duration
	// Retries is the maximum number of additional attempts after the first one
	Retries int
	// RetryDelayBase is multiplied by the attempt number to give the delay before each retry
	RetryDelayBase time.Duration
}

// DefaultRetryPolicy returns the default retry configuration.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Timeout:        DefaultTimeout,
		Retries:        DefaultRetries,
		RetryDelayBase: DefaultRetryDelayBase,
	}
}

// Delay returns the linear backoff used before retry number attempt (attempt >= 1)
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	return p.RetryDelayBase * time.Duration(attempt)
}

// shouldRetry reports whether a failed attempt is worth repeating.
//
// Network failures, timeouts, 5xx responses and 429 responses are retried.
// Other 4xx responses and undecodable 2xx bodies are terminal.
func shouldRetry(err *ApiError) bool {
	switch err.Kind {
	case KindNetwork, KindTimeout:
		return true
	case KindHTTP:
		return err.Status == http.StatusTooManyRequests || (err.Status >= 500 && err.Status <= 599)
	default:
		return false
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
