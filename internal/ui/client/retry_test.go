package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name string
		err  *ApiError
		want bool
	}{
		{"network", &ApiError{Kind: KindNetwork, Status: StatusNetworkError}, true},
		{"timeout", &ApiError{Kind: KindTimeout, Status: StatusTimeout}, true},
		{"too many requests", &ApiError{Kind: KindHTTP, Status: http.StatusTooManyRequests}, true},
		{"internal server error", &ApiError{Kind: KindHTTP, Status: http.StatusInternalServerError}, true},
		{"service unavailable", &ApiError{Kind: KindHTTP, Status: http.StatusServiceUnavailable}, true},
		{"upper 5xx bound", &ApiError{Kind: KindHTTP, Status: 599}, true},
		{"bad request", &ApiError{Kind: KindHTTP, Status: http.StatusBadRequest}, false},
		{"unauthorized", &ApiError{Kind: KindHTTP, Status: http.StatusUnauthorized}, false},
		{"not found", &ApiError{Kind: KindHTTP, Status: http.StatusNotFound}, false},
		{"request timeout from server", &ApiError{Kind: KindHTTP, Status: http.StatusRequestTimeout}, false},
		{"decode", &ApiError{Kind: KindDecode, Status: http.StatusOK}, false},
		{"request build", &ApiError{Kind: KindRequest}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldRetry(tt.err); got != tt.want {
				t.Errorf("shouldRetry() = %v, want %v", got, tt.want)
			}
			if got := tt.err.Temporary(); got != tt.want {
				t.Errorf("Temporary() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetryPolicyDelay(t *testing.T) {
	p := RetryPolicy{RetryDelayBase: 250 * time.Millisecond}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, 250 * time.Millisecond},
		{2, 500 * time.Millisecond},
		{4, time.Second},
	}
	for _, tt := range tests {
		if got := p.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()
	if p.Timeout != 10*time.Second || p.Retries != 2 || p.RetryDelayBase != time.Second {
		t.Errorf("unexpected defaults %+v", p)
	}
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := sleep(ctx, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("sleep did not return when the context was cancelled")
	}

	if err := sleep(context.Background(), time.Millisecond); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
