package shared

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsRetryableHTTPError(t *testing.T) {
	retryable := []int{503, 429, 502, 504}
	for _, code := range retryable {
		err := &HTTPError{StatusCode: code, Status: "whatever"}
		if !IsRetryableHTTPError(err) {
			t.Errorf("status %d should be retryable", code)
		}
	}
	notRetryable := []int{400, 401, 404, 500}
	for _, code := range notRetryable {
		err := &HTTPError{StatusCode: code, Status: "whatever"}
		if IsRetryableHTTPError(err) {
			t.Errorf("status %d should not be retryable", code)
		}
	}
	if IsRetryableHTTPError(errors.New("plain error")) {
		t.Error("plain errors are not retryable")
	}
	if IsRetryableHTTPError(nil) {
		t.Error("nil is not retryable")
	}
}

func TestIsRetryableHTTPErrorWrapped(t *testing.T) {
	inner := &HTTPError{StatusCode: 503, Status: "Service Unavailable"}
	wrapped := fmt.Errorf("search failed: %w", fmt.Errorf("request: %w", inner))
	if !IsRetryableHTTPError(wrapped) {
		t.Error("wrapped 503 should be retryable")
	}
}

func TestHTTPStatusCode(t *testing.T) {
	inner := &HTTPError{StatusCode: 404, Status: "Not Found"}
	wrapped := fmt.Errorf("lookup: %w", inner)
	if got := HTTPStatusCode(wrapped); got != 404 {
		t.Errorf("HTTPStatusCode = %d, want 404", got)
	}
	if got := HTTPStatusCode(errors.New("no http here")); got != 0 {
		t.Errorf("HTTPStatusCode = %d, want 0", got)
	}
}

func TestRetryWithBackoffForHTTPNonRetryable(t *testing.T) {
	calls := 0
	err := RetryWithBackoffForHTTP(3, time.Millisecond, 10*time.Millisecond, func() error {
		calls++
		return &HTTPError{StatusCode: 404, Status: "Not Found"}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("non-retryable error retried %d times", calls)
	}
}

func TestRetryWithBackoffForHTTPRetriesThenSucceeds(t *testing.T) {
	calls := 0
	err := RetryWithBackoffForHTTP(3, time.Millisecond, 2*time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return &HTTPError{StatusCode: 503, Status: "Service Unavailable"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryWithBackoffForHTTPExhausted(t *testing.T) {
	calls := 0
	err := RetryWithBackoffForHTTP(2, time.Millisecond, 2*time.Millisecond, func() error {
		calls++
		return &HTTPError{StatusCode: 429, Status: "Too Many Requests"}
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
	if !IsRetryableHTTPError(err) {
		t.Error("final error should still unwrap to the HTTP error")
	}
}

func TestRateLimiterPacing(t *testing.T) {
	current := time.Unix(0, 0)
	var slept []time.Duration
	rl := NewRateLimiterWithClock(time.Second,
		func() time.Time { return current },
		func(d time.Duration) {
			slept = append(slept, d)
			current = current.Add(d)
		})

	rl.Wait() // first request goes through immediately
	if len(slept) != 0 {
		t.Fatalf("first request should not sleep, slept %v", slept)
	}

	rl.Wait() // second request must wait out the interval
	if len(slept) != 1 {
		t.Fatalf("second request should sleep once, slept %v", slept)
	}
	if slept[0] < 900*time.Millisecond || slept[0] > time.Second {
		t.Errorf("expected ~1s delay, got %v", slept[0])
	}
}

func TestRateLimiterNoWaitAfterIdle(t *testing.T) {
	current := time.Unix(0, 0)
	var slept []time.Duration
	rl := NewRateLimiterWithClock(time.Second,
		func() time.Time { return current },
		func(d time.Duration) {
			slept = append(slept, d)
			current = current.Add(d)
		})

	rl.Wait()
	current = current.Add(5 * time.Second)
	rl.Wait()
	if len(slept) != 0 {
		t.Errorf("idle limiter should not sleep, slept %v", slept)
	}
}
