package main

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicyBackoffCaps(t *testing.T) {
	policy := newRetryPolicy(10)
	if policy.MaxAttempts != 11 {
		t.Fatalf("expected 11 attempts for 10 retries, got %d", policy.MaxAttempts)
	}

	if d := policy.DelayFunc(1, nil); d != baseRetryDelay {
		t.Fatalf("first retry delay = %s, want %s", d, baseRetryDelay)
	}
	if d := policy.DelayFunc(2, nil); d != 2*baseRetryDelay {
		t.Fatalf("second retry delay = %s, want %s", d, 2*baseRetryDelay)
	}
	if d := policy.DelayFunc(10, nil); d != maxRetryDelay {
		t.Fatalf("late retry delay = %s, want cap %s", d, maxRetryDelay)
	}
}

func TestRetryPolicySkipsCancellation(t *testing.T) {
	policy := newRetryPolicy(3)
	if policy.ShouldRetry(context.Canceled) {
		t.Fatal("cancelled requests should not be retried")
	}
	if !policy.ShouldRetry(errors.New("connection refused")) {
		t.Fatal("ordinary failures should be retried")
	}
}

func TestWaitForEndHonorsDuration(t *testing.T) {
	start := time.Now()
	waitForEnd(context.Background(), 10*time.Millisecond)
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Fatalf("returned after %s, before the duration elapsed", elapsed)
	}
}

func TestWaitForEndHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		waitForEnd(ctx, 0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waitForEnd did not return on context cancellation")
	}
}
