package solr

import (
	"context"
	"time"
)

// FailureLogger logs failed queries.
type FailureLogger interface {
	LogFailure(err error)
}

// RetryPolicy configures retry behavior for an Invoker.
type RetryPolicy struct {
	MaxAttempts int                                        // total attempts including initial try
	Delay       time.Duration                              // fixed delay between retries (used if DelayFunc nil)
	ShouldRetry func(error) bool                           // predicate; if nil, all errors retried
	DelayFunc   func(attempt int, err error) time.Duration // dynamic backoff; attempt is 1-based
}

type retryInvoker struct {
	inner  Invoker
	policy RetryPolicy
}

// WithRetry wraps an Invoker with retry capability. Workers themselves never
// retry; any retry policy sits here, between scheduler and transport.
func WithRetry(inner Invoker, policy RetryPolicy) Invoker {
	if policy.MaxAttempts <= 1 {
		return inner
	}
	return &retryInvoker{inner: inner, policy: policy}
}

func (r *retryInvoker) Execute(ctx context.Context, query Query) (*QueryResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		resp, err := r.inner.Execute(ctx, query)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		// Don't delay after the last attempt.
		if attempt < r.policy.MaxAttempts {
			if r.policy.ShouldRetry != nil && !r.policy.ShouldRetry(lastErr) {
				return nil, lastErr
			}
			var delay time.Duration
			if r.policy.DelayFunc != nil {
				delay = r.policy.DelayFunc(attempt, lastErr)
			} else {
				delay = r.policy.Delay
			}
			if delay > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
		}
	}
	return nil, lastErr
}

type loggingInvoker struct {
	inner  Invoker
	logger FailureLogger
}

// WithLogging wraps an Invoker to log failures.
func WithLogging(inner Invoker, logger FailureLogger) Invoker {
	if logger == nil {
		return inner
	}
	return &loggingInvoker{inner: inner, logger: logger}
}

func (l *loggingInvoker) Execute(ctx context.Context, query Query) (*QueryResponse, error) {
	resp, err := l.inner.Execute(ctx, query)
	if err != nil {
		l.logger.LogFailure(err)
	}
	return resp, err
}
