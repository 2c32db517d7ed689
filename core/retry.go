package core

import (
	"context"
	"math/rand/v2"
	"time"
)

const (
	defaultRetryMaxAttempts = 3
	defaultRetryBaseDelay   = 250 * time.Millisecond
	defaultRetryMaxDelay    = 5 * time.Second
)

// RetryPolicy bounds retries of a single gateway call. Configuration
// only; it carries no mutable state.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Retryable overrides the default transient-error predicate.
	Retryable func(error) bool
}

func (p RetryPolicy) normalized() RetryPolicy {
	out := p
	if out.MaxAttempts < 1 {
		out.MaxAttempts = defaultRetryMaxAttempts
	}
	if out.BaseDelay <= 0 {
		out.BaseDelay = defaultRetryBaseDelay
	}
	if out.MaxDelay <= 0 {
		out.MaxDelay = defaultRetryMaxDelay
	}
	return out
}

func (p RetryPolicy) retryable(err error) bool {
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return IsRetryable(err)
}

type BackoffScheduler interface {
	NextDelay(attempt int) time.Duration
}

// JitteredBackoffScheduler doubles the base delay per attempt up to Max,
// then adds uniform jitter drawn from [0, Base).
type JitteredBackoffScheduler struct {
	Base time.Duration
	Max  time.Duration
	// Rand returns a value in [0, 1). Injectable for deterministic tests.
	Rand func() float64
}

// NextDelay returns the wait before the given attempt. Attempt numbering
// starts at 1; the first retry (attempt 2) waits Base plus jitter.
func (s JitteredBackoffScheduler) NextDelay(attempt int) time.Duration {
	base := s.Base
	if base <= 0 {
		base = defaultRetryBaseDelay
	}
	max := s.Max
	if max <= 0 {
		max = defaultRetryMaxDelay
	}
	if attempt < 2 {
		attempt = 2
	}

	delay := base
	for i := 2; i < attempt; i++ {
		delay *= 2
		if delay >= max {
			delay = max
			break
		}
	}
	if delay > max {
		delay = max
	}

	random := s.Rand
	if random == nil {
		random = rand.Float64
	}
	jitter := time.Duration(random() * float64(base))
	if jitter < 0 {
		jitter = 0
	}
	if jitter >= base && base > 0 {
		jitter = base - 1
	}
	return delay + jitter
}

// RetryExecutor wraps gateway calls with the bounded retry policy.
type RetryExecutor struct {
	policy    RetryPolicy
	scheduler BackoffScheduler
	logger    Logger
}

func NewRetryExecutor(policy RetryPolicy, scheduler BackoffScheduler, logger Logger) *RetryExecutor {
	normalized := policy.normalized()
	if scheduler == nil {
		scheduler = JitteredBackoffScheduler{
			Base: normalized.BaseDelay,
			Max:  normalized.MaxDelay,
		}
	}
	return &RetryExecutor{
		policy:    normalized,
		scheduler: scheduler,
		logger:    logger,
	}
}

func (e *RetryExecutor) Policy() RetryPolicy {
	if e == nil {
		return RetryPolicy{}.normalized()
	}
	return e.policy
}

// Execute runs the operation, retrying transient failures within the
// policy budget. Terminal failures return immediately; cancellation while
// waiting between attempts surfaces as a cancelled error, never as
// exhaustion.
func (e *RetryExecutor) Execute(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	_, err := ExecuteWithRetry(ctx, e, operation, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func ExecuteWithRetry[T any](
	ctx context.Context,
	executor *RetryExecutor,
	operation string,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	var zero T
	if executor == nil {
		return zero, newInternalError("core: retry executor is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var lastErr error
	for attempt := 1; attempt <= executor.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, NewCancelled(err)
		}

		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if IsCancelled(err) {
			return zero, NewCancelled(err)
		}
		if !executor.policy.retryable(err) || attempt == executor.policy.MaxAttempts {
			return zero, err
		}

		delay := executor.scheduler.NextDelay(attempt + 1)
		if executor.logger != nil {
			executor.logger.Warn("retrying after transient failure",
				"operation", operation,
				"attempt", attempt,
				"delay", delay.String(),
				"error", err.Error(),
			)
		}
		if waitErr := waitWithContext(ctx, delay); waitErr != nil {
			return zero, NewCancelled(waitErr)
		}
	}
	return zero, lastErr
}

func waitWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
