package core

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// Pause before retrying after a transport-level renewal failure.
	renewRetryConnectPause = 10 * time.Second
	// Pause before retrying after an unexpected renewal failure.
	renewRetryUnknownPause = 30 * time.Second
	// Floor for the sleep until the next scheduled renewal.
	renewMinSleep = time.Second
)

// StartAutoRenew runs a background loop that keeps the service token
// fresh: renew, sleep until the expiry estimate minus the renew lead,
// renew again. Failures pause the loop rather than stopping it. The
// returned stop function cancels the loop and waits for it to exit.
func (s *Service) StartAutoRenew(ctx context.Context) (stop func()) {
	if s == nil {
		return func() {}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	loopCtx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.autoRenewLoop(loopCtx)
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}

func (s *Service) autoRenewLoop(ctx context.Context) {
	for {
		pause := s.renewOnce(ctx)
		if err := waitWithContext(ctx, pause); err != nil {
			return
		}
	}
}

// renewOnce performs one forced renewal and returns how long to sleep
// before the next one.
func (s *Service) renewOnce(ctx context.Context) time.Duration {
	_, err := s.tokenManager.Token(ctx, true)
	if err != nil {
		if IsCancelled(err) {
			return 0
		}
		// The manager wraps every renewal failure as service-auth-failed,
		// replacing the cause's text code but keeping its category. An
		// external category means the renewal died on transport or
		// upstream availability.
		transient := IsRetryable(err)
		if !transient {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				transient = richErr.Category == goerrors.CategoryExternal
			}
		}
		if transient {
			s.logger.Warn("service token auto-renewal failed, retrying shortly",
				"pause", renewRetryConnectPause.String(),
				"error", err.Error(),
			)
			return renewRetryConnectPause
		}
		s.logger.Error("service token auto-renewal failed unexpectedly",
			"pause", renewRetryUnknownPause.String(),
			"error", err.Error(),
		)
		return renewRetryUnknownPause
	}

	sleep := s.config.ServiceTokenTTL - s.config.TokenRenewLead
	if token, ok := s.tokenManager.Snapshot(); ok && token.ExpiresAt != nil {
		sleep = token.ExpiresAt.Sub(s.now()) - s.config.TokenRenewLead
	}
	if sleep < renewMinSleep {
		sleep = renewMinSleep
	}
	return sleep
}
