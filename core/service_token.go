package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ServiceTokenManager owns the process-wide service credential. Renewal
// is single-flight: concurrent requesters join the in-flight renewal
// instead of stampeding the identity service. A rejected token is never
// handed out again once the rejection signal arrives.
type ServiceTokenManager struct {
	renew      func(ctx context.Context) (ServiceToken, error)
	renewLead  time.Duration
	defaultTTL time.Duration
	now        func() time.Time
	logger     Logger

	mu      sync.Mutex
	current *ServiceToken
	flight  *renewalFlight
}

type renewalFlight struct {
	done  chan struct{}
	token ServiceToken
	err   error
}

type ServiceTokenManagerConfig struct {
	// Renew performs one remote renewal. The manager expects it to carry
	// its own retry discipline.
	Renew      func(ctx context.Context) (ServiceToken, error)
	RenewLead  time.Duration
	DefaultTTL time.Duration
	Now        func() time.Time
	Logger     Logger
}

func NewServiceTokenManager(cfg ServiceTokenManagerConfig) (*ServiceTokenManager, error) {
	if cfg.Renew == nil {
		return nil, fmt.Errorf("core: service token renew func is required")
	}
	renewLead := cfg.RenewLead
	if renewLead <= 0 {
		renewLead = DefaultTokenRenewLead
	}
	defaultTTL := cfg.DefaultTTL
	if defaultTTL <= 0 {
		defaultTTL = DefaultServiceTokenTTL
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &ServiceTokenManager{
		renew:      cfg.Renew,
		renewLead:  renewLead,
		defaultTTL: defaultTTL,
		now:        now,
		logger:     cfg.Logger,
	}, nil
}

// Token returns a usable service credential, renewing when none is held,
// the expiry estimate minus the renew lead has elapsed, or forceRefresh
// is set. A forced refresh always rides at least one remote renewal.
func (m *ServiceTokenManager) Token(ctx context.Context, forceRefresh bool) (Credential, error) {
	if m == nil {
		return Credential{}, newInternalError("core: service token manager is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	m.mu.Lock()
	if !forceRefresh && m.current != nil && m.freshLocked(*m.current) {
		cred := m.current.Credential
		m.mu.Unlock()
		return cred, nil
	}
	flight := m.flight
	if flight == nil {
		flight = &renewalFlight{done: make(chan struct{})}
		m.flight = flight
		// The flight outlives any single waiter: one caller cancelling
		// must not abort the renewal the other waiters share.
		go m.runRenewal(context.WithoutCancel(ctx), flight)
	}
	m.mu.Unlock()

	select {
	case <-ctx.Done():
		return Credential{}, NewCancelled(ctx.Err())
	case <-flight.done:
	}
	if flight.err != nil {
		return Credential{}, flight.err
	}
	return flight.token.Credential, nil
}

func (m *ServiceTokenManager) runRenewal(ctx context.Context, flight *renewalFlight) {
	token, err := m.renew(ctx)

	m.mu.Lock()
	if err == nil {
		if token.IssuedAt.IsZero() {
			token.IssuedAt = m.now()
		}
		if token.ExpiresAt == nil {
			expiresAt := token.IssuedAt.Add(m.defaultTTL)
			token.ExpiresAt = &expiresAt
		}
		if token.Credential.Kind == "" {
			token.Credential.Kind = CredentialKindService
		}
		stored := token
		m.current = &stored
		flight.token = token
	} else {
		flight.err = NewServiceAuthFailed(err)
		if m.logger != nil {
			m.logger.Error("service token renewal failed", "error", err.Error())
		}
	}
	m.flight = nil
	m.mu.Unlock()
	close(flight.done)
}

// Invalidate drops the held token when a dependent call reported it as
// rejected. Matching by raw value avoids discarding a newer token that
// superseded the rejected one while the signal was in flight.
func (m *ServiceTokenManager) Invalidate(raw string) {
	if m == nil {
		return
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	m.mu.Lock()
	if m.current != nil && m.current.Credential.Token == raw {
		m.current = nil
	}
	m.mu.Unlock()
}

// Snapshot returns the held token, when any.
func (m *ServiceTokenManager) Snapshot() (ServiceToken, bool) {
	if m == nil {
		return ServiceToken{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ServiceToken{}, false
	}
	token := *m.current
	token.ExpiresAt = cloneTimePointer(m.current.ExpiresAt)
	return token, true
}

func (m *ServiceTokenManager) freshLocked(token ServiceToken) bool {
	if token.Credential.IsZero() {
		return false
	}
	if token.ExpiresAt == nil {
		return true
	}
	return m.now().Before(token.ExpiresAt.Add(-m.renewLead))
}
