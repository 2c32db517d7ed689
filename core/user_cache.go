package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// UserValidationCache maps raw bearer tokens to validated users with a
// TTL. At most one remote validation is in flight per distinct token;
// concurrent callers share its outcome. Failures are never cached, so a
// transient outage does not poison later validations. Eviction is
// TTL-only: the key space is bounded by concurrently active sessions.
type UserValidationCache struct {
	ttl   time.Duration
	fetch func(ctx context.Context, token string) (CachedUser, error)
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]CachedUser
	flights map[string]*validationFlight
}

type validationFlight struct {
	done chan struct{}
	user CachedUser
	err  error
	// abandoned is set by Clear while the flight is running; the flight
	// still completes for its waiters but its result is not inserted.
	abandoned bool
}

type UserValidationCacheConfig struct {
	// Fetch performs the remote validation for a token on miss or expiry.
	Fetch func(ctx context.Context, token string) (CachedUser, error)
	TTL   time.Duration
	Now   func() time.Time
}

func NewUserValidationCache(cfg UserValidationCacheConfig) (*UserValidationCache, error) {
	if cfg.Fetch == nil {
		return nil, fmt.Errorf("core: user validation fetch func is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultUserCacheTTL
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &UserValidationCache{
		ttl:     ttl,
		fetch:   cfg.Fetch,
		now:     now,
		entries: map[string]CachedUser{},
		flights: map[string]*validationFlight{},
	}, nil
}

// Validate returns the cached user for the token when fresh, otherwise
// joins or starts the single validation flight for it.
func (c *UserValidationCache) Validate(ctx context.Context, token string) (CachedUser, error) {
	if c == nil {
		return CachedUser{}, newInternalError("core: user validation cache is not configured")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return CachedUser{}, NewAuthenticationFailed("bearer token is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c.mu.Lock()
	if entry, ok := c.entries[token]; ok {
		if c.now().Sub(entry.CachedAt) < c.ttl {
			user := cloneCachedUser(entry)
			c.mu.Unlock()
			return user, nil
		}
		delete(c.entries, token)
	}
	flight, ok := c.flights[token]
	if !ok {
		flight = &validationFlight{done: make(chan struct{})}
		c.flights[token] = flight
		go c.runValidation(context.WithoutCancel(ctx), token, flight)
	}
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		// The flight keeps running for the remaining waiters.
		return CachedUser{}, NewCancelled(ctx.Err())
	case <-flight.done:
	}
	if flight.err != nil {
		return CachedUser{}, flight.err
	}
	return cloneCachedUser(flight.user), nil
}

func (c *UserValidationCache) runValidation(ctx context.Context, token string, flight *validationFlight) {
	user, err := c.fetch(ctx, token)

	c.mu.Lock()
	if c.flights[token] == flight {
		delete(c.flights, token)
	}
	if err == nil {
		if user.CachedAt.IsZero() {
			user.CachedAt = c.now()
		}
		flight.user = user
		if !flight.abandoned {
			c.entries[token] = cloneCachedUser(user)
		}
	} else {
		flight.err = err
	}
	c.mu.Unlock()
	close(flight.done)
}

// Clear evicts the token's entry and discards the result of any in-flight
// validation for future lookups. The flight still completes for callers
// already waiting on it.
func (c *UserValidationCache) Clear(token string) {
	if c == nil {
		return
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	c.mu.Lock()
	delete(c.entries, token)
	if flight, ok := c.flights[token]; ok {
		flight.abandoned = true
		delete(c.flights, token)
	}
	c.mu.Unlock()
}

// Len reports the number of cached entries, expired or not.
func (c *UserValidationCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
